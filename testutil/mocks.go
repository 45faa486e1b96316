// Package testutil provides a fake Twitch server for tests that exercise the full
// token, games and streams round trip.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// MockTwitchServer creates a test server that mocks the Twitch identity and Helix endpoints.
type MockTwitchServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc

	requests atomic.Int64
}

// NewMockTwitchServer creates a new mock Twitch API server. Unregistered paths return 404.
func NewMockTwitchServer(t *testing.T) *MockTwitchServer {
	t.Helper()
	m := &MockTwitchServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.Add(1)
		if handler, ok := m.Handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

// Requests returns how many requests the server has received.
func (m *MockTwitchServer) Requests() int64 { return m.requests.Load() }

// HelixBase is the value for TWITCH_API_BASE.
func (m *MockTwitchServer) HelixBase() string { return m.URL + "/helix" }

// TokenURL is the value for TWITCH_TOKEN_URL.
func (m *MockTwitchServer) TokenURL() string { return m.URL + "/oauth2/token" }

// MockOAuthTokenResponse adds a handler for the OAuth token endpoint.
func (m *MockTwitchServer) MockOAuthTokenResponse(accessToken string, expiresIn int) {
	m.Handlers["/oauth2/token"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": accessToken,
			"expires_in":   expiresIn,
			"token_type":   "bearer",
		})
	}
}

// MockOAuthTokenFailure makes the token endpoint reject the credentials.
func (m *MockTwitchServer) MockOAuthTokenFailure(status int, message string) {
	m.Handlers["/oauth2/token"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]interface{}{"status": status, "message": message})
	}
}

// MockGamesResponse adds a handler for /helix/games. Names missing from ids get an empty data array.
func (m *MockTwitchServer) MockGamesResponse(ids map[string]string) {
	m.Handlers["/helix/games"] = func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		data := []map[string]string{}
		if id, ok := ids[name]; ok {
			data = append(data, map[string]string{"id": id, "name": name})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
	}
}

// MockStreamsResponse adds a handler for /helix/streams keyed by game_id.
// A game id mapped to nil answers 500.
func (m *MockTwitchServer) MockStreamsResponse(viewers map[string][]int) {
	m.Handlers["/helix/streams"] = func(w http.ResponseWriter, r *http.Request) {
		counts, ok := viewers[r.URL.Query().Get("game_id")]
		if ok && counts == nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
			return
		}
		data := make([]map[string]interface{}, 0, len(counts))
		for i, v := range counts {
			data = append(data, map[string]interface{}{"id": i, "viewer_count": v})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // test mock response
}
