// Package twitchapi contains minimal helpers to interact with Twitch Helix APIs
// for game lookup and live stream totals, using an app access token.
package twitchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/view-ratio/telemetry"
)

// StreamsPageSize is the Helix maximum for ?first=. Only one page is ever read.
const StreamsPageSize = 100

// ErrGameNotFound is returned when the catalog has no entry for a name.
var ErrGameNotFound = errors.New("game not found")

// APIError is a non-2xx Helix response.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("helix %s: %d %s: %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// HelixClient provides the two lookups needed for viewer ratios.
type HelixClient struct {
	BaseURL    string
	ClientID   string
	Token      string
	HTTPClient *http.Client
}

// Game is a catalog entry.
type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BoxArtURL string `json:"box_art_url"`
	IGDBID    string `json:"igdb_id"`
}

// StreamTotals aggregates one page of live streams for a game.
type StreamTotals struct {
	Viewers  int
	Channels int
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

// GetGame resolves a display name to its catalog entry. The first match wins.
func (hc *HelixClient) GetGame(ctx context.Context, name string) (Game, error) {
	if name == "" {
		return Game{}, fmt.Errorf("name empty")
	}
	q := url.Values{}
	q.Set("name", name)
	var body struct {
		Data []Game `json:"data"`
	}
	if err := hc.get(ctx, "games", q, &body); err != nil {
		return Game{}, err
	}
	if len(body.Data) == 0 {
		return Game{}, fmt.Errorf("%q: %w", name, ErrGameNotFound)
	}
	return body.Data[0], nil
}

// GetStreamTotals sums viewer_count over the first page of live streams for a game.
// Games with more than StreamsPageSize live streams are undercounted.
func (hc *HelixClient) GetStreamTotals(ctx context.Context, gameID string) (StreamTotals, error) {
	if gameID == "" {
		return StreamTotals{}, fmt.Errorf("gameID empty")
	}
	q := url.Values{}
	q.Set("game_id", gameID)
	q.Set("first", strconv.Itoa(StreamsPageSize))
	var body struct {
		Data []struct {
			ViewerCount int `json:"viewer_count"`
		} `json:"data"`
	}
	if err := hc.get(ctx, "streams", q, &body); err != nil {
		return StreamTotals{}, err
	}
	var out StreamTotals
	for _, s := range body.Data {
		out.Viewers += s.ViewerCount
	}
	out.Channels = len(body.Data)
	return out, nil
}

// get performs an authenticated GET against base/endpoint and decodes the JSON body into out.
func (hc *HelixClient) get(ctx context.Context, endpoint string, q url.Values, out any) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "twitchapi", "helix."+endpoint,
		attribute.String("helix.endpoint", endpoint),
		attribute.String("helix.query", q.Encode()))
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.SetSpanSuccess(span)
		}
		span.End()
	}()
	log := telemetry.LoggerWithCorr(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.BaseURL+"/"+endpoint, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Client-Id", hc.ClientID)
	req.Header.Set("Authorization", "Bearer "+hc.Token)

	start := time.Now()
	resp, err := hc.http().Do(req)
	if err != nil {
		telemetry.ObserveHelixRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("helix %s: %w", endpoint, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	b, err := io.ReadAll(resp.Body)
	telemetry.ObserveHelixRequest(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("helix %s: read body: %w", endpoint, err)
	}
	log.Debug("helix response",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(b)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(b)}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("helix %s: decode: %w", endpoint, err)
	}
	return nil
}
