package twitchapi

import (
	"net/http"
	"time"
)

const UserAgent = "view-ratio/1.0"

type uaRoundTripper struct {
	rt http.RoundTripper
}

func (u *uaRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", UserAgent)
	return u.rt.RoundTrip(req)
}

// NewHTTPClient returns a client that tags requests with UserAgent.
// A zero timeout leaves requests unbounded.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &uaRoundTripper{rt: http.DefaultTransport},
	}
}
