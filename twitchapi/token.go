package twitchapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/onnwee/view-ratio/telemetry"
)

// TokenConfig holds what the client credentials grant needs.
type TokenConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client
}

// AcquireAppToken exchanges the client id/secret for an app access token.
// The token is not cached or refreshed; one token serves a whole run.
// NOTE: app tokens are only good for Helix calls, not IRC chat.
func AcquireAppToken(ctx context.Context, tc TokenConfig) (string, error) {
	if tc.ClientID == "" || tc.ClientSecret == "" {
		return "", errors.New("missing client id/secret for twitch app token")
	}
	log := telemetry.LoggerWithCorr(ctx)

	cc := &clientcredentials.Config{
		ClientID:     tc.ClientID,
		ClientSecret: tc.ClientSecret,
		TokenURL:     tc.TokenURL,
		// Twitch wants the credentials as form params, not basic auth.
		AuthStyle: oauth2.AuthStyleInParams,
	}
	if tc.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, tc.HTTPClient)
	}

	log.Info("authenticating with twitch", slog.String("token_url", tc.TokenURL))
	tok, err := cc.Token(ctx)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			log.Error("twitch token request failed",
				slog.Int("status", re.Response.StatusCode),
				slog.String("body", string(re.Body)))
			return "", fmt.Errorf("twitch token request failed: %s: %s", re.Response.Status, string(re.Body))
		}
		log.Error("twitch token request failed", slog.Any("err", err))
		return "", fmt.Errorf("twitch token request: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("empty access_token in twitch response")
	}
	log.Info("twitch app token acquired", slog.String("tail", maskToken(tok.AccessToken)))
	return tok.AccessToken, nil
}

func maskToken(tok string) string {
	if len(tok) <= 6 {
		return "***"
	}
	return "***" + tok[len(tok)-6:]
}
