// Package config loads environment variables and provides a typed Config used across the tool.
// Optional settings have defaults so a run only needs the two Twitch credentials.
// Call Validate before making any network request.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultAPIBase  = "https://api.twitch.tv/helix"
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"
)

// DefaultGames is the title list polled when TWITCH_GAMES is unset.
var DefaultGames = []string{
	"War Thunder",
	"Surviving Mars",
	"Spintires",
	"Prison Architect",
	"PC Building Simulator",
	"METAL GEAR SOLID V: THE PHANTOM PAIN",
	"Hitman: Blood Money",
	"Game Dev Tycoon",
	"Delta Force",
	"Arma 3",
	"HELLDIVERS 2",
	"Valorant",
	"League of Legends",
}

type Config struct {
	// Twitch
	TwitchClientID     string
	TwitchClientSecret string
	TwitchAPIBase      string
	TwitchTokenURL     string

	// Games polled, in output order
	Games []string

	// Output
	OutputDir       string
	MetricsTextfile string

	// HTTP; zero means no client timeout
	HTTPTimeout time.Duration
}

// Load reads environment variables and applies defaults. It doesn't fail if the Twitch
// credentials are missing; use Validate for that.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchClientID = strings.TrimSpace(os.Getenv("TWITCH_CLIENT_ID"))
	cfg.TwitchClientSecret = strings.TrimSpace(os.Getenv("TWITCH_CLIENT_SECRET"))

	cfg.TwitchAPIBase = strings.TrimRight(os.Getenv("TWITCH_API_BASE"), "/")
	if cfg.TwitchAPIBase == "" {
		cfg.TwitchAPIBase = DefaultAPIBase
	}
	cfg.TwitchTokenURL = os.Getenv("TWITCH_TOKEN_URL")
	if cfg.TwitchTokenURL == "" {
		cfg.TwitchTokenURL = DefaultTokenURL
	}

	cfg.Games = splitAndTrim(os.Getenv("TWITCH_GAMES"))
	if len(cfg.Games) == 0 {
		cfg.Games = append([]string(nil), DefaultGames...)
	}

	cfg.OutputDir = os.Getenv("OUTPUT_DIR")
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	cfg.MetricsTextfile = os.Getenv("METRICS_TEXTFILE")

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: negative duration %s", d)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

// Validate reports each missing credential by name.
func (c *Config) Validate() error {
	var errs []error
	if c.TwitchClientID == "" {
		errs = append(errs, errors.New("TWITCH_CLIENT_ID is not set"))
	}
	if c.TwitchClientSecret == "" {
		errs = append(errs, errors.New("TWITCH_CLIENT_SECRET is not set"))
	}
	return errors.Join(errs...)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
