package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TWITCH_API_BASE", "TWITCH_TOKEN_URL", "TWITCH_GAMES", "OUTPUT_DIR", "HTTP_TIMEOUT", "METRICS_TEXTFILE"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TwitchAPIBase != DefaultAPIBase {
		t.Errorf("TwitchAPIBase = %q, want %q", cfg.TwitchAPIBase, DefaultAPIBase)
	}
	if cfg.TwitchTokenURL != DefaultTokenURL {
		t.Errorf("TwitchTokenURL = %q, want %q", cfg.TwitchTokenURL, DefaultTokenURL)
	}
	if diff := cmp.Diff(DefaultGames, cfg.Games); diff != "" {
		t.Errorf("Games mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Games) != 13 {
		t.Errorf("expected 13 default games, got %d", len(cfg.Games))
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", cfg.OutputDir)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %v, want 0", cfg.HTTPTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TWITCH_API_BASE", "http://localhost:9999/helix/")
	t.Setenv("TWITCH_GAMES", " GameA , ,GameB,")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("OUTPUT_DIR", "/tmp/out")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TwitchAPIBase != "http://localhost:9999/helix" {
		t.Errorf("TwitchAPIBase = %q, trailing slash not trimmed", cfg.TwitchAPIBase)
	}
	if diff := cmp.Diff([]string{"GameA", "GameB"}, cfg.Games); diff != "" {
		t.Errorf("Games mismatch (-want +got):\n%s", diff)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	for _, v := range []string{"soon", "-1s"} {
		t.Setenv("HTTP_TIMEOUT", v)
		if _, err := Load(); err == nil {
			t.Errorf("HTTP_TIMEOUT=%q: expected error", v)
		}
	}
}

func TestDefaultGamesNotAliased(t *testing.T) {
	t.Setenv("TWITCH_GAMES", "")
	cfg, _ := Load()
	cfg.Games[0] = "changed"
	if DefaultGames[0] == "changed" {
		t.Fatal("Load returned a slice sharing DefaultGames backing array")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		secret      string
		errContains []string
	}{
		{name: "both set", id: "id", secret: "secret"},
		{name: "missing id", secret: "secret", errContains: []string{"TWITCH_CLIENT_ID"}},
		{name: "missing secret", id: "id", errContains: []string{"TWITCH_CLIENT_SECRET"}},
		{name: "missing both", errContains: []string{"TWITCH_CLIENT_ID", "TWITCH_CLIENT_SECRET"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TWITCH_CLIENT_ID", tt.id)
			t.Setenv("TWITCH_CLIENT_SECRET", tt.secret)
			cfg, _ := Load()
			err := cfg.Validate()
			if len(tt.errContains) == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
			for _, s := range tt.errContains {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("Validate() = %v, want mention of %s", err, s)
				}
			}
		})
	}
}
