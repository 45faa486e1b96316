// Command view-ratio takes one snapshot of Twitch viewer-to-channel ratios.
// It:
//   - Loads configuration and initializes structured logging.
//   - Exchanges the client id/secret for an app access token.
//   - Resolves each configured game, sums the first page of its live streams and
//     computes viewers per channel.
//   - Writes the rows to real_time_game_stats_<YYYYMMDD_HHMMSS>.csv.
//
// Exit status is 1 when credentials are missing, authentication fails or the
// snapshot cannot be written. Skipped games do not affect the exit status.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/onnwee/view-ratio/config"
	"github.com/onnwee/view-ratio/report"
	"github.com/onnwee/view-ratio/snapshot"
	"github.com/onnwee/view-ratio/telemetry"
	"github.com/onnwee/view-ratio/twitchapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

// setupLogging configures the default slog logger from LOG_LEVEL and LOG_FORMAT.
// Defaults: level=info, format=text.
func setupLogging() {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		return 1
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("missing twitch credentials", slog.Any("err", err))
		return 1
	}

	telemetry.Init()
	defer func() {
		if err := telemetry.WriteTextfile(cfg.MetricsTextfile); err != nil {
			slog.Warn("failed to write metrics textfile", slog.String("path", cfg.MetricsTextfile), slog.Any("err", err))
		}
	}()

	shutdown, err := telemetry.InitTracing("view-ratio", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		return 1
	}
	defer shutdown()

	runID := uuid.NewString()
	ctx = telemetry.WithCorrelation(ctx, runID)
	log := telemetry.LoggerWithCorr(ctx)
	log.Info("starting run", slog.Int("games", len(cfg.Games)))

	httpClient := twitchapi.NewHTTPClient(cfg.HTTPTimeout)
	token, err := twitchapi.AcquireAppToken(ctx, twitchapi.TokenConfig{
		ClientID:     cfg.TwitchClientID,
		ClientSecret: cfg.TwitchClientSecret,
		TokenURL:     cfg.TwitchTokenURL,
		HTTPClient:   httpClient,
	})
	if err != nil {
		log.Error("failed to authenticate with twitch", slog.Any("err", err))
		return 1
	}

	reporter := &report.Reporter{
		Source: &twitchapi.HelixClient{
			BaseURL:    cfg.TwitchAPIBase,
			ClientID:   cfg.TwitchClientID,
			Token:      token,
			HTTPClient: httpClient,
		},
	}
	var table report.Table
	elapsed := telemetry.TimeFunc(telemetry.RunDuration, func() {
		table = reporter.Collect(ctx, cfg.Games)
	})
	log.Info("collection finished",
		slog.Int("rows", len(table)),
		slog.Int("skipped", len(cfg.Games)-len(table)),
		slog.Duration("elapsed", elapsed))

	now := time.Now()
	path, err := snapshot.Write(cfg.OutputDir, table, now)
	if err != nil {
		log.Error("failed to write snapshot", slog.Any("err", err))
		return 1
	}
	telemetry.RecordSnapshot(len(table), now)
	log.Info("data saved", slog.String("path", path))
	return 0
}
