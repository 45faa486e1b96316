// Package report turns a list of game titles into one row of viewer, channel and
// ratio figures per title.
//
// Titles that cannot be resolved are dropped. Titles whose stream lookup fails are
// kept with zero counts and flagged with StreamsFailed.
package report

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/view-ratio/telemetry"
	"github.com/onnwee/view-ratio/twitchapi"
)

// TimestampLayout is how Row.Timestamp is rendered in snapshots.
const TimestampLayout = "2006-01-02 15:04:05"

// Source is the subset of the Helix client the reporter needs.
type Source interface {
	GetGame(ctx context.Context, name string) (twitchapi.Game, error)
	GetStreamTotals(ctx context.Context, gameID string) (twitchapi.StreamTotals, error)
}

// Row is one game's figures at the moment they were fetched.
type Row struct {
	Game      string
	Viewers   int
	Channels  int
	Ratio     float64
	Timestamp time.Time

	// StreamsFailed marks a row zero-filled after a failed stream lookup.
	StreamsFailed bool
}

// Table is a run's rows in title order.
type Table []Row

// Ratio returns viewers per channel, or 0 when there are no channels.
func Ratio(viewers, channels int) float64 {
	if channels <= 0 {
		return 0
	}
	return float64(viewers) / float64(channels)
}

type Reporter struct {
	Source Source
	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Reporter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Collect fetches each title in order, one at a time. If ctx is cancelled the rows
// gathered so far are returned.
func (r *Reporter) Collect(ctx context.Context, titles []string) Table {
	ctx, span := telemetry.StartSpan(ctx, "report", "report.collect", attribute.Int("titles", len(titles)))
	defer span.End()
	log := telemetry.LoggerWithCorr(ctx)

	table := make(Table, 0, len(titles))
	for _, title := range titles {
		if ctx.Err() != nil {
			log.Warn("collection interrupted", slog.Int("collected", len(table)), slog.Any("err", ctx.Err()))
			telemetry.RecordError(span, ctx.Err())
			return table
		}
		row, ok := r.collectOne(ctx, log, title)
		if !ok {
			continue
		}
		table = append(table, row)
	}
	span.SetAttributes(attribute.Int("rows", len(table)))
	telemetry.SetSpanSuccess(span)
	return table
}

func (r *Reporter) collectOne(ctx context.Context, log *slog.Logger, title string) (Row, bool) {
	log = log.With(slog.String("game", title))
	log.Info("fetching game data")

	game, err := r.Source.GetGame(ctx, title)
	if err != nil {
		log.Warn("game data not found, skipping", slog.Any("err", err))
		telemetry.Inc(telemetry.GamesSkipped)
		return Row{}, false
	}
	telemetry.Inc(telemetry.GamesResolved)

	row := Row{Game: title}
	totals, err := r.Source.GetStreamTotals(ctx, game.ID)
	if err != nil {
		log.Warn("stream lookup failed, recording zero counts", slog.String("game_id", game.ID), slog.Any("err", err))
		telemetry.Inc(telemetry.StreamLookupsFailed)
		row.StreamsFailed = true
	} else {
		row.Viewers = totals.Viewers
		row.Channels = totals.Channels
	}
	row.Ratio = Ratio(row.Viewers, row.Channels)
	row.Timestamp = r.now()

	log.Info("game stats",
		slog.String("game_id", game.ID),
		slog.Int("viewers", row.Viewers),
		slog.Int("channels", row.Channels),
		slog.Float64("ratio", row.Ratio))
	return row, true
}
