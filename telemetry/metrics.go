// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	HelixRequests       *prometheus.CounterVec // labels: endpoint, code
	GamesResolved       prometheus.Counter
	GamesSkipped        prometheus.Counter
	StreamLookupsFailed prometheus.Counter

	// Histograms (seconds)
	HelixRequestDuration *prometheus.HistogramVec // labels: endpoint
	RunDuration          prometheus.Observer

	// Gauges
	SnapshotRows     prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		HelixRequests = promauto.NewCounterVec(prometheus.CounterOpts{Name: "viewratio_helix_requests_total", Help: "Helix API requests by endpoint and HTTP status code (0 = transport error)"}, []string{"endpoint", "code"})
		GamesResolved = promauto.NewCounter(prometheus.CounterOpts{Name: "viewratio_games_resolved_total", Help: "Game titles resolved to a Twitch game id"})
		GamesSkipped = promauto.NewCounter(prometheus.CounterOpts{Name: "viewratio_games_skipped_total", Help: "Game titles dropped because the catalog lookup failed"})
		StreamLookupsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "viewratio_stream_lookups_failed_total", Help: "Stream lookups that failed and were zero-filled"})
		HelixRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: "viewratio_helix_request_duration_seconds", Help: "Helix request duration seconds", Buckets: prometheus.DefBuckets}, []string{"endpoint"})
		RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "viewratio_run_duration_seconds", Help: "Duration of a full collection run", Buckets: prometheus.DefBuckets})
		SnapshotRows = promauto.NewGauge(prometheus.GaugeOpts{Name: "viewratio_snapshot_rows", Help: "Rows written to the last snapshot"})
		LastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{Name: "viewratio_last_run_timestamp_seconds", Help: "Unix time the last snapshot was written"})
	})
}

// ObserveHelixRequest records one Helix call. A status of 0 means the request never got a response.
func ObserveHelixRequest(endpoint string, status int, d time.Duration) {
	if HelixRequests != nil {
		HelixRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	}
	if HelixRequestDuration != nil {
		HelixRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

// Inc increments c if it has been registered.
func Inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// RecordSnapshot sets the snapshot gauges.
func RecordSnapshot(rows int, at time.Time) {
	if SnapshotRows != nil {
		SnapshotRows.Set(float64(rows))
	}
	if LastRunTimestamp != nil {
		LastRunTimestamp.Set(float64(at.Unix()))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// WriteTextfile dumps the default registry in the node_exporter textfile format.
// A no-op when path is empty.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context carrying the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
