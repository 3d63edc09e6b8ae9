// Package metrics exposes Prometheus counters for capture sessions and
// highlighting. All methods are safe on a nil *Metrics so components can be
// built without instrumentation.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/events"
)

// Drop reasons for LinesDropped.
const (
	DropUnparsed  = "unparsed"
	DropUntracked = "untracked"
)

// Metrics holds all collectors on a private registry.
type Metrics struct {
	BytesRead       prometheus.Counter
	LinesRead       prometheus.Counter
	LinesDropped    *prometheus.CounterVec
	Truncations     prometheus.Counter
	Events          *prometheus.CounterVec
	Failures        prometheus.Counter
	AppRunning      prometheus.Gauge
	Searches        prometheus.Counter
	SearchMatches   prometheus.Counter
	SearchDuration  prometheus.Histogram
	HighlightQueued prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		BytesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidlog_bytes_read_total",
			Help: "Bytes read from the logcat stream",
		}),
		LinesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidlog_lines_total",
			Help: "Complete lines assembled from the logcat stream",
		}),
		LinesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "droidlog_lines_dropped_total",
			Help: "Lines not forwarded to the consumer",
		}, []string{"reason"}),
		Truncations: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidlog_fragment_truncations_total",
			Help: "Oversized unterminated fragments flushed as lines",
		}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "droidlog_events_total",
			Help: "Events published to the consumer",
		}, []string{"kind"}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidlog_stream_failures_total",
			Help: "Capture sessions that ended with a transport failure",
		}),
		AppRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "droidlog_app_running",
			Help: "1 while the tracked application has live processes",
		}),
		Searches: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidlog_highlight_searches_total",
			Help: "Pattern searches executed",
		}),
		SearchMatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidlog_highlight_matches_total",
			Help: "Match results produced by pattern searches",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "droidlog_highlight_search_duration_seconds",
			Help:    "Time spent in a single pattern search",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}),
		HighlightQueued: factory.NewGauge(prometheus.GaugeOpts{
			Name: "droidlog_highlight_pending",
			Help: "Highlight requests waiting for a worker",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveBytes counts bytes read from the transport.
func (m *Metrics) ObserveBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesRead.Add(float64(n))
}

// ObserveLine counts an assembled line.
func (m *Metrics) ObserveLine() {
	if m == nil {
		return
	}
	m.LinesRead.Inc()
}

// ObserveDrop counts a line that was not forwarded.
func (m *Metrics) ObserveDrop(reason string) {
	if m == nil {
		return
	}
	m.LinesDropped.WithLabelValues(reason).Inc()
}

// ObserveTruncations adds n force-flushed fragments.
func (m *Metrics) ObserveTruncations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Truncations.Add(float64(n))
}

// ObserveEvent counts a published event and tracks app liveness.
func (m *Metrics) ObserveEvent(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	m.Events.WithLabelValues(evt.Kind().String()).Inc()
	switch evt.(type) {
	case events.AppStarted:
		m.AppRunning.Set(1)
	case events.AppEnded:
		m.AppRunning.Set(0)
	case events.Failed:
		m.Failures.Inc()
	}
}

// ObserveSearch records one search call.
func (m *Metrics) ObserveSearch(matches int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Searches.Inc()
	m.SearchMatches.Add(float64(matches))
	m.SearchDuration.Observe(elapsed.Seconds())
}

// SetPending reports how many highlight requests are waiting.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.HighlightQueued.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
