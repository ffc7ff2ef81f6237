package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard pipeline.
type Metrics struct {
	FetchesTotal   *prometheus.CounterVec // labels: source, outcome
	FallbacksTotal prometheus.Counter
	FetchDur       prometheus.Histogram

	AnalysisRuns prometheus.Counter
	AnalysisDur  prometheus.Histogram

	TicksTotal       prometheus.Counter
	DroppedTicks     prometheus.Counter
	StreamReconnects prometheus.Counter

	WSClients prometheus.Gauge

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coinsniper_fetches_total",
			Help: "History fetches by source and outcome",
		}, []string{"source", "outcome"}),
		FallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsniper_fallbacks_total",
			Help: "Times the fallback source was consulted after a primary failure",
		}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinsniper_fetch_duration_seconds",
			Help:    "Upstream history fetch latency",
			Buckets: prometheus.DefBuckets,
		}),

		AnalysisRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsniper_analysis_runs_total",
			Help: "Completed analysis cycles",
		}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinsniper_analysis_duration_seconds",
			Help:    "Full-bundle analysis latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsniper_ticks_total",
			Help: "Live ticker updates received from the stream",
		}),
		DroppedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsniper_dropped_ticks_total",
			Help: "Ticks dropped (re-analysis in flight or simulation active)",
		}),
		StreamReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsniper_stream_reconnects_total",
			Help: "Upstream stream reconnection attempts",
		}),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coinsniper_ws_clients",
			Help: "Currently connected dashboard WebSocket clients",
		}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsniper_cache_hits_total",
			Help: "Series cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsniper_cache_misses_total",
			Help: "Series cache misses",
		}),
	}

	prometheus.MustRegister(
		m.FetchesTotal,
		m.FallbacksTotal,
		m.FetchDur,
		m.AnalysisRuns,
		m.AnalysisDur,
		m.TicksTotal,
		m.DroppedTicks,
		m.StreamReconnects,
		m.WSClients,
		m.CacheHits,
		m.CacheMisses,
	)

	return m
}

// FetchDone implements fetcher.Observer.
func (m *Metrics) FetchDone(source, outcome string, dur time.Duration) {
	m.FetchesTotal.WithLabelValues(source, outcome).Inc()
	m.FetchDur.Observe(dur.Seconds())
}

// FallbackTried implements fetcher.Observer.
func (m *Metrics) FallbackTried() {
	m.FallbacksTotal.Inc()
}

// CacheHit implements fetcher.Observer.
func (m *Metrics) CacheHit(hit bool) {
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// HealthStatus represents pipeline health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	StreamConnected bool
	RedisConnected  bool
	LastTickTime    time.Time
	LastAnalysisAt  time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetStreamConnected(v bool) {
	h.mu.Lock()
	h.StreamConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastAnalysisAt(t time.Time) {
	h.mu.Lock()
	h.LastAnalysisAt = t
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint. A service that has produced at
// least one bundle is healthy; a dead stream degrades it but REST keeps
// serving the last bundle.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if h.LastAnalysisAt.IsZero() {
		overallStatus = "starting"
		httpCode = http.StatusServiceUnavailable
	} else if !h.StreamConnected {
		overallStatus = "degraded"
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string `json:"status"`
		Uptime          string `json:"uptime"`
		StreamConnected bool   `json:"stream_connected"`
		RedisConnected  bool   `json:"redis_connected"`
		TickAge         string `json:"tick_age"`
		LastAnalysisAt  string `json:"last_analysis_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		StreamConnected: h.StreamConnected,
		RedisConnected:  h.RedisConnected,
		TickAge:         tickAge,
		LastAnalysisAt:  h.LastAnalysisAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  *slog.Logger
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		log:  log,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("metrics server error", "err", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
