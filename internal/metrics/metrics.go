// Package metrics exposes the engine's Prometheus counters/histograms/
// gauges plus a /healthz endpoint, served together on one HTTP mux.
package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds every Prometheus metric the engine reports.
type Metrics struct {
	CandlesIngested   prometheus.Counter
	ReplayedFrames    prometheus.Counter
	ParseErrors       prometheus.Counter
	WSReconnects      prometheus.Counter
	IndicatorComputeDur prometheus.Histogram

	SignalsByGrade      *prometheus.CounterVec // labels: grade
	SignalsByDirection  *prometheus.CounterVec // labels: direction
	MarketStateGauge    *prometheus.GaugeVec   // labels: state (1 if current, else 0)
	VerificationChecked *prometheus.CounterVec // labels: horizon
	VerificationCorrect *prometheus.CounterVec // labels: horizon
	AccuracyRatio       *prometheus.GaugeVec   // labels: horizon

	E2ELatency prometheus.Histogram // candle close to signal publish

	RingBufOverflow prometheus.Counter
}

// NewMetrics constructs and registers every metric against the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CandlesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_candles_ingested_total",
			Help: "Total closed candles merged into the candle buffer",
		}),
		ReplayedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_replayed_frames_total",
			Help: "Frames dropped because they were older than the buffer's last closed candle",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_parse_errors_total",
			Help: "Malformed or non-finite frames dropped at ingest",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_ws_reconnects_total",
			Help: "Total exchange WebSocket reconnection attempts",
		}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalengine_indicator_compute_duration_seconds",
			Help:    "Time to recompute the full indicator snapshot for one candle",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		SignalsByGrade: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_signals_total",
			Help: "Emitted trading signals by grade",
		}, []string{"grade"}),
		SignalsByDirection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_signal_direction_total",
			Help: "Emitted trading signals by direction",
		}, []string{"direction"}),
		MarketStateGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signalengine_market_state",
			Help: "1 for the currently classified market state, 0 otherwise",
		}, []string{"state"}),
		VerificationChecked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_verification_checked_total",
			Help: "Verification probes performed, by horizon",
		}, []string{"horizon"}),
		VerificationCorrect: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_verification_correct_total",
			Help: "Verification probes resolved CORRECT, by horizon",
		}, []string{"horizon"}),
		AccuracyRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signalengine_verification_accuracy_ratio",
			Help: "Rolling correct/checked ratio, by horizon",
		}, []string{"horizon"}),
		E2ELatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalengine_e2e_latency_seconds",
			Help:    "Latency from candle close to signal publish",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		RingBufOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_ringbuf_overflow_total",
			Help: "Closed candles rejected because the candle ring was full",
		}),
	}

	prometheus.MustRegister(
		m.CandlesIngested,
		m.ReplayedFrames,
		m.ParseErrors,
		m.WSReconnects,
		m.IndicatorComputeDur,
		m.SignalsByGrade,
		m.SignalsByDirection,
		m.MarketStateGauge,
		m.VerificationChecked,
		m.VerificationCorrect,
		m.AccuracyRatio,
		m.E2ELatency,
		m.RingBufOverflow,
	)

	return m
}

// HealthStatus tracks liveness of the engine's external dependency: the
// exchange WebSocket feed.
type HealthStatus struct {
	mu sync.RWMutex

	WSConnected  bool      `json:"ws_connected"`
	LastTickTime time.Time `json:"last_tick_time"`
	StartedAt    time.Time `json:"started_at"`
}

// NewHealthStatus returns a fresh, unconnected health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetWSConnected(v bool) {
	h.mu.Lock()
	h.WSConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !h.WSConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	body := struct {
		Status       string `json:"status"`
		Uptime       string `json:"uptime"`
		WSConnected  bool   `json:"ws_connected"`
		LastTickTime string `json:"last_tick_time"`
		TickAge      string `json:"tick_age"`
	}{
		Status:       status,
		Uptime:       time.Since(h.StartedAt).Round(time.Second).String(),
		WSConnected:  h.WSConnected,
		LastTickTime: h.LastTickTime.Format(time.RFC3339),
		TickAge:      tickAge,
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(body)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server bound to addr.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv:    &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.addr).Msg("metrics: server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics: server error")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
