// Package metrics exposes Prometheus metrics and a health endpoint for the
// shark surveillance pipeline.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the detection pipeline.
type Metrics struct {
	TicksTotal     prometheus.Counter
	MalformedTicks prometheus.Counter
	FeedReconnects prometheus.Counter

	SharkOrders        *prometheus.CounterVec // label: side
	EvaluationsFired   prometheus.Counter
	EvaluationsDropped prometheus.Counter
	CooldownSuppressed prometheus.Counter
	LunchSuppressed    prometheus.Counter

	Approvals      prometheus.Counter
	Rejections     *prometheus.CounterVec // label: reason
	NotifyFailures prometheus.Counter

	HistoryFetchDur prometheus.Histogram
	JudgeDuration   prometheus.Histogram
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_ticks_total",
			Help: "Total ticks received from the feed",
		}),
		MalformedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_malformed_ticks_total",
			Help: "Ticks skipped due to malformed payloads",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_feed_reconnects_total",
			Help: "Feed WebSocket reconnection attempts",
		}),
		SharkOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharkwatch_shark_orders_total",
			Help: "Orders above the shark notional threshold",
		}, []string{"side"}),
		EvaluationsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_evaluations_fired_total",
			Help: "Evaluations dispatched to the judge worker pool",
		}),
		EvaluationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_evaluations_dropped_total",
			Help: "Evaluations dropped because the worker queue was full",
		}),
		CooldownSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_cooldown_suppressed_total",
			Help: "Fire attempts suppressed by the (symbol, side) cooldown",
		}),
		LunchSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_lunch_suppressed_total",
			Help: "Fire attempts suppressed during the lunch window",
		}),
		Approvals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_approvals_total",
			Help: "Signals approved by the judge",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharkwatch_rejections_total",
			Help: "Signals rejected by the judge, by kill switch",
		}, []string{"reason"}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharkwatch_notify_failures_total",
			Help: "Alert deliveries that failed (best-effort, logged only)",
		}),
		HistoryFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sharkwatch_history_fetch_seconds",
			Help:    "Historical bar fetch duration",
			Buckets: prometheus.DefBuckets,
		}),
		JudgeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sharkwatch_judge_seconds",
			Help:    "Full analysis + judge evaluation duration",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.MalformedTicks,
		m.FeedReconnects,
		m.SharkOrders,
		m.EvaluationsFired,
		m.EvaluationsDropped,
		m.CooldownSuppressed,
		m.LunchSuppressed,
		m.Approvals,
		m.Rejections,
		m.NotifyFailures,
		m.HistoryFetchDur,
		m.JudgeDuration,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	FeedConnected  bool      `json:"feed_connected"`
	LastTickTime   time.Time `json:"last_tick_time"`
	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`

	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetFeedConnected(v bool) {
	h.mu.Lock()
	h.FeedConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.FeedConnected || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		FeedConnected   bool    `json:"feed_connected"`
		LastTickTime    string  `json:"last_tick_time"`
		TickAge         string  `json:"tick_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		FeedConnected:   h.FeedConnected,
		LastTickTime:    h.LastTickTime.Format(time.RFC3339),
		TickAge:         tickAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
