// Package observability exposes Prometheus metrics for the day-processing
// engine. Served on /metrics when enabled in config.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Engine Metrics ─────────────────────────────────────────────────────────

// DaysProcessed counts successful process-day invocations.
var DaysProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "streax_days_processed_total",
	Help: "Total successful day-processing calls.",
})

// XPAwarded counts XP granted across all users.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "streax_xp_awarded_total",
	Help: "Total XP awarded by the engine.",
})

// LevelUps counts level advancements (a multi-level award counts each level).
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Name: "streax_level_ups_total",
	Help: "Total level advancements.",
})

// StreakResets counts streaks broken by a gap or a missed required day.
var StreakResets = promauto.NewCounter(prometheus.CounterOpts{
	Name: "streax_streak_resets_total",
	Help: "Total streak resets.",
})

// ProcessErrors counts failed process-day calls by error kind.
var ProcessErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streax_process_errors_total",
	Help: "Failed day-processing calls by kind.",
}, []string{"kind"})

// ProcessDuration observes end-to-end process-day latency.
var ProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "streax_process_duration_seconds",
	Help:    "Day-processing call duration.",
	Buckets: prometheus.DefBuckets,
})
