package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	PollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jfswatch_polls_total",
		Help: "Total number of polling cycles completed.",
	})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jfswatch_poll_seconds",
		Help:    "Time spent resolving and diffing one polling cycle.",
		Buckets: prometheus.DefBuckets,
	})

	WatchedPaths = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jfswatch_watched_paths",
		Help: "Number of paths currently tracked in the snapshot.",
	})

	ChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jfswatch_changes_total",
		Help: "Total number of detected file changes.",
	}, []string{"kind"})

	ResolutionWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jfswatch_resolution_warnings_total",
		Help: "Total number of cycles in which at least one watch path was unreadable.",
	})

	CommandExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jfswatch_command_executions_total",
		Help: "Total number of triggered command runs by outcome.",
	}, []string{"outcome"})

	CommandDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jfswatch_command_seconds",
		Help:    "Wall time of each triggered command run.",
		Buckets: prometheus.DefBuckets,
	})
)
