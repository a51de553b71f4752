package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uberpack_classpath_entries_processed",
			Help: "Number of classpath entries processed, by classification",
		},
		[]string{"kind"},
	)

	CollisionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uberpack_collisions_resolved",
			Help: "Number of filename collisions resolved, by strategy",
		},
		[]string{"strategy"},
	)

	FilesExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uberpack_files_excluded",
			Help: "Number of files dropped by the exclusion filter",
		},
	)

	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uberpack_build_duration_seconds",
			Help:    "Uberjar build duration in seconds",
			Buckets: []float64{0.1, 0.2, 0.5, 1, 1.5, 2, 5, 10, 30, 60},
		},
	)

	buildsSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uberpack_builds_succeeded",
			Help: "Number of builds that completed successfully",
		},
	)

	buildsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uberpack_builds_failed",
			Help: "Number of builds that aborted with an error",
		},
	)
)

func BuildSucceeded(start time.Time) {
	buildsSucceeded.Inc()
	buildDuration.Observe(time.Since(start).Seconds())
}

func BuildFailed() {
	buildsFailed.Inc()
}
