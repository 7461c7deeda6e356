package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	revisionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "javacg_revisions_processed_total",
		Help: "Number of processed Maven revisions by outcome status.",
	}, []string{"status"})

	revisionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "javacg_revision_failures_total",
		Help: "Number of failed revisions by failure kind.",
	}, []string{"kind"})

	revisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javacg_revision_duration_seconds",
		Help:    "Time spent generating a single revision call graph.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
