package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expedientes_analyses_total",
		Help: "Completed case analyses by outcome.",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "expedientes_analysis_duration_seconds",
		Help:    "Wall time of the full analysis pipeline per case.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expedientes_searches_total",
		Help: "Legal context searches by outcome.",
	}, []string{"outcome"})

	schemaViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "expedientes_schema_violations_total",
		Help: "Model responses that failed the advisory response-shape check.",
	})

	casesPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "expedientes_cases_pruned_total",
		Help: "Cases evicted by the retention sweep.",
	})
)

// ObservePruned records cases evicted by the retention sweep.
func ObservePruned(n int) {
	casesPrunedTotal.Add(float64(n))
}
