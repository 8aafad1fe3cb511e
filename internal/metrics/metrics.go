package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_companion_analyses_total",
			Help: "Total number of resume analyses by mode and outcome kind",
		},
		[]string{"mode", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "job_companion_upstream_duration_seconds",
			Help:    "Duration of generateContent calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"backend", "status"},
	)

	DocumentsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_companion_documents_extracted_total",
			Help: "Total number of uploaded documents processed by detected type",
		},
		[]string{"type", "status"},
	)

	DatasetQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "job_companion_dataset_queries_total",
			Help: "Total number of salary dataset filter queries",
		},
	)

	DatasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "job_companion_dataset_rows",
			Help: "Number of rows in the loaded salary dataset",
		},
	)
)
