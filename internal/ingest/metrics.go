package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estatebi_ingest_rows_total",
			Help: "Rows seen by the ingestion pipeline by outcome",
		},
		[]string{"outcome"}, // processed, invalid, store_error
	)

	batchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estatebi_ingest_batches_total",
			Help: "Completed ingestion batches by status",
		},
		[]string{"status"},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "estatebi_ingest_batch_duration_seconds",
			Help:    "Wall time spent ingesting one batch",
			Buckets: prometheus.DefBuckets,
		},
	)
)
