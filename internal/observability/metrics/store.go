package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_flushes_total",
			Help: "Total number of document flushes to disk",
		},
	)

	StoreFlushErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_flush_errors_total",
			Help: "Total number of failed document flushes",
		},
	)

	StoreFlushDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_flush_duration_seconds",
			Help:    "Duration of document flushes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	StoreDocumentUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_document_users",
			Help: "Number of users in the store document",
		},
	)

	StoreDocumentAnnotations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_document_annotations",
			Help: "Number of annotations in the store document",
		},
	)
)
