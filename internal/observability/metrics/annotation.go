package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnnotationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annotations_created_total",
			Help: "Total number of annotations created",
		},
	)

	AnnotationsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annotations_deleted_total",
			Help: "Total number of annotations deleted",
		},
	)

	// Deletes where the caller is not the annotation's owner. The delete
	// endpoint allows them; the counter makes them visible.
	AnnotationsCrossUserDeletes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annotations_cross_user_deletes_total",
			Help: "Total number of deletes targeting another user's annotation",
		},
	)

	EventClientsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_clients_active",
			Help: "Number of connected annotation event feed clients",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of annotation events published to the feed",
		},
		[]string{"type"},
	)
)
