package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reservations counts lifecycle outcomes by operation and result.
	Reservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "biblio",
		Name:      "reservations_total",
		Help:      "Lifecycle operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// Uploads counts avatar uploads against the external image host.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "biblio",
		Name:      "image_uploads_total",
		Help:      "Image host uploads by outcome.",
	}, []string{"outcome"})
)

// ObserveOp records one lifecycle operation outcome.
func ObserveOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Reservations.WithLabelValues(operation, outcome).Inc()
}
