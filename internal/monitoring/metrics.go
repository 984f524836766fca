package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	CellsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faultskin_cells_detected_total",
		Help: "Cells emitted by ridge detection.",
	})

	CellsRedetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faultskin_cells_redetected_total",
		Help: "Cells created by local re-detection during stall recovery.",
	})

	SkinsGrown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faultskin_skins_grown_total",
		Help: "Skins completed by growth, before size filtering.",
	})

	SkinsRetained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faultskin_skins_retained_total",
		Help: "Skins kept after size filtering.",
	})

	Recoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faultskin_recoveries_total",
		Help: "Stall recovery attempts by outcome.",
	}, []string{"outcome"})

	GrowDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "faultskin_grow_duration_seconds",
		Help:    "Wall time of one GrowSkins call.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

// Tracer returns the named tracer from the global provider. Without an SDK
// installed the spans are no-ops.
func Tracer(name string) trace.Tracer {
	return otel.Tracer("github.com/banshee-data/faultskin/" + name)
}
