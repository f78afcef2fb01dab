// Package metrics holds the Prometheus collectors for store operations.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starford/folio/internal/apperr"
)

var (
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_store_operations_total",
		Help: "Store operations by name and result",
	}, []string{"op", "result"})

	storeOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_store_operation_duration_seconds",
		Help:    "Time to execute a store operation, load and save included",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"op"})

	saveBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "folio_store_save_bytes",
		Help:    "Size of the serialized aggregate per save",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	loads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_store_loads_total",
		Help: "Loads by snapshot source",
	}, []string{"source"})
)

// Result labels an operation outcome.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	case errors.Is(err, apperr.ErrIntegrity):
		return "integrity"
	case errors.Is(err, apperr.ErrInvalid):
		return "invalid"
	}
	return "error"
}

// ObserveOp records one store operation started at start.
func ObserveOp(op string, start time.Time, err error) {
	storeOps.WithLabelValues(op, Result(err)).Inc()
	storeOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveSave records the size of a persisted aggregate.
func ObserveSave(n int) {
	saveBytes.Observe(float64(n))
}

// ObserveLoad counts a load by its snapshot source.
func ObserveLoad(source string) {
	loads.WithLabelValues(source).Inc()
}
