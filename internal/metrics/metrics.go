package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/celerix-dev/cadastro/internal/validator"
	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Metrics holds the Prometheus collectors for validation activity.
type Metrics struct {
	RecordsValidated *prometheus.CounterVec
	FieldFailures    *prometheus.CounterVec
	BatchSize        prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RecordsValidated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_records_validated_total",
			Help: "Total number of registration records validated, by status",
		}, []string{"status"}),
		FieldFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_field_failures_total",
			Help: "Total number of failed field checks, by field",
		}, []string{"field"}),
		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cadastro_batch_size_records",
			Help:    "Number of records per validated batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// ObserveRecord counts one validated record and its failing fields.
func (m *Metrics) ObserveRecord(status schema.Status, failures []validator.Failure) {
	m.RecordsValidated.WithLabelValues(string(status)).Inc()
	for _, f := range failures {
		m.FieldFailures.WithLabelValues(f.Field).Inc()
	}
}

// ObserveBatch records the size of a batch.
func (m *Metrics) ObserveBatch(size int) {
	m.BatchSize.Observe(float64(size))
}
