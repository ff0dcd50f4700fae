package annotator

import (
	"context"
	"errors"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts annotation runs.
type Metrics struct {
	records       *prometheus.CounterVec
	dataElements  prometheus.Counter
	sidecarWrites prometheus.Counter
	errors        *prometheus.CounterVec
}

// NewMetrics creates the annotation counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nidm_annotate_records_total",
			Help: "Annotation records normalized, by source dialect.",
		}, []string{"dialect"}),
		dataElements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nidm_annotate_data_elements_total",
			Help: "Data element entities emitted into the graph.",
		}),
		sidecarWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nidm_annotate_sidecar_writes_total",
			Help: "Annotation sidecar files written.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nidm_annotate_errors_total",
			Help: "Failed annotation runs, by error kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.records, m.dataElements, m.sidecarWrites, m.errors)
	}
	return m
}

func (m *Metrics) recordRun(dialect annotation.Dialect, records int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(dialect.String()).Add(float64(records))
	m.dataElements.Add(float64(records))
	m.sidecarWrites.Inc()
}

func (m *Metrics) recordError(err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, annotation.ErrValidation):
		return "validation"
	case errors.Is(err, annotation.ErrConfiguration):
		return "configuration"
	case errors.Is(err, annotation.ErrLookup):
		return "lookup"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "io"
	}
}
