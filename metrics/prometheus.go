// Package metrics exports decomposition metrics to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yyyoichi/hogsvd"
)

var _ hogsvd.MetricsCollector = (*Prometheus)(nil)

// Prometheus implements hogsvd.MetricsCollector.
type Prometheus struct {
	decompositions *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	stageDuration  *prometheus.HistogramVec
	matrices       prometheus.Histogram
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		decompositions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hogsvd_decompositions_total",
				Help: "Total number of decompositions by path and outcome.",
			},
			[]string{"path", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hogsvd_decomposition_duration_seconds",
				Help:    "Duration of decompositions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hogsvd_stage_duration_seconds",
				Help:    "Duration of the stages of the general path.",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
			[]string{"stage"},
		),
		matrices: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hogsvd_input_matrices",
				Help:    "Number of matrices per decomposition.",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 16, 32},
			},
		),
	}
	for _, c := range []prometheus.Collector{p.decompositions, p.duration, p.stageDuration, p.matrices} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordDecomposition(path hogsvd.Path, matrices int, duration time.Duration, err error) {
	p.decompositions.WithLabelValues(path.String(), Outcome(err)).Inc()
	p.duration.WithLabelValues(path.String()).Observe(duration.Seconds())
	p.matrices.Observe(float64(matrices))
}

func (p *Prometheus) RecordStage(stage string, duration time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// Outcome maps err onto a bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, hogsvd.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, hogsvd.ErrSingularCrossProduct):
		return "singular_cross_product"
	case errors.Is(err, hogsvd.ErrNumericalError):
		return "numerical_error"
	case errors.Is(err, hogsvd.ErrSingularSharedBasis):
		return "singular_shared_basis"
	case errors.Is(err, hogsvd.ErrDegenerateColumn):
		return "degenerate_column"
	}
	return "error"
}
