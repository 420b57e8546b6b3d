package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/hogsvd"
	"gonum.org/v1/gonum/mat"
)

func TestPrometheus_RecordDecomposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	d, err := hogsvd.New(hogsvd.WithMetrics(p))
	require.NoError(t, err)

	ds := []mat.Matrix{
		mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 7}),
		mat.NewDense(2, 2, []float64{2, 1, 1, 3}),
	}
	_, err = d.Decompose(context.Background(), ds...)
	require.NoError(t, err)

	_, err = d.Decompose(context.Background(), ds[0], mat.NewDense(2, 3, nil))
	require.ErrorIs(t, err, hogsvd.ErrDimensionMismatch)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.decompositions.WithLabelValues("multi-general", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.decompositions.WithLabelValues("multi-general", "dimension_mismatch")))

	// The failed run is rejected before the first stage, which adds no series.
	count, err := testutil.GatherAndCount(reg, "hogsvd_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)
	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	test := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("wrapped: %w", hogsvd.ErrSingularCrossProduct), "singular_cross_product"},
		{hogsvd.ErrDegenerateColumn, "degenerate_column"},
		{hogsvd.ErrNumericalError, "numerical_error"},
		{hogsvd.ErrSingularSharedBasis, "singular_shared_basis"},
		{hogsvd.ErrInvalidOption, "error"},
	}
	for _, tt := range test {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestPrometheus_RecordStage(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.RecordStage("aggregate", 2*time.Millisecond)
	p.RecordStage("aggregate", 3*time.Millisecond)
	p.RecordStage("subspace", time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "hogsvd_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
