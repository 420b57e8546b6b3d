package hogsvd

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Subspace is the shared right basis with its eigenvalues, both in the
// canonical column order.
type Subspace struct {
	Values []float64
	Basis  *mat.Dense
}

// SharedSubspace eigen-decomposes the aggregate and orders the eigenpairs
// by cfg.Ordering. The sort is stable, so equal eigenvalues keep the
// solver's order. Each eigenvector is flipped so that its largest
// component is positive.
func SharedSubspace(cfg Config, s mat.Matrix) (*Subspace, error) {
	values, vectors, err := cfg.Backend.Eigen(s, cfg.SymmetryTolerance)
	if err != nil {
		return nil, newError(StageSubspace, fmt.Errorf("%w: %w", ErrNumericalError, err))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newError(StageSubspace, fmt.Errorf("%w: eigenvalue %d is %v", ErrNumericalError, i, v))
		}
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cfg.Ordering.compare(values[a], values[b])
	})

	n, _ := vectors.Dims()
	sorted := make([]float64, len(order))
	basis := mat.NewDense(n, len(order), nil)
	col := make([]float64, n)
	for k, i := range order {
		sorted[k] = values[i]
		mat.Col(col, i, vectors)
		orient(col)
		basis.SetCol(k, col)
	}
	return &Subspace{Values: sorted, Basis: basis}, nil
}

// orient negates v when its largest-magnitude entry (the first one on
// ties) is negative.
func orient(v []float64) {
	at, largest := 0, -1.0
	for i, x := range v {
		if a := math.Abs(x); a > largest {
			at, largest = i, a
		}
	}
	if len(v) == 0 || v[at] >= 0 {
		return
	}
	for i := range v {
		v[i] = -v[i]
	}
}
