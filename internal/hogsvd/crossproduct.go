package hogsvd

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Columns returns the column count shared by every input. The first input
// fixes the count; any input that differs is reported by index.
func Columns(ds []mat.Matrix) (int, error) {
	if len(ds) == 0 {
		return 0, newError(StageInput, fmt.Errorf("%w: no input matrices", ErrDimensionMismatch))
	}
	for i, d := range ds {
		if isNil(d) {
			return 0, newError(StageInput, fmt.Errorf("%w: nil matrix", ErrDimensionMismatch), i)
		}
	}
	_, n := ds[0].Dims()
	if n == 0 {
		return 0, newError(StageInput, fmt.Errorf("%w: matrix has no columns", ErrDimensionMismatch), 0)
	}
	for i, d := range ds {
		if r, c := d.Dims(); c != n || r == 0 {
			return 0, newError(StageInput, fmt.Errorf("%w: shape %dx%d, want rows x %d", ErrDimensionMismatch, r, c, n), i)
		}
	}
	return n, nil
}

func isNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	d, ok := m.(*mat.Dense)
	return ok && d == nil
}

// CrossProducts returns Dᵢᵀ·Dᵢ for every input.
func CrossProducts(ctx context.Context, cfg Config, ds []mat.Matrix) ([]*mat.SymDense, error) {
	if _, err := Columns(ds); err != nil {
		return nil, err
	}
	as := make([]*mat.SymDense, len(ds))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, d := range ds {
		g.Go(func() error {
			as[i] = cfg.Backend.Gram(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return as, nil
}
