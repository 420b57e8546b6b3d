package hogsvd

import (
	"context"
	"fmt"
	"time"

	"github.com/yyyoichi/hogsvd/internal/hogsvd"
	"github.com/yyyoichi/hogsvd/internal/svd"
	"gonum.org/v1/gonum/mat"
)

// Path selects the routine that factors a set of matrices.
type Path int

const (
	// SingleMatrix factors one matrix with a plain SVD.
	SingleMatrix Path = iota + 1
	// PairClassical factors exactly two matrices with the classical GSVD.
	PairClassical
	// MultiGeneral factors two or more matrices with the HO-GSVD.
	MultiGeneral
)

func (p Path) String() string {
	switch p {
	case SingleMatrix:
		return "single-matrix"
	case PairClassical:
		return "pair-classical"
	case MultiGeneral:
		return "multi-general"
	}
	return fmt.Sprintf("Path(%d)", int(p))
}

// SelectPath picks the path for n matrices. classical requests the classical
// GSVD, which takes exactly two matrices.
func SelectPath(n int, classical bool) (Path, error) {
	switch {
	case n < 1:
		return 0, fmt.Errorf("%w: no input matrices", ErrDimensionMismatch)
	case n == 1:
		return SingleMatrix, nil
	case classical && n == 2:
		return PairClassical, nil
	case classical:
		return 0, fmt.Errorf("%w: classical GSVD takes 2 matrices, got %d", ErrPathMismatch, n)
	}
	return MultiGeneral, nil
}

// Run factors ds along path p. The SingleMatrix and PairClassical paths call
// gonum's SVD and GSVD; MultiGeneral is Decompose. All paths return the same
// Result shape: per-matrix U and Sigma with one shared V, so that
// ds[i] ≈ U[i]·diag(Sigma[i])·Vᵀ.
func (d *Decomposer) Run(ctx context.Context, p Path, ds ...mat.Matrix) (*Result, error) {
	switch p {
	case SingleMatrix:
		if len(ds) != 1 {
			return nil, fmt.Errorf("%w: %v with %d matrices", ErrPathMismatch, p, len(ds))
		}
		return d.single(ctx, ds[0])
	case PairClassical:
		if len(ds) != 2 {
			return nil, fmt.Errorf("%w: %v with %d matrices", ErrPathMismatch, p, len(ds))
		}
		return d.classical(ctx, ds[0], ds[1])
	case MultiGeneral:
		return d.Decompose(ctx, ds...)
	}
	return nil, fmt.Errorf("%w: unknown path %v", ErrPathMismatch, p)
}

func (d *Decomposer) single(ctx context.Context, a mat.Matrix) (res *Result, err error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordDecomposition(SingleMatrix, 1, time.Since(start), err)
	}()

	if _, err := hogsvd.Columns([]mat.Matrix{a}); err != nil {
		return nil, err
	}
	u, s, v, err := svd.Thin(a)
	if err != nil {
		d.logger.ErrorContext(ctx, "svd failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNumericalError, err)
	}
	d.logger.InfoContext(ctx, "decomposition completed", "path", SingleMatrix, "duration", time.Since(start))
	return &Result{
		Path:  SingleMatrix,
		U:     []*mat.Dense{u},
		Sigma: [][]float64{s},
		V:     v,
	}, nil
}

func (d *Decomposer) classical(ctx context.Context, a, b mat.Matrix) (res *Result, err error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordDecomposition(PairClassical, 2, time.Since(start), err)
	}()

	if _, err := hogsvd.Columns([]mat.Matrix{a, b}); err != nil {
		return nil, err
	}
	x, ba, bb, err := svd.Generalized(a, b)
	if err != nil {
		d.logger.ErrorContext(ctx, "gsvd failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNumericalError, err)
	}
	// Zero columns of U·Σ are structural here, so they keep a zero scale.
	us, sigmas, err := hogsvd.NormalizeAll(ctx, d.cfg, []*mat.Dense{ba, bb}, true)
	if err != nil {
		return nil, err
	}
	d.logger.InfoContext(ctx, "decomposition completed", "path", PairClassical, "duration", time.Since(start))
	return &Result{
		Path:  PairClassical,
		U:     us,
		Sigma: sigmas,
		V:     x,
	}, nil
}
