package hogsvd

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Normalize splits b into unit-norm columns and their Euclidean norms.
//
// A column whose norm is at most tol fails with ErrDegenerateColumn. When
// lenient is set it is kept unnormalized with a zero scale instead; that
// mode exists for factors whose zero columns are structural.
func Normalize(b mat.Matrix, tol float64, lenient bool) (*mat.Dense, []float64, error) {
	r, c := b.Dims()
	u := mat.NewDense(r, c, nil)
	sigma := make([]float64, c)
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, b)
		norm := floats.Norm(col, 2)
		if norm <= tol {
			if !lenient {
				return nil, nil, &MatrixError{
					Stage:  StageNormalize,
					Column: j,
					Err:    fmt.Errorf("%w: norm %g", ErrDegenerateColumn, norm),
				}
			}
			u.SetCol(j, col)
			continue
		}
		floats.Scale(1/norm, col)
		u.SetCol(j, col)
		sigma[j] = norm
	}
	return u, sigma, nil
}

// NormalizeAll normalizes every raw factor. Errors carry the index of the
// factor and the offending column.
func NormalizeAll(ctx context.Context, cfg Config, bs []*mat.Dense, lenient bool) ([]*mat.Dense, [][]float64, error) {
	us := make([]*mat.Dense, len(bs))
	sigmas := make([][]float64, len(bs))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, b := range bs {
		g.Go(func() error {
			u, sigma, err := Normalize(b, cfg.DegenerateTolerance, lenient)
			if err != nil {
				var me *MatrixError
				if errors.As(err, &me) {
					me.Indices = []int{i}
				}
				return err
			}
			us[i], sigmas[i] = u, sigma
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return us, sigmas, nil
}
