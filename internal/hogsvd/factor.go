package hogsvd

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// RawFactors solves Dᵢ = Bᵢ·Vᵀ for every input. Vᵀ is inverted once and
// shared read-only by the per-matrix products.
func RawFactors(ctx context.Context, cfg Config, ds []mat.Matrix, basis mat.Matrix) ([]*mat.Dense, error) {
	vtInv, err := cfg.Backend.Inverse(basis.T(), cfg.SingularTolerance)
	if err != nil {
		return nil, newError(StageFactor, fmt.Errorf("%w: %w", ErrSingularSharedBasis, err))
	}

	bs := make([]*mat.Dense, len(ds))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, d := range ds {
		g.Go(func() error {
			bs[i] = cfg.Backend.Mul(d, vtInv)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bs, nil
}
