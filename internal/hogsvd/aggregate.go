package hogsvd

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Inverses inverts every cross product. A cross product whose reciprocal
// condition number is below cfg.SingularTolerance fails the run with its
// index.
func Inverses(ctx context.Context, cfg Config, as []*mat.SymDense) ([]*mat.Dense, error) {
	invs := make([]*mat.Dense, len(as))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, a := range as {
		g.Go(func() error {
			inv, err := cfg.Backend.Inverse(a, cfg.SingularTolerance)
			if err != nil {
				return newError(StageInverse, fmt.Errorf("%w: %w", ErrSingularCrossProduct, err), i)
			}
			invs[i] = inv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return invs, nil
}

type pair struct{ i, j int }

// pairs lists every unordered pair i<j in lexicographic order.
func pairs(n int) []pair {
	ps := make([]pair, 0, n*(n-1)/2)
	for i := range n {
		for j := i + 1; j < n; j++ {
			ps = append(ps, pair{i, j})
		}
	}
	return ps
}

// Balance returns Aᵢ·Aⱼ⁻¹ + Aⱼ·Aᵢ⁻¹.
func Balance(cfg Config, ai, aj, invI, invJ mat.Matrix) *mat.Dense {
	s := cfg.Backend.Mul(ai, invJ)
	s.Add(s, cfg.Backend.Mul(aj, invI))
	return s
}

// Aggregate sums the balance of every pair of cross products and scales
// the sum by 1/(N(N−1)). Pairs are computed concurrently but summed in
// lexicographic pair order, so the result does not depend on scheduling.
func Aggregate(ctx context.Context, cfg Config, as []*mat.SymDense, invs []*mat.Dense) (*mat.Dense, error) {
	n := len(as)
	if n < 2 {
		return nil, newError(StageAggregate, fmt.Errorf("%w: %d matrices, need at least 2", ErrDimensionMismatch, n))
	}
	if len(invs) != n {
		return nil, newError(StageAggregate, fmt.Errorf("%w: %d inverses for %d cross products", ErrDimensionMismatch, len(invs), n))
	}

	ps := pairs(n)
	terms := make([]*mat.Dense, len(ps))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for k, p := range ps {
		g.Go(func() error {
			terms[k] = Balance(cfg, as[p.i], as[p.j], invs[p.i], invs[p.j])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := as[0].SymmetricDim()
	s := mat.NewDense(c, c, nil)
	for _, t := range terms {
		s.Add(s, t)
	}
	s.Scale(1/float64(n*(n-1)), s)
	return s, nil
}
