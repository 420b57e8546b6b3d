// Package hogsvd computes the higher-order generalized singular value
// decomposition (HO-GSVD) of N ≥ 2 matrices that share their column count.
//
// Every input Dᵢ (mᵢ×n) is factored as Dᵢ = Uᵢ·diag(Σᵢ)·Vᵀ, where the
// right factor V (n×n) is common to all inputs, Uᵢ has unit-norm columns
// and Σᵢ is non-negative. See Ponnapalli et al., "A higher-order generalized
// singular value decomposition for comparison of global mRNA expression from
// multiple organisms", PLoS ONE 6(12), 2011.
package hogsvd

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/yyyoichi/hogsvd/internal/hogsvd"
	"github.com/yyyoichi/hogsvd/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// Decompose computes the HO-GSVD of ds with the specified options.
// This is a convenience function that creates a Decomposer and calls its Decompose method.
func Decompose(ctx context.Context, ds []mat.Matrix, opts ...Option) (*Result, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return d.Decompose(ctx, ds...)
}

// Decomposer holds the configuration of a decomposition. It carries no
// per-run state and is safe for concurrent use.
type Decomposer struct {
	cfg     hogsvd.Config
	logger  *slog.Logger
	metrics MetricsCollector
}

// New initializes a Decomposer. For default values, refer to the init function.
func New(opts ...Option) (*Decomposer, error) {
	d := new(Decomposer)
	if err := d.init(opts...); err != nil {
		return nil, err
	}
	return d, nil
}

// Decompose computes the HO-GSVD of two or more matrices.
//
// Process:
//  1. Forms the cross product Aᵢ = Dᵢᵀ·Dᵢ of every input.
//  2. Inverts every Aᵢ; a singular Aᵢ aborts the run.
//  3. Sums the balances Aᵢ·Aⱼ⁻¹ + Aⱼ·Aᵢ⁻¹ over all pairs i<j and scales by 1/(N(N−1)).
//  4. Eigen-decomposes the sum into the shared basis V, ordered by eigenvalue.
//  5. Solves Dᵢ = Bᵢ·Vᵀ for every input.
//  6. Normalizes the columns of Bᵢ into Uᵢ; the column norms form Σᵢ.
//
// Errors wrap one of the package sentinels and, where it applies, are a
// *MatrixError naming the offending inputs. No partial result is returned.
func (d *Decomposer) Decompose(ctx context.Context, ds ...mat.Matrix) (res *Result, err error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordDecomposition(MultiGeneral, len(ds), time.Since(start), err)
	}()

	if len(ds) < 2 {
		return nil, &MatrixError{
			Stage:  hogsvd.StageInput,
			Column: -1,
			Err:    fmt.Errorf("%w: %d matrices, need at least 2", ErrDimensionMismatch, len(ds)),
		}
	}
	if _, err := hogsvd.Columns(ds); err != nil {
		d.logger.ErrorContext(ctx, "input rejected", "indices", Indices(err), "error", err)
		return nil, err
	}
	cfg := d.cfg

	as, err := stage(ctx, d, hogsvd.StageCrossProduct, func() ([]*mat.SymDense, error) {
		return hogsvd.CrossProducts(ctx, cfg, ds)
	})
	if err != nil {
		return nil, err
	}
	invs, err := stage(ctx, d, hogsvd.StageInverse, func() ([]*mat.Dense, error) {
		return hogsvd.Inverses(ctx, cfg, as)
	})
	if err != nil {
		return nil, err
	}
	s, err := stage(ctx, d, hogsvd.StageAggregate, func() (*mat.Dense, error) {
		return hogsvd.Aggregate(ctx, cfg, as, invs)
	})
	if err != nil {
		return nil, err
	}
	sub, err := stage(ctx, d, hogsvd.StageSubspace, func() (*hogsvd.Subspace, error) {
		return hogsvd.SharedSubspace(cfg, s)
	})
	if err != nil {
		return nil, err
	}
	bs, err := stage(ctx, d, hogsvd.StageFactor, func() ([]*mat.Dense, error) {
		return hogsvd.RawFactors(ctx, cfg, ds, sub.Basis)
	})
	if err != nil {
		return nil, err
	}
	type factors struct {
		us     []*mat.Dense
		sigmas [][]float64
	}
	f, err := stage(ctx, d, hogsvd.StageNormalize, func() (factors, error) {
		us, sigmas, err := hogsvd.NormalizeAll(ctx, cfg, bs, false)
		return factors{us, sigmas}, err
	})
	if err != nil {
		return nil, err
	}

	d.logger.InfoContext(ctx, "decomposition completed",
		"path", MultiGeneral,
		"matrices", len(ds),
		"columns", sub.Basis.RawMatrix().Rows,
		"duration", time.Since(start),
	)
	return &Result{
		Path:        MultiGeneral,
		U:           f.us,
		Sigma:       f.sigmas,
		V:           sub.Basis,
		Eigenvalues: sub.Values,
	}, nil
}

// stage runs one pipeline stage, records its duration and logs its outcome.
func stage[T any](ctx context.Context, d *Decomposer, name hogsvd.Stage, f func() (T, error)) (T, error) {
	start := time.Now()
	v, err := f()
	elapsed := time.Since(start)
	d.metrics.RecordStage(string(name), elapsed)
	if err != nil {
		d.logger.ErrorContext(ctx, "stage failed", "stage", name, "indices", Indices(err), "error", err)
		return v, err
	}
	d.logger.DebugContext(ctx, "stage completed", "stage", name, "duration", elapsed)
	return v, nil
}

func (d *Decomposer) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return err
		}
	}
	if d.cfg.Backend == nil {
		d.cfg.Backend = linalg.Gonum{}
	}
	if d.cfg.SingularTolerance == 0 {
		d.cfg.SingularTolerance = DefaultSingularTolerance
	}
	if d.cfg.SymmetryTolerance == 0 {
		d.cfg.SymmetryTolerance = DefaultSymmetryTolerance
	}
	if d.cfg.DegenerateTolerance == 0 {
		d.cfg.DegenerateTolerance = DefaultDegenerateTolerance
	}
	if d.cfg.Concurrency == 0 {
		d.cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if d.metrics == nil {
		d.metrics = NoopMetricsCollector{}
	}
	return nil
}
