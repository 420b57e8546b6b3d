package hogsvd

import (
	"fmt"
	"log/slog"
	"math"
)

const (
	DefaultSingularTolerance   = 1e-12
	DefaultSymmetryTolerance   = 1e-10
	DefaultDegenerateTolerance = 1e-12
)

type Option func(*Decomposer) error

// WithSingularTolerance sets the smallest reciprocal condition number accepted
// when inverting a cross product Dᵢᵀ·Dᵢ or the shared basis.
// A cross product below it fails the run with ErrSingularCrossProduct.
func WithSingularTolerance(tol float64) Option {
	return func(d *Decomposer) error {
		if err := checkTolerance("singular tolerance", tol); err != nil {
			return err
		}
		d.cfg.SingularTolerance = tol
		return nil
	}
}

// WithSymmetryTolerance sets how far the aggregate may deviate from symmetry,
// relative to its largest row sum, and still be solved with the symmetric
// eigensolver. It also bounds the imaginary part accepted for an eigenvalue
// when the general solver is used.
func WithSymmetryTolerance(tol float64) Option {
	return func(d *Decomposer) error {
		if err := checkTolerance("symmetry tolerance", tol); err != nil {
			return err
		}
		d.cfg.SymmetryTolerance = tol
		return nil
	}
}

// WithDegenerateTolerance sets the largest column norm of a raw factor that
// is treated as zero. Such a column fails the run with ErrDegenerateColumn.
func WithDegenerateTolerance(tol float64) Option {
	return func(d *Decomposer) error {
		if err := checkTolerance("degenerate tolerance", tol); err != nil {
			return err
		}
		d.cfg.DegenerateTolerance = tol
		return nil
	}
}

// WithOrdering fixes the column order of the shared basis by eigenvalue.
// The default is Ascending.
func WithOrdering(o Ordering) Option {
	return func(d *Decomposer) error {
		if o != Ascending && o != Descending {
			return fmt.Errorf("%w: ordering %d", ErrInvalidOption, o)
		}
		d.cfg.Ordering = o
		return nil
	}
}

// WithConcurrency limits the number of matrices or pairs processed at once.
// The default is runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(d *Decomposer) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency %d", ErrInvalidOption, n)
		}
		d.cfg.Concurrency = n
		return nil
	}
}

// WithBackend replaces the gonum backend.
func WithBackend(b Backend) Option {
	return func(d *Decomposer) error {
		if b == nil {
			return fmt.Errorf("%w: nil backend", ErrInvalidOption)
		}
		d.cfg.Backend = b
		return nil
	}
}

// WithLogger sets the logger. Stages log at Debug, completed runs at Info.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decomposer) error {
		d.logger = l
		return nil
	}
}

// WithMetrics sets the collector notified of every run and stage.
func WithMetrics(m MetricsCollector) Option {
	return func(d *Decomposer) error {
		d.metrics = m
		return nil
	}
}

func checkTolerance(name string, tol float64) error {
	if tol <= 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		return fmt.Errorf("%w: %s %g", ErrInvalidOption, name, tol)
	}
	return nil
}
