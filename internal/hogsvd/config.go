package hogsvd

import (
	"cmp"

	"github.com/yyyoichi/hogsvd/internal/linalg"
)

// Config carries the tolerances and collaborators of one run.
type Config struct {
	Backend linalg.Backend

	// SingularTolerance is the smallest reciprocal condition number
	// accepted when inverting a cross product or the shared basis.
	SingularTolerance float64
	// SymmetryTolerance bounds the asymmetry of the aggregate that still
	// selects the symmetric eigensolver, and the imaginary part accepted
	// for an eigenvalue.
	SymmetryTolerance float64
	// DegenerateTolerance is the largest column norm treated as zero.
	DegenerateTolerance float64

	Ordering    Ordering
	Concurrency int
}

// Ordering fixes the column order of the shared basis.
type Ordering int

const (
	Ascending Ordering = iota
	Descending
)

func (o Ordering) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	}
	return "unknown"
}

func (o Ordering) compare(a, b float64) int {
	if o == Descending {
		return cmp.Compare(b, a)
	}
	return cmp.Compare(a, b)
}
