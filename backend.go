package hogsvd

import (
	"fmt"

	"github.com/yyyoichi/hogsvd/internal/hogsvd"
	"github.com/yyyoichi/hogsvd/internal/linalg"
)

type (
	// Backend is the linear-algebra capability the decomposition is built on:
	// Gram products, multiplication, inversion with a condition check and
	// real eigen-decomposition. Implementations must be safe for concurrent
	// use and must not modify their arguments.
	Backend = linalg.Backend

	// GonumBackend is the default Backend, built on gonum.org/v1/gonum/mat.
	GonumBackend = linalg.Gonum

	// Ordering fixes the column order of the shared basis by eigenvalue.
	Ordering = hogsvd.Ordering
)

const (
	Ascending  = hogsvd.Ascending
	Descending = hogsvd.Descending
)

var (
	ErrSingular      = linalg.ErrSingular
	ErrNoConvergence = linalg.ErrNoConvergence
	ErrComplexEigen  = linalg.ErrComplexEigen
)

// ParseOrdering maps "asc"/"ascending" and "desc"/"descending" to an
// Ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return 0, fmt.Errorf("%w: ordering %q", ErrInvalidOption, s)
}
