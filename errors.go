package hogsvd

import (
	"errors"

	"github.com/yyyoichi/hogsvd/internal/hogsvd"
)

var (
	// ErrDimensionMismatch is returned when the inputs do not share a column
	// count, or when fewer than two matrices reach the general path.
	ErrDimensionMismatch = hogsvd.ErrDimensionMismatch
	// ErrSingularCrossProduct is returned when some Dᵢᵀ·Dᵢ cannot be inverted.
	ErrSingularCrossProduct = hogsvd.ErrSingularCrossProduct
	// ErrNumericalError is returned when an eigen-decomposition or a
	// classical routine fails, or yields non-real values.
	ErrNumericalError = hogsvd.ErrNumericalError
	// ErrSingularSharedBasis is returned when the shared basis cannot be inverted.
	ErrSingularSharedBasis = hogsvd.ErrSingularSharedBasis
	// ErrDegenerateColumn is returned when a raw factor column has a norm
	// at or below the degenerate tolerance.
	ErrDegenerateColumn = hogsvd.ErrDegenerateColumn

	ErrInvalidOption = errors.New("hogsvd: invalid option")
	ErrPathMismatch  = errors.New("hogsvd: path does not match the number of matrices")
)

type (
	// MatrixError reports the failing stage and the indices of the inputs
	// involved. Use errors.As to retrieve it and errors.Is on the error
	// itself to test the kind.
	MatrixError = hogsvd.MatrixError
	// Stage names a step of the pipeline.
	Stage = hogsvd.Stage
)

// Indices returns the input indices reported by err, or nil.
func Indices(err error) []int {
	var me *MatrixError
	if errors.As(err, &me) {
		return me.Indices
	}
	return nil
}
