package hogsvd

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDimensionMismatch    = errors.New("hogsvd: dimension mismatch")
	ErrSingularCrossProduct = errors.New("hogsvd: singular cross product")
	ErrNumericalError       = errors.New("hogsvd: numerical error")
	ErrSingularSharedBasis  = errors.New("hogsvd: singular shared basis")
	ErrDegenerateColumn     = errors.New("hogsvd: degenerate column")
)

type Stage string

const (
	StageInput        Stage = "input"
	StageCrossProduct Stage = "cross-product"
	StageInverse      Stage = "inverse"
	StageAggregate    Stage = "aggregate"
	StageSubspace     Stage = "subspace"
	StageFactor       Stage = "factor"
	StageNormalize    Stage = "normalize"
)

// MatrixError reports the stage that failed and the input matrices
// involved. Err wraps one of the package sentinels.
type MatrixError struct {
	Stage   Stage
	Indices []int
	// Column is the offending column of a degenerate factor, or -1.
	Column int
	Err    error
}

func newError(stage Stage, err error, indices ...int) *MatrixError {
	return &MatrixError{Stage: stage, Indices: indices, Column: -1, Err: err}
}

func (e *MatrixError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if len(e.Indices) > 0 {
		b.WriteString(": matrix")
		for _, i := range e.Indices {
			fmt.Fprintf(&b, " %d", i)
		}
	}
	if e.Column >= 0 {
		fmt.Fprintf(&b, " column %d", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *MatrixError) Unwrap() error { return e.Err }
