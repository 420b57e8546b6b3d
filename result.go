package hogsvd

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Result is the factorization of a set of matrices.
type Result struct {
	Path Path

	// U holds one left factor per input, with unit-norm columns.
	U []*mat.Dense
	// Sigma holds one non-negative scale vector per input.
	Sigma [][]float64
	// V is the right factor shared by every input.
	V *mat.Dense
	// Eigenvalues of the aggregate, in the column order of V.
	// Only set on the MultiGeneral path.
	Eigenvalues []float64
}

// Len returns the number of factored matrices.
func (r *Result) Len() int { return len(r.U) }

// SigmaDiag returns diag(Sigma[i]).
func (r *Result) SigmaDiag(i int) *mat.DiagDense {
	return mat.NewDiagDense(len(r.Sigma[i]), append([]float64(nil), r.Sigma[i]...))
}

// Reconstruct returns U[i]·diag(Sigma[i])·Vᵀ.
func (r *Result) Reconstruct(i int) *mat.Dense {
	var us, out mat.Dense
	us.Mul(r.U[i], r.SigmaDiag(i))
	out.Mul(&us, r.V.T())
	return &out
}

// ReconstructionError returns the relative Frobenius error
// ‖d − U[i]·diag(Sigma[i])·Vᵀ‖ / ‖d‖ of the original input d. When d is
// zero the absolute error is returned.
func (r *Result) ReconstructionError(i int, d mat.Matrix) (float64, error) {
	rec := r.Reconstruct(i)
	dr, dc := d.Dims()
	if rr, rc := rec.Dims(); dr != rr || dc != rc {
		return 0, &MatrixError{
			Stage:   "reconstruct",
			Indices: []int{i},
			Column:  -1,
			Err:     fmt.Errorf("%w: input %dx%d, reconstruction %dx%d", ErrDimensionMismatch, dr, dc, rr, rc),
		}
	}
	var diff mat.Dense
	diff.Sub(d, rec)
	e := mat.Norm(&diff, 2)
	if n := mat.Norm(d, 2); n > 0 {
		e /= n
	}
	return e, nil
}

// MaxReconstructionError returns the largest ReconstructionError over the
// original inputs ds.
func (r *Result) MaxReconstructionError(ds []mat.Matrix) (float64, error) {
	if len(ds) != r.Len() {
		return 0, fmt.Errorf("%w: %d inputs for %d factors", ErrDimensionMismatch, len(ds), r.Len())
	}
	var worst float64
	for i, d := range ds {
		e, err := r.ReconstructionError(i, d)
		if err != nil {
			return 0, err
		}
		worst = max(worst, e)
	}
	return worst, nil
}
