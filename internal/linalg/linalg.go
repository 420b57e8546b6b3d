// Package linalg is the linear-algebra capability consumed by the
// decomposition pipeline, with a default implementation over gonum.
package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrSingular      = errors.New("linalg: matrix is singular")
	ErrNoConvergence = errors.New("linalg: eigen-decomposition did not converge")
	ErrComplexEigen  = errors.New("linalg: eigenvalue is not real")
	ErrNotSquare     = errors.New("linalg: matrix is not square")
)

// Backend supplies the primitives the pipeline needs. Implementations must
// be safe for concurrent use and must not retain or modify their arguments.
type Backend interface {
	// Gram returns aᵀ·a.
	Gram(a mat.Matrix) *mat.SymDense

	// Mul returns a·b.
	Mul(a, b mat.Matrix) *mat.Dense

	// Inverse returns a⁻¹. It fails with ErrSingular when the reciprocal
	// condition number of a is below rcond.
	Inverse(a mat.Matrix, rcond float64) (*mat.Dense, error)

	// Eigen returns the real eigenvalues of the square matrix a and the
	// matching eigenvectors as the columns of a matrix, in solver order.
	// tol bounds both the asymmetry accepted for the symmetric solver and
	// the imaginary part accepted for a real eigenvalue.
	Eigen(a mat.Matrix, tol float64) ([]float64, *mat.Dense, error)
}

// Gonum implements Backend with gonum/mat.
type Gonum struct{}

var _ Backend = Gonum{}

func (Gonum) Gram(a mat.Matrix) *mat.SymDense {
	var g mat.SymDense
	g.SymOuterK(1, a.T())
	return &g
}

func (Gonum) Mul(a, b mat.Matrix) *mat.Dense {
	var c mat.Dense
	c.Mul(a, b)
	return &c
}

func (Gonum) Inverse(a mat.Matrix, rcond float64) (*mat.Dense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}
	var lu mat.LU
	lu.Factorize(a)
	cond := lu.Cond()
	if math.IsNaN(cond) || math.IsInf(cond, 0) || 1/cond < rcond {
		return nil, fmt.Errorf("%w: condition number %g", ErrSingular, cond)
	}

	eye := mat.NewDiagDense(r, nil)
	for i := range r {
		eye.SetDiag(i, 1)
	}
	var inv mat.Dense
	if err := lu.SolveTo(&inv, false, eye); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingular, err)
	}
	return &inv, nil
}

func (Gonum) Eigen(a mat.Matrix, tol float64) ([]float64, *mat.Dense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}

	if s, ok := symmetric(a, tol); ok {
		var es mat.EigenSym
		if ok := es.Factorize(s, true); !ok {
			return nil, nil, ErrNoConvergence
		}
		var vectors mat.Dense
		es.VectorsTo(&vectors)
		return es.Values(nil), &vectors, nil
	}

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenRight); !ok {
		return nil, nil, ErrNoConvergence
	}
	cvalues := eig.Values(nil)
	values := make([]float64, len(cvalues))
	for i, v := range cvalues {
		if math.Abs(imag(v)) > tol*math.Max(1, math.Abs(real(v))) {
			return nil, nil, fmt.Errorf("%w: λ[%d] = %v", ErrComplexEigen, i, v)
		}
		values[i] = real(v)
	}

	var cvectors mat.CDense
	eig.VectorsTo(&cvectors)
	vectors := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		// A pair λ, conj(λ) with a negligible imaginary part comes from a
		// repeated real eigenvalue. Re(v) and Im(v) span the same real
		// invariant subspace as v and conj(v), so they fill both columns.
		if imag(cvalues[j]) != 0 && j+1 < c {
			for i := range r {
				v := cvectors.At(i, j)
				vectors.Set(i, j, real(v))
				vectors.Set(i, j+1, imag(v))
			}
			j++
			continue
		}
		for i := range r {
			vectors.Set(i, j, real(cvectors.At(i, j)))
		}
	}
	return values, vectors, nil
}

// symmetric returns a as a mat.Symmetric when it is symmetric within tol,
// measured relative to its largest absolute row sum.
func symmetric(a mat.Matrix, tol float64) (mat.Symmetric, bool) {
	if s, ok := a.(mat.Symmetric); ok {
		return s, true
	}
	n, _ := a.Dims()
	bound := tol * math.Max(1, mat.Norm(a, math.Inf(1)))
	s := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			aij, aji := a.At(i, j), a.At(j, i)
			if math.Abs(aij-aji) > bound {
				return nil, false
			}
			s.SetSym(i, j, (aij+aji)/2)
		}
	}
	return s, true
}
