package svd

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var ErrFactorize = errors.New("svd: cannot factorize")

// Thin computes the thin SVD a = u·diag(s)·vᵀ. For an m×n input u is
// m×k, v is n×k and s has length k = min(m, n), in descending order.
func Thin(a mat.Matrix) (u *mat.Dense, s []float64, v *mat.Dense, err error) {
	var result mat.SVD
	if ok := result.Factorize(a, mat.SVDThin); !ok {
		return nil, nil, nil, ErrFactorize
	}
	u, v = new(mat.Dense), new(mat.Dense)
	result.UTo(u)
	result.VTo(v)
	return u, result.Values(nil), v, nil
}

// Generalized computes the classical GSVD of the r×c matrix a and the p×c
// matrix b, and returns it as a shared right factor x (c×(k+l)) with the
// unnormalized left factors ba = U·Σ₁ and bb = V·Σ₂, so that
//
//	a = ba·xᵀ
//	b = bb·xᵀ
//
// where x = Q·[0 R]ᵀ.
func Generalized(a, b mat.Matrix) (x, ba, bb *mat.Dense, err error) {
	var gsvd mat.GSVD
	if ok := gsvd.Factorize(a, b, mat.GSVDU|mat.GSVDV|mat.GSVDQ); !ok {
		return nil, nil, nil, ErrFactorize
	}

	var u, v, q, zeroR, sigmaA, sigmaB mat.Dense
	gsvd.UTo(&u)
	gsvd.VTo(&v)
	gsvd.QTo(&q)
	gsvd.ZeroRTo(&zeroR)
	gsvd.SigmaATo(&sigmaA)
	gsvd.SigmaBTo(&sigmaB)

	x, ba, bb = new(mat.Dense), new(mat.Dense), new(mat.Dense)
	x.Mul(&q, zeroR.T())
	ba.Mul(&u, &sigmaA)
	bb.Mul(&v, &sigmaB)
	return x, ba, bb, nil
}
