package kzg

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Commit commits to a polynomial in coefficient form against the G1
// monomial basis: [p(tau)]_1 via a multi-scalar multiplication.
func Commit(p []fr.Element, ck *CommitKey) (bls12381.G1Affine, error) {
	if len(p) == 0 || len(p) > len(ck.G1) {
		return bls12381.G1Affine{}, fmt.Errorf("%w: %d coefficients, key holds %d", ErrInvalidPoly, len(p), len(ck.G1))
	}
	return G1Lincomb(ck.G1[:len(p)], p)
}

// G1Lincomb computes sum scalars[i] * points[i] in G1.
func G1Lincomb(points []bls12381.G1Affine, scalars []fr.Element) (bls12381.G1Affine, error) {
	if len(points) != len(scalars) {
		return bls12381.G1Affine{}, fmt.Errorf("kzg: lincomb size mismatch: %d points, %d scalars", len(points), len(scalars))
	}
	if len(points) == 0 {
		return bls12381.G1Affine{}, ErrEmptyLincomb
	}
	var acc bls12381.G1Affine
	if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return bls12381.G1Affine{}, fmt.Errorf("kzg: g1 multiexp: %w", err)
	}
	return acc, nil
}

// G2Lincomb computes sum scalars[i] * points[i] in G2.
func G2Lincomb(points []bls12381.G2Affine, scalars []fr.Element) (bls12381.G2Affine, error) {
	if len(points) != len(scalars) {
		return bls12381.G2Affine{}, fmt.Errorf("kzg: lincomb size mismatch: %d points, %d scalars", len(points), len(scalars))
	}
	if len(points) == 0 {
		return bls12381.G2Affine{}, ErrEmptyLincomb
	}
	var acc bls12381.G2Affine
	if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return bls12381.G2Affine{}, fmt.Errorf("kzg: g2 multiexp: %w", err)
	}
	return acc, nil
}
