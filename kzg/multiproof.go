package kzg

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/peerdas/poly"
)

var (
	ErrEmptyCoset      = errors.New("kzg: empty opening point set")
	ErrLengthMismatch  = errors.New("kzg: mismatched point and value counts")
	ErrOpeningKeySize  = errors.New("kzg: opening key cannot cover the coset width")
)

// OpenMulti proves the evaluations of a coefficient-form polynomial on
// every point of a coset at once.
//
// With Z the vanishing polynomial of the coset and I the interpolation
// of the claimed values, f = Q*Z + I with deg I < deg Z, so the long
// division of f by Z yields exactly the quotient Q the verifier pairs
// against. The returned evaluations are in coset order.
func OpenMulti(p []fr.Element, coset []fr.Element, ck *CommitKey) (bls12381.G1Affine, []fr.Element, error) {
	if len(coset) == 0 {
		return bls12381.G1Affine{}, nil, ErrEmptyCoset
	}

	ys := make([]fr.Element, len(coset))
	for i := range coset {
		ys[i] = poly.Evaluate(p, coset[i])
	}

	quotient, err := poly.Div(p, poly.Vanishing(coset))
	if err != nil {
		return bls12381.G1Affine{}, nil, err
	}
	if len(quotient) == 0 {
		// Degree of f below the coset width: the quotient is the zero
		// polynomial and the proof is the identity point.
		var identity bls12381.G1Affine
		return identity, ys, nil
	}

	proof, err := Commit(quotient, ck)
	if err != nil {
		return bls12381.G1Affine{}, nil, err
	}
	return proof, ys, nil
}

// VerifyMulti checks a multi-point opening proof:
//
//	e(proof, [Z(tau)]_2) * e(commitment - [I(tau)]_1, -[1]_2) == 1
//
// where Z vanishes on the coset and I interpolates the claimed values.
// A false return with nil error means the proof is cryptographically
// invalid; errors are reserved for malformed inputs.
func VerifyMulti(commitment bls12381.G1Affine, coset, ys []fr.Element, proof bls12381.G1Affine, ok *OpeningKey) (bool, error) {
	if len(coset) == 0 {
		return false, ErrEmptyCoset
	}
	if len(coset) != len(ys) {
		return false, fmt.Errorf("%w: %d points, %d values", ErrLengthMismatch, len(coset), len(ys))
	}
	if len(ok.G2) < len(coset)+1 || len(ok.G1) < len(coset) {
		return false, fmt.Errorf("%w: width %d", ErrOpeningKeySize, len(coset))
	}

	// [Z(tau)]_2
	zPoly := poly.Vanishing(coset)
	zG2, err := G2Lincomb(ok.G2[:len(zPoly)], zPoly)
	if err != nil {
		return false, err
	}

	// [I(tau)]_1
	iPoly, err := poly.Interpolate(coset, ys)
	if err != nil {
		return false, err
	}
	iG1, err := G1Lincomb(ok.G1[:len(iPoly)], iPoly)
	if err != nil {
		return false, err
	}

	// commitment - [I(tau)]_1
	var commMinusInterp bls12381.G1Jac
	var iJac bls12381.G1Jac
	commMinusInterp.FromAffine(&commitment)
	iJac.FromAffine(&iG1)
	commMinusInterp.SubAssign(&iJac)
	var commMinusInterpAff bls12381.G1Affine
	commMinusInterpAff.FromJacobian(&commMinusInterp)

	var negGenG2 bls12381.G2Affine
	negGenG2.Neg(&ok.GenG2)

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{proof, commMinusInterpAff},
		[]bls12381.G2Affine{zG2, negGenG2},
	)
}
