package kzg

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/peerdas/poly"
)

var ErrBatchShape = errors.New("kzg: mismatched batch input lengths")

// VerifyMultiBatch checks many multi-point opening proofs with a single
// pairing product. All cosets must share one width w and each must be a
// multiplicative coset h*<mu> with mu a w-th root of unity, so the
// vanishing polynomial collapses to X^w - h^w.
//
// Folding every claim with powers of the caller-supplied challenge r
// turns the per-proof identity Q_k(tau)*(tau^w - h_k^w) = f_k(tau) - I_k(tau)
// into
//
//	e(sum r^k Q_k, [tau^w]_2)
//	  == e(sum r^k C_k - [sum r^k I_k(tau)]_1 + sum r^k h_k^w Q_k, [1]_2)
//
// which agrees with the per-proof verifier on all accepting inputs and
// rejects any input the per-proof verifier rejects except with
// probability at most q/r over the challenge, q being the batch size.
// The challenge MUST be derived from a transcript binding every public
// input; the caller owns that derivation.
func VerifyMultiBatch(
	commitments []bls12381.G1Affine,
	commitmentIndices []uint64,
	cosets [][]fr.Element,
	cosetsEvals [][]fr.Element,
	proofs []bls12381.G1Affine,
	challenge fr.Element,
	ok *OpeningKey,
) (bool, error) {
	n := len(proofs)
	if len(commitmentIndices) != n || len(cosets) != n || len(cosetsEvals) != n {
		return false, fmt.Errorf("%w: %d proofs, %d indices, %d cosets, %d evals",
			ErrBatchShape, n, len(commitmentIndices), len(cosets), len(cosetsEvals))
	}
	if n == 0 {
		return true, nil
	}

	width := len(cosets[0])
	if width == 0 {
		return false, ErrEmptyCoset
	}
	if len(ok.G2) < width+1 || len(ok.G1) < width {
		return false, fmt.Errorf("%w: width %d", ErrOpeningKeySize, width)
	}
	for k := range cosets {
		if len(cosets[k]) != width || len(cosetsEvals[k]) != width {
			return false, fmt.Errorf("%w: entry %d", ErrBatchShape, k)
		}
		if commitmentIndices[k] >= uint64(len(commitments)) {
			return false, fmt.Errorf("%w: commitment index %d", ErrBatchShape, commitmentIndices[k])
		}
	}

	rPowers := powers(challenge, n)

	// sum r^k Q_k
	foldedProofs, err := G1Lincomb(proofs, rPowers)
	if err != nil {
		return false, err
	}

	// sum r^k C_k, grouping the weights per distinct commitment.
	commWeights := make([]fr.Element, len(commitments))
	for k := range rPowers {
		commWeights[commitmentIndices[k]].Add(&commWeights[commitmentIndices[k]], &rPowers[k])
	}
	foldedComms, err := G1Lincomb(commitments, commWeights)
	if err != nil {
		return false, err
	}

	// [sum r^k I_k(tau)]_1 with the interpolations aggregated in
	// coefficient form before the single multi-scalar multiplication.
	aggInterp := make([]fr.Element, width)
	var t fr.Element
	for k := range cosets {
		interp, err := poly.Interpolate(cosets[k], cosetsEvals[k])
		if err != nil {
			return false, err
		}
		for c := range interp {
			t.Mul(&interp[c], &rPowers[k])
			aggInterp[c].Add(&aggInterp[c], &t)
		}
	}
	aggInterpG1, err := G1Lincomb(ok.G1[:width], aggInterp)
	if err != nil {
		return false, err
	}

	// sum r^k h_k^w Q_k. Every element of a coset raised to the width
	// equals h^w, so the first element serves as the representative.
	weighted := make([]fr.Element, n)
	for k := range cosets {
		hPowW := powElement(cosets[k][0], uint64(width))
		weighted[k].Mul(&rPowers[k], &hPowW)
	}
	foldedWeightedProofs, err := G1Lincomb(proofs, weighted)
	if err != nil {
		return false, err
	}

	// rhs = foldedComms - aggInterpG1 + foldedWeightedProofs
	var rhs, tmp bls12381.G1Jac
	rhs.FromAffine(&foldedComms)
	tmp.FromAffine(&aggInterpG1)
	rhs.SubAssign(&tmp)
	tmp.FromAffine(&foldedWeightedProofs)
	rhs.AddAssign(&tmp)
	var rhsAff, rhsNeg bls12381.G1Affine
	rhsAff.FromJacobian(&rhs)
	rhsNeg.Neg(&rhsAff)

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{foldedProofs, rhsNeg},
		[]bls12381.G2Affine{ok.G2[width], ok.GenG2},
	)
}

// powers returns 1, x, x^2, ..., x^{n-1}.
func powers(x fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &x)
	}
	return out
}

// powElement computes x^e by square and multiply.
func powElement(x fr.Element, e uint64) fr.Element {
	result := fr.One()
	base := x
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			result.Mul(&result, &base)
		}
		base.Square(&base)
	}
	return result
}
