package kzg

import (
	"errors"
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/peerdas/domain"
	"github.com/eth2030/peerdas/poly"
)

const (
	testNumG1 = 128
	testWidth = 8
)

func newTestSRS(t *testing.T) *SRS {
	t.Helper()
	srs, err := NewSRSInsecure(big.NewInt(1337), testNumG1, testWidth+1)
	if err != nil {
		t.Fatalf("NewSRSInsecure: %v", err)
	}
	return srs
}

// testCoset returns the multiplicative coset shift*<w> of the
// testWidth-th roots of unity.
func testCoset(t *testing.T, shift uint64) []fr.Element {
	t.Helper()
	d, err := domain.NewDomain(testWidth)
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	var h fr.Element
	h.SetUint64(shift)
	coset := make([]fr.Element, testWidth)
	for i := range coset {
		coset[i].Mul(&d.Roots[i], &h)
	}
	return coset
}

func testPoly(seed uint64) []fr.Element {
	p := make([]fr.Element, testNumG1)
	for i := range p {
		p[i].SetUint64(seed + uint64(i)*uint64(i) + 3)
	}
	return p
}

func TestSRSInsecureConsistency(t *testing.T) {
	srs := newTestSRS(t)
	if len(srs.CommitKey.G1) != testNumG1 {
		t.Fatalf("commit key has %d points, want %d", len(srs.CommitKey.G1), testNumG1)
	}

	// G1[1] must be tau*G1[0]: committing to the polynomial x equals
	// the degree-1 setup point.
	commitment, err := Commit([]fr.Element{{}, fr.One()}, &srs.CommitKey)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !commitment.Equal(&srs.CommitKey.G1[1]) {
		t.Errorf("[x]_1 != G1[1]")
	}
}

func TestNewSRSTooSmall(t *testing.T) {
	srs := newTestSRS(t)
	if _, err := NewSRS(srs.CommitKey.G1, srs.OpeningKey.G2, testNumG1+1, 0); !errors.Is(err, ErrSetupTooSmall) {
		t.Errorf("NewSRS = %v, want ErrSetupTooSmall", err)
	}
	if _, err := NewSRS(srs.CommitKey.G1, srs.OpeningKey.G2, 0, testWidth+2); !errors.Is(err, ErrSetupTooSmall) {
		t.Errorf("NewSRS = %v, want ErrSetupTooSmall", err)
	}
}

func TestCommitRejectsOversizedPoly(t *testing.T) {
	srs := newTestSRS(t)
	if _, err := Commit(make([]fr.Element, testNumG1+1), &srs.CommitKey); !errors.Is(err, ErrInvalidPoly) {
		t.Errorf("Commit oversized = %v, want ErrInvalidPoly", err)
	}
	if _, err := Commit(nil, &srs.CommitKey); !errors.Is(err, ErrInvalidPoly) {
		t.Errorf("Commit empty = %v, want ErrInvalidPoly", err)
	}
}

func TestOpenMultiVerifies(t *testing.T) {
	srs := newTestSRS(t)
	p := testPoly(11)
	coset := testCoset(t, 5)

	commitment, err := Commit(p, &srs.CommitKey)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	proof, ys, err := OpenMulti(p, coset, &srs.CommitKey)
	if err != nil {
		t.Fatalf("OpenMulti: %v", err)
	}

	// The returned evaluations match direct evaluation.
	for i := range coset {
		want := poly.Evaluate(p, coset[i])
		if !ys[i].Equal(&want) {
			t.Fatalf("ys[%d] = %v, want %v", i, ys[i], want)
		}
	}

	ok, err := VerifyMulti(commitment, coset, ys, proof, &srs.OpeningKey)
	if err != nil {
		t.Fatalf("VerifyMulti: %v", err)
	}
	if !ok {
		t.Fatal("valid proof rejected")
	}
}

func TestVerifyMultiRejectsTamper(t *testing.T) {
	srs := newTestSRS(t)
	p := testPoly(11)
	coset := testCoset(t, 5)

	commitment, err := Commit(p, &srs.CommitKey)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	proof, ys, err := OpenMulti(p, coset, &srs.CommitKey)
	if err != nil {
		t.Fatalf("OpenMulti: %v", err)
	}

	// Tampered evaluation.
	tampered := make([]fr.Element, len(ys))
	copy(tampered, ys)
	one := fr.One()
	tampered[0].Add(&tampered[0], &one)
	ok, err := VerifyMulti(commitment, coset, tampered, proof, &srs.OpeningKey)
	if err != nil {
		t.Fatalf("VerifyMulti: %v", err)
	}
	if ok {
		t.Error("tampered evaluations accepted")
	}

	// Proof for a different polynomial.
	otherProof, _, err := OpenMulti(testPoly(99), coset, &srs.CommitKey)
	if err != nil {
		t.Fatalf("OpenMulti: %v", err)
	}
	ok, err = VerifyMulti(commitment, coset, ys, otherProof, &srs.OpeningKey)
	if err != nil {
		t.Fatalf("VerifyMulti: %v", err)
	}
	if ok {
		t.Error("foreign proof accepted")
	}
}

func TestVerifyMultiInputErrors(t *testing.T) {
	srs := newTestSRS(t)
	coset := testCoset(t, 5)
	var point bls12381.G1Affine

	if _, err := VerifyMulti(point, nil, nil, point, &srs.OpeningKey); !errors.Is(err, ErrEmptyCoset) {
		t.Errorf("empty coset = %v, want ErrEmptyCoset", err)
	}
	if _, err := VerifyMulti(point, coset, coset[:3], point, &srs.OpeningKey); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short ys = %v, want ErrLengthMismatch", err)
	}
}

// batchFixture builds n independent (commitment, coset, evals, proof)
// tuples over distinct cosets and polynomials.
func batchFixture(t *testing.T, srs *SRS, n int) ([]bls12381.G1Affine, []uint64, [][]fr.Element, [][]fr.Element, []bls12381.G1Affine) {
	t.Helper()
	commitments := make([]bls12381.G1Affine, n)
	indices := make([]uint64, n)
	cosets := make([][]fr.Element, n)
	evals := make([][]fr.Element, n)
	proofs := make([]bls12381.G1Affine, n)
	for k := 0; k < n; k++ {
		p := testPoly(uint64(100 * (k + 1)))
		coset := testCoset(t, uint64(2+k))
		commitment, err := Commit(p, &srs.CommitKey)
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		proof, ys, err := OpenMulti(p, coset, &srs.CommitKey)
		if err != nil {
			t.Fatalf("OpenMulti: %v", err)
		}
		commitments[k] = commitment
		indices[k] = uint64(k)
		cosets[k] = coset
		evals[k] = ys
		proofs[k] = proof
	}
	return commitments, indices, cosets, evals, proofs
}

func TestVerifyMultiBatch(t *testing.T) {
	srs := newTestSRS(t)
	commitments, indices, cosets, evals, proofs := batchFixture(t, srs, 4)

	var challenge fr.Element
	challenge.SetUint64(0xdeadbeef)

	ok, err := VerifyMultiBatch(commitments, indices, cosets, evals, proofs, challenge, &srs.OpeningKey)
	if err != nil {
		t.Fatalf("VerifyMultiBatch: %v", err)
	}
	if !ok {
		t.Fatal("valid batch rejected")
	}

	// One tampered entry poisons the whole batch.
	one := fr.One()
	evals[2][3].Add(&evals[2][3], &one)
	ok, err = VerifyMultiBatch(commitments, indices, cosets, evals, proofs, challenge, &srs.OpeningKey)
	if err != nil {
		t.Fatalf("VerifyMultiBatch: %v", err)
	}
	if ok {
		t.Fatal("tampered batch accepted")
	}
}

func TestVerifyMultiBatchEmpty(t *testing.T) {
	srs := newTestSRS(t)
	var challenge fr.Element
	ok, err := VerifyMultiBatch(nil, nil, nil, nil, nil, challenge, &srs.OpeningKey)
	if err != nil {
		t.Fatalf("VerifyMultiBatch: %v", err)
	}
	if !ok {
		t.Fatal("empty batch rejected")
	}
}

func TestVerifyMultiBatchShapeErrors(t *testing.T) {
	srs := newTestSRS(t)
	commitments, indices, cosets, evals, proofs := batchFixture(t, srs, 2)
	var challenge fr.Element

	if _, err := VerifyMultiBatch(commitments, indices[:1], cosets, evals, proofs, challenge, &srs.OpeningKey); !errors.Is(err, ErrBatchShape) {
		t.Errorf("short indices = %v, want ErrBatchShape", err)
	}
	indices[1] = 7
	if _, err := VerifyMultiBatch(commitments, indices, cosets, evals, proofs, challenge, &srs.OpeningKey); !errors.Is(err, ErrBatchShape) {
		t.Errorf("bad commitment index = %v, want ErrBatchShape", err)
	}
}
