package das

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/peerdas/kzg"
)

// batchChallengeDomain separates the batch-verification transcript from
// every other use of the hash function.
const batchChallengeDomain = "RCKZGCBATCH__V1_"

// VerifyCellKZGProof checks one cell against a blob commitment. It
// returns (false, nil) when the proof is cryptographically invalid and
// a non-nil error only for malformed inputs.
func (c *Context) VerifyCellKZGProof(commitmentBytes KZGCommitment, cellIndex uint64, cell Cell, proofBytes KZGProof) (bool, error) {
	coset, err := c.cosetForCell(cellIndex)
	if err != nil {
		return false, err
	}

	commitment, err := deserializeG1(commitmentBytes[:])
	if err != nil {
		return false, fmt.Errorf("commitment: %w", err)
	}
	proof, err := deserializeG1(proofBytes[:])
	if err != nil {
		return false, fmt.Errorf("proof: %w", err)
	}
	cosetEvals, err := CellToCosetEvals(cell)
	if err != nil {
		return false, err
	}

	return kzg.VerifyMulti(commitment, coset, cosetEvals, proof, c.openKey)
}

// VerifyCellKZGProofBatch checks a set of (row, column, cell, proof)
// tuples against the row commitments, accepting iff every tuple would
// pass VerifyCellKZGProof on its own. All claims are folded by powers
// of a Fiat-Shamir challenge into one pairing product, so a batch
// costs two pairings regardless of size.
func (c *Context) VerifyCellKZGProofBatch(rowCommitments []KZGCommitment, rowIndices, columnIndices []uint64, cells []Cell, proofs []KZGProof) (bool, error) {
	n := len(cells)
	if len(rowIndices) != n || len(columnIndices) != n || len(proofs) != n {
		return false, fmt.Errorf("%w: %d rows, %d columns, %d cells, %d proofs",
			ErrLengthMismatch, len(rowIndices), len(columnIndices), n, len(proofs))
	}
	if n == 0 {
		return true, nil
	}

	commitments := make([]bls12381.G1Affine, len(rowCommitments))
	for i := range rowCommitments {
		commitment, err := deserializeG1(rowCommitments[i][:])
		if err != nil {
			return false, fmt.Errorf("commitment %d: %w", i, err)
		}
		commitments[i] = commitment
	}

	cosets := make([][]fr.Element, n)
	cosetsEvals := make([][]fr.Element, n)
	proofPoints := make([]bls12381.G1Affine, n)
	for k := 0; k < n; k++ {
		if rowIndices[k] >= uint64(len(rowCommitments)) {
			return false, fmt.Errorf("%w: row index %d >= %d", ErrIndexOutOfRange, rowIndices[k], len(rowCommitments))
		}
		coset, err := c.cosetForCell(columnIndices[k])
		if err != nil {
			return false, err
		}
		cosets[k] = coset

		evals, err := CellToCosetEvals(cells[k])
		if err != nil {
			return false, fmt.Errorf("cell %d: %w", k, err)
		}
		cosetsEvals[k] = evals

		point, err := deserializeG1(proofs[k][:])
		if err != nil {
			return false, fmt.Errorf("proof %d: %w", k, err)
		}
		proofPoints[k] = point
	}

	challenge := batchChallenge(rowCommitments, rowIndices, columnIndices, cells, proofs)

	return kzg.VerifyMultiBatch(commitments, rowIndices, cosets, cosetsEvals, proofPoints, challenge, c.openKey)
}

// batchChallenge derives the folding scalar from a transcript over the
// domain separator and every public input, so no input can be chosen
// after the challenge is known.
func batchChallenge(rowCommitments []KZGCommitment, rowIndices, columnIndices []uint64, cells []Cell, proofs []KZGProof) fr.Element {
	h := sha256.New()
	h.Write([]byte(batchChallengeDomain))

	var u64Buf [8]byte
	writeU64 := func(v uint64) {
		binary.BigEndian.PutUint64(u64Buf[:], v)
		h.Write(u64Buf[:])
	}
	writeU64(FieldElementsPerCell)
	writeU64(uint64(len(rowCommitments)))
	writeU64(uint64(len(cells)))

	for i := range rowCommitments {
		h.Write(rowCommitments[i][:])
	}
	for k := range cells {
		writeU64(rowIndices[k])
		writeU64(columnIndices[k])
		h.Write(cells[k][:])
		h.Write(proofs[k][:])
	}

	digest := h.Sum(nil)
	var challenge fr.Element
	challenge.SetBytes(digest)
	return challenge
}
