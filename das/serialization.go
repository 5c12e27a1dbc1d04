package das

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// deserializeScalar decodes a canonical big-endian field element. Any
// encoding whose integer is >= the field order is rejected.
func deserializeScalar(b []byte) (fr.Element, error) {
	var scalar fr.Element
	if err := scalar.SetBytesCanonical(b); err != nil {
		return fr.Element{}, fmt.Errorf("%w: non-canonical field element: %v", ErrInvalidEncoding, err)
	}
	return scalar, nil
}

// serializeScalar encodes a field element as 32 canonical big-endian bytes.
func serializeScalar(e fr.Element) [BytesPerFieldElement]byte {
	return e.Bytes()
}

// deserializeG1 decodes a compressed G1 point, checking that it lies on
// the curve and in the prime-order subgroup.
func deserializeG1(b []byte) (bls12381.G1Affine, error) {
	var point bls12381.G1Affine
	if len(b) != BytesPerCommitment {
		return point, fmt.Errorf("%w: %d byte G1 point", ErrInvalidEncoding, len(b))
	}
	if _, err := point.SetBytes(b); err != nil {
		return bls12381.G1Affine{}, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return point, nil
}

// CellToCosetEvals splits a cell into its FieldElementsPerCell coset
// evaluations. This is the adversary-facing entry point for cell bytes
// and always validates canonicity.
func CellToCosetEvals(cell Cell) ([]fr.Element, error) {
	evals := make([]fr.Element, FieldElementsPerCell)
	for i := 0; i < FieldElementsPerCell; i++ {
		chunk := cell[i*BytesPerFieldElement : (i+1)*BytesPerFieldElement]
		scalar, err := deserializeScalar(chunk)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		evals[i] = scalar
	}
	return evals, nil
}

// CosetEvalsToCell serializes coset evaluations back into a cell.
func CosetEvalsToCell(evals []fr.Element) (Cell, error) {
	var cell Cell
	if len(evals) != FieldElementsPerCell {
		return cell, fmt.Errorf("%w: %d coset evaluations", ErrLengthMismatch, len(evals))
	}
	for i := range evals {
		b := serializeScalar(evals[i])
		copy(cell[i*BytesPerFieldElement:], b[:])
	}
	return cell, nil
}

// blobToPolynomial parses a blob as FieldElementsPerBlob canonical
// big-endian field elements: the polynomial in evaluation form, in the
// bit-reversed domain order used by EIP-4844.
func blobToPolynomial(blob []byte) ([]fr.Element, error) {
	if len(blob) != BytesPerBlob {
		return nil, fmt.Errorf("%w: blob is %d bytes, want %d", ErrLengthMismatch, len(blob), BytesPerBlob)
	}
	evals := make([]fr.Element, FieldElementsPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		chunk := blob[i*BytesPerFieldElement : (i+1)*BytesPerFieldElement]
		scalar, err := deserializeScalar(chunk)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		evals[i] = scalar
	}
	return evals, nil
}
