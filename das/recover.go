package das

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/peerdas/domain"
	"github.com/eth2030/peerdas/poly"
)

// validateRecoveryInput checks counts, ranges and uniqueness of the
// (cellIndex, cell) pairs handed to recovery.
func validateRecoveryInput(cellIndices []uint64, cells []Cell) error {
	if len(cellIndices) != len(cells) {
		return fmt.Errorf("%w: %d indices, %d cells", ErrLengthMismatch, len(cellIndices), len(cells))
	}
	if len(cellIndices) > CellsPerExtBlob {
		return fmt.Errorf("%w: %d cells, at most %d", ErrLengthMismatch, len(cellIndices), CellsPerExtBlob)
	}
	seen := make(map[uint64]struct{}, len(cellIndices))
	for _, index := range cellIndices {
		if index >= CellsPerExtBlob {
			return fmt.Errorf("%w: cell index %d >= %d", ErrIndexOutOfRange, index, CellsPerExtBlob)
		}
		if _, dup := seen[index]; dup {
			return fmt.Errorf("%w: index %d", ErrDuplicateCellIndex, index)
		}
		seen[index] = struct{}{}
	}
	if len(cellIndices) < ReconstructionThreshold {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientCells, len(cellIndices), ReconstructionThreshold)
	}
	return nil
}

// constructVanishingPolynomial builds the coefficient form of the
// polynomial vanishing exactly on the evaluation points of the missing
// cells. The short vanishing polynomial over the CellsPerExtBlob-sized
// domain is spread at stride FieldElementsPerCell, which is the closed
// form of the product over each missing cell's whole coset.
func (c *Context) constructVanishingPolynomial(missing []uint64) []fr.Element {
	missingRoots := make([]fr.Element, len(missing))
	for i, cellIndex := range missing {
		missingRoots[i] = c.domainCells.Roots[domain.ReverseBits(cellIndex, CellsPerExtBlob)]
	}
	short := poly.Vanishing(missingRoots)

	zeroPolyCoeff := make([]fr.Element, FieldElementsPerExtBlob)
	for i := range short {
		zeroPolyCoeff[i*FieldElementsPerCell] = short[i]
	}
	return zeroPolyCoeff
}

// recoverPolynomialCoeff recovers the blob polynomial in coefficient
// form from any at-least-half subset of the extended evaluations.
//
// The missing evaluations are filled by the vanishing-polynomial trick:
// (E*Z) agrees with (P*Z) on the whole domain because Z kills every
// position where E is unknown, and the division (E*Z)/Z is carried out
// on a domain shifted by the primitive root so Z has no zeros there.
func (c *Context) recoverPolynomialCoeff(cellIndices []uint64, cells []Cell) ([]fr.Element, error) {
	// Missing cell set.
	present := make(map[uint64]struct{}, len(cellIndices))
	for _, index := range cellIndices {
		present[index] = struct{}{}
	}
	missing := make([]uint64, 0, CellsPerExtBlob-len(cellIndices))
	for index := uint64(0); index < CellsPerExtBlob; index++ {
		if _, ok := present[index]; !ok {
			missing = append(missing, index)
		}
	}

	// Vanishing polynomial of the missing positions, in coefficient
	// form and evaluated over the extended domain.
	zeroPolyCoeff := c.constructVanishingPolynomial(missing)
	zeroPolyEval, err := c.domainExt.FftFr(zeroPolyCoeff)
	if err != nil {
		return nil, err
	}
	zeroPolyEvalBRP := make([]fr.Element, len(zeroPolyEval))
	copy(zeroPolyEvalBRP, zeroPolyEval)
	if err := domain.BitReverse(zeroPolyEvalBRP); err != nil {
		return nil, err
	}
	// The vanishing polynomial must be zero exactly on the evaluation
	// points of missing cells.
	for cellIndex := uint64(0); cellIndex < CellsPerExtBlob; cellIndex++ {
		_, isKnown := present[cellIndex]
		start := cellIndex * FieldElementsPerCell
		for j := start; j < start+FieldElementsPerCell; j++ {
			if zeroPolyEvalBRP[j].IsZero() == isKnown {
				return nil, fmt.Errorf("%w: vanishing polynomial wrong at cell %d", ErrInvariantViolation, cellIndex)
			}
		}
	}

	// Known evaluations, written at their bit-reversed positions and
	// permuted back to natural domain order. Unknown positions stay
	// zero; Z zeroes them out in the product anyway.
	extendedEvalBRP := make([]fr.Element, FieldElementsPerExtBlob)
	for i, cellIndex := range cellIndices {
		evals, err := CellToCosetEvals(cells[i])
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", cellIndex, err)
		}
		copy(extendedEvalBRP[cellIndex*FieldElementsPerCell:], evals)
	}
	extendedEval := extendedEvalBRP
	if err := domain.BitReverse(extendedEval); err != nil {
		return nil, err
	}

	// (E*Z) in evaluation form, then to coefficients.
	ezEval := make([]fr.Element, FieldElementsPerExtBlob)
	for i := range ezEval {
		ezEval[i].Mul(&extendedEval[i], &zeroPolyEval[i])
	}
	ezCoeff, err := c.domainExt.IfftFr(ezEval)
	if err != nil {
		return nil, err
	}

	// Shift both polynomials onto the coset k*H, where Z cannot vanish.
	var shiftFactor fr.Element
	shiftFactor.SetUint64(PrimitiveRootOfUnity)
	ezShifted, err := poly.Shift(ezCoeff, shiftFactor)
	if err != nil {
		return nil, err
	}
	zShifted, err := poly.Shift(zeroPolyCoeff, shiftFactor)
	if err != nil {
		return nil, err
	}
	ezShiftedEval, err := c.domainExt.FftFr(ezShifted)
	if err != nil {
		return nil, err
	}
	zShiftedEval, err := c.domainExt.FftFr(zShifted)
	if err != nil {
		return nil, err
	}

	// P(k*x) = (E*Z)(k*x) / Z(k*x), pointwise.
	zShiftedInv := fr.BatchInvert(zShiftedEval)
	quotientEval := make([]fr.Element, FieldElementsPerExtBlob)
	for i := range quotientEval {
		quotientEval[i].Mul(&ezShiftedEval[i], &zShiftedInv[i])
	}
	shiftedCoeff, err := c.domainExt.IfftFr(quotientEval)
	if err != nil {
		return nil, err
	}

	// Undo the shift to land on P(x).
	var shiftInv fr.Element
	shiftInv.Inverse(&shiftFactor)
	coeffs, err := poly.Shift(shiftedCoeff, shiftInv)
	if err != nil {
		return nil, err
	}
	return coeffs, nil
}

// cellsFromCoefficients evaluates a coefficient-form polynomial over
// the extended domain and slices the bit-reversed result into cells.
func (c *Context) cellsFromCoefficients(coeffs []fr.Element) ([CellsPerExtBlob]Cell, error) {
	var cells [CellsPerExtBlob]Cell

	extended := make([]fr.Element, FieldElementsPerExtBlob)
	copy(extended, coeffs)
	extEvals, err := c.domainExt.FftFr(extended)
	if err != nil {
		return cells, err
	}
	if err := domain.BitReverse(extEvals); err != nil {
		return cells, err
	}
	for i := 0; i < CellsPerExtBlob; i++ {
		cell, err := CosetEvalsToCell(extEvals[i*FieldElementsPerCell : (i+1)*FieldElementsPerCell])
		if err != nil {
			return cells, err
		}
		cells[i] = cell
	}
	return cells, nil
}

// RecoverAllCells recovers the full set of CellsPerExtBlob cells from
// any at-least-half subset, preserving the supplied cells byte for
// byte. Recovery uses only field arithmetic and FFTs; no curve
// operations are involved.
func (c *Context) RecoverAllCells(cellIndices []uint64, cells []Cell) ([CellsPerExtBlob]Cell, error) {
	var recovered [CellsPerExtBlob]Cell

	if err := validateRecoveryInput(cellIndices, cells); err != nil {
		return recovered, err
	}
	coeffs, err := c.recoverPolynomialCoeff(cellIndices, cells)
	if err != nil {
		return recovered, err
	}
	// Only the lower half of the coefficients can be nonzero for a
	// consistent input; evaluating the truncated polynomial is what lets
	// the check below catch an inconsistent one.
	recovered, err = c.cellsFromCoefficients(coeffs[:FieldElementsPerBlob])
	if err != nil {
		return recovered, err
	}

	// Corrupted inputs surface here: a consistent at-least-half subset
	// reproduces itself exactly.
	for i, cellIndex := range cellIndices {
		if recovered[cellIndex] != cells[i] {
			return recovered, fmt.Errorf("%w: cell %d", ErrReconstructionMismatch, cellIndex)
		}
	}
	return recovered, nil
}

// RecoverCellsAndKZGProofs recovers all cells and recomputes the
// per-cell proofs, so a node can serve reconstructed columns.
func (c *Context) RecoverCellsAndKZGProofs(cellIndices []uint64, cells []Cell) ([CellsPerExtBlob]Cell, [CellsPerExtBlob]KZGProof, error) {
	var (
		recovered [CellsPerExtBlob]Cell
		proofs    [CellsPerExtBlob]KZGProof
	)

	if err := validateRecoveryInput(cellIndices, cells); err != nil {
		return recovered, proofs, err
	}
	coeffs, err := c.recoverPolynomialCoeff(cellIndices, cells)
	if err != nil {
		return recovered, proofs, err
	}

	// The expansion factor is two, so the upper half of the recovered
	// coefficients is zero and the prover only needs the lower half.
	recovered, proofs, err = c.proveFromCoefficients(coeffs[:FieldElementsPerBlob])
	if err != nil {
		return recovered, proofs, err
	}
	for i, cellIndex := range cellIndices {
		if recovered[cellIndex] != cells[i] {
			return recovered, proofs, fmt.Errorf("%w: cell %d", ErrReconstructionMismatch, cellIndex)
		}
	}
	return recovered, proofs, nil
}

// RecoverMatrix recovers every row of the extended data matrix from a
// partial set of matrix entries, re-proving the recovered cells.
func (c *Context) RecoverMatrix(entries []MatrixEntry, blobCount int) ([]MatrixEntry, error) {
	if blobCount <= 0 {
		return nil, fmt.Errorf("%w: blob count %d", ErrLengthMismatch, blobCount)
	}

	byRow := make(map[RowIndex][]MatrixEntry)
	for _, entry := range entries {
		if uint64(entry.RowIndex) >= uint64(blobCount) {
			return nil, fmt.Errorf("%w: row index %d >= %d", ErrIndexOutOfRange, entry.RowIndex, blobCount)
		}
		byRow[entry.RowIndex] = append(byRow[entry.RowIndex], entry)
	}

	matrix := make([]MatrixEntry, 0, blobCount*CellsPerExtBlob)
	for row := 0; row < blobCount; row++ {
		rowEntries := byRow[RowIndex(row)]
		sort.Slice(rowEntries, func(i, j int) bool {
			return rowEntries[i].ColumnIndex < rowEntries[j].ColumnIndex
		})
		cellIndices := make([]uint64, len(rowEntries))
		cells := make([]Cell, len(rowEntries))
		for i, entry := range rowEntries {
			cellIndices[i] = uint64(entry.ColumnIndex)
			cells[i] = entry.Cell
		}
		recoveredCells, recoveredProofs, err := c.RecoverCellsAndKZGProofs(cellIndices, cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		for column := 0; column < CellsPerExtBlob; column++ {
			matrix = append(matrix, MatrixEntry{
				Cell:        recoveredCells[column],
				KZGProof:    recoveredProofs[column],
				ColumnIndex: ColumnIndex(column),
				RowIndex:    RowIndex(row),
			})
		}
	}
	return matrix, nil
}
