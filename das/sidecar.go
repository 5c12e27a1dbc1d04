package das

import (
	"errors"
	"fmt"
)

// Sidecar validation errors.
var (
	ErrSidecarEmpty = errors.New("das: sidecar carries no cells")
	ErrSidecarShape = errors.New("das: sidecar cell, commitment and proof counts differ")
)

// SubnetForSidecar returns the gossip subnet a sidecar belongs to.
func SubnetForSidecar(sidecar *DataColumnSidecar) SubnetID {
	return ColumnSubnetID(uint64(sidecar.Index))
}

// ValidateDataColumnSidecarShape performs the structural checks the
// gossip rule applies before any cryptography: a non-empty column, one
// commitment and one proof per cell, an in-range column index, and an
// inclusion branch of the expected depth.
func ValidateDataColumnSidecarShape(sidecar *DataColumnSidecar) error {
	if len(sidecar.Column) == 0 {
		return ErrSidecarEmpty
	}
	if len(sidecar.Column) != len(sidecar.KZGCommitments) || len(sidecar.Column) != len(sidecar.KZGProofs) {
		return fmt.Errorf("%w: %d cells, %d commitments, %d proofs",
			ErrSidecarShape, len(sidecar.Column), len(sidecar.KZGCommitments), len(sidecar.KZGProofs))
	}
	if uint64(sidecar.Index) >= NumberOfColumns {
		return fmt.Errorf("%w: column index %d >= %d", ErrIndexOutOfRange, sidecar.Index, NumberOfColumns)
	}
	if len(sidecar.InclusionProof) != KZGCommitmentsInclusionProofDepth {
		return fmt.Errorf("%w: inclusion branch depth %d, want %d",
			ErrSidecarShape, len(sidecar.InclusionProof), KZGCommitmentsInclusionProofDepth)
	}
	return nil
}

// VerifyDataColumnSidecarKZGProofs runs the batched proof check over a
// whole sidecar: row k of the block verifies cell k of this column.
// This is the cryptographic half of gossip validation; the header
// signature and the commitment inclusion branch belong to the caller.
func (c *Context) VerifyDataColumnSidecarKZGProofs(sidecar *DataColumnSidecar) (bool, error) {
	if err := ValidateDataColumnSidecarShape(sidecar); err != nil {
		return false, err
	}

	count := len(sidecar.Column)
	rowIndices := make([]uint64, count)
	columnIndices := make([]uint64, count)
	for i := 0; i < count; i++ {
		rowIndices[i] = uint64(i)
		columnIndices[i] = uint64(sidecar.Index)
	}
	return c.VerifyCellKZGProofBatch(sidecar.KZGCommitments, rowIndices, columnIndices, sidecar.Column, sidecar.KZGProofs)
}
