package das

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// cosetForCell returns the evaluation points of a cell: the slice
// [cellIndex*W, (cellIndex+1)*W) of the extended-domain roots in
// bit-reversal order. Each such slice is a multiplicative coset
// h*<mu> of the W-th-root subgroup, with h the slice's first element.
func (c *Context) cosetForCell(cellIndex uint64) ([]fr.Element, error) {
	if cellIndex >= CellsPerExtBlob {
		return nil, fmt.Errorf("%w: cell index %d >= %d", ErrIndexOutOfRange, cellIndex, CellsPerExtBlob)
	}
	start := cellIndex * FieldElementsPerCell
	return c.rootsExtBRP[start : start+FieldElementsPerCell], nil
}

// cosetShiftForCell returns the shift factor h of a cell's coset.
func (c *Context) cosetShiftForCell(cellIndex uint64) (fr.Element, error) {
	coset, err := c.cosetForCell(cellIndex)
	if err != nil {
		return fr.Element{}, err
	}
	return coset[0], nil
}
