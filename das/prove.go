package das

import (
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"

	"github.com/eth2030/peerdas/domain"
	"github.com/eth2030/peerdas/kzg"
)

// polynomialEvalToCoeff converts a polynomial from evaluation form in
// bit-reversed domain order to coefficient form.
func (c *Context) polynomialEvalToCoeff(evals []fr.Element) ([]fr.Element, error) {
	natural := make([]fr.Element, len(evals))
	copy(natural, evals)
	if err := domain.BitReverse(natural); err != nil {
		return nil, err
	}
	return c.domainBlob.IfftFr(natural)
}

// BlobToKZGCommitment commits to the blob's polynomial in coefficient
// form against the G1 monomial basis.
func (c *Context) BlobToKZGCommitment(blob []byte) (KZGCommitment, error) {
	evals, err := blobToPolynomial(blob)
	if err != nil {
		return KZGCommitment{}, err
	}
	coeffs, err := c.polynomialEvalToCoeff(evals)
	if err != nil {
		return KZGCommitment{}, err
	}
	commitment, err := kzg.Commit(coeffs, c.commitKey)
	if err != nil {
		return KZGCommitment{}, err
	}
	return KZGCommitment(commitment.Bytes()), nil
}

// ComputeCells extends a blob onto the doubled domain and slices it
// into CellsPerExtBlob cells, without computing proofs. The result is
// numerically identical to evaluating the blob's polynomial on every
// cell coset.
func (c *Context) ComputeCells(blob []byte) ([CellsPerExtBlob]Cell, error) {
	var cells [CellsPerExtBlob]Cell

	evals, err := blobToPolynomial(blob)
	if err != nil {
		return cells, err
	}
	coeffs, err := c.polynomialEvalToCoeff(evals)
	if err != nil {
		return cells, err
	}

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

// ComputeCellsAndKZGProofs extends a blob into cells and computes one
// multi-point opening proof per cell, in cell-index order. The per-cell
// quotients are independent, so they are fanned across cores.
func (c *Context) ComputeCellsAndKZGProofs(blob []byte) ([CellsPerExtBlob]Cell, [CellsPerExtBlob]KZGProof, error) {
	var (
		cells  [CellsPerExtBlob]Cell
		proofs [CellsPerExtBlob]KZGProof
	)

	evals, err := blobToPolynomial(blob)
	if err != nil {
		return cells, proofs, err
	}
	coeffs, err := c.polynomialEvalToCoeff(evals)
	if err != nil {
		return cells, proofs, err
	}
	return c.proveFromCoefficients(coeffs)
}

// proveFromCoefficients runs the per-cell multi-proof prover over a
// polynomial already in coefficient form.
func (c *Context) proveFromCoefficients(coeffs []fr.Element) ([CellsPerExtBlob]Cell, [CellsPerExtBlob]KZGProof, error) {
	var (
		cells  [CellsPerExtBlob]Cell
		proofs [CellsPerExtBlob]KZGProof
	)

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < CellsPerExtBlob; i++ {
		cellIndex := uint64(i)
		group.Go(func() error {
			coset, err := c.cosetForCell(cellIndex)
			if err != nil {
				return err
			}
			proof, ys, err := kzg.OpenMulti(coeffs, coset, c.commitKey)
			if err != nil {
				return fmt.Errorf("cell %d: %w", cellIndex, err)
			}
			cell, err := CosetEvalsToCell(ys)
			if err != nil {
				return err
			}
			cells[cellIndex] = cell
			proofs[cellIndex] = KZGProof(proof.Bytes())
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return cells, proofs, err
	}
	return cells, proofs, nil
}
