//go:build goethkzg

// Differential cross-check backend against crate-crypto/go-eth-kzg.
//
// GoEthKZGBackend wraps a go-eth-kzg Context initialized with the real
// Ethereum ceremony SRS, exposing the same prover surface as Context so
// tests built with -tags goethkzg can diff the two implementations
// output for output.
//
// Build with: go build -tags goethkzg ./...
// Test with:  go test -tags goethkzg ./das/ -run CrossCheck
package das

import (
	"fmt"

	goethkzg "github.com/crate-crypto/go-eth-kzg"
)

// GoEthKZGBackend is the production-library reference implementation
// used for differential testing.
type GoEthKZGBackend struct {
	ctx *goethkzg.Context
}

// NewGoEthKZGBackend initializes a go-eth-kzg context with the embedded
// Ethereum ceremony trusted setup.
func NewGoEthKZGBackend() (*GoEthKZGBackend, error) {
	ctx, err := goethkzg.NewContext4096Secure()
	if err != nil {
		return nil, fmt.Errorf("das: initialize go-eth-kzg context: %w", err)
	}
	return &GoEthKZGBackend{ctx: ctx}, nil
}

// BlobToKZGCommitment commits to a blob through go-eth-kzg.
func (b *GoEthKZGBackend) BlobToKZGCommitment(blob []byte) (KZGCommitment, error) {
	if len(blob) != BytesPerBlob {
		return KZGCommitment{}, fmt.Errorf("%w: blob is %d bytes, want %d", ErrLengthMismatch, len(blob), BytesPerBlob)
	}
	var blobArr goethkzg.Blob
	copy(blobArr[:], blob)

	commitment, err := b.ctx.BlobToKZGCommitment(&blobArr, 0)
	if err != nil {
		return KZGCommitment{}, err
	}
	return KZGCommitment(commitment), nil
}

// ComputeCellsAndKZGProofs extends a blob through go-eth-kzg.
func (b *GoEthKZGBackend) ComputeCellsAndKZGProofs(blob []byte) ([CellsPerExtBlob]Cell, [CellsPerExtBlob]KZGProof, error) {
	var (
		cells  [CellsPerExtBlob]Cell
		proofs [CellsPerExtBlob]KZGProof
	)
	if len(blob) != BytesPerBlob {
		return cells, proofs, fmt.Errorf("%w: blob is %d bytes, want %d", ErrLengthMismatch, len(blob), BytesPerBlob)
	}
	var blobArr goethkzg.Blob
	copy(blobArr[:], blob)

	refCells, refProofs, err := b.ctx.ComputeCellsAndKZGProofs(&blobArr, 0)
	if err != nil {
		return cells, proofs, err
	}
	for i := 0; i < CellsPerExtBlob; i++ {
		copy(cells[i][:], refCells[i][:])
		proofs[i] = KZGProof(refProofs[i])
	}
	return cells, proofs, nil
}
