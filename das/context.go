package das

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/peerdas/domain"
	"github.com/eth2030/peerdas/kzg"
)

// Context carries everything the entry points need: the processed
// trusted setup and the precomputed evaluation domains. It is built
// once, never mutated, and safe for concurrent use. Passing it
// explicitly (instead of hiding it in package state) keeps multiple
// setups usable in one process.
type Context struct {
	// domainBlob is the small domain of FieldElementsPerBlob roots.
	domainBlob *domain.Domain

	// domainExt is the extended domain of FieldElementsPerExtBlob roots.
	domainExt *domain.Domain

	// domainCells has CellsPerExtBlob roots; recovery builds its
	// vanishing polynomial over this domain.
	domainCells *domain.Domain

	// rootsExtBRP is the extended-domain roots table in bit-reversal
	// order; cell cosets are its contiguous slices.
	rootsExtBRP []fr.Element

	commitKey *kzg.CommitKey
	openKey   *kzg.OpeningKey
}

// NewContext builds a Context from a processed trusted setup. The setup
// must hold at least FieldElementsPerExtBlob G1 monomial points and
// FieldElementsPerCell+1 G2 monomial points.
func NewContext(srs *kzg.SRS) (*Context, error) {
	if len(srs.CommitKey.G1) < FieldElementsPerExtBlob {
		return nil, fmt.Errorf("%w: %d G1 points, need %d",
			kzg.ErrSetupTooSmall, len(srs.CommitKey.G1), FieldElementsPerExtBlob)
	}
	if len(srs.OpeningKey.G2) < FieldElementsPerCell+1 {
		return nil, fmt.Errorf("%w: %d G2 points, need %d",
			kzg.ErrSetupTooSmall, len(srs.OpeningKey.G2), FieldElementsPerCell+1)
	}

	domainBlob, err := domain.NewDomain(FieldElementsPerBlob)
	if err != nil {
		return nil, err
	}
	domainExt, err := domain.NewDomain(FieldElementsPerExtBlob)
	if err != nil {
		return nil, err
	}
	domainCells, err := domain.NewDomain(CellsPerExtBlob)
	if err != nil {
		return nil, err
	}

	rootsExtBRP := make([]fr.Element, FieldElementsPerExtBlob)
	copy(rootsExtBRP, domainExt.Roots)
	if err := domain.BitReverse(rootsExtBRP); err != nil {
		return nil, err
	}

	return &Context{
		domainBlob:  domainBlob,
		domainExt:   domainExt,
		domainCells: domainCells,
		rootsExtBRP: rootsExtBRP,
		commitKey:   &srs.CommitKey,
		openKey:     &srs.OpeningKey,
	}, nil
}

// NewContextFromFile builds a Context from a ceremony JSON file.
func NewContextFromFile(path string) (*Context, error) {
	srs, err := kzg.NewSRSFromFile(path, FieldElementsPerExtBlob, FieldElementsPerCell+1)
	if err != nil {
		return nil, err
	}
	return NewContext(srs)
}

// NewContextInsecure builds a Context from a known secret. Test-only:
// the powers of tau are public.
func NewContextInsecure(secret uint64) (*Context, error) {
	srs, err := kzg.NewSRSInsecure(new(big.Int).SetUint64(secret),
		FieldElementsPerExtBlob, FieldElementsPerCell+1)
	if err != nil {
		return nil, err
	}
	return NewContext(srs)
}
