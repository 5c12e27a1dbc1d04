// Package kzg implements KZG polynomial commitments over BLS12-381 in
// monomial form: structured-reference-string handling, commitments via
// multi-scalar multiplication, and multi-point opening proofs checked
// with a single pairing product.
package kzg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/peerdas/log"
)

// Setup errors.
var (
	ErrSetupTooSmall   = errors.New("kzg: trusted setup has too few points")
	ErrInvalidSetup    = errors.New("kzg: invalid trusted setup point")
	ErrInvalidPoly     = errors.New("kzg: polynomial does not fit the commitment key")
	ErrEmptyLincomb    = errors.New("kzg: empty linear combination")
	ErrSecretOutOfBand = errors.New("kzg: insecure setup secret is zero mod r")
)

// CommitKey holds the G1 monomial basis used to commit to polynomials
// in coefficient form: G1[i] = [tau^i]_1.
type CommitKey struct {
	G1 []bls12381.G1Affine
}

// OpeningKey holds the points needed to verify multi-point openings:
// the G1 monomial basis up to the coset width and the G2 monomial basis
// up to one past the coset width.
type OpeningKey struct {
	// GenG1 is [1]_1, the degree-0 G1 setup point.
	GenG1 bls12381.G1Affine
	// GenG2 is [1]_2, the degree-0 G2 setup point.
	GenG2 bls12381.G2Affine
	// G1 holds [tau^i]_1 for i < len(G1).
	G1 []bls12381.G1Affine
	// G2 holds [tau^i]_2 for i < len(G2).
	G2 []bls12381.G2Affine
}

// SRS is a processed trusted setup: a commitment key for the prover
// side and an opening key for the verifier side. It is immutable after
// construction and shared read-only.
type SRS struct {
	CommitKey  CommitKey
	OpeningKey OpeningKey
}

// setupJSON mirrors the JSON layout of the published Ethereum ceremony
// files (trusted_setup_4096.json and friends). Lagrange-form points may
// be present in the file but are ignored here; only the monomial bases
// are used.
type setupJSON struct {
	G1Monomial []string `json:"g1_monomial"`
	G2Monomial []string `json:"g2_monomial"`
}

// NewSRS wraps raw monomial points into an SRS after checking the
// minimum sizes: minG1 commitment points and minG2 verifier points.
func NewSRS(g1 []bls12381.G1Affine, g2 []bls12381.G2Affine, minG1, minG2 int) (*SRS, error) {
	if len(g1) < minG1 {
		return nil, fmt.Errorf("%w: %d G1 points, need %d", ErrSetupTooSmall, len(g1), minG1)
	}
	if len(g2) < minG2 {
		return nil, fmt.Errorf("%w: %d G2 points, need %d", ErrSetupTooSmall, len(g2), minG2)
	}
	return &SRS{
		CommitKey: CommitKey{G1: g1},
		OpeningKey: OpeningKey{
			GenG1: g1[0],
			GenG2: g2[0],
			G1:    g1,
			G2:    g2,
		},
	}, nil
}

// NewSRSFromJSON reads a ceremony file in the standard JSON format and
// validates every point (on-curve and in-subgroup) while decoding.
func NewSRSFromJSON(r io.Reader, minG1, minG2 int) (*SRS, error) {
	start := time.Now()

	var raw setupJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("kzg: decode trusted setup: %w", err)
	}

	g1 := make([]bls12381.G1Affine, len(raw.G1Monomial))
	for i, s := range raw.G1Monomial {
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("%w: g1_monomial[%d]: %v", ErrInvalidSetup, i, err)
		}
		if _, err := g1[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: g1_monomial[%d]: %v", ErrInvalidSetup, i, err)
		}
	}

	g2 := make([]bls12381.G2Affine, len(raw.G2Monomial))
	for i, s := range raw.G2Monomial {
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("%w: g2_monomial[%d]: %v", ErrInvalidSetup, i, err)
		}
		if _, err := g2[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: g2_monomial[%d]: %v", ErrInvalidSetup, i, err)
		}
	}

	srs, err := NewSRS(g1, g2, minG1, minG2)
	if err != nil {
		return nil, err
	}

	log.Module("kzg").Info("trusted setup loaded",
		"g1_points", len(g1), "g2_points", len(g2), log.Elapsed(start))
	return srs, nil
}

// NewSRSFromFile loads a ceremony JSON file from disk.
func NewSRSFromFile(path string, minG1, minG2 int) (*SRS, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kzg: open trusted setup: %w", err)
	}
	defer f.Close()
	return NewSRSFromJSON(f, minG1, minG2)
}

// NewSRSInsecure generates an SRS from a known secret. The powers of
// tau are public here, so the result offers no security; it exists for
// tests, which need multiple self-consistent setups in one process.
func NewSRSInsecure(secret *big.Int, numG1, numG2 int) (*SRS, error) {
	var tau fr.Element
	tau.SetBigInt(secret)
	if tau.IsZero() {
		return nil, ErrSecretOutOfBand
	}

	g1Powers := make([]fr.Element, numG1)
	g1Powers[0].SetOne()
	for i := 1; i < numG1; i++ {
		g1Powers[i].Mul(&g1Powers[i-1], &tau)
	}

	_, g2Jac, g1Aff, _ := bls12381.Generators()

	g1 := bls12381.BatchScalarMultiplicationG1(&g1Aff, g1Powers)

	g2 := make([]bls12381.G2Affine, numG2)
	var power fr.Element
	power.SetOne()
	var acc big.Int
	var jac bls12381.G2Jac
	for i := 0; i < numG2; i++ {
		power.BigInt(&acc)
		jac.ScalarMultiplication(&g2Jac, &acc)
		g2[i].FromJacobian(&jac)
		power.Mul(&power, &tau)
	}

	return NewSRS(g1, g2, numG1, numG2)
}
