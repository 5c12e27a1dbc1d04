// Package domain implements the evaluation domains used by the PeerDAS
// cryptographic core: power-of-two subgroups of the BLS12-381 scalar
// field's multiplicative group, the bit-reversal permutation, and a
// radix-2 FFT over those subgroups.
package domain

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Domain errors.
var (
	ErrNotPowerOfTwo  = errors.New("domain: length is not a power of two")
	ErrDomainTooLarge = errors.New("domain: size exceeds the field's 2-adic subgroup")
	ErrSizeMismatch   = errors.New("domain: input length does not match domain size")
)

// maxDomainLog2 is the 2-adicity of the BLS12-381 scalar field: the
// multiplicative group contains a subgroup of order 2^32 and no larger
// power of two.
const maxDomainLog2 = 32

// rootOfUnity2Adic is a fixed generator of the 2^32-root subgroup,
// 7^((r-1)/2^32) mod r where 7 generates the full multiplicative group.
// This is the generator canonized by EIP-4844.
var rootOfUnity2Adic fr.Element

func init() {
	_, err := rootOfUnity2Adic.SetString("10238227357739495823651030575849232062558860180284477541189508159991286009131")
	if err != nil {
		panic(fmt.Sprintf("domain: bad 2-adic root constant: %v", err))
	}
}

// Domain is a multiplicative subgroup of order Cardinality together with
// its precomputed roots-of-unity table. A Domain is immutable after
// construction and safe for concurrent use.
type Domain struct {
	// Cardinality is the size of the subgroup; always a power of two.
	Cardinality uint64

	// CardinalityInv is 1/Cardinality in the scalar field, applied to
	// every output of the inverse FFT.
	CardinalityInv fr.Element

	// Generator is a primitive Cardinality-th root of unity.
	Generator fr.Element

	// GeneratorInv is the inverse of Generator.
	GeneratorInv fr.Element

	// Roots holds 1, w, w^2, ..., w^{Cardinality-1} in natural order.
	Roots []fr.Element

	// rootsInv holds the roots of the inverse transform: rootsInv[0] = 1
	// and rootsInv[i] = Roots[Cardinality-i].
	rootsInv []fr.Element
}

// NewDomain builds the evaluation domain of the given power-of-two size.
func NewDomain(size uint64) (*Domain, error) {
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, size)
	}
	log2 := uint64(bits.TrailingZeros64(size))
	if log2 > maxDomainLog2 {
		return nil, fmt.Errorf("%w: 2^%d", ErrDomainTooLarge, log2)
	}

	d := &Domain{Cardinality: size}

	// w = g^(2^32 / size) where g generates the 2^32 subgroup.
	exp := new(big.Int).Lsh(big.NewInt(1), uint(maxDomainLog2-log2))
	d.Generator.Exp(rootOfUnity2Adic, exp)
	d.GeneratorInv.Inverse(&d.Generator)
	d.CardinalityInv.SetUint64(size)
	d.CardinalityInv.Inverse(&d.CardinalityInv)

	d.Roots = powersOf(d.Generator, size)
	d.rootsInv = make([]fr.Element, size)
	d.rootsInv[0].SetOne()
	for i := uint64(1); i < size; i++ {
		d.rootsInv[i] = d.Roots[size-i]
	}

	return d, nil
}

// powersOf returns 1, x, x^2, ..., x^{n-1}.
func powersOf(x fr.Element, n uint64) []fr.Element {
	powers := make([]fr.Element, n)
	powers[0].SetOne()
	for i := uint64(1); i < n; i++ {
		powers[i].Mul(&powers[i-1], &x)
	}
	return powers
}

// FftFr computes the discrete Fourier transform of values over the
// domain. The input is in natural coefficient order; the output holds
// evaluations at Roots[0..n) in natural order.
func (d *Domain) FftFr(values []fr.Element) ([]fr.Element, error) {
	if uint64(len(values)) != d.Cardinality {
		return nil, fmt.Errorf("%w: have %d, domain %d", ErrSizeMismatch, len(values), d.Cardinality)
	}
	out := make([]fr.Element, len(values))
	copy(out, values)
	fftInPlace(out, d.Roots)
	return out, nil
}

// IfftFr computes the inverse discrete Fourier transform of values,
// using the reversed roots table and scaling every output by 1/n.
func (d *Domain) IfftFr(values []fr.Element) ([]fr.Element, error) {
	if uint64(len(values)) != d.Cardinality {
		return nil, fmt.Errorf("%w: have %d, domain %d", ErrSizeMismatch, len(values), d.Cardinality)
	}
	out := make([]fr.Element, len(values))
	copy(out, values)
	fftInPlace(out, d.rootsInv)
	for i := range out {
		out[i].Mul(&out[i], &d.CardinalityInv)
	}
	return out, nil
}

// fftInPlace is an iterative decimation-in-time radix-2 Cooley-Tukey
// butterfly over a scratch buffer already holding the input. roots is
// the full table for the transform size.
func fftInPlace(a []fr.Element, roots []fr.Element) {
	n := len(a)
	if n <= 1 {
		return
	}

	// Reorder into bit-reversed index order so butterflies combine
	// adjacent blocks.
	shift := 64 - uint(bits.TrailingZeros64(uint64(n)))
	for i := 0; i < n; i++ {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	var t, u fr.Element
	for m := 2; m <= n; m <<= 1 {
		half := m >> 1
		stride := n / m
		for k := 0; k < n; k += m {
			for j := 0; j < half; j++ {
				w := &roots[j*stride]
				t.Mul(w, &a[k+j+half])
				u = a[k+j]
				a[k+j].Add(&u, &t)
				a[k+j+half].Sub(&u, &t)
			}
		}
	}
}

// BitReverse permutes xs in place so that the element at index i moves
// to the index whose log2(len)-bit representation is reversed. The
// permutation is an involution. The length must be a power of two.
func BitReverse[T any](xs []T) error {
	n := uint64(len(xs))
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}
	shift := 64 - uint(bits.TrailingZeros64(n))
	for i := uint64(0); i < n; i++ {
		j := bits.Reverse64(i) >> shift
		if i < j {
			xs[i], xs[j] = xs[j], xs[i]
		}
	}
	return nil
}

// ReverseBits reverses the low log2(order) bits of i. order must be a
// power of two and i < order.
func ReverseBits(i, order uint64) uint64 {
	shift := 64 - uint(bits.TrailingZeros64(order))
	return bits.Reverse64(i) >> shift
}
