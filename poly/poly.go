// Package poly implements polynomial algebra in coefficient form over
// the BLS12-381 scalar field. A polynomial is a slice of field elements
// with the constant term at index 0; trailing zero coefficients are
// permitted everywhere.
package poly

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Polynomial errors.
var (
	ErrDegreeOverflow  = errors.New("poly: product exceeds the maximum coefficient count")
	ErrDivisionByZero  = errors.New("poly: division by zero")
	ErrDuplicatePoint  = errors.New("poly: duplicate evaluation point")
	ErrEmptyPointSet   = errors.New("poly: empty point set")
	ErrLengthMismatch  = errors.New("poly: mismatched point and value counts")
	ErrZeroShiftFactor = errors.New("poly: shift factor is zero")
)

// MaxCoefficients bounds the length of any polynomial the core works
// with: the extended blob size. The reconstructor relies on products
// never growing past this bound.
const MaxCoefficients = 8192

// Add returns the coefficient-wise sum a + b. The result length is
// max(len(a), len(b)).
func Add(a, b []fr.Element) []fr.Element {
	short, long := a, b
	if len(a) > len(b) {
		short, long = b, a
	}
	sum := make([]fr.Element, len(long))
	copy(sum, long)
	for i := range short {
		sum[i].Add(&sum[i], &short[i])
	}
	return sum
}

// Neg returns -a, coefficient-wise.
func Neg(a []fr.Element) []fr.Element {
	out := make([]fr.Element, len(a))
	for i := range a {
		out[i].Neg(&a[i])
	}
	return out
}

// Mul returns the convolution product a * b.
func Mul(a, b []fr.Element) ([]fr.Element, error) {
	if len(a)+len(b) > MaxCoefficients {
		return nil, fmt.Errorf("%w: %d + %d coefficients", ErrDegreeOverflow, len(a), len(b))
	}
	if len(a) == 0 || len(b) == 0 {
		return []fr.Element{}, nil
	}
	product := make([]fr.Element, len(a)+len(b)-1)
	var t fr.Element
	for i := range a {
		if a[i].IsZero() {
			continue
		}
		for j := range b {
			t.Mul(&a[i], &b[j])
			product[i+j].Add(&product[i+j], &t)
		}
	}
	return product, nil
}

// Div returns the quotient of the long division a / b; the remainder is
// discarded. The quotient equals the exact ratio only when b divides a,
// which is the only setting callers use it in.
func Div(a, b []fr.Element) ([]fr.Element, error) {
	if len(b) == 0 || b[len(b)-1].IsZero() {
		return nil, fmt.Errorf("%w: zero leading divisor coefficient", ErrDivisionByZero)
	}
	if len(a) < len(b) {
		return []fr.Element{}, nil
	}

	var leadInv fr.Element
	leadInv.Inverse(&b[len(b)-1])

	remainder := make([]fr.Element, len(a))
	copy(remainder, a)

	bpos := len(b) - 1
	quotient := make([]fr.Element, len(a)-len(b)+1)
	var t fr.Element
	for diff := len(a) - len(b); diff >= 0; diff-- {
		quotient[diff].Mul(&remainder[diff+bpos], &leadInv)
		if quotient[diff].IsZero() {
			continue
		}
		for i := 0; i <= bpos; i++ {
			t.Mul(&b[i], &quotient[diff])
			remainder[diff+i].Sub(&remainder[diff+i], &t)
		}
	}
	return quotient, nil
}

// Shift returns g(x) = p(k*x): coefficient i is scaled by k^i.
func Shift(p []fr.Element, k fr.Element) ([]fr.Element, error) {
	if k.IsZero() {
		return nil, ErrZeroShiftFactor
	}
	out := make([]fr.Element, len(p))
	var power fr.Element
	power.SetOne()
	for i := range p {
		out[i].Mul(&p[i], &power)
		power.Mul(&power, &k)
	}
	return out, nil
}

// Evaluate computes p(z) by Horner's rule.
func Evaluate(p []fr.Element, z fr.Element) fr.Element {
	var acc fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(&acc, &z)
		acc.Add(&acc, &p[i])
	}
	return acc
}

// mulLinear multiplies s by the linear factor (alpha*x + beta) in
// place, growing s by one coefficient.
func mulLinear(s []fr.Element, alpha, beta *fr.Element) []fr.Element {
	s = append(s, fr.Element{})
	var hi, lo fr.Element
	for c := len(s) - 1; c >= 0; c-- {
		hi.SetZero()
		if c > 0 {
			hi.Mul(&s[c-1], alpha)
		}
		lo.SetZero()
		if c < len(s)-1 {
			lo.Mul(&s[c], beta)
		}
		s[c].Add(&hi, &lo)
	}
	return s
}

// Interpolate returns the unique polynomial of degree < len(xs) passing
// through every (xs[i], ys[i]). The points must be pairwise distinct.
func Interpolate(xs, ys []fr.Element) ([]fr.Element, error) {
	if len(xs) == 0 {
		return nil, ErrEmptyPointSet
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d points, %d values", ErrLengthMismatch, len(xs), len(ys))
	}

	result := make([]fr.Element, len(xs))
	summand := make([]fr.Element, 0, len(xs))
	var diff, weight, beta fr.Element
	for i := range xs {
		// Build ys[i] * prod_{j != i} (x - xs[j]) / (xs[i] - xs[j])
		// one scaled linear factor at a time.
		summand = append(summand[:0], ys[i])
		for j := range xs {
			if j == i {
				continue
			}
			diff.Sub(&xs[i], &xs[j])
			if diff.IsZero() {
				return nil, fmt.Errorf("%w: index %d and %d", ErrDuplicatePoint, i, j)
			}
			weight.Inverse(&diff)
			beta.Mul(&weight, &xs[j])
			beta.Neg(&beta)
			summand = mulLinear(summand, &weight, &beta)
		}
		for c := range summand {
			result[c].Add(&result[c], &summand[c])
		}
	}
	return result, nil
}

// Vanishing returns the monic polynomial whose roots are exactly xs:
// prod (x - xs[i]). The result has length len(xs) + 1.
func Vanishing(xs []fr.Element) []fr.Element {
	one := fr.One()
	z := make([]fr.Element, 1, len(xs)+1)
	z[0].SetOne()
	var negRoot fr.Element
	for i := range xs {
		negRoot.Neg(&xs[i])
		z = mulLinear(z, &one, &negRoot)
	}
	return z
}
