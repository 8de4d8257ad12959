// Package field implements the prime field F and its cubic extension X
// used throughout the STARK engine. Both are fixed-modulus finite fields;
// the modulus is small enough (under 2^32) that arithmetic is done with
// plain uint64 multiplication rather than math/big, unlike the teacher's
// generic big.Int field — there the modulus was a constructor parameter,
// here spec.md fixes one concrete field for the whole engine.
package field

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Modulus is the prime p = 3*2^30 + 1. It has 2^30 as a divisor of p-1,
// which is enough power-of-two roots of unity for every domain this
// engine needs, and matches the modulus the teacher's core.Field tests
// exercise GetPrimitiveRootOfUnity against.
const Modulus uint64 = 3221225473

// Generator is a primitive root of the multiplicative group F*.
const Generator uint64 = 5

// Element is a value in F, always kept reduced to [0, Modulus).
type Element struct {
	v uint64
}

// Zero is the additive identity.
func Zero() Element { return Element{0} }

// One is the multiplicative identity.
func One() Element { return Element{1} }

// New reduces x modulo Modulus and returns the corresponding Element.
func New(x uint64) Element { return Element{x % Modulus} }

// NewFromInt64 reduces a signed integer, handling negative values.
func NewFromInt64(x int64) Element {
	m := int64(Modulus)
	x %= m
	if x < 0 {
		x += m
	}
	return Element{uint64(x)}
}

// Random returns a uniformly random field element using crypto/rand.
func Random() Element {
	for {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			panic(fmt.Errorf("field: random generation failed: %w", err))
		}
		x := binary.BigEndian.Uint64(buf[:])
		if x < (^uint64(0)/Modulus)*Modulus { // reject to avoid modulo bias
			return Element{x % Modulus}
		}
	}
}

// Uint64 returns the canonical representative of e.
func (e Element) Uint64() uint64 { return e.v }

func (e Element) Add(o Element) Element {
	s := e.v + o.v
	if s >= Modulus {
		s -= Modulus
	}
	return Element{s}
}

func (e Element) Sub(o Element) Element {
	if e.v >= o.v {
		return Element{e.v - o.v}
	}
	return Element{e.v + Modulus - o.v}
}

func (e Element) Neg() Element {
	if e.v == 0 {
		return e
	}
	return Element{Modulus - e.v}
}

func (e Element) Mul(o Element) Element {
	return Element{(e.v * o.v) % Modulus}
}

// Exp computes e^n via square-and-multiply.
func (e Element) Exp(n uint64) Element {
	result := One()
	base := e
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// Inv computes the multiplicative inverse via Fermat's little theorem:
// e^(p-2) == e^-1 for e != 0. Panics on zero, matching the teacher's
// core.FieldElement.Inv contract of erroring on a zero divisor — the
// caller of a field inverse in this engine never expects one, so a
// panic here is the prover/verifier "programmer error" path spec.md §7
// reserves for invariant violations.
func (e Element) Inv() Element {
	if e.v == 0 {
		panic("field: inverse of zero")
	}
	return e.Exp(Modulus - 2)
}

func (e Element) Div(o Element) Element { return e.Mul(o.Inv()) }

func (e Element) Equal(o Element) bool { return e.v == o.v }
func (e Element) IsZero() bool         { return e.v == 0 }
func (e Element) IsOne() bool          { return e.v == 1 }

func (e Element) String() string { return fmt.Sprintf("%d", e.v) }

// Bytes serializes e as an 8-byte big-endian value, the F-element wire
// tag (0x03) payload of spec.md §6.
func (e Element) Bytes() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], e.v)
	return buf[:]
}

// FromBytes is the inverse of Bytes.
func FromBytes(b []byte) (Element, error) {
	if len(b) != 8 {
		return Element{}, fmt.Errorf("field: expected 8 bytes, got %d", len(b))
	}
	return New(binary.BigEndian.Uint64(b)), nil
}

// PrimitiveRootOfUnity returns a generator of the unique cyclic subgroup
// of order n, where n must divide Modulus-1. Grounded on
// core/polynomial_barycentric.go's GetPrimitiveRootOfUnity: derive it
// from the fixed field Generator instead of brute-forcing small
// candidates, since Generator is already known to generate all of F*.
func PrimitiveRootOfUnity(n uint64) (Element, error) {
	if n == 0 || (Modulus-1)%n != 0 {
		return Element{}, fmt.Errorf("field: no subgroup of order %d (does not divide p-1)", n)
	}
	exp := (Modulus - 1) / n
	root := Element{Generator}.Exp(exp)
	if !root.Exp(n).IsOne() {
		return Element{}, fmt.Errorf("field: failed to derive root of unity of order %d", n)
	}
	return root, nil
}

// BatchInverse inverts a batch of nonzero elements in a single field
// inversion plus 3n multiplications (Montgomery's trick), grounded
// on the batch-inversion call pattern referenced throughout
// core/polynomial_barycentric.go.
func BatchInverse(xs []Element) ([]Element, error) {
	n := len(xs)
	if n == 0 {
		return nil, nil
	}
	prefix := make([]Element, n)
	acc := One()
	for i, x := range xs {
		if x.IsZero() {
			return nil, fmt.Errorf("field: batch inverse of zero at index %d", i)
		}
		prefix[i] = acc
		acc = acc.Mul(x)
	}
	accInv := acc.Inv()
	out := make([]Element, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(xs[i])
	}
	return out, nil
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Log2 returns log2(n) for a power-of-two n, or -1 otherwise.
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	r := 0
	for n > 1 {
		n >>= 1
		r++
	}
	return r
}
