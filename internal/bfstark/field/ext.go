package field

import "fmt"

// NonResidue is the smallest k for which x^3 - k is irreducible over F,
// making X = F[x]/(x^3 - NonResidue) a genuine cubic extension field.
// p = 3*2^30+1 is 1 mod 3, so the cube map on F* is 3-to-1 and
// non-residues exist; k=2 is the smallest one (verified offline: 2 is
// not a cube in F since 2^((p-1)/3) != 1).
const NonResidue uint64 = 2

// XElement is an element of X, represented as c0 + c1*x + c2*x^2 with
// x^3 = NonResidue.
type XElement struct {
	C0, C1, C2 Element
}

// XZero, XOne are the additive/multiplicative identities of X.
func XZero() XElement { return XElement{Zero(), Zero(), Zero()} }
func XOne() XElement  { return XElement{One(), Zero(), Zero()} }

// Lift injects an F-element into X.
func Lift(a Element) XElement { return XElement{a, Zero(), Zero()} }

// NewX builds an X-element from its three coordinates.
func NewX(c0, c1, c2 Element) XElement { return XElement{c0, c1, c2} }

func (a XElement) Add(b XElement) XElement {
	return XElement{a.C0.Add(b.C0), a.C1.Add(b.C1), a.C2.Add(b.C2)}
}

func (a XElement) Sub(b XElement) XElement {
	return XElement{a.C0.Sub(b.C0), a.C1.Sub(b.C1), a.C2.Sub(b.C2)}
}

func (a XElement) Neg() XElement {
	return XElement{a.C0.Neg(), a.C1.Neg(), a.C2.Neg()}
}

// Mul multiplies two cubic-extension elements by schoolbook
// polynomial multiplication followed by reduction using x^3 = k.
func (a XElement) Mul(b XElement) XElement {
	k := New(NonResidue)

	// (a0+a1x+a2x^2)(b0+b1x+b2x^2) = sum of degree-0..4 terms, reduced
	// using x^3=k, x^4=k*x.
	d0 := a.C0.Mul(b.C0)
	d1 := a.C0.Mul(b.C1).Add(a.C1.Mul(b.C0))
	d2 := a.C0.Mul(b.C2).Add(a.C1.Mul(b.C1)).Add(a.C2.Mul(b.C0))
	d3 := a.C1.Mul(b.C2).Add(a.C2.Mul(b.C1))
	d4 := a.C2.Mul(b.C2)

	c0 := d0.Add(d3.Mul(k))
	c1 := d1.Add(d4.Mul(k))
	c2 := d2
	return XElement{c0, c1, c2}
}

// MulF multiplies an X-element by a scalar in F.
func (a XElement) MulF(s Element) XElement {
	return XElement{a.C0.Mul(s), a.C1.Mul(s), a.C2.Mul(s)}
}

// Exp computes a^n by square-and-multiply over X.
func (a XElement) Exp(n uint64) XElement {
	result := XOne()
	base := a
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// The group order |X*| = p^3 - 1 is about 2^94 and overflows uint64,
// so Inv uses the
// extension-field generalization of Fermat via a three-stage
// application of the Frobenius endomorphism instead of one giant
// exponent. a^-1 = conj(a) / Norm(a), where conj(a) = a^p * a^p^2 and
// Norm(a) = a * a^p * a^p^2 lands in F, then is inverted there (a
// single base-field inversion).
func (a XElement) Inv() XElement {
	if a.IsZero() {
		panic("field: inverse of zero in X")
	}
	ap := frobenius(a)     // a^p
	ap2 := frobenius(ap)   // a^(p^2)
	conj := ap.Mul(ap2)    // a^p * a^(p^2)
	norm := a.Mul(conj)    // a^(1+p+p^2) = Norm(a) in F
	if norm.C1.v != 0 || norm.C2.v != 0 {
		panic("field: norm computation left the base field")
	}
	normInv := norm.C0.Inv()
	return conj.MulF(normInv)
}

// frobenius raises a to the p-th power. Frobenius is F-linear, so
// phi(c0+c1 x+c2 x^2) = c0 + c1*x^p + c2*x^(2p), and since x^3=k is a
// known constant, x^p = k^floor(p/3) * x^(p mod 3).
func frobenius(a XElement) XElement {
	k := New(NonResidue)
	// x^p = x^(3*floor(p/3) + p%3) = k^floor(p/3) * x^(p%3)
	e := Modulus / 3
	r := Modulus % 3
	kPow := k.Exp(e)
	var xp XElement
	switch r {
	case 0:
		xp = XElement{kPow, Zero(), Zero()}
	case 1:
		xp = XElement{Zero(), kPow, Zero()}
	case 2:
		xp = XElement{Zero(), Zero(), kPow}
	}
	// phi(a) = a0 + a1*x^p + a2*(x^p)^2
	xp2 := xp.Mul(xp)
	return Lift(a.C0).Add(xp.MulF(a.C1)).Add(xp2.MulF(a.C2))
}

func (a XElement) Div(b XElement) XElement { return a.Mul(b.Inv()) }

func (a XElement) Equal(b XElement) bool {
	return a.C0.Equal(b.C0) && a.C1.Equal(b.C1) && a.C2.Equal(b.C2)
}

func (a XElement) IsZero() bool {
	return a.C0.IsZero() && a.C1.IsZero() && a.C2.IsZero()
}

func (a XElement) String() string {
	return fmt.Sprintf("(%s + %s*x + %s*x^2)", a.C0, a.C1, a.C2)
}

// Bytes serializes an X-element as three 8-byte big-endian F-elements,
// the wire payload of tag 0x02 in spec.md §6.
func (a XElement) Bytes() []byte {
	out := make([]byte, 0, 24)
	out = append(out, a.C0.Bytes()...)
	out = append(out, a.C1.Bytes()...)
	out = append(out, a.C2.Bytes()...)
	return out
}

// XFromBytes is the inverse of Bytes.
func XFromBytes(b []byte) (XElement, error) {
	if len(b) != 24 {
		return XElement{}, fmt.Errorf("field: expected 24 bytes for X-element, got %d", len(b))
	}
	c0, err := FromBytes(b[0:8])
	if err != nil {
		return XElement{}, err
	}
	c1, err := FromBytes(b[8:16])
	if err != nil {
		return XElement{}, err
	}
	c2, err := FromBytes(b[16:24])
	if err != nil {
		return XElement{}, err
	}
	return XElement{c0, c1, c2}, nil
}

// XBatchInverse inverts a batch of nonzero X-elements using Montgomery's
// trick, the extension-field analogue of BatchInverse.
func XBatchInverse(xs []XElement) ([]XElement, error) {
	n := len(xs)
	if n == 0 {
		return nil, nil
	}
	prefix := make([]XElement, n)
	acc := XOne()
	for i, x := range xs {
		if x.IsZero() {
			return nil, fmt.Errorf("field: batch inverse of zero X-element at index %d", i)
		}
		prefix[i] = acc
		acc = acc.Mul(x)
	}
	accInv := acc.Inv()
	out := make([]XElement, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(xs[i])
	}
	return out, nil
}
