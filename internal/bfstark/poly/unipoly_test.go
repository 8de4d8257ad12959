package poly

import (
	"testing"

	"github.com/vybium/bfstark/internal/bfstark/field"
)

func xe(v uint64) field.XElement { return field.Lift(field.New(v)) }

func TestUniPolyAddSubNeg(t *testing.T) {
	p := NewUniPoly([]field.XElement{xe(1), xe(2), xe(3)})
	q := NewUniPoly([]field.XElement{xe(4), xe(5)})
	sum := p.Add(q)
	if !sum.Eval(xe(2)).Equal(p.Eval(xe(2)).Add(q.Eval(xe(2)))) {
		t.Fatal("(p+q)(2) should equal p(2)+q(2)")
	}
	if !p.Sub(p).IsZero() {
		t.Fatal("p-p should be the zero polynomial")
	}
	if !p.Neg().Add(p).IsZero() {
		t.Fatal("-p+p should be the zero polynomial")
	}
}

func TestUniPolyMulMatchesPointwiseEval(t *testing.T) {
	p := NewUniPoly([]field.XElement{xe(1), xe(1)}) // 1+x
	q := NewUniPoly([]field.XElement{xe(2), xe(1).Neg()})  // 2-x
	prod := p.Mul(q)
	x := xe(5)
	want := p.Eval(x).Mul(q.Eval(x))
	if !prod.Eval(x).Equal(want) {
		t.Fatalf("(p*q)(5) mismatch: got %s, want %s", prod.Eval(x), want)
	}
}

func TestUniPolyDegreeOfZeroPolyIsNegativeOne(t *testing.T) {
	if Zero().Degree() != -1 {
		t.Fatalf("degree of zero polynomial should be -1, got %d", Zero().Degree())
	}
	if !Zero().IsZero() {
		t.Fatal("Zero() should be zero")
	}
}

func TestUniPolyTrimsTrailingZeros(t *testing.T) {
	p := NewUniPoly([]field.XElement{xe(1), xe(2), field.XZero(), field.XZero()})
	if p.Degree() != 1 {
		t.Fatalf("degree should be 1 after trimming, got %d", p.Degree())
	}
}

func TestUniPolyMulXPowShifts(t *testing.T) {
	p := NewUniPoly([]field.XElement{xe(7)})
	shifted := p.MulXPow(3)
	if !shifted.Eval(xe(2)).Equal(xe(7).Mul(xe(2).Exp(3))) {
		t.Fatal("MulXPow(3) should multiply by x^3")
	}
}

func TestUniPolyScaleX(t *testing.T) {
	p := NewUniPoly([]field.XElement{xe(1), xe(1), xe(1)}) // 1+x+x^2
	alpha := xe(3)
	scaled := p.ScaleX(alpha)
	x := xe(5)
	if !scaled.Eval(x).Equal(p.Eval(alpha.Mul(x))) {
		t.Fatal("ScaleX(alpha)(x) should equal p(alpha*x)")
	}
}

func TestUniPolyDivExactRecoversFactors(t *testing.T) {
	// (x-2)(x-3) = x^2 -5x +6
	a := UniPoly{Coeffs: []field.XElement{xe(2).Neg(), field.XOne()}}
	b := UniPoly{Coeffs: []field.XElement{xe(3).Neg(), field.XOne()}}
	prod := a.Mul(b)
	q, err := prod.DivExact(a)
	if err != nil {
		t.Fatalf("DivExact: %v", err)
	}
	if q.Degree() != b.Degree() || !q.Eval(xe(10)).Equal(b.Eval(xe(10))) {
		t.Fatalf("quotient should equal the other factor")
	}
}

func TestUniPolyDivExactRejectsNonzeroRemainder(t *testing.T) {
	p := NewUniPoly([]field.XElement{xe(1), xe(1)})
	divisor := NewUniPoly([]field.XElement{xe(0), xe(0), xe(1)}) // x^2, degree > p
	if _, err := p.DivExact(divisor); err == nil {
		t.Fatal("expected an error since p has no factor of x^2")
	}
}

func TestZerofierDomainVanishesOnDomain(t *testing.T) {
	domain := []field.XElement{xe(1), xe(2), xe(3)}
	z := ZerofierDomain(domain)
	for _, d := range domain {
		if !z.Eval(d).IsZero() {
			t.Fatalf("zerofier should vanish at %s", d)
		}
	}
	if z.Eval(xe(4)).IsZero() {
		t.Fatal("zerofier should not vanish off the domain")
	}
}

func TestLagrangeInterpolateReproducesPoints(t *testing.T) {
	xs := []field.XElement{xe(1), xe(2), xe(3)}
	ys := []field.XElement{xe(5), xe(9), xe(15)}
	p, err := LagrangeInterpolate(xs, ys)
	if err != nil {
		t.Fatalf("LagrangeInterpolate: %v", err)
	}
	for i, x := range xs {
		if !p.Eval(x).Equal(ys[i]) {
			t.Fatalf("p(%s) = %s, want %s", x, p.Eval(x), ys[i])
		}
	}
}

func TestLagrangeInterpolateRejectsDuplicateX(t *testing.T) {
	xs := []field.XElement{xe(1), xe(1)}
	ys := []field.XElement{xe(2), xe(3)}
	if _, err := LagrangeInterpolate(xs, ys); err == nil {
		t.Fatal("expected an error for duplicate x-coordinates")
	}
}

func TestUniPolyCloneIsIndependent(t *testing.T) {
	p := NewUniPoly([]field.XElement{xe(1), xe(2)})
	c := p.Clone()
	c.Coeffs[0] = xe(99)
	if p.Coeffs[0].Equal(xe(99)) {
		t.Fatal("mutating a clone should not affect the original")
	}
}
