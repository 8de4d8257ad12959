package field

import "testing"

func TestXMulInvDiv(t *testing.T) {
	a := NewX(New(3), New(5), New(7))
	inv := a.Inv()
	if !a.Mul(inv).Equal(XOne()) {
		t.Fatalf("a * a^-1 should be one, got %s", a.Mul(inv))
	}
	if !a.Div(a).Equal(XOne()) {
		t.Fatalf("a / a should be one")
	}
}

func TestXInvZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Inv of zero X-element should panic")
		}
	}()
	XZero().Inv()
}

func TestXAddSubNeg(t *testing.T) {
	a := NewX(New(1), New(2), New(3))
	b := NewX(New(4), New(5), New(6))
	if !a.Add(b).Sub(b).Equal(a) {
		t.Fatalf("(a+b)-b should equal a")
	}
	if !a.Neg().Add(a).Equal(XZero()) {
		t.Fatalf("-a+a should be zero")
	}
}

func TestXExp(t *testing.T) {
	a := NewX(New(2), New(1), New(0))
	got := a.Exp(4)
	want := a.Mul(a).Mul(a).Mul(a)
	if !got.Equal(want) {
		t.Fatalf("a^4 mismatch: got %s, want %s", got, want)
	}
	if !a.Exp(0).Equal(XOne()) {
		t.Fatalf("a^0 should be one")
	}
}

func TestLiftIsEmbeddingOfF(t *testing.T) {
	a, b := New(11), New(13)
	gotAdd := Lift(a.Add(b))
	wantAdd := Lift(a).Add(Lift(b))
	if !gotAdd.Equal(wantAdd) {
		t.Fatalf("Lift should commute with addition")
	}
	gotMul := Lift(a.Mul(b))
	wantMul := Lift(a).Mul(Lift(b))
	if !gotMul.Equal(wantMul) {
		t.Fatalf("Lift should commute with multiplication")
	}
}

func TestXBytesRoundTrip(t *testing.T) {
	a := NewX(New(111), New(222), New(333))
	got, err := XFromBytes(a.Bytes())
	if err != nil {
		t.Fatalf("XFromBytes: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("round trip mismatch: got %s, want %s", got, a)
	}
}

func TestXFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := XFromBytes(make([]byte, 23)); err == nil {
		t.Fatal("expected an error for a malformed-length buffer")
	}
}

func TestXBatchInverse(t *testing.T) {
	xs := []XElement{NewX(New(2), New(0), New(0)), NewX(New(1), New(1), New(0)), NewX(New(0), New(0), New(1))}
	invs, err := XBatchInverse(xs)
	if err != nil {
		t.Fatalf("XBatchInverse: %v", err)
	}
	for i, x := range xs {
		if !x.Mul(invs[i]).Equal(XOne()) {
			t.Fatalf("element %d: x*inv should be one", i)
		}
	}
}

func TestNonResidueIsNotACube(t *testing.T) {
	k := New(NonResidue)
	if k.Exp((Modulus - 1) / 3).IsOne() {
		t.Fatal("NonResidue must not be a cube in F, or x^3-NonResidue is reducible")
	}
}
