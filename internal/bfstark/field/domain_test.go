package field

import "testing"

func TestNewDomainRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewDomain(3, One()); err == nil {
		t.Fatal("expected an error for a non-power-of-two length")
	}
}

func TestNewDomainElementsMatchAt(t *testing.T) {
	d, err := NewDomain(16, New(7))
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	elems := d.Elements()
	if len(elems) != 16 {
		t.Fatalf("Elements() length = %d, want 16", len(elems))
	}
	for i, e := range elems {
		if !e.Equal(d.At(i)) {
			t.Fatalf("Elements()[%d] = %s, want At(%d) = %s", i, e, i, d.At(i))
		}
	}
}

func TestNewDomainGeneratorHasExactOrder(t *testing.T) {
	d, err := NewDomain(64, One())
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	if !d.Generator.Exp(64).IsOne() {
		t.Fatal("generator^length should be one")
	}
	if d.Generator.Exp(32).IsOne() {
		t.Fatal("generator has order dividing 32, expected exact order 64")
	}
}

func TestNewDomainOffsetScalesEveryElement(t *testing.T) {
	offset := New(3)
	d, err := NewDomain(8, offset)
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	if !d.At(0).Equal(offset) {
		t.Fatalf("At(0) should equal the offset, got %s", d.At(0))
	}
	plain, err := NewDomain(8, One())
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	for i := 0; i < 8; i++ {
		if !d.At(i).Equal(offset.Mul(plain.At(i))) {
			t.Fatalf("At(%d) should equal offset*generator^%d", i, i)
		}
	}
}
