package field

import "testing"

func TestAddSubNeg(t *testing.T) {
	a := New(Modulus - 1)
	b := New(2)
	got := a.Add(b)
	if got.Uint64() != 1 {
		t.Fatalf("(p-1)+2 = %d, want 1", got.Uint64())
	}
	if !a.Sub(a).IsZero() {
		t.Fatalf("a-a should be zero")
	}
	if !a.Neg().Add(a).IsZero() {
		t.Fatalf("-a+a should be zero")
	}
}

func TestMulInvDiv(t *testing.T) {
	a := New(123456789)
	inv := a.Inv()
	if !a.Mul(inv).IsOne() {
		t.Fatalf("a * a^-1 should be one")
	}
	if !a.Div(a).IsOne() {
		t.Fatalf("a / a should be one")
	}
}

func TestInvZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Inv of zero should panic")
		}
	}()
	Zero().Inv()
}

func TestExp(t *testing.T) {
	a := New(7)
	got := a.Exp(5)
	want := a.Mul(a).Mul(a).Mul(a).Mul(a)
	if !got.Equal(want) {
		t.Fatalf("7^5 mismatch: got %s, want %s", got, want)
	}
	if !a.Exp(0).IsOne() {
		t.Fatalf("a^0 should be one")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a := New(987654321)
	got, err := FromBytes(a.Bytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("round trip mismatch: got %s, want %s", got, a)
	}
}

func TestPrimitiveRootOfUnity(t *testing.T) {
	for _, n := range []uint64{2, 4, 8, 1024, 1 << 20} {
		root, err := PrimitiveRootOfUnity(n)
		if err != nil {
			t.Fatalf("PrimitiveRootOfUnity(%d): %v", n, err)
		}
		if !root.Exp(n).IsOne() {
			t.Fatalf("root^%d should be one", n)
		}
		if n > 1 && root.Exp(n/2).IsOne() {
			t.Fatalf("root has order dividing %d, expected exact order %d", n/2, n)
		}
	}
}

func TestPrimitiveRootOfUnityRejectsNonDivisor(t *testing.T) {
	if _, err := PrimitiveRootOfUnity(5); err == nil {
		t.Fatal("expected an error for an order that does not divide p-1")
	}
}

func TestBatchInverse(t *testing.T) {
	xs := []Element{New(2), New(3), New(5), New(7)}
	invs, err := BatchInverse(xs)
	if err != nil {
		t.Fatalf("BatchInverse: %v", err)
	}
	for i, x := range xs {
		if !x.Mul(invs[i]).IsOne() {
			t.Fatalf("element %d: x*inv should be one", i)
		}
	}
}

func TestBatchInverseRejectsZero(t *testing.T) {
	if _, err := BatchInverse([]Element{New(1), Zero()}); err == nil {
		t.Fatal("expected an error when batch-inverting a zero element")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{0, false}, {-1, false}, {1, true}, {2, true}, {3, false},
		{4, true}, {1023, false}, {1024, true}, {1 << 20, true},
	}
	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {1024, 1024}, {1025, 2048},
	}
	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLog2(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 0}, {2, 1}, {4, 2}, {1024, 10}, {3, -1}, {0, -1},
	}
	for _, tt := range tests {
		if got := Log2(tt.n); got != tt.want {
			t.Errorf("Log2(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
