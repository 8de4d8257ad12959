package poly

import (
	"testing"

	"github.com/vybium/bfstark/internal/bfstark/field"
)

func TestMultiPolyConstantEvaluatesToItself(t *testing.T) {
	c := xe(42)
	m := Constant(c)
	got, err := m.Evaluate([]field.XElement{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got.Equal(c) {
		t.Fatalf("constant polynomial should evaluate to %s, got %s", c, got)
	}
}

func TestMultiPolyVariableEvaluatesToCoordinate(t *testing.T) {
	x1 := Variable(1, 3)
	point := []field.XElement{xe(5), xe(9), xe(13)}
	got, err := x1.Evaluate(point)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got.Equal(xe(9)) {
		t.Fatalf("x_1 should evaluate to the second coordinate, got %s", got)
	}
}

func TestMultiPolyAddMulMatchPointwise(t *testing.T) {
	x0 := Variable(0, 2)
	x1 := Variable(1, 2)
	sum := x0.Add(x1)
	prod := x0.Mul(x1)
	point := []field.XElement{xe(3), xe(4)}
	gotSum, err := sum.Evaluate(point)
	if err != nil {
		t.Fatalf("Evaluate sum: %v", err)
	}
	if !gotSum.Equal(xe(3).Add(xe(4))) {
		t.Fatalf("x0+x1 at (3,4) should be 7, got %s", gotSum)
	}
	gotProd, err := prod.Evaluate(point)
	if err != nil {
		t.Fatalf("Evaluate prod: %v", err)
	}
	if !gotProd.Equal(xe(3).Mul(xe(4))) {
		t.Fatalf("x0*x1 at (3,4) should be 12, got %s", gotProd)
	}
}

func TestMultiPolySubAndNegCancel(t *testing.T) {
	x0 := Variable(0, 1)
	diff := x0.Sub(x0)
	if !diff.IsZero() {
		t.Fatal("x0-x0 should be the zero polynomial")
	}
	negSum := x0.Add(x0.Neg())
	if !negSum.IsZero() {
		t.Fatal("x0+(-x0) should be the zero polynomial")
	}
}

func TestMultiPolyScale(t *testing.T) {
	x0 := Variable(0, 1)
	scaled := x0.Scale(xe(10))
	got, err := scaled.Evaluate([]field.XElement{xe(3)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got.Equal(xe(30)) {
		t.Fatalf("10*x0 at x0=3 should be 30, got %s", got)
	}
}

func TestMultiPolyEvaluateRejectsShortPoint(t *testing.T) {
	x2 := Variable(2, 3)
	if _, err := x2.Evaluate([]field.XElement{xe(1), xe(2)}); err == nil {
		t.Fatal("expected an error when the point omits a referenced variable")
	}
}

func TestMultiPolyEvaluateSymbolic(t *testing.T) {
	// m = x0^2 + x1
	m := Variable(0, 2).Mul(Variable(0, 2)).Add(Variable(1, 2))
	px0 := UniPoly{Coeffs: []field.XElement{xe(0), xe(1)}} // x
	px1 := UniPoly{Coeffs: []field.XElement{xe(5)}}        // 5
	got, err := m.EvaluateSymbolic([]UniPoly{px0, px1})
	if err != nil {
		t.Fatalf("EvaluateSymbolic: %v", err)
	}
	x := xe(4)
	want := x.Mul(x).Add(xe(5))
	if !got.Eval(x).Equal(want) {
		t.Fatalf("symbolic substitution mismatch: got %s, want %s", got.Eval(x), want)
	}
}

func TestMultiPolySymbolicDegreeBound(t *testing.T) {
	// m = x0^2 * x1
	m := NewMultiPoly()
	m.setTerm([]int{2, 1}, xe(1))
	bound := m.SymbolicDegreeBound([]int{3, 4})
	if bound != 2*3+1*4 {
		t.Fatalf("degree bound mismatch: got %d, want %d", bound, 2*3+1*4)
	}
}

func TestMultiPolyNumTermsTracksCancellation(t *testing.T) {
	m := Variable(0, 1).Add(Variable(0, 1).Neg())
	if m.NumTerms() != 0 {
		t.Fatalf("cancelled terms should leave NumTerms at 0, got %d", m.NumTerms())
	}
}
