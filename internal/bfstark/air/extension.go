package air

import (
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/poly"
)

// Challenges is the eleven-element Fiat-Shamir challenge tuple of
// spec.md §4.8, grounded on brainfuck_stark.py's prove() deriving
// a,b,c,d,e,f,alpha,beta,gamma,delta,eta from the transcript in that
// order.
type Challenges struct {
	A, B, C, D, E, F       field.XElement
	Alpha, Beta            field.XElement
	Gamma, Delta           field.XElement
	Eta                    field.XElement
}

// NewChallenges packs a transcript-sampled slice of 11 X-elements (in
// the a,b,c,d,e,f,alpha,beta,gamma,delta,eta order) into a Challenges.
func NewChallenges(xs []field.XElement) (Challenges, error) {
	if len(xs) != 11 {
		return Challenges{}, fmt.Errorf("air: expected 11 challenges, got %d", len(xs))
	}
	return Challenges{
		A: xs[0], B: xs[1], C: xs[2], D: xs[3], E: xs[4], F: xs[5],
		Alpha: xs[6], Beta: xs[7], Gamma: xs[8], Delta: xs[9], Eta: xs[10],
	}, nil
}

// Extension is the capability set every table (Processor, Instruction,
// Memory, Input, Output) implements, grounded on
// original_source/code/table_extension.py's TableExtension base class
// but reduced to a plain interface of pure functions per spec.md §9's
// redesign note (no hidden self.* accumulator state).
type Extension interface {
	// Width is the number of columns after extension (base + running
	// product/sum columns).
	Width() int
	// BoundaryConstraints returns the constraints that must vanish on row 0.
	BoundaryConstraints() []*poly.MultiPoly
	// TransitionConstraints returns the constraints, in 2*Width variables
	// (current row then next row), that must vanish on every
	// non-final row.
	TransitionConstraints(ch Challenges) []*poly.MultiPoly
	// TerminalConstraints returns the constraints, in Width variables
	// (current row only), that must vanish on the last row.
	TerminalConstraints(ch Challenges, terminals []field.XElement) []*poly.MultiPoly
}

// BoundaryQuotients divides each boundary constraint's evaluation on the
// FRI domain by the zerofier (x-rowOffset), grounded on
// table_extension.py's boundary_quotients (prover side, batch_inverse
// over the domain) and evaluate_boundary_quotients (verifier side,
// single-point division). This domain-wide routine is the prover's;
// the verifier uses its single-point twin, verifier.go's
// boundaryQuotientsAtPoint. rowOffset is the interpolation domain's row-0
// point (see table.go's interpolationDomain): row 0 sits at rowOffset,
// not at 1, since the trace domain is the coset rowOffset*<omicron>.
func BoundaryQuotients(domain *field.Domain, codewords [][]field.XElement, constraints []*poly.MultiPoly, rowOffset field.Element) ([][]field.XElement, error) {
	if len(constraints) == 0 {
		return nil, nil
	}
	n := domain.Length
	offset := field.Lift(rowOffset)
	zerofierInv := make([]field.XElement, n)
	zero := make([]field.XElement, n)
	for i := 0; i < n; i++ {
		zero[i] = field.Lift(domain.At(i)).Sub(offset)
	}
	var err error
	zerofierInv, err = field.XBatchInverse(zero)
	if err != nil {
		return nil, fmt.Errorf("air: boundary zerofier is singular on domain: %w", err)
	}

	out := make([][]field.XElement, len(constraints))
	for ci, c := range constraints {
		qw := make([]field.XElement, n)
		point := make([]field.XElement, len(codewords))
		for i := 0; i < n; i++ {
			for col := range codewords {
				point[col] = codewords[col][i]
			}
			val, err := c.Evaluate(point)
			if err != nil {
				return nil, fmt.Errorf("air: boundary constraint %d: %w", ci, err)
			}
			qw[i] = val.Mul(zerofierInv[i])
		}
		out[ci] = qw
	}
	return out, nil
}

// TransitionQuotients divides each transition constraint's evaluation on
// the FRI domain by the zerofier (x^traceLength-rowOffset^traceLength)/
// (x-rowOffset*omicron^-1) — the polynomial vanishing on all traceLength
// coset points rowOffset*omicron^k divided back up by its last root, so
// the quotient need only vanish on the first traceLength-1 transitions.
// Grounded on table_extension.py's transition_quotients/
// evaluate_transition_quotients, generalized from the unit-coset case to
// an arbitrary rowOffset (see table.go's interpolationDomain). "Next
// row" at domain index i is the codeword value at index
// (i+unitDistance)%domain.Length, where unitDistance =
// domain.Length/traceLength maps multiplication by omicron on the small
// trace domain to an index shift on the big FRI domain.
func TransitionQuotients(domain *field.Domain, codewords [][]field.XElement, constraints []*poly.MultiPoly, omicron field.Element, traceLength int, rowOffset field.Element) ([][]field.XElement, error) {
	if len(constraints) == 0 {
		return nil, nil
	}
	n := domain.Length
	if traceLength == 0 || n%traceLength != 0 {
		return nil, fmt.Errorf("air: FRI domain length %d not divisible by trace length %d", n, traceLength)
	}
	unitDistance := n / traceLength
	offset := field.Lift(rowOffset)
	offsetPow := field.Lift(rowOffset.Exp(uint64(traceLength)))
	omicronInv := offset.Mul(field.Lift(omicron.Inv()))

	zero := make([]field.XElement, n)
	for i := 0; i < n; i++ {
		x := field.Lift(domain.At(i))
		numerator := x.Exp(uint64(traceLength)).Sub(offsetPow)
		// zerofier = numerator/denom; we batch-invert the numerator and
		// multiply back by denom per index below.
		if numerator.IsZero() {
			return nil, fmt.Errorf("air: transition zerofier numerator vanishes on domain at index %d", i)
		}
		zero[i] = numerator
	}
	numInv, err := field.XBatchInverse(zero)
	if err != nil {
		return nil, fmt.Errorf("air: transition zerofier is singular on domain: %w", err)
	}

	out := make([][]field.XElement, len(constraints))
	width := len(codewords)
	for ci, c := range constraints {
		qw := make([]field.XElement, n)
		point := make([]field.XElement, 2*width)
		for i := 0; i < n; i++ {
			ni := (i + unitDistance) % n
			for col := 0; col < width; col++ {
				point[col] = codewords[col][i]
				point[width+col] = codewords[col][ni]
			}
			val, err := c.Evaluate(point)
			if err != nil {
				return nil, fmt.Errorf("air: transition constraint %d: %w", ci, err)
			}
			x := field.Lift(domain.At(i))
			denom := x.Sub(omicronInv)
			zerofierInv := denom.Mul(numInv[i])
			qw[i] = val.Mul(zerofierInv)
		}
		out[ci] = qw
	}
	return out, nil
}

// TerminalQuotients divides each terminal constraint's evaluation on the
// FRI domain by the zerofier (x-rowOffset*omicron^-1) — the coset point
// of the last real row — grounded on table_extension.py's
// terminal_quotients/evaluate_terminal_quotients, generalized to an
// arbitrary rowOffset (see table.go's interpolationDomain).
func TerminalQuotients(domain *field.Domain, codewords [][]field.XElement, constraints []*poly.MultiPoly, omicron field.Element, rowOffset field.Element) ([][]field.XElement, error) {
	if len(constraints) == 0 {
		return nil, nil
	}
	n := domain.Length
	lastPoint := field.Lift(rowOffset).Mul(field.Lift(omicron.Inv()))
	zero := make([]field.XElement, n)
	for i := 0; i < n; i++ {
		zero[i] = field.Lift(domain.At(i)).Sub(lastPoint)
	}
	zerofierInv, err := field.XBatchInverse(zero)
	if err != nil {
		return nil, fmt.Errorf("air: terminal zerofier is singular on domain: %w", err)
	}

	out := make([][]field.XElement, len(constraints))
	for ci, c := range constraints {
		qw := make([]field.XElement, n)
		point := make([]field.XElement, len(codewords))
		for i := 0; i < n; i++ {
			for col := range codewords {
				point[col] = codewords[col][i]
			}
			val, err := c.Evaluate(point)
			if err != nil {
				return nil, fmt.Errorf("air: terminal constraint %d: %w", ci, err)
			}
			qw[i] = val.Mul(zerofierInv[i])
		}
		out[ci] = qw
	}
	return out, nil
}

// CrossTableInitialQuotient divides the domain-wide difference between
// two tables' own running-product/running-sum columns by the shared
// boundary-style zerofier (x-rowOffset) — e.g. the processor table's
// instruction-access permutation column against the instruction
// table's own permutation column. Both columns are codewords over the
// same shared FRI domain; if their row-0 values genuinely agree the
// quotient is itself a low-degree polynomial, and if they don't it has
// a pole there and FRI rejects it. Grounded on spec.md §4.9 step 9/
// §4.10 step 7's initial-value difference quotient: each permutation
// and evaluation column's row 0 is otherwise left unconstrained by
// BoundaryConstraints (unlike the base columns), so matching only the
// LAST row between a table pair (the terminal checks) leaves their
// starting points unbound, and a cheating prover is free to bootstrap
// both columns from mismatched values that still telescope to the same
// terminal.
func CrossTableInitialQuotient(domain *field.Domain, a, b []field.XElement, rowOffset field.Element) ([]field.XElement, error) {
	n := domain.Length
	offset := field.Lift(rowOffset)
	zero := make([]field.XElement, n)
	for i := 0; i < n; i++ {
		zero[i] = field.Lift(domain.At(i)).Sub(offset)
	}
	zerofierInv, err := field.XBatchInverse(zero)
	if err != nil {
		return nil, fmt.Errorf("air: cross-table initial zerofier is singular on domain: %w", err)
	}
	out := make([]field.XElement, n)
	for i := 0; i < n; i++ {
		out[i] = a[i].Sub(b[i]).Mul(zerofierInv[i])
	}
	return out, nil
}

// CrossTableInitialQuotientAtPoint is CrossTableInitialQuotient reduced
// to a single evaluation point, the verifier-side twin used once both
// columns are opened at a query index rather than held as full
// domain-wide codewords.
func CrossTableInitialQuotientAtPoint(x, a, b field.XElement, rowOffset field.Element) (field.XElement, error) {
	zero := x.Sub(field.Lift(rowOffset))
	if zero.IsZero() {
		return field.XZero(), fmt.Errorf("air: cross-table initial zerofier vanishes at query point")
	}
	return a.Sub(b).Div(zero), nil
}

// DegreeBounds computes, for each constraint, SymbolicDegreeBound minus
// the subtracted zerofier degree, grounded on table_extension.py's
// transition_quotient_degree_bounds ("- (height+1)" / "- 1" patterns).
// zerofierDegree is traceLength-1 for transition constraints (the degree
// of TransitionQuotients' zerofier), 1 for boundary/terminal constraints.
func DegreeBounds(constraints []*poly.MultiPoly, maxDegrees []int, zerofierDegree int) []int {
	out := make([]int, len(constraints))
	for i, c := range constraints {
		out[i] = c.SymbolicDegreeBound(maxDegrees) - zerofierDegree
	}
	return out
}
