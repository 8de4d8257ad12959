package air

import (
	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/poly"
)

// Memory base columns: the processor trace resorted by (memory
// pointer, cycle), grounded on vm/memory_table.go's (cycle, mp, mv)
// layout, plus an IsPadding indicator (see processor.go) so the
// trailing repeat-last-row pad is a valid point on the extended trace
// polynomial rather than an implicit exception to the transition AIR.
const (
	MemPad = iota
	MemCycle
	MemMP
	MemMV
	MemBaseWidth
)

// Extension column: the permutation matching the processor table's
// memory access pattern, grounded on
// original_source/code/memory_extension.py's MemoryExtension.extend(d,e,f,beta).
const (
	MemPerm = MemBaseWidth + iota
	memExtCount
)

const MemoryWidth = MemBaseWidth + memExtCount

// MemoryExtension implements Extension for the memory table.
type MemoryExtension struct{}

func NewMemoryExtension() *MemoryExtension { return &MemoryExtension{} }

func (e *MemoryExtension) Width() int { return MemoryWidth }

func (e *MemoryExtension) BoundaryConstraints() []*poly.MultiPoly {
	n := MemoryWidth
	v := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	zero := poly.Constant(field.XZero())
	return []*poly.MultiPoly{
		v(MemPad).Sub(zero),
		v(MemCycle).Sub(zero),
		v(MemMP).Sub(zero),
		v(MemMV).Sub(zero),
	}
}

// TransitionConstraints enforces memory consistency: the distinct
// addresses visited, read off in sorted order, form a contiguous range
// starting at zero (so consecutive distinct addresses differ by
// exactly one cell) and every freshly visited cell starts out zero.
// Grounded on original_source/code/memory_extension.py's transition
// constraints; this is a partial memory consistency AIR — the
// remaining "no value changes without a corresponding processor write"
// property is carried entirely by the permutation argument against the
// processor table, not re-derived here.
func (e *MemoryExtension) TransitionConstraints(ch Challenges) []*poly.MultiPoly {
	n := 2 * MemoryWidth
	cur := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	nxt := func(i int) *poly.MultiPoly { return poly.Variable(MemoryWidth+i, n) }
	one := poly.Constant(field.XOne())

	pad, mp := cur(MemPad), cur(MemMP)
	padN, cycleN, mpN, mvN := nxt(MemPad), nxt(MemCycle), nxt(MemMP), nxt(MemMV)

	var out []*poly.MultiPoly
	out = append(out, pad.Mul(one.Sub(padN)))

	real := one.Sub(padN)
	enterPad := padN

	dmp := mpN.Sub(mp)
	out = append(out, real.Mul(dmp.Mul(dmp.Sub(one))))
	out = append(out, real.Mul(dmp.Mul(mvN)))
	out = append(out, enterPad.Mul(mpN.Sub(mp)))
	out = append(out, enterPad.Mul(mvN.Sub(cur(MemMV))))

	dF, eF, fF := poly.Constant(ch.D), poly.Constant(ch.E), poly.Constant(ch.F)
	betaF := poly.Constant(ch.Beta)
	factorN := betaF.Sub(dF.Mul(cycleN).Add(eF.Mul(mpN)).Add(fF.Mul(mvN)))
	out = append(out, real.Mul(nxt(MemPerm).Sub(cur(MemPerm).Mul(factorN))))
	out = append(out, enterPad.Mul(nxt(MemPerm).Sub(cur(MemPerm))))

	return out
}

// ComputeMemoryExtension concretely evaluates the memory permutation column,
// mirroring TransitionConstraints' recurrence. Row 0 bootstraps to
// beta (the boundary-pinned cycle=mp=mv=0 collapses the row-0 factor
// to plain beta).
func ComputeMemoryExtension(rows [][]field.Element, ch Challenges) [][]field.XElement {
	n := len(rows)
	out := make([][]field.XElement, n)
	for i := range out {
		out[i] = make([]field.XElement, memExtCount)
	}
	if n == 0 {
		return out
	}
	factor := func(r []field.Element) field.XElement {
		return ch.Beta.Sub(ch.D.Mul(field.Lift(r[MemCycle])).Add(ch.E.Mul(field.Lift(r[MemMP]))).Add(ch.F.Mul(field.Lift(r[MemMV]))))
	}
	out[0][0] = factor(rows[0])
	for i := 1; i < n; i++ {
		cur, prevExt := rows[i], out[i-1]
		if cur[MemPad].IsZero() {
			out[i][0] = prevExt[0].Mul(factor(cur))
		} else {
			out[i][0] = prevExt[0]
		}
	}
	return out
}

func (e *MemoryExtension) TerminalConstraints(ch Challenges, terminals []field.XElement) []*poly.MultiPoly {
	n := MemoryWidth
	v := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	var out []*poly.MultiPoly
	if len(terminals) > 0 {
		out = append(out, v(MemPerm).Sub(poly.Constant(terminals[0])))
	}
	return out
}
