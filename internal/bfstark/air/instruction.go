package air

import (
	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/poly"
)

// Instruction base columns: the processor's per-cycle (ip,ci,ni) rows
// merged with one filler row per program position the processor never
// visited (so that the table's ip values are gapless, the prerequisite
// for the "ip advances by 0 or 1" transition constraint below), plus an
// IsFiller indicator distinguishing the two row kinds and an IsPadding
// indicator for the trailing repeat-last-row pad. Grounded on
// vm/instruction_table.go's (ip, ci, ni) layout, extended per spec.md
// §9's redesign note: the teacher's instruction table assumes one row
// per program position, which cannot represent a position visited more
// than once by a looping program, so this table instead carries one row
// per processor cycle (for positions that were executed) or one filler
// row (for positions that were not), sorted by ip.
const (
	InstrPad = iota
	InstrFiller
	InstrIP
	InstrCI
	InstrNI
	InstrBaseWidth
)

// Extension columns: the permutation column (matching the processor
// table's instruction access pattern) and the program evaluation
// column (a Horner-style running hash of the program text), grounded
// on brainfuck_stark.py's InstructionExtension.extend(a,b,c,alpha,eta).
const (
	InstrPerm = InstrBaseWidth + iota
	InstrEval
	instrExtCount
)

const InstructionWidth = InstrBaseWidth + instrExtCount

// InstructionExtension implements Extension for the instruction table.
type InstructionExtension struct{}

func NewInstructionExtension() *InstructionExtension { return &InstructionExtension{} }

func (e *InstructionExtension) Width() int { return InstructionWidth }

func (e *InstructionExtension) BoundaryConstraints() []*poly.MultiPoly {
	n := InstructionWidth
	v := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	zero := poly.Constant(field.XZero())
	return []*poly.MultiPoly{
		v(InstrPad).Sub(zero),
		v(InstrFiller).Sub(zero), // the program always starts execution at ip=0.
		v(InstrIP).Sub(zero),
		v(InstrEval).Sub(v(InstrCI)),
	}
}

func (e *InstructionExtension) TransitionConstraints(ch Challenges) []*poly.MultiPoly {
	n := 2 * InstructionWidth
	cur := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	nxt := func(i int) *poly.MultiPoly { return poly.Variable(InstructionWidth+i, n) }
	one := poly.Constant(field.XOne())

	pad, ip, ci, ni := cur(InstrPad), cur(InstrIP), cur(InstrCI), cur(InstrNI)
	padN, ipN, ciN, niN, fillerN := nxt(InstrPad), nxt(InstrIP), nxt(InstrCI), nxt(InstrNI), nxt(InstrFiller)

	var out []*poly.MultiPoly
	out = append(out, pad.Mul(one.Sub(padN)))

	real := one.Sub(padN)
	enterPad := padN

	d := ipN.Sub(ip) // 0 (same position, or padding) or 1 (next position).
	// ip either repeats (same position revisited, or trailing padding) or
	// advances by exactly one — gapless, so every program position is
	// represented by at least one row.
	out = append(out, real.Mul(d.Mul(d.Sub(one))))
	// ci/ni may only change when ip actually advances.
	stay := one.Sub(d)
	out = append(out, real.Mul(stay).Mul(ciN.Sub(ci)))
	out = append(out, real.Mul(stay).Mul(niN.Sub(ni)))
	out = append(out, enterPad.Mul(ipN.Sub(ip)))

	aF, bF, cF := poly.Constant(ch.A), poly.Constant(ch.B), poly.Constant(ch.C)
	alphaF := poly.Constant(ch.Alpha)
	factorN := alphaF.Sub(aF.Mul(ipN).Add(bF.Mul(ciN)).Add(cF.Mul(niN)))
	// A filler row (a program position the processor never executed) is
	// not a processor cycle, so it contributes no factor to the
	// permutation running product — only genuine execution rows do.
	appliedFactor := factorN.Sub(one).Mul(one.Sub(fillerN)).Add(one)
	out = append(out, real.Mul(nxt(InstrPerm).Sub(cur(InstrPerm).Mul(appliedFactor))))
	out = append(out, enterPad.Mul(nxt(InstrPerm).Sub(cur(InstrPerm))))

	// Program evaluation: eval' = eval*eta+ci' when ip advances, else
	// unchanged — grounded on the Horner-style program digest of
	// brainfuck_stark.py's instruction extension terminal. This runs
	// regardless of whether the advancing row is a filler or a genuine
	// cycle, since the digest must cover every program position exactly
	// once however the processor happened to reach it.
	etaF := poly.Constant(ch.Eta)
	updated := cur(InstrEval).Mul(etaF).Add(ciN)
	evalDelta := real.Mul(d).Mul(updated.Sub(cur(InstrEval)))
	out = append(out, nxt(InstrEval).Sub(cur(InstrEval)).Sub(evalDelta))

	return out
}

// ComputeInstructionExtension concretely evaluates the permutation and program
// evaluation columns over a full base row set, mirroring
// TransitionConstraints' recurrence: a filler row contributes no
// factor to the permutation running product, and the program digest
// advances only when ip actually moves to a new position (genuine
// cycle or filler alike).
func ComputeInstructionExtension(rows [][]field.Element, ch Challenges) [][]field.XElement {
	n := len(rows)
	out := make([][]field.XElement, n)
	for i := range out {
		out[i] = make([]field.XElement, instrExtCount)
	}
	if n == 0 {
		return out
	}
	factor := func(r []field.Element) field.XElement {
		return ch.Alpha.Sub(ch.A.Mul(field.Lift(r[InstrIP])).Add(ch.B.Mul(field.Lift(r[InstrCI]))).Add(ch.C.Mul(field.Lift(r[InstrNI]))))
	}

	out[0][0] = factor(rows[0])
	out[0][1] = field.Lift(rows[0][InstrCI])

	for i := 1; i < n; i++ {
		cur, prev := rows[i], rows[i-1]
		prevExt := out[i-1]
		if cur[InstrPad].IsZero() {
			if cur[InstrFiller].IsZero() {
				out[i][0] = prevExt[0].Mul(factor(cur))
			} else {
				out[i][0] = prevExt[0]
			}
			if !cur[InstrIP].Equal(prev[InstrIP]) {
				out[i][1] = prevExt[1].Mul(ch.Eta).Add(field.Lift(cur[InstrCI]))
			} else {
				out[i][1] = prevExt[1]
			}
		} else {
			out[i][0], out[i][1] = prevExt[0], prevExt[1]
		}
	}
	return out
}

func (e *InstructionExtension) TerminalConstraints(ch Challenges, terminals []field.XElement) []*poly.MultiPoly {
	n := InstructionWidth
	v := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	var out []*poly.MultiPoly
	if len(terminals) > 0 {
		out = append(out, v(InstrPerm).Sub(poly.Constant(terminals[0])))
	}
	if len(terminals) > 1 {
		out = append(out, v(InstrEval).Sub(poly.Constant(terminals[1])))
	}
	return out
}
