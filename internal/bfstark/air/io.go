package air

import (
	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/poly"
)

// Input/Output base columns: a single "value" column holding the byte
// read or written, plus an IsPadding indicator (see processor.go),
// grounded on vm/tables.go's minimal I/O table shape.
const (
	IOPad = iota
	IOValue
	IOBaseWidth
)

// Extension column: the running-sum evaluation argument matching the
// processor table's input/output evaluation columns, grounded on
// original_source/code/table_extension.py's IOExtension.extend
// (gamma for input, delta for output — the same shared machinery
// parameterized by which challenge it uses).
const (
	IOEval = IOBaseWidth + iota
	ioExtCount
)

const IOWidth = IOBaseWidth + ioExtCount

// IOExtension implements Extension for both the input and output
// tables; challenge selects which of Gamma/Delta drives the running
// sum, since the two tables are otherwise structurally identical.
type IOExtension struct {
	UseDelta bool // false: use ch.Gamma (input table); true: use ch.Delta (output table)
}

func NewInputExtension() *IOExtension  { return &IOExtension{UseDelta: false} }
func NewOutputExtension() *IOExtension { return &IOExtension{UseDelta: true} }

func (e *IOExtension) Width() int { return IOWidth }

func (e *IOExtension) BoundaryConstraints() []*poly.MultiPoly {
	n := IOWidth
	v := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	zero := poly.Constant(field.XZero())
	return []*poly.MultiPoly{
		v(IOPad).Sub(zero),
		v(IOEval).Sub(v(IOValue)),
	}
}

func (e *IOExtension) challenge(ch Challenges) field.XElement {
	if e.UseDelta {
		return ch.Delta
	}
	return ch.Gamma
}

func (e *IOExtension) TransitionConstraints(ch Challenges) []*poly.MultiPoly {
	n := 2 * IOWidth
	cur := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	nxt := func(i int) *poly.MultiPoly { return poly.Variable(IOWidth+i, n) }
	one := poly.Constant(field.XOne())

	pad, value := cur(IOPad), cur(IOValue)
	padN, valueN := nxt(IOPad), nxt(IOValue)

	var out []*poly.MultiPoly
	out = append(out, pad.Mul(one.Sub(padN)))

	real := one.Sub(padN)
	enterPad := padN
	out = append(out, enterPad.Mul(valueN.Sub(value)))

	weightF := poly.Constant(e.challenge(ch))
	updated := cur(IOEval).Mul(weightF).Add(valueN)
	out = append(out, real.Mul(nxt(IOEval).Sub(updated)))
	out = append(out, enterPad.Mul(nxt(IOEval).Sub(cur(IOEval))))

	return out
}

// ComputeExtension concretely evaluates the running-sum evaluation
// column, mirroring TransitionConstraints' recurrence (row 0 bootstraps
// to its own value, matching BoundaryConstraints' eval[0]=value[0]).
func (e *IOExtension) ComputeExtension(rows [][]field.Element, ch Challenges) [][]field.XElement {
	n := len(rows)
	out := make([][]field.XElement, n)
	for i := range out {
		out[i] = make([]field.XElement, ioExtCount)
	}
	if n == 0 {
		return out
	}
	weight := e.challenge(ch)
	out[0][0] = field.Lift(rows[0][IOValue])
	for i := 1; i < n; i++ {
		cur, prevExt := rows[i], out[i-1]
		if cur[IOPad].IsZero() {
			out[i][0] = prevExt[0].Mul(weight).Add(field.Lift(cur[IOValue]))
		} else {
			out[i][0] = prevExt[0]
		}
	}
	return out
}

func (e *IOExtension) TerminalConstraints(ch Challenges, terminals []field.XElement) []*poly.MultiPoly {
	n := IOWidth
	v := func(i int) *poly.MultiPoly { return poly.Variable(i, n) }
	var out []*poly.MultiPoly
	if len(terminals) > 0 {
		out = append(out, v(IOEval).Sub(poly.Constant(terminals[0])))
	}
	return out
}
