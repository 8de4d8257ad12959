// Package air implements the base trace tables and their extensions:
// boundary/transition/terminal AIR constraints, shared quotient
// machinery, and the five concrete table extensions of spec.md §4.6-4.8.
package air

import (
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/poly"
)

// Table is a column-major base trace segment in F, grounded on
// vm/processor_table.go's struct shape (named columns, AddRow,
// Pad-by-last-row-repetition) but generalized to a single Width-agnostic
// type shared by all five segments instead of one bespoke struct per
// segment, per spec.md §9's "re-architect as pure functions" note.
type Table struct {
	Width int
	Rows  [][]field.Element
}

// NewTable returns an empty table of the given column width.
func NewTable(width int) *Table {
	return &Table{Width: width, Rows: nil}
}

// AddRow appends a row, validating its width.
func (t *Table) AddRow(row []field.Element) error {
	if len(row) != t.Width {
		return fmt.Errorf("air: row has %d columns, table width is %d", len(row), t.Width)
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Height returns the number of (unpadded) rows.
func (t *Table) Height() int { return len(t.Rows) }

// Column extracts column i across all current rows.
func (t *Table) Column(i int) []field.Element {
	out := make([]field.Element, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Pad extends the table to targetHeight by repeating its last row,
// grounded on vm/processor_table.go's Pad. An empty table pads with all
// zero rows (there is no "last row" to repeat).
func (t *Table) Pad(targetHeight int) error {
	if targetHeight < t.Height() {
		return fmt.Errorf("air: cannot pad to %d, table already has %d rows", targetHeight, t.Height())
	}
	var last []field.Element
	if t.Height() > 0 {
		last = t.Rows[len(t.Rows)-1]
	} else {
		last = make([]field.Element, t.Width)
	}
	for len(t.Rows) < targetHeight {
		row := make([]field.Element, t.Width)
		copy(row, last)
		t.Rows = append(t.Rows, row)
	}
	return nil
}

// AppendRandomRows appends n rows of uniformly random field elements,
// the zero-knowledge randomizers of spec.md §3.
func (t *Table) AppendRandomRows(n int) {
	for i := 0; i < n; i++ {
		row := make([]field.Element, t.Width)
		for j := range row {
			row[j] = field.Random()
		}
		t.Rows = append(t.Rows, row)
	}
}

// interpolationDomain builds the randomizedLength interpolation points
// for a table of roundedLength real+padded rows plus numRandomizers
// zero-knowledge filler rows: the first roundedLength points are
// offset*omicron^k for omicron a primitive roundedLength-th root of
// unity, so that consecutive rows correspond EXACTLY to multiplying by
// omicron — the correspondence every transition constraint's zerofier
// (x^roundedLength-offset^roundedLength)/(x-offset*omicron^-1) assumes. The remaining
// numRandomizers points carry no row-to-row meaning and only need to be
// distinct from the first roundedLength and from each other, so they
// are drawn from a disjoint coset (offset*generator)*omicron2^j.
func interpolationDomain(roundedLength, numRandomizers int, offset field.Element) ([]field.XElement, error) {
	omicron, err := field.PrimitiveRootOfUnity(uint64(roundedLength))
	if err != nil {
		return nil, fmt.Errorf("air: deriving trace root of unity: %w", err)
	}
	total := roundedLength + numRandomizers
	xs := make([]field.XElement, total)
	p := offset
	for k := 0; k < roundedLength; k++ {
		xs[k] = field.Lift(p)
		p = p.Mul(omicron)
	}
	if numRandomizers > 0 {
		m := field.NextPowerOfTwo(numRandomizers)
		omicron2, err := field.PrimitiveRootOfUnity(uint64(m))
		if err != nil {
			return nil, fmt.Errorf("air: deriving randomizer root of unity: %w", err)
		}
		offset2 := offset.Mul(field.New(field.Generator))
		q := offset2
		for j := 0; j < numRandomizers; j++ {
			xs[roundedLength+j] = field.Lift(q)
			q = q.Mul(omicron2)
		}
	}
	return xs, nil
}

// InterpolateColumns interpolates every (padded + randomized) column of
// t — t.Height() must equal roundedLength+numRandomizers — grounded on
// spec.md §4.6's "the coset g·⟨ω⟩ restricted to the first
// randomized_length points".
func (t *Table) InterpolateColumns(roundedLength, numRandomizers int, offset field.Element) ([]poly.UniPoly, []field.XElement, error) {
	randomizedLength := t.Height()
	if randomizedLength != roundedLength+numRandomizers {
		return nil, nil, fmt.Errorf("air: table has %d rows, expected %d", randomizedLength, roundedLength+numRandomizers)
	}
	xs, err := interpolationDomain(roundedLength, numRandomizers, offset)
	if err != nil {
		return nil, nil, err
	}

	polys := make([]poly.UniPoly, t.Width)
	for c := 0; c < t.Width; c++ {
		ys := make([]field.XElement, randomizedLength)
		for r := 0; r < randomizedLength; r++ {
			ys[r] = field.Lift(t.Rows[r][c])
		}
		up, err := poly.LagrangeInterpolate(xs, ys)
		if err != nil {
			return nil, nil, fmt.Errorf("air: interpolating column %d: %w", c, err)
		}
		polys[c] = up
	}
	return polys, xs, nil
}

// InterpolateMatrix interpolates an already-X-valued column-major
// matrix (base columns lifted, extension columns computed directly in
// X) on the same two-part domain InterpolateColumns uses, shared by
// the extension-table construction in package stark.
func InterpolateMatrix(rows [][]field.XElement, width, roundedLength, numRandomizers int, offset field.Element) ([]poly.UniPoly, []field.XElement, error) {
	randomizedLength := len(rows)
	if randomizedLength != roundedLength+numRandomizers {
		return nil, nil, fmt.Errorf("air: matrix has %d rows, expected %d", randomizedLength, roundedLength+numRandomizers)
	}
	xs, err := interpolationDomain(roundedLength, numRandomizers, offset)
	if err != nil {
		return nil, nil, err
	}
	polys := make([]poly.UniPoly, width)
	for c := 0; c < width; c++ {
		ys := make([]field.XElement, randomizedLength)
		for r := 0; r < randomizedLength; r++ {
			ys[r] = rows[r][c]
		}
		up, err := poly.LagrangeInterpolate(xs, ys)
		if err != nil {
			return nil, nil, fmt.Errorf("air: interpolating extended column %d: %w", c, err)
		}
		polys[c] = up
	}
	return polys, xs, nil
}
