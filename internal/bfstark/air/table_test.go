package air

import (
	"testing"

	"github.com/vybium/bfstark/internal/bfstark/field"
)

func row(vals ...uint64) []field.Element {
	out := make([]field.Element, len(vals))
	for i, v := range vals {
		out[i] = field.New(v)
	}
	return out
}

func TestTableAddRowRejectsWrongWidth(t *testing.T) {
	tbl := NewTable(3)
	if err := tbl.AddRow(row(1, 2)); err == nil {
		t.Fatal("expected an error adding a row of the wrong width")
	}
}

func TestTablePadRepeatsLastRow(t *testing.T) {
	tbl := NewTable(2)
	_ = tbl.AddRow(row(1, 2))
	_ = tbl.AddRow(row(3, 4))
	if err := tbl.Pad(5); err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if tbl.Height() != 5 {
		t.Fatalf("expected height 5, got %d", tbl.Height())
	}
	for r := 2; r < 5; r++ {
		if !tbl.Rows[r][0].Equal(field.New(3)) || !tbl.Rows[r][1].Equal(field.New(4)) {
			t.Fatalf("padded row %d should repeat the last real row, got %v", r, tbl.Rows[r])
		}
	}
}

func TestTablePadEmptyTableUsesZeroRow(t *testing.T) {
	tbl := NewTable(2)
	if err := tbl.Pad(3); err != nil {
		t.Fatalf("Pad: %v", err)
	}
	for r := 0; r < 3; r++ {
		if !tbl.Rows[r][0].IsZero() || !tbl.Rows[r][1].IsZero() {
			t.Fatalf("padded row %d of an empty table should be all zero, got %v", r, tbl.Rows[r])
		}
	}
}

func TestTablePadRejectsShrinking(t *testing.T) {
	tbl := NewTable(1)
	_ = tbl.AddRow(row(1))
	_ = tbl.AddRow(row(2))
	_ = tbl.AddRow(row(3))
	if err := tbl.Pad(2); err == nil {
		t.Fatal("expected an error padding to a height smaller than the current one")
	}
}

func TestTableColumnExtractsValues(t *testing.T) {
	tbl := NewTable(2)
	_ = tbl.AddRow(row(1, 10))
	_ = tbl.AddRow(row(2, 20))
	col := tbl.Column(1)
	if len(col) != 2 || !col[0].Equal(field.New(10)) || !col[1].Equal(field.New(20)) {
		t.Fatalf("Column(1) mismatch: %v", col)
	}
}

func TestTableAppendRandomRowsIncreasesHeight(t *testing.T) {
	tbl := NewTable(2)
	_ = tbl.AddRow(row(1, 2))
	tbl.AppendRandomRows(4)
	if tbl.Height() != 5 {
		t.Fatalf("expected height 5 after appending 4 random rows, got %d", tbl.Height())
	}
}

func TestInterpolateColumnsReproducesRows(t *testing.T) {
	tbl := NewTable(2)
	_ = tbl.AddRow(row(1, 2))
	_ = tbl.AddRow(row(3, 4))
	_ = tbl.AddRow(row(5, 6))
	_ = tbl.AddRow(row(7, 8))
	// roundedLength=4, numRandomizers=0 for a clean round trip check.
	polys, xs, err := tbl.InterpolateColumns(4, 0, field.One())
	if err != nil {
		t.Fatalf("InterpolateColumns: %v", err)
	}
	if len(polys) != 2 || len(xs) != 4 {
		t.Fatalf("unexpected shapes: %d polys, %d domain points", len(polys), len(xs))
	}
	for c := 0; c < 2; c++ {
		for r := 0; r < 4; r++ {
			got := polys[c].Eval(xs[r])
			want := field.Lift(tbl.Rows[r][c])
			if !got.Equal(want) {
				t.Fatalf("column %d row %d: got %s, want %s", c, r, got, want)
			}
		}
	}
}

func TestInterpolateColumnsRejectsHeightMismatch(t *testing.T) {
	tbl := NewTable(1)
	_ = tbl.AddRow(row(1))
	if _, _, err := tbl.InterpolateColumns(4, 0, field.One()); err == nil {
		t.Fatal("expected an error when table height does not match roundedLength+numRandomizers")
	}
}
