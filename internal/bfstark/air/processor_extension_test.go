package air_test

import (
	"testing"

	"github.com/vybium/bfstark/internal/bfstark/air"
	"github.com/vybium/bfstark/internal/bfstark/bfvm"
	"github.com/vybium/bfstark/internal/bfstark/field"
)

func testChallenges() air.Challenges {
	xs := make([]field.XElement, 11)
	for i := range xs {
		xs[i] = field.NewX(field.New(uint64(100+i)), field.New(uint64(200+i)), field.New(uint64(300+i)))
	}
	ch, _ := air.NewChallenges(xs)
	return ch
}

func fullRow(base []field.Element, ext []field.XElement) []field.XElement {
	out := make([]field.XElement, len(base)+len(ext))
	for i, b := range base {
		out[i] = field.Lift(b)
	}
	for i, e := range ext {
		out[len(base)+i] = e
	}
	return out
}

func TestProcessorBoundaryConstraintsVanishOnRowZero(t *testing.T) {
	trace, err := bfvm.Run([]byte("+++."), nil, 1<<10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ch := testChallenges()
	ext := air.ComputeProcessorExtension(trace.Processor.Rows, ch)
	row0 := fullRow(trace.Processor.Rows[0], ext[0])

	pe := air.NewProcessorExtension()
	for i, c := range pe.BoundaryConstraints() {
		got, err := c.Evaluate(row0)
		if err != nil {
			t.Fatalf("boundary constraint %d: %v", i, err)
		}
		if !got.IsZero() {
			t.Fatalf("boundary constraint %d should vanish on row 0, got %s", i, got)
		}
	}
}

func TestProcessorTransitionConstraintsVanishBetweenRealRows(t *testing.T) {
	trace, err := bfvm.Run([]byte(",[.,]"), []byte("hi\x00"), 1<<10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ch := testChallenges()
	ext := air.ComputeProcessorExtension(trace.Processor.Rows, ch)

	pe := air.NewProcessorExtension()
	constraints := pe.TransitionConstraints(ch)
	for i := 0; i < trace.Processor.Height()-1; i++ {
		cur := fullRow(trace.Processor.Rows[i], ext[i])
		nxt := fullRow(trace.Processor.Rows[i+1], ext[i+1])
		point := append(append([]field.XElement{}, cur...), nxt...)
		for ci, c := range constraints {
			got, err := c.Evaluate(point)
			if err != nil {
				t.Fatalf("transition constraint %d at row %d: %v", ci, i, err)
			}
			if !got.IsZero() {
				t.Fatalf("transition constraint %d should vanish between rows %d and %d, got %s", ci, i, i+1, got)
			}
		}
	}
}

func TestProcessorTerminalConstraintsMatchComputedTerminals(t *testing.T) {
	trace, err := bfvm.Run([]byte("+++."), nil, 1<<10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ch := testChallenges()
	ext := air.ComputeProcessorExtension(trace.Processor.Rows, ch)
	last := trace.Processor.Height() - 1
	terminals := ext[last]
	lastRow := fullRow(trace.Processor.Rows[last], ext[last])

	pe := air.NewProcessorExtension()
	for i, c := range pe.TerminalConstraints(ch, terminals) {
		got, err := c.Evaluate(lastRow)
		if err != nil {
			t.Fatalf("terminal constraint %d: %v", i, err)
		}
		if !got.IsZero() {
			t.Fatalf("terminal constraint %d should vanish on the last row given its own terminals, got %s", i, got)
		}
	}
}

func TestProcessorTransitionConstraintsRejectCorruptedNextRow(t *testing.T) {
	trace, err := bfvm.Run([]byte("+++."), nil, 1<<10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ch := testChallenges()
	ext := air.ComputeProcessorExtension(trace.Processor.Rows, ch)

	pe := air.NewProcessorExtension()
	constraints := pe.TransitionConstraints(ch)

	cur := fullRow(trace.Processor.Rows[0], ext[0])
	nxt := fullRow(trace.Processor.Rows[1], ext[1])
	nxt[air.ProcMP] = nxt[air.ProcMP].Add(field.XOne()) // corrupt the memory pointer advance

	point := append(append([]field.XElement{}, cur...), nxt...)
	allZero := true
	for _, c := range constraints {
		got, err := c.Evaluate(point)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !got.IsZero() {
			allZero = false
		}
	}
	if allZero {
		t.Fatal("expected at least one transition constraint to detect the corrupted memory pointer")
	}
}

// TestProcessorTransitionConstraintsRejectCompensatedCorruption guards
// against a combined constraint that a cheating prover could satisfy by
// offsetting one column's error against another's (e.g. mp off by +1
// exactly cancelling mv off by -1 inside a single summed polynomial).
// Each column delta must be pinned by its own separately-gated
// constraint so that no pair of individually-nonzero errors can cancel.
func TestProcessorTransitionConstraintsRejectCompensatedCorruption(t *testing.T) {
	trace, err := bfvm.Run([]byte("+++."), nil, 1<<10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ch := testChallenges()
	ext := air.ComputeProcessorExtension(trace.Processor.Rows, ch)

	pe := air.NewProcessorExtension()
	constraints := pe.TransitionConstraints(ch)

	cur := fullRow(trace.Processor.Rows[0], ext[0])
	nxt := fullRow(trace.Processor.Rows[1], ext[1])
	// Row 0->1 executes '+': mp should stay fixed and mv should advance by
	// one. Perturb both mp (+1) and mv (-1) together so that, under the
	// old buggy additive combination ((ip'-ip-1)+(mp'-mp)+(mv'-mv-1)),
	// the two errors would cancel and the combined term would still
	// vanish even though neither mp nor mv actually holds.
	nxt[air.ProcMP] = nxt[air.ProcMP].Add(field.XOne())
	nxt[air.ProcMV] = nxt[air.ProcMV].Sub(field.XOne())

	point := append(append([]field.XElement{}, cur...), nxt...)
	allZero := true
	for _, c := range constraints {
		got, err := c.Evaluate(point)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !got.IsZero() {
			allZero = false
		}
	}
	if allZero {
		t.Fatal("expected a transition constraint to detect the compensated mp/mv corruption")
	}
}
