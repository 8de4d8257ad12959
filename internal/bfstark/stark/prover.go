package stark

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/bfstark/internal/bfstark/air"
	"github.com/vybium/bfstark/internal/bfstark/bferr"
	"github.com/vybium/bfstark/internal/bfstark/bfvm"
	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/fri"
	"github.com/vybium/bfstark/internal/bfstark/merkle"
	"github.com/vybium/bfstark/internal/bfstark/transcript"
)

// numTables is the fixed five-table layout of spec.md §4.6: Processor,
// Instruction, Memory, Input, Output, in the order every cross-table
// index (extension terminal pushes, table-spec slices) below assumes.
const numTables = 5

const (
	tblProcessor = iota
	tblInstruction
	tblMemory
	tblInput
	tblOutput
)

// tableSpec bundles one table's per-prover-run working state: its base
// trace, extension machinery, and the interpolation-domain parameters
// derived for its own (possibly different from every other table's)
// height, grounded on table_extension.py's per-table
// fri_domain_length/omicron bookkeeping but split so that only the
// rounding/offset math is table-specific while the FRI evaluation
// domain itself (below) is shared across all five.
type tableSpec struct {
	name           string
	table          *air.Table
	ext            air.Extension
	baseWidth      int
	padCol         int
	roundedLength  int
	numRandomizers int
	omicron        field.Element
	offset         field.Element
}

// Prove runs program against input, builds the five trace tables, and
// produces a Proof attesting that execution halted within cfg.MaxCycles
// and produced exactly the given output — the pipeline of spec.md
// §4.9, grounded step-for-step on brainfuck_stark.py's prove().
func Prove(cfg Config, claim Claim) (*Proof, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	trace, err := bfvm.Run(claim.Program, claim.Input, cfg.MaxCycles)
	if err != nil {
		return nil, bferr.Wrap(bferr.KindConfigError, "running program to build trace", err)
	}
	if string(trace.OutputBytes) != string(claim.Output) {
		return nil, bferr.New(bferr.KindAlgebraicMismatch, "claimed output does not match the program's actual output")
	}

	specs := []*tableSpec{
		{name: "processor", table: trace.Processor, ext: air.NewProcessorExtension(), baseWidth: air.ProcBaseWidth, padCol: air.ProcPad},
		{name: "instruction", table: trace.Instruction, ext: air.NewInstructionExtension(), baseWidth: air.InstrBaseWidth, padCol: air.InstrPad},
		{name: "memory", table: trace.Memory, ext: air.NewMemoryExtension(), baseWidth: air.MemBaseWidth, padCol: air.MemPad},
		{name: "input", table: trace.Input, ext: air.NewInputExtension(), baseWidth: air.IOBaseWidth, padCol: air.IOPad},
		{name: "output", table: trace.Output, ext: air.NewOutputExtension(), baseWidth: air.IOBaseWidth, padCol: air.IOPad},
	}

	friDomainLength := 0
	var friOffset field.Element
	for _, sp := range specs {
		height := sp.table.Height()
		if height == 0 {
			height = 1
		}
		roundedLength, numRandomizers, tableFriLen, off, friOff, err := tableDomain(height, cfg)
		if err != nil {
			return nil, bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("deriving %s table domain", sp.name), err)
		}
		sp.roundedLength = roundedLength
		sp.numRandomizers = numRandomizers
		omicron, err := field.PrimitiveRootOfUnity(uint64(roundedLength))
		if err != nil {
			return nil, bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("deriving %s trace root of unity", sp.name), err)
		}
		sp.omicron = omicron
		sp.offset = off
		friOffset = friOff
		if tableFriLen > friDomainLength {
			friDomainLength = tableFriLen
		}
	}

	friOmega, err := field.PrimitiveRootOfUnity(uint64(friDomainLength))
	if err != nil {
		return nil, bferr.Wrap(bferr.KindConfigError, "deriving shared FRI domain root of unity", err)
	}
	friDomain := &field.Domain{Offset: friOffset, Generator: friOmega, Length: friDomainLength}

	tr := transcript.New()
	tr.Observe(claim.Program)
	tr.Observe(claim.Input)
	tr.Observe(claim.Output)

	// Each table's padded trace length is public (it fixes the
	// interpolation domain both sides must agree on) but is only known
	// after running the program, so it is pushed rather than derived
	// from the claim alone. numRandomizers/friDomainLength then follow
	// deterministically from roundedLength plus the public Config.
	for _, sp := range specs {
		tr.Push(TagF, encodeUint32(uint32(sp.roundedLength)))
	}

	// Phase A: pad (with the explicit IsPadding indicator, not a bare
	// repeat) and randomize each table's base columns, then commit. The
	// five tables are independent until their roots reach the
	// transcript, so the padding/interpolation/evaluation/commitment
	// work runs concurrently via errgroup; only the final tr.Push of
	// each root happens afterward, in table order, so Fiat-Shamir
	// determinism never depends on goroutine scheduling.
	baseColCodewords := make([][][]field.XElement, numTables) // [table][col][domain index]
	baseTrees := make([]*merkle.Tree, numTables)
	{
		g := new(errgroup.Group)
		for i, sp := range specs {
			i, sp := i, sp
			g.Go(func() error {
				if err := padWithIndicator(sp.table, sp.roundedLength, sp.padCol); err != nil {
					return bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("padding %s table", sp.name), err)
				}
				sp.table.AppendRandomRows(sp.numRandomizers)

				polys, _, err := sp.table.InterpolateColumns(sp.roundedLength, sp.numRandomizers, sp.offset)
				if err != nil {
					return bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("interpolating %s base columns", sp.name), err)
				}
				cws := make([][]field.XElement, sp.baseWidth)
				for c := range polys {
					cw, err := field.CosetEvaluate(polys[c].Coeffs, friOffset, friOmega, friDomainLength)
					if err != nil {
						return bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("evaluating %s base column %d", sp.name, c), err)
					}
					cws[c] = cw
				}
				baseColCodewords[i] = cws

				leaves := make([][]byte, friDomainLength)
				for j := 0; j < friDomainLength; j++ {
					var leaf []byte
					for c := range cws {
						leaf = append(leaf, cws[c][j].Bytes()...)
					}
					leaves[j] = leaf
				}
				tree, err := merkle.Commit(leaves)
				if err != nil {
					return bferr.Wrap(bferr.KindMerkleFailure, fmt.Sprintf("committing %s base codewords", sp.name), err)
				}
				baseTrees[i] = tree
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	for i := range specs {
		tr.Push(TagRoot, baseTrees[i].Root()[:])
	}

	challengeXs := tr.SampleXElements(11)
	ch, err := air.NewChallenges(challengeXs)
	if err != nil {
		return nil, bferr.Wrap(bferr.KindConfigError, "packing challenges", err)
	}

	// Phase B: compute extension columns concretely, interpolate,
	// evaluate, commit — again run across tables via errgroup, with the
	// terminal scalars and the extension root pushed afterward in table
	// order so the transcript sequence is unaffected by scheduling.
	extColCodewords := make([][][]field.XElement, numTables)
	extTrees := make([]*merkle.Tree, numTables)
	terminals := make([][]field.XElement, numTables)
	{
		g := new(errgroup.Group)
		for i, sp := range specs {
			i, sp := i, sp
			g.Go(func() error {
				var extRows [][]field.XElement
				switch i {
				case tblProcessor:
					extRows = air.ComputeProcessorExtension(sp.table.Rows, ch)
				case tblInstruction:
					extRows = air.ComputeInstructionExtension(sp.table.Rows, ch)
				case tblMemory:
					extRows = air.ComputeMemoryExtension(sp.table.Rows, ch)
				case tblInput:
					extRows = sp.ext.(*air.IOExtension).ComputeExtension(sp.table.Rows, ch)
				case tblOutput:
					extRows = sp.ext.(*air.IOExtension).ComputeExtension(sp.table.Rows, ch)
				}
				extWidth := sp.ext.Width() - sp.baseWidth
				polys, _, err := air.InterpolateMatrix(extRows, extWidth, sp.roundedLength, sp.numRandomizers, sp.offset)
				if err != nil {
					return bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("interpolating %s extension columns", sp.name), err)
				}
				cws := make([][]field.XElement, extWidth)
				for c := range polys {
					cw, err := field.CosetEvaluate(polys[c].Coeffs, friOffset, friOmega, friDomainLength)
					if err != nil {
						return bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("evaluating %s extension column %d", sp.name, c), err)
					}
					cws[c] = cw
				}
				extColCodewords[i] = cws

				term := make([]field.XElement, extWidth)
				lastRow := sp.roundedLength - 1
				for c := 0; c < extWidth; c++ {
					term[c] = extRows[lastRow][c]
				}
				terminals[i] = term

				leaves := make([][]byte, friDomainLength)
				for j := 0; j < friDomainLength; j++ {
					var leaf []byte
					for c := range cws {
						leaf = append(leaf, cws[c][j].Bytes()...)
					}
					leaves[j] = leaf
				}
				tree, err := merkle.Commit(leaves)
				if err != nil {
					return bferr.Wrap(bferr.KindMerkleFailure, fmt.Sprintf("committing %s extension codewords", sp.name), err)
				}
				extTrees[i] = tree
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	for i := range specs {
		for _, t := range terminals[i] {
			tr.Push(TagX, t.Bytes())
		}
		tr.Push(TagRoot, extTrees[i].Root()[:])
	}

	// Combined AIR quotients, one codeword per boundary/transition/
	// terminal constraint across all five tables, each divided by its
	// table-specific zerofier but evaluated on the single shared FRI
	// domain (see extension.go's rowOffset generalization).
	var allQuotients [][]field.XElement
	for i, sp := range specs {
		full := append(append([][]field.XElement{}, baseColCodewords[i]...), extColCodewords[i]...)

		bq, err := air.BoundaryQuotients(friDomain, full, sp.ext.BoundaryConstraints(), sp.offset)
		if err != nil {
			return nil, bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("%s boundary quotients", sp.name), err)
		}
		tq, err := air.TransitionQuotients(friDomain, full, sp.ext.TransitionConstraints(ch), sp.omicron, sp.roundedLength, sp.offset)
		if err != nil {
			return nil, bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("%s transition quotients", sp.name), err)
		}
		tmq, err := air.TerminalQuotients(friDomain, full, sp.ext.TerminalConstraints(ch, terminals[i]), sp.omicron, sp.offset)
		if err != nil {
			return nil, bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("%s terminal quotients", sp.name), err)
		}
		allQuotients = append(allQuotients, bq...)
		allQuotients = append(allQuotients, tq...)
		allQuotients = append(allQuotients, tmq...)
	}

	// Cross-table initial-value difference quotients (spec.md §4.9 step
	// 9): the processor table's instruction-access and memory-access
	// permutation columns must start (row 0) at the same value as the
	// paired table's own permutation column — an equality the terminal
	// checks above never enforce, since they only compare the LAST row.
	// Every table shares the same row-0 domain point (tableDomain's
	// offset does not depend on height), so the two columns can be
	// compared directly on the shared FRI domain.
	rowOffset := specs[tblProcessor].offset
	instrInitQ, err := air.CrossTableInitialQuotient(friDomain, extColCodewords[tblProcessor][0], extColCodewords[tblInstruction][0], rowOffset)
	if err != nil {
		return nil, bferr.Wrap(bferr.KindAlgebraicMismatch, "processor/instruction initial-value quotient", err)
	}
	memInitQ, err := air.CrossTableInitialQuotient(friDomain, extColCodewords[tblProcessor][1], extColCodewords[tblMemory][0], rowOffset)
	if err != nil {
		return nil, bferr.Wrap(bferr.KindAlgebraicMismatch, "processor/memory initial-value quotient", err)
	}
	allQuotients = append(allQuotients, instrInitQ, memInitQ)

	// Non-linear combination: a transcript-sampled weight per quotient
	// codeword, summed pointwise. The shared FRI domain is already
	// sized generously above every table's natural degree bound (see
	// tableDomain's doc comment), so this engine forgoes the
	// x^shift degree-alignment terms of a tight DEEP-ALI combination in
	// favor of one weight per quotient — a simplification recorded in
	// DESIGN.md, traded for not re-deriving brainfuck_stark.py's exact
	// per-quotient degree-bound arithmetic.
	weights := tr.SampleXElements(len(allQuotients))
	combined := make([]field.XElement, friDomainLength)
	for j := 0; j < friDomainLength; j++ {
		acc := field.XZero()
		for k, qw := range allQuotients {
			acc = acc.Add(weights[k].Mul(qw[j]))
		}
		combined[j] = acc
	}

	friParams := fri.Params{ExpansionFactor: cfg.ExpansionFactor, NumColinearityChecks: cfg.NumColinearityChecks}
	indices, err := fri.Prove(combined, friDomain, friParams, tr)
	if err != nil {
		return nil, bferr.Wrap(bferr.KindFriRejection, "running FRI", err)
	}

	// Open every table's base and extension codewords at the FRI query
	// points, so the verifier can redo the AIR evaluation that produced
	// allQuotients above instead of trusting the combined codeword
	// alone — the DEEP-style cross-check spec.md §4.10 steps 5-8
	// require. Reuses the exact trees committed in phases A/B above:
	// merkle.Commit draws fresh per-leaf salts on every call, so
	// recomputing a tree from the same leaves here would produce a
	// different root than the one already pushed to the transcript.
	for i, sp := range specs {
		baseTree, extTree := baseTrees[i], extTrees[i]
		for _, idx := range indices {
			nextIdx := (idx + friDomainLength/sp.roundedLength) % friDomainLength
			for _, openIdx := range []int{idx, nextIdx} {
				pushRowOpening(tr, baseTree, baseColCodewords[i], openIdx)
				pushRowOpening(tr, extTree, extColCodewords[i], openIdx)
			}
		}
	}

	return &Proof{Items: tr.Items(), Kinds: tr.Kinds()}, nil
}

// padWithIndicator pads t to targetHeight by repeating its last row
// (or the zero row, if t is empty) and then marks every appended row's
// padCol as 1, distinguishing genuine trailing repeats from padding —
// the concrete counterpart of each table's IsPadding boundary/freeze
// constraints.
func padWithIndicator(t *air.Table, targetHeight, padCol int) error {
	original := t.Height()
	if err := t.Pad(targetHeight); err != nil {
		return err
	}
	one := field.New(1)
	for i := original; i < targetHeight; i++ {
		t.Rows[i][padCol] = one
	}
	return nil
}

// pushRowOpening pushes one table's (value, salt, path) triple for the
// row at domain index idx, mirroring fri.Prove's own opening encoding
// (value bytes, 16-byte salt, varint-prefixed path) so the verifier can
// pull them with the same decodeAuthPath logic this package uses
// internally.
func pushRowOpening(tr *transcript.Transcript, tree *merkle.Tree, cols [][]field.XElement, idx int) {
	var leaf []byte
	for c := range cols {
		leaf = append(leaf, cols[c][idx].Bytes()...)
	}
	path, _ := tree.Open(idx)
	tr.Push(TagX, leaf)
	tr.Push(TagSalt, tree.Salt(idx))
	tr.Push(TagPath, encodeAuthPath(path))
}

func encodeUint32(n uint32) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

// encodeAuthPath encodes p as a varint count of digests followed by the
// digests themselves, the auth-path wire format spec.md §6 requires.
func encodeAuthPath(p merkle.AuthPath) []byte {
	out := encodeVarint(uint64(len(p)))
	for _, d := range p {
		out = append(out, d[:]...)
	}
	return out
}
