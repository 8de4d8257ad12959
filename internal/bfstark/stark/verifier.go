package stark

import (
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/air"
	"github.com/vybium/bfstark/internal/bfstark/bferr"
	"github.com/vybium/bfstark/internal/bfstark/bfvm"
	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/fri"
	"github.com/vybium/bfstark/internal/bfstark/merkle"
	"github.com/vybium/bfstark/internal/bfstark/poly"
	"github.com/vybium/bfstark/internal/bfstark/transcript"
)

// verifyTableSpec is the verifier's counterpart of tableSpec: the same
// per-table domain parameters, minus any actual trace data (the
// verifier never sees the rows, only Merkle-committed codewords opened
// at a handful of FRI query points).
type verifyTableSpec struct {
	name           string
	ext            air.Extension
	baseWidth      int
	roundedLength  int
	omicron        field.Element
	offset         field.Element
}

// Verify replays the transcript a Prove run produced, independently
// recomputing every challenge and combination weight, checking all
// Merkle openings and FRI colinearity relations, and cross-checking
// the AIR algebra and cross-table terminal arguments at the FRI query
// points — spec.md §4.10's verify(proof, claim) -> accept/reject,
// grounded step-for-step on table_extension.py's evaluate_* methods
// (the verifier-side point-evaluated twins of extension.go's
// domain-wide prover quotients).
func Verify(cfg Config, claim Claim, proof *Proof) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	specs := []*verifyTableSpec{
		{name: "processor", ext: air.NewProcessorExtension(), baseWidth: air.ProcBaseWidth},
		{name: "instruction", ext: air.NewInstructionExtension(), baseWidth: air.InstrBaseWidth},
		{name: "memory", ext: air.NewMemoryExtension(), baseWidth: air.MemBaseWidth},
		{name: "input", ext: air.NewInputExtension(), baseWidth: air.IOBaseWidth},
		{name: "output", ext: air.NewOutputExtension(), baseWidth: air.IOBaseWidth},
	}

	tr := transcript.FromItems(proof.Items)
	tr.Observe(claim.Program)
	tr.Observe(claim.Input)
	tr.Observe(claim.Output)

	friDomainLength := 0
	var friOffset field.Element
	for _, sp := range specs {
		lenBytes, err := tr.Pull()
		if err != nil {
			return bferr.Wrap(bferr.KindMalformedProof, fmt.Sprintf("pulling %s table length", sp.name), err)
		}
		roundedLength, err := decodeUint32(lenBytes)
		if err != nil {
			return bferr.Wrap(bferr.KindMalformedProof, fmt.Sprintf("decoding %s table length", sp.name), err)
		}
		if !field.IsPowerOfTwo(int(roundedLength)) {
			return bferr.New(bferr.KindMalformedProof, fmt.Sprintf("%s table length %d is not a power of two", sp.name, roundedLength))
		}
		rl, _, tableFriLen, off, friOff, err := tableDomain(int(roundedLength), cfg)
		if err != nil {
			return bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("deriving %s table domain", sp.name), err)
		}
		sp.roundedLength = rl
		omicron, err := field.PrimitiveRootOfUnity(uint64(rl))
		if err != nil {
			return bferr.Wrap(bferr.KindConfigError, fmt.Sprintf("deriving %s trace root of unity", sp.name), err)
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
		return bferr.Wrap(bferr.KindConfigError, "deriving shared FRI domain root of unity", err)
	}
	friDomain := &field.Domain{Offset: friOffset, Generator: friOmega, Length: friDomainLength}

	// Phase A: pull base roots.
	baseRoots := make([]merkle.Digest, numTables)
	for i, sp := range specs {
		rootBytes, err := tr.Pull()
		if err != nil {
			return bferr.Wrap(bferr.KindMalformedProof, fmt.Sprintf("pulling %s base root", sp.name), err)
		}
		if len(rootBytes) != merkle.DigestSize {
			return bferr.New(bferr.KindMalformedProof, fmt.Sprintf("malformed %s base root", sp.name))
		}
		copy(baseRoots[i][:], rootBytes)
	}

	challengeXs := tr.SampleXElements(11)
	ch, err := air.NewChallenges(challengeXs)
	if err != nil {
		return bferr.Wrap(bferr.KindConfigError, "packing challenges", err)
	}

	// Phase B: pull terminal scalars then extension roots.
	terminals := make([][]field.XElement, numTables)
	extRoots := make([]merkle.Digest, numTables)
	for i, sp := range specs {
		extWidth := sp.ext.Width() - sp.baseWidth
		term := make([]field.XElement, extWidth)
		for c := 0; c < extWidth; c++ {
			b, err := tr.Pull()
			if err != nil {
				return bferr.Wrap(bferr.KindMalformedProof, fmt.Sprintf("pulling %s terminal %d", sp.name, c), err)
			}
			v, err := field.XFromBytes(b)
			if err != nil {
				return bferr.Wrap(bferr.KindMalformedProof, fmt.Sprintf("decoding %s terminal %d", sp.name, c), err)
			}
			term[c] = v
		}
		terminals[i] = term

		rootBytes, err := tr.Pull()
		if err != nil {
			return bferr.Wrap(bferr.KindMalformedProof, fmt.Sprintf("pulling %s extension root", sp.name), err)
		}
		if len(rootBytes) != merkle.DigestSize {
			return bferr.New(bferr.KindMalformedProof, fmt.Sprintf("malformed %s extension root", sp.name))
		}
		copy(extRoots[i][:], rootBytes)
	}

	// Cross-table terminal arguments: the permutation/evaluation
	// terminals each table carries must agree with the matching
	// terminal on the table it is paired against, grounded on
	// brainfuck_stark.py's verify() equality checks between
	// processor_instance/instruction_instance etc terminals.
	if !terminals[tblProcessor][0].Equal(terminals[tblInstruction][0]) {
		return bferr.New(bferr.KindAlgebraicMismatch, "processor/instruction permutation terminals disagree")
	}
	if !terminals[tblProcessor][1].Equal(terminals[tblMemory][0]) {
		return bferr.New(bferr.KindAlgebraicMismatch, "processor/memory permutation terminals disagree")
	}
	if !terminals[tblProcessor][2].Equal(terminals[tblInput][0]) {
		return bferr.New(bferr.KindAlgebraicMismatch, "processor/input evaluation terminals disagree")
	}
	if !terminals[tblProcessor][3].Equal(terminals[tblOutput][0]) {
		return bferr.New(bferr.KindAlgebraicMismatch, "processor/output evaluation terminals disagree")
	}

	// The instruction table's program-evaluation terminal must equal the
	// Horner digest of the claimed program, recomputed independently
	// from the public program bytes (not trusted from the proof).
	prog, err := bfvm.Compile(claim.Program)
	if err != nil {
		return bferr.Wrap(bferr.KindConfigError, "compiling claimed program", err)
	}
	if len(prog.Opcodes) == 0 {
		return bferr.New(bferr.KindConfigError, "claimed program has no instructions")
	}
	digest := field.Lift(field.New(uint64(prog.Opcodes[0])))
	for _, op := range prog.Opcodes[1:] {
		digest = digest.Mul(ch.Eta).Add(field.Lift(field.New(uint64(op))))
	}
	if !digest.Equal(terminals[tblInstruction][1]) {
		return bferr.New(bferr.KindAlgebraicMismatch, "program digest does not match instruction table's evaluation terminal")
	}

	// The input and output tables' own evaluation terminals must equal
	// the Horner digest of the claimed input/output bytes, recomputed
	// independently here the same way the program digest is above.
	// Observing claim.Input/claim.Output into the transcript only
	// affects challenge derivation, not the tables' committed content —
	// without this check a prover could commit an input/output table
	// whose IOValue sequence disagrees with the claim entirely, as long
	// as it stays self-consistent with the processor table's own
	// ProcInEval/ProcOutEval running sums.
	if !hornerDigest(claim.Input, ch.Gamma).Equal(terminals[tblInput][0]) {
		return bferr.New(bferr.KindAlgebraicMismatch, "claimed input does not match input table's evaluation terminal")
	}
	if !hornerDigest(claim.Output, ch.Delta).Equal(terminals[tblOutput][0]) {
		return bferr.New(bferr.KindAlgebraicMismatch, "claimed output does not match output table's evaluation terminal")
	}

	// Total quotient count across all five tables' boundary/transition/
	// terminal constraints, plus the two cross-table initial-value
	// difference quotients below, in the same order Prove built
	// allQuotients, to size the combination weights identically.
	totalQuotients := 2
	for i, sp := range specs {
		totalQuotients += len(sp.ext.BoundaryConstraints()) + len(sp.ext.TransitionConstraints(ch)) + len(sp.ext.TerminalConstraints(ch, terminals[i]))
	}

	weights := tr.SampleXElements(totalQuotients)

	friParams := fri.Params{ExpansionFactor: cfg.ExpansionFactor, NumColinearityChecks: cfg.NumColinearityChecks}
	indices, topLevelValues, err := fri.Verify(friDomain, friParams, tr)
	if err != nil {
		return bferr.Wrap(bferr.KindFriRejection, "verifying FRI", err)
	}

	// Pull every table's base/extension openings, table by table and
	// index by index in exactly the order Prove pushed them (table
	// outermost, query index innermost — see prover.go's closing loop),
	// accumulating each query index's transcript-weighted quotient sum
	// as its openings arrive.
	combinedAcc := make(map[int]field.XElement, len(indices))
	weightPos := make(map[int]int, len(indices))
	for _, idx := range indices {
		combinedAcc[idx] = field.XZero()
	}

	// Opened values needed for the cross-table initial-value quotients
	// below: the processor table's own instruction/memory permutation
	// columns, plus the instruction and memory tables' own permutation
	// columns, at every query index.
	procInstrPermAt := make(map[int]field.XElement, len(indices))
	procMemPermAt := make(map[int]field.XElement, len(indices))
	instrPermAt := make(map[int]field.XElement, len(indices))
	memPermAt := make(map[int]field.XElement, len(indices))

	for i, sp := range specs {
		extWidth := sp.ext.Width() - sp.baseWidth
		unitDistance := friDomainLength / sp.roundedLength
		for _, idx := range indices {
			nextIdx := (idx + unitDistance) % friDomainLength

			baseCur, err := pullRowOpening(tr, baseRoots[i], friDomainLength, idx, sp.baseWidth)
			if err != nil {
				return bferr.Wrap(bferr.KindMerkleFailure, fmt.Sprintf("%s base opening at %d", sp.name, idx), err)
			}
			extCur, err := pullRowOpening(tr, extRoots[i], friDomainLength, idx, extWidth)
			if err != nil {
				return bferr.Wrap(bferr.KindMerkleFailure, fmt.Sprintf("%s extension opening at %d", sp.name, idx), err)
			}
			baseNext, err := pullRowOpening(tr, baseRoots[i], friDomainLength, nextIdx, sp.baseWidth)
			if err != nil {
				return bferr.Wrap(bferr.KindMerkleFailure, fmt.Sprintf("%s base opening at %d", sp.name, nextIdx), err)
			}
			extNext, err := pullRowOpening(tr, extRoots[i], friDomainLength, nextIdx, extWidth)
			if err != nil {
				return bferr.Wrap(bferr.KindMerkleFailure, fmt.Sprintf("%s extension opening at %d", sp.name, nextIdx), err)
			}

			curPoint := append(append([]field.XElement{}, baseCur...), extCur...)
			nextPoint := append(append([]field.XElement{}, baseNext...), extNext...)
			transPoint := append(append([]field.XElement{}, curPoint...), nextPoint...)

			switch i {
			case tblProcessor:
				procInstrPermAt[idx] = extCur[0]
				procMemPermAt[idx] = extCur[1]
			case tblInstruction:
				instrPermAt[idx] = extCur[0]
			case tblMemory:
				memPermAt[idx] = extCur[0]
			}

			x := field.Lift(friDomain.At(idx))

			bq, err := boundaryQuotientsAtPoint(x, sp.offset, curPoint, sp.ext.BoundaryConstraints())
			if err != nil {
				return bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("%s boundary quotient at %d", sp.name, idx), err)
			}
			tq, err := transitionQuotientsAtPoint(x, sp.omicron, sp.offset, sp.roundedLength, transPoint, sp.ext.TransitionConstraints(ch))
			if err != nil {
				return bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("%s transition quotient at %d", sp.name, idx), err)
			}
			tmq, err := terminalQuotientsAtPoint(x, sp.omicron, sp.offset, curPoint, sp.ext.TerminalConstraints(ch, terminals[i]))
			if err != nil {
				return bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("%s terminal quotient at %d", sp.name, idx), err)
			}

			acc := combinedAcc[idx]
			wp := weightPos[idx]
			for _, v := range bq {
				acc = acc.Add(weights[wp].Mul(v))
				wp++
			}
			for _, v := range tq {
				acc = acc.Add(weights[wp].Mul(v))
				wp++
			}
			for _, v := range tmq {
				acc = acc.Add(weights[wp].Mul(v))
				wp++
			}
			combinedAcc[idx] = acc
			weightPos[idx] = wp
		}
	}

	// Cross-table initial-value difference quotients (spec.md §4.10 step
	// 7), the verifier-side twin of prover.go's CrossTableInitialQuotient
	// calls: recompute the same quotient at each query point from the
	// openings already pulled above and fold it into the combination
	// with the two weights Prove sampled last.
	rowOffset := specs[tblProcessor].offset
	instrWeight, memWeight := weights[totalQuotients-2], weights[totalQuotients-1]
	for _, idx := range indices {
		x := field.Lift(friDomain.At(idx))

		instrInitQ, err := air.CrossTableInitialQuotientAtPoint(x, procInstrPermAt[idx], instrPermAt[idx], rowOffset)
		if err != nil {
			return bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("processor/instruction initial-value quotient at %d", idx), err)
		}
		memInitQ, err := air.CrossTableInitialQuotientAtPoint(x, procMemPermAt[idx], memPermAt[idx], rowOffset)
		if err != nil {
			return bferr.Wrap(bferr.KindAlgebraicMismatch, fmt.Sprintf("processor/memory initial-value quotient at %d", idx), err)
		}

		acc := combinedAcc[idx]
		acc = acc.Add(instrWeight.Mul(instrInitQ))
		acc = acc.Add(memWeight.Mul(memInitQ))
		combinedAcc[idx] = acc
	}

	for _, idx := range indices {
		expected, ok := topLevelValues[idx]
		if !ok {
			return bferr.New(bferr.KindFriRejection, fmt.Sprintf("FRI did not open a value at query index %d", idx))
		}
		if !combinedAcc[idx].Equal(expected) {
			return bferr.New(bferr.KindAlgebraicMismatch, fmt.Sprintf("AIR quotient recombination mismatch at query index %d", idx))
		}
	}

	return nil
}

// pullRowOpening pulls and verifies one table's (value, salt, path)
// triple against root, returning the width-many column values it
// decodes from the leaf bytes — the verifier-side counterpart of
// prover.go's pushRowOpening.
func pullRowOpening(tr *transcript.Transcript, root merkle.Digest, domainLength, idx, width int) ([]field.XElement, error) {
	leaf, err := tr.Pull()
	if err != nil {
		return nil, fmt.Errorf("pulling leaf value: %w", err)
	}
	salt, err := tr.Pull()
	if err != nil {
		return nil, fmt.Errorf("pulling salt: %w", err)
	}
	pathBytes, err := tr.Pull()
	if err != nil {
		return nil, fmt.Errorf("pulling auth path: %w", err)
	}
	path, err := decodeAuthPath(pathBytes)
	if err != nil {
		return nil, err
	}
	if !merkle.Verify(root, idx, domainLength, leaf, salt, path) {
		return nil, fmt.Errorf("merkle authentication failed at index %d", idx)
	}
	if len(leaf) != width*24 {
		return nil, fmt.Errorf("leaf has %d bytes, expected %d for %d columns", len(leaf), width*24, width)
	}
	out := make([]field.XElement, width)
	for c := 0; c < width; c++ {
		v, err := field.XFromBytes(leaf[c*24 : (c+1)*24])
		if err != nil {
			return nil, err
		}
		out[c] = v
	}
	return out, nil
}

// hornerDigest computes the same Horner-style running-sum digest over
// bytes that IOExtension.ComputeExtension's recurrence produces for a
// genuine (unpadded) row sequence: the first byte seeds the
// accumulator, each subsequent byte folds in as acc = acc*weight+b.
// Empty bytes digest to zero, matching an entirely empty (all-padding)
// table's frozen-at-zero evaluation column.
func hornerDigest(data []byte, weight field.XElement) field.XElement {
	if len(data) == 0 {
		return field.XZero()
	}
	digest := field.Lift(field.New(uint64(data[0])))
	for _, b := range data[1:] {
		digest = digest.Mul(weight).Add(field.Lift(field.New(uint64(b))))
	}
	return digest
}

func decodeUint32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("expected 4 bytes, got %d", len(b))
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// decodeAuthPath decodes the varint-prefixed auth path prover.go's
// encodeAuthPath produces.
func decodeAuthPath(b []byte) (merkle.AuthPath, error) {
	n, consumed, err := decodeVarint(b)
	if err != nil {
		return nil, fmt.Errorf("truncated auth path: %w", err)
	}
	b = b[consumed:]
	if len(b) != int(n)*merkle.DigestSize {
		return nil, fmt.Errorf("malformed auth path length")
	}
	path := make(merkle.AuthPath, n)
	for i := range path {
		copy(path[i][:], b[i*merkle.DigestSize:(i+1)*merkle.DigestSize])
	}
	return path, nil
}

// boundaryQuotientsAtPoint is extension.go's BoundaryQuotients reduced
// to a single evaluation point: the verifier only ever holds opened
// row values at the FRI query indices, never a full codeword, so it
// cannot batch-invert the zerofier across a domain the way the prover
// does.
func boundaryQuotientsAtPoint(x field.XElement, rowOffset field.Element, point []field.XElement, constraints []*poly.MultiPoly) ([]field.XElement, error) {
	if len(constraints) == 0 {
		return nil, nil
	}
	zero := x.Sub(field.Lift(rowOffset))
	if zero.IsZero() {
		return nil, fmt.Errorf("boundary zerofier vanishes at query point")
	}
	zinv := zero.Inv()
	out := make([]field.XElement, len(constraints))
	for i, c := range constraints {
		val, err := c.Evaluate(point)
		if err != nil {
			return nil, fmt.Errorf("boundary constraint %d: %w", i, err)
		}
		out[i] = val.Mul(zinv)
	}
	return out, nil
}

// transitionQuotientsAtPoint is extension.go's TransitionQuotients
// reduced to a single (current, next) point pair.
func transitionQuotientsAtPoint(x field.XElement, omicron, rowOffset field.Element, traceLength int, point []field.XElement, constraints []*poly.MultiPoly) ([]field.XElement, error) {
	if len(constraints) == 0 {
		return nil, nil
	}
	offset := field.Lift(rowOffset)
	offsetPow := field.Lift(rowOffset.Exp(uint64(traceLength)))
	omicronInv := offset.Mul(field.Lift(omicron.Inv()))

	numerator := x.Exp(uint64(traceLength)).Sub(offsetPow)
	if numerator.IsZero() {
		return nil, fmt.Errorf("transition zerofier numerator vanishes at query point")
	}
	denom := x.Sub(omicronInv)
	zerofierInv := denom.Div(numerator)

	out := make([]field.XElement, len(constraints))
	for i, c := range constraints {
		val, err := c.Evaluate(point)
		if err != nil {
			return nil, fmt.Errorf("transition constraint %d: %w", i, err)
		}
		out[i] = val.Mul(zerofierInv)
	}
	return out, nil
}

// terminalQuotientsAtPoint is extension.go's TerminalQuotients reduced
// to a single evaluation point.
func terminalQuotientsAtPoint(x field.XElement, omicron, rowOffset field.Element, point []field.XElement, constraints []*poly.MultiPoly) ([]field.XElement, error) {
	if len(constraints) == 0 {
		return nil, nil
	}
	lastPoint := field.Lift(rowOffset).Mul(field.Lift(omicron.Inv()))
	zero := x.Sub(lastPoint)
	if zero.IsZero() {
		return nil, fmt.Errorf("terminal zerofier vanishes at query point")
	}
	zinv := zero.Inv()
	out := make([]field.XElement, len(constraints))
	for i, c := range constraints {
		val, err := c.Evaluate(point)
		if err != nil {
			return nil, fmt.Errorf("terminal constraint %d: %w", i, err)
		}
		out[i] = val.Mul(zinv)
	}
	return out, nil
}
