// Package fri implements the FRI low-degree test over a coset, grounded
// on protocols/fri_query.go's roundConsistencyTest/interpolateLine
// colinearity-check technique — but restructured into a genuinely
// succinct, index-and-Merkle-path protocol. protocols/fri.go's
// FRILayer{Function, Domain} transmits entire per-round codewords (not
// succinct) and its domain-halving convention disagrees with
// fri_query.go's squaring-based computeNextPoint; this package picks
// the single consistent convention spec.md §4.5 describes (fold via
// f(x) = f0(x^2) + alpha*f1(x^2), verify via Lagrange-line colinearity)
// and only ever sends Merkle roots plus opened (value, salt, path)
// triples at sampled indices.
package fri

import (
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/field"
	"github.com/vybium/bfstark/internal/bfstark/merkle"
	"github.com/vybium/bfstark/internal/bfstark/transcript"
)

// Params are the FRI configuration parameters of spec.md §6:
// expansion_factor (power of two, >= 4) and num_colinearity_checks.
type Params struct {
	ExpansionFactor      int
	NumColinearityChecks int
}

// encodeVarint writes n as an unsigned LEB128 varint, the auth-path
// count encoding spec.md §6 requires.
func encodeVarint(n uint64) []byte {
	var out []byte
	for n >= 0x80 {
		out = append(out, byte(n&0x7f)|0x80)
		n >>= 7
	}
	return append(out, byte(n))
}

// decodeVarint reads an unsigned LEB128 varint from the front of b,
// returning the decoded value and the number of bytes consumed.
func decodeVarint(b []byte) (uint64, int, error) {
	var x uint64
	var s uint
	for i, c := range b {
		if i == 9 && c > 1 {
			return 0, 0, fmt.Errorf("fri: varint overflows 64 bits")
		}
		if c < 0x80 {
			return x | uint64(c)<<s, i + 1, nil
		}
		x |= uint64(c&0x7f) << s
		s += 7
	}
	return 0, 0, fmt.Errorf("fri: truncated varint")
}

func encodePath(p merkle.AuthPath) []byte {
	out := encodeVarint(uint64(len(p)))
	for _, d := range p {
		out = append(out, d[:]...)
	}
	return out
}

func decodePath(b []byte) (merkle.AuthPath, error) {
	n, consumed, err := decodeVarint(b)
	if err != nil {
		return nil, fmt.Errorf("fri: truncated auth path: %w", err)
	}
	b = b[consumed:]
	if len(b) != int(n)*merkle.DigestSize {
		return nil, fmt.Errorf("fri: malformed auth path length")
	}
	path := make(merkle.AuthPath, n)
	for i := range path {
		copy(path[i][:], b[i*merkle.DigestSize:(i+1)*merkle.DigestSize])
	}
	return path, nil
}

// Prove runs the FRI commit phase on codeword (evaluations of a
// polynomial of degree < len(codeword)/ExpansionFactor on domain), then
// the query phase, pushing roots/final value/openings into tr and
// returning the top-level indices it opened — the contract of spec.md
// §4.5: prove(codeword, transcript) -> indices.
func Prove(codeword []field.XElement, domain *field.Domain, params Params, tr *transcript.Transcript) ([]int, error) {
	if !field.IsPowerOfTwo(len(codeword)) {
		return nil, fmt.Errorf("fri: codeword length %d is not a power of two", len(codeword))
	}
	if len(codeword) != domain.Length {
		return nil, fmt.Errorf("fri: codeword length %d does not match domain length %d", len(codeword), domain.Length)
	}

	codewords := [][]field.XElement{codeword}
	domains := []*field.Domain{domain}
	var trees []*merkle.Tree

	numRounds := field.Log2(len(codeword))

	for r := 0; r < numRounds; r++ {
		cw := codewords[r]
		leaves := make([][]byte, len(cw))
		for i, v := range cw {
			leaves[i] = v.Bytes()
		}
		tree, err := merkle.Commit(leaves)
		if err != nil {
			return nil, fmt.Errorf("fri: commit round %d: %w", r, err)
		}
		trees = append(trees, tree)
		tr.Push(transcript.TagRoot, tree.Root()[:])

		alpha := tr.SampleXElement()

		d := domains[r]
		half := len(cw) / 2
		nextCodeword := make([]field.XElement, half)
		for i := 0; i < half; i++ {
			x := d.At(i)
			nextCodeword[i] = foldPair(field.Lift(x), cw[i], cw[i+half], alpha)
		}
		nextDomain := &field.Domain{
			Offset:    d.Offset.Mul(d.Offset),
			Generator: d.Generator.Mul(d.Generator),
			Length:    half,
		}
		codewords = append(codewords, nextCodeword)
		domains = append(domains, nextDomain)
	}

	final := codewords[numRounds]
	if len(final) != 1 {
		return nil, fmt.Errorf("fri: final codeword has length %d, expected 1", len(final))
	}
	finalValue := final[0]
	tr.Push(transcript.TagX, finalValue.Bytes())

	indices, err := tr.SampleIndices(len(codeword), params.NumColinearityChecks)
	if err != nil {
		return nil, fmt.Errorf("fri: sampling query indices: %w", err)
	}

	for _, i0 := range indices {
		idx := i0
		for r := 0; r < numRounds; r++ {
			cw := codewords[r]
			tree := trees[r]
			lr := len(cw)
			pos := idx % lr
			sibling := (pos + lr/2) % lr

			posPath, err := tree.Open(pos)
			if err != nil {
				return nil, err
			}
			sibPath, err := tree.Open(sibling)
			if err != nil {
				return nil, err
			}

			tr.Push(transcript.TagX, cw[pos].Bytes())
			tr.Push(transcript.TagSalt, tree.Salt(pos))
			tr.Push(transcript.TagPath, encodePath(posPath))
			tr.Push(transcript.TagX, cw[sibling].Bytes())
			tr.Push(transcript.TagSalt, tree.Salt(sibling))
			tr.Push(transcript.TagPath, encodePath(sibPath))

			idx = pos % (lr / 2)
		}
	}

	return indices, nil
}

// foldPair computes the folded value f0(x^2)+alpha*f1(x^2) via the
// equivalent Lagrange-line evaluation L(alpha), where L is the unique
// line through (x, fx) and (-x, fnegx) — exactly
// protocols/fri_query.go's interpolateLine/roundConsistencyTest
// technique that spec.md §4.5 describes.
func foldPair(x, fx, fnegx, alpha field.XElement) field.XElement {
	negX := x.Neg()
	slope := fx.Sub(fnegx).Div(x.Sub(negX))
	return fx.Add(slope.Mul(alpha.Sub(x)))
}

// Verify replays the FRI protocol against a reconstructed transcript,
// pulling roots/final value/openings, checking every Merkle
// authentication path and colinearity relation, and returns the
// queried indices in sampled order together with the top-level
// (index -> codeword value) pairs the caller (the STARK verifier)
// cross-checks against its own algebraic reconstruction — spec.md
// §4.5's verify(transcript, out_points) -> accept/reject, expressed
// here as (indices, points, error). The caller needs the order (not
// just the map) because it must replay its own per-table openings,
// pushed by the prover in this same sampled order, immediately after
// this call.
func Verify(domain *field.Domain, params Params, tr *transcript.Transcript) ([]int, map[int]field.XElement, error) {
	domainLength := domain.Length
	if !field.IsPowerOfTwo(domainLength) {
		return nil, nil, fmt.Errorf("fri: domain length %d is not a power of two", domainLength)
	}
	numRounds := field.Log2(domainLength)

	roots := make([]merkle.Digest, numRounds)
	alphas := make([]field.XElement, numRounds)
	domains := make([]*field.Domain, numRounds)
	cur := domain

	for r := 0; r < numRounds; r++ {
		domains[r] = cur
		rootBytes, err := tr.Pull()
		if err != nil {
			return nil, nil, fmt.Errorf("fri: pulling root %d: %w", r, err)
		}
		if len(rootBytes) != merkle.DigestSize {
			return nil, nil, fmt.Errorf("fri: malformed root at round %d", r)
		}
		copy(roots[r][:], rootBytes)
		alphas[r] = tr.SampleXElement()
		cur = &field.Domain{
			Offset:    cur.Offset.Mul(cur.Offset),
			Generator: cur.Generator.Mul(cur.Generator),
			Length:    cur.Length / 2,
		}
	}

	finalBytes, err := tr.Pull()
	if err != nil {
		return nil, nil, fmt.Errorf("fri: pulling final value: %w", err)
	}
	finalValue, err := field.XFromBytes(finalBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("fri: malformed final value: %w", err)
	}

	indices, err := tr.SampleIndices(domainLength, params.NumColinearityChecks)
	if err != nil {
		return nil, nil, fmt.Errorf("fri: sampling query indices: %w", err)
	}

	topLevelValues := make(map[int]field.XElement, len(indices))

	for qi, i0 := range indices {
		idx := i0
		var expectedNext field.XElement
		for r := 0; r < numRounds; r++ {
			lr := domains[r].Length
			pos := idx % lr
			sibling := (pos + lr/2) % lr

			posValBytes, err := tr.Pull()
			if err != nil {
				return nil, nil, err
			}
			posSalt, err := tr.Pull()
			if err != nil {
				return nil, nil, err
			}
			posPathBytes, err := tr.Pull()
			if err != nil {
				return nil, nil, err
			}
			sibValBytes, err := tr.Pull()
			if err != nil {
				return nil, nil, err
			}
			sibSalt, err := tr.Pull()
			if err != nil {
				return nil, nil, err
			}
			sibPathBytes, err := tr.Pull()
			if err != nil {
				return nil, nil, err
			}

			posPath, err := decodePath(posPathBytes)
			if err != nil {
				return nil, nil, err
			}
			sibPath, err := decodePath(sibPathBytes)
			if err != nil {
				return nil, nil, err
			}

			if !merkle.Verify(roots[r], pos, lr, posValBytes, posSalt, posPath) {
				return nil, nil, fmt.Errorf("fri: merkle verification failed at round %d index %d", r, pos)
			}
			if !merkle.Verify(roots[r], sibling, lr, sibValBytes, sibSalt, sibPath) {
				return nil, nil, fmt.Errorf("fri: merkle verification failed at round %d index %d", r, sibling)
			}

			posVal, err := field.XFromBytes(posValBytes)
			if err != nil {
				return nil, nil, err
			}
			sibVal, err := field.XFromBytes(sibValBytes)
			if err != nil {
				return nil, nil, err
			}

			if r == 0 {
				topLevelValues[i0] = posVal
			}
			if r > 0 {
				var got field.XElement
				if pos == idx {
					got = posVal
				} else {
					got = sibVal
				}
				if !got.Equal(expectedNext) {
					return nil, nil, fmt.Errorf("fri: colinearity mismatch at round %d, query %d", r, qi)
				}
			}

			x := domains[r].At(pos)
			expectedNext = foldPair(field.Lift(x), posVal, sibVal, alphas[r])

			idx = pos % (lr / 2)
		}
		if !expectedNext.Equal(finalValue) {
			return nil, nil, fmt.Errorf("fri: final colinearity mismatch at query %d", qi)
		}
	}

	return indices, topLevelValues, nil
}
