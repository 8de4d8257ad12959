package stark

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/bferr"
	"github.com/vybium/bfstark/internal/bfstark/transcript"
)

// Wire tags of spec.md §6. These alias transcript's tag constants (the
// transcript is what actually records a kind alongside every pushed
// item, including fri.Prove's internal pushes) so that a *Proof built
// from tr.Items()/tr.Kinds() uses the identical tag values this package
// validates on decode.
const (
	TagRoot = transcript.TagRoot
	TagX    = transcript.TagX
	TagF    = transcript.TagF
	TagPath = transcript.TagPath
	TagSalt = transcript.TagSalt
)

func validTag(tag byte) bool {
	switch tag {
	case TagRoot, TagX, TagF, TagPath, TagSalt:
		return true
	default:
		return false
	}
}

// Proof is the ordered sequence of items a prover pushed into its
// transcript, each tagged with its wire kind — the wire format,
// grounded on proof_stream.go's serialize()/ProofStreamFromProof
// pickling an ordered object list. Replaying Items through a fresh
// transcript on the verifier side reconstructs the identical
// Fiat-Shamir state, which is what soundness of the transformation
// relies on; Kinds exists only for MarshalBinary/UnmarshalProof and
// plays no role in that replay.
type Proof struct {
	Items [][]byte
	Kinds []byte
}

// MarshalBinary encodes the proof as a 4-byte item count followed by
// (tag byte, 4-byte length, payload) triples, per spec.md §6's tagged
// wire format.
func (p *Proof) MarshalBinary() ([]byte, error) {
	if len(p.Kinds) != len(p.Items) {
		return nil, bferr.New(bferr.KindMalformedProof, "proof item count does not match tag count")
	}
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(len(p.Items)))
	for i, item := range p.Items {
		out = append(out, p.Kinds[i])
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(item)))
		out = append(out, lenBuf[:]...)
		out = append(out, item...)
	}
	return out, nil
}

// UnmarshalProof decodes a proof previously produced by MarshalBinary,
// rejecting any tag byte outside spec.md §6's enumerated set.
func UnmarshalProof(data []byte) (*Proof, error) {
	if len(data) < 4 {
		return nil, bferr.New(bferr.KindMalformedProof, "proof too short to contain an item count")
	}
	n := binary.BigEndian.Uint32(data)
	data = data[4:]
	items := make([][]byte, 0, n)
	kinds := make([]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		if len(data) < 1 {
			return nil, bferr.New(bferr.KindMalformedProof, fmt.Sprintf("truncated proof at item %d tag", i))
		}
		tag := data[0]
		data = data[1:]
		if !validTag(tag) {
			return nil, bferr.New(bferr.KindMalformedProof, fmt.Sprintf("unrecognized wire tag 0x%02x at item %d", tag, i))
		}
		if len(data) < 4 {
			return nil, bferr.New(bferr.KindMalformedProof, fmt.Sprintf("truncated proof at item %d", i))
		}
		l := binary.BigEndian.Uint32(data)
		data = data[4:]
		if uint32(len(data)) < l {
			return nil, bferr.New(bferr.KindMalformedProof, fmt.Sprintf("truncated proof payload at item %d", i))
		}
		items = append(items, data[:l])
		kinds = append(kinds, tag)
		data = data[l:]
	}
	if len(data) != 0 {
		return nil, bferr.New(bferr.KindMalformedProof, "trailing bytes after last proof item")
	}
	return &Proof{Items: items, Kinds: kinds}, nil
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
			return 0, 0, fmt.Errorf("varint overflows 64 bits")
		}
		if c < 0x80 {
			return x | uint64(c)<<s, i + 1, nil
		}
		x |= uint64(c&0x7f) << s
		s += 7
	}
	return 0, 0, fmt.Errorf("truncated varint")
}

// Claim is the public statement a proof attests to: that running
// program on input produces output, grounded on spec.md §6's external
// interface (program/input/output are all public).
type Claim struct {
	Program []byte
	Input   []byte
	Output  []byte
}
