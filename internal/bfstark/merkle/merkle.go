// Package merkle implements a salted binary Merkle tree over 32-byte
// digests, grounded on internal/vybium-starks-vm/core/merkle.go's
// level-by-level construction and sibling-path proof/verify, extended
// with a per-leaf salt (absent from the teacher's tree) since spec.md
// §4.3 and the original Python's Merkle.commit both require salted
// leaves for honest zero-knowledge.
package merkle

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/bfstark/internal/bfstark/field"
)

const DigestSize = 32

type Digest [DigestSize]byte

// Tree is a salted Merkle tree: leaf i commits to H(value_i || salt_i).
type Tree struct {
	levels [][]Digest // levels[0] = leaves, levels[len-1] = {root}
	salts  [][]byte
}

func hashLeaf(value, salt []byte) Digest {
	h := sha3.New256()
	h.Write(value)
	h.Write(salt)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func hashPair(left, right Digest) Digest {
	h := sha3.New256()
	h.Write(left[:])
	h.Write(right[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Commit builds a tree over the given leaf values, sampling a fresh
// random salt per leaf (crypto/rand, matching spec.md's zero-knowledge
// requirement), and returns the tree. The tree keeps the salts; Salt(i)
// returns leaf i's salt for sending to the verifier at opening time
// (callers push it under transcript.TagSalt, 0x05).
func Commit(values [][]byte) (*Tree, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("merkle: cannot commit to zero leaves")
	}
	salts := make([][]byte, len(values))
	leaves := make([]Digest, len(values))
	for i, v := range values {
		salt := make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("merkle: salt generation failed: %w", err)
		}
		salts[i] = salt
		leaves[i] = hashLeaf(v, salt)
	}
	return buildFromLeaves(leaves, salts)
}

// LeafDigest recomputes a single leaf's digest from an opened (value,
// salt) pair, used by the verifier to check an authentication path
// without rebuilding the whole tree.
func LeafDigest(value, salt []byte) Digest { return hashLeaf(value, salt) }

func buildFromLeaves(leaves []Digest, salts [][]byte) (*Tree, error) {
	levels := [][]Digest{leaves}
	cur := leaves
	for len(cur) > 1 {
		next := make([]Digest, (len(cur)+1)/2)
		for i := range next {
			l := cur[2*i]
			var r Digest
			if 2*i+1 < len(cur) {
				r = cur[2*i+1]
			} else {
				r = cur[2*i] // duplicate last node on odd levels
			}
			next[i] = hashPair(l, r)
		}
		levels = append(levels, next)
		cur = next
	}
	return &Tree{levels: levels, salts: salts}, nil
}

// Root returns the tree's root digest.
func (t *Tree) Root() Digest {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Salt returns the salt used for leaf i.
func (t *Tree) Salt(i int) []byte { return t.salts[i] }

// AuthPath is the authentication path for a leaf: the sequence of
// sibling digests from the leaf level up to (but excluding) the root.
type AuthPath []Digest

// Open returns the authentication path for leaf index i, grounded on
// core/merkle.go's Proof (sibling index parity tracked while walking up).
func (t *Tree) Open(i int) (AuthPath, error) {
	numLeaves := len(t.levels[0])
	if i < 0 || i >= numLeaves {
		return nil, fmt.Errorf("merkle: index %d out of range [0,%d)", i, numLeaves)
	}
	path := make(AuthPath, 0, len(t.levels)-1)
	idx := i
	for lvl := 0; lvl < len(t.levels)-1; lvl++ {
		level := t.levels[lvl]
		var siblingIdx int
		if idx%2 == 0 {
			siblingIdx = idx + 1
			if siblingIdx >= len(level) {
				siblingIdx = idx // duplicated last node
			}
		} else {
			siblingIdx = idx - 1
		}
		path = append(path, level[siblingIdx])
		idx /= 2
	}
	return path, nil
}

// Verify recomputes the root from a leaf value, its salt, its index, and
// an authentication path, and compares it against root. Fails (returns
// false) when the index is out of range for the implied tree size or the
// path length is wrong, per spec.md §4.3.
func Verify(root Digest, index int, numLeaves int, value, salt []byte, path AuthPath) bool {
	if index < 0 || index >= numLeaves {
		return false
	}
	expectedLen := field.Log2(numLeaves)
	if expectedLen < 0 || len(path) != expectedLen {
		return false
	}
	cur := hashLeaf(value, salt)
	idx := index
	for _, sibling := range path {
		if idx%2 == 0 {
			cur = hashPair(cur, sibling)
		} else {
			cur = hashPair(sibling, cur)
		}
		idx /= 2
	}
	return cur == root
}
