package merkle

import "testing"

func leaves(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte{byte(i), byte(i * 7), byte(i * 13)}
	}
	return out
}

func TestCommitOpenVerifyRoundTrip(t *testing.T) {
	values := leaves(8)
	tree, err := Commit(values)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	root := tree.Root()
	for i, v := range values {
		path, err := tree.Open(i)
		if err != nil {
			t.Fatalf("Open(%d): %v", i, err)
		}
		if !Verify(root, i, len(values), v, tree.Salt(i), path) {
			t.Fatalf("Verify should accept the honest opening at index %d", i)
		}
	}
}

func TestVerifyRejectsTamperedValue(t *testing.T) {
	values := leaves(8)
	tree, err := Commit(values)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	root := tree.Root()
	path, err := tree.Open(3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tampered := []byte{9, 9, 9}
	if Verify(root, 3, len(values), tampered, tree.Salt(3), path) {
		t.Fatal("Verify should reject a tampered leaf value")
	}
}

func TestVerifyRejectsTamperedSalt(t *testing.T) {
	values := leaves(8)
	tree, err := Commit(values)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	root := tree.Root()
	path, err := tree.Open(3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	badSalt := make([]byte, 16)
	if Verify(root, 3, len(values), values[3], badSalt, path) {
		t.Fatal("Verify should reject a forged salt")
	}
}

func TestVerifyRejectsTamperedPath(t *testing.T) {
	values := leaves(8)
	tree, err := Commit(values)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	root := tree.Root()
	path, err := tree.Open(3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path[0][0] ^= 0xff
	if Verify(root, 3, len(values), values[3], tree.Salt(3), path) {
		t.Fatal("Verify should reject a corrupted authentication path")
	}
}

func TestVerifyRejectsOutOfRangeIndex(t *testing.T) {
	values := leaves(4)
	tree, err := Commit(values)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	path, err := tree.Open(0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if Verify(tree.Root(), -1, len(values), values[0], tree.Salt(0), path) {
		t.Fatal("Verify should reject a negative index")
	}
	if Verify(tree.Root(), len(values), len(values), values[0], tree.Salt(0), path) {
		t.Fatal("Verify should reject an index equal to numLeaves")
	}
}

func TestCommitRejectsEmptyInput(t *testing.T) {
	if _, err := Commit(nil); err == nil {
		t.Fatal("expected an error committing to zero leaves")
	}
}

func TestSaltsAreDistinctPerLeaf(t *testing.T) {
	tree, err := Commit(leaves(8))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		s := string(tree.Salt(i))
		if seen[s] {
			t.Fatalf("salt at index %d collides with an earlier salt", i)
		}
		seen[s] = true
	}
}

func TestOpenRejectsOutOfRangeIndex(t *testing.T) {
	tree, err := Commit(leaves(4))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := tree.Open(-1); err == nil {
		t.Fatal("expected an error opening a negative index")
	}
	if _, err := tree.Open(4); err == nil {
		t.Fatal("expected an error opening index == numLeaves")
	}
}
