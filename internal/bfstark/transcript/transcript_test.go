package transcript

import "testing"

func TestPushPullSymmetry(t *testing.T) {
	prover := New()
	prover.Push(TagX, []byte("alpha"))
	prover.Push(TagX, []byte("beta"))
	challenge := prover.SampleFieldElement()

	verifier := FromItems(prover.Items())
	a, err := verifier.Pull()
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if string(a) != "alpha" {
		t.Fatalf("expected alpha, got %q", a)
	}
	b, err := verifier.Pull()
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if string(b) != "beta" {
		t.Fatalf("expected beta, got %q", b)
	}
	if !verifier.SampleFieldElement().Equal(challenge) {
		t.Fatal("verifier should derive the same challenge as the prover after replaying the same pushes")
	}
}

func TestPullPastEndErrors(t *testing.T) {
	verifier := FromItems([][]byte{[]byte("only")})
	if _, err := verifier.Pull(); err != nil {
		t.Fatalf("first Pull: %v", err)
	}
	if _, err := verifier.Pull(); err == nil {
		t.Fatal("expected an error pulling past the end of the transcript")
	}
}

func TestObserveAffectsSamplingNotItems(t *testing.T) {
	a := New()
	a.Push(TagX, []byte("x"))

	b := New()
	b.Push(TagX, []byte("x"))
	b.Observe([]byte("extra"))

	if len(a.Items()) != len(b.Items()) {
		t.Fatal("Observe should not record a proof item")
	}
	if a.SampleFieldElement().Equal(b.SampleFieldElement()) {
		t.Fatal("Observe should perturb subsequent sampling")
	}
}

func TestSampleIndicesAreDistinctAndInRange(t *testing.T) {
	tr := New()
	tr.Push(TagX, []byte("seed"))
	indices, err := tr.SampleIndices(64, 20)
	if err != nil {
		t.Fatalf("SampleIndices: %v", err)
	}
	if len(indices) != 20 {
		t.Fatalf("expected 20 indices, got %d", len(indices))
	}
	seen := map[int]bool{}
	for _, idx := range indices {
		if idx < 0 || idx >= 64 {
			t.Fatalf("index %d out of range [0,64)", idx)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
}

func TestSampleIndicesRejectsNonPowerOfTwo(t *testing.T) {
	tr := New()
	if _, err := tr.SampleIndices(63, 1); err == nil {
		t.Fatal("expected an error for a non-power-of-two upper bound")
	}
}

func TestSampleIndicesDeterministicGivenIdenticalPriorState(t *testing.T) {
	a := New()
	a.Push(TagX, []byte("same"))
	b := New()
	b.Push(TagX, []byte("same"))

	ia, err := a.SampleIndices(32, 5)
	if err != nil {
		t.Fatalf("SampleIndices: %v", err)
	}
	ib, err := b.SampleIndices(32, 5)
	if err != nil {
		t.Fatalf("SampleIndices: %v", err)
	}
	for i := range ia {
		if ia[i] != ib[i] {
			t.Fatalf("identical prior state should yield identical indices: %v vs %v", ia, ib)
		}
	}
}

func TestSampleXElementsProducesIndependentValues(t *testing.T) {
	tr := New()
	tr.Push(TagX, []byte("seed"))
	xs := tr.SampleXElements(11)
	if len(xs) != 11 {
		t.Fatalf("expected 11 elements, got %d", len(xs))
	}
	for i := 0; i < len(xs); i++ {
		for j := i + 1; j < len(xs); j++ {
			if xs[i].Equal(xs[j]) {
				t.Fatalf("challenges %d and %d collided, vanishingly unlikely for an honest sampler", i, j)
			}
		}
	}
}

func TestDifferentPushSequencesDivergeInState(t *testing.T) {
	a := New()
	a.Push(TagX, []byte("one"))
	b := New()
	b.Push(TagX, []byte("two"))
	if string(a.State()) == string(b.State()) {
		t.Fatal("different pushed items should lead to different transcript state")
	}
}
