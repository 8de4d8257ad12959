package bfstark_test

import (
	"errors"
	"testing"

	"github.com/vybium/bfstark/pkg/bfstark"
)

func smallConfig() bfstark.Config {
	cfg := bfstark.DefaultConfig()
	cfg.NumColinearityChecks = 4
	cfg.MaxCycles = 1024
	return cfg
}

func TestProveVerifyRoundTrip(t *testing.T) {
	cfg := smallConfig()
	claim := bfstark.Claim{
		Program: []byte(",[.,]"), // copy input to output until a zero byte
		Input:   []byte("hi\x00"),
		Output:  []byte("hi"),
	}

	proof, err := bfstark.Prove(cfg, claim)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := bfstark.Verify(cfg, claim, proof); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestProveRejectsWrongOutput(t *testing.T) {
	cfg := smallConfig()
	claim := bfstark.Claim{
		Program: []byte(",[.,]"),
		Input:   []byte("hi\x00"),
		Output:  []byte("bye"),
	}

	if _, err := bfstark.Prove(cfg, claim); err == nil {
		t.Fatal("expected Prove to reject a claim with the wrong output")
	} else {
		var e *bfstark.Error
		if !errors.As(err, &e) || e.Kind != bfstark.ErrAlgebraicMismatch {
			t.Fatalf("expected ErrAlgebraicMismatch, got %v", err)
		}
	}
}

func TestProofRoundTripsThroughBinary(t *testing.T) {
	cfg := smallConfig()
	claim := bfstark.Claim{
		Program: []byte(",[.,]"),
		Input:   []byte("hi\x00"),
		Output:  []byte("hi"),
	}
	proof, err := bfstark.Prove(cfg, claim)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	data, err := proof.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	decoded, err := bfstark.UnmarshalProof(data)
	if err != nil {
		t.Fatalf("UnmarshalProof: %v", err)
	}
	if err := bfstark.Verify(cfg, claim, decoded); err != nil {
		t.Fatalf("Verify(decoded): %v", err)
	}
}

func TestEndToEndScenarios(t *testing.T) {
	cfg := smallConfig()
	cases := []struct {
		name    string
		program string
		input   string
		output  string
	}{
		{"increment and output", "++.", "", "\x02"},
		{"read and echo", ",.", "A", "A"},
		{"halt after clearing loop body", "+[-]", "", ""},
		{"add two cells via transfer loop", ",>,<[->+<]>.", "\x03\x05", "\x08"},
		{"copy until sentinel", ",[.,]", "hello\x00", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claim := bfstark.Claim{Program: []byte(tc.program), Input: []byte(tc.input), Output: []byte(tc.output)}
			proof, err := bfstark.Prove(cfg, claim)
			if err != nil {
				t.Fatalf("Prove: %v", err)
			}
			if err := bfstark.Verify(cfg, claim, proof); err != nil {
				t.Fatalf("Verify: %v", err)
			}
		})
	}
}

func TestVerifyRejectsTamperedProofBytes(t *testing.T) {
	cfg := smallConfig()
	claim := bfstark.Claim{
		Program: []byte(",[.,]"),
		Input:   []byte("hi\x00"),
		Output:  []byte("hi"),
	}
	proof, err := bfstark.Prove(cfg, claim)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	data, err := proof.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	for _, pos := range []int{0, len(data) / 4, len(data) / 2, len(data) - 1} {
		mutated := append([]byte(nil), data...)
		mutated[pos] ^= 0xff
		decoded, err := bfstark.UnmarshalProof(mutated)
		if err != nil {
			continue // malformed encoding is itself a rejection
		}
		if err := bfstark.Verify(cfg, claim, decoded); err == nil {
			t.Fatalf("expected Verify to reject a proof tampered at byte offset %d", pos)
		}
	}
}

func TestVerifyRejectsTamperedOutput(t *testing.T) {
	cfg := smallConfig()
	claim := bfstark.Claim{
		Program: []byte(",[.,]"),
		Input:   []byte("hi\x00"),
		Output:  []byte("hi"),
	}
	proof, err := bfstark.Prove(cfg, claim)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	tampered := claim
	tampered.Output = []byte("hx")
	if err := bfstark.Verify(cfg, tampered, proof); err == nil {
		t.Fatal("expected Verify to reject a proof checked against a different claim")
	}
}
