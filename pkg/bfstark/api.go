package bfstark

import "github.com/vybium/bfstark/internal/bfstark/stark"

// Prove runs claim.Program on claim.Input, checks its output matches
// claim.Output, and produces a Proof of that fact. It returns a
// *Error (see ErrorKind) on any failure, including the program
// producing the wrong output or exceeding cfg.MaxCycles.
func Prove(cfg Config, claim Claim) (*Proof, error) {
	return stark.Prove(cfg, claim)
}

// Verify checks that proof attests to claim under cfg, returning a
// *Error (see ErrorKind) describing the first check that failed, or
// nil if the proof is valid.
func Verify(cfg Config, claim Claim, proof *Proof) error {
	return stark.Verify(cfg, claim, proof)
}
