package bfstark

import "github.com/vybium/bfstark/internal/bfstark/stark"

// Config is the public STARK configuration: FRI expansion factor,
// number of colinearity checks, and the cycle budget a proof attests
// execution stayed within.
type Config = stark.Config

// DefaultConfig returns a modest expansion factor and enough
// colinearity checks for a convincing demonstration-grade security
// level (the exact bit-security target is a configuration choice left
// to the caller, not fixed by this package).
func DefaultConfig() Config {
	return stark.DefaultConfig()
}

// Claim is the public statement a proof attests to: that running
// Program on Input produces Output.
type Claim = stark.Claim

// Proof is an opaque, self-contained zkSTARK proof. Use
// Proof.MarshalBinary/UnmarshalProof to serialize it.
type Proof = stark.Proof

// UnmarshalProof decodes a proof previously produced by
// Proof.MarshalBinary.
func UnmarshalProof(data []byte) (*Proof, error) {
	return stark.UnmarshalProof(data)
}
