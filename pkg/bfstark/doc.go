// Package bfstark provides a zkSTARK prover and verifier for Brainfuck
// program execution.
//
// Given a Brainfuck program, a public input, and a claimed public
// output, Prove produces a succinct proof that running the program on
// the input halts within a configured cycle budget and produces
// exactly that output. Verify checks such a proof without re-running
// the program.
//
// # Quick Start
//
//	cfg := bfstark.DefaultConfig()
//	claim := bfstark.Claim{
//		Program: []byte(",[.,]"),
//		Input:   []byte("hello\x00"),
//		Output:  []byte("hello"),
//	}
//
// The input ends in the zero byte that stops the loop: a ',' executed
// after the last input byte is an error, not a read of zero.
//
//	proof, err := bfstark.Prove(cfg, claim)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := bfstark.Verify(cfg, claim, proof); err != nil {
//		log.Fatal("proof rejected:", err)
//	}
//
// # Architecture
//
//   - pkg/bfstark/: public API (this package)
//   - internal/bfstark/: private implementation (not importable)
//
// The arithmetization (five trace tables plus cross-table permutation
// and evaluation arguments), FRI low-degree test, and Fiat-Shamir
// transcript all live under internal/bfstark and can change shape
// without breaking this package's exported surface.
package bfstark
