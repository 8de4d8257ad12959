// Command bfstark-prover generates and checks zkSTARK proofs of
// Brainfuck program execution from the command line.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vybium/bfstark/pkg/bfstark"
)

func main() {
	if len(os.Args) < 2 {
		fatal("expected a subcommand: prove or verify")
	}

	switch os.Args[1] {
	case "prove":
		runProve(os.Args[2:])
	case "verify":
		runVerify(os.Args[2:])
	default:
		fatal(fmt.Sprintf("unknown subcommand %q: expected prove or verify", os.Args[1]))
	}
}

func runProve(args []string) {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	programPath := fs.String("program", "", "path to the Brainfuck source file")
	inputPath := fs.String("input", "", "path to the input tape (omit for empty input)")
	outputPath := fs.String("output", "", "path to the expected output tape (omit for empty output)")
	proofPath := fs.String("proof", "", "path to write the proof (defaults to stdout)")
	maxCycles := fs.Int("max-cycles", 0, "cycle budget override (defaults to the built-in config)")
	checks := fs.Int("checks", 0, "FRI colinearity check count override (defaults to the built-in config)")
	fs.Parse(args)

	if *programPath == "" {
		fatal("prove: -program is required")
	}
	claim := readClaim(*programPath, *inputPath, *outputPath)

	cfg := bfstark.DefaultConfig()
	if *maxCycles > 0 {
		cfg.MaxCycles = *maxCycles
	}
	if *checks > 0 {
		cfg.NumColinearityChecks = *checks
	}

	logStderr("running program and building trace tables...")
	proof, err := bfstark.Prove(cfg, claim)
	if err != nil {
		fatal(fmt.Sprintf("proof generation failed: %v", err))
	}
	logStderr("proof generated")

	data, err := proof.MarshalBinary()
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize proof: %v", err))
	}

	if *proofPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*proofPath, data, 0o644); err != nil {
		fatal(fmt.Sprintf("failed to write proof to %s: %v", *proofPath, err))
	}
	logStderr(fmt.Sprintf("wrote proof to %s (%d bytes)", *proofPath, len(data)))
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	programPath := fs.String("program", "", "path to the Brainfuck source file")
	inputPath := fs.String("input", "", "path to the input tape (omit for empty input)")
	outputPath := fs.String("output", "", "path to the expected output tape (omit for empty output)")
	proofPath := fs.String("proof", "", "path to read the proof from (defaults to stdin)")
	checks := fs.Int("checks", 0, "FRI colinearity check count override (defaults to the built-in config)")
	fs.Parse(args)

	if *programPath == "" {
		fatal("verify: -program is required")
	}
	claim := readClaim(*programPath, *inputPath, *outputPath)

	cfg := bfstark.DefaultConfig()
	if *checks > 0 {
		cfg.NumColinearityChecks = *checks
	}

	var data []byte
	var err error
	if *proofPath == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*proofPath)
	}
	if err != nil {
		fatal(fmt.Sprintf("failed to read proof: %v", err))
	}

	proof, err := bfstark.UnmarshalProof(data)
	if err != nil {
		fatal(fmt.Sprintf("failed to parse proof: %v", err))
	}

	logStderr("verifying proof...")
	if err := bfstark.Verify(cfg, claim, proof); err != nil {
		fatal(fmt.Sprintf("proof rejected: %v", err))
	}
	logStderr("proof accepted")
}

func readClaim(programPath, inputPath, outputPath string) bfstark.Claim {
	program, err := os.ReadFile(programPath)
	if err != nil {
		fatal(fmt.Sprintf("failed to read program %s: %v", programPath, err))
	}
	var input, output []byte
	if inputPath != "" {
		input, err = os.ReadFile(inputPath)
		if err != nil {
			fatal(fmt.Sprintf("failed to read input %s: %v", inputPath, err))
		}
	}
	if outputPath != "" {
		output, err = os.ReadFile(outputPath)
		if err != nil {
			fatal(fmt.Sprintf("failed to read output %s: %v", outputPath, err))
		}
	}
	return bfstark.Claim{Program: program, Input: input, Output: output}
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "bfstark-prover:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
