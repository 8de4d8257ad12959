// Package bfvm is a minimal Brainfuck interpreter that executes a
// program and produces the five base trace tables (processor,
// instruction, memory, input, output) the prover needs — a
// supplemented feature of spec.md §9 grounded on vm/tables.go's
// ExecutionTable capability set, reduced to the classic eight-
// instruction ISA.
package bfvm

import (
	"fmt"

	"github.com/vybium/bfstark/internal/bfstark/air"
)

// Program is a compiled instruction listing: one opcode per cell, plus
// a jump-target array meaningful only at bracket positions ('[' points
// past its matching ']'; ']' points just after its matching '[').
type Program struct {
	Opcodes []byte
	Targets []int
}

// Compile strips everything but the eight Brainfuck instruction
// characters from src and resolves bracket matching.
func Compile(src []byte) (*Program, error) {
	var ops []byte
	for _, b := range src {
		switch b {
		case air.OpRight, air.OpLeft, air.OpInc, air.OpDec, air.OpOutput, air.OpInput, air.OpLoop, air.OpEndl:
			ops = append(ops, b)
		}
	}
	targets := make([]int, len(ops))
	var stack []int
	for i, o := range ops {
		switch o {
		case air.OpLoop:
			stack = append(stack, i)
		case air.OpEndl:
			if len(stack) == 0 {
				return nil, fmt.Errorf("bfvm: unmatched ']' at instruction %d", i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			targets[open] = i + 1
			targets[i] = open + 1
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("bfvm: unmatched '[' at instruction %d", stack[len(stack)-1])
	}
	return &Program{Opcodes: ops, Targets: targets}, nil
}
