package bfvm

import (
	"fmt"
	"sort"

	"github.com/vybium/bfstark/internal/bfstark/air"
	"github.com/vybium/bfstark/internal/bfstark/field"
)

// Trace holds the five base tables produced by running a program,
// plus the bytes it consumed from/emitted to its input/output tapes.
type Trace struct {
	Processor   *air.Table
	Instruction *air.Table
	Memory      *air.Table
	Input       *air.Table
	Output      *air.Table
	OutputBytes []byte
}

// memAccess records one (cycle, mp, mv) triple for the memory table,
// which is later re-sorted by (mp, cycle).
type memAccess struct {
	cycle, mp int
	mv        byte
}

// Run executes program against input, capping execution at maxCycles
// (spec.md's resource bound against non-terminating programs), and
// returns the resulting trace tables.
func Run(program []byte, input []byte, maxCycles int) (*Trace, error) {
	prog, err := Compile(program)
	if err != nil {
		return nil, err
	}

	mem := make([]byte, 1, 64)
	mp := 0
	ip := 0
	inPos := 0
	var output []byte
	visited := make([]bool, len(prog.Opcodes))

	procTable := air.NewTable(air.ProcBaseWidth)
	var accesses []memAccess

	type instrRow struct {
		ip, ci, ni int
		filler     bool
	}
	var cycleRows []instrRow

	zero := field.New(0)

	cycle := 0
	for {
		if ip >= len(prog.Opcodes) {
			break
		}
		if cycle >= maxCycles {
			return nil, fmt.Errorf("bfvm: execution exceeded %d cycles without halting", maxCycles)
		}
		ci := prog.Opcodes[ip]
		ni := prog.Targets[ip] // 0 for non-bracket instructions, a jump target for brackets
		mv := mem[mp]
		var mvi field.Element
		if mv != 0 {
			mvi = field.New(uint64(mv)).Inv()
		}

		visited[ip] = true
		cycleRows = append(cycleRows, instrRow{ip: ip, ci: int(ci), ni: ni})

		row := []field.Element{
			zero, // ProcPad
			field.New(uint64(cycle)),
			field.New(uint64(ip)),
			field.New(uint64(ci)),
			field.New(uint64(ni)),
			field.New(uint64(mp)),
			field.New(uint64(mv)),
			mvi,
		}
		if err := procTable.AddRow(row); err != nil {
			return nil, err
		}
		accesses = append(accesses, memAccess{cycle: cycle, mp: mp, mv: mv})

		switch ci {
		case air.OpRight:
			mp++
			for mp >= len(mem) {
				mem = append(mem, 0)
			}
			ip++
		case air.OpLeft:
			if mp == 0 {
				return nil, fmt.Errorf("bfvm: memory pointer moved left of cell 0 at cycle %d", cycle)
			}
			mp--
			ip++
		case air.OpInc:
			mem[mp]++
			ip++
		case air.OpDec:
			mem[mp]--
			ip++
		case air.OpOutput:
			output = append(output, mem[mp])
			ip++
		case air.OpInput:
			if inPos >= len(input) {
				return nil, fmt.Errorf("bfvm: input exhausted at cycle %d", cycle)
			}
			mem[mp] = input[inPos]
			inPos++
			ip++
		case air.OpLoop:
			if mem[mp] == 0 {
				ip = prog.Targets[ip]
			} else {
				ip++
			}
		case air.OpEndl:
			if mem[mp] != 0 {
				ip = prog.Targets[ip]
			} else {
				ip++
			}
		default:
			return nil, fmt.Errorf("bfvm: unknown opcode %q at ip %d", ci, ip)
		}
		cycle++
	}

	// The instruction table carries the union of one row per execution
	// cycle (read by the permutation argument against the processor
	// table) and one filler row per program position the processor
	// never reached (read by the program-evaluation argument, which
	// must cover every position in the program exactly once regardless
	// of whether it was ever executed), sorted by ip. A plain listing of
	// one row per position cannot stand in for the permutation argument
	// on its own, since a looping program visits some positions more
	// than once and others not at all.
	instrRows := make([]instrRow, 0, len(cycleRows)+len(prog.Opcodes))
	instrRows = append(instrRows, cycleRows...)
	for i, op := range prog.Opcodes {
		if !visited[i] {
			instrRows = append(instrRows, instrRow{ip: i, ci: int(op), ni: prog.Targets[i], filler: true})
		}
	}
	sort.SliceStable(instrRows, func(i, j int) bool { return instrRows[i].ip < instrRows[j].ip })

	instrTable := air.NewTable(air.InstrBaseWidth)
	for _, r := range instrRows {
		fillerF := zero
		if r.filler {
			fillerF = field.New(1)
		}
		if err := instrTable.AddRow([]field.Element{
			zero, // InstrPad
			fillerF,
			field.New(uint64(r.ip)), field.New(uint64(r.ci)), field.New(uint64(r.ni)),
		}); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(accesses, func(i, j int) bool {
		if accesses[i].mp != accesses[j].mp {
			return accesses[i].mp < accesses[j].mp
		}
		return accesses[i].cycle < accesses[j].cycle
	})
	memTable := air.NewTable(air.MemBaseWidth)
	for _, a := range accesses {
		if err := memTable.AddRow([]field.Element{
			zero, // MemPad
			field.New(uint64(a.cycle)), field.New(uint64(a.mp)), field.New(uint64(a.mv)),
		}); err != nil {
			return nil, err
		}
	}

	inTable := air.NewTable(air.IOBaseWidth)
	for _, b := range input[:inPos] {
		if err := inTable.AddRow([]field.Element{zero, field.New(uint64(b))}); err != nil {
			return nil, err
		}
	}
	outTable := air.NewTable(air.IOBaseWidth)
	for _, b := range output {
		if err := outTable.AddRow([]field.Element{zero, field.New(uint64(b))}); err != nil {
			return nil, err
		}
	}

	return &Trace{
		Processor:   procTable,
		Instruction: instrTable,
		Memory:      memTable,
		Input:       inTable,
		Output:      outTable,
		OutputBytes: output,
	}, nil
}
