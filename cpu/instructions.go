// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"
	"strings"
)

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes
const (
	IMM Mode = iota // Immediate
	IMP             // Implied (no operand)
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect)
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
	ACC             // Accumulator (no operand)
)

var modeNames = [...]string{
	IMM: "Immediate",
	IMP: "Implied",
	REL: "Relative",
	ZPG: "ZeroPage",
	ZPX: "ZeroPageX",
	ZPY: "ZeroPageY",
	ABS: "Absolute",
	ABX: "AbsoluteX",
	ABY: "AbsoluteY",
	IND: "Indirect",
	IDX: "IndirectX",
	IDY: "IndirectY",
	ACC: "Accumulator",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

// HasAddress reports whether instructions using the mode have an operand
// address for the resolver to compute.
func (m Mode) HasAddress() bool {
	return m != IMP && m != ACC
}

// Opcode data for an (opcode, mode) pair
type opcodeData struct {
	name     string // instruction mnemonic
	mode     Mode   // addressing mode
	opcode   byte   // opcode hex value
	length   byte   // length of opcode + operand in bytes
	cycles   byte   // number of CPU cycles to execute command
	bpcycles byte   // additional CPU cycles if command crosses page boundary
}

// All legal NMOS 6502 (opcode, mode) pairs. Branch penalties are charged by
// the branch handler, so REL rows carry no page-crossing cycles.
var data = []opcodeData{
	{"LDA", IMM, 0xa9, 2, 2, 0},
	{"LDA", ZPG, 0xa5, 2, 3, 0},
	{"LDA", ZPX, 0xb5, 2, 4, 0},
	{"LDA", ABS, 0xad, 3, 4, 0},
	{"LDA", ABX, 0xbd, 3, 4, 1},
	{"LDA", ABY, 0xb9, 3, 4, 1},
	{"LDA", IDX, 0xa1, 2, 6, 0},
	{"LDA", IDY, 0xb1, 2, 5, 1},

	{"LDX", IMM, 0xa2, 2, 2, 0},
	{"LDX", ZPG, 0xa6, 2, 3, 0},
	{"LDX", ZPY, 0xb6, 2, 4, 0},
	{"LDX", ABS, 0xae, 3, 4, 0},
	{"LDX", ABY, 0xbe, 3, 4, 1},

	{"LDY", IMM, 0xa0, 2, 2, 0},
	{"LDY", ZPG, 0xa4, 2, 3, 0},
	{"LDY", ZPX, 0xb4, 2, 4, 0},
	{"LDY", ABS, 0xac, 3, 4, 0},
	{"LDY", ABX, 0xbc, 3, 4, 1},

	{"STA", ZPG, 0x85, 2, 3, 0},
	{"STA", ZPX, 0x95, 2, 4, 0},
	{"STA", ABS, 0x8d, 3, 4, 0},
	{"STA", ABX, 0x9d, 3, 5, 0},
	{"STA", ABY, 0x99, 3, 5, 0},
	{"STA", IDX, 0x81, 2, 6, 0},
	{"STA", IDY, 0x91, 2, 6, 0},

	{"STX", ZPG, 0x86, 2, 3, 0},
	{"STX", ZPY, 0x96, 2, 4, 0},
	{"STX", ABS, 0x8e, 3, 4, 0},

	{"STY", ZPG, 0x84, 2, 3, 0},
	{"STY", ZPX, 0x94, 2, 4, 0},
	{"STY", ABS, 0x8c, 3, 4, 0},

	{"ADC", IMM, 0x69, 2, 2, 0},
	{"ADC", ZPG, 0x65, 2, 3, 0},
	{"ADC", ZPX, 0x75, 2, 4, 0},
	{"ADC", ABS, 0x6d, 3, 4, 0},
	{"ADC", ABX, 0x7d, 3, 4, 1},
	{"ADC", ABY, 0x79, 3, 4, 1},
	{"ADC", IDX, 0x61, 2, 6, 0},
	{"ADC", IDY, 0x71, 2, 5, 1},

	{"SBC", IMM, 0xe9, 2, 2, 0},
	{"SBC", ZPG, 0xe5, 2, 3, 0},
	{"SBC", ZPX, 0xf5, 2, 4, 0},
	{"SBC", ABS, 0xed, 3, 4, 0},
	{"SBC", ABX, 0xfd, 3, 4, 1},
	{"SBC", ABY, 0xf9, 3, 4, 1},
	{"SBC", IDX, 0xe1, 2, 6, 0},
	{"SBC", IDY, 0xf1, 2, 5, 1},

	{"CMP", IMM, 0xc9, 2, 2, 0},
	{"CMP", ZPG, 0xc5, 2, 3, 0},
	{"CMP", ZPX, 0xd5, 2, 4, 0},
	{"CMP", ABS, 0xcd, 3, 4, 0},
	{"CMP", ABX, 0xdd, 3, 4, 1},
	{"CMP", ABY, 0xd9, 3, 4, 1},
	{"CMP", IDX, 0xc1, 2, 6, 0},
	{"CMP", IDY, 0xd1, 2, 5, 1},

	{"CPX", IMM, 0xe0, 2, 2, 0},
	{"CPX", ZPG, 0xe4, 2, 3, 0},
	{"CPX", ABS, 0xec, 3, 4, 0},

	{"CPY", IMM, 0xc0, 2, 2, 0},
	{"CPY", ZPG, 0xc4, 2, 3, 0},
	{"CPY", ABS, 0xcc, 3, 4, 0},

	{"BIT", ZPG, 0x24, 2, 3, 0},
	{"BIT", ABS, 0x2c, 3, 4, 0},

	{"CLC", IMP, 0x18, 1, 2, 0},
	{"SEC", IMP, 0x38, 1, 2, 0},
	{"CLI", IMP, 0x58, 1, 2, 0},
	{"SEI", IMP, 0x78, 1, 2, 0},
	{"CLD", IMP, 0xd8, 1, 2, 0},
	{"SED", IMP, 0xf8, 1, 2, 0},
	{"CLV", IMP, 0xb8, 1, 2, 0},

	{"BCC", REL, 0x90, 2, 2, 0},
	{"BCS", REL, 0xb0, 2, 2, 0},
	{"BEQ", REL, 0xf0, 2, 2, 0},
	{"BNE", REL, 0xd0, 2, 2, 0},
	{"BMI", REL, 0x30, 2, 2, 0},
	{"BPL", REL, 0x10, 2, 2, 0},
	{"BVC", REL, 0x50, 2, 2, 0},
	{"BVS", REL, 0x70, 2, 2, 0},

	{"BRK", IMP, 0x00, 1, 7, 0},

	{"AND", IMM, 0x29, 2, 2, 0},
	{"AND", ZPG, 0x25, 2, 3, 0},
	{"AND", ZPX, 0x35, 2, 4, 0},
	{"AND", ABS, 0x2d, 3, 4, 0},
	{"AND", ABX, 0x3d, 3, 4, 1},
	{"AND", ABY, 0x39, 3, 4, 1},
	{"AND", IDX, 0x21, 2, 6, 0},
	{"AND", IDY, 0x31, 2, 5, 1},

	{"ORA", IMM, 0x09, 2, 2, 0},
	{"ORA", ZPG, 0x05, 2, 3, 0},
	{"ORA", ZPX, 0x15, 2, 4, 0},
	{"ORA", ABS, 0x0d, 3, 4, 0},
	{"ORA", ABX, 0x1d, 3, 4, 1},
	{"ORA", ABY, 0x19, 3, 4, 1},
	{"ORA", IDX, 0x01, 2, 6, 0},
	{"ORA", IDY, 0x11, 2, 5, 1},

	{"EOR", IMM, 0x49, 2, 2, 0},
	{"EOR", ZPG, 0x45, 2, 3, 0},
	{"EOR", ZPX, 0x55, 2, 4, 0},
	{"EOR", ABS, 0x4d, 3, 4, 0},
	{"EOR", ABX, 0x5d, 3, 4, 1},
	{"EOR", ABY, 0x59, 3, 4, 1},
	{"EOR", IDX, 0x41, 2, 6, 0},
	{"EOR", IDY, 0x51, 2, 5, 1},

	{"INC", ZPG, 0xe6, 2, 5, 0},
	{"INC", ZPX, 0xf6, 2, 6, 0},
	{"INC", ABS, 0xee, 3, 6, 0},
	{"INC", ABX, 0xfe, 3, 7, 0},

	{"DEC", ZPG, 0xc6, 2, 5, 0},
	{"DEC", ZPX, 0xd6, 2, 6, 0},
	{"DEC", ABS, 0xce, 3, 6, 0},
	{"DEC", ABX, 0xde, 3, 7, 0},

	{"INX", IMP, 0xe8, 1, 2, 0},
	{"INY", IMP, 0xc8, 1, 2, 0},

	{"DEX", IMP, 0xca, 1, 2, 0},
	{"DEY", IMP, 0x88, 1, 2, 0},

	{"JMP", ABS, 0x4c, 3, 3, 0},
	{"JMP", IND, 0x6c, 3, 5, 0},

	{"JSR", ABS, 0x20, 3, 6, 0},
	{"RTS", IMP, 0x60, 1, 6, 0},

	{"RTI", IMP, 0x40, 1, 6, 0},

	{"NOP", IMP, 0xea, 1, 2, 0},

	{"TAX", IMP, 0xaa, 1, 2, 0},
	{"TXA", IMP, 0x8a, 1, 2, 0},
	{"TAY", IMP, 0xa8, 1, 2, 0},
	{"TYA", IMP, 0x98, 1, 2, 0},
	{"TXS", IMP, 0x9a, 1, 2, 0},
	{"TSX", IMP, 0xba, 1, 2, 0},

	{"PHA", IMP, 0x48, 1, 3, 0},
	{"PLA", IMP, 0x68, 1, 4, 0},
	{"PHP", IMP, 0x08, 1, 3, 0},
	{"PLP", IMP, 0x28, 1, 4, 0},

	{"ASL", ACC, 0x0a, 1, 2, 0},
	{"ASL", ZPG, 0x06, 2, 5, 0},
	{"ASL", ZPX, 0x16, 2, 6, 0},
	{"ASL", ABS, 0x0e, 3, 6, 0},
	{"ASL", ABX, 0x1e, 3, 7, 0},

	{"LSR", ACC, 0x4a, 1, 2, 0},
	{"LSR", ZPG, 0x46, 2, 5, 0},
	{"LSR", ZPX, 0x56, 2, 6, 0},
	{"LSR", ABS, 0x4e, 3, 6, 0},
	{"LSR", ABX, 0x5e, 3, 7, 0},

	{"ROL", ACC, 0x2a, 1, 2, 0},
	{"ROL", ZPG, 0x26, 2, 5, 0},
	{"ROL", ZPX, 0x36, 2, 6, 0},
	{"ROL", ABS, 0x2e, 3, 6, 0},
	{"ROL", ABX, 0x3e, 3, 7, 0},

	{"ROR", ACC, 0x6a, 1, 2, 0},
	{"ROR", ZPG, 0x66, 2, 5, 0},
	{"ROR", ZPX, 0x76, 2, 6, 0},
	{"ROR", ABS, 0x6e, 3, 6, 0},
	{"ROR", ABX, 0x7e, 3, 7, 0},
}

// An Instruction describes a CPU instruction, including its name,
// its addressing mode, its opcode value, its operand size, and its CPU cycle
// cost.
type Instruction struct {
	Name     string   // all-caps name of the instruction
	Mode     Mode     // addressing mode
	Opcode   byte     // hexadecimal opcode value
	Length   byte     // combined size of opcode and operand, in bytes
	Cycles   byte     // number of CPU cycles to execute the instruction
	BPCycles byte     // additional cycles required if boundary page crossed
	fn       instfunc // emulator implementation of the instruction
}

// An InstructionSet maps every cataloged opcode byte to its instruction.
// It is immutable once built and may be shared by any number of CPUs.
type InstructionSet struct {
	instructions [256]*Instruction          // cataloged instructions by opcode
	variants     map[string][]*Instruction // variants of each instruction
	count        int
}

// NewInstructionSet builds the instruction set for the NES 6502. It fails
// if the underlying table registers an opcode more than once.
func NewInstructionSet() (*InstructionSet, error) {
	return newInstructionSet(data)
}

// MustInstructionSet is like NewInstructionSet but panics on error. It is
// meant for wiring at process start.
func MustInstructionSet() *InstructionSet {
	set, err := NewInstructionSet()
	if err != nil {
		panic(err)
	}
	return set
}

func newInstructionSet(rows []opcodeData) (*InstructionSet, error) {
	set := &InstructionSet{
		variants: make(map[string][]*Instruction),
	}

	for _, d := range rows {
		if prev := set.instructions[d.opcode]; prev != nil {
			return nil, fmt.Errorf("%w: $%02X registered as %s and %s",
				ErrDuplicateOpcode, d.opcode, prev.Name, d.name)
		}

		inst := &Instruction{
			Name:     d.name,
			Mode:     d.mode,
			Opcode:   d.opcode,
			Length:   d.length,
			Cycles:   d.cycles,
			BPCycles: d.bpcycles,
			fn:       handlers[d.name],
		}
		set.instructions[d.opcode] = inst
		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
		set.count++
	}

	return set, nil
}

// Lookup retrieves the instruction corresponding to the requested opcode.
// It returns ErrUnknownOpcode if the opcode is not cataloged.
func (s *InstructionSet) Lookup(opcode byte) (*Instruction, error) {
	inst := s.instructions[opcode]
	if inst == nil {
		return nil, &OpcodeError{Opcode: opcode, Err: ErrUnknownOpcode}
	}
	return inst, nil
}

// GetInstructions returns all CPU instructions whose name matches the
// provided string.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// Len returns the number of cataloged opcodes.
func (s *InstructionSet) Len() int {
	return s.count
}
