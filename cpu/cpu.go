// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements the NES flavor of the 6502 CPU: a flat 64K
// memory, the processor status flags, an opcode catalog, an
// addressing-mode resolver and a fetch-decode-execute engine.
package cpu

import (
	"fmt"
	"io"
)

// Fixed addresses used by Load and Reset.
const (
	ProgramBase  = 0x8000 // base address of a program image
	VectorReset  = 0xfffc // reset vector
	addressSpace = 0x10000
)

// CPU represents a single 6502 CPU. It contains a pointer to the
// memory associated with the CPU.
type CPU struct {
	Reg         Registers       // CPU registers
	Mem         Memory          // assigned memory
	Cycles      uint64          // total executed CPU cycles
	LastPC      uint16          // address of the most recently fetched opcode
	InstSet     *InstructionSet // instruction set used by the CPU
	halted      bool
	deltaCycles byte
	debugger    *Debugger
	trace       io.Writer
	storeByte   func(cpu *CPU, addr uint16, v byte)
}

// NewCPU creates an emulated 6502 CPU bound to the specified memory and
// using the shared instruction set 'set'.
func NewCPU(set *InstructionSet, m Memory) *CPU {
	cpu := &CPU{
		Mem:       m,
		InstSet:   set,
		storeByte: (*CPU).storeByteNormal,
	}

	cpu.Reg.Init()
	return cpu
}

// Halted reports whether the CPU has executed a BRK or stopped on a fatal
// error.
func (cpu *CPU) Halted() bool {
	return cpu.halted
}

// SetPC updates the CPU program counter to 'addr'.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// SetTrace directs a one-line summary of every executed instruction to 'w'.
// Pass nil to disable tracing.
func (cpu *CPU) SetTrace(w io.Writer) {
	cpu.trace = w
}

// GetInstruction returns the instruction at the requested address, or nil
// if the byte there is not a cataloged opcode.
func (cpu *CPU) GetInstruction(addr uint16) *Instruction {
	inst, err := cpu.InstSet.Lookup(cpu.Mem.LoadByte(addr))
	if err != nil {
		return nil
	}
	return inst
}

// NextAddr returns the address of the next instruction following the
// instruction at addr.
func (cpu *CPU) NextAddr(addr uint16) uint16 {
	if inst := cpu.GetInstruction(addr); inst != nil {
		return addr + uint16(inst.Length)
	}
	return addr + 1
}

// Load copies 'program' into memory at ProgramBase and points the reset
// vector at it.
func (cpu *CPU) Load(program []byte) error {
	if err := cpu.LoadAt(ProgramBase, program); err != nil {
		return err
	}
	cpu.Mem.StoreAddress(VectorReset, ProgramBase)
	return nil
}

// LoadAt copies 'program' into memory at 'addr' without touching the reset
// vector. The program must fit below the end of the address space.
func (cpu *CPU) LoadAt(addr uint16, program []byte) error {
	if int(addr)+len(program) > addressSpace {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrProgramTooLarge, len(program), addr)
	}
	cpu.Mem.StoreBytes(addr, program)
	return nil
}

// Reset reinitializes the registers and status flags and starts execution
// at the address held in the reset vector. Memory is left untouched.
func (cpu *CPU) Reset() {
	cpu.Reg.A = 0
	cpu.Reg.X = 0
	cpu.Reg.Y = 0
	cpu.Reg.SP = stackReset
	cpu.Reg.PS = statusReset
	cpu.Reg.PC = cpu.Mem.LoadAddress(VectorReset)
	cpu.halted = false
}

// LoadAndRun loads 'program', resets the CPU and runs it until it halts.
func (cpu *CPU) LoadAndRun(program []byte) error {
	if err := cpu.Load(program); err != nil {
		return err
	}
	cpu.Reset()
	return cpu.Run()
}

// Run executes instructions until a BRK halts the CPU or an instruction
// fails.
func (cpu *CPU) Run() error {
	for !cpu.halted {
		if err := cpu.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunFor executes at most 'maxSteps' instructions and returns the number
// actually executed. It stops early when the CPU halts or fails.
func (cpu *CPU) RunFor(maxSteps int) (int, error) {
	n := 0
	for ; n < maxSteps && !cpu.halted; n++ {
		if err := cpu.Step(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Step the cpu by one instruction.
func (cpu *CPU) Step() error {
	if cpu.halted {
		return ErrHalted
	}

	// Fetch the opcode and advance past it.
	pc := cpu.Reg.PC
	opcode := cpu.Mem.LoadByte(pc)
	cpu.LastPC = pc
	cpu.Reg.PC++

	inst, err := cpu.InstSet.Lookup(opcode)
	if err != nil {
		return cpu.fail(opcode, pc, ErrUnknownOpcode)
	}
	if inst.fn == nil {
		return cpu.fail(opcode, pc, ErrNotImplemented)
	}

	// Resolve the operand address, then consume the operand bytes.
	var addr uint16
	var pageCrossed bool
	if inst.Mode.HasAddress() {
		addr, pageCrossed, err = cpu.resolve(inst.Mode)
		if err != nil {
			cpu.halted = true
			return err
		}
	}
	cpu.Reg.PC += uint16(inst.Length) - 1

	cpu.deltaCycles = 0
	inst.fn(cpu, inst, addr)

	cpu.Cycles += uint64(inst.Cycles) + uint64(cpu.deltaCycles)
	if pageCrossed {
		cpu.Cycles += uint64(inst.BPCycles)
	}

	if cpu.trace != nil {
		cpu.traceInstruction(inst, pc)
	}

	// Update the debugger so it can handle breakpoints.
	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}
	return nil
}

func (cpu *CPU) fail(opcode byte, pc uint16, err error) error {
	cpu.halted = true
	return &OpcodeError{Opcode: opcode, PC: pc, Err: err}
}

func (cpu *CPU) traceInstruction(inst *Instruction, pc uint16) {
	var b [3]byte
	code := b[:inst.Length]
	cpu.Mem.LoadBytes(pc, code)

	var hex string
	for i, v := range code {
		if i > 0 {
			hex += " "
		}
		hex += fmt.Sprintf("%02X", v)
	}

	fmt.Fprintf(cpu.trace, "%04X  %-8s  %s  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		pc, hex, inst.Name, cpu.Reg.A, cpu.Reg.X, cpu.Reg.Y, byte(cpu.Reg.PS),
		cpu.Reg.SP, cpu.Cycles)
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a byte
// to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
	cpu.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the currently attached debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
	cpu.storeByte = (*CPU).storeByteNormal
}

// Load the operand byte for 'inst' from the resolved address, or from the
// accumulator in accumulator mode.
func (cpu *CPU) load(inst *Instruction, addr uint16) byte {
	if inst.Mode == ACC {
		return cpu.Reg.A
	}
	return cpu.Mem.LoadByte(addr)
}

// Store the result of 'inst' at the resolved address, or into the
// accumulator in accumulator mode.
func (cpu *CPU) store(inst *Instruction, addr uint16, v byte) {
	if inst.Mode == ACC {
		cpu.Reg.A = v
		return
	}
	cpu.storeByte(cpu, addr, v)
}

// Store the byte value 'v' at the address 'addr'.
func (cpu *CPU) storeByteNormal(addr uint16, v byte) {
	cpu.Mem.StoreByte(addr, v)
}

// Store the byte value 'v' at the address 'addr', notifying the debugger
// first.
func (cpu *CPU) storeByteDebugger(addr uint16, v byte) {
	cpu.debugger.onDataStore(cpu, addr, v)
	cpu.Mem.StoreByte(addr, v)
}

// Push a value 'v' onto the stack.
func (cpu *CPU) push(v byte) {
	cpu.storeByte(cpu, stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
}

// Push the address 'addr' onto the stack.
func (cpu *CPU) pushAddress(addr uint16) {
	cpu.push(byte(addr >> 8))
	cpu.push(byte(addr))
}

// Pop a value from the stack and return it.
func (cpu *CPU) pop() byte {
	cpu.Reg.SP++
	return cpu.Mem.LoadByte(stackAddress(cpu.Reg.SP))
}

// Pop a 16-bit address off the stack.
func (cpu *CPU) popAddress() uint16 {
	lo := cpu.pop()
	hi := cpu.pop()
	return uint16(lo) | (uint16(hi) << 8)
}

// Branch to 'target' when 'cond' holds. A taken branch costs one extra
// cycle, and one more if it lands on a different page.
func (cpu *CPU) branch(cond bool, target uint16) {
	if !cond {
		return
	}
	cpu.deltaCycles++
	if ((cpu.Reg.PC ^ target) & 0xff00) != 0 {
		cpu.deltaCycles++
	}
	cpu.Reg.PC = target
}
