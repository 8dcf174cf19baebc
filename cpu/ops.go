// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// An instfunc executes an instruction whose operand address has already
// been resolved. 'addr' is meaningless for IMP and ACC modes.
type instfunc func(c *CPU, inst *Instruction, addr uint16)

// Emulator implementation for each mnemonic
var handlers = map[string]instfunc{
	"ADC": (*CPU).adc,
	"AND": (*CPU).and,
	"ASL": (*CPU).asl,
	"BCC": (*CPU).bcc,
	"BCS": (*CPU).bcs,
	"BEQ": (*CPU).beq,
	"BIT": (*CPU).bit,
	"BMI": (*CPU).bmi,
	"BNE": (*CPU).bne,
	"BPL": (*CPU).bpl,
	"BRK": (*CPU).brk,
	"BVC": (*CPU).bvc,
	"BVS": (*CPU).bvs,
	"CLC": (*CPU).clc,
	"CLD": (*CPU).cld,
	"CLI": (*CPU).cli,
	"CLV": (*CPU).clv,
	"CMP": (*CPU).cmp,
	"CPX": (*CPU).cpx,
	"CPY": (*CPU).cpy,
	"DEC": (*CPU).dec,
	"DEX": (*CPU).dex,
	"DEY": (*CPU).dey,
	"EOR": (*CPU).eor,
	"INC": (*CPU).inc,
	"INX": (*CPU).inx,
	"INY": (*CPU).iny,
	"JMP": (*CPU).jmp,
	"JSR": (*CPU).jsr,
	"LDA": (*CPU).lda,
	"LDX": (*CPU).ldx,
	"LDY": (*CPU).ldy,
	"LSR": (*CPU).lsr,
	"NOP": (*CPU).nop,
	"ORA": (*CPU).ora,
	"PHA": (*CPU).pha,
	"PHP": (*CPU).php,
	"PLA": (*CPU).pla,
	"PLP": (*CPU).plp,
	"ROL": (*CPU).rol,
	"ROR": (*CPU).ror,
	"RTI": (*CPU).rti,
	"RTS": (*CPU).rts,
	"SBC": (*CPU).sbc,
	"SEC": (*CPU).sec,
	"SED": (*CPU).sed,
	"SEI": (*CPU).sei,
	"STA": (*CPU).sta,
	"STX": (*CPU).stx,
	"STY": (*CPU).sty,
	"TAX": (*CPU).tax,
	"TAY": (*CPU).tay,
	"TSX": (*CPU).tsx,
	"TXA": (*CPU).txa,
	"TXS": (*CPU).txs,
	"TYA": (*CPU).tya,
}

// Add 'v' and the carry to the accumulator. The 2A03 has no decimal mode,
// so the Decimal flag is ignored.
func (cpu *CPU) addWithCarry(v byte) {
	acc := cpu.Reg.A
	sum := uint16(acc) + uint16(v) + uint16(boolToByte(cpu.Reg.PS.Test(Carry)))
	result := byte(sum)

	cpu.Reg.PS.SetTo(Carry, sum > 0xff)
	cpu.Reg.PS.SetTo(Overflow, ((acc^result)&(v^result)&0x80) != 0)

	cpu.Reg.A = result
	cpu.Reg.PS.UpdateZN(result)
}

// Compare 'reg' against 'v' as CMP, CPX and CPY do.
func (cpu *CPU) compare(reg, v byte) {
	cpu.Reg.PS.SetTo(Carry, reg >= v)
	cpu.Reg.PS.UpdateZN(reg - v)
}

// Add with carry
func (cpu *CPU) adc(inst *Instruction, addr uint16) {
	cpu.addWithCarry(cpu.load(inst, addr))
}

// Boolean AND
func (cpu *CPU) and(inst *Instruction, addr uint16) {
	cpu.Reg.A &= cpu.load(inst, addr)
	cpu.Reg.PS.UpdateZN(cpu.Reg.A)
}

// Arithmetic Shift Left
func (cpu *CPU) asl(inst *Instruction, addr uint16) {
	v := cpu.load(inst, addr)
	cpu.Reg.PS.SetTo(Carry, (v&0x80) != 0)
	v = v << 1
	cpu.Reg.PS.UpdateZN(v)
	cpu.store(inst, addr, v)
}

// Branch if Carry Clear
func (cpu *CPU) bcc(inst *Instruction, addr uint16) {
	cpu.branch(!cpu.Reg.PS.Test(Carry), addr)
}

// Branch if Carry Set
func (cpu *CPU) bcs(inst *Instruction, addr uint16) {
	cpu.branch(cpu.Reg.PS.Test(Carry), addr)
}

// Branch if EQual (to zero)
func (cpu *CPU) beq(inst *Instruction, addr uint16) {
	cpu.branch(cpu.Reg.PS.Test(Zero), addr)
}

// Bit Test
func (cpu *CPU) bit(inst *Instruction, addr uint16) {
	v := cpu.load(inst, addr)
	cpu.Reg.PS.SetTo(Zero, (v&cpu.Reg.A) == 0)
	cpu.Reg.PS.SetTo(Negative, (v&0x80) != 0)
	cpu.Reg.PS.SetTo(Overflow, (v&0x40) != 0)
}

// Branch if MInus (negative)
func (cpu *CPU) bmi(inst *Instruction, addr uint16) {
	cpu.branch(cpu.Reg.PS.Test(Negative), addr)
}

// Branch if Not Equal (not zero)
func (cpu *CPU) bne(inst *Instruction, addr uint16) {
	cpu.branch(!cpu.Reg.PS.Test(Zero), addr)
}

// Branch if PLus (positive)
func (cpu *CPU) bpl(inst *Instruction, addr uint16) {
	cpu.branch(!cpu.Reg.PS.Test(Negative), addr)
}

// Break. The emulated system has no interrupt controller, so BRK stops
// the CPU and hands control back to the caller.
func (cpu *CPU) brk(inst *Instruction, addr uint16) {
	cpu.halted = true
}

// Branch if oVerflow Clear
func (cpu *CPU) bvc(inst *Instruction, addr uint16) {
	cpu.branch(!cpu.Reg.PS.Test(Overflow), addr)
}

// Branch if oVerflow Set
func (cpu *CPU) bvs(inst *Instruction, addr uint16) {
	cpu.branch(cpu.Reg.PS.Test(Overflow), addr)
}

// Clear Carry flag
func (cpu *CPU) clc(inst *Instruction, addr uint16) {
	cpu.Reg.PS.Clear(Carry)
}

// Clear Decimal flag
func (cpu *CPU) cld(inst *Instruction, addr uint16) {
	cpu.Reg.PS.Clear(Decimal)
}

// Clear InterruptDisable flag
func (cpu *CPU) cli(inst *Instruction, addr uint16) {
	cpu.Reg.PS.Clear(InterruptDisable)
}

// Clear oVerflow flag
func (cpu *CPU) clv(inst *Instruction, addr uint16) {
	cpu.Reg.PS.Clear(Overflow)
}

// Compare to accumulator
func (cpu *CPU) cmp(inst *Instruction, addr uint16) {
	cpu.compare(cpu.Reg.A, cpu.load(inst, addr))
}

// Compare to X register
func (cpu *CPU) cpx(inst *Instruction, addr uint16) {
	cpu.compare(cpu.Reg.X, cpu.load(inst, addr))
}

// Compare to Y register
func (cpu *CPU) cpy(inst *Instruction, addr uint16) {
	cpu.compare(cpu.Reg.Y, cpu.load(inst, addr))
}

// Decrement memory value
func (cpu *CPU) dec(inst *Instruction, addr uint16) {
	v := cpu.load(inst, addr) - 1
	cpu.Reg.PS.UpdateZN(v)
	cpu.store(inst, addr, v)
}

// Decrement X register
func (cpu *CPU) dex(inst *Instruction, addr uint16) {
	cpu.Reg.X--
	cpu.Reg.PS.UpdateZN(cpu.Reg.X)
}

// Decrement Y register
func (cpu *CPU) dey(inst *Instruction, addr uint16) {
	cpu.Reg.Y--
	cpu.Reg.PS.UpdateZN(cpu.Reg.Y)
}

// Boolean XOR
func (cpu *CPU) eor(inst *Instruction, addr uint16) {
	cpu.Reg.A ^= cpu.load(inst, addr)
	cpu.Reg.PS.UpdateZN(cpu.Reg.A)
}

// Increment memory value
func (cpu *CPU) inc(inst *Instruction, addr uint16) {
	v := cpu.load(inst, addr) + 1
	cpu.Reg.PS.UpdateZN(v)
	cpu.store(inst, addr, v)
}

// Increment X register
func (cpu *CPU) inx(inst *Instruction, addr uint16) {
	cpu.Reg.X++
	cpu.Reg.PS.UpdateZN(cpu.Reg.X)
}

// Increment Y register
func (cpu *CPU) iny(inst *Instruction, addr uint16) {
	cpu.Reg.Y++
	cpu.Reg.PS.UpdateZN(cpu.Reg.Y)
}

// Jump to memory address
func (cpu *CPU) jmp(inst *Instruction, addr uint16) {
	cpu.Reg.PC = addr
}

// Jump to subroutine. The pushed return address is the last byte of the
// JSR instruction.
func (cpu *CPU) jsr(inst *Instruction, addr uint16) {
	cpu.pushAddress(cpu.Reg.PC - 1)
	cpu.Reg.PC = addr
}

// load Accumulator
func (cpu *CPU) lda(inst *Instruction, addr uint16) {
	cpu.Reg.A = cpu.load(inst, addr)
	cpu.Reg.PS.UpdateZN(cpu.Reg.A)
}

// load the X register
func (cpu *CPU) ldx(inst *Instruction, addr uint16) {
	cpu.Reg.X = cpu.load(inst, addr)
	cpu.Reg.PS.UpdateZN(cpu.Reg.X)
}

// load the Y register
func (cpu *CPU) ldy(inst *Instruction, addr uint16) {
	cpu.Reg.Y = cpu.load(inst, addr)
	cpu.Reg.PS.UpdateZN(cpu.Reg.Y)
}

// Logical Shift Right
func (cpu *CPU) lsr(inst *Instruction, addr uint16) {
	v := cpu.load(inst, addr)
	cpu.Reg.PS.SetTo(Carry, (v&1) == 1)
	v = v >> 1
	cpu.Reg.PS.UpdateZN(v)
	cpu.store(inst, addr, v)
}

// No-operation
func (cpu *CPU) nop(inst *Instruction, addr uint16) {
}

// Boolean OR
func (cpu *CPU) ora(inst *Instruction, addr uint16) {
	cpu.Reg.A |= cpu.load(inst, addr)
	cpu.Reg.PS.UpdateZN(cpu.Reg.A)
}

// Push Accumulator
func (cpu *CPU) pha(inst *Instruction, addr uint16) {
	cpu.push(cpu.Reg.A)
}

// Push Processor flags. The pushed copy always has both break bits set.
func (cpu *CPU) php(inst *Instruction, addr uint16) {
	cpu.push(byte(cpu.Reg.PS | Break | Break2))
}

// Pull (pop) Accumulator
func (cpu *CPU) pla(inst *Instruction, addr uint16) {
	cpu.Reg.A = cpu.pop()
	cpu.Reg.PS.UpdateZN(cpu.Reg.A)
}

// Pull (pop) Processor flags
func (cpu *CPU) plp(inst *Instruction, addr uint16) {
	cpu.restoreStatus(cpu.pop())
}

// Restore the status flags from a byte pulled off the stack. Break only
// exists in pushed copies, and Break2 always reads back as set.
func (cpu *CPU) restoreStatus(v byte) {
	cpu.Reg.PS = (Status(v) &^ Break) | Break2
}

// Rotate Left
func (cpu *CPU) rol(inst *Instruction, addr uint16) {
	tmp := cpu.load(inst, addr)
	v := (tmp << 1) | boolToByte(cpu.Reg.PS.Test(Carry))
	cpu.Reg.PS.SetTo(Carry, (tmp&0x80) != 0)
	cpu.Reg.PS.UpdateZN(v)
	cpu.store(inst, addr, v)
}

// Rotate Right
func (cpu *CPU) ror(inst *Instruction, addr uint16) {
	tmp := cpu.load(inst, addr)
	v := (tmp >> 1) | (boolToByte(cpu.Reg.PS.Test(Carry)) << 7)
	cpu.Reg.PS.SetTo(Carry, (tmp&1) != 0)
	cpu.Reg.PS.UpdateZN(v)
	cpu.store(inst, addr, v)
}

// Return from Interrupt
func (cpu *CPU) rti(inst *Instruction, addr uint16) {
	cpu.restoreStatus(cpu.pop())
	cpu.Reg.PC = cpu.popAddress()
}

// Return from Subroutine
func (cpu *CPU) rts(inst *Instruction, addr uint16) {
	cpu.Reg.PC = cpu.popAddress() + 1
}

// Subtract with Carry. A - M - (1 - C) is A + ^M + C in two's complement.
func (cpu *CPU) sbc(inst *Instruction, addr uint16) {
	cpu.addWithCarry(^cpu.load(inst, addr))
}

// Set Carry flag
func (cpu *CPU) sec(inst *Instruction, addr uint16) {
	cpu.Reg.PS.Set(Carry)
}

// Set Decimal flag
func (cpu *CPU) sed(inst *Instruction, addr uint16) {
	cpu.Reg.PS.Set(Decimal)
}

// Set InterruptDisable flag
func (cpu *CPU) sei(inst *Instruction, addr uint16) {
	cpu.Reg.PS.Set(InterruptDisable)
}

// Store Accumulator
func (cpu *CPU) sta(inst *Instruction, addr uint16) {
	cpu.store(inst, addr, cpu.Reg.A)
}

// Store X register
func (cpu *CPU) stx(inst *Instruction, addr uint16) {
	cpu.store(inst, addr, cpu.Reg.X)
}

// Store Y register
func (cpu *CPU) sty(inst *Instruction, addr uint16) {
	cpu.store(inst, addr, cpu.Reg.Y)
}

// Transfer Accumulator to X register
func (cpu *CPU) tax(inst *Instruction, addr uint16) {
	cpu.Reg.X = cpu.Reg.A
	cpu.Reg.PS.UpdateZN(cpu.Reg.X)
}

// Transfer Accumulator to Y register
func (cpu *CPU) tay(inst *Instruction, addr uint16) {
	cpu.Reg.Y = cpu.Reg.A
	cpu.Reg.PS.UpdateZN(cpu.Reg.Y)
}

// Transfer stack pointer to X register
func (cpu *CPU) tsx(inst *Instruction, addr uint16) {
	cpu.Reg.X = cpu.Reg.SP
	cpu.Reg.PS.UpdateZN(cpu.Reg.X)
}

// Transfer X register to Accumulator
func (cpu *CPU) txa(inst *Instruction, addr uint16) {
	cpu.Reg.A = cpu.Reg.X
	cpu.Reg.PS.UpdateZN(cpu.Reg.A)
}

// Transfer X register to the stack pointer
func (cpu *CPU) txs(inst *Instruction, addr uint16) {
	cpu.Reg.SP = cpu.Reg.X
}

// Transfer Y register to the Accumulator
func (cpu *CPU) tya(inst *Instruction, addr uint16) {
	cpu.Reg.A = cpu.Reg.Y
	cpu.Reg.PS.UpdateZN(cpu.Reg.A)
}
