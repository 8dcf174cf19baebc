// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"

	"github.com/beevik/nes6502/cpu"
)

// Operand formatting for addressing modes
var modeFormat = []string{
	cpu.IMM: "#$%s",
	cpu.REL: "$%s",
	cpu.ZPG: "$%s",
	cpu.ZPX: "$%s,X",
	cpu.ZPY: "$%s,Y",
	cpu.ABS: "$%s",
	cpu.ABX: "$%s,X",
	cpu.ABY: "$%s,Y",
	cpu.IND: "($%s)",
	cpu.IDX: "($%s,X)",
	cpu.IDY: "($%s),Y",
}

// Return the operand bytes as a big-endian hexadecimal string.
func operandString(b []byte) string {
	buf := make([]byte, len(b)*2)
	j := len(buf) - 1
	for _, n := range b {
		buf[j] = hexString[n&0xf]
		buf[j-1] = hexString[n>>4]
		j -= 2
	}
	return string(buf)
}

// decode formats the instruction at 'addr' as a mnemonic and operand. It
// returns the formatted line and the instruction's machine code. Bytes that
// are not cataloged opcodes are shown as "???".
func decode(c *cpu.CPU, addr uint16) (line string, code []byte) {
	inst := c.GetInstruction(addr)
	if inst == nil {
		return "???", []byte{c.Mem.LoadByte(addr)}
	}

	code = make([]byte, inst.Length)
	c.Mem.LoadBytes(addr, code)
	operand := code[1:]

	if inst.Mode == cpu.REL {
		// Show the branch target rather than the raw offset.
		target := addr + 2 + uint16(int8(operand[0]))
		operand = []byte{byte(target), byte(target >> 8)}
	}

	switch inst.Mode {
	case cpu.IMP:
		line = inst.Name
	case cpu.ACC:
		line = inst.Name + " A"
	default:
		line = fmt.Sprintf("%s "+modeFormat[inst.Mode], inst.Name, operandString(operand))
	}
	return line, code
}
