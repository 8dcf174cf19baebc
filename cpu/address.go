// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "fmt"

// resolve computes the effective address for an instruction using 'mode'.
// The program counter must point at the first operand byte. Neither memory
// nor registers are modified. 'pageCrossed' reports whether an indexed or
// relative address landed on a different page than its base.
func (cpu *CPU) resolve(mode Mode) (addr uint16, pageCrossed bool, err error) {
	pc := cpu.Reg.PC
	m := cpu.Mem

	switch mode {
	case IMM:
		return pc, false, nil

	case ZPG:
		return uint16(m.LoadByte(pc)), false, nil

	case ZPX:
		return offsetZeroPage(m.LoadByte(pc), cpu.Reg.X), false, nil

	case ZPY:
		return offsetZeroPage(m.LoadByte(pc), cpu.Reg.Y), false, nil

	case ABS:
		return m.LoadAddress(pc), false, nil

	case ABX:
		addr, pageCrossed = offsetAddress(m.LoadAddress(pc), cpu.Reg.X)
		return addr, pageCrossed, nil

	case ABY:
		addr, pageCrossed = offsetAddress(m.LoadAddress(pc), cpu.Reg.Y)
		return addr, pageCrossed, nil

	case IDX:
		zp := m.LoadByte(pc) + cpu.Reg.X
		return loadZeroPageAddress(m, zp), false, nil

	case IDY:
		base := loadZeroPageAddress(m, m.LoadByte(pc))
		addr, pageCrossed = offsetAddress(base, cpu.Reg.Y)
		return addr, pageCrossed, nil

	case IND:
		// The NMOS 6502 never carries into the high byte of the pointer, so
		// JMP ($12FF) reads its target from $12FF and $1200.
		ptr := m.LoadAddress(pc)
		lo := m.LoadByte(ptr)
		hi := m.LoadByte((ptr & 0xff00) | ((ptr + 1) & 0x00ff))
		return uint16(lo) | uint16(hi)<<8, false, nil

	case REL:
		next := pc + 1
		offset := m.LoadByte(pc)
		if offset < 0x80 {
			addr = next + uint16(offset)
		} else {
			addr = next - uint16(0x100-uint16(offset))
		}
		return addr, (addr & 0xff00) != (next & 0xff00), nil

	default:
		return 0, false, fmt.Errorf("%w: %v", ErrUnsupportedMode, mode)
	}
}
