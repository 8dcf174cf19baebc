// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"errors"
	"testing"
)

func newTestCPU() *CPU {
	return NewCPU(MustInstructionSet(), NewFlatMemory())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		operand []byte
		x, y    byte
		mem     map[uint16]byte
		addr    uint16
		crossed bool
	}{
		{name: "immediate", mode: IMM, operand: []byte{0x42}, addr: 0x0200},
		{name: "zero page", mode: ZPG, operand: []byte{0x42}, addr: 0x0042},
		{name: "zero page x", mode: ZPX, operand: []byte{0x80}, x: 0x0f, addr: 0x008f},
		{name: "zero page x wraps", mode: ZPX, operand: []byte{0xf0}, x: 0x20, addr: 0x0010},
		{name: "zero page y wraps", mode: ZPY, operand: []byte{0xff}, y: 0x01, addr: 0x0000},
		{name: "absolute", mode: ABS, operand: []byte{0x34, 0x12}, addr: 0x1234},
		{name: "absolute x", mode: ABX, operand: []byte{0x00, 0x12}, x: 0x10, addr: 0x1210},
		{name: "absolute x crosses", mode: ABX, operand: []byte{0xf0, 0x12}, x: 0x20, addr: 0x1310, crossed: true},
		{name: "absolute y wraps", mode: ABY, operand: []byte{0xff, 0xff}, y: 0x01, addr: 0x0000, crossed: true},
		{
			name: "indirect x", mode: IDX, operand: []byte{0x80}, x: 0x90,
			mem:  map[uint16]byte{0x10: 0x78, 0x11: 0x56},
			addr: 0x5678,
		},
		{
			name: "indirect x pointer wraps", mode: IDX, operand: []byte{0xfe}, x: 0x01,
			mem:  map[uint16]byte{0xff: 0x34, 0x00: 0x12},
			addr: 0x1234,
		},
		{
			name: "indirect y", mode: IDY, operand: []byte{0x10}, y: 0x05,
			mem:  map[uint16]byte{0x10: 0x00, 0x11: 0x30},
			addr: 0x3005,
		},
		{
			name: "indirect y pointer wraps", mode: IDY, operand: []byte{0xff}, y: 0x20,
			mem:  map[uint16]byte{0xff: 0xf0, 0x00: 0x12},
			addr: 0x1310, crossed: true,
		},
		{
			name: "indirect y address wraps", mode: IDY, operand: []byte{0x40}, y: 0x20,
			mem:  map[uint16]byte{0x40: 0xf0, 0x41: 0xff},
			addr: 0x0010, crossed: true,
		},
		{
			name: "indirect", mode: IND, operand: []byte{0x00, 0x30},
			mem:  map[uint16]byte{0x3000: 0xcd, 0x3001: 0xab},
			addr: 0xabcd,
		},
		{
			name: "indirect page bug", mode: IND, operand: []byte{0xff, 0x30},
			mem:  map[uint16]byte{0x30ff: 0xcd, 0x3000: 0xab, 0x3100: 0xee},
			addr: 0xabcd,
		},
		{name: "relative forward", mode: REL, operand: []byte{0x10}, addr: 0x0211},
		{name: "relative backward", mode: REL, operand: []byte{0xfd}, addr: 0x01fe, crossed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCPU()
			c.Reg.PC = 0x0200
			c.Reg.X, c.Reg.Y = tt.x, tt.y
			c.Mem.StoreBytes(0x0200, tt.operand)
			for a, v := range tt.mem {
				c.Mem.StoreByte(a, v)
			}

			addr, crossed, err := c.resolve(tt.mode)
			if err != nil {
				t.Fatal(err)
			}
			if addr != tt.addr {
				t.Errorf("address incorrect. exp: $%04X, got: $%04X", tt.addr, addr)
			}
			if crossed != tt.crossed {
				t.Errorf("page crossing incorrect. exp: %v, got: %v", tt.crossed, crossed)
			}
			if c.Reg.PC != 0x0200 {
				t.Errorf("resolve moved PC to $%04X", c.Reg.PC)
			}
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	c := newTestCPU()
	for _, mode := range []Mode{IMP, ACC, Mode(0x40)} {
		if _, _, err := c.resolve(mode); !errors.Is(err, ErrUnsupportedMode) {
			t.Errorf("%v: expected ErrUnsupportedMode, got %v", mode, err)
		}
	}
}
