// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"errors"
	"testing"
)

func TestInstructionSet(t *testing.T) {
	set, err := NewInstructionSet()
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 151 {
		t.Errorf("instruction count incorrect. exp: 151, got: %d", set.Len())
	}
	if len(set.variants) != 56 {
		t.Errorf("mnemonic count incorrect. exp: 56, got: %d", len(set.variants))
	}

	for op := 0; op < 256; op++ {
		inst, err := set.Lookup(byte(op))
		if err != nil {
			if !errors.Is(err, ErrUnknownOpcode) {
				t.Errorf("$%02X: unexpected error %v", op, err)
			}
			continue
		}
		if inst.Opcode != byte(op) {
			t.Errorf("$%02X: lookup returned $%02X", op, inst.Opcode)
		}
		if inst.fn == nil {
			t.Errorf("%s ($%02X) has no implementation", inst.Name, op)
		}
		if exp := modeLength(inst.Mode); inst.Length != exp {
			t.Errorf("%s ($%02X) length %d, exp %d for %v", inst.Name, op, inst.Length, exp, inst.Mode)
		}
		if inst.Mode == REL && inst.BPCycles != 0 {
			t.Errorf("%s ($%02X) charges page-crossing cycles twice", inst.Name, op)
		}
	}
}

func modeLength(m Mode) byte {
	switch m {
	case IMP, ACC:
		return 1
	case ABS, ABX, ABY, IND:
		return 3
	default:
		return 2
	}
}

func TestLookupUnknown(t *testing.T) {
	set := MustInstructionSet()
	for _, op := range []byte{0x02, 0x03, 0x80, 0xff} {
		if _, err := set.Lookup(op); !errors.Is(err, ErrUnknownOpcode) {
			t.Errorf("$%02X: expected ErrUnknownOpcode, got %v", op, err)
		}
	}
}

func TestGetInstructions(t *testing.T) {
	set := MustInstructionSet()
	tests := []struct {
		name     string
		variants int
	}{
		{"LDA", 8},
		{"lda", 8},
		{"STA", 7},
		{"JMP", 2},
		{"ASL", 5},
		{"BRK", 1},
		{"XYZ", 0},
	}
	for _, tt := range tests {
		if got := len(set.GetInstructions(tt.name)); got != tt.variants {
			t.Errorf("%s: exp %d variants, got %d", tt.name, tt.variants, got)
		}
	}
}

func TestDuplicateOpcode(t *testing.T) {
	rows := []opcodeData{
		{"LDA", IMM, 0xa9, 2, 2, 0},
		{"LDX", IMM, 0xa9, 2, 2, 0},
	}
	_, err := newInstructionSet(rows)
	if !errors.Is(err, ErrDuplicateOpcode) {
		t.Fatalf("expected ErrDuplicateOpcode, got %v", err)
	}
}

func TestNotImplemented(t *testing.T) {
	set, err := newInstructionSet([]opcodeData{{"XXX", IMP, 0x02, 1, 2, 0}})
	if err != nil {
		t.Fatal(err)
	}

	c := NewCPU(set, NewFlatMemory())
	c.Mem.StoreByte(0x0400, 0x02)
	c.SetPC(0x0400)

	err = c.Step()
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if !c.Halted() {
		t.Error("CPU not halted")
	}
}

func TestModeString(t *testing.T) {
	if IDY.String() != "IndirectY" {
		t.Errorf("IDY printed as %q", IDY.String())
	}
	if Mode(99).String() != "Mode(99)" {
		t.Errorf("unknown mode printed as %q", Mode(99).String())
	}
}
