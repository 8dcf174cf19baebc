// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Status holds the processor status flags.
type Status byte

// Bits assigned to the processor status byte
const (
	Carry            Status = 1 << 0 // C
	Zero             Status = 1 << 1 // Z
	InterruptDisable Status = 1 << 2 // I
	Decimal          Status = 1 << 3 // D
	Break            Status = 1 << 4 // B
	Break2           Status = 1 << 5 // unused, reads back as 1
	Overflow         Status = 1 << 6 // V
	Negative         Status = 1 << 7 // N
)

// Power-on and reset values.
const (
	stackReset  byte   = 0xfd
	statusReset Status = InterruptDisable | Break2
)

// Set turns on all bits in 'flag'.
func (s *Status) Set(flag Status) {
	*s |= flag
}

// Clear turns off all bits in 'flag'.
func (s *Status) Clear(flag Status) {
	*s &^= flag
}

// SetTo sets or clears 'flag' depending on 'on'.
func (s *Status) SetTo(flag Status, on bool) {
	if on {
		s.Set(flag)
	} else {
		s.Clear(flag)
	}
}

// Test reports whether all bits in 'flag' are set.
func (s Status) Test(flag Status) bool {
	return s&flag == flag
}

// UpdateZN sets Zero iff v is zero and Negative iff bit 7 of v is set.
func (s *Status) UpdateZN(v byte) {
	s.SetTo(Zero, v == 0)
	s.SetTo(Negative, v&0x80 != 0)
}

// String returns the flags as "NV-BDIZC", with a '-' for each clear bit
// and '1' for a set Break2 bit.
func (s Status) String() string {
	const names = "CZIDB1VN"
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		if s&(1<<i) != 0 {
			b[7-i] = names[i]
		} else {
			b[7-i] = '-'
		}
	}
	return string(b)
}

// Registers contains the state of all 6502 registers.
type Registers struct {
	A  byte   // accumulator
	X  byte   // X indexing register
	Y  byte   // Y indexing register
	SP byte   // stack pointer ($100 + SP = stack memory location)
	PC uint16 // program counter
	PS Status // processor status flags
}

// Init initializes all registers. A, X, Y = 0. SP = $FD. PC = 0. PS = 0.
func (r *Registers) Init() {
	r.A = 0
	r.X = 0
	r.Y = 0
	r.SP = stackReset
	r.PC = 0
	r.PS = 0
}

func boolToByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
