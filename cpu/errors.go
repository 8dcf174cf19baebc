// Copyright 2014-2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrNotImplemented  = errors.New("instruction not implemented")
	ErrUnsupportedMode = errors.New("unsupported addressing mode")
	ErrProgramTooLarge = errors.New("program too large for address space")
	ErrDuplicateOpcode = errors.New("duplicate opcode in instruction set")
	ErrHalted          = errors.New("cpu is halted")
)

// An OpcodeError describes a failure to execute the opcode fetched at PC.
type OpcodeError struct {
	Opcode byte   // opcode byte that failed
	PC     uint16 // address the opcode was fetched from
	Err    error  // one of ErrUnknownOpcode, ErrNotImplemented
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("%v: $%02X at $%04X", e.Err, e.Opcode, e.PC)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}
