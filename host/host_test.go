// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/nes6502/cpu"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func runScript(t *testing.T, h *Host, script string) string {
	t.Helper()
	var out strings.Builder
	if err := h.RunCommands(strings.NewReader(script), &out, false); err != nil {
		t.Fatalf("script failed: %v\n%s", err, out.String())
	}
	return out.String()
}

func expectOutput(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestLoadAndRun(t *testing.T) {
	h := New()
	out := runScript(t, h, `
load bytes $A9 $C0 $AA $E8 $00
run
register
`)
	expectOutput(t, out,
		"Loaded program to $8000..$8004",
		"BRK at $8004 halted the CPU.",
		"A=C0 X=C1 Y=00 PS=[N-1--I--]")

	if h.CPU().Cycles != 13 {
		t.Errorf("cycles incorrect. exp: 13, got: %d", h.CPU().Cycles)
	}
}

func TestHexMode(t *testing.T) {
	h := New()
	out := runScript(t, h, `
set hexmode true
load bytes A9 05 00
run
`)
	expectOutput(t, out, "Setting HexMode updated.", "A=05")
}

func TestLoadFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "prog.bin")
	if err := os.WriteFile(filename, []byte{0xa2, 0x10, 0xca, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	h := New()
	out := runScript(t, h, "load file "+filename+"\nrun\n")
	expectOutput(t, out, "Loaded 'prog.bin' to $8000..$8003")
	if h.CPU().Reg.X != 0x0f {
		t.Errorf("X register incorrect. exp: $0F, got: $%02X", h.CPU().Reg.X)
	}
}

func TestLoadMissingFile(t *testing.T) {
	h := New()
	out := runScript(t, h, "load file "+filepath.Join(t.TempDir(), "missing.bin")+"\n")
	expectOutput(t, out, "Failed to read 'missing.bin'")
}

func TestBreakpoint(t *testing.T) {
	h := New()
	out := runScript(t, h, `
load bytes $A9 $01 $AA $E8 $00
breakpoint add $8002
run
`)
	expectOutput(t, out, "Breakpoint added at $8002.", "Breakpoint hit at $8002.")
	if h.CPU().Reg.PC != 0x8002 || h.CPU().Reg.X != 0 {
		t.Errorf("stopped at $%04X with X=$%02X", h.CPU().Reg.PC, h.CPU().Reg.X)
	}

	out = runScript(t, h, "run\nbreakpoint list\n")
	expectOutput(t, out, "BRK at $8004 halted the CPU.", "$8002 true     1")
	if h.CPU().Reg.X != 0x02 {
		t.Errorf("X register incorrect. exp: $02, got: $%02X", h.CPU().Reg.X)
	}
}

func TestBreakpointDisable(t *testing.T) {
	h := New()
	out := runScript(t, h, `
load bytes $E8 $E8 $00
breakpoint add $8001
breakpoint disable $8001
run
breakpoint remove $8001
breakpoint remove $8001
`)
	expectOutput(t, out,
		"Breakpoint at $8001 disabled.",
		"BRK at $8002 halted the CPU.",
		"Breakpoint at $8001 removed.",
		"No breakpoint was set on $8001.")
}

func TestDataBreakpoint(t *testing.T) {
	h := New()
	out := runScript(t, h, `
load bytes $A9 $07 $8D $00 $02 $E8 $00
databreakpoint add $0200 $07
run
databreakpoint list
`)
	expectOutput(t, out,
		"Conditional data breakpoint added at $0200 for value $07.",
		"Data breakpoint hit on address $0200.",
		"$0200 true     $07")

	c := h.CPU()
	if c.Reg.X != 0 || c.Mem.LoadByte(0x0200) != 0x07 {
		t.Errorf("data breakpoint stopped with X=$%02X, mem=$%02X", c.Reg.X, c.Mem.LoadByte(0x0200))
	}
}

func TestMemory(t *testing.T) {
	h := New()
	out := runScript(t, h, `
memory set $0200 $41 $42
memory dump $0200 2
`)
	expectOutput(t, out, "0200- 41 42")
	if h.CPU().Mem.LoadByte(0x0201) != 0x42 {
		t.Error("memory set did not store bytes")
	}
	if h.settings.NextMemDumpAddr != 0x0202 {
		t.Errorf("next dump address $%04X", h.settings.NextMemDumpAddr)
	}
}

func TestRegister(t *testing.T) {
	h := New()
	out := runScript(t, h, `
register x $10
register c 1
register pc $1234
register ps $24
register a $100
register q 1
`)
	expectOutput(t, out,
		"Register X set to $10.",
		"Flag C set to true.",
		"Register PC set to $1234.",
		"Register PS set to [--1--I--].",
		"does not fit in register A",
		"Unknown register 'q'.")

	r := h.CPU().Reg
	if r.X != 0x10 || r.PS != 0x24 || r.PC != 0x1234 {
		t.Errorf("registers not updated: %+v", r)
	}
}

func TestStep(t *testing.T) {
	h := New()
	runScript(t, h, "load bytes $E8 $E8 $E8 $00\nstep 2\n")
	if h.CPU().Reg.X != 0x02 {
		t.Errorf("X register incorrect. exp: $02, got: $%02X", h.CPU().Reg.X)
	}
}

func TestUnknownOpcode(t *testing.T) {
	h := New()
	out := runScript(t, h, "load bytes $A9 $01 $02\nrun\nrun\n")
	expectOutput(t, out,
		"CPU stopped: "+cpu.ErrUnknownOpcode.Error()+": $02 at $8002",
		"CPU is halted.")
}

func TestLoadTooLarge(t *testing.T) {
	h := New()
	var out strings.Builder
	h.output = bufio.NewWriter(&out)
	h.load(make([]byte, 0x8001), "program")
	expectOutput(t, out.String(), cpu.ErrProgramTooLarge.Error())
}

func TestTrace(t *testing.T) {
	h := New()
	out := runScript(t, h, `
set trace on
load bytes $A9 $01 $00
run
`)
	expectOutput(t, out, "8000  A9 01     LDA  A:01")
}

func TestQuit(t *testing.T) {
	h := New()
	var out strings.Builder
	err := h.RunCommands(strings.NewReader("quit\nregister\n"), &out, false)
	if !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
	if strings.Contains(out.String(), "PC=") {
		t.Error("commands ran after quit")
	}
}

func TestHelp(t *testing.T) {
	h := New()
	out := runScript(t, h, "help run\n")
	expectOutput(t, out, "Usage: run [<address>]", "Description:")
	if strings.Contains(out, "commands:") {
		t.Errorf("command help listed a subtree:\n%s", out)
	}

	out = runScript(t, h, "help breakpoint add\n")
	expectOutput(t, out, "Usage: breakpoint add <address>", "Shortcut: ba")

	out = runScript(t, h, "help breakpoint\n")
	expectOutput(t, out, "breakpoint commands:", "Add a breakpoint", "Disable a breakpoint")
	if strings.Contains(out, "Usage:") {
		t.Errorf("subtree help showed command usage:\n%s", out)
	}

	out = runScript(t, h, "help\nhelp bogus\n")
	expectOutput(t, out, "nes6502 commands:", "Run the CPU", "No help for 'bogus'.")
}

func TestSubtreeName(t *testing.T) {
	h := New()
	out := runScript(t, h, "databreakpoint\nbreakpoint add\n")
	expectOutput(t, out,
		"databreakpoint commands:",
		"List data breakpoints",
		"Usage: breakpoint add <address>")
}

func TestRepeatLastCommand(t *testing.T) {
	script := `
set memdumpbytes 4
memory set $0200 $41 $42 $43 $44 $45 $46 $47 $48
memory dump $0200

`

	// Scripts never repeat commands on empty lines.
	h := New()
	out := runScript(t, h, script)
	expectOutput(t, out, "0200- 41 42 43 44")
	if strings.Contains(out, "0204-") {
		t.Errorf("empty line repeated a command:\n%s", out)
	}
	if h.settings.NextMemDumpAddr != 0x0204 {
		t.Errorf("next dump address incorrect. exp: $0204, got: $%04X", h.settings.NextMemDumpAddr)
	}

	// Interactively, the repeated dump continues where the last one ended.
	h = New()
	var b strings.Builder
	if err := h.RunCommands(strings.NewReader(script), &b, true); err != nil {
		t.Fatal(err)
	}
	expectOutput(t, b.String(), "0204- 45 46 47 48")
	if h.settings.NextMemDumpAddr != 0x0208 {
		t.Errorf("next dump address incorrect. exp: $0208, got: $%04X", h.settings.NextMemDumpAddr)
	}

	h = New()
	b.Reset()
	if err := h.RunCommands(strings.NewReader("load bytes $E8 $E8 $E8 $00\nstep\n\n"), &b, true); err != nil {
		t.Fatal(err)
	}
	if h.CPU().Reg.X != 0x02 {
		t.Errorf("X register incorrect. exp: $02, got: $%02X", h.CPU().Reg.X)
	}
}

func TestSettings(t *testing.T) {
	s := newSettings()
	if err := s.Set("mem", uint16(16)); err != nil {
		t.Fatal(err)
	}
	if s.MemDumpBytes != 16 {
		t.Errorf("MemDumpBytes = %d", s.MemDumpBytes)
	}

	if _, _, err := s.Lookup("m"); err == nil {
		t.Error("ambiguous prefix accepted")
	}
	if _, _, err := s.Lookup("bogus"); err == nil {
		t.Error("unknown setting accepted")
	}
	if err := s.Set("hexmode", uint16(1)); err == nil {
		t.Error("number assigned to a bool setting")
	}

	name, _, err := s.Lookup("tr")
	if err != nil || name != "Trace" {
		t.Errorf("Lookup(tr) = %q, %v", name, err)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		s       string
		hexMode bool
		v       uint16
		fail    bool
	}{
		{s: "$ff", v: 0xff},
		{s: "0x10", v: 0x10},
		{s: "%101", v: 5},
		{s: "42", v: 42},
		{s: "42", hexMode: true, v: 0x42},
		{s: "$FFFF", v: 0xffff},
		{s: "$10000", fail: true},
		{s: "zz", fail: true},
		{s: "", fail: true},
	}
	for _, tt := range tests {
		v, err := parseNumber(tt.s, tt.hexMode)
		switch {
		case tt.fail && err == nil:
			t.Errorf("parseNumber(%q) succeeded with $%04X", tt.s, v)
		case !tt.fail && err != nil:
			t.Errorf("parseNumber(%q): %v", tt.s, err)
		case !tt.fail && v != tt.v:
			t.Errorf("parseNumber(%q) = $%04X, exp $%04X", tt.s, v, tt.v)
		}
	}
}

func TestDecode(t *testing.T) {
	c := cpu.NewCPU(instructions, cpu.NewFlatMemory())
	c.Mem.StoreBytes(0x8000, []byte{
		0xb1, 0x20, // LDA ($20),Y
		0xd0, 0xfc, // BNE $8000
		0x0a,             // ASL A
		0x6c, 0x00, 0x30, // JMP ($3000)
		0x02,
	})

	tests := []struct {
		addr uint16
		line string
		code string
	}{
		{0x8000, "LDA ($20),Y", "B1 20"},
		{0x8002, "BNE $8000", "D0 FC"},
		{0x8004, "ASL A", "0A"},
		{0x8005, "JMP ($3000)", "6C 00 30"},
		{0x8008, "???", "02"},
	}
	for _, tt := range tests {
		line, code := decode(c, tt.addr)
		if line != tt.line || codeString(code) != tt.code {
			t.Errorf("$%04X: got %q [%s], exp %q [%s]", tt.addr, line, codeString(code), tt.line, tt.code)
		}
	}
}
