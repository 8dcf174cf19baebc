// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host wraps the NES 6502 core in a small command-driven monitor.
//
// Within the host it is possible to load program images into memory, reset
// and run the CPU, step through machine code, count the CPU cycles elapsed,
// set address and data breakpoints, dump and change the contents of memory,
// and view or manipulate CPU registers.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/beevik/cmd"
	"github.com/beevik/nes6502/cpu"
	"github.com/fatih/color"
)

// ErrQuit is returned by a command handler to end the command loop.
var ErrQuit = errors.New("exiting program")

var (
	errorColor = color.New(color.FgRed)
	haltColor  = color.New(color.FgYellow)
	breakColor = color.New(color.FgCyan)
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
	stateHalted
)

// A Host represents an emulated NES CPU with 64K of flat memory and a
// built-in debugger.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	lastCmd     *selection
	state       state
	interrupted atomic.Bool
	settings    *settings
}

// A selection is a command looked up from an input line along with its
// arguments. An empty interactive line repeats the last selection.
type selection struct {
	cmd  *cmd.Command
	args []string
}

// New creates a new host environment. Every host shares the same
// instruction set.
func New() *Host {
	h := &Host{
		state:    stateProcessingCommands,
		settings: newSettings(),
	}

	h.cpu = cpu.NewCPU(instructions, cpu.NewFlatMemory())

	// Create a CPU debugger and attach it to the CPU.
	h.debugger = cpu.NewDebugger(newDebugHandler(h))
	h.cpu.AttachDebugger(h.debugger)

	return h
}

var instructions = cpu.MustInstructionSet()

// CPU returns the emulated CPU.
func (h *Host) CPU() *cpu.CPU {
	return h.cpu
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered. It returns ErrQuit if
// the quit command ended the session.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) error {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	if interactive {
		h.println()
		h.displayPC()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		var c selection
		if line != "" {
			n, args, err := cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.printError("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.printError("Command is ambiguous.")
				continue
			case err != nil:
				h.printError(fmt.Sprintf("ERROR: %v.", err))
				continue
			}

			switch n := n.(type) {
			case *cmd.Tree:
				// A bare subtree name lists the subtree's commands.
				n.DisplayHelp(h.output)
				h.flush()
				continue
			case *cmd.Command:
				c = selection{cmd: n, args: args}
			}
		} else if h.lastCmd != nil && interactive {
			c = *h.lastCmd
		}

		if c.cmd == nil {
			continue
		}
		h.lastCmd = &c

		handler, ok := c.cmd.Data.(func(*Host, *cmd.Command, []string) error)
		if !ok {
			h.displayHelp(c.cmd)
			continue
		}
		if err := handler(h, c.cmd, c.args); err != nil {
			return err
		}
	}
}

// Break interrupts a running CPU. It is safe to call from another
// goroutine, such as a signal handler.
func (h *Host) Break() {
	h.interrupted.Store(true)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) printError(msg string) {
	h.println(errorColor.Sprint(msg))
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) displayPC() {
	h.println(h.disassemble(h.cpu.Reg.PC))
}

func (h *Host) disassemble(addr uint16) string {
	line, code := decode(h.cpu, addr)
	return fmt.Sprintf("%04X-   %-8s    %-14s %s", addr, codeString(code), line, h.registerString())
}

func (h *Host) registerString() string {
	r := &h.cpu.Reg
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=[%s] SP=%02X PC=%04X C=%d",
		r.A, r.X, r.Y, r.PS, r.SP, r.PC, h.cpu.Cycles)
}

func (h *Host) parseAddr(s string) (uint16, error) {
	switch s {
	case ".", "pc":
		return h.cpu.Reg.PC, nil
	}
	return parseNumber(s, h.settings.HexMode)
}

func (h *Host) cmdHelp(c *cmd.Command, args []string) error {
	switch err := cmds.GetHelp(h.output, args); err {
	case nil:
		h.flush()
	case cmd.ErrAmbiguous:
		h.printError(fmt.Sprintf("Help topic '%s' is ambiguous.", strings.Join(args, " ")))
	default:
		h.printError(fmt.Sprintf("No help for '%s'.", strings.Join(args, " ")))
	}
	return nil
}

func (h *Host) displayHelp(c *cmd.Command) {
	c.DisplayHelp(h.output)
	h.flush()
}

func (h *Host) displayUsage(c *cmd.Command) {
	c.DisplayUsage(h.output)
	h.flush()
}

func (h *Host) cmdBreakpointList(c *cmd.Command, args []string) error {
	h.println("Addr  Enabled  Hits")
	h.println("----- -------  ----")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %-5v    %d\n", b.Address, !b.Disabled, b.Hits)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(args[0])
	if err != nil {
		h.printError(err.Error())
		return nil
	}

	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c *cmd.Command, args []string) error {
	return h.withBreakpoint(c, args, func(b *cpu.Breakpoint) {
		h.debugger.RemoveBreakpoint(b.Address)
		h.printf("Breakpoint at $%04X removed.\n", b.Address)
	})
}

func (h *Host) cmdBreakpointEnable(c *cmd.Command, args []string) error {
	return h.withBreakpoint(c, args, func(b *cpu.Breakpoint) {
		b.Disabled = false
		h.printf("Breakpoint at $%04X enabled.\n", b.Address)
	})
}

func (h *Host) cmdBreakpointDisable(c *cmd.Command, args []string) error {
	return h.withBreakpoint(c, args, func(b *cpu.Breakpoint) {
		b.Disabled = true
		h.printf("Breakpoint at $%04X disabled.\n", b.Address)
	})
}

func (h *Host) withBreakpoint(c *cmd.Command, args []string, fn func(b *cpu.Breakpoint)) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(args[0])
	if err != nil {
		h.printError(err.Error())
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printError(fmt.Sprintf("No breakpoint was set on $%04X.", addr))
		return nil
	}

	fn(b)
	return nil
}

func (h *Host) cmdDataBreakpointList(c *cmd.Command, args []string) error {
	h.println("Addr  Enabled  Value  Hits")
	h.println("----- -------  -----  ----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%04X %-5v    $%02X    %d\n", b.Address, !b.Disabled, b.Value, b.Hits)
		} else {
			h.printf("$%04X %-5v    <none> %d\n", b.Address, !b.Disabled, b.Hits)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(args[0])
	if err != nil {
		h.printError(err.Error())
		return nil
	}

	if len(args) > 1 {
		value, err := parseByte(args[1], h.settings.HexMode)
		if err != nil {
			h.printError(err.Error())
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, value)
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, value)
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04X.\n", addr)
	}

	return nil
}

func (h *Host) cmdDataBreakpointRemove(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(args[0])
	if err != nil {
		h.printError(err.Error())
		return nil
	}

	if h.debugger.GetDataBreakpoint(addr) == nil {
		h.printError(fmt.Sprintf("No data breakpoint was set on $%04X.", addr))
		return nil
	}

	h.debugger.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdLoadBytes(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	program := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := parseByte(a, h.settings.HexMode)
		if err != nil {
			h.printError(err.Error())
			return nil
		}
		program = append(program, v)
	}

	h.load(program, "program")
	return nil
}

func (h *Host) cmdLoadFile(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := args[0]
	program, err := os.ReadFile(filename)
	if err != nil {
		h.printError(fmt.Sprintf("Failed to read '%s': %v", filepath.Base(filename), err))
		return nil
	}

	h.load(program, "'"+filepath.Base(filename)+"'")
	return nil
}

func (h *Host) load(program []byte, what string) {
	if len(program) == 0 {
		h.printError(fmt.Sprintf("Nothing to load from %s.", what))
		return
	}
	if err := h.cpu.Load(program); err != nil {
		h.printError(fmt.Sprintf("Failed to load %s: %v", what, err))
		return
	}
	h.cpu.Reset()
	h.printf("Loaded %s to $%04X..$%04X\n", what, cpu.ProgramBase, cpu.ProgramBase+len(program)-1)
}

func (h *Host) cmdMemoryDump(c *cmd.Command, args []string) error {
	addr := h.settings.NextMemDumpAddr
	if len(args) > 0 {
		a, err := h.parseAddr(args[0])
		if err != nil {
			h.printError(err.Error())
			return nil
		}
		addr = a
	}

	bytes := uint16(h.settings.MemDumpBytes)
	if len(args) > 1 {
		var err error
		bytes, err = parseNumber(args[1], h.settings.HexMode)
		if err != nil {
			h.printError(err.Error())
			return nil
		}
	}
	if bytes == 0 {
		return nil
	}

	h.dumpMemory(addr, bytes)
	h.settings.NextMemDumpAddr = addr + bytes

	// Repeating the command continues where this dump left off.
	if h.lastCmd != nil {
		h.lastCmd.args = nil
	}
	return nil
}

func (h *Host) cmdMemorySet(c *cmd.Command, args []string) error {
	if len(args) < 2 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(args[0])
	if err != nil {
		h.printError(err.Error())
		return nil
	}

	for i, a := range args[1:] {
		v, err := parseByte(a, h.settings.HexMode)
		if err != nil {
			h.printError(err.Error())
			return nil
		}
		h.cpu.Mem.StoreByte(addr+uint16(i), v)
	}

	h.dumpMemory(addr, uint16(len(args)-1))
	return nil
}

func (h *Host) cmdQuit(c *cmd.Command, args []string) error {
	return ErrQuit
}

func (h *Host) cmdRegister(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		h.println(h.registerString())
		return nil
	}
	if len(args) < 2 {
		h.displayUsage(c)
		return nil
	}

	key := strings.ToLower(args[0])
	v, err := parseNumber(args[1], h.settings.HexMode)
	if err != nil {
		h.printError(err.Error())
		return nil
	}

	r := &h.cpu.Reg
	switch key {
	case "a", "x", "y", "sp":
		if v > 0xff {
			h.printError(fmt.Sprintf("Value $%04X does not fit in register %s.", v, strings.ToUpper(key)))
			return nil
		}
		switch key {
		case "a":
			r.A = byte(v)
		case "x":
			r.X = byte(v)
		case "y":
			r.Y = byte(v)
		case "sp":
			r.SP = byte(v)
		}
		h.printf("Register %s set to $%02X.\n", strings.ToUpper(key), v)

	case "pc", ".":
		h.cpu.SetPC(v)
		h.printf("Register PC set to $%04X.\n", v)

	case "ps":
		r.PS = cpu.Status(v)
		h.printf("Register PS set to [%s].\n", r.PS)

	default:
		flag, ok := flagNames[key]
		if !ok {
			h.printError(fmt.Sprintf("Unknown register '%s'.", args[0]))
			return nil
		}
		r.PS.SetTo(flag, v != 0)
		h.printf("Flag %s set to %v.\n", strings.ToUpper(key), v != 0)
	}
	return nil
}

var flagNames = map[string]cpu.Status{
	"c": cpu.Carry,
	"z": cpu.Zero,
	"i": cpu.InterruptDisable,
	"d": cpu.Decimal,
	"v": cpu.Overflow,
	"n": cpu.Negative,
}

func (h *Host) cmdReset(c *cmd.Command, args []string) error {
	h.cpu.Reset()
	h.displayPC()
	return nil
}

func (h *Host) cmdRun(c *cmd.Command, args []string) error {
	if len(args) > 0 {
		pc, err := h.parseAddr(args[0])
		if err != nil {
			h.printError(err.Error())
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%04X. Press ctrl-C to break.\n", h.cpu.Reg.PC)

	h.interrupted.Store(false)
	h.state = stateRunning
	for h.state == stateRunning {
		h.step()
	}
	h.state = stateProcessingCommands

	h.settings.NextMemDumpAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdStep(c *cmd.Command, args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := parseNumber(args[0], h.settings.HexMode)
		if err != nil {
			h.printError(err.Error())
			return nil
		}
		count = int(n)
	}

	h.interrupted.Store(false)
	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		h.step()
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands
	return nil
}

// Execute a single instruction, updating the host state if the CPU halts,
// fails or is interrupted.
func (h *Host) step() {
	if h.interrupted.Swap(false) {
		h.state = stateBreakpoint
		h.println(breakColor.Sprint("Interrupted."))
		h.displayPC()
		return
	}

	var err error
	if h.settings.Trace {
		h.cpu.SetTrace(h.output)
		err = h.cpu.Step()
		h.cpu.SetTrace(nil)
		h.flush()
	} else {
		err = h.cpu.Step()
	}

	switch {
	case errors.Is(err, cpu.ErrHalted):
		h.state = stateHalted
		h.println(haltColor.Sprint("CPU is halted. Use reset or register pc to restart."))
	case err != nil:
		h.state = stateHalted
		h.printError(fmt.Sprintf("CPU stopped: %v", err))
		h.displayPC()
	case h.cpu.Halted():
		h.state = stateHalted
		h.println(haltColor.Sprintf("BRK at $%04X halted the CPU.", h.cpu.LastPC))
		h.println(h.registerString())
	}
}

func (h *Host) cmdSet(c *cmd.Command, args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c)

	default:
		name, kind, err := h.settings.Lookup(args[0])
		if err != nil {
			h.printError(err.Error())
			return nil
		}

		value := strings.Join(args[1:], " ")
		switch kind {
		case reflect.Bool:
			var v bool
			if v, err = stringToBool(value); err == nil {
				err = h.settings.Set(name, v)
			}
		default:
			var v uint16
			if v, err = parseNumber(value, h.settings.HexMode); err == nil {
				err = h.settings.Set(name, v)
			}
		}

		if err != nil {
			h.printError(err.Error())
			return nil
		}
		h.printf("Setting %s updated.\n", name)
	}

	return nil
}

func (h *Host) dumpMemory(addr0, bytes uint16) {
	addr1 := addr0 + bytes - 1
	if addr1 < addr0 {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := uint32(addr0), 6, 32; a <= uint32(addr1); a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.cpu.Mem.LoadByte(uint16(a))
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(string(buf))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := (uint32(addr1) + 8) & 0xffff8
	if stop > 0x10000 {
		stop = 0x10000
	}

	a := uint16(start)
	for r := start; r < stop; r += 8 {
		addrToBuf(a, buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= addr0 && a <= addr1 {
				m := h.cpu.Mem.LoadByte(a)
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(string(buf))
	}
}

func (h *Host) onBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	if h.state != stateRunning {
		return
	}
	h.state = stateBreakpoint
	h.println(breakColor.Sprintf("Breakpoint hit at $%04X.", b.Address))
	h.displayPC()
}

func (h *Host) onDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	h.println(breakColor.Sprintf("Data breakpoint hit on address $%04X.", b.Address))

	h.state = stateBreakpoint

	if c.LastPC != c.Reg.PC {
		h.println(h.disassemble(c.LastPC))
	}
}
