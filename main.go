// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/beevik/nes6502/host"
	"github.com/beevik/term"
	"github.com/fatih/color"
)

var (
	interactive bool
	noColor     bool
)

func init() {
	flag.BoolVar(&interactive, "i", false, "enter interactive mode after running scripts")
	flag.BoolVar(&noColor, "no-color", false, "disable colored output")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: nes6502 [script] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if noColor {
		color.NoColor = true
	}

	h := host.New()

	// Run commands contained in command-line files.
	args := flag.Args()
	for _, filename := range args {
		file, err := os.Open(filename)
		if err != nil {
			exitOnError(err)
		}
		err = h.RunCommands(file, os.Stdout, false)
		file.Close()
		switch {
		case errors.Is(err, host.ErrQuit):
			return
		case err != nil:
			exitOnError(err)
		}
	}

	// Scripts alone run non-interactively unless -i was given.
	if len(args) > 0 && !interactive {
		return
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	// Run commands from standard input, prompting only on a terminal.
	tty := term.IsTerminal(int(os.Stdin.Fd()))
	err := h.RunCommands(os.Stdin, os.Stdout, tty)
	if err != nil && !errors.Is(err, host.ErrQuit) {
		exitOnError(err)
	}
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
