// Package main provides the entry point for MIPSim, a functional MIPS32
// emulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
)

type options struct {
	configPath string
	saveConfig string
	verbose    bool
	trace      bool
	raw        bool
	dump       bool
	maxInstr   uint64
	program    string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("mipsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to run configuration JSON file")
	fs.StringVar(&opts.saveConfig, "save-config", "", "Write the effective configuration to this path")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.BoolVar(&opts.trace, "trace", false, "Log every executed instruction")
	fs.BoolVar(&opts.raw, "raw", false, "Put the terminal in raw mode while running")
	fs.BoolVar(&opts.dump, "dump", false, "Dump registers and memory when the program stops")
	fs.Uint64Var(&opts.maxInstr, "max-instr", 0, "Max instructions to execute (0 = use config)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mipsim [options] <program>\n")
		fmt.Fprintf(stderr, "\nThe program is a raw big-endian image or a MIPS ELF executable.\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() < 1 && opts.saveConfig == "" {
		fs.Usage()
		return nil, fmt.Errorf("missing program")
	}
	opts.program = fs.Arg(0)

	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		stdin  io.Reader = os.Stdin
		stdout io.Writer = os.Stdout
	)

	if opts.raw {
		ctx, stdin, stdout, err = enterRaw(ctx, os.Stdin, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	code := run(ctx, opts, stdin, stdout, os.Stderr)

	restoreTerminal()
	stop()
	os.Exit(code)
}
