package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/config"
	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/loader"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.maxInstr > 0 {
		cfg.MaxInstructions = opts.maxInstr
	}
	if opts.verbose && cfg.LogLevel == config.Default().LogLevel {
		cfg.LogLevel = logrus.InfoLevel.String()
	}
	if opts.trace {
		cfg.LogLevel = logrus.DebugLevel.String()
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config, w io.Writer) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	level, err := cfg.Level()
	if err == nil {
		logger.SetLevel(level)
	}

	return logrus.NewEntry(logger)
}

// run executes one program and returns the process exit code.
func run(ctx context.Context, opts *options, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitError
	}

	if opts.saveConfig != "" {
		if err := cfg.Save(opts.saveConfig); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		if opts.program == "" {
			return exitOK
		}
	}

	logger := newLogger(cfg, stderr)

	prog, err := loader.Load(opts.program, cfg.EntryPoint)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitError
	}

	logger.WithFields(logrus.Fields{
		"program":  opts.program,
		"entry":    fmt.Sprintf("0x%08x", prog.EntryPoint),
		"segments": len(prog.Segments),
	}).Info("loaded")

	console := emu.NewStreamConsole(stdin, stdout)
	e, fc, err := cfg.NewEmulator(console, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if err := prog.LoadInto(e); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitError
	}

	result := e.Run(ctx)

	fields := logrus.Fields{
		"instructions": e.InstructionCount(),
		"code":         result.Code,
	}
	if fc != nil {
		stats := fc.Stats()
		fields["fetch_hits"] = stats.Hits
		fields["fetch_misses"] = stats.Misses
	}
	logger.WithFields(fields).Info("stopped")

	code := exitOK
	switch {
	case errors.Is(result.Err, context.Canceled):
		fmt.Fprintf(stderr, "\nInterrupted at pc 0x%08x\n", e.RegFile().PC)
		code = exitInterrupted
	case result.Err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", result.Err)
		code = exitError
	}

	if opts.dump || code != exitOK {
		if err := e.Dump(stderr, cfg.DumpBase, cfg.DumpLength); err != nil {
			fmt.Fprintf(stderr, "Error writing dump: %v\n", err)
		}
	}

	return code
}
