// Package main provides a profiling wrapper for MIPSim to identify
// performance bottlenecks.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/config"
	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/loader"
)

var (
	configPath  = flag.String("config", "", "Path to run configuration JSON file")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
	fetchCache  = flag.Bool("fetch-cache", false, "Enable the instruction-fetch cache")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.MaxInstructions = *instruction
	cfg.TickSource = config.TickInstructions
	if *fetchCache {
		cfg.FetchCache.Enabled = true
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath, cfg.EntryPoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	logger.SetOutput(os.Stderr)

	// The guest gets no input; its output is discarded so that console
	// writes do not dominate the profile.
	console := emu.NewStreamConsole(strings.NewReader(""), io.Discard)
	e, fc, err := cfg.NewEmulator(console, logrus.NewEntry(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := prog.LoadInto(e); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	result := e.Run(ctx)
	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	instrCount := e.InstructionCount()

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Halt code: %d\n", result.Code)
	if result.Err != nil {
		fmt.Printf("Stopped by: %v\n", result.Err)
	}
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
	if fc != nil {
		stats := fc.Stats()
		fmt.Printf("Fetch cache: %d hits, %d misses (%.1f%% hit rate)\n",
			stats.Hits, stats.Misses, 100*stats.HitRate())
	}
}
