// Command benchmark runs the MIPSim microbenchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results as a JSON report
//	-core       Run only the core benchmarks
//	-n          Run each program this many times
//	-no-cache   Disable the instruction-fetch cache
//	-config     Machine configuration JSON file
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv -n 100 > results.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/benchmarks"
	"github.com/sarchlab/mipsim/config"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	iterations := flag.Int("n", 1, "Run each program this many times")
	noCache := flag.Bool("no-cache", false, "Disable the instruction-fetch cache")
	configPath := flag.String("config", "", "Machine configuration JSON file")
	verbose := flag.Bool("v", false, "Log each finished benchmark")
	flag.Parse()

	logrus.SetOutput(os.Stderr)

	harnessConfig := benchmarks.DefaultConfig()
	harnessConfig.Iterations = *iterations
	harnessConfig.Verbose = *verbose
	harnessConfig.Output = os.Stdout

	if *configPath != "" {
		machine, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		harnessConfig.Machine = machine
	}
	if *noCache {
		harnessConfig.Machine.FetchCache.Enabled = false
	}

	harness := benchmarks.NewHarness(harnessConfig)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !*csvOutput && !*jsonOutput {
		fmt.Println("MIPSim Benchmark Harness")
		fmt.Println("========================")
		fmt.Printf("Fetch cache: %v\n", harnessConfig.Machine.FetchCache.Enabled)
		fmt.Printf("Iterations:  %d\n", *iterations)
		fmt.Println("")
	}

	results := harness.RunAll(ctx)

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Passed:       %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Printf("Instructions: %d\n", summary.TotalInstructions)
		fmt.Printf("MIPS:         %.2f\n", summary.MIPS)
	}

	if benchmarks.Summarize(results).Passed != len(results) {
		os.Exit(1)
	}
}
