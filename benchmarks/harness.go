// Package benchmarks provides throughput benchmarks for the MIPS32 emulator.
package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/config"
	"github.com/sarchlab/mipsim/emu"
)

// ProgramAddr is where every benchmark program is loaded.
const ProgramAddr uint32 = 0x1000

// BenchmarkResult holds the results for a single benchmark.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Instructions is the number of instructions executed over all
	// iterations.
	Instructions uint64 `json:"instructions"`

	// WallTime is the time spent inside the run loop.
	WallTime time.Duration `json:"wall_time_ns"`

	// MIPS is millions of emulated instructions per second.
	MIPS float64 `json:"mips"`

	// Fetch cache statistics (if enabled)
	FetchCacheHits   uint64 `json:"fetch_cache_hits,omitempty"`
	FetchCacheMisses uint64 `json:"fetch_cache_misses,omitempty"`

	// HaltCode is the code of the final step.
	HaltCode int `json:"halt_code"`

	// Result is $v0 when the program halted.
	Result   uint32 `json:"result"`
	Expected uint32 `json:"expected"`
	Passed   bool   `json:"passed"`

	Error string `json:"error,omitempty"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares registers and memory after the program is loaded.
	Setup func(state *emu.State, memory *emu.Memory)

	// Program is the big-endian machine code loaded at ProgramAddr. It must
	// end in break.
	Program []byte

	// Expected is the value of $v0 at the halt.
	Expected uint32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Machine describes the emulated machine. EntryPoint is ignored.
	Machine *config.Config

	// Iterations is how many times each program runs.
	Iterations int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives progress messages when Verbose is set.
	Logger *logrus.Entry

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration: deterministic
// ticks, the fetch cache on, and a ten-million instruction guard.
func DefaultConfig() HarnessConfig {
	machine := config.Default()
	machine.TickSource = config.TickInstructions
	machine.FetchCache.Enabled = true
	machine.MaxInstructions = 10_000_000

	return HarnessConfig{
		Machine:    machine,
		Iterations: 1,
		Output:     os.Stdout,
		Logger:     logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	defaults := DefaultConfig()
	if config.Machine == nil {
		config.Machine = defaults.Machine
	}
	if config.Iterations <= 0 {
		config.Iterations = 1
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results. Cancelling ctx stops
// the benchmark in progress and skips the rest.
func (h *Harness) RunAll(ctx context.Context) []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		if ctx.Err() != nil {
			break
		}

		result := h.runBenchmark(ctx, bench)
		if h.config.Verbose {
			h.config.Logger.WithFields(logrus.Fields{
				"benchmark":    result.Name,
				"instructions": result.Instructions,
				"mips":         fmt.Sprintf("%.2f", result.MIPS),
				"passed":       result.Passed,
			}).Info("benchmark finished")
		}
		results = append(results, result)
	}

	return results
}

func (h *Harness) runBenchmark(ctx context.Context, bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
		Expected:    bench.Expected,
	}

	machine := h.config.Machine.Clone()
	machine.EntryPoint = ProgramAddr

	console := emu.NewStreamConsole(strings.NewReader(""), io.Discard)
	e, fc, err := machine.NewEmulator(console, h.config.Logger)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	var last emu.StepResult
	for i := 0; i < h.config.Iterations; i++ {
		if i > 0 {
			e.Reset()
		}

		if err := e.LoadProgram(ProgramAddr, bench.Program); err != nil {
			result.Error = err.Error()
			return result
		}
		if bench.Setup != nil {
			bench.Setup(e.State(), e.Memory())
		}

		start := time.Now()
		last = e.Run(ctx)
		result.WallTime += time.Since(start)
		result.Instructions += e.InstructionCount()

		if fc != nil {
			stats := fc.Stats()
			result.FetchCacheHits += stats.Hits
			result.FetchCacheMisses += stats.Misses
		}

		if last.Err != nil {
			break
		}
	}

	result.HaltCode = last.Code
	result.Result = e.RegFile().ReadReg(emu.RegV0)
	if last.Err != nil {
		result.Error = last.Err.Error()
	}
	result.Passed = last.Err == nil &&
		last.Code == emu.HaltCode &&
		result.Result == bench.Expected

	if secs := result.WallTime.Seconds(); secs > 0 {
		result.MIPS = float64(result.Instructions) / secs / 1e6
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out, "=== MIPSim Benchmark Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}

		_, _ = fmt.Fprintf(out, "Benchmark: %s [%s]\n", r.Name, status)
		_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(out, "  Result:       %d (expected %d)\n", r.Result, r.Expected)
		_, _ = fmt.Fprintf(out, "  Instructions: %d\n", r.Instructions)
		_, _ = fmt.Fprintf(out, "  MIPS:         %.2f\n", r.MIPS)

		if r.FetchCacheHits > 0 || r.FetchCacheMisses > 0 {
			_, _ = fmt.Fprintln(out, "  --- Fetch Cache ---")
			_, _ = fmt.Fprintf(out, "  Hits:   %d\n", r.FetchCacheHits)
			_, _ = fmt.Fprintf(out, "  Misses: %d\n", r.FetchCacheMisses)
		}

		if r.Error != "" {
			_, _ = fmt.Fprintf(out, "  Error: %s\n", r.Error)
		}

		_, _ = fmt.Fprintf(out, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,instructions,wall_time_ns,mips,fetch_cache_hits,fetch_cache_misses,result,expected,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%t\n",
			r.Name,
			r.Instructions,
			r.WallTime.Nanoseconds(),
			r.MIPS,
			r.FetchCacheHits,
			r.FetchCacheMisses,
			r.Result,
			r.Expected,
			r.Passed,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp is when the benchmark was run
	Timestamp string `json:"timestamp"`

	Iterations int `json:"iterations"`

	// Machine is the configuration the programs ran on.
	Machine *config.Config `json:"machine"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalInstructions uint64        `json:"total_instructions"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`

	// MIPS is total instructions over total wall time.
	MIPS float64 `json:"mips"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		}
		s.TotalInstructions += r.Instructions
		s.TotalWallTime += r.WallTime
	}

	if secs := s.TotalWallTime.Seconds(); secs > 0 {
		s.MIPS = float64(s.TotalInstructions) / secs / 1e6
	}

	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Iterations: h.config.Iterations,
			Machine:    h.config.Machine,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
