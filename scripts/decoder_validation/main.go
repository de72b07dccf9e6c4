// Validate the decoder - checks that a mixed instruction stream decodes to
// the expected operations and measures decode throughput and allocations.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/mipsim/insts"
)

type sample struct {
	word uint32
	op   insts.Op
}

func main() {
	samples := []sample{
		{insts.EncodeADDI(1, 0, 42), insts.OpADDI},
		{insts.EncodeADDU(2, 3, 4), insts.OpADDU},
		{insts.EncodeLW(5, 29, -8), insts.OpLW},
		{insts.EncodeBNE(1, 0, -3), insts.OpBNE},
		{insts.EncodeJAL26(0x400), insts.OpJAL},
		{insts.EncodeMADD(8, 9), insts.OpMADD},
		{insts.EncodeMTC0(1, 11), insts.OpMTC0},
		{insts.EncodeERET(), insts.OpERET},
		{0xfc000000, insts.OpUnknown},
	}

	decoder := insts.NewDecoder()

	failures := 0
	for _, s := range samples {
		inst := decoder.Decode(s.word)
		if inst.Op != s.op {
			fmt.Printf("MISMATCH 0x%08x: got %v, want %v\n", s.word, inst.Op, s.op)
			failures++
		}
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(samples[0].word)
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for _, s := range samples {
			decoder.Decode(s.word)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(samples)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Encodings checked: %d (%d mismatches)\n", len(samples), failures)
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	if failures > 0 {
		os.Exit(1)
	}
}
