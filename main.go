// Package main provides the entry point for MIPSim.
// MIPSim is a functional MIPS32 interpreter with a coprocessor-0 exception
// model, a console bridge and an optional instruction-fetch cache.
//
// For the full CLI, use: go run ./cmd/mipsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("MIPSim - MIPS32 Interpreter")
	fmt.Println("")
	fmt.Println("Usage: mipsim [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to machine configuration JSON file")
	fmt.Println("  -raw       Put the terminal in raw mode for console programs")
	fmt.Println("  -dump      Print registers and memory when the program halts")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/mipsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/mipsim' instead.")
	}
}
