// Package insts provides MIPS32 instruction definitions and decoding.
//
// This package turns 32-bit machine words into structured instruction
// representations. Every word decodes into all three fixed-layout views:
//   - Register-type (R): opcode, rs, rt, rd, shift amount, function code
//   - Immediate-type (I): opcode, rs, rt, 16-bit immediate
//   - Jump-type (J): opcode, 26-bit target field
//
// The Decoder additionally classifies the word into an Op so that the
// emulator can dispatch through a table instead of nested switches.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x20010005) // addi $1, $0, 5
//	fmt.Printf("Op: %v, Rt: %d, Imm: %d\n", inst.Op, inst.I.Rt, inst.I.Imm)
package insts
