package benchmarks

import (
	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
)

// Program loops return through jalr $0, $ra: jr $ra would halt the
// emulator.

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each
// benchmark stresses one part of the execution engine.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		countedLoop(1000),
		memoryCopy(),
		branchHeavy(),
		multiplyDivide(),
		functionCalls(),
		matrixMultiply2x2(),
	}
}

// GetCoreBenchmarks returns a minimal set of core benchmarks for quick
// validation: loop, matrix multiply, branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countedLoop(1000),
		matrixMultiply2x2(),
		branchHeavy(),
	}
}

// 1. Arithmetic Sequential - independent ALU operations
func arithmeticSequential() Benchmark {
	words := make([]uint32, 0, 22)
	for i := 0; i < 4; i++ {
		for r := uint8(8); r <= 12; r++ {
			words = append(words, insts.EncodeADDIU(r, r, 1))
		}
	}
	words = append(words,
		insts.EncodeADDU(emu.RegV0, 8, 12),
		insts.EncodeBREAK(),
	)

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent addiu operations over five registers",
		Program:     insts.BuildProgram(words...),
		Expected:    8, // $t0 + $t4 = 4 + 4
	}
}

// 2. Dependency Chain - every instruction reads the previous result
func dependencyChain() Benchmark {
	const n = 20

	words := make([]uint32, 0, n+1)
	for i := 0; i < n; i++ {
		words = append(words, insts.EncodeADDIU(emu.RegV0, emu.RegV0, 1))
	}
	words = append(words, insts.EncodeBREAK())

	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent addiu ($v0 += 1)",
		Program:     insts.BuildProgram(words...),
		Expected:    n,
	}
}

// 3. Counted Loop - sum n + (n-1) + ... + 1
func countedLoop(n int16) Benchmark {
	return Benchmark{
		Name:        "counted_loop",
		Description: "Backward-branch loop summing a countdown",
		Program: insts.BuildProgram(
			insts.EncodeADDI(8, 0, n),
			insts.EncodeADDU(emu.RegV0, emu.RegV0, 8), // loop:
			insts.EncodeADDI(8, 8, -1),
			insts.EncodeBNE(8, 0, -3), // bne $t0, $0, loop
			insts.EncodeBREAK(),
		),
		Expected: uint32(int(n) * (int(n) + 1) / 2),
	}
}

// 4. Memory Copy - word loads and stores over two buffers
func memoryCopy() Benchmark {
	const (
		src   = 0x8000
		dst   = 0x9000
		words = 16
	)

	return Benchmark{
		Name:        "memory_copy",
		Description: "Copy 16 words with lw/sw and sum them",
		Setup: func(state *emu.State, memory *emu.Memory) {
			for i := uint32(0); i < words; i++ {
				memory.Write32(src+4*i, i+1)
			}
		},
		Program: insts.BuildProgram(
			insts.EncodeORI(8, 0, src),
			insts.EncodeORI(9, 0, dst),
			insts.EncodeADDI(10, 0, words),
			insts.EncodeLW(11, 8, 0), // loop:
			insts.EncodeSW(11, 9, 0),
			insts.EncodeADDU(emu.RegV0, emu.RegV0, 11),
			insts.EncodeADDIU(8, 8, 4),
			insts.EncodeADDIU(9, 9, 4),
			insts.EncodeADDI(10, 10, -1),
			insts.EncodeBNE(10, 0, -7),
			insts.EncodeBREAK(),
		),
		Expected: words * (words + 1) / 2,
	}
}

// 5. Branch Heavy - a data-dependent forward branch in every iteration
func branchHeavy() Benchmark {
	return Benchmark{
		Name:        "branch_heavy",
		Description: "64 iterations alternating taken and not-taken beq",
		Program: insts.BuildProgram(
			insts.EncodeADDI(8, 0, 64),
			insts.EncodeANDI(9, 8, 1), // loop:
			insts.EncodeBEQ(9, 0, 1),  // even: skip the +3
			insts.EncodeADDIU(emu.RegV0, emu.RegV0, 3),
			insts.EncodeADDIU(emu.RegV0, emu.RegV0, 1),
			insts.EncodeADDI(8, 8, -1),
			insts.EncodeBGTZ(8, -6),
			insts.EncodeBREAK(),
		),
		Expected: 32*4 + 32*1,
	}
}

// 6. Multiply/Divide - 10! through mult/mflo, then a division
func multiplyDivide() Benchmark {
	return Benchmark{
		Name:        "multiply_divide",
		Description: "Factorial with mult/mflo followed by div/mflo/mfhi",
		Program: insts.BuildProgram(
			insts.EncodeADDI(8, 0, 10),
			insts.EncodeADDI(emu.RegV0, 0, 1),
			insts.EncodeMULT(emu.RegV0, 8), // loop:
			insts.EncodeMFLO(emu.RegV0),
			insts.EncodeADDI(8, 8, -1),
			insts.EncodeBGTZ(8, -4),
			insts.EncodeADDI(9, 0, 7),
			insts.EncodeDIV(emu.RegV0, 9),
			insts.EncodeMFLO(emu.RegV0),
			insts.EncodeMFHI(10),
			insts.EncodeADDU(emu.RegV0, emu.RegV0, 10),
			insts.EncodeBREAK(),
		),
		Expected: 3628800 / 7,
	}
}

// 7. Function Calls - jal/jalr pairs
func functionCalls() Benchmark {
	addOne := ProgramAddr + 6*4

	return Benchmark{
		Name:        "function_calls",
		Description: "5 calls through jal, returning with jalr $0, $ra",
		Program: insts.BuildProgram(
			insts.EncodeJAL26(addOne),
			insts.EncodeJAL26(addOne),
			insts.EncodeJAL26(addOne),
			insts.EncodeJAL26(addOne),
			insts.EncodeJAL26(addOne),
			insts.EncodeBREAK(),

			// add_one
			insts.EncodeADDIU(emu.RegV0, emu.RegV0, 1),
			insts.EncodeJALR(0, emu.RegRA),
		),
		Expected: 5,
	}
}

// 8. Matrix Multiply - 2x2 product with mult/madd, no calls
func matrixMultiply2x2() Benchmark {
	const (
		a = 0x8000
		b = 0x8100
		c = 0x8200
	)

	// C[i][j] = A[i][0]*B[0][j] + A[i][1]*B[1][j]
	entry := func(ai0, ai1, b0j, b1j, rd uint8, off int16) []uint32 {
		return []uint32{
			insts.EncodeMULT(ai0, b0j),
			insts.EncodeMADD(ai1, b1j),
			insts.EncodeMFLO(rd),
			insts.EncodeSW(rd, 10, off),
			insts.EncodeADDU(emu.RegV0, emu.RegV0, rd),
		}
	}

	words := []uint32{
		insts.EncodeORI(8, 0, a),
		insts.EncodeORI(9, 0, b),
		insts.EncodeORI(10, 0, c),
		insts.EncodeLW(16, 8, 0), // A = | $s0 $s1 |
		insts.EncodeLW(17, 8, 4), //     | $s2 $s3 |
		insts.EncodeLW(18, 8, 8),
		insts.EncodeLW(19, 8, 12),
		insts.EncodeLW(20, 9, 0), // B = | $s4 $s5 |
		insts.EncodeLW(21, 9, 4), //     | $s6 $s7 |
		insts.EncodeLW(22, 9, 8),
		insts.EncodeLW(23, 9, 12),
	}
	words = append(words, entry(16, 17, 20, 22, 11, 0)...)
	words = append(words, entry(16, 17, 21, 23, 12, 4)...)
	words = append(words, entry(18, 19, 20, 22, 13, 8)...)
	words = append(words, entry(18, 19, 21, 23, 14, 12)...)
	words = append(words, insts.EncodeBREAK())

	return Benchmark{
		Name:        "matrix_multiply",
		Description: "2x2 integer matrix product using mult/madd/mflo",
		Setup: func(state *emu.State, memory *emu.Memory) {
			for i, v := range []uint32{1, 2, 3, 4} {
				memory.Write32(a+4*uint32(i), v)
			}
			for i, v := range []uint32{5, 6, 7, 8} {
				memory.Write32(b+4*uint32(i), v)
			}
		},
		Program: insts.BuildProgram(words...),
		// C = [[19, 22], [43, 50]]
		Expected: 19 + 22 + 43 + 50,
	}
}
