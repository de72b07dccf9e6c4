package emu_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
)

// countingCache is a FetchCache that reads straight from memory and
// records calls.
type countingCache struct {
	memory      *emu.Memory
	fetches     int
	invalidated []uint32
	resets      int
}

func (c *countingCache) Fetch(addr uint32) uint32 {
	c.fetches++
	return c.memory.Read32(addr)
}

func (c *countingCache) Invalidate(addr uint32, n int) {
	c.invalidated = append(c.invalidated, addr)
}

func (c *countingCache) Reset() { c.resets++ }

var _ = Describe("Emulator", func() {
	var (
		e      *emu.Emulator
		stdout *bytes.Buffer
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		e = emu.NewEmulator(
			emu.WithLogger(quietLogger()),
			emu.WithConsole(emu.NewStreamConsole(strings.NewReader("q"), stdout)),
		)
	})

	load := func(words ...uint32) {
		Expect(e.LoadProgram(0, insts.BuildProgram(words...))).To(Succeed())
	}

	Describe("NewEmulator", func() {
		It("should start from the reference reset state", func() {
			s := e.State()
			Expect(s.PC).To(BeZero())
			Expect(s.ReadReg(emu.RegSP)).To(Equal(uint32(0x00fff000)))
			Expect(s.CP0.R[emu.Cop0Compare]).To(Equal(uint32(0x00ff0000)))
			Expect(s.CP0.R[emu.Cop0Status]).To(Equal(uint32(0x0000ff01)))
			Expect(s.Mode).To(Equal(emu.ModeKernel))
		})

		It("should apply the stack pointer option", func() {
			e = emu.NewEmulator(emu.WithLogger(quietLogger()), emu.WithStackPointer(0x8000))
			Expect(e.RegFile().ReadReg(emu.RegSP)).To(Equal(uint32(0x8000)))
		})
	})

	Describe("LoadProgram", func() {
		It("should copy the image and set the PC", func() {
			Expect(e.LoadProgram(0x2000, []byte{0xde, 0xad, 0xbe, 0xef})).To(Succeed())

			Expect(e.RegFile().PC).To(Equal(uint32(0x2000)))
			Expect(e.Memory().Read32(0x2000)).To(Equal(uint32(0xdeadbeef)))
		})
	})

	Describe("Step", func() {
		It("should keep $0 at zero after writing it", func() {
			load(insts.EncodeADDI(0, 0, 7), insts.EncodeLUI(0, 0xffff))

			e.Step()
			Expect(e.RegFile().R[0]).To(BeZero())
			e.Step()
			Expect(e.RegFile().R[0]).To(BeZero())
		})

		It("should advance the PC by 4 for straight-line code", func() {
			load(insts.EncodeNOP(), insts.EncodeNOP())

			e.Step()
			Expect(e.RegFile().PC).To(Equal(uint32(4)))
			Expect(e.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should land a taken beq on PC + 4 + offset*4", func() {
			load(insts.EncodeNOP(), insts.EncodeBEQ(1, 1, 5))
			e.Step()

			e.Step()

			Expect(e.RegFile().PC).To(Equal(uint32(4 + 4 + 20)))
		})

		It("should treat unknown instructions as no-ops", func() {
			load(0xfc000000)

			result := e.Step()

			Expect(result.Outcome).To(Equal(emu.Continue))
			Expect(result.Word).To(Equal(uint32(0xfc000000)))
			Expect(e.RegFile().PC).To(Equal(uint32(4)))
		})

		It("should halt with code 5 on break", func() {
			load(insts.EncodeBREAK())

			result := e.Step()

			Expect(result.Halted()).To(BeTrue())
			Expect(result.Code).To(Equal(emu.HaltCode))
			Expect(result.Err).NotTo(HaveOccurred())
		})

		It("should halt on jr $ra and continue on jr of another register", func() {
			load(insts.EncodeJR(5))
			e.State().WriteReg(5, 0x40)
			e.State().WriteReg(emu.RegRA, 0x80)
			Expect(e.Memory().LoadProgram(0x40, insts.BuildProgram(insts.EncodeJR(emu.RegRA)))).To(Succeed())

			result := e.Step()
			Expect(result.Outcome).To(Equal(emu.Continue))
			Expect(e.RegFile().PC).To(Equal(uint32(0x40)))

			result = e.Step()
			Expect(result.Outcome).To(Equal(emu.Halt))
			Expect(result.Code).To(Equal(5))
			Expect(e.RegFile().PC).To(Equal(uint32(0x80)))
		})

		It("should stop at the instruction limit", func() {
			e = emu.NewEmulator(emu.WithLogger(quietLogger()), emu.WithMaxInstructions(2))
			load(insts.EncodeNOP(), insts.EncodeNOP(), insts.EncodeNOP())

			Expect(e.Step().Halted()).To(BeFalse())
			Expect(e.Step().Halted()).To(BeFalse())

			result := e.Step()
			Expect(result.Halted()).To(BeTrue())
			Expect(errors.Is(result.Err, emu.ErrMaxInstructions)).To(BeTrue())
		})

		It("should halt with an error on an access beyond the memory limit", func() {
			memory := emu.NewMemory(emu.WithMemoryLimit(0x10000))
			e = emu.NewEmulator(emu.WithLogger(quietLogger()), emu.WithMemory(memory))
			load(insts.EncodeLUI(1, 0x0002), insts.EncodeLW(2, 1, 0))

			Expect(e.Step().Halted()).To(BeFalse())
			result := e.Step()

			Expect(result.Halted()).To(BeTrue())
			Expect(errors.Is(result.Err, emu.ErrAddressOutOfRange)).To(BeTrue())
		})
	})

	Describe("end-to-end programs", func() {
		It("should add two immediates and halt", func() {
			load(
				insts.EncodeADDI(1, 0, 5),
				insts.EncodeADDI(2, 0, 3),
				insts.EncodeADD(3, 1, 2),
				insts.EncodeBREAK(),
			)

			result := e.Run(context.Background())

			Expect(result.Outcome).To(Equal(emu.Halt))
			Expect(result.Code).To(Equal(5))
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint32(8)))
			Expect(e.InstructionCount()).To(Equal(uint64(4)))
		})

		It("should build a constant with lui/ori", func() {
			load(insts.EncodeLUI(1, 0x1234), insts.EncodeORI(1, 1, 0x5678))

			e.Step()
			e.Step()

			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(0x12345678)))
		})

		It("should run a counted loop", func() {
			// sum = 10 + 9 + ... + 1
			load(
				insts.EncodeADDI(1, 0, 10),
				insts.EncodeADDU(2, 2, 1),
				insts.EncodeADDI(1, 1, -1),
				insts.EncodeBNE(1, 0, -3),
				insts.EncodeBREAK(),
			)

			result := e.Run(context.Background())

			Expect(result.Code).To(Equal(emu.HaltCode))
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(55)))
		})

		It("should call and return through jal/jalr", func() {
			load(
				insts.EncodeJAL26(0x10),   // 0x00
				insts.EncodeBREAK(),       // 0x04
				insts.EncodeNOP(),         // 0x08
				insts.EncodeNOP(),         // 0x0c
				insts.EncodeADDI(4, 0, 9), // 0x10
				insts.EncodeJALR(0, 31),   // 0x14: return without halting
			)

			result := e.Run(context.Background())

			Expect(result.Code).To(Equal(emu.HaltCode))
			Expect(e.RegFile().ReadReg(4)).To(Equal(uint32(9)))
			Expect(e.RegFile().PC).To(Equal(uint32(0x08)))
		})

		It("should talk to the console port through loads and stores", func() {
			load(
				insts.EncodeLUI(8, 0x3e00),
				insts.EncodeLoad(insts.OpcodeLBU, 9, 8, 4),
				insts.EncodeStore(insts.OpcodeSB, 9, 8, 4),
				insts.EncodeBREAK(),
			)

			e.Run(context.Background())

			Expect(e.RegFile().ReadReg(9)).To(Equal(uint32('q')))
			Expect(stdout.String()).To(Equal("q"))
		})

		It("should stop when the context is cancelled", func() {
			load(insts.EncodeJ26(0))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result := e.Run(ctx)

			Expect(result.Halted()).To(BeTrue())
			Expect(errors.Is(result.Err, context.Canceled)).To(BeTrue())
		})
	})

	Describe("fetch cache", func() {
		It("should fetch through the cache and invalidate on stores", func() {
			memory := emu.NewMemory()
			fc := &countingCache{memory: memory}
			e = emu.NewEmulator(
				emu.WithLogger(quietLogger()),
				emu.WithMemory(memory),
				emu.WithFetchCache(fc),
			)
			load(insts.EncodeADDI(1, 0, 0x100), insts.EncodeSW(1, 1, 0), insts.EncodeBREAK())

			e.Run(context.Background())

			Expect(fc.fetches).To(Equal(3))
			Expect(fc.invalidated).To(ContainElement(uint32(0x100)))

			e.Reset()
			Expect(fc.resets).To(Equal(1))
		})
	})

	Describe("inspection", func() {
		It("should snapshot state without aliasing", func() {
			snap := e.Snapshot()
			e.State().WriteReg(1, 42)
			Expect(snap.ReadReg(1)).To(BeZero())
		})

		It("should dump registers and memory", func() {
			load(insts.EncodeADDI(2, 0, 0x41), insts.EncodeBREAK())
			e.Run(context.Background())
			Expect(e.Memory().LoadProgram(0x20000000, []byte("MIPS"))).To(Succeed())

			var out bytes.Buffer
			Expect(e.Dump(&out, 0x20000000, 32)).To(Succeed())

			Expect(out.String()).To(ContainSubstring("$v0: 65|0x41"))
			Expect(out.String()).To(ContainSubstring("$status:"))
			Expect(out.String()).To(ContainSubstring("$cp0: 0|0x0"))
			Expect(out.String()).To(ContainSubstring("$cp31: 0|0x0"))
			Expect(out.String()).To(ContainSubstring(" 4d 49 50 53"))
			Expect(out.String()).To(ContainSubstring("MIPS"))
		})

		It("should reset to the initial state", func() {
			load(insts.EncodeADDI(1, 0, 1), insts.EncodeBREAK())
			e.Run(context.Background())

			e.Reset()

			Expect(e.RegFile().PC).To(BeZero())
			Expect(e.RegFile().ReadReg(1)).To(BeZero())
			Expect(e.InstructionCount()).To(BeZero())
			Expect(e.Memory().PageCount()).To(BeZero())
		})
	})
})
