package emu_test

import (
	"io"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/insts"
)

var _ = Describe("Dispatch", func() {
	var (
		e     *emu.Emulator
		state *emu.State
	)

	BeforeEach(func() {
		e = emu.NewEmulator(
			emu.WithLogger(quietLogger()),
			emu.WithConsole(emu.NewStreamConsole(strings.NewReader(""), io.Discard)),
		)
		state = e.State()
		state.PC = 0x1000
	})

	type regs struct {
		r1, r2, r3 uint32
	}

	DescribeTable("register-to-register operations",
		func(word uint32, in regs, check func(*emu.State)) {
			state.WriteReg(1, in.r1)
			state.WriteReg(2, in.r2)
			state.WriteReg(3, in.r3)

			result := e.Execute(word, 0)

			Expect(result.Outcome).To(Equal(emu.Continue))
			Expect(state.PC).To(Equal(uint32(0x1004)))
			check(state)
		},
		Entry("movz moves when rt is zero",
			insts.EncodeSpecial(insts.FunctMOVZ, 3, 1, 2), regs{7, 0, 99},
			func(s *emu.State) { Expect(s.ReadReg(3)).To(Equal(uint32(7))) }),
		Entry("movz keeps rd when rt is non-zero",
			insts.EncodeSpecial(insts.FunctMOVZ, 3, 1, 2), regs{7, 1, 99},
			func(s *emu.State) { Expect(s.ReadReg(3)).To(Equal(uint32(99))) }),
		Entry("movn moves when rt is non-zero",
			insts.EncodeSpecial(insts.FunctMOVN, 3, 1, 2), regs{7, 1, 99},
			func(s *emu.State) { Expect(s.ReadReg(3)).To(Equal(uint32(7))) }),
		Entry("movn keeps rd when rt is zero",
			insts.EncodeSpecial(insts.FunctMOVN, 3, 1, 2), regs{7, 0, 99},
			func(s *emu.State) { Expect(s.ReadReg(3)).To(Equal(uint32(99))) }),
		Entry("xor",
			insts.EncodeSpecial(insts.FunctXOR, 3, 1, 2), regs{0xf0f0, 0x0ff0, 0},
			func(s *emu.State) { Expect(s.ReadReg(3)).To(Equal(uint32(0xff00))) }),
		Entry("nor",
			insts.EncodeSpecial(insts.FunctNOR, 3, 1, 2), regs{0xf0f0, 0x0ff0, 0},
			func(s *emu.State) { Expect(s.ReadReg(3)).To(Equal(uint32(0xffff000f))) }),
		Entry("mthi",
			insts.EncodeSpecial(insts.FunctMTHI, 0, 1, 0), regs{0xcafe, 0, 0},
			func(s *emu.State) {
				Expect(s.HI).To(Equal(uint32(0xcafe)))
				Expect(s.LO).To(BeZero())
			}),
		Entry("mtlo",
			insts.EncodeSpecial(insts.FunctMTLO, 0, 1, 0), regs{0xbeef, 0, 0},
			func(s *emu.State) {
				Expect(s.LO).To(Equal(uint32(0xbeef)))
				Expect(s.HI).To(BeZero())
			}),
		Entry("srlv shifts logically by the low five bits of rs",
			insts.EncodeSpecial(insts.FunctSRLV, 3, 1, 2), regs{36, 0x80000000, 0},
			func(s *emu.State) { Expect(s.ReadReg(3)).To(Equal(uint32(0x08000000))) }),
		Entry("legacy madd accumulates into HI:LO",
			insts.EncodeSpecial(insts.FunctMADD, 0, 1, 2), regs{1, 2, 0},
			func(s *emu.State) {
				Expect(s.HI).To(BeZero())
				Expect(s.LO).To(Equal(uint32(2)))
			}),
	)

	It("should add to the existing HI:LO on legacy madd", func() {
		state.LO = 1
		state.WriteReg(1, 1)
		state.WriteReg(2, 2)

		e.Execute(insts.EncodeSpecial(insts.FunctMADD, 0, 1, 2), 0)

		Expect(state.HI).To(BeZero())
		Expect(state.LO).To(Equal(uint32(3)))
	})

	Describe("tltu", func() {
		BeforeEach(func() {
			state.WriteReg(1, 1)
			state.WriteReg(2, 0xffffffff)
		})

		It("should trap when rs is below rt unsigned", func() {
			e.Execute(insts.EncodeSpecial(insts.FunctTLTU, 0, 1, 2), 0)

			Expect(state.CP0.ExcCode()).To(Equal(emu.ExcTrap))
			Expect(state.CP0.R[emu.Cop0EPC]).To(Equal(uint32(0x1000)))
			Expect(state.PC).To(Equal(emu.DefaultExceptionVector))
		})

		It("should not trap when rs is not below rt unsigned", func() {
			e.Execute(insts.EncodeSpecial(insts.FunctTLTU, 0, 2, 1), 0)

			Expect(state.Exception).To(Equal(emu.ExcNone))
			Expect(state.PC).To(Equal(uint32(0x1004)))
		})
	})

	It("should return from an exception through the legacy eret opcode", func() {
		state.PC = emu.DefaultExceptionVector
		state.CP0.R[emu.Cop0EPC] = 0x2000
		state.CP0.R[emu.Cop0Status] |= emu.StatusEXL
		state.Exception = emu.ExcTrap

		e.Execute(insts.EncodeI(insts.OpcodeERET, 0, 0, 0), 0)

		Expect(state.PC).To(Equal(uint32(0x2004)))
		Expect(state.Exception).To(Equal(emu.ExcNone))
		Expect(state.CP0.Status() & emu.StatusEXL).To(BeZero())
		Expect(state.CP0.R[emu.Cop0EPC]).To(BeZero())
	})

	Describe("$0", func() {
		DescribeTable("stays zero when an instruction targets it",
			func(word uint32) {
				state.WriteReg(1, 0x1234)
				state.WriteReg(2, 0x10)
				state.HI = 0xffff
				Expect(e.Memory().LoadProgram(0x10, []byte{0xde, 0xad, 0xbe, 0xef})).To(Succeed())

				e.Execute(word, 0)

				Expect(state.R[0]).To(BeZero())
			},
			Entry("add", insts.EncodeADD(0, 1, 1)),
			Entry("addu", insts.EncodeADDU(0, 1, 1)),
			Entry("sll", insts.EncodeShift(insts.FunctSLL, 0, 1, 3)),
			Entry("slt", insts.EncodeSLT(0, 0, 1)),
			Entry("movn", insts.EncodeSpecial(insts.FunctMOVN, 0, 1, 1)),
			Entry("mfhi", insts.EncodeMFHI(0)),
			Entry("addi", insts.EncodeADDI(0, 1, 1)),
			Entry("ori", insts.EncodeORI(0, 1, 0xff)),
			Entry("lui", insts.EncodeLUI(0, 0xffff)),
			Entry("lw", insts.EncodeLW(0, 2, 0)),
			Entry("lb", insts.EncodeLoad(insts.OpcodeLB, 0, 2, 0)),
			Entry("jalr", insts.EncodeJALR(0, 1)),
			Entry("mfc0", insts.EncodeMFC0(0, emu.Cop0Compare)),
		)

		It("should stay zero across random instruction words", func() {
			rng := rand.New(rand.NewSource(1))

			for i := 0; i < 20000; i++ {
				state.WriteReg(uint8(rng.Intn(32)), rng.Uint32())
				e.Execute(rng.Uint32(), uint32(i))

				Expect(state.R[0]).To(BeZero(), "after word %d", i)
			}
		})
	})
})
