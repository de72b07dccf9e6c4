package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
)

var _ = Describe("BranchUnit", func() {
	var (
		state      *emu.State
		branchUnit *emu.BranchUnit
	)

	BeforeEach(func() {
		state = emu.NewState()
		state.PC = 0x1000
		branchUnit = emu.NewBranchUnit(state)
	})

	// The engine adds 4 after every step, so the unit leaves PC at
	// target-4.
	finalPC := func() uint32 { return state.PC + 4 }

	Describe("conditional branches", func() {
		It("should branch forward relative to the next instruction", func() {
			branchUnit.BEQ(1, 1, 3)
			Expect(finalPC()).To(Equal(uint32(0x1000 + 4 + 12)))
		})

		It("should branch backward with a negative offset", func() {
			branchUnit.BEQ(1, 1, 0xfffffffe) // -2
			Expect(finalPC()).To(Equal(uint32(0x1000 + 4 - 8)))
		})

		It("should fall through when not taken", func() {
			state.WriteReg(1, 1)
			branchUnit.BEQ(1, 0, 3)
			Expect(finalPC()).To(Equal(uint32(0x1004)))
		})

		DescribeTable("should evaluate sign tests",
			func(value uint32, branch func(*emu.BranchUnit), taken bool) {
				state.WriteReg(1, value)
				branch(branchUnit)
				if taken {
					Expect(finalPC()).To(Equal(uint32(0x1008)))
				} else {
					Expect(finalPC()).To(Equal(uint32(0x1004)))
				}
			},
			Entry("bltz negative", uint32(0xffffffff), func(b *emu.BranchUnit) { b.BLTZ(1, 1) }, true),
			Entry("bltz zero", uint32(0), func(b *emu.BranchUnit) { b.BLTZ(1, 1) }, false),
			Entry("bgez zero", uint32(0), func(b *emu.BranchUnit) { b.BGEZ(1, 1) }, true),
			Entry("blez zero", uint32(0), func(b *emu.BranchUnit) { b.BLEZ(1, 1) }, true),
			Entry("blez positive", uint32(7), func(b *emu.BranchUnit) { b.BLEZ(1, 1) }, false),
			Entry("bgtz positive", uint32(7), func(b *emu.BranchUnit) { b.BGTZ(1, 1) }, true),
			Entry("bgtz negative", uint32(0x80000000), func(b *emu.BranchUnit) { b.BGTZ(1, 1) }, false),
			Entry("bne different", uint32(7), func(b *emu.BranchUnit) { b.BNE(1, 0, 1) }, true),
		)
	})

	Describe("jumps", func() {
		It("should build j targets inside the current region", func() {
			state.PC = 0x30001000
			branchUnit.J(0x100)
			Expect(finalPC()).To(Equal(uint32(0x30000400)))
		})

		It("should link jal to the next instruction", func() {
			branchUnit.JAL(0x800)
			Expect(state.ReadReg(emu.RegRA)).To(Equal(uint32(0x1004)))
			Expect(finalPC()).To(Equal(uint32(0x2000)))
		})

		It("should report termination for jr $ra only", func() {
			state.WriteReg(emu.RegRA, 0x4000)
			Expect(branchUnit.JR(emu.RegRA)).To(BeTrue())
			Expect(finalPC()).To(Equal(uint32(0x4000)))

			state.WriteReg(5, 0x5000)
			Expect(branchUnit.JR(5)).To(BeFalse())
			Expect(finalPC()).To(Equal(uint32(0x5000)))
		})

		It("should read the jalr target before linking", func() {
			state.WriteReg(31, 0x6000)
			branchUnit.JALR(31, 31)
			Expect(finalPC()).To(Equal(uint32(0x6000)))
			Expect(state.ReadReg(31)).To(Equal(uint32(0x1004)))
		})
	})
})
