package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should name every defined operation", func() {
		for op := insts.OpUnknown; op < insts.NumOps; op++ {
			Expect(op.String()).NotTo(BeEmpty(), "op %d has no mnemonic", op)
		}
	})

	It("should build big-endian program images", func() {
		program := insts.BuildProgram(0x20010005, 0x0000000d)
		Expect(program).To(Equal([]byte{
			0x20, 0x01, 0x00, 0x05,
			0x00, 0x00, 0x00, 0x0d,
		}))
	})
})
