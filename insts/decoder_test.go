package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Field extraction", func() {
		// add $3, $1, $2 -> 0x00221820
		It("should extract register-type fields", func() {
			r := insts.DecodeR(0x00221820)

			Expect(r.Opcode).To(Equal(uint8(0)))
			Expect(r.Rs).To(Equal(uint8(1)))
			Expect(r.Rt).To(Equal(uint8(2)))
			Expect(r.Rd).To(Equal(uint8(3)))
			Expect(r.Shamt).To(Equal(uint8(0)))
			Expect(r.Funct).To(Equal(uint8(0x20)))
		})

		// addi $1, $0, -1 -> 0x2001FFFF
		It("should extract immediate-type fields", func() {
			i := insts.DecodeI(0x2001FFFF)

			Expect(i.Opcode).To(Equal(uint8(0x08)))
			Expect(i.Rs).To(Equal(uint8(0)))
			Expect(i.Rt).To(Equal(uint8(1)))
			Expect(i.Imm).To(Equal(uint16(0xFFFF)))
			Expect(i.SignExt()).To(Equal(uint32(0xFFFFFFFF)))
			Expect(i.ZeroExt()).To(Equal(uint32(0x0000FFFF)))
		})

		// jal 0x0040_0000 -> 0x0C100000
		It("should extract jump-type fields", func() {
			j := insts.DecodeJ(0x0C100000)

			Expect(j.Opcode).To(Equal(uint8(0x03)))
			Expect(j.Target).To(Equal(uint32(0x100000)))
		})

		It("should populate all three views for any word", func() {
			inst := decoder.Decode(0xFFFFFFFF)

			Expect(inst.Word).To(Equal(uint32(0xFFFFFFFF)))
			Expect(inst.R.Funct).To(Equal(uint8(0x3f)))
			Expect(inst.I.Imm).To(Equal(uint16(0xFFFF)))
			Expect(inst.J.Target).To(Equal(uint32(0x3FFFFFF)))
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
		})
	})

	Describe("SPECIAL class", func() {
		DescribeTable("should classify by function field",
			func(word uint32, op insts.Op) {
				inst := decoder.Decode(word)
				Expect(inst.Op).To(Equal(op))
				Expect(inst.Format).To(Equal(insts.FormatR))
			},
			Entry("sll", insts.EncodeShift(insts.FunctSLL, 2, 1, 4), insts.OpSLL),
			Entry("sra", insts.EncodeShift(insts.FunctSRA, 2, 1, 4), insts.OpSRA),
			Entry("srav", insts.EncodeSpecial(insts.FunctSRAV, 2, 3, 1), insts.OpSRAV),
			Entry("jr", insts.EncodeJR(31), insts.OpJR),
			Entry("jalr", insts.EncodeJALR(31, 4), insts.OpJALR),
			Entry("movz", insts.EncodeSpecial(insts.FunctMOVZ, 1, 2, 3), insts.OpMOVZ),
			Entry("syscall", insts.EncodeSYSCALL(), insts.OpSYSCALL),
			Entry("break", insts.EncodeBREAK(), insts.OpBREAK),
			Entry("mult", insts.EncodeMULT(1, 2), insts.OpMULT),
			Entry("divu", insts.EncodeSpecial(insts.FunctDIVU, 0, 1, 2), insts.OpDIVU),
			Entry("madd", insts.EncodeSpecial(insts.FunctMADD, 0, 1, 2), insts.OpMADD),
			Entry("add", insts.EncodeADD(3, 1, 2), insts.OpADD),
			Entry("nor", insts.EncodeSpecial(insts.FunctNOR, 3, 1, 2), insts.OpNOR),
			Entry("sltu", insts.EncodeSpecial(insts.FunctSLTU, 3, 1, 2), insts.OpSLTU),
			Entry("teq", insts.EncodeSpecial(insts.FunctTEQ, 0, 1, 2), insts.OpTEQ),
			Entry("tne", insts.EncodeSpecial(insts.FunctTNE, 0, 1, 2), insts.OpTNE),
		)

		It("should treat the zero word as sll (nop)", func() {
			inst := decoder.Decode(insts.EncodeNOP())
			Expect(inst.Op).To(Equal(insts.OpSLL))
		})

		It("should leave unused function codes unknown", func() {
			inst := decoder.Decode(insts.EncodeSpecial(0x01, 0, 0, 0))
			Expect(inst.Op).To(Equal(insts.OpUnknown))
		})
	})

	Describe("REGIMM class", func() {
		It("should select bltz and bgez from the rt field", func() {
			Expect(decoder.Decode(insts.EncodeI(insts.OpcodeRegImm, 4, 0, 3)).Op).
				To(Equal(insts.OpBLTZ))
			Expect(decoder.Decode(insts.EncodeI(insts.OpcodeRegImm, 4, 1, 3)).Op).
				To(Equal(insts.OpBGEZ))
			Expect(decoder.Decode(insts.EncodeI(insts.OpcodeRegImm, 4, 2, 3)).Op).
				To(Equal(insts.OpUnknown))
		})
	})

	Describe("Immediate and jump classes", func() {
		DescribeTable("should classify by opcode",
			func(word uint32, op insts.Op, format insts.Format) {
				inst := decoder.Decode(word)
				Expect(inst.Op).To(Equal(op))
				Expect(inst.Format).To(Equal(format))
			},
			Entry("j", insts.EncodeJ26(0x100), insts.OpJ, insts.FormatJ),
			Entry("jal", insts.EncodeJAL26(0x100), insts.OpJAL, insts.FormatJ),
			Entry("beq", insts.EncodeBEQ(1, 2, -1), insts.OpBEQ, insts.FormatI),
			Entry("bgtz", insts.EncodeBGTZ(1, 4), insts.OpBGTZ, insts.FormatI),
			Entry("addi", insts.EncodeADDI(1, 0, 5), insts.OpADDI, insts.FormatI),
			Entry("lui", insts.EncodeLUI(1, 0x1234), insts.OpLUI, insts.FormatI),
			Entry("ori", insts.EncodeORI(1, 1, 0x5678), insts.OpORI, insts.FormatI),
			Entry("lwl", insts.EncodeLoad(insts.OpcodeLWL, 1, 2, 0), insts.OpLWL, insts.FormatI),
			Entry("lw", insts.EncodeLW(1, 2, 8), insts.OpLW, insts.FormatI),
			Entry("swr", insts.EncodeStore(insts.OpcodeSWR, 1, 2, 0), insts.OpSWR, insts.FormatI),
			Entry("sw", insts.EncodeSW(1, 2, 8), insts.OpSW, insts.FormatI),
		)

		// lui $1, 0x1234 -> 0x3C011234
		It("should decode lui $1, 0x1234", func() {
			inst := decoder.Decode(0x3C011234)

			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.I.Rt).To(Equal(uint8(1)))
			Expect(inst.I.Imm).To(Equal(uint16(0x1234)))
		})
	})

	Describe("Coprocessor 0", func() {
		It("should decode mfc0 and mtc0 from the rs field", func() {
			mf := decoder.Decode(insts.EncodeMFC0(8, 12))
			Expect(mf.Op).To(Equal(insts.OpMFC0))
			Expect(mf.R.Rt).To(Equal(uint8(8)))
			Expect(mf.R.Rd).To(Equal(uint8(12)))

			mt := decoder.Decode(insts.EncodeMTC0(8, 11))
			Expect(mt.Op).To(Equal(insts.OpMTC0))
		})

		It("should decode both eret encodings", func() {
			Expect(decoder.Decode(insts.EncodeERET()).Op).To(Equal(insts.OpERET))
			Expect(decoder.Decode(0x42000018).Op).To(Equal(insts.OpERET))
			Expect(decoder.Decode(insts.EncodeI(insts.OpcodeERET, 0, 0, 0)).Op).
				To(Equal(insts.OpERET))
		})

		It("should decode the SPECIAL2 form of madd", func() {
			inst := decoder.Decode(insts.EncodeR(insts.OpcodeSpecial2, 1, 2, 0, 0, 0))
			Expect(inst.Op).To(Equal(insts.OpMADD))
		})
	})

	Describe("String", func() {
		It("should render mnemonics", func() {
			Expect(decoder.Decode(insts.EncodeADD(3, 1, 2)).String()).To(HavePrefix("add "))
			Expect(decoder.Decode(insts.EncodeJ26(0x40)).String()).To(Equal("j 0x0000010"))
			Expect(insts.OpBREAK.String()).To(Equal("break"))
		})
	})
})
