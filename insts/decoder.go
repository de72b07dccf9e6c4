package insts

// Op represents a MIPS32 operation.
type Op uint8

// MIPS32 operations.
const (
	OpUnknown Op = iota

	// SPECIAL (opcode 0), selected by the function field.
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpJR
	OpJALR
	OpMOVZ
	OpMOVN
	OpSYSCALL
	OpBREAK
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpMADD
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpTGE
	OpTGEU
	OpTLT
	OpTLTU
	OpTEQ
	OpTNE

	// REGIMM (opcode 1), selected by the rt field.
	OpBLTZ
	OpBGEZ

	// Jumps and branches.
	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ

	// Immediate arithmetic and logic.
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI

	// Coprocessor 0.
	OpMFC0
	OpMTC0
	OpERET

	// Loads and stores.
	OpLB
	OpLH
	OpLWL
	OpLW
	OpLBU
	OpLHU
	OpLWR
	OpSB
	OpSH
	OpSWL
	OpSW
	OpSWR

	// NumOps is the number of defined operations, usable as a table size.
	NumOps
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // Register-type
	FormatI              // Immediate-type
	FormatJ              // Jump-type
)

// Primary opcodes.
const (
	OpcodeSpecial  = 0x00
	OpcodeRegImm   = 0x01
	OpcodeJ        = 0x02
	OpcodeJAL      = 0x03
	OpcodeBEQ      = 0x04
	OpcodeBNE      = 0x05
	OpcodeBLEZ     = 0x06
	OpcodeBGTZ     = 0x07
	OpcodeADDI     = 0x08
	OpcodeADDIU    = 0x09
	OpcodeSLTI     = 0x0a
	OpcodeSLTIU    = 0x0b
	OpcodeANDI     = 0x0c
	OpcodeORI      = 0x0d
	OpcodeXORI     = 0x0e
	OpcodeLUI      = 0x0f
	OpcodeCOP0     = 0x10
	OpcodeERET     = 0x18 // legacy primary-opcode encoding of eret
	OpcodeSpecial2 = 0x1c
	OpcodeLB       = 0x20
	OpcodeLH       = 0x21
	OpcodeLWL      = 0x22
	OpcodeLW       = 0x23
	OpcodeLBU      = 0x24
	OpcodeLHU      = 0x25
	OpcodeLWR      = 0x26
	OpcodeSB       = 0x28
	OpcodeSH       = 0x29
	OpcodeSWL      = 0x2a
	OpcodeSW       = 0x2b
	OpcodeSWR      = 0x2e
)

// SPECIAL function codes.
const (
	FunctSLL     = 0x00
	FunctSRL     = 0x02
	FunctSRA     = 0x03
	FunctSLLV    = 0x04
	FunctSRLV    = 0x06
	FunctSRAV    = 0x07
	FunctJR      = 0x08
	FunctJALR    = 0x09
	FunctMOVZ    = 0x0a
	FunctMOVN    = 0x0b
	FunctSYSCALL = 0x0c
	FunctBREAK   = 0x0d
	FunctMFHI    = 0x10
	FunctMTHI    = 0x11
	FunctMFLO    = 0x12
	FunctMTLO    = 0x13
	FunctMULT    = 0x18
	FunctMULTU   = 0x19
	FunctDIV     = 0x1a
	FunctDIVU    = 0x1b
	FunctMADD    = 0x1c
	FunctADD     = 0x20
	FunctADDU    = 0x21
	FunctSUB     = 0x22
	FunctSUBU    = 0x23
	FunctAND     = 0x24
	FunctOR      = 0x25
	FunctXOR     = 0x26
	FunctNOR     = 0x27
	FunctSLT     = 0x2a
	FunctSLTU    = 0x2b
	FunctTGE     = 0x30
	FunctTGEU    = 0x31
	FunctTLT     = 0x32
	FunctTLTU    = 0x33
	FunctTEQ     = 0x34
	FunctTNE     = 0x36
)

// REGIMM rt selectors and COP0 rs selectors.
const (
	RegImmBLTZ = 0x00
	RegImmBGEZ = 0x01

	Cop0MF = 0x00
	Cop0MT = 0x04
	Cop0CO = 0x10 // CO bit set: coprocessor operation in the funct field

	Cop0FunctERET = 0x18
)

// RFormat is the register-type view of an instruction word.
type RFormat struct {
	Opcode uint8
	Rs     uint8
	Rt     uint8
	Rd     uint8
	Shamt  uint8
	Funct  uint8
}

// IFormat is the immediate-type view of an instruction word.
type IFormat struct {
	Opcode uint8
	Rs     uint8
	Rt     uint8
	Imm    uint16
}

// SignExt returns the immediate sign-extended to 32 bits.
func (f IFormat) SignExt() uint32 {
	return uint32(int32(int16(f.Imm)))
}

// ZeroExt returns the immediate zero-extended to 32 bits.
func (f IFormat) ZeroExt() uint32 {
	return uint32(f.Imm)
}

// JFormat is the jump-type view of an instruction word.
type JFormat struct {
	Opcode uint8
	Target uint32 // 26-bit target field
}

// DecodeR extracts the register-type fields of word.
func DecodeR(word uint32) RFormat {
	return RFormat{
		Opcode: uint8((word >> 26) & 0x3f),
		Rs:     uint8((word >> 21) & 0x1f),
		Rt:     uint8((word >> 16) & 0x1f),
		Rd:     uint8((word >> 11) & 0x1f),
		Shamt:  uint8((word >> 6) & 0x1f),
		Funct:  uint8(word & 0x3f),
	}
}

// DecodeI extracts the immediate-type fields of word.
func DecodeI(word uint32) IFormat {
	return IFormat{
		Opcode: uint8((word >> 26) & 0x3f),
		Rs:     uint8((word >> 21) & 0x1f),
		Rt:     uint8((word >> 16) & 0x1f),
		Imm:    uint16(word & 0xffff),
	}
}

// DecodeJ extracts the jump-type fields of word.
func DecodeJ(word uint32) JFormat {
	return JFormat{
		Opcode: uint8((word >> 26) & 0x3f),
		Target: word & 0x3ffffff,
	}
}

// Instruction represents a decoded MIPS32 instruction.
// All three views are always populated; Format names the one Op uses.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Encoding format the operation uses
	Word   uint32 // Raw instruction word

	R RFormat
	I IFormat
	J JFormat
}

// Decoder decodes MIPS32 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new MIPS32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. Decoding never fails; words
// that match no known operation yield OpUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word: word,
		R:    DecodeR(word),
		I:    DecodeI(word),
		J:    DecodeJ(word),
	}

	inst.Op, inst.Format = d.classify(inst)

	return inst
}

// classify picks the operation from the opcode and, where the opcode is
// shared, from the secondary selector field.
func (d *Decoder) classify(inst *Instruction) (Op, Format) {
	switch inst.R.Opcode {
	case OpcodeSpecial:
		if op := specialOps[inst.R.Funct]; op != OpUnknown {
			return op, FormatR
		}
		return OpUnknown, FormatUnknown
	case OpcodeRegImm:
		switch inst.I.Rt {
		case RegImmBLTZ:
			return OpBLTZ, FormatI
		case RegImmBGEZ:
			return OpBGEZ, FormatI
		}
		return OpUnknown, FormatUnknown
	case OpcodeCOP0:
		return d.classifyCop0(inst.R)
	case OpcodeSpecial2:
		if inst.R.Funct == 0x00 {
			return OpMADD, FormatR
		}
		return OpUnknown, FormatUnknown
	case OpcodeJ:
		return OpJ, FormatJ
	case OpcodeJAL:
		return OpJAL, FormatJ
	case OpcodeERET:
		return OpERET, FormatI
	}

	if op := immediateOps[inst.I.Opcode]; op != OpUnknown {
		return op, FormatI
	}

	return OpUnknown, FormatUnknown
}

func (d *Decoder) classifyCop0(f RFormat) (Op, Format) {
	switch {
	case f.Rs == Cop0MF:
		return OpMFC0, FormatR
	case f.Rs == Cop0MT:
		return OpMTC0, FormatR
	case f.Rs&Cop0CO != 0 && f.Funct == Cop0FunctERET:
		return OpERET, FormatR
	}
	return OpUnknown, FormatUnknown
}

// specialOps maps SPECIAL function codes to operations.
var specialOps = [64]Op{
	FunctSLL:     OpSLL,
	FunctSRL:     OpSRL,
	FunctSRA:     OpSRA,
	FunctSLLV:    OpSLLV,
	FunctSRLV:    OpSRLV,
	FunctSRAV:    OpSRAV,
	FunctJR:      OpJR,
	FunctJALR:    OpJALR,
	FunctMOVZ:    OpMOVZ,
	FunctMOVN:    OpMOVN,
	FunctSYSCALL: OpSYSCALL,
	FunctBREAK:   OpBREAK,
	FunctMFHI:    OpMFHI,
	FunctMTHI:    OpMTHI,
	FunctMFLO:    OpMFLO,
	FunctMTLO:    OpMTLO,
	FunctMULT:    OpMULT,
	FunctMULTU:   OpMULTU,
	FunctDIV:     OpDIV,
	FunctDIVU:    OpDIVU,
	FunctMADD:    OpMADD,
	FunctADD:     OpADD,
	FunctADDU:    OpADDU,
	FunctSUB:     OpSUB,
	FunctSUBU:    OpSUBU,
	FunctAND:     OpAND,
	FunctOR:      OpOR,
	FunctXOR:     OpXOR,
	FunctNOR:     OpNOR,
	FunctSLT:     OpSLT,
	FunctSLTU:    OpSLTU,
	FunctTGE:     OpTGE,
	FunctTGEU:    OpTGEU,
	FunctTLT:     OpTLT,
	FunctTLTU:    OpTLTU,
	FunctTEQ:     OpTEQ,
	FunctTNE:     OpTNE,
}

// immediateOps maps the remaining primary opcodes to operations.
var immediateOps = [64]Op{
	OpcodeBEQ:   OpBEQ,
	OpcodeBNE:   OpBNE,
	OpcodeBLEZ:  OpBLEZ,
	OpcodeBGTZ:  OpBGTZ,
	OpcodeADDI:  OpADDI,
	OpcodeADDIU: OpADDIU,
	OpcodeSLTI:  OpSLTI,
	OpcodeSLTIU: OpSLTIU,
	OpcodeANDI:  OpANDI,
	OpcodeORI:   OpORI,
	OpcodeXORI:  OpXORI,
	OpcodeLUI:   OpLUI,
	OpcodeLB:    OpLB,
	OpcodeLH:    OpLH,
	OpcodeLWL:   OpLWL,
	OpcodeLW:    OpLW,
	OpcodeLBU:   OpLBU,
	OpcodeLHU:   OpLHU,
	OpcodeLWR:   OpLWR,
	OpcodeSB:    OpSB,
	OpcodeSH:    OpSH,
	OpcodeSWL:   OpSWL,
	OpcodeSW:    OpSW,
	OpcodeSWR:   OpSWR,
}
