package insts

import "fmt"

var opNames = [NumOps]string{
	OpUnknown: "unknown",
	OpSLL:     "sll",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpSLLV:    "sllv",
	OpSRLV:    "srlv",
	OpSRAV:    "srav",
	OpJR:      "jr",
	OpJALR:    "jalr",
	OpMOVZ:    "movz",
	OpMOVN:    "movn",
	OpSYSCALL: "syscall",
	OpBREAK:   "break",
	OpMFHI:    "mfhi",
	OpMTHI:    "mthi",
	OpMFLO:    "mflo",
	OpMTLO:    "mtlo",
	OpMULT:    "mult",
	OpMULTU:   "multu",
	OpDIV:     "div",
	OpDIVU:    "divu",
	OpMADD:    "madd",
	OpADD:     "add",
	OpADDU:    "addu",
	OpSUB:     "sub",
	OpSUBU:    "subu",
	OpAND:     "and",
	OpOR:      "or",
	OpXOR:     "xor",
	OpNOR:     "nor",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpTGE:     "tge",
	OpTGEU:    "tgeu",
	OpTLT:     "tlt",
	OpTLTU:    "tltu",
	OpTEQ:     "teq",
	OpTNE:     "tne",
	OpBLTZ:    "bltz",
	OpBGEZ:    "bgez",
	OpJ:       "j",
	OpJAL:     "jal",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpBLEZ:    "blez",
	OpBGTZ:    "bgtz",
	OpADDI:    "addi",
	OpADDIU:   "addiu",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpANDI:    "andi",
	OpORI:     "ori",
	OpXORI:    "xori",
	OpLUI:     "lui",
	OpMFC0:    "mfc0",
	OpMTC0:    "mtc0",
	OpERET:    "eret",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLWL:     "lwl",
	OpLW:      "lw",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpLWR:     "lwr",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSWL:     "swl",
	OpSW:      "sw",
	OpSWR:     "swr",
}

// String returns the assembler mnemonic of the operation.
func (op Op) String() string {
	if op < NumOps {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// String returns a short name for the format.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatJ:
		return "J"
	}
	return "?"
}

// String renders the instruction in a compact assembler-like form.
func (inst *Instruction) String() string {
	switch inst.Format {
	case FormatR:
		return fmt.Sprintf("%s rd=%d rs=%d rt=%d sa=%d",
			inst.Op, inst.R.Rd, inst.R.Rs, inst.R.Rt, inst.R.Shamt)
	case FormatI:
		return fmt.Sprintf("%s rt=%d rs=%d imm=0x%04x",
			inst.Op, inst.I.Rt, inst.I.Rs, inst.I.Imm)
	case FormatJ:
		return fmt.Sprintf("%s 0x%07x", inst.Op, inst.J.Target)
	}
	return fmt.Sprintf("unknown 0x%08x", inst.Word)
}
