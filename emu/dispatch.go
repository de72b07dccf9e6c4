package emu

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/insts"
)

// execFunc executes one decoded instruction and reports whether the
// program halted.
type execFunc func(e *Emulator, inst *insts.Instruction) bool

// dispatch maps every operation to its handler. OpUnknown has none and
// falls through as a no-op.
var dispatch = [insts.NumOps]execFunc{
	insts.OpSLL:  func(e *Emulator, i *insts.Instruction) bool { e.alu.SLL(i.R.Rd, i.R.Rt, i.R.Shamt); return false },
	insts.OpSRL:  func(e *Emulator, i *insts.Instruction) bool { e.alu.SRL(i.R.Rd, i.R.Rt, i.R.Shamt); return false },
	insts.OpSRA:  func(e *Emulator, i *insts.Instruction) bool { e.alu.SRA(i.R.Rd, i.R.Rt, i.R.Shamt); return false },
	insts.OpSLLV: func(e *Emulator, i *insts.Instruction) bool { e.alu.SLLV(i.R.Rd, i.R.Rt, i.R.Rs); return false },
	insts.OpSRLV: func(e *Emulator, i *insts.Instruction) bool { e.alu.SRLV(i.R.Rd, i.R.Rt, i.R.Rs); return false },
	insts.OpSRAV: func(e *Emulator, i *insts.Instruction) bool { e.alu.SRAV(i.R.Rd, i.R.Rt, i.R.Rs); return false },

	insts.OpJR:   func(e *Emulator, i *insts.Instruction) bool { return e.branchUnit.JR(i.R.Rs) },
	insts.OpJALR: func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.JALR(i.R.Rd, i.R.Rs); return false },

	insts.OpMOVZ: func(e *Emulator, i *insts.Instruction) bool { e.alu.MOVZ(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpMOVN: func(e *Emulator, i *insts.Instruction) bool { e.alu.MOVN(i.R.Rd, i.R.Rs, i.R.Rt); return false },

	insts.OpSYSCALL: execSyscall,
	insts.OpBREAK:   func(*Emulator, *insts.Instruction) bool { return true },

	insts.OpMFHI:  func(e *Emulator, i *insts.Instruction) bool { e.alu.MFHI(i.R.Rd); return false },
	insts.OpMTHI:  func(e *Emulator, i *insts.Instruction) bool { e.alu.MTHI(i.R.Rs); return false },
	insts.OpMFLO:  func(e *Emulator, i *insts.Instruction) bool { e.alu.MFLO(i.R.Rd); return false },
	insts.OpMTLO:  func(e *Emulator, i *insts.Instruction) bool { e.alu.MTLO(i.R.Rs); return false },
	insts.OpMULT:  func(e *Emulator, i *insts.Instruction) bool { e.alu.MULT(i.R.Rs, i.R.Rt); return false },
	insts.OpMULTU: func(e *Emulator, i *insts.Instruction) bool { e.alu.MULTU(i.R.Rs, i.R.Rt); return false },
	insts.OpDIV:   func(e *Emulator, i *insts.Instruction) bool { e.alu.DIV(i.R.Rs, i.R.Rt); return false },
	insts.OpDIVU:  func(e *Emulator, i *insts.Instruction) bool { e.alu.DIVU(i.R.Rs, i.R.Rt); return false },
	insts.OpMADD:  func(e *Emulator, i *insts.Instruction) bool { e.alu.MADD(i.R.Rs, i.R.Rt); return false },

	insts.OpADD:  func(e *Emulator, i *insts.Instruction) bool { e.alu.ADD(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpADDU: func(e *Emulator, i *insts.Instruction) bool { e.alu.ADDU(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpSUB:  func(e *Emulator, i *insts.Instruction) bool { e.alu.SUB(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpSUBU: func(e *Emulator, i *insts.Instruction) bool { e.alu.SUBU(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpAND:  func(e *Emulator, i *insts.Instruction) bool { e.alu.AND(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpOR:   func(e *Emulator, i *insts.Instruction) bool { e.alu.OR(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpXOR:  func(e *Emulator, i *insts.Instruction) bool { e.alu.XOR(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpNOR:  func(e *Emulator, i *insts.Instruction) bool { e.alu.NOR(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpSLT:  func(e *Emulator, i *insts.Instruction) bool { e.alu.SLT(i.R.Rd, i.R.Rs, i.R.Rt); return false },
	insts.OpSLTU: func(e *Emulator, i *insts.Instruction) bool { e.alu.SLTU(i.R.Rd, i.R.Rs, i.R.Rt); return false },

	insts.OpTGE:  func(e *Emulator, i *insts.Instruction) bool { e.alu.TGE(i.R.Rs, i.R.Rt); return false },
	insts.OpTGEU: func(e *Emulator, i *insts.Instruction) bool { e.alu.TGEU(i.R.Rs, i.R.Rt); return false },
	insts.OpTLT:  func(e *Emulator, i *insts.Instruction) bool { e.alu.TLT(i.R.Rs, i.R.Rt); return false },
	insts.OpTLTU: func(e *Emulator, i *insts.Instruction) bool { e.alu.TLTU(i.R.Rs, i.R.Rt); return false },
	insts.OpTEQ:  func(e *Emulator, i *insts.Instruction) bool { e.alu.TEQ(i.R.Rs, i.R.Rt); return false },
	insts.OpTNE:  func(e *Emulator, i *insts.Instruction) bool { e.alu.TNE(i.R.Rs, i.R.Rt); return false },

	insts.OpBLTZ: func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.BLTZ(i.I.Rs, i.I.SignExt()); return false },
	insts.OpBGEZ: func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.BGEZ(i.I.Rs, i.I.SignExt()); return false },
	insts.OpJ:    func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.J(i.J.Target); return false },
	insts.OpJAL:  func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.JAL(i.J.Target); return false },
	insts.OpBEQ:  func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.BEQ(i.I.Rs, i.I.Rt, i.I.SignExt()); return false },
	insts.OpBNE:  func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.BNE(i.I.Rs, i.I.Rt, i.I.SignExt()); return false },
	insts.OpBLEZ: func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.BLEZ(i.I.Rs, i.I.SignExt()); return false },
	insts.OpBGTZ: func(e *Emulator, i *insts.Instruction) bool { e.branchUnit.BGTZ(i.I.Rs, i.I.SignExt()); return false },

	insts.OpADDI:  func(e *Emulator, i *insts.Instruction) bool { e.alu.ADDI(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpADDIU: func(e *Emulator, i *insts.Instruction) bool { e.alu.ADDIU(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpSLTI:  func(e *Emulator, i *insts.Instruction) bool { e.alu.SLTI(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpSLTIU: func(e *Emulator, i *insts.Instruction) bool { e.alu.SLTIU(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpANDI:  func(e *Emulator, i *insts.Instruction) bool { e.alu.ANDI(i.I.Rt, i.I.Rs, i.I.ZeroExt()); return false },
	insts.OpORI:   func(e *Emulator, i *insts.Instruction) bool { e.alu.ORI(i.I.Rt, i.I.Rs, i.I.ZeroExt()); return false },
	insts.OpXORI:  func(e *Emulator, i *insts.Instruction) bool { e.alu.XORI(i.I.Rt, i.I.Rs, i.I.ZeroExt()); return false },
	insts.OpLUI:   func(e *Emulator, i *insts.Instruction) bool { e.alu.LUI(i.I.Rt, i.I.Imm); return false },

	insts.OpMFC0: func(e *Emulator, i *insts.Instruction) bool {
		e.state.WriteReg(i.R.Rt, e.state.CP0.Read(i.R.Rd))
		return false
	},
	insts.OpMTC0: execMTC0,
	insts.OpERET: func(e *Emulator, _ *insts.Instruction) bool { e.interrupts.ERET(); return false },

	insts.OpLB:  func(e *Emulator, i *insts.Instruction) bool { e.lsu.LB(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpLH:  func(e *Emulator, i *insts.Instruction) bool { e.lsu.LH(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpLWL: func(e *Emulator, i *insts.Instruction) bool { e.lsu.LWL(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpLW:  func(e *Emulator, i *insts.Instruction) bool { e.lsu.LW(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpLBU: func(e *Emulator, i *insts.Instruction) bool { e.lsu.LBU(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpLHU: func(e *Emulator, i *insts.Instruction) bool { e.lsu.LHU(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpLWR: func(e *Emulator, i *insts.Instruction) bool { e.lsu.LWR(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpSB:  func(e *Emulator, i *insts.Instruction) bool { e.lsu.SB(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpSH:  func(e *Emulator, i *insts.Instruction) bool { e.lsu.SH(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpSWL: func(e *Emulator, i *insts.Instruction) bool { e.lsu.SWL(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpSW:  func(e *Emulator, i *insts.Instruction) bool { e.lsu.SW(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
	insts.OpSWR: func(e *Emulator, i *insts.Instruction) bool { e.lsu.SWR(i.I.Rt, i.I.Rs, i.I.SignExt()); return false },
}

// execSyscall services the call, then either traps to the syscall vector
// with EPC at the syscall and Status.EXL set, or resumes at the next
// instruction.
func execSyscall(e *Emulator, _ *insts.Instruction) bool {
	e.syscallHandler.Handle()

	if e.syscallResume {
		return false
	}

	e.state.CP0.R[Cop0EPC] = e.state.PC
	e.state.CP0.R[Cop0Status] |= StatusEXL
	e.branchUnit.Redirect(e.syscallVector)

	return false
}

// execMTC0 writes a coprocessor 0 register. User mode may only write the
// registers on the allow-list; other writes are dropped.
func execMTC0(e *Emulator, i *insts.Instruction) bool {
	value := e.state.ReadReg(i.R.Rt)
	if !e.state.CP0.Write(e.state.Mode, i.R.Rd, value) {
		e.logger.WithFields(logrus.Fields{
			"pc":  e.state.PC,
			"reg": i.R.Rd,
		}).Debug("user-mode mtc0 dropped")
	}
	return false
}
