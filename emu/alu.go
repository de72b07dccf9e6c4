package emu

import (
	"math"

	"github.com/sirupsen/logrus"
)

// ALU implements MIPS32 integer arithmetic, logic, shift, multiply/divide
// and trap operations.
type ALU struct {
	state  *State
	logger *logrus.Entry
}

// NewALU creates a new ALU operating on the given state.
func NewALU(state *State, logger *logrus.Entry) *ALU {
	return &ALU{state: state, logger: logger}
}

func (a *ALU) reg(r uint8) uint32 { return a.state.ReadReg(r) }

func (a *ALU) set(r uint8, v uint32) { a.state.WriteReg(r, v) }

// SLL performs rd = rt << sa.
func (a *ALU) SLL(rd, rt, sa uint8) {
	a.set(rd, a.reg(rt)<<(sa&0x1f))
}

// SRL performs a logical right shift: rd = rt >> sa.
func (a *ALU) SRL(rd, rt, sa uint8) {
	a.set(rd, a.reg(rt)>>(sa&0x1f))
}

// SRA performs an arithmetic right shift: rd = rt >> sa.
func (a *ALU) SRA(rd, rt, sa uint8) {
	a.set(rd, uint32(int32(a.reg(rt))>>(sa&0x1f)))
}

// SLLV performs rd = rt << (rs & 31).
func (a *ALU) SLLV(rd, rt, rs uint8) {
	a.SLL(rd, rt, uint8(a.reg(rs)))
}

// SRLV performs rd = rt >> (rs & 31), logical.
func (a *ALU) SRLV(rd, rt, rs uint8) {
	a.SRL(rd, rt, uint8(a.reg(rs)))
}

// SRAV performs rd = rt >> (rs & 31), arithmetic.
func (a *ALU) SRAV(rd, rt, rs uint8) {
	a.SRA(rd, rt, uint8(a.reg(rs)))
}

// MOVZ performs rd = rs if rt == 0.
func (a *ALU) MOVZ(rd, rs, rt uint8) {
	if a.reg(rt) == 0 {
		a.set(rd, a.reg(rs))
	}
}

// MOVN performs rd = rs if rt != 0.
func (a *ALU) MOVN(rd, rs, rt uint8) {
	if a.reg(rt) != 0 {
		a.set(rd, a.reg(rs))
	}
}

// MFHI performs rd = HI.
func (a *ALU) MFHI(rd uint8) { a.set(rd, a.state.HI) }

// MTHI performs HI = rs.
func (a *ALU) MTHI(rs uint8) { a.state.HI = a.reg(rs) }

// MFLO performs rd = LO.
func (a *ALU) MFLO(rd uint8) { a.set(rd, a.state.LO) }

// MTLO performs LO = rs.
func (a *ALU) MTLO(rs uint8) { a.state.LO = a.reg(rs) }

// MULT performs the signed 64-bit product HI:LO = rs * rt.
func (a *ALU) MULT(rs, rt uint8) {
	p := int64(int32(a.reg(rs))) * int64(int32(a.reg(rt)))
	a.state.SetHiLo(uint64(p))
}

// MULTU performs the unsigned 64-bit product HI:LO = rs * rt.
func (a *ALU) MULTU(rs, rt uint8) {
	a.state.SetHiLo(uint64(a.reg(rs)) * uint64(a.reg(rt)))
}

// MADD accumulates the signed product into HI:LO.
func (a *ALU) MADD(rs, rt uint8) {
	p := int64(int32(a.reg(rs))) * int64(int32(a.reg(rt)))
	a.state.SetHiLo(uint64(int64(a.state.HiLo()) + p))
}

// DIV performs signed division: LO = rs / rt, HI = rs % rt.
// A zero divisor leaves HI and LO unchanged. MinInt32 / -1 wraps.
func (a *ALU) DIV(rs, rt uint8) {
	n, d := int32(a.reg(rs)), int32(a.reg(rt))
	if d == 0 {
		a.divideByZero(rs, rt)
		return
	}
	if n == math.MinInt32 && d == -1 {
		a.state.LO = uint32(n)
		a.state.HI = 0
		return
	}
	a.state.LO = uint32(n / d)
	a.state.HI = uint32(n % d)
}

// DIVU performs unsigned division: LO = rs / rt, HI = rs % rt.
// A zero divisor leaves HI and LO unchanged.
func (a *ALU) DIVU(rs, rt uint8) {
	n, d := a.reg(rs), a.reg(rt)
	if d == 0 {
		a.divideByZero(rs, rt)
		return
	}
	a.state.LO = n / d
	a.state.HI = n % d
}

func (a *ALU) divideByZero(rs, rt uint8) {
	a.logger.WithFields(logrus.Fields{
		"pc": a.state.PC,
		"rs": rs,
		"rt": rt,
	}).Warn("division by zero")
}

// addOverflows reports signed overflow of x + y = sum: operands agree in
// sign and the sum does not.
func addOverflows(x, y, sum uint32) bool {
	return (^(x ^ y) & (x ^ sum) & 0x80000000) != 0
}

// subOverflows reports signed overflow of x - y = diff.
func subOverflows(x, y, diff uint32) bool {
	return ((x ^ y) & (x ^ diff) & 0x80000000) != 0
}

// ADD performs rd = rs + rt, raising an overflow exception instead of
// writing rd when the signed sum does not fit.
func (a *ALU) ADD(rd, rs, rt uint8) {
	x, y := a.reg(rs), a.reg(rt)
	a.addChecked(rd, x, y)
}

// ADDU performs rd = rs + rt with wraparound.
func (a *ALU) ADDU(rd, rs, rt uint8) {
	a.set(rd, a.reg(rs)+a.reg(rt))
}

// SUB performs rd = rs - rt with signed overflow detection.
func (a *ALU) SUB(rd, rs, rt uint8) {
	x, y := a.reg(rs), a.reg(rt)
	diff := x - y
	if subOverflows(x, y, diff) {
		a.state.Exception = ExcOverflow
		return
	}
	a.set(rd, diff)
}

// SUBU performs rd = rs - rt with wraparound.
func (a *ALU) SUBU(rd, rs, rt uint8) {
	a.set(rd, a.reg(rs)-a.reg(rt))
}

// AND performs rd = rs & rt.
func (a *ALU) AND(rd, rs, rt uint8) { a.set(rd, a.reg(rs)&a.reg(rt)) }

// OR performs rd = rs | rt.
func (a *ALU) OR(rd, rs, rt uint8) { a.set(rd, a.reg(rs)|a.reg(rt)) }

// XOR performs rd = rs ^ rt.
func (a *ALU) XOR(rd, rs, rt uint8) { a.set(rd, a.reg(rs)^a.reg(rt)) }

// NOR performs rd = ^(rs | rt).
func (a *ALU) NOR(rd, rs, rt uint8) { a.set(rd, ^(a.reg(rs) | a.reg(rt))) }

// SLT performs rd = (rs < rt), signed.
func (a *ALU) SLT(rd, rs, rt uint8) {
	a.set(rd, b2u(int32(a.reg(rs)) < int32(a.reg(rt))))
}

// SLTU performs rd = (rs < rt), unsigned.
func (a *ALU) SLTU(rd, rs, rt uint8) {
	a.set(rd, b2u(a.reg(rs) < a.reg(rt)))
}

// trapIf sets the pending exception to code when cond holds.
func (a *ALU) trapIf(cond bool, code ExceptionCode) {
	if cond {
		a.state.Exception = code
	}
}

// TGE traps if rs >= rt, signed.
func (a *ALU) TGE(rs, rt uint8) {
	a.trapIf(int32(a.reg(rs)) >= int32(a.reg(rt)), ExcTrap)
}

// TGEU traps if rs >= rt, unsigned.
func (a *ALU) TGEU(rs, rt uint8) {
	a.trapIf(a.reg(rs) >= a.reg(rt), ExcTrap)
}

// TLT traps if rs < rt, signed.
func (a *ALU) TLT(rs, rt uint8) {
	a.trapIf(int32(a.reg(rs)) < int32(a.reg(rt)), ExcTrap)
}

// TLTU traps if rs < rt, unsigned.
func (a *ALU) TLTU(rs, rt uint8) {
	a.trapIf(a.reg(rs) < a.reg(rt), ExcTrap)
}

// TEQ traps if rs == rt.
func (a *ALU) TEQ(rs, rt uint8) {
	a.trapIf(a.reg(rs) == a.reg(rt), ExcOverflow)
}

// TNE traps if rs != rt.
func (a *ALU) TNE(rs, rt uint8) {
	a.trapIf(a.reg(rs) != a.reg(rt), ExcOverflow)
}

// ADDI performs rt = rs + imm with signed overflow detection. imm is
// already sign-extended.
func (a *ALU) ADDI(rt, rs uint8, imm uint32) {
	a.addChecked(rt, a.reg(rs), imm)
}

// ADDIU performs rt = rs + imm with wraparound.
func (a *ALU) ADDIU(rt, rs uint8, imm uint32) {
	a.set(rt, a.reg(rs)+imm)
}

// SLTI performs rt = (rs < imm), signed.
func (a *ALU) SLTI(rt, rs uint8, imm uint32) {
	a.set(rt, b2u(int32(a.reg(rs)) < int32(imm)))
}

// SLTIU performs rt = (rs < imm), unsigned, with imm sign-extended first.
func (a *ALU) SLTIU(rt, rs uint8, imm uint32) {
	a.set(rt, b2u(a.reg(rs) < imm))
}

// ANDI performs rt = rs & imm. imm is zero-extended.
func (a *ALU) ANDI(rt, rs uint8, imm uint32) { a.set(rt, a.reg(rs)&imm) }

// ORI performs rt = rs | imm. imm is zero-extended.
func (a *ALU) ORI(rt, rs uint8, imm uint32) { a.set(rt, a.reg(rs)|imm) }

// XORI performs rt = rs ^ imm. imm is zero-extended.
func (a *ALU) XORI(rt, rs uint8, imm uint32) { a.set(rt, a.reg(rs)^imm) }

// LUI performs rt = imm << 16.
func (a *ALU) LUI(rt uint8, imm uint16) { a.set(rt, uint32(imm)<<16) }

func (a *ALU) addChecked(rd uint8, x, y uint32) {
	sum := x + y
	if addOverflows(x, y, sum) {
		a.state.Exception = ExcOverflow
		return
	}
	a.set(rd, sum)
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
