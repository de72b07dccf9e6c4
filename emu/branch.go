package emu

// BranchUnit implements MIPS32 branches and jumps.
//
// Every redirect stores target-4 into PC so that the unconditional PC
// advance at the end of the step lands exactly on the target. There is no
// delay slot.
type BranchUnit struct {
	state *State
}

// NewBranchUnit creates a new BranchUnit operating on the given state.
func NewBranchUnit(state *State) *BranchUnit {
	return &BranchUnit{state: state}
}

// Redirect makes target the next instruction executed.
func (b *BranchUnit) Redirect(target uint32) {
	b.state.PC = target - 4
}

// branchIf redirects to PC + 4 + (offset << 2) when cond holds. offset is
// the sign-extended immediate.
func (b *BranchUnit) branchIf(cond bool, offset uint32) {
	if cond {
		b.Redirect(b.state.PC + 4 + offset<<2)
	}
}

// BEQ branches if rs == rt.
func (b *BranchUnit) BEQ(rs, rt uint8, offset uint32) {
	b.branchIf(b.state.ReadReg(rs) == b.state.ReadReg(rt), offset)
}

// BNE branches if rs != rt.
func (b *BranchUnit) BNE(rs, rt uint8, offset uint32) {
	b.branchIf(b.state.ReadReg(rs) != b.state.ReadReg(rt), offset)
}

// BLEZ branches if rs <= 0.
func (b *BranchUnit) BLEZ(rs uint8, offset uint32) {
	b.branchIf(b.state.ReadSigned(rs) <= 0, offset)
}

// BGTZ branches if rs > 0.
func (b *BranchUnit) BGTZ(rs uint8, offset uint32) {
	b.branchIf(b.state.ReadSigned(rs) > 0, offset)
}

// BLTZ branches if rs < 0.
func (b *BranchUnit) BLTZ(rs uint8, offset uint32) {
	b.branchIf(b.state.ReadSigned(rs) < 0, offset)
}

// BGEZ branches if rs >= 0.
func (b *BranchUnit) BGEZ(rs uint8, offset uint32) {
	b.branchIf(b.state.ReadSigned(rs) >= 0, offset)
}

// JumpTarget builds the absolute target of j/jal at address pc from the
// 26-bit field.
func JumpTarget(pc, field uint32) uint32 {
	return (pc+4)&0xf0000000 | (field&0x3ffffff)<<2
}

// J jumps within the current 256MB region.
func (b *BranchUnit) J(field uint32) {
	b.Redirect(JumpTarget(b.state.PC, field))
}

// JAL jumps like J and links the return address into $ra.
func (b *BranchUnit) JAL(field uint32) {
	b.state.WriteReg(RegRA, b.state.PC+4)
	b.J(field)
}

// JR jumps to the address in rs. It reports true when rs is $ra, which
// the engine treats as program termination.
func (b *BranchUnit) JR(rs uint8) bool {
	b.Redirect(b.state.ReadReg(rs))
	return rs == RegRA
}

// JALR jumps to the address in rs and links the return address into rd.
func (b *BranchUnit) JALR(rd, rs uint8) {
	target := b.state.ReadReg(rs)
	b.state.WriteReg(rd, b.state.PC+4)
	b.Redirect(target)
}
