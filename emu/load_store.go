package emu

// LoadStoreUnit implements MIPS32 load and store operations. Effective
// addresses are rs + sign-extended offset.
type LoadStoreUnit struct {
	state  *State
	memory *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// state and memory.
func NewLoadStoreUnit(state *State, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		state:  state,
		memory: memory,
	}
}

// Addr computes the effective address rs + offset.
func (lsu *LoadStoreUnit) Addr(rs uint8, offset uint32) uint32 {
	return lsu.state.ReadReg(rs) + offset
}

// LB loads a sign-extended byte.
func (lsu *LoadStoreUnit) LB(rt, rs uint8, offset uint32) {
	v := lsu.memory.Read8(lsu.Addr(rs, offset))
	lsu.state.WriteReg(rt, uint32(int32(int8(v))))
}

// LBU loads a zero-extended byte.
func (lsu *LoadStoreUnit) LBU(rt, rs uint8, offset uint32) {
	lsu.state.WriteReg(rt, uint32(lsu.memory.Read8(lsu.Addr(rs, offset))))
}

// LH loads a sign-extended halfword.
func (lsu *LoadStoreUnit) LH(rt, rs uint8, offset uint32) {
	v := lsu.memory.Read16(lsu.Addr(rs, offset))
	lsu.state.WriteReg(rt, uint32(int32(int16(v))))
}

// LHU loads a zero-extended halfword.
func (lsu *LoadStoreUnit) LHU(rt, rs uint8, offset uint32) {
	lsu.state.WriteReg(rt, uint32(lsu.memory.Read16(lsu.Addr(rs, offset))))
}

// LW loads a word.
func (lsu *LoadStoreUnit) LW(rt, rs uint8, offset uint32) {
	lsu.state.WriteReg(rt, lsu.memory.Read32(lsu.Addr(rs, offset)))
}

// LWL loads the bytes from the effective address up to the end of its
// aligned word into the most significant bytes of rt.
func (lsu *LoadStoreUnit) LWL(rt, rs uint8, offset uint32) {
	addr := lsu.Addr(rs, offset)
	shift := 8 * (addr & 3)
	w := lsu.memory.Read32(addr &^ 3)
	keep := uint32(1)<<shift - 1
	lsu.state.WriteReg(rt, w<<shift|lsu.state.ReadReg(rt)&keep)
}

// LWR loads the bytes from the start of the aligned word up to the
// effective address into the least significant bytes of rt.
func (lsu *LoadStoreUnit) LWR(rt, rs uint8, offset uint32) {
	addr := lsu.Addr(rs, offset)
	shift := 8 * (3 - addr&3)
	w := lsu.memory.Read32(addr &^ 3)
	keep := ^(uint32(0xffffffff) >> shift)
	lsu.state.WriteReg(rt, w>>shift|lsu.state.ReadReg(rt)&keep)
}

// SB stores the low byte of rt.
func (lsu *LoadStoreUnit) SB(rt, rs uint8, offset uint32) {
	lsu.memory.Write8(lsu.Addr(rs, offset), uint8(lsu.state.ReadReg(rt)))
}

// SH stores the low halfword of rt.
func (lsu *LoadStoreUnit) SH(rt, rs uint8, offset uint32) {
	lsu.memory.Write16(lsu.Addr(rs, offset), uint16(lsu.state.ReadReg(rt)))
}

// SW stores rt.
func (lsu *LoadStoreUnit) SW(rt, rs uint8, offset uint32) {
	lsu.memory.Write32(lsu.Addr(rs, offset), lsu.state.ReadReg(rt))
}

// SWL stores the most significant bytes of rt from the effective address
// up to the end of its aligned word.
func (lsu *LoadStoreUnit) SWL(rt, rs uint8, offset uint32) {
	addr := lsu.Addr(rs, offset)
	aligned := addr &^ 3
	shift := 8 * (addr & 3)
	w := lsu.merge(aligned)
	keep := ^(uint32(0xffffffff) >> shift)
	lsu.memory.Write32(aligned, lsu.state.ReadReg(rt)>>shift|w&keep)
}

// SWR stores the least significant bytes of rt from the start of the
// aligned word up to the effective address.
func (lsu *LoadStoreUnit) SWR(rt, rs uint8, offset uint32) {
	addr := lsu.Addr(rs, offset)
	aligned := addr &^ 3
	shift := 8 * (3 - addr&3)
	w := lsu.merge(aligned)
	keep := uint32(1)<<shift - 1
	lsu.memory.Write32(aligned, lsu.state.ReadReg(rt)<<shift|w&keep)
}

// merge returns the word that partial stores combine with. Port addresses
// are never read back, so a partial store there forwards only its own bytes.
func (lsu *LoadStoreUnit) merge(aligned uint32) uint32 {
	if lsu.memory.IsMMIO(aligned) {
		return 0
	}
	return lsu.memory.Read32(aligned)
}
