// Package emu provides functional MIPS32 emulation.
package emu

// Conventional register numbers used by the engine.
const (
	RegZero = 0
	RegV0   = 2
	RegA0   = 4
	RegA1   = 5
	RegSP   = 29
	RegRA   = 31
)

// RegNames holds the ABI names of the general-purpose registers.
var RegNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RegFile represents the MIPS32 integer register file.
type RegFile struct {
	// PC is the program counter.
	PC uint32

	// R holds general-purpose registers $0-$31.
	// R[0] is forced back to zero at the end of every step.
	R [32]uint32

	// HI and LO hold multiply and divide results.
	HI uint32
	LO uint32
}

// ReadReg reads a register value. Indices >= 32 read as 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg >= 32 {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Indices >= 32 are ignored.
// A write to $0 is kept until the end of the step, then discarded.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg >= 32 {
		return
	}
	r.R[reg] = value
}

// ReadSigned reads a register as a two's-complement value.
func (r *RegFile) ReadSigned(reg uint8) int32 {
	return int32(r.ReadReg(reg))
}

// HiLo returns HI:LO as one 64-bit value.
func (r *RegFile) HiLo() uint64 {
	return uint64(r.HI)<<32 | uint64(r.LO)
}

// SetHiLo splits v into HI (upper half) and LO (lower half).
func (r *RegFile) SetHiLo(v uint64) {
	r.HI = uint32(v >> 32)
	r.LO = uint32(v)
}
