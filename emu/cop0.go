package emu

// Coprocessor 0 register indices used by the engine.
const (
	Cop0Count   = 9
	Cop0Compare = 11
	Cop0Status  = 12
	Cop0Cause   = 13
	Cop0EPC     = 14
)

// Status register bits.
const (
	StatusIE       uint32 = 1 << 0  // interrupts globally enabled
	StatusEXL      uint32 = 1 << 1  // exception level
	StatusUM       uint32 = 1 << 4  // user mode
	StatusTimerPnd uint32 = 1 << 15 // timer interrupt pending
)

// Cause register layout.
const (
	CauseExcCodeShift        = 2
	CauseExcCodeMask  uint32 = 0x1f << CauseExcCodeShift
)

// Cop0Names holds display names for the coprocessor 0 registers.
var Cop0Names = [32]string{
	"cp0", "cp1", "cp2", "cp3", "cp4", "cp5", "cp6", "cp7",
	"cp8", "count", "cp10", "compare", "status", "cause", "epc", "cp15",
	"cp16", "cp17", "cp18", "cp19", "cp20", "cp21", "cp22", "cp23",
	"cp24", "cp25", "cp26", "cp27", "cp28", "cp29", "cp30", "cp31",
}

// userWritable lists the coprocessor 0 registers user mode may write.
var userWritable = [32]bool{
	0: true, 1: true, 2: true, 4: true, 8: true,
	10: true, 12: true, 13: true, 14: true, 15: true,
}

// Mode is the processor privilege level.
type Mode uint8

// Privilege levels.
const (
	ModeKernel Mode = 0
	ModeUser   Mode = 1
)

func (m Mode) String() string {
	if m == ModeUser {
		return "user"
	}
	return "kernel"
}

// ModeFromStatus derives the privilege level from a status value.
// User mode requires UM set and EXL clear.
func ModeFromStatus(status uint32) Mode {
	if status&StatusUM != 0 && status&StatusEXL == 0 {
		return ModeUser
	}
	return ModeKernel
}

// Cop0 is the privileged control register file.
type Cop0 struct {
	R [32]uint32
}

// Read returns a coprocessor 0 register. Reads are never restricted.
func (c *Cop0) Read(reg uint8) uint32 {
	return c.R[reg&0x1f]
}

// Write stores value into reg if mode permits it and reports whether the
// write took effect.
func (c *Cop0) Write(mode Mode, reg uint8, value uint32) bool {
	reg &= 0x1f
	if mode == ModeUser && !userWritable[reg] {
		return false
	}
	c.R[reg] = value
	return true
}

// Status returns the status register.
func (c *Cop0) Status() uint32 { return c.R[Cop0Status] }

// ExcCode returns the exception code field of the cause register.
func (c *Cop0) ExcCode() ExceptionCode {
	return ExceptionCode((c.R[Cop0Cause] & CauseExcCodeMask) >> CauseExcCodeShift)
}
