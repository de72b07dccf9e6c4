package emu

// ExceptionCode is a pending synchronous exception. Zero means none.
type ExceptionCode uint32

// Exception codes raised by the engine.
const (
	ExcNone     ExceptionCode = 0
	ExcTrap     ExceptionCode = 1
	ExcOverflow ExceptionCode = 12
)

// Interrupt line flags.
const (
	LineArmed   uint8 = 0x00
	LineLatched uint8 = 0x01
	LineMasked  uint8 = 0xff
)

// NumInterruptLines is the number of hardware interrupt lines.
const NumInterruptLines = 8

// TimerLine is the hardware line the count/compare timer raises.
const TimerLine = 8

// State is the complete architectural state of the processor.
type State struct {
	RegFile

	CP0 Cop0

	// Interrupts holds one flag per hardware line; index i is line i+1.
	Interrupts [NumInterruptLines]uint8

	// Exception is the pending synchronous exception.
	Exception ExceptionCode

	// Mode is recomputed from the status register every step.
	Mode Mode
}

// NewState returns a state with the reset values of the reference machine.
func NewState(opts ...StateOption) *State {
	s := &State{}
	s.R[RegSP] = DefaultStackPointer
	s.CP0.R[Cop0Compare] = DefaultTimerCompare
	s.CP0.R[Cop0Status] = DefaultStatus
	s.Mode = ModeFromStatus(s.CP0.R[Cop0Status])

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StateOption configures a State at construction.
type StateOption func(*State)

// WithEntryPoint sets the initial program counter.
func WithEntryPoint(pc uint32) StateOption {
	return func(s *State) {
		s.PC = pc
	}
}

// WithInitialSP sets the initial stack pointer.
func WithInitialSP(sp uint32) StateOption {
	return func(s *State) {
		s.R[RegSP] = sp
	}
}

// WithInitialStatus sets the initial status register.
func WithInitialStatus(status uint32) StateOption {
	return func(s *State) {
		s.CP0.R[Cop0Status] = status
		s.Mode = ModeFromStatus(status)
	}
}

// WithTimerCompare sets the initial timer compare register.
func WithTimerCompare(compare uint32) StateOption {
	return func(s *State) {
		s.CP0.R[Cop0Compare] = compare
	}
}

// Clone returns a copy of the state.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// Reset values of the reference machine.
const (
	DefaultStackPointer    uint32 = (1 << 24) - 4096
	DefaultTimerCompare    uint32 = 0x00ff0000
	DefaultStatus          uint32 = 0x0000ff01
	DefaultExceptionVector uint32 = 0x10000180
	DefaultSyscallVector   uint32 = 0x0bfc0380
	DefaultMMIOBoundary    uint32 = 0x3e000000
	DefaultConsolePort     uint32 = 0x3e000004
	DefaultMemoryLimit     uint32 = 0x40000000
)
