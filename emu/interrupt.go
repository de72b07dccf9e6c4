package emu

import "github.com/sirupsen/logrus"

// InterruptUnit implements the count/compare timer and exception entry.
type InterruptUnit struct {
	state  *State
	vector uint32
	logger *logrus.Entry
}

// NewInterruptUnit creates an InterruptUnit that enters exceptions at
// vector.
func NewInterruptUnit(state *State, vector uint32, logger *logrus.Entry) *InterruptUnit {
	return &InterruptUnit{
		state:  state,
		vector: vector,
		logger: logger,
	}
}

// Vector returns the exception vector address.
func (u *InterruptUnit) Vector() uint32 { return u.vector }

// EndOfStep runs the per-step bookkeeping: re-arms or masks every line
// from Status.IE, recomputes the privilege mode, loads the count register
// with tick, fires the timer on count == compare, and enters any pending
// synchronous exception.
func (u *InterruptUnit) EndOfStep(tick uint32) {
	s := u.state
	status := s.CP0.Status()

	flag := LineMasked
	if status&StatusIE != 0 {
		flag = LineArmed
	}
	for i := range s.Interrupts {
		s.Interrupts[i] = flag
	}

	s.Mode = ModeFromStatus(status)

	s.CP0.R[Cop0Count] = tick
	if s.CP0.R[Cop0Count] == s.CP0.R[Cop0Compare] {
		u.Raise(TimerLine, ExcNone)
	}

	if s.Exception != ExcNone {
		u.Raise(0, s.Exception)
	}
}

// Raise signals hardware line (1-8) when code is ExcNone, or the
// synchronous exception code otherwise.
//
// A masked hardware line is ignored. The cause register records the
// event; the previous exception code is overwritten. Unless Status.EXL is
// already set, EPC receives the current PC, EXL is set, and execution
// continues at the exception vector.
func (u *InterruptUnit) Raise(line int, code ExceptionCode) {
	s := u.state

	if code == ExcNone {
		if line < 1 || line > NumInterruptLines {
			return
		}
		if s.Interrupts[line-1] == LineMasked {
			return
		}
		s.Interrupts[line-1] = LineLatched

		if line == TimerLine {
			s.CP0.R[Cop0Status] |= StatusTimerPnd
		}
		s.CP0.R[Cop0Cause] |= 1 << uint(line+7)
	} else {
		cause := s.CP0.R[Cop0Cause] &^ CauseExcCodeMask
		s.CP0.R[Cop0Cause] = cause | uint32(code)<<CauseExcCodeShift&CauseExcCodeMask
	}

	if s.CP0.R[Cop0Status]&StatusEXL != 0 {
		return
	}

	u.logger.WithFields(logrus.Fields{
		"pc":   s.PC,
		"line": line,
		"code": code,
	}).Debug("exception entry")

	s.CP0.R[Cop0EPC] = s.PC
	s.CP0.R[Cop0Status] |= StatusEXL
	s.Mode = ModeKernel
	s.PC = u.vector - 4
}

// ERET returns from an exception: clears the pending exception and
// Status.EXL, resumes after the instruction recorded in EPC, and clears
// EPC.
func (u *InterruptUnit) ERET() {
	s := u.state
	s.Exception = ExcNone
	s.CP0.R[Cop0Status] &^= StatusEXL
	s.PC = s.CP0.R[Cop0EPC]
	s.CP0.R[Cop0EPC] = 0
}
