package emu

import "github.com/sirupsen/logrus"

// Console service numbers, selected by $v0.
const (
	SyscallPrintInt    uint32 = 1  // print $a0 as a signed decimal
	SyscallPrintString uint32 = 4  // print the zero-terminated string at $a0
	SyscallReadInt     uint32 = 5  // read a decimal integer into $v0
	SyscallReadBlock   uint32 = 8  // read up to $a1 bytes into memory at $a0
	SyscallPrintChar   uint32 = 11 // print the low byte of $a0
)

// maxStringScan bounds the length of a printed string.
const maxStringScan = 1 << 20

// readChunk is the largest block handed to the console at once.
const readChunk uint32 = 4096

// SyscallHandler services the syscall instruction.
type SyscallHandler interface {
	// Handle executes the service selected by the register state.
	Handle()
}

// ConsoleSyscallHandler bridges console services onto a Console. Unknown
// service numbers are ignored.
type ConsoleSyscallHandler struct {
	state   *State
	memory  *Memory
	console Console
	logger  *logrus.Entry
}

// NewConsoleSyscallHandler creates a console syscall bridge.
func NewConsoleSyscallHandler(
	state *State,
	memory *Memory,
	console Console,
	logger *logrus.Entry,
) *ConsoleSyscallHandler {
	return &ConsoleSyscallHandler{
		state:   state,
		memory:  memory,
		console: console,
		logger:  logger,
	}
}

// Handle implements SyscallHandler.
func (h *ConsoleSyscallHandler) Handle() {
	service := h.state.ReadReg(RegV0)

	var err error
	switch service {
	case SyscallPrintInt:
		err = h.console.WriteInt(h.state.ReadSigned(RegA0))
	case SyscallPrintString:
		err = h.console.WriteString(h.readString(h.state.ReadReg(RegA0)))
	case SyscallReadInt:
		err = h.readInt()
	case SyscallReadBlock:
		err = h.readBlock(h.state.ReadReg(RegA0), h.state.ReadReg(RegA1))
	case SyscallPrintChar:
		err = h.console.WriteChar(byte(h.state.ReadReg(RegA0)))
	default:
		h.logger.WithField("service", service).Debug("ignoring unknown syscall")
		return
	}

	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"pc":      h.state.PC,
			"service": service,
		}).Warn("syscall console I/O failed")
	}
}

// readString collects bytes from addr up to, not including, the first
// zero byte.
func (h *ConsoleSyscallHandler) readString(addr uint32) []byte {
	var s []byte
	for i := uint32(0); i < maxStringScan; i++ {
		if h.memory.IsMMIO(addr + i) {
			break
		}
		c := h.memory.Read8(addr + i)
		if c == 0 {
			break
		}
		s = append(s, c)
	}
	return s
}

func (h *ConsoleSyscallHandler) readInt() error {
	v, err := h.console.ReadInt()
	if err != nil {
		return err
	}
	h.state.WriteReg(RegV0, uint32(v))
	return nil
}

func (h *ConsoleSyscallHandler) readBlock(addr, length uint32) error {
	buf := make([]byte, min(length, readChunk))
	for length > 0 {
		chunk := buf[:min(length, readChunk)]
		n, err := h.console.ReadBlock(chunk)
		for i := 0; i < n; i++ {
			h.memory.Write8(addr+uint32(i), chunk[i])
		}
		if err != nil || n < len(chunk) {
			return err
		}
		addr += uint32(n)
		length -= uint32(n)
	}
	return nil
}
