package emu

import "github.com/sirupsen/logrus"

// Width is the size in bytes of a memory-mapped access.
type Width uint8

// Access widths.
const (
	Byte Width = 1
	Half Width = 2
	Word Width = 4
)

// Port handles accesses above the MMIO boundary.
type Port interface {
	Load(width Width, addr uint32) uint32
	Store(width Width, addr uint32, value uint32)
}

// NopPort reads zero and ignores stores.
type NopPort struct{}

// Load implements Port.
func (NopPort) Load(Width, uint32) uint32 { return 0 }

// Store implements Port.
func (NopPort) Store(Width, uint32, uint32) {}

// ConsolePort maps a single address onto a character console. Loads from
// the address read one character; stores write the low byte. Every other
// address reads zero and ignores stores.
type ConsolePort struct {
	Addr    uint32
	Console Console
	Logger  *logrus.Entry
}

// NewConsolePort creates a ConsolePort at addr.
func NewConsolePort(addr uint32, console Console) *ConsolePort {
	return &ConsolePort{
		Addr:    addr,
		Console: console,
		Logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Load implements Port.
func (p *ConsolePort) Load(width Width, addr uint32) uint32 {
	if addr != p.Addr {
		return 0
	}

	c, err := p.Console.ReadChar()
	if err != nil {
		p.Logger.WithError(err).WithField("addr", addr).Warn("console port read failed")
		return 0
	}

	return uint32(c)
}

// Store implements Port.
func (p *ConsolePort) Store(width Width, addr uint32, value uint32) {
	if addr != p.Addr {
		return
	}

	if err := p.Console.WriteChar(byte(value)); err != nil {
		p.Logger.WithError(err).WithField("addr", addr).Warn("console port write failed")
	}
}
