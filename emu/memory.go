package emu

import (
	"errors"
	"fmt"
)

// ErrAddressOutOfRange is latched when an access falls beyond the backed
// region.
var ErrAddressOutOfRange = errors.New("address out of range")

const (
	pageBits = 12
	pageSize = 1 << pageBits
	pageMask = pageSize - 1
)

type page [pageSize]byte

// Memory is the flat 32-bit address space of the emulated machine.
//
// Addresses up to and including the MMIO boundary are backing storage,
// which is allocated one page at a time on first write. Addresses strictly
// above the boundary are forwarded to the port. Multi-byte values are
// big-endian. Unaligned accesses are permitted.
//
// A backing access at or beyond the memory limit does not touch storage.
// Instead the first such fault is latched and reported by Err.
type Memory struct {
	pages    map[uint32]*page
	boundary uint32
	limit    uint32
	port     Port
	err      error
	onWrite  func(addr uint32, n int)
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithMMIOBoundary sets the address above which accesses go to the port.
func WithMMIOBoundary(boundary uint32) MemoryOption {
	return func(m *Memory) {
		m.boundary = boundary
	}
}

// WithPort sets the memory-mapped I/O port handler.
func WithPort(port Port) MemoryOption {
	return func(m *Memory) {
		m.port = port
	}
}

// WithMemoryLimit sets the first address that is not backed. A limit of 0
// disables the check.
func WithMemoryLimit(limit uint32) MemoryOption {
	return func(m *Memory) {
		m.limit = limit
	}
}

// NewMemory creates an empty memory.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		pages:    make(map[uint32]*page),
		boundary: DefaultMMIOBoundary,
		limit:    DefaultMemoryLimit,
		port:     NopPort{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Boundary returns the MMIO boundary address.
func (m *Memory) Boundary() uint32 { return m.boundary }

// IsMMIO reports whether addr is forwarded to the port.
func (m *Memory) IsMMIO(addr uint32) bool {
	return addr > m.boundary
}

// IsBacked reports whether n bytes starting at addr are backing storage.
func (m *Memory) IsBacked(addr uint32, n int) bool {
	last := addr + uint32(n) - 1
	if last < addr || m.IsMMIO(addr) || m.IsMMIO(last) {
		return false
	}
	return m.limit == 0 || last < m.limit
}

// SetPort replaces the port handler.
func (m *Memory) SetPort(port Port) {
	m.port = port
}

// SetWriteHook installs a function called after every backing-store write.
func (m *Memory) SetWriteHook(hook func(addr uint32, n int)) {
	m.onWrite = hook
}

// Err returns the first latched access fault, if any.
func (m *Memory) Err() error {
	return m.err
}

// ClearErr forgets a latched access fault.
func (m *Memory) ClearErr() {
	m.err = nil
}

func (m *Memory) fault(addr uint32) {
	if m.err == nil {
		m.err = fmt.Errorf("%w: 0x%08x (limit 0x%08x)", ErrAddressOutOfRange, addr, m.limit)
	}
}

func (m *Memory) inLimit(addr uint32) bool {
	if m.limit != 0 && addr >= m.limit {
		m.fault(addr)
		return false
	}
	return true
}

func (m *Memory) readByte(addr uint32) byte {
	if !m.inLimit(addr) {
		return 0
	}
	p, ok := m.pages[addr>>pageBits]
	if !ok {
		return 0
	}
	return p[addr&pageMask]
}

func (m *Memory) writeByte(addr uint32, value byte) {
	if !m.inLimit(addr) {
		return
	}
	key := addr >> pageBits
	p, ok := m.pages[key]
	if !ok {
		p = new(page)
		m.pages[key] = p
	}
	p[addr&pageMask] = value
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) uint8 {
	if m.IsMMIO(addr) {
		return uint8(m.port.Load(Byte, addr))
	}
	return m.readByte(addr)
}

// Read16 reads a big-endian halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	if m.IsMMIO(addr) {
		return uint16(m.port.Load(Half, addr))
	}
	return uint16(m.readByte(addr))<<8 | uint16(m.readByte(addr+1))
}

// Read32 reads a big-endian word.
func (m *Memory) Read32(addr uint32) uint32 {
	if m.IsMMIO(addr) {
		return m.port.Load(Word, addr)
	}
	return uint32(m.readByte(addr))<<24 |
		uint32(m.readByte(addr+1))<<16 |
		uint32(m.readByte(addr+2))<<8 |
		uint32(m.readByte(addr+3))
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	if m.IsMMIO(addr) {
		m.port.Store(Byte, addr, uint32(value))
		return
	}
	m.writeByte(addr, value)
	m.notify(addr, 1)
}

// Write16 writes a big-endian halfword.
func (m *Memory) Write16(addr uint32, value uint16) {
	if m.IsMMIO(addr) {
		m.port.Store(Half, addr, uint32(value))
		return
	}
	m.writeByte(addr, byte(value>>8))
	m.writeByte(addr+1, byte(value))
	m.notify(addr, 2)
}

// Write32 writes a big-endian word.
func (m *Memory) Write32(addr uint32, value uint32) {
	if m.IsMMIO(addr) {
		m.port.Store(Word, addr, value)
		return
	}
	m.writeByte(addr, byte(value>>24))
	m.writeByte(addr+1, byte(value>>16))
	m.writeByte(addr+2, byte(value>>8))
	m.writeByte(addr+3, byte(value))
	m.notify(addr, 4)
}

func (m *Memory) notify(addr uint32, n int) {
	if m.onWrite != nil {
		m.onWrite(addr, n)
	}
}

// Peek copies n bytes of backing storage starting at addr. It never
// consults the port and never latches a fault; bytes outside the backed
// region read as zero.
func (m *Memory) Peek(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		a := addr + uint32(i)
		if m.limit != 0 && a >= m.limit {
			continue
		}
		if p, ok := m.pages[a>>pageBits]; ok {
			out[i] = p[a&pageMask]
		}
	}
	return out
}

// LoadProgram copies data into backing storage at addr.
func (m *Memory) LoadProgram(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !m.IsBacked(addr, len(data)) {
		return fmt.Errorf("%w: image of %d bytes at 0x%08x", ErrAddressOutOfRange, len(data), addr)
	}

	for i, b := range data {
		m.writeByte(addr+uint32(i), b)
	}
	m.notify(addr, len(data))

	return nil
}

// PageCount returns the number of allocated backing pages.
func (m *Memory) PageCount() int {
	return len(m.pages)
}

// Clear drops all backing pages and any latched fault.
func (m *Memory) Clear() {
	m.pages = make(map[uint32]*page)
	m.err = nil
}
