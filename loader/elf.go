// Package loader reads program images: raw binaries and 32-bit big-endian
// MIPS ELF executables.
package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sarchlab/mipsim/emu"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// ErrNotMIPS is returned for ELF files built for another machine or layout.
var ErrNotMIPS = errors.New("not a 32-bit big-endian MIPS ELF file")

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Segment is a contiguous piece of the image.
type Segment struct {
	// VirtAddr is the address where this segment is loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program is an image ready to be copied into emulator memory.
type Program struct {
	// EntryPoint is where execution begins.
	EntryPoint uint32
	// Segments contains all loadable segments.
	Segments []Segment
}

// Load reads the file at path. Files that start with the ELF magic are
// parsed as MIPS ELF executables; anything else is a raw image placed at
// entry.
func Load(path string, entry uint32) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if bytes.HasPrefix(data, elfMagic) {
		return ParseELF(bytes.NewReader(data))
	}

	return Raw(data, entry), nil
}

// Raw wraps a flat binary loaded at entry, which is also the entry point.
func Raw(image []byte, entry uint32) *Program {
	return &Program{
		EntryPoint: entry,
		Segments: []Segment{{
			VirtAddr: entry,
			Data:     image,
			MemSize:  uint32(len(image)),
			Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}
}

// ParseELF parses a 32-bit big-endian MIPS ELF executable.
func ParseELF(r io.ReaderAt) (*Program, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 || f.Data != elf.ELFDATA2MSB || f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("%w (class %v, data %v, machine %v)",
			ErrNotMIPS, f.Class, f.Data, f.Machine)
	}

	prog := &Program{EntryPoint: uint32(f.Entry)}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		if phdr.Memsz < phdr.Filesz || phdr.Vaddr+phdr.Memsz > math.MaxUint32+1 {
			return nil, fmt.Errorf("segment at 0x%x has invalid size", phdr.Vaddr)
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// Size returns the total in-memory size of all segments.
func (p *Program) Size() uint64 {
	var n uint64
	for _, seg := range p.Segments {
		n += uint64(seg.MemSize)
	}
	return n
}

// LoadInto copies every segment into the emulator's memory, zero-fills
// BSS, and sets the PC to the entry point.
func (p *Program) LoadInto(e *emu.Emulator) error {
	memory := e.Memory()

	for _, seg := range p.Segments {
		if err := memory.LoadProgram(seg.VirtAddr, seg.Data); err != nil {
			return fmt.Errorf("segment at 0x%08x: %w", seg.VirtAddr, err)
		}

		bss := seg.MemSize - uint32(len(seg.Data))
		if bss > 0 {
			addr := seg.VirtAddr + uint32(len(seg.Data))
			if err := memory.LoadProgram(addr, make([]byte, bss)); err != nil {
				return fmt.Errorf("bss at 0x%08x: %w", addr, err)
			}
		}
	}

	e.State().PC = p.EntryPoint
	return nil
}
