package emu

import (
	"fmt"
	"io"
	"strings"
)

// DumpState writes a human-readable listing of the processor registers.
func DumpState(w io.Writer, s *State) error {
	var b strings.Builder

	b.WriteString("--------PROCESSOR REGISTERS--------\n")
	fmt.Fprintf(&b, "$pc: %d|0x%x\n", s.PC, s.PC)
	for i, name := range RegNames {
		fmt.Fprintf(&b, "$%s: %d|0x%x\n", name, s.R[i], s.R[i])
	}
	fmt.Fprintf(&b, "$hi: %d|0x%x\n", s.HI, s.HI)
	fmt.Fprintf(&b, "$lo: %d|0x%x\n", s.LO, s.LO)

	b.WriteString("\n--------COPROCESSOR 0--------\n")
	for i, name := range Cop0Names {
		fmt.Fprintf(&b, "$%s: %d|0x%x\n", name, s.CP0.R[i], s.CP0.R[i])
	}
	fmt.Fprintf(&b, "mode: %s exception: %d\n", s.Mode, s.Exception)

	_, err := io.WriteString(w, b.String())
	return err
}

// HexDump writes n bytes of backing memory starting at base, sixteen per
// line, with offsets and a printable-ASCII column.
func HexDump(w io.Writer, mem *Memory, base uint32, n int) error {
	data := mem.Peek(base, n)

	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		line := data[off:min(off+16, len(data))]

		fmt.Fprintf(&b, "  %08x ", base+uint32(off))
		for i := 0; i < 16; i++ {
			if i < len(line) {
				fmt.Fprintf(&b, " %02x", line[i])
			} else {
				b.WriteString("   ")
			}
		}

		b.WriteString("  ")
		for _, c := range line {
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
