package emu_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
)

var _ = Describe("StreamConsole", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	It("should read characters in order", func() {
		c := emu.NewStreamConsole(strings.NewReader("ab"), out)

		Expect(c.ReadChar()).To(Equal(byte('a')))
		Expect(c.ReadChar()).To(Equal(byte('b')))
		_, err := c.ReadChar()
		Expect(err).To(HaveOccurred())
	})

	It("should parse integers after white space", func() {
		c := emu.NewStreamConsole(strings.NewReader(" 12\n\t-7 4294967295"), out)

		Expect(c.ReadInt()).To(Equal(int32(12)))
		Expect(c.ReadInt()).To(Equal(int32(-7)))
		Expect(c.ReadInt()).To(Equal(int32(-1)))
	})

	It("should fail on non-numeric input", func() {
		c := emu.NewStreamConsole(strings.NewReader("x"), out)

		_, err := c.ReadInt()

		Expect(err).To(MatchError(ContainSubstring("read int")))
	})

	It("should report a short block read at end of input", func() {
		c := emu.NewStreamConsole(strings.NewReader("abc"), out)
		buf := make([]byte, 8)

		n, err := c.ReadBlock(buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
		Expect(buf[:n]).To(Equal([]byte("abc")))
	})

	It("should write characters, strings and integers", func() {
		c := emu.NewStreamConsole(strings.NewReader(""), out)

		Expect(c.WriteString([]byte("n="))).To(Succeed())
		Expect(c.WriteInt(-2147483648)).To(Succeed())
		Expect(c.WriteChar('\n')).To(Succeed())

		Expect(out.String()).To(Equal("n=-2147483648\n"))
	})
})

var _ = Describe("ConsolePort", func() {
	var (
		out  *bytes.Buffer
		port *emu.ConsolePort
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		port = emu.NewConsolePort(emu.DefaultConsolePort,
			emu.NewStreamConsole(strings.NewReader("z"), out))
		port.Logger = quietLogger()
	})

	It("should move characters at its address only", func() {
		Expect(port.Load(emu.Byte, emu.DefaultConsolePort+4)).To(BeZero())
		Expect(port.Load(emu.Byte, emu.DefaultConsolePort)).To(Equal(uint32('z')))

		port.Store(emu.Word, emu.DefaultConsolePort, 0x1234_5641)
		port.Store(emu.Byte, emu.DefaultConsolePort+1, 'x')

		Expect(out.String()).To(Equal("A"))
	})

	It("should read zero once input is exhausted", func() {
		port.Load(emu.Byte, emu.DefaultConsolePort)

		Expect(port.Load(emu.Byte, emu.DefaultConsolePort)).To(BeZero())
	})

	It("should sit above the default MMIO boundary", func() {
		memory := emu.NewMemory()
		Expect(memory.IsMMIO(emu.DefaultConsolePort)).To(BeTrue())
		Expect(memory.IsMMIO(emu.DefaultMMIOBoundary)).To(BeFalse())
	})

	It("should be replaceable by a port that ignores everything", func() {
		var p emu.Port = emu.NopPort{}
		p.Store(emu.Word, 0, 1)
		Expect(p.Load(emu.Word, 0)).To(BeZero())
	})
})

var _ = Describe("Tick sources", func() {
	It("should count instructions from zero", func() {
		t := &emu.InstructionTicks{}

		Expect(t.Tick()).To(BeZero())
		Expect(t.Tick()).To(Equal(uint32(1)))

		t.Set(99)
		Expect(t.Tick()).To(Equal(uint32(99)))
	})

	It("should adapt functions", func() {
		var t emu.TickSource = emu.TickFunc(func() uint32 { return 7 })
		Expect(t.Tick()).To(Equal(uint32(7)))
	})

	It("should drive the timer from the configured source", func() {
		e := emu.NewEmulator(
			emu.WithLogger(quietLogger()),
			emu.WithConsole(emu.NewStreamConsole(nil, nil)),
			emu.WithTickSource(emu.TickFunc(func() uint32 { return 0x00ff0000 })),
		)

		e.Step()

		Expect(e.State().PC).To(Equal(emu.DefaultExceptionVector))
	})

	It("should never run backwards on the wall clock", func() {
		c := emu.NewWallClock()
		first := c.Tick()
		Expect(c.Tick()).To(BeNumerically(">=", first))
	})
})
