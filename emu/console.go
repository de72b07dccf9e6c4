package emu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Console is the character I/O device behind the syscall bridge and the
// console port.
type Console interface {
	// ReadChar blocks until one byte of input is available.
	ReadChar() (byte, error)

	// ReadBlock reads up to len(buf) bytes, stopping early only at end of
	// input, and returns the number of bytes read.
	ReadBlock(buf []byte) (int, error)

	// ReadInt parses one decimal integer, skipping leading white space.
	ReadInt() (int32, error)

	WriteChar(c byte) error
	WriteString(s []byte) error
	WriteInt(v int32) error
}

// StreamConsole is a Console over a byte stream pair.
type StreamConsole struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStreamConsole creates a console reading from in and writing to out.
func NewStreamConsole(in io.Reader, out io.Writer) *StreamConsole {
	return &StreamConsole{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ReadChar implements Console.
func (c *StreamConsole) ReadChar() (byte, error) {
	return c.in.ReadByte()
}

// ReadBlock implements Console. A short read at end of input is not an
// error.
func (c *StreamConsole) ReadBlock(buf []byte) (int, error) {
	n, err := io.ReadFull(c.in, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	return n, err
}

// ReadInt implements Console. Values outside the 32-bit range wrap.
func (c *StreamConsole) ReadInt() (int32, error) {
	var v int64
	if _, err := fmt.Fscan(c.in, &v); err != nil {
		return 0, fmt.Errorf("read int: %w", err)
	}
	return int32(v), nil
}

// WriteChar implements Console.
func (c *StreamConsole) WriteChar(ch byte) error {
	_, err := c.out.Write([]byte{ch})
	return err
}

// WriteString implements Console.
func (c *StreamConsole) WriteString(s []byte) error {
	_, err := c.out.Write(s)
	return err
}

// WriteInt implements Console.
func (c *StreamConsole) WriteInt(v int32) error {
	_, err := io.WriteString(c.out, strconv.FormatInt(int64(v), 10))
	return err
}
