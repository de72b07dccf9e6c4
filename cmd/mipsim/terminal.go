package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ctrlC is the byte a raw terminal delivers instead of SIGINT.
const ctrlC = 0x03

var restoreTerminal = func() {}

// enterRaw puts in into raw mode when it is a terminal. Input carriage
// returns become line feeds, output line feeds become CRLF, and Ctrl-C
// cancels the returned context.
func enterRaw(
	ctx context.Context,
	in *os.File,
	out io.Writer,
) (context.Context, io.Reader, io.Writer, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return ctx, in, out, nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return ctx, in, out, fmt.Errorf("failed to set raw mode: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	restoreTerminal = func() {
		cancel()
		_ = term.Restore(fd, oldState)
		restoreTerminal = func() {}
	}

	return ctx, &rawReader{r: in, interrupt: cancel}, crlfWriter{w: out}, nil
}

// rawReader translates raw terminal input for the guest.
type rawReader struct {
	r         io.Reader
	interrupt func()
}

func (r *rawReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	for i := 0; i < n; i++ {
		switch p[i] {
		case '\r':
			p[i] = '\n'
		case ctrlC:
			r.interrupt()
		}
	}
	return n, err
}

// crlfWriter expands \n to \r\n.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b != '\n' {
			continue
		}
		if _, err := c.w.Write(p[start:i]); err != nil {
			return start, err
		}
		if _, err := c.w.Write([]byte("\r\n")); err != nil {
			return i, err
		}
		start = i + 1
	}
	if _, err := c.w.Write(p[start:]); err != nil {
		return start, err
	}
	return len(p), nil
}
