package emu

import "time"

// TickSource supplies the value loaded into the count register each step.
// Values must be monotonically non-decreasing (modulo 2^32).
type TickSource interface {
	Tick() uint32
}

// WallClock counts milliseconds since it was created.
type WallClock struct {
	start time.Time
}

// NewWallClock creates a WallClock starting now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Tick implements TickSource.
func (c *WallClock) Tick() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// InstructionTicks counts one tick per call, making timer behaviour
// deterministic.
type InstructionTicks struct {
	n uint32
}

// Tick implements TickSource. The first call returns 0.
func (t *InstructionTicks) Tick() uint32 {
	v := t.n
	t.n++
	return v
}

// Set makes the next Tick return n.
func (t *InstructionTicks) Set(n uint32) {
	t.n = n
}

// TickFunc adapts a function to TickSource.
type TickFunc func() uint32

// Tick implements TickSource.
func (f TickFunc) Tick() uint32 { return f() }
