package cache

import (
	"github.com/sarchlab/mipsim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read copies backing bytes without touching the port or fault state.
func (m *MemoryBacking) Read(addr uint32, size int) []byte {
	return m.memory.Peek(addr, size)
}

// NewFetchCache builds a cache over memory suitable for emu.WithFetchCache.
func NewFetchCache(config Config, memory *emu.Memory) *Cache {
	return New(config, NewMemoryBacking(memory))
}

var _ emu.FetchCache = (*Cache)(nil)
