// Package cache provides a functional instruction-fetch cache using Akita
// cache components.
package cache

import (
	"errors"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
}

// DefaultConfig returns the default fetch cache geometry: 32KB, 4-way,
// 64B lines.
func DefaultConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 4,
		BlockSize:     64,
	}
}

// NumSets returns the number of sets implied by the geometry.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks that the geometry describes a realizable cache.
func (c Config) Validate() error {
	if !isPow2(c.Size) || !isPow2(c.Associativity) || !isPow2(c.BlockSize) {
		return fmt.Errorf("cache geometry %d/%d/%d: sizes must be powers of two",
			c.Size, c.Associativity, c.BlockSize)
	}
	if c.BlockSize < 4 {
		return errors.New("cache block size must hold at least one word")
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 || c.NumSets() == 0 {
		return fmt.Errorf("cache size %d not divisible by associativity*block size %d",
			c.Size, c.Associativity*c.BlockSize)
	}
	return nil
}

func isPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Data is the big-endian value read.
	Data uint32
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint32
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads         uint64
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Invalidations uint64
}

// HitRate returns hits over reads, or 0 before the first read.
func (s Statistics) HitRate() float64 {
	if s.Reads == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Reads)
}

// BackingStore is the memory the cache fills lines from.
type BackingStore interface {
	Read(addr uint32, size int) []byte
}

// Cache is a read-only set-associative cache. Lines are filled from the
// backing store on a miss and dropped by Invalidate; the cache never holds
// dirty data.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	stats   Statistics
	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.NumSets()
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint32) uint32 {
	return addr &^ uint32(c.config.BlockSize-1)
}

// Read returns size bytes at addr. The access must not cross a block.
func (c *Cache) Read(addr uint32, size int) AccessResult {
	c.stats.Reads++

	blockAddr := c.blockAddr(addr)
	offset := int(addr - blockAddr)

	block := c.directory.Lookup(0, uint64(blockAddr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		return AccessResult{
			Hit:  true,
			Data: extractData(c.dataStore[c.blockIndex(block)], offset, size),
		}
	}

	c.stats.Misses++
	return c.fill(blockAddr, offset, size)
}

func (c *Cache) fill(blockAddr uint32, offset, size int) AccessResult {
	var result AccessResult

	victim := c.directory.FindVictim(uint64(blockAddr))
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint32(victim.Tag)
	}

	data := c.dataStore[c.blockIndex(victim)]
	if c.backing != nil {
		copy(data, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		clear(data)
	}

	victim.Tag = uint64(blockAddr)
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	result.Data = extractData(data, offset, size)
	return result
}

// Fetch reads the instruction word at addr.
func (c *Cache) Fetch(addr uint32) uint32 {
	return c.Read(addr, 4).Data
}

// Invalidate drops every line overlapping the n bytes at addr.
func (c *Cache) Invalidate(addr uint32, n int) {
	if n <= 0 {
		return
	}

	last := c.blockAddr(addr + uint32(n) - 1)
	for b := c.blockAddr(addr); ; b += uint32(c.config.BlockSize) {
		block := c.directory.Lookup(0, uint64(b))
		if block != nil && block.IsValid {
			block.IsValid = false
			c.stats.Invalidations++
		}
		if b == last {
			break
		}
	}
}

// Flush invalidates every line.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// extractData reads a big-endian value of the given size.
func extractData(data []byte, offset, size int) uint32 {
	if offset+size > len(data) {
		return 0
	}

	var result uint32
	for i := 0; i < size; i++ {
		result = result<<8 | uint32(data[offset+i])
	}
	return result
}
