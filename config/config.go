// Package config holds the JSON run configuration of the emulator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/cache"
	"github.com/sarchlab/mipsim/emu"
)

// Tick source names.
const (
	TickWallClock    = "wallclock"
	TickInstructions = "instructions"
)

// FetchCacheConfig describes the optional instruction-fetch cache.
type FetchCacheConfig struct {
	Enabled       bool `json:"enabled"`
	Size          int  `json:"size"`
	Associativity int  `json:"associativity"`
	BlockSize     int  `json:"block_size"`
}

// CacheConfig converts to the cache package geometry.
func (f FetchCacheConfig) CacheConfig() cache.Config {
	return cache.Config{
		Size:          f.Size,
		Associativity: f.Associativity,
		BlockSize:     f.BlockSize,
	}
}

// Config holds everything needed to set up a run.
type Config struct {
	// MemorySize is the fault limit of the directly backed region.
	MemorySize uint32 `json:"memory_size"`

	// MMIOBoundary is the address above which accesses go to the port.
	MMIOBoundary uint32 `json:"mmio_boundary"`

	// ConsolePort is the single-byte console address.
	ConsolePort uint32 `json:"console_port"`

	// EntryPoint is the initial PC and load address for raw images.
	EntryPoint uint32 `json:"entry_point"`

	StackPointer uint32 `json:"stack_pointer"`
	TimerCompare uint32 `json:"timer_compare"`
	Status       uint32 `json:"status"`

	ExceptionVector uint32 `json:"exception_vector"`
	SyscallVector   uint32 `json:"syscall_vector"`

	// SyscallResume continues after syscall instead of trapping.
	SyscallResume bool `json:"syscall_resume"`

	// TickSource is "wallclock" or "instructions".
	TickSource string `json:"tick_source"`

	// MaxInstructions stops the run after this many steps; 0 is unlimited.
	MaxInstructions uint64 `json:"max_instructions"`

	LogLevel string `json:"log_level"`

	FetchCache FetchCacheConfig `json:"fetch_cache"`

	// DumpBase and DumpLength select the memory window shown by dumps.
	DumpBase   uint32 `json:"dump_base"`
	DumpLength int    `json:"dump_length"`
}

// Default returns the reference machine configuration.
func Default() *Config {
	cc := cache.DefaultConfig()

	return &Config{
		MemorySize:      emu.DefaultMemoryLimit,
		MMIOBoundary:    emu.DefaultMMIOBoundary,
		ConsolePort:     emu.DefaultConsolePort,
		EntryPoint:      0,
		StackPointer:    emu.DefaultStackPointer,
		TimerCompare:    emu.DefaultTimerCompare,
		Status:          emu.DefaultStatus,
		ExceptionVector: emu.DefaultExceptionVector,
		SyscallVector:   emu.DefaultSyscallVector,
		TickSource:      TickWallClock,
		LogLevel:        "warning",
		FetchCache: FetchCacheConfig{
			Size:          cc.Size,
			Associativity: cc.Associativity,
			BlockSize:     cc.BlockSize,
		},
		DumpBase:   0x20000000,
		DumpLength: 0x400,
	}
}

// Load reads a configuration file. Fields missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the machine cannot use.
func (c *Config) Validate() error {
	if c.ConsolePort <= c.MMIOBoundary {
		return fmt.Errorf("console_port 0x%x must be above mmio_boundary 0x%x",
			c.ConsolePort, c.MMIOBoundary)
	}
	if c.ExceptionVector&3 != 0 {
		return fmt.Errorf("exception_vector 0x%x is not word-aligned", c.ExceptionVector)
	}
	if c.SyscallVector&3 != 0 {
		return fmt.Errorf("syscall_vector 0x%x is not word-aligned", c.SyscallVector)
	}
	if c.TickSource != TickWallClock && c.TickSource != TickInstructions {
		return fmt.Errorf("unknown tick_source %q", c.TickSource)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.DumpLength < 0 {
		return fmt.Errorf("dump_length must be >= 0")
	}
	if c.FetchCache.Enabled {
		if err := c.FetchCache.CacheConfig().Validate(); err != nil {
			return fmt.Errorf("fetch_cache: %w", err)
		}
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Level parses LogLevel.
func (c *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(strings.TrimSpace(c.LogLevel))
	if err != nil {
		return logrus.WarnLevel, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Ticks returns a fresh tick source of the configured kind.
func (c *Config) Ticks() emu.TickSource {
	if c.TickSource == TickInstructions {
		return &emu.InstructionTicks{}
	}
	return emu.NewWallClock()
}

// NewEmulator validates the configuration and builds an emulator around
// console. The fetch cache is returned when enabled so that callers can
// report its statistics.
func (c *Config) NewEmulator(
	console emu.Console,
	logger *logrus.Entry,
	opts ...emu.EmulatorOption,
) (*emu.Emulator, *cache.Cache, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	port := emu.NewConsolePort(c.ConsolePort, console)
	port.Logger = logger

	memory := emu.NewMemory(
		emu.WithMemoryLimit(c.MemorySize),
		emu.WithMMIOBoundary(c.MMIOBoundary),
		emu.WithPort(port),
	)

	state := emu.NewState(
		emu.WithEntryPoint(c.EntryPoint),
		emu.WithInitialSP(c.StackPointer),
		emu.WithInitialStatus(c.Status),
		emu.WithTimerCompare(c.TimerCompare),
	)

	base := []emu.EmulatorOption{
		emu.WithState(state),
		emu.WithMemory(memory),
		emu.WithConsole(console),
		emu.WithLogger(logger),
		emu.WithTickSource(c.Ticks()),
		emu.WithMaxInstructions(c.MaxInstructions),
		emu.WithExceptionVector(c.ExceptionVector),
		emu.WithSyscallVector(c.SyscallVector),
		emu.WithSyscallResume(c.SyscallResume),
	}

	var fc *cache.Cache
	if c.FetchCache.Enabled {
		fc = cache.NewFetchCache(c.FetchCache.CacheConfig(), memory)
		base = append(base, emu.WithFetchCache(fc))
	}

	return emu.NewEmulator(append(base, opts...)...), fc, nil
}
