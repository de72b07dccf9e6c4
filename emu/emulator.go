package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipsim/insts"
)

// ErrMaxInstructions is reported once the instruction limit is reached.
var ErrMaxInstructions = errors.New("max instructions reached")

// Outcome tells the host whether to keep stepping.
type Outcome uint8

// Step outcomes.
const (
	Continue Outcome = iota
	Halt
)

func (o Outcome) String() string {
	if o == Halt {
		return "halt"
	}
	return "continue"
}

// HaltCode is the code reported by break and by jr $ra.
const HaltCode = 5

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Outcome is Halt when the host should stop the run loop.
	Outcome Outcome

	// Code is HaltCode when the program halted itself, and 0 otherwise.
	Code int

	// Word is the raw instruction word that was executed.
	Word uint32

	// Err is set when a host-level fault stopped execution.
	Err error
}

// Halted reports whether the outcome is Halt.
func (r StepResult) Halted() bool {
	return r.Outcome == Halt
}

// FetchCache serves instruction fetches. Implementations must drop lines
// named by Invalidate, which the emulator calls after every store.
type FetchCache interface {
	Fetch(addr uint32) uint32
	Invalidate(addr uint32, n int)
	Reset()
}

// Emulator executes MIPS32 instructions functionally.
type Emulator struct {
	state          *State
	initial        *State
	memory         *Memory
	ownMemory      bool
	decoder        *insts.Decoder
	console        Console
	consolePort    uint32
	syscallHandler SyscallHandler

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit
	interrupts *InterruptUnit

	ticks      TickSource
	fetchCache FetchCache
	logger     *logrus.Entry

	exceptionVector uint32
	syscallVector   uint32
	syscallResume   bool

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
// Options are applied in order.
type EmulatorOption func(*Emulator)

// WithState replaces the initial processor state.
func WithState(s *State) EmulatorOption {
	return func(e *Emulator) {
		e.state = s
	}
}

// WithMemory replaces the memory. The caller owns its port.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
		e.ownMemory = false
	}
}

// WithConsole sets the console behind the syscall bridge and, unless a
// memory was supplied, the console port.
func WithConsole(c Console) EmulatorOption {
	return func(e *Emulator) {
		e.console = c
	}
}

// WithConsolePort sets the address of the console port.
func WithConsolePort(addr uint32) EmulatorOption {
	return func(e *Emulator) {
		e.consolePort = addr
	}
}

// WithSyscallHandler replaces the console syscall bridge.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) {
		e.syscallHandler = handler
	}
}

// WithTickSource sets the source of the count register.
func WithTickSource(t TickSource) EmulatorOption {
	return func(e *Emulator) {
		e.ticks = t
	}
}

// WithFetchCache routes instruction fetches through c.
func WithFetchCache(c FetchCache) EmulatorOption {
	return func(e *Emulator) {
		e.fetchCache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) EmulatorOption {
	return func(e *Emulator) {
		e.logger = l
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithExceptionVector sets the exception entry address.
func WithExceptionVector(addr uint32) EmulatorOption {
	return func(e *Emulator) {
		e.exceptionVector = addr
	}
}

// WithSyscallVector sets the address syscall traps to.
func WithSyscallVector(addr uint32) EmulatorOption {
	return func(e *Emulator) {
		e.syscallVector = addr
	}
}

// WithSyscallResume makes syscall continue at the next instruction instead
// of trapping to the syscall vector.
func WithSyscallResume(resume bool) EmulatorOption {
	return func(e *Emulator) {
		e.syscallResume = resume
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) {
		e.state.R[RegSP] = sp
	}
}

// NewEmulator creates a new MIPS32 emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	logger.SetOutput(os.Stderr)

	e := &Emulator{
		state:           NewState(),
		memory:          NewMemory(),
		ownMemory:       true,
		decoder:         insts.NewDecoder(),
		consolePort:     DefaultConsolePort,
		ticks:           &InstructionTicks{},
		logger:          logrus.NewEntry(logger),
		exceptionVector: DefaultExceptionVector,
		syscallVector:   DefaultSyscallVector,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.console == nil {
		e.console = NewStreamConsole(os.Stdin, os.Stdout)
	}

	if e.ownMemory {
		port := NewConsolePort(e.consolePort, e.console)
		port.Logger = e.logger
		e.memory.SetPort(port)
	}

	if e.fetchCache != nil {
		fc := e.fetchCache
		e.memory.SetWriteHook(fc.Invalidate)
	}

	if e.syscallHandler == nil {
		e.syscallHandler = NewConsoleSyscallHandler(e.state, e.memory, e.console, e.logger)
	}

	e.initial = e.state.Clone()
	e.buildUnits()

	return e
}

func (e *Emulator) buildUnits() {
	e.alu = NewALU(e.state, e.logger)
	e.lsu = NewLoadStoreUnit(e.state, e.memory)
	e.branchUnit = NewBranchUnit(e.state)
	e.interrupts = NewInterruptUnit(e.state, e.exceptionVector, e.logger)
}

// State returns the live processor state.
func (e *Emulator) State() *State {
	return e.state
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return &e.state.RegFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Logger returns the emulator's logger.
func (e *Emulator) Logger() *logrus.Entry {
	return e.logger
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Snapshot returns a copy of the processor state.
func (e *Emulator) Snapshot() *State {
	return e.state.Clone()
}

// Dump writes the registers and n bytes of memory at base to w.
func (e *Emulator) Dump(w io.Writer, base uint32, n int) error {
	if err := DumpState(w, e.state); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n--------MEMORY 0x%08x--------\n", base); err != nil {
		return err
	}
	return HexDump(w, e.memory, base, n)
}

// LoadProgram loads image into memory at entry and sets the PC to entry.
func (e *Emulator) LoadProgram(entry uint32, image []byte) error {
	if err := e.memory.LoadProgram(entry, image); err != nil {
		return fmt.Errorf("load program: %w", err)
	}
	e.state.PC = entry
	return nil
}

// Reset restores the initial processor state, clears memory and the
// fetch cache, and zeroes the instruction count.
func (e *Emulator) Reset() {
	*e.state = *e.initial
	e.memory.Clear()
	if e.fetchCache != nil {
		e.fetchCache.Reset()
	}
	e.instructionCount = 0
}

// Step fetches the instruction at PC and executes it with the next tick.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Outcome: Halt,
			Err:     fmt.Errorf("%w: %d", ErrMaxInstructions, e.maxInstructions),
		}
	}

	word := e.fetch(e.state.PC)
	result := e.Execute(word, e.ticks.Tick())

	e.instructionCount++

	return result
}

func (e *Emulator) fetch(pc uint32) uint32 {
	if e.fetchCache != nil && pc&3 == 0 && e.memory.IsBacked(pc, 4) {
		return e.fetchCache.Fetch(pc)
	}
	return e.memory.Read32(pc)
}

// Execute runs one instruction word against the current state. tick is
// loaded into the count register during end-of-step bookkeeping.
//
// Every step dispatches the instruction, runs interrupt bookkeeping,
// zeroes $0, and advances PC by 4.
func (e *Emulator) Execute(word uint32, tick uint32) StepResult {
	pc := e.state.PC
	inst := e.decoder.Decode(word)

	if e.logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		e.logger.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%08x", pc),
			"word": fmt.Sprintf("0x%08x", word),
			"op":   inst.Op.String(),
		}).Debug("step")
	}

	halt := false
	if fn := dispatch[inst.Op]; fn != nil {
		halt = fn(e, inst)
	} else {
		e.logger.WithFields(logrus.Fields{
			"pc":   pc,
			"word": word,
		}).Debug("unknown instruction ignored")
	}

	e.interrupts.EndOfStep(tick)
	e.state.R[RegZero] = 0
	e.state.PC += 4

	result := StepResult{Outcome: Continue, Word: word}
	if halt {
		result.Outcome = Halt
		result.Code = HaltCode
	}

	if err := e.memory.Err(); err != nil {
		result.Outcome = Halt
		result.Err = fmt.Errorf("instruction at 0x%08x: %w", pc, err)
	}

	return result
}

// Run steps until the program halts, a fault occurs, or ctx is done.
func (e *Emulator) Run(ctx context.Context) StepResult {
	for i := uint64(0); ; i++ {
		if i&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return StepResult{Outcome: Halt, Err: err}
			}
		}

		result := e.Step()
		if result.Halted() {
			if result.Err != nil {
				e.logger.WithError(result.Err).Warn("emulation stopped")
			}
			return result
		}
	}
}
