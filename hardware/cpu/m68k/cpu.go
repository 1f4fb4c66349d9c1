// This file is part of Clockwork.
//
// Clockwork is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Clockwork is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Clockwork.  If not, see <https://www.gnu.org/licenses/>.

package m68k

import (
	"fmt"

	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/bus"
	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/logger"
)

// exception vector numbers.
const (
	vectorBusError     = 2
	vectorAddressError = 3
	vectorIllegal      = 4
	vectorDivideByZero = 5
	vectorCHK          = 6
	vectorTrapV        = 7
	vectorPrivilege    = 8
	vectorTrace        = 9
	vectorLineA        = 10
	vectorLineF        = 11
	vectorAutovector   = 24 // plus the interrupt level
	vectorTrapBase     = 32
)

// ExceptionPhase describes where in the exception entry sequence the
// controller currently is. Idle means no exception is being taken.
type ExceptionPhase int

// List of exception controller phases.
const (
	ExcIdle ExceptionPhase = iota
	ExcVectorSelect
	ExcContextSave
	ExcVectorFetch
	ExcDispatch
)

func (p ExceptionPhase) String() string {
	switch p {
	case ExcIdle:
		return "idle"
	case ExcVectorSelect:
		return "vector select"
	case ExcContextSave:
		return "context save"
	case ExcVectorFetch:
		return "vector fetch"
	case ExcDispatch:
		return "dispatch"
	}
	return "unknown"
}

// CPU is the 68000 core.
type CPU struct {
	D [8]uint32
	A [8]uint32

	// the inactive stack pointer of each privilege state. A[7] is always
	// the active one
	USP, SSP uint32

	PC uint32
	SR Status

	// IR is the opcode word of the instruction being executed
	IR uint16

	mem bus.Bus

	rows     []row
	dispatch *[65536]*row

	scratch Scratch
	phase   cpu.Phase

	boundaryChecked bool

	// exception controller
	excPhase ExceptionPhase

	// interrupt priority level presented by the machine; level 7 is edge
	// triggered
	ipl       uint8
	ipl7Latch bool

	// set by STOP; cleared when an interrupt wakes the core
	stopped bool

	// trace exception armed at the start of the current instruction
	traceArmed bool

	// most recent bus access, for the bus-error stack frame
	lastAccess      uint32
	lastAccessWrite bool

	// StrictScratch promotes dirty scratch state at a fetch boundary from a
	// logged-and-cleared event to a panic. The tests enable it.
	StrictScratch bool
}

// NewCPU is the preferred method of initialisation for the CPU structure.
// The decode table is resolved and checked for ambiguous claims here.
func NewCPU(mem bus.Bus) (*CPU, error) {
	mc := &CPU{mem: mem}

	var err error
	mc.rows, mc.dispatch, err = buildDispatch()
	if err != nil {
		return nil, err
	}

	mc.Reset()
	return mc, nil
}

func (mc *CPU) String() string {
	s := fmt.Sprintf("PC=%08x SR=%s\n", mc.PC, mc.SR)
	for i := 0; i < 8; i++ {
		s += fmt.Sprintf("D%d=%08x ", i, mc.D[i])
	}
	s += "\n"
	for i := 0; i < 8; i++ {
		s += fmt.Sprintf("A%d=%08x ", i, mc.A[i])
	}
	return s
}

// Phase implements the cpu.CPU interface.
func (mc *CPU) Phase() cpu.Phase {
	return mc.phase
}

// InstructionBoundary implements the cpu.CPU interface.
func (mc *CPU) InstructionBoundary() bool {
	return mc.phase == cpu.Fetch && !mc.boundaryChecked
}

// ExceptionPhase returns the state of the exception controller.
func (mc *CPU) ExceptionPhase() ExceptionPhase {
	return mc.excPhase
}

// Reset implements the cpu.CPU interface. The 68000 loads the supervisor
// stack pointer from the long word at address 0 and the program counter
// from the long word at address 4 before fetching resumes.
func (mc *CPU) Reset() {
	mc.D = [8]uint32{}
	mc.A = [8]uint32{}
	mc.USP = 0
	mc.SSP = 0
	mc.PC = 0
	mc.IR = 0
	mc.SR = Status{Supervisor: true, InterruptMask: 7}

	mc.scratch.Clear()
	mc.boundaryChecked = false
	mc.excPhase = ExcVectorFetch
	mc.ipl = 0
	mc.ipl7Latch = false
	mc.stopped = false
	mc.traceArmed = false

	mc.scratch.branched = true
	mc.scratch.active = resetPlan()
	mc.scratch.cursor = 0
	mc.phase = cpu.ExecuteStep
}

func resetPlan() plan {
	return plan{
		internal(16, nil),
		readWord(func(mc *CPU) uint32 { return 0 }, func(mc *CPU, v uint16) {
			mc.scratch.operand2 = uint32(v) << 16
		}),
		readWord(func(mc *CPU) uint32 { return 2 }, func(mc *CPU, v uint16) {
			mc.SSP = mc.scratch.operand2 | uint32(v)
			mc.A[7] = mc.SSP
		}),
		readWord(func(mc *CPU) uint32 { return 4 }, func(mc *CPU, v uint16) {
			mc.scratch.operand2 = uint32(v) << 16
		}),
		readWord(func(mc *CPU) uint32 { return 6 }, func(mc *CPU, v uint16) {
			mc.PC = mc.scratch.operand2 | uint32(v)
		}),
		// first prefetches at the reset vector
		readWord(func(mc *CPU) uint32 { return mc.PC }, func(mc *CPU, v uint16) {}),
		readWord(func(mc *CPU) uint32 { return mc.PC + 2 }, func(mc *CPU, v uint16) {
			mc.excPhase = ExcIdle
		}),
	}
}

// SetIPL presents an interrupt priority level to the core. Levels 1 to 6
// are level-sensitive and masked by the status register; level 7 is edge
// triggered and cannot be masked.
func (mc *CPU) SetIPL(level uint8) {
	if level > 7 {
		level = 7
	}
	if level == 7 && mc.ipl != 7 {
		mc.ipl7Latch = true
	}
	mc.ipl = level
}

// setSupervisor switches privilege state, banking A7 against the inactive
// stack pointer.
func (mc *CPU) setSupervisor(s bool) {
	if s == mc.SR.Supervisor {
		return
	}
	if s {
		mc.USP = mc.A[7]
		mc.A[7] = mc.SSP
	} else {
		mc.SSP = mc.A[7]
		mc.A[7] = mc.USP
	}
	mc.SR.Supervisor = s
}

// applySR installs a full status word, banking the stack pointer if the
// privilege state changed.
func (mc *CPU) applySR(v uint16) {
	mc.setSupervisor(v&0x2000 == 0x2000)
	mc.SR.FromValue(v)
}

// Tick implements the cpu.CPU interface. One call is one clock period.
func (mc *CPU) Tick() error {
	switch mc.phase {
	case cpu.Halted:
		// stopped, not dead: an interrupt above the mask resumes
		// execution. with nothing pending a tick changes no register state
		if mc.sampleInterrupts() {
			return mc.executeTick()
		}
		return nil
	case cpu.Fetch:
		return mc.fetchTick()
	case cpu.ExecuteStep:
		return mc.executeTick()
	}
	return curated.Errorf("m68k: tick in unexpected phase (%s)", mc.phase)
}

// sampleInterrupts honours a pending interrupt if one is accepted. Returns
// true if an exception entry has begun.
func (mc *CPU) sampleInterrupts() bool {
	if mc.ipl7Latch {
		mc.ipl7Latch = false
		mc.stopped = false
		mc.beginInterrupt(7)
		return true
	}

	if mc.ipl > mc.SR.InterruptMask {
		mc.stopped = false
		mc.beginInterrupt(mc.ipl)
		return true
	}

	return false
}

func (mc *CPU) fetchTick() error {
	if !mc.boundaryChecked {
		if !mc.scratch.IsClear() {
			if mc.StrictScratch {
				panic(fmt.Sprintf("m68k: scratch state not clear at fetch entry (opcode %#04x)", mc.scratch.opcode))
			}
			logger.Logf("m68k", "scratch state not clear at fetch entry (opcode %#04x); clearing", mc.scratch.opcode)
			mc.scratch.Clear()
		}
		mc.boundaryChecked = true

		if mc.sampleInterrupts() {
			return mc.executeTick()
		}

		mc.traceArmed = mc.SR.Trace
	}

	// the opcode fetch is one four-cycle bus cycle; the transaction happens
	// on its final clock period
	if mc.scratch.countdown == 0 {
		mc.scratch.countdown = 4
	}
	if mc.scratch.countdown > 1 {
		mc.scratch.countdown--
		return nil
	}

	v, ok, err := mc.busReadWord(mc.PC)
	if err != nil {
		mc.scratch.countdown = 0
		mc.beginBusError()
		return nil
	}
	if !ok {
		// wait-state: the countdown holds at one
		return nil
	}

	mc.scratch.countdown = 0
	mc.IR = v
	mc.scratch.opcode = v
	mc.PC += 2
	mc.scratch.extCursor = mc.PC

	return mc.decodeAndLatch(v)
}

// decodeAndLatch resolves the opcode word through the dispatch array, runs
// the decoded action and installs the micro-op plan. Combinational within
// the final fetch tick.
func (mc *CPU) decodeAndLatch(opcode uint16) error {
	r := mc.dispatch[opcode]
	if r == nil {
		mc.beginException(vectorIllegal, false)
		return nil
	}

	if r.privileged && !mc.SR.Supervisor {
		mc.beginException(vectorPrivilege, false)
		return nil
	}

	d, ok := r.build(mc, opcode)
	if !ok {
		// a legal row with an illegal addressing mode or size field
		mc.beginException(vectorIllegal, false)
		return nil
	}

	if d.action != nil {
		if err := d.action(mc); err != nil {
			return err
		}
		if mc.scratch.active != nil {
			// the action raised an exception; its plan is installed
			return nil
		}
	}

	if len(d.plan) == 0 {
		mc.endInstruction()
		return nil
	}

	mc.scratch.active = d.plan
	mc.scratch.cursor = 0
	mc.phase = cpu.ExecuteStep
	return nil
}

func (mc *CPU) executeTick() error {
	s := &mc.scratch

	op := s.active[s.cursor]

	if s.countdown == 0 {
		s.countdown = op.ticks
	}
	if s.countdown > 1 {
		s.countdown--
		return nil
	}

	// final clock period of the machine cycle: the bus transaction, if any
	if op.run != nil {
		done, err := op.run(mc)
		if err != nil {
			s.countdown = 0
			mc.beginBusError()
			return nil
		}
		if !done {
			// bus wait-state. the countdown holds at one and the same
			// transaction is re-queried on the next tick
			return nil
		}
	}

	s.countdown = 0
	s.cursor++

	// skip micro-ops whose guard is false, at zero cost
	for s.cursor < len(s.active) {
		next := s.active[s.cursor]
		if next.guard != nil && !next.guard(mc) {
			s.cursor++
			continue
		}
		break
	}

	if s.cursor >= len(s.active) {
		mc.endInstruction()
	}

	return nil
}

func (mc *CPU) endInstruction() {
	if !mc.scratch.branched {
		// the program counter catches up with the extension word cursor
		mc.PC = mc.scratch.extCursor
	}

	stopped := mc.stopped
	trace := mc.traceArmed

	mc.scratch.Clear()
	mc.boundaryChecked = false
	mc.traceArmed = false

	if stopped {
		mc.phase = cpu.Halted
		return
	}

	if trace {
		mc.beginExceptionPC(vectorTrace, mc.PC, false)
		return
	}

	mc.phase = cpu.Fetch
}

// beginException starts exception processing for the given vector. fromRun
// is true when the call is made from inside an executing micro-op, in which
// case the engine's own cursor advance is accounted for.
func (mc *CPU) beginException(vector int, fromRun bool) {
	pc := mc.scratch.extCursor
	switch vector {
	case vectorIllegal, vectorPrivilege, vectorLineA, vectorLineF:
		// these push the address of the offending instruction itself
		pc -= 2
	}
	mc.beginExceptionPC(vector, pc, fromRun)
}

// beginInterrupt starts the exception entry for an accepted interrupt. The
// interrupt mask is raised to the accepted level. Autovectored: the vector
// number is derived from the level alone.
func (mc *CPU) beginInterrupt(level uint8) {
	lead := plan{internal(14, nil)}
	mc.beginExceptionFull(vectorAutovector+int(level), mc.PC, false, lead, nil)
	mc.SR.InterruptMask = level
}

// beginBusError starts the bus-error exception, with the longer group 0
// stack frame describing the faulted access.
// The engine returns straight to Tick afterwards, so the plan always
// starts at cursor zero.
func (mc *CPU) beginBusError() {
	ir := mc.IR
	access := mc.lastAccess
	status := uint16(0x0001)
	if mc.SR.Supervisor {
		status = 0x0005
	}
	if !mc.lastAccessWrite {
		status |= 0x0010
	}

	// the group 0 frame sits below the group 1/2 frame: instruction
	// register, access address and access status
	extra := plan{
		pushWord(func(mc *CPU) uint16 { return ir }, nil),
	}
	extra = append(extra, pushLong(func(mc *CPU) uint32 { return access })...)
	extra = append(extra, pushWord(func(mc *CPU) uint16 { return status }, nil))

	pc := mc.scratch.extCursor
	if pc == 0 {
		// faulted during the opcode fetch itself
		pc = mc.PC
	}
	mc.beginExceptionFull(vectorBusError, pc, false, nil, extra)
}

// beginExceptionPC is the exception entry sequence common to every source.
func (mc *CPU) beginExceptionPC(vector int, pc uint32, fromRun bool) {
	mc.beginExceptionFull(vector, pc, fromRun, nil, nil)
}

// beginExceptionFull starts exception processing: context save, vector
// fetch, dispatch. The vector address is a pure function of the vector
// number: nothing about how the exception was raised can bend where it
// dispatches to. lead is extra time before the context save (the interrupt
// acknowledge); extra is pushed below the standard frame (the bus-error
// fault description).
func (mc *CPU) beginExceptionFull(vector int, pc uint32, fromRun bool, lead, extra plan) {
	sr := mc.SR.Value()
	mc.setSupervisor(true)
	mc.SR.Trace = false
	mc.traceArmed = false

	addr := uint32(vector) * 4

	p := append(plan{}, lead...)
	p = append(p, prefacing(pushLong(func(mc *CPU) uint32 { return pc }), func(mc *CPU) {
		mc.excPhase = ExcContextSave
	})...)
	p = append(p, pushWord(func(mc *CPU) uint16 { return sr }, nil))
	p = append(p, extra...)
	p = append(p,
		readWord(func(mc *CPU) uint32 { return addr }, func(mc *CPU, v uint16) {
			mc.excPhase = ExcVectorFetch
			mc.scratch.operand2 = uint32(v) << 16
		}),
		readWord(func(mc *CPU) uint32 { return addr + 2 }, func(mc *CPU, v uint16) {
			mc.PC = mc.scratch.operand2 | uint32(v)
		}),
		// prefetch at the handler
		readWord(func(mc *CPU) uint32 { return mc.PC }, func(mc *CPU, v uint16) {
			mc.excPhase = ExcDispatch
		}),
		readWord(func(mc *CPU) uint32 { return mc.PC + 2 }, func(mc *CPU, v uint16) {}),
		internal(2, func(mc *CPU) {
			mc.excPhase = ExcIdle
		}),
	)

	mc.scratch.Clear()
	mc.scratch.branched = true
	mc.excPhase = ExcVectorSelect
	mc.scratch.active = p
	mc.scratch.cursor = 0
	if fromRun {
		mc.scratch.cursor = -1
	}
	mc.phase = cpu.ExecuteStep
}
