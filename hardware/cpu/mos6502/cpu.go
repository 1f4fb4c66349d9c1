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

package mos6502

import (
	"fmt"

	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/bus"
	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/execution"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/instructions"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/registers"
	"github.com/clockwork-emu/clockwork/logger"
)

// CPU is the 6502 core. Registers are exposed as public fields; the
// disassembler, the monitor and the tests all reach in directly.
type CPU struct {
	PC     registers.ProgramCounter
	A      registers.Register
	X      registers.Register
	Y      registers.Register
	SP     registers.StackPointer
	Status registers.StatusRegister

	mem bus.Bus

	// the instruction table, validated for totality at construction
	defns []*instructions.Definition

	// one micro-op sequence per opcode, built once at construction and
	// shared by reference thereafter
	plans [256]plan

	// sequences for events that do not begin with an opcode fetch
	interruptPlan plan
	resetPlan     plan

	scratch Scratch
	phase   cpu.Phase

	// the fetch-entry scratch check and the interrupt sample happen once per
	// boundary, not once per tick. a fetch stalled by wait-states must not
	// re-sample
	boundaryChecked bool

	// interrupt lines
	irqLine    bool
	nmiLine    bool
	nmiLatched bool

	// LastResult records the execution details of the most recent
	// instruction. Updated as the instruction progresses; Final is true only
	// once the instruction has completed.
	LastResult execution.Result

	// StrictScratch promotes dirty scratch state at a fetch boundary from a
	// logged-and-cleared event to a panic. The tests enable it.
	StrictScratch bool
}

// alias so that files in this package can refer to phases without
// qualification clutter
const (
	phaseFetch   = cpu.Fetch
	phaseDecode  = cpu.DecodeAndLatch
	phaseExecute = cpu.ExecuteStep
	phaseHalted  = cpu.Halted
)

// NewCPU is the preferred method of initialisation for the CPU structure.
// The instruction table and every micro-op sequence are built and validated
// here; a malformed table is an error at construction, never at runtime.
func NewCPU(mem bus.Bus) (*CPU, error) {
	mc := &CPU{mem: mem}

	mc.PC = registers.NewProgramCounter(0)
	mc.A = registers.NewRegister(0, "A")
	mc.X = registers.NewRegister(0, "X")
	mc.Y = registers.NewRegister(0, "Y")
	mc.SP = registers.NewStackPointer(0)
	mc.Status = registers.NewStatusRegister()

	var err error

	mc.defns, err = instructions.GetDefinitions()
	if err != nil {
		return nil, err
	}

	for i := range mc.defns {
		p, err := buildPlan(mc.defns[i])
		if err != nil {
			return nil, err
		}
		mc.plans[i] = p
	}

	mc.interruptPlan = buildInterruptPlan()
	mc.resetPlan = buildResetPlan()

	return mc, nil
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%s A=%s X=%s Y=%s SP=%s SR=%s",
		mc.PC, mc.A, mc.X, mc.Y, mc.SP, mc.Status)
}

// Phase implements the cpu.CPU interface.
func (mc *CPU) Phase() cpu.Phase {
	return mc.phase
}

// InstructionBoundary implements the cpu.CPU interface. True when no
// instruction is partially executed.
func (mc *CPU) InstructionBoundary() bool {
	return mc.phase == phaseFetch && !mc.boundaryChecked
}

// Reset implements the cpu.CPU interface. All register and scratch state is
// reinitialised, any in-flight micro-op is abandoned, and the reset
// vector-fetch sequence is entered. The sequence itself is ticked like any
// other: the program counter holds its reset-vector value only once the
// sequence has run to completion.
func (mc *CPU) Reset() {
	mc.PC = registers.NewProgramCounter(0)
	mc.A = registers.NewRegister(0, "A")
	mc.X = registers.NewRegister(0, "X")
	mc.Y = registers.NewRegister(0, "Y")
	mc.SP = registers.NewStackPointer(0)
	mc.Status.Reset()

	mc.scratch.Clear()
	mc.boundaryChecked = false
	mc.nmiLatched = false
	mc.LastResult.Reset()

	mc.scratch.source = RESET
	mc.scratch.active = mc.resetPlan
	mc.scratch.cursor = 0
	mc.phase = phaseExecute
}

// Tick implements the cpu.CPU interface. One call is one CPU cycle. At most
// one bus transaction is initiated; if the bus reports outstanding
// wait-cycles the micro-op cursor holds and the same transaction is
// re-queried on the next call.
func (mc *CPU) Tick() error {
	switch mc.phase {
	case phaseHalted:
		// only Reset() leaves the halted phase
		return nil
	case phaseFetch:
		return mc.fetchTick()
	case phaseExecute:
		return mc.executeTick()
	}
	return curated.Errorf("mos6502: tick in unexpected phase (%s)", mc.phase)
}

func (mc *CPU) fetchTick() error {
	if !mc.boundaryChecked {
		if !mc.scratch.IsClear() {
			if mc.StrictScratch {
				panic(fmt.Sprintf("mos6502: scratch state not clear at fetch entry (opcode %#02x)", mc.scratch.opcode))
			}
			logger.Logf("mos6502", "scratch state not clear at fetch entry (opcode %#02x); clearing", mc.scratch.opcode)
			mc.scratch.Clear()
		}
		mc.boundaryChecked = true

		// interrupt lines are sampled exactly once per instruction boundary.
		// NMI is edge triggered and beats a simultaneous IRQ
		if mc.nmiLatched {
			mc.nmiLatched = false
			mc.beginInterrupt(NMI)
			return mc.executeTick()
		}
		if mc.irqLine && !mc.Status.InterruptDisable {
			mc.beginInterrupt(IRQ)
			return mc.executeTick()
		}
	}

	data, ok, err := mc.busRead(mc.PC.Address())
	if err != nil {
		return err
	}
	if !ok {
		// bus wait-state. the fetch is re-queried on the next tick
		return nil
	}

	mc.LastResult.Reset()
	mc.LastResult.Address = mc.PC.Address()
	mc.LastResult.Cycles = 1
	mc.LastResult.ByteCount = 1
	mc.PC.Add(1)

	// decode and latch. combinational on real silicon: the definition lookup
	// and the latching of the micro-op sequence resolve within the fetch
	// tick, the phase is only ever observable from inside this function
	mc.phase = phaseDecode
	mc.scratch.opcode = data
	mc.scratch.defn = mc.defns[data]
	mc.scratch.active = mc.plans[data]
	mc.scratch.cursor = 0
	mc.LastResult.Defn = mc.scratch.defn
	mc.phase = phaseExecute

	return nil
}

func (mc *CPU) executeTick() error {
	s := &mc.scratch

	executed := false
	for s.cursor < len(s.active) {
		op := s.active[s.cursor]

		// a false guard skips the micro-op at zero cost, within this same
		// tick. this is how conditional cycles (index fix-ups, branch
		// outcomes) are expressed
		if op.guard != nil && !op.guard(mc) {
			s.cursor++
			continue
		}

		if executed {
			// next unskipped micro-op belongs to the next tick
			break
		}

		done, err := op.run(mc)
		if err != nil {
			return err
		}
		if !done {
			// bus wait-state. the cursor holds and the micro-op is retried,
			// re-querying the same bus transaction
			return nil
		}

		s.cursor++
		mc.LastResult.Cycles++
		executed = true
	}

	if s.cursor >= len(s.active) {
		mc.endInstruction()
	}

	return nil
}

// endInstruction is the single normal exit path from the execute phase.
func (mc *CPU) endInstruction() {
	halted := mc.scratch.defn != nil && mc.scratch.defn.Operator == instructions.KIL

	mc.LastResult.Final = true
	mc.scratch.Clear()
	mc.boundaryChecked = false

	if halted {
		mc.phase = phaseHalted
	} else {
		mc.phase = phaseFetch
	}
}

// busRead initiates (or re-queries) a byte read. The second return value is
// false while the bus is holding the access with wait-cycles.
func (mc *CPU) busRead(address uint16) (uint8, bool, error) {
	data, wait, err := mc.mem.Read(uint32(address), bus.Byte)
	if err != nil {
		return 0, false, err
	}
	if wait > 0 {
		return 0, false, nil
	}
	return uint8(data), true, nil
}

// busWrite initiates (or re-queries) a byte write. The first return value is
// false while the bus is holding the access with wait-cycles.
func (mc *CPU) busWrite(address uint16, data uint8) (bool, error) {
	wait, err := mc.mem.Write(uint32(address), bus.Byte, uint32(data))
	if err != nil {
		return false, err
	}
	return wait == 0, nil
}
