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

// Package machine wires a CPU core, a memory map and the master clock into
// a runnable unit. The machine owns the driving loop: everything else in
// the project, the monitor included, steps the machine rather than ticking
// components directly.
package machine

import (
	"fmt"

	"github.com/clockwork-emu/clockwork/crunched"
	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/clock"
	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/cpu/m68k"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502"
	"github.com/clockwork-emu/clockwork/hardware/cpu/z80"
	"github.com/clockwork-emu/clockwork/hardware/memory"
	"github.com/clockwork-emu/clockwork/logger"
	"github.com/clockwork-emu/clockwork/random"
)

// Arch names a CPU core the machine can be built around.
type Arch string

// List of supported architectures.
const (
	MOS6502 Arch = "6502"
	Z80     Arch = "z80"
	M68K    Arch = "68000"
)

// sentinel errors for the machine package.
const (
	UnsupportedArch = "machine: unsupported architecture: %s"
)

// Spec describes the machine to build.
type Spec struct {
	Arch Arch

	// size of the flat memory map. zero selects the architecture's natural
	// address space (64k for the 8-bit cores, 16mb for the 68000)
	MemSize uint32

	// the CPU ticks once every CPUDivisor master-clock units. values below
	// one mean the CPU runs at the master rate
	CPUDivisor int

	// scramble memory and the architecturally undefined registers before
	// the reset sequence, the way real silicon powers up. a non-zero seed
	// makes the scrambled state reproducible
	RandomState bool
	RandomSeed  int64
}

// Machine is a CPU core, its memory and the master clock everything steps
// from.
type Machine struct {
	Arch Arch
	Clk  *clock.Clock
	Mem  *memory.Memory

	// the active core. exactly one of the concrete fields below is non-nil
	// and CPU aliases it
	CPU cpu.CPU

	MOS6502 *mos6502.CPU
	Z80     *z80.CPU
	M68K    *m68k.CPU
}

// NewMachine is the preferred method of initialisation for the Machine
// type. The reset sequence is installed but not run: the first calls to
// Step() execute it, cycle by cycle, like everything else.
func NewMachine(spec Spec) (*Machine, error) {
	m := &Machine{Arch: spec.Arch, Clk: clock.NewClock()}

	size := spec.MemSize
	if size == 0 {
		switch spec.Arch {
		case M68K:
			size = 0x1000000
		default:
			size = 0x10000
		}
	}
	m.Mem = memory.NewMemory(size)

	if spec.RandomState {
		var rnd *random.Random
		if spec.RandomSeed != 0 {
			rnd = random.NewSeededRandom(spec.RandomSeed)
		} else {
			rnd = random.NewRandom()
		}
		m.scrambleMemory(rnd, size)
		defer m.scrambleRegisters(rnd)
	}

	var err error
	switch spec.Arch {
	case MOS6502:
		m.MOS6502, err = mos6502.NewCPU(m.Mem)
		m.CPU = m.MOS6502
	case Z80:
		m.Z80, err = z80.NewCPU(m.Mem, nil)
		m.CPU = m.Z80
	case M68K:
		m.M68K, err = m68k.NewCPU(m.Mem)
		m.CPU = m.M68K
	default:
		return nil, curated.Errorf(UnsupportedArch, string(spec.Arch))
	}
	if err != nil {
		return nil, err
	}

	m.Clk.Register(m.CPU, spec.CPUDivisor)
	m.CPU.Reset()

	return m, nil
}

func (m *Machine) scrambleMemory(rnd *random.Random, size uint32) {
	for a := uint32(0); a < size; a++ {
		m.Mem.Poke(a, rnd.Uint8())
	}
}

// scrambleRegisters randomises the registers real silicon leaves undefined
// at power-on. Runs after construction, before the reset sequence; the
// sequence overwrites whatever the architecture defines (the 6502 status
// mask, the 68000 SSP and PC vectors) and leaves the rest scrambled.
func (m *Machine) scrambleRegisters(rnd *random.Random) {
	switch {
	case m.MOS6502 != nil:
		m.MOS6502.A.Load(rnd.Uint8())
		m.MOS6502.X.Load(rnd.Uint8())
		m.MOS6502.Y.Load(rnd.Uint8())
	case m.Z80 != nil:
		m.Z80.B, m.Z80.C = rnd.Uint8(), rnd.Uint8()
		m.Z80.D, m.Z80.E = rnd.Uint8(), rnd.Uint8()
		m.Z80.H, m.Z80.L = rnd.Uint8(), rnd.Uint8()
	case m.M68K != nil:
		for i := 0; i < 8; i++ {
			m.M68K.D[i] = rnd.Uint32()
			if i < 7 {
				m.M68K.A[i] = rnd.Uint32()
			}
		}
	}

	logger.Log("machine", "power-on state randomised")
}

// Step the machine by one master-clock unit.
func (m *Machine) Step() error {
	return m.Clk.Step()
}

// StepInstruction runs the machine to the CPU's next instruction boundary,
// or to the halted phase. Returns the number of master-clock units
// consumed. The limit guards against a runaway core; zero means no limit.
func (m *Machine) StepInstruction(limit int) (int, error) {
	units := 0
	for {
		if err := m.Clk.Step(); err != nil {
			return units, err
		}
		units++
		if m.CPU.InstructionBoundary() || m.CPU.Phase() == cpu.Halted {
			return units, nil
		}
		if limit > 0 && units >= limit {
			return units, nil
		}
	}
}

// Breakpoint is a predicate over the machine. Evaluated only when the CPU
// is at an instruction boundary: a condition that becomes true in the
// middle of an instruction does not fire until the instruction has
// committed.
type Breakpoint func(m *Machine) bool

// Run the machine until a breakpoint fires, the CPU halts, or the limit of
// master-clock units is exhausted. Returns the number of units consumed.
func (m *Machine) Run(limit int, breakpoints ...Breakpoint) (int, error) {
	units := 0
	for units < limit {
		if err := m.Clk.Step(); err != nil {
			return units, err
		}
		units++

		if m.CPU.Phase() == cpu.Halted {
			return units, nil
		}
		if m.CPU.InstructionBoundary() {
			for _, b := range breakpoints {
				if b(m) {
					return units, nil
				}
			}
		}
	}
	return units, nil
}

// PC returns the active core's program counter, widened to the largest
// address space in the project.
func (m *Machine) PC() uint32 {
	switch {
	case m.MOS6502 != nil:
		return uint32(m.MOS6502.PC.Address())
	case m.Z80 != nil:
		return uint32(m.Z80.PC)
	case m.M68K != nil:
		return m.M68K.PC
	}
	return 0
}

// BreakPC builds a breakpoint on the program counter reaching addr.
func BreakPC(addr uint32) Breakpoint {
	return func(m *Machine) bool {
		return m.PC() == addr
	}
}

// Snapshot is a side-effect-free view of the machine: querying it performs
// no bus access and changes no state.
type Snapshot struct {
	Arch      Arch
	Ticks     uint64
	Phase     cpu.Phase
	Registers string
}

// Snapshot the machine.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Arch:      m.Arch,
		Ticks:     m.Clk.Ticks(),
		Phase:     m.CPU.Phase(),
		Registers: fmt.Sprintf("%v", m.CPU),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("[%s] %s (%s, tick %d)", s.Arch, s.Registers, s.Phase, s.Ticks)
}

// CheckpointMemory takes a compressed copy of the entire memory map. Wait
// and fault regions are not part of the image; they are configuration, not
// state.
func (m *Machine) CheckpointMemory() crunched.Data {
	c := crunched.NewQuick(int(m.Mem.Size()))
	d := *c.Data()
	for a := range d {
		d[a] = m.Mem.Peek(uint32(a))
	}
	return c.Snapshot()
}

// RestoreMemory pokes a memory image taken with CheckpointMemory() back
// into the memory map. CPU registers are untouched.
func (m *Machine) RestoreMemory(c crunched.Data) {
	d := *c.Data()
	for a := range d {
		m.Mem.Poke(uint32(a), d[a])
	}
}
