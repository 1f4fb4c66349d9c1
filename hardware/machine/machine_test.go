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

package machine_test

import (
	"testing"

	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/machine"
	"github.com/clockwork-emu/clockwork/test"
)

func TestRunToHalt(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{Arch: machine.MOS6502})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.Poke(0xfffc, 0x00)
	m.Mem.Poke(0xfffd, 0x20)
	m.Mem.PokeBytes(0x2000,
		0xa9, 0x01, // LDA #$01
		0xea, // NOP
		0x02, // KIL
	)

	// the reset sequence is itself ticked
	units, err := m.StepInstruction(0)
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, units, 7)
	test.Equate(t, m.PC(), 0x2000)

	_, err = m.Run(100)
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, m.CPU.Phase() == cpu.Halted, true)
	test.Equate(t, m.MOS6502.A.Value(), 0x01)

	// a halted machine keeps accepting steps without changing state
	snap := m.Snapshot()
	for i := 0; i < 20; i++ {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	test.Equate(t, m.Snapshot().Registers, snap.Registers)
}

func TestClockDivisor(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{
		Arch:       machine.MOS6502,
		CPUDivisor: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.Poke(0xfffc, 0x00)
	m.Mem.Poke(0xfffd, 0x20)

	// 7 CPU cycles at one tick every 3 master-clock units. The first tick
	// lands on the first unit, the nth on unit 3(n-1)+1
	units, err := m.StepInstruction(0)
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, units, 19)
	test.Equate(t, m.PC(), 0x2000)
}

func TestBreakpointAtBoundary(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{Arch: machine.MOS6502})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.Poke(0xfffc, 0x00)
	m.Mem.Poke(0xfffd, 0x20)
	m.Mem.PokeBytes(0x2000,
		0xa2, 0x10, // LDX #$10
		0xe8, // INX
		0x02, // KIL
	)

	if _, err := m.StepInstruction(0); err != nil {
		t.Fatal(err)
	}

	units, err := m.Run(100, machine.BreakPC(0x2002))
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, units, 2)
	test.Equate(t, m.PC(), 0x2002)
	test.Equate(t, m.CPU.InstructionBoundary(), true)
	test.Equate(t, m.MOS6502.X.Value(), 0x10)
}

func TestZ80Machine(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{Arch: machine.Z80})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.PokeBytes(0x0000,
		0x3e, 0x42, // LD A,$42
		0x76, // HALT
	)

	_, err = m.Run(100)
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, m.CPU.Phase() == cpu.Halted, true)
	test.Equate(t, m.Z80.A, 0x42)
}

func TestM68KMachine(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{
		Arch:    machine.M68K,
		MemSize: 0x10000,
	})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.PokeBytes(0x0000,
		0x00, 0x00, 0x80, 0x00, // SSP
		0x00, 0x00, 0x04, 0x00, // PC
	)
	m.Mem.PokeBytes(0x0400,
		0x4e, 0x71, // NOP
		0x4e, 0x72, 0x27, 0x00, // STOP #$2700
	)

	units, err := m.StepInstruction(0)
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, units, 40)
	test.Equate(t, m.PC(), 0x400)
	test.Equate(t, m.M68K.A[7], 0x8000)

	_, err = m.Run(100)
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, m.CPU.Phase() == cpu.Halted, true)
}

func TestRandomStateIsDeterministic(t *testing.T) {
	spec := machine.Spec{
		Arch:        machine.Z80,
		RandomState: true,
		RandomSeed:  17,
	}

	m1, err := machine.NewMachine(spec)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := machine.NewMachine(spec)
	if err != nil {
		t.Fatal(err)
	}

	nonzero := 0
	for a := uint32(0); a < 0x10000; a++ {
		test.Equate(t, m1.Mem.Peek(a), m2.Mem.Peek(a))
		if m1.Mem.Peek(a) != 0 {
			nonzero++
		}
	}
	test.Equate(t, nonzero > 0, true)
	test.Equate(t, m1.Z80.B, m2.Z80.B)
	test.Equate(t, m1.Z80.H, m2.Z80.H)
}

func TestMemoryCheckpoint(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{Arch: machine.MOS6502})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.Poke(0x3000, 0xaa)
	cp := m.CheckpointMemory()

	// a mostly zeroed 64k image compresses
	test.Equate(t, cp.IsCrunched(), true)

	m.Mem.Poke(0x3000, 0x55)
	m.RestoreMemory(cp)
	test.Equate(t, m.Mem.Peek(0x3000), 0xaa)
}

func TestUnsupportedArch(t *testing.T) {
	_, err := machine.NewMachine(machine.Spec{Arch: "pdp11"})
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, machine.UnsupportedArch), true)
}
