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

package conformance

import (
	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/bus"
	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/cpu/m68k"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502"
	"github.com/clockwork-emu/clockwork/hardware/cpu/z80"
	"github.com/clockwork-emu/clockwork/hardware/memory"
)

// spyBus interposes on the memory bus, recording every completed access
// while armed. Accesses held in wait-states record once, on completion.
type spyBus struct {
	mem       *memory.Memory
	recording bool
	log       []BusCycle
}

func (b *spyBus) Read(address uint32, width bus.Width) (uint32, int, error) {
	data, wait, err := b.mem.Read(address, width)
	if b.recording && err == nil && wait == 0 {
		b.log = append(b.log, BusCycle{Address: address, Width: width.String(), Dir: "R"})
	}
	return data, wait, err
}

func (b *spyBus) Write(address uint32, width bus.Width, data uint32) (int, error) {
	wait, err := b.mem.Write(address, width, data)
	if b.recording && err == nil && wait == 0 {
		b.log = append(b.log, BusCycle{Address: address, Width: width.String(), Dir: "W"})
	}
	return wait, err
}

// Run replays a fixture: load the initial state, tick the core to the
// instruction boundary, assert the final state and the bus cycle log. The
// first divergence is returned as an error describing it.
func Run(f Fixture) error {
	if f.Version != Version {
		return curated.Errorf(UnsupportedVersion, f.Version)
	}

	pc, ok := f.Initial.Registers["pc"]
	if !ok {
		return curated.Errorf(UnknownRegister, f.Arch, "pc (required)")
	}

	size := uint32(0x10000)
	if f.Arch == "68000" {
		size = 0x1000000
	}
	spy := &spyBus{mem: memory.NewMemory(size)}

	var core cpu.CPU
	var getReg func(name string) (uint32, bool)
	var setReg func(name string, v uint32) bool

	switch f.Arch {
	case "6502":
		mc, err := mos6502.NewCPU(spy)
		if err != nil {
			return err
		}
		core = mc
		getReg, setReg = regs6502(mc)
	case "z80":
		mc, err := z80.NewCPU(spy, nil)
		if err != nil {
			return err
		}
		core = mc
		getReg, setReg = regsZ80(mc)
	case "68000":
		mc, err := m68k.NewCPU(spy)
		if err != nil {
			return err
		}
		// the 68000 enters through its ticked reset sequence; aim the
		// reset vectors at the fixture state and drain it before loading
		// the rest of the registers
		ssp := f.Initial.Registers["ssp"]
		if v, ok := f.Initial.Registers["a7"]; ok && ssp == 0 {
			ssp = v
		}
		pokeLong(spy.mem, 0, ssp)
		pokeLong(spy.mem, 4, pc)
		mc.Reset()
		for i := 0; i < 40; i++ {
			if err := mc.Tick(); err != nil {
				return err
			}
		}
		core = mc
		getReg, setReg = regs68000(mc)
	default:
		return curated.Errorf(UnknownArch, f.Arch)
	}

	for _, cell := range f.Initial.RAM {
		spy.mem.Poke(cell.Address, cell.Value)
	}
	spy.mem.PokeBytes(pc, f.Opcode...)

	for name, v := range f.Initial.Registers {
		if !setReg(name, v) {
			return curated.Errorf(UnknownRegister, f.Arch, name)
		}
	}

	spy.recording = true

	ticks := 0
	for {
		if err := core.Tick(); err != nil {
			return err
		}
		ticks++
		if core.InstructionBoundary() || core.Phase() == cpu.Halted {
			break
		}
		if ticks > 600 {
			return curated.Errorf(Runaway, f.Name)
		}
	}

	for name, want := range f.Final.Registers {
		got, ok := getReg(name)
		if !ok {
			return curated.Errorf(UnknownRegister, f.Arch, name)
		}
		if got != want {
			return curated.Errorf(StateMismatch, f.Name, name, got, want)
		}
	}
	for _, cell := range f.Final.RAM {
		if got := spy.mem.Peek(cell.Address); got != cell.Value {
			return curated.Errorf(StateMismatch, f.Name, hex32(cell.Address), got, cell.Value)
		}
	}

	if f.BusLog != nil {
		if len(spy.log) != len(f.BusLog) {
			return curated.Errorf(BusLogLength, f.Name, len(spy.log), len(f.BusLog))
		}
		for i := range f.BusLog {
			if spy.log[i] != f.BusLog[i] {
				return curated.Errorf(BusLogMismatch, f.Name, i, spy.log[i], f.BusLog[i])
			}
		}
	}

	return nil
}

func pokeLong(mem *memory.Memory, addr, v uint32) {
	mem.PokeBytes(addr, uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v))
}
