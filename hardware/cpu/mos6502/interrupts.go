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

// InterruptSource identifies what caused a service-entry sequence to begin.
type InterruptSource int

// List of interrupt sources.
const (
	BRK InterruptSource = iota
	IRQ
	NMI
	RESET
)

func (src InterruptSource) String() string {
	switch src {
	case BRK:
		return "BRK"
	case IRQ:
		return "IRQ"
	case NMI:
		return "NMI"
	case RESET:
		return "RESET"
	}
	return "unknown"
}

// Vector returns the address of the service-routine pointer for the
// interrupt source. The address is a function of the source alone; in
// particular it does not depend on which instruction was interrupted or on
// any other machine state.
func Vector(src InterruptSource) uint16 {
	switch src {
	case NMI:
		return 0xfffa
	case RESET:
		return 0xfffc
	}

	// BRK and IRQ share a vector. they are distinguished by the state of the
	// break flag in the pushed status byte
	return 0xfffe
}

// SetIRQ sets the level of the IRQ line. The line is sampled at every
// instruction boundary and an assertion is honoured only when the interrupt
// disable flag is clear. The caller is responsible for holding the line
// until the interrupt is serviced, as a real device would.
func (mc *CPU) SetIRQ(assert bool) {
	mc.irqLine = assert
}

// SetNMI sets the level of the NMI line. The service entry is triggered by
// the rising edge; the line level itself is otherwise ignored.
func (mc *CPU) SetNMI(assert bool) {
	if assert && !mc.nmiLine {
		mc.nmiLatched = true
	}
	mc.nmiLine = assert
}

// beginInterrupt abandons the fetch phase in favour of the hardware
// service-entry sequence. Called only at an instruction boundary.
func (mc *CPU) beginInterrupt(src InterruptSource) {
	mc.LastResult.Reset()
	mc.LastResult.Address = mc.PC.Address()
	mc.scratch.source = src
	mc.scratch.active = mc.interruptPlan
	mc.scratch.cursor = 0
	mc.phase = phaseExecute
}
