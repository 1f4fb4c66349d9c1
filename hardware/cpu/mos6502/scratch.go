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
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/instructions"
)

// Scratch is the per-instruction working state of the core. It is distinct
// from the architectural register file: nothing in here survives an
// instruction. It must be clear at every entry to the fetch phase and the
// core checks that it is.
type Scratch struct {
	opcode uint8
	defn   *instructions.Definition

	// effective address being assembled
	address uint16

	// high byte of the address before any index fix-up. needed by the
	// undocumented "high byte and" stores
	baseHi uint8

	// zero page pointer for the indirect modes
	pointer uint8

	// data value in flight (RMW intermediate, branch offset)
	value  uint8
	offset uint8

	// index arithmetic overflowed and a fix-up cycle is owed
	carry bool

	// branch decision
	taken bool

	// interrupt source for a service-entry sequence in progress
	source InterruptSource

	// position in the active micro-op sequence
	active plan
	cursor int
}

// Clear returns the scratch state to its zero value. Called on every exit
// path from an instruction: normal completion, service entry and reset.
func (s *Scratch) Clear() {
	*s = Scratch{}
}

// IsClear returns true if the scratch state is at its zero value.
func (s *Scratch) IsClear() bool {
	return s.opcode == 0 && s.defn == nil &&
		s.address == 0 && s.baseHi == 0 && s.pointer == 0 &&
		s.value == 0 && s.offset == 0 &&
		!s.carry && !s.taken &&
		s.source == BRK &&
		s.active == nil && s.cursor == 0
}
