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

package execution

import (
	"fmt"

	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/instructions"
)

// Result records the execution details of the most recently completed (or
// still in-flight) instruction. It is the raw material for the disassembler
// and the monitor.
type Result struct {
	// address of the instruction (the program counter value at the fetch of
	// the opcode)
	Address uint16

	Defn *instructions.Definition

	// the operand bytes assembled into a single value. for a branch
	// instruction this is the unprocessed offset byte.
	InstructionData uint16

	// number of program bytes consumed by the instruction, opcode included
	ByteCount int

	// the actual number of cycles taken by the instruction. bus wait-states
	// stall the engine but do not count as instruction cycles
	Cycles int

	// whether the 8 bit index addition overflowed, costing the extra cycle
	PageFault bool

	// whether the values in this struct are complete. fields other than
	// Address and Defn are undefined unless Final is true
	Final bool
}

func (r Result) String() string {
	if r.Defn == nil {
		return fmt.Sprintf("%#04x ???", r.Address)
	}
	switch r.ByteCount {
	case 2:
		return fmt.Sprintf("%#04x %s $%02x", r.Address, r.Defn.Operator, r.InstructionData)
	case 3:
		return fmt.Sprintf("%#04x %s $%04x", r.Address, r.Defn.Operator, r.InstructionData)
	}
	return fmt.Sprintf("%#04x %s", r.Address, r.Defn.Operator)
}

// Reset nullifies the result ready for reuse by the next instruction.
func (r *Result) Reset() {
	r.Address = 0
	r.Defn = nil
	r.InstructionData = 0
	r.ByteCount = 0
	r.Cycles = 0
	r.PageFault = false
	r.Final = false
}
