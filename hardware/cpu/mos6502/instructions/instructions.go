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

// Package instructions defines the 6502 instruction set as data. The table
// covers the full opcode space, documented and undocumented, and is
// validated for totality and disjointness when it is built - an opcode
// claimed twice or not at all is an error at construction time, not a latent
// decode bug.
package instructions

import (
	"fmt"

	"github.com/clockwork-emu/clockwork/curated"
)

// AddressingMode describes the method data for the instruction should be
// received.
type AddressingMode int

// List of supported addressing modes.
const (
	Implied AddressingMode = iota
	Immediate
	Relative // relative addressing is used for branch instructions

	Absolute // abs
	ZeroPage // zpg
	Indirect // ind

	IndexedIndirect // (ind,X)
	IndirectIndexed // (ind),Y

	AbsoluteIndexedX // abs,X
	AbsoluteIndexedY // abs,Y

	ZeroPageIndexedX // zpg,X
	ZeroPageIndexedY // zpg,Y
)

// Length returns the number of bytes an instruction with this addressing
// mode occupies in the program, opcode included.
func (m AddressingMode) Length() int {
	switch m {
	case Implied:
		return 1
	case Absolute, Indirect, AbsoluteIndexedX, AbsoluteIndexedY:
		return 3
	}
	return 2
}

// EffectCategory categorises an instruction by the effect it has.
type EffectCategory int

// List of effect categories.
const (
	Read EffectCategory = iota
	Write
	RMW

	// the following three effects have a variable effect on the program
	// counter, depending on the instruction's precise operand.

	// flow consists of the Branch and JMP instructions. Branch instructions
	// specifically can be distinguished by the AddressingMode.
	Flow

	Subroutine
	Interrupt
)

// Definition defines each instruction in the instruction set; one per
// opcode. Definitions are created once, when the table is built, and shared
// by reference; they are never mutated at runtime.
type Definition struct {
	OpCode         uint8
	Operator       Operator
	Bytes          int
	Cycles         int
	AddressingMode AddressingMode
	PageSensitive  bool
	Effect         EffectCategory
	Undocumented   bool
}

// String returns a single instruction definition as a string.
func (defn Definition) String() string {
	return fmt.Sprintf("%02x %s +%dbytes (%d cycles) [mode=%d pagesens=%t effect=%d]",
		defn.OpCode, defn.Operator, defn.Bytes, defn.Cycles, defn.AddressingMode, defn.PageSensitive, defn.Effect)
}

// IsBranch returns true if instruction is a branch instruction.
func (defn Definition) IsBranch() bool {
	return defn.AddressingMode == Relative && defn.Effect == Flow
}

// GetDefinitions returns the complete 6502 opcode table, every opcode value
// mapping to exactly one Definition. An error is returned if the underlying
// data claims an opcode twice or leaves one unclaimed.
func GetDefinitions() ([]*Definition, error) {
	defs := make([]*Definition, 256)

	for _, e := range table {
		if defs[e.opcode] != nil {
			return nil, curated.Errorf("instructions: opcode %#02x claimed twice (%s and %s)",
				e.opcode, defs[e.opcode].Operator, e.operator)
		}
		defs[e.opcode] = &Definition{
			OpCode:         e.opcode,
			Operator:       e.operator,
			Bytes:          e.mode.Length(),
			Cycles:         e.cycles,
			AddressingMode: e.mode,
			PageSensitive:  e.pageSensitive,
			Effect:         e.effect,
			Undocumented:   e.undocumented,
		}
	}

	for i := range defs {
		if defs[i] == nil {
			return nil, curated.Errorf("instructions: opcode %#02x unclaimed", i)
		}
	}

	return defs, nil
}
