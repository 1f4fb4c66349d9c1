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

package disassembly

import (
	"fmt"

	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/instructions"
)

// MOS6502 disassembles count instructions starting at origin. The operand
// formatting follows the instruction table's addressing mode; undocumented
// instructions print with their upper-case table names.
func MOS6502(mem Peeker, origin uint32, count int) ([]Entry, error) {
	defns, err := instructions.GetDefinitions()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, count)
	addr := origin & 0xffff

	for i := 0; i < count; i++ {
		defn := defns[mem.Peek(addr)]

		e := Entry{Address: addr, Operator: defn.Operator.String()}
		for j := 0; j < defn.Bytes; j++ {
			e.Bytes = append(e.Bytes, mem.Peek((addr+uint32(j))&0xffff))
		}

		var lo, hi uint8
		if defn.Bytes > 1 {
			lo = e.Bytes[1]
		}
		if defn.Bytes > 2 {
			hi = e.Bytes[2]
		}
		word := uint16(hi)<<8 | uint16(lo)

		switch defn.AddressingMode {
		case instructions.Implied:
			// no operand
		case instructions.Immediate:
			e.Operand = fmt.Sprintf("#$%02x", lo)
		case instructions.Relative:
			target := (addr + 2 + uint32(uint16(int16(int8(lo))))) & 0xffff
			e.Operand = fmt.Sprintf("$%04x", target)
		case instructions.Absolute:
			e.Operand = fmt.Sprintf("$%04x", word)
		case instructions.ZeroPage:
			e.Operand = fmt.Sprintf("$%02x", lo)
		case instructions.Indirect:
			e.Operand = fmt.Sprintf("($%04x)", word)
		case instructions.IndexedIndirect:
			e.Operand = fmt.Sprintf("($%02x,X)", lo)
		case instructions.IndirectIndexed:
			e.Operand = fmt.Sprintf("($%02x),Y", lo)
		case instructions.AbsoluteIndexedX:
			e.Operand = fmt.Sprintf("$%04x,X", word)
		case instructions.AbsoluteIndexedY:
			e.Operand = fmt.Sprintf("$%04x,Y", word)
		case instructions.ZeroPageIndexedX:
			e.Operand = fmt.Sprintf("$%02x,X", lo)
		case instructions.ZeroPageIndexedY:
			e.Operand = fmt.Sprintf("$%02x,Y", lo)
		}

		entries = append(entries, e)
		addr = (addr + uint32(defn.Bytes)) & 0xffff
	}

	return entries, nil
}
