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

// Package disassembly renders a window of memory as instruction text, one
// disassembler per architecture. The disassemblers read through a
// side-effect-free peek interface: disassembling never advances wait-state
// machinery or touches any other live bus state.
//
// Disassembly is static. A window that starts mid-instruction, or covers
// data, decodes to whatever those bytes happen to mean; the callers (the
// monitor prompt in particular) aim the window at a known instruction
// boundary, usually the program counter.
package disassembly

import (
	"fmt"
	"strings"
)

// Peeker is the memory view a disassembler reads from. memory.Memory
// implements it.
type Peeker interface {
	Peek(address uint32) uint8
}

// Entry is one disassembled instruction.
type Entry struct {
	Address  uint32
	Bytes    []uint8
	Operator string
	Operand  string
}

// Next returns the address of the instruction following this one.
func (e Entry) Next() uint32 {
	return e.Address + uint32(len(e.Bytes))
}

func (e Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("$%04x  ", e.Address))
	for _, b := range e.Bytes {
		s.WriteString(fmt.Sprintf("%02x ", b))
	}
	for i := len(e.Bytes); i < 6; i++ {
		s.WriteString("   ")
	}
	s.WriteString(" ")
	s.WriteString(e.Operator)
	if e.Operand != "" {
		s.WriteString(" ")
		s.WriteString(e.Operand)
	}
	return s.String()
}

// Disassembler decodes count instructions starting at origin.
type Disassembler func(mem Peeker, origin uint32, count int) ([]Entry, error)
