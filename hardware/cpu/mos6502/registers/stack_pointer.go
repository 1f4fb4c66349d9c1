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

package registers

import "fmt"

// StackPointer is the 8 bit stack pointer of the 6502. The stack is fixed to
// page one of the address space.
type StackPointer struct {
	value uint8
}

// NewStackPointer is the preferred method of initialisation for the
// StackPointer type.
func NewStackPointer(val uint8) StackPointer {
	return StackPointer{value: val}
}

// Label returns the canonical name of the stack pointer.
func (sp StackPointer) Label() string {
	return "SP"
}

func (sp StackPointer) String() string {
	return fmt.Sprintf("%#02x", sp.value)
}

// Value returns the current value of the stack pointer.
func (sp StackPointer) Value() uint8 {
	return sp.value
}

// Address returns the stack pointer as a page one address.
func (sp StackPointer) Address() uint16 {
	return 0x0100 | uint16(sp.value)
}

// IsNegative checks the sign bit of the stack pointer.
func (sp StackPointer) IsNegative() bool {
	return sp.value&0x80 == 0x80
}

// IsZero checks if stack pointer is zero.
func (sp StackPointer) IsZero() bool {
	return sp.value == 0
}

// Load value into stack pointer.
func (sp *StackPointer) Load(val uint8) {
	sp.value = val
}

// Up moves the stack pointer towards the top of the stack (decrementing the
// value, the 6502 stack grows downwards).
func (sp *StackPointer) Up() {
	sp.value--
}

// Down moves the stack pointer towards the bottom of the stack.
func (sp *StackPointer) Down() {
	sp.value++
}

// AND value with stack pointer. Used by the LAS undocumented instruction.
func (sp *StackPointer) AND(val uint8) {
	sp.value &= val
}
