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

// Package m68k implements the Motorola 68000 core.
//
// One Tick is one clock period. The bus moves one word per four-period bus
// cycle and every micro-op in an instruction plan is weighted accordingly:
// extension word fetches, operand reads and writes are four periods each,
// with long operands split into two word cycles. Instruction-stream words
// are consumed through the scratch extension cursor; the program counter
// only catches up with it at the instruction boundary, or is set directly
// by a control transfer.
//
// The opcode space decodes through a mask/value row table resolved into a
// direct-mapped dispatch array at construction. Overlapping rows are
// settled by mask specificity; two rows claiming an opcode at equal
// specificity fail construction rather than misdecoding at runtime.
//
// Exception entry is itself a micro-op plan: context save, vector fetch,
// handler prefetch. The vector address is derived from the vector number
// alone, whatever raised the exception. STOP parks the core in the Halted
// phase until an interrupt above the mask arrives.
package m68k
