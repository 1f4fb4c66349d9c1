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

// Package z80 is a cycle-accurate Z80 core driven one tick at a time.
//
// One tick is one T-state. The Z80 groups T-states into machine cycles and
// only touches the bus on the final T-state of a cycle, so unlike the 6502
// core the micro-ops here are weighted: each carries the length of its
// machine cycle and the engine counts down to the bus transaction. A bus
// wait-state holds the countdown and the same transaction is re-queried on
// the next tick.
//
// Prefix bytes (DD, FD, CB, ED) each cost a full opcode fetch cycle and
// steer the decode of the byte that follows; the DD CB and FD CB sequences
// fetch a displacement and a sub-opcode with a fixed plan that splices in
// the sub-opcode's own micro-ops. Instructions that are pure register work
// finish inside their fetch cycle and have no plan at all.
//
// The undocumented flag bits (X and Y, bits 3 and 5 of F) are modelled
// throughout, including the internal WZ register that leaks into them in
// the memory forms of BIT.
package z80
