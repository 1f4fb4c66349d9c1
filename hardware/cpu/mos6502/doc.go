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

// Package mos6502 is a cycle-accurate 6502 core driven one tick at a time.
//
// Every cycle of every instruction, documented and undocumented, is a
// micro-op: one entry in a per-opcode sequence built and validated when the
// core is constructed. A tick runs at most one micro-op and a micro-op makes
// at most one bus transaction. The 6502 touches the bus on every single
// cycle, so unlike the other cores there are no internal-only micro-ops,
// only phantom reads.
//
// Bus wait-states stall the core without costing instruction cycles: a
// stalled micro-op is retried, re-querying the same transaction, until the
// bus reports the access complete.
//
// The per-instruction working state lives in the Scratch type and is
// asserted clear at every instruction boundary.
package mos6502
