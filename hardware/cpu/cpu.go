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

// Package cpu defines the small amount of behaviour common to every CPU core
// in the project. The cores themselves live in the sub-packages, one per
// architecture family.
//
// Every core is driven the same way: the machine's master clock calls Tick()
// once per divisor alignment and the core performs at most one bus
// transaction's worth of work. An instruction in progress is represented by
// an explicit micro-op cursor, never by a goroutine or any other run-until-
// done construct. A core that has been stalled by bus wait-cycles still
// receives ticks but its cursor does not advance.
package cpu

// Phase describes where in the instruction lifecycle a core currently is.
// The DecodeAndLatch phase is combinational on real silicon and is entered
// and left within the final tick of the Fetch phase; it is only ever
// observed in a snapshot taken from inside the core's own test hooks.
type Phase int

// List of engine phases.
const (
	Fetch Phase = iota
	DecodeAndLatch
	ExecuteStep
	Halted
)

func (p Phase) String() string {
	switch p {
	case Fetch:
		return "fetch"
	case DecodeAndLatch:
		return "decode"
	case ExecuteStep:
		return "execute"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// CPU is the contract every core implements for the benefit of the machine
// driving loop and the monitor. The architecture-specific surface (register
// snapshots in particular) is on the concrete types.
type CPU interface {
	// Tick performs one CPU cycle's worth of work. Safe to call in the
	// Halted phase, where it is a no-op.
	Tick() error

	// Reset fully reinitialises register file and scratch state, bypassing
	// any in-progress micro-op, and re-enters the architecture's reset
	// vector-fetch sequence. The only permitted way to abort in-flight
	// state.
	Reset()

	// InstructionBoundary is true when no instruction is partially
	// executed. Breakpoint predicates and interrupt sampling only ever
	// happen when this is true.
	InstructionBoundary() bool

	// Phase returns the current engine phase.
	Phase() Phase
}
