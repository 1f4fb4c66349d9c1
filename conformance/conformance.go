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

// Package conformance defines the single-instruction test-vector format and
// the harness that replays vectors against the cores. A fixture gives an
// initial machine state, the instruction bytes, the expected final state and
// the expected bus activity; the harness loads the state, runs the
// instruction to its boundary and asserts everything matches, bus cycle by
// bus cycle.
//
// The format is versioned so that vector sets can be shared between
// emulator projects; the harness rejects fixtures from a version it does
// not understand rather than misinterpreting them.
package conformance

import (
	"encoding/json"

	"github.com/clockwork-emu/clockwork/curated"
)

// Version of the fixture format this harness understands.
const Version = 1

// sentinel errors for the conformance package.
const (
	UnsupportedVersion = "conformance: unsupported fixture version: %d"
	UnknownArch        = "conformance: unknown architecture: %s"
	UnknownRegister    = "conformance: unknown register for %s: %s"
	StateMismatch      = "conformance: %s: %s: got %#x, want %#x"
	BusLogMismatch     = "conformance: %s: bus cycle %d: got %s, want %s"
	BusLogLength       = "conformance: %s: bus log length: got %d, want %d"
	Runaway            = "conformance: %s: instruction did not complete"
)

// RAMCell is one byte of memory in a fixture state.
type RAMCell struct {
	Address uint32 `json:"address"`
	Value   uint8  `json:"value"`
}

// State is the machine state half of a fixture: named registers and the
// memory cells that matter to the vector. Register names are the
// architecture's own, lower-case ("pc", "sp", "d0", "ix", ...).
type State struct {
	Registers map[string]uint32 `json:"registers"`
	RAM       []RAMCell         `json:"ram"`
}

// BusCycle is one entry of the expected bus activity: address, access width
// ("b", "w", "l") and direction ("R", "W").
type BusCycle struct {
	Address uint32 `json:"address"`
	Width   string `json:"width"`
	Dir     string `json:"dir"`
}

func (b BusCycle) String() string {
	return b.Dir + b.Width + "@" + hex32(b.Address)
}

func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	var s [8]byte
	for i := 7; i >= 0; i-- {
		s[i] = digits[v&0xf]
		v >>= 4
	}
	return "$" + string(s[:])
}

// Fixture is one conformance vector.
type Fixture struct {
	Version int    `json:"version"`
	Arch    string `json:"arch"`
	Name    string `json:"name"`

	Initial State      `json:"initial_state"`
	Opcode  []uint8    `json:"opcode_bytes"`
	Final   State      `json:"final_state"`
	BusLog  []BusCycle `json:"bus_cycle_log"`
}

// Load parses a fixture from its JSON form, rejecting unknown versions.
func Load(data []byte) (Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, curated.Errorf("conformance: %v", err)
	}
	if f.Version != Version {
		return Fixture{}, curated.Errorf(UnsupportedVersion, f.Version)
	}
	return f, nil
}
