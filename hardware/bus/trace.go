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

package bus

import "fmt"

// Access records one completed bus transaction. Used by the conformance
// harness and by the monitor; the CPU cores themselves never retain one past
// the micro-step that issued it.
type Access struct {
	Address   uint32
	Width     Width
	Direction Direction
	Data      uint32
}

func (a Access) String() string {
	return fmt.Sprintf("%s.%s %08x %08x", a.Direction, a.Width, a.Address, a.Data)
}

// Trace wraps a Bus and records every completed access in order. Accesses
// that are still accumulating wait-cycles are not recorded until the cycle
// on which they complete.
type Trace struct {
	bus      Bus
	Accesses []Access
}

// NewTrace is the preferred method of initialisation for the Trace type.
func NewTrace(bus Bus) *Trace {
	return &Trace{bus: bus}
}

// Read implements the Bus interface.
func (t *Trace) Read(address uint32, width Width) (uint32, int, error) {
	data, wait, err := t.bus.Read(address, width)
	if wait == 0 && err == nil {
		t.Accesses = append(t.Accesses, Access{
			Address: address, Width: width, Direction: ReadAccess, Data: data,
		})
	}
	return data, wait, err
}

// Write implements the Bus interface.
func (t *Trace) Write(address uint32, width Width, data uint32) (int, error) {
	wait, err := t.bus.Write(address, width, data)
	if wait == 0 && err == nil {
		t.Accesses = append(t.Accesses, Access{
			Address: address, Width: width, Direction: WriteAccess, Data: data,
		})
	}
	return wait, err
}

// Clear the list of recorded accesses.
func (t *Trace) Clear() {
	t.Accesses = t.Accesses[:0]
}
