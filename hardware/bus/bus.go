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

// Package bus defines the contract between a CPU core and the rest of the
// machine. The CPU is the only component that initiates bus traffic; chipset
// components (DMA, video) make themselves felt through the wait-cycle value
// returned with every access.
//
// Wait-cycles must be re-queried on every CPU tick. A non-zero value means
// the access has not completed and the CPU must hold its current micro-step.
// The access is considered to have taken place on the first tick for which
// the bus reports zero wait-cycles.
package bus

// Width of a single bus access.
type Width int

// List of valid access widths. Long is only meaningful on 32-bit data cores
// and is performed as two word accesses by the 68000 core.
const (
	Byte Width = iota
	Word
	Long
)

func (w Width) String() string {
	switch w {
	case Byte:
		return "b"
	case Word:
		return "w"
	case Long:
		return "l"
	}
	return "?"
}

// Bytes returns the number of bytes transferred by an access of this width.
func (w Width) Bytes() int {
	switch w {
	case Byte:
		return 1
	case Word:
		return 2
	case Long:
		return 4
	}
	return 0
}

// Direction of a single bus access.
type Direction int

// List of access directions.
const (
	ReadAccess Direction = iota
	WriteAccess
)

func (d Direction) String() string {
	if d == WriteAccess {
		return "W"
	}
	return "R"
}

// AddressFault is the error pattern returned by a Bus implementation for an
// access to an address that faults on real hardware. It is routed to the
// CPU's bus-error exception and is never surfaced as an emulator error.
const AddressFault = "bus: address fault: %#08x"

// Bus is the address-space contract implemented by memory and chipset
// collaborators and consumed by the CPU cores.
//
// The wait return value is the number of cycles the access still needs
// before it can complete. Implementations must answer consistently while an
// access is being retried: a CPU that is told to wait will repeat the same
// query on its next tick.
type Bus interface {
	Read(address uint32, width Width) (data uint32, wait int, err error)
	Write(address uint32, width Width, data uint32) (wait int, err error)
}
