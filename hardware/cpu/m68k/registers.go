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

package m68k

import "strings"

// Status is the 68000 status register in normal form. The lower byte is the
// condition code register; the upper byte is supervisor state.
type Status struct {
	Extend   bool // X, bit 4
	Negative bool // N, bit 3
	Zero     bool // Z, bit 2
	Overflow bool // V, bit 1
	Carry    bool // C, bit 0

	InterruptMask uint8 // bits 10-8
	Supervisor    bool  // S, bit 13
	Trace         bool  // T, bit 15
}

// Value packs the status register into its architected word.
func (sr Status) Value() uint16 {
	v := uint16(sr.InterruptMask&0x07) << 8
	if sr.Trace {
		v |= 0x8000
	}
	if sr.Supervisor {
		v |= 0x2000
	}
	v |= uint16(sr.CCR())
	return v
}

// CCR packs the condition code half of the status register.
func (sr Status) CCR() uint8 {
	var v uint8
	if sr.Extend {
		v |= 0x10
	}
	if sr.Negative {
		v |= 0x08
	}
	if sr.Zero {
		v |= 0x04
	}
	if sr.Overflow {
		v |= 0x02
	}
	if sr.Carry {
		v |= 0x01
	}
	return v
}

// FromCCR unpacks the condition code half, leaving the system half alone.
func (sr *Status) FromCCR(v uint8) {
	sr.Extend = v&0x10 == 0x10
	sr.Negative = v&0x08 == 0x08
	sr.Zero = v&0x04 == 0x04
	sr.Overflow = v&0x02 == 0x02
	sr.Carry = v&0x01 == 0x01
}

// FromValue unpacks a full status word. The caller deals with the stack
// pointer bank switch if S changed.
func (sr *Status) FromValue(v uint16) {
	sr.Trace = v&0x8000 == 0x8000
	sr.Supervisor = v&0x2000 == 0x2000
	sr.InterruptMask = uint8(v>>8) & 0x07
	sr.FromCCR(uint8(v))
}

func (sr Status) String() string {
	s := strings.Builder{}
	if sr.Trace {
		s.WriteRune('T')
	} else {
		s.WriteRune('t')
	}
	if sr.Supervisor {
		s.WriteRune('S')
	} else {
		s.WriteRune('s')
	}
	s.WriteRune('0' + rune(sr.InterruptMask))
	for _, b := range []struct {
		on bool
		r  rune
	}{
		{sr.Extend, 'x'}, {sr.Negative, 'n'}, {sr.Zero, 'z'},
		{sr.Overflow, 'v'}, {sr.Carry, 'c'},
	} {
		if b.on {
			s.WriteRune(b.r + 'A' - 'a')
		} else {
			s.WriteRune(b.r)
		}
	}
	return s.String()
}

// opSize is the operand width of a 68000 operation.
type opSize int

const (
	sizeByte opSize = iota
	sizeWord
	sizeLong
)

func (s opSize) bytes() uint32 {
	switch s {
	case sizeByte:
		return 1
	case sizeWord:
		return 2
	}
	return 4
}

func (s opSize) mask() uint32 {
	switch s {
	case sizeByte:
		return 0x000000ff
	case sizeWord:
		return 0x0000ffff
	}
	return 0xffffffff
}

func (s opSize) signBit() uint32 {
	switch s {
	case sizeByte:
		return 0x00000080
	case sizeWord:
		return 0x00008000
	}
	return 0x80000000
}

func (s opSize) String() string {
	switch s {
	case sizeByte:
		return "b"
	case sizeWord:
		return "w"
	}
	return "l"
}

// merge writes the low s-sized part of v into dst, preserving the rest.
// Data register writes narrower than long leave the upper bits alone.
func (s opSize) merge(dst, v uint32) uint32 {
	return dst&^s.mask() | v&s.mask()
}

// signExtend widens the s-sized value in v to 32 bits.
func (s opSize) signExtend(v uint32) uint32 {
	switch s {
	case sizeByte:
		return uint32(int32(int8(v)))
	case sizeWord:
		return uint32(int32(int16(v)))
	}
	return v
}
