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

package z80

import "strings"

// Flags is the Z80 flag register in normal form. X and Y are the
// undocumented flags in bits 3 and 5; they are real bits of F and real
// software observes them.
type Flags struct {
	Sign           bool // bit 7
	Zero           bool // bit 6
	Y              bool // bit 5
	HalfCarry      bool // bit 4
	X              bool // bit 3
	ParityOverflow bool // bit 2
	Subtract       bool // bit 1
	Carry          bool // bit 0
}

// Value packs the flags into the F register byte.
func (f Flags) Value() uint8 {
	var v uint8
	if f.Sign {
		v |= 0x80
	}
	if f.Zero {
		v |= 0x40
	}
	if f.Y {
		v |= 0x20
	}
	if f.HalfCarry {
		v |= 0x10
	}
	if f.X {
		v |= 0x08
	}
	if f.ParityOverflow {
		v |= 0x04
	}
	if f.Subtract {
		v |= 0x02
	}
	if f.Carry {
		v |= 0x01
	}
	return v
}

// FromValue unpacks an F register byte.
func (f *Flags) FromValue(v uint8) {
	f.Sign = v&0x80 == 0x80
	f.Zero = v&0x40 == 0x40
	f.Y = v&0x20 == 0x20
	f.HalfCarry = v&0x10 == 0x10
	f.X = v&0x08 == 0x08
	f.ParityOverflow = v&0x04 == 0x04
	f.Subtract = v&0x02 == 0x02
	f.Carry = v&0x01 == 0x01
}

func (f Flags) String() string {
	s := strings.Builder{}
	for _, b := range []struct {
		on bool
		r  rune
	}{
		{f.Sign, 's'}, {f.Zero, 'z'}, {f.Y, 'y'}, {f.HalfCarry, 'h'},
		{f.X, 'x'}, {f.ParityOverflow, 'p'}, {f.Subtract, 'n'}, {f.Carry, 'c'},
	} {
		if b.on {
			s.WriteRune(b.r + 'A' - 'a')
		} else {
			s.WriteRune(b.r)
		}
	}
	return s.String()
}

// 16 bit pair access. the pairs are stored as their 8 bit halves; these are
// convenience views.

func (mc *CPU) getBC() uint16 { return uint16(mc.B)<<8 | uint16(mc.C) }
func (mc *CPU) getDE() uint16 { return uint16(mc.D)<<8 | uint16(mc.E) }
func (mc *CPU) getHL() uint16 { return uint16(mc.H)<<8 | uint16(mc.L) }
func (mc *CPU) getAF() uint16 { return uint16(mc.A)<<8 | uint16(mc.F.Value()) }

func (mc *CPU) setBC(v uint16) { mc.B = uint8(v >> 8); mc.C = uint8(v) }
func (mc *CPU) setDE(v uint16) { mc.D = uint8(v >> 8); mc.E = uint8(v) }
func (mc *CPU) setHL(v uint16) { mc.H = uint8(v >> 8); mc.L = uint8(v) }
func (mc *CPU) setAF(v uint16) { mc.A = uint8(v >> 8); mc.F.FromValue(uint8(v)) }

// indexContext selects whether an instruction sees HL, IX or IY in the
// positions the base encoding reserves for HL. It is latched from the DD/FD
// prefix bytes and is part of scratch state.
type indexContext int

const (
	ctxHL indexContext = iota
	ctxIX
	ctxIY
)

func (ctx indexContext) String() string {
	switch ctx {
	case ctxIX:
		return "ix"
	case ctxIY:
		return "iy"
	}
	return "hl"
}

// getIndex returns the 16 bit register the context substitutes for HL.
func (mc *CPU) getIndex(ctx indexContext) uint16 {
	switch ctx {
	case ctxIX:
		return mc.IX
	case ctxIY:
		return mc.IY
	}
	return mc.getHL()
}

func (mc *CPU) setIndex(ctx indexContext, v uint16) {
	switch ctx {
	case ctxIX:
		mc.IX = v
	case ctxIY:
		mc.IY = v
	default:
		mc.setHL(v)
	}
}

// r8 describes one 8 bit register position in the instruction encoding.
// Entry 6 of an r8 table is the memory operand and has nil accessors; plan
// generators special-case it.
type r8 struct {
	name string
	get  func(mc *CPU) uint8
	set  func(mc *CPU, v uint8)
}

// regs8 returns the 8 bit register table for an index context. Under DD/FD
// the H and L positions address the halves of the index register, except in
// the (IX+d) forms themselves, which the generators build from the ctxHL
// table.
func regs8(ctx indexContext) [8]r8 {
	t := [8]r8{
		{"B", func(mc *CPU) uint8 { return mc.B }, func(mc *CPU, v uint8) { mc.B = v }},
		{"C", func(mc *CPU) uint8 { return mc.C }, func(mc *CPU, v uint8) { mc.C = v }},
		{"D", func(mc *CPU) uint8 { return mc.D }, func(mc *CPU, v uint8) { mc.D = v }},
		{"E", func(mc *CPU) uint8 { return mc.E }, func(mc *CPU, v uint8) { mc.E = v }},
		{"H", func(mc *CPU) uint8 { return mc.H }, func(mc *CPU, v uint8) { mc.H = v }},
		{"L", func(mc *CPU) uint8 { return mc.L }, func(mc *CPU, v uint8) { mc.L = v }},
		{"(HL)", nil, nil},
		{"A", func(mc *CPU) uint8 { return mc.A }, func(mc *CPU, v uint8) { mc.A = v }},
	}

	switch ctx {
	case ctxIX:
		t[4] = r8{"IXH", func(mc *CPU) uint8 { return uint8(mc.IX >> 8) },
			func(mc *CPU, v uint8) { mc.IX = uint16(v)<<8 | mc.IX&0x00ff }}
		t[5] = r8{"IXL", func(mc *CPU) uint8 { return uint8(mc.IX) },
			func(mc *CPU, v uint8) { mc.IX = mc.IX&0xff00 | uint16(v) }}
		t[6].name = "(IX+d)"
	case ctxIY:
		t[4] = r8{"IYH", func(mc *CPU) uint8 { return uint8(mc.IY >> 8) },
			func(mc *CPU, v uint8) { mc.IY = uint16(v)<<8 | mc.IY&0x00ff }}
		t[5] = r8{"IYL", func(mc *CPU) uint8 { return uint8(mc.IY) },
			func(mc *CPU, v uint8) { mc.IY = mc.IY&0xff00 | uint16(v) }}
		t[6].name = "(IY+d)"
	}

	return t
}

// r16 describes one 16 bit register position in the instruction encoding.
type r16 struct {
	name string
	get  func(mc *CPU) uint16
	set  func(mc *CPU, v uint16)
}

// regs16 is the rp table (BC DE HL SP), with HL substituted by context.
func regs16(ctx indexContext) [4]r16 {
	return [4]r16{
		{"BC", (*CPU).getBC, (*CPU).setBC},
		{"DE", (*CPU).getDE, (*CPU).setDE},
		{ctx.String(), func(mc *CPU) uint16 { return mc.getIndex(ctx) },
			func(mc *CPU, v uint16) { mc.setIndex(ctx, v) }},
		{"SP", func(mc *CPU) uint16 { return mc.SP },
			func(mc *CPU, v uint16) { mc.SP = v }},
	}
}

// regs16Stack is the rp2 table used by PUSH and POP (AF in place of SP).
func regs16Stack(ctx indexContext) [4]r16 {
	t := regs16(ctx)
	t[3] = r16{"AF", (*CPU).getAF, (*CPU).setAF}
	return t
}
