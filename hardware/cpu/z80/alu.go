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

// flag arithmetic for the Z80 ALU. every operation states its complete flag
// behaviour here; nothing is inferred by the plan generators.

// parity returns true for an even number of set bits (the PV convention).
func parity(v uint8) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

// setSZXY sets the sign, zero and undocumented copy flags from a result.
func (mc *CPU) setSZXY(v uint8) {
	mc.F.Sign = v&0x80 == 0x80
	mc.F.Zero = v == 0
	mc.setXY(v)
}

// setXY copies bits 3 and 5 of the source into the undocumented flags. The
// source is usually the result but some instructions take it from an
// operand or an address byte instead.
func (mc *CPU) setXY(v uint8) {
	mc.F.Y = v&0x20 == 0x20
	mc.F.X = v&0x08 == 0x08
}

func (mc *CPU) add8(v uint8, carry bool) {
	a := mc.A
	c := uint8(0)
	if carry {
		c = 1
	}
	r := a + v + c

	mc.F.Carry = uint16(a)+uint16(v)+uint16(c) > 0xff
	mc.F.HalfCarry = (a&0x0f)+(v&0x0f)+c > 0x0f
	mc.F.ParityOverflow = (a^v)&0x80 == 0 && (a^r)&0x80 != 0
	mc.F.Subtract = false
	mc.setSZXY(r)
	mc.A = r
}

func (mc *CPU) sub8(v uint8, carry bool) {
	a := mc.A
	c := uint8(0)
	if carry {
		c = 1
	}
	r := a - v - c

	mc.F.Carry = uint16(a) < uint16(v)+uint16(c)
	mc.F.HalfCarry = a&0x0f < v&0x0f+c
	mc.F.ParityOverflow = (a^v)&0x80 != 0 && (a^r)&0x80 != 0
	mc.F.Subtract = true
	mc.setSZXY(r)
	mc.A = r
}

// cp8 is a subtraction that discards the result. X and Y come from the
// operand, not the result; CP is the one ALU operation where they differ.
func (mc *CPU) cp8(v uint8) {
	a := mc.A
	r := a - v

	mc.F.Carry = a < v
	mc.F.HalfCarry = a&0x0f < v&0x0f
	mc.F.ParityOverflow = (a^v)&0x80 != 0 && (a^r)&0x80 != 0
	mc.F.Subtract = true
	mc.F.Sign = r&0x80 == 0x80
	mc.F.Zero = r == 0
	mc.setXY(v)
}

func (mc *CPU) and8(v uint8) {
	mc.A &= v
	mc.F.Carry = false
	mc.F.HalfCarry = true
	mc.F.ParityOverflow = parity(mc.A)
	mc.F.Subtract = false
	mc.setSZXY(mc.A)
}

func (mc *CPU) or8(v uint8) {
	mc.A |= v
	mc.F.Carry = false
	mc.F.HalfCarry = false
	mc.F.ParityOverflow = parity(mc.A)
	mc.F.Subtract = false
	mc.setSZXY(mc.A)
}

func (mc *CPU) xor8(v uint8) {
	mc.A ^= v
	mc.F.Carry = false
	mc.F.HalfCarry = false
	mc.F.ParityOverflow = parity(mc.A)
	mc.F.Subtract = false
	mc.setSZXY(mc.A)
}

// inc8 and dec8 leave the carry flag alone; multi-byte loops depend on it.
func (mc *CPU) inc8(v uint8) uint8 {
	r := v + 1
	mc.F.HalfCarry = v&0x0f == 0x0f
	mc.F.ParityOverflow = v == 0x7f
	mc.F.Subtract = false
	mc.setSZXY(r)
	return r
}

func (mc *CPU) dec8(v uint8) uint8 {
	r := v - 1
	mc.F.HalfCarry = v&0x0f == 0x00
	mc.F.ParityOverflow = v == 0x80
	mc.F.Subtract = true
	mc.setSZXY(r)
	return r
}

// add16 is the ADD HL,rp flag rule: only carry, half-carry (from bit 11)
// and the undocumented copies (from the high byte of the result) change.
func (mc *CPU) add16(dst, v uint16) uint16 {
	r := dst + v
	mc.F.Carry = uint32(dst)+uint32(v) > 0xffff
	mc.F.HalfCarry = (dst&0x0fff)+(v&0x0fff) > 0x0fff
	mc.F.Subtract = false
	mc.setXY(uint8(r >> 8))
	mc.WZ = dst + 1
	return r
}

func (mc *CPU) adc16(v uint16) {
	dst := mc.getHL()
	c := uint16(0)
	if mc.F.Carry {
		c = 1
	}
	r := dst + v + c

	mc.F.Carry = uint32(dst)+uint32(v)+uint32(c) > 0xffff
	mc.F.HalfCarry = (dst&0x0fff)+(v&0x0fff)+c > 0x0fff
	mc.F.ParityOverflow = (dst^v)&0x8000 == 0 && (dst^r)&0x8000 != 0
	mc.F.Subtract = false
	mc.F.Sign = r&0x8000 == 0x8000
	mc.F.Zero = r == 0
	mc.setXY(uint8(r >> 8))
	mc.WZ = dst + 1
	mc.setHL(r)
}

func (mc *CPU) sbc16(v uint16) {
	dst := mc.getHL()
	c := uint16(0)
	if mc.F.Carry {
		c = 1
	}
	r := dst - v - c

	mc.F.Carry = uint32(dst) < uint32(v)+uint32(c)
	mc.F.HalfCarry = dst&0x0fff < v&0x0fff+c
	mc.F.ParityOverflow = (dst^v)&0x8000 != 0 && (dst^r)&0x8000 != 0
	mc.F.Subtract = true
	mc.F.Sign = r&0x8000 == 0x8000
	mc.F.Zero = r == 0
	mc.setXY(uint8(r >> 8))
	mc.WZ = dst + 1
	mc.setHL(r)
}

// daa is the decimal correction of the accumulator: a pure nibble-wise
// function of A and the H, N and C flags.
func (mc *CPU) daa() {
	a := mc.A
	var adjust uint8
	carry := mc.F.Carry

	if mc.F.HalfCarry || a&0x0f > 0x09 {
		adjust |= 0x06
	}
	if carry || a > 0x99 {
		adjust |= 0x60
		carry = true
	}

	if mc.F.Subtract {
		mc.F.HalfCarry = mc.F.HalfCarry && a&0x0f < 0x06
		a -= adjust
	} else {
		mc.F.HalfCarry = a&0x0f > 0x09
		a += adjust
	}

	mc.F.Carry = carry
	mc.F.ParityOverflow = parity(a)
	mc.setSZXY(a)
	mc.A = a
}

// rotation and shift kind for the CB group (and the SLL undocumented form,
// fixed here as shift-left-then-set-bit-0).
type rotKind int

const (
	rotRLC rotKind = iota
	rotRRC
	rotRL
	rotRR
	rotSLA
	rotSRA
	rotSLL
	rotSRL
)

func (k rotKind) String() string {
	return [...]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}[k]
}

// rotate applies a CB-group rotation or shift with the full flag treatment.
func (mc *CPU) rotate(k rotKind, v uint8) uint8 {
	var r uint8
	var carry bool

	switch k {
	case rotRLC:
		carry = v&0x80 == 0x80
		r = v<<1 | v>>7
	case rotRRC:
		carry = v&0x01 == 0x01
		r = v>>1 | v<<7
	case rotRL:
		carry = v&0x80 == 0x80
		r = v << 1
		if mc.F.Carry {
			r |= 0x01
		}
	case rotRR:
		carry = v&0x01 == 0x01
		r = v >> 1
		if mc.F.Carry {
			r |= 0x80
		}
	case rotSLA:
		carry = v&0x80 == 0x80
		r = v << 1
	case rotSRA:
		carry = v&0x01 == 0x01
		r = v>>1 | v&0x80
	case rotSLL:
		carry = v&0x80 == 0x80
		r = v<<1 | 0x01
	case rotSRL:
		carry = v&0x01 == 0x01
		r = v >> 1
	}

	mc.F.Carry = carry
	mc.F.HalfCarry = false
	mc.F.Subtract = false
	mc.F.ParityOverflow = parity(r)
	mc.setSZXY(r)
	return r
}

// rotateA applies the four accumulator-only rotations, which preserve the
// sign, zero and parity flags.
func (mc *CPU) rotateA(k rotKind) {
	v := mc.A
	var r uint8
	var carry bool

	switch k {
	case rotRLC:
		carry = v&0x80 == 0x80
		r = v<<1 | v>>7
	case rotRRC:
		carry = v&0x01 == 0x01
		r = v>>1 | v<<7
	case rotRL:
		carry = v&0x80 == 0x80
		r = v << 1
		if mc.F.Carry {
			r |= 0x01
		}
	case rotRR:
		carry = v&0x01 == 0x01
		r = v >> 1
		if mc.F.Carry {
			r |= 0x80
		}
	}

	mc.F.Carry = carry
	mc.F.HalfCarry = false
	mc.F.Subtract = false
	mc.setXY(r)
	mc.A = r
}

// bitTest implements BIT n. The value being tested and the source of the
// undocumented flag copies are separate inputs: the register forms pass the
// register value for both, the memory forms pass the high byte of the
// address register used for the access.
func (mc *CPU) bitTest(n uint, v uint8, flagSource uint8) {
	set := v&(1<<n) != 0
	mc.F.Zero = !set
	mc.F.ParityOverflow = !set
	mc.F.Sign = n == 7 && set
	mc.F.HalfCarry = true
	mc.F.Subtract = false
	mc.setXY(flagSource)
}

// inFlags is the flag treatment shared by IN r,(C) and the value half of
// the RRD/RLD rotations.
func (mc *CPU) inFlags(v uint8) {
	mc.F.HalfCarry = false
	mc.F.Subtract = false
	mc.F.ParityOverflow = parity(v)
	mc.setSZXY(v)
}
