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

// flag arithmetic. each operation family has one helper that states its
// complete flag behaviour; the extend-chained family shares the rule that Z
// is only ever cleared, never set, so multi-precision chains keep a zero
// flag meaning "the whole chain was zero".

func (mc *CPU) setNZ(size opSize, v uint32) {
	v &= size.mask()
	mc.SR.Negative = v&size.signBit() != 0
	mc.SR.Zero = v == 0
}

// logicResult is the MOVE/AND/OR/EOR/NOT/TST rule.
func (mc *CPU) logicResult(size opSize, v uint32) uint32 {
	mc.setNZ(size, v)
	mc.SR.Overflow = false
	mc.SR.Carry = false
	return v & size.mask()
}

func (mc *CPU) add(size opSize, dst, src uint32) uint32 {
	dst &= size.mask()
	src &= size.mask()
	r := (dst + src) & size.mask()

	sign := size.signBit()
	mc.SR.Carry = uint64(dst)+uint64(src) > uint64(size.mask())
	mc.SR.Extend = mc.SR.Carry
	mc.SR.Overflow = (dst^src)&sign == 0 && (dst^r)&sign != 0
	mc.setNZ(size, r)
	return r
}

func (mc *CPU) sub(size opSize, dst, src uint32) uint32 {
	dst &= size.mask()
	src &= size.mask()
	r := (dst - src) & size.mask()

	sign := size.signBit()
	mc.SR.Carry = src > dst
	mc.SR.Extend = mc.SR.Carry
	mc.SR.Overflow = (dst^src)&sign != 0 && (dst^r)&sign != 0
	mc.setNZ(size, r)
	return r
}

// cmp is sub without a result and without touching X.
func (mc *CPU) cmp(size opSize, dst, src uint32) {
	dst &= size.mask()
	src &= size.mask()
	r := (dst - src) & size.mask()

	sign := size.signBit()
	mc.SR.Carry = src > dst
	mc.SR.Overflow = (dst^src)&sign != 0 && (dst^r)&sign != 0
	mc.setNZ(size, r)
}

// addx and subx fold the extend flag in and leave Z alone on zero results.
func (mc *CPU) addx(size opSize, dst, src uint32) uint32 {
	dst &= size.mask()
	src &= size.mask()
	x := uint32(0)
	if mc.SR.Extend {
		x = 1
	}
	r := (dst + src + x) & size.mask()

	sign := size.signBit()
	mc.SR.Carry = uint64(dst)+uint64(src)+uint64(x) > uint64(size.mask())
	mc.SR.Extend = mc.SR.Carry
	mc.SR.Overflow = (dst^src)&sign == 0 && (dst^r)&sign != 0
	mc.SR.Negative = r&sign != 0
	if r != 0 {
		mc.SR.Zero = false
	}
	return r
}

func (mc *CPU) subx(size opSize, dst, src uint32) uint32 {
	dst &= size.mask()
	src &= size.mask()
	x := uint32(0)
	if mc.SR.Extend {
		x = 1
	}
	r := (dst - src - x) & size.mask()

	sign := size.signBit()
	mc.SR.Carry = uint64(src)+uint64(x) > uint64(dst)
	mc.SR.Extend = mc.SR.Carry
	mc.SR.Overflow = (dst^src)&sign != 0 && (dst^r)&sign != 0
	mc.SR.Negative = r&sign != 0
	if r != 0 {
		mc.SR.Zero = false
	}
	return r
}

func (mc *CPU) neg(size opSize, v uint32) uint32 {
	return mc.sub(size, 0, v)
}

func (mc *CPU) negx(size opSize, v uint32) uint32 {
	return mc.subx(size, 0, v)
}

// bcdAdd is the packed decimal addition correction: a pure nibble-wise
// function of the operands and the incoming extend flag.
func bcdAdd(dst, src uint8, x bool) (uint8, bool) {
	xv := uint8(0)
	if x {
		xv = 1
	}

	lo := dst&0x0f + src&0x0f + xv
	hi := uint16(dst&0xf0) + uint16(src&0xf0)

	if lo > 0x09 {
		lo += 0x06
	}
	hi += uint16(lo) & 0xf0
	carry := false
	if hi > 0x90 {
		hi += 0x60
		carry = true
	}

	return uint8(hi&0xf0) | lo&0x0f, carry
}

// bcdSub is the packed decimal subtraction correction.
func bcdSub(dst, src uint8, x bool) (uint8, bool) {
	xv := uint8(0)
	if x {
		xv = 1
	}

	r := uint16(dst) - uint16(src) - uint16(xv)
	borrow := r > 0xff

	if dst&0x0f < src&0x0f+xv {
		r -= 0x06
	}
	if borrow || r > 0xff {
		r -= 0x60
		borrow = true
	}

	return uint8(r), borrow
}

// abcd and sbcd apply the correction with the ADDX/SUBX zero flag rule.
func (mc *CPU) abcd(dst, src uint8) uint8 {
	r, carry := bcdAdd(dst, src, mc.SR.Extend)
	mc.SR.Carry = carry
	mc.SR.Extend = carry
	if r != 0 {
		mc.SR.Zero = false
	}
	mc.SR.Negative = r&0x80 == 0x80
	return r
}

func (mc *CPU) sbcd(dst, src uint8) uint8 {
	r, borrow := bcdSub(dst, src, mc.SR.Extend)
	mc.SR.Carry = borrow
	mc.SR.Extend = borrow
	if r != 0 {
		mc.SR.Zero = false
	}
	mc.SR.Negative = r&0x80 == 0x80
	return r
}

// shift kinds for group E.
type shiftKind int

const (
	shiftAS shiftKind = iota
	shiftLS
	shiftROX
	shiftRO
)

func (k shiftKind) name(left bool) string {
	base := [...]string{"AS", "LS", "ROX", "RO"}[k]
	if left {
		return base + "L"
	}
	return base + "R"
}

// shift applies count steps of a shift or rotate with the full group E
// flag treatment. A zero count still sets N and Z (and clears V and C,
// with ROX reflecting X in C).
func (mc *CPU) shift(k shiftKind, size opSize, left bool, count int, v uint32) uint32 {
	v &= size.mask()
	sign := size.signBit()

	mc.SR.Overflow = false
	if count == 0 {
		mc.SR.Carry = false
		if k == shiftROX {
			mc.SR.Carry = mc.SR.Extend
		}
		mc.setNZ(size, v)
		return v
	}

	for i := 0; i < count; i++ {
		var out bool
		if left {
			out = v&sign != 0
			v = v << 1 & size.mask()
			switch k {
			case shiftAS:
				// V accumulates: set if the sign changed at any step
				if v&sign != 0 != out {
					mc.SR.Overflow = true
				}
			case shiftRO:
				if out {
					v |= 1
				}
			case shiftROX:
				if mc.SR.Extend {
					v |= 1
				}
				mc.SR.Extend = out
			}
		} else {
			out = v&1 != 0
			keep := v & sign
			v >>= 1
			switch k {
			case shiftAS:
				v |= keep
			case shiftRO:
				if out {
					v |= sign
				}
			case shiftROX:
				if mc.SR.Extend {
					v |= sign
				}
				mc.SR.Extend = out
			}
		}
		mc.SR.Carry = out
		if k == shiftAS || k == shiftLS {
			mc.SR.Extend = out
		}
	}

	mc.setNZ(size, v)
	return v
}
