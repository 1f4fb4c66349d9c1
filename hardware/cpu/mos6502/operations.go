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

package mos6502

import (
	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/instructions"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/registers"
)

// setNZ updates the sign and zero flags from a value. Almost every operation
// that produces a value ends here.
func (mc *CPU) setNZ(v uint8) {
	mc.Status.Zero = v == 0
	mc.Status.Sign = v&0x80 == 0x80
}

func (mc *CPU) adc(v uint8) {
	if mc.Status.DecimalMode {
		var carry, zero, overflow, sign bool
		carry, zero, overflow, sign = mc.A.AddDecimal(v, mc.Status.Carry)
		mc.Status.Carry = carry
		mc.Status.Zero = zero
		mc.Status.Overflow = overflow
		mc.Status.Sign = sign
		return
	}

	carry, overflow := mc.A.Add(v, mc.Status.Carry)
	mc.Status.Carry = carry
	mc.Status.Overflow = overflow
	mc.setNZ(mc.A.Value())
}

func (mc *CPU) sbc(v uint8) {
	if mc.Status.DecimalMode {
		var carry, zero, overflow, sign bool
		carry, zero, overflow, sign = mc.A.SubtractDecimal(v, mc.Status.Carry)
		mc.Status.Carry = carry
		mc.Status.Zero = zero
		mc.Status.Overflow = overflow
		mc.Status.Sign = sign
		return
	}

	carry, overflow := mc.A.Subtract(v, mc.Status.Carry)
	mc.Status.Carry = carry
	mc.Status.Overflow = overflow
	mc.setNZ(mc.A.Value())
}

// compare performs the shared work of CMP, CPX, CPY and the comparing halves
// of DCP and AXS. The register itself is unaffected.
func (mc *CPU) compare(reg uint8, v uint8) {
	t := registers.NewRegister(reg, "cmp")
	carry, _ := t.Subtract(v, true)
	mc.Status.Carry = carry
	mc.setNZ(t.Value())
}

// execute applies a read-category or implied operator. For the implied
// operators the value argument is meaningless and is ignored.
func (mc *CPU) execute(v uint8) error {
	switch mc.scratch.defn.Operator {
	case instructions.Lda:
		mc.A.Load(v)
		mc.setNZ(v)
	case instructions.Ldx:
		mc.X.Load(v)
		mc.setNZ(v)
	case instructions.Ldy:
		mc.Y.Load(v)
		mc.setNZ(v)

	case instructions.And:
		mc.A.AND(v)
		mc.setNZ(mc.A.Value())
	case instructions.Ora:
		mc.A.ORA(v)
		mc.setNZ(mc.A.Value())
	case instructions.Eor:
		mc.A.EOR(v)
		mc.setNZ(mc.A.Value())

	case instructions.Adc:
		mc.adc(v)
	case instructions.Sbc, instructions.SBCu:
		mc.sbc(v)

	case instructions.Cmp:
		mc.compare(mc.A.Value(), v)
	case instructions.Cpx:
		mc.compare(mc.X.Value(), v)
	case instructions.Cpy:
		mc.compare(mc.Y.Value(), v)

	case instructions.Bit:
		mc.Status.Zero = mc.A.Value()&v == 0
		mc.Status.Sign = v&0x80 == 0x80
		mc.Status.Overflow = v&0x40 == 0x40

	case instructions.Clc:
		mc.Status.Carry = false
	case instructions.Sec:
		mc.Status.Carry = true
	case instructions.Cld:
		mc.Status.DecimalMode = false
	case instructions.Sed:
		mc.Status.DecimalMode = true
	case instructions.Cli:
		mc.Status.InterruptDisable = false
	case instructions.Sei:
		mc.Status.InterruptDisable = true
	case instructions.Clv:
		mc.Status.Overflow = false

	case instructions.Tax:
		mc.X.Load(mc.A.Value())
		mc.setNZ(mc.X.Value())
	case instructions.Tay:
		mc.Y.Load(mc.A.Value())
		mc.setNZ(mc.Y.Value())
	case instructions.Txa:
		mc.A.Load(mc.X.Value())
		mc.setNZ(mc.A.Value())
	case instructions.Tya:
		mc.A.Load(mc.Y.Value())
		mc.setNZ(mc.A.Value())
	case instructions.Tsx:
		mc.X.Load(mc.SP.Value())
		mc.setNZ(mc.X.Value())
	case instructions.Txs:
		// TXS is the one transfer that updates no flags
		mc.SP.Load(mc.X.Value())

	case instructions.Inx:
		mc.X.Load(mc.X.Value() + 1)
		mc.setNZ(mc.X.Value())
	case instructions.Iny:
		mc.Y.Load(mc.Y.Value() + 1)
		mc.setNZ(mc.Y.Value())
	case instructions.Dex:
		mc.X.Load(mc.X.Value() - 1)
		mc.setNZ(mc.X.Value())
	case instructions.Dey:
		mc.Y.Load(mc.Y.Value() - 1)
		mc.setNZ(mc.Y.Value())

	// accumulator forms of the shift instructions
	case instructions.Asl:
		mc.Status.Carry = mc.A.ASL()
		mc.setNZ(mc.A.Value())
	case instructions.Lsr:
		mc.Status.Carry = mc.A.LSR()
		mc.setNZ(mc.A.Value())
	case instructions.Rol:
		mc.Status.Carry = mc.A.ROL(mc.Status.Carry)
		mc.setNZ(mc.A.Value())
	case instructions.Ror:
		mc.Status.Carry = mc.A.ROR(mc.Status.Carry)
		mc.setNZ(mc.A.Value())

	case instructions.Nop, instructions.NOPu:
		// does nothing, takes its time doing it

	case instructions.KIL:
		// the halt itself is effected at the end of the instruction

	// undocumented read operators

	case instructions.LAX:
		mc.A.Load(v)
		mc.X.Load(v)
		mc.setNZ(v)

	case instructions.ANC:
		mc.A.AND(v)
		mc.setNZ(mc.A.Value())
		mc.Status.Carry = mc.A.IsNegative()

	case instructions.ASR:
		mc.A.AND(v)
		mc.Status.Carry = mc.A.LSR()
		mc.setNZ(mc.A.Value())

	case instructions.ARR:
		mc.A.AND(v)
		mc.A.ROR(mc.Status.Carry)
		r := mc.A.Value()
		mc.setNZ(r)
		mc.Status.Carry = r&0x40 == 0x40
		mc.Status.Overflow = (r>>6)&0x01 != (r>>5)&0x01

	case instructions.AXS:
		t := mc.A.Value() & mc.X.Value()
		mc.Status.Carry = t >= v
		mc.X.Load(t - v)
		mc.setNZ(mc.X.Value())

	case instructions.XAA:
		mc.A.Load(mc.X.Value() & v)
		mc.setNZ(mc.A.Value())

	case instructions.LAS:
		r := v & mc.SP.Value()
		mc.A.Load(r)
		mc.X.Load(r)
		mc.SP.Load(r)
		mc.setNZ(r)

	default:
		return curated.Errorf("mos6502: no execution behaviour for %s", mc.scratch.defn.Operator)
	}

	return nil
}

// modify applies an RMW operator to the value read from memory, returning
// the value to be written back. The undocumented combination operators also
// fold their result into the accumulator here.
func (mc *CPU) modify(v uint8) (uint8, error) {
	switch mc.scratch.defn.Operator {
	case instructions.Asl:
		mc.Status.Carry = v&0x80 == 0x80
		v <<= 1
		mc.setNZ(v)

	case instructions.Lsr:
		mc.Status.Carry = v&0x01 == 0x01
		v >>= 1
		mc.setNZ(v)

	case instructions.Rol:
		carry := mc.Status.Carry
		mc.Status.Carry = v&0x80 == 0x80
		v <<= 1
		if carry {
			v |= 0x01
		}
		mc.setNZ(v)

	case instructions.Ror:
		carry := mc.Status.Carry
		mc.Status.Carry = v&0x01 == 0x01
		v >>= 1
		if carry {
			v |= 0x80
		}
		mc.setNZ(v)

	case instructions.Inc:
		v++
		mc.setNZ(v)

	case instructions.Dec:
		v--
		mc.setNZ(v)

	// undocumented combination operators. shift or step the memory value
	// then apply the companion accumulator operation

	case instructions.SLO:
		mc.Status.Carry = v&0x80 == 0x80
		v <<= 1
		mc.A.ORA(v)
		mc.setNZ(mc.A.Value())

	case instructions.RLA:
		carry := mc.Status.Carry
		mc.Status.Carry = v&0x80 == 0x80
		v <<= 1
		if carry {
			v |= 0x01
		}
		mc.A.AND(v)
		mc.setNZ(mc.A.Value())

	case instructions.SRE:
		mc.Status.Carry = v&0x01 == 0x01
		v >>= 1
		mc.A.EOR(v)
		mc.setNZ(mc.A.Value())

	case instructions.RRA:
		carry := mc.Status.Carry
		mc.Status.Carry = v&0x01 == 0x01
		v >>= 1
		if carry {
			v |= 0x80
		}
		mc.adc(v)

	case instructions.DCP:
		v--
		mc.compare(mc.A.Value(), v)

	case instructions.ISC:
		v++
		mc.sbc(v)

	default:
		return 0, curated.Errorf("mos6502: no modify behaviour for %s", mc.scratch.defn.Operator)
	}

	return v, nil
}

// storeValue returns the byte a write-category instruction puts on the bus.
// The undocumented "high byte and" stores combine registers with the high
// byte of the target address plus one.
func (mc *CPU) storeValue() (uint8, error) {
	switch mc.scratch.defn.Operator {
	case instructions.Sta:
		return mc.A.Value(), nil
	case instructions.Stx:
		return mc.X.Value(), nil
	case instructions.Sty:
		return mc.Y.Value(), nil

	case instructions.SAX:
		return mc.A.Value() & mc.X.Value(), nil

	case instructions.AHX:
		return mc.A.Value() & mc.X.Value() & (mc.scratch.baseHi + 1), nil

	case instructions.TAS:
		mc.SP.Load(mc.A.Value() & mc.X.Value())
		return mc.A.Value() & mc.X.Value() & (mc.scratch.baseHi + 1), nil

	case instructions.SHY:
		return mc.Y.Value() & (mc.scratch.baseHi + 1), nil

	case instructions.SHX:
		return mc.X.Value() & (mc.scratch.baseHi + 1), nil
	}

	return 0, curated.Errorf("mos6502: no store behaviour for %s", mc.scratch.defn.Operator)
}

// branchTaken evaluates a branch condition against the current flags.
func (mc *CPU) branchTaken(operator instructions.Operator) bool {
	switch operator {
	case instructions.Bcc:
		return !mc.Status.Carry
	case instructions.Bcs:
		return mc.Status.Carry
	case instructions.Bne:
		return !mc.Status.Zero
	case instructions.Beq:
		return mc.Status.Zero
	case instructions.Bpl:
		return !mc.Status.Sign
	case instructions.Bmi:
		return mc.Status.Sign
	case instructions.Bvc:
		return !mc.Status.Overflow
	case instructions.Bvs:
		return mc.Status.Overflow
	}
	return false
}
