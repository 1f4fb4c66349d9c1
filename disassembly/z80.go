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

package disassembly

import "fmt"

// the Z80 opcode space decomposes algebraically: bits 7-6 (x), 5-3 (y) and
// 2-0 (z) select from small register/condition/operation tables rather than
// forming one flat 256-way table. the disassembler decodes that structure
// directly, the same way the core's decode tables are built.

var z80Reg = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var z80Pair = [4]string{"BC", "DE", "HL", "SP"}
var z80Pair2 = [4]string{"BC", "DE", "HL", "AF"}
var z80Cond = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var z80ALU = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
var z80Rot = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}
var z80Acc = [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}
var z80IM = [4]string{"0", "0", "1", "2"}

var z80Block = [4][4]string{
	{"LDI", "CPI", "INI", "OUTI"},
	{"LDD", "CPD", "IND", "OUTD"},
	{"LDIR", "CPIR", "INIR", "OTIR"},
	{"LDDR", "CPDR", "INDR", "OTDR"},
}

// z80Cursor reads instruction bytes sequentially, accumulating them for the
// entry's byte listing.
type z80Cursor struct {
	mem   Peeker
	addr  uint32
	bytes []uint8
}

func (c *z80Cursor) next() uint8 {
	v := c.mem.Peek(c.addr & 0xffff)
	c.addr++
	c.bytes = append(c.bytes, v)
	return v
}

func (c *z80Cursor) imm8() string {
	return fmt.Sprintf("$%02x", c.next())
}

func (c *z80Cursor) imm16() string {
	lo := c.next()
	hi := c.next()
	return fmt.Sprintf("$%04x", uint16(hi)<<8|uint16(lo))
}

func (c *z80Cursor) rel() string {
	d := int8(c.next())
	return fmt.Sprintf("$%04x", uint16(c.addr)+uint16(int16(d)))
}

// Z80 disassembles count instructions starting at origin, index prefixes,
// CB/ED pages and the undocumented mnemonics included.
func Z80(mem Peeker, origin uint32, count int) ([]Entry, error) {
	entries := make([]Entry, 0, count)
	addr := origin & 0xffff

	for i := 0; i < count; i++ {
		c := &z80Cursor{mem: mem, addr: addr}
		op, operand := z80Decode(c, "HL")

		entries = append(entries, Entry{
			Address:  addr,
			Bytes:    c.bytes,
			Operator: op,
			Operand:  operand,
		})
		addr = c.addr & 0xffff
	}

	return entries, nil
}

// splitOp separates "LD A,$12" style text into operator and operand.
func splitOp(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// z80Decode decodes one instruction. idx names the register the HL decode
// positions address: "HL", "IX" or "IY".
func z80Decode(c *z80Cursor, idx string) (string, string) {
	opcode := c.next()

	switch opcode {
	case 0xcb:
		if idx != "HL" {
			return splitOp(z80DecodeIndexCB(c, idx))
		}
		return splitOp(z80DecodeCB(c))
	case 0xed:
		return splitOp(z80DecodeED(c))
	case 0xdd:
		return z80Decode(c, "IX")
	case 0xfd:
		return z80Decode(c, "IY")
	}

	return splitOp(z80DecodeMain(c, opcode, idx))
}

// reg resolves a register position in the given index context. The memory
// position becomes (IX+d), consuming the displacement byte; the H and L
// positions become the index register halves.
func z80RegIdx(c *z80Cursor, r int, idx string) string {
	if idx == "HL" {
		return z80Reg[r]
	}
	switch r {
	case 4:
		return idx + "H"
	case 5:
		return idx + "L"
	case 6:
		d := int8(c.next())
		if d < 0 {
			return fmt.Sprintf("(%s-$%02x)", idx, -int(d))
		}
		return fmt.Sprintf("(%s+$%02x)", idx, d)
	}
	return z80Reg[r]
}

func z80PairIdx(p int, idx string) string {
	if p == 2 {
		return idx
	}
	return z80Pair[p]
}

func z80DecodeMain(c *z80Cursor, opcode uint8, idx string) string {
	x := opcode >> 6
	y := int(opcode>>3) & 7
	z := int(opcode) & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				return "NOP"
			case 1:
				return "EX AF,AF'"
			case 2:
				return "DJNZ " + c.rel()
			case 3:
				return "JR " + c.rel()
			default:
				return fmt.Sprintf("JR %s,%s", z80Cond[y-4], c.rel())
			}
		case 1:
			if q == 0 {
				return fmt.Sprintf("LD %s,%s", z80PairIdx(p, idx), c.imm16())
			}
			return fmt.Sprintf("ADD %s,%s", idx, z80PairIdx(p, idx))
		case 2:
			switch y {
			case 0:
				return "LD (BC),A"
			case 1:
				return "LD A,(BC)"
			case 2:
				return "LD (DE),A"
			case 3:
				return "LD A,(DE)"
			case 4:
				return fmt.Sprintf("LD (%s),%s", c.imm16(), idx)
			case 5:
				return fmt.Sprintf("LD %s,(%s)", idx, c.imm16())
			case 6:
				return fmt.Sprintf("LD (%s),A", c.imm16())
			}
			return fmt.Sprintf("LD A,(%s)", c.imm16())
		case 3:
			if q == 0 {
				return "INC " + z80PairIdx(p, idx)
			}
			return "DEC " + z80PairIdx(p, idx)
		case 4:
			return "INC " + z80RegIdx(c, y, idx)
		case 5:
			return "DEC " + z80RegIdx(c, y, idx)
		case 6:
			// the displacement byte precedes the immediate
			dst := z80RegIdx(c, y, idx)
			return fmt.Sprintf("LD %s,%s", dst, c.imm8())
		}
		return z80Acc[y]

	case 1:
		if z == 6 && y == 6 {
			return "HALT"
		}
		// in an indexed load only the memory half is redirected
		if idx != "HL" && (y == 6 || z == 6) {
			if y == 6 {
				return fmt.Sprintf("LD %s,%s", z80RegIdx(c, y, idx), z80Reg[z])
			}
			return fmt.Sprintf("LD %s,%s", z80Reg[y], z80RegIdx(c, z, idx))
		}
		return fmt.Sprintf("LD %s,%s", z80RegIdx(c, y, idx), z80RegIdx(c, z, idx))

	case 2:
		return z80ALU[y] + z80RegIdx(c, z, idx)
	}

	switch z {
	case 0:
		return "RET " + z80Cond[y]
	case 1:
		if q == 0 {
			if p == 2 {
				return "POP " + idx
			}
			return "POP " + z80Pair2[p]
		}
		switch p {
		case 0:
			return "RET"
		case 1:
			return "EXX"
		case 2:
			return fmt.Sprintf("JP (%s)", idx)
		}
		return fmt.Sprintf("LD SP,%s", idx)
	case 2:
		return fmt.Sprintf("JP %s,%s", z80Cond[y], c.imm16())
	case 3:
		switch y {
		case 0:
			return "JP " + c.imm16()
		case 2:
			return fmt.Sprintf("OUT (%s),A", c.imm8())
		case 3:
			return fmt.Sprintf("IN A,(%s)", c.imm8())
		case 4:
			return fmt.Sprintf("EX (SP),%s", idx)
		case 5:
			return "EX DE,HL"
		case 6:
			return "DI"
		}
		return "EI"
	case 4:
		return fmt.Sprintf("CALL %s,%s", z80Cond[y], c.imm16())
	case 5:
		if q == 0 {
			if p == 2 {
				return "PUSH " + idx
			}
			return "PUSH " + z80Pair2[p]
		}
		return "CALL " + c.imm16()
	case 6:
		return z80ALU[y] + c.imm8()
	}
	return fmt.Sprintf("RST $%02x", y*8)
}

func z80DecodeCB(c *z80Cursor) string {
	opcode := c.next()
	x := opcode >> 6
	y := int(opcode>>3) & 7
	z := int(opcode) & 7

	switch x {
	case 0:
		return fmt.Sprintf("%s %s", z80Rot[y], z80Reg[z])
	case 1:
		return fmt.Sprintf("BIT %d,%s", y, z80Reg[z])
	case 2:
		return fmt.Sprintf("RES %d,%s", y, z80Reg[z])
	}
	return fmt.Sprintf("SET %d,%s", y, z80Reg[z])
}

// z80DecodeIndexCB handles the DDCB/FDCB page: the displacement byte comes
// before the final opcode byte. Forms with a register position other than
// (HL) are the undocumented copy-back variants.
func z80DecodeIndexCB(c *z80Cursor, idx string) string {
	d := int8(c.next())
	opcode := c.next()
	x := opcode >> 6
	y := int(opcode>>3) & 7
	z := int(opcode) & 7

	var mem string
	if d < 0 {
		mem = fmt.Sprintf("(%s-$%02x)", idx, -int(d))
	} else {
		mem = fmt.Sprintf("(%s+$%02x)", idx, d)
	}

	var body string
	switch x {
	case 0:
		body = fmt.Sprintf("%s %s", z80Rot[y], mem)
	case 1:
		return fmt.Sprintf("BIT %d,%s", y, mem)
	case 2:
		body = fmt.Sprintf("RES %d,%s", y, mem)
	default:
		body = fmt.Sprintf("SET %d,%s", y, mem)
	}

	if z != 6 {
		body += "," + z80Reg[z]
	}
	return body
}

func z80DecodeED(c *z80Cursor) string {
	opcode := c.next()
	x := opcode >> 6
	y := int(opcode>>3) & 7
	z := int(opcode) & 7
	p := y >> 1
	q := y & 1

	if x == 2 {
		if z <= 3 && y >= 4 {
			return z80Block[y-4][z]
		}
		return "NOP"
	}
	if x != 1 {
		return "NOP"
	}

	switch z {
	case 0:
		if y == 6 {
			return "IN (C)"
		}
		return fmt.Sprintf("IN %s,(C)", z80Reg[y])
	case 1:
		if y == 6 {
			return "OUT (C),0"
		}
		return fmt.Sprintf("OUT (C),%s", z80Reg[y])
	case 2:
		if q == 0 {
			return fmt.Sprintf("SBC HL,%s", z80Pair[p])
		}
		return fmt.Sprintf("ADC HL,%s", z80Pair[p])
	case 3:
		if q == 0 {
			return fmt.Sprintf("LD (%s),%s", c.imm16(), z80Pair[p])
		}
		return fmt.Sprintf("LD %s,(%s)", z80Pair[p], c.imm16())
	case 4:
		return "NEG"
	case 5:
		if y == 1 {
			return "RETI"
		}
		return "RETN"
	case 6:
		return "IM " + z80IM[y&3]
	}

	switch y {
	case 0:
		return "LD I,A"
	case 1:
		return "LD R,A"
	case 2:
		return "LD A,I"
	case 3:
		return "LD A,R"
	case 4:
		return "RRD"
	case 5:
		return "RLD"
	}
	return "NOP"
}
