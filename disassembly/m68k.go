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

var m68kCond = [16]string{
	"T", "F", "HI", "LS", "CC", "CS", "NE", "EQ",
	"VC", "VS", "PL", "MI", "GE", "LT", "GT", "LE",
}

var m68kSize = [3]string{"B", "W", "L"}

// m68kCursor reads instruction-stream words sequentially, big-endian.
type m68kCursor struct {
	mem   Peeker
	addr  uint32
	bytes []uint8
}

func (c *m68kCursor) word() uint16 {
	hi := c.mem.Peek(c.addr)
	lo := c.mem.Peek(c.addr + 1)
	c.addr += 2
	c.bytes = append(c.bytes, hi, lo)
	return uint16(hi)<<8 | uint16(lo)
}

// imm reads a size-appropriate immediate: one word for byte and word
// operands, two for long.
func (c *m68kCursor) imm(size int) string {
	if size == 2 {
		v := uint32(c.word())<<16 | uint32(c.word())
		return fmt.Sprintf("#$%08x", v)
	}
	if size == 0 {
		return fmt.Sprintf("#$%02x", uint8(c.word()))
	}
	return fmt.Sprintf("#$%04x", c.word())
}

// ea formats an effective address field, consuming its extension words.
func (c *m68kCursor) ea(mode, reg, size int) string {
	switch mode {
	case 0:
		return fmt.Sprintf("D%d", reg)
	case 1:
		return fmt.Sprintf("A%d", reg)
	case 2:
		return fmt.Sprintf("(A%d)", reg)
	case 3:
		return fmt.Sprintf("(A%d)+", reg)
	case 4:
		return fmt.Sprintf("-(A%d)", reg)
	case 5:
		return fmt.Sprintf("$%04x(A%d)", c.word(), reg)
	case 6:
		return c.index(fmt.Sprintf("A%d", reg))
	}
	switch reg {
	case 0:
		return fmt.Sprintf("$%04x.W", c.word())
	case 1:
		return fmt.Sprintf("$%08x.L", uint32(c.word())<<16|uint32(c.word()))
	case 2:
		return fmt.Sprintf("$%04x(PC)", c.word())
	case 3:
		return c.index("PC")
	case 4:
		return c.imm(size)
	}
	return "?"
}

// index formats a brief extension word: displacement, base and index
// register with width.
func (c *m68kCursor) index(base string) string {
	ext := c.word()
	xn := int(ext>>12) & 7
	xr := "D"
	if ext&0x8000 == 0x8000 {
		xr = "A"
	}
	xw := "W"
	if ext&0x0800 == 0x0800 {
		xw = "L"
	}
	return fmt.Sprintf("$%02x(%s,%s%d.%s)", uint8(ext), base, xr, xn, xw)
}

// M68K disassembles count instructions starting at origin. Encodings the
// core raises the illegal exception for print as DC.W constants.
func M68K(mem Peeker, origin uint32, count int) ([]Entry, error) {
	entries := make([]Entry, 0, count)
	addr := origin

	for i := 0; i < count; i++ {
		c := &m68kCursor{mem: mem, addr: addr}
		text := m68kDecode(c)

		op, operand := splitOp(text)
		entries = append(entries, Entry{
			Address:  addr,
			Bytes:    c.bytes,
			Operator: op,
			Operand:  operand,
		})
		addr = c.addr
	}

	return entries, nil
}

func m68kDecode(c *m68kCursor) string {
	opcode := c.word()
	mode := int(opcode>>3) & 7
	reg := int(opcode) & 7
	hreg := int(opcode>>9) & 7
	size := int(opcode>>6) & 3

	switch opcode {
	case 0x4afc:
		return "ILLEGAL"
	case 0x4e70:
		return "RESET"
	case 0x4e71:
		return "NOP"
	case 0x4e72:
		return fmt.Sprintf("STOP #$%04x", c.word())
	case 0x4e73:
		return "RTE"
	case 0x4e75:
		return "RTS"
	case 0x4e76:
		return "TRAPV"
	case 0x4e77:
		return "RTR"
	case 0x003c:
		return fmt.Sprintf("ORI #$%02x,CCR", uint8(c.word()))
	case 0x007c:
		return fmt.Sprintf("ORI #$%04x,SR", c.word())
	case 0x023c:
		return fmt.Sprintf("ANDI #$%02x,CCR", uint8(c.word()))
	case 0x027c:
		return fmt.Sprintf("ANDI #$%04x,SR", c.word())
	case 0x0a3c:
		return fmt.Sprintf("EORI #$%02x,CCR", uint8(c.word()))
	case 0x0a7c:
		return fmt.Sprintf("EORI #$%04x,SR", c.word())
	}

	switch opcode & 0xfff8 {
	case 0x4e50:
		return fmt.Sprintf("LINK A%d,#$%04x", reg, c.word())
	case 0x4e58:
		return fmt.Sprintf("UNLK A%d", reg)
	case 0x4e60:
		return fmt.Sprintf("MOVE A%d,USP", reg)
	case 0x4e68:
		return fmt.Sprintf("MOVE USP,A%d", reg)
	case 0x4840:
		return fmt.Sprintf("SWAP D%d", reg)
	case 0x4880:
		return fmt.Sprintf("EXT.W D%d", reg)
	case 0x48c0:
		return fmt.Sprintf("EXT.L D%d", reg)
	}

	if opcode&0xfff0 == 0x4e40 {
		return fmt.Sprintf("TRAP #%d", opcode&0x000f)
	}

	switch opcode & 0xffc0 {
	case 0x4e80:
		return "JSR " + c.ea(mode, reg, 2)
	case 0x4ec0:
		return "JMP " + c.ea(mode, reg, 2)
	case 0x4840:
		return "PEA " + c.ea(mode, reg, 2)
	case 0x40c0:
		return "MOVE SR," + c.ea(mode, reg, 1)
	case 0x44c0:
		return "MOVE " + c.ea(mode, reg, 0) + ",CCR"
	case 0x46c0:
		return "MOVE " + c.ea(mode, reg, 1) + ",SR"
	}

	switch opcode & 0xf000 {
	case 0x0000:
		return m68kDecodeGroup0(c, opcode, mode, reg, hreg, size)

	case 0x1000, 0x2000, 0x3000:
		sz := 0 // 1=B 2=L 3=W in the MOVE encoding
		switch opcode & 0x3000 {
		case 0x2000:
			sz = 2
		case 0x3000:
			sz = 1
		}
		src := c.ea(mode, reg, sz)
		dmode := int(opcode>>6) & 7
		if dmode == 1 {
			return fmt.Sprintf("MOVEA.%s %s,A%d", m68kSize[sz], src, hreg)
		}
		dst := c.ea(dmode, hreg, sz)
		return fmt.Sprintf("MOVE.%s %s,%s", m68kSize[sz], src, dst)

	case 0x4000:
		if opcode&0xf1c0 == 0x41c0 {
			return fmt.Sprintf("LEA %s,A%d", c.ea(mode, reg, 2), hreg)
		}
		if size < 3 {
			var name string
			switch opcode & 0x0f00 {
			case 0x0000:
				name = "NEGX"
			case 0x0200:
				name = "CLR"
			case 0x0400:
				name = "NEG"
			case 0x0600:
				name = "NOT"
			case 0x0a00:
				name = "TST"
			}
			if name != "" {
				return fmt.Sprintf("%s.%s %s", name, m68kSize[size], c.ea(mode, reg, size))
			}
		}

	case 0x5000:
		if opcode&0x00f8 == 0x00c8 {
			cc := int(opcode>>8) & 15
			disp := int16(c.word())
			return fmt.Sprintf("DB%s D%d,$%08x", m68kCond[cc], reg, c.addr-2+uint32(int32(disp)))
		}
		if size == 3 {
			cc := int(opcode>>8) & 15
			return fmt.Sprintf("S%s %s", m68kCond[cc], c.ea(mode, reg, 0))
		}
		data := hreg
		if data == 0 {
			data = 8
		}
		name := "ADDQ"
		if opcode&0x0100 == 0x0100 {
			name = "SUBQ"
		}
		return fmt.Sprintf("%s.%s #%d,%s", name, m68kSize[size], data, c.ea(mode, reg, size))

	case 0x6000:
		cc := int(opcode>>8) & 15
		name := "B" + m68kCond[cc]
		if cc == 0 {
			name = "BRA"
		} else if cc == 1 {
			name = "BSR"
		}
		base := c.addr
		disp := int32(int8(opcode))
		if disp == 0 {
			disp = int32(int16(c.word()))
		}
		return fmt.Sprintf("%s $%08x", name, base+uint32(disp))

	case 0x7000:
		return fmt.Sprintf("MOVEQ #%d,D%d", int8(opcode), hreg)

	case 0x8000:
		if opcode&0x01f0 == 0x0100 {
			return m68kExtended(c, "SBCD", opcode, hreg, reg)
		}
		if size == 3 {
			name := "DIVU"
			if opcode&0x0100 == 0x0100 {
				name = "DIVS"
			}
			return fmt.Sprintf("%s.W %s,D%d", name, c.ea(mode, reg, 1), hreg)
		}
		return m68kBinary(c, "OR", opcode, mode, reg, hreg, size)

	case 0x9000, 0xd000:
		name := "SUB"
		if opcode&0xf000 == 0xd000 {
			name = "ADD"
		}
		if size == 3 {
			sz := "W"
			if opcode&0x0100 == 0x0100 {
				sz = "L"
			}
			esz := 1 + (int(opcode>>8) & 1)
			return fmt.Sprintf("%sA.%s %s,A%d", name, sz, c.ea(mode, reg, esz), hreg)
		}
		if opcode&0x0130 == 0x0100 && size < 3 {
			return m68kExtended(c, name+"X", opcode, hreg, reg)
		}
		return m68kBinary(c, name, opcode, mode, reg, hreg, size)

	case 0xb000:
		if size == 3 {
			sz := "W"
			if opcode&0x0100 == 0x0100 {
				sz = "L"
			}
			esz := 1 + (int(opcode>>8) & 1)
			return fmt.Sprintf("CMPA.%s %s,A%d", sz, c.ea(mode, reg, esz), hreg)
		}
		if opcode&0x0138 == 0x0108 {
			return fmt.Sprintf("CMPM.%s (A%d)+,(A%d)+", m68kSize[size], reg, hreg)
		}
		if opcode&0x0100 == 0x0100 {
			return fmt.Sprintf("EOR.%s D%d,%s", m68kSize[size], hreg, c.ea(mode, reg, size))
		}
		return fmt.Sprintf("CMP.%s %s,D%d", m68kSize[size], c.ea(mode, reg, size), hreg)

	case 0xc000:
		if opcode&0x01f0 == 0x0100 {
			return m68kExtended(c, "ABCD", opcode, hreg, reg)
		}
		switch opcode & 0x01f8 {
		case 0x0140:
			return fmt.Sprintf("EXG D%d,D%d", hreg, reg)
		case 0x0148:
			return fmt.Sprintf("EXG A%d,A%d", hreg, reg)
		case 0x0188:
			return fmt.Sprintf("EXG D%d,A%d", hreg, reg)
		}
		if size == 3 {
			name := "MULU"
			if opcode&0x0100 == 0x0100 {
				name = "MULS"
			}
			return fmt.Sprintf("%s.W %s,D%d", name, c.ea(mode, reg, 1), hreg)
		}
		return m68kBinary(c, "AND", opcode, mode, reg, hreg, size)

	case 0xe000:
		return m68kShift(c, opcode, mode, reg, hreg, size)
	}

	return fmt.Sprintf("DC.W $%04x", opcode)
}

// the group 0 immediates and bit operations.
func m68kDecodeGroup0(c *m68kCursor, opcode uint16, mode, reg, hreg, size int) string {
	bitNames := [4]string{"BTST", "BCHG", "BCLR", "BSET"}

	if opcode&0x0f00 == 0x0800 {
		n := c.word() & 0xff
		return fmt.Sprintf("%s #%d,%s", bitNames[size], n, c.ea(mode, reg, 0))
	}
	if opcode&0x0100 == 0x0100 && mode != 1 {
		return fmt.Sprintf("%s D%d,%s", bitNames[size], hreg, c.ea(mode, reg, 0))
	}

	if size < 3 {
		var name string
		switch opcode & 0x0e00 {
		case 0x0000:
			name = "ORI"
		case 0x0200:
			name = "ANDI"
		case 0x0400:
			name = "SUBI"
		case 0x0600:
			name = "ADDI"
		case 0x0a00:
			name = "EORI"
		case 0x0c00:
			name = "CMPI"
		}
		if name != "" {
			imm := c.imm(size)
			return fmt.Sprintf("%s.%s %s,%s", name, m68kSize[size], imm, c.ea(mode, reg, size))
		}
	}

	return fmt.Sprintf("DC.W $%04x", opcode)
}

func m68kBinary(c *m68kCursor, name string, opcode uint16, mode, reg, hreg, size int) string {
	if opcode&0x0100 == 0x0100 {
		return fmt.Sprintf("%s.%s D%d,%s", name, m68kSize[size], hreg, c.ea(mode, reg, size))
	}
	return fmt.Sprintf("%s.%s %s,D%d", name, m68kSize[size], c.ea(mode, reg, size), hreg)
}

func m68kExtended(c *m68kCursor, name string, opcode uint16, hreg, reg int) string {
	sz := ""
	if name != "ABCD" && name != "SBCD" {
		sz = "." + m68kSize[(opcode>>6)&3]
	}
	if opcode&0x0008 == 0x0008 {
		return fmt.Sprintf("%s%s -(A%d),-(A%d)", name, sz, reg, hreg)
	}
	return fmt.Sprintf("%s%s D%d,D%d", name, sz, reg, hreg)
}

func m68kShift(c *m68kCursor, opcode uint16, mode, reg, hreg, size int) string {
	kinds := [4]string{"AS", "LS", "ROX", "RO"}
	dir := "R"
	if opcode&0x0100 == 0x0100 {
		dir = "L"
	}

	if size == 3 {
		// memory form, by one, word only
		kind := int(opcode>>9) & 3
		return fmt.Sprintf("%s%s %s", kinds[kind], dir, c.ea(mode, reg, 1))
	}

	kind := int(opcode>>3) & 3
	if opcode&0x0020 == 0x0020 {
		return fmt.Sprintf("%s%s.%s D%d,D%d", kinds[kind], dir, m68kSize[size], hreg, reg)
	}
	count := hreg
	if count == 0 {
		count = 8
	}
	return fmt.Sprintf("%s%s.%s #%d,D%d", kinds[kind], dir, m68kSize[size], count, reg)
}
