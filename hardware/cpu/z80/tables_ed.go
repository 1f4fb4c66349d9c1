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

import "fmt"

// the ED page. only the middle two quarters decode to anything; every
// other entry behaves as a two-machine-cycle NOP, which is what the
// silicon does with them. the DD/FD prefixes never reach this table: an ED
// byte cancels them at decode.
func buildED() [256]descriptor {
	var t [256]descriptor

	r := regs8(ctxHL)
	rp := regs16(ctxHL)

	for v := 0; v < 256; v++ {
		t[v] = descriptor{name: "NOP*"}
	}

	for v := 0x40; v < 0x80; v++ {
		y, z := (v>>3)&7, v&7
		p, q := y>>1, y&1

		switch z {
		case 0:
			// IN (C) with y=6 performs the input and sets the flags but
			// stores nothing
			name := "IN " + r[y].name + ",(C)"
			if y == 6 {
				name = "IN (C)"
			}
			reg := r[y]
			t[v] = descriptor{name: name, plan: plan{
				portRead(4, bcPort, func(mc *CPU, v uint8) {
					mc.WZ = mc.getBC() + 1
					mc.inFlags(v)
					if reg.set != nil {
						reg.set(mc, v)
					}
				}),
			}}

		case 1:
			// OUT (C) with y=6 drives zero onto the bus
			name := "OUT (C)," + r[y].name
			data := r[y].get
			if y == 6 {
				name = "OUT (C),0"
				data = func(mc *CPU) uint8 { return 0 }
			}
			t[v] = descriptor{name: name, plan: plan{
				portWrite(4, bcPort, data, func(mc *CPU) {
					mc.WZ = mc.getBC() + 1
				}),
			}}

		case 2:
			reg := rp[p]
			if q == 0 {
				t[v] = descriptor{name: "SBC HL," + reg.name, plan: plan{
					internal(7, func(mc *CPU) { mc.sbc16(reg.get(mc)) }),
				}}
			} else {
				t[v] = descriptor{name: "ADC HL," + reg.name, plan: plan{
					internal(7, func(mc *CPU) { mc.adc16(reg.get(mc)) }),
				}}
			}

		case 3:
			reg := rp[p]
			if q == 0 {
				t[v] = descriptor{name: "LD (nn)," + reg.name, plan: plan{
					readPC(3, fetchLo),
					readPC(3, fetchHiAddr),
					writeAt(3, scratchAddr,
						func(mc *CPU) uint8 { return uint8(reg.get(mc)) }, nil),
					writeAt(3, scratchAddr1,
						func(mc *CPU) uint8 { return uint8(reg.get(mc) >> 8) },
						func(mc *CPU) { mc.WZ = mc.scratch.address + 1 }),
				}}
			} else {
				t[v] = descriptor{name: "LD " + reg.name + ",(nn)", plan: plan{
					readPC(3, fetchLo),
					readPC(3, fetchHiAddr),
					readAt(3, scratchAddr, fetchLo),
					readAt(3, scratchAddr1, func(mc *CPU, hi uint8) {
						reg.set(mc, uint16(hi)<<8|uint16(mc.scratch.lo))
						mc.WZ = mc.scratch.address + 1
					}),
				}}
			}

		case 4:
			// every y position decodes as NEG
			t[v] = descriptor{name: "NEG", action: func(mc *CPU) error {
				v := mc.A
				mc.A = 0
				mc.sub8(v, false)
				return nil
			}}

		case 5:
			// RETN and RETI both restore IFF1 from IFF2; RETI is
			// additionally recognised by peripherals, not by the core
			name := "RETN"
			if y == 1 {
				name = "RETI"
			}
			t[v] = descriptor{name: name,
				action: func(mc *CPU) error {
					mc.IFF1 = mc.IFF2
					return nil
				},
				plan: plan{
					popByte(3, fetchLo),
					popByte(3, func(mc *CPU, hi uint8) {
						mc.PC = uint16(hi)<<8 | uint16(mc.scratch.lo)
						mc.WZ = mc.PC
					}),
				}}

		case 6:
			mode := [8]int{0, 0, 1, 2, 0, 0, 1, 2}[y]
			t[v] = descriptor{name: fmt.Sprintf("IM %d", mode),
				action: func(mc *CPU) error {
					mc.IM = mode
					return nil
				}}

		case 7:
			switch y {
			case 0:
				t[v] = descriptor{name: "LD I,A", plan: plan{
					internal(1, func(mc *CPU) { mc.I = mc.A }),
				}}
			case 1:
				t[v] = descriptor{name: "LD R,A", plan: plan{
					internal(1, func(mc *CPU) { mc.R = mc.A }),
				}}
			case 2:
				t[v] = descriptor{name: "LD A,I", plan: plan{
					internal(1, func(mc *CPU) {
						mc.A = mc.I
						mc.F.HalfCarry = false
						mc.F.Subtract = false
						mc.F.ParityOverflow = mc.IFF2
						mc.setSZXY(mc.A)
					}),
				}}
			case 3:
				t[v] = descriptor{name: "LD A,R", plan: plan{
					internal(1, func(mc *CPU) {
						mc.A = mc.R
						mc.F.HalfCarry = false
						mc.F.Subtract = false
						mc.F.ParityOverflow = mc.IFF2
						mc.setSZXY(mc.A)
					}),
				}}
			case 4:
				t[v] = descriptor{name: "RRD", plan: plan{
					readAt(3, hlAddr, func(mc *CPU, v uint8) {
						mc.scratch.value = v
					}),
					internal(4, func(mc *CPU) {
						v := mc.scratch.value
						mc.scratch.value = mc.A&0x0f<<4 | v>>4
						mc.A = mc.A&0xf0 | v&0x0f
						mc.inFlags(mc.A)
						mc.WZ = mc.getHL() + 1
					}),
					writeAt(3, hlAddr, scratchData, nil),
				}}
			case 5:
				t[v] = descriptor{name: "RLD", plan: plan{
					readAt(3, hlAddr, func(mc *CPU, v uint8) {
						mc.scratch.value = v
					}),
					internal(4, func(mc *CPU) {
						v := mc.scratch.value
						mc.scratch.value = v<<4 | mc.A&0x0f
						mc.A = mc.A&0xf0 | v>>4
						mc.inFlags(mc.A)
						mc.WZ = mc.getHL() + 1
					}),
					writeAt(3, hlAddr, scratchData, nil),
				}}
			}
			// y=6 and y=7 stay NOP*
		}
	}

	// block operations
	for y := 4; y < 8; y++ {
		step := uint16(1)
		if y&1 == 1 {
			step = 0xffff // two's complement -1
		}
		repeat := y >= 6

		names := [2][4]string{
			{"LDI", "CPI", "INI", "OUTI"},
			{"LDD", "CPD", "IND", "OUTD"},
		}[y&1]
		if repeat {
			names = [2][4]string{
				{"LDIR", "CPIR", "INIR", "OTIR"},
				{"LDDR", "CPDR", "INDR", "OTDR"},
			}[y&1]
		}

		t[0xa0|(y-4)<<3|0] = blockTransfer(names[0], step, repeat)
		t[0xa0|(y-4)<<3|1] = blockCompare(names[1], step, repeat)
		t[0xa0|(y-4)<<3|2] = blockInput(names[2], step, repeat)
		t[0xa0|(y-4)<<3|3] = blockOutput(names[3], step, repeat)
	}

	return t
}

// blockTransfer is LDI/LDD and their repeating forms. The undocumented
// flag copies come from bits 1 and 3 of A plus the byte just moved.
func blockTransfer(name string, step uint16, repeat bool) descriptor {
	p := plan{
		readAt(3, hlAddr, func(mc *CPU, v uint8) {
			mc.scratch.value = v
		}),
		writeAt(5, deAddr, scratchData, func(mc *CPU) {
			mc.setHL(mc.getHL() + step)
			mc.setDE(mc.getDE() + step)
			mc.setBC(mc.getBC() - 1)

			n := mc.A + mc.scratch.value
			mc.F.HalfCarry = false
			mc.F.Subtract = false
			mc.F.ParityOverflow = mc.getBC() != 0
			mc.F.Y = n&0x02 == 0x02
			mc.F.X = n&0x08 == 0x08
		}),
	}
	if repeat {
		p = append(p, guarded(internal(5, func(mc *CPU) {
			mc.PC -= 2
			mc.WZ = mc.PC + 1
		}), func(mc *CPU) bool { return mc.getBC() != 0 }))
	}
	return descriptor{name: name, plan: p}
}

// blockCompare is CPI/CPD and the repeating forms. Carry is untouched; the
// undocumented copies come from A minus the compared byte, less one more
// if there was a half borrow.
func blockCompare(name string, step uint16, repeat bool) descriptor {
	p := plan{
		readAt(3, hlAddr, func(mc *CPU, v uint8) {
			mc.scratch.value = v
		}),
		internal(5, func(mc *CPU) {
			v := mc.scratch.value
			r := mc.A - v

			mc.F.Sign = r&0x80 == 0x80
			mc.F.Zero = r == 0
			mc.F.HalfCarry = mc.A&0x0f < v&0x0f
			mc.F.Subtract = true

			n := r
			if mc.F.HalfCarry {
				n--
			}
			mc.F.Y = n&0x02 == 0x02
			mc.F.X = n&0x08 == 0x08

			mc.setHL(mc.getHL() + step)
			mc.setBC(mc.getBC() - 1)
			mc.F.ParityOverflow = mc.getBC() != 0
			mc.WZ += step
		}),
	}
	if repeat {
		p = append(p, guarded(internal(5, func(mc *CPU) {
			mc.PC -= 2
			mc.WZ = mc.PC + 1
		}), func(mc *CPU) bool { return mc.getBC() != 0 && !mc.F.Zero }))
	}
	return descriptor{name: name, plan: p}
}

// blockInput is INI/IND and the repeating forms.
func blockInput(name string, step uint16, repeat bool) descriptor {
	p := plan{
		internal(1, nil),
		portRead(4, bcPort, func(mc *CPU, v uint8) {
			mc.WZ = mc.getBC() + step
			mc.B--
			mc.scratch.value = v
		}),
		writeAt(3, hlAddr, scratchData, func(mc *CPU) {
			v := mc.scratch.value
			mc.setHL(mc.getHL() + step)

			mc.F.Subtract = v&0x80 == 0x80
			k := uint16(v) + uint16(mc.C+uint8(step))
			mc.F.HalfCarry = k > 0xff
			mc.F.Carry = k > 0xff
			mc.F.ParityOverflow = parity(uint8(k)&0x07 ^ mc.B)
			mc.setSZXY(mc.B)
		}),
	}
	if repeat {
		p = append(p, guarded(internal(5, func(mc *CPU) {
			mc.PC -= 2
		}), func(mc *CPU) bool { return mc.B != 0 }))
	}
	return descriptor{name: name, plan: p}
}

// blockOutput is OUTI/OUTD and the repeating forms. B decrements before
// the port address is driven.
func blockOutput(name string, step uint16, repeat bool) descriptor {
	p := plan{
		internal(1, func(mc *CPU) { mc.B-- }),
		readAt(3, hlAddr, func(mc *CPU, v uint8) {
			mc.scratch.value = v
		}),
		portWrite(4, bcPort, scratchData, func(mc *CPU) {
			mc.setHL(mc.getHL() + step)
			mc.WZ = mc.getBC() + step

			v := mc.scratch.value
			mc.F.Subtract = v&0x80 == 0x80
			k := uint16(v) + uint16(mc.L)
			mc.F.HalfCarry = k > 0xff
			mc.F.Carry = k > 0xff
			mc.F.ParityOverflow = parity(uint8(k)&0x07 ^ mc.B)
			mc.setSZXY(mc.B)
		}),
	}
	if repeat {
		p = append(p, guarded(internal(5, func(mc *CPU) {
			mc.PC -= 2
		}), func(mc *CPU) bool { return mc.B != 0 }))
	}
	return descriptor{name: name, plan: p}
}
