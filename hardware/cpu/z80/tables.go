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

import (
	"fmt"

	"github.com/clockwork-emu/clockwork/curated"
)

// the decode tables are generated from the octal structure of the opcode
// byte: x = bits 7-6, y = bits 5-3, z = bits 2-0. generation rather than
// enumeration keeps the IX and IY variants of the main table from drifting
// apart, and makes totality checkable: after generation every entry of
// every table must have a name.

// condition positions in the encoding (NZ Z NC C PO PE P M).
func cond(y int) func(mc *CPU) bool {
	switch y {
	case 0:
		return func(mc *CPU) bool { return !mc.F.Zero }
	case 1:
		return func(mc *CPU) bool { return mc.F.Zero }
	case 2:
		return func(mc *CPU) bool { return !mc.F.Carry }
	case 3:
		return func(mc *CPU) bool { return mc.F.Carry }
	case 4:
		return func(mc *CPU) bool { return !mc.F.ParityOverflow }
	case 5:
		return func(mc *CPU) bool { return mc.F.ParityOverflow }
	case 6:
		return func(mc *CPU) bool { return !mc.F.Sign }
	}
	return func(mc *CPU) bool { return mc.F.Sign }
}

var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

// accumulator ALU positions in the encoding.
func aluOp(y int) func(mc *CPU, v uint8) {
	switch y {
	case 0:
		return func(mc *CPU, v uint8) { mc.add8(v, false) }
	case 1:
		return func(mc *CPU, v uint8) { mc.add8(v, mc.F.Carry) }
	case 2:
		return func(mc *CPU, v uint8) { mc.sub8(v, false) }
	case 3:
		return func(mc *CPU, v uint8) { mc.sub8(v, mc.F.Carry) }
	case 4:
		return func(mc *CPU, v uint8) { mc.and8(v) }
	case 5:
		return func(mc *CPU, v uint8) { mc.xor8(v) }
	case 6:
		return func(mc *CPU, v uint8) { mc.or8(v) }
	}
	return func(mc *CPU, v uint8) { mc.cp8(v) }
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func (mc *CPU) buildTables() error {
	for _, ctx := range []indexContext{ctxHL, ctxIX, ctxIY} {
		mc.main[ctx] = buildMain(ctx)
	}
	mc.cb = buildCB()
	mc.ddcb[ctxIX] = buildDDCB(ctxIX)
	mc.ddcb[ctxIY] = buildDDCB(ctxIY)
	mc.ed = buildED()

	mc.buildEventPlans()

	// totality: generation must have left no hole in any table
	for ctx, t := range mc.main {
		for v, d := range t {
			if d.name == "" {
				return curated.Errorf("z80: main decode table (%s) incomplete at opcode %#02x", indexContext(ctx), v)
			}
		}
	}
	for v, d := range mc.cb {
		if d.name == "" {
			return curated.Errorf("z80: CB decode table incomplete at opcode %#02x", v)
		}
	}
	for _, ctx := range []indexContext{ctxIX, ctxIY} {
		for v, d := range mc.ddcb[ctx] {
			if d.name == "" {
				return curated.Errorf("z80: %sCB decode table incomplete at opcode %#02x", ctx, v)
			}
		}
	}
	for v, d := range mc.ed {
		if d.name == "" {
			return curated.Errorf("z80: ED decode table incomplete at opcode %#02x", v)
		}
	}

	return nil
}

// memOperand returns the machine cycles that make the memory operand
// address available, and the selector for that address. direct (HL) needs
// no setup; the indexed forms fetch a displacement and spend five T-states
// adding it.
func memOperand(ctx indexContext) (plan, func(mc *CPU) uint16) {
	if ctx == ctxHL {
		return nil, hlAddr
	}
	pre := plan{
		readPC(3, func(mc *CPU, v uint8) {
			mc.scratch.disp = int8(v)
		}),
		internal(5, func(mc *CPU) {
			mc.scratch.address = mc.getIndex(ctx) + uint16(mc.scratch.disp)
			mc.WZ = mc.scratch.address
		}),
	}
	return pre, scratchAddr
}

func buildMain(ctx indexContext) [256]descriptor {
	var t [256]descriptor

	r := regs8(ctx)
	base := regs8(ctxHL)
	rp := regs16(ctx)
	rp2 := regs16Stack(ctx)

	set := func(v int, d descriptor) {
		t[v] = d
	}

	for v := 0; v < 256; v++ {
		x, y, z := v>>6, (v>>3)&7, v&7
		p, q := y>>1, y&1

		switch x {
		case 0:
			switch z {
			case 0:
				switch y {
				case 0:
					set(v, descriptor{name: "NOP"})
				case 1:
					set(v, descriptor{name: "EX AF,AF'", action: func(mc *CPU) error {
						mc.A, mc.Alt.A = mc.Alt.A, mc.A
						mc.F, mc.Alt.F = mc.Alt.F, mc.F
						return nil
					}})
				case 2:
					set(v, descriptor{name: "DJNZ e", plan: plan{
						internal(1, func(mc *CPU) { mc.B-- }),
						readPC(3, func(mc *CPU, v uint8) { mc.scratch.disp = int8(v) }),
						guarded(internal(5, func(mc *CPU) {
							mc.PC += uint16(mc.scratch.disp)
							mc.WZ = mc.PC
						}), func(mc *CPU) bool { return mc.B != 0 }),
					}})
				case 3:
					set(v, descriptor{name: "JR e", plan: plan{
						readPC(3, func(mc *CPU, v uint8) { mc.scratch.disp = int8(v) }),
						internal(5, func(mc *CPU) {
							mc.PC += uint16(mc.scratch.disp)
							mc.WZ = mc.PC
						}),
					}})
				default:
					cc := cond(y - 4)
					set(v, descriptor{name: "JR " + condNames[y-4] + ",e", plan: plan{
						readPC(3, func(mc *CPU, v uint8) { mc.scratch.disp = int8(v) }),
						guarded(internal(5, func(mc *CPU) {
							mc.PC += uint16(mc.scratch.disp)
							mc.WZ = mc.PC
						}), cc),
					}})
				}

			case 1:
				reg := rp[p]
				if q == 0 {
					set(v, descriptor{name: "LD " + reg.name + ",nn", plan: plan{
						readPC(3, fetchLo),
						readPC(3, func(mc *CPU, hi uint8) {
							reg.set(mc, uint16(hi)<<8|uint16(mc.scratch.lo))
						}),
					}})
				} else {
					idx := rp[2]
					set(v, descriptor{name: "ADD " + idx.name + "," + reg.name, plan: plan{
						internal(7, func(mc *CPU) {
							idx.set(mc, mc.add16(idx.get(mc), reg.get(mc)))
						}),
					}})
				}

			case 2:
				switch y {
				case 0:
					set(v, descriptor{name: "LD (BC),A", plan: plan{
						writeAt(3, func(mc *CPU) uint16 { return mc.getBC() },
							func(mc *CPU) uint8 { return mc.A },
							func(mc *CPU) {
								mc.WZ = uint16(mc.A)<<8 | (mc.getBC()+1)&0x00ff
							}),
					}})
				case 1:
					set(v, descriptor{name: "LD A,(BC)", plan: plan{
						readAt(3, func(mc *CPU) uint16 { return mc.getBC() },
							func(mc *CPU, v uint8) {
								mc.A = v
								mc.WZ = mc.getBC() + 1
							}),
					}})
				case 2:
					set(v, descriptor{name: "LD (DE),A", plan: plan{
						writeAt(3, deAddr,
							func(mc *CPU) uint8 { return mc.A },
							func(mc *CPU) {
								mc.WZ = uint16(mc.A)<<8 | (mc.getDE()+1)&0x00ff
							}),
					}})
				case 3:
					set(v, descriptor{name: "LD A,(DE)", plan: plan{
						readAt(3, deAddr, func(mc *CPU, v uint8) {
							mc.A = v
							mc.WZ = mc.getDE() + 1
						}),
					}})
				case 4:
					idx := rp[2]
					set(v, descriptor{name: "LD (nn)," + idx.name, plan: plan{
						readPC(3, fetchLo),
						readPC(3, fetchHiAddr),
						writeAt(3, scratchAddr,
							func(mc *CPU) uint8 { return uint8(idx.get(mc)) }, nil),
						writeAt(3, scratchAddr1,
							func(mc *CPU) uint8 { return uint8(idx.get(mc) >> 8) },
							func(mc *CPU) { mc.WZ = mc.scratch.address + 1 }),
					}})
				case 5:
					idx := rp[2]
					set(v, descriptor{name: "LD " + idx.name + ",(nn)", plan: plan{
						readPC(3, fetchLo),
						readPC(3, fetchHiAddr),
						readAt(3, scratchAddr, fetchLo),
						readAt(3, scratchAddr1, func(mc *CPU, hi uint8) {
							idx.set(mc, uint16(hi)<<8|uint16(mc.scratch.lo))
							mc.WZ = mc.scratch.address + 1
						}),
					}})
				case 6:
					set(v, descriptor{name: "LD (nn),A", plan: plan{
						readPC(3, fetchLo),
						readPC(3, fetchHiAddr),
						writeAt(3, scratchAddr,
							func(mc *CPU) uint8 { return mc.A },
							func(mc *CPU) {
								mc.WZ = uint16(mc.A)<<8 | (mc.scratch.address+1)&0x00ff
							}),
					}})
				case 7:
					set(v, descriptor{name: "LD A,(nn)", plan: plan{
						readPC(3, fetchLo),
						readPC(3, fetchHiAddr),
						readAt(3, scratchAddr, func(mc *CPU, v uint8) {
							mc.A = v
							mc.WZ = mc.scratch.address + 1
						}),
					}})
				}

			case 3:
				reg := rp[p]
				if q == 0 {
					set(v, descriptor{name: "INC " + reg.name, plan: plan{
						internal(2, func(mc *CPU) { reg.set(mc, reg.get(mc)+1) }),
					}})
				} else {
					set(v, descriptor{name: "DEC " + reg.name, plan: plan{
						internal(2, func(mc *CPU) { reg.set(mc, reg.get(mc)-1) }),
					}})
				}

			case 4, 5:
				dec := z == 5
				verb := "INC "
				if dec {
					verb = "DEC "
				}
				if y == 6 {
					pre, addr := memOperand(ctx)
					pl := append(plan{}, pre...)
					pl = append(pl,
						readAt(4, addr, func(mc *CPU, v uint8) {
							if dec {
								mc.scratch.value = mc.dec8(v)
							} else {
								mc.scratch.value = mc.inc8(v)
							}
						}),
						writeAt(3, addr, scratchData, nil),
					)
					set(v, descriptor{name: verb + r[6].name, plan: pl})
				} else {
					reg := r[y]
					set(v, descriptor{name: verb + reg.name, action: func(mc *CPU) error {
						if dec {
							reg.set(mc, mc.dec8(reg.get(mc)))
						} else {
							reg.set(mc, mc.inc8(reg.get(mc)))
						}
						return nil
					}})
				}

			case 6:
				if y == 6 {
					if ctx == ctxHL {
						set(v, descriptor{name: "LD (HL),n", plan: plan{
							readPC(3, func(mc *CPU, v uint8) { mc.scratch.value = v }),
							writeAt(3, hlAddr, scratchData, nil),
						}})
					} else {
						// the displacement and the immediate arrive back to
						// back, with only two T-states to form the address
						set(v, descriptor{name: "LD " + r[6].name + ",n", plan: plan{
							readPC(3, func(mc *CPU, v uint8) { mc.scratch.disp = int8(v) }),
							readPC(3, func(mc *CPU, v uint8) { mc.scratch.value = v }),
							internal(2, func(mc *CPU) {
								mc.scratch.address = mc.getIndex(ctx) + uint16(mc.scratch.disp)
								mc.WZ = mc.scratch.address
							}),
							writeAt(3, scratchAddr, scratchData, nil),
						}})
					}
				} else {
					reg := r[y]
					set(v, descriptor{name: "LD " + reg.name + ",n", plan: plan{
						readPC(3, func(mc *CPU, v uint8) { reg.set(mc, v) }),
					}})
				}

			case 7:
				switch y {
				case 0:
					set(v, descriptor{name: "RLCA", action: func(mc *CPU) error { mc.rotateA(rotRLC); return nil }})
				case 1:
					set(v, descriptor{name: "RRCA", action: func(mc *CPU) error { mc.rotateA(rotRRC); return nil }})
				case 2:
					set(v, descriptor{name: "RLA", action: func(mc *CPU) error { mc.rotateA(rotRL); return nil }})
				case 3:
					set(v, descriptor{name: "RRA", action: func(mc *CPU) error { mc.rotateA(rotRR); return nil }})
				case 4:
					set(v, descriptor{name: "DAA", action: func(mc *CPU) error { mc.daa(); return nil }})
				case 5:
					set(v, descriptor{name: "CPL", action: func(mc *CPU) error {
						mc.A = ^mc.A
						mc.F.HalfCarry = true
						mc.F.Subtract = true
						mc.setXY(mc.A)
						return nil
					}})
				case 6:
					set(v, descriptor{name: "SCF", action: func(mc *CPU) error {
						mc.F.Carry = true
						mc.F.HalfCarry = false
						mc.F.Subtract = false
						mc.setXY(mc.A)
						return nil
					}})
				case 7:
					set(v, descriptor{name: "CCF", action: func(mc *CPU) error {
						mc.F.HalfCarry = mc.F.Carry
						mc.F.Carry = !mc.F.Carry
						mc.F.Subtract = false
						mc.setXY(mc.A)
						return nil
					}})
				}
			}

		case 1:
			if v == 0x76 {
				set(v, descriptor{name: "HALT", action: func(mc *CPU) error {
					mc.haltPending = true
					return nil
				}})
				continue
			}
			switch {
			case y == 6:
				// memory destination: the register operand always comes
				// from the unprefixed table ((IX+d) forms never see IXH)
				src := base[z]
				pre, addr := memOperand(ctx)
				pl := append(plan{}, pre...)
				pl = append(pl, writeAt(3, addr,
					func(mc *CPU) uint8 { return src.get(mc) }, nil))
				set(v, descriptor{name: "LD " + r[6].name + "," + src.name, plan: pl})
			case z == 6:
				dst := base[y]
				pre, addr := memOperand(ctx)
				pl := append(plan{}, pre...)
				pl = append(pl, readAt(3, addr, func(mc *CPU, v uint8) {
					dst.set(mc, v)
				}))
				set(v, descriptor{name: "LD " + dst.name + "," + r[6].name, plan: pl})
			default:
				dst, src := r[y], r[z]
				set(v, descriptor{name: "LD " + dst.name + "," + src.name,
					action: func(mc *CPU) error {
						dst.set(mc, src.get(mc))
						return nil
					}})
			}

		case 2:
			alu := aluOp(y)
			if z == 6 {
				pre, addr := memOperand(ctx)
				pl := append(plan{}, pre...)
				pl = append(pl, readAt(3, addr, alu))
				set(v, descriptor{name: aluNames[y] + r[6].name, plan: pl})
			} else {
				src := r[z]
				set(v, descriptor{name: aluNames[y] + src.name,
					action: func(mc *CPU) error {
						alu(mc, src.get(mc))
						return nil
					}})
			}

		case 3:
			switch z {
			case 0:
				cc := cond(y)
				set(v, descriptor{name: "RET " + condNames[y], plan: plan{
					internal(1, nil),
					guarded(popByte(3, fetchLo), cc),
					guarded(popByte(3, func(mc *CPU, hi uint8) {
						mc.PC = uint16(hi)<<8 | uint16(mc.scratch.lo)
						mc.WZ = mc.PC
					}), cc),
				}})

			case 1:
				if q == 0 {
					reg := rp2[p]
					set(v, descriptor{name: "POP " + reg.name, plan: plan{
						popByte(3, fetchLo),
						popByte(3, func(mc *CPU, hi uint8) {
							reg.set(mc, uint16(hi)<<8|uint16(mc.scratch.lo))
						}),
					}})
				} else {
					switch p {
					case 0:
						set(v, descriptor{name: "RET", plan: plan{
							popByte(3, fetchLo),
							popByte(3, func(mc *CPU, hi uint8) {
								mc.PC = uint16(hi)<<8 | uint16(mc.scratch.lo)
								mc.WZ = mc.PC
							}),
						}})
					case 1:
						set(v, descriptor{name: "EXX", action: func(mc *CPU) error {
							mc.B, mc.Alt.B = mc.Alt.B, mc.B
							mc.C, mc.Alt.C = mc.Alt.C, mc.C
							mc.D, mc.Alt.D = mc.Alt.D, mc.D
							mc.E, mc.Alt.E = mc.Alt.E, mc.E
							mc.H, mc.Alt.H = mc.Alt.H, mc.H
							mc.L, mc.Alt.L = mc.Alt.L, mc.L
							return nil
						}})
					case 2:
						set(v, descriptor{name: "JP (" + rp[2].name + ")", action: func(mc *CPU) error {
							mc.PC = mc.getIndex(ctx)
							return nil
						}})
					case 3:
						set(v, descriptor{name: "LD SP," + rp[2].name, plan: plan{
							internal(2, func(mc *CPU) { mc.SP = mc.getIndex(ctx) }),
						}})
					}
				}

			case 2:
				cc := cond(y)
				set(v, descriptor{name: "JP " + condNames[y] + ",nn", plan: plan{
					readPC(3, fetchLo),
					readPC(3, func(mc *CPU, hi uint8) {
						mc.scratch.address = uint16(hi)<<8 | uint16(mc.scratch.lo)
						mc.WZ = mc.scratch.address
						if cc(mc) {
							mc.PC = mc.scratch.address
						}
					}),
				}})

			case 3:
				switch y {
				case 0:
					set(v, descriptor{name: "JP nn", plan: plan{
						readPC(3, fetchLo),
						readPC(3, func(mc *CPU, hi uint8) {
							mc.PC = uint16(hi)<<8 | uint16(mc.scratch.lo)
							mc.WZ = mc.PC
						}),
					}})
				case 1:
					// CB prefix: intercepted at decode, never latched
					set(v, descriptor{name: "prefix CB"})
				case 2:
					set(v, descriptor{name: "OUT (n),A", plan: plan{
						readPC(3, fetchLo),
						portWrite(4, func(mc *CPU) uint16 {
							return uint16(mc.A)<<8 | uint16(mc.scratch.lo)
						}, func(mc *CPU) uint8 { return mc.A },
							func(mc *CPU) {
								mc.WZ = uint16(mc.A)<<8 | uint16(mc.scratch.lo+1)
							}),
					}})
				case 3:
					set(v, descriptor{name: "IN A,(n)", plan: plan{
						readPC(3, fetchLo),
						portRead(4, func(mc *CPU) uint16 {
							return uint16(mc.A)<<8 | uint16(mc.scratch.lo)
						}, func(mc *CPU, v uint8) {
							mc.WZ = (uint16(mc.A)<<8 | uint16(mc.scratch.lo)) + 1
							mc.A = v
						}),
					}})
				case 4:
					idx := rp[2]
					set(v, descriptor{name: "EX (SP)," + idx.name, plan: plan{
						readAt(3, func(mc *CPU) uint16 { return mc.SP }, fetchLo),
						readAt(4, func(mc *CPU) uint16 { return mc.SP + 1 },
							func(mc *CPU, v uint8) { mc.scratch.value = v }),
						writeAt(3, func(mc *CPU) uint16 { return mc.SP + 1 },
							func(mc *CPU) uint8 { return uint8(idx.get(mc) >> 8) }, nil),
						writeAt(5, func(mc *CPU) uint16 { return mc.SP },
							func(mc *CPU) uint8 { return uint8(idx.get(mc)) },
							func(mc *CPU) {
								idx.set(mc, uint16(mc.scratch.value)<<8|uint16(mc.scratch.lo))
								mc.WZ = idx.get(mc)
							}),
					}})
				case 5:
					// not redirected by DD/FD: always the real HL
					set(v, descriptor{name: "EX DE,HL", action: func(mc *CPU) error {
						mc.D, mc.H = mc.H, mc.D
						mc.E, mc.L = mc.L, mc.E
						return nil
					}})
				case 6:
					set(v, descriptor{name: "DI", action: func(mc *CPU) error {
						mc.IFF1 = false
						mc.IFF2 = false
						mc.eiPending = false
						return nil
					}})
				case 7:
					set(v, descriptor{name: "EI", action: func(mc *CPU) error {
						mc.eiPending = true
						return nil
					}})
				}

			case 4:
				cc := cond(y)
				set(v, descriptor{name: "CALL " + condNames[y] + ",nn",
					plan: callPlan(cc)})

			case 5:
				if q == 0 {
					reg := rp2[p]
					set(v, descriptor{name: "PUSH " + reg.name, plan: plan{
						internal(1, nil),
						pushByte(3, func(mc *CPU) uint8 { return uint8(reg.get(mc) >> 8) }, nil),
						pushByte(3, func(mc *CPU) uint8 { return uint8(reg.get(mc)) }, nil),
					}})
				} else {
					switch p {
					case 0:
						set(v, descriptor{name: "CALL nn", plan: callPlan(nil)})
					case 1:
						set(v, descriptor{name: "prefix DD"})
					case 2:
						set(v, descriptor{name: "prefix ED"})
					case 3:
						set(v, descriptor{name: "prefix FD"})
					}
				}

			case 6:
				alu := aluOp(y)
				set(v, descriptor{name: aluNames[y] + "n", plan: plan{
					readPC(3, alu),
				}})

			case 7:
				target := uint16(y * 8)
				set(v, descriptor{name: fmt.Sprintf("RST %02xh", target), plan: plan{
					internal(1, nil),
					pushByte(3, pchData, nil),
					pushByte(3, pclData, func(mc *CPU) {
						mc.PC = target
						mc.WZ = target
					}),
				}})
			}
		}
	}

	return t
}

// callPlan builds CALL nn / CALL cc,nn. A nil condition is unconditional.
func callPlan(cc func(mc *CPU) bool) plan {
	if cc == nil {
		cc = func(mc *CPU) bool { return true }
	}
	return plan{
		readPC(3, fetchLo),
		readPC(3, func(mc *CPU, hi uint8) {
			mc.scratch.address = uint16(hi)<<8 | uint16(mc.scratch.lo)
			mc.WZ = mc.scratch.address
		}),
		guarded(internal(1, nil), cc),
		guarded(pushByte(3, pchData, nil), cc),
		guarded(pushByte(3, pclData, func(mc *CPU) {
			mc.PC = mc.scratch.address
		}), cc),
	}
}

func buildCB() [256]descriptor {
	var t [256]descriptor
	r := regs8(ctxHL)

	for v := 0; v < 256; v++ {
		x, y, z := v>>6, (v>>3)&7, v&7
		bit := uint8(1) << y

		switch x {
		case 0:
			k := rotKind(y)
			if z == 6 {
				t[v] = descriptor{name: k.String() + " (HL)", plan: plan{
					readAt(4, hlAddr, func(mc *CPU, v uint8) {
						mc.scratch.value = mc.rotate(k, v)
					}),
					writeAt(3, hlAddr, scratchData, nil),
				}}
			} else {
				reg := r[z]
				t[v] = descriptor{name: k.String() + " " + reg.name,
					action: func(mc *CPU) error {
						reg.set(mc, mc.rotate(k, reg.get(mc)))
						return nil
					}}
			}

		case 1:
			n := uint(y)
			if z == 6 {
				t[v] = descriptor{name: fmt.Sprintf("BIT %d,(HL)", y), plan: plan{
					// the undocumented flag copies come from the high byte
					// of the internal address register, loaded here from
					// the register that sourced the address
					readAt(4, hlAddr, func(mc *CPU, v uint8) {
						mc.WZ = mc.getHL()
						mc.bitTest(n, v, uint8(mc.WZ>>8))
					}),
				}}
			} else {
				reg := r[z]
				t[v] = descriptor{name: fmt.Sprintf("BIT %d,%s", y, reg.name),
					action: func(mc *CPU) error {
						v := reg.get(mc)
						mc.bitTest(n, v, v)
						return nil
					}}
			}

		case 2, 3:
			setBit := x == 3
			verb := "RES"
			if setBit {
				verb = "SET"
			}
			apply := func(v uint8) uint8 {
				if setBit {
					return v | bit
				}
				return v &^ bit
			}
			if z == 6 {
				t[v] = descriptor{name: fmt.Sprintf("%s %d,(HL)", verb, y), plan: plan{
					readAt(4, hlAddr, func(mc *CPU, v uint8) {
						mc.scratch.value = apply(v)
					}),
					writeAt(3, hlAddr, scratchData, nil),
				}}
			} else {
				reg := r[z]
				t[v] = descriptor{name: fmt.Sprintf("%s %d,%s", verb, y, reg.name),
					action: func(mc *CPU) error {
						reg.set(mc, apply(reg.get(mc)))
						return nil
					}}
			}
		}
	}

	return t
}

// buildDDCB builds the displacement-indexed bit operations. Their plans
// run after the fixed fetch plan has put the effective address in scratch.
// The non-BIT forms copy the result back to a register when the register
// field is not the memory position.
func buildDDCB(ctx indexContext) [256]descriptor {
	var t [256]descriptor
	r := regs8(ctxHL)
	mem := regs8(ctx)[6].name

	for v := 0; v < 256; v++ {
		x, y, z := v>>6, (v>>3)&7, v&7
		bit := uint8(1) << y

		// honoured even though undocumented: real software uses the
		// register forms as "operate on memory, keep a copy"
		var copyBack func(mc *CPU)
		suffix := ""
		if z != 6 {
			reg := r[z]
			copyBack = func(mc *CPU) {
				reg.set(mc, mc.scratch.value)
			}
			suffix = "," + reg.name
		}

		switch x {
		case 0:
			k := rotKind(y)
			t[v] = descriptor{name: k.String() + " " + mem + suffix, plan: plan{
				readAt(4, scratchAddr, func(mc *CPU, v uint8) {
					mc.scratch.value = mc.rotate(k, v)
				}),
				writeAt(3, scratchAddr, scratchData, copyBack),
			}}

		case 1:
			n := uint(y)
			t[v] = descriptor{name: fmt.Sprintf("BIT %d,%s", y, mem), plan: plan{
				readAt(4, scratchAddr, func(mc *CPU, v uint8) {
					mc.bitTest(n, v, uint8(mc.scratch.address>>8))
				}),
			}}

		case 2, 3:
			setBit := x == 3
			verb := "RES"
			if setBit {
				verb = "SET"
			}
			t[v] = descriptor{name: fmt.Sprintf("%s %d,%s%s", verb, y, mem, suffix), plan: plan{
				readAt(4, scratchAddr, func(mc *CPU, v uint8) {
					if setBit {
						mc.scratch.value = v | bit
					} else {
						mc.scratch.value = v &^ bit
					}
				}),
				writeAt(3, scratchAddr, scratchData, copyBack),
			}}
		}
	}

	return t
}
