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

// the addressing mode sub-engine. every mode is a parameterised fragment:
// a prepare step run combinationally at decode (register-only address
// generation), a calc plan of machine cycles (extension word fetches and
// index arithmetic), and a location the operand lives in afterwards.
// extension words are consumed through the scratch cursor so a fragment can
// never re-fetch at a stale offset.

type eaKind int

const (
	eaDn eaKind = iota
	eaAn
	eaInd     // (An)
	eaPostInc // (An)+
	eaPreDec  // -(An)
	eaDisp    // d16(An)
	eaIdx     // d8(An,Xn)
	eaAbsW    // (xxx).W
	eaAbsL    // (xxx).L
	eaPCDisp  // d16(PC)
	eaPCIdx   // d8(PC,Xn)
	eaImm     // #imm
	eaInvalid
)

func (k eaKind) String() string {
	return [...]string{
		"Dn", "An", "(An)", "(An)+", "-(An)", "d16(An)", "d8(An,Xn)",
		"(xxx).W", "(xxx).L", "d16(PC)", "d8(PC,Xn)", "#imm", "invalid",
	}[k]
}

// addressing mode categories used by instructions to state what they
// accept. the encodings the category excludes decode to the illegal
// sentinel, exactly as on real silicon.
const (
	catData    = 1 << iota // everything but An
	catMemory              // everything but Dn and An
	catAlter               // writable: excludes PC-relative and #imm
	catControl             // no registers, no increment/decrement, no #imm
)

var eaCategories = map[eaKind]int{
	eaDn:      catData | catAlter,
	eaAn:      catAlter,
	eaInd:     catData | catMemory | catAlter | catControl,
	eaPostInc: catData | catMemory | catAlter,
	eaPreDec:  catData | catMemory | catAlter,
	eaDisp:    catData | catMemory | catAlter | catControl,
	eaIdx:     catData | catMemory | catAlter | catControl,
	eaAbsW:    catData | catMemory | catAlter | catControl,
	eaAbsL:    catData | catMemory | catAlter | catControl,
	eaPCDisp:  catData | catMemory | catControl,
	eaPCIdx:   catData | catMemory | catControl,
	eaImm:     catData | catMemory,
}

func classifyEA(mode, reg int) eaKind {
	switch mode {
	case 0:
		return eaDn
	case 1:
		return eaAn
	case 2:
		return eaInd
	case 3:
		return eaPostInc
	case 4:
		return eaPreDec
	case 5:
		return eaDisp
	case 6:
		return eaIdx
	case 7:
		switch reg {
		case 0:
			return eaAbsW
		case 1:
			return eaAbsL
		case 2:
			return eaPCDisp
		case 3:
			return eaPCIdx
		case 4:
			return eaImm
		}
	}
	return eaInvalid
}

// eaOperand is one resolved addressing mode fragment.
type eaOperand struct {
	kind eaKind
	reg  int
	size opSize

	// the operand is accessed through scratch.ea rather than a register
	inMemory bool

	// run combinationally at decode; register-only address generation
	prepare func(mc *CPU)

	// machine cycles that finish the address (and fetch an immediate)
	calc plan
}

// stackStep is the post-increment/pre-decrement distance: byte accesses
// through A7 move by two to keep the stack pointer even.
func stackStep(size opSize, reg int) uint32 {
	if size == sizeByte && reg == 7 {
		return 2
	}
	return size.bytes()
}

// indexValue resolves a brief extension word's index register part.
func indexValue(mc *CPU, ext uint16) uint32 {
	v := mc.D[(ext>>12)&7]
	if ext&0x8000 == 0x8000 {
		v = mc.A[(ext>>12)&7]
	}
	if ext&0x0800 == 0 {
		v = sizeWord.signExtend(v)
	}
	return v
}

// buildEA resolves an addressing mode into its fragment. Returns false if
// the encoding is not a legal mode or is outside the given category mask.
func buildEA(mode, reg int, size opSize, cat int) (eaOperand, bool) {
	kind := classifyEA(mode, reg)
	if kind == eaInvalid || eaCategories[kind]&cat != cat {
		return eaOperand{}, false
	}

	ea := eaOperand{kind: kind, reg: reg, size: size}

	switch kind {
	case eaDn, eaAn:
		// operand in the register file; no address

	case eaInd:
		ea.inMemory = true
		ea.prepare = func(mc *CPU) {
			mc.scratch.ea = mc.A[reg]
		}

	case eaPostInc:
		ea.inMemory = true
		ea.prepare = func(mc *CPU) {
			mc.scratch.ea = mc.A[reg]
			mc.A[reg] += stackStep(size, reg)
		}

	case eaPreDec:
		ea.inMemory = true
		ea.calc = plan{internal(2, func(mc *CPU) {
			mc.A[reg] -= stackStep(size, reg)
			mc.scratch.ea = mc.A[reg]
		})}

	case eaDisp:
		ea.inMemory = true
		ea.calc = plan{readExt(func(mc *CPU, v uint16) {
			mc.scratch.ea = mc.A[reg] + sizeWord.signExtend(uint32(v))
		})}

	case eaIdx:
		ea.inMemory = true
		ea.calc = plan{
			readExt(func(mc *CPU, v uint16) {
				mc.scratch.ea = mc.A[reg] +
					sizeByte.signExtend(uint32(v)) + indexValue(mc, v)
			}),
			internal(2, nil),
		}

	case eaAbsW:
		ea.inMemory = true
		ea.calc = plan{readExt(func(mc *CPU, v uint16) {
			mc.scratch.ea = sizeWord.signExtend(uint32(v))
		})}

	case eaAbsL:
		ea.inMemory = true
		ea.calc = plan{
			readExt(func(mc *CPU, v uint16) {
				mc.scratch.ea = uint32(v) << 16
			}),
			readExt(func(mc *CPU, v uint16) {
				mc.scratch.ea |= uint32(v)
			}),
		}

	case eaPCDisp:
		ea.inMemory = true
		ea.calc = plan{readExt(func(mc *CPU, v uint16) {
			// base is the address of the extension word itself
			mc.scratch.ea = mc.scratch.extCursor - 2 + sizeWord.signExtend(uint32(v))
		})}

	case eaPCIdx:
		ea.inMemory = true
		ea.calc = plan{
			readExt(func(mc *CPU, v uint16) {
				mc.scratch.ea = mc.scratch.extCursor - 2 +
					sizeByte.signExtend(uint32(v)) + indexValue(mc, v)
			}),
			internal(2, nil),
		}

	case eaImm:
		if size == sizeLong {
			ea.calc = plan{
				readExt(func(mc *CPU, v uint16) {
					mc.scratch.operand = uint32(v) << 16
				}),
				readExt(func(mc *CPU, v uint16) {
					mc.scratch.operand |= uint32(v)
				}),
			}
		} else {
			ea.calc = plan{readExt(func(mc *CPU, v uint16) {
				mc.scratch.operand = uint32(v) & uint16mask(size)
			})}
		}
	}

	return ea, true
}

func uint16mask(size opSize) uint32 {
	if size == sizeByte {
		return 0x00ff
	}
	return 0xffff
}

// prefacing attaches a register-only preparation step to the front of a
// plan. It runs once, before the first query of the first machine cycle, so
// a stalled bus access never repeats a post-increment.
func prefacing(p plan, f func(mc *CPU)) plan {
	first := p[0]
	orig := first.run
	done := false
	first.run = func(mc *CPU) (bool, error) {
		if !done {
			done = true
			f(mc)
		}
		return orig(mc)
	}
	p[0] = first
	return p
}

// locate returns the plan that establishes the operand address and then
// continues with cont. The preparation step, if any, is prefaced onto the
// first machine cycle.
func (ea eaOperand) locate(cont plan) plan {
	p := append(plan{}, ea.calc...)
	p = append(p, cont...)
	if ea.prepare != nil && len(p) > 0 {
		p = prefacing(p, ea.prepare)
	}
	return p
}

// fetch returns the plan that makes the operand's value readable through
// get: address calculation plus the data read for memory operands.
func (ea eaOperand) fetch() plan {
	var cont plan
	if ea.inMemory {
		cont = readOperand(ea.size)
	}
	return ea.locate(cont)
}

// get reads the operand after fetch has completed. Pure.
func (ea eaOperand) get(mc *CPU) uint32 {
	switch ea.kind {
	case eaDn:
		return mc.D[ea.reg] & ea.size.mask()
	case eaAn:
		return mc.A[ea.reg] & ea.size.mask()
	}
	return mc.scratch.operand & ea.size.mask()
}

// set writes a register operand. Memory operands are stored through
// store(), not set.
func (ea eaOperand) set(mc *CPU, v uint32) {
	switch ea.kind {
	case eaDn:
		mc.D[ea.reg] = ea.size.merge(mc.D[ea.reg], v)
	case eaAn:
		mc.A[ea.reg] = v
	}
}

// store returns the plan that writes scratch.value to a memory operand.
// Register operands store nothing here; the compute micro-op sets them.
func (ea eaOperand) store(post func(mc *CPU)) plan {
	if !ea.inMemory {
		return nil
	}
	return writeValue(ea.size, post)
}
