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

import (
	"math/bits"

	"github.com/clockwork-emu/clockwork/curated"
)

// the 68000 opcode space decodes through mask/value rows. a row claims every
// opcode for which opcode&mask == value; where several rows claim the same
// opcode the row with the more specific mask wins. two rows of equal
// specificity claiming the same opcode is a construction error, caught when
// the dispatch array is built, never at runtime.

type buildFunc func(mc *CPU, opcode uint16) (decoded, bool)

type row struct {
	name  string
	mask  uint16
	value uint16

	// privileged instructions decode to the privilege violation exception
	// in user state
	privileged bool

	build buildFunc
}

func (r *row) matches(opcode uint16) bool {
	return opcode&r.mask == r.value
}

// single-operand compute rules for the group 4 read-modify-write rows.
func computeCLR(mc *CPU, size opSize, v uint32) (uint32, bool) {
	return mc.logicResult(size, 0), true
}

func computeNOT(mc *CPU, size opSize, v uint32) (uint32, bool) {
	return mc.logicResult(size, ^v), true
}

func computeNEG(mc *CPU, size opSize, v uint32) (uint32, bool) {
	return mc.neg(size, v), true
}

func computeNEGX(mc *CPU, size opSize, v uint32) (uint32, bool) {
	return mc.negx(size, v), true
}

func computeTST(mc *CPU, size opSize, v uint32) (uint32, bool) {
	mc.logicResult(size, v)
	return 0, false
}

func opcodeRows() []row {
	rows := []row{
		// group 0: immediates, to-status forms and bit operations
		{name: "ORI to CCR", mask: 0xffff, value: 0x003c, build: buildImmediateToStatus(aluOr, false)},
		{name: "ORI to SR", mask: 0xffff, value: 0x007c, privileged: true, build: buildImmediateToStatus(aluOr, true)},
		{name: "ANDI to CCR", mask: 0xffff, value: 0x023c, build: buildImmediateToStatus(aluAnd, false)},
		{name: "ANDI to SR", mask: 0xffff, value: 0x027c, privileged: true, build: buildImmediateToStatus(aluAnd, true)},
		{name: "EORI to CCR", mask: 0xffff, value: 0x0a3c, build: buildImmediateToStatus(aluEor, false)},
		{name: "EORI to SR", mask: 0xffff, value: 0x0a7c, privileged: true, build: buildImmediateToStatus(aluEor, true)},
		{name: "ORI", mask: 0xff00, value: 0x0000, build: buildImmediate(aluOr)},
		{name: "ANDI", mask: 0xff00, value: 0x0200, build: buildImmediate(aluAnd)},
		{name: "SUBI", mask: 0xff00, value: 0x0400, build: buildImmediate(aluSub)},
		{name: "ADDI", mask: 0xff00, value: 0x0600, build: buildImmediate(aluAdd)},
		{name: "EORI", mask: 0xff00, value: 0x0a00, build: buildImmediate(aluEor)},
		{name: "CMPI", mask: 0xff00, value: 0x0c00, build: buildImmediate(aluCmp)},
		{name: "BTST #", mask: 0xffc0, value: 0x0800, build: buildBitOp(bitTst, true)},
		{name: "BCHG #", mask: 0xffc0, value: 0x0840, build: buildBitOp(bitChg, true)},
		{name: "BCLR #", mask: 0xffc0, value: 0x0880, build: buildBitOp(bitClr, true)},
		{name: "BSET #", mask: 0xffc0, value: 0x08c0, build: buildBitOp(bitSet, true)},
		{name: "BTST", mask: 0xf1c0, value: 0x0100, build: buildBitOp(bitTst, false)},
		{name: "BCHG", mask: 0xf1c0, value: 0x0140, build: buildBitOp(bitChg, false)},
		{name: "BCLR", mask: 0xf1c0, value: 0x0180, build: buildBitOp(bitClr, false)},
		{name: "BSET", mask: 0xf1c0, value: 0x01c0, build: buildBitOp(bitSet, false)},

		// groups 1 to 3: MOVE and MOVEA
		{name: "MOVEA.l", mask: 0xf1c0, value: 0x2040, build: buildMovea(sizeLong)},
		{name: "MOVEA.w", mask: 0xf1c0, value: 0x3040, build: buildMovea(sizeWord)},
		{name: "MOVE.b", mask: 0xf000, value: 0x1000, build: buildMove(sizeByte)},
		{name: "MOVE.l", mask: 0xf000, value: 0x2000, build: buildMove(sizeLong)},
		{name: "MOVE.w", mask: 0xf000, value: 0x3000, build: buildMove(sizeWord)},

		// group 4: miscellany
		{name: "ILLEGAL", mask: 0xffff, value: 0x4afc, build: buildIllegal},
		{name: "RESET", mask: 0xffff, value: 0x4e70, privileged: true, build: buildReset},
		{name: "NOP", mask: 0xffff, value: 0x4e71, build: buildNop},
		{name: "STOP", mask: 0xffff, value: 0x4e72, privileged: true, build: buildStop},
		{name: "RTE", mask: 0xffff, value: 0x4e73, privileged: true, build: buildRte},
		{name: "RTS", mask: 0xffff, value: 0x4e75, build: buildRts},
		{name: "TRAPV", mask: 0xffff, value: 0x4e76, build: buildTrapv},
		{name: "RTR", mask: 0xffff, value: 0x4e77, build: buildRtr},
		{name: "TRAP", mask: 0xfff0, value: 0x4e40, build: buildTrap},
		{name: "LINK", mask: 0xfff8, value: 0x4e50, build: buildLink},
		{name: "UNLK", mask: 0xfff8, value: 0x4e58, build: buildUnlk},
		{name: "MOVE to USP", mask: 0xfff8, value: 0x4e60, privileged: true, build: buildMoveUSP(true)},
		{name: "MOVE from USP", mask: 0xfff8, value: 0x4e68, privileged: true, build: buildMoveUSP(false)},
		{name: "JSR", mask: 0xffc0, value: 0x4e80, build: buildJsr},
		{name: "JMP", mask: 0xffc0, value: 0x4ec0, build: buildJmp},
		{name: "MOVE from SR", mask: 0xffc0, value: 0x40c0, build: buildMoveFromSR},
		{name: "MOVE to CCR", mask: 0xffc0, value: 0x44c0, build: buildMoveToStatus(false)},
		{name: "MOVE to SR", mask: 0xffc0, value: 0x46c0, privileged: true, build: buildMoveToStatus(true)},
		{name: "NEGX", mask: 0xff00, value: 0x4000, build: buildSingle("NEGX", computeNEGX)},
		{name: "CLR", mask: 0xff00, value: 0x4200, build: buildSingle("CLR", computeCLR)},
		{name: "NEG", mask: 0xff00, value: 0x4400, build: buildSingle("NEG", computeNEG)},
		{name: "NOT", mask: 0xff00, value: 0x4600, build: buildSingle("NOT", computeNOT)},
		{name: "TST", mask: 0xff00, value: 0x4a00, build: buildSingle("TST", computeTST)},
		{name: "SWAP", mask: 0xfff8, value: 0x4840, build: buildSwap},
		{name: "PEA", mask: 0xffc0, value: 0x4840, build: buildPea},
		{name: "EXT.w", mask: 0xfff8, value: 0x4880, build: buildExt(sizeWord)},
		{name: "EXT.l", mask: 0xfff8, value: 0x48c0, build: buildExt(sizeLong)},
		{name: "LEA", mask: 0xf1c0, value: 0x41c0, build: buildLea},

		// group 5: quick arithmetic, Scc and DBcc
		{name: "DBcc", mask: 0xf0f8, value: 0x50c8, build: buildDBcc},
		{name: "Scc", mask: 0xf0c0, value: 0x50c0, build: buildScc},
		{name: "ADDQ", mask: 0xf100, value: 0x5000, build: buildQuick(true)},
		{name: "SUBQ", mask: 0xf100, value: 0x5100, build: buildQuick(false)},

		// group 6: branches. one row; the builder reads the condition field
		{name: "Bcc", mask: 0xf000, value: 0x6000, build: buildBranch},

		// group 7
		{name: "MOVEQ", mask: 0xf100, value: 0x7000, build: buildMoveq},

		// group 8
		{name: "SBCD", mask: 0xf1f0, value: 0x8100, build: buildExtended("SBCD", sizeByte, true,
			func(mc *CPU, size opSize, dst, src uint32) uint32 {
				return uint32(mc.sbcd(uint8(dst), uint8(src)))
			})},
		{name: "DIVU", mask: 0xf1c0, value: 0x80c0, build: buildDiv(false)},
		{name: "DIVS", mask: 0xf1c0, value: 0x81c0, build: buildDiv(true)},
		{name: "OR", mask: 0xf000, value: 0x8000, build: buildALU(aluOr)},

		// group 9
		{name: "SUBX.b", mask: 0xf1f0, value: 0x9100, build: buildExtended("SUBX", sizeByte, false, (*CPU).subx)},
		{name: "SUBX.w", mask: 0xf1f0, value: 0x9140, build: buildExtended("SUBX", sizeWord, false, (*CPU).subx)},
		{name: "SUBX.l", mask: 0xf1f0, value: 0x9180, build: buildExtended("SUBX", sizeLong, false, (*CPU).subx)},
		{name: "SUBA", mask: 0xf0c0, value: 0x90c0, build: buildALUAddress(aluSub)},
		{name: "SUB", mask: 0xf000, value: 0x9000, build: buildALU(aluSub)},

		// group B
		{name: "CMPM.b", mask: 0xf1f8, value: 0xb108, build: buildCMPM(sizeByte)},
		{name: "CMPM.w", mask: 0xf1f8, value: 0xb148, build: buildCMPM(sizeWord)},
		{name: "CMPM.l", mask: 0xf1f8, value: 0xb188, build: buildCMPM(sizeLong)},
		{name: "CMPA", mask: 0xf0c0, value: 0xb0c0, build: buildALUAddress(aluCmp)},
		{name: "EOR", mask: 0xf100, value: 0xb100, build: buildALU(aluEor)},
		{name: "CMP", mask: 0xf000, value: 0xb000, build: buildALU(aluCmp)},

		// group C
		{name: "ABCD", mask: 0xf1f0, value: 0xc100, build: buildExtended("ABCD", sizeByte, true,
			func(mc *CPU, size opSize, dst, src uint32) uint32 {
				return uint32(mc.abcd(uint8(dst), uint8(src)))
			})},
		{name: "EXG Dx,Dy", mask: 0xf1f8, value: 0xc140, build: buildExg(0)},
		{name: "EXG Ax,Ay", mask: 0xf1f8, value: 0xc148, build: buildExg(1)},
		{name: "EXG Dx,Ay", mask: 0xf1f8, value: 0xc188, build: buildExg(2)},
		{name: "MULU", mask: 0xf1c0, value: 0xc0c0, build: buildMul(false)},
		{name: "MULS", mask: 0xf1c0, value: 0xc1c0, build: buildMul(true)},
		{name: "AND", mask: 0xf000, value: 0xc000, build: buildALU(aluAnd)},

		// group D
		{name: "ADDX.b", mask: 0xf1f0, value: 0xd100, build: buildExtended("ADDX", sizeByte, false, (*CPU).addx)},
		{name: "ADDX.w", mask: 0xf1f0, value: 0xd140, build: buildExtended("ADDX", sizeWord, false, (*CPU).addx)},
		{name: "ADDX.l", mask: 0xf1f0, value: 0xd180, build: buildExtended("ADDX", sizeLong, false, (*CPU).addx)},
		{name: "ADDA", mask: 0xf0c0, value: 0xd0c0, build: buildALUAddress(aluAdd)},
		{name: "ADD", mask: 0xf000, value: 0xd000, build: buildALU(aluAdd)},

		// unimplemented lines decode to their own exception vectors
		{name: "Line A", mask: 0xf000, value: 0xa000, build: buildLine(vectorLineA, "LINEA")},
		{name: "Line F", mask: 0xf000, value: 0xf000, build: buildLine(vectorLineF, "LINEF")},
	}

	// group E: register shifts, one row per size and kind pair
	for ss, size := range []opSize{sizeByte, sizeWord, sizeLong} {
		for tt, kind := range []shiftKind{shiftAS, shiftLS, shiftROX, shiftRO} {
			rows = append(rows, row{
				name:  kind.name(true) + "/" + kind.name(false) + " " + size.String(),
				mask:  0xf0d8,
				value: 0xe000 | uint16(ss)<<6 | uint16(tt)<<3,
				build: buildShiftReg(kind, size),
			})
		}
	}

	// group E: memory shifts, word-sized, by one
	for tt, kind := range []shiftKind{shiftAS, shiftLS, shiftROX, shiftRO} {
		for d, left := range []bool{false, true} {
			rows = append(rows, row{
				name:  kind.name(left) + " (mem)",
				mask:  0xffc0,
				value: 0xe0c0 | uint16(tt)<<9 | uint16(d)<<8,
				build: buildShiftMem(kind, left),
			})
		}
	}

	return rows
}

// buildDispatch resolves the row table into a direct-mapped dispatch array.
// Every opcode word maps to exactly one row or to nil for the illegal
// instruction exception. Overlapping claims of equal specificity fail
// construction.
func buildDispatch() ([]row, *[65536]*row, error) {
	rows := opcodeRows()
	dispatch := &[65536]*row{}

	for opcode := 0; opcode <= 0xffff; opcode++ {
		var best *row
		bestSpec := -1
		ambiguous := false

		for i := range rows {
			r := &rows[i]
			if !r.matches(uint16(opcode)) {
				continue
			}
			spec := bits.OnesCount16(r.mask)
			switch {
			case spec > bestSpec:
				best = r
				bestSpec = spec
				ambiguous = false
			case spec == bestSpec:
				ambiguous = true
			}
		}

		if ambiguous {
			return nil, nil, curated.Errorf(
				"m68k: decode table: opcode %#04x claimed twice at equal specificity (%s)",
				opcode, best.name)
		}
		dispatch[opcode] = best
	}

	return rows, dispatch, nil
}
