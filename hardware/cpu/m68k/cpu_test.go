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

package m68k_test

import (
	"testing"

	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/cpu/m68k"
	"github.com/clockwork-emu/clockwork/hardware/memory"
	"github.com/clockwork-emu/clockwork/test"
)

func pokeLong(mem *memory.Memory, addr, v uint32) {
	mem.PokeBytes(addr, uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v))
}

func pokeWords(mem *memory.Memory, addr uint32, words ...uint16) uint32 {
	for _, w := range words {
		addr = mem.PokeBytes(addr, uint8(w>>8), uint8(w))
	}
	return addr
}

func peekLong(mem *memory.Memory, addr uint32) uint32 {
	return uint32(mem.Peek(addr))<<24 | uint32(mem.Peek(addr+1))<<16 |
		uint32(mem.Peek(addr+2))<<8 | uint32(mem.Peek(addr+3))
}

func peekWord(mem *memory.Memory, addr uint32) uint16 {
	return uint16(mem.Peek(addr))<<8 | uint16(mem.Peek(addr+1))
}

// newTestCPU builds a core with the reset vectors pointing at a supervisor
// stack of $F000 and a program origin of $1000, and runs the reset sequence
// to the first instruction boundary.
func newTestCPU(t *testing.T) (*m68k.CPU, *memory.Memory) {
	t.Helper()

	mem := memory.NewMemory(0x100000)
	pokeLong(mem, 0, 0x0000f000)
	pokeLong(mem, 4, 0x00001000)

	mc, err := m68k.NewCPU(mem)
	if err != nil {
		t.Fatal(err)
	}
	mc.StrictScratch = true

	test.Equate(t, step(t, mc), 40)
	test.Equate(t, mc.PC, 0x1000)
	test.Equate(t, mc.A[7], 0xf000)

	return mc, mem
}

// step ticks the core to the next instruction boundary. Returns the number
// of clock periods taken.
func step(t *testing.T, mc *m68k.CPU) int {
	t.Helper()

	ticks := 0
	for {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
		ticks++
		if mc.InstructionBoundary() {
			break
		}
		if ticks > 400 {
			t.Fatal("instruction did not complete")
		}
	}

	return ticks
}

func TestJumpAbsolute(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeWords(mem, 0x1000, 0x4ef9, 0x0000, 0x2000) // JMP $00002000

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.PC, 0x2000)
}

func TestCompareImmediate(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[2] = 0x5678
	pokeWords(mem, 0x1000, 0x0c42, 0x5678) // CMPI.W #$5678,D2
	pokeWords(mem, 0x1004, 0x0c42, 0x5679) // CMPI.W #$5679,D2

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.SR.Zero, true)
	test.Equate(t, mc.SR.Carry, false)
	test.Equate(t, mc.D[2], 0x5678)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.SR.Zero, false)
	test.Equate(t, mc.SR.Carry, true)
}

func TestExclusiveOrImmediateLong(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[5] = 0x5555aaaa
	pokeWords(mem, 0x1000, 0x0a85, 0xffff, 0xffff) // EORI.L #$FFFFFFFF,D5

	test.Equate(t, step(t, mc), 16)
	test.Equate(t, mc.D[5], 0xaaaa5555)
	test.Equate(t, mc.SR.Negative, true)
	test.Equate(t, mc.SR.Zero, false)
}

func TestMoveInstructions(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0xdeadbeef
	pokeWords(mem, 0x1000, 0x3200)                 // MOVE.W D0,D1
	pokeWords(mem, 0x1002, 0x203c, 0x1234, 0x5678) // MOVE.L #$12345678,D0
	pokeWords(mem, 0x1008, 0x31c0, 0x2000)         // MOVE.W D0,$2000.W

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[1], 0xbeef)
	test.Equate(t, mc.SR.Negative, true)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.D[0], 0x12345678)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, peekWord(mem, 0x2000), 0x5678)
}

func TestAddressingModes(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.A[0] = 0x3000
	mc.D[1] = 4
	pokeWords(mem, 0x3000, 0xaaaa, 0xbbbb, 0xcccc, 0xdddd)

	pokeWords(mem, 0x1000, 0x3010)         // MOVE.W (A0),D0
	pokeWords(mem, 0x1002, 0x3018)         // MOVE.W (A0)+,D0
	pokeWords(mem, 0x1004, 0x3020)         // MOVE.W -(A0),D0
	pokeWords(mem, 0x1006, 0x3028, 0x0006) // MOVE.W 6(A0),D0
	pokeWords(mem, 0x100a, 0x3030, 0x1002) // MOVE.W 2(A0,D1.W),D0
	pokeWords(mem, 0x100e, 0x3038, 0x3004) // MOVE.W $3004.W,D0

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.D[0], 0xaaaa)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.D[0], 0xaaaa)
	test.Equate(t, mc.A[0], 0x3002)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.D[0], 0xaaaa)
	test.Equate(t, mc.A[0], 0x3000)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.D[0], 0xdddd)

	// 2(A0,D1.W) = $3000 + 2 + 4
	test.Equate(t, step(t, mc), 14)
	test.Equate(t, mc.D[0], 0xdddd)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.D[0], 0xcccc)
}

func TestByteStackPointerStaysEven(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0x42
	pokeWords(mem, 0x1000, 0x1f00) // MOVE.B D0,-(A7)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.A[7], 0xeffe)
	test.Equate(t, mem.Peek(0xeffe), 0x42)
}

func TestArithmeticFlags(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0x7fff
	mc.D[1] = 0x0001
	pokeWords(mem, 0x1000, 0xd041) // ADD.W D1,D0
	pokeWords(mem, 0x1002, 0xd081) // ADD.L D1,D0
	pokeWords(mem, 0x1004, 0x9041) // SUB.W D1,D0

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 0x8000)
	test.Equate(t, mc.SR.Overflow, true)
	test.Equate(t, mc.SR.Negative, true)
	test.Equate(t, mc.SR.Carry, false)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.D[0], 0x8001)
	test.Equate(t, mc.SR.Overflow, false)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 0x8000)
}

func TestAddToMemory(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.A[0] = 0x3000
	mc.D[1] = 0x0011
	pokeWords(mem, 0x3000, 0x0022)
	pokeWords(mem, 0x1000, 0xd350) // ADD.W D1,(A0)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, peekWord(mem, 0x3000), 0x0033)
}

func TestAddressRegisterArithmetic(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeWords(mem, 0x1000, 0x303c, 0x8000) // MOVE.W #$8000,D0
	pokeWords(mem, 0x1004, 0x3040)         // MOVEA.W D0,A0
	pokeWords(mem, 0x1006, 0xd0c0)         // ADDA.W D0,A0

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, step(t, mc), 4)

	// MOVEA sign-extends and sets no flags
	test.Equate(t, mc.A[0], 0xffff8000)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.A[0], 0xffff0000)
}

func TestSubroutineCallAndReturn(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeWords(mem, 0x1000, 0x4eb9, 0x0000, 0x2000) // JSR $00002000
	pokeWords(mem, 0x2000, 0x4e75)                 // RTS

	test.Equate(t, step(t, mc), 20)
	test.Equate(t, mc.PC, 0x2000)
	test.Equate(t, mc.A[7], 0xeffc)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1006)

	test.Equate(t, step(t, mc), 16)
	test.Equate(t, mc.PC, 0x1006)
	test.Equate(t, mc.A[7], 0xf000)
}

func TestBranches(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeWords(mem, 0x1000, 0x6006) // BRA.B +6

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.PC, 0x1008)

	mc.SR.Zero = false
	pokeWords(mem, 0x1008, 0x6704)         // BEQ.B (not taken)
	pokeWords(mem, 0x100a, 0x6600, 0x0010) // BNE.W +$10 (taken)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.PC, 0x100a)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.PC, 0x101c)
}

func TestBranchSubroutine(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeWords(mem, 0x1000, 0x6100, 0x0ffe) // BSR.W +$0FFE

	test.Equate(t, step(t, mc), 18)
	test.Equate(t, mc.PC, 0x2000)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1004)
}

func TestDecrementAndBranch(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 2
	pokeWords(mem, 0x1000, 0x51c8, 0xfffe) // DBF D0,-2 (to itself)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.PC, 0x1000)
	test.Equate(t, mc.D[0], 1)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.D[0], 0)

	// counter expires: fall through with the counter at -1
	test.Equate(t, step(t, mc), 14)
	test.Equate(t, mc.PC, 0x1004)
	test.Equate(t, mc.D[0], 0xffff)
}

func TestSetConditionally(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.SR.Zero = true
	pokeWords(mem, 0x1000, 0x57c0) // SEQ D0
	pokeWords(mem, 0x1002, 0x56c0) // SNE D0

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.D[0]&0xff, 0xff)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0]&0xff, 0x00)
}

func TestQuickArithmetic(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 10
	mc.A[0] = 0x3000
	pokeWords(mem, 0x1000, 0x5440) // ADDQ.W #2,D0
	pokeWords(mem, 0x1002, 0x5f48) // SUBQ.W #7,A0

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 12)

	// address register: no flags, whole register
	mc.SR.Zero = true
	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.A[0], 0x2ff9)
	test.Equate(t, mc.SR.Zero, true)
}

func TestShiftsAndRotates(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0x4001
	pokeWords(mem, 0x1000, 0xe548) // LSL.W #2,D0
	pokeWords(mem, 0x1002, 0xe240) // ASR.W #1,D0
	pokeWords(mem, 0x1004, 0xe518) // ROL.B #2,D0

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.D[0], 0x0004)
	test.Equate(t, mc.SR.Carry, true)
	test.Equate(t, mc.SR.Extend, true)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.D[0], 0x0002)
	test.Equate(t, mc.SR.Carry, false)

	mc.D[0] = 0x81
	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.D[0]&0xff, 0x06)
	test.Equate(t, mc.SR.Carry, true)
}

func TestShiftByRegisterCount(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 1
	mc.D[1] = 8
	pokeWords(mem, 0x1000, 0xe368) // LSL.W D1,D0

	// 6 + 2 per bit shifted
	test.Equate(t, step(t, mc), 22)
	test.Equate(t, mc.D[0], 0x0100)
}

func TestExtendedArithmetic(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0xffff
	mc.D[1] = 0x0001
	mc.SR.Extend = false
	mc.SR.Zero = true
	pokeWords(mem, 0x1000, 0xd141) // ADDX.W D1,D0

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.D[0], 0x0000)
	test.Equate(t, mc.SR.Carry, true)
	test.Equate(t, mc.SR.Extend, true)
	// the extend family only ever clears Z, so chains test the whole
	// result
	test.Equate(t, mc.SR.Zero, true)
}

func TestBCDArithmetic(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0x19
	mc.D[1] = 0x27
	mc.SR.Extend = false
	mc.SR.Zero = false
	pokeWords(mem, 0x1000, 0xc101) // ABCD D1,D0
	pokeWords(mem, 0x1002, 0x8101) // SBCD D1,D0

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.D[0]&0xff, 0x46)
	test.Equate(t, mc.SR.Carry, false)

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.D[0]&0xff, 0x19)
}

func TestMultiplyDivide(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 100
	mc.D[1] = 200
	pokeWords(mem, 0x1000, 0xc0c1) // MULU.W D1,D0

	test.Equate(t, step(t, mc), 70)
	test.Equate(t, mc.D[0], 20000)

	mc.D[2] = 20000
	mc.D[3] = 300
	pokeWords(mem, 0x1002, 0x84c3) // DIVU.W D3,D2

	test.Equate(t, step(t, mc), 140)
	test.Equate(t, mc.D[2], 200<<16|66)
}

func TestDivideByZero(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, 5*4, 0x00003000) // divide-by-zero vector

	mc.D[0] = 100
	mc.D[1] = 0
	pokeWords(mem, 0x1000, 0x80c1) // DIVU.W D1,D0

	test.Equate(t, step(t, mc), 170)
	test.Equate(t, mc.PC, 0x3000)
	test.Equate(t, mc.D[0], 100)
}

func TestSingleOperandForms(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0x12345678
	pokeWords(mem, 0x1000, 0x4840) // SWAP D0
	pokeWords(mem, 0x1002, 0x4240) // CLR.W D0
	pokeWords(mem, 0x1004, 0x4600) // NOT.B D0
	pokeWords(mem, 0x1006, 0x4880) // EXT.W D0
	pokeWords(mem, 0x1008, 0x48c0) // EXT.L D0

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 0x56781234)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 0x56780000)
	test.Equate(t, mc.SR.Zero, true)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 0x567800ff)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 0x5678ffff)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[0], 0xffffffff)
}

func TestBitOperations(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0x08
	mc.A[0] = 0x3000
	pokeWords(mem, 0x1000, 0x0800, 0x0003) // BTST #3,D0
	pokeWords(mem, 0x1004, 0x0800, 0x0004) // BTST #4,D0
	pokeWords(mem, 0x1008, 0x08d0, 0x0000) // BSET #0,(A0)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.SR.Zero, false)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.SR.Zero, true)

	test.Equate(t, step(t, mc), 16)
	test.Equate(t, mem.Peek(0x3000), 0x01)
}

func TestLinkUnlink(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.A[6] = 0x12345678
	pokeWords(mem, 0x1000, 0x4e56, 0xfff8) // LINK A6,#-8
	pokeWords(mem, 0x1004, 0x4e5e)         // UNLK A6

	test.Equate(t, step(t, mc), 16)
	test.Equate(t, peekLong(mem, 0xeffc), 0x12345678)
	test.Equate(t, mc.A[6], 0xeffc)
	test.Equate(t, mc.A[7], 0xeff4)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.A[6], 0x12345678)
	test.Equate(t, mc.A[7], 0xf000)
}

func TestTrapUsesVectorTableAlone(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, (32+5)*4, 0x00004000)
	pokeWords(mem, 0x1000, 0x4e45) // TRAP #5
	pokeWords(mem, 0x4000, 0x4e73) // RTE

	sr := mc.SR.Value()

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.PC, 0x4000)
	test.Equate(t, mc.A[7], 0xeffa)
	test.Equate(t, peekWord(mem, 0xeffa), sr)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1002)

	test.Equate(t, step(t, mc), 20)
	test.Equate(t, mc.PC, 0x1002)
	test.Equate(t, mc.A[7], 0xf000)

	// the dispatch address comes from the table at the time of the trap:
	// nothing latched at construction
	pokeLong(mem, (32+5)*4, 0x00004200)
	pokeWords(mem, 0x1002, 0x4e45)

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.PC, 0x4200)
}

func TestIllegalInstruction(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, 4*4, 0x00003000)
	pokeWords(mem, 0x1000, 0x4afc) // ILLEGAL

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.PC, 0x3000)
	// the pushed address is of the illegal instruction itself
	test.Equate(t, peekLong(mem, 0xeffc), 0x1000)
}

func TestUnclaimedOpcodeIsIllegal(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, 4*4, 0x00003000)
	pokeWords(mem, 0x1000, 0x4800) // no instruction claims this encoding

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.PC, 0x3000)
}

func TestUnimplementedLines(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, 10*4, 0x00003000)
	pokeLong(mem, 11*4, 0x00003100)
	pokeWords(mem, 0x1000, 0xa000)
	pokeWords(mem, 0x3000, 0xf000)

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.PC, 0x3000)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1000)

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.PC, 0x3100)
	test.Equate(t, peekLong(mem, 0xeff6), 0x3000)
}

func TestPrivilegeViolation(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, 8*4, 0x00005000)

	mc.A[0] = 0xe000
	pokeWords(mem, 0x1000, 0x4e60)         // MOVE A0,USP
	pokeWords(mem, 0x1002, 0x46fc, 0x0000) // MOVE #$0000,SR (to user state)
	pokeWords(mem, 0x1006, 0x4e72, 0x0000) // STOP (privileged)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, step(t, mc), 16)
	test.Equate(t, mc.SR.Supervisor, false)
	test.Equate(t, mc.A[7], 0xe000)

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.SR.Supervisor, true)
	test.Equate(t, mc.PC, 0x5000)
	// the frame lands on the supervisor stack and points back at the
	// privileged instruction
	test.Equate(t, mc.A[7], 0xeffa)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1006)
}

func TestStopAndInterruptWake(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, (24+5)*4, 0x00006000)
	pokeWords(mem, 0x1000, 0x4e72, 0x2300) // STOP #$2300

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.Phase() == cpu.Halted, true)
	test.Equate(t, mc.SR.InterruptMask, 3)

	// a stopped core is inert: ticks change nothing
	before := mc.String()
	for i := 0; i < 50; i++ {
		test.ExpectedSuccess(t, mc.Tick() == nil)
	}
	test.Equate(t, mc.String(), before)

	// a level at or below the mask does not wake it
	mc.SetIPL(2)
	for i := 0; i < 10; i++ {
		test.ExpectedSuccess(t, mc.Tick() == nil)
	}
	test.Equate(t, mc.Phase() == cpu.Halted, true)

	mc.SetIPL(5)
	test.Equate(t, step(t, mc), 44)
	test.Equate(t, mc.PC, 0x6000)
	test.Equate(t, mc.SR.InterruptMask, 5)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1004)
}

func TestInterruptAtBoundary(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, (24+3)*4, 0x00006000)
	pokeWords(mem, 0x1000, 0x46fc, 0x2000) // MOVE #$2000,SR (unmask)
	pokeWords(mem, 0x1004, 0x4e71)         // NOP

	test.Equate(t, step(t, mc), 16)

	mc.SetIPL(3)
	test.Equate(t, step(t, mc), 44)
	test.Equate(t, mc.PC, 0x6000)
	test.Equate(t, mc.SR.InterruptMask, 3)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1004)

	// the same level does not interrupt again while masked
	pokeWords(mem, 0x6000, 0x4e71)
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.PC, 0x6002)
}

func TestLevelSevenIsEdgeTriggered(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, (24+7)*4, 0x00007000)
	pokeWords(mem, 0x1000, 0x4e71, 0x4e71, 0x4e71)
	pokeWords(mem, 0x7000, 0x4e71)

	// mask is 7 after reset but the edge still gets through
	mc.SetIPL(7)
	test.Equate(t, step(t, mc), 44)
	test.Equate(t, mc.PC, 0x7000)

	// the level is still asserted but there is no new edge
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.PC, 0x7002)
}

func TestBusErrorException(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, 2*4, 0x00007000)
	mem.AddFaultRegion(0x8000, 0x80ff)
	pokeWords(mem, 0x1000, 0x3038, 0x8000) // MOVE.W $8000.W,D0

	test.Equate(t, step(t, mc), 58)
	test.Equate(t, mc.PC, 0x7000)
	test.Equate(t, mc.SR.Supervisor, true)

	// the group 0 frame carries the faulted address below the standard
	// frame
	test.Equate(t, peekLong(mem, 0xeff4), 0x8000)
}

func TestWaitStatesStallWithoutSideEffects(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.AddWaitRegion(0x2000, 0x2fff, 2)
	pokeWords(mem, 0x2000, 0x1234)
	pokeWords(mem, 0x1000, 0x3038, 0x2000) // MOVE.W $2000.W,D0
	pokeWords(mem, 0x1004, 0x31c0, 0x2000) // MOVE.W D0,$2000.W

	test.Equate(t, step(t, mc), 14)
	test.Equate(t, mc.D[0], 0x1234)

	mc.D[0] = 0x5678
	test.Equate(t, step(t, mc), 14)
	test.Equate(t, peekWord(mem, 0x2000), 0x5678)
}

func TestTraceException(t *testing.T) {
	mc, mem := newTestCPU(t)

	pokeLong(mem, 9*4, 0x00008000)
	pokeWords(mem, 0x1000, 0x46fc, 0xa700) // MOVE #$A700,SR (trace on)
	pokeWords(mem, 0x1004, 0x4e71)         // NOP

	// the instruction that sets T is not itself traced
	test.Equate(t, step(t, mc), 16)
	test.Equate(t, mc.PC, 0x1004)

	test.Equate(t, step(t, mc), 34)
	test.Equate(t, mc.PC, 0x8000)
	test.Equate(t, peekLong(mem, 0xeffc), 0x1006)
	// trace is off inside the handler
	test.Equate(t, mc.SR.Trace, false)
}

func TestExchangeAndMoveq(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.D[0] = 0x1111
	mc.D[1] = 0x2222
	pokeWords(mem, 0x1000, 0xc141) // EXG D0,D1
	pokeWords(mem, 0x1002, 0x7481) // MOVEQ #-127,D2

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.D[0], 0x2222)
	test.Equate(t, mc.D[1], 0x1111)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.D[2], 0xffffff81)
	test.Equate(t, mc.SR.Negative, true)
}

func TestCompareMemory(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.A[0] = 0x3000
	mc.A[1] = 0x3100
	pokeWords(mem, 0x3000, 0x1234)
	pokeWords(mem, 0x3100, 0x1234)
	pokeWords(mem, 0x1000, 0xb348) // CMPM.W (A0)+,(A1)+

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.SR.Zero, true)
	test.Equate(t, mc.A[0], 0x3002)
	test.Equate(t, mc.A[1], 0x3102)
}

func TestLoadEffectiveAddress(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.A[0] = 0x3000
	pokeWords(mem, 0x1000, 0x43e8, 0x0010) // LEA 16(A0),A1
	pokeWords(mem, 0x1004, 0x4850)         // PEA (A0)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.A[1], 0x3010)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, peekLong(mem, 0xeffc), 0x3000)
}

// every opcode word must decode and complete: to an instruction boundary,
// or to the stopped state. The scratch hygiene check panics on any
// instruction that leaks state across its boundary.
func TestAllOpcodesComplete(t *testing.T) {
	mem := memory.NewMemory(0x100000)

	mc, err := m68k.NewCPU(mem)
	if err != nil {
		t.Fatal(err)
	}
	mc.StrictScratch = true

	for opcode := 0; opcode <= 0xffff; opcode++ {
		pokeLong(mem, 0, 0x0000f000)
		pokeLong(mem, 4, 0x00001000)
		pokeWords(mem, 0x1000, uint16(opcode), 0, 0, 0, 0, 0)

		mc.Reset()

		ticks := 0
		boundaries := 0
		for {
			if err := mc.Tick(); err != nil {
				t.Fatalf("opcode %#04x: %v", opcode, err)
			}
			ticks++
			if mc.Phase() == cpu.Halted {
				break
			}
			if mc.InstructionBoundary() {
				boundaries++
				// the first boundary is the end of the reset sequence
				if boundaries == 2 {
					break
				}
			}
			if ticks > 600 {
				t.Fatalf("opcode %#04x did not complete", opcode)
			}
		}
	}
}
