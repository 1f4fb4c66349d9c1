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

package z80_test

import (
	"testing"

	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/cpu/z80"
	"github.com/clockwork-emu/clockwork/hardware/memory"
	"github.com/clockwork-emu/clockwork/test"
)

func newTestCPU(t *testing.T) (*z80.CPU, *memory.Memory) {
	t.Helper()

	mem := memory.NewMemory(0x10000)
	mc, err := z80.NewCPU(mem, nil)
	if err != nil {
		t.Fatal(err)
	}

	mc.StrictScratch = true
	mc.PC = 0x1000
	mc.SP = 0xf000

	return mc, mem
}

// step ticks the core to the next instruction boundary. Returns the number
// of T-states taken.
func step(t *testing.T, mc *z80.CPU) int {
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
		if ticks > 200 {
			t.Fatal("instruction did not complete")
		}
	}

	return ticks
}

func TestRegisterInstructions(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x3e, 0x80, // LD A,80h
		0x47,       // LD B,A
		0x3c,       // INC A
		0x80,       // ADD A,B
		0xee, 0xff, // XOR FFh
	)

	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.A, 0x80)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.B, 0x80)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.A, 0x81)
	test.Equate(t, mc.F.Sign, true)

	// 81h + 80h overflows and carries
	step(t, mc)
	test.Equate(t, mc.A, 0x01)
	test.Equate(t, mc.F.Carry, true)
	test.Equate(t, mc.F.ParityOverflow, true)

	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.A, 0xfe)
	test.Equate(t, mc.F.Carry, false)
}

func TestMemoryAccess(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x21, 0x00, 0x20, // LD HL,2000h
		0x36, 0x42, // LD (HL),42h
		0x7e,             // LD A,(HL)
		0x32, 0x34, 0x12, // LD (1234h),A
		0x2a, 0x34, 0x12, // LD HL,(1234h)
	)
	mem.Poke(0x1235, 0x99)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mem.Peek(0x2000), 0x42)

	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.A, 0x42)

	test.Equate(t, step(t, mc), 13)
	test.Equate(t, mem.Peek(0x1234), 0x42)

	test.Equate(t, step(t, mc), 16)
	test.Equate(t, mc.L, 0x42)
	test.Equate(t, mc.H, 0x99)
}

func TestIndexedAddressing(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xdd, 0x21, 0x00, 0x20, // LD IX,2000h
		0xdd, 0x36, 0x05, 0x17, // LD (IX+5),17h
		0xdd, 0x7e, 0x05, // LD A,(IX+5)
		0xdd, 0x34, 0x05, // INC (IX+5)
		0xfd, 0x21, 0x10, 0x20, // LD IY,2010h
		0xfd, 0x7e, 0xfb, // LD A,(IY-5)
		0xdd, 0x26, 0x31, // LD IXH,31h (undocumented)
	)

	test.Equate(t, step(t, mc), 14)
	test.Equate(t, mc.IX, 0x2000)

	test.Equate(t, step(t, mc), 19)
	test.Equate(t, mem.Peek(0x2005), 0x17)

	test.Equate(t, step(t, mc), 19)
	test.Equate(t, mc.A, 0x17)

	test.Equate(t, step(t, mc), 23)
	test.Equate(t, mem.Peek(0x2005), 0x18)

	mem.Poke(0x200b, 0x77)
	step(t, mc)
	test.Equate(t, step(t, mc), 19)
	test.Equate(t, mc.A, 0x77)

	test.Equate(t, step(t, mc), 11)
	test.Equate(t, mc.IX, 0x3100)
}

func TestBitOperations(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x06, 0x81, // LD B,81h
		0xcb, 0x40, // BIT 0,B
		0xcb, 0x78, // BIT 7,B
		0xcb, 0x80, // RES 0,B
		0xcb, 0xf8, // SET 7,B
		0xcb, 0x20, // SLA B
	)

	step(t, mc)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.F.Zero, false)
	test.Equate(t, mc.F.HalfCarry, true)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.F.Sign, true)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.B, 0x80)

	step(t, mc)
	test.Equate(t, mc.B, 0x80)

	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.B, 0x00)
	test.Equate(t, mc.F.Carry, true)
	test.Equate(t, mc.F.Zero, true)
}

// the undocumented flag copies in the memory forms of BIT come from the
// high byte of the address register, routed through WZ. A bit-test of the
// same value through H and through IX must differ in X and Y when the
// address bytes differ.
func TestBitMemoryUndocumentedFlags(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x2a00, 0x10)
	mem.PokeBytes(0x1000,
		0x21, 0x00, 0x2a, // LD HL,2A00h
		0xcb, 0x66, // BIT 4,(HL)
	)

	step(t, mc)
	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.F.Zero, false)

	// H = 2Ah = 00101010b: bit 5 and bit 3 both set
	test.Equate(t, mc.F.Y, true)
	test.Equate(t, mc.F.X, true)
	test.Equate(t, mc.WZ, 0x2a00)
}

func TestIndexedBitOperations(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x2005, 0x40)
	mem.PokeBytes(0x1000,
		0xdd, 0x21, 0x00, 0x20, // LD IX,2000h
		0xdd, 0xcb, 0x05, 0x76, // BIT 6,(IX+5)
		0xdd, 0xcb, 0x05, 0xc0, // SET 0,(IX+5),B (undocumented copy-back)
	)

	step(t, mc)

	test.Equate(t, step(t, mc), 20)
	test.Equate(t, mc.F.Zero, false)

	// flag copies from the high byte of IX+d
	test.Equate(t, mc.F.Y, true)
	test.Equate(t, mc.F.X, false)

	test.Equate(t, step(t, mc), 23)
	test.Equate(t, mem.Peek(0x2005), 0x41)
	test.Equate(t, mc.B, 0x41)
}

func TestShadowRegisters(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x3e, 0x11, // LD A,11h
		0x06, 0x22, // LD B,22h
		0x08,       // EX AF,AF'
		0xd9,       // EXX
		0x3e, 0x33, // LD A,33h
		0x06, 0x44, // LD B,44h
		0x08, // EX AF,AF'
		0xd9, // EXX
	)

	step(t, mc)
	step(t, mc)
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, step(t, mc), 4)
	step(t, mc)
	step(t, mc)
	step(t, mc)
	step(t, mc)

	test.Equate(t, mc.A, 0x11)
	test.Equate(t, mc.B, 0x22)
	test.Equate(t, mc.Alt.A, 0x33)
	test.Equate(t, mc.Alt.B, 0x44)
}

func TestJumpsAndCalls(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xc3, 0x10, 0x10, // JP 1010h
	)
	mem.PokeBytes(0x1010,
		0x18, 0x04, // JR +4 (to 1016h)
	)
	mem.PokeBytes(0x1016,
		0x28, 0x10, // JR Z,+16 (not taken)
		0xcd, 0x00, 0x20, // CALL 2000h
		0xc9, // RET (never reached in this test)
	)
	mem.PokeBytes(0x2000,
		0xc0, // RET NZ (not taken: Z is set below)
		0xc8, // RET Z (taken)
	)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.PC, 0x1010)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.PC, 0x1016)

	mc.F.Zero = false
	test.Equate(t, step(t, mc), 7)

	test.Equate(t, step(t, mc), 17)
	test.Equate(t, mc.PC, 0x2000)
	test.Equate(t, mc.SP, 0xeffe)
	test.Equate(t, mem.Peek(0xeffe), 0x1b) // low byte of return address
	test.Equate(t, mem.Peek(0xefff), 0x10)

	mc.F.Zero = true
	test.Equate(t, step(t, mc), 5)

	test.Equate(t, step(t, mc), 11)
	test.Equate(t, mc.PC, 0x101b)
	test.Equate(t, mc.SP, 0xf000)
}

func TestDJNZ(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x06, 0x03, // LD B,3
		0x10, 0xfe, // DJNZ -2 (to itself)
	)

	step(t, mc)

	test.Equate(t, step(t, mc), 13)
	test.Equate(t, mc.B, 0x02)
	test.Equate(t, mc.PC, 0x1002)

	test.Equate(t, step(t, mc), 13)
	test.Equate(t, step(t, mc), 8)
	test.Equate(t, mc.B, 0x00)
	test.Equate(t, mc.PC, 0x1004)
}

func TestStack(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x01, 0x34, 0x12, // LD BC,1234h
		0xc5,             // PUSH BC
		0xd1,             // POP DE
		0x21, 0xcd, 0xab, // LD HL,ABCDh
		0xe3, // EX (SP),HL
	)
	mem.PokeBytes(0xeffe, 0x78, 0x56)
	mc.SP = 0xeffe

	step(t, mc)

	test.Equate(t, step(t, mc), 11)
	test.Equate(t, mc.SP, 0xeffc)
	test.Equate(t, mem.Peek(0xeffc), 0x34)
	test.Equate(t, mem.Peek(0xeffd), 0x12)

	test.Equate(t, step(t, mc), 10)
	test.Equate(t, mc.D, 0x12)
	test.Equate(t, mc.E, 0x34)

	step(t, mc)

	test.Equate(t, step(t, mc), 19)
	test.Equate(t, mc.H, 0x56)
	test.Equate(t, mc.L, 0x78)
	test.Equate(t, mem.Peek(0xeffe), 0xcd)
	test.Equate(t, mem.Peek(0xefff), 0xab)
}

func TestDAA(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x3e, 0x19, // LD A,19h
		0xc6, 0x03, // ADD A,03h
		0x27,       // DAA
		0xc6, 0x78, // ADD A,78h
		0x27,       // DAA
		0xd6, 0x01, // SUB 01h
		0x27, // DAA
	)

	step(t, mc)
	step(t, mc)
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.A, 0x22)
	test.Equate(t, mc.F.Carry, false)

	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.A, 0x00)
	test.Equate(t, mc.F.Carry, true)
	test.Equate(t, mc.F.Zero, true)

	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.A, 0x99)
}

func TestSixteenBitArithmetic(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x21, 0xff, 0x0f, // LD HL,0FFFh
		0x01, 0x01, 0x00, // LD BC,0001h
		0x09,       // ADD HL,BC
		0xed, 0x4a, // ADC HL,BC
		0xed, 0x42, // SBC HL,BC
	)

	step(t, mc)
	step(t, mc)

	test.Equate(t, step(t, mc), 11)
	test.Equate(t, mc.H, 0x10)
	test.Equate(t, mc.L, 0x00)
	test.Equate(t, mc.F.HalfCarry, true)
	test.Equate(t, mc.F.Carry, false)

	test.Equate(t, step(t, mc), 15)
	test.Equate(t, mc.H, 0x10)
	test.Equate(t, mc.L, 0x01)
	test.Equate(t, mc.F.Zero, false)

	test.Equate(t, step(t, mc), 15)
	test.Equate(t, mc.H, 0x10)
	test.Equate(t, mc.L, 0x00)
	test.Equate(t, mc.F.Subtract, true)
}

func TestBlockTransfer(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x2000, 0xaa, 0xbb, 0xcc)
	mem.PokeBytes(0x1000,
		0x21, 0x00, 0x20, // LD HL,2000h
		0x11, 0x00, 0x30, // LD DE,3000h
		0x01, 0x03, 0x00, // LD BC,0003h
		0xed, 0xb0, // LDIR
	)

	step(t, mc)
	step(t, mc)
	step(t, mc)

	// two repeating iterations and a final one
	test.Equate(t, step(t, mc), 21)
	test.Equate(t, step(t, mc), 21)
	test.Equate(t, step(t, mc), 16)

	test.Equate(t, mem.Peek(0x3000), 0xaa)
	test.Equate(t, mem.Peek(0x3001), 0xbb)
	test.Equate(t, mem.Peek(0x3002), 0xcc)
	test.Equate(t, mc.B, 0x00)
	test.Equate(t, mc.C, 0x00)
	test.Equate(t, mc.F.ParityOverflow, false)
	test.Equate(t, mc.PC, 0x100b)
}

func TestHalt(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x3e, 0x55, // LD A,55h
		0x76, // HALT
	)
	mem.PokeBytes(0x0066,
		0xed, 0x45, // RETN
	)

	step(t, mc)

	for i := 0; i < 4; i++ {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	test.Equate(t, mc.Phase() == cpu.Halted, true)

	// the halted core does nothing to the register file, however long it
	// is left ticking
	before := mc.String()
	for i := 0; i < 50; i++ {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	test.Equate(t, mc.String(), before)
	test.Equate(t, mc.A, 0x55)

	// NMI wakes the core; the address pushed is the one after the HALT
	mc.SetNMI(true)
	ticks := 0
	for !mc.InstructionBoundary() {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
		ticks++
	}
	test.Equate(t, ticks, 11)
	test.Equate(t, mc.PC, 0x0066)
	test.Equate(t, mem.Peek(0xefff), 0x10)
	test.Equate(t, mem.Peek(0xeffe), 0x03)
}

func TestInterruptMode1(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xed, 0x56, // IM 1
		0xfb, // EI
		0x00, // NOP
		0x00, // NOP
	)

	test.Equate(t, step(t, mc), 8)

	mc.SetIRQ(true)

	// EI delays acceptance past the following instruction
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, step(t, mc), 4)

	// boundary after the delay slot: 13 T-state service entry to 0038h
	test.Equate(t, step(t, mc), 13)
	test.Equate(t, mc.PC, 0x0038)
	test.Equate(t, mc.IFF1, false)
	test.Equate(t, mem.Peek(0xefff), 0x10)
	test.Equate(t, mem.Peek(0xeffe), 0x04)
}

func TestInterruptMode2(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xed, 0x5e, // IM 2
		0x3e, 0x20, // LD A,20h
		0xed, 0x47, // LD I,A
		0xfb, // EI
		0x00, // NOP
		0x00, // NOP
	)
	mem.PokeBytes(0x2040, 0x00, 0x40) // vector table entry: 4000h

	step(t, mc)
	step(t, mc)
	test.Equate(t, step(t, mc), 9)
	step(t, mc)
	step(t, mc)

	mc.SetIRQ(true)
	mc.SetIRQData(0x40)

	test.Equate(t, step(t, mc), 19)
	test.Equate(t, mc.PC, 0x4000)
}

func TestNMIEdge(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x00, 0x00, 0x00, // NOP NOP NOP
	)

	step(t, mc)
	mc.SetNMI(true)

	test.Equate(t, step(t, mc), 11)
	test.Equate(t, mc.PC, 0x0066)

	// the line is still high but the edge has been consumed
	mem.Poke(0x0066, 0x00)
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.PC, 0x0067)
}

func TestRETNRestoresIFF(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xfb, // EI
		0x00, // NOP
	)
	mem.PokeBytes(0x0066,
		0xed, 0x45, // RETN
	)

	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.IFF1, true)

	mc.SetNMI(true)
	step(t, mc)
	test.Equate(t, mc.PC, 0x0066)
	test.Equate(t, mc.IFF1, false)
	test.Equate(t, mc.IFF2, true)

	test.Equate(t, step(t, mc), 14)
	test.Equate(t, mc.IFF1, true)
}

func TestIO(t *testing.T) {
	mem := memory.NewMemory(0x10000)
	ports := memory.NewMemory(0x100)

	mc, err := z80.NewCPU(mem, ports)
	if err != nil {
		t.Fatal(err)
	}
	mc.StrictScratch = true
	mc.PC = 0x1000
	mc.SP = 0xf000

	mem.PokeBytes(0x1000,
		0x3e, 0x5a, // LD A,5Ah
		0xd3, 0x10, // OUT (10h),A
		0x01, 0x20, 0x00, // LD BC,0020h
		0xed, 0x50, // IN D,(C)
	)
	ports.Poke(0x20, 0x9f)

	step(t, mc)

	test.Equate(t, step(t, mc), 11)
	test.Equate(t, ports.Peek(0x10), 0x5a)

	step(t, mc)

	test.Equate(t, step(t, mc), 12)
	test.Equate(t, mc.D, 0x9f)
	test.Equate(t, mc.F.Sign, true)
	test.Equate(t, mc.F.ParityOverflow, false)
}

func TestIOOpenBus(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xdb, 0x10, // IN A,(10h)
	)

	// no port bus attached: reads see open bus
	test.Equate(t, step(t, mc), 11)
	test.Equate(t, mc.A, 0xff)
}

func TestWaitStates(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x2000, 0x42)
	mem.AddWaitRegion(0x2000, 0x2fff, 2)

	mem.PokeBytes(0x1000,
		0x3a, 0x00, 0x20, // LD A,(2000h)
	)

	// two wait T-states on the operand read
	test.Equate(t, step(t, mc), 15)
	test.Equate(t, mc.A, 0x42)
}

func TestRefreshRegister(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x00,       // NOP
		0xdd, 0x00, // DD-prefixed NOP
		0xcb, 0x00, // RLC B
	)

	step(t, mc)
	test.Equate(t, mc.R, 0x01)

	// each prefix byte is its own M1 cycle
	step(t, mc)
	test.Equate(t, mc.R, 0x03)

	step(t, mc)
	test.Equate(t, mc.R, 0x05)
}

func TestPhases(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x3e, 0x01, // LD A,1
	)

	test.Equate(t, mc.Phase() == cpu.Fetch, true)

	for i := 0; i < 4; i++ {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	test.Equate(t, mc.Phase() == cpu.ExecuteStep, true)

	for i := 0; i < 3; i++ {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	test.Equate(t, mc.Phase() == cpu.Fetch, true)
	test.Equate(t, mc.InstructionBoundary(), true)
}

// every opcode in every decode table must reach the next instruction
// boundary with clear scratch state. StrictScratch turns hygiene failures
// into panics.
func TestAllOpcodesComplete(t *testing.T) {
	run := func(t *testing.T, prefix []uint8, opcode uint8) {
		mem := memory.NewMemory(0x10000)
		mc, err := z80.NewCPU(mem, nil)
		if err != nil {
			t.Fatal(err)
		}
		mc.StrictScratch = true
		mc.PC = 0x1000
		mc.SP = 0xf000

		// one iteration for the transfer and compare blocks; the IO blocks
		// count down through B and take the long way round
		mc.B = 0x00
		mc.C = 0x01

		program := append(append([]uint8{}, prefix...), opcode, 0x00, 0x00, 0x00)
		mem.PokeBytes(0x1000, program...)

		ticks := 0
		for {
			if err := mc.Tick(); err != nil {
				t.Fatalf("opcode % 02x %02x: %v", prefix, opcode, err)
			}
			ticks++
			if mc.InstructionBoundary() || mc.Phase() == cpu.Halted {
				break
			}
			if ticks > 6000 {
				t.Fatalf("opcode % 02x %02x did not complete", prefix, opcode)
			}
		}
	}

	for v := 0; v < 256; v++ {
		run(t, nil, uint8(v))
		run(t, []uint8{0xcb}, uint8(v))
		run(t, []uint8{0xed}, uint8(v))
		run(t, []uint8{0xdd}, uint8(v))
		run(t, []uint8{0xfd, 0xcb, 0x05}, uint8(v))
	}
}
