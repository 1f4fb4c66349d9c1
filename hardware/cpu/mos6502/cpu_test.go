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

package mos6502_test

import (
	"testing"

	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502"
	"github.com/clockwork-emu/clockwork/hardware/memory"
	"github.com/clockwork-emu/clockwork/test"
)

func newTestCPU(t *testing.T) (*mos6502.CPU, *memory.Memory) {
	t.Helper()

	mem := memory.NewMemory(0x10000)
	mc, err := mos6502.NewCPU(mem)
	if err != nil {
		t.Fatal(err)
	}

	mc.StrictScratch = true
	mc.PC.Load(0x1000)
	mc.SP.Load(0xff)

	return mc, mem
}

// step ticks the core to the next instruction boundary, validating the
// execution result on arrival. Returns the number of ticks taken.
func step(t *testing.T, mc *mos6502.CPU) int {
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
		if ticks > 100 {
			t.Fatal("instruction did not complete")
		}
	}

	if err := mc.LastResult.IsValid(); err != nil {
		t.Fatal(err)
	}

	return ticks
}

func TestImpliedAndImmediate(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xea,       // NOP
		0xa9, 0x80, // LDA #$80
		0xaa,       // TAX
		0xe8,       // INX
		0xa0, 0x00, // LDY #$00
	)

	test.Equate(t, step(t, mc), 2)

	test.Equate(t, step(t, mc), 2)
	test.Equate(t, mc.A.Value(), 0x80)
	test.Equate(t, mc.Status.Sign, true)
	test.Equate(t, mc.Status.Zero, false)

	step(t, mc)
	test.Equate(t, mc.X.Value(), 0x80)

	step(t, mc)
	test.Equate(t, mc.X.Value(), 0x81)

	step(t, mc)
	test.Equate(t, mc.Y.Value(), 0x00)
	test.Equate(t, mc.Status.Zero, true)
}

func TestZeroPageAndAbsolute(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x0080, 0x17)
	mem.Poke(0x1234, 0x42)

	mem.PokeBytes(0x1000,
		0xa5, 0x80, // LDA $80
		0xad, 0x34, 0x12, // LDA $1234
		0x8d, 0x00, 0x20, // STA $2000
	)

	test.Equate(t, step(t, mc), 3)
	test.Equate(t, mc.A.Value(), 0x17)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.A.Value(), 0x42)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mem.Peek(0x2000), 0x42)
}

func TestPageFault(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x2100, 0x55)
	mem.Poke(0x20f0, 0x66)

	mem.PokeBytes(0x1000,
		0xa2, 0x10, // LDX #$10
		0xbd, 0xf0, 0x20, // LDA $20f0,X  (crosses into $2100)
		0xbd, 0xe0, 0x20, // LDA $20e0,X  (no cross)
	)

	step(t, mc)

	test.Equate(t, step(t, mc), 5)
	test.Equate(t, mc.A.Value(), 0x55)
	test.Equate(t, mc.LastResult.PageFault, true)

	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.A.Value(), 0x66)
	test.Equate(t, mc.LastResult.PageFault, false)
}

func TestIndexedIndirect(t *testing.T) {
	mc, mem := newTestCPU(t)

	// (ind,X) pointer at $24/$25 once X=$04 is added to $20
	mem.Poke(0x0024, 0x00)
	mem.Poke(0x0025, 0x30)
	mem.Poke(0x3000, 0x99)

	// (ind),Y pointer at $40/$41
	mem.Poke(0x0040, 0xf8)
	mem.Poke(0x0041, 0x30)
	mem.Poke(0x3102, 0x77)

	mem.PokeBytes(0x1000,
		0xa2, 0x04, // LDX #$04
		0xa1, 0x20, // LDA ($20,X)
		0xa0, 0x0a, // LDY #$0a
		0xb1, 0x40, // LDA ($40),Y  (crosses: $30f8+$0a)
	)

	step(t, mc)
	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.A.Value(), 0x99)

	step(t, mc)
	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.A.Value(), 0x77)
	test.Equate(t, mc.LastResult.PageFault, true)
}

func TestBranches(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xa9, 0x01, // LDA #$01
		0xd0, 0x02, // BNE +2 (taken, no cross)
		0xea,       // NOP (skipped)
		0xea,       // NOP (skipped)
		0xf0, 0x02, // BEQ +2 (not taken)
	)

	step(t, mc)

	test.Equate(t, step(t, mc), 3)
	test.Equate(t, mc.PC.Address(), 0x1006)

	test.Equate(t, step(t, mc), 2)
	test.Equate(t, mc.PC.Address(), 0x1008)
}

func TestBranchPageCross(t *testing.T) {
	mc, mem := newTestCPU(t)

	mc.PC.Load(0x10f0)
	mem.PokeBytes(0x10f0,
		0x18,       // CLC
		0x90, 0x7f, // BCC +127 (crosses into $1172)
	)

	step(t, mc)
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.PC.Address(), 0x1172)
}

func TestRMW(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x0080, 0x7f)
	mem.Poke(0x2000, 0xff)

	mem.PokeBytes(0x1000,
		0xe6, 0x80, // INC $80
		0xee, 0x00, 0x20, // INC $2000
		0x0e, 0x00, 0x20, // ASL $2000
	)

	test.Equate(t, step(t, mc), 5)
	test.Equate(t, mem.Peek(0x0080), 0x80)
	test.Equate(t, mc.Status.Sign, true)

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mem.Peek(0x2000), 0x00)
	test.Equate(t, mc.Status.Zero, true)

	mem.Poke(0x2000, 0x81)
	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mem.Peek(0x2000), 0x02)
	test.Equate(t, mc.Status.Carry, true)
}

func TestArithmetic(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x18,       // CLC
		0xa9, 0x50, // LDA #$50
		0x69, 0x50, // ADC #$50 (signed overflow)
		0x38,       // SEC
		0xa9, 0x10, // LDA #$10
		0xe9, 0x20, // SBC #$20 (borrow)
	)

	step(t, mc)
	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.A.Value(), 0xa0)
	test.Equate(t, mc.Status.Overflow, true)
	test.Equate(t, mc.Status.Carry, false)

	step(t, mc)
	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.A.Value(), 0xf0)
	test.Equate(t, mc.Status.Carry, false)
	test.Equate(t, mc.Status.Sign, true)
}

func TestDecimalMode(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xf8,       // SED
		0x18,       // CLC
		0xa9, 0x19, // LDA #$19
		0x69, 0x03, // ADC #$03
		0x69, 0x78, // ADC #$78 (0x22 + 0x78 = 0x00 carry)
	)

	step(t, mc)
	step(t, mc)
	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.A.Value(), 0x22)
	test.Equate(t, mc.Status.Carry, false)

	step(t, mc)
	test.Equate(t, mc.A.Value(), 0x00)
	test.Equate(t, mc.Status.Carry, true)
}

func TestSubroutines(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0x20, 0x00, 0x20, // JSR $2000
		0xea, // NOP (return point)
	)
	mem.PokeBytes(0x2000,
		0x60, // RTS
	)

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.PC.Address(), 0x2000)
	test.Equate(t, mc.SP.Value(), 0xfd)

	// JSR pushes the address of its final byte
	test.Equate(t, mem.Peek(0x01ff), 0x10)
	test.Equate(t, mem.Peek(0x01fe), 0x02)

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.PC.Address(), 0x1003)
	test.Equate(t, mc.SP.Value(), 0xff)
}

func TestJmpIndirectBug(t *testing.T) {
	mc, mem := newTestCPU(t)

	// pointer straddling a page boundary: the high byte is read from the
	// start of the same page, not the next one
	mem.Poke(0x30ff, 0x00)
	mem.Poke(0x3100, 0x40) // the byte a corrected address would read
	mem.Poke(0x3000, 0x50) // the byte actually read

	mem.PokeBytes(0x1000,
		0x6c, 0xff, 0x30, // JMP ($30ff)
	)

	test.Equate(t, step(t, mc), 5)
	test.Equate(t, mc.PC.Address(), 0x5000)
}

// the service-routine pointer used by a BRK must be a function of the
// interrupt source alone. in particular the absolute operand of a preceding
// load must have no bearing on it.
func TestBRKVectorIndependence(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x1234, 0x42)
	mem.Poke(0xfffe, 0x00)
	mem.Poke(0xffff, 0x80)

	mem.PokeBytes(0x1000,
		0xad, 0x34, 0x12, // LDA $1234
		0x00, // BRK
	)

	step(t, mc)
	test.Equate(t, mc.A.Value(), 0x42)

	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.PC.Address(), 0x8000)
	test.Equate(t, mc.Status.InterruptDisable, true)

	// BRK pushes the address of its opcode plus two, and the status byte
	// with the break flag set
	test.Equate(t, mem.Peek(0x01ff), 0x10)
	test.Equate(t, mem.Peek(0x01fe), 0x05)
	test.Equate(t, mem.Peek(0x01fd)&0x10, 0x10)
}

func TestIRQ(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0xfffe, 0x00)
	mem.Poke(0xffff, 0x90)

	mem.PokeBytes(0x1000,
		0xea, // NOP
		0x58, // CLI
		0xea, // NOP (never reached: the boundary before it services the IRQ)
	)

	mc.Status.InterruptDisable = true
	mc.SetIRQ(true)

	// with the interrupt disable flag set the line is ignored
	step(t, mc)
	test.Equate(t, mc.PC.Address(), 0x1001)

	step(t, mc)

	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.PC.Address(), 0x9000)
	test.Equate(t, mc.Status.InterruptDisable, true)

	// the pushed status byte has the break flag clear
	test.Equate(t, mem.Peek(0x01fd)&0x10, 0x00)
}

func TestNMIEdge(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0xfffa, 0x00)
	mem.Poke(0xfffb, 0xa0)

	mem.PokeBytes(0x1000,
		0xea, // NOP
		0xea, // NOP
	)

	step(t, mc)
	mc.SetNMI(true)

	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.PC.Address(), 0xa000)

	// the line is still asserted but the edge has been consumed: no second
	// service entry
	mem.Poke(0xa000, 0xea)
	step(t, mc)
	test.Equate(t, mc.PC.Address(), 0xa001)
}

func TestKILHalts(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0xfffc, 0x00)
	mem.Poke(0xfffd, 0x20)

	mem.PokeBytes(0x1000,
		0x02, // KIL
	)

	for i := 0; i < 2; i++ {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	test.Equate(t, mc.Phase().String(), "halted")

	// ticks in the halted phase do nothing
	pc := mc.PC.Address()
	for i := 0; i < 10; i++ {
		if err := mc.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	test.Equate(t, mc.PC.Address(), pc)

	// reset is the only way out
	mc.Reset()
	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.PC.Address(), 0x2000)
	test.Equate(t, mc.SP.Value(), 0xfd)
	test.Equate(t, mc.Status.InterruptDisable, true)
}

func TestWaitStates(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x1234, 0x42)
	mem.AddWaitRegion(0x1234, 0x1234, 2)

	mem.PokeBytes(0x1000,
		0xad, 0x34, 0x12, // LDA $1234
	)

	// the instruction occupies six ticks: four cycles of work and two ticks
	// stalled on the bus. only the four count as instruction cycles
	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.A.Value(), 0x42)
	test.Equate(t, mc.LastResult.Cycles, 4)
}

func TestUndocumented(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.Poke(0x0080, 0x41)

	mem.PokeBytes(0x1000,
		0xa7, 0x80, // LAX $80
		0x07, 0x80, // SLO $80
		0x0b, 0xff, // ANC #$ff
	)

	test.Equate(t, step(t, mc), 3)
	test.Equate(t, mc.A.Value(), 0x41)
	test.Equate(t, mc.X.Value(), 0x41)

	test.Equate(t, step(t, mc), 5)
	test.Equate(t, mem.Peek(0x0080), 0x82)
	test.Equate(t, mc.A.Value(), 0xc3)

	test.Equate(t, step(t, mc), 2)
	test.Equate(t, mc.A.Value(), 0xc3)
	test.Equate(t, mc.Status.Carry, true)
	test.Equate(t, mc.Status.Sign, true)
}

func TestPhases(t *testing.T) {
	mc, mem := newTestCPU(t)

	mem.PokeBytes(0x1000,
		0xa9, 0x01, // LDA #$01
	)

	test.Equate(t, mc.Phase().String(), "fetch")
	test.Equate(t, mc.InstructionBoundary(), true)

	if err := mc.Tick(); err != nil {
		t.Fatal(err)
	}
	test.Equate(t, mc.Phase().String(), "execute")
	test.Equate(t, mc.InstructionBoundary(), false)

	if err := mc.Tick(); err != nil {
		t.Fatal(err)
	}
	test.Equate(t, mc.Phase() == cpu.Fetch, true)
	test.Equate(t, mc.InstructionBoundary(), true)
}

// every opcode, documented or not, must run to an instruction boundary with
// a clear scratch state and a cycle count matching its definition. KIL is
// the exception: it never reaches a boundary.
func TestAllOpcodesComplete(t *testing.T) {
	for op := 0; op < 256; op++ {
		mc, mem := newTestCPU(t)

		mem.Poke(uint32(0x1000), uint8(op))
		// plausible operand bytes and a populated zero page
		mem.Poke(0x1001, 0x80)
		mem.Poke(0x1002, 0x00)
		for a := uint32(0); a < 0x100; a++ {
			mem.Poke(a, uint8(a))
		}

		halting := false
		switch uint8(op) {
		case 0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xb2, 0xd2, 0xf2:
			halting = true
		}

		ticks := 0
		for {
			if err := mc.Tick(); err != nil {
				t.Fatalf("opcode %#02x: %v", op, err)
			}
			ticks++
			if mc.InstructionBoundary() || mc.Phase() == cpu.Halted {
				break
			}
			if ticks > 20 {
				t.Fatalf("opcode %#02x did not complete", op)
			}
		}

		if halting {
			test.Equate(t, mc.Phase() == cpu.Halted, true)
			continue
		}

		if err := mc.LastResult.IsValid(); err != nil {
			t.Fatalf("opcode %#02x: %v", op, err)
		}
	}
}
