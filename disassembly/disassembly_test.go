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

package disassembly_test

import (
	"testing"

	"github.com/clockwork-emu/clockwork/disassembly"
	"github.com/clockwork-emu/clockwork/hardware/memory"
	"github.com/clockwork-emu/clockwork/test"
)

func equateWindow(t *testing.T, entries []disassembly.Entry, expected []string) {
	t.Helper()

	test.Equate(t, len(entries), len(expected))
	for i := range entries {
		op := entries[i].Operator
		if entries[i].Operand != "" {
			op += " " + entries[i].Operand
		}
		test.Equate(t, op, expected[i])
	}
}

func TestMOS6502Window(t *testing.T) {
	mem := memory.NewMemory(0x10000)
	mem.PokeBytes(0x1000,
		0xa9, 0x01, // LDA #$01
		0x8d, 0x00, 0x20, // STA $2000
		0xd0, 0xf9, // BNE back to $1000
		0xb1, 0x80, // LDA ($80),Y
		0x4c, 0x34, 0x12, // JMP $1234
		0x02, // KIL
	)

	entries, err := disassembly.MOS6502(mem, 0x1000, 6)
	if err != nil {
		t.Fatal(err)
	}

	equateWindow(t, entries, []string{
		"LDA #$01",
		"STA $2000",
		"BNE $1000",
		"LDA ($80),Y",
		"JMP $1234",
		"KIL",
	})

	test.Equate(t, entries[1].Address, 0x1002)
	test.Equate(t, entries[1].Next(), 0x1005)
	test.Equate(t, len(entries[1].Bytes), 3)
}

func TestZ80Window(t *testing.T) {
	mem := memory.NewMemory(0x10000)
	mem.PokeBytes(0x0100,
		0x3e, 0x42, // LD A,$42
		0x01, 0x34, 0x12, // LD BC,$1234
		0x18, 0xf9, // JR back to $0100
		0xcb, 0x47, // BIT 0,A
		0xdd, 0x86, 0x05, // ADD A,(IX+$05)
		0xdd, 0xcb, 0xfe, 0x06, // RLC (IX-$02)
		0xed, 0xb0, // LDIR
		0x76, // HALT
	)

	entries, err := disassembly.Z80(mem, 0x0100, 8)
	if err != nil {
		t.Fatal(err)
	}

	equateWindow(t, entries, []string{
		"LD A,$42",
		"LD BC,$1234",
		"JR $0100",
		"BIT 0,A",
		"ADD A,(IX+$05)",
		"RLC (IX-$02)",
		"LDIR",
		"HALT",
	})

	test.Equate(t, len(entries[5].Bytes), 4)
	test.Equate(t, entries[7].Address, 0x0112)
}

func TestZ80UndocumentedForms(t *testing.T) {
	mem := memory.NewMemory(0x10000)
	mem.PokeBytes(0x0000,
		0xdd, 0x26, 0x10, // LD IXH,$10
		0xed, 0x71, // OUT (C),0
		0xcb, 0x31, // SLL C
		0xfd, 0xcb, 0x02, 0x01, // RLC (IY+$02),C
	)

	entries, err := disassembly.Z80(mem, 0x0000, 4)
	if err != nil {
		t.Fatal(err)
	}

	equateWindow(t, entries, []string{
		"LD IXH,$10",
		"OUT (C),0",
		"SLL C",
		"RLC (IY+$02),C",
	})
}

func TestM68KWindow(t *testing.T) {
	mem := memory.NewMemory(0x10000)
	mem.PokeBytes(0x1000,
		0x4e, 0xf9, 0x00, 0x00, 0x20, 0x00, // JMP $00002000.L
		0x0c, 0x42, 0x56, 0x78, // CMPI.W #$5678,D2
		0x0a, 0x85, 0xff, 0xff, 0xff, 0xff, // EORI.L #$FFFFFFFF,D5
		0x30, 0x28, 0x00, 0x06, // MOVE.W $0006(A0),D0
		0x4e, 0x72, 0x27, 0x00, // STOP #$2700
		0x51, 0xc8, 0xff, 0xfe, // DBF D0,self
		0xe5, 0x48, // LSL.W #2,D0
	)

	entries, err := disassembly.M68K(mem, 0x1000, 7)
	if err != nil {
		t.Fatal(err)
	}

	equateWindow(t, entries, []string{
		"JMP $00002000.L",
		"CMPI.W #$5678,D2",
		"EORI.L #$ffffffff,D5",
		"MOVE.W $0006(A0),D0",
		"STOP #$2700",
		"DBF D0,$00001018",
		"LSL.W #2,D0",
	})

	test.Equate(t, entries[1].Address, 0x1006)
	test.Equate(t, len(entries[0].Bytes), 6)
}

func TestM68KUnclaimedIsData(t *testing.T) {
	mem := memory.NewMemory(0x10000)
	mem.PokeBytes(0x0000,
		0xa1, 0x23, // line A
		0x4a, 0xfa, // unclaimed group 4 encoding
	)

	entries, err := disassembly.M68K(mem, 0x0000, 2)
	if err != nil {
		t.Fatal(err)
	}

	equateWindow(t, entries, []string{
		"DC.W $a123",
		"DC.W $4afa",
	})
}
