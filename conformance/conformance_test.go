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

package conformance_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clockwork-emu/clockwork/conformance"
	"github.com/clockwork-emu/clockwork/curated"
)

const ldaFixtureJSON = `{
	"version": 1,
	"arch": "6502",
	"name": "lda immediate",
	"initial_state": {
		"registers": {"pc": 512, "sp": 255}
	},
	"opcode_bytes": [169, 1],
	"final_state": {
		"registers": {"a": 1, "pc": 514}
	},
	"bus_cycle_log": [
		{"address": 512, "width": "b", "dir": "R"},
		{"address": 513, "width": "b", "dir": "R"}
	]
}`

var _ = Describe("fixture format", func() {
	It("loads a version 1 fixture from JSON", func() {
		f, err := conformance.Load([]byte(ldaFixtureJSON))
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Name).To(Equal("lda immediate"))
		Expect(f.Opcode).To(Equal([]uint8{0xa9, 0x01}))
		Expect(f.BusLog).To(HaveLen(2))
	})

	It("rejects a fixture from an unknown version", func() {
		_, err := conformance.Load([]byte(`{"version": 2, "arch": "6502"}`))
		Expect(err).To(HaveOccurred())
		Expect(curated.Is(err, conformance.UnsupportedVersion)).To(BeTrue())
	})

	It("rejects an unknown architecture", func() {
		err := conformance.Run(conformance.Fixture{
			Version: 1,
			Arch:    "pdp11",
			Initial: conformance.State{Registers: map[string]uint32{"pc": 0}},
		})
		Expect(err).To(HaveOccurred())
		Expect(curated.Is(err, conformance.UnknownArch)).To(BeTrue())
	})
})

var _ = Describe("6502 vectors", func() {
	It("replays a loaded JSON fixture", func() {
		f, err := conformance.Load([]byte(ldaFixtureJSON))
		Expect(err).NotTo(HaveOccurred())
		Expect(conformance.Run(f)).To(Succeed())
	})

	It("checks the write cycle of a store", func() {
		Expect(conformance.Run(conformance.Fixture{
			Version: 1,
			Arch:    "6502",
			Name:    "sta absolute",
			Initial: conformance.State{
				Registers: map[string]uint32{"pc": 0x0200, "sp": 0xff, "a": 0x55},
			},
			Opcode: []uint8{0x8d, 0x00, 0x20},
			Final: conformance.State{
				Registers: map[string]uint32{"a": 0x55, "pc": 0x0203},
				RAM:       []conformance.RAMCell{{Address: 0x2000, Value: 0x55}},
			},
			BusLog: []conformance.BusCycle{
				{Address: 0x0200, Width: "b", Dir: "R"},
				{Address: 0x0201, Width: "b", Dir: "R"},
				{Address: 0x0202, Width: "b", Dir: "R"},
				{Address: 0x2000, Width: "b", Dir: "W"},
			},
		})).To(Succeed())
	})

	It("reports a diverging bus log", func() {
		f, err := conformance.Load([]byte(ldaFixtureJSON))
		Expect(err).NotTo(HaveOccurred())
		f.BusLog = f.BusLog[:1]
		err = conformance.Run(f)
		Expect(err).To(HaveOccurred())
		Expect(curated.Is(err, conformance.BusLogLength)).To(BeTrue())
	})

	It("reports a diverging final state", func() {
		f, err := conformance.Load([]byte(ldaFixtureJSON))
		Expect(err).NotTo(HaveOccurred())
		f.Final.Registers["a"] = 2
		err = conformance.Run(f)
		Expect(err).To(HaveOccurred())
		Expect(curated.Is(err, conformance.StateMismatch)).To(BeTrue())
	})
})

var _ = Describe("Z80 vectors", func() {
	It("replays an immediate load", func() {
		Expect(conformance.Run(conformance.Fixture{
			Version: 1,
			Arch:    "z80",
			Name:    "ld a,n",
			Initial: conformance.State{
				Registers: map[string]uint32{"pc": 0x0100, "sp": 0xfffe},
			},
			Opcode: []uint8{0x3e, 0x42},
			Final: conformance.State{
				Registers: map[string]uint32{"a": 0x42, "pc": 0x0102},
			},
			BusLog: []conformance.BusCycle{
				{Address: 0x0100, Width: "b", Dir: "R"},
				{Address: 0x0101, Width: "b", Dir: "R"},
			},
		})).To(Succeed())
	})

	It("replays a memory cycle through a register pair", func() {
		Expect(conformance.Run(conformance.Fixture{
			Version: 1,
			Arch:    "z80",
			Name:    "ld (hl),a",
			Initial: conformance.State{
				Registers: map[string]uint32{
					"pc": 0x0100, "a": 0x99, "h": 0x40, "l": 0x00,
				},
			},
			Opcode: []uint8{0x77},
			Final: conformance.State{
				Registers: map[string]uint32{"pc": 0x0101},
				RAM:       []conformance.RAMCell{{Address: 0x4000, Value: 0x99}},
			},
			BusLog: []conformance.BusCycle{
				{Address: 0x0100, Width: "b", Dir: "R"},
				{Address: 0x4000, Width: "b", Dir: "W"},
			},
		})).To(Succeed())
	})
})

var _ = Describe("68000 vectors", func() {
	It("replays a word store with its exact bus cycles", func() {
		Expect(conformance.Run(conformance.Fixture{
			Version: 1,
			Arch:    "68000",
			Name:    "move.w d0 to absolute",
			Initial: conformance.State{
				Registers: map[string]uint32{
					"pc": 0x1000, "ssp": 0x8000, "d0": 0x1234,
				},
			},
			Opcode: []uint8{0x31, 0xc0, 0x20, 0x00},
			Final: conformance.State{
				Registers: map[string]uint32{"pc": 0x1004, "d0": 0x1234},
				RAM: []conformance.RAMCell{
					{Address: 0x2000, Value: 0x12},
					{Address: 0x2001, Value: 0x34},
				},
			},
			BusLog: []conformance.BusCycle{
				{Address: 0x1000, Width: "w", Dir: "R"},
				{Address: 0x1002, Width: "w", Dir: "R"},
				{Address: 0x2000, Width: "w", Dir: "W"},
			},
		})).To(Succeed())
	})

	It("replays a long immediate as word-sized bus cycles", func() {
		Expect(conformance.Run(conformance.Fixture{
			Version: 1,
			Arch:    "68000",
			Name:    "eori.l immediate",
			Initial: conformance.State{
				Registers: map[string]uint32{
					"pc": 0x1000, "ssp": 0x8000, "d5": 0x5555aaaa,
				},
			},
			Opcode: []uint8{0x0a, 0x85, 0xff, 0xff, 0xff, 0xff},
			Final: conformance.State{
				Registers: map[string]uint32{"pc": 0x1006, "d5": 0xaaaa5555},
			},
			BusLog: []conformance.BusCycle{
				{Address: 0x1000, Width: "w", Dir: "R"},
				{Address: 0x1002, Width: "w", Dir: "R"},
				{Address: 0x1004, Width: "w", Dir: "R"},
			},
		})).To(Succeed())
	})
})
