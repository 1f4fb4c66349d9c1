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
	"github.com/clockwork-emu/clockwork/hardware/bus"
	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/logger"
)

// Shadow is the alternate register set reached through EX AF,AF' and EXX.
type Shadow struct {
	A                uint8
	F                Flags
	B, C, D, E, H, L uint8
}

// CPU is the Z80 core.
type CPU struct {
	A                uint8
	F                Flags
	B, C, D, E, H, L uint8

	Alt Shadow

	IX, IY uint16
	SP, PC uint16

	// interrupt vector base and memory refresh registers
	I, R uint8

	// WZ is the internal address register (also known as MEMPTR). It is not
	// architecturally reachable but its high byte leaks into the
	// undocumented flags of BIT n,(HL), so it is modelled as part of the
	// register file rather than as scratch.
	WZ uint16

	IFF1, IFF2 bool
	IM         int

	mem bus.Bus

	// io is the port address space. a machine without one sees open-bus
	// reads of 0xff
	io bus.Bus

	// decode tables, built and validated at construction
	main [3][256]descriptor
	cb   [256]descriptor
	ddcb [3][256]descriptor
	ed   [256]descriptor

	// fixed plans for events that do not begin with an opcode fetch
	ddcbFetch [3]plan
	nmiPlan   plan
	irqPlan   [3]plan // indexed by interrupt mode

	scratch Scratch
	phase   cpu.Phase

	boundaryChecked bool

	irqLine    bool
	irqData    uint8
	nmiLine    bool
	nmiLatched bool

	// EI enables interrupts but acceptance is delayed until the boundary
	// after the next instruction
	eiPending bool

	// set by the HALT instruction, consumed at the instruction boundary
	haltPending bool

	// StrictScratch promotes dirty scratch state at a fetch boundary from a
	// logged-and-cleared event to a panic. The tests enable it.
	StrictScratch bool
}

// Scratch is the per-instruction working state of the core.
type Scratch struct {
	opcode uint8

	// prefix state: which register the HL positions address and which
	// decode table the next opcode byte selects from
	ctx indexContext
	sel tableSel

	// remaining T-states of the opcode fetch machine cycle in progress
	m1 int

	// effective address, operand assembly and data in flight
	address uint16
	lo      uint8
	value   uint8
	disp    int8

	active    plan
	cursor    int
	countdown int
}

// Clear returns the scratch state to its zero value.
func (s *Scratch) Clear() {
	*s = Scratch{}
}

// IsClear returns true if the scratch state is at its zero value.
func (s *Scratch) IsClear() bool {
	return s.opcode == 0 && s.ctx == ctxHL && s.sel == selMain && s.m1 == 0 &&
		s.address == 0 && s.lo == 0 && s.value == 0 && s.disp == 0 &&
		s.active == nil && s.cursor == 0 && s.countdown == 0
}

// tableSel names the decode table the next opcode byte belongs to.
type tableSel int

const (
	selMain tableSel = iota
	selCB
	selED
)

// NewCPU is the preferred method of initialisation for the CPU structure.
// The io argument is the port address space; nil is allowed and gives
// open-bus behaviour. Decode tables are built and checked for totality
// here.
func NewCPU(mem bus.Bus, io bus.Bus) (*CPU, error) {
	mc := &CPU{mem: mem, io: io}

	if err := mc.buildTables(); err != nil {
		return nil, err
	}

	mc.Reset()
	return mc, nil
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%04x AF=%04x BC=%04x DE=%04x HL=%04x IX=%04x IY=%04x SP=%04x F=%s",
		mc.PC, mc.getAF(), mc.getBC(), mc.getDE(), mc.getHL(), mc.IX, mc.IY, mc.SP, mc.F)
}

// Phase implements the cpu.CPU interface.
func (mc *CPU) Phase() cpu.Phase {
	return mc.phase
}

// InstructionBoundary implements the cpu.CPU interface.
func (mc *CPU) InstructionBoundary() bool {
	return mc.phase == cpu.Fetch && !mc.boundaryChecked
}

// Reset implements the cpu.CPU interface. The Z80 has no reset vector to
// fetch: the program counter is forced to zero and fetching resumes there.
func (mc *CPU) Reset() {
	mc.A = 0xff
	mc.F.FromValue(0xff)
	mc.B, mc.C, mc.D, mc.E, mc.H, mc.L = 0, 0, 0, 0, 0, 0
	mc.Alt = Shadow{}
	mc.IX = 0
	mc.IY = 0
	mc.SP = 0xffff
	mc.PC = 0
	mc.I = 0
	mc.R = 0
	mc.WZ = 0
	mc.IFF1 = false
	mc.IFF2 = false
	mc.IM = 0

	mc.irqData = 0xff
	mc.scratch.Clear()
	mc.boundaryChecked = false
	mc.nmiLatched = false
	mc.eiPending = false
	mc.haltPending = false
	mc.phase = cpu.Fetch
}

// SetIRQ sets the level of the maskable interrupt line.
func (mc *CPU) SetIRQ(assert bool) {
	mc.irqLine = assert
}

// SetIRQData sets the byte the interrupting device drives onto the data bus
// during the acknowledge cycle, used as the vector low byte in interrupt
// mode 2. Devices that drive nothing leave the open-bus value 0xff.
func (mc *CPU) SetIRQData(v uint8) {
	mc.irqData = v
}

// SetNMI sets the level of the non-maskable interrupt line. The service
// entry is triggered by the rising edge.
func (mc *CPU) SetNMI(assert bool) {
	if assert && !mc.nmiLine {
		mc.nmiLatched = true
	}
	mc.nmiLine = assert
}

// Tick implements the cpu.CPU interface. One call is one T-state.
func (mc *CPU) Tick() error {
	switch mc.phase {
	case cpu.Halted:
		// halted, not dead: the interrupt lines still wake the core. with
		// nothing pending a tick changes no register state
		if mc.sampleInterrupts() {
			return mc.executeTick()
		}
		return nil
	case cpu.Fetch:
		return mc.fetchTick()
	case cpu.ExecuteStep:
		return mc.executeTick()
	}
	return curated.Errorf("z80: tick in unexpected phase (%s)", mc.phase)
}

// sampleInterrupts honours a pending interrupt if one is accepted. Returns
// true if a service entry has begun.
func (mc *CPU) sampleInterrupts() bool {
	if mc.nmiLatched {
		mc.nmiLatched = false
		mc.IFF1 = false
		mc.scratch.active = mc.nmiPlan
		mc.scratch.cursor = 0
		mc.phase = cpu.ExecuteStep
		return true
	}

	if mc.irqLine && mc.IFF1 && !mc.eiPending {
		mc.IFF1 = false
		mc.IFF2 = false
		mc.scratch.active = mc.irqPlan[mc.IM]
		mc.scratch.cursor = 0
		mc.phase = cpu.ExecuteStep
		return true
	}

	return false
}

func (mc *CPU) fetchTick() error {
	if !mc.boundaryChecked {
		if !mc.scratch.IsClear() {
			if mc.StrictScratch {
				panic(fmt.Sprintf("z80: scratch state not clear at fetch entry (opcode %#02x)", mc.scratch.opcode))
			}
			logger.Logf("z80", "scratch state not clear at fetch entry (opcode %#02x); clearing", mc.scratch.opcode)
			mc.scratch.Clear()
		}
		mc.boundaryChecked = true

		if mc.sampleInterrupts() {
			return mc.executeTick()
		}

		// the EI delay has now been served
		if mc.eiPending {
			mc.eiPending = false
			mc.IFF1 = true
			mc.IFF2 = true
		}
	}

	// an opcode fetch machine cycle is four T-states; the bus transaction
	// happens on the last of them. prefix bytes each cost a full machine
	// cycle of their own
	if mc.scratch.m1 == 0 {
		mc.scratch.m1 = 4
	}
	if mc.scratch.m1 > 1 {
		mc.scratch.m1--
		return nil
	}

	v, ok, err := mc.busRead(mc.PC)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	mc.scratch.m1 = 0
	mc.PC++
	mc.R = mc.R&0x80 | (mc.R+1)&0x7f

	return mc.decode(v)
}

// decode routes a fetched opcode byte: prefix bytes adjust the scratch
// decode state and return to the fetch phase for another machine cycle;
// anything else latches a descriptor. Combinational within the fetch tick.
func (mc *CPU) decode(v uint8) error {
	s := &mc.scratch
	s.opcode = v

	var d *descriptor

	switch s.sel {
	case selMain:
		switch v {
		case 0xdd:
			s.ctx = ctxIX
			return nil
		case 0xfd:
			s.ctx = ctxIY
			return nil
		case 0xed:
			// ED ignores any DD/FD prefix already seen
			s.sel = selED
			s.ctx = ctxHL
			return nil
		case 0xcb:
			if s.ctx == ctxHL {
				s.sel = selCB
				return nil
			}
			// DDCB/FDCB: displacement byte then sub-opcode, fetched by a
			// fixed plan which splices in the sub-opcode's own plan
			s.active = mc.ddcbFetch[s.ctx]
			s.cursor = 0
			mc.phase = cpu.ExecuteStep
			return nil
		}
		d = &mc.main[s.ctx][v]

	case selCB:
		d = &mc.cb[v]

	case selED:
		d = &mc.ed[v]
	}

	return mc.latch(d)
}

// latch runs a descriptor's immediate action and installs its micro-op
// plan. Instructions whose work is entirely register-to-register have an
// action and no plan; they complete within the fetch tick.
func (mc *CPU) latch(d *descriptor) error {
	if d.action != nil {
		if err := d.action(mc); err != nil {
			return err
		}
	}

	if len(d.plan) == 0 {
		mc.endInstruction()
		return nil
	}

	mc.scratch.active = d.plan
	mc.scratch.cursor = 0
	mc.phase = cpu.ExecuteStep
	return nil
}

func (mc *CPU) executeTick() error {
	s := &mc.scratch

	op := s.active[s.cursor]

	if s.countdown == 0 {
		s.countdown = op.ticks
	}
	if s.countdown > 1 {
		s.countdown--
		return nil
	}

	// final T-state of the machine cycle: the bus transaction, if any
	if op.run != nil {
		done, err := op.run(mc)
		if err != nil {
			return err
		}
		if !done {
			// bus wait-state. the countdown holds at one and the same
			// transaction is re-queried on the next tick
			return nil
		}
	}

	s.countdown = 0
	s.cursor++

	// skip micro-ops whose guard is false, at zero cost
	for s.cursor < len(s.active) {
		next := s.active[s.cursor]
		if next.guard != nil && !next.guard(mc) {
			s.cursor++
			continue
		}
		break
	}

	if s.cursor >= len(s.active) {
		mc.endInstruction()
	}

	return nil
}

func (mc *CPU) endInstruction() {
	halted := mc.haltPending
	mc.haltPending = false

	mc.scratch.Clear()
	mc.boundaryChecked = false

	if halted {
		mc.phase = cpu.Halted
	} else {
		mc.phase = cpu.Fetch
	}
}

func (mc *CPU) busRead(address uint16) (uint8, bool, error) {
	data, wait, err := mc.mem.Read(uint32(address), bus.Byte)
	if err != nil {
		return 0, false, err
	}
	if wait > 0 {
		return 0, false, nil
	}
	return uint8(data), true, nil
}

func (mc *CPU) busWrite(address uint16, data uint8) (bool, error) {
	wait, err := mc.mem.Write(uint32(address), bus.Byte, uint32(data))
	if err != nil {
		return false, err
	}
	return wait == 0, nil
}

// ioRead reads from the port address space. An unattached port bus reads as
// open bus.
func (mc *CPU) ioRead(port uint16) (uint8, bool, error) {
	if mc.io == nil {
		return 0xff, true, nil
	}
	data, wait, err := mc.io.Read(uint32(port), bus.Byte)
	if err != nil {
		return 0, false, err
	}
	if wait > 0 {
		return 0, false, nil
	}
	return uint8(data), true, nil
}

func (mc *CPU) ioWrite(port uint16, data uint8) (bool, error) {
	if mc.io == nil {
		return true, nil
	}
	wait, err := mc.io.Write(uint32(port), bus.Byte, uint32(data))
	if err != nil {
		return false, err
	}
	return wait == 0, nil
}
