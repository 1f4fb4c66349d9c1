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

import "github.com/clockwork-emu/clockwork/hardware/bus"

// the 68000 bus moves one word per four-cycle bus cycle. a microOp is one
// machine cycle (bus or internal); run executes on the final tick and a bus
// run reports false when the access is held in wait-states, in which case
// the engine re-queries on the next tick. longword operands are two word
// micro-ops, matching the two bus cycles the processor really performs.

type microOp struct {
	ticks int
	guard func(mc *CPU) bool
	run   func(mc *CPU) (bool, error)
}

type plan []microOp

// Scratch is the per-instruction working state of the core. The extension
// word cursor is the prefetch consumption point: addressing fragments
// consume instruction-stream words through it and the program counter is
// only committed from it at the instruction boundary.
type Scratch struct {
	opcode uint16

	// effective address accumulator and fetched operands
	ea       uint32
	operand  uint32
	operand2 uint32

	// result in flight between a compute micro-op and its write
	value uint32

	// extension word cursor
	extCursor uint32

	// a control transfer has set PC explicitly; do not commit the cursor
	branched bool

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
	return s.opcode == 0 && s.ea == 0 && s.operand == 0 && s.operand2 == 0 &&
		s.value == 0 && s.extCursor == 0 && !s.branched &&
		s.active == nil && s.cursor == 0 && s.countdown == 0
}

func internal(ticks int, f func(mc *CPU)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		if f != nil {
			f(mc)
		}
		return true, nil
	}}
}

func guarded(op microOp, guard func(mc *CPU) bool) microOp {
	op.guard = guard
	return op
}

func (mc *CPU) busReadWord(address uint32) (uint16, bool, error) {
	mc.lastAccess, mc.lastAccessWrite = address, false
	data, wait, err := mc.mem.Read(address, bus.Word)
	if err != nil {
		return 0, false, err
	}
	if wait > 0 {
		return 0, false, nil
	}
	return uint16(data), true, nil
}

func (mc *CPU) busReadByte(address uint32) (uint8, bool, error) {
	mc.lastAccess, mc.lastAccessWrite = address, false
	data, wait, err := mc.mem.Read(address, bus.Byte)
	if err != nil {
		return 0, false, err
	}
	if wait > 0 {
		return 0, false, nil
	}
	return uint8(data), true, nil
}

func (mc *CPU) busWriteWord(address uint32, data uint16) (bool, error) {
	mc.lastAccess, mc.lastAccessWrite = address, true
	wait, err := mc.mem.Write(address, bus.Word, uint32(data))
	if err != nil {
		return false, err
	}
	return wait == 0, nil
}

func (mc *CPU) busWriteByte(address uint32, data uint8) (bool, error) {
	mc.lastAccess, mc.lastAccessWrite = address, true
	wait, err := mc.mem.Write(address, bus.Byte, uint32(data))
	if err != nil {
		return false, err
	}
	return wait == 0, nil
}

// readExt consumes one instruction-stream word through the extension word
// cursor. The cursor advances only when the bus completes the access.
func readExt(f func(mc *CPU, v uint16)) microOp {
	return microOp{ticks: 4, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busReadWord(mc.scratch.extCursor)
		if err != nil || !ok {
			return ok, err
		}
		mc.scratch.extCursor += 2
		f(mc, v)
		return true, nil
	}}
}

// readWord and readByte fetch a data operand from a computed address.
func readWord(addr func(mc *CPU) uint32, f func(mc *CPU, v uint16)) microOp {
	return microOp{ticks: 4, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busReadWord(addr(mc))
		if err != nil || !ok {
			return ok, err
		}
		f(mc, v)
		return true, nil
	}}
}

func readByte(addr func(mc *CPU) uint32, f func(mc *CPU, v uint8)) microOp {
	return microOp{ticks: 4, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busReadByte(addr(mc))
		if err != nil || !ok {
			return ok, err
		}
		f(mc, v)
		return true, nil
	}}
}

// writeWord and writeByte store a data operand. data is re-evaluated on
// every query; post runs exactly once, when the access completes.
func writeWord(addr func(mc *CPU) uint32, data func(mc *CPU) uint16, post func(mc *CPU)) microOp {
	return microOp{ticks: 4, run: func(mc *CPU) (bool, error) {
		ok, err := mc.busWriteWord(addr(mc), data(mc))
		if err != nil || !ok {
			return ok, err
		}
		if post != nil {
			post(mc)
		}
		return true, nil
	}}
}

func writeByte(addr func(mc *CPU) uint32, data func(mc *CPU) uint8, post func(mc *CPU)) microOp {
	return microOp{ticks: 4, run: func(mc *CPU) (bool, error) {
		ok, err := mc.busWriteByte(addr(mc), data(mc))
		if err != nil || !ok {
			return ok, err
		}
		if post != nil {
			post(mc)
		}
		return true, nil
	}}
}

// pushWord writes below the active stack pointer. The pointer moves only on
// completion so a stalled push retries the same address with the same data.
func pushWord(data func(mc *CPU) uint16, post func(mc *CPU)) microOp {
	return microOp{ticks: 4, run: func(mc *CPU) (bool, error) {
		addr := mc.A[7] - 2
		ok, err := mc.busWriteWord(addr, data(mc))
		if err != nil || !ok {
			return ok, err
		}
		mc.A[7] = addr
		if post != nil {
			post(mc)
		}
		return true, nil
	}}
}

func popWord(f func(mc *CPU, v uint16)) microOp {
	return microOp{ticks: 4, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busReadWord(mc.A[7])
		if err != nil || !ok {
			return ok, err
		}
		mc.A[7] += 2
		f(mc, v)
		return true, nil
	}}
}

// pushLong pushes a 32 bit value as two word cycles, high word at the lower
// address. The value function is sampled when each cycle completes.
func pushLong(data func(mc *CPU) uint32) plan {
	return plan{
		pushWord(func(mc *CPU) uint16 { return uint16(data(mc)) }, nil),
		pushWord(func(mc *CPU) uint16 { return uint16(data(mc) >> 16) }, nil),
	}
}

func popLong(f func(mc *CPU, v uint32)) plan {
	return plan{
		popWord(func(mc *CPU, v uint16) {
			mc.scratch.operand2 = uint32(v) << 16
		}),
		popWord(func(mc *CPU, v uint16) {
			f(mc, mc.scratch.operand2|uint32(v))
		}),
	}
}

// scratchEA is the address selector most data micro-ops use.
func scratchEA(mc *CPU) uint32 { return mc.scratch.ea }

// readOperand fetches the operand at the scratch effective address into
// scratch.operand, as one byte cycle, one word cycle or two word cycles.
func readOperand(size opSize) plan {
	switch size {
	case sizeByte:
		return plan{readByte(scratchEA, func(mc *CPU, v uint8) {
			mc.scratch.operand = uint32(v)
		})}
	case sizeWord:
		return plan{readWord(scratchEA, func(mc *CPU, v uint16) {
			mc.scratch.operand = uint32(v)
		})}
	}
	return plan{
		readWord(scratchEA, func(mc *CPU, v uint16) {
			mc.scratch.operand = uint32(v) << 16
		}),
		readWord(func(mc *CPU) uint32 { return mc.scratch.ea + 2 },
			func(mc *CPU, v uint16) {
				mc.scratch.operand |= uint32(v)
			}),
	}
}

// writeValue stores scratch.value at the scratch effective address.
func writeValue(size opSize, post func(mc *CPU)) plan {
	switch size {
	case sizeByte:
		return plan{writeByte(scratchEA,
			func(mc *CPU) uint8 { return uint8(mc.scratch.value) }, post)}
	case sizeWord:
		return plan{writeWord(scratchEA,
			func(mc *CPU) uint16 { return uint16(mc.scratch.value) }, post)}
	}
	return plan{
		writeWord(scratchEA,
			func(mc *CPU) uint16 { return uint16(mc.scratch.value >> 16) }, nil),
		writeWord(func(mc *CPU) uint32 { return mc.scratch.ea + 2 },
			func(mc *CPU) uint16 { return uint16(mc.scratch.value) }, post),
	}
}
