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

// the Z80 groups its T-states into machine cycles and the bus is only
// touched on the final T-state of a cycle. a microOp is one machine cycle:
// ticks is its length, run is what happens on the last tick. the run
// function of a bus micro-op performs the transaction and reports false if
// the bus asked for a wait-state, in which case the engine holds and
// re-queries on the next tick.

type microOp struct {
	ticks int
	guard func(mc *CPU) bool
	run   func(mc *CPU) (bool, error)
}

type plan []microOp

// descriptor is one opcode: a name for disassembly and diagnostics, an
// action run combinationally at decode, and the machine-cycle plan for
// everything after the opcode fetch. register-to-register instructions are
// all action and no plan.
type descriptor struct {
	name   string
	action func(mc *CPU) error
	plan   plan
}

// internal is a machine cycle with no bus activity. f runs on the final
// tick and may be nil.
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

// readPC reads the byte at PC and advances PC. the increment happens only
// when the bus completes the access, so a wait-state retry sees the same
// address.
func readPC(ticks int, f func(mc *CPU, v uint8)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busRead(mc.PC)
		if err != nil || !ok {
			return ok, err
		}
		mc.PC++
		f(mc, v)
		return true, nil
	}}
}

// readAt reads from a computed address. the address function is evaluated
// on every query and must not mutate state.
func readAt(ticks int, addr func(mc *CPU) uint16, f func(mc *CPU, v uint8)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busRead(addr(mc))
		if err != nil || !ok {
			return ok, err
		}
		f(mc, v)
		return true, nil
	}}
}

// writeAt writes to a computed address. data is re-evaluated on every
// query; post runs exactly once, when the access completes.
func writeAt(ticks int, addr func(mc *CPU) uint16, data func(mc *CPU) uint8, post func(mc *CPU)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		ok, err := mc.busWrite(addr(mc), data(mc))
		if err != nil || !ok {
			return ok, err
		}
		if post != nil {
			post(mc)
		}
		return true, nil
	}}
}

// pushByte writes below the stack pointer. SP moves only on completion so
// a stalled push retries the same address with the same data.
func pushByte(ticks int, data func(mc *CPU) uint8, post func(mc *CPU)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		addr := mc.SP - 1
		ok, err := mc.busWrite(addr, data(mc))
		if err != nil || !ok {
			return ok, err
		}
		mc.SP = addr
		if post != nil {
			post(mc)
		}
		return true, nil
	}}
}

func popByte(ticks int, f func(mc *CPU, v uint8)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busRead(mc.SP)
		if err != nil || !ok {
			return ok, err
		}
		mc.SP++
		f(mc, v)
		return true, nil
	}}
}

// portRead and portWrite are the IO machine cycles. the Z80 inserts an
// automatic wait T-state on IO, which is why these cycles are a tick
// longer than their memory counterparts.
func portRead(ticks int, port func(mc *CPU) uint16, f func(mc *CPU, v uint8)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.ioRead(port(mc))
		if err != nil || !ok {
			return ok, err
		}
		f(mc, v)
		return true, nil
	}}
}

func portWrite(ticks int, port func(mc *CPU) uint16, data func(mc *CPU) uint8, post func(mc *CPU)) microOp {
	return microOp{ticks: ticks, run: func(mc *CPU) (bool, error) {
		ok, err := mc.ioWrite(port(mc), data(mc))
		if err != nil || !ok {
			return ok, err
		}
		if post != nil {
			post(mc)
		}
		return true, nil
	}}
}

// frequently used address selectors.

func scratchAddr(mc *CPU) uint16  { return mc.scratch.address }
func scratchAddr1(mc *CPU) uint16 { return mc.scratch.address + 1 }
func hlAddr(mc *CPU) uint16       { return mc.getHL() }
func deAddr(mc *CPU) uint16       { return mc.getDE() }
func bcPort(mc *CPU) uint16       { return mc.getBC() }
func scratchData(mc *CPU) uint8   { return mc.scratch.value }
func pchData(mc *CPU) uint8       { return uint8(mc.PC >> 8) }
func pclData(mc *CPU) uint8       { return uint8(mc.PC) }

// fetchLo stores the low byte of a 16 bit operand being assembled.
func fetchLo(mc *CPU, v uint8) {
	mc.scratch.lo = v
}

// fetchHiAddr completes the operand into the scratch address.
func fetchHiAddr(mc *CPU, v uint8) {
	mc.scratch.address = uint16(v)<<8 | uint16(mc.scratch.lo)
}

// buildEventPlans constructs the plans that do not begin with an opcode
// fetch: the DDCB/FDCB tail and the interrupt service entries.
func (mc *CPU) buildEventPlans() {
	for _, ctx := range []indexContext{ctxIX, ctxIY} {
		ctx := ctx
		mc.ddcbFetch[ctx] = plan{
			readPC(3, func(mc *CPU, v uint8) {
				mc.scratch.disp = int8(v)
			}),
			// the sub-opcode is fetched without an M1 cycle (and without a
			// refresh); its own plan is spliced in behind the cursor
			{ticks: 5, run: func(mc *CPU) (bool, error) {
				v, ok, err := mc.busRead(mc.PC)
				if err != nil || !ok {
					return ok, err
				}
				mc.PC++
				mc.scratch.opcode = v
				mc.scratch.address = mc.getIndex(ctx) + uint16(mc.scratch.disp)
				mc.WZ = mc.scratch.address
				mc.scratch.active = mc.ddcb[ctx][v].plan
				mc.scratch.cursor = -1
				return true, nil
			}},
		}
	}

	mc.nmiPlan = plan{
		internal(5, func(mc *CPU) {}),
		pushByte(3, pchData, nil),
		pushByte(3, pclData, func(mc *CPU) {
			mc.PC = 0x0066
			mc.WZ = mc.PC
		}),
	}

	// mode 0 is serviced as mode 1: the only opcode this machine model ever
	// sees on the acknowledge cycle is RST 38h
	im1 := plan{
		internal(7, nil),
		pushByte(3, pchData, nil),
		pushByte(3, pclData, func(mc *CPU) {
			mc.PC = 0x0038
			mc.WZ = mc.PC
		}),
	}
	mc.irqPlan[0] = im1
	mc.irqPlan[1] = im1

	mc.irqPlan[2] = plan{
		internal(7, nil),
		pushByte(3, pchData, nil),
		pushByte(3, pclData, func(mc *CPU) {
			mc.scratch.address = uint16(mc.I)<<8 | uint16(mc.irqData)
		}),
		readAt(3, scratchAddr, fetchLo),
		readAt(3, scratchAddr1, func(mc *CPU, v uint8) {
			mc.PC = uint16(v)<<8 | uint16(mc.scratch.lo)
			mc.WZ = mc.PC
		}),
	}
}
