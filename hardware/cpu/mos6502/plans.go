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

package mos6502

import (
	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502/instructions"
)

// microOp is one cycle of an instruction: at most one bus transaction. A nil
// guard means the micro-op always runs. A false guard skips the micro-op at
// zero cost, within the same tick; this is how the conditional cycles of the
// 6502 (index fix-ups, branch outcomes) are expressed.
//
// run returns false, with no error, when the bus is holding the transaction
// with wait-cycles. The cursor holds and the same micro-op is retried on the
// next tick.
type microOp struct {
	guard func(mc *CPU) bool
	run   func(mc *CPU) (bool, error)
}

// plan is the complete micro-op sequence for an instruction, covering every
// cycle after the opcode fetch.
type plan []microOp

// readOp builds a micro-op that reads a byte from the address returned by
// addr and applies f to the value on the tick the access completes. A nil f
// makes the read a phantom: the 6502 puts an address on the bus every cycle,
// even on cycles where it has no use for the data.
func readOp(addr func(mc *CPU) uint16, f func(mc *CPU, v uint8) error) microOp {
	return microOp{run: func(mc *CPU) (bool, error) {
		v, ok, err := mc.busRead(addr(mc))
		if err != nil || !ok {
			return ok, err
		}
		if f != nil {
			return true, f(mc, v)
		}
		return true, nil
	}}
}

// writeOp builds a micro-op that writes the byte returned by data to the
// address returned by addr. post, if non-nil, runs on the tick the access
// completes; it must not be folded into data because data is re-evaluated on
// every wait-state retry.
func writeOp(addr func(mc *CPU) uint16, data func(mc *CPU) (uint8, error), post func(mc *CPU) error) microOp {
	return microOp{run: func(mc *CPU) (bool, error) {
		v, err := data(mc)
		if err != nil {
			return false, err
		}
		ok, err := mc.busWrite(addr(mc), v)
		if err != nil || !ok {
			return ok, err
		}
		if post != nil {
			return true, post(mc)
		}
		return true, nil
	}}
}

func guarded(g func(mc *CPU) bool, op microOp) microOp {
	op.guard = g
	return op
}

// common address selectors.
func pcAddr(mc *CPU) uint16  { return mc.PC.Address() }
func spAddr(mc *CPU) uint16  { return mc.SP.Address() }
func effAddr(mc *CPU) uint16 { return mc.scratch.address }
func ptrAddr(mc *CPU) uint16 { return uint16(mc.scratch.pointer) }

// fetchZeroPage reads the single operand byte of a zero page instruction.
func fetchZeroPage() microOp {
	return readOp(pcAddr, func(mc *CPU, v uint8) error {
		mc.scratch.address = uint16(v)
		mc.LastResult.InstructionData = uint16(v)
		mc.LastResult.ByteCount++
		mc.PC.Add(1)
		return nil
	})
}

// fetchPointer reads the zero page pointer byte of an indirect instruction.
func fetchPointer() microOp {
	return readOp(pcAddr, func(mc *CPU, v uint8) error {
		mc.scratch.pointer = v
		mc.LastResult.InstructionData = uint16(v)
		mc.LastResult.ByteCount++
		mc.PC.Add(1)
		return nil
	})
}

// fetchAddressLo reads the low byte of a 16 bit operand.
func fetchAddressLo() microOp {
	return readOp(pcAddr, func(mc *CPU, v uint8) error {
		mc.scratch.address = uint16(v)
		mc.LastResult.ByteCount++
		mc.PC.Add(1)
		return nil
	})
}

// fetchAddressHi completes a 16 bit operand.
func fetchAddressHi() microOp {
	return readOp(pcAddr, func(mc *CPU, v uint8) error {
		mc.scratch.address |= uint16(v) << 8
		mc.scratch.baseHi = v
		mc.LastResult.InstructionData = mc.scratch.address
		mc.LastResult.ByteCount++
		mc.PC.Add(1)
		return nil
	})
}

// fetchAddressHiIndexed completes a 16 bit operand and adds an index to the
// low byte. The 8 bit adder means a carry out of the low byte is not applied
// until the fix-up cycle; the scratch carry field records the debt.
func fetchAddressHiIndexed(index func(mc *CPU) uint8) microOp {
	return readOp(pcAddr, func(mc *CPU, v uint8) error {
		lo := uint8(mc.scratch.address)
		mc.LastResult.InstructionData = uint16(v)<<8 | uint16(lo)

		sum := uint16(lo) + uint16(index(mc))
		mc.scratch.carry = sum > 0xff
		mc.scratch.address = uint16(v)<<8 | (sum & 0xff)
		mc.scratch.baseHi = v
		mc.LastResult.ByteCount++
		mc.PC.Add(1)
		return nil
	})
}

// fixAddressHi is the conditional cycle of a page-sensitive read: a phantom
// read of the uncorrected address while the high byte is incremented.
func fixAddressHi() microOp {
	return guarded(func(mc *CPU) bool { return mc.scratch.carry },
		readOp(effAddr, func(mc *CPU, _ uint8) error {
			mc.scratch.address += 0x0100
			mc.scratch.carry = false
			mc.LastResult.PageFault = true
			return nil
		}))
}

// fixAddressHiAlways is the always-taken fix-up cycle of an indexed write or
// RMW: the phantom read happens whether or not the index carried.
func fixAddressHiAlways() microOp {
	return readOp(effAddr, func(mc *CPU, _ uint8) error {
		if mc.scratch.carry {
			mc.scratch.address += 0x0100
			mc.scratch.carry = false
		}
		return nil
	})
}

// zeroPageIndex is the phantom-read cycle in which a zero page address has
// an index added to it. The addition wraps inside the zero page.
func zeroPageIndex(index func(mc *CPU) uint8) microOp {
	return readOp(effAddr, func(mc *CPU, _ uint8) error {
		mc.scratch.address = uint16(uint8(mc.scratch.address) + index(mc))
		return nil
	})
}

// final cycles common to the three effect categories.

func readAndExecute() microOp {
	return readOp(effAddr, func(mc *CPU, v uint8) error {
		return mc.execute(v)
	})
}

func writeResult() microOp {
	return writeOp(effAddr, func(mc *CPU) (uint8, error) {
		return mc.storeValue()
	}, nil)
}

func rmwRead() microOp {
	return readOp(effAddr, func(mc *CPU, v uint8) error {
		mc.scratch.value = v
		return nil
	})
}

// rmwModify is the cycle in which the 6502 writes the unmodified value back
// while the ALU works. The modification itself is applied exactly once, on
// completion, so that non-idempotent combination operators (RRA, ISC) behave
// when the write is stalled and retried.
func rmwModify() microOp {
	return writeOp(effAddr,
		func(mc *CPU) (uint8, error) { return mc.scratch.value, nil },
		func(mc *CPU) error {
			v, err := mc.modify(mc.scratch.value)
			if err != nil {
				return err
			}
			mc.scratch.value = v
			return nil
		})
}

func rmwWrite() microOp {
	return writeOp(effAddr, func(mc *CPU) (uint8, error) {
		return mc.scratch.value, nil
	}, nil)
}

// stack cycles.

func pushByte(data func(mc *CPU) (uint8, error)) microOp {
	return writeOp(spAddr, data, func(mc *CPU) error {
		mc.SP.Up()
		return nil
	})
}

func pushPCH() microOp {
	return pushByte(func(mc *CPU) (uint8, error) { return uint8(mc.PC.Address() >> 8), nil })
}

func pushPCL() microOp {
	return pushByte(func(mc *CPU) (uint8, error) { return uint8(mc.PC.Address()), nil })
}

// pushStatus pushes the status register with the break flag reflecting the
// interrupt source: set for BRK (and PHP), clear for IRQ and NMI.
func pushStatus() microOp {
	return pushByte(func(mc *CPU) (uint8, error) {
		sr := mc.Status
		sr.Break = mc.scratch.source == BRK
		return sr.Value(), nil
	})
}

// stackDown is the phantom stack read that accompanies the stack pointer
// moving down ahead of a pull.
func stackDown() microOp {
	return readOp(spAddr, func(mc *CPU, _ uint8) error {
		mc.SP.Down()
		return nil
	})
}

func pullByte(f func(mc *CPU, v uint8) error) microOp {
	return readOp(spAddr, f)
}

// vector cycles. the vector address is computed from the interrupt source
// alone.

func vectorLo() microOp {
	return readOp(func(mc *CPU) uint16 { return Vector(mc.scratch.source) },
		func(mc *CPU, v uint8) error {
			mc.scratch.address = uint16(v)
			return nil
		})
}

func vectorHi() microOp {
	return readOp(func(mc *CPU) uint16 { return Vector(mc.scratch.source) + 1 },
		func(mc *CPU, v uint8) error {
			mc.PC.Load(uint16(v)<<8 | mc.scratch.address)
			mc.Status.InterruptDisable = true
			return nil
		})
}

// effectPlan appends the final cycles for the instruction's effect category
// to the addressing cycles already assembled.
func effectPlan(p plan, defn *instructions.Definition) (plan, error) {
	switch defn.Effect {
	case instructions.Read:
		return append(p, readAndExecute()), nil
	case instructions.Write:
		return append(p, writeResult()), nil
	case instructions.RMW:
		return append(p, rmwRead(), rmwModify(), rmwWrite()), nil
	}
	return nil, curated.Errorf("mos6502: no micro-op plan for opcode %#02x [%s]", defn.OpCode, defn.Operator)
}

// buildPlan assembles the micro-op sequence for an instruction definition.
// Called once per opcode at construction.
func buildPlan(defn *instructions.Definition) (plan, error) {
	switch defn.AddressingMode {
	case instructions.Implied:
		return impliedPlan(defn)

	case instructions.Immediate:
		return plan{
			readOp(pcAddr, func(mc *CPU, v uint8) error {
				mc.LastResult.InstructionData = uint16(v)
				mc.LastResult.ByteCount++
				mc.PC.Add(1)
				return mc.execute(v)
			}),
		}, nil

	case instructions.Relative:
		return branchPlan(defn), nil

	case instructions.Absolute:
		switch defn.Effect {
		case instructions.Flow: // JMP
			return plan{
				fetchAddressLo(),
				readOp(pcAddr, func(mc *CPU, v uint8) error {
					mc.scratch.address |= uint16(v) << 8
					mc.LastResult.InstructionData = mc.scratch.address
					mc.LastResult.ByteCount++
					mc.PC.Load(mc.scratch.address)
					return nil
				}),
			}, nil
		case instructions.Subroutine: // JSR
			return plan{
				fetchAddressLo(),
				readOp(spAddr, nil),
				pushPCH(),
				pushPCL(),
				readOp(pcAddr, func(mc *CPU, v uint8) error {
					mc.scratch.address |= uint16(v) << 8
					mc.LastResult.InstructionData = mc.scratch.address
					mc.LastResult.ByteCount++
					mc.PC.Load(mc.scratch.address)
					return nil
				}),
			}, nil
		}
		return effectPlan(plan{fetchAddressLo(), fetchAddressHi()}, defn)

	case instructions.ZeroPage:
		return effectPlan(plan{fetchZeroPage()}, defn)

	case instructions.Indirect: // JMP (ind)
		return plan{
			fetchAddressLo(),
			fetchAddressHi(),
			readOp(effAddr, func(mc *CPU, v uint8) error {
				mc.scratch.value = v
				return nil
			}),
			// the high byte read does not cross a page boundary: the NMOS
			// indirect jump bug
			readOp(func(mc *CPU) uint16 {
				return (mc.scratch.address & 0xff00) | ((mc.scratch.address + 1) & 0x00ff)
			}, func(mc *CPU, v uint8) error {
				mc.PC.Load(uint16(v)<<8 | uint16(mc.scratch.value))
				return nil
			}),
		}, nil

	case instructions.ZeroPageIndexedX:
		return effectPlan(plan{fetchZeroPage(), zeroPageIndex(indexX)}, defn)

	case instructions.ZeroPageIndexedY:
		return effectPlan(plan{fetchZeroPage(), zeroPageIndex(indexY)}, defn)

	case instructions.AbsoluteIndexedX:
		return indexedPlan(plan{fetchAddressLo(), fetchAddressHiIndexed(indexX)}, defn)

	case instructions.AbsoluteIndexedY:
		return indexedPlan(plan{fetchAddressLo(), fetchAddressHiIndexed(indexY)}, defn)

	case instructions.IndexedIndirect: // (ind,X)
		p := plan{
			fetchPointer(),
			readOp(ptrAddr, func(mc *CPU, _ uint8) error {
				mc.scratch.pointer += mc.X.Value()
				return nil
			}),
			readOp(ptrAddr, func(mc *CPU, v uint8) error {
				mc.scratch.address = uint16(v)
				mc.scratch.pointer++
				return nil
			}),
			readOp(ptrAddr, func(mc *CPU, v uint8) error {
				mc.scratch.address |= uint16(v) << 8
				mc.scratch.baseHi = v
				return nil
			}),
		}
		return effectPlan(p, defn)

	case instructions.IndirectIndexed: // (ind),Y
		p := plan{
			fetchPointer(),
			readOp(ptrAddr, func(mc *CPU, v uint8) error {
				mc.scratch.address = uint16(v)
				mc.scratch.pointer++
				return nil
			}),
			readOp(ptrAddr, func(mc *CPU, v uint8) error {
				lo := uint8(mc.scratch.address)
				sum := uint16(lo) + uint16(mc.Y.Value())
				mc.scratch.carry = sum > 0xff
				mc.scratch.address = uint16(v)<<8 | (sum & 0xff)
				mc.scratch.baseHi = v
				return nil
			}),
		}
		return indexedPlan(p, defn)
	}

	return nil, curated.Errorf("mos6502: no micro-op plan for opcode %#02x [%s]", defn.OpCode, defn.Operator)
}

func indexX(mc *CPU) uint8 { return mc.X.Value() }
func indexY(mc *CPU) uint8 { return mc.Y.Value() }

// indexedPlan appends the fix-up and effect cycles shared by the absolute
// indexed and indirect indexed modes. Reads take the fix-up cycle only when
// the index carried; writes and RMWs always take it.
func indexedPlan(p plan, defn *instructions.Definition) (plan, error) {
	if defn.Effect == instructions.Read {
		return effectPlan(append(p, fixAddressHi()), defn)
	}
	return effectPlan(append(p, fixAddressHiAlways()), defn)
}

// impliedPlan covers the one-byte instructions: the simple two-cycle
// operations and the stack and interrupt-return instructions.
func impliedPlan(defn *instructions.Definition) (plan, error) {
	switch defn.Operator {
	case instructions.Brk:
		return plan{
			// the byte after a BRK opcode is fetched and discarded; BRK is
			// effectively a two byte instruction
			readOp(pcAddr, func(mc *CPU, _ uint8) error {
				mc.LastResult.ByteCount++
				mc.PC.Add(1)
				mc.scratch.source = BRK
				return nil
			}),
			pushPCH(),
			pushPCL(),
			pushStatus(),
			vectorLo(),
			vectorHi(),
		}, nil

	case instructions.Rti:
		return plan{
			readOp(pcAddr, nil),
			stackDown(),
			pullByte(func(mc *CPU, v uint8) error {
				mc.Status.FromValue(v)
				mc.SP.Down()
				return nil
			}),
			pullByte(func(mc *CPU, v uint8) error {
				mc.scratch.address = uint16(v)
				mc.SP.Down()
				return nil
			}),
			pullByte(func(mc *CPU, v uint8) error {
				mc.PC.Load(uint16(v)<<8 | mc.scratch.address)
				return nil
			}),
		}, nil

	case instructions.Rts:
		return plan{
			readOp(pcAddr, nil),
			stackDown(),
			pullByte(func(mc *CPU, v uint8) error {
				mc.scratch.address = uint16(v)
				mc.SP.Down()
				return nil
			}),
			pullByte(func(mc *CPU, v uint8) error {
				mc.PC.Load(uint16(v)<<8 | mc.scratch.address)
				return nil
			}),
			readOp(pcAddr, func(mc *CPU, _ uint8) error {
				mc.PC.Add(1)
				return nil
			}),
		}, nil

	case instructions.Pha:
		return plan{
			readOp(pcAddr, nil),
			pushByte(func(mc *CPU) (uint8, error) { return mc.A.Value(), nil }),
		}, nil

	case instructions.Php:
		return plan{
			readOp(pcAddr, nil),
			pushByte(func(mc *CPU) (uint8, error) {
				// PHP pushes with the break flag set, as BRK does
				sr := mc.Status
				sr.Break = true
				return sr.Value(), nil
			}),
		}, nil

	case instructions.Pla:
		return plan{
			readOp(pcAddr, nil),
			stackDown(),
			pullByte(func(mc *CPU, v uint8) error {
				mc.A.Load(v)
				mc.setNZ(v)
				return nil
			}),
		}, nil

	case instructions.Plp:
		return plan{
			readOp(pcAddr, nil),
			stackDown(),
			pullByte(func(mc *CPU, v uint8) error {
				mc.Status.FromValue(v)
				return nil
			}),
		}, nil
	}

	// everything else is two cycles: the phantom read of the next opcode
	// byte and the operation itself
	return plan{
		readOp(pcAddr, func(mc *CPU, _ uint8) error {
			return mc.execute(0)
		}),
	}, nil
}

// branchPlan: two cycles when the branch is not taken, three when it is
// taken within the page, four when the branch crosses a page boundary.
func branchPlan(defn *instructions.Definition) plan {
	operator := defn.Operator

	return plan{
		readOp(pcAddr, func(mc *CPU, v uint8) error {
			mc.LastResult.InstructionData = uint16(v)
			mc.LastResult.ByteCount++
			mc.PC.Add(1)
			mc.scratch.offset = v
			mc.scratch.taken = mc.branchTaken(operator)
			return nil
		}),
		guarded(func(mc *CPU) bool { return mc.scratch.taken },
			readOp(pcAddr, func(mc *CPU, _ uint8) error {
				target := mc.PC.Address() + uint16(int16(int8(mc.scratch.offset)))
				mc.scratch.address = target

				// only the low byte of the program counter is updated in
				// this cycle. a carry into the high byte costs the fix-up
				// cycle
				partial := (mc.PC.Address() & 0xff00) | (target & 0x00ff)
				mc.scratch.carry = partial != target
				mc.PC.Load(partial)
				return nil
			})),
		guarded(func(mc *CPU) bool { return mc.scratch.taken && mc.scratch.carry },
			readOp(pcAddr, func(mc *CPU, _ uint8) error {
				mc.PC.Load(mc.scratch.address)
				return nil
			})),
	}
}

// buildInterruptPlan assembles the seven cycle hardware service-entry
// sequence shared by IRQ and NMI. The vector differs by the source latched
// in scratch before the sequence begins.
func buildInterruptPlan() plan {
	return plan{
		readOp(pcAddr, nil),
		readOp(pcAddr, nil),
		pushPCH(),
		pushPCL(),
		pushStatus(),
		vectorLo(),
		vectorHi(),
	}
}

// buildResetPlan assembles the reset sequence: the stack pointer is walked
// down three places with phantom reads (nothing is written during reset) and
// the program counter is loaded from the reset vector.
func buildResetPlan() plan {
	stackPhantom := func() microOp {
		return readOp(spAddr, func(mc *CPU, _ uint8) error {
			mc.SP.Up()
			return nil
		})
	}

	return plan{
		readOp(pcAddr, nil),
		readOp(pcAddr, nil),
		stackPhantom(),
		stackPhantom(),
		stackPhantom(),
		vectorLo(),
		vectorHi(),
	}
}
