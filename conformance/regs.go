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

package conformance

import (
	"github.com/clockwork-emu/clockwork/hardware/cpu/m68k"
	"github.com/clockwork-emu/clockwork/hardware/cpu/mos6502"
	"github.com/clockwork-emu/clockwork/hardware/cpu/z80"
)

// the register adapters translate between fixture register names and the
// concrete core fields. get returns false for a name the architecture does
// not have; set likewise.

func regs6502(mc *mos6502.CPU) (func(string) (uint32, bool), func(string, uint32) bool) {
	get := func(name string) (uint32, bool) {
		switch name {
		case "pc":
			return uint32(mc.PC.Address()), true
		case "a":
			return uint32(mc.A.Value()), true
		case "x":
			return uint32(mc.X.Value()), true
		case "y":
			return uint32(mc.Y.Value()), true
		case "sp":
			return uint32(mc.SP.Value()), true
		case "p":
			return uint32(mc.Status.Value()), true
		}
		return 0, false
	}
	set := func(name string, v uint32) bool {
		switch name {
		case "pc":
			mc.PC.Load(uint16(v))
		case "a":
			mc.A.Load(uint8(v))
		case "x":
			mc.X.Load(uint8(v))
		case "y":
			mc.Y.Load(uint8(v))
		case "sp":
			mc.SP.Load(uint8(v))
		case "p":
			mc.Status.FromValue(uint8(v))
		default:
			return false
		}
		return true
	}
	return get, set
}

func regsZ80(mc *z80.CPU) (func(string) (uint32, bool), func(string, uint32) bool) {
	get := func(name string) (uint32, bool) {
		switch name {
		case "pc":
			return uint32(mc.PC), true
		case "sp":
			return uint32(mc.SP), true
		case "ix":
			return uint32(mc.IX), true
		case "iy":
			return uint32(mc.IY), true
		case "wz":
			return uint32(mc.WZ), true
		case "a":
			return uint32(mc.A), true
		case "f":
			return uint32(mc.F.Value()), true
		case "b":
			return uint32(mc.B), true
		case "c":
			return uint32(mc.C), true
		case "d":
			return uint32(mc.D), true
		case "e":
			return uint32(mc.E), true
		case "h":
			return uint32(mc.H), true
		case "l":
			return uint32(mc.L), true
		case "i":
			return uint32(mc.I), true
		case "r":
			return uint32(mc.R), true
		case "im":
			return uint32(mc.IM), true
		case "iff1":
			return b2u(mc.IFF1), true
		case "iff2":
			return b2u(mc.IFF2), true
		}
		return 0, false
	}
	set := func(name string, v uint32) bool {
		switch name {
		case "pc":
			mc.PC = uint16(v)
		case "sp":
			mc.SP = uint16(v)
		case "ix":
			mc.IX = uint16(v)
		case "iy":
			mc.IY = uint16(v)
		case "wz":
			mc.WZ = uint16(v)
		case "a":
			mc.A = uint8(v)
		case "f":
			mc.F.FromValue(uint8(v))
		case "b":
			mc.B = uint8(v)
		case "c":
			mc.C = uint8(v)
		case "d":
			mc.D = uint8(v)
		case "e":
			mc.E = uint8(v)
		case "h":
			mc.H = uint8(v)
		case "l":
			mc.L = uint8(v)
		case "i":
			mc.I = uint8(v)
		case "r":
			mc.R = uint8(v)
		case "im":
			mc.IM = int(v)
		case "iff1":
			mc.IFF1 = v != 0
		case "iff2":
			mc.IFF2 = v != 0
		default:
			return false
		}
		return true
	}
	return get, set
}

func regs68000(mc *m68k.CPU) (func(string) (uint32, bool), func(string, uint32) bool) {
	dn := map[string]int{
		"d0": 0, "d1": 1, "d2": 2, "d3": 3, "d4": 4, "d5": 5, "d6": 6, "d7": 7,
	}
	an := map[string]int{
		"a0": 0, "a1": 1, "a2": 2, "a3": 3, "a4": 4, "a5": 5, "a6": 6, "a7": 7,
	}

	get := func(name string) (uint32, bool) {
		if i, ok := dn[name]; ok {
			return mc.D[i], true
		}
		if i, ok := an[name]; ok {
			return mc.A[i], true
		}
		switch name {
		case "pc":
			return mc.PC, true
		case "sr":
			return uint32(mc.SR.Value()), true
		case "usp":
			return mc.USP, true
		case "ssp":
			return mc.SSP, true
		}
		return 0, false
	}
	set := func(name string, v uint32) bool {
		if i, ok := dn[name]; ok {
			mc.D[i] = v
			return true
		}
		if i, ok := an[name]; ok {
			mc.A[i] = v
			return true
		}
		switch name {
		case "pc":
			mc.PC = v
		case "sr":
			mc.SR.FromValue(uint16(v))
		case "usp":
			mc.USP = v
		case "ssp":
			mc.SSP = v
		default:
			return false
		}
		return true
	}
	return get, set
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
