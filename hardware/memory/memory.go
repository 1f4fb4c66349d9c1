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

// Package memory provides a flat RAM implementation of the bus contract,
// with optional wait-state regions and fault regions. It is the memory used
// by the test machine and by the conformance harness; real machine ports
// replace it with their chipset-aware bus.
package memory

import (
	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/bus"
)

// region describes a range of addresses with special behaviour.
type region struct {
	origin uint32
	memtop uint32

	// number of wait-cycles inserted on every access to the region
	wait int

	// accesses to the region fault rather than complete
	fault bool
}

// Memory is a flat allocation of RAM accessed through the bus contract.
// Multi-byte accesses are big-endian, matching the 68000. The 6502 and Z80
// cores only ever issue byte accesses so the ordering never matters for
// them.
type Memory struct {
	ram []uint8

	// mask applied to all addresses before use. this performs the address
	// truncation that would happen on machines with fewer address pins than
	// the CPU package exposes (eg. the 6507)
	mask uint32

	regions []region

	// a wait-state access in progress. the spec for the bus contract is that
	// a stalled CPU re-queries the same access every tick; the countdown
	// advances on each re-query
	pendingAddress uint32
	pendingWidth   bus.Width
	pendingDir     bus.Direction
	pendingWait    int
	pendingValid   bool
}

// NewMemory is the preferred method of initialisation for the Memory type.
// The size argument must be a power of two; the address mask is derived from
// it.
func NewMemory(size uint32) *Memory {
	return &Memory{
		ram:  make([]uint8, size),
		mask: size - 1,
	}
}

// Size returns the extent of the memory map.
func (m *Memory) Size() uint32 {
	return uint32(len(m.ram))
}

// AddWaitRegion marks an address range as inserting the specified number of
// wait-cycles on every access. Models chipset contention (eg. a DMA
// controller holding the bus for an address range).
func (m *Memory) AddWaitRegion(origin, memtop uint32, wait int) {
	m.regions = append(m.regions, region{origin: origin, memtop: memtop, wait: wait})
}

// AddFaultRegion marks an address range as faulting on access.
func (m *Memory) AddFaultRegion(origin, memtop uint32) {
	m.regions = append(m.regions, region{origin: origin, memtop: memtop, fault: true})
}

func (m *Memory) lookup(address uint32) *region {
	for i := range m.regions {
		if address >= m.regions[i].origin && address <= m.regions[i].memtop {
			return &m.regions[i]
		}
	}
	return nil
}

// begin or continue a wait-state countdown for the access. returns the
// number of wait-cycles still remaining.
func (m *Memory) wait(address uint32, width bus.Width, dir bus.Direction, wait int) int {
	if m.pendingValid && m.pendingAddress == address && m.pendingWidth == width && m.pendingDir == dir {
		m.pendingWait--
		if m.pendingWait <= 0 {
			m.pendingValid = false
			return 0
		}
		return m.pendingWait
	}

	if wait == 0 {
		return 0
	}

	m.pendingAddress = address
	m.pendingWidth = width
	m.pendingDir = dir
	m.pendingWait = wait
	m.pendingValid = true

	return wait
}

// Read implements the bus.Bus interface.
func (m *Memory) Read(address uint32, width bus.Width) (uint32, int, error) {
	address &= m.mask

	if r := m.lookup(address); r != nil {
		if r.fault {
			return 0, 0, curated.Errorf(bus.AddressFault, address)
		}
		if w := m.wait(address, width, bus.ReadAccess, r.wait); w > 0 {
			return 0, w, nil
		}
	}

	var data uint32
	for i := 0; i < width.Bytes(); i++ {
		data = (data << 8) | uint32(m.ram[(address+uint32(i))&m.mask])
	}

	return data, 0, nil
}

// Write implements the bus.Bus interface.
func (m *Memory) Write(address uint32, width bus.Width, data uint32) (int, error) {
	address &= m.mask

	if r := m.lookup(address); r != nil {
		if r.fault {
			return 0, curated.Errorf(bus.AddressFault, address)
		}
		if w := m.wait(address, width, bus.WriteAccess, r.wait); w > 0 {
			return w, nil
		}
	}

	n := width.Bytes()
	for i := 0; i < n; i++ {
		m.ram[(address+uint32(i))&m.mask] = uint8(data >> uint((n-1-i)*8))
	}

	return 0, nil
}

// Poke a byte value directly into memory, bypassing the bus contract. For
// use by test harnesses and the monitor only.
func (m *Memory) Poke(address uint32, data uint8) {
	m.ram[address&m.mask] = data
}

// Peek a byte value directly from memory, bypassing the bus contract. For
// use by test harnesses, the disassembler and the monitor only.
func (m *Memory) Peek(address uint32) uint8 {
	return m.ram[address&m.mask]
}

// PokeBytes copies a sequence of bytes into memory starting at origin.
// Returns the address immediately after the last byte written.
func (m *Memory) PokeBytes(origin uint32, data ...uint8) uint32 {
	for i, b := range data {
		m.Poke(origin+uint32(i), b)
	}
	return origin + uint32(len(data))
}
