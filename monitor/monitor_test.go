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

package monitor_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/clockwork-emu/clockwork/hardware/machine"
	"github.com/clockwork-emu/clockwork/monitor"
	"github.com/clockwork-emu/clockwork/test"
)

func newTestMachine(t *testing.T) *machine.Machine {
	t.Helper()

	m, err := machine.NewMachine(machine.Spec{Arch: machine.MOS6502})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.Poke(0xfffc, 0x00)
	m.Mem.Poke(0xfffd, 0x20)
	m.Mem.PokeBytes(0x2000,
		0xa9, 0x42, // LDA #$42
		0xea, // NOP
		0x02, // KIL
	)

	return m
}

func TestCommandSession(t *testing.T) {
	m := newTestMachine(t)

	output := &bytes.Buffer{}
	mon := monitor.NewMonitor(m, strings.NewReader("iidq"), output)

	if err := mon.Run(); err != nil {
		t.Fatal(err)
	}

	// two instruction steps: the reset sequence, then LDA
	test.Equate(t, m.PC(), 0x2002)
	test.Equate(t, m.MOS6502.A.Value(), 0x42)

	// the disassembly window shows the upcoming instruction
	test.Equate(t, strings.Contains(output.String(), "NOP"), true)
	test.Equate(t, strings.Contains(output.String(), "KIL"), true)
}

func TestRunToHaltCommand(t *testing.T) {
	m := newTestMachine(t)

	output := &bytes.Buffer{}
	mon := monitor.NewMonitor(m, strings.NewReader("r"), output)

	if err := mon.Run(); err != nil {
		t.Fatal(err)
	}

	test.Equate(t, m.CPU.Phase().String(), "halted")
	test.Equate(t, m.MOS6502.A.Value(), 0x42)
}

func TestDumpCommand(t *testing.T) {
	m := newTestMachine(t)

	output := &bytes.Buffer{}
	dump := &bytes.Buffer{}
	mon := monitor.NewMonitor(m, strings.NewReader("vq"), output)
	mon.DumpWriter = dump

	if err := mon.Run(); err != nil {
		t.Fatal(err)
	}

	// memviz emits graphviz dot
	test.Equate(t, strings.Contains(dump.String(), "digraph"), true)
}

func TestCheckpointCommands(t *testing.T) {
	m := newTestMachine(t)

	output := &bytes.Buffer{}
	mon := monitor.NewMonitor(m, strings.NewReader("muq"), output)

	if err := mon.Run(); err != nil {
		t.Fatal(err)
	}

	test.Equate(t, strings.Contains(output.String(), "checkpoint taken"), true)
	test.Equate(t, strings.Contains(output.String(), "checkpoint restored"), true)
}

func TestRestoreWithoutCheckpoint(t *testing.T) {
	m := newTestMachine(t)

	output := &bytes.Buffer{}
	mon := monitor.NewMonitor(m, strings.NewReader("uq"), output)

	if err := mon.Run(); err != nil {
		t.Fatal(err)
	}

	test.Equate(t, strings.Contains(output.String(), "no memory checkpoint"), true)
}

func TestQuitOnStreamEnd(t *testing.T) {
	m := newTestMachine(t)

	mon := monitor.NewMonitor(m, strings.NewReader(""), &bytes.Buffer{})
	if err := mon.Run(); err != nil {
		t.Fatal(err)
	}
}
