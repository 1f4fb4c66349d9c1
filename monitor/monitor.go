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

// Package monitor is a minimal machine-language monitor: single-keypress
// stepping, register display, disassembly of the upcoming instructions and
// a graphviz dump of the machine state. It drives the machine only at
// instruction boundaries, the same constraint the breakpoint system
// observes.
package monitor

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"

	"github.com/clockwork-emu/clockwork/crunched"
	"github.com/clockwork-emu/clockwork/disassembly"
	"github.com/clockwork-emu/clockwork/hardware/machine"
	"github.com/clockwork-emu/clockwork/logger"
)

// the number of instructions shown by the disassembly command.
const windowSize = 8

// runChunk is how many master-clock units the run command executes between
// keypress polls.
const runChunk = 1000000

// Monitor couples a machine with a command stream. Commands are single
// bytes so the interactive session works from a cbreak-mode terminal;
// anything implementing io.Reader can drive it.
type Monitor struct {
	mach   *machine.Machine
	input  io.Reader
	output io.Writer

	// dot output for the v command. defaults to a file in the working
	// directory; the tests point it elsewhere
	DumpWriter io.Writer

	// compressed memory image taken by the m command
	checkpoint crunched.Data
}

// NewMonitor is the preferred method of initialisation for the Monitor
// type.
func NewMonitor(mach *machine.Machine, input io.Reader, output io.Writer) *Monitor {
	return &Monitor{mach: mach, input: input, output: output}
}

// RunInteractive attaches the monitor to the controlling terminal in
// cbreak mode and runs the command loop until the quit command.
func RunInteractive(mach *machine.Machine, output io.Writer) error {
	t, err := newTerminal(os.Stdin)
	if err != nil {
		return err
	}
	defer t.restore()

	return NewMonitor(mach, t, output).Run()
}

// Run the command loop until the quit command or the command stream ends.
func (mon *Monitor) Run() error {
	mon.status()

	buf := make([]byte, 1)
	for {
		n, err := mon.input.Read(buf)
		if err != nil || n == 0 {
			// the command stream ending is a quit, not a failure
			return nil
		}

		quit, err := mon.command(buf[0])
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (mon *Monitor) command(key byte) (bool, error) {
	switch key {
	case 'q':
		return true, nil

	case 's':
		if err := mon.mach.Step(); err != nil {
			return false, err
		}
		mon.status()

	case 'i':
		if _, err := mon.mach.StepInstruction(runChunk); err != nil {
			return false, err
		}
		mon.status()

	case 'r':
		units, err := mon.mach.Run(runChunk)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(mon.output, "ran %d units\n", units)
		mon.status()

	case 'd':
		if err := mon.disassemble(); err != nil {
			return false, err
		}

	case 'v':
		if err := mon.dump(); err != nil {
			return false, err
		}

	case 'm':
		mon.checkpoint = mon.mach.CheckpointMemory()
		_, sz := mon.checkpoint.Size()
		fmt.Fprintf(mon.output, "memory checkpoint taken (%d bytes)\n", sz)

	case 'u':
		if mon.checkpoint == nil {
			fmt.Fprint(mon.output, "no memory checkpoint\n")
		} else {
			mon.mach.RestoreMemory(mon.checkpoint)
			fmt.Fprint(mon.output, "memory checkpoint restored\n")
		}

	case 'l':
		logger.Tail(mon.output, 10)

	case 'h', '?':
		fmt.Fprint(mon.output, "s step  i instruction  r run  d disasm  v dump\n")
		fmt.Fprint(mon.output, "m checkpoint memory  u restore memory  l log  q quit\n")
	}

	return false, nil
}

// status prints the snapshot line the monitor shows after every stepping
// command.
func (mon *Monitor) status() {
	fmt.Fprintf(mon.output, "%s\n", mon.mach.Snapshot())
}

func (mon *Monitor) disassemble() error {
	var dis disassembly.Disassembler
	switch mon.mach.Arch {
	case machine.MOS6502:
		dis = disassembly.MOS6502
	case machine.Z80:
		dis = disassembly.Z80
	case machine.M68K:
		dis = disassembly.M68K
	}

	entries, err := dis(mon.mach.Mem, mon.mach.PC(), windowSize)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(mon.output, "%s\n", e)
	}
	return nil
}

// dump renders the machine snapshot as graphviz dot, suitable for piping
// through the dot command.
func (mon *Monitor) dump() error {
	out := mon.DumpWriter
	if out == nil {
		f, err := os.Create("clockwork_dump.dot")
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
		fmt.Fprint(mon.output, "machine state written to clockwork_dump.dot\n")
	}

	snap := mon.mach.Snapshot()
	memviz.Map(out, &snap)
	return nil
}
