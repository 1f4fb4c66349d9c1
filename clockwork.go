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

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/clockwork-emu/clockwork/conformance"
	"github.com/clockwork-emu/clockwork/disassembly"
	"github.com/clockwork-emu/clockwork/hardware/machine"
	"github.com/clockwork-emu/clockwork/hardware/memory"
	"github.com/clockwork-emu/clockwork/logger"
	"github.com/clockwork-emu/clockwork/modalflag"
	"github.com/clockwork-emu/clockwork/monitor"
	"github.com/clockwork-emu/clockwork/performance"
	"github.com/clockwork-emu/clockwork/statsview"
	"github.com/clockwork-emu/clockwork/version"
)

// the number of instructions shown by the disasm mode unless told
// otherwise.
const disasmWindow = 16

// the supervisor stack installed in the 68000 reset vector when a program
// is loaded from the command line.
const m68kStack = 0x00010000

func main() {
	os.Exit(launch(os.Args[1:], os.Stdout))
}

func launch(args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("RUN", "DISASM", "MONITOR", "PERFORMANCE", "CONFORMANCE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0

	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return 10
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, output)

	case "DISASM":
		err = disasm(md, output)

	case "MONITOR":
		err = monitorMode(md, output)

	case "PERFORMANCE":
		err = perform(md, output)

	case "CONFORMANCE":
		err = conform(md, output)

	case "VERSION":
		ver, rev, _ := version.Version()
		fmt.Fprintf(output, "%s %s (%s)\n", version.ApplicationName, ver, rev)
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %v\n", md, err)
		return 20
	}

	return 0
}

// machineFlags gathers the flags common to every mode that powers on a
// machine.
type machineFlags struct {
	arch    *string
	origin  *string
	divisor *int
	random  *bool
	seed    *int64
}

func addMachineFlags(md *modalflag.Modes) machineFlags {
	return machineFlags{
		arch:    md.AddString("arch", "6502", "cpu architecture: 6502, z80, 68000"),
		origin:  md.AddString("origin", "", "program load address (default depends on arch)"),
		divisor: md.AddInt("divisor", 1, "master-clock divisor for the cpu"),
		random:  md.AddBool("random", false, "randomise power-on state"),
		seed:    md.AddInt64("seed", 0, "seed for power-on state randomisation"),
	}
}

// createMachine powers on a machine and loads the program file at the
// origin address. Reset vectors are pointed at the program so the ticked
// reset sequence lands on the first instruction.
func createMachine(flgs machineFlags, program string) (*machine.Machine, uint32, error) {
	arch := machine.Arch(*flgs.arch)

	origin, err := parseOrigin(*flgs.origin, arch)
	if err != nil {
		return nil, 0, err
	}

	m, err := machine.NewMachine(machine.Spec{
		Arch:        arch,
		CPUDivisor:  *flgs.divisor,
		RandomState: *flgs.random,
		RandomSeed:  *flgs.seed,
	})
	if err != nil {
		return nil, 0, err
	}

	data, err := os.ReadFile(program)
	if err != nil {
		return nil, 0, err
	}
	m.Mem.PokeBytes(origin, data...)

	switch arch {
	case machine.MOS6502:
		m.Mem.Poke(0xfffc, uint8(origin))
		m.Mem.Poke(0xfffd, uint8(origin>>8))

	case machine.Z80:
		// the z80 always resets to address zero. jump to the program if it
		// is loaded anywhere else
		if origin != 0 {
			m.Mem.PokeBytes(0x0000, 0xc3, uint8(origin), uint8(origin>>8))
		}

	case machine.M68K:
		pokeLong(m.Mem, 0x0000, m68kStack)
		pokeLong(m.Mem, 0x0004, origin)
	}

	return m, origin, nil
}

func parseOrigin(s string, arch machine.Arch) (uint32, error) {
	if s == "" {
		switch arch {
		case machine.Z80:
			return 0x0000, nil
		case machine.M68K:
			return 0x1000, nil
		default:
			return 0x0200, nil
		}
	}

	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("origin address: %v", err)
	}
	return uint32(v), nil
}

func pokeLong(mem *memory.Memory, addr uint32, val uint32) {
	mem.PokeBytes(addr, uint8(val>>24), uint8(val>>16), uint8(val>>8), uint8(val))
}

func run(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	flgs := addMachineFlags(md)
	limit := md.AddInt("limit", 100000000, "maximum number of master-clock units to run")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("statsview", false, "run stats server")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(output)
	} else {
		logger.SetEcho(nil)
	}

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("statsview not compiled in (build with the statsview tag)")
		}
		statsview.Launch(output)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program file required for %s mode", md)
	case 1:
		m, _, err := createMachine(flgs, md.GetArg(0))
		if err != nil {
			return err
		}

		units, err := m.Run(*limit)
		if err != nil {
			return err
		}

		fmt.Fprintf(output, "ran %d units\n", units)
		fmt.Fprintf(output, "%s\n", m.Snapshot())
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func disasm(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	arch := md.AddString("arch", "6502", "cpu architecture: 6502, z80, 68000")
	origin := md.AddString("origin", "", "program load address (default depends on arch)")
	count := md.AddInt("n", disasmWindow, "number of instructions to disassemble")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program file required for %s mode", md)
	case 1:
		a := machine.Arch(*arch)

		addr, err := parseOrigin(*origin, a)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(md.GetArg(0))
		if err != nil {
			return err
		}

		var dis disassembly.Disassembler
		var mem *memory.Memory
		switch a {
		case machine.MOS6502:
			dis = disassembly.MOS6502
			mem = memory.NewMemory(0x10000)
		case machine.Z80:
			dis = disassembly.Z80
			mem = memory.NewMemory(0x10000)
		case machine.M68K:
			dis = disassembly.M68K
			mem = memory.NewMemory(0x1000000)
		default:
			return fmt.Errorf("unsupported architecture: %s", *arch)
		}
		mem.PokeBytes(addr, data...)

		entries, err := dis(mem, addr, *count)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(output, "%s\n", e)
		}
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func monitorMode(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	flgs := addMachineFlags(md)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program file required for %s mode", md)
	case 1:
		m, _, err := createMachine(flgs, md.GetArg(0))
		if err != nil {
			return err
		}
		return monitor.RunInteractive(m, output)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func perform(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	flgs := addMachineFlags(md)
	profile := md.AddString("profile", "NONE", "run profiler: NONE, CPU, MEM, ALL")
	duration := md.AddString("duration", "5s", "run duration")
	stats := md.AddBool("statsview", false, "run stats server")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	prf, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("statsview not compiled in (build with the statsview tag)")
		}
		statsview.Launch(output)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("program file required for %s mode", md)
	case 1:
		m, _, err := createMachine(flgs, md.GetArg(0))
		if err != nil {
			return err
		}
		return performance.Check(output, prf, m, *duration)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func conform(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) == 0 {
		return fmt.Errorf("fixture files required for %s mode", md)
	}

	fails := 0
	for _, fn := range md.RemainingArgs() {
		data, err := os.ReadFile(fn)
		if err != nil {
			return err
		}

		f, err := conformance.Load(data)
		if err != nil {
			return err
		}

		if err := conformance.Run(f); err != nil {
			fails++
			fmt.Fprintf(output, "fail  %s: %v\n", f.Name, err)
		} else {
			fmt.Fprintf(output, "ok    %s\n", f.Name)
		}
	}

	if fails > 0 {
		return fmt.Errorf("%d fixture(s) failed", fails)
	}

	return nil
}
