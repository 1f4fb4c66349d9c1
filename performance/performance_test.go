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

package performance_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/clockwork-emu/clockwork/hardware/machine"
	"github.com/clockwork-emu/clockwork/performance"
	"github.com/clockwork-emu/clockwork/test"
)

func TestCheckRunsToHalt(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{Arch: machine.MOS6502})
	if err != nil {
		t.Fatal(err)
	}

	m.Mem.Poke(0xfffc, 0x00)
	m.Mem.Poke(0xfffd, 0x20)
	m.Mem.PokeBytes(0x2000,
		0xa9, 0x42, // LDA #$42
		0x02, // KIL
	)

	output := &bytes.Buffer{}
	err = performance.Check(output, performance.ProfileNone, m, "250ms")
	test.ExpectedSuccess(t, err)
	test.Equate(t, strings.Contains(output.String(), "units"), true)
	test.Equate(t, m.MOS6502.A.Value(), 0x42)
}

func TestCheckRejectsBadDuration(t *testing.T) {
	m, err := machine.NewMachine(machine.Spec{Arch: machine.MOS6502})
	if err != nil {
		t.Fatal(err)
	}

	err = performance.Check(&bytes.Buffer{}, performance.ProfileNone, m, "not-a-duration")
	test.ExpectedFailure(t, err)
}

func TestParseProfile(t *testing.T) {
	p, err := performance.ParseProfile("CPU")
	test.ExpectedSuccess(t, err)
	test.Equate(t, p == performance.ProfileCPU, true)

	_, err = performance.ParseProfile("TRACE")
	test.ExpectedFailure(t, err)
}
