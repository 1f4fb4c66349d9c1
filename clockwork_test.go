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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clockwork-emu/clockwork/test"
)

func writeProgram(t *testing.T, data []byte) string {
	t.Helper()

	fn := filepath.Join(t.TempDir(), "program.bin")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestRunMode(t *testing.T) {
	fn := writeProgram(t, []byte{
		0xa9, 0x42, // LDA #$42
		0x02, // KIL
	})

	output := &bytes.Buffer{}
	exit := launch([]string{"RUN", fn}, output)
	test.Equate(t, exit, 0)
	test.Equate(t, strings.Contains(output.String(), "ran "), true)
}

func TestDisasmMode(t *testing.T) {
	fn := writeProgram(t, []byte{
		0xa9, 0x42, // LDA #$42
		0xea, // NOP
		0x02, // KIL
	})

	output := &bytes.Buffer{}
	exit := launch([]string{"DISASM", "-n", "3", fn}, output)
	test.Equate(t, exit, 0)
	test.Equate(t, strings.Contains(output.String(), "LDA"), true)
	test.Equate(t, strings.Contains(output.String(), "KIL"), true)
}

func TestConformanceMode(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "lda.json")
	err := os.WriteFile(fn, []byte(`{
		"version": 1,
		"arch": "6502",
		"name": "lda immediate",
		"initial_state": {"registers": {"pc": 512, "sp": 255}},
		"opcode_bytes": [169, 1],
		"final_state": {"registers": {"a": 1, "pc": 514}}
	}`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	output := &bytes.Buffer{}
	exit := launch([]string{"CONFORMANCE", fn}, output)
	test.Equate(t, exit, 0)
	test.Equate(t, strings.Contains(output.String(), "ok"), true)
}

func TestUnknownModeFallsBackToRun(t *testing.T) {
	// an unrecognised sub-mode falls back to the default mode with the
	// argument left in place. there is no file of that name so the run
	// mode fails
	output := &bytes.Buffer{}
	exit := launch([]string{"NOSUCHMODE"}, output)
	test.Equate(t, exit, 20)
	test.Equate(t, strings.Contains(output.String(), "error in RUN mode"), true)
}
