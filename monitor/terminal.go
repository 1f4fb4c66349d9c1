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

package monitor

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// terminal puts the controlling tty into cbreak mode so the monitor reads
// single keypresses, no enter key required. Restore must be called before
// the process exits or the shell is left in a broken state.
type terminal struct {
	input    *os.File
	canAttr  unix.Termios
	cbrkAttr unix.Termios
}

func newTerminal(input *os.File) (*terminal, error) {
	t := &terminal{input: input}

	if err := termios.Tcgetattr(input.Fd(), &t.canAttr); err != nil {
		return nil, err
	}
	t.cbrkAttr = t.canAttr
	termios.Cfmakecbreak(&t.cbrkAttr)

	if err := termios.Tcsetattr(input.Fd(), termios.TCSANOW, &t.cbrkAttr); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *terminal) Read(p []byte) (int, error) {
	return t.input.Read(p)
}

func (t *terminal) restore() error {
	return termios.Tcsetattr(t.input.Fd(), termios.TCSANOW, &t.canAttr)
}
