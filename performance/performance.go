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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/clockwork-emu/clockwork/curated"
	"github.com/clockwork-emu/clockwork/hardware/cpu"
	"github.com/clockwork-emu/clockwork/hardware/machine"
)

// performanceBrake is how many master-clock units run between checks of
// the measurement timer. checking the timer channel is relatively
// expensive.
const performanceBrake = 100000

// Check the performance of the emulation using the supplied machine.
//
// The machine runs for the specified duration, or until its CPU halts,
// and a CPU profile, a memory profile, or both are created as defined by
// the Profile argument.
func Check(output io.Writer, profile Profile, m *machine.Machine, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	units := 0
	var elapsed float64

	runner := func() error {
		// signals true when the measurement period has expired
		timerChan := make(chan bool)
		time.AfterFunc(dur, func() {
			timerChan <- true
		})

		start := time.Now()
		defer func() {
			elapsed = time.Since(start).Seconds()
		}()

		for {
			n, err := m.Run(performanceBrake)
			units += n
			if err != nil {
				return err
			}
			if m.CPU.Phase() == cpu.Halted {
				return nil
			}

			select {
			case <-timerChan:
				return nil
			default:
			}
		}
	}

	err = RunProfiler(profile, "performance", runner)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	output.Write([]byte(fmt.Sprintf("%.2f MHz (%d units in %.2f seconds)\n",
		float64(units)/elapsed/1e6, units, elapsed)))

	return nil
}
