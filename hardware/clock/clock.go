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

// Package clock implements the master clock that all component timing in a
// machine derives from. There is exactly one tick counter; every component
// (the CPU included) is registered with a fixed integer divisor and is
// stepped from the single driving loop. There are no goroutines and no
// floating-point time deltas anywhere in the timing path.
//
// Components registered with the same divisor are stepped in registration
// order, so within one master-clock unit every component observes the fully
// committed state of the previous unit.
package clock

// Ticker is the tick contract implemented by every component that derives
// its cadence from the master clock.
type Ticker interface {
	Tick() error
}

type entry struct {
	ticker  Ticker
	divisor uint64
}

// Clock is the single master tick counter for a machine.
type Clock struct {
	ticks   uint64
	entries []entry
}

// NewClock is the preferred method of initialisation for the Clock type.
func NewClock() *Clock {
	return &Clock{}
}

// Register a component with the master clock. The component's Tick()
// function is called once every divisor master-clock units. A divisor of
// less than one is treated as one.
func (c *Clock) Register(t Ticker, divisor int) {
	if divisor < 1 {
		divisor = 1
	}
	c.entries = append(c.entries, entry{ticker: t, divisor: uint64(divisor)})
}

// Step the master clock by one unit, ticking every component whose divisor
// aligns. The first error from a component stops the step and is returned.
func (c *Clock) Step() error {
	for _, e := range c.entries {
		if c.ticks%e.divisor == 0 {
			if err := e.ticker.Tick(); err != nil {
				return err
			}
		}
	}
	c.ticks++
	return nil
}

// Run the master clock for the specified number of units.
func (c *Clock) Run(units int) error {
	for i := 0; i < units; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Ticks returns the number of master-clock units elapsed since power-on.
func (c *Clock) Ticks() uint64 {
	return c.ticks
}
