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

package random

import (
	"math/rand"
	"time"
)

// the base seed for all unseeded instances
var baseSeed int64

// initialise base seed
func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Random is a stream of random numbers used when scrambling the power-on
// state of a machine.
type Random struct {
	rnd *rand.Rand
}

// NewRandom is the preferred method of initialisation for the Random type.
// The stream is different on every run of the program.
func NewRandom() *Random {
	return &Random{rnd: rand.New(rand.NewSource(baseSeed))}
}

// NewSeededRandom returns a Random that produces the same stream for the
// same seed. Useful when a scrambled power-on state must be reproducible.
func NewSeededRandom(seed int64) *Random {
	return &Random{rnd: rand.New(rand.NewSource(seed))}
}

func (rnd *Random) Intn(n int) int {
	return rnd.rnd.Intn(n)
}

func (rnd *Random) Uint8() uint8 {
	return uint8(rnd.rnd.Intn(256))
}

func (rnd *Random) Uint32() uint32 {
	return rnd.rnd.Uint32()
}
