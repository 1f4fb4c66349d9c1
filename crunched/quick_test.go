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

package crunched_test

import (
	"bytes"
	"testing"

	"github.com/clockwork-emu/clockwork/crunched"
	"github.com/clockwork-emu/clockwork/test"
)

func TestEmptyData_Quick(t *testing.T) {
	// create 100 bytes of empty data
	qa := crunched.NewQuick(100)

	// keep a copy of the data before crunching
	preCrunch := make([]byte, len(*qa.Data()))
	copy(preCrunch, *qa.Data())

	// data should not be crunched
	test.Equate(t, qa.IsCrunched(), false)

	// take a snapshot of the data
	qb := qa.Snapshot()

	// the snapshotted data should be crunched. the original data should be
	// left uncrunched
	test.Equate(t, qb.IsCrunched(), true)
	test.Equate(t, qa.IsCrunched(), false)

	// inspect the crunched data
	inspection := qb.(crunched.Inspection).Inspect()
	test.Equate(t, bytes.Equal(*inspection, []byte{0, 99}), true)

	// check that the uncrunched data is the same as it was before
	test.Equate(t, bytes.Equal(preCrunch, *qb.Data()), true)

	// obtaining the data from the snapshot should leave the data in the
	// snapshot in an uncrunched state
	test.Equate(t, qb.IsCrunched(), false)
}

func TestUncompressableData_quick(t *testing.T) {
	// create 256 bytes of empty data
	qa := crunched.NewQuick(256)

	// insert data that can't be compressed by the quick method
	data := qa.Data()
	for i := 0; i < len(*data); i++ {
		(*data)[i] = byte(i)
	}

	preCrunch := make([]byte, len(*data))
	copy(preCrunch, *data)

	// take a snapshot of the data
	qb := qa.Snapshot()

	// the snapshotted data should not be crunched
	test.Equate(t, qb.IsCrunched(), false)

	// check that the uncrunched data is the same as it was before
	test.Equate(t, bytes.Equal(preCrunch, *qb.Data()), true)
}

func TestEmptyData_ExampleData(t *testing.T) {
	qa := crunched.NewQuick(20)

	data := qa.Data()
	copy(*data, []byte{1, 2, 3, 3, 3, 3, 4, 4, 5, 6})

	// snapshot should successfully crunch the data
	qb := qa.Snapshot()
	test.Equate(t, qb.IsCrunched(), true)

	inspection := qb.(crunched.Inspection).Inspect()
	expectedData := []byte{1, 0, 2, 0, 3, 3, 4, 1, 5, 0, 6, 0, 0, 9}
	test.Equate(t, bytes.Equal(*inspection, expectedData), true)
}
