// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package history_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/history"
)

func TestRelative(t *testing.T) {
	assert := assert.New(t)

	var hist history.History

	_, ok := hist.Get(-1)
	assert.False(ok)

	hist.Add("W 1+2")
	hist.Add("W 3+4")

	entry, ok := hist.Get(-1)
	assert.True(ok)
	assert.Equal("W 3+4", entry.Line)
	assert.Equal(1, entry.CmdId)

	entry, ok = hist.Get(-2)
	assert.True(ok)
	assert.Equal("W 1+2", entry.Line)

	_, ok = hist.Get(-3)
	assert.False(ok)

	entry, ok = hist.Get(0)
	assert.True(ok)
	assert.Equal("W 1+2", entry.Line)
}

func TestEviction(t *testing.T) {
	assert := assert.New(t)

	var hist history.History

	for i := 0; i < history.MAX_CMD_HIST+25; i++ {
		assert.Equal(i, hist.Add(fmt.Sprintf("cmd %d", i)))
	}

	assert.Equal(history.MAX_CMD_HIST, hist.Count())

	_, ok := hist.Get(10)
	assert.False(ok)

	entry, ok := hist.Get(30)
	assert.True(ok)
	assert.Equal("cmd 30", entry.Line)

	entry, ok = hist.Get(-history.MAX_CMD_HIST)
	assert.True(ok)
	assert.Equal(25, entry.CmdId)
}

func TestMonotonicIds(t *testing.T) {
	var hist history.History

	for i := 0; i < 3*history.MAX_CMD_HIST/2; i++ {
		hist.Add("x")
	}

	entries := hist.Entries(0)
	assert.Len(t, entries, history.MAX_CMD_HIST)

	for i := 1; i < len(entries); i++ {
		if entries[i].CmdId <= entries[i-1].CmdId {
			t.Errorf(
				"Command id not increasing\nwant:>%d (entries[%d])\nhave:%d",
				entries[i-1].CmdId,
				i-1,
				entries[i].CmdId,
			)
		}
	}
}

func TestEntriesDepth(t *testing.T) {
	var hist history.History

	hist.Add("a")
	hist.Add("b")
	hist.Add("c")

	assert.Equal(t, []history.Entry{{CmdId: 1, Line: "b"}, {CmdId: 2, Line: "c"}}, hist.Entries(2))
	assert.Len(t, hist.Entries(10), 3)
}
