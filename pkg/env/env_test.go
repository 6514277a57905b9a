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

package env_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
)

func newTable(t *testing.T) *env.Table {
	tab := env.New(0)
	require.NoError(t, tab.SetupPredefined())
	return tab
}

func TestPredefined(t *testing.T) {
	assert := assert.New(t)

	tab := newTable(t)

	assert.Equal(int32(16), tab.GetInt(env.ENV_RDX_DEFAULT, 0))
	assert.Equal(int32(8), tab.GetInt("words_per_line", 0))
	assert.True(tab.GetBool(env.ENV_SHOW_CMD_CNT, false))
	assert.Equal(env.Version, tab.GetStr(env.ENV_PROG_VERSION, ""))
	assert.True(tab.IsReadOnly(env.ENV_CMD_CNT))
	assert.True(tab.IsReadOnly(env.ENV_PROG_VERSION))
	assert.True(tab.IsReadOnly(env.ENV_GIT_BRANCH))
	assert.True(tab.IsReadOnly(env.ENV_PATCH_LEVEL))
	assert.True(tab.IsPredefined(env.ENV_EXIT_CODE))
	assert.False(tab.IsReadOnly(env.ENV_EXIT_CODE))
}

func TestSetTypes(t *testing.T) {
	tests := []struct {
		Name  string
		Value env.Value
		Err   error
	}{
		{env.ENV_RDX_DEFAULT, env.Int(10), nil},
		{env.ENV_RDX_DEFAULT, env.Uint(8), nil},
		{env.ENV_RDX_DEFAULT, env.Str("x"), simerr.ERR_ENV_VALUE_EXPR},
		{env.ENV_SHOW_CMD_CNT, env.Bool(false), nil},
		{env.ENV_SHOW_CMD_CNT, env.Int(1), simerr.ERR_ENV_VALUE_EXPR},
		{env.ENV_PROG_VERSION, env.ExtAdr(1, 2), simerr.ERR_ENV_VALUE_EXPR},
		{"MYVAR", env.Int(1), nil},
		{"MYVAR", env.Str("now a string"), nil},
	}

	tab := newTable(t)

	for i, test := range tests {
		err := tab.Set(test.Name, test.Value)

		if err != test.Err {
			t.Errorf(
				"Set result mismatch"+
					"\nwant:%v (tests[%d].Err)"+
					"\nhave:%v",
				test.Err,
				i,
				err,
			)
		}
	}

	assert.Equal(t, int32(8), tab.GetInt(env.ENV_RDX_DEFAULT, 0))
	assert.Equal(t, "now a string", tab.GetStr("myvar", ""))

	val, ok := tab.Get(env.ENV_RDX_DEFAULT)
	assert.True(t, ok)
	assert.Equal(t, env.TYP_INT, val.Type)
}

func TestRemove(t *testing.T) {
	assert := assert.New(t)

	tab := newTable(t)
	base := len(tab.Entries())

	assert.NoError(tab.SetInt("A", 1))
	assert.NoError(tab.SetInt("B", 2))
	assert.Len(tab.Entries(), base+2)

	assert.Equal(simerr.ERR_ENV_PREDEFINED, tab.Remove(env.ENV_RDX_DEFAULT))
	assert.Equal(simerr.ERR_ENV_VAR_NOT_FOUND, tab.Remove("NOPE"))

	assert.NoError(tab.Remove("a"))
	assert.False(tab.IsValid("A"))

	// The freed slot is reused before the table grows.
	assert.NoError(tab.SetInt("C", 3))
	names := []string{}
	for _, entry := range tab.Entries()[base:] {
		names = append(names, entry.Name)
	}
	assert.Equal([]string{"C", "B"}, names)
}

func TestTableFull(t *testing.T) {
	tab := env.New(2)

	assert.NoError(t, tab.SetInt("A", 1))
	assert.NoError(t, tab.SetInt("B", 1))
	assert.Equal(t, simerr.ERR_ENV_TABLE_FULL, tab.SetInt("C", 1))

	assert.NoError(t, tab.Remove("B"))
	assert.NoError(t, tab.SetInt("C", 1))
}

func TestDisplay(t *testing.T) {
	tab := env.New(8)

	tab.SetInt("N", -5)
	tab.SetUint("U", 255)
	tab.SetStr("S", "hello")
	tab.SetBool("B", true)
	tab.SetExtAdr("E", 1, 0x100)

	var out bytes.Buffer
	tab.Display(&out)

	assert.Equal(
		t,
		"N                               NUM:     -5\n"+
			"U                               UNUM:    0xff\n"+
			"S                               STR:     \"hello\"\n"+
			"B                               BOOL:    TRUE\n"+
			"E                               EXT_ADR: 0x0001.0x00000100\n",
		out.String(),
	)

	out.Reset()
	assert.Equal(t, simerr.ERR_ENV_VAR_NOT_FOUND, tab.DisplayEntry(&out, "X"))
}

func TestGetterDefaults(t *testing.T) {
	tab := env.New(4)
	tab.SetStr("S", "x")

	assert.Equal(t, int32(7), tab.GetInt("S", 7))
	assert.Equal(t, true, tab.GetBool("MISSING", true))

	seg, ofs := tab.GetExtAdr("S", 3, 4)
	assert.Equal(t, uint32(3), seg)
	assert.Equal(t, uint32(4), ofs)
}
