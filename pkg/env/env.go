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

// Package env implements the simulator environment table: a flat array of
// named, typed variables. Some are predefined at start-up and configure the
// simulator; the rest are created by the user with the ENV command.
package env

import (
	"fmt"
	"io"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/simerr"
)

type Type uint

const (
	TYP_NIL Type = iota
	TYP_BOOL
	TYP_INT
	TYP_UINT
	TYP_STR
	TYP_EXT_ADR
)

const (
	MAX_ENV_NAME_SIZE = 32
	MAX_ENV_ENTRIES   = 256
)

const (
	ENV_TRUE                = "TRUE"
	ENV_FALSE               = "FALSE"
	ENV_PROG_VERSION        = "PROG_VERSION"
	ENV_GIT_BRANCH          = "GIT_BRANCH"
	ENV_PATCH_LEVEL         = "PATCH_LEVEL"
	ENV_SHOW_CMD_CNT        = "SHOW_CMD_CNT"
	ENV_CMD_CNT             = "CMD_CNT"
	ENV_ECHO_CMD_INPUT      = "ECHO_CMD_INPUT"
	ENV_EXIT_CODE           = "EXIT_CODE"
	ENV_RDX_DEFAULT         = "RDX_DEFAULT"
	ENV_WORDS_PER_LINE      = "WORDS_PER_LINE"
	ENV_SHOW_PSTAGE_INFO    = "SHOW_PSTAGE_INFO"
	ENV_STEP_IN_CLOCKS      = "STEP_IN_CLOCKS"
	ENV_I_TLB_SETS          = "I_TLB_SETS"
	ENV_I_TLB_SIZE          = "I_TLB_SIZE"
	ENV_D_TLB_SETS          = "D_TLB_SETS"
	ENV_D_TLB_SIZE          = "D_TLB_SIZE"
	ENV_I_CACHE_SETS        = "I_CACHE_SETS"
	ENV_I_CACHE_SIZE        = "I_CACHE_SIZE"
	ENV_I_CACHE_LINE_SIZE   = "I_CACHE_LINE_SIZE"
	ENV_D_CACHE_SETS        = "D_CACHE_SETS"
	ENV_D_CACHE_SIZE        = "D_CACHE_SIZE"
	ENV_D_CACHE_LINE_SIZE   = "D_CACHE_LINE_SIZE"
	ENV_MEM_SIZE            = "MEM_SIZE"
	ENV_MEM_BANKS           = "MEM_BANKS"
	ENV_MEM_BANK_SIZE       = "MEM_BANK_SIZE"
	ENV_WIN_MIN_ROWS        = "WIN_MIN_ROWS"
	ENV_WIN_TEXT_LINE_WIDTH = "WIN_TEXT_LINE_WIDTH"
)

// Build information shown in the welcome banner. Overridable at link time.
var (
	Version    = "B.00.09"
	GitBranch  = "main"
	PatchLevel = 10
)

const DEFAULT_MEM_SIZE uint32 = 0xF0000000

type Value struct {
	Type Type
	Bool bool
	Int  int32
	Uint uint32
	Str  string
	Seg  uint32
	Ofs  uint32
}

func Bool(value bool) Value {
	return Value{Type: TYP_BOOL, Bool: value}
}

func Int(value int32) Value {
	return Value{Type: TYP_INT, Int: value}
}

func Uint(value uint32) Value {
	return Value{Type: TYP_UINT, Uint: value}
}

func Str(value string) Value {
	return Value{Type: TYP_STR, Str: value}
}

func ExtAdr(seg, ofs uint32) Value {
	return Value{Type: TYP_EXT_ADR, Seg: seg, Ofs: ofs}
}

func (val Value) isNumeric() bool {
	return val.Type == TYP_INT || val.Type == TYP_UINT
}

type Entry struct {
	Name       string
	Valid      bool
	Predefined bool
	ReadOnly   bool
	Value
}

type Table struct {
	entries []Entry
	hwm     int
}

func New(size int) *Table {
	if size <= 0 {
		size = MAX_ENV_ENTRIES
	}

	return &Table{entries: make([]Entry, size)}
}

func normalize(name string) string {
	name = strings.ToUpper(name)

	if len(name) > MAX_ENV_NAME_SIZE {
		name = name[:MAX_ENV_NAME_SIZE]
	}

	return name
}

func (tab *Table) lookup(name string) int {
	name = normalize(name)

	for i := 0; i < tab.hwm; i++ {
		if tab.entries[i].Valid && tab.entries[i].Name == name {
			return i
		}
	}

	return -1
}

func (tab *Table) findFree() int {
	for i := 0; i < tab.hwm; i++ {
		if !tab.entries[i].Valid {
			return i
		}
	}

	if tab.hwm < len(tab.entries) {
		tab.hwm++
		return tab.hwm - 1
	}

	return -1
}

// Enter creates a new entry without checking for an existing one.
func (tab *Table) Enter(name string, val Value, predefined, readOnly bool) error {
	index := tab.findFree()

	if index < 0 {
		return simerr.ERR_ENV_TABLE_FULL
	}

	tab.entries[index] = Entry{
		Name:       normalize(name),
		Valid:      true,
		Predefined: predefined,
		ReadOnly:   readOnly,
		Value:      val,
	}

	return nil
}

// Set assigns a value, creating a user entry when the name is unknown. A
// predefined entry keeps its type: numeric entries accept any number and are
// converted, everything else must match exactly.
func (tab *Table) Set(name string, val Value) error {
	index := tab.lookup(name)

	if index < 0 {
		return tab.Enter(name, val, false, false)
	}

	entry := &tab.entries[index]

	if entry.Predefined {
		switch {
		case entry.isNumeric() && val.isNumeric():
			if entry.Type == TYP_INT && val.Type == TYP_UINT {
				val = Int(int32(val.Uint))
			} else if entry.Type == TYP_UINT && val.Type == TYP_INT {
				val = Uint(uint32(val.Int))
			}

		case entry.Type != val.Type:
			return simerr.ERR_ENV_VALUE_EXPR
		}
	}

	entry.Value = val

	return nil
}

func (tab *Table) Remove(name string) error {
	index := tab.lookup(name)

	if index < 0 {
		return simerr.ERR_ENV_VAR_NOT_FOUND
	}

	if tab.entries[index].Predefined {
		return simerr.ERR_ENV_PREDEFINED
	}

	tab.entries[index] = Entry{}

	if index == tab.hwm-1 {
		for tab.hwm > 0 && !tab.entries[tab.hwm-1].Valid {
			tab.hwm--
		}
	}

	return nil
}

func (tab *Table) Get(name string) (Value, bool) {
	if index := tab.lookup(name); index >= 0 {
		return tab.entries[index].Value, true
	}

	return Value{}, false
}

func (tab *Table) Entry(name string) (Entry, bool) {
	if index := tab.lookup(name); index >= 0 {
		return tab.entries[index], true
	}

	return Entry{}, false
}

// Entries returns a copy of the valid entries in table order.
func (tab *Table) Entries() []Entry {
	result := make([]Entry, 0, tab.hwm)

	for i := 0; i < tab.hwm; i++ {
		if tab.entries[i].Valid {
			result = append(result, tab.entries[i])
		}
	}

	return result
}

func (tab *Table) IsValid(name string) bool {
	return tab.lookup(name) >= 0
}

func (tab *Table) IsReadOnly(name string) bool {
	entry, ok := tab.Entry(name)
	return ok && entry.ReadOnly
}

func (tab *Table) IsPredefined(name string) bool {
	entry, ok := tab.Entry(name)
	return ok && entry.Predefined
}

func (tab *Table) GetBool(name string, def bool) bool {
	if val, ok := tab.Get(name); ok && val.Type == TYP_BOOL {
		return val.Bool
	}

	return def
}

func (tab *Table) GetInt(name string, def int32) int32 {
	if val, ok := tab.Get(name); ok {
		switch val.Type {
		case TYP_INT:
			return val.Int
		case TYP_UINT:
			return int32(val.Uint)
		}
	}

	return def
}

func (tab *Table) GetUint(name string, def uint32) uint32 {
	if val, ok := tab.Get(name); ok {
		switch val.Type {
		case TYP_INT:
			return uint32(val.Int)
		case TYP_UINT:
			return val.Uint
		}
	}

	return def
}

func (tab *Table) GetStr(name string, def string) string {
	if val, ok := tab.Get(name); ok && val.Type == TYP_STR {
		return val.Str
	}

	return def
}

func (tab *Table) GetExtAdr(name string, seg, ofs uint32) (uint32, uint32) {
	if val, ok := tab.Get(name); ok && val.Type == TYP_EXT_ADR {
		return val.Seg, val.Ofs
	}

	return seg, ofs
}

func (tab *Table) SetBool(name string, value bool) error {
	return tab.Set(name, Bool(value))
}

func (tab *Table) SetInt(name string, value int32) error {
	return tab.Set(name, Int(value))
}

func (tab *Table) SetUint(name string, value uint32) error {
	return tab.Set(name, Uint(value))
}

func (tab *Table) SetStr(name string, value string) error {
	return tab.Set(name, Str(value))
}

func (tab *Table) SetExtAdr(name string, seg, ofs uint32) error {
	return tab.Set(name, ExtAdr(seg, ofs))
}

func (tab *Table) Display(w io.Writer) {
	for i := 0; i < tab.hwm; i++ {
		if tab.entries[i].Valid {
			displayEntry(w, &tab.entries[i])
		}
	}
}

func (tab *Table) DisplayEntry(w io.Writer, name string) error {
	index := tab.lookup(name)

	if index < 0 {
		return simerr.ERR_ENV_VAR_NOT_FOUND
	}

	displayEntry(w, &tab.entries[index])

	return nil
}

func displayEntry(w io.Writer, entry *Entry) {
	fmt.Fprintf(w, "%-32s", entry.Name)

	switch entry.Type {
	case TYP_INT:
		fmt.Fprintf(w, "NUM:     %d", entry.Int)
	case TYP_UINT:
		fmt.Fprintf(w, "UNUM:    %#x", entry.Uint)
	case TYP_EXT_ADR:
		fmt.Fprintf(w, "EXT_ADR: 0x%04x.0x%08x", entry.Seg, entry.Ofs)
	case TYP_STR:
		fmt.Fprintf(w, "STR:     \"%s\"", entry.Str)
	case TYP_BOOL:
		if entry.Bool {
			fmt.Fprint(w, "BOOL:    TRUE")
		} else {
			fmt.Fprint(w, "BOOL:    FALSE")
		}
	default:
		fmt.Fprint(w, "Unknown type")
	}

	fmt.Fprintln(w)
}

type predefined struct {
	name     string
	value    Value
	readOnly bool
}

// SetupPredefined seeds the table with the variables the simulator reads.
func (tab *Table) SetupPredefined() error {
	table := []predefined{
		{ENV_TRUE, Bool(true), true},
		{ENV_FALSE, Bool(false), true},
		{ENV_PROG_VERSION, Str(Version), true},
		{ENV_GIT_BRANCH, Str(GitBranch), true},
		{ENV_PATCH_LEVEL, Int(int32(PatchLevel)), true},
		{ENV_SHOW_CMD_CNT, Bool(true), false},
		{ENV_CMD_CNT, Int(0), true},
		{ENV_ECHO_CMD_INPUT, Bool(false), false},
		{ENV_EXIT_CODE, Int(0), false},
		{ENV_RDX_DEFAULT, Int(16), false},
		{ENV_WORDS_PER_LINE, Int(8), false},
		{ENV_SHOW_PSTAGE_INFO, Bool(false), false},
		{ENV_STEP_IN_CLOCKS, Bool(false), false},
		{ENV_I_TLB_SETS, Int(1), false},
		{ENV_I_TLB_SIZE, Int(1024), false},
		{ENV_D_TLB_SETS, Int(1), false},
		{ENV_D_TLB_SIZE, Int(1024), false},
		{ENV_I_CACHE_SETS, Int(1), false},
		{ENV_I_CACHE_SIZE, Int(1024), false},
		{ENV_I_CACHE_LINE_SIZE, Int(4), false},
		{ENV_D_CACHE_SETS, Int(1), false},
		{ENV_D_CACHE_SIZE, Int(1024), false},
		{ENV_D_CACHE_LINE_SIZE, Int(4), false},
		{ENV_MEM_SIZE, Uint(DEFAULT_MEM_SIZE), false},
		{ENV_MEM_BANKS, Int(1), false},
		{ENV_MEM_BANK_SIZE, Uint(DEFAULT_MEM_SIZE), false},
		{ENV_WIN_MIN_ROWS, Int(24), false},
		{ENV_WIN_TEXT_LINE_WIDTH, Int(90), false},
	}

	for _, def := range table {
		if err := tab.Enter(def.name, def.value, true, def.readOnly); err != nil {
			return err
		}
	}

	return nil
}
