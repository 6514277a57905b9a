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

// Package window draws the simulator screen: a set of fixed and user created
// windows arranged in up to four column stacks above the command pane.
package window

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/lassandro/vcpu32sim/pkg/console"
)

const (
	MAX_TEXT_FIELD_LEN = 132
	MAX_TEXT_LINE_SIZE = 256
	MAX_WIN_ROW_SIZE   = 64
	MAX_WIN_COL_SIZE   = 256
	MAX_WINDOWS        = 32
	MAX_WIN_STACKS     = 4
)

// Fixed slots of the window list. User windows occupy the rest.
const (
	PS_REG_WIN   = 0
	CTRL_REG_WIN = 1
	PL_REG_WIN   = 2
	STATS_WIN    = 3
	FIRST_UWIN   = 4
	LAST_UWIN    = 31
)

type Type int

const (
	WT_NIL          Type = 0
	WT_CMD_WIN      Type = 1
	WT_CONSOLE_WIN  Type = 2
	WT_TEXT_WIN     Type = 3
	WT_PS_WIN       Type = 11
	WT_CR_WIN       Type = 12
	WT_PL_WIN       Type = 13
	WT_ST_WIN       Type = 14
	WT_PM_WIN       Type = 15
	WT_PC_WIN       Type = 16
	WT_ITLB_WIN     Type = 20
	WT_DTLB_WIN     Type = 21
	WT_ITLB_S_WIN   Type = 22
	WT_DTLB_S_WIN   Type = 23
	WT_ICACHE_WIN   Type = 30
	WT_ICACHE_S_WIN Type = 31
	WT_DCACHE_WIN   Type = 32
	WT_DCACHE_S_WIN Type = 33
	WT_UCACHE_WIN   Type = 43
	WT_UCACHE_S_WIN Type = 44
	WT_MEM_S_WIN    Type = 50
	WT_PDC_S_WIN    Type = 51
	WT_IO_S_WIN     Type = 52
)

// Window is one rectangular area of the screen. The display manager owns the
// geometry stored in Base; the concrete window fills in the content.
type Window interface {
	Win() *Base
	SetDefaults()
	DrawBanner()
	DrawBody()
}

// Toggler is implemented by windows that cycle through alternate views.
type Toggler interface {
	Toggle()
}

// Base carries the geometry, the radix and the cursor of a window. Rows and
// columns inside a window count from 1.
type Base struct {
	d *Display

	winType Type
	index   int
	stack   int
	enabled bool

	rows    int
	columns int
	radix   int

	defColumnsHex int
	defColumnsOct int
	defColumnsDec int

	originRow int
	originCol int
	lastRow   int
	lastCol   int
}

func (b *Base) Win() *Base {
	return b
}

func (b *Base) Type() Type {
	return b.winType
}

func (b *Base) Index() int {
	return b.index
}

func (b *Base) Stack() int {
	return b.stack
}

func (b *Base) SetStack(stack int) {
	b.stack = stack
}

func (b *Base) Enabled() bool {
	return b.enabled
}

func (b *Base) SetEnable(enabled bool) {
	b.enabled = enabled
}

func (b *Base) Rows() int {
	return b.rows
}

func (b *Base) SetRows(rows int) {
	if rows > MAX_WIN_ROW_SIZE {
		rows = MAX_WIN_ROW_SIZE
	}

	if rows < 1 {
		rows = 1
	}

	b.rows = rows
}

func (b *Base) Columns() int {
	return b.columns
}

func (b *Base) SetColumns(columns int) {
	b.columns = columns
}

func validRadix(rdx int) int {
	if rdx == 8 || rdx == 10 || rdx == 16 {
		return rdx
	}

	return 10
}

func (b *Base) Radix() int {
	return b.radix
}

// SetRadix changes the number format and picks the column count the window
// needs for it.
func (b *Base) SetRadix(rdx int) {
	b.radix = validRadix(rdx)
	b.columns = b.DefColumns(b.radix)
}

func (b *Base) DefColumns(rdx int) int {
	switch rdx {
	case 8:
		return b.defColumnsOct
	case 10:
		return b.defColumnsDec
	default:
		return b.defColumnsHex
	}
}

// SetDefColumns sets the default width for one radix, or for all of them when
// rdx is zero.
func (b *Base) SetDefColumns(columns int, rdx int) {
	switch rdx {
	case 16:
		b.defColumnsHex = columns
	case 8:
		b.defColumnsOct = columns
	case 10:
		b.defColumnsDec = columns
	default:
		b.defColumnsHex = columns
		b.defColumnsOct = columns
		b.defColumnsDec = columns
	}
}

// Origin returns the absolute screen position of the top left corner.
func (b *Base) Origin() (int, int) {
	return b.originRow, b.originCol
}

func (b *Base) SetOrigin(row, col int) {
	b.originRow = row
	b.originCol = col
	b.lastRow = 1
	b.lastCol = 1
}

func (b *Base) con() *console.Console {
	return b.d.ctx.Con
}

// SetCursor positions the cursor relative to the window origin. A zero row or
// column keeps the last one used.
func (b *Base) SetCursor(row, col int) {
	if row == 0 {
		row = b.lastRow
	}

	if col == 0 {
		col = b.lastCol
	}

	if row > b.rows {
		row = b.rows
	}

	if col > MAX_WIN_COL_SIZE {
		col = MAX_WIN_COL_SIZE
	}

	b.con().SetAbsCursor(b.originRow+row-1, b.originCol+col-1)

	b.lastRow = row
	b.lastCol = col
}

func (b *Base) CursorRow() int {
	return b.lastRow
}

func (b *Base) CursorCol() int {
	return b.lastCol
}

func numWidth(rdx int, half bool) int {
	switch rdx {
	case 8:
		if half {
			return 7
		}
		return 12
	case 16:
		if half {
			return 6
		}
		return 10
	default:
		if half {
			return 5
		}
		return 10
	}
}

// formatWord renders a value in a fixed width for the radix.
func formatWord(val uint32, rdx int, f console.Fmt) string {
	half := f.Has(console.FMT_HALF_WORD)

	if f.Has(console.FMT_INVALID_NUM) {
		return strings.Repeat("*", numWidth(rdx, half))
	}

	switch rdx {
	case 8:
		if half {
			return fmt.Sprintf("%07o", val)
		}
		return fmt.Sprintf("%#012o", val)
	case 16:
		if half {
			return fmt.Sprintf("%#06x", val)
		}
		return fmt.Sprintf("%#010x", val)
	default:
		if half {
			return fmt.Sprintf("%5d", int32(val))
		}
		return fmt.Sprintf("%10d", int32(val))
	}
}

// truncateLeft keeps the rightmost part of s that fits into width columns.
func truncateLeft(s string, width int) string {
	runes := []rune(s)
	used := 0
	start := len(runes)

	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > width {
			break
		}

		used += w
		start--
	}

	return string(runes[start:])
}

// PrintTextField prints text at the cursor in a field of fLen columns. A
// zero length uses the width of the text. Text too long for the field is
// cut on the right, or on the left with FMT_TRUNC_LFT, and marked with dots.
func (b *Base) PrintTextField(text string, f console.Fmt, fLen int) {
	dLen := runewidth.StringWidth(text)

	if dLen > MAX_TEXT_FIELD_LEN {
		text = runewidth.Truncate(text, MAX_TEXT_FIELD_LEN, "")
		dLen = runewidth.StringWidth(text)
	}

	if fLen == 0 {
		fLen = dLen
	}

	col := 0
	if f.Has(console.FMT_LAST_FIELD) {
		col = b.columns - fLen + 1
	}

	b.SetCursor(0, col)
	b.con().SetAttributes(f)

	switch {
	case fLen > dLen && f.Has(console.FMT_ALIGN_LFT):
		text = runewidth.FillRight(text, fLen)

	case fLen > dLen:
		text = runewidth.FillLeft(text, fLen)

	case fLen < dLen && fLen <= 3:
		text = runewidth.Truncate(text, fLen, "")

	case fLen < dLen && f.Has(console.FMT_TRUNC_LFT):
		text = "..." + truncateLeft(text, fLen-3)

	case fLen < dLen:
		text = runewidth.Truncate(text, fLen, "...")
	}

	b.con().Printf("%s", text)
	b.lastCol += fLen
}

// PrintNumericField prints a value in the window radix. A zero length uses
// the natural width of the radix; wider fields are padded.
func (b *Base) PrintNumericField(val uint32, f console.Fmt, fLen int) {
	maxLen := numWidth(b.radix, f.Has(console.FMT_HALF_WORD))

	if fLen == 0 {
		fLen = maxLen
	}

	col := 0
	if f.Has(console.FMT_LAST_FIELD) {
		col = b.columns - fLen + 1
	}

	b.con().SetAttributes(f)
	b.SetCursor(0, col)

	text := formatWord(val, b.radix, f)

	if fLen > maxLen {
		if f.Has(console.FMT_ALIGN_LFT) {
			text = runewidth.FillRight(text, fLen)
		} else {
			text = runewidth.FillLeft(text, fLen)
		}
	}

	b.con().Printf("%s", text)
	b.lastCol += fLen
}

// PrintRadixField shows the window radix as "oct", "dec" or "hex".
func (b *Base) PrintRadixField(f console.Fmt) {
	switch b.radix {
	case 8:
		b.PrintTextField("oct", f, 3)
	case 10:
		b.PrintTextField("dec", f, 3)
	case 16:
		b.PrintTextField("hex", f, 3)
	}
}

// PrintWindowIdField prints "(stack:index)" and a marker for the current
// window. The field is always nine columns wide.
func (b *Base) PrintWindowIdField(current bool, f console.Fmt) {
	b.SetCursor(0, 0)
	b.con().SetAttributes(f)

	switch {
	case b.index >= 0 && b.index < 10:
		b.con().Printf("(%1d:%1d)  ", b.stack, b.index)
	case b.index >= 10 && b.index <= 99:
		b.con().Printf("(%1d:%2d) ", b.stack, b.index)
	default:
		b.con().Printf("-***-  ")
	}

	if current {
		b.con().Printf("* ")
	} else {
		b.con().Printf("  ")
	}

	b.lastCol += 9
}

// PadLine fills the rest of the current row.
func (b *Base) PadLine(f console.Fmt) {
	b.con().SetAttributes(f)

	if n := b.columns - b.lastCol + 1; n > 0 {
		b.con().Printf("%s", strings.Repeat(" ", n))
		b.lastCol += n
	}
}

// ClearField blanks fLen columns from the cursor and leaves the cursor at the
// start of the blanked area.
func (b *Base) ClearField(fLen int, f console.Fmt) {
	pos := b.lastCol

	if pos+fLen > b.columns+1 {
		fLen = b.columns + 1 - pos
	}

	b.con().SetAttributes(f)

	if fLen > 0 {
		b.con().Printf("%s", strings.Repeat(" ", fLen))
	}

	b.SetCursor(0, pos)
}

// ReDraw draws the banner and the body of an enabled window.
func ReDraw(w Window) {
	if !w.Win().enabled {
		return
	}

	w.DrawBanner()
	w.DrawBody()
}
