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

package console

import "io"

// Fmt describes how a field is printed. The low byte packs the background
// and foreground colours, the remaining bits select attributes and layout.
type Fmt uint32

const (
	FMT_USE_ACTUAL_ATTR Fmt = 0x0

	FMT_BG_COL_DEF    Fmt = 0x00000001
	FMT_BG_COL_RED    Fmt = 0x00000002
	FMT_BG_COL_GREEN  Fmt = 0x00000003
	FMT_BG_COL_YELLOW Fmt = 0x00000004

	FMT_FG_COL_DEF    Fmt = 0x00000010
	FMT_FG_COL_RED    Fmt = 0x00000020
	FMT_FG_COL_GREEN  Fmt = 0x00000030
	FMT_FG_COL_YELLOW Fmt = 0x00000040

	FMT_BOLD        Fmt = 0x00000100
	FMT_BLINK       Fmt = 0x00000200
	FMT_INVERSE     Fmt = 0x00000400
	FMT_ALIGN_LFT   Fmt = 0x00000800
	FMT_TRUNC_LFT   Fmt = 0x00001000
	FMT_LAST_FIELD  Fmt = 0x00002000
	FMT_HALF_WORD   Fmt = 0x00004000
	FMT_INVALID_NUM Fmt = 0x00008000

	FMT_DEF_ATTR Fmt = 0x10000000
)

func (f Fmt) Has(flag Fmt) bool {
	return f&flag != 0
}

var bgColors = map[Fmt]string{
	FMT_BG_COL_RED:    "\033[41m",
	FMT_BG_COL_GREEN:  "\033[42m",
	FMT_BG_COL_YELLOW: "\033[43m",
}

var fgColors = map[Fmt]string{
	FMT_FG_COL_RED:    "\033[31m",
	FMT_FG_COL_GREEN:  "\033[32m",
	FMT_FG_COL_YELLOW: "\033[33m",
}

// SetAttributes resets the character attributes and applies those in f.
// A zero descriptor keeps the current attributes.
func (c *Console) SetAttributes(f Fmt) {
	if f == FMT_USE_ACTUAL_ATTR {
		return
	}

	c.emit("\033[0m")

	if f.Has(FMT_INVERSE) {
		c.emit("\033[7m")
	}

	if f.Has(FMT_BLINK) {
		c.emit("\033[5m")
	}

	if f.Has(FMT_BOLD) {
		c.emit("\033[1m")
	}

	if seq, ok := bgColors[f&0x0F]; ok {
		c.emit(seq)
	} else {
		c.emit("\033[49m")
	}

	if seq, ok := fgColors[f&0xF0]; ok {
		c.emit(seq)
	} else {
		c.emit("\033[39m")
	}
}

func (c *Console) emit(seq string) {
	io.WriteString(c.out, seq)
}

func (c *Console) ResetAttributes() {
	c.emit("\033[0m")
}

func (c *Console) CursorLeft() {
	c.emit("\033[D")
}

func (c *Console) CursorRight() {
	c.emit("\033[C")
}

// BackSpace moves left and deletes the character under the cursor.
func (c *Console) BackSpace() {
	c.emit("\033[D\033[P")
}

// InsertCharAt inserts ch at the absolute column col of the current row,
// shifting the rest of the line right.
func (c *Console) InsertCharAt(ch byte, col int) {
	c.Printf("\033[%dG\033[1@%c", col, ch)
}

func (c *Console) NewLine() {
	c.emit("\n")
}

func (c *Console) ClearScreen() {
	c.emit("\033[2J\033[3J")
}

// SetAbsCursor moves the cursor to a 1-based row and column.
func (c *Console) SetAbsCursor(row, col int) {
	c.Printf("\033[%d;%dH", row, col)
}

func (c *Console) SetWindowSize(rows, cols int) {
	c.Printf("\033[8;%d;%dt", rows, cols)
}

// SetScrollArea limits scrolling to the rows start through end.
func (c *Console) SetScrollArea(start, end int) {
	c.Printf("\033[%d;%dr", start, end)
}

func (c *Console) ClearScrollArea() {
	c.emit("\033[r")
}
