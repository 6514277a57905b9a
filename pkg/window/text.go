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

package window

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/console"
	"github.com/lassandro/vcpu32sim/pkg/env"
)

// Text shows a file, one source line per body row. The file is opened on
// the first draw.
type Text struct {
	Scrollable

	fileName    string
	file        *os.File
	reader      *bufio.Reader
	fileSizeLn  uint32
	lastLinePos uint32
	openErr     bool
}

func (w *Text) SetDefaults() {
	width := int(w.d.ctx.Env.GetInt(env.ENV_WIN_TEXT_LINE_WIDTH, 90))

	w.SetDefColumns(width, 0)
	w.SetRadix(10)
	w.SetRows(11)
	w.SetHomeItemAdr(0)
	w.SetCurrentItemAdr(0)
	w.SetLineIncrement(1)
	w.SetEnable(true)

	// The line count is only taken when the file is opened.
	if w.file != nil {
		w.SetLimitItemAdr(w.fileSizeLn)
	} else {
		w.SetLimitItemAdr(1)
	}
}

// Close releases the file.
func (w *Text) Close() error {
	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil
	w.reader = nil

	return err
}

func (w *Text) open() bool {
	if w.file != nil {
		return true
	}

	if w.openErr {
		return false
	}

	file, err := os.Open(w.fileName)
	if err != nil {
		w.openErr = true
		return false
	}

	w.file = file
	w.reader = bufio.NewReader(file)
	w.fileSizeLn = 0

	for {
		line, err := w.reader.ReadString('\n')
		if len(line) > 0 {
			w.fileSizeLn++
		}

		if err != nil {
			break
		}
	}

	w.SetLimitItemAdr(w.fileSizeLn)
	w.rewind()

	return true
}

func (w *Text) rewind() {
	w.file.Seek(0, io.SeekStart)
	w.reader.Reset(w.file)
	w.lastLinePos = 0
}

// readLine returns line n counting from zero. Reading moves forward from
// the last line read; going back starts over at the top of the file.
func (w *Text) readLine(n uint32) (string, bool) {
	if n < w.lastLinePos {
		w.rewind()
	}

	for w.lastLinePos < n {
		if _, err := w.reader.ReadString('\n'); err != nil {
			return "", false
		}

		w.lastLinePos++
	}

	line, err := w.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", false
	}

	w.lastLinePos++

	line = strings.TrimRight(line, "\r\n")
	line = strings.ReplaceAll(line, "\t", "    ")

	if len(line) > MAX_TEXT_LINE_SIZE {
		line = line[:MAX_TEXT_LINE_SIZE]
	}

	return line, true
}

func (w *Text) DrawBanner() {
	f := bannerFmt

	w.open()

	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), f)
	w.PrintTextField("Text: ", f, 0)
	w.PrintTextField(w.fileName, f|console.FMT_ALIGN_LFT|console.FMT_TRUNC_LFT, 48)
	w.PrintTextField("  Line: ", f, 0)
	w.PrintNumericField(w.currentItemAdr+1, f|console.FMT_HALF_WORD, 0)
	w.PrintTextField("  Home: ", f, 0)
	w.PrintNumericField(w.homeItemAdr+1, f|console.FMT_HALF_WORD, 0)
	w.PadLine(f)
}

func (w *Text) DrawBody() {
	if !w.open() {
		w.SetCursor(2, 1)
		w.PrintTextField("Error opening the text file", bodyFmt, 0)
		w.PadLine(bodyFmt)
		return
	}

	w.DrawLines(w.drawLine)
}

func (w *Text) drawLine(n uint32) {
	if n >= w.fileSizeLn {
		w.PadLine(bodyFmt)
		return
	}

	line, ok := w.readLine(n)
	if !ok {
		w.PadLine(bodyFmt)
		return
	}

	w.PrintNumericField(n+1, bodyFmt|console.FMT_HALF_WORD, 0)
	w.PrintTextField(": ", bodyFmt, 0)
	w.PrintTextField(line, bodyFmt|console.FMT_ALIGN_LFT, w.columns-w.lastCol+1)
}

// Console shows the output the program wrote to the machine console device.
type Console struct {
	Base
}

func (w *Console) SetDefaults() {
	w.SetDefColumns(80, 0)
	w.SetRadix(w.defaultRadix())
	w.SetRows(11)
	w.SetEnable(true)
}

func (w *Console) DrawBanner() {
	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), bannerFmt)
	w.PrintTextField("Console", bannerFmt|console.FMT_ALIGN_LFT, 16)
	w.PadLine(bannerFmt)
}

func (w *Console) DrawBody() {
	drawTail(&w.Base, w.d.ctx.DevOut.Tail(w.rows-1), 2)
}

// Prints lines from row first downward, then blanks the rows left over.
func drawTail(b *Base, lines []string, first int) {
	row := first

	for _, line := range lines {
		b.SetCursor(row, 1)
		b.PrintTextField(line, bodyFmt|console.FMT_ALIGN_LFT, b.columns)
		row++
	}

	for ; row <= b.rows; row++ {
		b.SetCursor(row, 1)
		b.PadLine(bodyFmt)
	}
}

// Commands is the command pane below the window stacks. Its body repeats
// the most recent command output.
type Commands struct {
	Base

	baseRows int
}

func (w *Commands) SetDefaults() {
	w.SetDefColumns(80, 0)
	w.SetRadix(w.defaultRadix())
	w.winType = WT_CMD_WIN
	w.SetRows(11)
	w.baseRows = 11
	w.SetEnable(true)
}

// BaseRows is the pane height requested with CWL. The pane grows beyond it
// to fill a short screen.
func (w *Commands) BaseRows() int {
	return w.baseRows
}

func (w *Commands) SetBaseRows(rows int) {
	w.SetRows(rows)
	w.baseRows = w.rows
}

func (w *Commands) DrawBanner() {
	w.SetCursor(1, 1)
	w.PrintTextField("Commands", bannerFmt|console.FMT_ALIGN_LFT, 16)
	w.PadLine(bannerFmt)
}

// The last row belongs to the input line.
func (w *Commands) DrawBody() {
	if w.rows > 2 {
		lines := w.d.ctx.Out.Tail(w.rows - 2)

		row := 2
		for _, line := range lines {
			w.SetCursor(row, 1)
			w.PrintTextField(line, bodyFmt|console.FMT_ALIGN_LFT, w.columns)
			row++
		}

		for ; row < w.rows; row++ {
			w.SetCursor(row, 1)
			w.PadLine(bodyFmt)
		}
	}

	w.con().ResetAttributes()
}
