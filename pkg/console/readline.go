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

import (
	"io"
	"strings"
)

// Sentinel lines returned by ReadCmdLine when the cursor up or down key is
// pressed. The command loop scrolls the command pane when it sees them.
const (
	WC_CU = "WC_CU"
	WC_CD = "WC_CD"
)

const MAX_CMD_LINE = 256

const (
	charBackSpace = 0x08
	charDelete    = 0x7F
	charEscape    = 0x1B
)

type editState int

const (
	stateNormal editState = iota
	stateEscape
	stateEscapeBracket
)

// ReadCmdLine reads one command line. The line starts out holding prefill
// with the cursor after it; promptCols is the width of the prompt already
// on screen. Without line editing the prefill is echoed and the next input
// line is appended to it.
func (c *Console) ReadCmdLine(prefill string, promptCols int) (string, error) {
	if len(prefill) >= MAX_CMD_LINE {
		prefill = prefill[:MAX_CMD_LINE-1]
	}

	if prefill != "" {
		c.emit(prefill)
	}

	if !c.edit {
		return c.readLine(prefill)
	}

	buf := []byte(prefill)
	cursor := len(buf)
	state := stateNormal

	for {
		ch, err := c.ReadChar()
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				c.NewLine()
				return string(buf), nil
			}

			return "", err
		}

		switch state {
		case stateNormal:
			switch {
			case ch == charEscape:
				state = stateEscape

			case ch == '\r' || ch == '\n':
				c.NewLine()
				return string(buf), nil

			case ch == charBackSpace || ch == charDelete:
				if cursor > 0 {
					buf = append(buf[:cursor-1], buf[cursor:]...)
					cursor--
					c.BackSpace()
				}

			case ch >= ' ' && ch < charDelete:
				if len(buf) >= MAX_CMD_LINE-1 {
					break
				}

				buf = append(buf, 0)
				copy(buf[cursor+1:], buf[cursor:])
				buf[cursor] = ch
				cursor++

				if cursor == len(buf) {
					c.WriteChar(ch)
				} else {
					c.InsertCharAt(ch, promptCols+cursor)
				}
			}

		case stateEscape:
			if ch == '[' {
				state = stateEscapeBracket
			} else {
				state = stateNormal
			}

		case stateEscapeBracket:
			switch ch {
			case 'D':
				if cursor > 0 {
					cursor--
					c.CursorLeft()
				}

			case 'C':
				if cursor < len(buf) {
					cursor++
					c.CursorRight()
				}

			case 'A':
				return WC_CU, nil

			case 'B':
				return WC_CD, nil
			}

			state = stateNormal
		}
	}
}

func (c *Console) readLine(prefill string) (string, error) {
	line, err := c.in.ReadString('\n')

	if err != nil && (err != io.EOF || (line == "" && prefill == "")) {
		return "", err
	}

	line = strings.TrimRight(line, "\r\n")

	if len(prefill)+len(line) >= MAX_CMD_LINE {
		line = line[:MAX_CMD_LINE-1-len(prefill)]
	}

	return prefill + line, nil
}
