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

// Package console owns the terminal. It reads characters and command lines,
// switches the terminal between raw and cooked state, and is the only
// package that emits escape sequences.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console reads from a terminal file descriptor when one is attached and
// from a buffered stream otherwise.
type Console struct {
	out io.Writer
	in  *bufio.Reader

	fd       int
	tty      bool
	edit     bool
	blocking bool
	saved    *unix.Termios
}

// New attaches the console to in and out. Raw mode is not entered until
// EnterRawMode is called. When out is not a terminal, escape sequences are
// stripped from everything written.
func New(in *os.File, out *os.File) *Console {
	fd := int(in.Fd())
	tty := term.IsTerminal(fd)

	var w io.Writer

	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		w = colorable.NewColorable(out)
	} else {
		w = colorable.NewNonColorable(out)
	}

	return &Console{
		out:      w,
		in:       bufio.NewReader(in),
		fd:       fd,
		tty:      tty,
		edit:     tty,
		blocking: true,
	}
}

// NewStream builds a console over arbitrary streams. With edit set, command
// lines go through the line editor as if typed on a raw terminal.
func NewStream(in io.Reader, out io.Writer, edit bool) *Console {
	return &Console{
		out:      out,
		in:       bufio.NewReader(in),
		fd:       -1,
		edit:     edit,
		blocking: true,
	}
}

// IsConsole reports whether input comes from a terminal.
func (c *Console) IsConsole() bool {
	return c.tty
}

// Size returns the terminal size, or 0, 0 when it cannot be determined.
func (c *Console) Size() (int, int) {
	if !c.tty {
		return 0, 0
	}

	cols, rows, err := term.GetSize(c.fd)
	if err != nil {
		return 0, 0
	}

	return rows, cols
}

// SetBlocking switches terminal reads between waiting for a character and
// returning immediately. Streams always block.
func (c *Console) SetBlocking(enabled bool) error {
	if c.tty {
		if err := unix.SetNonblock(c.fd, !enabled); err != nil {
			return err
		}
	}

	c.blocking = enabled
	return nil
}

// ReadChar returns the next input byte. In non-blocking mode a zero byte
// means no key was pressed.
func (c *Console) ReadChar() (byte, error) {
	if !c.tty {
		return c.in.ReadByte()
	}

	var buf [1]byte

	for {
		n, err := unix.Read(c.fd, buf[:])

		switch {
		case errors.Is(err, unix.EAGAIN):
			return 0, nil
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return 0, err
		case n == 0 && c.blocking:
			return 0, io.EOF
		case n == 0:
			return 0, nil
		}

		return buf[0], nil
	}
}

// Poll reports whether a key was pressed since the last call. It only
// works on a terminal in non-blocking mode.
func (c *Console) Poll() bool {
	if !c.tty || c.blocking {
		return false
	}

	ch, err := c.ReadChar()
	return err == nil && ch != 0
}

func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *Console) WriteChar(ch byte) {
	c.out.Write([]byte{ch})
}

// Printf writes formatted text and returns the number of bytes written.
func (c *Console) Printf(format string, args ...interface{}) int {
	n, _ := fmt.Fprintf(c.out, format, args...)
	return n
}
