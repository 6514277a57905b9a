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
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// EnterRawMode saves the terminal state and disables canonical input and
// echo. It does nothing when input is not a terminal.
func (c *Console) EnterRawMode() error {
	if !c.tty || c.saved != nil {
		return nil
	}

	termios, err := unix.IoctlGetTermios(c.fd, ioctlGetTermios)
	if err != nil {
		return err
	}

	saved := *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(c.fd, ioctlSetTermios, &termstate); err != nil {
		return err
	}

	c.saved = &saved
	return nil
}

// Restore puts back the terminal state captured by EnterRawMode and
// switches input back to blocking. Calling it more than once is harmless.
func (c *Console) Restore() error {
	if c.saved == nil {
		return nil
	}

	if !c.blocking {
		c.SetBlocking(true)
	}

	if err := unix.IoctlSetTermios(c.fd, ioctlSetTermios, c.saved); err != nil {
		return err
	}

	c.saved = nil
	return nil
}

// IsRaw reports whether the terminal is currently in raw mode.
func (c *Console) IsRaw() bool {
	return c.saved != nil
}

// RestoreOnSignal watches for sigs. The first one to arrive restores the
// terminal and calls exit with 128 plus the signal number. The returned
// function ends the watch.
func (c *Console) RestoreOnSignal(exit func(code int), sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(ch, sigs...)

	go func() {
		select {
		case sig := <-ch:
			c.Restore()

			code := 1
			if s, ok := sig.(unix.Signal); ok {
				code = 128 + int(s)
			}

			exit(code)

		case <-done:
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
