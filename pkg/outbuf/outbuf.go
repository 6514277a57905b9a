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

// Package outbuf holds the character ring that backs the command pane. Text
// is appended at the head; when the ring runs out of space, whole lines are
// evicted from the tail so a reader never sees a line cut at the front.
package outbuf

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	DEFAULT_CAPACITY = 64 * 1024
	MAX_LINE_SIZE    = 256
)

type Buffer struct {
	data  []byte
	head  int
	tail  int
	count int

	// Lines scrolled back from the most recent line.
	scroll int
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DEFAULT_CAPACITY
	}

	return &Buffer{data: make([]byte, capacity)}
}

func (buf *Buffer) Capacity() int {
	return len(buf.data)
}

func (buf *Buffer) Len() int {
	return buf.count
}

func (buf *Buffer) Reset() {
	buf.head = 0
	buf.tail = 0
	buf.count = 0
	buf.scroll = 0
}

// Write appends p to the ring. Appending always succeeds; a p larger than the
// ring keeps only its trailing whole lines.
func (buf *Buffer) Write(p []byte) (int, error) {
	n := len(p)

	if n == 0 {
		return 0, nil
	}

	if n > len(buf.data) {
		p = buf.fit(p)
		buf.Reset()
	}

	buf.makeRoom(len(p))

	for _, ch := range p {
		buf.data[buf.head] = ch
		buf.head = (buf.head + 1) % len(buf.data)
	}

	buf.count += len(p)
	buf.scroll = 0

	return n, nil
}

// Selects what of an oversized p is kept: the whole lines that fit at its
// end, or when its last line alone exceeds the ring, the head of that line.
func (buf *Buffer) fit(p []byte) []byte {
	size := len(buf.data)
	cut := len(p) - size

	if p[cut-1] == '\n' {
		return p[cut:]
	}

	if i := bytes.IndexByte(p[cut:], '\n'); i >= 0 && cut+i < len(p)-1 {
		return p[cut+i+1:]
	}

	line := p[bytes.LastIndexByte(p[:len(p)-1], '\n')+1:]

	head := make([]byte, size)
	copy(head, line)

	if line[len(line)-1] == '\n' {
		head[size-1] = '\n'
	}

	return head
}

// Printf formats into a bounded temporary and appends it. The returned count
// is the number of bytes stored.
func (buf *Buffer) Printf(format string, args ...interface{}) int {
	text := fmt.Sprintf(format, args...)

	if len(text) > MAX_LINE_SIZE {
		text = text[:MAX_LINE_SIZE]
	}

	buf.Write([]byte(text))

	return len(text)
}

// Evicts whole lines from the tail until n more bytes fit.
func (buf *Buffer) makeRoom(n int) {
	for buf.count > 0 && buf.count+n > len(buf.data) {
		removed := 0

		for removed < buf.count {
			ch := buf.data[(buf.tail+removed)%len(buf.data)]
			removed++

			if ch == '\n' {
				break
			}
		}

		buf.tail = (buf.tail + removed) % len(buf.data)
		buf.count -= removed
	}

	if buf.count == 0 {
		buf.head = 0
		buf.tail = 0
	}
}

func (buf *Buffer) String() string {
	var builder strings.Builder
	builder.Grow(buf.count)

	for i := 0; i < buf.count; i++ {
		builder.WriteByte(buf.data[(buf.tail+i)%len(buf.data)])
	}

	return builder.String()
}

// Returns every line in the ring, oldest first. A trailing line without a
// newline counts as a line when it is not empty.
func (buf *Buffer) lines() []string {
	if buf.count == 0 {
		return nil
	}

	lines := strings.Split(buf.String(), "\n")

	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func (buf *Buffer) LineCount() int {
	return len(buf.lines())
}

// Line returns the n-th line counted backward from the most recent one, which
// is line 1. The flag is false when the ring holds fewer than n lines.
func (buf *Buffer) Line(n int) (string, bool) {
	lines := buf.lines()

	if n < 1 || n > len(lines) {
		return "", false
	}

	return lines[len(lines)-n], true
}

// Tail returns up to n lines, oldest first, ending at the current scroll
// position. The length of the result is the number of lines found.
func (buf *Buffer) Tail(n int) []string {
	lines := buf.lines()
	end := len(lines) - buf.scroll

	if end < 0 {
		end = 0
	}

	start := end - n
	if start < 0 {
		start = 0
	}

	result := make([]string, end-start)
	copy(result, lines[start:end])

	return result
}

func (buf *Buffer) Scroll() int {
	return buf.scroll
}

func (buf *Buffer) ScrollUp(lines int) {
	buf.scroll += lines

	if max := buf.LineCount() - 1; buf.scroll > max {
		buf.scroll = max
	}

	if buf.scroll < 0 {
		buf.scroll = 0
	}
}

func (buf *Buffer) ScrollDown(lines int) {
	buf.scroll -= lines

	if buf.scroll < 0 {
		buf.scroll = 0
	}
}
