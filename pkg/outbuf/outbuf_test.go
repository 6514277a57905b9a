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

package outbuf_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/outbuf"
)

func TestLines(t *testing.T) {
	assert := assert.New(t)

	buf := outbuf.New(128)
	buf.Printf("first\n")
	buf.Printf("second %d\n", 2)
	buf.Printf("third")

	line, ok := buf.Line(1)
	assert.True(ok)
	assert.Equal("third", line)

	line, ok = buf.Line(3)
	assert.True(ok)
	assert.Equal("first", line)

	_, ok = buf.Line(4)
	assert.False(ok)

	assert.Equal([]string{"second 2", "third"}, buf.Tail(2))
	assert.Equal([]string{"first", "second 2", "third"}, buf.Tail(10))
}

func TestEviction(t *testing.T) {
	assert := assert.New(t)

	buf := outbuf.New(32)

	for i := 0; i < 20; i++ {
		fmt.Fprintf(buf, "line %02d\n", i)
	}

	assert.LessOrEqual(buf.Len(), buf.Capacity())

	contents := buf.String()
	assert.True(strings.HasPrefix(contents, "line "))
	assert.True(strings.HasSuffix(contents, "line 19\n"))

	for _, line := range buf.Tail(100) {
		assert.Len(line, len("line 00"))
	}
}

func TestOversizedWrite(t *testing.T) {
	assert := assert.New(t)

	buf := outbuf.New(16)
	buf.Write([]byte("aaaa\nbbbb\ncccc\ndddd\n"))

	assert.Equal("bbbb\ncccc\ndddd\n", buf.String())

	// A single line longer than the ring keeps its start.
	buf.Write([]byte("xx\n" + strings.Repeat("a", 10) + strings.Repeat("b", 20) + "\n"))
	assert.Equal(strings.Repeat("a", 10)+"bbbbb\n", buf.String())

	buf.Write([]byte(strings.Repeat("c", 20)))
	assert.Equal(strings.Repeat("c", 16), buf.String())

	// A line cut at the front is dropped in favour of the lines after it.
	buf.Write([]byte(strings.Repeat("d", 15) + "\ne"))
	assert.Equal("e", buf.String())
}

func TestPrintfBound(t *testing.T) {
	buf := outbuf.New(4096)

	n := buf.Printf("%s", strings.Repeat("x", 1000))

	assert.Equal(t, outbuf.MAX_LINE_SIZE, n)
	assert.Equal(t, outbuf.MAX_LINE_SIZE, buf.Len())
}

func TestScroll(t *testing.T) {
	assert := assert.New(t)

	buf := outbuf.New(256)
	for i := 0; i < 10; i++ {
		buf.Printf("%d\n", i)
	}

	buf.ScrollUp(3)
	assert.Equal(3, buf.Scroll())
	assert.Equal([]string{"5", "6"}, buf.Tail(2))

	buf.ScrollUp(100)
	assert.Equal(9, buf.Scroll())

	buf.ScrollDown(100)
	assert.Equal(0, buf.Scroll())
	assert.Equal([]string{"8", "9"}, buf.Tail(2))

	buf.ScrollUp(2)
	buf.Printf("new\n")
	assert.Equal(0, buf.Scroll())
}
