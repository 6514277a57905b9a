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

package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/encoding"
)

func TestBits(t *testing.T) {
	assert := assert.New(t)

	assert.True(encoding.GetBit(0x80000000, 0))
	assert.True(encoding.GetBit(0x00000001, 31))
	assert.False(encoding.GetBit(0x00000001, 30))

	assert.Equal(uint32(0x80000000), encoding.SetBit(0, 0, true))
	assert.Equal(uint32(0x7FFFFFFF), encoding.SetBit(0xFFFFFFFF, 0, false))
	assert.Equal(uint32(0x00100000), encoding.SetBit(0, 11, true))
}

func TestBitField(t *testing.T) {
	type fieldCase struct {
		Name   string
		Word   uint32
		Pos    int
		Length int
		Sign   bool
		Output uint32
	}

	tests := []fieldCase{
		{"Opcode", 0x40000000, 5, 6, false, 0x10},
		{"Register", 0x00C00000, 9, 4, false, 0x3},
		{"Low nibble", 0x0000000F, 31, 4, false, 0xF},
		{"Signed negative", 0x0003FFFF, 31, 18, true, 0xFFFFFFFF},
		{"Signed positive", 0x0001FFFF, 31, 18, true, 0x0001FFFF},
		{"Whole word", 0xDEADBEEF, 31, 32, false, 0xDEADBEEF},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			have := encoding.GetBitField(test.Word, test.Pos, test.Length, test.Sign)
			if have != test.Output {
				t.Errorf(
					"Field mismatch\nwant:%#08x (test.Output)\nhave:%#08x",
					test.Output,
					have,
				)
			}
		})
	}
}

func TestSetBitField(t *testing.T) {
	assert := assert.New(t)

	word := encoding.SetBitField(0, 5, 6, 0x10)
	assert.Equal(uint32(0x40000000), word)

	word = encoding.SetBitField(word, 9, 4, 0xF)
	assert.Equal(uint32(0x43C00000), word)

	word = encoding.SetBitField(word, 9, 4, 0x1)
	assert.Equal(uint32(0x40400000), word)

	for _, value := range []uint32{0, 1, 0x155, 0x3FF} {
		assert.Equal(
			value, encoding.GetBitField(encoding.SetBitField(0, 20, 10, value), 20, 10, false),
		)
	}
}

func TestImmVal(t *testing.T) {
	assert := assert.New(t)

	word, ok := encoding.SetImmVal(0, 31, 18, -1)
	assert.True(ok)
	assert.Equal(uint32(0x3FFFF), word)
	assert.Equal(int32(-1), int32(encoding.GetImmVal(word, 31, 18)))

	word, ok = encoding.SetImmVal(0, 31, 18, 5)
	assert.True(ok)
	assert.Equal(uint32(0xA), word)
	assert.Equal(uint32(5), encoding.GetImmVal(word, 31, 18))

	word, ok = encoding.SetImmVal(0, 27, 12, -4)
	assert.True(ok)
	assert.Equal(int32(-4), int32(encoding.GetImmVal(word, 27, 12)))
	assert.Equal(uint32(0), word&0xF)

	_, ok = encoding.SetImmVal(0, 31, 18, 1<<17)
	assert.False(ok)

	_, ok = encoding.SetImmVal(0, 31, 18, -(1 << 17))
	assert.True(ok)

	word, ok = encoding.SetImmValU(0, 31, 22, 0x3FFFFF)
	assert.True(ok)
	assert.Equal(uint32(0x3FFFFF), word)

	_, ok = encoding.SetImmValU(0, 31, 22, 0x400000)
	assert.False(ok)
}

func TestDecodeNum(t *testing.T) {
	type numCase struct {
		Input  string
		Output uint32
		Fail   bool
	}

	tests := []numCase{
		{"0", 0, false},
		{"42", 42, false},
		{"0x2A", 42, false},
		{"0X2a", 42, false},
		{"0o52", 42, false},
		{"052", 42, false},
		{"0xFFFFFFFF", 0xFFFFFFFF, false},
		{"0x1FFFFFFFF", 0, true},
		{"4294967296", 0, true},
		{"0x", 0, true},
		{"09", 0, true},
		{"12a", 0, true},
		{"", 0, true},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			have, err := encoding.DecodeNum(test.Input)

			if test.Fail {
				assert.ErrorIs(t, err, encoding.ErrInvalidNumber)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, test.Output, have)
		})
	}
}
