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

// Package encoding holds the bit-level helpers shared by the machine, the
// assembler and the windows. Bit positions count from the most significant
// bit: position 0 is the leftmost bit of a word and position 31 the
// rightmost. A field is addressed by the position of its rightmost bit and
// its length.
package encoding

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidNumber = errors.New("Invalid number")

func GetBit(word uint32, pos int) bool {
	return word&(1<<(31-uint(pos%32))) != 0
}

func SetBit(word uint32, pos int, value bool) uint32 {
	mask := uint32(1) << (31 - uint(pos%32))

	if value {
		return word | mask
	}

	return word &^ mask
}

// Returns the field of length bits ending at pos. When sign is set and the
// leftmost bit of the field is one, the result is sign extended.
func GetBitField(word uint32, pos int, length int, sign bool) uint32 {
	pos %= 32

	if length <= 0 || length > 32 {
		return 0
	}

	result := word >> (31 - uint(pos))

	if length < 32 {
		result &= (1 << uint(length)) - 1
	}

	if sign {
		return SignExtend(result, length)
	}

	return result
}

func SetBitField(word uint32, pos int, length int, value uint32) uint32 {
	pos %= 32

	if length <= 0 || length > 32 {
		return word
	}

	mask := ^uint32(0)
	if length < 32 {
		mask = (1 << uint(length)) - 1
	}

	shift := 31 - uint(pos)

	return (word &^ (mask << shift)) | ((value & mask) << shift)
}

func SignExtend(value uint32, bitcount int) uint32 {
	if bitcount <= 0 || bitcount >= 32 {
		return value
	}

	if (value>>(uint(bitcount)-1))&0x1 == 1 {
		value |= ^uint32(0) << uint(bitcount)
	} else {
		value &= (1 << uint(bitcount)) - 1
	}

	return value
}

func IsInRangeForBitField(value int32, length int) bool {
	if length >= 32 {
		return true
	}

	min := -(int64(1) << uint(length-1))
	max := (int64(1) << uint(length-1)) - 1

	return int64(value) >= min && int64(value) <= max
}

func IsInRangeForBitFieldU(value uint32, length int) bool {
	if length >= 32 {
		return true
	}

	return uint64(value) <= (uint64(1)<<uint(length))-1
}

// Stores a signed immediate in low sign format: the sign occupies the
// rightmost bit of the field and the remaining bits hold the low order bits of
// the two's complement value.
func SetImmVal(word uint32, pos int, length int, value int32) (uint32, bool) {
	if !IsInRangeForBitField(value, length) {
		return word, false
	}

	word = SetBit(word, pos, value < 0)

	return SetBitField(word, pos-1, length-1, uint32(value)), true
}

// Decodes a low sign immediate field.
func GetImmVal(word uint32, pos int, length int) uint32 {
	field := GetBitField(word, pos, length, false)

	if length <= 1 {
		return 0
	}

	value := field >> 1
	mask := uint32(1)<<uint(length-1) - 1

	if field&0x1 == 1 {
		return value | ^mask
	}

	return value & mask
}

func SetImmValU(word uint32, pos int, length int, value uint32) (uint32, bool) {
	if !IsInRangeForBitFieldU(value, length) {
		return word, false
	}

	return SetBitField(word, pos, length, value), true
}

// Decodes a numeric string in the formats: 0x1F, 0X1F, 0o17, 017, 31
//
// Values must fit into 32 bits. A leading zero selects octal, as does the
// 0o prefix.
func DecodeNum(s string) (uint32, error) {
	if len(s) == 0 {
		return 0, ErrInvalidNumber
	}

	base := 10
	digits := s

	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, digits = 16, s[2:]
		case 'o', 'O':
			base, digits = 8, s[2:]
		default:
			base, digits = 8, s[1:]
		}
	}

	if len(digits) == 0 || strings.ContainsAny(digits, "+-_") {
		return 0, ErrInvalidNumber
	}

	result, err := strconv.ParseUint(digits, base, 32)

	if err != nil {
		return 0, ErrInvalidNumber
	}

	return uint32(result), nil
}
