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

package simerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/simerr"
)

func TestMessages(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Invalid command, use help", simerr.ERR_INVALID_CMD.Error())
	assert.Equal("Expected a comma", simerr.ERR_EXPECTED_COMMA.Error())
	assert.Equal("ENV variable not found", simerr.ERR_ENV_VAR_NOT_FOUND.Error())
	assert.Equal("Error: 9999", simerr.Code(9999).Error())

	_, ok := simerr.Code(9999).Message()
	assert.False(ok)
}

func TestUnwrap(t *testing.T) {
	assert := assert.New(t)

	err := error(simerr.At(simerr.ERR_EXPECTED_RPAREN, 7))
	wrapped := fmt.Errorf("evaluating: %w", err)

	assert.True(errors.Is(err, simerr.ERR_EXPECTED_RPAREN))
	assert.True(errors.Is(wrapped, simerr.ERR_EXPECTED_RPAREN))
	assert.False(errors.Is(err, simerr.ERR_EXPECTED_LPAREN))

	var lineErr *simerr.Error
	assert.True(errors.As(wrapped, &lineErr))
	assert.Equal(7, lineErr.Pos)
}

func TestCodeOf(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(simerr.NO_ERR, simerr.CodeOf(nil))
	assert.Equal(simerr.ERR_INVALID_NUM, simerr.CodeOf(simerr.New(simerr.ERR_INVALID_NUM)))
	assert.Equal(simerr.ERR_TLB_TYPE, simerr.CodeOf(simerr.ERR_TLB_TYPE))
	assert.Equal(simerr.ERR_INVALID_EXPR, simerr.CodeOf(errors.New("other")))
}

func TestArg(t *testing.T) {
	err := simerr.WithArg(simerr.ERR_OPEN_EXEC_FILE, "boot.cmd")

	assert.Equal(t, `Error while opening file: "boot.cmd"`, err.Error())
}
