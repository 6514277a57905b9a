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

package command

import (
	"fmt"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

// Fixed width renderings of a machine word for tabular output.
func fmtWord(val uint32, rdx int) string {
	switch rdx {
	case 8:
		return fmt.Sprintf("%#012o", val)
	case 10:
		return fmt.Sprintf("%10d", val)
	default:
		return fmt.Sprintf("0x%08x", val)
	}
}

func fmtHalfWord(val uint32, rdx int) string {
	val &= 0xFFFF

	switch rdx {
	case 8:
		return fmt.Sprintf("%06o", val)
	case 10:
		return fmt.Sprintf("%5d", val)
	default:
		return fmt.Sprintf("0x%04x", val)
	}
}

// Placeholder for a word that cannot be read, as wide as fmtWord.
func fmtInvalidWord(rdx int) string {
	if rdx == 8 {
		return strings.Repeat("*", 12)
	}

	return strings.Repeat("*", 10)
}

func (sim *Simulator) defaultRadix() int {
	switch rdx := sim.Env.GetInt(env.ENV_RDX_DEFAULT, 16); rdx {
	case 8, 10, 16:
		return int(rdx)
	}

	return 16
}

// Parses an optional format option at the current token. The end of the
// line selects the default radix; CODE is only accepted when allowCode is
// set and is reported as a zero radix.
func (sim *Simulator) parseFmtOpt(allowCode bool) (int, error) {
	tk := sim.tk

	if tk.IsEOS() {
		return sim.defaultRadix(), nil
	}

	tok := tk.Token()

	switch tok.Tid {
	case tokenizer.TOK_HEX, tokenizer.TOK_OCT, tokenizer.TOK_DEC:
		return int(tok.Val), tk.Next()

	case tokenizer.TOK_CODE:
		if allowCode {
			return 0, tk.Next()
		}
	}

	return 0, simerr.At(simerr.ERR_INVALID_FMT_OPT, tok.Pos)
}

// Parses ", fmt" when a comma follows, otherwise returns the default radix.
func (sim *Simulator) parseOptFmt(allowCode bool) (int, error) {
	if !sim.tk.Is(tokenizer.TOK_COMMA) {
		return sim.defaultRadix(), nil
	}

	if err := sim.tk.Next(); err != nil {
		return 0, err
	}

	return sim.parseFmtOpt(allowCode)
}

// Skips an optional comma between two positional arguments.
func (sim *Simulator) skipComma() error {
	if sim.tk.Is(tokenizer.TOK_COMMA) {
		return sim.tk.Next()
	}

	return nil
}
