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

package tokenizer

import (
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/encoding"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
)

// Token is the current lexeme. Numbers carry their value in Val, extended
// addresses in Seg and Ofs, and strings in Str. Reserved words carry the
// table entry's value in Val.
type Token struct {
	Name string
	Typ  TokType
	Tid  TokId
	Val  uint32
	Seg  uint32
	Ofs  uint32
	Str  string
	Pos  int
}

type Tokenizer struct {
	table Table
	line  string
	pos   int
	tok   Token
}

func New(table Table) *Tokenizer {
	return &Tokenizer{table: table}
}

// Setup resets the tokenizer to the start of line. The first token is read
// by the first call to Next.
func (tk *Tokenizer) Setup(line string) {
	tk.line = line
	tk.pos = 0
	tk.tok = Token{}
}

func (tk *Tokenizer) Token() Token {
	return tk.tok
}

func (tk *Tokenizer) Is(tid TokId) bool {
	return tk.tok.Tid == tid
}

func (tk *Tokenizer) IsType(typ TokType) bool {
	return tk.tok.Typ == typ
}

func (tk *Tokenizer) IsEOS() bool {
	return tk.tok.Tid == TOK_EOS
}

// Position of the current token in the line.
func (tk *Tokenizer) Pos() int {
	return tk.tok.Pos
}

func (tk *Tokenizer) Line() string {
	return tk.line
}

func (tk *Tokenizer) Lookup(name string) (Entry, bool) {
	return tk.table.Lookup(name)
}

func (tk *Tokenizer) peek(offset int) byte {
	if tk.pos+offset < len(tk.line) {
		return tk.line[tk.pos+offset]
	}

	return 0
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumChar(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') ||
		ch == 'x' || ch == 'X' || ch == 'o' || ch == 'O'
}

var symbols = map[byte]TokId{
	'.': TOK_PERIOD,
	'+': TOK_PLUS,
	'-': TOK_MINUS,
	'*': TOK_MULT,
	'/': TOK_DIV,
	'%': TOK_MOD,
	'&': TOK_AND,
	'|': TOK_OR,
	'^': TOK_XOR,
	'~': TOK_NEG,
	'(': TOK_LPAREN,
	')': TOK_RPAREN,
	',': TOK_COMMA,
}

// Next advances to the next token. At the end of the line the token becomes
// TOK_EOS and stays there.
func (tk *Tokenizer) Next() error {
	for tk.pos < len(tk.line) && strings.IndexByte(" \n\r\t", tk.line[tk.pos]) >= 0 {
		tk.pos++
	}

	tk.tok = Token{Pos: tk.pos}

	if tk.pos >= len(tk.line) {
		tk.tok.Tid = TOK_EOS
		return nil
	}

	ch := tk.line[tk.pos]

	switch {
	case isAlpha(ch), ch == '_', ch == '?':
		return tk.parseIdent()

	case isDigit(ch):
		return tk.parseNum()

	case ch == '"':
		return tk.parseString()
	}

	if tid, ok := symbols[ch]; ok {
		tk.tok.Typ = TYP_SYM
		tk.tok.Tid = tid
		tk.tok.Name = string(ch)
		tk.pos++

		return nil
	}

	tk.tok.Tid = TOK_ERR

	return simerr.At(simerr.ERR_INVALID_CHAR_IN_TOKEN_LINE, tk.tok.Pos)
}

func (tk *Tokenizer) parseIdent() error {
	start := tk.pos

	// L% and R% select the left 22 or right 10 bits of a number.
	if next := tk.peek(1); next == '%' {
		switch tk.line[start] {
		case 'L', 'l', 'R', 'r':
			mask := uint32(0xFFFFFC00)
			if tk.line[start] == 'R' || tk.line[start] == 'r' {
				mask = 0x3FF
			}

			tk.pos += 2

			if !isDigit(tk.peek(0)) {
				tk.tok.Tid = TOK_ERR
				return simerr.At(simerr.ERR_INVALID_CHAR_IN_IDENT, tk.pos)
			}

			if err := tk.parseNum(); err != nil {
				return err
			}

			if tk.tok.Typ != TYP_NUM {
				tk.tok.Tid = TOK_ERR
				return simerr.At(simerr.ERR_EXPECTED_NUMERIC, start)
			}

			tk.tok.Val &= mask
			tk.tok.Pos = start

			return nil
		}
	}

	if tk.line[start] == '?' {
		tk.pos++
	} else {
		for tk.pos < len(tk.line) && (isAlpha(tk.line[tk.pos]) ||
			isDigit(tk.line[tk.pos]) || tk.line[tk.pos] == '_') {
			tk.pos++
		}
	}

	name := strings.ToUpper(tk.line[start:tk.pos])
	tk.tok.Name = name

	if entry, ok := tk.table.Lookup(name); ok {
		tk.tok.Typ = entry.Typ
		tk.tok.Tid = entry.Tid
		tk.tok.Val = entry.Val

		return nil
	}

	tk.tok.Typ = TYP_IDENT
	tk.tok.Tid = TOK_IDENT

	return nil
}

func (tk *Tokenizer) scanNum() (uint32, error) {
	start := tk.pos

	for tk.pos < len(tk.line) && isNumChar(tk.line[tk.pos]) {
		tk.pos++
	}

	value, err := encoding.DecodeNum(tk.line[start:tk.pos])
	if err != nil {
		return 0, simerr.At(simerr.ERR_INVALID_NUM, start)
	}

	return value, nil
}

// A number directly followed by a period and another number is an extended
// address "seg.ofs".
func (tk *Tokenizer) parseNum() error {
	value, err := tk.scanNum()

	if err != nil {
		tk.tok.Tid = TOK_ERR
		return err
	}

	tk.tok.Typ = TYP_NUM
	tk.tok.Tid = TOK_NUM
	tk.tok.Val = value

	if tk.peek(0) != '.' {
		return nil
	}

	tk.pos++

	if !isDigit(tk.peek(0)) {
		tk.tok.Tid = TOK_ERR
		return simerr.At(simerr.ERR_EXPECTED_EXT_ADR, tk.pos)
	}

	ofs, err := tk.scanNum()

	if err != nil {
		tk.tok.Tid = TOK_ERR
		return err
	}

	tk.tok.Typ = TYP_EXT_ADR
	tk.tok.Seg = value
	tk.tok.Ofs = ofs
	tk.tok.Val = ofs

	return nil
}

func (tk *Tokenizer) parseString() error {
	var sb strings.Builder

	tk.pos++

	for tk.pos < len(tk.line) {
		ch := tk.line[tk.pos]
		tk.pos++

		switch ch {
		case '"':
			tk.tok.Typ = TYP_STR
			tk.tok.Tid = TOK_STR
			tk.tok.Str = sb.String()

			return nil

		case '\\':
			if tk.pos >= len(tk.line) {
				continue
			}

			esc := tk.line[tk.pos]
			tk.pos++

			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(esc)
			}

		default:
			sb.WriteByte(ch)
		}
	}

	tk.tok.Tid = TOK_ERR

	return simerr.At(simerr.ERR_EXPECTED_CLOSING_QUOTE, tk.tok.Pos)
}

// Accept checks that the current token is tid and advances past it. The
// error carries code when it is not.
func (tk *Tokenizer) Accept(tid TokId, code simerr.Code) error {
	if tk.tok.Tid != tid {
		return simerr.At(code, tk.tok.Pos)
	}

	return tk.Next()
}

// AcceptComma advances past a required comma.
func (tk *Tokenizer) AcceptComma() error {
	if tk.tok.Tid == TOK_COMMA {
		return tk.Next()
	}

	return simerr.At(simerr.ERR_EXPECTED_COMMA, tk.tok.Pos)
}

func (tk *Tokenizer) CheckEOS() error {
	if tk.tok.Tid != TOK_EOS {
		return simerr.At(simerr.ERR_TOO_MANY_ARGS_CMD_LINE, tk.tok.Pos)
	}

	return nil
}
