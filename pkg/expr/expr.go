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

// Package expr evaluates command line expressions. The grammar is
//
//	expr   = [ "+" | "-" ] term { ( "+" | "-" | "|" | "^" ) term }
//	term   = factor { ( "*" | "/" | "%" | "&" ) factor }
//	factor = number | extAdr | string | ident | greg | sreg | creg
//	       | predefFunc | "~" factor | "(" expr ")"
//
// Values are typed; operators only combine compatible types.
package expr

import (
	"fmt"

	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

// Value is the result of an expression. Typ selects the field in use; a
// TYP_NIL value is produced at the end of the line.
type Value struct {
	Typ  tokenizer.TokType
	Tid  tokenizer.TokId
	Bool bool
	Num  uint32
	Str  string
	Seg  uint32
	Ofs  uint32
}

func Num(value uint32) Value {
	return Value{Typ: tokenizer.TYP_NUM, Num: value}
}

func Bool(value bool) Value {
	return Value{Typ: tokenizer.TYP_BOOL, Bool: value}
}

func Str(value string) Value {
	return Value{Typ: tokenizer.TYP_STR, Str: value}
}

func ExtAdr(seg, ofs uint32) Value {
	return Value{Typ: tokenizer.TYP_EXT_ADR, Seg: seg, Ofs: ofs}
}

func (val Value) IsNil() bool {
	return val.Typ == tokenizer.TYP_NIL
}

// IsSym reports whether the value is the reserved symbol tid, such as NIL.
func (val Value) IsSym(tid tokenizer.TokId) bool {
	return val.Typ == tokenizer.TYP_SYM && val.Tid == tid
}

// FromEnv converts an environment entry value. Both integer kinds become
// numbers.
func FromEnv(val env.Value) Value {
	switch val.Type {
	case env.TYP_BOOL:
		return Bool(val.Bool)
	case env.TYP_INT:
		return Num(uint32(val.Int))
	case env.TYP_UINT:
		return Num(val.Uint)
	case env.TYP_STR:
		return Str(val.Str)
	case env.TYP_EXT_ADR:
		return ExtAdr(val.Seg, val.Ofs)
	}

	return Value{}
}

// EnvValue converts the value for storage in the environment table. Numbers
// are stored signed.
func (val Value) EnvValue() (env.Value, error) {
	switch val.Typ {
	case tokenizer.TYP_NUM:
		return env.Int(int32(val.Num)), nil
	case tokenizer.TYP_BOOL:
		return env.Bool(val.Bool), nil
	case tokenizer.TYP_STR:
		return env.Str(val.Str), nil
	case tokenizer.TYP_EXT_ADR:
		return env.ExtAdr(val.Seg, val.Ofs), nil
	}

	return env.Value{}, simerr.ERR_ENV_VALUE_EXPR
}

// FormatNum prints a number in radix 8, 10 or 16. Hex values are zero
// padded to eight digits; decimal values are signed.
func FormatNum(num uint32, rdx int) string {
	switch rdx {
	case 8:
		return fmt.Sprintf("%#o", num)
	case 10:
		return fmt.Sprintf("%d", int32(num))
	default:
		return fmt.Sprintf("0x%08x", num)
	}
}

func (val Value) Format(rdx int) string {
	switch val.Typ {
	case tokenizer.TYP_NUM:
		return FormatNum(val.Num, rdx)
	case tokenizer.TYP_BOOL:
		if val.Bool {
			return "TRUE"
		}

		return "FALSE"
	case tokenizer.TYP_STR:
		return val.Str
	case tokenizer.TYP_EXT_ADR:
		return FormatNum(val.Seg, rdx) + "." + FormatNum(val.Ofs, rdx)
	case tokenizer.TYP_SYM:
		if name, ok := tokenizer.CmdTable.Name(val.Tid); ok {
			return name
		}
	}

	return "<nil>"
}

// Evaluator parses expressions from a tokenizer that the caller positions on
// the first token of the expression. Register factors read the machine.
type Evaluator struct {
	tk  *tokenizer.Tokenizer
	env *env.Table
	mc  *machine.Machine
}

func New(tk *tokenizer.Tokenizer, tab *env.Table, mc *machine.Machine) *Evaluator {
	return &Evaluator{tk: tk, env: tab, mc: mc}
}

func (ev *Evaluator) fail(code simerr.Code) error {
	return simerr.At(code, ev.tk.Token().Pos)
}

func (ev *Evaluator) expect(tid tokenizer.TokId, code simerr.Code) error {
	if ev.tk.IsEOS() && tid != tokenizer.TOK_EOS {
		return ev.fail(simerr.ERR_UNEXPECTED_EOS)
	}

	return ev.tk.Accept(tid, code)
}

// Parse evaluates one expression and leaves the tokenizer on the first token
// after it.
func (ev *Evaluator) Parse() (Value, error) {
	return ev.parseExpr()
}

// ParseNum evaluates an expression that must be numeric. Anything else fails
// with code.
func (ev *Evaluator) ParseNum(code simerr.Code) (uint32, error) {
	pos := ev.tk.Token().Pos

	val, err := ev.parseExpr()
	if err != nil {
		return 0, err
	}

	if val.Typ != tokenizer.TYP_NUM {
		return 0, simerr.At(code, pos)
	}

	return val.Num, nil
}

// Eval evaluates a complete line.
func Eval(line string, tab *env.Table, mc *machine.Machine) (Value, error) {
	tk := tokenizer.New(tokenizer.CmdTable)
	tk.Setup(line)

	if err := tk.Next(); err != nil {
		return Value{}, err
	}

	val, err := New(tk, tab, mc).Parse()
	if err != nil {
		return val, err
	}

	return val, tk.CheckEOS()
}

func (ev *Evaluator) parseFactor() (Value, error) {
	tok := ev.tk.Token()

	switch {
	case tok.Typ == tokenizer.TYP_NUM:
		return Num(tok.Val), ev.tk.Next()

	case tok.Typ == tokenizer.TYP_EXT_ADR:
		return ExtAdr(tok.Seg, tok.Ofs), ev.tk.Next()

	case tok.Typ == tokenizer.TYP_STR:
		return Str(tok.Str), ev.tk.Next()

	case tok.Typ == tokenizer.TYP_GREG && !tokenizer.IsSetId(tok.Tid):
		return Num(ev.mc.GetReg(machine.RC_GEN_REG_SET, int(tok.Val))), ev.tk.Next()

	case tok.Typ == tokenizer.TYP_SREG && !tokenizer.IsSetId(tok.Tid):
		return Num(ev.mc.GetReg(machine.RC_SEG_REG_SET, int(tok.Val))), ev.tk.Next()

	case tok.Typ == tokenizer.TYP_CREG && !tokenizer.IsSetId(tok.Tid):
		return Num(ev.mc.GetReg(machine.RC_CTRL_REG_SET, int(tok.Val))), ev.tk.Next()

	case tok.Typ == tokenizer.TYP_PREDEFINED_FUNC:
		return ev.parsePredefined(tok)

	case tok.Tid == tokenizer.TOK_IDENT:
		entry, ok := ev.env.Get(tok.Name)
		if !ok {
			return Value{}, ev.fail(simerr.ERR_ENV_VAR_NOT_FOUND)
		}

		return FromEnv(entry), ev.tk.Next()

	case tok.Tid == tokenizer.TOK_NIL:
		return Value{Typ: tokenizer.TYP_SYM, Tid: tokenizer.TOK_NIL}, ev.tk.Next()

	case tok.Tid == tokenizer.TOK_NEG:
		if err := ev.tk.Next(); err != nil {
			return Value{}, err
		}

		val, err := ev.parseFactor()
		if err != nil {
			return val, err
		}

		switch val.Typ {
		case tokenizer.TYP_NUM:
			val.Num = ^val.Num
		case tokenizer.TYP_BOOL:
			val.Bool = !val.Bool
		default:
			return val, simerr.At(simerr.ERR_EXPR_TYPE_MATCH, tok.Pos)
		}

		return val, nil

	case tok.Tid == tokenizer.TOK_LPAREN:
		if err := ev.tk.Next(); err != nil {
			return Value{}, err
		}

		val, err := ev.parseExpr()
		if err != nil {
			return val, err
		}

		return val, ev.expect(tokenizer.TOK_RPAREN, simerr.ERR_EXPECTED_RPAREN)

	case tok.Tid == tokenizer.TOK_EOS:
		return Value{}, nil
	}

	return Value{}, ev.fail(simerr.ERR_EXPR_FACTOR)
}

func (ev *Evaluator) parseTerm() (Value, error) {
	left, err := ev.parseFactor()
	if err != nil {
		return left, err
	}

	for {
		tok := ev.tk.Token()

		switch tok.Tid {
		case tokenizer.TOK_MULT, tokenizer.TOK_DIV, tokenizer.TOK_MOD, tokenizer.TOK_AND:
		default:
			return left, nil
		}

		if err := ev.tk.Next(); err != nil {
			return left, err
		}

		right, err := ev.parseFactor()
		if err != nil {
			return left, err
		}

		if right.IsNil() {
			return left, ev.fail(simerr.ERR_UNEXPECTED_EOS)
		}

		if tok.Tid == tokenizer.TOK_AND {
			left, err = logical(left, right, tok)
		} else {
			left, err = arithmetic(left, right, tok)
		}

		if err != nil {
			return left, err
		}
	}
}

func (ev *Evaluator) parseExpr() (Value, error) {
	var left Value
	var err error

	if tok := ev.tk.Token(); tok.Tid == tokenizer.TOK_PLUS || tok.Tid == tokenizer.TOK_MINUS {
		if err := ev.tk.Next(); err != nil {
			return left, err
		}

		if left, err = ev.parseTerm(); err != nil {
			return left, err
		}

		if left.Typ != tokenizer.TYP_NUM {
			return left, simerr.At(simerr.ERR_EXPECTED_NUMERIC, tok.Pos)
		}

		if tok.Tid == tokenizer.TOK_MINUS {
			left.Num = uint32(-int32(left.Num))
		}
	} else if left, err = ev.parseTerm(); err != nil {
		return left, err
	}

	for {
		tok := ev.tk.Token()

		switch tok.Tid {
		case tokenizer.TOK_PLUS, tokenizer.TOK_MINUS, tokenizer.TOK_OR, tokenizer.TOK_XOR:
		default:
			return left, nil
		}

		if err := ev.tk.Next(); err != nil {
			return left, err
		}

		right, err := ev.parseTerm()
		if err != nil {
			return left, err
		}

		if right.IsNil() {
			return left, ev.fail(simerr.ERR_UNEXPECTED_EOS)
		}

		if tok.Tid == tokenizer.TOK_OR || tok.Tid == tokenizer.TOK_XOR {
			left, err = logical(left, right, tok)
		} else {
			left, err = arithmetic(left, right, tok)
		}

		if err != nil {
			return left, err
		}
	}
}

// Arithmetic applies to numbers, and to the offset of a virtual address.
func arithmetic(left Value, right Value, op tokenizer.Token) (Value, error) {
	if right.Typ != tokenizer.TYP_NUM {
		return left, simerr.At(simerr.ERR_EXPR_TYPE_MATCH, op.Pos)
	}

	var target *uint32

	switch left.Typ {
	case tokenizer.TYP_NUM:
		target = &left.Num
	case tokenizer.TYP_EXT_ADR:
		target = &left.Ofs
	default:
		return left, simerr.At(simerr.ERR_EXPR_TYPE_MATCH, op.Pos)
	}

	switch op.Tid {
	case tokenizer.TOK_PLUS:
		*target += right.Num
	case tokenizer.TOK_MINUS:
		*target -= right.Num
	case tokenizer.TOK_MULT:
		*target *= right.Num
	case tokenizer.TOK_DIV, tokenizer.TOK_MOD:
		if right.Num == 0 {
			return left, simerr.At(simerr.ERR_INVALID_EXPR, op.Pos)
		}

		if op.Tid == tokenizer.TOK_DIV {
			*target /= right.Num
		} else {
			*target %= right.Num
		}
	}

	return left, nil
}

func logical(left Value, right Value, op tokenizer.Token) (Value, error) {
	if left.Typ != right.Typ {
		return left, simerr.At(simerr.ERR_EXPR_TYPE_MATCH, op.Pos)
	}

	switch left.Typ {
	case tokenizer.TYP_BOOL:
		switch op.Tid {
		case tokenizer.TOK_AND:
			left.Bool = left.Bool && right.Bool
		case tokenizer.TOK_OR:
			left.Bool = left.Bool || right.Bool
		case tokenizer.TOK_XOR:
			left.Bool = left.Bool != right.Bool
		}

	case tokenizer.TYP_NUM:
		switch op.Tid {
		case tokenizer.TOK_AND:
			left.Num &= right.Num
		case tokenizer.TOK_OR:
			left.Num |= right.Num
		case tokenizer.TOK_XOR:
			left.Num ^= right.Num
		}

	default:
		return left, simerr.At(simerr.ERR_EXPR_TYPE_MATCH, op.Pos)
	}

	return left, nil
}
