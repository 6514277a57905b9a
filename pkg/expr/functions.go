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

package expr

import (
	"github.com/lassandro/vcpu32sim/pkg/assembler"
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

func (ev *Evaluator) parsePredefined(fn tokenizer.Token) (Value, error) {
	if err := ev.tk.Next(); err != nil {
		return Value{}, err
	}

	if err := ev.expect(tokenizer.TOK_LPAREN, simerr.ERR_EXPECTED_LPAREN); err != nil {
		return Value{}, err
	}

	var val Value
	var err error

	switch fn.Tid {
	case tokenizer.PF_ASSEMBLE:
		val, err = ev.funcAssemble()
	case tokenizer.PF_DIS_ASSEMBLE:
		val, err = ev.funcDisassemble()
	case tokenizer.PF_HASH:
		val, err = ev.funcHash()
	case tokenizer.PF_EXT_ADR:
		val, err = ev.funcExtAdr()
	case tokenizer.PF_S32, tokenizer.PF_U32:
		val, err = ev.funcWord()
	default:
		return Value{}, simerr.At(simerr.ERR_UNDEFINED_PFUNC, fn.Pos)
	}

	if err != nil {
		return val, err
	}

	return val, ev.expect(tokenizer.TOK_RPAREN, simerr.ERR_EXPECTED_RPAREN)
}

// S32 and U32 pass numbers through and pack up to four leading string bytes
// into a big endian word.
func (ev *Evaluator) funcWord() (Value, error) {
	pos := ev.tk.Token().Pos

	arg, err := ev.parseExpr()
	if err != nil {
		return arg, err
	}

	switch arg.Typ {
	case tokenizer.TYP_NUM:
		return arg, nil

	case tokenizer.TYP_STR:
		var word uint32

		for i := 0; i < len(arg.Str) && i < 4; i++ {
			word = word<<8 | uint32(arg.Str[i])
		}

		return Num(word), nil
	}

	return Value{}, simerr.At(simerr.ERR_EXPECTED_EXPR, pos)
}

func (ev *Evaluator) funcAssemble() (Value, error) {
	pos := ev.tk.Token().Pos

	arg, err := ev.parseExpr()
	if err != nil {
		return arg, err
	}

	if arg.Typ != tokenizer.TYP_STR {
		return Value{}, simerr.At(simerr.ERR_EXPECTED_STR, pos)
	}

	instr, err := assembler.Assemble(arg.Str)
	if err != nil {
		return Value{}, &simerr.Error{
			Code: simerr.CodeOf(err),
			Pos:  pos,
			Arg:  arg.Str,
		}
	}

	return Num(instr), nil
}

func (ev *Evaluator) funcDisassemble() (Value, error) {
	pos := ev.tk.Token().Pos
	rdx := int(ev.env.GetInt(env.ENV_RDX_DEFAULT, 16))

	arg, err := ev.parseExpr()
	if err != nil {
		return arg, err
	}

	if arg.Typ != tokenizer.TYP_NUM {
		return Value{}, simerr.At(simerr.ERR_EXPECTED_INSTR_VAL, pos)
	}

	if ev.tk.Is(tokenizer.TOK_COMMA) {
		if err := ev.tk.Next(); err != nil {
			return Value{}, err
		}

		switch tok := ev.tk.Token(); tok.Tid {
		case tokenizer.TOK_HEX, tokenizer.TOK_OCT, tokenizer.TOK_DEC:
			rdx = int(tok.Val)

			if err := ev.tk.Next(); err != nil {
				return Value{}, err
			}

		case tokenizer.TOK_EOS:
			return Value{}, ev.fail(simerr.ERR_UNEXPECTED_EOS)

		default:
			return Value{}, ev.fail(simerr.ERR_INVALID_FMT_OPT)
		}
	}

	return Str(assembler.Disassemble(arg.Num, rdx)), nil
}

func (ev *Evaluator) funcHash() (Value, error) {
	pos := ev.tk.Token().Pos

	arg, err := ev.parseExpr()
	if err != nil {
		return arg, err
	}

	if arg.Typ != tokenizer.TYP_EXT_ADR {
		return Value{}, simerr.At(simerr.ERR_EXPECTED_EXT_ADR, pos)
	}

	return Num(ev.mc.ITlb.HashAdr(arg.Seg, arg.Ofs)), nil
}

// ADR(sreg, ofs), ADR(seg, ofs), ADR(extAdr) and ADR(ofs). A plain offset
// selects the segment register from its upper two bits, with zero mapping
// to SR4.
func (ev *Evaluator) funcExtAdr() (Value, error) {
	tok := ev.tk.Token()

	if tok.Typ == tokenizer.TYP_SREG && !tokenizer.IsSetId(tok.Tid) {
		seg := ev.mc.GetReg(machine.RC_SEG_REG_SET, int(tok.Val))

		if err := ev.tk.Next(); err != nil {
			return Value{}, err
		}

		if err := ev.expect(tokenizer.TOK_COMMA, simerr.ERR_EXPECTED_COMMA); err != nil {
			return Value{}, err
		}

		ofs, err := ev.ParseNum(simerr.ERR_EXPECTED_OFS)
		if err != nil {
			return Value{}, err
		}

		return ExtAdr(seg, ofs), nil
	}

	arg, err := ev.parseExpr()
	if err != nil {
		return arg, err
	}

	switch arg.Typ {
	case tokenizer.TYP_NUM:
		if ev.tk.Is(tokenizer.TOK_COMMA) {
			if err := ev.tk.Next(); err != nil {
				return Value{}, err
			}

			ofs, err := ev.ParseNum(simerr.ERR_EXPECTED_OFS)
			if err != nil {
				return Value{}, err
			}

			return ExtAdr(arg.Num, ofs), nil
		}

		segId := arg.Num >> 30
		if segId == 0 {
			segId += 4
		}

		return ExtAdr(ev.mc.GetReg(machine.RC_SEG_REG_SET, int(segId)), arg.Num), nil

	case tokenizer.TYP_EXT_ADR:
		return arg, nil
	}

	return Value{}, simerr.At(simerr.ERR_INVALID_EXPR, tok.Pos)
}
