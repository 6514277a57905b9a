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

package assembler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/encoding"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

const TOK_OP_CODE tokenizer.TokId = 5000

// AsmTable holds the opcode mnemonics and the register names. Opcode entries
// carry their index into the mnemonic list in Val.
var AsmTable = newAsmTable()

func newAsmTable() tokenizer.Table {
	var tab tokenizer.Table

	for _, entry := range tokenizer.CmdTable {
		switch entry.Typ {
		case tokenizer.TYP_GREG, tokenizer.TYP_SREG, tokenizer.TYP_CREG:
			if !tokenizer.IsSetId(entry.Tid) {
				tab = append(tab, entry)
			}
		}
	}

	for i, m := range mnemonics {
		typ := tokenizer.TYP_OP_CODE
		if m.typ == INSTRUCTION_NOP {
			typ = tokenizer.TYP_OP_CODE_S
		}

		tab = append(tab, tokenizer.Entry{
			Name: m.name,
			Typ:  typ,
			Tid:  TOK_OP_CODE + tokenizer.TokId(i),
			Val:  uint32(i),
		})
	}

	return tab
}

type operand struct {
	typ OperandType
	val int32
	reg uint32
	seg uint32
	pos Cursor
}

type parser struct {
	tk    *tokenizer.Tokenizer
	line  int
	instr uint32
	typ   InstructionType
	flags InstructionFlags
	opPos Cursor
}

func tokenText(tok tokenizer.Token) string {
	switch {
	case tok.Tid == tokenizer.TOK_EOS:
		return ""
	case tok.Tid == tokenizer.TOK_NUM:
		return fmt.Sprint(tok.Val)
	case tok.Tid == tokenizer.TOK_STR:
		return fmt.Sprintf("%q", tok.Str)
	default:
		return tok.Name
	}
}

func (p *parser) cursor() Cursor {
	tok := p.tk.Token()

	size := len(tokenText(tok))
	if size == 0 {
		size = 1
	}

	return Cursor{Line: p.line, Column: tok.Pos, Size: size}
}

func (p *parser) next() error {
	if err := p.tk.Next(); err != nil {
		var serr *simerr.Error
		if errors.As(err, &serr) {
			return &LexicalError{
				Position: Cursor{Line: p.line, Column: serr.Pos, Size: 1},
				Err:      serr,
			}
		}

		return err
	}

	return nil
}

func (p *parser) accept(tid tokenizer.TokId) error {
	if !p.tk.Is(tid) {
		return &ExpectedTokenError{
			Position: p.cursor(),
			Required: tid,
			Received: tokenText(p.tk.Token()),
		}
	}

	return p.next()
}

func (p *parser) checkEOS() error {
	if !p.tk.IsEOS() {
		return &ExpectedTokenError{
			Position: p.cursor(),
			Required: tokenizer.TOK_EOS,
			Received: tokenText(p.tk.Token()),
		}
	}

	return nil
}

func typeOf(tok tokenizer.Token) OperandType {
	switch tok.Typ {
	case tokenizer.TYP_NUM:
		return OPERAND_NUM
	case tokenizer.TYP_GREG:
		return OPERAND_GREG
	case tokenizer.TYP_SREG:
		return OPERAND_SREG
	case tokenizer.TYP_CREG:
		return OPERAND_CREG
	default:
		return OPERAND_NONE
	}
}

func (p *parser) register(typ tokenizer.TokType, want OperandType) (uint32, error) {
	tok := p.tk.Token()

	if tok.Typ != typ {
		return 0, &InvalidOperandError{
			Position: p.cursor(),
			Required: []OperandType{want},
			Received: typeOf(tok),
		}
	}

	return tok.Val, p.next()
}

func (p *parser) generalRegister() (uint32, error) {
	return p.register(tokenizer.TYP_GREG, OPERAND_GREG)
}

// Parses "<greg> ,", the target register most instructions start with.
func (p *parser) target() error {
	r, err := p.generalRegister()
	if err != nil {
		return err
	}

	p.setField(9, 4, r)

	return p.accept(tokenizer.TOK_COMMA)
}

func (p *parser) setField(pos int, length int, value uint32) {
	p.instr = encoding.SetBitField(p.instr, pos, length, value)
}

func (p *parser) setImm(op operand, pos int, length int, literal LiteralType) error {
	word, ok := encoding.SetImmVal(p.instr, pos, length, op.val)
	if !ok {
		return &OversizedLiteralError{
			Position: op.pos,
			Literal:  literal,
			Required: length,
			Received: int64(op.val),
		}
	}

	p.instr = word

	return nil
}

func (p *parser) setImmU(op operand, pos int, length int, literal LiteralType) error {
	if op.val < 0 {
		return &OversizedLiteralError{
			Position: op.pos,
			Literal:  literal,
			Required: length,
			Received: int64(op.val),
		}
	}

	word, ok := encoding.SetImmValU(p.instr, pos, length, uint32(op.val))
	if !ok {
		return &OversizedLiteralError{
			Position: op.pos,
			Literal:  literal,
			Required: length,
			Received: int64(op.val),
		}
	}

	p.instr = word

	return nil
}

// Branch offsets are written in bytes and stored in words.
func (p *parser) setOffset(op operand, pos int, length int) error {
	if op.val%4 != 0 {
		return &MisalignedOffsetError{Position: op.pos, Received: int64(op.val)}
	}

	words := op
	words.val /= 4

	if err := p.setImm(words, pos, length, LITERAL_OFFSET); err != nil {
		err.(*OversizedLiteralError).Received = int64(op.val)
		return err
	}

	return nil
}

func (p *parser) dataWidth() uint32 {
	switch {
	case p.flags&TF_BYTE_INSTR != 0:
		return 0
	case p.flags&TF_HALF_INSTR != 0:
		return 1
	default:
		return 2
	}
}

func invalidOperand(op operand, required ...OperandType) error {
	return &InvalidOperandError{
		Position: op.pos,
		Required: required,
		Received: op.typ,
	}
}

func (p *parser) expect(typ OperandType) (operand, error) {
	op, err := p.expr()
	if err != nil {
		return op, err
	}

	if op.typ != typ {
		return op, invalidOperand(op, typ)
	}

	return op, nil
}

//
// Expressions
//
// factor = num | greg | sreg | creg | "~" factor
//        | "(" sreg "," greg ")" | "(" greg ")" | "(" expr ")"
// term   = factor { ( "*" | "/" | "%" | "&" ) factor }
// expr   = [ "+" | "-" ] term { ( "+" | "-" | "|" | "^" ) term }
//

func (p *parser) factor() (operand, error) {
	tok := p.tk.Token()
	op := operand{pos: p.cursor()}

	switch {
	case tok.Typ == tokenizer.TYP_NUM:
		op.typ = OPERAND_NUM
		op.val = int32(tok.Val)

		return op, p.next()

	case tok.Typ == tokenizer.TYP_GREG,
		tok.Typ == tokenizer.TYP_SREG,
		tok.Typ == tokenizer.TYP_CREG:
		op.typ = typeOf(tok)
		op.reg = tok.Val

		return op, p.next()

	case tok.Tid == tokenizer.TOK_NEG:
		if err := p.next(); err != nil {
			return op, err
		}

		inner, err := p.factor()
		if err != nil {
			return op, err
		}

		if inner.typ != OPERAND_NUM {
			return op, invalidOperand(inner, OPERAND_NUM)
		}

		op.typ = OPERAND_NUM
		op.val = ^inner.val

		return op, nil

	case tok.Tid == tokenizer.TOK_LPAREN:
		if err := p.next(); err != nil {
			return op, err
		}

		switch p.tk.Token().Typ {
		case tokenizer.TYP_SREG:
			op.typ = OPERAND_EXT_ADR
			op.seg = p.tk.Token().Val

			if err := p.next(); err != nil {
				return op, err
			}

			if err := p.accept(tokenizer.TOK_COMMA); err != nil {
				return op, err
			}

			reg, err := p.generalRegister()
			if err != nil {
				return op, err
			}

			op.reg = reg

			return op, p.accept(tokenizer.TOK_RPAREN)

		case tokenizer.TYP_GREG:
			op.typ = OPERAND_ADR
			op.reg = p.tk.Token().Val

			if err := p.next(); err != nil {
				return op, err
			}

			return op, p.accept(tokenizer.TOK_RPAREN)
		}

		inner, err := p.expr()
		if err != nil {
			return op, err
		}

		inner.pos = op.pos

		return inner, p.accept(tokenizer.TOK_RPAREN)
	}

	return op, &InvalidOperandError{Position: op.pos, Received: OPERAND_NONE}
}

func (p *parser) term() (operand, error) {
	left, err := p.factor()
	if err != nil {
		return left, err
	}

	for {
		tid := p.tk.Token().Tid

		if tid != tokenizer.TOK_MULT && tid != tokenizer.TOK_DIV &&
			tid != tokenizer.TOK_MOD && tid != tokenizer.TOK_AND {
			return left, nil
		}

		pos := p.cursor()

		if err := p.next(); err != nil {
			return left, err
		}

		right, err := p.factor()
		if err != nil {
			return left, err
		}

		if left.typ != OPERAND_NUM || right.typ != OPERAND_NUM {
			return left, &ExpressionTypeError{
				Position: right.pos,
				Left:     left.typ,
				Right:    right.typ,
			}
		}

		switch tid {
		case tokenizer.TOK_MULT:
			left.val *= right.val
		case tokenizer.TOK_DIV, tokenizer.TOK_MOD:
			if right.val == 0 {
				return left, &DivisionByZeroError{Position: pos}
			}

			if tid == tokenizer.TOK_DIV {
				left.val /= right.val
			} else {
				left.val %= right.val
			}
		case tokenizer.TOK_AND:
			left.val &= right.val
		}
	}
}

func (p *parser) expr() (operand, error) {
	var left operand
	var err error

	if p.tk.Is(tokenizer.TOK_PLUS) || p.tk.Is(tokenizer.TOK_MINUS) {
		negate := p.tk.Is(tokenizer.TOK_MINUS)
		pos := p.cursor()

		if err := p.next(); err != nil {
			return left, err
		}

		if left, err = p.term(); err != nil {
			return left, err
		}

		if left.typ != OPERAND_NUM {
			return left, invalidOperand(left, OPERAND_NUM)
		}

		if negate {
			left.val = -left.val
		}

		left.pos = pos
	} else if left, err = p.term(); err != nil {
		return left, err
	}

	for {
		tid := p.tk.Token().Tid

		if tid != tokenizer.TOK_PLUS && tid != tokenizer.TOK_MINUS &&
			tid != tokenizer.TOK_OR && tid != tokenizer.TOK_XOR {
			return left, nil
		}

		if err := p.next(); err != nil {
			return left, err
		}

		right, err := p.term()
		if err != nil {
			return left, err
		}

		if left.typ != OPERAND_NUM || right.typ != OPERAND_NUM {
			return left, &ExpressionTypeError{
				Position: right.pos,
				Left:     left.typ,
				Right:    right.typ,
			}
		}

		switch tid {
		case tokenizer.TOK_PLUS:
			left.val += right.val
		case tokenizer.TOK_MINUS:
			left.val -= right.val
		case tokenizer.TOK_OR:
			left.val |= right.val
		case tokenizer.TOK_XOR:
			left.val ^= right.val
		}
	}
}

//
// Options
//

func (p *parser) parseOption() error {
	tok := p.tk.Token()
	pos := p.cursor()

	if tok.Name == "" || tok.Typ == tokenizer.TYP_SYM {
		return &InvalidOptionError{Position: pos, Received: tokenText(tok)}
	}

	set, ok := options[p.typ]
	if !ok {
		return &NoOptionError{Position: pos, Received: tok.Name}
	}

	if len(set.fields) > 0 {
		matched := false

		for _, field := range set.fields {
			if field.name == tok.Name {
				p.setField(field.pos, field.length, field.value)
				matched = true
				break
			}
		}

		if !matched {
			return &InvalidOptionError{Position: pos, Received: tok.Name}
		}

		return p.next()
	}

	for i := 0; i < len(tok.Name); i++ {
		matched := false

		for _, bit := range set.bits {
			if bit.letter == tok.Name[i] {
				p.instr = encoding.SetBit(p.instr, bit.pos, true)
				matched = true
				break
			}
		}

		if !matched {
			return &InvalidOptionError{Position: pos, Received: tok.Name}
		}
	}

	return p.next()
}

//
// Instructions
//

// <op>[B|H|W] r "," num
// <op>[B|H|W] r "," greg [ "," greg ]
// <op>[B|H|W] r "," greg "(" greg ")"
// <op>[B|H|W] r "," num "(" greg ")"
func (p *parser) parseModeType() error {
	r, err := p.generalRegister()
	if err != nil {
		return err
	}

	p.setField(9, 4, r)

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	op, err := p.expr()
	if err != nil {
		return err
	}

	var mode uint32

	switch op.typ {
	case OPERAND_NUM:
		if p.tk.IsEOS() {
			mode = 0

			if err := p.setImm(op, 31, 18, LITERAL_IMMEDIATE); err != nil {
				return err
			}

			break
		}

		mode = 3

		if err := p.setImm(op, 27, 12, LITERAL_OFFSET); err != nil {
			return err
		}

		adr, err := p.expect(OPERAND_ADR)
		if err != nil {
			return err
		}

		p.setField(31, 4, adr.reg)

	case OPERAND_GREG:
		switch {
		case p.tk.IsEOS():
			mode = 1
			p.setField(27, 4, r)
			p.setField(31, 4, op.reg)

		case p.tk.Is(tokenizer.TOK_COMMA):
			mode = 1

			if err := p.next(); err != nil {
				return err
			}

			b, err := p.generalRegister()
			if err != nil {
				return err
			}

			p.setField(27, 4, op.reg)
			p.setField(31, 4, b)

		default:
			mode = 2

			adr, err := p.expect(OPERAND_ADR)
			if err != nil {
				return err
			}

			p.setField(27, 4, op.reg)
			p.setField(31, 4, adr.reg)
		}

	default:
		return invalidOperand(op, OPERAND_NUM, OPERAND_GREG)
	}

	if mode < 2 && p.flags&(TF_BYTE_INSTR|TF_HALF_INSTR) != 0 {
		return &DataWidthError{Position: p.opPos}
	}

	p.setField(13, 2, mode)

	if mode >= 2 {
		p.setField(15, 2, p.dataWidth())
	}

	return p.checkEOS()
}

// Accepts "(" greg ")" or "(" sreg "," greg ")" with SR1 to SR3.
func (p *parser) setLogicalAdr(op operand) error {
	switch op.typ {
	case OPERAND_ADR:
		p.setField(13, 2, 0)

	case OPERAND_EXT_ADR:
		if op.seg < 1 || op.seg > 3 {
			return &InvalidSegmentError{Position: op.pos, Received: op.seg}
		}

		p.setField(13, 2, op.seg)

	default:
		return invalidOperand(op, OPERAND_ADR, OPERAND_EXT_ADR)
	}

	p.setField(31, 4, op.reg)

	return nil
}

// <ld> r "," [ ofs | greg ] "(" [ sreg "," ] greg ")"
// <st> r "," [ ofs | greg ] "(" [ sreg "," ] greg ")"
func (p *parser) parseLoadStore() error {
	if err := p.target(); err != nil {
		return err
	}

	p.setField(15, 2, p.dataWidth())

	op, err := p.expr()
	if err != nil {
		return err
	}

	switch op.typ {
	case OPERAND_NUM:
		if err := p.setImm(op, 27, 12, LITERAL_OFFSET); err != nil {
			return err
		}

		if op, err = p.expr(); err != nil {
			return err
		}

	case OPERAND_GREG:
		if p.typ == INSTRUCTION_LDR || p.typ == INSTRUCTION_STC {
			return &InvalidModeError{
				Position: op.pos,
				Reason:   "register offset not allowed",
			}
		}

		p.instr = encoding.SetBit(p.instr, 10, true)
		p.setField(27, 4, op.reg)

		if op, err = p.expr(); err != nil {
			return err
		}
	}

	if op.typ == OPERAND_EXT_ADR && (p.typ == INSTRUCTION_LDA || p.typ == INSTRUCTION_STA) {
		return &InvalidModeError{
			Position: op.pos,
			Reason:   "absolute address takes no segment",
		}
	}

	if err := p.setLogicalAdr(op); err != nil {
		return err
	}

	return p.checkEOS()
}

// Parses a run of comma separated general registers into the given fields.
func (p *parser) registers(fields ...int) error {
	for i, pos := range fields {
		if i > 0 {
			if err := p.accept(tokenizer.TOK_COMMA); err != nil {
				return err
			}
		}

		reg, err := p.generalRegister()
		if err != nil {
			return err
		}

		p.setField(pos, 4, reg)
	}

	return nil
}

// LSID r "," b
// DS   r "," a "," b
// CMR  r "," a "," b
// DIAG r "," a "," b "," info
func (p *parser) parseRegisters() error {
	fields := []int{9, 31}
	if p.typ != INSTRUCTION_LSID {
		fields = []int{9, 27, 31}
	}

	if err := p.registers(fields...); err != nil {
		return err
	}

	if p.typ == INSTRUCTION_DIAG {
		if err := p.accept(tokenizer.TOK_COMMA); err != nil {
			return err
		}

		info, err := p.expect(OPERAND_NUM)
		if err != nil {
			return err
		}

		if err := p.setImmU(info, 13, 4, LITERAL_IMMEDIATE); err != nil {
			return err
		}
	}

	return p.checkEOS()
}

// Parses "[ pos "," ] len". The position is omitted with the A option, which
// takes it from the shift amount register.
func (p *parser) parsePosLen(withPos bool) error {
	if withPos {
		pos, err := p.expect(OPERAND_NUM)
		if err != nil {
			return err
		}

		if err := p.setImmU(pos, 27, 5, LITERAL_POSITION); err != nil {
			return err
		}

		if err := p.accept(tokenizer.TOK_COMMA); err != nil {
			return err
		}
	}

	length, err := p.expect(OPERAND_NUM)
	if err != nil {
		return err
	}

	if err := p.setImmU(length, 21, 5, LITERAL_LENGTH); err != nil {
		return err
	}

	return p.checkEOS()
}

// EXTR[.SA] r "," b "," [ pos "," ] len
func (p *parser) parseEXTR() error {
	if err := p.registers(9, 31); err != nil {
		return err
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	return p.parsePosLen(!encoding.GetBit(p.instr, 11))
}

// DEP[.ZAI] r "," b "," [ pos "," ] len
// DEP.I     r "," val "," [ pos "," ] len
func (p *parser) parseDEP() error {
	if err := p.target(); err != nil {
		return err
	}

	op, err := p.expr()
	if err != nil {
		return err
	}

	if encoding.GetBit(p.instr, 12) {
		if op.typ != OPERAND_NUM {
			return invalidOperand(op, OPERAND_NUM)
		}

		if err := p.setImmU(op, 31, 4, LITERAL_IMMEDIATE); err != nil {
			return err
		}
	} else {
		if op.typ != OPERAND_GREG {
			return invalidOperand(op, OPERAND_GREG)
		}

		p.setField(31, 4, op.reg)
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	return p.parsePosLen(!encoding.GetBit(p.instr, 11))
}

// DSR   r "," a "," b "," len
// DSR.A r "," a "," b
func (p *parser) parseDSR() error {
	if err := p.registers(9, 27, 31); err != nil {
		return err
	}

	if encoding.GetBit(p.instr, 11) {
		return p.checkEOS()
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	return p.parsePosLen(false)
}

// SHLA[.LO] r "," a "," b [ "," sa ]
// SHLA.I    r "," a "," val [ "," sa ]
func (p *parser) parseSHLA() error {
	if err := p.registers(9, 27); err != nil {
		return err
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	op, err := p.expr()
	if err != nil {
		return err
	}

	if encoding.GetBit(p.instr, 10) {
		if op.typ != OPERAND_NUM {
			return invalidOperand(op, OPERAND_NUM)
		}

		if err := p.setImmU(op, 31, 4, LITERAL_IMMEDIATE); err != nil {
			return err
		}
	} else {
		if op.typ != OPERAND_GREG {
			return invalidOperand(op, OPERAND_GREG)
		}

		p.setField(31, 4, op.reg)
	}

	if p.tk.Is(tokenizer.TOK_COMMA) {
		if err := p.next(); err != nil {
			return err
		}

		sa, err := p.expect(OPERAND_NUM)
		if err != nil {
			return err
		}

		if err := p.setImmU(sa, 21, 2, LITERAL_IMMEDIATE); err != nil {
			return err
		}
	}

	return p.checkEOS()
}

// LDIL  r "," val
// ADDIL r "," val
func (p *parser) parseImmediateLeft() error {
	if err := p.target(); err != nil {
		return err
	}

	val, err := p.expect(OPERAND_NUM)
	if err != nil {
		return err
	}

	if err := p.setImmU(val, 31, 22, LITERAL_IMMEDIATE); err != nil {
		return err
	}

	return p.checkEOS()
}

// LDO r "," [ ofs ] "(" b ")"
func (p *parser) parseLDO() error {
	if err := p.target(); err != nil {
		return err
	}

	op, err := p.expr()
	if err != nil {
		return err
	}

	if op.typ == OPERAND_NUM {
		if err := p.setImm(op, 27, 18, LITERAL_OFFSET); err != nil {
			return err
		}

		if op, err = p.expr(); err != nil {
			return err
		}
	}

	if op.typ != OPERAND_ADR {
		return invalidOperand(op, OPERAND_ADR)
	}

	p.setField(31, 4, op.reg)

	return p.checkEOS()
}

// Parses the optional ", r" return register of the branch instructions.
func (p *parser) parseReturnReg() error {
	if p.tk.Is(tokenizer.TOK_COMMA) {
		if err := p.next(); err != nil {
			return err
		}

		r, err := p.generalRegister()
		if err != nil {
			return err
		}

		p.setField(9, 4, r)
	}

	return p.checkEOS()
}

// B    ofs [ "," r ]
// GATE ofs [ "," r ]
func (p *parser) parseBranch() error {
	ofs, err := p.expect(OPERAND_NUM)
	if err != nil {
		return err
	}

	if err := p.setOffset(ofs, 31, 22); err != nil {
		return err
	}

	return p.parseReturnReg()
}

// BR "(" b ")" [ "," r ]
// BV "(" b ")" [ "," r ]
func (p *parser) parseBranchReg() error {
	adr, err := p.expect(OPERAND_ADR)
	if err != nil {
		return err
	}

	p.setField(31, 4, adr.reg)

	return p.parseReturnReg()
}

// BE [ ofs ] "(" sreg "," b ")" [ "," r ]
func (p *parser) parseBE() error {
	op, err := p.expr()
	if err != nil {
		return err
	}

	if op.typ == OPERAND_NUM {
		if err := p.setOffset(op, 23, 14); err != nil {
			return err
		}

		if op, err = p.expr(); err != nil {
			return err
		}
	}

	if op.typ != OPERAND_EXT_ADR {
		return invalidOperand(op, OPERAND_EXT_ADR)
	}

	p.setField(27, 4, op.seg)
	p.setField(31, 4, op.reg)

	return p.parseReturnReg()
}

// BVE [ a ] "(" b ")" [ "," r ]
func (p *parser) parseBVE() error {
	op, err := p.expr()
	if err != nil {
		return err
	}

	if op.typ == OPERAND_GREG {
		p.setField(27, 4, op.reg)

		if op, err = p.expr(); err != nil {
			return err
		}
	}

	if op.typ != OPERAND_ADR {
		return invalidOperand(op, OPERAND_ADR)
	}

	p.setField(31, 4, op.reg)

	return p.parseReturnReg()
}

// CBR[.cond]  a "," b "," ofs
// CBRU[.cond] a "," b "," ofs
func (p *parser) parseCBR() error {
	if err := p.registers(27, 31); err != nil {
		return err
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	ofs, err := p.expect(OPERAND_NUM)
	if err != nil {
		return err
	}

	if err := p.setOffset(ofs, 23, 15); err != nil {
		return err
	}

	return p.checkEOS()
}

// MR greg "," sreg | creg | greg
// MR sreg "," greg
// MR creg "," greg
//
// The operand order selects the direction; a register to register move is an
// OR with R0.
func (p *parser) parseMR() error {
	dst := p.tk.Token()
	dstPos := p.cursor()

	if err := p.next(); err != nil {
		return err
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	src := p.tk.Token()
	srcPos := p.cursor()

	p.instr = encoding.SetBitField(p.instr, 11, 2, 0)

	switch dst.Typ {
	case tokenizer.TYP_GREG:
		switch src.Typ {
		case tokenizer.TYP_GREG:
			p.instr = 0
			p.setField(5, 6, machine.OP_OR)
			p.setField(9, 4, dst.Val)
			p.setField(13, 2, 1)
			p.setField(31, 4, src.Val)

		case tokenizer.TYP_SREG:
			p.setField(9, 4, dst.Val)
			p.setField(31, 3, src.Val)

		case tokenizer.TYP_CREG:
			p.instr = encoding.SetBit(p.instr, 11, true)
			p.setField(9, 4, dst.Val)
			p.setField(31, 5, src.Val)

		default:
			return &InvalidOperandError{
				Position: srcPos,
				Required: []OperandType{OPERAND_GREG, OPERAND_SREG, OPERAND_CREG},
				Received: typeOf(src),
			}
		}

	case tokenizer.TYP_SREG, tokenizer.TYP_CREG:
		if src.Typ != tokenizer.TYP_GREG {
			return &InvalidRegisterComboError{Position: srcPos}
		}

		p.instr = encoding.SetBit(p.instr, 10, true)
		p.setField(9, 4, src.Val)

		if dst.Typ == tokenizer.TYP_SREG {
			p.setField(31, 3, dst.Val)
		} else {
			p.instr = encoding.SetBit(p.instr, 11, true)
			p.setField(31, 5, dst.Val)
		}

	default:
		return &InvalidOperandError{
			Position: dstPos,
			Required: []OperandType{OPERAND_GREG, OPERAND_SREG, OPERAND_CREG},
			Received: typeOf(dst),
		}
	}

	if err := p.next(); err != nil {
		return err
	}

	return p.checkEOS()
}

// MST b
// MST.S val
// MST.C val
func (p *parser) parseMST() error {
	op, err := p.expr()
	if err != nil {
		return err
	}

	opt := encoding.GetBitField(p.instr, 11, 2, false)

	switch op.typ {
	case OPERAND_GREG:
		if opt != MST_REG {
			return &InvalidModeError{Position: op.pos, Reason: "status bits expected"}
		}

		p.setField(31, 4, op.reg)

	case OPERAND_NUM:
		if opt == MST_REG {
			return &InvalidModeError{Position: op.pos, Reason: "register expected"}
		}

		if err := p.setImmU(op, 31, 6, LITERAL_IMMEDIATE); err != nil {
			return err
		}

	default:
		return invalidOperand(op, OPERAND_GREG, OPERAND_NUM)
	}

	return p.checkEOS()
}

// Parses "[ a ] "(" [ sreg "," ] b ")"".
func (p *parser) parseIndexedAdr() error {
	op, err := p.expr()
	if err != nil {
		return err
	}

	if op.typ == OPERAND_GREG {
		p.setField(27, 4, op.reg)

		if op, err = p.expr(); err != nil {
			return err
		}
	}

	return p.setLogicalAdr(op)
}

// LDPA r "," [ a ] "(" [ sreg "," ] b ")"
func (p *parser) parseLDPA() error {
	if err := p.target(); err != nil {
		return err
	}

	if err := p.parseIndexedAdr(); err != nil {
		return err
	}

	return p.checkEOS()
}

// PTLB[.TM]  [ a ] "(" [ sreg "," ] b ")"
// PCA[.TMF]  [ a ] "(" [ sreg "," ] b ")"
func (p *parser) parsePurge() error {
	if err := p.parseIndexedAdr(); err != nil {
		return err
	}

	return p.checkEOS()
}

// PRB[.W]  r "," "(" [ sreg "," ] b ")" "," a
// PRB.I[W] r "," "(" [ sreg "," ] b ")" "," 0|1
func (p *parser) parsePRB() error {
	if err := p.target(); err != nil {
		return err
	}

	adr, err := p.expr()
	if err != nil {
		return err
	}

	if err := p.setLogicalAdr(adr); err != nil {
		return err
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	op, err := p.expr()
	if err != nil {
		return err
	}

	if encoding.GetBit(p.instr, 11) {
		if op.typ != OPERAND_NUM {
			return invalidOperand(op, OPERAND_NUM)
		}

		if op.val != 0 && op.val != 1 {
			return &OversizedLiteralError{
				Position: op.pos,
				Literal:  LITERAL_IMMEDIATE,
				Required: 1,
				Received: int64(op.val),
			}
		}

		p.instr = encoding.SetBit(p.instr, 27, op.val == 1)
	} else {
		if op.typ != OPERAND_GREG {
			return invalidOperand(op, OPERAND_GREG)
		}

		p.setField(27, 4, op.reg)
	}

	return p.checkEOS()
}

// ITLB[.T] r "," "(" sreg "," b ")"
func (p *parser) parseITLB() error {
	if err := p.target(); err != nil {
		return err
	}

	adr, err := p.expect(OPERAND_EXT_ADR)
	if err != nil {
		return err
	}

	p.setField(27, 4, adr.seg)
	p.setField(31, 4, adr.reg)

	return p.checkEOS()
}

// BRK info1 "," info2
func (p *parser) parseBRK() error {
	info1, err := p.expect(OPERAND_NUM)
	if err != nil {
		return err
	}

	if err := p.setImmU(info1, 9, 4, LITERAL_IMMEDIATE); err != nil {
		return err
	}

	if err := p.accept(tokenizer.TOK_COMMA); err != nil {
		return err
	}

	info2, err := p.expect(OPERAND_NUM)
	if err != nil {
		return err
	}

	if err := p.setImmU(info2, 31, 16, LITERAL_IMMEDIATE); err != nil {
		return err
	}

	return p.checkEOS()
}

func (p *parser) parseInstruction() error {
	switch p.typ {
	case INSTRUCTION_ADD, INSTRUCTION_ADC, INSTRUCTION_SUB, INSTRUCTION_SBC,
		INSTRUCTION_AND, INSTRUCTION_OR, INSTRUCTION_XOR,
		INSTRUCTION_CMP, INSTRUCTION_CMPU:
		return p.parseModeType()

	case INSTRUCTION_LD, INSTRUCTION_ST, INSTRUCTION_LDA, INSTRUCTION_STA,
		INSTRUCTION_LDR, INSTRUCTION_STC:
		return p.parseLoadStore()

	case INSTRUCTION_LSID, INSTRUCTION_DS, INSTRUCTION_CMR, INSTRUCTION_DIAG:
		return p.parseRegisters()

	case INSTRUCTION_EXTR:
		return p.parseEXTR()

	case INSTRUCTION_DEP:
		return p.parseDEP()

	case INSTRUCTION_DSR:
		return p.parseDSR()

	case INSTRUCTION_SHLA:
		return p.parseSHLA()

	case INSTRUCTION_LDIL, INSTRUCTION_ADDIL:
		return p.parseImmediateLeft()

	case INSTRUCTION_LDO:
		return p.parseLDO()

	case INSTRUCTION_B, INSTRUCTION_GATE:
		return p.parseBranch()

	case INSTRUCTION_BR, INSTRUCTION_BV:
		return p.parseBranchReg()

	case INSTRUCTION_BE:
		return p.parseBE()

	case INSTRUCTION_BVE:
		return p.parseBVE()

	case INSTRUCTION_CBR, INSTRUCTION_CBRU:
		return p.parseCBR()

	case INSTRUCTION_MR:
		return p.parseMR()

	case INSTRUCTION_MST:
		return p.parseMST()

	case INSTRUCTION_LDPA:
		return p.parseLDPA()

	case INSTRUCTION_PRB:
		return p.parsePRB()

	case INSTRUCTION_ITLB:
		return p.parseITLB()

	case INSTRUCTION_PTLB, INSTRUCTION_PCA:
		return p.parsePurge()

	case INSTRUCTION_BRK:
		return p.parseBRK()

	case INSTRUCTION_RFI:
		return p.checkEOS()

	case INSTRUCTION_NOP:
		p.instr = machine.NOP_INSTR
		return p.checkEOS()
	}

	return &InvalidOpCodeError{Position: p.opPos}
}

// Assemble translates one instruction line into its instruction word.
func Assemble(line string) (uint32, error) {
	return AssembleLine(1, line)
}

// AssembleLine assembles a line and reports errors against line number num.
func AssembleLine(num int, line string) (uint32, error) {
	p := parser{tk: tokenizer.New(AsmTable), line: num}
	p.tk.Setup(line)

	if err := p.next(); err != nil {
		return 0, err
	}

	tok := p.tk.Token()
	p.opPos = p.cursor()

	if tok.Typ != tokenizer.TYP_OP_CODE && tok.Typ != tokenizer.TYP_OP_CODE_S {
		return 0, &InvalidOpCodeError{Position: p.opPos, Received: tokenText(tok)}
	}

	m := mnemonics[tok.Val]
	p.typ = m.typ
	p.flags = m.flags
	p.instr = m.op << 26

	if err := p.next(); err != nil {
		return 0, err
	}

	for p.tk.Is(tokenizer.TOK_PERIOD) {
		if err := p.next(); err != nil {
			return 0, err
		}

		if err := p.parseOption(); err != nil {
			return 0, err
		}
	}

	if err := p.parseInstruction(); err != nil {
		return 0, err
	}

	return p.instr, nil
}

// Removes a trailing ";" or "#" comment.
func stripComment(line string) string {
	if i := strings.IndexAny(line, ";#"); i >= 0 {
		return line[:i]
	}

	return line
}

// AssembleSource assembles one instruction per line. Blank and comment-only
// lines are skipped; every failing line contributes an error.
func AssembleSource(input io.Reader) (result []uint32, errs []error) {
	scanner := bufio.NewScanner(input)
	line := 0

	for scanner.Scan() {
		line++

		text := stripComment(scanner.Text())
		if strings.TrimSpace(text) == "" {
			continue
		}

		instr, err := AssembleLine(line, text)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		result = append(result, instr)
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	return result, errs
}
