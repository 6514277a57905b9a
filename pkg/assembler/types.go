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
	"fmt"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

type OperandType uint
type LiteralType uint
type InstructionType uint
type InstructionFlags uint

// Cursor locates a token. Column is the character index in the line, Size
// the length of the offending token.
type Cursor struct {
	Line   int
	Column int
	Size   int
}

type TokenError interface {
	error
	GetPosition() Cursor
	Code() simerr.Code
}

func operandName(typ OperandType) string {
	switch typ {
	case OPERAND_NUM:
		return "Number"
	case OPERAND_GREG:
		return "General register"
	case OPERAND_SREG:
		return "Segment register"
	case OPERAND_CREG:
		return "Control register"
	case OPERAND_ADR:
		return "Logical address"
	case OPERAND_EXT_ADR:
		return "Virtual address"
	default:
		return "<invalid>"
	}
}

type InvalidOpCodeError struct {
	Position Cursor
	Received string
}

func (err *InvalidOpCodeError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidOpCodeError) Code() simerr.Code {
	return simerr.ERR_INVALID_OP_CODE
}

func (err *InvalidOpCodeError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid instruction opcode\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type InvalidOptionError struct {
	Position Cursor
	Received string
}

func (err *InvalidOptionError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidOptionError) Code() simerr.Code {
	return simerr.ERR_INVALID_INSTR_OPT
}

func (err *InvalidOptionError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid instruction option\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type NoOptionError struct {
	Position Cursor
	Received string
}

func (err *NoOptionError) GetPosition() Cursor {
	return err.Position
}

func (err *NoOptionError) Code() simerr.Code {
	return simerr.ERR_INSTR_HAS_NO_OPT
}

func (err *NoOptionError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Instruction has no option\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type InvalidOperandError struct {
	Position Cursor
	Required []OperandType
	Received OperandType
}

func (err *InvalidOperandError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidOperandError) Code() simerr.Code {
	if len(err.Required) == 0 {
		return simerr.ERR_EXPR_FACTOR
	}

	switch err.Required[0] {
	case OPERAND_NUM:
		return simerr.ERR_EXPECTED_NUMERIC
	case OPERAND_GREG:
		return simerr.ERR_EXPECTED_GENERAL_REG
	case OPERAND_SREG:
		return simerr.ERR_EXPECTED_SEGMENT_REG
	case OPERAND_ADR:
		return simerr.ERR_EXPECTED_LOGICAL_ADR
	case OPERAND_EXT_ADR:
		return simerr.ERR_EXPECTED_EXT_ADR
	default:
		return simerr.ERR_EXPR_FACTOR
	}
}

func (err *InvalidOperandError) Error() string {
	var requiredString string

	requiredStrings := make([]string, 0, len(err.Required))

	for _, typ := range err.Required {
		requiredStrings = append(requiredStrings, operandName(typ))
	}

	if count := len(requiredStrings); count == 1 {
		requiredString = requiredStrings[0]
	} else if count == 2 {
		requiredString = requiredStrings[0] + " or " + requiredStrings[1]
	} else if count > 2 {
		requiredString = strings.Join(
			requiredStrings[:len(requiredStrings)-1], ", ",
		) + ", or " + requiredStrings[len(requiredStrings)-1]
	}

	return fmt.Sprintf(
		"%02d:%02d: Invalid operands\n\twant:%s\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		requiredString,
		operandName(err.Received),
	)
}

type OversizedLiteralError struct {
	Position Cursor
	Literal  LiteralType
	Required int
	Received int64
}

func (err *OversizedLiteralError) GetPosition() Cursor {
	return err.Position
}

func (err *OversizedLiteralError) Code() simerr.Code {
	switch err.Literal {
	case LITERAL_OFFSET:
		return simerr.ERR_OFFSET_VAL_RANGE
	case LITERAL_POSITION:
		return simerr.ERR_POS_VAL_RANGE
	case LITERAL_LENGTH:
		return simerr.ERR_LEN_VAL_RANGE
	default:
		return simerr.ERR_IMM_VAL_RANGE
	}
}

func (err *OversizedLiteralError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Literal exceeds allowed size\n\twant:%d bits\n\thave:%d",
		err.Position.Line,
		err.Position.Column,
		err.Required,
		err.Received,
	)
}

// Branch offsets are byte distances and must address a word.
type MisalignedOffsetError struct {
	Position Cursor
	Received int64
}

func (err *MisalignedOffsetError) GetPosition() Cursor {
	return err.Position
}

func (err *MisalignedOffsetError) Code() simerr.Code {
	return simerr.ERR_OFFSET_VAL_RANGE
}

func (err *MisalignedOffsetError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Offset is not a multiple of 4\n\thave:%d",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type DataWidthError struct {
	Position Cursor
}

func (err *DataWidthError) GetPosition() Cursor {
	return err.Position
}

func (err *DataWidthError) Code() simerr.Code {
	return simerr.ERR_INSTR_MODE_OPT_COMBO
}

func (err *DataWidthError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Data width requires an indexed operand",
		err.Position.Line,
		err.Position.Column,
	)
}

type InvalidModeError struct {
	Position Cursor
	Reason   string
}

func (err *InvalidModeError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidModeError) Code() simerr.Code {
	return simerr.ERR_INVALID_INSTR_MODE
}

func (err *InvalidModeError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid operand mode: %s",
		err.Position.Line,
		err.Position.Column,
		err.Reason,
	)
}

type InvalidSegmentError struct {
	Position Cursor
	Received uint32
}

func (err *InvalidSegmentError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidSegmentError) Code() simerr.Code {
	return simerr.ERR_EXPECTED_SR1_SR3
}

func (err *InvalidSegmentError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid segment register\n\twant:S1, S2, or S3\n\thave:S%d",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type InvalidRegisterComboError struct {
	Position Cursor
}

func (err *InvalidRegisterComboError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidRegisterComboError) Code() simerr.Code {
	return simerr.ERR_INVALID_REG_COMBO
}

func (err *InvalidRegisterComboError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Segment and control registers are only moved from a general register",
		err.Position.Line,
		err.Position.Column,
	)
}

type ExpectedTokenError struct {
	Position Cursor
	Required tokenizer.TokId
	Received string
}

func (err *ExpectedTokenError) GetPosition() Cursor {
	return err.Position
}

func (err *ExpectedTokenError) Code() simerr.Code {
	switch err.Required {
	case tokenizer.TOK_COMMA:
		return simerr.ERR_EXPECTED_COMMA
	case tokenizer.TOK_LPAREN:
		return simerr.ERR_EXPECTED_LPAREN
	case tokenizer.TOK_RPAREN:
		return simerr.ERR_EXPECTED_RPAREN
	case tokenizer.TOK_EOS:
		return simerr.ERR_TOO_MANY_ARGS_CMD_LINE
	default:
		return simerr.ERR_INVALID_EXPR
	}
}

func (err *ExpectedTokenError) Error() string {
	var want string

	switch err.Required {
	case tokenizer.TOK_COMMA:
		want = ","
	case tokenizer.TOK_LPAREN:
		want = "("
	case tokenizer.TOK_RPAREN:
		want = ")"
	case tokenizer.TOK_EOS:
		want = "end of line"
	default:
		want = "<invalid>"
	}

	have := err.Received
	if have == "" {
		have = "end of line"
	}

	return fmt.Sprintf(
		"%02d:%02d: Unexpected token\n\twant:%s\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		want,
		have,
	)
}

type ExpressionTypeError struct {
	Position Cursor
	Left     OperandType
	Right    OperandType
}

func (err *ExpressionTypeError) GetPosition() Cursor {
	return err.Position
}

func (err *ExpressionTypeError) Code() simerr.Code {
	return simerr.ERR_EXPR_TYPE_MATCH
}

func (err *ExpressionTypeError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Expression type mismatch\n\twant:%s\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		operandName(err.Left),
		operandName(err.Right),
	)
}

type DivisionByZeroError struct {
	Position Cursor
}

func (err *DivisionByZeroError) GetPosition() Cursor {
	return err.Position
}

func (err *DivisionByZeroError) Code() simerr.Code {
	return simerr.ERR_INVALID_EXPR
}

func (err *DivisionByZeroError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Division by zero",
		err.Position.Line,
		err.Position.Column,
	)
}

// LexicalError carries a tokenizer failure with the assembler position.
type LexicalError struct {
	Position Cursor
	Err      *simerr.Error
}

func (err *LexicalError) GetPosition() Cursor {
	return err.Position
}

func (err *LexicalError) Code() simerr.Code {
	return err.Err.Code
}

func (err *LexicalError) Unwrap() error {
	return err.Err
}

func (err *LexicalError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: %s",
		err.Position.Line,
		err.Position.Column,
		err.Err.Error(),
	)
}
