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

package simerr

import (
	"errors"
	"fmt"
)

// Code identifies a simulator error. Codes carry no payload; the position and
// argument of a failure travel in Error.
type Code int

const (
	NO_ERR Code = iota
	ERR_NOT_SUPPORTED
	ERR_INVALID_CMD
	ERR_INVALID_CHAR_IN_TOKEN_LINE
	ERR_INVALID_CHAR_IN_IDENT
	ERR_INVALID_NUM
	ERR_INVALID_ARG
	ERR_INVALID_WIN_ID
	ERR_INVALID_REG_ID
	ERR_INVALID_RADIX
	ERR_INVALID_EXIT_VAL
	ERR_INVALID_WIN_STACK_ID
	ERR_INVALID_STEP_OPTION
	ERR_INVALID_EXPR
	ERR_INVALID_INSTR_OPT
	ERR_INVALID_INSTR_MODE
	ERR_INVALID_REG_COMBO
	ERR_INVALID_OP_CODE
	ERR_INVALID_S_OP_CODE
	ERR_INVALID_FMT_OPT
	ERR_INVALID_WIN_TYPE
	ERR_INVALID_CMD_ID
	ERR_EXPECTED_INSTR_VAL
	ERR_EXPECTED_FILE_NAME
	ERR_EXPECTED_STACK_ID
	ERR_EXPECTED_WIN_ID
	ERR_EXPECTED_LPAREN
	ERR_EXPECTED_RPAREN
	ERR_EXPECTED_COMMA
	ERR_EXPECTED_STR
	ERR_EXPECTED_REG_SET
	ERR_EXPECTED_REG_OR_SET
	ERR_EXPECTED_NUMERIC
	ERR_EXPECTED_EXT_ADR
	ERR_EXPECTED_GENERAL_REG
	ERR_EXPECTED_STEPS
	ERR_EXPECTED_START_OFS
	ERR_EXPECTED_LEN
	ERR_EXPECTED_OFS
	ERR_EXPECTED_INSTR_OPT
	ERR_EXPECTED_SR1_SR3
	ERR_EXPECTED_LOGICAL_ADR
	ERR_EXPECTED_AN_OFFSET_VAL
	ERR_EXPECTED_SEGMENT_REG
	ERR_EXPECTED_FMT_OPT
	ERR_EXPECTED_WIN_TYPE
	ERR_EXPECTED_EXPR
	ERR_EXPECTED_CLOSING_QUOTE
	ERR_UNEXPECTED_EOS
	ERR_NOT_IN_WIN_MODE
	ERR_OPEN_EXEC_FILE
	ERR_EXTRA_TOKEN_IN_STR
	ERR_ENV_VALUE_EXPR
	ERR_ENV_VAR_NOT_FOUND
	ERR_ENV_PREDEFINED
	ERR_ENV_READ_ONLY
	ERR_ENV_TABLE_FULL
	ERR_WIN_TYPE_NOT_CONFIGURED
	ERR_EXPR_TYPE_MATCH
	ERR_EXPR_FACTOR
	ERR_TOO_MANY_ARGS_CMD_LINE
	ERR_OFS_LEN_LIMIT_EXCEEDED
	ERR_UNDEFINED_PFUNC
	ERR_INSTR_HAS_NO_OPT
	ERR_IMM_VAL_RANGE
	ERR_INSTR_MODE_OPT_COMBO
	ERR_POS_VAL_RANGE
	ERR_LEN_VAL_RANGE
	ERR_OFFSET_VAL_RANGE
	ERR_OUT_OF_WINDOWS
	ERR_TLB_TYPE
	ERR_TLB_INSERT_OP
	ERR_TLB_PURGE_OP
	ERR_TLB_ACC_DATA
	ERR_TLB_ADR_DATA
	ERR_TLB_NOT_CONFIGURED
	ERR_TLB_SIZE_EXCEEDED
	ERR_CACHE_TYPE
	ERR_CACHE_PURGE_OP
	ERR_CACHE_NOT_CONFIGURED
	ERR_CACHE_SIZE_EXCEEDED
	ERR_CACHE_SET_NUM
	ERR_BREAKPOINT_EXISTS
	ERR_BREAKPOINT_NOT_FOUND
)

var messages = map[Code]string{
	NO_ERR:                         "NO_ERR",
	ERR_NOT_SUPPORTED:              "Command or Function not supported (yet)",
	ERR_INVALID_CMD:                "Invalid command, use help",
	ERR_INVALID_CHAR_IN_TOKEN_LINE: "Invalid char in input line",
	ERR_INVALID_CHAR_IN_IDENT:      "Invalid char in identifier",
	ERR_INVALID_NUM:                "Invalid number",
	ERR_INVALID_ARG:                "Invalid argument for command",
	ERR_INVALID_WIN_ID:             "Invalid window Id",
	ERR_INVALID_REG_ID:             "Invalid register Id",
	ERR_INVALID_RADIX:              "Invalid radix",
	ERR_INVALID_EXIT_VAL:           "Invalid program exit code",
	ERR_INVALID_WIN_STACK_ID:       "Invalid window stack Id",
	ERR_INVALID_STEP_OPTION:        "Invalid steps/instr option",
	ERR_INVALID_EXPR:               "Invalid expression",
	ERR_INVALID_INSTR_OPT:          "Invalid instruction option",
	ERR_INVALID_INSTR_MODE:         "Invalid adr mode for instruction",
	ERR_INVALID_REG_COMBO:          "Invalid register combo for instruction",
	ERR_INVALID_OP_CODE:            "Invalid instruction opcode",
	ERR_INVALID_S_OP_CODE:          "Invalid synthetic instruction opcode",
	ERR_INVALID_FMT_OPT:            "Invalid format option",
	ERR_INVALID_WIN_TYPE:           "Invalid window type",
	ERR_INVALID_CMD_ID:             "Invalid command Id",
	ERR_EXPECTED_INSTR_VAL:         "Expected the instruction value",
	ERR_EXPECTED_FILE_NAME:         "Expected a file name",
	ERR_EXPECTED_STACK_ID:          "Expected stack Id",
	ERR_EXPECTED_WIN_ID:            "Expected a window Id",
	ERR_EXPECTED_LPAREN:            "Expected a left paren",
	ERR_EXPECTED_RPAREN:            "Expected a right paren",
	ERR_EXPECTED_COMMA:             "Expected a comma",
	ERR_EXPECTED_STR:               "Expected a string value",
	ERR_EXPECTED_REG_SET:           "Expected a register set",
	ERR_EXPECTED_REG_OR_SET:        "Expected a register or register set",
	ERR_EXPECTED_NUMERIC:           "Expected a numeric value",
	ERR_EXPECTED_EXT_ADR:           "Expected a virtual address",
	ERR_EXPECTED_GENERAL_REG:       "Expected a general reg",
	ERR_EXPECTED_STEPS:             "Expected number of steps/instr",
	ERR_EXPECTED_START_OFS:         "Expected start offset",
	ERR_EXPECTED_LEN:               "Expected length argument",
	ERR_EXPECTED_OFS:               "Expected an address",
	ERR_EXPECTED_INSTR_OPT:         "Expected the instruction options",
	ERR_EXPECTED_SR1_SR3:           "Expected SR1 .. SR3 as segment register",
	ERR_EXPECTED_LOGICAL_ADR:       "Expected a logical address",
	ERR_EXPECTED_AN_OFFSET_VAL:     "Expected an offset value",
	ERR_EXPECTED_SEGMENT_REG:       "Expected a segment register",
	ERR_EXPECTED_FMT_OPT:           "Expected a format option",
	ERR_EXPECTED_WIN_TYPE:          "Expected a window type",
	ERR_EXPECTED_EXPR:              "Expected an expression",
	ERR_EXPECTED_CLOSING_QUOTE:     "Expected a closing quote",
	ERR_UNEXPECTED_EOS:             "Unexpected end of command line",
	ERR_NOT_IN_WIN_MODE:            "Command only valid in Windows mode",
	ERR_OPEN_EXEC_FILE:             "Error while opening file",
	ERR_EXTRA_TOKEN_IN_STR:         "Extra tokens in command line",
	ERR_ENV_VALUE_EXPR:             "Invalid expression for ENV variable",
	ERR_ENV_VAR_NOT_FOUND:          "ENV variable not found",
	ERR_ENV_PREDEFINED:             "ENV variable is predefined",
	ERR_ENV_READ_ONLY:              "ENV variable is read only",
	ERR_ENV_TABLE_FULL:             "ENV Table is full",
	ERR_WIN_TYPE_NOT_CONFIGURED:    "Win object type not configured",
	ERR_EXPR_TYPE_MATCH:            "Expression type mismatch",
	ERR_EXPR_FACTOR:                "Expression error: factor",
	ERR_TOO_MANY_ARGS_CMD_LINE:     "Too many args in command line",
	ERR_OFS_LEN_LIMIT_EXCEEDED:     "Offset/Length exceeds limit",
	ERR_UNDEFINED_PFUNC:            "Unknown predefined function",
	ERR_INSTR_HAS_NO_OPT:           "Instruction has no option",
	ERR_IMM_VAL_RANGE:              "Immediate value out of range",
	ERR_INSTR_MODE_OPT_COMBO:       "Invalid opCode data width specifier for mode option",
	ERR_POS_VAL_RANGE:              "Bit position value out of range",
	ERR_LEN_VAL_RANGE:              "Bit field length value out of range",
	ERR_OFFSET_VAL_RANGE:           "Offset value out of range",
	ERR_OUT_OF_WINDOWS:             "Cannot create more windows",
	ERR_TLB_TYPE:                   "Expected a TLB type",
	ERR_TLB_INSERT_OP:              "Insert in TLB operation error",
	ERR_TLB_PURGE_OP:               "Purge from TLB operation error",
	ERR_TLB_ACC_DATA:               "Invalid TLB insert access data",
	ERR_TLB_ADR_DATA:               "Invalid TLB insert address data",
	ERR_TLB_NOT_CONFIGURED:         "TLB type not configured",
	ERR_TLB_SIZE_EXCEEDED:          "TLB size exceeded",
	ERR_CACHE_TYPE:                 "Expected a cache type",
	ERR_CACHE_PURGE_OP:             "Purge from cache operation error",
	ERR_CACHE_NOT_CONFIGURED:       "Cache type not configured",
	ERR_CACHE_SIZE_EXCEEDED:        "Cache size exceeded",
	ERR_CACHE_SET_NUM:              "Invalid cache set",
	ERR_BREAKPOINT_EXISTS:          "Breakpoint already set",
	ERR_BREAKPOINT_NOT_FOUND:       "Breakpoint not found",
}

// Returns the table message for the code and whether the table has one.
func (code Code) Message() (string, bool) {
	msg, ok := messages[code]
	return msg, ok
}

func (code Code) Error() string {
	if msg, ok := messages[code]; ok {
		return msg
	}

	return fmt.Sprintf("Error: %d", int(code))
}

// Error is an error raised while processing a command line. Pos is the
// character index in the line where the failing token starts, or -1 when the
// failure is not tied to a position. Arg is optional context such as a file
// name.
type Error struct {
	Code Code
	Pos  int
	Arg  string
}

func New(code Code) *Error {
	return &Error{Code: code, Pos: -1}
}

func At(code Code, pos int) *Error {
	return &Error{Code: code, Pos: pos}
}

func WithArg(code Code, arg string) *Error {
	return &Error{Code: code, Pos: -1, Arg: arg}
}

func (err *Error) Error() string {
	if err.Arg != "" {
		return fmt.Sprintf("%s: %q", err.Code.Error(), err.Arg)
	}

	return err.Code.Error()
}

func (err *Error) Unwrap() error {
	return err.Code
}

// Extracts the code of a simulator error. Errors that do not carry a code
// report ERR_INVALID_EXPR.
func CodeOf(err error) Code {
	if err == nil {
		return NO_ERR
	}

	var code Code
	if errors.As(err, &code) {
		return code
	}

	var coder interface{ Code() Code }
	if errors.As(err, &coder) {
		return coder.Code()
	}

	return ERR_INVALID_EXPR
}
