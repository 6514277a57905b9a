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

package expr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/expr"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

type testCase struct {
	Name   string
	Input  string
	Output expr.Value
	Error  simerr.Code
}

type fixture struct {
	env *env.Table
	mc  *machine.Machine
}

func newFixture(t *testing.T) *fixture {
	tab := env.New(0)
	require.NoError(t, tab.SetupPredefined())
	require.NoError(t, tab.SetInt("MYVAR", -3))
	require.NoError(t, tab.SetStr("GREETING", "hi"))

	cfg, err := machine.NewConfig(machine.DefaultSizing())
	require.NoError(t, err)

	mc := machine.New(cfg, nil)
	mc.SetReg(machine.RC_GEN_REG_SET, 3, 42)
	mc.SetReg(machine.RC_SEG_REG_SET, 1, 5)
	mc.SetReg(machine.RC_SEG_REG_SET, 2, 7)
	mc.SetReg(machine.RC_SEG_REG_SET, 4, 9)
	mc.SetReg(machine.RC_CTRL_REG_SET, 5, 0x1234)

	return &fixture{env: tab, mc: mc}
}

func testEval(t *testing.T, tests []testCase) {
	fix := newFixture(t)

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			val, err := expr.Eval(test.Input, fix.env, fix.mc)

			if test.Error != simerr.NO_ERR {
				if !errors.Is(err, test.Error) {
					t.Fatalf(
						"Error mismatch"+
							"\nwant:%v (test.Error)"+
							"\nhave:%v",
						test.Error,
						err,
					)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.Output, val)
		})
	}
}

func TestArithmetic(t *testing.T) {
	testEval(t, []testCase{
		{Name: "Precedence", Input: "1+2*3", Output: expr.Num(7)},
		{Name: "Parens", Input: "(1+2)*3", Output: expr.Num(9)},
		{Name: "Negate", Input: "-5", Output: expr.Num(0xFFFFFFFB)},
		{Name: "Complement", Input: "~0", Output: expr.Num(0xFFFFFFFF)},
		{Name: "Logical", Input: "0xF0 & 0x3C | 1", Output: expr.Num(0x31)},
		{Name: "Xor", Input: "6 ^ 3", Output: expr.Num(5)},
		{Name: "Modulo", Input: "7 % 4", Output: expr.Num(3)},
		{Name: "Divide", Input: "10 / 3", Output: expr.Num(3)},
		{Name: "OffsetArithmetic", Input: "2.0x100 + 4", Output: expr.ExtAdr(2, 0x104)},
		{Name: "Bool", Input: "TRUE ^ FALSE", Output: expr.Bool(true)},
		{Name: "BoolNot", Input: "~TRUE", Output: expr.Bool(false)},
		{Name: "String", Input: `"abc"`, Output: expr.Str("abc")},
		{Name: "Empty", Input: "", Output: expr.Value{}},
		{
			Name:   "Nil",
			Input:  "nil",
			Output: expr.Value{Typ: tokenizer.TYP_SYM, Tid: tokenizer.TOK_NIL},
		},
	})
}

func TestFactors(t *testing.T) {
	testEval(t, []testCase{
		{Name: "GeneralRegister", Input: "R3 + 1", Output: expr.Num(43)},
		{Name: "SegmentRegister", Input: "S2", Output: expr.Num(7)},
		{Name: "ControlRegister", Input: "C5", Output: expr.Num(0x1234)},
		{Name: "UserVariable", Input: "myvar", Output: expr.Num(0xFFFFFFFD)},
		{Name: "Predefined", Input: "RDX_DEFAULT", Output: expr.Num(16)},
		{Name: "StringVariable", Input: "GREETING", Output: expr.Str("hi")},
	})
}

func TestFunctions(t *testing.T) {
	testEval(t, []testCase{
		{Name: "S32String", Input: `S32("AB")`, Output: expr.Num(0x4142)},
		{Name: "S32Long", Input: `S32("ABCDE")`, Output: expr.Num(0x41424344)},
		{Name: "U32", Input: "U32(5)", Output: expr.Num(5)},
		{Name: "AssembleNop", Input: `ASM("NOP")`, Output: expr.Num(0)},
		{Name: "Assemble", Input: `ASM("ADD R1, R2, R3")`, Output: expr.Num(0x40440023)},
		{
			Name:   "Disassemble",
			Input:  "DISASM(0x40440023, DEC)",
			Output: expr.Str("ADD         r1, r2, r3"),
		},
		{Name: "Hash", Input: "HASH(1.0x4000)", Output: expr.Num(17)},
		{Name: "AdrSegment", Input: "ADR(S1, 0x10)", Output: expr.ExtAdr(5, 0x10)},
		{Name: "AdrNumericSegment", Input: "ADR(5, 0x100)", Output: expr.ExtAdr(5, 0x100)},
		{Name: "AdrSegmentExpr", Input: "ADR(2+1, 4*4)", Output: expr.ExtAdr(3, 0x10)},
		{Name: "AdrUpperBits", Input: "ADR(0x40000010)", Output: expr.ExtAdr(5, 0x40000010)},
		{Name: "AdrDefault", Input: "ADR(0x10)", Output: expr.ExtAdr(9, 0x10)},
		{Name: "AdrExtended", Input: "ADR(3.0x20)", Output: expr.ExtAdr(3, 0x20)},
	})
}

func TestErrors(t *testing.T) {
	testEval(t, []testCase{
		{Name: "TypeMismatch", Input: `1 + "a"`, Error: simerr.ERR_EXPR_TYPE_MATCH},
		{Name: "BoolArithmetic", Input: "TRUE + 1", Error: simerr.ERR_EXPR_TYPE_MATCH},
		{Name: "UnknownVariable", Input: "UNKNOWN", Error: simerr.ERR_ENV_VAR_NOT_FOUND},
		{Name: "MissingOperand", Input: "1 +", Error: simerr.ERR_UNEXPECTED_EOS},
		{Name: "MissingParen", Input: "(1 + 2", Error: simerr.ERR_UNEXPECTED_EOS},
		{Name: "DivisionByZero", Input: "4 / 0", Error: simerr.ERR_INVALID_EXPR},
		{Name: "NegateString", Input: `-"a"`, Error: simerr.ERR_EXPECTED_NUMERIC},
		{Name: "Factor", Input: ",", Error: simerr.ERR_EXPR_FACTOR},
		{Name: "TrailingTokens", Input: "1 2", Error: simerr.ERR_TOO_MANY_ARGS_CMD_LINE},
		{Name: "AssembleNumber", Input: "ASM(5)", Error: simerr.ERR_EXPECTED_STR},
		{Name: "AssembleInvalid", Input: `ASM("FOO R1")`, Error: simerr.ERR_INVALID_OP_CODE},
		{Name: "AssembleNoParen", Input: "ASM 1", Error: simerr.ERR_EXPECTED_LPAREN},
		{Name: "HashNumber", Input: "HASH(5)", Error: simerr.ERR_EXPECTED_EXT_ADR},
		{Name: "DisassembleFormat", Input: "DISASM(0, CODE)", Error: simerr.ERR_INVALID_FMT_OPT},
		{Name: "DisassembleString", Input: `DISASM("x")`, Error: simerr.ERR_EXPECTED_INSTR_VAL},
	})
}

func TestPurity(t *testing.T) {
	fix := newFixture(t)

	for _, input := range []string{"R3 * 2 + MYVAR", `DISASM(ASM("LD R1, 8(R2)"))`, "ADR(0x10) + 4"} {
		first, err := expr.Eval(input, fix.env, fix.mc)
		require.NoError(t, err)

		second, err := expr.Eval(input, fix.env, fix.mc)
		require.NoError(t, err)

		assert.Equal(t, first, second, input)
	}
}

func TestPartialParse(t *testing.T) {
	assert := assert.New(t)
	fix := newFixture(t)

	tk := tokenizer.New(tokenizer.CmdTable)
	tk.Setup("1+2, HEX")
	require.NoError(t, tk.Next())

	num, err := expr.New(tk, fix.env, fix.mc).ParseNum(simerr.ERR_EXPECTED_NUMERIC)
	assert.NoError(err)
	assert.Equal(uint32(3), num)
	assert.True(tk.Is(tokenizer.TOK_COMMA))

	tk.Setup(`"text"`)
	require.NoError(t, tk.Next())

	_, err = expr.New(tk, fix.env, fix.mc).ParseNum(simerr.ERR_EXPECTED_START_OFS)
	assert.True(errors.Is(err, simerr.ERR_EXPECTED_START_OFS))
}

func TestFormat(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0x000000ff", expr.Num(255).Format(16))
	assert.Equal("0377", expr.Num(255).Format(8))
	assert.Equal("-1", expr.Num(0xFFFFFFFF).Format(10))
	assert.Equal("0x00000001.0x00000010", expr.ExtAdr(1, 0x10).Format(16))
	assert.Equal("TRUE", expr.Bool(true).Format(10))
	assert.Equal("abc", expr.Str("abc").Format(16))
	assert.Equal("NIL", expr.Value{Typ: tokenizer.TYP_SYM, Tid: tokenizer.TOK_NIL}.Format(16))
}

func TestEnvConversion(t *testing.T) {
	assert := assert.New(t)

	val, err := expr.Num(0xFFFFFFFF).EnvValue()
	assert.NoError(err)
	assert.Equal(env.Int(-1), val)

	_, err = expr.Value{}.EnvValue()
	assert.True(errors.Is(err, simerr.ERR_ENV_VALUE_EXPR))

	assert.Equal(expr.Num(7), expr.FromEnv(env.Uint(7)))
	assert.Equal(expr.ExtAdr(1, 2), expr.FromEnv(env.ExtAdr(1, 2)))
}
