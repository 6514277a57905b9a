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

package assembler_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/assembler"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
)

type testCase struct {
	Name   string
	Input  string
	Output uint32
}

type failCase struct {
	Name  string
	Input string
	Error error
	Code  simerr.Code
}

type disasmCase struct {
	Name     string
	Input    uint32
	Radix    int
	OpCode   string
	Operands string
}

func testSuccess(t *testing.T, tests []testCase) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			instr, err := assembler.Assemble(test.Input)

			if err != nil {
				t.Fatalf("Unexpected error: %s", err)
			}

			if instr != test.Output {
				t.Errorf(
					"Instruction encoding mismatch"+
						"\nwant:%#08x (test.Output)"+
						"\nhave:%#08x",
					test.Output,
					instr,
				)
			}
		})
	}
}

func testFail(t *testing.T, tests []failCase) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, err := assembler.Assemble(test.Input)

			if err == nil {
				t.Fatalf("Expected error for %q", test.Input)
			}

			if reflect.TypeOf(err) != reflect.TypeOf(test.Error) {
				t.Fatalf(
					"%s produced error of incorrect type"+
						"\nwant:%T (test.Error)"+
						"\nhave:%T",
					test.Name,
					test.Error,
					err,
				)
			}

			if test.Code != simerr.NO_ERR {
				assert.Equal(t, test.Code, simerr.CodeOf(err))
			}

			var tokErr assembler.TokenError
			if assert.ErrorAs(t, err, &tokErr) {
				assert.Equal(t, 1, tokErr.GetPosition().Line)
			}
		})
	}
}

func TestModeType(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Registers",
			Input:  "ADD R1, R2, R3",
			Output: 0x40440023,
		},
		{
			Name:   "TwoRegisters",
			Input:  "add r1,r2",
			Output: 0x40440012,
		},
		{
			Name:   "Immediate",
			Input:  "ADD R1, 5",
			Output: 0x4040000A,
		},
		{
			Name:   "NegativeImmediate",
			Input:  "SUB R1, -1",
			Output: 0x4843FFFF,
		},
		{
			Name:   "Options",
			Input:  "ADD.LO R1, 5",
			Output: 0x4070000A,
		},
		{
			Name:   "OffsetByte",
			Input:  "ADDB R1, 8(R2)",
			Output: 0x404C0102,
		},
		{
			Name:   "IndexedHalf",
			Input:  "ADDH R1, R2(R3)",
			Output: 0x40490023,
		},
		{
			Name:   "Compare",
			Input:  "CMP.LT R1, R2, R3",
			Output: 0x5C540023,
		},
		{
			Name:   "Expression",
			Input:  "ADD R1, (2 + 3) * 4",
			Output: 0x40400028,
		},
		{
			Name:   "Complement",
			Input:  "ADD R1, ~0",
			Output: 0x4043FFFF,
		},
	})
}

func TestModeTypeFail(t *testing.T) {
	testFail(t, []failCase{
		{
			Name:  "Oversized",
			Input: "ADD R1, 0x20000",
			Error: &assembler.OversizedLiteralError{},
			Code:  simerr.ERR_IMM_VAL_RANGE,
		},
		{
			Name:  "WidthOnImmediate",
			Input: "ADDB R1, 5",
			Error: &assembler.DataWidthError{},
			Code:  simerr.ERR_INSTR_MODE_OPT_COMBO,
		},
		{
			Name:  "MissingComma",
			Input: "ADD R1 R2",
			Error: &assembler.ExpectedTokenError{},
			Code:  simerr.ERR_EXPECTED_COMMA,
		},
		{
			Name:  "TypeMismatch",
			Input: "ADD R1, R2 + 1",
			Error: &assembler.ExpressionTypeError{},
			Code:  simerr.ERR_EXPR_TYPE_MATCH,
		},
		{
			Name:  "DivisionByZero",
			Input: "ADD R1, 4 / 0",
			Error: &assembler.DivisionByZeroError{},
		},
		{
			Name:  "BadCharacter",
			Input: "ADD R1, $",
			Error: &assembler.LexicalError{},
			Code:  simerr.ERR_INVALID_CHAR_IN_TOKEN_LINE,
		},
		{
			Name:  "BadOption",
			Input: "ADD.X R1, 1",
			Error: &assembler.InvalidOptionError{},
			Code:  simerr.ERR_INVALID_INSTR_OPT,
		},
		{
			Name:  "TargetNotRegister",
			Input: "ADD 1, R2",
			Error: &assembler.InvalidOperandError{},
			Code:  simerr.ERR_EXPECTED_GENERAL_REG,
		},
	})
}

func TestLoadStore(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Load",
			Input:  "LD R1, 8(R2)",
			Output: 0xC0420102,
		},
		{
			Name:   "Store",
			Input:  "ST R1,4(R2)",
			Output: 0xC4420082,
		},
		{
			Name:   "IndexedSegment",
			Input:  "LDB R1, R3(S1, R2)",
			Output: 0xC0640032,
		},
		{
			Name:   "Conditional",
			Input:  "STC R1, 0(R2)",
			Output: 0xD4420002,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "AbsoluteWithSegment",
			Input: "LDA R1, 4(S1, R2)",
			Error: &assembler.InvalidModeError{},
			Code:  simerr.ERR_INVALID_INSTR_MODE,
		},
		{
			Name:  "ReserveIndexed",
			Input: "LDR R1, R3(R2)",
			Error: &assembler.InvalidModeError{},
		},
		{
			Name:  "Segment",
			Input: "LD R1, 4(S4, R2)",
			Error: &assembler.InvalidSegmentError{},
			Code:  simerr.ERR_EXPECTED_SR1_SR3,
		},
		{
			Name:  "MissingAddress",
			Input: "LD R1, 4",
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "NoOption",
			Input: "LSID.M R1, R2",
			Error: &assembler.NoOptionError{},
			Code:  simerr.ERR_INSTR_HAS_NO_OPT,
		},
	})
}

func TestImmediates(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "LDIL",
			Input:  "LDIL R1, 0x12345",
			Output: 0x04412345,
		},
		{
			Name:   "ADDIL",
			Input:  "ADDIL R2, 1",
			Output: 0x08800001,
		},
		{
			Name:   "LDO",
			Input:  "LDO R1, -4(R2)",
			Output: 0x0C7FFF92,
		},
	})
}

func TestBitOperations(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Extract",
			Input:  "EXTR.S R1, R2, 4, 8",
			Output: 0x14602042,
		},
		{
			Name:   "DepositImmediate",
			Input:  "DEP.I R1, 5, 3, 4",
			Output: 0x18481035,
		},
		{
			Name:   "DoubleShift",
			Input:  "DSR R1, R2, R3, 5",
			Output: 0x1C401423,
		},
		{
			Name:   "ShiftAdd",
			Input:  "SHLA R1, R2, R3, 2",
			Output: 0x20400823,
		},
		{
			Name:   "ConditionalMove",
			Input:  "CMR.GT R1, R2, R3",
			Output: 0x24480023,
		},
		{
			Name:   "SegmentId",
			Input:  "LSID R1, R2",
			Output: 0x10400002,
		},
		{
			Name:   "DivideStep",
			Input:  "DS R1, R2, R3",
			Output: 0x30400023,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Position",
			Input: "EXTR R1, R2, 32, 8",
			Error: &assembler.OversizedLiteralError{},
			Code:  simerr.ERR_POS_VAL_RANGE,
		},
		{
			Name:  "Length",
			Input: "DSR R1, R2, R3, 40",
			Error: &assembler.OversizedLiteralError{},
			Code:  simerr.ERR_LEN_VAL_RANGE,
		},
	})
}

func TestBranches(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Forward",
			Input:  "B 8",
			Output: 0x80000004,
		},
		{
			Name:   "BackwardWithReturn",
			Input:  "B -4, R2",
			Output: 0x80BFFFFF,
		},
		{
			Name:   "Gate",
			Input:  "GATE 4",
			Output: 0x84000002,
		},
		{
			Name:   "Register",
			Input:  "BR (R3), R1",
			Output: 0x88400003,
		},
		{
			Name:   "External",
			Input:  "BE 8(S2, R3), R1",
			Output: 0x90400423,
		},
		{
			Name:   "ExternalVector",
			Input:  "BVE R2(R3)",
			Output: 0x94000023,
		},
		{
			Name:   "Conditional",
			Input:  "CBR.LT R1, R2, 16",
			Output: 0x99000812,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Misaligned",
			Input: "B 6",
			Error: &assembler.MisalignedOffsetError{},
			Code:  simerr.ERR_OFFSET_VAL_RANGE,
		},
		{
			Name:  "Oversized",
			Input: "B 0x1000000",
			Error: &assembler.OversizedLiteralError{},
			Code:  simerr.ERR_OFFSET_VAL_RANGE,
		},
		{
			Name:  "RegisterNotAddress",
			Input: "BR R1",
			Error: &assembler.InvalidOperandError{},
			Code:  simerr.ERR_EXPECTED_LOGICAL_ADR,
		},
	})
}

func TestSystem(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "MoveFromSegment",
			Input:  "MR R1, S2",
			Output: 0x28400002,
		},
		{
			Name:   "MoveToSegment",
			Input:  "MR S2, R1",
			Output: 0x28600002,
		},
		{
			Name:   "MoveToControl",
			Input:  "MR C5, R1",
			Output: 0x28700005,
		},
		{
			Name:   "MoveGeneral",
			Input:  "MR R1, R2",
			Output: 0x54440002,
		},
		{
			Name:   "SetStatus",
			Input:  "MST.S 3",
			Output: 0x2C100003,
		},
		{
			Name:   "ReplaceStatus",
			Input:  "MST R3",
			Output: 0x2C000003,
		},
		{
			Name:   "PhysicalAddress",
			Input:  "LDPA R1, R2(S1, R3)",
			Output: 0xE4440023,
		},
		{
			Name:   "Probe",
			Input:  "PRB.I R1, (R2), 1",
			Output: 0xE8500012,
		},
		{
			Name:   "InsertTLB",
			Input:  "ITLB.T R1, (S2, R3)",
			Output: 0xEC500023,
		},
		{
			Name:   "PurgeTLB",
			Input:  "PTLB (S1, R2)",
			Output: 0xF0040002,
		},
		{
			Name:   "PurgeCache",
			Input:  "PCA.F R2(R3)",
			Output: 0xF4020023,
		},
		{
			Name:   "Diagnose",
			Input:  "DIAG R1, R2, R3, 4",
			Output: 0xF8500023,
		},
		{
			Name:   "ReturnFromInterrupt",
			Input:  "RFI",
			Output: 0xFC000000,
		},
		{
			Name:   "Break",
			Input:  "BRK 1, 2",
			Output: 0x00400002,
		},
		{
			Name:   "NoOperation",
			Input:  "nop",
			Output: 0,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "SegmentToSegment",
			Input: "MR S1, S2",
			Error: &assembler.InvalidRegisterComboError{},
			Code:  simerr.ERR_INVALID_REG_COMBO,
		},
		{
			Name:  "StatusWithoutOption",
			Input: "MST 3",
			Error: &assembler.InvalidModeError{},
		},
		{
			Name:  "ProbeLevel",
			Input: "PRB.I R1, (R2), 2",
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "TrailingOperand",
			Input: "RFI R1",
			Error: &assembler.ExpectedTokenError{},
			Code:  simerr.ERR_TOO_MANY_ARGS_CMD_LINE,
		},
		{
			Name:  "UnknownOpCode",
			Input: "FOO R1",
			Error: &assembler.InvalidOpCodeError{},
			Code:  simerr.ERR_INVALID_OP_CODE,
		},
	})
}

func TestErrorPosition(t *testing.T) {
	_, err := assembler.AssembleLine(7, "ADD R1, 0x20000")

	var tokErr assembler.TokenError
	if assert.ErrorAs(t, err, &tokErr) {
		assert.Equal(t, 7, tokErr.GetPosition().Line)
		assert.Equal(t, 8, tokErr.GetPosition().Column)
	}

	assert.True(t, strings.HasPrefix(err.Error(), "07:08:"))
}

func TestDisassemble(t *testing.T) {
	tests := []disasmCase{
		{
			Name:     "Registers",
			Input:    0x40440023,
			Radix:    10,
			OpCode:   "ADD",
			Operands: "r1, r2, r3",
		},
		{
			Name:     "Load",
			Input:    0xC0420102,
			Radix:    10,
			OpCode:   "LD",
			Operands: "r1, 8(r2)",
		},
		{
			Name:     "ByteOffset",
			Input:    0x404C0102,
			Radix:    10,
			OpCode:   "ADDB",
			Operands: "r1, 8(r2)",
		},
		{
			Name:     "Compare",
			Input:    0x5C540023,
			Radix:    10,
			OpCode:   "CMP.LT",
			Operands: "r1, r2, r3",
		},
		{
			Name:     "HexImmediate",
			Input:    0x04412345,
			Radix:    16,
			OpCode:   "LDIL",
			Operands: "r1, 0x12345",
		},
		{
			Name:     "Branch",
			Input:    0x80BFFFFF,
			Radix:    10,
			OpCode:   "B",
			Operands: "-4, r2",
		},
		{
			Name:     "MoveToControl",
			Input:    0x28700005,
			Radix:    10,
			OpCode:   "MR",
			Operands: "c5, r1",
		},
		{
			Name:     "NoOperation",
			Input:    0,
			Radix:    16,
			OpCode:   "NOP",
			Operands: "",
		},
		{
			Name:     "Unknown",
			Input:    0xE0000000,
			Radix:    16,
			OpCode:   "???",
			Operands: "0xe0000000",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			opCode, operands := assembler.DisassembleParts(test.Input, test.Radix)

			assert.Equal(t, test.OpCode, opCode)
			assert.Equal(t, test.Operands, operands)
		})
	}

	assert.Equal(t, "ADD         r1, r2, r3", assembler.Disassemble(0x40440023, 10))
	assert.Equal(t, "RFI", assembler.Disassemble(0xFC000000, 10))
}

func TestFormatImmediate(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0", assembler.FormatImmediate(0, 16))
	assert.Equal("010", assembler.FormatImmediate(8, 8))
	assert.Equal("-1", assembler.FormatImmediate(0xFFFFFFFF, 10))
	assert.Equal("0xff", assembler.FormatImmediate(255, 16))
}

// Disassembled text must assemble back into the same word.
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"ADD R1, R2, R3",
		"ADD R1, R2",
		"SUB R1, -1",
		"ADD.LO R1, 5",
		"ADDB R1, 8(R2)",
		"ADDH R1, R2(R3)",
		"CMP R1, R2, R3",
		"CMPU.NE R4, 100",
		"LD R1, 8(R2)",
		"LD.M R1, R3(S2, R4)",
		"LDB R1, R3(S1, R2)",
		"STC R1, 0(R2)",
		"LDIL R1, 0x12345",
		"LDO R1, -4(R2)",
		"EXTR.S R1, R2, 4, 8",
		"EXTR.A R1, R2, 8",
		"DEP.I R1, 5, 3, 4",
		"DSR R1, R2, R3, 5",
		"DSR.A R1, R2, R3",
		"SHLA R1, R2, R3, 2",
		"SHLA.I R1, R2, 7",
		"CMR.GT R1, R2, R3",
		"LSID R1, R2",
		"DS R1, R2, R3",
		"B -4, R2",
		"GATE 4",
		"BR (R3), R1",
		"BV (R4)",
		"BE 8(S2, R3), R1",
		"BVE R2(R3)",
		"CBR.LT R1, R2, 16",
		"CBRU.LE R1, R2, -8",
		"MR R1, S2",
		"MR S2, R1",
		"MR C5, R1",
		"MR R1, R2",
		"MST.S 3",
		"MST.C 0x10",
		"MST R3",
		"LDPA R1, R2(S1, R3)",
		"PRB.I R1, (R2), 1",
		"PRB.W R1, (S3, R2), R5",
		"ITLB.T R1, (S2, R3)",
		"PTLB (S1, R2)",
		"PCA.F R2(R3)",
		"DIAG R1, R2, R3, 4",
		"RFI",
		"BRK 1, 2",
		"NOP",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			want, err := assembler.Assemble(input)
			if !assert.NoError(t, err) {
				return
			}

			for _, rdx := range []int{8, 10, 16} {
				text := assembler.Disassemble(want, rdx)

				have, err := assembler.Assemble(text)
				if !assert.NoError(t, err, text) {
					continue
				}

				if have != want {
					t.Errorf(
						"Round trip mismatch for %q"+
							"\nwant:%#08x"+
							"\nhave:%#08x",
						text,
						want,
						have,
					)
				}
			}
		})
	}
}

func TestAssembleSource(t *testing.T) {
	source := strings.Join([]string{
		"; header comment",
		"ADD R1, R2, R3",
		"",
		"LD R1, 8(R2)   # load",
		"FOO",
		"NOP ; done",
	}, "\n")

	result, errs := assembler.AssembleSource(strings.NewReader(source))

	assert.Equal(t, []uint32{0x40440023, 0xC0420102, 0}, result)

	if assert.Len(t, errs, 1) {
		var tokErr assembler.TokenError
		if assert.ErrorAs(t, errs[0], &tokErr) {
			assert.Equal(t, 5, tokErr.GetPosition().Line)
			assert.Equal(t, simerr.ERR_INVALID_OP_CODE, tokErr.Code())
		}
	}
}
