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
	"github.com/lassandro/vcpu32sim/pkg/machine"
)

const (
	OPERAND_NONE OperandType = iota
	OPERAND_NUM
	OPERAND_GREG
	OPERAND_SREG
	OPERAND_CREG
	OPERAND_ADR
	OPERAND_EXT_ADR
)

const (
	LITERAL_IMMEDIATE LiteralType = iota
	LITERAL_OFFSET
	LITERAL_POSITION
	LITERAL_LENGTH
)

const (
	TF_BYTE_INSTR InstructionFlags = 1 << iota
	TF_HALF_INSTR
	TF_WORD_INSTR
)

const (
	INSTRUCTION_INVALID InstructionType = iota
	INSTRUCTION_LD
	INSTRUCTION_ST
	INSTRUCTION_LDA
	INSTRUCTION_STA
	INSTRUCTION_LDR
	INSTRUCTION_STC
	INSTRUCTION_ADD
	INSTRUCTION_ADC
	INSTRUCTION_SUB
	INSTRUCTION_SBC
	INSTRUCTION_AND
	INSTRUCTION_OR
	INSTRUCTION_XOR
	INSTRUCTION_CMP
	INSTRUCTION_CMPU
	INSTRUCTION_LSID
	INSTRUCTION_EXTR
	INSTRUCTION_DEP
	INSTRUCTION_DSR
	INSTRUCTION_SHLA
	INSTRUCTION_CMR
	INSTRUCTION_LDIL
	INSTRUCTION_ADDIL
	INSTRUCTION_LDO
	INSTRUCTION_B
	INSTRUCTION_GATE
	INSTRUCTION_BR
	INSTRUCTION_BV
	INSTRUCTION_BE
	INSTRUCTION_BVE
	INSTRUCTION_CBR
	INSTRUCTION_CBRU
	INSTRUCTION_MR
	INSTRUCTION_MST
	INSTRUCTION_DS
	INSTRUCTION_LDPA
	INSTRUCTION_PRB
	INSTRUCTION_ITLB
	INSTRUCTION_PTLB
	INSTRUCTION_PCA
	INSTRUCTION_DIAG
	INSTRUCTION_RFI
	INSTRUCTION_BRK

	// Synthetic instructions
	INSTRUCTION_NOP
)

// Test conditions of the CMR instruction
const (
	TC_EQ = 0
	TC_LT = 1
	TC_GT = 2
	TC_EV = 3
	TC_NE = 4
	TC_LE = 5
	TC_GE = 6
	TC_OD = 7
)

// Column widths of the disassembly fields
const (
	OPCODE_FIELD_WIDTH  = 12
	OPERAND_FIELD_WIDTH = 16
)

// MST option field values
const (
	MST_REG   = 0
	MST_SET   = 1
	MST_CLEAR = 2
)

type mnemonic struct {
	name  string
	typ   InstructionType
	op    uint32
	flags InstructionFlags
}

// Every accepted opcode spelling. Entries sharing an instruction type differ
// only in the data width they select.
var mnemonics = []mnemonic{
	{"LD", INSTRUCTION_LD, machine.OP_LD, TF_WORD_INSTR},
	{"LDB", INSTRUCTION_LD, machine.OP_LD, TF_BYTE_INSTR},
	{"LDH", INSTRUCTION_LD, machine.OP_LD, TF_HALF_INSTR},
	{"LDW", INSTRUCTION_LD, machine.OP_LD, TF_WORD_INSTR},
	{"ST", INSTRUCTION_ST, machine.OP_ST, TF_WORD_INSTR},
	{"STB", INSTRUCTION_ST, machine.OP_ST, TF_BYTE_INSTR},
	{"STH", INSTRUCTION_ST, machine.OP_ST, TF_HALF_INSTR},
	{"STW", INSTRUCTION_ST, machine.OP_ST, TF_WORD_INSTR},
	{"LDA", INSTRUCTION_LDA, machine.OP_LDA, TF_WORD_INSTR},
	{"STA", INSTRUCTION_STA, machine.OP_STA, TF_WORD_INSTR},
	{"LDR", INSTRUCTION_LDR, machine.OP_LDR, TF_WORD_INSTR},
	{"STC", INSTRUCTION_STC, machine.OP_STC, TF_WORD_INSTR},

	{"ADD", INSTRUCTION_ADD, machine.OP_ADD, TF_WORD_INSTR},
	{"ADDB", INSTRUCTION_ADD, machine.OP_ADD, TF_BYTE_INSTR},
	{"ADDH", INSTRUCTION_ADD, machine.OP_ADD, TF_HALF_INSTR},
	{"ADDW", INSTRUCTION_ADD, machine.OP_ADD, TF_WORD_INSTR},
	{"ADC", INSTRUCTION_ADC, machine.OP_ADC, TF_WORD_INSTR},
	{"ADCB", INSTRUCTION_ADC, machine.OP_ADC, TF_BYTE_INSTR},
	{"ADCH", INSTRUCTION_ADC, machine.OP_ADC, TF_HALF_INSTR},
	{"ADCW", INSTRUCTION_ADC, machine.OP_ADC, TF_WORD_INSTR},
	{"SUB", INSTRUCTION_SUB, machine.OP_SUB, TF_WORD_INSTR},
	{"SUBB", INSTRUCTION_SUB, machine.OP_SUB, TF_BYTE_INSTR},
	{"SUBH", INSTRUCTION_SUB, machine.OP_SUB, TF_HALF_INSTR},
	{"SUBW", INSTRUCTION_SUB, machine.OP_SUB, TF_WORD_INSTR},
	{"SBC", INSTRUCTION_SBC, machine.OP_SBC, TF_WORD_INSTR},
	{"SBCB", INSTRUCTION_SBC, machine.OP_SBC, TF_BYTE_INSTR},
	{"SBCH", INSTRUCTION_SBC, machine.OP_SBC, TF_HALF_INSTR},
	{"SBCW", INSTRUCTION_SBC, machine.OP_SBC, TF_WORD_INSTR},
	{"AND", INSTRUCTION_AND, machine.OP_AND, TF_WORD_INSTR},
	{"ANDB", INSTRUCTION_AND, machine.OP_AND, TF_BYTE_INSTR},
	{"ANDH", INSTRUCTION_AND, machine.OP_AND, TF_HALF_INSTR},
	{"ANDW", INSTRUCTION_AND, machine.OP_AND, TF_WORD_INSTR},
	{"OR", INSTRUCTION_OR, machine.OP_OR, TF_WORD_INSTR},
	{"ORB", INSTRUCTION_OR, machine.OP_OR, TF_BYTE_INSTR},
	{"ORH", INSTRUCTION_OR, machine.OP_OR, TF_HALF_INSTR},
	{"ORW", INSTRUCTION_OR, machine.OP_OR, TF_WORD_INSTR},
	{"XOR", INSTRUCTION_XOR, machine.OP_XOR, TF_WORD_INSTR},
	{"XORB", INSTRUCTION_XOR, machine.OP_XOR, TF_BYTE_INSTR},
	{"XORH", INSTRUCTION_XOR, machine.OP_XOR, TF_HALF_INSTR},
	{"XORW", INSTRUCTION_XOR, machine.OP_XOR, TF_WORD_INSTR},
	{"CMP", INSTRUCTION_CMP, machine.OP_CMP, TF_WORD_INSTR},
	{"CMPB", INSTRUCTION_CMP, machine.OP_CMP, TF_BYTE_INSTR},
	{"CMPH", INSTRUCTION_CMP, machine.OP_CMP, TF_HALF_INSTR},
	{"CMPW", INSTRUCTION_CMP, machine.OP_CMP, TF_WORD_INSTR},
	{"CMPU", INSTRUCTION_CMPU, machine.OP_CMPU, TF_WORD_INSTR},
	{"CMPUB", INSTRUCTION_CMPU, machine.OP_CMPU, TF_BYTE_INSTR},
	{"CMPUH", INSTRUCTION_CMPU, machine.OP_CMPU, TF_HALF_INSTR},
	{"CMPUW", INSTRUCTION_CMPU, machine.OP_CMPU, TF_WORD_INSTR},

	{"LSID", INSTRUCTION_LSID, machine.OP_LSID, 0},
	{"EXTR", INSTRUCTION_EXTR, machine.OP_EXTR, 0},
	{"DEP", INSTRUCTION_DEP, machine.OP_DEP, 0},
	{"DSR", INSTRUCTION_DSR, machine.OP_DSR, 0},
	{"SHLA", INSTRUCTION_SHLA, machine.OP_SHLA, 0},
	{"CMR", INSTRUCTION_CMR, machine.OP_CMR, 0},
	{"LDIL", INSTRUCTION_LDIL, machine.OP_LDIL, 0},
	{"ADDIL", INSTRUCTION_ADDIL, machine.OP_ADDIL, 0},
	{"LDO", INSTRUCTION_LDO, machine.OP_LDO, 0},
	{"B", INSTRUCTION_B, machine.OP_B, 0},
	{"GATE", INSTRUCTION_GATE, machine.OP_GATE, 0},
	{"BR", INSTRUCTION_BR, machine.OP_BR, 0},
	{"BV", INSTRUCTION_BV, machine.OP_BV, 0},
	{"BE", INSTRUCTION_BE, machine.OP_BE, 0},
	{"BVE", INSTRUCTION_BVE, machine.OP_BVE, 0},
	{"CBR", INSTRUCTION_CBR, machine.OP_CBR, 0},
	{"CBRU", INSTRUCTION_CBRU, machine.OP_CBRU, 0},
	{"MR", INSTRUCTION_MR, machine.OP_MR, 0},
	{"MST", INSTRUCTION_MST, machine.OP_MST, 0},
	{"DS", INSTRUCTION_DS, machine.OP_DS, 0},
	{"LDPA", INSTRUCTION_LDPA, machine.OP_LDPA, 0},
	{"PRB", INSTRUCTION_PRB, machine.OP_PRB, 0},
	{"ITLB", INSTRUCTION_ITLB, machine.OP_ITLB, 0},
	{"PTLB", INSTRUCTION_PTLB, machine.OP_PTLB, 0},
	{"PCA", INSTRUCTION_PCA, machine.OP_PCA, 0},
	{"DIAG", INSTRUCTION_DIAG, machine.OP_DIAG, 0},
	{"RFI", INSTRUCTION_RFI, machine.OP_RFI, 0},
	{"BRK", INSTRUCTION_BRK, machine.OP_BRK, 0},
	{"NOP", INSTRUCTION_NOP, machine.OP_BRK, 0},
}

type optionBit struct {
	letter byte
	pos    int
}

type optionField struct {
	name   string
	pos    int
	length int
	value  uint32
}

// Options are either a run of single letter flags (".LO") or exactly one
// named field value (".EQ").
type optionSet struct {
	bits   []optionBit
	fields []optionField
}

var compareOptions = []optionField{
	{"EQ", 11, 2, machine.CC_EQ},
	{"LT", 11, 2, machine.CC_LT},
	{"NE", 11, 2, machine.CC_NE},
	{"LE", 11, 2, machine.CC_LE},
}

var branchOptions = []optionField{
	{"EQ", 7, 2, machine.CC_EQ},
	{"LT", 7, 2, machine.CC_LT},
	{"NE", 7, 2, machine.CC_NE},
	{"LE", 7, 2, machine.CC_LE},
}

var testOptions = []optionField{
	{"EQ", 13, 4, TC_EQ},
	{"LT", 13, 4, TC_LT},
	{"GT", 13, 4, TC_GT},
	{"EV", 13, 4, TC_EV},
	{"NE", 13, 4, TC_NE},
	{"LE", 13, 4, TC_LE},
	{"GE", 13, 4, TC_GE},
	{"OD", 13, 4, TC_OD},
}

var options = map[InstructionType]optionSet{
	INSTRUCTION_LD:   {bits: []optionBit{{'M', 11}}},
	INSTRUCTION_ST:   {bits: []optionBit{{'M', 11}}},
	INSTRUCTION_LDA:  {bits: []optionBit{{'M', 11}}},
	INSTRUCTION_STA:  {bits: []optionBit{{'M', 11}}},
	INSTRUCTION_ADD:  {bits: []optionBit{{'L', 10}, {'O', 11}}},
	INSTRUCTION_ADC:  {bits: []optionBit{{'L', 10}, {'O', 11}}},
	INSTRUCTION_SUB:  {bits: []optionBit{{'L', 10}, {'O', 11}}},
	INSTRUCTION_SBC:  {bits: []optionBit{{'L', 10}, {'O', 11}}},
	INSTRUCTION_AND:  {bits: []optionBit{{'N', 10}, {'C', 11}}},
	INSTRUCTION_OR:   {bits: []optionBit{{'N', 10}, {'C', 11}}},
	INSTRUCTION_XOR:  {bits: []optionBit{{'N', 10}}},
	INSTRUCTION_CMP:  {fields: compareOptions},
	INSTRUCTION_CMPU: {fields: compareOptions},
	INSTRUCTION_CBR:  {fields: branchOptions},
	INSTRUCTION_CBRU: {fields: branchOptions},
	INSTRUCTION_CMR:  {fields: testOptions},
	INSTRUCTION_EXTR: {bits: []optionBit{{'S', 10}, {'A', 11}}},
	INSTRUCTION_DEP:  {bits: []optionBit{{'Z', 10}, {'A', 11}, {'I', 12}}},
	INSTRUCTION_DSR:  {bits: []optionBit{{'A', 11}}},
	INSTRUCTION_SHLA: {bits: []optionBit{{'I', 10}, {'L', 11}, {'O', 12}}},
	INSTRUCTION_MR:   {bits: []optionBit{{'D', 10}, {'M', 11}}},
	INSTRUCTION_MST: {fields: []optionField{
		{"S", 11, 2, MST_SET},
		{"C", 11, 2, MST_CLEAR},
	}},
	INSTRUCTION_PRB:  {bits: []optionBit{{'W', 10}, {'I', 11}}},
	INSTRUCTION_ITLB: {bits: []optionBit{{'T', 11}}},
	INSTRUCTION_PTLB: {bits: []optionBit{{'T', 10}, {'M', 11}}},
	INSTRUCTION_PCA:  {bits: []optionBit{{'T', 10}, {'M', 11}, {'F', 14}}},
}
