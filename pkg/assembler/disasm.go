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

	"github.com/lassandro/vcpu32sim/pkg/encoding"
	"github.com/lassandro/vcpu32sim/pkg/machine"
)

// First mnemonic of each opcode. The width variants share the opcode and
// are told apart by the dw field.
var opcodes = func() map[uint32]mnemonic {
	table := make(map[uint32]mnemonic)

	for _, m := range mnemonics {
		if m.typ == INSTRUCTION_NOP {
			continue
		}

		if _, ok := table[m.op]; !ok {
			table[m.op] = m
		}
	}

	return table
}()

// FormatImmediate prints a value in radix 8, 10 or 16. Decimal values are
// signed.
func FormatImmediate(val uint32, rdx int) string {
	if val == 0 {
		return "0"
	}

	switch rdx {
	case 8:
		return fmt.Sprintf("%#o", val)
	case 16:
		return fmt.Sprintf("%#x", val)
	default:
		return fmt.Sprintf("%d", int32(val))
	}
}

func field(instr uint32, pos int, length int) uint32 {
	return encoding.GetBitField(instr, pos, length, false)
}

func signed(instr uint32, pos int, length int) int32 {
	return int32(encoding.GetImmVal(instr, pos, length))
}

func widthSuffix(dw uint32) string {
	switch dw {
	case machine.DW_BYTE:
		return "B"
	case machine.DW_HALF:
		return "H"
	case machine.DW_WORD:
		return ""
	default:
		return "?"
	}
}

func isModeType(typ InstructionType) bool {
	switch typ {
	case INSTRUCTION_ADD, INSTRUCTION_ADC, INSTRUCTION_SUB, INSTRUCTION_SBC,
		INSTRUCTION_AND, INSTRUCTION_OR, INSTRUCTION_XOR,
		INSTRUCTION_CMP, INSTRUCTION_CMPU:
		return true
	}

	return false
}

func formatOpCode(m mnemonic, instr uint32) string {
	var sb strings.Builder

	sb.WriteString(m.name)

	switch {
	case isModeType(m.typ):
		if field(instr, 13, 2) >= machine.OP_MODE_REG_INDX {
			sb.WriteString(widthSuffix(field(instr, 15, 2)))
		}

	case m.typ == INSTRUCTION_LD, m.typ == INSTRUCTION_ST:
		sb.WriteString(widthSuffix(field(instr, 15, 2)))
	}

	// Register moves encode their direction in the operands.
	if m.typ == INSTRUCTION_MR {
		return sb.String()
	}

	set := options[m.typ]
	opts := ""

	for _, bit := range set.bits {
		if encoding.GetBit(instr, bit.pos) {
			opts += string(bit.letter)
		}
	}

	for _, f := range set.fields {
		if field(instr, f.pos, f.length) == f.value {
			opts = f.name
			break
		}
	}

	if opts != "" {
		sb.WriteString(".")
		sb.WriteString(opts)
	}

	return sb.String()
}

func formatModeOperand(instr uint32, rdx int) string {
	a := field(instr, 27, 4)
	b := field(instr, 31, 4)

	switch field(instr, 13, 2) {
	case machine.OP_MODE_IMM:
		return FormatImmediate(encoding.GetImmVal(instr, 31, 18), rdx)
	case machine.OP_MODE_REG:
		return fmt.Sprintf("r%d, r%d", a, b)
	case machine.OP_MODE_REG_INDX:
		return fmt.Sprintf("r%d(r%d)", a, b)
	default:
		return fmt.Sprintf("%d(r%d)", signed(instr, 27, 12), b)
	}
}

// Formats "(r)" or "(s, r)" from the segment selector and base fields.
func formatLogicalAdr(instr uint32) string {
	if seg := field(instr, 13, 2); seg != 0 {
		return fmt.Sprintf("(s%d, r%d)", seg, field(instr, 31, 4))
	}

	return fmt.Sprintf("(r%d)", field(instr, 31, 4))
}

func formatIndexedAdr(instr uint32) string {
	index := ""
	if a := field(instr, 27, 4); a != 0 {
		index = fmt.Sprintf("r%d", a)
	}

	return index + formatLogicalAdr(instr)
}

func formatReturnReg(instr uint32) string {
	if r := field(instr, 9, 4); r != 0 {
		return fmt.Sprintf(", r%d", r)
	}

	return ""
}

func formatPosLen(instr uint32) string {
	if encoding.GetBit(instr, 11) {
		return fmt.Sprintf(", %d", field(instr, 21, 5))
	}

	return fmt.Sprintf(", %d, %d", field(instr, 27, 5), field(instr, 21, 5))
}

func formatOperands(m mnemonic, instr uint32, rdx int) string {
	r := field(instr, 9, 4)
	a := field(instr, 27, 4)
	b := field(instr, 31, 4)

	switch m.typ {
	case INSTRUCTION_ADD, INSTRUCTION_ADC, INSTRUCTION_SUB, INSTRUCTION_SBC,
		INSTRUCTION_AND, INSTRUCTION_OR, INSTRUCTION_XOR,
		INSTRUCTION_CMP, INSTRUCTION_CMPU:
		return fmt.Sprintf("r%d, %s", r, formatModeOperand(instr, rdx))

	case INSTRUCTION_LD, INSTRUCTION_ST, INSTRUCTION_LDA, INSTRUCTION_STA,
		INSTRUCTION_LDR, INSTRUCTION_STC:
		ofs := fmt.Sprintf("%d", signed(instr, 27, 12))
		if encoding.GetBit(instr, 10) {
			ofs = fmt.Sprintf("r%d", a)
		}

		return fmt.Sprintf("r%d, %s%s", r, ofs, formatLogicalAdr(instr))

	case INSTRUCTION_LSID:
		return fmt.Sprintf("r%d, r%d", r, b)

	case INSTRUCTION_DS, INSTRUCTION_CMR:
		return fmt.Sprintf("r%d, r%d, r%d", r, a, b)

	case INSTRUCTION_DIAG:
		return fmt.Sprintf("r%d, r%d, r%d, %d", r, a, b, field(instr, 13, 4))

	case INSTRUCTION_DSR:
		if encoding.GetBit(instr, 11) {
			return fmt.Sprintf("r%d, r%d, r%d", r, a, b)
		}

		return fmt.Sprintf("r%d, r%d, r%d, %d", r, a, b, field(instr, 21, 5))

	case INSTRUCTION_EXTR:
		return fmt.Sprintf("r%d, r%d%s", r, b, formatPosLen(instr))

	case INSTRUCTION_DEP:
		if encoding.GetBit(instr, 12) {
			return fmt.Sprintf("r%d, %d%s", r, b, formatPosLen(instr))
		}

		return fmt.Sprintf("r%d, r%d%s", r, b, formatPosLen(instr))

	case INSTRUCTION_SHLA:
		src := fmt.Sprintf("r%d", b)
		if encoding.GetBit(instr, 10) {
			src = fmt.Sprintf("%d", b)
		}

		sa := ""
		if amt := field(instr, 21, 2); amt > 0 {
			sa = fmt.Sprintf(", %d", amt)
		}

		return fmt.Sprintf("r%d, r%d, %s%s", r, a, src, sa)

	case INSTRUCTION_LDIL, INSTRUCTION_ADDIL:
		return fmt.Sprintf("r%d, %s", r, FormatImmediate(field(instr, 31, 22), rdx))

	case INSTRUCTION_LDO:
		return fmt.Sprintf("r%d, %d(r%d)", r, signed(instr, 27, 18), b)

	case INSTRUCTION_B, INSTRUCTION_GATE:
		return fmt.Sprintf("%d%s", signed(instr, 31, 22)*4, formatReturnReg(instr))

	case INSTRUCTION_BR, INSTRUCTION_BV:
		return fmt.Sprintf("(r%d)%s", b, formatReturnReg(instr))

	case INSTRUCTION_BE:
		return fmt.Sprintf(
			"%d(s%d, r%d)%s",
			signed(instr, 23, 14)*4, a, b, formatReturnReg(instr),
		)

	case INSTRUCTION_BVE:
		index := ""
		if a != 0 {
			index = fmt.Sprintf("r%d", a)
		}

		return fmt.Sprintf("%s(r%d)%s", index, b, formatReturnReg(instr))

	case INSTRUCTION_CBR, INSTRUCTION_CBRU:
		return fmt.Sprintf("r%d, r%d, %d", a, b, signed(instr, 23, 15)*4)

	case INSTRUCTION_MR:
		special := fmt.Sprintf("s%d", field(instr, 31, 3))
		if encoding.GetBit(instr, 11) {
			special = fmt.Sprintf("c%d", field(instr, 31, 5))
		}

		if encoding.GetBit(instr, 10) {
			return fmt.Sprintf("%s, r%d", special, r)
		}

		return fmt.Sprintf("r%d, %s", r, special)

	case INSTRUCTION_MST:
		if field(instr, 11, 2) == MST_REG {
			return fmt.Sprintf("r%d", b)
		}

		return FormatImmediate(field(instr, 31, 6), 16)

	case INSTRUCTION_LDPA:
		return fmt.Sprintf("r%d, %s", r, formatIndexedAdr(instr))

	case INSTRUCTION_PRB:
		arg := fmt.Sprintf("r%d", a)
		if encoding.GetBit(instr, 11) {
			arg = "0"
			if encoding.GetBit(instr, 27) {
				arg = "1"
			}
		}

		return fmt.Sprintf("r%d, %s, %s", r, formatLogicalAdr(instr), arg)

	case INSTRUCTION_ITLB:
		return fmt.Sprintf("r%d, (s%d, r%d)", r, a, b)

	case INSTRUCTION_PTLB, INSTRUCTION_PCA:
		return formatIndexedAdr(instr)

	case INSTRUCTION_BRK:
		return fmt.Sprintf("%d, %d", r, field(instr, 31, 16))
	}

	return ""
}

// DisassembleParts returns the opcode with its options and the operands as
// separate fields. Values outside the opcode table come back as a raw word.
func DisassembleParts(instr uint32, rdx int) (string, string) {
	if instr == machine.NOP_INSTR {
		return "NOP", ""
	}

	m, ok := opcodes[field(instr, 5, 6)]
	if !ok {
		return "???", fmt.Sprintf("0x%08x", instr)
	}

	return formatOpCode(m, instr), formatOperands(m, instr, rdx)
}

// Disassemble formats an instruction word as assembler text. The opcode field
// is padded to OPCODE_FIELD_WIDTH columns.
func Disassemble(instr uint32, rdx int) string {
	opcode, operands := DisassembleParts(instr, rdx)

	if operands == "" {
		return opcode
	}

	return fmt.Sprintf("%-*s%s", OPCODE_FIELD_WIDTH, opcode, operands)
}
