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
	"fmt"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/machine"
)

// Entry is one reserved word. Val carries a radix for format options and a
// register number for register names.
type Entry struct {
	Name string
	Typ  TokType
	Tid  TokId
	Val  uint32
}

type Table []Entry

// Lookup finds a reserved word. Names are matched case insensitive.
func (tab Table) Lookup(name string) (Entry, bool) {
	if len(name) > MAX_TOKEN_NAME_SIZE {
		return Entry{}, false
	}

	name = strings.ToUpper(name)

	for _, entry := range tab {
		if entry.Name == name {
			return entry, true
		}
	}

	return Entry{}, false
}

// Returns the first name registered for a token id.
func (tab Table) Name(tid TokId) (string, bool) {
	for _, entry := range tab {
		if entry.Tid == tid {
			return entry.Name, true
		}
	}

	return "", false
}

var CmdTable = newCmdTable()

func newCmdTable() Table {
	tab := Table{
		{"NIL", TYP_SYM, TOK_NIL, 0},
		{"ALL", TYP_SYM, TOK_ALL, 0},
		{"CPU", TYP_SYM, TOK_CPU, 0},
		{"MEM", TYP_SYM, TOK_MEM, 0},
		{"STATS", TYP_SYM, TOK_STATS, 0},
		{"C", TYP_SYM, TOK_C, 0},
		{"D", TYP_SYM, TOK_D, 0},
		{"F", TYP_SYM, TOK_F, 0},
		{"I", TYP_SYM, TOK_I, 0},
		{"T", TYP_SYM, TOK_T, 0},
		{"U", TYP_SYM, TOK_U, 0},

		{"DEC", TYP_SYM, TOK_DEC, 10},
		{"DECIMAL", TYP_SYM, TOK_DEC, 10},
		{"HEX", TYP_SYM, TOK_HEX, 16},
		{"OCT", TYP_SYM, TOK_OCT, 8},
		{"OCTAL", TYP_SYM, TOK_OCT, 8},
		{"CODE", TYP_SYM, TOK_CODE, 0},

		{"COMMANDS", TYP_CMD, CMD_SET, 0},
		{"WCOMMANDS", TYP_WCMD, WCMD_SET, 0},
		{"PREDEFINED", TYP_PREDEFINED_FUNC, PF_SET, 0},
		{"REGSET", TYP_RSET, REG_SET, 0},
		{"WTYPES", TYP_WTYP, WTYPE_SET, 0},

		{"HELP", TYP_CMD, CMD_HELP, 0},
		{"?", TYP_CMD, CMD_HELP, 0},
		{"EXIT", TYP_CMD, CMD_EXIT, 0},
		{"E", TYP_CMD, CMD_EXIT, 0},
		{"HIST", TYP_CMD, CMD_HIST, 0},
		{"DO", TYP_CMD, CMD_DO, 0},
		{"REDO", TYP_CMD, CMD_REDO, 0},
		{"ENV", TYP_CMD, CMD_ENV, 0},
		{"XF", TYP_CMD, CMD_XF, 0},
		{"W", TYP_CMD, CMD_WRITE_LINE, 0},
		{"RESET", TYP_CMD, CMD_RESET, 0},
		{"RUN", TYP_CMD, CMD_RUN, 0},
		{"STEP", TYP_CMD, CMD_STEP, 0},
		{"S", TYP_CMD, CMD_STEP, 0},
		{"B", TYP_CMD, CMD_B, 0},
		{"BD", TYP_CMD, CMD_BD, 0},
		{"BL", TYP_CMD, CMD_BL, 0},
		{"DR", TYP_CMD, CMD_DR, 0},
		{"MR", TYP_CMD, CMD_MR, 0},
		{"DA", TYP_CMD, CMD_DA, 0},
		{"MA", TYP_CMD, CMD_MA, 0},
		{"ITLB", TYP_CMD, CMD_I_TLB, 0},
		{"DTLB", TYP_CMD, CMD_D_TLB, 0},
		{"PTLB", TYP_CMD, CMD_P_TLB, 0},
		{"DCA", TYP_CMD, CMD_D_CACHE, 0},
		{"PCA", TYP_CMD, CMD_P_CACHE, 0},

		{"WON", TYP_WCMD, CMD_WON, 0},
		{"WOFF", TYP_WCMD, CMD_WOFF, 0},
		{"WDEF", TYP_WCMD, CMD_WDEF, 0},
		{"WSE", TYP_WCMD, CMD_WSE, 0},
		{"WSD", TYP_WCMD, CMD_WSD, 0},
		{"PSE", TYP_WCMD, CMD_PSE, 0},
		{"PSD", TYP_WCMD, CMD_PSD, 0},
		{"PSR", TYP_WCMD, CMD_PSR, 0},
		{"SRE", TYP_WCMD, CMD_SRE, 0},
		{"SRD", TYP_WCMD, CMD_SRD, 0},
		{"SRR", TYP_WCMD, CMD_SRR, 0},
		{"PLE", TYP_WCMD, CMD_PLE, 0},
		{"PLD", TYP_WCMD, CMD_PLD, 0},
		{"PLR", TYP_WCMD, CMD_PLR, 0},
		{"SWE", TYP_WCMD, CMD_SWE, 0},
		{"SWD", TYP_WCMD, CMD_SWD, 0},
		{"SWR", TYP_WCMD, CMD_SWR, 0},
		{"CWL", TYP_WCMD, CMD_CWL, 0},
		{"WE", TYP_WCMD, CMD_WE, 0},
		{"WD", TYP_WCMD, CMD_WD, 0},
		{"WR", TYP_WCMD, CMD_WR, 0},
		{"WF", TYP_WCMD, CMD_WF, 0},
		{"WB", TYP_WCMD, CMD_WB, 0},
		{"WH", TYP_WCMD, CMD_WH, 0},
		{"WJ", TYP_WCMD, CMD_WJ, 0},
		{"WL", TYP_WCMD, CMD_WL, 0},
		{"WN", TYP_WCMD, CMD_WN, 0},
		{"WK", TYP_WCMD, CMD_WK, 0},
		{"WC", TYP_WCMD, CMD_WC, 0},
		{"WS", TYP_WCMD, CMD_WS, 0},
		{"WT", TYP_WCMD, CMD_WT, 0},
		{"WX", TYP_WCMD, CMD_WX, 0},

		{"PM", TYP_SYM, TOK_PM, 0},
		{"PC", TYP_SYM, TOK_PC, 0},
		{"IT", TYP_SYM, TOK_IT, 0},
		{"DT", TYP_SYM, TOK_DT, 0},
		{"IC", TYP_SYM, TOK_IC, 0},
		{"DC", TYP_SYM, TOK_DC, 0},
		{"UC", TYP_SYM, TOK_UC, 0},
		{"ICR", TYP_SYM, TOK_ICR, 0},
		{"DCR", TYP_SYM, TOK_DCR, 0},
		{"UCR", TYP_SYM, TOK_UCR, 0},
		{"MCR", TYP_SYM, TOK_MCR, 0},
		{"ITR", TYP_SYM, TOK_ITR, 0},
		{"DTR", TYP_SYM, TOK_DTR, 0},
		{"PCR", TYP_SYM, TOK_PCR, 0},
		{"IOR", TYP_SYM, TOK_IOR, 0},
		{"TX", TYP_SYM, TOK_TX, 0},
		{"CW", TYP_SYM, TOK_CW, 0},
	}

	for i := 0; i < machine.MAX_GREGS; i++ {
		tab = append(tab, Entry{fmt.Sprintf("R%d", i), TYP_GREG, GR_0 + TokId(i), uint32(i)})
	}

	tab = append(tab, Entry{"GR", TYP_GREG, GR_SET, 0})

	// Calling convention aliases
	for i := 0; i < 7; i++ {
		tab = append(tab, Entry{fmt.Sprintf("T%d", i), TYP_GREG, GR_0 + TokId(i+1), uint32(i + 1)})
	}

	for i := 0; i < 4; i++ {
		reg := uint32(11 - i)
		tab = append(tab,
			Entry{fmt.Sprintf("ARG%d", i), TYP_GREG, GR_0 + TokId(reg), reg},
			Entry{fmt.Sprintf("RET%d", i), TYP_GREG, GR_0 + TokId(reg), reg},
		)
	}

	tab = append(tab,
		Entry{"DP", TYP_GREG, GR_0 + 13, 13},
		Entry{"RL", TYP_GREG, GR_0 + 14, 14},
		Entry{"SP", TYP_GREG, GR_0 + 15, 15},
	)

	for i := 0; i < machine.MAX_SREGS; i++ {
		tab = append(tab, Entry{fmt.Sprintf("S%d", i), TYP_SREG, SR_0 + TokId(i), uint32(i)})
	}

	tab = append(tab, Entry{"SR", TYP_SREG, SR_SET, 0})

	for i := 0; i < machine.MAX_CREGS; i++ {
		tab = append(tab, Entry{fmt.Sprintf("C%d", i), TYP_CREG, CR_0 + TokId(i), uint32(i)})
	}

	tab = append(tab,
		Entry{"CR", TYP_CREG, CR_SET, 0},

		Entry{"FD_PSW0", TYP_FD_PREG, FD_PSW0, machine.PSTAGE_REG_ID_PSW_0},
		Entry{"FD_PSW1", TYP_FD_PREG, FD_PSW1, machine.PSTAGE_REG_ID_PSW_1},
		Entry{"PSW0", TYP_FD_PREG, FD_PSW0, machine.PSTAGE_REG_ID_PSW_0},
		Entry{"PSW1", TYP_FD_PREG, FD_PSW1, machine.PSTAGE_REG_ID_PSW_1},
		Entry{"FD_REGS", TYP_FD_PREG, FD_SET, 0},
	)

	stageRegs := []struct {
		suffix string
		val    uint32
	}{
		{"PSW0", machine.PSTAGE_REG_ID_PSW_0},
		{"PSW1", machine.PSTAGE_REG_ID_PSW_1},
		{"INSTR", machine.PSTAGE_REG_ID_INSTR},
		{"A", machine.PSTAGE_REG_ID_VAL_A},
		{"B", machine.PSTAGE_REG_ID_VAL_B},
		{"X", machine.PSTAGE_REG_ID_VAL_X},
		{"S", machine.PSTAGE_REG_ID_VAL_S},
	}

	for i, reg := range stageRegs {
		tab = append(tab,
			Entry{"MA_" + reg.suffix, TYP_MA_PREG, MA_PSW0 + TokId(i), reg.val},
			Entry{"EX_" + reg.suffix, TYP_EX_PREG, EX_PSW0 + TokId(i), reg.val},
		)
	}

	tab = append(tab,
		Entry{"MA_REGS", TYP_MA_PREG, MA_SET, 0},
		Entry{"EX_REGS", TYP_EX_PREG, EX_SET, 0},
	)

	cacheRegs := []struct {
		suffix string
		val    uint32
	}{
		{"STATE", machine.MC_REG_STATE},
		{"REQ", machine.MC_REG_REQ_ADR},
		{"REQ_SEG", machine.MC_REG_REQ_SEG},
		{"REQ_OFS", machine.MC_REG_REQ_OFS},
		{"REQ_TAG", machine.MC_REG_REQ_TAG},
		{"REQ_LEN", machine.MC_REG_REQ_LEN},
		{"REQ_LAT", machine.MC_REG_REQ_LATENCY},
		{"SETS", machine.MC_REG_SETS},
		{"ENTRIES", machine.MC_REG_BLOCK_ENTRIES},
		{"B_SIZE", machine.MC_REG_BLOCK_SIZE},
	}

	caches := []struct {
		prefix string
		set    string
		typ    TokType
		first  TokId
		setId  TokId
	}{
		{"IC_L1_", "ICL1", TYP_IC_L1_REG, IC_L1_STATE, IC_L1_SET},
		{"DC_L1_", "DCL1", TYP_DC_L1_REG, DC_L1_STATE, DC_L1_SET},
		{"UC_L2_", "UCL2", TYP_UC_L2_REG, UC_L2_STATE, UC_L2_SET},
	}

	for _, cache := range caches {
		for i, reg := range cacheRegs {
			tab = append(tab, Entry{cache.prefix + reg.suffix, cache.typ, cache.first + TokId(i), reg.val})
		}

		tab = append(tab, Entry{cache.set, cache.typ, cache.setId, 0})
	}

	tlbRegs := []struct {
		suffix string
		val    uint32
	}{
		{"STATE", machine.TC_REG_STATE},
		{"REQ", machine.TC_REG_REQ},
		{"REQ_SEG", machine.TC_REG_REQ_SEG},
		{"REQ_OFS", machine.TC_REG_REQ_OFS},
	}

	tlbs := []struct {
		prefix string
		set    string
		typ    TokType
		first  TokId
		setId  TokId
	}{
		{"ITLB_", "ITLBL1", TYP_ITLB_REG, ITLB_STATE, ITLB_SET},
		{"DTLB_", "DTLBL1", TYP_DTLB_REG, DTLB_STATE, DTLB_SET},
	}

	for _, tlb := range tlbs {
		for i, reg := range tlbRegs {
			tab = append(tab, Entry{tlb.prefix + reg.suffix, tlb.typ, tlb.first + TokId(i), reg.val})
		}

		tab = append(tab, Entry{tlb.set, tlb.typ, tlb.setId, 0})
	}

	tab = append(tab,
		Entry{"ASM", TYP_PREDEFINED_FUNC, PF_ASSEMBLE, 0},
		Entry{"DISASM", TYP_PREDEFINED_FUNC, PF_DIS_ASSEMBLE, 0},
		Entry{"HASH", TYP_PREDEFINED_FUNC, PF_HASH, 0},
		Entry{"ADR", TYP_PREDEFINED_FUNC, PF_EXT_ADR, 0},
		Entry{"S32", TYP_PREDEFINED_FUNC, PF_S32, 0},
		Entry{"U32", TYP_PREDEFINED_FUNC, PF_U32, 0},
	)

	return tab
}

// IsSetId reports whether tid names a whole register set rather than one
// register.
func IsSetId(tid TokId) bool {
	switch tid {
	case GR_SET, SR_SET, CR_SET, FD_SET, MA_SET, EX_SET,
		IC_L1_SET, DC_L1_SET, UC_L2_SET, ITLB_SET, DTLB_SET:
		return true
	}

	return false
}
