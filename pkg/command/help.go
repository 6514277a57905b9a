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

package command

import (
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

type helpEntry struct {
	typ    tokenizer.TokType
	tid    tokenizer.TokId
	name   string
	syntax string
	text   string
}

var helpTable = []helpEntry{
	{tokenizer.TYP_CMD, tokenizer.CMD_HELP, "help", "help [ <cmd> | 'commands' | 'wcommands' | 'wtypes' | 'predefined' | 'regset' ]", "list help information"},
	{tokenizer.TYP_CMD, tokenizer.CMD_EXIT, "exit", "exit (e) [ <val> ]", "program exit"},
	{tokenizer.TYP_CMD, tokenizer.CMD_HIST, "hist", "hist [ depth ]", "display command history"},
	{tokenizer.TYP_CMD, tokenizer.CMD_DO, "do", "do [ cmdNum ]", "re-execute command"},
	{tokenizer.TYP_CMD, tokenizer.CMD_REDO, "redo", "redo [ cmdNum ]", "edit and then re-execute a command"},
	{tokenizer.TYP_CMD, tokenizer.CMD_ENV, "env", "env [ <var> [ <val> ]]", "lists the env tab, a variable, sets a variable"},
	{tokenizer.TYP_CMD, tokenizer.CMD_XF, "xf", "xf <filepath>", "execute commands from a file"},
	{tokenizer.TYP_CMD, tokenizer.CMD_WRITE_LINE, "w", "w <expr> [ , <rdx> ]", "evaluates and prints an expression"},
	{tokenizer.TYP_CMD, tokenizer.CMD_RESET, "reset", "reset [ ( 'CPU' | 'MEM' | 'STATS' | 'ALL' ) ]", "resets the CPU ( default ), memory, statistics or all of them"},
	{tokenizer.TYP_CMD, tokenizer.CMD_RUN, "run", "run", "run the CPU until a break, a trap or a key press"},
	{tokenizer.TYP_CMD, tokenizer.CMD_STEP, "step", "s [ <steps> ] [ , 'I' | 'C' ]", "single step for instruction or clock cycle"},
	{tokenizer.TYP_CMD, tokenizer.CMD_B, "b", "b <ofs> | <extAdr>", "set a breakpoint"},
	{tokenizer.TYP_CMD, tokenizer.CMD_BD, "bd", "bd [ <ofs> | <extAdr> ]", "delete a breakpoint, or all of them"},
	{tokenizer.TYP_CMD, tokenizer.CMD_BL, "bl", "bl", "list the breakpoints"},
	{tokenizer.TYP_CMD, tokenizer.CMD_DR, "dr", "dr [ <regSet>| <reg> ] [ , <fmt> ]", "display registers"},
	{tokenizer.TYP_CMD, tokenizer.CMD_MR, "mr", "mr <reg> <val>", "modify registers"},
	{tokenizer.TYP_CMD, tokenizer.CMD_DA, "da", "da <ofs> [ , <len> ] [ , <fmt> ]", "display memory"},
	{tokenizer.TYP_CMD, tokenizer.CMD_MA, "ma", "ma <ofs> <val>", "modify memory"},
	{tokenizer.TYP_CMD, tokenizer.CMD_D_CACHE, "dca", "dca <I|D|U> \",\" [<index> <len>]", "display cache content"},
	{tokenizer.TYP_CMD, tokenizer.CMD_P_CACHE, "pca", "pca <I|D|U> \",\" <index> [<set>] [<flush>]", "flushes and purges cache data"},
	{tokenizer.TYP_CMD, tokenizer.CMD_D_TLB, "dtlb", "dtlb <I|D> [ <index> <len> ]", "display TLB content"},
	{tokenizer.TYP_CMD, tokenizer.CMD_I_TLB, "itlb", "itlb <I|D> <extAdr> <argAcc> <argAdr>", "inserts an entry into the TLB"},
	{tokenizer.TYP_CMD, tokenizer.CMD_P_TLB, "ptlb", "ptlb <I|D> <extAdr>", "purges an entry from the TLB"},

	{tokenizer.TYP_WCMD, tokenizer.CMD_WON, "won", "won", "switches to windows mode"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WOFF, "woff", "woff", "switches to command line mode"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WDEF, "wdef", "wdef", "reset the windows to their default values"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WSE, "wse", "wse", "enable window stacks"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WSD, "wsd", "wsd", "disable window stacks"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_PSE, "pse", "pse", "enable general register window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_PSD, "psd", "psd", "disable general register window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_PSR, "psr", "psr [ <rdx> ]", "set general register window radix"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_SRE, "sre", "sre", "enable special register window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_SRD, "srd", "srd", "disable special register window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_SRR, "srr", "srr [ <rdx> ]", "set special register window radix"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_PLE, "ple", "ple", "enable pipeline register window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_PLD, "pld", "pld", "disable pipeline register window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_PLR, "plr", "plr [ <rdx> ]", "set pipeline register window radix"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_SWE, "swe", "swe", "enable statistics window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_SWD, "swd", "swd", "disable statistics window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_SWR, "swr", "swr [ <rdx> ]", "set statistics window radix"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WE, "we", "we [ <winNum> ]", "enable user window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WD, "wd", "wd [ <winNum> ]", "disable user window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WR, "wr", "wr [ <rdx> ] [ , <winNum> ]", "set user window radix"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WF, "wf", "wf [ <amt> ] [ , <winNum> ]", "move forward by n items"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WB, "wb", "wb [ <amt> ] [ , <winNum> ]", "move backward by n items"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WH, "wh", "wh [ <pos> ] [ , <winNum> ]", "move home to starting state"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WJ, "wj", "wj <pos> [ , <winNum> ]", "move to a position"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WL, "wl", "wl [ <lines> ] [ , <winNum> ]", "set window lines including banner line"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_CWL, "cwl", "cwl [ <lines> ]", "set command window lines including banner line"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WN, "wn", "wn <winType> [ , <arg> ]", "create a user defined window ( see help wtypes )"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WK, "wk", "wk [ <winNumStart> [ , <winNumEnd> ]] || ( -1 )", "removes a user defined window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WS, "ws", "ws <stackNum> [ , <winNumStart> [ , <winNumEnd> ]]", "moves a user window to a stack"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WC, "wc", "wc <winNum>", "set the current window"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WT, "wt", "wt [ <winNum> ]", "toggle through alternate window content"},
	{tokenizer.TYP_WCMD, tokenizer.CMD_WX, "wx", "wx <winNum>", "exchange current window with this window"},

	{tokenizer.TYP_PREDEFINED_FUNC, tokenizer.PF_S32, "s32", "s32 ( <expr> )", "sign extends a numeric value"},
	{tokenizer.TYP_PREDEFINED_FUNC, tokenizer.PF_U32, "u32", "u32 ( <expr> )", "zero extends a numeric value"},
	{tokenizer.TYP_PREDEFINED_FUNC, tokenizer.PF_HASH, "hash", "hash ( <extAdr> )", "returns the hash value of a virtual address"},
	{tokenizer.TYP_PREDEFINED_FUNC, tokenizer.PF_EXT_ADR, "adr", "adr ( <seg> , <ofs> )", "returns an extended address"},
	{tokenizer.TYP_PREDEFINED_FUNC, tokenizer.PF_ASSEMBLE, "asm", "asm ( <asmStr> )", "returns the instruction value for an assemble string"},
	{tokenizer.TYP_PREDEFINED_FUNC, tokenizer.PF_DIS_ASSEMBLE, "disasm", "disasm ( <instr> )", "returns the assemble string for an instruction value"},
}

const regSetHelp = `General registers:       R0 .. R15, set: GR
Aliases:                 T0 .. T6, ARG0 .. ARG3, RET0 .. RET3, DP, RL, SP
Segment registers:       S0 .. S7, set: SR
Control registers:       C0 .. C31, set: CR
Fetch/decode stage:      FD_PSW0, FD_PSW1 ( PSW0, PSW1 ), set: FD_REGS
Memory access stage:     MA_PSW0 .. MA_S, set: MA_REGS
Execute stage:           EX_PSW0 .. EX_S, set: EX_REGS
I-Cache controller:      IC_L1_STATE .. IC_L1_B_SIZE, set: ICL1
D-Cache controller:      DC_L1_STATE .. DC_L1_B_SIZE, set: DCL1
U-Cache controller:      UC_L2_STATE .. UC_L2_B_SIZE, set: UCL2
I-TLB controller:        ITLB_STATE .. ITLB_REQ_OFS, set: ITLBL1
D-TLB controller:        DTLB_STATE .. DTLB_REQ_OFS, set: DTLBL1
`

const winTypesHelp = `PM   - physical memory
PC   - program code
IT   - instruction TLB
DT   - data TLB
IC   - instruction cache (L1)
DC   - data cache (L1)
UC   - unified cache (L2)
ICR  - instruction cache controller registers
DCR  - data cache controller registers
UCR  - unified cache controller registers
MCR  - physical memory controller registers
ITR  - instruction TLB controller registers
DTR  - data TLB controller registers
PCR  - PDC memory controller registers
IOR  - IO memory controller registers
TX   - text file, WN TX, "<path>"
CW   - console output of the program
`

func (sim *Simulator) helpSummary(typ tokenizer.TokType) {
	for _, entry := range helpTable {
		if entry.typ == typ {
			sim.printf("%-16s%s\n", entry.name, entry.text)
		}
	}

	sim.printf("\n")
}

// HELP [cmd | set]
func (sim *Simulator) helpCmd() error {
	tk := sim.tk

	if tk.IsEOS() {
		sim.helpSummary(tokenizer.TYP_CMD)
		return nil
	}

	tok := tk.Token()

	if err := tk.Next(); err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	switch tok.Tid {
	case tokenizer.CMD_SET:
		sim.helpSummary(tokenizer.TYP_CMD)
		return nil

	case tokenizer.WCMD_SET:
		sim.helpSummary(tokenizer.TYP_WCMD)
		return nil

	case tokenizer.PF_SET:
		sim.helpSummary(tokenizer.TYP_PREDEFINED_FUNC)
		return nil

	case tokenizer.REG_SET:
		sim.printf("%s\n", regSetHelp)
		return nil

	case tokenizer.WTYPE_SET:
		sim.printf("%s\n", winTypesHelp)
		return nil
	}

	for _, entry := range helpTable {
		if entry.tid == tok.Tid && entry.typ == tok.Typ {
			sim.printf("%s - %s\n", entry.syntax, entry.text)
			return nil
		}
	}

	return simerr.At(simerr.ERR_INVALID_ARG, tok.Pos)
}
