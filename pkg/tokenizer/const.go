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

const MAX_TOKEN_NAME_SIZE = 32

type TokType int

const (
	TYP_NIL             TokType = 0
	TYP_CMD             TokType = 1
	TYP_WCMD            TokType = 2
	TYP_WTYP            TokType = 3
	TYP_RSET            TokType = 4
	TYP_SYM             TokType = 5
	TYP_IDENT           TokType = 6
	TYP_PREDEFINED_FUNC TokType = 7

	TYP_NUM       TokType = 10
	TYP_STR       TokType = 11
	TYP_BOOL      TokType = 12
	TYP_ADR       TokType = 13
	TYP_EXT_ADR   TokType = 14
	TYP_OP_CODE   TokType = 15
	TYP_OP_CODE_S TokType = 16

	TYP_REG      TokType = 20
	TYP_REG_PAIR TokType = 21

	TYP_GREG        TokType = 30
	TYP_SREG        TokType = 31
	TYP_CREG        TokType = 32
	TYP_PSTATE_PREG TokType = 33
	TYP_FD_PREG     TokType = 34
	TYP_MA_PREG     TokType = 35
	TYP_EX_PREG     TokType = 36

	TYP_IC_L1_REG TokType = 40
	TYP_DC_L1_REG TokType = 41
	TYP_UC_L2_REG TokType = 42
	TYP_MEM_REG   TokType = 43
	TYP_ITLB_REG  TokType = 44
	TYP_DTLB_REG  TokType = 45
)

type TokId int

// Symbols and keywords
const (
	TOK_NIL    TokId = 0
	TOK_ERR    TokId = 1
	TOK_EOS    TokId = 2
	TOK_COMMA  TokId = 3
	TOK_PERIOD TokId = 4
	TOK_LPAREN TokId = 5
	TOK_RPAREN TokId = 6
	TOK_QUOTE  TokId = 7
	TOK_PLUS   TokId = 8
	TOK_MINUS  TokId = 9
	TOK_MULT   TokId = 10
	TOK_DIV    TokId = 11
	TOK_MOD    TokId = 12
	TOK_REM    TokId = 13
	TOK_NEG    TokId = 14
	TOK_AND    TokId = 15
	TOK_OR     TokId = 16
	TOK_XOR    TokId = 17
	TOK_EQ     TokId = 18
	TOK_NE     TokId = 19
	TOK_LT     TokId = 20
	TOK_GT     TokId = 21
	TOK_LE     TokId = 22
	TOK_GE     TokId = 23

	TOK_IDENT TokId = 100
	TOK_NUM   TokId = 101
	TOK_STR   TokId = 102

	TOK_CPU   TokId = 105
	TOK_MEM   TokId = 106
	TOK_STATS TokId = 107

	TOK_C TokId = 108
	TOK_D TokId = 109
	TOK_F TokId = 110
	TOK_I TokId = 111
	TOK_T TokId = 112
	TOK_U TokId = 113

	TOK_PM TokId = 114
	TOK_PC TokId = 115
	TOK_IT TokId = 116
	TOK_DT TokId = 117
	TOK_IC TokId = 118
	TOK_DC TokId = 119
	TOK_UC TokId = 120
	TOK_TX TokId = 121
	TOK_CW TokId = 122

	TOK_ICR TokId = 200
	TOK_DCR TokId = 201
	TOK_UCR TokId = 202
	TOK_ITR TokId = 203
	TOK_DTR TokId = 204
	TOK_MCR TokId = 205
	TOK_PCR TokId = 206
	TOK_IOR TokId = 207

	TOK_DEC  TokId = 300
	TOK_OCT  TokId = 301
	TOK_HEX  TokId = 302
	TOK_CODE TokId = 303

	TOK_DEF TokId = 400
	TOK_INV TokId = 401
	TOK_ALL TokId = 402
)

// Commands
const (
	CMD_SET  TokId = 1000
	CMD_EXIT TokId = 1001
	CMD_HELP TokId = 1002

	CMD_DO         TokId = 1010
	CMD_REDO       TokId = 1011
	CMD_HIST       TokId = 1012
	CMD_ENV        TokId = 1013
	CMD_XF         TokId = 1014
	CMD_WRITE_LINE TokId = 1015

	CMD_RESET TokId = 1020
	CMD_RUN   TokId = 1021
	CMD_STEP  TokId = 1022

	CMD_DR TokId = 1030
	CMD_MR TokId = 1031
	CMD_DA TokId = 1037
	CMD_MA TokId = 1038

	CMD_D_TLB   TokId = 1040
	CMD_I_TLB   TokId = 1041
	CMD_P_TLB   TokId = 1042
	CMD_D_CACHE TokId = 1043
	CMD_P_CACHE TokId = 1044

	CMD_B  TokId = 1050
	CMD_BD TokId = 1051
	CMD_BL TokId = 1052
)

// Window commands
const (
	WCMD_SET  TokId = 2000
	WTYPE_SET TokId = 2001

	CMD_WON  TokId = 2002
	CMD_WOFF TokId = 2003
	CMD_WDEF TokId = 2004
	CMD_CWL  TokId = 2005
	CMD_WSE  TokId = 2006
	CMD_WSD  TokId = 2007

	CMD_PSE TokId = 2010
	CMD_PSD TokId = 2011
	CMD_PSR TokId = 2012

	CMD_SRE TokId = 2015
	CMD_SRD TokId = 2016
	CMD_SRR TokId = 2017

	CMD_PLE TokId = 2020
	CMD_PLD TokId = 2021
	CMD_PLR TokId = 2022

	CMD_SWE TokId = 2025
	CMD_SWD TokId = 2026
	CMD_SWR TokId = 2027

	CMD_WE TokId = 2050
	CMD_WD TokId = 2051
	CMD_WR TokId = 2052
	CMD_WF TokId = 2053
	CMD_WB TokId = 2054
	CMD_WH TokId = 2055
	CMD_WJ TokId = 2056
	CMD_WL TokId = 2057
	CMD_WN TokId = 2058
	CMD_WK TokId = 2059
	CMD_WC TokId = 2060
	CMD_WS TokId = 2061
	CMD_WT TokId = 2062
	CMD_WX TokId = 2063
)

// Predefined functions
const (
	PF_SET          TokId = 3000
	PF_ASSEMBLE     TokId = 3001
	PF_DIS_ASSEMBLE TokId = 3002
	PF_HASH         TokId = 3003
	PF_EXT_ADR      TokId = 3004
	PF_S32          TokId = 3005
	PF_U32          TokId = 3006
)

// Registers. Numbered registers of a set are consecutive, so GR_0+n names
// general register n.
const (
	REG_SET TokId = 4000

	GR_0   TokId = 4100
	GR_SET TokId = 4116

	SR_0   TokId = 4200
	SR_SET TokId = 4208

	CR_0   TokId = 4300
	CR_SET TokId = 4332

	FD_PSW0 TokId = 4500
	FD_PSW1 TokId = 4501
	FD_SET  TokId = 4502

	MA_PSW0  TokId = 4600
	MA_PSW1  TokId = 4601
	MA_INSTR TokId = 4602
	MA_A     TokId = 4603
	MA_B     TokId = 4604
	MA_X     TokId = 4605
	MA_S     TokId = 4606
	MA_SET   TokId = 4607

	EX_PSW0  TokId = 4650
	EX_PSW1  TokId = 4651
	EX_INSTR TokId = 4652
	EX_A     TokId = 4653
	EX_B     TokId = 4654
	EX_X     TokId = 4655
	EX_S     TokId = 4656
	EX_SET   TokId = 4657

	IC_L1_STATE         TokId = 4700
	IC_L1_REQ           TokId = 4701
	IC_L1_REQ_SEG       TokId = 4702
	IC_L1_REQ_OFS       TokId = 4703
	IC_L1_REQ_TAG       TokId = 4704
	IC_L1_REQ_LEN       TokId = 4705
	IC_L1_LATENCY       TokId = 4706
	IC_L1_SETS          TokId = 4707
	IC_L1_BLOCK_ENTRIES TokId = 4708
	IC_L1_BLOCK_SIZE    TokId = 4709
	IC_L1_SET           TokId = 4710

	DC_L1_STATE         TokId = 4720
	DC_L1_REQ           TokId = 4721
	DC_L1_REQ_SEG       TokId = 4722
	DC_L1_REQ_OFS       TokId = 4723
	DC_L1_REQ_TAG       TokId = 4724
	DC_L1_REQ_LEN       TokId = 4725
	DC_L1_LATENCY       TokId = 4726
	DC_L1_SETS          TokId = 4727
	DC_L1_BLOCK_ENTRIES TokId = 4728
	DC_L1_BLOCK_SIZE    TokId = 4729
	DC_L1_SET           TokId = 4730

	UC_L2_STATE         TokId = 4740
	UC_L2_REQ           TokId = 4741
	UC_L2_REQ_SEG       TokId = 4742
	UC_L2_REQ_OFS       TokId = 4743
	UC_L2_REQ_TAG       TokId = 4744
	UC_L2_REQ_LEN       TokId = 4745
	UC_L2_LATENCY       TokId = 4746
	UC_L2_SETS          TokId = 4747
	UC_L2_BLOCK_ENTRIES TokId = 4748
	UC_L2_BLOCK_SIZE    TokId = 4749
	UC_L2_SET           TokId = 4750

	ITLB_STATE   TokId = 4800
	ITLB_REQ     TokId = 4801
	ITLB_REQ_SEG TokId = 4802
	ITLB_REQ_OFS TokId = 4803
	ITLB_SET     TokId = 4804

	DTLB_STATE   TokId = 4810
	DTLB_REQ     TokId = 4811
	DTLB_REQ_SEG TokId = 4812
	DTLB_REQ_OFS TokId = 4813
	DTLB_SET     TokId = 4814
)
