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

package machine

const (
	MAX_GREGS = 16
	MAX_SREGS = 8
	MAX_CREGS = 32
)

const (
	PAGE_SIZE      uint32 = 16384
	PAGE_SIZE_BITS        = 14
)

// Physical address map. Physical memory grows upward from zero and may not
// reach into the PDC or I/O ranges.
const (
	MAX_PHYS_MEM_SIZE uint32 = 0xF0000000
	PDC_MEM_START     uint32 = 0xF0000000
	PDC_MEM_SIZE      uint32 = 16 * 1024 * 1024
	IO_MEM_START      uint32 = 0xF1000000
	IO_MEM_END        uint32 = 0xFFFFFFFF

	IO_CONSOLE_DATA   uint32 = 0xF1000000
	IO_CONSOLE_STATUS uint32 = 0xF1000004
)

const (
	MAX_TLB_SIZE            = 2048
	MAX_CACHE_BLOCK_ENTRIES = 1024
	MAX_BLOCK_SIZE          = 128
	MAX_BLOCK_SETS          = 4
)

// Status bits live in the upper half of PSW0.
const (
	ST_MACHINE_CHECK           = 0
	ST_EXECUTION_LEVEL         = 1
	ST_CODE_TRANSLATION_ENABLE = 2
	ST_CARRY                   = 4
	ST_DATA_TRANSLATION_ENABLE = 13
	ST_PROTECT_ID_CHECK_ENABLE = 14
	ST_INTERRUPT_ENABLE        = 15
)

type RegClass uint

const (
	RC_REG_SET_NIL RegClass = iota
	RC_GEN_REG_SET
	RC_SEG_REG_SET
	RC_CTRL_REG_SET
	RC_PROG_STATE
	RC_FD_PSTAGE
	RC_MA_PSTAGE
	RC_EX_PSTAGE
	RC_IC_L1_OBJ
	RC_DC_L1_OBJ
	RC_UC_L2_OBJ
	RC_MEM_OBJ
	RC_PDC_OBJ
	RC_IO_OBJ
	RC_ITLB_OBJ
	RC_DTLB_OBJ
)

const (
	PS_REG_PSW_0 = 0
	PS_REG_PSW_1 = 1
)

const (
	PSTAGE_REG_STALLED = iota
	PSTAGE_REG_ID_PSW_0
	PSTAGE_REG_ID_PSW_1
	PSTAGE_REG_ID_INSTR
	PSTAGE_REG_ID_VAL_A
	PSTAGE_REG_ID_VAL_B
	PSTAGE_REG_ID_VAL_X
	PSTAGE_REG_ID_VAL_S
	PSTAGE_REG_MAX
)

const (
	MC_REG_STATE = iota
	MC_REG_REQ_SEG
	MC_REG_REQ_OFS
	MC_REG_REQ_PRI
	MC_REG_REQ_TAG
	MC_REG_REQ_ADR
	MC_REG_REQ_LEN
	MC_REG_REQ_BLOCK_INDEX
	MC_REG_REQ_BLOCK_SET
	MC_REG_REQ_LATENCY
	MC_REG_START_ADR
	MC_REG_END_ADR
	MC_REG_LATENCY
	MC_REG_BLOCK_ENTRIES
	MC_REG_BLOCK_SIZE
	MC_REG_SETS
	MC_REG_MAX
)

const (
	TC_REG_STATE = iota
	TC_REG_REQ
	TC_REG_REQ_SEG
	TC_REG_REQ_OFS
	TC_REG_MAX
)

// Memory controller states.
const (
	MO_IDLE uint32 = iota
	MO_READ_BLOCK
	MO_WRITE_BACK_BLOCK
	MO_FLUSH_BLOCK
	MO_PURGE_BLOCK
	MO_READ_WORD_PHYS
	MO_WRITE_WORD_PHYS
)

type MemType uint

const (
	MEM_T_NIL MemType = iota
	MEM_T_L1_INSTR
	MEM_T_L1_DATA
	MEM_T_L2_UNIFIED
	MEM_T_PHYS_MEM
	MEM_T_PDC_MEM
	MEM_T_IO_MEM
)

type TlbType uint

const (
	TLB_T_NIL TlbType = iota
	TLB_T_L1_INSTR
	TLB_T_L1_DATA
)

// Data width field of memory reference instructions.
const (
	DW_BYTE = 0
	DW_HALF = 1
	DW_WORD = 2
)

const (
	OP_MODE_IMM      = 0
	OP_MODE_REG      = 1
	OP_MODE_REG_INDX = 2
	OP_MODE_INDX     = 3
)

// Compare condition codes of CMP, CMPU, CBR and CBRU.
const (
	CC_EQ = 0
	CC_LT = 1
	CC_NE = 2
	CC_LE = 3
)

const (
	OP_BRK   uint32 = 0x00
	OP_LDIL  uint32 = 0x01
	OP_ADDIL uint32 = 0x02
	OP_LDO   uint32 = 0x03
	OP_LSID  uint32 = 0x04
	OP_EXTR  uint32 = 0x05
	OP_DEP   uint32 = 0x06
	OP_DSR   uint32 = 0x07
	OP_SHLA  uint32 = 0x08
	OP_CMR   uint32 = 0x09
	OP_MR    uint32 = 0x0A
	OP_MST   uint32 = 0x0B
	OP_DS    uint32 = 0x0C

	OP_ADD  uint32 = 0x10
	OP_ADC  uint32 = 0x11
	OP_SUB  uint32 = 0x12
	OP_SBC  uint32 = 0x13
	OP_AND  uint32 = 0x14
	OP_OR   uint32 = 0x15
	OP_XOR  uint32 = 0x16
	OP_CMP  uint32 = 0x17
	OP_CMPU uint32 = 0x18

	OP_B    uint32 = 0x20
	OP_GATE uint32 = 0x21
	OP_BR   uint32 = 0x22
	OP_BV   uint32 = 0x23
	OP_BE   uint32 = 0x24
	OP_BVE  uint32 = 0x25
	OP_CBR  uint32 = 0x26
	OP_CBRU uint32 = 0x27

	OP_LD   uint32 = 0x30
	OP_ST   uint32 = 0x31
	OP_LDA  uint32 = 0x32
	OP_STA  uint32 = 0x33
	OP_LDR  uint32 = 0x34
	OP_STC  uint32 = 0x35
	OP_LDPA uint32 = 0x39
	OP_PRB  uint32 = 0x3A
	OP_ITLB uint32 = 0x3B
	OP_PTLB uint32 = 0x3C
	OP_PCA  uint32 = 0x3D
	OP_DIAG uint32 = 0x3E
	OP_RFI  uint32 = 0x3F
)

// The all zero word is BRK 0,0 and retires without effect.
const NOP_INSTR uint32 = 0

type StopReason uint

const (
	STOP_NONE StopReason = iota
	STOP_BREAK_INSTR
	STOP_BREAKPOINT
	STOP_POLL
	STOP_CYCLE_LIMIT
	STOP_TRAP
)

const (
	CR_SHIFT_AMOUNT    = 0x2
	CR_TRAP_VECTOR_ADR = 0x10
	CR_TRAP_PSW_0      = 0x11
	CR_TRAP_PSW_1      = 0x12
	CR_TRAP_STAT       = 0x13
)

const (
	NO_TRAP            uint32 = 0
	ILLEGAL_INSTR_TRAP uint32 = 4
	OVERFLOW_TRAP      uint32 = 6
	BREAK_TRAP         uint32 = 18
)
