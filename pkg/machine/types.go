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

import (
	"io"
)

// Devices attached to the I/O range. A nil Display discards console output.
type DeviceHandler struct {
	Display io.Writer
}

type MemDesc struct {
	Type         MemType
	BlockEntries uint32
	BlockSize    uint32
	BlockSets    uint32
	StartAdr     uint32
	EndAdr       uint32
	Latency      uint32
	Priority     uint32
}

type TlbDesc struct {
	Type    TlbType
	Entries uint32
	Latency uint32
}

type Config struct {
	ICacheL1 MemDesc
	DCacheL1 MemDesc
	UCacheL2 *MemDesc
	Mem      MemDesc
	Pdc      MemDesc
	Io       MemDesc
	ITlb     TlbDesc
	DTlb     TlbDesc
}

// PipelineStage holds the input registers of one pipeline stage. The FD
// stage only uses the program state words; they name the next instruction to
// fetch.
type PipelineStage struct {
	Stalled bool
	Psw0    uint32
	Psw1    uint32
	Instr   uint32
	ValA    uint32
	ValB    uint32
	ValX    uint32
	ValS    uint32

	// Set when the stage holds a fetched instruction rather than a bubble.
	valid bool
}

func (stage *PipelineStage) Valid() bool {
	return stage.valid
}

// Get and Set address the stage registers by their PSTAGE_REG ids.
func (stage *PipelineStage) Get(reg int) uint32 {
	switch reg {
	case PSTAGE_REG_STALLED:
		if stage.Stalled {
			return 1
		}
	case PSTAGE_REG_ID_PSW_0:
		return stage.Psw0
	case PSTAGE_REG_ID_PSW_1:
		return stage.Psw1
	case PSTAGE_REG_ID_INSTR:
		return stage.Instr
	case PSTAGE_REG_ID_VAL_A:
		return stage.ValA
	case PSTAGE_REG_ID_VAL_B:
		return stage.ValB
	case PSTAGE_REG_ID_VAL_X:
		return stage.ValX
	case PSTAGE_REG_ID_VAL_S:
		return stage.ValS
	}

	return 0
}

func (stage *PipelineStage) Set(reg int, value uint32) {
	switch reg {
	case PSTAGE_REG_STALLED:
		stage.Stalled = value != 0
	case PSTAGE_REG_ID_PSW_0:
		stage.Psw0 = value
	case PSTAGE_REG_ID_PSW_1:
		stage.Psw1 = value
	case PSTAGE_REG_ID_INSTR:
		stage.Instr = value
		stage.valid = true
	case PSTAGE_REG_ID_VAL_A:
		stage.ValA = value
	case PSTAGE_REG_ID_VAL_B:
		stage.ValB = value
	case PSTAGE_REG_ID_VAL_X:
		stage.ValX = value
	case PSTAGE_REG_ID_VAL_S:
		stage.ValS = value
	}
}

type Statistics struct {
	ClockCntr      uint64
	InstrCntr      uint64
	BranchesTaken  uint64
	BranchesMissed uint64
}

type MachineState struct {
	GRegs [MAX_GREGS]uint32
	SRegs [MAX_SREGS]uint32
	CRegs [MAX_CREGS]uint32

	FD PipelineStage
	MA PipelineStage
	EX PipelineStage

	Stats Statistics
}

type MachineDebugger interface {
	Step(mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Debugger MachineDebugger
	Config   Config

	ICache *Cache
	DCache *Cache
	UCache *Cache
	Mem    *Memory
	Pdc    *Memory
	Io     *Memory
	ITlb   *Tlb
	DTlb   *Tlb

	halted     bool
	stopReason StopReason
}
