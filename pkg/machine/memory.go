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

var memStateNames = map[uint32]string{
	MO_IDLE:             "IDLE",
	MO_READ_BLOCK:       "READ BLOCK",
	MO_WRITE_BACK_BLOCK: "WRITE BACK BLOCK",
	MO_FLUSH_BLOCK:      "FLUSH BLOCK",
	MO_PURGE_BLOCK:      "PURGE BLOCK",
	MO_READ_WORD_PHYS:   "READ WORD PHYS",
	MO_WRITE_WORD_PHYS:  "WRITE WORD PHYS",
}

// The controller register file shared by every memory object. Requests
// complete within the clock that issued them; the request registers keep
// describing the last request until the next clock resets the state to idle.
type memCtrl struct {
	desc MemDesc
	regs [MC_REG_MAX]uint32

	AccessCnt uint64
	MissCnt   uint64
	DirtyCnt  uint64
}

func (ctrl *memCtrl) Desc() MemDesc {
	return ctrl.desc
}

func (ctrl *memCtrl) request(state uint32, ofs uint32, tag uint32, length uint32) {
	ctrl.regs[MC_REG_STATE] = state
	ctrl.regs[MC_REG_REQ_SEG] = 0
	ctrl.regs[MC_REG_REQ_OFS] = ofs
	ctrl.regs[MC_REG_REQ_ADR] = ofs
	ctrl.regs[MC_REG_REQ_TAG] = tag
	ctrl.regs[MC_REG_REQ_LEN] = length
	ctrl.regs[MC_REG_REQ_PRI] = ctrl.desc.Priority
	ctrl.regs[MC_REG_REQ_LATENCY] = ctrl.desc.Latency
}

func (ctrl *memCtrl) tick() {
	ctrl.regs[MC_REG_STATE] = MO_IDLE
}

func (ctrl *memCtrl) GetMemCtrlReg(reg int) uint32 {
	switch reg {
	case MC_REG_START_ADR:
		return ctrl.desc.StartAdr
	case MC_REG_END_ADR:
		return ctrl.desc.EndAdr
	case MC_REG_LATENCY:
		return ctrl.desc.Latency
	case MC_REG_BLOCK_ENTRIES:
		return ctrl.desc.BlockEntries
	case MC_REG_BLOCK_SIZE:
		return ctrl.desc.BlockSize
	case MC_REG_SETS:
		return ctrl.desc.BlockSets
	}

	if reg >= 0 && reg < MC_REG_MAX {
		return ctrl.regs[reg]
	}

	return 0
}

// Configuration registers are read only.
func (ctrl *memCtrl) SetMemCtrlReg(reg int, value uint32) {
	if reg >= 0 && reg < MC_REG_START_ADR {
		ctrl.regs[reg] = value
	}
}

func (ctrl *memCtrl) StateString() string {
	if name, ok := memStateNames[ctrl.regs[MC_REG_STATE]]; ok {
		return name
	}

	return "****"
}

func (ctrl *memCtrl) ClearStats() {
	ctrl.AccessCnt = 0
	ctrl.MissCnt = 0
	ctrl.DirtyCnt = 0
}

// Memory is a word addressed store covering [StartAdr, EndAdr]. Storage is
// sparse; words never written read as zero.
type Memory struct {
	memCtrl
	words map[uint32]uint32
}

func NewMemory(desc MemDesc) *Memory {
	return &Memory{
		memCtrl: memCtrl{desc: desc},
		words:   make(map[uint32]uint32),
	}
}

func (mem *Memory) Reset() {
	mem.words = make(map[uint32]uint32)
	mem.regs = [MC_REG_MAX]uint32{}
}

func (mem *Memory) ValidAdr(adr uint32) bool {
	return adr >= mem.desc.StartAdr && adr <= mem.desc.EndAdr
}

func (mem *Memory) GetMemDataWord(adr uint32) uint32 {
	mem.AccessCnt++
	mem.request(MO_READ_WORD_PHYS, adr, 0, 4)

	return mem.words[adr&^0x3]
}

// Reads a word without touching the controller registers or counters.
func (mem *Memory) PeekMemDataWord(adr uint32) uint32 {
	return mem.words[adr&^0x3]
}

func (mem *Memory) PutMemDataWord(adr uint32, value uint32) {
	mem.AccessCnt++
	mem.request(MO_WRITE_WORD_PHYS, adr, 0, 4)
	mem.PokeMemDataWord(adr, value)
}

// Writes a word without touching the controller registers or counters.
func (mem *Memory) PokeMemDataWord(adr uint32, value uint32) {
	if value == 0 {
		delete(mem.words, adr&^0x3)
	} else {
		mem.words[adr&^0x3] = value
	}
}
