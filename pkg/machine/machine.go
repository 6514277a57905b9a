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
	"github.com/lassandro/vcpu32sim/pkg/encoding"
)

// Upper bound of clocks InstrStep spends per requested instruction before
// giving up on a pipeline that does not retire anything.
const CLOCKS_PER_INSTR_LIMIT = 16

// Number of clocks Run executes between two calls of its poll function.
const RUN_POLL_INTERVAL = 256

func New(cfg Config, devices *DeviceHandler) *Machine {
	mc := &Machine{
		Devices: devices,
		Config:  cfg,
		Mem:     NewMemory(cfg.Mem),
		Pdc:     NewMemory(cfg.Pdc),
		Io:      NewMemory(cfg.Io),
		ITlb:    NewTlb(cfg.ITlb),
		DTlb:    NewTlb(cfg.DTlb),
	}

	var next backingStore = mc.Mem

	if cfg.UCacheL2 != nil {
		mc.UCache = NewCache(*cfg.UCacheL2, mc.Mem)
		next = mc.UCache
	}

	mc.ICache = NewCache(cfg.ICacheL1, next)
	mc.DCache = NewCache(cfg.DCacheL1, next)

	mc.Reset()

	return mc
}

// Reset clears the register files and the pipeline. Execution restarts at
// 0.0 with all status bits cleared. Memory content and counters are kept.
func (mc *Machine) Reset() {
	stats := mc.State.Stats

	mc.State = MachineState{Stats: stats}
	mc.halted = false
	mc.stopReason = STOP_NONE
}

func (mc *Machine) ResetMem() {
	for _, mem := range []*Memory{mc.Mem, mc.Pdc, mc.Io} {
		mem.Reset()
	}

	for _, cache := range mc.caches() {
		cache.Reset()
	}

	mc.ITlb.Reset()
	mc.DTlb.Reset()
}

func (mc *Machine) ResetStats() {
	mc.State.Stats = Statistics{}

	for _, mem := range []*Memory{mc.Mem, mc.Pdc, mc.Io} {
		mem.ClearStats()
	}

	for _, cache := range mc.caches() {
		cache.ClearStats()
	}

	mc.ITlb.ClearStats()
	mc.DTlb.ClearStats()
}

func (mc *Machine) caches() []*Cache {
	caches := []*Cache{mc.ICache, mc.DCache}

	if mc.UCache != nil {
		caches = append(caches, mc.UCache)
	}

	return caches
}

func (mc *Machine) Halt(reason StopReason) {
	mc.halted = true
	mc.stopReason = reason
}

func (mc *Machine) Halted() bool {
	return mc.halted
}

func (mc *Machine) StopReason() StopReason {
	return mc.stopReason
}

// Segment and offset of the next instruction to fetch.
func (mc *Machine) ProgramCounter() (uint32, uint32) {
	return mc.State.FD.Psw0 & 0xFFFF, mc.State.FD.Psw1
}

func (mc *Machine) Status() uint32 {
	return mc.State.FD.Psw0 >> 16
}

func (mc *Machine) stage(class RegClass) *PipelineStage {
	switch class {
	case RC_FD_PSTAGE:
		return &mc.State.FD
	case RC_MA_PSTAGE:
		return &mc.State.MA
	case RC_EX_PSTAGE:
		return &mc.State.EX
	}

	return nil
}

// MemController is the view of a memory object's controller that the
// register commands and windows use.
type MemController interface {
	Desc() MemDesc
	GetMemCtrlReg(reg int) uint32
	SetMemCtrlReg(reg int, value uint32)
	StateString() string
}

// Returns the controller of a memory object class. The L2 cache only exists
// when it is configured.
func (mc *Machine) MemObject(class RegClass) (MemController, bool) {
	switch class {
	case RC_IC_L1_OBJ:
		return mc.ICache, true
	case RC_DC_L1_OBJ:
		return mc.DCache, true
	case RC_UC_L2_OBJ:
		if mc.UCache != nil {
			return mc.UCache, true
		}
	case RC_MEM_OBJ:
		return mc.Mem, true
	case RC_PDC_OBJ:
		return mc.Pdc, true
	case RC_IO_OBJ:
		return mc.Io, true
	}

	return nil, false
}

func (mc *Machine) TlbObject(class RegClass) (*Tlb, bool) {
	switch class {
	case RC_ITLB_OBJ:
		return mc.ITlb, true
	case RC_DTLB_OBJ:
		return mc.DTlb, true
	}

	return nil, false
}

func (mc *Machine) GetReg(class RegClass, num int) uint32 {
	state := &mc.State

	switch class {
	case RC_GEN_REG_SET:
		if num >= 0 && num < MAX_GREGS {
			return state.GRegs[num]
		}

	case RC_SEG_REG_SET:
		if num >= 0 && num < MAX_SREGS {
			return state.SRegs[num]
		}

	case RC_CTRL_REG_SET:
		if num >= 0 && num < MAX_CREGS {
			return state.CRegs[num]
		}

	case RC_PROG_STATE:
		switch num {
		case PS_REG_PSW_0:
			return state.FD.Psw0
		case PS_REG_PSW_1:
			return state.FD.Psw1
		}

	case RC_FD_PSTAGE, RC_MA_PSTAGE, RC_EX_PSTAGE:
		return mc.stage(class).Get(num)

	case RC_ITLB_OBJ, RC_DTLB_OBJ:
		tlb, _ := mc.TlbObject(class)
		return tlb.GetTlbCtrlReg(num)

	default:
		if obj, ok := mc.MemObject(class); ok {
			return obj.GetMemCtrlReg(num)
		}
	}

	return 0
}

func (mc *Machine) SetReg(class RegClass, num int, value uint32) {
	state := &mc.State

	switch class {
	case RC_GEN_REG_SET:
		if num >= 0 && num < MAX_GREGS {
			state.GRegs[num] = value
		}

	case RC_SEG_REG_SET:
		if num >= 0 && num < MAX_SREGS {
			state.SRegs[num] = value
		}

	case RC_CTRL_REG_SET:
		if num >= 0 && num < MAX_CREGS {
			state.CRegs[num] = value
		}

	case RC_PROG_STATE:
		switch num {
		case PS_REG_PSW_0:
			state.FD.Psw0 = value
		case PS_REG_PSW_1:
			state.FD.Psw1 = value
		}

	case RC_FD_PSTAGE, RC_MA_PSTAGE, RC_EX_PSTAGE:
		mc.stage(class).Set(num, value)

	case RC_ITLB_OBJ, RC_DTLB_OBJ:
		tlb, _ := mc.TlbObject(class)
		tlb.SetTlbCtrlReg(num, value)

	default:
		if obj, ok := mc.MemObject(class); ok {
			obj.SetMemCtrlReg(num, value)
		}
	}
}

// Returns the memory object whose address range covers adr.
func (mc *Machine) MemoryFor(adr uint32) (*Memory, bool) {
	for _, mem := range []*Memory{mc.Mem, mc.Pdc, mc.Io} {
		if mem.ValidAdr(adr) {
			return mem, true
		}
	}

	return nil, false
}

// GetMemDataWord reads a word the way the program would currently observe
// it, preferring dirty cached copies over memory. Neither the controllers
// nor the counters are touched.
func (mc *Machine) GetMemDataWord(adr uint32) (uint32, bool) {
	mem, ok := mc.MemoryFor(adr)

	if !ok {
		return 0, false
	}

	if mem == mc.Mem {
		for _, cache := range []*Cache{mc.DCache, mc.UCache} {
			if cache == nil {
				continue
			}

			if value, ok := cache.peek(adr); ok {
				return value, true
			}
		}
	}

	return mem.PeekMemDataWord(adr), true
}

// PutMemDataWord stores a word in memory and refreshes any cached copy of it.
func (mc *Machine) PutMemDataWord(adr uint32, value uint32) bool {
	mem, ok := mc.MemoryFor(adr)

	if !ok {
		return false
	}

	mem.PokeMemDataWord(adr, value)

	if mem == mc.Mem {
		for _, cache := range mc.caches() {
			cache.update(adr, value)
		}
	}

	return true
}

func (mc *Machine) fetch(adr uint32) uint32 {
	if mc.Mem.ValidAdr(adr) {
		return mc.ICache.GetMemDataWord(adr)
	}

	return mc.readUncached(adr)
}

func (mc *Machine) readWord(adr uint32) uint32 {
	if mc.Mem.ValidAdr(adr) {
		return mc.DCache.GetMemDataWord(adr)
	}

	return mc.readUncached(adr)
}

func (mc *Machine) readUncached(adr uint32) uint32 {
	switch {
	case mc.Pdc.ValidAdr(adr):
		return mc.Pdc.GetMemDataWord(adr)

	case mc.Io.ValidAdr(adr):
		// The console is always ready to accept a character.
		if adr&^0x3 == IO_CONSOLE_STATUS {
			return 1
		}

		return mc.Io.GetMemDataWord(adr)
	}

	return 0
}

func (mc *Machine) writeWord(adr uint32, value uint32) {
	switch {
	case mc.Mem.ValidAdr(adr):
		mc.DCache.PutMemDataWord(adr, value)

	case mc.Pdc.ValidAdr(adr):
		mc.Pdc.PutMemDataWord(adr, value)

	case mc.Io.ValidAdr(adr):
		if adr&^0x3 == IO_CONSOLE_DATA && mc.Devices != nil && mc.Devices.Display != nil {
			mc.Devices.Display.Write([]byte{byte(value & 0xFF)})
		}

		mc.Io.PutMemDataWord(adr, value)
	}
}

// Memory is big endian; a byte at offset zero occupies the top bits of its
// word.
func (mc *Machine) load(adr uint32, dw uint32) uint32 {
	word := mc.readWord(adr &^ 0x3)

	switch dw {
	case DW_BYTE:
		return (word >> ((3 - adr&0x3) * 8)) & 0xFF
	case DW_HALF:
		return (word >> ((2 - adr&0x2) * 8)) & 0xFFFF
	}

	return word
}

func (mc *Machine) store(adr uint32, dw uint32, value uint32) {
	if dw == DW_WORD {
		mc.writeWord(adr&^0x3, value)
		return
	}

	word := mc.readWord(adr &^ 0x3)

	switch dw {
	case DW_BYTE:
		shift := (3 - adr&0x3) * 8
		word = (word &^ (0xFF << shift)) | ((value & 0xFF) << shift)
	case DW_HALF:
		shift := (2 - adr&0x2) * 8
		word = (word &^ (0xFFFF << shift)) | ((value & 0xFFFF) << shift)
	}

	mc.writeWord(adr&^0x3, word)
}

// ClockStep advances the pipeline by count clocks. It returns early when the
// machine halts.
func (mc *Machine) ClockStep(count uint) StopReason {
	mc.resume()

	for i := uint(0); i < count && !mc.halted; i++ {
		mc.clock()
	}

	return mc.stopReason
}

// InstrStep advances the pipeline until count more instructions have
// retired. It returns early when the machine halts.
func (mc *Machine) InstrStep(count uint) StopReason {
	mc.resume()

	target := mc.State.Stats.InstrCntr + uint64(count)
	limit := (uint64(count) + 1) * CLOCKS_PER_INSTR_LIMIT

	for clocks := uint64(0); mc.State.Stats.InstrCntr < target && !mc.halted; clocks++ {
		if clocks >= limit {
			mc.Halt(STOP_CYCLE_LIMIT)
			break
		}

		mc.clock()
	}

	return mc.stopReason
}

// Run clocks the pipeline until the machine halts. A non-zero limit caps the
// number of clocks; poll, when given, is consulted periodically and stops the
// run by returning true.
func (mc *Machine) Run(limit uint64, poll func() bool) StopReason {
	mc.resume()

	for clocks := uint64(0); !mc.halted; clocks++ {
		if limit > 0 && clocks >= limit {
			mc.Halt(STOP_CYCLE_LIMIT)
			break
		}

		if poll != nil && clocks%RUN_POLL_INTERVAL == 0 && clocks > 0 && poll() {
			mc.Halt(STOP_POLL)
			break
		}

		mc.clock()
	}

	return mc.stopReason
}

func (mc *Machine) resume() {
	mc.halted = false
	mc.stopReason = STOP_NONE
}

func (mc *Machine) clock() {
	state := &mc.State

	for _, mem := range []*Memory{mc.Mem, mc.Pdc, mc.Io} {
		mem.tick()
	}

	for _, cache := range mc.caches() {
		cache.tick()
	}

	state.Stats.ClockCntr++

	taken := false
	target := uint32(0)

	if state.EX.valid {
		var trapped bool

		target, taken, trapped = mc.execute(&state.EX)

		if !trapped {
			state.Stats.InstrCntr++
		}
	}

	if mc.halted && mc.stopReason == STOP_TRAP {
		state.MA = PipelineStage{}
		state.EX = PipelineStage{}

		mc.callDebugger()
		return
	}

	if taken {
		state.Stats.BranchesTaken++
		state.FD.Psw1 = target
		state.EX = PipelineStage{}
	} else {
		state.EX = state.MA
	}

	mc.fetchInto(&state.MA)

	mc.callDebugger()
}

func (mc *Machine) callDebugger() {
	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}
}

func (mc *Machine) fetchInto(stage *PipelineStage) {
	fd := &mc.State.FD
	instr := mc.fetch(fd.Psw1)

	*stage = PipelineStage{
		Psw0:  fd.Psw0,
		Psw1:  fd.Psw1,
		Instr: instr,
		ValA:  mc.State.GRegs[encoding.GetBitField(instr, 27, 4, false)],
		ValB:  mc.State.GRegs[encoding.GetBitField(instr, 31, 4, false)],
		valid: true,
	}

	fd.Psw1 += 4
}

// Records the trap and redirects fetch to its vector. The trapping
// instruction does not retire.
func (mc *Machine) trap(id uint32, stage *PipelineStage) {
	state := &mc.State

	state.CRegs[CR_TRAP_STAT] = id
	state.CRegs[CR_TRAP_PSW_0] = stage.Psw0
	state.CRegs[CR_TRAP_PSW_1] = stage.Psw1

	state.FD.Psw0 &= 0xFFFF0000
	state.FD.Psw1 = state.CRegs[CR_TRAP_VECTOR_ADR] + id*32

	mc.Halt(STOP_TRAP)
}

func (mc *Machine) carry() uint32 {
	if encoding.GetBit(mc.State.FD.Psw0, ST_CARRY) {
		return 1
	}

	return 0
}

func (mc *Machine) setCarry(carry bool) {
	state := &mc.State

	state.FD.Psw0 = encoding.SetBit(state.FD.Psw0, ST_CARRY, carry)
	state.MA.Psw0 = encoding.SetBit(state.MA.Psw0, ST_CARRY, carry)
}

// Resolves the operands of a computational instruction from its mode field.
// Modes 2 and 3 read operand B from memory.
func (mc *Machine) operands(stage *PipelineStage) (uint32, uint32) {
	instr := stage.Instr
	gr := &mc.State.GRegs

	r := encoding.GetBitField(instr, 9, 4, false)
	a := encoding.GetBitField(instr, 27, 4, false)
	b := encoding.GetBitField(instr, 31, 4, false)
	dw := encoding.GetBitField(instr, 15, 2, false)

	switch encoding.GetBitField(instr, 13, 2, false) {
	case OP_MODE_IMM:
		return gr[r], encoding.GetImmVal(instr, 31, 18)

	case OP_MODE_REG:
		return gr[a], gr[b]

	case OP_MODE_REG_INDX:
		stage.ValX = gr[a] + gr[b]
		return gr[r], mc.load(stage.ValX, dw)

	default:
		stage.ValX = encoding.GetImmVal(instr, 27, 12) + gr[b]
		return gr[r], mc.load(stage.ValX, dw)
	}
}

func compare(cond uint32, a uint32, b uint32, signed bool) bool {
	less := a < b
	if signed {
		less = int32(a) < int32(b)
	}

	switch cond {
	case CC_EQ:
		return a == b
	case CC_LT:
		return less
	case CC_NE:
		return a != b
	case CC_LE:
		return less || a == b
	}

	return false
}

// Memory reference address: an indexed form adds two registers, the offset
// form adds a signed 12 bit offset to the base register.
func (mc *Machine) address(instr uint32) uint32 {
	gr := &mc.State.GRegs
	base := gr[encoding.GetBitField(instr, 31, 4, false)]

	if encoding.GetBit(instr, 10) {
		return gr[encoding.GetBitField(instr, 27, 4, false)] + base
	}

	return encoding.GetImmVal(instr, 27, 12) + base
}

// Executes the instruction held by stage. It reports the branch target when
// the instruction redirects the control flow, and whether it trapped.
func (mc *Machine) execute(stage *PipelineStage) (uint32, bool, bool) {
	state := &mc.State
	gr := &state.GRegs

	instr := stage.Instr
	opcode := encoding.GetBitField(instr, 5, 6, false)
	r := encoding.GetBitField(instr, 9, 4, false)

	switch opcode {
	// LDIL |000001     |r      |val22                                      | Load immediate left
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDIL:
		gr[r] = encoding.GetBitField(instr, 31, 22, false) << 10

	// ADDIL|000010     |r      |val22                                      | Add immediate left to R1
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADDIL:
		gr[1] = gr[r] + encoding.GetBitField(instr, 31, 22, false)<<10

	// LDO  |000011     |r      |ofs18                              |b      | Load offset
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDO:
		b := encoding.GetBitField(instr, 31, 4, false)

		gr[r] = encoding.GetImmVal(instr, 27, 18) + gr[b]

	// ADD  |010000     |r      |L|O|00 |imm18                              | Add immediate
	// ADD  |010000     |r      |L|O|01 |0                  |a      |b      | Add register
	// ADD  |010000     |r      |L|O|10 |dw |0              |a      |b      | Add indexed
	// ADD  |010000     |r      |L|O|11 |dw |ofs12                  |b      | Add offset
	// ADC  |010001     |r      |L|O|00 |imm18                              | Add with carry immediate
	// SUB  |010010     |r      |L|O|00 |imm18                              | Subtract immediate
	// SBC  |010011     |r      |L|O|00 |imm18                              | Subtract with carry immediate
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADD, OP_ADC, OP_SUB, OP_SBC:
		valA, valB := mc.operands(stage)
		stage.ValA, stage.ValB = valA, valB

		carryIn := uint32(0)

		switch opcode {
		case OP_ADC:
			carryIn = mc.carry()
		case OP_SUB:
			valB, carryIn = ^valB, 1
		case OP_SBC:
			valB, carryIn = ^valB, mc.carry()
		}

		sum := uint64(valA) + uint64(valB) + uint64(carryIn)
		carry := sum > 0xFFFFFFFF

		var overflow bool

		if encoding.GetBit(instr, 10) {
			// Unsigned arithmetic overflows on a carry out of an add and on a
			// borrow out of a subtract.
			overflow = carry
			if opcode == OP_SUB || opcode == OP_SBC {
				overflow = !carry
			}
		} else {
			signed := int64(int32(valA)) + int64(int32(valB)) + int64(carryIn)
			overflow = signed > 0x7FFFFFFF || signed < -0x80000000
		}

		if overflow && encoding.GetBit(instr, 11) {
			mc.trap(OVERFLOW_TRAP, stage)
			return 0, false, true
		}

		gr[r] = uint32(sum)
		mc.setCarry(carry)

	// AND  |010100     |r      |N|C|00 |imm18                              | Bitwise and immediate
	// AND  |010100     |r      |N|C|01 |0                  |a      |b      | Bitwise and register
	// OR   |010101     |r      |N|C|00 |imm18                              | Bitwise or immediate
	// OR   |010101     |r      |N|C|01 |0                  |a      |b      | Bitwise or register
	// XOR  |010110     |r      |N|0|00 |imm18                              | Bitwise xor immediate
	// XOR  |010110     |r      |N|0|01 |0                  |a      |b      | Bitwise xor register
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_AND, OP_OR, OP_XOR:
		valA, valB := mc.operands(stage)
		stage.ValA, stage.ValB = valA, valB

		if opcode != OP_XOR && encoding.GetBit(instr, 11) {
			valB = ^valB
		}

		var result uint32

		switch opcode {
		case OP_AND:
			result = valA & valB
		case OP_OR:
			result = valA | valB
		default:
			result = valA ^ valB
		}

		if encoding.GetBit(instr, 10) {
			result = ^result
		}

		gr[r] = result

	// CMP  |010111     |r      |cc |00 |imm18                              | Compare immediate
	// CMPU |011000     |r      |cc |01 |0                  |a      |b      | Compare unsigned register
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_CMP, OP_CMPU:
		valA, valB := mc.operands(stage)
		stage.ValA, stage.ValB = valA, valB

		cond := encoding.GetBitField(instr, 11, 2, false)

		if compare(cond, valA, valB, opcode == OP_CMP) {
			gr[r] = 1
		} else {
			gr[r] = 0
		}

	// LD   |110000     |r      |0|0    |dw |ofs12                  |b      | Load offset
	// LD   |110000     |r      |1|0    |dw |0              |a      |b      | Load indexed
	// LDA  |110010     |r      |X|0    |10 |ofs12                  |b      | Load absolute
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD, OP_LDA:
		dw := encoding.GetBitField(instr, 15, 2, false)
		if opcode == OP_LDA {
			dw = DW_WORD
		}

		stage.ValX = mc.address(instr)
		gr[r] = mc.load(stage.ValX, dw)

	// ST   |110001     |r      |0|0    |dw |ofs12                  |b      | Store offset
	// ST   |110001     |r      |1|0    |dw |0              |a      |b      | Store indexed
	// STA  |110011     |r      |X|0    |10 |ofs12                  |b      | Store absolute
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ST, OP_STA:
		dw := encoding.GetBitField(instr, 15, 2, false)
		if opcode == OP_STA {
			dw = DW_WORD
		}

		stage.ValX = mc.address(instr)
		stage.ValS = gr[r]
		mc.store(stage.ValX, dw, gr[r])

	// B    |100000     |r      |ofs22                                      | Branch relative, link in r
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_B:
		target := stage.Psw1 + encoding.GetImmVal(instr, 31, 22)<<2
		gr[r] = stage.Psw1 + 4

		return target, true, false

	// BR   |100010     |r      |0                                  |b      | Branch by register offset
	// BV   |100011     |r      |0                                  |b      | Branch vectored
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_BR, OP_BV:
		target := gr[encoding.GetBitField(instr, 31, 4, false)]
		if opcode == OP_BR {
			target += stage.Psw1
		}

		gr[r] = stage.Psw1 + 4

		return target, true, false

	// CBR  |100110     |cc |0|ofs15                        |a      |b      | Compare and branch
	// CBRU |100111     |cc |0|ofs15                        |a      |b      | Compare and branch unsigned
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_CBR, OP_CBRU:
		valA := gr[encoding.GetBitField(instr, 27, 4, false)]
		valB := gr[encoding.GetBitField(instr, 31, 4, false)]
		cond := encoding.GetBitField(instr, 7, 2, false)

		if compare(cond, valA, valB, opcode == OP_CBR) {
			state.Stats.BranchesMissed++

			return stage.Psw1 + encoding.GetImmVal(instr, 23, 15)<<2, true, false
		}

	// BRK  |000000     |info1  |0          |info2                          | Break, all zero is a no-op
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_BRK:
		if r != 0 || encoding.GetBitField(instr, 31, 16, false) != 0 {
			mc.Halt(STOP_BREAK_INSTR)
		}

	case OP_LSID, OP_EXTR, OP_DEP, OP_DSR, OP_SHLA, OP_CMR, OP_MR, OP_MST,
		OP_DS, OP_GATE, OP_BE, OP_BVE, OP_LDR, OP_STC, OP_LDPA, OP_PRB,
		OP_ITLB, OP_PTLB, OP_PCA, OP_DIAG, OP_RFI:
		// Retire without effect.

	// RES  |xxxxxx     |                                                   | Undefined (illegal)
	// -----[ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	default:
		mc.trap(ILLEGAL_INSTR_TRAP, stage)
		return 0, false, true
	}

	return 0, false, false
}
