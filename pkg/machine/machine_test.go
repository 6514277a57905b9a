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

package machine_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/machine"
)

type testMachineState struct {
	GRegs  map[int]uint32
	CRegs  map[int]uint32
	Carry  bool
	Memory map[uint32]uint32
	Fetch  uint32
}

type testCase struct {
	Name    string
	Steps   uint
	Stop    machine.StopReason
	Display string
	Input   testMachineState
	Output  testMachineState
}

func newMachine(t *testing.T, devices *machine.DeviceHandler) *machine.Machine {
	cfg, err := machine.NewConfig(machine.DefaultSizing())
	if err != nil {
		t.Fatal(err)
	}

	return machine.New(cfg, devices)
}

func testMachineSuccess(t *testing.T, test *testCase) {
	var displayBuf bytes.Buffer

	mc := newMachine(t, &machine.DeviceHandler{Display: &displayBuf})

	for reg, value := range test.Input.GRegs {
		mc.SetReg(machine.RC_GEN_REG_SET, reg, value)
	}

	for reg, value := range test.Input.CRegs {
		mc.SetReg(machine.RC_CTRL_REG_SET, reg, value)
	}

	for adr, value := range test.Input.Memory {
		mc.PutMemDataWord(adr, value)
	}

	if test.Steps == 0 {
		test.Steps = 1
	}

	if have := mc.InstrStep(test.Steps); have != test.Stop {
		t.Errorf(
			"Stop reason mismatch"+
				"\nwant:%d (test.Stop)\nhave:%d",
			test.Stop,
			have,
		)
	}

	for i := 0; i < machine.MAX_GREGS; i++ {
		want, ok := test.Output.GRegs[i]
		if !ok {
			want = test.Input.GRegs[i]
		}

		if have := mc.GetReg(machine.RC_GEN_REG_SET, i); have != want {
			t.Errorf(
				"Register mismatch"+
					"\nwant:%#08x (test.Output.GRegs[%d])\nhave:%#08x",
				want,
				i,
				have,
			)
		}
	}

	for reg, want := range test.Output.CRegs {
		if have := mc.GetReg(machine.RC_CTRL_REG_SET, reg); have != want {
			t.Errorf(
				"Control register mismatch"+
					"\nwant:%#08x (test.Output.CRegs[%d])\nhave:%#08x",
				want,
				reg,
				have,
			)
		}
	}

	if _, have := mc.ProgramCounter(); have != test.Output.Fetch {
		t.Errorf(
			"Fetch address mismatch"+
				"\nwant:%#08x (test.Output.Fetch)\nhave:%#08x",
			test.Output.Fetch,
			have,
		)
	}

	carry := mc.Status()&(1<<(15-machine.ST_CARRY)) != 0
	if carry != test.Output.Carry {
		t.Errorf(
			"Carry mismatch"+
				"\nwant:%v (test.Output.Carry)\nhave:%v",
			test.Output.Carry,
			carry,
		)
	}

	for adr, want := range test.Output.Memory {
		have, ok := mc.GetMemDataWord(adr)

		if !ok || have != want {
			t.Errorf(
				"Memory value mismatch"+
					"\nwant:%#08x (test.Output.Memory[%#08x])\nhave:%#08x",
				want,
				adr,
				have,
			)
		}
	}

	if have := displayBuf.String(); have != test.Display {
		t.Errorf(
			"Display output mismatch"+
				"\nwant:%q (test.Display)\nhave:%q",
			test.Display,
			have,
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testMachineSuccess(t, &test)
			})
		}
	})
}

// A single instruction retires on the third clock, by which time the fetch
// address has moved three words ahead.
func TestImmediate(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LDIL",
			Input: testMachineState{
				Memory: map[uint32]uint32{0x0: 0x04412345},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0x048D1400},
				Fetch: 0xC,
			},
		},
		{
			Name: "ADDIL",
			Input: testMachineState{
				GRegs:  map[int]uint32{2: 0x10},
				Memory: map[uint32]uint32{0x0: 0x08800001},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0x410},
				Fetch: 0xC,
			},
		},
		{
			Name: "LDO Negative",
			Input: testMachineState{
				GRegs:  map[int]uint32{3: 0x100},
				Memory: map[uint32]uint32{0x0: 0x0CBFFF93},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{2: 0xFC},
				Fetch: 0xC,
			},
		},
		{
			Name:  "LDIL ADD",
			Steps: 2,
			Input: testMachineState{
				Memory: map[uint32]uint32{
					0x0: 0x04412345,
					0x4: 0x4040000A,
				},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0x048D1405},
				Fetch: 0x10,
			},
		},
	})
}

func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "ADD Register",
			Input: testMachineState{
				GRegs:  map[int]uint32{2: 5, 3: 7},
				Memory: map[uint32]uint32{0x0: 0x40440023},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 12},
				Fetch: 0xC,
			},
		},
		{
			Name: "ADD Immediate",
			Input: testMachineState{
				GRegs:  map[int]uint32{1: 10},
				Memory: map[uint32]uint32{0x0: 0x4040000A},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 15},
				Fetch: 0xC,
			},
		},
		{
			Name: "ADD Carry",
			Input: testMachineState{
				GRegs:  map[int]uint32{1: 0xFFFFFFFF},
				Memory: map[uint32]uint32{0x0: 0x40400002},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0},
				Carry: true,
				Fetch: 0xC,
			},
		},
		{
			Name: "ADD.O Overflow",
			Stop: machine.STOP_TRAP,
			Input: testMachineState{
				GRegs:  map[int]uint32{1: 0x7FFFFFFF},
				Memory: map[uint32]uint32{0x0: 0x40500002},
			},
			Output: testMachineState{
				CRegs: map[int]uint32{
					machine.CR_TRAP_STAT:  machine.OVERFLOW_TRAP,
					machine.CR_TRAP_PSW_1: 0x0,
				},
				Fetch: machine.OVERFLOW_TRAP * 32,
			},
		},
		{
			Name: "SUB Immediate",
			Input: testMachineState{
				GRegs:  map[int]uint32{1: 10},
				Memory: map[uint32]uint32{0x0: 0x48400006},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 7},
				Carry: true,
				Fetch: 0xC,
			},
		},
	})
}

func TestLogical(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "AND Register",
			Input: testMachineState{
				GRegs:  map[int]uint32{2: 0xFF00FF00, 3: 0x0FF00FF0},
				Memory: map[uint32]uint32{0x0: 0x50440023},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0x0F000F00},
				Fetch: 0xC,
			},
		},
		{
			Name: "XOR Register",
			Input: testMachineState{
				GRegs:  map[int]uint32{2: 0xFF00FF00, 3: 0x0FF00FF0},
				Memory: map[uint32]uint32{0x0: 0x58440023},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0xF0F0F0F0},
				Fetch: 0xC,
			},
		},
		{
			Name: "CMP.LT Signed",
			Input: testMachineState{
				GRegs:  map[int]uint32{2: 0xFFFFFFFF, 3: 1},
				Memory: map[uint32]uint32{0x0: 0x5C540023},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 1},
				Fetch: 0xC,
			},
		},
		{
			Name: "CMPU.LT Unsigned",
			Input: testMachineState{
				GRegs:  map[int]uint32{1: 0xCAFE, 2: 0xFFFFFFFF, 3: 1},
				Memory: map[uint32]uint32{0x0: 0x60540023},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0},
				Fetch: 0xC,
			},
		},
	})
}

func TestMemoryReference(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD Word",
			Input: testMachineState{
				GRegs: map[int]uint32{2: 0x1000},
				Memory: map[uint32]uint32{
					0x0:    0xC0420102,
					0x1008: 0xCAFEBABE,
				},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0xCAFEBABE},
				Fetch: 0xC,
			},
		},
		{
			Name: "LD Byte",
			Input: testMachineState{
				GRegs: map[int]uint32{2: 0x1000},
				Memory: map[uint32]uint32{
					0x0:    0xC0400122,
					0x1008: 0xCAFEBABE,
				},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0xFE},
				Fetch: 0xC,
			},
		},
		{
			Name: "ST Word",
			Input: testMachineState{
				GRegs:  map[int]uint32{1: 0x11223344, 2: 0x2000},
				Memory: map[uint32]uint32{0x0: 0xC4420082},
			},
			Output: testMachineState{
				Memory: map[uint32]uint32{0x2004: 0x11223344},
				Fetch:  0xC,
			},
		},
		{
			Name: "ST Half",
			Input: testMachineState{
				GRegs: map[int]uint32{1: 0x1234, 2: 0x2000},
				Memory: map[uint32]uint32{
					0x0:    0xC44100C2,
					0x2004: 0xAAAAAAAA,
				},
			},
			Output: testMachineState{
				Memory: map[uint32]uint32{0x2004: 0xAAAA1234},
				Fetch:  0xC,
			},
		},
		{
			Name:    "ST Console",
			Display: "A",
			Input: testMachineState{
				GRegs:  map[int]uint32{1: 0x41, 2: machine.IO_CONSOLE_DATA},
				Memory: map[uint32]uint32{0x0: 0xC4420002},
			},
			Output: testMachineState{
				Fetch: 0xC,
			},
		},
	})
}

func TestBranch(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "B Forward",
			Input: testMachineState{
				Memory: map[uint32]uint32{0x0: 0x81400008},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{5: 0x4},
				Fetch: 0x14,
			},
		},
		{
			Name: "BV",
			Input: testMachineState{
				GRegs:  map[int]uint32{3: 0x400},
				Memory: map[uint32]uint32{0x0: 0x8C800003},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{2: 0x4},
				Fetch: 0x404,
			},
		},
		{
			Name: "CBR.EQ Taken",
			Input: testMachineState{
				GRegs:  map[int]uint32{2: 3, 3: 3},
				Memory: map[uint32]uint32{0x0: 0x98000823},
			},
			Output: testMachineState{
				Fetch: 0x14,
			},
		},
		{
			Name: "CBR.EQ Not Taken",
			Input: testMachineState{
				GRegs:  map[int]uint32{2: 3, 3: 4},
				Memory: map[uint32]uint32{0x0: 0x98000823},
			},
			Output: testMachineState{
				Fetch: 0xC,
			},
		},
	})
}

func TestBreak(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "BRK Zero",
			Steps: 2,
			Input: testMachineState{
				Memory: map[uint32]uint32{0x4: 0x04412345},
			},
			Output: testMachineState{
				GRegs: map[int]uint32{1: 0x048D1400},
				Fetch: 0x10,
			},
		},
		{
			Name:  "BRK Halt",
			Steps: 2,
			Stop:  machine.STOP_BREAK_INSTR,
			Input: testMachineState{
				Memory: map[uint32]uint32{
					0x0: 0x00400000,
					0x4: 0x04412345,
				},
			},
			Output: testMachineState{
				Fetch: 0xC,
			},
		},
		{
			Name: "Illegal Opcode",
			Stop: machine.STOP_TRAP,
			Input: testMachineState{
				CRegs:  map[int]uint32{machine.CR_TRAP_VECTOR_ADR: 0x1000},
				Memory: map[uint32]uint32{0x0: 0x34000000},
			},
			Output: testMachineState{
				CRegs: map[int]uint32{
					machine.CR_TRAP_STAT:  machine.ILLEGAL_INSTR_TRAP,
					machine.CR_TRAP_PSW_1: 0x0,
				},
				Fetch: 0x1000 + machine.ILLEGAL_INSTR_TRAP*32,
			},
		},
	})
}

func TestPipeline(t *testing.T) {
	assert := assert.New(t)

	mc := newMachine(t, nil)
	mc.PutMemDataWord(0x0, 0x04412345)

	mc.ClockStep(1)
	assert.True(mc.State.MA.Valid())
	assert.False(mc.State.EX.Valid())
	assert.Equal(uint32(0x04412345), mc.GetReg(machine.RC_MA_PSTAGE, machine.PSTAGE_REG_ID_INSTR))

	mc.ClockStep(1)
	assert.True(mc.State.EX.Valid())
	assert.Equal(uint32(0x0), mc.GetReg(machine.RC_EX_PSTAGE, machine.PSTAGE_REG_ID_PSW_1))
	assert.Equal(uint32(0x8), mc.GetReg(machine.RC_PROG_STATE, machine.PS_REG_PSW_1))

	mc.ClockStep(1)
	assert.Equal(uint64(3), mc.State.Stats.ClockCntr)
	assert.Equal(uint64(1), mc.State.Stats.InstrCntr)

	mc.ResetStats()
	assert.Equal(machine.Statistics{}, mc.State.Stats)
	assert.Equal(uint64(0), mc.ICache.AccessCnt)

	mc.Reset()
	assert.Equal(uint32(0), mc.GetReg(machine.RC_GEN_REG_SET, 1))
	assert.False(mc.State.EX.Valid())

	value, ok := mc.GetMemDataWord(0x0)
	assert.True(ok)
	assert.Equal(uint32(0x04412345), value)
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	// B 0 loops forever.
	mc := newMachine(t, nil)
	mc.PutMemDataWord(0x0, 0x80000000)

	assert.Equal(machine.STOP_CYCLE_LIMIT, mc.Run(100, nil))
	assert.Equal(uint64(100), mc.State.Stats.ClockCntr)
	assert.True(mc.State.Stats.BranchesTaken > 0)

	polls := 0
	reason := mc.Run(0, func() bool {
		polls++
		return polls == 2
	})

	assert.Equal(machine.STOP_POLL, reason)
	assert.True(mc.Halted())
	assert.Equal(uint64(100+2*machine.RUN_POLL_INTERVAL), mc.State.Stats.ClockCntr)
}

type haltAt struct {
	ofs uint32
}

func (dbg *haltAt) Step(mc *machine.Machine) {
	if mc.State.EX.Valid() && mc.State.EX.Psw1 == dbg.ofs {
		mc.Halt(machine.STOP_BREAKPOINT)
	}
}

func TestDebugger(t *testing.T) {
	assert := assert.New(t)

	mc := newMachine(t, nil)
	mc.Debugger = &haltAt{ofs: 0x8}

	assert.Equal(machine.STOP_BREAKPOINT, mc.Run(1000, nil))
	assert.Equal(uint64(2), mc.State.Stats.InstrCntr)

	// Resuming executes the instruction the machine stopped in front of.
	mc.Debugger = nil
	assert.Equal(machine.STOP_NONE, mc.InstrStep(1))
	assert.Equal(uint64(3), mc.State.Stats.InstrCntr)
}

func TestRegisterAccess(t *testing.T) {
	assert := assert.New(t)

	mc := newMachine(t, nil)

	type regCase struct {
		Class machine.RegClass
		Num   int
		Value uint32
		Want  uint32
	}

	tests := []regCase{
		{machine.RC_GEN_REG_SET, 15, 0xCAFE, 0xCAFE},
		{machine.RC_GEN_REG_SET, 16, 0xCAFE, 0},
		{machine.RC_SEG_REG_SET, 7, 0x12, 0x12},
		{machine.RC_CTRL_REG_SET, 31, 0x34, 0x34},
		{machine.RC_PROG_STATE, machine.PS_REG_PSW_0, 0x80000001, 0x80000001},
		{machine.RC_MA_PSTAGE, machine.PSTAGE_REG_ID_VAL_B, 0x56, 0x56},
		{machine.RC_EX_PSTAGE, machine.PSTAGE_REG_STALLED, 0x7, 1},
		{machine.RC_DC_L1_OBJ, machine.MC_REG_STATE, machine.MO_READ_BLOCK, machine.MO_READ_BLOCK},
		{machine.RC_DC_L1_OBJ, machine.MC_REG_BLOCK_SIZE, 0x99, 16},
		{machine.RC_UC_L2_OBJ, machine.MC_REG_STATE, 0x1, 0},
		{machine.RC_DTLB_OBJ, machine.TC_REG_REQ_SEG, 0x3, 0x3},
	}

	for i, test := range tests {
		mc.SetReg(test.Class, test.Num, test.Value)

		if have := mc.GetReg(test.Class, test.Num); have != test.Want {
			t.Errorf(
				"Register value mismatch"+
					"\nwant:%#x (tests[%d].Want)\nhave:%#x",
				test.Want,
				i,
				have,
			)
		}
	}

	seg, ofs := mc.ProgramCounter()
	assert.Equal(uint32(0x1), seg)
	assert.Equal(uint32(0x0), ofs)
	assert.Equal(uint32(0x8000), mc.Status())

	obj, ok := mc.MemObject(machine.RC_DC_L1_OBJ)
	assert.True(ok)
	assert.Equal("READ BLOCK", obj.StateString())

	_, ok = mc.MemObject(machine.RC_UC_L2_OBJ)
	assert.False(ok)
}

func TestConfig(t *testing.T) {
	type configCase struct {
		Name   string
		Sizing func(*machine.Sizing)
		Err    error
	}

	tests := []configCase{
		{"Default", func(*machine.Sizing) {}, nil},
		{"TLB Size", func(s *machine.Sizing) { s.ITlbSize = 4096 }, machine.ErrTlbSize},
		{"Cache Size", func(s *machine.Sizing) { s.DCacheSize = 2048 }, machine.ErrCacheSize},
		{"Cache Sets", func(s *machine.Sizing) { s.ICacheSets = 5 }, machine.ErrCacheSetNum},
		{"Line Size", func(s *machine.Sizing) { s.DCacheLineSize = 64 }, machine.ErrCacheBlockSize},
		{"Mem Size", func(s *machine.Sizing) { s.MemSize = 0xF1000000 }, machine.ErrMemSize},
	}

	for i, test := range tests {
		sizing := machine.DefaultSizing()
		test.Sizing(&sizing)

		_, err := machine.NewConfig(sizing)

		if !errors.Is(err, test.Err) {
			t.Errorf(
				"Config error mismatch"+
					"\nwant:%v (tests[%d].Err)\nhave:%v",
				test.Err,
				i,
				err,
			)
		}
	}

	assert := assert.New(t)

	sizing := machine.DefaultSizing()
	sizing.ITlbSize = 1000
	sizing.ICacheSets = 2

	cfg, err := machine.NewConfig(sizing)
	assert.Nil(err)
	assert.Equal(uint32(1024), cfg.ITlb.Entries)
	assert.Equal(uint32(2), cfg.ICacheL1.BlockSets)
	assert.Equal(uint32(16), cfg.ICacheL1.BlockSize)
	assert.Equal(machine.MAX_PHYS_MEM_SIZE-1, cfg.Mem.EndAdr)
}

func TestCache(t *testing.T) {
	assert := assert.New(t)

	mem := machine.NewMemory(machine.MemDesc{
		Type:   machine.MEM_T_PHYS_MEM,
		EndAdr: 0xFFFF,
	})

	cache := machine.NewCache(machine.MemDesc{
		Type:         machine.MEM_T_L1_DATA,
		BlockEntries: 4,
		BlockSize:    16,
		BlockSets:    2,
	}, mem)

	mem.PutMemDataWord(0x104, 0xAB)

	assert.Equal(uint32(0xAB), cache.GetMemDataWord(0x104))
	assert.Equal(uint64(1), cache.MissCnt)
	assert.Equal(uint32(0xAB), cache.GetMemDataWord(0x104))
	assert.Equal(uint64(1), cache.MissCnt)
	assert.Equal(uint64(2), cache.AccessCnt)

	// 0x100 maps to index 0 and lands in set 0.
	tag, ok := cache.GetMemTagEntry(0, 0)
	assert.True(ok)
	assert.Equal(machine.MemTagEntry{Valid: true, Tag: 0x100}, *tag)

	cache.PutMemDataWord(0x108, 0xCD)
	assert.True(tag.Dirty)
	assert.Equal(uint32(0), mem.PeekMemDataWord(0x108))

	// Two more blocks on index 0 evict the dirty one.
	cache.GetMemDataWord(0x200)
	cache.GetMemDataWord(0x300)

	assert.Equal(uint32(0xCD), mem.PeekMemDataWord(0x108))
	assert.Equal(uint64(1), cache.DirtyCnt)

	cache.PutMemDataWord(0x304, 0xEF)

	for set := uint32(0); set < cache.BlockSets(); set++ {
		entry, _ := cache.GetMemTagEntry(0, set)

		if entry.Tag == 0x300 {
			assert.True(cache.PurgeBlock(0, set, true))
		}
	}

	assert.Equal(uint32(0xEF), mem.PeekMemDataWord(0x304))
	assert.False(cache.PurgeBlock(4, 0, false))
	assert.Equal("FLUSH BLOCK", cache.StateString())
}

func TestTlb(t *testing.T) {
	assert := assert.New(t)

	tlb := machine.NewTlb(machine.TlbDesc{Type: machine.TLB_T_L1_DATA, Entries: 64})

	assert.Equal(uint32(64), tlb.GetTlbSize())
	assert.Equal(uint32(((2<<4)^(0x8000>>14))%64), tlb.HashAdr(2, 0x8000))

	_, ok := tlb.LookupTlbEntry(2, 0x8000)
	assert.False(ok)

	assert.True(tlb.InsertTlbEntryData(2, 0x8123, 0xA000FFFF, 0x12))

	entry, ok := tlb.LookupTlbEntry(2, 0x8FFC)
	assert.True(ok)
	assert.True(entry.TValid())
	assert.True(entry.TDirty())
	assert.Equal(uint32(0x8000), entry.VpnLow)
	assert.Equal(uint32(0xFFFF), entry.TSegId())
	assert.Equal(uint32(0x12), entry.TPhysPage())
	assert.Equal(uint32(2), tlb.GetTlbCtrlReg(machine.TC_REG_REQ_SEG))

	assert.True(tlb.PurgeTlbEntryData(2, 0x8000))

	_, ok = tlb.LookupTlbEntry(2, 0x8000)
	assert.False(ok)

	assert.Equal(uint64(1), tlb.Inserts)
	assert.Equal(uint64(1), tlb.Deletes)
	assert.Equal(uint64(3), tlb.Access)
	assert.Equal(uint64(2), tlb.Miss)
}
