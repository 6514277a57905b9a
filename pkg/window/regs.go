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

package window

import (
	"fmt"

	"github.com/lassandro/vcpu32sim/pkg/console"
	"github.com/lassandro/vcpu32sim/pkg/encoding"
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
)

const (
	bannerFmt = console.FMT_BOLD | console.FMT_INVERSE
	bodyFmt   = console.FMT_DEF_ATTR
)

func (b *Base) defaultRadix() int {
	return int(b.d.ctx.Env.GetInt(env.ENV_RDX_DEFAULT, 16))
}

func (b *Base) mc() *machine.Machine {
	return b.d.ctx.Mc
}

// Prints a labelled group of four registers starting at first.
func (b *Base) printRegGroup(label string, class machine.RegClass, first int, f console.Fmt) {
	b.PrintTextField(label, f|console.FMT_BOLD|console.FMT_ALIGN_LFT, 6)

	for i := first; i < first+4; i++ {
		b.PrintNumericField(b.mc().GetReg(class, i), f, 0)
		b.PrintTextField(" ", f, 0)
	}
}

// Status bit legend, upper case when the bit is set.
var statusBits = []struct {
	pos  int
	name string
}{
	{machine.ST_MACHINE_CHECK, "M"},
	{machine.ST_EXECUTION_LEVEL, "X"},
	{machine.ST_CODE_TRANSLATION_ENABLE, "T"},
	{machine.ST_CARRY, "C"},
	{machine.ST_DATA_TRANSLATION_ENABLE, "D"},
	{machine.ST_PROTECT_ID_CHECK_ENABLE, "P"},
	{machine.ST_INTERRUPT_ENABLE, "E"},
}

type ProgState struct {
	Base
}

func (w *ProgState) SetDefaults() {
	w.SetDefColumns(12+8*11, 16)
	w.SetDefColumns(12+8*13, 8)
	w.SetDefColumns(12+8*11, 10)
	w.SetRadix(w.defaultRadix())
	w.SetRows(4)
	w.winType = WT_PS_WIN
	w.SetEnable(true)
}

func (w *ProgState) DrawBanner() {
	f := bannerFmt | console.FMT_ALIGN_LFT
	psw0 := w.mc().GetReg(machine.RC_FD_PSTAGE, machine.PSTAGE_REG_ID_PSW_0)

	w.SetCursor(1, 1)
	w.PrintTextField("Program State", f, 16)
	w.PrintTextField("Seg:", f, 5)
	w.PrintNumericField(psw0&0xFFFF, f|console.FMT_HALF_WORD, 8)
	w.PrintTextField("Ofs:", f, 5)
	w.PrintNumericField(w.mc().GetReg(machine.RC_FD_PSTAGE, machine.PSTAGE_REG_ID_PSW_1), f, 12)
	w.PrintTextField("ST:", f, 4)

	for _, bit := range statusBits {
		name := bit.name
		if !encoding.GetBit(psw0, bit.pos) {
			name = string(name[0] + 'a' - 'A')
		}

		w.PrintTextField(name, f, 0)
	}

	w.PadLine(f)
	w.PrintRadixField(f | console.FMT_LAST_FIELD)
}

func (w *ProgState) DrawBody() {
	w.SetCursor(2, 1)
	w.printRegGroup("GR0=", machine.RC_GEN_REG_SET, 0, bodyFmt)
	w.printRegGroup("GR4=", machine.RC_GEN_REG_SET, 4, bodyFmt)
	w.PadLine(bodyFmt)

	w.SetCursor(3, 1)
	w.printRegGroup("GR8=", machine.RC_GEN_REG_SET, 8, bodyFmt)
	w.printRegGroup("GR12=", machine.RC_GEN_REG_SET, 12, bodyFmt)
	w.PadLine(bodyFmt)

	w.SetCursor(4, 1)
	w.printRegGroup("SR0=", machine.RC_SEG_REG_SET, 0, bodyFmt)
	w.printRegGroup("SR4=", machine.RC_SEG_REG_SET, 4, bodyFmt)
	w.PadLine(bodyFmt)
}

type SpecialRegs struct {
	Base
}

func (w *SpecialRegs) SetDefaults() {
	w.SetDefColumns(12+8*11, 16)
	w.SetDefColumns(12+8*13, 8)
	w.SetDefColumns(12+8*11, 10)
	w.SetRadix(w.defaultRadix())
	w.SetRows(5)
	w.winType = WT_CR_WIN
	w.SetEnable(false)
}

func (w *SpecialRegs) DrawBanner() {
	w.SetCursor(1, 1)
	w.PrintTextField("Special Reg", bannerFmt|console.FMT_ALIGN_LFT, 16)
	w.PadLine(bannerFmt)
	w.PrintRadixField(bannerFmt | console.FMT_LAST_FIELD)
}

func (w *SpecialRegs) DrawBody() {
	for row := 0; row < 4; row++ {
		first := row * 8

		w.SetCursor(row+2, 1)
		w.printRegGroup(fmt.Sprintf("CR%d=", first), machine.RC_CTRL_REG_SET, first, bodyFmt)
		w.printRegGroup(fmt.Sprintf("CR%d=", first+4), machine.RC_CTRL_REG_SET, first+4, bodyFmt)
		w.PadLine(bodyFmt)
	}
}

type PipeLine struct {
	Base
}

func (w *PipeLine) SetDefaults() {
	w.SetDefColumns(84, 16)
	w.SetDefColumns(106, 8)
	w.SetDefColumns(84, 10)
	w.SetRadix(w.defaultRadix())
	w.SetRows(4)
	w.winType = WT_PL_WIN
	w.SetEnable(false)
}

func (w *PipeLine) DrawBanner() {
	w.SetCursor(1, 1)
	w.PrintTextField("Pipeline", bannerFmt|console.FMT_ALIGN_LFT, 16)
	w.PrintTextField("ClockSteps: ", bannerFmt, 0)
	w.PrintNumericField(uint32(w.mc().State.Stats.ClockCntr), bannerFmt, 0)
	w.PadLine(bannerFmt)
	w.PrintRadixField(bannerFmt | console.FMT_LAST_FIELD)
}

// Draws the program state of one stage; stages past fetch also show the
// instruction and operand latches.
func (w *PipeLine) drawStage(row int, name string, class machine.RegClass, latches bool) {
	mc := w.mc()
	psw0 := mc.GetReg(class, machine.PSTAGE_REG_ID_PSW_0)

	w.SetCursor(row, 1)

	label := name + ":"
	if mc.GetReg(class, machine.PSTAGE_REG_STALLED) == 1 {
		label = name + "(s):"
	}

	w.PrintTextField(label, bodyFmt|console.FMT_ALIGN_LFT|console.FMT_BOLD, 8)
	w.PrintTextField("PSW:", bodyFmt|console.FMT_ALIGN_LFT, 5)
	w.PrintNumericField(encoding.GetBitField(psw0, 15, 16, false), bodyFmt|console.FMT_HALF_WORD, 0)
	w.PrintTextField(":", bodyFmt|console.FMT_ALIGN_LFT, 0)
	w.PrintNumericField(encoding.GetBitField(psw0, 31, 16, false), bodyFmt|console.FMT_HALF_WORD, 0)
	w.PrintTextField(".", bodyFmt, 0)
	w.PrintNumericField(mc.GetReg(class, machine.PSTAGE_REG_ID_PSW_1), bodyFmt, 0)

	if latches {
		for _, latch := range []struct {
			label string
			reg   int
		}{
			{"  I: ", machine.PSTAGE_REG_ID_INSTR},
			{"  A: ", machine.PSTAGE_REG_ID_VAL_A},
			{"  B: ", machine.PSTAGE_REG_ID_VAL_B},
			{"  X: ", machine.PSTAGE_REG_ID_VAL_X},
		} {
			w.PrintTextField(latch.label, bodyFmt, 0)
			w.PrintNumericField(mc.GetReg(class, latch.reg), bodyFmt, 0)
		}
	}

	w.PadLine(bodyFmt)
}

func (w *PipeLine) DrawBody() {
	w.drawStage(2, "FD", machine.RC_FD_PSTAGE, false)
	w.drawStage(3, "MA", machine.RC_MA_PSTAGE, true)
	w.drawStage(4, "EX", machine.RC_EX_PSTAGE, true)
}

type Statistics struct {
	Base
}

func (w *Statistics) SetDefaults() {
	w.SetDefColumns(84, 0)
	w.SetRadix(w.defaultRadix())
	w.SetRows(4)
	w.winType = WT_ST_WIN
	w.SetEnable(false)
}

func (w *Statistics) DrawBanner() {
	w.SetCursor(1, 1)
	w.PrintTextField("Statistics", bannerFmt|console.FMT_ALIGN_LFT, 16)
	w.PrintTextField("ClockSteps: ", bannerFmt, 0)
	w.PrintNumericField(uint32(w.mc().State.Stats.ClockCntr), bannerFmt, 0)
	w.PadLine(bannerFmt)
	w.PrintRadixField(bannerFmt | console.FMT_LAST_FIELD)
}

func (w *Statistics) printCounter(label string, val uint64) {
	w.PrintTextField(label, bodyFmt|console.FMT_ALIGN_LFT, 12)
	w.PrintNumericField(uint32(val), bodyFmt, 0)
	w.PrintTextField("  ", bodyFmt, 0)
}

func (w *Statistics) DrawBody() {
	mc := w.mc()
	stats := &mc.State.Stats

	w.SetCursor(2, 1)
	w.printCounter("Instr:", stats.InstrCntr)
	w.printCounter("Br taken:", stats.BranchesTaken)
	w.printCounter("Br missed:", stats.BranchesMissed)
	w.PadLine(bodyFmt)

	w.SetCursor(3, 1)
	w.printCounter("I-Cache:", mc.ICache.AccessCnt)
	w.printCounter("Misses:", mc.ICache.MissCnt)
	w.printCounter("I-TLB miss:", mc.ITlb.Miss)
	w.PadLine(bodyFmt)

	w.SetCursor(4, 1)
	w.printCounter("D-Cache:", mc.DCache.AccessCnt)
	w.printCounter("Misses:", mc.DCache.MissCnt)
	w.printCounter("D-TLB miss:", mc.DTlb.Miss)
	w.PadLine(bodyFmt)
}
