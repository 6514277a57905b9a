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
	"github.com/lassandro/vcpu32sim/pkg/assembler"
	"github.com/lassandro/vcpu32sim/pkg/console"
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

// AbsMem lists physical memory, eight words per line by default.
type AbsMem struct {
	Scrollable
}

func (w *AbsMem) SetDefaults() {
	wordsPerLine := w.d.ctx.Env.GetInt(env.ENV_WORDS_PER_LINE, 8)
	if wordsPerLine < 1 {
		wordsPerLine = 1
	}

	w.SetDefColumns(12+int(wordsPerLine)*11, 16)
	w.SetDefColumns(14+int(wordsPerLine)*13, 8)
	w.SetDefColumns(12+int(wordsPerLine)*11, 10)
	w.SetRadix(w.defaultRadix())
	w.winType = WT_PM_WIN
	w.SetEnable(false)
	w.SetRows(5)
	w.SetHomeItemAdr(0)
	w.SetCurrentItemAdr(0)
	w.SetLineIncrement(uint32(wordsPerLine) * 4)
	w.SetLimitItemAdr(machine.IO_MEM_END)
}

func (w *AbsMem) DrawBanner() {
	f := bannerFmt
	mc := w.mc()

	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), f)

	name := "**** Memory"
	if mem, ok := mc.MemoryFor(w.currentItemAdr); ok {
		switch mem {
		case mc.Mem:
			name = "Main Memory"
		case mc.Pdc:
			name = "PDC Memory"
		case mc.Io:
			name = "IO Memory"
		}
	}

	w.PrintTextField(name, f|console.FMT_ALIGN_LFT, 16)
	w.PrintTextField("Current: ", f, 0)
	w.PrintNumericField(w.currentItemAdr, f, 0)
	w.PrintTextField("  Home: ", f, 0)
	w.PrintNumericField(w.homeItemAdr, f, 0)
	w.PadLine(f)
	w.PrintRadixField(f | console.FMT_LAST_FIELD)
}

func (w *AbsMem) DrawBody() {
	w.DrawLines(w.drawLine)
}

func (w *AbsMem) drawLine(itemAdr uint32) {
	w.PrintNumericField(itemAdr, bodyFmt, 0)
	w.PrintTextField(": ", bodyFmt, 0)

	for i := uint32(0); i < w.lineIncrement; i += 4 {
		if word, ok := w.mc().GetMemDataWord(itemAdr + i); ok {
			w.PrintNumericField(word, bodyFmt, 0)
		} else {
			w.PrintNumericField(0, bodyFmt|console.FMT_INVALID_NUM, 0)
		}

		w.PrintTextField(" ", bodyFmt, 0)
	}

	w.PadLine(bodyFmt)
}

// Code lists memory as disassembled instructions, one word per line.
type Code struct {
	Scrollable
}

func (w *Code) SetDefaults() {
	w.SetDefColumns(84, 0)
	w.SetRadix(w.defaultRadix())
	w.SetRows(9)
	w.SetHomeItemAdr(0)
	w.SetCurrentItemAdr(w.mc().GetReg(machine.RC_FD_PSTAGE, machine.PSTAGE_REG_ID_PSW_1))
	w.SetLineIncrement(4)
	w.SetLimitItemAdr(machine.IO_MEM_END)
	w.winType = WT_PC_WIN
	w.SetEnable(false)
}

// While the program runs, keep the instruction about to be fetched in view.
func (w *Code) followProgramCounter() {
	switch w.d.CurrentCmd() {
	case tokenizer.CMD_STEP, tokenizer.CMD_RUN:
	default:
		return
	}

	pc := w.mc().GetReg(machine.RC_FD_PSTAGE, machine.PSTAGE_REG_ID_PSW_1)

	if pc < w.currentItemAdr || uint64(pc) >= uint64(w.currentItemAdr)+uint64(w.page()) {
		w.Jump(pc)
	}
}

func (w *Code) DrawBanner() {
	f := bannerFmt

	w.followProgramCounter()

	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), f)
	w.PrintTextField("Code Memory", f|console.FMT_ALIGN_LFT, 16)
	w.PrintTextField("Current: ", f, 0)
	w.PrintNumericField(w.currentItemAdr, f, 0)
	w.PrintTextField("  Home: ", f, 0)
	w.PrintNumericField(w.homeItemAdr, f, 0)
	w.PadLine(f)
	w.PrintRadixField(f | console.FMT_LAST_FIELD)
}

func (w *Code) DrawBody() {
	w.DrawLines(w.drawLine)
}

// Marker for the pipeline stage working on adr. The stage markers need the
// pipeline window to be shown; the fetch arrow is always drawn.
func (w *Code) stageMarker(adr uint32) string {
	mc := w.mc()
	plShown := w.d.IsWinEnabled(PL_REG_WIN)
	fd := mc.GetReg(machine.RC_FD_PSTAGE, machine.PSTAGE_REG_ID_PSW_1)

	switch {
	case plShown && adr == fd:
		return "(fd)>"
	case plShown && mc.State.MA.Valid() && adr == mc.GetReg(machine.RC_MA_PSTAGE, machine.PSTAGE_REG_ID_PSW_1):
		return "(ma) "
	case plShown && mc.State.EX.Valid() && adr == mc.GetReg(machine.RC_EX_PSTAGE, machine.PSTAGE_REG_ID_PSW_1):
		return "(ex) "
	case adr == fd:
		return "    >"
	}

	return "     "
}

func (w *Code) drawLine(itemAdr uint32) {
	instr, ok := w.mc().GetMemDataWord(itemAdr)

	w.PrintNumericField(itemAdr, bodyFmt|console.FMT_ALIGN_LFT, 12)
	w.PrintTextField(w.stageMarker(itemAdr), bodyFmt, 5)

	if !ok {
		w.PrintNumericField(0, bodyFmt|console.FMT_ALIGN_LFT|console.FMT_INVALID_NUM, 12)
		w.PadLine(bodyFmt)
		return
	}

	w.PrintNumericField(instr, bodyFmt|console.FMT_ALIGN_LFT, 12)

	opCode, operands := assembler.DisassembleParts(instr, w.radix)

	w.PrintTextField(opCode, bodyFmt|console.FMT_ALIGN_LFT, assembler.OPCODE_FIELD_WIDTH)
	w.PrintTextField(operands, bodyFmt|console.FMT_ALIGN_LFT, 0)
	w.PadLine(bodyFmt)
}
