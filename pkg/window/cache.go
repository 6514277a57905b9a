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
	"github.com/lassandro/vcpu32sim/pkg/console"
	"github.com/lassandro/vcpu32sim/pkg/machine"
)

// Cache lists the blocks of one set of a cache. WT switches to the next set.
type Cache struct {
	Scrollable

	cache *machine.Cache
	set   uint32
}

func (w *Cache) SetDefaults() {
	words := int(w.cache.BlockSize() / 4)

	w.SetDefColumns(36+words*11, 16)
	w.SetDefColumns(36+words*13, 8)
	w.SetDefColumns(36+words*11, 10)
	w.SetRadix(w.defaultRadix())
	w.SetRows(6)
	w.SetEnable(false)
	w.SetCurrentItemAdr(0)
	w.SetLineIncrement(1)
	w.SetLimitItemAdr(w.cache.BlockEntries())
	w.set = 0
}

func (w *Cache) Toggle() {
	if sets := w.cache.BlockSets(); sets > 0 {
		w.set = (w.set + 1) % sets
	}
}

// Set returns the cache set on display.
func (w *Cache) Set() uint32 {
	return w.set
}

func (w *Cache) DrawBanner() {
	f := bannerFmt

	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), f)

	switch w.winType {
	case WT_ICACHE_WIN:
		w.PrintTextField("I-Cache (L1)", f|console.FMT_ALIGN_LFT, 16)
	case WT_DCACHE_WIN:
		w.PrintTextField("D-Cache (L1)", f|console.FMT_ALIGN_LFT, 16)
	case WT_UCACHE_WIN:
		w.PrintTextField("U-Cache (L2)", f|console.FMT_ALIGN_LFT, 16)
	}

	w.SetLimitItemAdr(w.cache.BlockEntries())

	w.PrintTextField("Set: ", f, 0)
	w.PrintNumericField(w.set, f|console.FMT_HALF_WORD, 0)
	w.PrintTextField(" Current: ", f, 0)
	w.PrintNumericField(w.currentItemAdr, f, 0)
	w.PrintTextField("  Home: ", f, 0)
	w.PrintNumericField(w.homeItemAdr, f, 0)
	w.PadLine(f)
	w.PrintRadixField(f | console.FMT_LAST_FIELD)
}

func (w *Cache) DrawBody() {
	w.DrawLines(w.drawLine)
}

func (w *Cache) drawLine(index uint32) {
	w.PrintNumericField(index, bodyFmt, 0)
	w.PrintTextField(":[", bodyFmt, 0)

	tag, ok := w.cache.GetMemTagEntry(index, w.set)
	if !ok {
		w.PrintTextField("Invalid Cache index", bodyFmt, 0)
		w.PrintTextField("]", bodyFmt, 0)
		w.PadLine(bodyFmt)
		return
	}

	data, _ := w.cache.GetMemBlockEntry(index, w.set)

	w.PrintTextField(flag(tag.Valid, "V", "v"), bodyFmt, 0)
	w.PrintTextField(flag(tag.Dirty, "D", "d"), bodyFmt, 0)
	w.PrintTextField("] (", bodyFmt, 0)
	w.PrintNumericField(tag.Tag, bodyFmt, 0)
	w.PrintTextField(") ", bodyFmt, 0)

	for _, word := range data {
		w.PrintNumericField(word, bodyFmt, 0)
		w.PrintTextField(" ", bodyFmt, 0)
	}

	w.PadLine(bodyFmt)
}

// MemController shows the controller registers of a cache or memory object.
type MemController struct {
	Base

	ctrl machine.MemController
}

func (w *MemController) isMemory() bool {
	switch w.winType {
	case WT_MEM_S_WIN, WT_PDC_S_WIN, WT_IO_S_WIN:
		return true
	}

	return false
}

func (w *MemController) SetDefaults() {
	w.SetDefColumns(84, 16)
	w.SetDefColumns(108, 8)
	w.SetDefColumns(84, 10)
	w.SetRadix(w.defaultRadix())
	w.SetEnable(false)

	if w.isMemory() {
		w.SetRows(3)
	} else {
		w.SetRows(4)
	}
}

var memControllerNames = map[Type]string{
	WT_ICACHE_S_WIN: "I-Cache (L1)",
	WT_DCACHE_S_WIN: "D-Cache (L1)",
	WT_UCACHE_S_WIN: "U-Cache (L2)",
	WT_MEM_S_WIN:    "MEM Reg Set",
	WT_PDC_S_WIN:    "PdcMEM Reg Set",
	WT_IO_S_WIN:     "IoMEM Reg Set",
}

func (w *MemController) DrawBanner() {
	f := bannerFmt
	ctrl := w.ctrl

	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), f)
	w.PrintTextField(memControllerNames[w.winType], f|console.FMT_ALIGN_LFT, 16)
	w.PrintTextField("Range: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_START_ADR), f, 0)
	w.PrintTextField(":", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_END_ADR), f, 0)

	if !w.isMemory() {
		w.PrintTextField(", Blocks: ", f, 0)
		w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_BLOCK_ENTRIES), f, 0)
		w.PrintTextField(":", f, 0)
		w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_BLOCK_SIZE), f|console.FMT_HALF_WORD, 0)
		w.PrintTextField(", Sets: ", f, 0)
		w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_SETS), f|console.FMT_HALF_WORD, 0)
	}

	w.PadLine(f)
	w.PrintRadixField(f | console.FMT_LAST_FIELD)
}

func (w *MemController) DrawBody() {
	f := bodyFmt
	ctrl := w.ctrl

	w.SetCursor(2, 1)
	w.PrintTextField("State:", f|console.FMT_ALIGN_LFT, 10)
	w.PrintTextField(ctrl.StateString(), f|console.FMT_ALIGN_LFT, 20)
	w.PadLine(f)

	w.SetCursor(3, 1)
	w.PrintTextField("Request:", f|console.FMT_ALIGN_LFT, 10)

	if w.isMemory() {
		w.PrintTextField("Adr: ", f, 0)
		w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_OFS), f, 0)
		w.PrintTextField("  Len: ", f, 0)
		w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_LEN), f|console.FMT_HALF_WORD, 0)
		w.PrintTextField("  Pri: ", f, 0)
		w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_PRI), f|console.FMT_HALF_WORD, 0)
		w.PrintTextField("  Lat: ", f, 0)
		w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_LATENCY), f|console.FMT_HALF_WORD, 0)
		w.PadLine(f)
		return
	}

	w.PrintTextField("Seg:ofs: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_SEG), f, 0)
	w.PrintTextField(":", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_OFS), f, 0)
	w.PrintTextField("  Tag: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_TAG), f, 0)
	w.PrintTextField("  Len: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_LEN), f|console.FMT_HALF_WORD, 0)
	w.PadLine(f)

	w.SetCursor(4, 11)
	w.PrintTextField("Pri: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_PRI), f|console.FMT_HALF_WORD, 0)
	w.PrintTextField("  Lat: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_LATENCY), f|console.FMT_HALF_WORD, 0)
	w.PrintTextField("  Set: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_BLOCK_SET), f|console.FMT_HALF_WORD, 0)
	w.PrintTextField("  Block: ", f, 0)
	w.PrintNumericField(ctrl.GetMemCtrlReg(machine.MC_REG_REQ_BLOCK_INDEX), f, 0)
	w.PadLine(f)
}
