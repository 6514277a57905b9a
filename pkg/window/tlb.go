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
	"github.com/lassandro/vcpu32sim/pkg/machine"
)

func accessRights(entry *machine.TlbEntry) string {
	kinds := []string{"ro", "rw", "ex"}
	kind := "xx"

	if typ := entry.TPageType(); typ < uint32(len(kinds)) {
		kind = kinds[typ]
	}

	return fmt.Sprintf("[%s:%1d:%1d]", kind, entry.TPrivL1(), entry.TPrivL2())
}

func flag(set bool, upper, lower string) string {
	if set {
		return upper
	}

	return lower
}

// Tlb lists the entries of the instruction or data TLB.
type Tlb struct {
	Scrollable

	tlb *machine.Tlb
}

func (w *Tlb) SetDefaults() {
	w.SetDefColumns(84, 16)
	w.SetDefColumns(102, 8)
	w.SetDefColumns(84, 10)
	w.SetRadix(w.defaultRadix())
	w.SetEnable(false)
	w.SetRows(5)
	w.SetCurrentItemAdr(0)
	w.SetLineIncrement(1)
	w.SetLimitItemAdr(w.tlb.GetTlbSize())
}

func (w *Tlb) DrawBanner() {
	f := bannerFmt

	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), f)

	switch w.winType {
	case WT_ITLB_WIN:
		w.PrintTextField("I-TLB", f|console.FMT_ALIGN_LFT, 16)
	case WT_DTLB_WIN:
		w.PrintTextField("D-TLB", f|console.FMT_ALIGN_LFT, 16)
	}

	w.PrintTextField("Current: ", f, 0)
	w.PrintNumericField(w.currentItemAdr, f, 0)
	w.PrintTextField("  Home: ", f, 0)
	w.PrintNumericField(w.homeItemAdr, f, 0)
	w.PadLine(f)
	w.PrintRadixField(f | console.FMT_LAST_FIELD)

	w.SetLimitItemAdr(w.tlb.GetTlbSize())
}

func (w *Tlb) DrawBody() {
	w.DrawLines(w.drawLine)
}

func (w *Tlb) drawLine(index uint32) {
	w.PrintNumericField(index, bodyFmt, 0)
	w.PrintTextField(":[", bodyFmt, 0)

	entry, ok := w.tlb.GetTlbEntry(index)
	if !ok {
		w.PrintTextField("Invalid TLB index", bodyFmt, 0)
		w.PrintTextField("]", bodyFmt, 0)
		w.PadLine(bodyFmt)
		return
	}

	w.PrintTextField(flag(entry.TValid(), "V", "v"), bodyFmt, 0)
	w.PrintTextField(flag(entry.TDirty(), "D", "d"), bodyFmt, 0)
	w.PrintTextField(flag(entry.TTrapPage(), "P", "p"), bodyFmt, 0)
	w.PrintTextField(flag(entry.TTrapDataPage(), "D", "d"), bodyFmt, 0)
	w.PrintTextField("]", bodyFmt, 0)
	w.PrintTextField(" ACC:", bodyFmt, 0)
	w.PrintTextField(accessRights(entry), bodyFmt, 0)
	w.PrintTextField(" PID:", bodyFmt, 0)
	w.PrintNumericField(entry.TSegId(), bodyFmt|console.FMT_HALF_WORD, 0)
	w.PrintTextField(" VPN:", bodyFmt, 0)
	w.PrintNumericField(entry.VpnHigh, bodyFmt, 0)
	w.PrintTextField(".", bodyFmt, 0)
	w.PrintNumericField(entry.VpnLow, bodyFmt, 0)
	w.PrintTextField(" PPN:", bodyFmt, 0)
	w.PrintNumericField(entry.TPhysPage(), bodyFmt, 0)
	w.PadLine(bodyFmt)
}

// TlbController shows the TLB request registers and the access counters.
type TlbController struct {
	Base

	tlb *machine.Tlb
}

var tlbRequestNames = map[uint32]string{
	0: "IDLE",
	1: "INSERT",
	3: "PURGE",
}

func (w *TlbController) SetDefaults() {
	w.SetDefColumns(84, 16)
	w.SetDefColumns(102, 8)
	w.SetDefColumns(84, 10)
	w.SetRadix(w.defaultRadix())
	w.SetEnable(false)
	w.SetRows(3)
}

func (w *TlbController) DrawBanner() {
	f := bannerFmt

	w.SetCursor(1, 1)
	w.PrintWindowIdField(w.d.IsCurrentWin(w.index), f)

	switch w.winType {
	case WT_ITLB_S_WIN:
		w.PrintTextField("I-TLB Reg Set", f|console.FMT_ALIGN_LFT, 16)
	case WT_DTLB_S_WIN:
		w.PrintTextField("D-TLB Reg Set", f|console.FMT_ALIGN_LFT, 16)
	}

	w.PrintTextField("Entries: ", f, 0)
	w.PrintNumericField(w.tlb.GetTlbSize(), f, 0)
	w.PadLine(f)
	w.PrintRadixField(f | console.FMT_LAST_FIELD)
}

func (w *TlbController) DrawBody() {
	req := w.tlb.GetTlbCtrlReg(machine.TC_REG_REQ)

	name, ok := tlbRequestNames[req]
	if !ok {
		name = "****"
	}

	w.SetCursor(2, 1)
	w.PrintTextField("Request:", bodyFmt|console.FMT_ALIGN_LFT, 10)
	w.PrintTextField(name, bodyFmt|console.FMT_ALIGN_LFT, 10)
	w.PrintTextField("Seg:ofs: ", bodyFmt, 0)
	w.PrintNumericField(w.tlb.GetTlbCtrlReg(machine.TC_REG_REQ_SEG), bodyFmt, 0)
	w.PrintTextField(":", bodyFmt, 0)
	w.PrintNumericField(w.tlb.GetTlbCtrlReg(machine.TC_REG_REQ_OFS), bodyFmt, 0)
	w.PadLine(bodyFmt)

	w.SetCursor(3, 1)
	w.PrintTextField("Access:", bodyFmt|console.FMT_ALIGN_LFT, 10)
	w.PrintNumericField(uint32(w.tlb.Access), bodyFmt, 0)
	w.PrintTextField("  Miss: ", bodyFmt, 0)
	w.PrintNumericField(uint32(w.tlb.Miss), bodyFmt, 0)
	w.PrintTextField("  Ins: ", bodyFmt, 0)
	w.PrintNumericField(uint32(w.tlb.Inserts), bodyFmt, 0)
	w.PrintTextField("  Del: ", bodyFmt, 0)
	w.PrintNumericField(uint32(w.tlb.Deletes), bodyFmt, 0)
	w.PadLine(bodyFmt)
}
