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

const TLB_SEG_SHIFT = 4

// TlbEntry holds one translation. PInfo carries the flag bits, access rights
// and protection id; AInfo carries the physical page number.
type TlbEntry struct {
	VpnHigh uint32
	VpnLow  uint32
	PInfo   uint32
	AInfo   uint32
}

func (entry *TlbEntry) TValid() bool {
	return encoding.GetBit(entry.PInfo, 0)
}

func (entry *TlbEntry) SetValid(valid bool) {
	entry.PInfo = encoding.SetBit(entry.PInfo, 0, valid)
}

func (entry *TlbEntry) TTrapPage() bool {
	return encoding.GetBit(entry.PInfo, 1)
}

func (entry *TlbEntry) TDirty() bool {
	return encoding.GetBit(entry.PInfo, 2)
}

func (entry *TlbEntry) TTrapDataPage() bool {
	return encoding.GetBit(entry.PInfo, 3)
}

func (entry *TlbEntry) TPageType() uint32 {
	return encoding.GetBitField(entry.PInfo, 7, 2, false)
}

func (entry *TlbEntry) TPrivL1() uint32 {
	return encoding.GetBitField(entry.PInfo, 8, 1, false)
}

func (entry *TlbEntry) TPrivL2() uint32 {
	return encoding.GetBitField(entry.PInfo, 9, 1, false)
}

func (entry *TlbEntry) TSegId() uint32 {
	return encoding.GetBitField(entry.PInfo, 31, 16, false)
}

func (entry *TlbEntry) TPhysPage() uint32 {
	return encoding.GetBitField(entry.AInfo, 31, 20, false)
}

type Tlb struct {
	desc    TlbDesc
	entries []TlbEntry
	regs    [TC_REG_MAX]uint32

	Inserts uint64
	Deletes uint64
	Access  uint64
	Miss    uint64
}

func NewTlb(desc TlbDesc) *Tlb {
	return &Tlb{
		desc:    desc,
		entries: make([]TlbEntry, desc.Entries),
	}
}

func (tlb *Tlb) Desc() TlbDesc {
	return tlb.desc
}

func (tlb *Tlb) Reset() {
	for i := range tlb.entries {
		tlb.entries[i] = TlbEntry{}
	}

	tlb.regs = [TC_REG_MAX]uint32{}
}

func (tlb *Tlb) ClearStats() {
	tlb.Inserts = 0
	tlb.Deletes = 0
	tlb.Access = 0
	tlb.Miss = 0
}

func (tlb *Tlb) GetTlbSize() uint32 {
	return uint32(len(tlb.entries))
}

func (tlb *Tlb) HashAdr(seg uint32, ofs uint32) uint32 {
	if len(tlb.entries) == 0 {
		return 0
	}

	return ((seg << TLB_SEG_SHIFT) ^ (ofs >> PAGE_SIZE_BITS)) % uint32(len(tlb.entries))
}

func (tlb *Tlb) GetTlbEntry(index uint32) (*TlbEntry, bool) {
	if index >= uint32(len(tlb.entries)) {
		return nil, false
	}

	return &tlb.entries[index], true
}

func (tlb *Tlb) LookupTlbEntry(seg uint32, ofs uint32) (*TlbEntry, bool) {
	entry, ok := tlb.GetTlbEntry(tlb.HashAdr(seg, ofs))
	tlb.Access++

	if ok && entry.TValid() && entry.VpnHigh == seg &&
		entry.VpnLow>>PAGE_SIZE_BITS == ofs>>PAGE_SIZE_BITS {
		return entry, true
	}

	tlb.Miss++

	return nil, false
}

// Installs a translation in the slot the address hashes to, replacing
// whatever the slot held.
func (tlb *Tlb) InsertTlbEntryData(seg uint32, ofs uint32, acc uint32, adr uint32) bool {
	entry, ok := tlb.GetTlbEntry(tlb.HashAdr(seg, ofs))

	if !ok {
		return false
	}

	tlb.regs[TC_REG_REQ] = 1
	tlb.regs[TC_REG_REQ_SEG] = seg
	tlb.regs[TC_REG_REQ_OFS] = ofs

	entry.VpnHigh = seg
	entry.VpnLow = ofs &^ (PAGE_SIZE - 1)
	entry.PInfo = acc
	entry.AInfo = adr
	entry.SetValid(true)

	tlb.Inserts++

	return true
}

func (tlb *Tlb) PurgeTlbEntryData(seg uint32, ofs uint32) bool {
	entry, ok := tlb.GetTlbEntry(tlb.HashAdr(seg, ofs))

	if !ok {
		return false
	}

	tlb.regs[TC_REG_REQ] = 3
	tlb.regs[TC_REG_REQ_SEG] = seg
	tlb.regs[TC_REG_REQ_OFS] = ofs

	*entry = TlbEntry{}

	tlb.Deletes++

	return true
}

func (tlb *Tlb) GetTlbCtrlReg(reg int) uint32 {
	if reg >= 0 && reg < TC_REG_MAX {
		return tlb.regs[reg]
	}

	return 0
}

func (tlb *Tlb) SetTlbCtrlReg(reg int, value uint32) {
	if reg >= 0 && reg < TC_REG_MAX {
		tlb.regs[reg] = value
	}
}
