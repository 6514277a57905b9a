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

package debugger

import (
	"fmt"
	"io"
	"sort"

	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
)

// Step is called by the machine after every clock. It halts the machine when
// the instruction about to execute sits on a breakpoint.
func (dbg *Debugger) Step(mc *machine.Machine) {
	ex := &mc.State.EX

	if !ex.Valid() {
		return
	}

	at := Breakpoint{Seg: ex.Psw0 & 0xFFFF, Ofs: ex.Psw1}

	if dbg.Break.CompareAndSwap(true, false) {
		dbg.halt(mc, at, machine.STOP_POLL)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint == at {
			dbg.halt(mc, at, machine.STOP_BREAKPOINT)
			break
		}
	}
}

func (dbg *Debugger) halt(mc *machine.Machine, at Breakpoint, reason machine.StopReason) {
	mc.Halt(reason)

	if dbg.HandleBreak != nil {
		dbg.HandleBreak(dbg, mc, at)
	}
}

func (dbg *Debugger) find(seg, ofs uint32) int {
	for i, breakpoint := range dbg.Breakpoints {
		if breakpoint.Seg == seg && breakpoint.Ofs == ofs {
			return i
		}
	}

	return -1
}

func (dbg *Debugger) Add(seg, ofs uint32) error {
	if dbg.find(seg, ofs) >= 0 {
		return simerr.New(simerr.ERR_BREAKPOINT_EXISTS)
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{seg, ofs})

	sort.Slice(dbg.Breakpoints, func(i, j int) bool {
		a, b := dbg.Breakpoints[i], dbg.Breakpoints[j]

		if a.Seg != b.Seg {
			return a.Seg < b.Seg
		}

		return a.Ofs < b.Ofs
	})

	return nil
}

func (dbg *Debugger) Delete(seg, ofs uint32) error {
	i := dbg.find(seg, ofs)

	if i < 0 {
		return simerr.New(simerr.ERR_BREAKPOINT_NOT_FOUND)
	}

	dbg.Breakpoints = append(dbg.Breakpoints[:i], dbg.Breakpoints[i+1:]...)

	return nil
}

func (dbg *Debugger) Clear() {
	dbg.Breakpoints = nil
}

// List prints the breakpoints in address order, one per line.
func (dbg *Debugger) List(w io.Writer) {
	if len(dbg.Breakpoints) == 0 {
		fmt.Fprintln(w, "No breakpoints set")
		return
	}

	for i, breakpoint := range dbg.Breakpoints {
		fmt.Fprintf(w, "%3d: 0x%04x.0x%08x\n", i, breakpoint.Seg, breakpoint.Ofs)
	}
}
