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
	"sync/atomic"

	"github.com/lassandro/vcpu32sim/pkg/machine"
)

type Breakpoint struct {
	Seg uint32
	Ofs uint32
}

type Debugger struct {
	// Halts at the next instruction regardless of breakpoints. Set from the
	// interrupt handler while the machine runs.
	Break atomic.Bool

	Breakpoints []Breakpoint

	// Called after the machine was halted at a breakpoint.
	HandleBreak func(*Debugger, *machine.Machine, Breakpoint)
}
