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

// Scrollable is a window whose body lists items from a range. Each body row
// shows the item at currentItemAdr plus the row offset times lineIncrement.
type Scrollable struct {
	Base

	homeItemAdr    uint32
	currentItemAdr uint32
	limitItemAdr   uint32
	lineIncrement  uint32
}

// Scroller is implemented by every window embedding Scrollable.
type Scroller interface {
	Scroll() *Scrollable
}

func (s *Scrollable) Scroll() *Scrollable {
	return s
}

func (s *Scrollable) HomeItemAdr() uint32 {
	return s.homeItemAdr
}

func (s *Scrollable) SetHomeItemAdr(adr uint32) {
	s.homeItemAdr = adr
}

func (s *Scrollable) CurrentItemAdr() uint32 {
	return s.currentItemAdr
}

func (s *Scrollable) SetCurrentItemAdr(adr uint32) {
	s.currentItemAdr = adr
}

func (s *Scrollable) LimitItemAdr() uint32 {
	return s.limitItemAdr
}

func (s *Scrollable) SetLimitItemAdr(adr uint32) {
	s.limitItemAdr = adr
}

func (s *Scrollable) LineIncrement() uint32 {
	return s.lineIncrement
}

func (s *Scrollable) SetLineIncrement(inc uint32) {
	s.lineIncrement = inc
}

// The item span of one full window body.
func (s *Scrollable) page() uint32 {
	return uint32(s.rows-1) * s.lineIncrement
}

// The highest current item that still fills the body without passing the
// limit.
func (s *Scrollable) maxItemAdr() uint32 {
	if page := s.page(); s.limitItemAdr > page {
		return s.limitItemAdr - page
	}

	return 0
}

// Home moves to the home item. A non-zero pos becomes the new home, clamped
// so that a full window still fits below the limit.
func (s *Scrollable) Home(pos uint32) {
	if pos == 0 {
		s.currentItemAdr = s.homeItemAdr
		return
	}

	if max := s.maxItemAdr(); pos > max {
		pos = max
	}

	s.homeItemAdr = pos
	s.currentItemAdr = pos
}

// Jump sets the current item without any range check. DrawLine shows items
// beyond the limit as invalid.
func (s *Scrollable) Jump(pos uint32) {
	s.currentItemAdr = pos
}

// Forward moves toward the limit by amt items, or by one window when amt is
// zero.
func (s *Scrollable) Forward(amt uint32) {
	if amt == 0 {
		amt = s.page()
	}

	max := s.maxItemAdr()

	if uint64(s.currentItemAdr)+uint64(amt) > uint64(max) {
		s.currentItemAdr = max
	} else {
		s.currentItemAdr += amt
	}
}

// Backward moves toward zero by amt items, or by one window when amt is zero.
func (s *Scrollable) Backward(amt uint32) {
	if amt == 0 {
		amt = s.page()
	}

	if amt <= s.currentItemAdr {
		s.currentItemAdr -= amt
	} else {
		s.currentItemAdr = 0
	}

	if max := s.maxItemAdr(); s.currentItemAdr > max {
		s.currentItemAdr = max
	}
}

// DrawLines calls draw once per body row with the item for that row.
func (s *Scrollable) DrawLines(draw func(itemAdr uint32)) {
	for line := 0; line < s.rows-1; line++ {
		s.SetCursor(line+2, 1)
		draw(s.currentItemAdr + uint32(line)*s.lineIncrement)
	}
}
