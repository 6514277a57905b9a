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

package history

const MAX_CMD_HIST = 100

type Entry struct {
	CmdId int
	Line  string
}

// History is a fixed-capacity log of command lines. Command ids grow by one
// with every added line and are never reused, even after the entry holding
// them has been evicted.
type History struct {
	entries    [MAX_CMD_HIST]Entry
	head       int
	tail       int
	count      int
	nextCmdNum int
}

func (hist *History) Add(line string) int {
	id := hist.nextCmdNum

	hist.entries[hist.head] = Entry{CmdId: id, Line: line}

	if hist.count == MAX_CMD_HIST {
		hist.tail = (hist.tail + 1) % MAX_CMD_HIST
	} else {
		hist.count++
	}

	hist.nextCmdNum++
	hist.head = (hist.head + 1) % MAX_CMD_HIST

	return id
}

// Get resolves a command reference. A reference of zero or more names a
// command id; a negative one counts back from the most recent line, which
// is -1.
func (hist *History) Get(ref int) (Entry, bool) {
	if hist.count == 0 {
		return Entry{}, false
	}

	if ref >= 0 {
		for i := 0; i < hist.count; i++ {
			entry := hist.entries[(hist.tail+i)%MAX_CMD_HIST]

			if entry.CmdId == ref {
				return entry, true
			}
		}

		return Entry{}, false
	}

	if -ref > hist.count {
		return Entry{}, false
	}

	return hist.entries[(hist.head+ref+MAX_CMD_HIST)%MAX_CMD_HIST], true
}

func (hist *History) NextCmdNum() int {
	return hist.nextCmdNum
}

func (hist *History) Count() int {
	return hist.count
}

// Entries returns the most recent depth lines, oldest first. A depth of zero
// or one beyond the count selects every retained line.
func (hist *History) Entries(depth int) []Entry {
	if depth <= 0 || depth > hist.count {
		depth = hist.count
	}

	result := make([]Entry, 0, depth)

	for i := -depth; i < 0; i++ {
		entry, _ := hist.Get(i)
		result = append(result, entry)
	}

	return result
}
