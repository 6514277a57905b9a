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

type MemTagEntry struct {
	Valid bool
	Dirty bool
	Tag   uint32
}

// The layer below a cache.
type backingStore interface {
	GetMemDataWord(adr uint32) uint32
	PutMemDataWord(adr uint32, value uint32)
}

// Cache is a write-back, set associative cache. A block is addressed by
// index and set; its tag is the physical block address with the offset bits
// cleared.
type Cache struct {
	memCtrl

	tags [][]MemTagEntry
	data [][][]uint32
	next backingStore

	// Round robin victim selection per index.
	victim []uint32
}

func NewCache(desc MemDesc, next backingStore) *Cache {
	cache := &Cache{
		memCtrl: memCtrl{desc: desc},
		next:    next,
	}

	cache.allocate()

	return cache
}

func (cache *Cache) allocate() {
	desc := cache.desc
	words := desc.BlockSize / 4

	cache.tags = make([][]MemTagEntry, desc.BlockSets)
	cache.data = make([][][]uint32, desc.BlockSets)

	for set := range cache.tags {
		cache.tags[set] = make([]MemTagEntry, desc.BlockEntries)
		cache.data[set] = make([][]uint32, desc.BlockEntries)

		for index := range cache.data[set] {
			cache.data[set][index] = make([]uint32, words)
		}
	}

	cache.victim = make([]uint32, desc.BlockEntries)
}

func (cache *Cache) Reset() {
	cache.allocate()
	cache.regs = [MC_REG_MAX]uint32{}
}

func (cache *Cache) BlockEntries() uint32 {
	return cache.desc.BlockEntries
}

func (cache *Cache) BlockSize() uint32 {
	return cache.desc.BlockSize
}

func (cache *Cache) BlockSets() uint32 {
	return cache.desc.BlockSets
}

func (cache *Cache) split(adr uint32) (index uint32, tag uint32, word uint32) {
	blockSize := cache.desc.BlockSize
	tag = adr - adr%blockSize
	index = (adr / blockSize) % cache.desc.BlockEntries
	word = (adr % blockSize) / 4

	return
}

func (cache *Cache) GetMemTagEntry(index uint32, set uint32) (*MemTagEntry, bool) {
	if set >= cache.desc.BlockSets || index >= cache.desc.BlockEntries {
		return nil, false
	}

	return &cache.tags[set][index], true
}

func (cache *Cache) GetMemBlockEntry(index uint32, set uint32) ([]uint32, bool) {
	if set >= cache.desc.BlockSets || index >= cache.desc.BlockEntries {
		return nil, false
	}

	return cache.data[set][index], true
}

func (cache *Cache) lookup(index uint32, tag uint32) (uint32, bool) {
	for set := uint32(0); set < cache.desc.BlockSets; set++ {
		entry := &cache.tags[set][index]

		if entry.Valid && entry.Tag == tag {
			return set, true
		}
	}

	return 0, false
}

func (cache *Cache) writeBack(index uint32, set uint32) {
	entry := &cache.tags[set][index]

	if !entry.Valid || !entry.Dirty {
		return
	}

	cache.request(MO_WRITE_BACK_BLOCK, entry.Tag, entry.Tag, cache.desc.BlockSize)
	cache.DirtyCnt++

	for i, word := range cache.data[set][index] {
		cache.next.PutMemDataWord(entry.Tag+uint32(i)*4, word)
	}

	entry.Dirty = false
}

// Returns the set holding the block for adr, filling it on a miss.
func (cache *Cache) fill(adr uint32) (uint32, uint32, uint32) {
	index, tag, word := cache.split(adr)
	cache.AccessCnt++

	if set, ok := cache.lookup(index, tag); ok {
		return index, set, word
	}

	cache.MissCnt++

	set := cache.victim[index]
	cache.victim[index] = (set + 1) % cache.desc.BlockSets

	cache.writeBack(index, set)
	cache.request(MO_READ_BLOCK, adr, tag, cache.desc.BlockSize)

	for i := range cache.data[set][index] {
		cache.data[set][index][i] = cache.next.GetMemDataWord(tag + uint32(i)*4)
	}

	cache.tags[set][index] = MemTagEntry{Valid: true, Tag: tag}

	return index, set, word
}

func (cache *Cache) GetMemDataWord(adr uint32) uint32 {
	index, set, word := cache.fill(adr)
	return cache.data[set][index][word]
}

func (cache *Cache) PutMemDataWord(adr uint32, value uint32) {
	index, set, word := cache.fill(adr)

	cache.data[set][index][word] = value
	cache.tags[set][index].Dirty = true
}

// Returns the cached copy of adr without filling or counting.
func (cache *Cache) peek(adr uint32) (uint32, bool) {
	index, tag, word := cache.split(adr)

	if set, ok := cache.lookup(index, tag); ok {
		return cache.data[set][index][word], true
	}

	return 0, false
}

// Refreshes a cached copy of adr without marking it dirty. Used when memory
// is modified behind the cache's back.
func (cache *Cache) update(adr uint32, value uint32) {
	index, tag, word := cache.split(adr)

	if set, ok := cache.lookup(index, tag); ok {
		cache.data[set][index][word] = value
	}
}

// PurgeBlock invalidates a block, writing it back first when flush is set.
func (cache *Cache) PurgeBlock(index uint32, set uint32, flush bool) bool {
	if set >= cache.desc.BlockSets || index >= cache.desc.BlockEntries {
		return false
	}

	if flush {
		cache.writeBack(index, set)
		cache.request(MO_FLUSH_BLOCK, cache.tags[set][index].Tag, cache.tags[set][index].Tag, 0)
	} else {
		cache.request(MO_PURGE_BLOCK, cache.tags[set][index].Tag, cache.tags[set][index].Tag, 0)
	}

	cache.tags[set][index] = MemTagEntry{}

	return true
}

func (cache *Cache) Flush() {
	for set := uint32(0); set < cache.desc.BlockSets; set++ {
		for index := uint32(0); index < cache.desc.BlockEntries; index++ {
			cache.writeBack(index, set)
		}
	}
}
