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
	"errors"
	"fmt"
)

var (
	ErrTlbSize        = errors.New("TLB size exceeded")
	ErrCacheSize      = errors.New("Cache size exceeded")
	ErrCacheSetNum    = errors.New("Invalid cache set")
	ErrMemSize        = errors.New("Physical memory size exceeded")
	ErrCacheBlockSize = errors.New("Invalid cache block size")
)

// Sizing hints, one per environment variable that feeds the configuration.
type Sizing struct {
	ITlbSets       uint32
	ITlbSize       uint32
	DTlbSets       uint32
	DTlbSize       uint32
	ICacheSets     uint32
	ICacheSize     uint32
	ICacheLineSize uint32
	DCacheSets     uint32
	DCacheSize     uint32
	DCacheLineSize uint32
	MemSize        uint32
	MemBanks       uint32
	MemBankSize    uint32
}

func DefaultSizing() Sizing {
	return Sizing{
		ITlbSets:       1,
		ITlbSize:       1024,
		DTlbSets:       1,
		DTlbSize:       1024,
		ICacheSets:     1,
		ICacheSize:     1024,
		ICacheLineSize: 4,
		DCacheSets:     1,
		DCacheSize:     1024,
		DCacheLineSize: 4,
		MemSize:        MAX_PHYS_MEM_SIZE,
		MemBanks:       1,
		MemBankSize:    MAX_PHYS_MEM_SIZE,
	}
}

func roundUp(size uint32, limit uint32) uint32 {
	power := uint32(1)

	for power < size && power < limit {
		power *= 2
	}

	return power
}

// NewConfig validates the sizing hints and derives the memory layout. TLB
// and cache entry counts are rounded up to a power of two.
func NewConfig(sizing Sizing) (Config, error) {
	var cfg Config

	if sizing.ITlbSize > MAX_TLB_SIZE || sizing.DTlbSize > MAX_TLB_SIZE {
		return cfg, ErrTlbSize
	}

	if sizing.ICacheSize > MAX_CACHE_BLOCK_ENTRIES ||
		sizing.DCacheSize > MAX_CACHE_BLOCK_ENTRIES {
		return cfg, ErrCacheSize
	}

	if sizing.ICacheSets < 1 || sizing.ICacheSets > MAX_BLOCK_SETS ||
		sizing.DCacheSets < 1 || sizing.DCacheSets > MAX_BLOCK_SETS {
		return cfg, ErrCacheSetNum
	}

	for _, lineSize := range []uint32{sizing.ICacheLineSize, sizing.DCacheLineSize} {
		if lineSize == 0 || lineSize*4 > MAX_BLOCK_SIZE {
			return cfg, ErrCacheBlockSize
		}
	}

	memSize := sizing.MemSize
	if memSize == 0 || memSize > MAX_PHYS_MEM_SIZE {
		return cfg, fmt.Errorf("%w: %#x", ErrMemSize, memSize)
	}

	cfg.ITlb = TlbDesc{
		Type:    TLB_T_L1_INSTR,
		Entries: roundUp(sizing.ITlbSize, MAX_TLB_SIZE),
		Latency: 0,
	}

	cfg.DTlb = TlbDesc{
		Type:    TLB_T_L1_DATA,
		Entries: roundUp(sizing.DTlbSize, MAX_TLB_SIZE),
		Latency: 0,
	}

	cfg.ICacheL1 = MemDesc{
		Type:         MEM_T_L1_INSTR,
		BlockEntries: roundUp(sizing.ICacheSize, MAX_CACHE_BLOCK_ENTRIES),
		BlockSize:    sizing.ICacheLineSize * 4,
		BlockSets:    sizing.ICacheSets,
		Latency:      0,
		Priority:     1,
	}

	cfg.DCacheL1 = MemDesc{
		Type:         MEM_T_L1_DATA,
		BlockEntries: roundUp(sizing.DCacheSize, MAX_CACHE_BLOCK_ENTRIES),
		BlockSize:    sizing.DCacheLineSize * 4,
		BlockSets:    sizing.DCacheSets,
		Latency:      0,
		Priority:     2,
	}

	cfg.Mem = MemDesc{
		Type:     MEM_T_PHYS_MEM,
		StartAdr: 0,
		EndAdr:   memSize - 1,
		Latency:  4,
	}

	cfg.Pdc = MemDesc{
		Type:     MEM_T_PDC_MEM,
		StartAdr: PDC_MEM_START,
		EndAdr:   PDC_MEM_START + PDC_MEM_SIZE - 1,
		Latency:  4,
	}

	cfg.Io = MemDesc{
		Type:     MEM_T_IO_MEM,
		StartAdr: IO_MEM_START,
		EndAdr:   IO_MEM_END,
		Latency:  1,
	}

	return cfg, nil
}
