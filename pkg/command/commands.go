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

package command

import (
	"fmt"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/assembler"
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

func (sim *Simulator) fail(code simerr.Code) error {
	return simerr.At(code, sim.tk.Token().Pos)
}

// Parses a numeric argument that must be present.
func (sim *Simulator) parseNumArg(missing, invalid simerr.Code) (uint32, error) {
	if sim.tk.IsEOS() {
		return 0, sim.fail(missing)
	}

	return sim.ev.ParseNum(invalid)
}

// Reports whether an optional positional argument is present at the current
// token, that is neither a comma nor the end of the line follows.
func (sim *Simulator) hasArg() bool {
	return !sim.tk.IsEOS() && !sim.tk.Is(tokenizer.TOK_COMMA)
}

func flag(set bool, on, off string) string {
	if set {
		return on
	}

	return off
}

//
// Simulator commands
//

func (sim *Simulator) exitCmd() error {
	code := clampExitCode(sim.Env.GetInt(env.ENV_EXIT_CODE, 0))

	if !sim.tk.IsEOS() {
		pos := sim.tk.Token().Pos

		val, err := sim.ev.ParseNum(simerr.ERR_INVALID_EXIT_VAL)
		if err != nil {
			return err
		}

		if val > 255 {
			return simerr.At(simerr.ERR_INVALID_EXIT_VAL, pos)
		}

		code = int(val)
	}

	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	sim.exit = true
	sim.exitCode = code

	return nil
}

func (sim *Simulator) envCmd() error {
	tk := sim.tk

	if tk.IsEOS() {
		sim.Env.Display(sim)
		return nil
	}

	if !tk.IsType(tokenizer.TYP_IDENT) {
		return sim.fail(simerr.ERR_INVALID_ARG)
	}

	name := tk.Token().Name

	if err := tk.Next(); err != nil {
		return err
	}

	if tk.IsEOS() {
		return sim.Env.DisplayEntry(sim, name)
	}

	val, err := sim.ev.Parse()
	if err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	if val.IsSym(tokenizer.TOK_NIL) {
		return sim.Env.Remove(name)
	}

	if sim.Env.IsReadOnly(name) {
		return simerr.WithArg(simerr.ERR_ENV_READ_ONLY, name)
	}

	envVal, err := val.EnvValue()
	if err != nil {
		return err
	}

	if name == env.ENV_RDX_DEFAULT && !isRadix(envVal) {
		return simerr.WithArg(simerr.ERR_INVALID_RADIX, name)
	}

	return sim.Env.Set(name, envVal)
}

func isRadix(val env.Value) bool {
	var rdx int64

	switch val.Type {
	case env.TYP_INT:
		rdx = int64(val.Int)
	case env.TYP_UINT:
		rdx = int64(val.Uint)
	default:
		return false
	}

	return rdx == 8 || rdx == 10 || rdx == 16
}

func (sim *Simulator) execFileCmd() error {
	tk := sim.tk

	if !tk.IsType(tokenizer.TYP_STR) {
		return sim.fail(simerr.ERR_EXPECTED_FILE_NAME)
	}

	path := tk.Token().Str

	if err := tk.Next(); err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	return sim.execFile(path)
}

func (sim *Simulator) writeLineCmd() error {
	val, err := sim.ev.Parse()
	if err != nil {
		return err
	}

	if val.IsNil() {
		return sim.fail(simerr.ERR_EXPECTED_EXPR)
	}

	rdx, err := sim.parseOptFmt(false)
	if err != nil {
		return err
	}

	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	switch val.Typ {
	case tokenizer.TYP_NUM, tokenizer.TYP_BOOL, tokenizer.TYP_EXT_ADR:
		sim.printf("%s\n", val.Format(rdx))

	case tokenizer.TYP_STR:
		sim.printf("\"%s\"\n", val.Str)

	default:
		return simerr.New(simerr.ERR_INVALID_EXPR)
	}

	return nil
}

func (sim *Simulator) histCmd() error {
	depth := 0

	if !sim.tk.IsEOS() {
		val, err := sim.ev.ParseNum(simerr.ERR_INVALID_NUM)
		if err != nil {
			return err
		}

		depth = int(int32(val))
	}

	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	entries := sim.Hist.Entries(depth)

	sim.printf("Cmd History (%d/%d entries):\n", len(entries), sim.Hist.Count())

	for _, entry := range entries {
		sim.printf("[%d]: %s\n", entry.CmdId, entry.Line)
	}

	return nil
}

// Resolves the optional history reference of DO and REDO. The default is
// the most recent line.
func (sim *Simulator) parseHistRef() (string, error) {
	ref := -1

	if !sim.tk.IsEOS() {
		val, err := sim.ev.ParseNum(simerr.ERR_INVALID_CMD_ID)
		if err != nil {
			return "", err
		}

		ref = int(int32(val))
	}

	if err := sim.tk.CheckEOS(); err != nil {
		return "", err
	}

	entry, ok := sim.Hist.Get(ref)
	if !ok {
		return "", simerr.New(simerr.ERR_INVALID_CMD_ID)
	}

	return entry.Line, nil
}

func (sim *Simulator) doCmd() error {
	line, err := sim.parseHistRef()
	if err != nil {
		return err
	}

	return sim.dispatch(line)
}

// REDO places the line in the input buffer of the next read for editing.
func (sim *Simulator) redoCmd() error {
	line, err := sim.parseHistRef()
	if err != nil {
		return err
	}

	sim.prefill = line

	return nil
}

//
// CPU control
//

func (sim *Simulator) resetCmd() error {
	tk := sim.tk
	mc := sim.Mc

	what := tokenizer.TOK_CPU
	if !tk.IsEOS() {
		what = tk.Token().Tid
	}

	switch what {
	case tokenizer.TOK_CPU:
		mc.Reset()
	case tokenizer.TOK_MEM:
		mc.ResetMem()
	case tokenizer.TOK_STATS:
		mc.ResetStats()
	case tokenizer.TOK_ALL:
		mc.Reset()
		mc.ResetMem()
		mc.ResetStats()
	default:
		return sim.fail(simerr.ERR_INVALID_ARG)
	}

	if !tk.IsEOS() {
		if err := tk.Next(); err != nil {
			return err
		}
	}

	return tk.CheckEOS()
}

var stopReasons = map[machine.StopReason]string{
	machine.STOP_BREAK_INSTR: "Break instruction",
	machine.STOP_BREAKPOINT:  "Breakpoint",
	machine.STOP_POLL:        "Interrupted",
	machine.STOP_CYCLE_LIMIT: "Cycle limit reached",
	machine.STOP_TRAP:        "Trap",
}

// Prints why execution stopped and the address of the instruction that was
// about to execute.
func (sim *Simulator) reportStop(reason machine.StopReason) {
	if reason == machine.STOP_NONE {
		return
	}

	seg, ofs := sim.Mc.ProgramCounter()

	if ex := &sim.Mc.State.EX; ex.Valid() {
		seg, ofs = ex.Psw0&0xFFFF, ex.Psw1
	}

	sim.printf("%s at 0x%04x.0x%08x\n", stopReasons[reason], seg, ofs)
}

func (sim *Simulator) runCmd() error {
	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	limit := uint64(0)
	if !sim.Con.IsConsole() {
		limit = RUN_CYCLE_LIMIT
	}

	reason, err := sim.resume(func() machine.StopReason {
		return sim.Mc.Run(limit, sim.Con.Poll)
	})
	if err != nil {
		return err
	}

	sim.reportStop(reason)

	return nil
}

// Runs exec with the terminal switched to non-blocking input. An interrupt
// that arrived while the prompt was waiting is dropped first.
func (sim *Simulator) resume(exec func() machine.StopReason) (machine.StopReason, error) {
	sim.Dbg.Break.Store(false)

	if err := sim.Con.SetBlocking(false); err != nil {
		return machine.STOP_NONE, err
	}

	reason := exec()

	if err := sim.Con.SetBlocking(true); err != nil {
		return reason, err
	}

	return reason, nil
}

func (sim *Simulator) stepCmd() error {
	tk := sim.tk

	count := uint32(1)
	clocks := sim.Env.GetBool(env.ENV_STEP_IN_CLOCKS, false)

	if sim.hasArg() {
		val, err := sim.ev.ParseNum(simerr.ERR_EXPECTED_STEPS)
		if err != nil {
			return err
		}

		count = val
	}

	if tk.Is(tokenizer.TOK_COMMA) {
		if err := tk.Next(); err != nil {
			return err
		}

		switch tk.Token().Tid {
		case tokenizer.TOK_I:
			clocks = false
		case tokenizer.TOK_C:
			clocks = true
		default:
			return sim.fail(simerr.ERR_INVALID_STEP_OPTION)
		}

		if err := tk.Next(); err != nil {
			return err
		}
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	reason, err := sim.resume(func() machine.StopReason {
		if clocks {
			return sim.Mc.ClockStep(uint(count))
		}

		return sim.Mc.InstrStep(uint(count))
	})
	if err != nil {
		return err
	}

	sim.reportStop(reason)

	return nil
}

//
// Breakpoints
//

// A plain offset lies in the segment of the next instruction to fetch.
func (sim *Simulator) parseCodeAdr() (uint32, uint32, error) {
	pos := sim.tk.Token().Pos

	val, err := sim.ev.Parse()
	if err != nil {
		return 0, 0, err
	}

	switch val.Typ {
	case tokenizer.TYP_NUM:
		seg, _ := sim.Mc.ProgramCounter()
		return seg, val.Num, nil

	case tokenizer.TYP_EXT_ADR:
		return val.Seg, val.Ofs, nil
	}

	return 0, 0, simerr.At(simerr.ERR_EXPECTED_OFS, pos)
}

// B sets a breakpoint, BD removes one. BD without an address removes them
// all.
func (sim *Simulator) breakCmd(set bool) error {
	if !set && sim.tk.IsEOS() {
		sim.Dbg.Clear()
		return nil
	}

	if sim.tk.IsEOS() {
		return sim.fail(simerr.ERR_EXPECTED_OFS)
	}

	seg, ofs, err := sim.parseCodeAdr()
	if err != nil {
		return err
	}

	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	if set {
		return sim.Dbg.Add(seg, ofs)
	}

	return sim.Dbg.Delete(seg, ofs)
}

func (sim *Simulator) breakListCmd() error {
	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	sim.Dbg.List(sim)

	return nil
}

//
// Registers
//

var regClasses = map[tokenizer.TokType]machine.RegClass{
	tokenizer.TYP_GREG:      machine.RC_GEN_REG_SET,
	tokenizer.TYP_SREG:      machine.RC_SEG_REG_SET,
	tokenizer.TYP_CREG:      machine.RC_CTRL_REG_SET,
	tokenizer.TYP_FD_PREG:   machine.RC_FD_PSTAGE,
	tokenizer.TYP_MA_PREG:   machine.RC_MA_PSTAGE,
	tokenizer.TYP_EX_PREG:   machine.RC_EX_PSTAGE,
	tokenizer.TYP_IC_L1_REG: machine.RC_IC_L1_OBJ,
	tokenizer.TYP_DC_L1_REG: machine.RC_DC_L1_OBJ,
	tokenizer.TYP_UC_L2_REG: machine.RC_UC_L2_OBJ,
	tokenizer.TYP_ITLB_REG:  machine.RC_ITLB_OBJ,
	tokenizer.TYP_DTLB_REG:  machine.RC_DTLB_OBJ,
}

func (sim *Simulator) regClass(tok tokenizer.Token) (machine.RegClass, error) {
	class, ok := regClasses[tok.Typ]
	if !ok {
		return 0, simerr.At(simerr.ERR_EXPECTED_REG_OR_SET, tok.Pos)
	}

	if class == machine.RC_UC_L2_OBJ && sim.Mc.UCache == nil {
		return 0, simerr.At(simerr.ERR_CACHE_NOT_CONFIGURED, tok.Pos)
	}

	return class, nil
}

// Numbered register sets print eight registers per line.
func (sim *Simulator) displayRegRows(prefix string, class machine.RegClass, count int, rdx int) {
	for i := 0; i < count; i += 8 {
		sim.printf("%-5s", fmt.Sprintf("%s%d=", prefix, i))

		for j := i; j < i+8 && j < count; j++ {
			sim.printf(" %s", fmtWord(sim.Mc.GetReg(class, j), rdx))
		}

		sim.printf("\n")
	}
}

// Named register sets print one register per line, under the first name the
// command table lists for it.
func (sim *Simulator) displayNamedRegs(typ tokenizer.TokType, class machine.RegClass, rdx int) {
	seen := make(map[tokenizer.TokId]bool)

	for _, entry := range tokenizer.CmdTable {
		if entry.Typ != typ || tokenizer.IsSetId(entry.Tid) || seen[entry.Tid] {
			continue
		}

		seen[entry.Tid] = true

		sim.printf("%-20s%s\n", entry.Name, fmtWord(sim.Mc.GetReg(class, int(entry.Val)), rdx))
	}
}

// DR [reg|set][,fmt]. Without a register the general registers are shown.
func (sim *Simulator) displayRegCmd() error {
	tk := sim.tk

	reg := tokenizer.Token{Name: "GR", Typ: tokenizer.TYP_GREG, Tid: tokenizer.GR_SET}

	if sim.hasArg() {
		reg = tk.Token()

		if err := tk.Next(); err != nil {
			return err
		}
	}

	class, err := sim.regClass(reg)
	if err != nil {
		return err
	}

	rdx, err := sim.parseOptFmt(false)
	if err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	if !tokenizer.IsSetId(reg.Tid) {
		sim.printf("%s=%s\n", reg.Name, fmtWord(sim.Mc.GetReg(class, int(reg.Val)), rdx))
		return nil
	}

	switch reg.Typ {
	case tokenizer.TYP_GREG:
		sim.displayRegRows("R", class, machine.MAX_GREGS, rdx)
	case tokenizer.TYP_SREG:
		sim.displayRegRows("S", class, machine.MAX_SREGS, rdx)
	case tokenizer.TYP_CREG:
		sim.displayRegRows("C", class, machine.MAX_CREGS, rdx)
	default:
		sim.displayNamedRegs(reg.Typ, class, rdx)
	}

	return nil
}

// MR reg val
func (sim *Simulator) modifyRegCmd() error {
	tk := sim.tk
	reg := tk.Token()

	if _, ok := regClasses[reg.Typ]; !ok || tokenizer.IsSetId(reg.Tid) {
		return sim.fail(simerr.ERR_INVALID_REG_ID)
	}

	class, err := sim.regClass(reg)
	if err != nil {
		return err
	}

	if err := tk.Next(); err != nil {
		return err
	}

	if err := sim.skipComma(); err != nil {
		return err
	}

	val, err := sim.parseNumArg(simerr.ERR_EXPECTED_NUMERIC, simerr.ERR_INVALID_NUM)
	if err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	sim.Mc.SetReg(class, int(reg.Val), val)

	return nil
}

//
// Physical memory
//

// DA ofs[,len[,fmt]]. The range is widened to whole words.
func (sim *Simulator) displayAbsMemCmd() error {
	tk := sim.tk

	ofs, err := sim.parseNumArg(simerr.ERR_EXPECTED_START_OFS, simerr.ERR_EXPECTED_START_OFS)
	if err != nil {
		return err
	}

	length := uint32(4)
	rdx := sim.defaultRadix()

	if tk.Is(tokenizer.TOK_COMMA) {
		if err := tk.Next(); err != nil {
			return err
		}

		if sim.hasArg() {
			if length, err = sim.ev.ParseNum(simerr.ERR_EXPECTED_LEN); err != nil {
				return err
			}
		}

		if rdx, err = sim.parseOptFmt(true); err != nil {
			return err
		}
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	if uint64(ofs)+uint64(length) > 0xFFFFFFFF {
		return simerr.New(simerr.ERR_OFS_LEN_LIMIT_EXCEEDED)
	}

	adr := uint64(ofs &^ 3)
	limit := (uint64(ofs) + uint64(length) + 3) &^ 3

	if rdx == 0 {
		sim.displayCode(adr, limit)
		sim.printf("\n")
		return nil
	}

	perLine := int(sim.Env.GetInt(env.ENV_WORDS_PER_LINE, 8))
	if perLine < 1 {
		perLine = 1
	}

	for adr < limit {
		sim.printf("%s:", fmtWord(uint32(adr), rdx))

		for i := 0; i < perLine && adr < limit; i++ {
			if word, ok := sim.Mc.GetMemDataWord(uint32(adr)); ok {
				sim.printf(" %s", fmtWord(word, rdx))
			} else {
				sim.printf(" %s", fmtInvalidWord(rdx))
			}

			adr += 4
		}

		sim.printf("\n")
	}

	sim.printf("\n")

	return nil
}

// One word per line with its disassembly.
func (sim *Simulator) displayCode(adr, limit uint64) {
	rdx := sim.defaultRadix()

	for ; adr < limit; adr += 4 {
		word, ok := sim.Mc.GetMemDataWord(uint32(adr))
		if !ok {
			sim.printf("%s: %s\n", fmtWord(uint32(adr), 16), fmtInvalidWord(16))
			continue
		}

		sim.printf("%s: %s %s\n", fmtWord(uint32(adr), 16), fmtWord(word, 16),
			assembler.Disassemble(word, rdx))
	}
}

// MA ofs val
func (sim *Simulator) modifyAbsMemCmd() error {
	tk := sim.tk

	ofs, err := sim.parseNumArg(simerr.ERR_EXPECTED_OFS, simerr.ERR_EXPECTED_OFS)
	if err != nil {
		return err
	}

	if err := sim.skipComma(); err != nil {
		return err
	}

	val, err := sim.parseNumArg(simerr.ERR_EXPECTED_NUMERIC, simerr.ERR_INVALID_NUM)
	if err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	if !sim.Mc.PutMemDataWord(ofs, val) {
		return simerr.New(simerr.ERR_OFS_LEN_LIMIT_EXCEEDED)
	}

	return nil
}

//
// Caches
//

func (sim *Simulator) parseCacheId() (*machine.Cache, error) {
	var cache *machine.Cache

	switch sim.tk.Token().Tid {
	case tokenizer.TOK_I:
		cache = sim.Mc.ICache
	case tokenizer.TOK_D:
		cache = sim.Mc.DCache
	case tokenizer.TOK_U:
		if sim.Mc.UCache == nil {
			return nil, sim.fail(simerr.ERR_CACHE_NOT_CONFIGURED)
		}

		cache = sim.Mc.UCache
	default:
		return nil, sim.fail(simerr.ERR_CACHE_TYPE)
	}

	if err := sim.tk.Next(); err != nil {
		return nil, err
	}

	return cache, sim.skipComma()
}

// Parses the "idx[,len[,fmt]]" tail of DCA and DTLB. A zero length selects
// everything from idx to the end.
func (sim *Simulator) parseRange(size uint32, exceeded simerr.Code) (uint32, uint32, int, error) {
	tk := sim.tk

	index, err := sim.parseNumArg(simerr.ERR_EXPECTED_NUMERIC, simerr.ERR_EXPECTED_NUMERIC)
	if err != nil {
		return 0, 0, 0, err
	}

	length := uint32(1)
	rdx := sim.defaultRadix()

	if tk.Is(tokenizer.TOK_COMMA) {
		if err := tk.Next(); err != nil {
			return 0, 0, 0, err
		}

		if sim.hasArg() {
			if length, err = sim.ev.ParseNum(simerr.ERR_EXPECTED_LEN); err != nil {
				return 0, 0, 0, err
			}
		}

		if rdx, err = sim.parseOptFmt(false); err != nil {
			return 0, 0, 0, err
		}
	}

	if err := tk.CheckEOS(); err != nil {
		return 0, 0, 0, err
	}

	if index >= size {
		return 0, 0, 0, simerr.New(exceeded)
	}

	if length == 0 {
		length = size - index
	}

	if uint64(index)+uint64(length) > uint64(size) {
		return 0, 0, 0, simerr.New(exceeded)
	}

	return index, length, rdx, nil
}

// DCA I|D|U idx[,len[,fmt]]
func (sim *Simulator) displayCacheCmd() error {
	cache, err := sim.parseCacheId()
	if err != nil {
		return err
	}

	index, length, rdx, err := sim.parseRange(cache.BlockEntries(), simerr.ERR_CACHE_SIZE_EXCEEDED)
	if err != nil {
		return err
	}

	for i := index; i < index+length; i++ {
		for set := uint32(0); set < cache.BlockSets(); set++ {
			tag, ok := cache.GetMemTagEntry(i, set)
			if !ok {
				continue
			}

			data, _ := cache.GetMemBlockEntry(i, set)

			sim.printf("%s: (%d)[%s%s] (%s)\n", fmtWord(i, rdx), set,
				flag(tag.Valid, "V", "v"), flag(tag.Dirty, "D", "d"), fmtWord(tag.Tag, rdx))

			for j := 0; j < len(data); j += 4 {
				words := make([]string, 0, 4)

				for k := j; k < j+4 && k < len(data); k++ {
					words = append(words, fmtWord(data[k], rdx))
				}

				sim.printf("%12s(%s)\n", "", strings.Join(words, " "))
			}
		}
	}

	sim.printf("\n")

	return nil
}

// PCA I|D|U idx[,set[,F]]. F writes a dirty block back before it is
// invalidated.
func (sim *Simulator) purgeCacheCmd() error {
	tk := sim.tk

	cache, err := sim.parseCacheId()
	if err != nil {
		return err
	}

	index, err := sim.parseNumArg(simerr.ERR_EXPECTED_NUMERIC, simerr.ERR_EXPECTED_NUMERIC)
	if err != nil {
		return err
	}

	set := uint32(0)
	flush := false

	if tk.Is(tokenizer.TOK_COMMA) {
		if err := tk.Next(); err != nil {
			return err
		}

		if sim.hasArg() {
			if set, err = sim.ev.ParseNum(simerr.ERR_EXPECTED_NUMERIC); err != nil {
				return err
			}
		}

		if tk.Is(tokenizer.TOK_COMMA) {
			if err := tk.Next(); err != nil {
				return err
			}

			if !tk.Is(tokenizer.TOK_F) {
				return sim.fail(simerr.ERR_INVALID_ARG)
			}

			flush = true

			if err := tk.Next(); err != nil {
				return err
			}
		}
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	if index >= cache.BlockEntries() {
		return simerr.New(simerr.ERR_CACHE_SIZE_EXCEEDED)
	}

	if set >= cache.BlockSets() {
		return simerr.New(simerr.ERR_CACHE_SET_NUM)
	}

	if !cache.PurgeBlock(index, set, flush) {
		return simerr.New(simerr.ERR_CACHE_PURGE_OP)
	}

	return nil
}

//
// TLBs
//

func (sim *Simulator) parseTlbId() (*machine.Tlb, error) {
	var tlb *machine.Tlb

	switch sim.tk.Token().Tid {
	case tokenizer.TOK_I:
		tlb = sim.Mc.ITlb
	case tokenizer.TOK_D:
		tlb = sim.Mc.DTlb
	default:
		return nil, sim.fail(simerr.ERR_TLB_TYPE)
	}

	if err := sim.tk.Next(); err != nil {
		return nil, err
	}

	return tlb, sim.skipComma()
}

func (sim *Simulator) parseExtAdr() (uint32, uint32, error) {
	pos := sim.tk.Token().Pos

	val, err := sim.ev.Parse()
	if err != nil {
		return 0, 0, err
	}

	if val.Typ != tokenizer.TYP_EXT_ADR {
		return 0, 0, simerr.At(simerr.ERR_EXPECTED_EXT_ADR, pos)
	}

	return val.Seg, val.Ofs, nil
}

// DTLB I|D idx[,len[,fmt]]
func (sim *Simulator) displayTlbCmd() error {
	tlb, err := sim.parseTlbId()
	if err != nil {
		return err
	}

	index, length, rdx, err := sim.parseRange(tlb.GetTlbSize(), simerr.ERR_TLB_SIZE_EXCEEDED)
	if err != nil {
		return err
	}

	for i := index; i < index+length; i++ {
		entry, ok := tlb.GetTlbEntry(i)
		if !ok {
			continue
		}

		sim.printf("%s: [%s%s%s%s] Acc: (%d,%d,%d) Pid: %s Vpn-H: %s Vpn-L: %s PPN: %s\n",
			fmtWord(i, rdx),
			flag(entry.TValid(), "V", "v"),
			flag(entry.TDirty(), "D", "d"),
			flag(entry.TTrapPage(), "P", "p"),
			flag(entry.TTrapDataPage(), "D", "d"),
			entry.TPageType(), entry.TPrivL1(), entry.TPrivL2(),
			fmtHalfWord(entry.TSegId(), rdx),
			fmtWord(entry.VpnHigh, rdx),
			fmtWord(entry.VpnLow, rdx),
			fmtWord(entry.TPhysPage(), rdx))
	}

	sim.printf("\n")

	return nil
}

// ITLB I|D extAdr, acc, adr
func (sim *Simulator) insertTlbCmd() error {
	tk := sim.tk

	tlb, err := sim.parseTlbId()
	if err != nil {
		return err
	}

	if tk.IsEOS() {
		return sim.fail(simerr.ERR_EXPECTED_EXT_ADR)
	}

	seg, ofs, err := sim.parseExtAdr()
	if err != nil {
		return err
	}

	if err := sim.skipComma(); err != nil {
		return err
	}

	acc, err := sim.parseNumArg(simerr.ERR_TLB_ACC_DATA, simerr.ERR_TLB_ACC_DATA)
	if err != nil {
		return err
	}

	if err := sim.skipComma(); err != nil {
		return err
	}

	adr, err := sim.parseNumArg(simerr.ERR_TLB_ADR_DATA, simerr.ERR_TLB_ADR_DATA)
	if err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	if !tlb.InsertTlbEntryData(seg, ofs, acc, adr) {
		return simerr.New(simerr.ERR_TLB_INSERT_OP)
	}

	return nil
}

// PTLB I|D extAdr
func (sim *Simulator) purgeTlbCmd() error {
	tk := sim.tk

	tlb, err := sim.parseTlbId()
	if err != nil {
		return err
	}

	if tk.IsEOS() {
		return sim.fail(simerr.ERR_EXPECTED_EXT_ADR)
	}

	seg, ofs, err := sim.parseExtAdr()
	if err != nil {
		return err
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	if !tlb.PurgeTlbEntryData(seg, ofs) {
		return simerr.New(simerr.ERR_TLB_PURGE_OP)
	}

	return nil
}
