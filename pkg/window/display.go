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
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/outbuf"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
)

// Columns between two window stacks.
const STACK_GAP = 2

// Context holds what the windows draw from. Out is the command output shown
// in the command pane, DevOut what the program wrote to the console device.
type Context struct {
	Con    *console.Console
	Env    *env.Table
	Mc     *machine.Machine
	Out    *outbuf.Buffer
	DevOut *outbuf.Buffer
}

// Display owns the window list and lays the windows out on the screen.
type Display struct {
	ctx *Context

	windows [MAX_WINDOWS]Window
	cmdWin  *Commands

	on         bool
	current    int
	stacksOn   bool
	currentCmd tokenizer.TokId

	actualRows    int
	actualColumns int
	actualCmdRows int
	savedRows     int
	savedColumns  int
}

// New builds the display with the fixed windows and the command pane. All
// user slots start out empty.
func New(ctx *Context) *Display {
	d := &Display{ctx: ctx}

	d.install(PS_REG_WIN, &ProgState{})
	d.install(CTRL_REG_WIN, &SpecialRegs{})
	d.install(PL_REG_WIN, &PipeLine{})
	d.install(STATS_WIN, &Statistics{})

	d.cmdWin = &Commands{}
	d.cmdWin.d = d
	d.cmdWin.SetDefaults()

	return d
}

func (d *Display) install(n int, w Window) {
	b := w.Win()
	b.d = d
	b.index = n
	b.stack = 0

	w.SetDefaults()
	d.windows[n] = w
}

func (d *Display) On() bool {
	return d.on
}

// Window returns the window in slot n, or nil.
func (d *Display) Window(n int) Window {
	if n < 0 || n >= MAX_WINDOWS {
		return nil
	}

	return d.windows[n]
}

func (d *Display) CmdWin() *Commands {
	return d.cmdWin
}

// Size returns the screen size of the last layout.
func (d *Display) Size() (int, int) {
	return d.actualRows, d.actualColumns
}

func (d *Display) CurrentCmd() tokenizer.TokId {
	return d.currentCmd
}

// SetCurrentCmd records the command being executed. Windows that follow the
// program counter look at it.
func (d *Display) SetCurrentCmd(tid tokenizer.TokId) {
	d.currentCmd = tid
}

func (d *Display) CurrentUserWindow() int {
	return d.current
}

func (d *Display) StacksOn() bool {
	return d.stacksOn
}

func (d *Display) ValidWindowNum(n int) bool {
	return n >= 0 && n <= LAST_UWIN && d.windows[n] != nil
}

func (d *Display) ValidUserWindowNum(n int) bool {
	return n >= FIRST_UWIN && n <= LAST_UWIN && d.windows[n] != nil
}

func (d *Display) ValidWindowStackNum(n int) bool {
	return n >= 0 && n < MAX_WIN_STACKS
}

func (d *Display) ValidUserWindowType(tid tokenizer.TokId) bool {
	switch tid {
	case tokenizer.TOK_PM, tokenizer.TOK_PC, tokenizer.TOK_IT, tokenizer.TOK_DT,
		tokenizer.TOK_IC, tokenizer.TOK_DC, tokenizer.TOK_UC, tokenizer.TOK_TX,
		tokenizer.TOK_CW, tokenizer.TOK_ITR, tokenizer.TOK_DTR, tokenizer.TOK_ICR,
		tokenizer.TOK_DCR, tokenizer.TOK_UCR, tokenizer.TOK_MCR, tokenizer.TOK_PCR,
		tokenizer.TOK_IOR:
		return true
	}

	return false
}

func (d *Display) IsCurrentWin(n int) bool {
	return d.ValidUserWindowNum(n) && d.current == n
}

func (d *Display) IsWinEnabled(n int) bool {
	return d.ValidWindowNum(n) && d.windows[n].Win().enabled
}

// Resolves an optional user window number. Zero selects the current window.
func (d *Display) userWindow(n int) (Window, error) {
	if n == 0 {
		n = d.current
	}

	if !d.ValidUserWindowNum(n) {
		return nil, simerr.ERR_INVALID_WIN_ID
	}

	d.current = n

	return d.windows[n], nil
}

func (d *Display) fixedWindow(cmd tokenizer.TokId) (Window, bool) {
	switch cmd {
	case tokenizer.CMD_PSE, tokenizer.CMD_PSD, tokenizer.CMD_PSR:
		return d.windows[PS_REG_WIN], true
	case tokenizer.CMD_SRE, tokenizer.CMD_SRD, tokenizer.CMD_SRR:
		return d.windows[CTRL_REG_WIN], true
	case tokenizer.CMD_PLE, tokenizer.CMD_PLD, tokenizer.CMD_PLR:
		return d.windows[PL_REG_WIN], true
	case tokenizer.CMD_SWE, tokenizer.CMD_SWD, tokenizer.CMD_SWR:
		return d.windows[STATS_WIN], true
	}

	return nil, false
}

// Returns the widest default column count of the enabled windows in stack
// s, and the sum of their rows.
func (d *Display) stackNeeds(s int) (int, int) {
	columns, rows := 0, 0

	for _, w := range d.windows {
		if w == nil || !w.Win().enabled || d.stackOf(w) != s {
			continue
		}

		b := w.Win()

		if c := b.DefColumns(b.radix); c > columns {
			columns = c
		}

		rows += b.rows
	}

	return columns, rows
}

func (d *Display) stackOf(w Window) int {
	return w.Win().stack
}

// Places the enabled windows of stack s from row downward at col, each
// columns wide. Returns the row below the last window.
func (d *Display) placeStack(s, row, col, columns int) int {
	for _, w := range d.windows {
		if w == nil || !w.Win().enabled || d.stackOf(w) != s {
			continue
		}

		b := w.Win()
		b.SetColumns(columns)
		b.SetOrigin(row, col)
		row += b.rows
	}

	return row
}

// layout computes window origins and sizes and returns the screen size.
func (d *Display) layout() (int, int) {
	var stackColumns, stackRows [MAX_WIN_STACKS]int

	maxRows, maxColumns := 0, 0

	for s := 0; s < MAX_WIN_STACKS; s++ {
		stackColumns[s], stackRows[s] = d.stackNeeds(s)

		if d.stacksOn {
			if stackColumns[s] > 0 {
				maxColumns += stackColumns[s] + STACK_GAP
			}

			if stackRows[s] > maxRows {
				maxRows = stackRows[s]
			}
		} else {
			if stackColumns[s] > maxColumns {
				maxColumns = stackColumns[s]
			}

			maxRows += stackRows[s]
		}
	}

	row, col := 1, 1

	for s := 0; s < MAX_WIN_STACKS; s++ {
		if d.stacksOn {
			d.placeStack(s, 1, col, stackColumns[s])

			if stackColumns[s] > 0 {
				col += stackColumns[s] + STACK_GAP
			}
		} else {
			row = d.placeStack(s, row, 1, maxColumns)
		}
	}

	cmd := d.cmdWin
	minRows := int(d.ctx.Env.GetInt(env.ENV_WIN_MIN_ROWS, 24))

	cmd.SetRows(cmd.BaseRows())
	if maxRows+cmd.rows < minRows {
		cmd.SetRows(minRows - maxRows)
	}

	switch {
	case maxColumns == 0:
		maxColumns = cmd.DefColumns(cmd.radix)
	case d.stacksOn:
		maxColumns -= STACK_GAP
	}

	cmd.SetColumns(maxColumns)
	cmd.SetOrigin(maxRows+1, 1)

	return maxRows + cmd.rows, maxColumns
}

// ReDraw lays out and draws every enabled window and the command pane. The
// screen is cleared and resized when force is set or the size changed.
func (d *Display) ReDraw(force bool) {
	con := d.ctx.Con
	rows, columns := d.layout()

	changed := rows != d.actualRows || columns != d.actualColumns || d.cmdWin.rows != d.actualCmdRows

	if force || changed {
		d.actualRows = rows
		d.actualColumns = columns
		d.actualCmdRows = d.cmdWin.rows

		con.SetWindowSize(rows, columns)
		con.SetAbsCursor(1, 1)
		con.ClearScrollArea()
		con.ClearScreen()
		con.SetScrollArea(rows-d.cmdWin.rows+2, rows)
	}

	for _, w := range d.windows {
		if w != nil {
			ReDraw(w)
		}
	}

	ReDraw(d.cmdWin)
	con.ResetAttributes()
	con.SetAbsCursor(d.actualRows, 1)
}

// WindowsOn switches to window mode. The terminal size is remembered so
// WindowsOff can restore it.
func (d *Display) WindowsOn() {
	if !d.on {
		d.savedRows, d.savedColumns = d.ctx.Con.Size()
	}

	d.on = true
	d.ReDraw(true)
}

func (d *Display) WindowsOff() {
	con := d.ctx.Con

	con.ClearScrollArea()
	con.ClearScreen()

	if d.on && d.savedRows > 0 && d.savedColumns > 0 {
		con.SetWindowSize(d.savedRows, d.savedColumns)
	}

	con.SetAbsCursor(1, 1)

	d.on = false
	d.actualRows = 0
	d.actualColumns = 0
	d.actualCmdRows = 0
}

// WindowDefaults resets every window, the command pane included.
func (d *Display) WindowDefaults() {
	for _, w := range d.windows {
		if w != nil {
			w.SetDefaults()
		}
	}

	d.cmdWin.SetDefaults()
}

func (d *Display) WinStacksEnable(on bool) {
	d.stacksOn = on
}

func (d *Display) WindowCurrent(n int) error {
	if !d.ValidUserWindowNum(n) {
		return simerr.ERR_INVALID_WIN_ID
	}

	d.current = n

	return nil
}

// WindowEnable shows or hides a fixed window, or a user window for WE and
// WD.
func (d *Display) WindowEnable(cmd tokenizer.TokId, n int, show bool) error {
	if w, ok := d.fixedWindow(cmd); ok {
		w.Win().SetEnable(show)
		return nil
	}

	w, err := d.userWindow(n)
	if err != nil {
		return err
	}

	w.Win().SetEnable(show)

	return nil
}

func (d *Display) WindowRadix(cmd tokenizer.TokId, rdx int, n int) error {
	if rdx != 8 && rdx != 10 && rdx != 16 {
		return simerr.ERR_INVALID_RADIX
	}

	if w, ok := d.fixedWindow(cmd); ok {
		w.Win().SetRadix(rdx)
		return nil
	}

	w, err := d.userWindow(n)
	if err != nil {
		return err
	}

	w.Win().SetRadix(rdx)

	return nil
}

// WindowSetRows sets the height of a user window, or of the command pane for
// CWL. A zero row count restores the window defaults other than radix and
// visibility.
func (d *Display) WindowSetRows(cmd tokenizer.TokId, rows int, n int) error {
	if cmd == tokenizer.CMD_CWL {
		if rows == 0 {
			rows = 11
		}

		d.cmdWin.SetBaseRows(rows)

		return nil
	}

	w, err := d.userWindow(n)
	if err != nil {
		return err
	}

	if rows == 0 {
		b := w.Win()
		rdx, enabled := b.radix, b.enabled

		w.SetDefaults()
		b.SetRadix(rdx)
		b.SetEnable(enabled)

		return nil
	}

	w.Win().SetRows(rows)

	return nil
}

func (d *Display) scroller(n int) (*Scrollable, error) {
	w, err := d.userWindow(n)
	if err != nil {
		return nil, err
	}

	s, ok := w.(Scroller)
	if !ok {
		return nil, simerr.ERR_INVALID_WIN_TYPE
	}

	return s.Scroll(), nil
}

func (d *Display) WindowHome(pos uint32, n int) error {
	s, err := d.scroller(n)
	if err != nil {
		return err
	}

	s.Home(pos)

	return nil
}

func (d *Display) WindowForward(amt uint32, n int) error {
	s, err := d.scroller(n)
	if err != nil {
		return err
	}

	s.Forward(amt)

	return nil
}

func (d *Display) WindowBackward(amt uint32, n int) error {
	s, err := d.scroller(n)
	if err != nil {
		return err
	}

	s.Backward(amt)

	return nil
}

func (d *Display) WindowJump(pos uint32, n int) error {
	s, err := d.scroller(n)
	if err != nil {
		return err
	}

	s.Jump(pos)

	return nil
}

func (d *Display) WindowToggle(n int) error {
	w, err := d.userWindow(n)
	if err != nil {
		return err
	}

	t, ok := w.(Toggler)
	if !ok {
		return simerr.ERR_INVALID_WIN_TYPE
	}

	t.Toggle()

	return nil
}

// WindowExchangeOrder swaps the list positions, and so the display order, of
// the current window and window n.
func (d *Display) WindowExchangeOrder(n int) error {
	cur := d.current

	if !d.ValidUserWindowNum(n) || !d.ValidUserWindowNum(cur) {
		return simerr.ERR_INVALID_WIN_ID
	}

	if n == cur {
		return nil
	}

	d.windows[n], d.windows[cur] = d.windows[cur], d.windows[n]
	d.windows[n].Win().index = n
	d.windows[cur].Win().index = cur

	return nil
}

func (d *Display) newWindow(tid tokenizer.TokId, arg string) (Window, error) {
	mc := d.ctx.Mc

	memCtrl := func(class machine.RegClass, typ Type) (Window, error) {
		ctrl, ok := mc.MemObject(class)
		if !ok {
			return nil, simerr.ERR_WIN_TYPE_NOT_CONFIGURED
		}

		return &MemController{Base: Base{winType: typ}, ctrl: ctrl}, nil
	}

	cache := func(c *machine.Cache, typ Type) (Window, error) {
		if c == nil {
			return nil, simerr.ERR_WIN_TYPE_NOT_CONFIGURED
		}

		w := &Cache{cache: c}
		w.winType = typ

		return w, nil
	}

	tlb := func(t *machine.Tlb, typ Type) *Tlb {
		w := &Tlb{tlb: t}
		w.winType = typ
		return w
	}

	tlbCtrl := func(t *machine.Tlb, typ Type) *TlbController {
		return &TlbController{Base: Base{winType: typ}, tlb: t}
	}

	switch tid {
	case tokenizer.TOK_PM:
		return &AbsMem{}, nil
	case tokenizer.TOK_PC:
		return &Code{}, nil
	case tokenizer.TOK_IT:
		return tlb(mc.ITlb, WT_ITLB_WIN), nil
	case tokenizer.TOK_DT:
		return tlb(mc.DTlb, WT_DTLB_WIN), nil
	case tokenizer.TOK_ITR:
		return tlbCtrl(mc.ITlb, WT_ITLB_S_WIN), nil
	case tokenizer.TOK_DTR:
		return tlbCtrl(mc.DTlb, WT_DTLB_S_WIN), nil
	case tokenizer.TOK_IC:
		return cache(mc.ICache, WT_ICACHE_WIN)
	case tokenizer.TOK_DC:
		return cache(mc.DCache, WT_DCACHE_WIN)
	case tokenizer.TOK_UC:
		return cache(mc.UCache, WT_UCACHE_WIN)
	case tokenizer.TOK_ICR:
		return memCtrl(machine.RC_IC_L1_OBJ, WT_ICACHE_S_WIN)
	case tokenizer.TOK_DCR:
		return memCtrl(machine.RC_DC_L1_OBJ, WT_DCACHE_S_WIN)
	case tokenizer.TOK_UCR:
		return memCtrl(machine.RC_UC_L2_OBJ, WT_UCACHE_S_WIN)
	case tokenizer.TOK_MCR:
		return memCtrl(machine.RC_MEM_OBJ, WT_MEM_S_WIN)
	case tokenizer.TOK_PCR:
		return memCtrl(machine.RC_PDC_OBJ, WT_PDC_S_WIN)
	case tokenizer.TOK_IOR:
		return memCtrl(machine.RC_IO_OBJ, WT_IO_S_WIN)
	case tokenizer.TOK_TX:
		if arg == "" {
			return nil, simerr.ERR_EXPECTED_FILE_NAME
		}

		w := &Text{fileName: arg}
		w.winType = WT_TEXT_WIN

		return w, nil
	case tokenizer.TOK_CW:
		return &Console{Base: Base{winType: WT_CONSOLE_WIN}}, nil
	}

	return nil, simerr.ERR_INVALID_WIN_TYPE
}

// WindowNew creates a user window in the first free slot and makes it the
// current window. arg is the file name of a text window.
func (d *Display) WindowNew(tid tokenizer.TokId, arg string) (int, error) {
	if !d.ValidUserWindowType(tid) {
		return 0, simerr.ERR_INVALID_WIN_TYPE
	}

	n := FIRST_UWIN
	for n <= LAST_UWIN && d.windows[n] != nil {
		n++
	}

	if n > LAST_UWIN {
		return 0, simerr.ERR_OUT_OF_WINDOWS
	}

	w, err := d.newWindow(tid, arg)
	if err != nil {
		return 0, err
	}

	d.install(n, w)
	w.Win().SetEnable(true)
	d.current = n

	return n, nil
}

func orderRange(start, end int) (int, int) {
	if start > end {
		return end, start
	}

	return start, end
}

// WindowKill removes the user windows in [start, end]. When the current
// window goes, the first remaining user window becomes current, or none.
func (d *Display) WindowKill(start, end int) error {
	start, end = orderRange(start, end)

	if start < FIRST_UWIN || end > LAST_UWIN {
		return simerr.ERR_INVALID_WIN_ID
	}

	for i := start; i <= end; i++ {
		if text, ok := d.windows[i].(*Text); ok {
			text.Close()
		}

		d.windows[i] = nil
	}

	if !d.ValidUserWindowNum(d.current) {
		d.current = 0

		for i := FIRST_UWIN; i <= LAST_UWIN; i++ {
			if d.windows[i] != nil {
				d.current = i
				break
			}
		}
	}

	return nil
}

// WindowSetStack moves the user windows in [start, end] to stack.
func (d *Display) WindowSetStack(stack, start, end int) error {
	if !d.ValidWindowStackNum(stack) {
		return simerr.ERR_INVALID_WIN_STACK_ID
	}

	start, end = orderRange(start, end)

	if start < FIRST_UWIN || end > LAST_UWIN {
		return simerr.ERR_INVALID_WIN_ID
	}

	for i := start; i <= end; i++ {
		if d.windows[i] != nil {
			d.windows[i].Win().SetStack(stack)
			d.current = i
		}
	}

	return nil
}
