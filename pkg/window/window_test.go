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

package window_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/console"
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/outbuf"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
	"github.com/lassandro/vcpu32sim/pkg/window"
)

// screen is a terminal stand-in that understands cursor positioning and
// erasing the display. Other escape sequences are dropped.
type screen struct {
	cells    map[int][]rune
	row, col int
	esc      []byte
}

func newScreen() *screen {
	return &screen{cells: make(map[int][]rune), row: 1, col: 1}
}

func (s *screen) Write(p []byte) (int, error) {
	for _, ch := range string(p) {
		switch {
		case s.esc != nil:
			s.esc = append(s.esc, string(ch)...)

			if len(s.esc) > 1 && ch >= 0x40 && ch <= 0x7E {
				s.control(string(s.esc[1 : len(s.esc)-1]), ch)
				s.esc = nil
			}

		case ch == 0x1B:
			s.esc = []byte{}

		case ch == '\n':
			s.row++
			s.col = 1

		default:
			s.put(ch)
		}
	}

	return len(p), nil
}

func (s *screen) control(params string, final rune) {
	switch final {
	case 'H':
		parts := strings.Split(params, ";")
		if len(parts) == 2 {
			s.row, _ = strconv.Atoi(parts[0])
			s.col, _ = strconv.Atoi(parts[1])
		}

	case 'J':
		s.cells = make(map[int][]rune)
	}
}

func (s *screen) put(ch rune) {
	line := s.cells[s.row]

	for len(line) < s.col {
		line = append(line, ' ')
	}

	line[s.col-1] = ch
	s.cells[s.row] = line
	s.col++
}

func (s *screen) Row(n int) string {
	return string(s.cells[n])
}

type fixture struct {
	scr     *screen
	mc      *machine.Machine
	display *window.Display
}

func newFixture(t *testing.T) *fixture {
	tab := env.New(0)
	if err := tab.SetupPredefined(); err != nil {
		t.Fatal(err)
	}

	cfg, err := machine.NewConfig(machine.DefaultSizing())
	if err != nil {
		t.Fatal(err)
	}

	devOut := outbuf.New(1024)
	mc := machine.New(cfg, &machine.DeviceHandler{Display: devOut})
	scr := newScreen()

	ctx := &window.Context{
		Con:    console.NewStream(strings.NewReader(""), scr, false),
		Env:    tab,
		Mc:     mc,
		Out:    outbuf.New(outbuf.DEFAULT_CAPACITY),
		DevOut: devOut,
	}

	return &fixture{scr: scr, mc: mc, display: window.New(ctx)}
}

func (fx *fixture) newWindow(t *testing.T, tid tokenizer.TokId, arg string) int {
	n, err := fx.display.WindowNew(tid, arg)
	if err != nil {
		t.Fatal(err)
	}

	return n
}

func scroll(d *window.Display, n int) *window.Scrollable {
	return d.Window(n).(window.Scroller).Scroll()
}

func TestScrollBounds(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	n := fx.newWindow(t, tokenizer.TOK_IT, "")
	win := scroll(fx.display, n)

	// Five rows show four entries of a 1024 entry TLB.
	limit := win.LimitItemAdr() - uint32(win.Rows()-1)*win.LineIncrement()
	assert.Equal(uint32(1020), limit)

	type testCase struct {
		Name string
		Op   func() error
		Want uint32
	}

	tests := []testCase{
		{"page forward", func() error { return fx.display.WindowForward(0, n) }, 4},
		{"forward", func() error { return fx.display.WindowForward(10, n) }, 14},
		{"forward past limit", func() error { return fx.display.WindowForward(5000, n) }, 1020},
		{"forward at limit", func() error { return fx.display.WindowForward(1, n) }, 1020},
		{"backward", func() error { return fx.display.WindowBackward(3, n) }, 1017},
		{"backward past zero", func() error { return fx.display.WindowBackward(5000, n) }, 0},
		{"page backward at zero", func() error { return fx.display.WindowBackward(0, 0) }, 0},
		{"home clamps", func() error { return fx.display.WindowHome(4000, n) }, 1020},
		{"jump", func() error { return fx.display.WindowJump(7, n) }, 7},
		{"home", func() error { return fx.display.WindowHome(0, n) }, 1020},
	}

	for _, test := range tests {
		assert.NoError(test.Op(), test.Name)
		assert.Equal(test.Want, win.CurrentItemAdr(), test.Name)
		assert.LessOrEqual(win.CurrentItemAdr(), limit, test.Name)
	}

	assert.Equal(uint32(1020), win.HomeItemAdr())
}

func TestScrollShortRange(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	n := fx.newWindow(t, tokenizer.TOK_IT, "")
	win := scroll(fx.display, n)

	// A window taller than the range never scrolls.
	win.SetLimitItemAdr(3)

	assert.NoError(fx.display.WindowForward(0, n))
	assert.Equal(uint32(0), win.CurrentItemAdr())

	assert.NoError(fx.display.WindowHome(2, n))
	assert.Equal(uint32(0), win.HomeItemAdr())
}

func TestLayout(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	d.WindowsOn()
	assert.NoError(d.WindowEnable(tokenizer.CMD_PSE, 0, true))
	assert.NoError(d.WindowEnable(tokenizer.CMD_PLE, 0, true))
	d.ReDraw(false)

	ps := d.Window(window.PS_REG_WIN).Win()
	pl := d.Window(window.PL_REG_WIN).Win()
	cmd := d.CmdWin()

	assert.Equal(24-(ps.Rows()+pl.Rows()), cmd.Rows())

	row, col := ps.Origin()
	assert.Equal(1, row)
	assert.Equal(1, col)

	row, _ = pl.Origin()
	assert.Equal(1+ps.Rows(), row)

	row, _ = cmd.Origin()
	assert.Equal(1+ps.Rows()+pl.Rows(), row)
	assert.Equal(ps.Columns(), cmd.Columns())
	assert.Equal(pl.Columns(), cmd.Columns())

	rows, columns := d.Size()
	assert.Equal(24, rows)
	assert.Equal(cmd.Columns(), columns)

	assert.True(strings.HasPrefix(fx.scr.Row(1), "Program State"))
	assert.True(strings.HasPrefix(fx.scr.Row(5), "Pipeline"))
	assert.True(strings.HasPrefix(fx.scr.Row(9), "Commands"))
}

func TestLayoutCommandRows(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	d.WindowsOn()
	assert.Equal(20, d.CmdWin().Rows())

	assert.NoError(d.WindowSetRows(tokenizer.CMD_CWL, 30, 0))
	d.ReDraw(false)
	assert.Equal(30, d.CmdWin().Rows())

	// The pane shrinks back once it is no longer needed to fill the screen.
	assert.NoError(d.WindowSetRows(tokenizer.CMD_CWL, 5, 0))
	assert.Equal(5, d.CmdWin().BaseRows())
	assert.NoError(d.WindowEnable(tokenizer.CMD_SRE, 0, true))
	d.ReDraw(false)
	assert.Equal(24-9, d.CmdWin().Rows())

	assert.NoError(d.WindowEnable(tokenizer.CMD_PSD, 0, false))
	assert.NoError(d.WindowEnable(tokenizer.CMD_SRD, 0, false))
	d.ReDraw(false)
	assert.Equal(24, d.CmdWin().Rows())
}

func TestLayoutStacks(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	n := fx.newWindow(t, tokenizer.TOK_PM, "")
	assert.NoError(d.WindowSetStack(1, n, n))

	d.WinStacksEnable(true)
	d.WindowsOn()

	ps := d.Window(window.PS_REG_WIN).Win()
	pm := d.Window(n).Win()
	cmd := d.CmdWin()

	row, col := pm.Origin()
	assert.Equal(1, row)
	assert.Equal(ps.Columns()+window.STACK_GAP+1, col)

	_, columns := d.Size()
	assert.Equal(ps.Columns()+window.STACK_GAP+pm.Columns(), columns)
	assert.Equal(columns, cmd.Columns())

	row, _ = cmd.Origin()
	assert.Equal(1+pm.Rows(), row)

	// With stacks off the same windows sit on top of each other.
	d.WinStacksEnable(false)
	d.ReDraw(false)

	row, col = pm.Origin()
	assert.Equal(1+ps.Rows(), row)
	assert.Equal(1, col)

	row, _ = cmd.Origin()
	assert.Equal(1+ps.Rows()+pm.Rows(), row)

	assert.True(errors.Is(d.WindowSetStack(4, n, n), simerr.ERR_INVALID_WIN_STACK_ID))
}

func TestWindowRadix(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display
	ps := d.Window(window.PS_REG_WIN).Win()

	assert.Equal(16, ps.Radix())
	hex := ps.Columns()

	assert.NoError(d.WindowRadix(tokenizer.CMD_PSR, 8, 0))
	assert.Equal(8, ps.Radix())
	assert.Greater(ps.Columns(), hex)

	assert.True(errors.Is(d.WindowRadix(tokenizer.CMD_PSR, 7, 0), simerr.ERR_INVALID_RADIX))
	assert.True(errors.Is(d.WindowRadix(tokenizer.CMD_WR, 10, 0), simerr.ERR_INVALID_WIN_ID))
}

func TestWindowNewKill(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	assert.Equal(window.FIRST_UWIN, fx.newWindow(t, tokenizer.TOK_PM, ""))
	assert.Equal(window.FIRST_UWIN+1, fx.newWindow(t, tokenizer.TOK_PC, ""))
	assert.Equal(window.FIRST_UWIN+2, fx.newWindow(t, tokenizer.TOK_ITR, ""))
	assert.Equal(window.FIRST_UWIN+2, d.CurrentUserWindow())
	assert.True(d.IsCurrentWin(window.FIRST_UWIN + 2))

	assert.Equal(window.WT_ITLB_S_WIN, d.Window(window.FIRST_UWIN+2).Win().Type())

	assert.NoError(d.WindowKill(window.FIRST_UWIN+2, window.FIRST_UWIN+2))
	assert.Equal(window.FIRST_UWIN, d.CurrentUserWindow())

	// The freed slot is reused.
	assert.Equal(window.FIRST_UWIN+2, fx.newWindow(t, tokenizer.TOK_DCR, ""))

	assert.NoError(d.WindowKill(window.LAST_UWIN, window.FIRST_UWIN))
	assert.Equal(0, d.CurrentUserWindow())
	assert.Nil(d.Window(window.FIRST_UWIN))

	assert.True(errors.Is(d.WindowKill(0, 5), simerr.ERR_INVALID_WIN_ID))

	type testCase struct {
		Name string
		Tid  tokenizer.TokId
		Arg  string
		Err  simerr.Code
	}

	tests := []testCase{
		{"no L2 cache", tokenizer.TOK_UC, "", simerr.ERR_WIN_TYPE_NOT_CONFIGURED},
		{"no L2 controller", tokenizer.TOK_UCR, "", simerr.ERR_WIN_TYPE_NOT_CONFIGURED},
		{"text without file", tokenizer.TOK_TX, "", simerr.ERR_EXPECTED_FILE_NAME},
		{"not a window type", tokenizer.TOK_HEX, "", simerr.ERR_INVALID_WIN_TYPE},
	}

	for _, test := range tests {
		_, err := d.WindowNew(test.Tid, test.Arg)
		assert.True(errors.Is(err, test.Err), test.Name)
	}

	for i := window.FIRST_UWIN; i <= window.LAST_UWIN; i++ {
		fx.newWindow(t, tokenizer.TOK_PM, "")
	}

	_, err := d.WindowNew(tokenizer.TOK_PM, "")
	assert.True(errors.Is(err, simerr.ERR_OUT_OF_WINDOWS))
}

func TestWindowExchangeOrder(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	pm := fx.newWindow(t, tokenizer.TOK_PM, "")
	pc := fx.newWindow(t, tokenizer.TOK_PC, "")

	assert.NoError(d.WindowExchangeOrder(pm))
	assert.Equal(window.WT_PC_WIN, d.Window(pm).Win().Type())
	assert.Equal(window.WT_PM_WIN, d.Window(pc).Win().Type())
	assert.Equal(pm, d.Window(pm).Win().Index())
	assert.Equal(pc, d.Window(pc).Win().Index())

	assert.True(errors.Is(d.WindowExchangeOrder(20), simerr.ERR_INVALID_WIN_ID))
}

func TestWindowToggle(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	pm := fx.newWindow(t, tokenizer.TOK_PM, "")
	assert.True(errors.Is(d.WindowToggle(pm), simerr.ERR_INVALID_WIN_TYPE))

	ic := fx.newWindow(t, tokenizer.TOK_IC, "")
	assert.NoError(d.WindowToggle(ic))
	assert.Equal(uint32(0), d.Window(ic).(*window.Cache).Set())

	ctrl := fx.newWindow(t, tokenizer.TOK_MCR, "")
	assert.True(errors.Is(d.WindowForward(0, ctrl), simerr.ERR_INVALID_WIN_TYPE))
}

func TestMemoryWindow(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	fx.mc.PutMemDataWord(0, 0x12345678)
	fx.mc.PutMemDataWord(4, 0xCAFE)

	fx.newWindow(t, tokenizer.TOK_PM, "")
	d.WindowsOn()

	// Program state takes the first four rows.
	assert.Contains(fx.scr.Row(5), "(0:4)  * Main Memory")
	assert.Contains(fx.scr.Row(6), "0x00000000: 0x12345678 0x0000cafe ")
	assert.Contains(fx.scr.Row(7), "0x00000020: ")
}

func TestCodeWindow(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	d := fx.display

	fx.newWindow(t, tokenizer.TOK_PC, "")
	d.WindowsOn()

	assert.Contains(fx.scr.Row(5), "Code Memory")
	assert.True(strings.HasPrefix(fx.scr.Row(6), "0x00000000      >"))
}

func TestTextWindow(t *testing.T) {
	assert := assert.New(t)

	name := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(name, []byte("first line\n\tsecond\nthird"), 0o644); err != nil {
		t.Fatal(err)
	}

	fx := newFixture(t)
	d := fx.display

	n := fx.newWindow(t, tokenizer.TOK_TX, name)
	d.WindowsOn()

	assert.Equal(uint32(3), scroll(d, n).LimitItemAdr())
	assert.Contains(fx.scr.Row(5), "Text: ")
	assert.Contains(fx.scr.Row(6), "    1: first line")
	assert.Contains(fx.scr.Row(7), "    2:     second")
	assert.Contains(fx.scr.Row(8), "    3: third")

	// Reading backwards starts over at the top of the file.
	assert.NoError(d.WindowJump(2, n))
	d.ReDraw(false)
	assert.Contains(fx.scr.Row(6), "    3: third")

	assert.NoError(d.WindowJump(0, n))
	d.ReDraw(false)
	assert.Contains(fx.scr.Row(6), "    1: first line")

	assert.NoError(d.WindowKill(n, n))
}

func TestTextWindowDefaultsKeepLimit(t *testing.T) {
	assert := assert.New(t)

	var text strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&text, "line %d\n", i)
	}

	name := filepath.Join(t.TempDir(), "long.txt")
	if err := os.WriteFile(name, []byte(text.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	fx := newFixture(t)
	d := fx.display

	n := fx.newWindow(t, tokenizer.TOK_TX, name)
	d.WindowsOn()

	s := scroll(d, n)
	assert.Equal(uint32(50), s.LimitItemAdr())

	d.WindowDefaults()
	d.ReDraw(true)
	assert.Equal(uint32(50), s.LimitItemAdr())

	assert.NoError(d.WindowForward(5, n))
	assert.Equal(uint32(5), s.CurrentItemAdr())

	assert.NoError(d.WindowSetRows(tokenizer.CMD_WL, 0, n))
	assert.Equal(uint32(50), s.LimitItemAdr())

	assert.NoError(d.WindowForward(7, n))
	assert.Equal(uint32(7), s.CurrentItemAdr())

	assert.NoError(d.WindowKill(n, n))
}

func TestTextWindowMissingFile(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	fx.newWindow(t, tokenizer.TOK_TX, filepath.Join(t.TempDir(), "missing.txt"))
	fx.display.WindowsOn()

	assert.Contains(fx.scr.Row(6), "Error opening the text file")
}

func TestCommandPane(t *testing.T) {
	assert := assert.New(t)

	tab := env.New(0)
	assert.NoError(tab.SetupPredefined())

	cfg, err := machine.NewConfig(machine.DefaultSizing())
	assert.NoError(err)

	scr := newScreen()
	out := outbuf.New(outbuf.DEFAULT_CAPACITY)

	d := window.New(&window.Context{
		Con:    console.NewStream(strings.NewReader(""), scr, false),
		Env:    tab,
		Mc:     machine.New(cfg, &machine.DeviceHandler{}),
		Out:    out,
		DevOut: outbuf.New(64),
	})

	for i := 1; i <= 30; i++ {
		out.Printf("output %d\n", i)
	}

	d.WindowsOn()

	// 20 pane rows: a banner, 18 output lines and the input line.
	top, _ := d.CmdWin().Origin()
	assert.True(strings.HasPrefix(scr.Row(top), "Commands"))
	assert.True(strings.HasPrefix(scr.Row(top+1), "output 13"))
	assert.True(strings.HasPrefix(scr.Row(top+18), "output 30"))

	out.ScrollUp(2)
	d.ReDraw(false)
	assert.True(strings.HasPrefix(scr.Row(top+18), "output 28"))
}

func TestFieldTruncation(t *testing.T) {
	assert := assert.New(t)

	fx := newFixture(t)
	long := filepath.Join(t.TempDir(), strings.Repeat("d", 60), "prog.txt")

	fx.newWindow(t, tokenizer.TOK_TX, long)
	fx.display.WindowsOn()

	// The file name field keeps the tail of a long path.
	assert.Contains(fx.scr.Row(5), "Text: ...")
	assert.Contains(fx.scr.Row(5), "/prog.txt")
}
