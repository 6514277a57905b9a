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
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
	"github.com/lassandro/vcpu32sim/pkg/window"
)

// Window numbers are entered as expressions. Negative values are kept so
// that -1 can select every user window.
func (sim *Simulator) parseWinNum(missing simerr.Code) (int, error) {
	val, err := sim.parseNumArg(missing, simerr.ERR_INVALID_WIN_ID)
	if err != nil {
		return 0, err
	}

	return int(int32(val)), nil
}

// Parses an optional ", n" window number. Zero selects the current window.
func (sim *Simulator) parseOptWinNum() (int, error) {
	tk := sim.tk

	if !tk.Is(tokenizer.TOK_COMMA) {
		return 0, nil
	}

	if err := tk.Next(); err != nil {
		return 0, err
	}

	return sim.parseWinNum(simerr.ERR_EXPECTED_WIN_ID)
}

// Parses a radix given as HEX, OCT, DEC or a number. A missing radix selects
// the default.
func (sim *Simulator) parseRadix() (int, error) {
	tk := sim.tk

	if !sim.hasArg() {
		return sim.defaultRadix(), nil
	}

	switch tk.Token().Tid {
	case tokenizer.TOK_HEX, tokenizer.TOK_OCT, tokenizer.TOK_DEC:
		rdx := int(tk.Token().Val)
		return rdx, tk.Next()
	}

	pos := tk.Token().Pos

	val, err := sim.ev.ParseNum(simerr.ERR_INVALID_RADIX)
	if err != nil {
		return 0, err
	}

	if val != 8 && val != 10 && val != 16 {
		return 0, simerr.At(simerr.ERR_INVALID_RADIX, pos)
	}

	return int(val), nil
}

// Parses an optional leading amount followed by an optional window number.
func (sim *Simulator) parseAmountWin(def uint32) (uint32, int, error) {
	amt := def

	if sim.hasArg() {
		val, err := sim.ev.ParseNum(simerr.ERR_INVALID_NUM)
		if err != nil {
			return 0, 0, err
		}

		amt = val
	}

	n, err := sim.parseOptWinNum()
	if err != nil {
		return 0, 0, err
	}

	return amt, n, sim.tk.CheckEOS()
}

// Parses "[start[,end]]". A missing start selects the current window, a
// missing end repeats start and -1 spans every user window.
func (sim *Simulator) parseWinRange() (int, int, error) {
	tk := sim.tk
	d := sim.Display

	start := d.CurrentUserWindow()

	if sim.hasArg() {
		n, err := sim.parseWinNum(simerr.ERR_EXPECTED_WIN_ID)
		if err != nil {
			return 0, 0, err
		}

		start = n
	}

	end := start

	if tk.Is(tokenizer.TOK_COMMA) {
		if err := tk.Next(); err != nil {
			return 0, 0, err
		}

		n, err := sim.parseWinNum(simerr.ERR_EXPECTED_WIN_ID)
		if err != nil {
			return 0, 0, err
		}

		end = n
	}

	if err := tk.CheckEOS(); err != nil {
		return 0, 0, err
	}

	if start == -1 {
		return window.FIRST_UWIN, window.LAST_UWIN, nil
	}

	if start == 0 {
		return 0, 0, simerr.New(simerr.ERR_INVALID_WIN_ID)
	}

	return start, end, nil
}

func (sim *Simulator) windowCommand(cmd tokenizer.TokId) error {
	d := sim.Display

	if cmd == tokenizer.CMD_WON {
		if err := sim.tk.CheckEOS(); err != nil {
			return err
		}

		if !d.On() {
			d.WindowsOn()
		}

		d.ReDraw(true)

		return nil
	}

	if !d.On() {
		return simerr.New(simerr.ERR_NOT_IN_WIN_MODE)
	}

	switch cmd {
	case tokenizer.CMD_WOFF:
		if err := sim.tk.CheckEOS(); err != nil {
			return err
		}

		d.WindowsOff()

		return nil

	case tokenizer.CMD_WDEF:
		if err := sim.tk.CheckEOS(); err != nil {
			return err
		}

		d.WindowDefaults()

	case tokenizer.CMD_WSE, tokenizer.CMD_WSD:
		if err := sim.tk.CheckEOS(); err != nil {
			return err
		}

		d.WinStacksEnable(cmd == tokenizer.CMD_WSE)

	case tokenizer.CMD_PSE, tokenizer.CMD_SRE, tokenizer.CMD_PLE, tokenizer.CMD_SWE, tokenizer.CMD_WE:
		if err := sim.winEnableCmd(cmd, true); err != nil {
			return err
		}

	case tokenizer.CMD_PSD, tokenizer.CMD_SRD, tokenizer.CMD_PLD, tokenizer.CMD_SWD, tokenizer.CMD_WD:
		if err := sim.winEnableCmd(cmd, false); err != nil {
			return err
		}

	case tokenizer.CMD_PSR, tokenizer.CMD_SRR, tokenizer.CMD_PLR, tokenizer.CMD_SWR, tokenizer.CMD_WR:
		return sim.winRadixCmd(cmd)

	case tokenizer.CMD_WF, tokenizer.CMD_WB, tokenizer.CMD_WH, tokenizer.CMD_WJ:
		return sim.winScrollCmd(cmd)

	case tokenizer.CMD_WL, tokenizer.CMD_CWL:
		if err := sim.winRowsCmd(cmd); err != nil {
			return err
		}

	case tokenizer.CMD_WC:
		n, err := sim.parseWinNum(simerr.ERR_EXPECTED_WIN_ID)
		if err != nil {
			return err
		}

		if err := sim.tk.CheckEOS(); err != nil {
			return err
		}

		return d.WindowCurrent(n)

	case tokenizer.CMD_WT:
		n := 0

		if sim.hasArg() {
			val, err := sim.parseWinNum(simerr.ERR_EXPECTED_WIN_ID)
			if err != nil {
				return err
			}

			n = val
		}

		if err := sim.tk.CheckEOS(); err != nil {
			return err
		}

		return d.WindowToggle(n)

	case tokenizer.CMD_WX:
		n, err := sim.parseWinNum(simerr.ERR_EXPECTED_WIN_ID)
		if err != nil {
			return err
		}

		if err := sim.tk.CheckEOS(); err != nil {
			return err
		}

		if err := d.WindowExchangeOrder(n); err != nil {
			return err
		}

	case tokenizer.CMD_WN:
		if err := sim.winNewCmd(); err != nil {
			return err
		}

	case tokenizer.CMD_WK:
		start, end, err := sim.parseWinRange()
		if err != nil {
			return err
		}

		if err := d.WindowKill(start, end); err != nil {
			return err
		}

	case tokenizer.CMD_WS:
		if err := sim.winStackCmd(); err != nil {
			return err
		}

	default:
		return simerr.New(simerr.ERR_INVALID_CMD)
	}

	d.ReDraw(true)

	return nil
}

// The fixed window commands take no window number.
func (sim *Simulator) winEnableCmd(cmd tokenizer.TokId, show bool) error {
	n := 0

	if cmd == tokenizer.CMD_WE || cmd == tokenizer.CMD_WD {
		if sim.hasArg() {
			val, err := sim.parseWinNum(simerr.ERR_EXPECTED_WIN_ID)
			if err != nil {
				return err
			}

			n = val
		}
	}

	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	return sim.Display.WindowEnable(cmd, n, show)
}

func (sim *Simulator) winRadixCmd(cmd tokenizer.TokId) error {
	rdx, err := sim.parseRadix()
	if err != nil {
		return err
	}

	n, err := sim.parseOptWinNum()
	if err != nil {
		return err
	}

	if err := sim.tk.CheckEOS(); err != nil {
		return err
	}

	return sim.Display.WindowRadix(cmd, rdx, n)
}

// WF and WB move by one window page when no amount is given. WH without a
// position returns to the current home.
func (sim *Simulator) winScrollCmd(cmd tokenizer.TokId) error {
	d := sim.Display

	if cmd == tokenizer.CMD_WJ && !sim.hasArg() {
		return sim.fail(simerr.ERR_EXPECTED_NUMERIC)
	}

	amt, n, err := sim.parseAmountWin(0)
	if err != nil {
		return err
	}

	switch cmd {
	case tokenizer.CMD_WF:
		return d.WindowForward(amt, n)
	case tokenizer.CMD_WB:
		return d.WindowBackward(amt, n)
	case tokenizer.CMD_WH:
		return d.WindowHome(amt, n)
	}

	return d.WindowJump(amt, n)
}

// WL rows[,n] and CWL rows. Without a row count the default height returns.
func (sim *Simulator) winRowsCmd(cmd tokenizer.TokId) error {
	rows, n, err := sim.parseAmountWin(0)
	if err != nil {
		return err
	}

	return sim.Display.WindowSetRows(cmd, int(int32(rows)), n)
}

// WN type[,"arg"]
func (sim *Simulator) winNewCmd() error {
	tk := sim.tk
	tok := tk.Token()

	if !tk.IsType(tokenizer.TYP_SYM) {
		return sim.fail(simerr.ERR_EXPECTED_WIN_TYPE)
	}

	if !sim.Display.ValidUserWindowType(tok.Tid) {
		return sim.fail(simerr.ERR_INVALID_WIN_TYPE)
	}

	if err := tk.Next(); err != nil {
		return err
	}

	arg := ""

	if tk.Is(tokenizer.TOK_COMMA) {
		if err := tk.Next(); err != nil {
			return err
		}

		if !tk.IsType(tokenizer.TYP_STR) {
			return sim.fail(simerr.ERR_INVALID_ARG)
		}

		arg = tk.Token().Str

		if err := tk.Next(); err != nil {
			return err
		}
	}

	if err := tk.CheckEOS(); err != nil {
		return err
	}

	_, err := sim.Display.WindowNew(tok.Tid, arg)

	return err
}

// WS stack[,start[,end]]
func (sim *Simulator) winStackCmd() error {
	tk := sim.tk

	stack, err := sim.parseNumArg(simerr.ERR_EXPECTED_STACK_ID, simerr.ERR_INVALID_WIN_STACK_ID)
	if err != nil {
		return err
	}

	if !tk.IsEOS() {
		if err := tk.AcceptComma(); err != nil {
			return err
		}
	}

	start, end, err := sim.parseWinRange()
	if err != nil {
		return err
	}

	return sim.Display.WindowSetStack(int(int32(stack)), start, end)
}
