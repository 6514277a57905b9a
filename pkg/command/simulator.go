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

// Package command implements the simulator command interpreter: the read,
// evaluate and print loop, every command handler and the help tables.
package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lassandro/vcpu32sim/pkg/console"
	"github.com/lassandro/vcpu32sim/pkg/debugger"
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/expr"
	"github.com/lassandro/vcpu32sim/pkg/history"
	"github.com/lassandro/vcpu32sim/pkg/machine"
	"github.com/lassandro/vcpu32sim/pkg/outbuf"
	"github.com/lassandro/vcpu32sim/pkg/simerr"
	"github.com/lassandro/vcpu32sim/pkg/tokenizer"
	"github.com/lassandro/vcpu32sim/pkg/window"
)

// Clocks RUN executes at most when no key press can stop it.
const RUN_CYCLE_LIMIT uint64 = 50_000_000

// Simulator is the state shared by all commands. Everything is owned by the
// command loop; nothing here is safe for concurrent use.
type Simulator struct {
	Con     *console.Console
	Env     *env.Table
	Hist    history.History
	Out     *outbuf.Buffer
	DevOut  *outbuf.Buffer
	Mc      *machine.Machine
	Dbg     *debugger.Debugger
	Display *window.Display

	tk *tokenizer.Tokenizer
	ev *expr.Evaluator

	prefill  string
	exit     bool
	exitCode int
}

// Forwards what the simulated program writes to the console device. Outside
// window mode the characters also go straight to the terminal.
type deviceWriter struct {
	sim *Simulator
}

func (dw deviceWriter) Write(p []byte) (int, error) {
	dw.sim.DevOut.Write(p)

	if dw.sim.Display != nil && !dw.sim.Display.On() {
		return dw.sim.Con.Write(p)
	}

	return len(p), nil
}

// Builds the machine configuration from the sizing variables.
func sizing(tab *env.Table) machine.Sizing {
	def := machine.DefaultSizing()

	get := func(name string, val uint32) uint32 {
		return tab.GetUint(name, val)
	}

	return machine.Sizing{
		ITlbSets:       get(env.ENV_I_TLB_SETS, def.ITlbSets),
		ITlbSize:       get(env.ENV_I_TLB_SIZE, def.ITlbSize),
		DTlbSets:       get(env.ENV_D_TLB_SETS, def.DTlbSets),
		DTlbSize:       get(env.ENV_D_TLB_SIZE, def.DTlbSize),
		ICacheSets:     get(env.ENV_I_CACHE_SETS, def.ICacheSets),
		ICacheSize:     get(env.ENV_I_CACHE_SIZE, def.ICacheSize),
		ICacheLineSize: get(env.ENV_I_CACHE_LINE_SIZE, def.ICacheLineSize),
		DCacheSets:     get(env.ENV_D_CACHE_SETS, def.DCacheSets),
		DCacheSize:     get(env.ENV_D_CACHE_SIZE, def.DCacheSize),
		DCacheLineSize: get(env.ENV_D_CACHE_LINE_SIZE, def.DCacheLineSize),
		MemSize:        get(env.ENV_MEM_SIZE, def.MemSize),
		MemBanks:       get(env.ENV_MEM_BANKS, def.MemBanks),
		MemBankSize:    get(env.ENV_MEM_BANK_SIZE, def.MemBankSize),
	}
}

// New builds a simulator talking to con. The environment is seeded with the
// predefined variables and the machine is sized from them.
func New(con *console.Console) (*Simulator, error) {
	sim := &Simulator{
		Con:    con,
		Env:    env.New(0),
		Out:    outbuf.New(outbuf.DEFAULT_CAPACITY),
		DevOut: outbuf.New(outbuf.DEFAULT_CAPACITY),
		Dbg:    &debugger.Debugger{},
	}

	if err := sim.Env.SetupPredefined(); err != nil {
		return nil, err
	}

	cfg, err := machine.NewConfig(sizing(sim.Env))
	if err != nil {
		return nil, err
	}

	sim.Mc = machine.New(cfg, &machine.DeviceHandler{Display: deviceWriter{sim}})
	sim.Mc.Debugger = sim.Dbg

	sim.Display = window.New(&window.Context{
		Con:    con,
		Env:    sim.Env,
		Mc:     sim.Mc,
		Out:    sim.Out,
		DevOut: sim.DevOut,
	})

	sim.tk = tokenizer.New(tokenizer.CmdTable)
	sim.ev = expr.New(sim.tk, sim.Env, sim.Mc)

	return sim, nil
}

// Write records command output in the output buffer. Outside window mode it
// is also printed on the console; in window mode the command pane shows it.
func (sim *Simulator) Write(p []byte) (int, error) {
	sim.Out.Write(p)

	if !sim.Display.On() {
		return sim.Con.Write(p)
	}

	return len(p), nil
}

func (sim *Simulator) printf(format string, args ...interface{}) {
	fmt.Fprintf(sim, format, args...)
}

// Exited reports whether an EXIT command ended the session.
func (sim *Simulator) Exited() bool {
	return sim.exit
}

// ExitCode is the status the process should end with: the EXIT argument, or
// EXIT_CODE clamped to 0..255.
func (sim *Simulator) ExitCode() int {
	if sim.exit {
		return sim.exitCode
	}

	return clampExitCode(sim.Env.GetInt(env.ENV_EXIT_CODE, 0))
}

func clampExitCode(code int32) int {
	switch {
	case code < 0:
		return 0
	case code > 255:
		return 255
	}

	return int(code)
}

func (sim *Simulator) printWelcome() {
	sim.Env.SetInt(env.ENV_EXIT_CODE, 0)

	if !sim.Con.IsConsole() {
		return
	}

	sim.printf("VCPU-32 Simulator, Version: %s, Patch Level: %d\n",
		sim.Env.GetStr(env.ENV_PROG_VERSION, env.Version),
		sim.Env.GetInt(env.ENV_PATCH_LEVEL, int32(env.PatchLevel)))

	sim.printf("Git Branch: %s\n\n", sim.Env.GetStr(env.ENV_GIT_BRANCH, env.GitBranch))
}

func (sim *Simulator) prompt() string {
	if sim.Env.GetBool(env.ENV_SHOW_CMD_CNT, false) {
		return fmt.Sprintf("(%d) ->", sim.Env.GetInt(env.ENV_CMD_CNT, 0))
	}

	return "->"
}

// Run executes the commands of initFile, when given, and then reads commands
// until EXIT or the end of input. It returns the process exit status.
func (sim *Simulator) Run(initFile string) int {
	sim.printWelcome()

	if initFile != "" {
		if err := sim.execFile(initFile); err != nil {
			sim.reportError(err)
		}
	}

	for !sim.exit {
		if err := sim.step(); err != nil {
			if err != io.EOF {
				sim.reportError(err)
			}

			break
		}
	}

	if sim.Display.On() {
		sim.Display.WindowsOff()
	}

	return sim.ExitCode()
}

// Reads and processes one line of input.
func (sim *Simulator) step() error {
	prompt := ""

	if sim.Con.IsConsole() {
		prompt = sim.prompt()
		sim.Con.Printf("%s", prompt)
	}

	line, err := sim.Con.ReadCmdLine(sim.prefill, len(prompt))
	sim.prefill = ""

	if err != nil {
		return err
	}

	switch line {
	case console.WC_CU:
		sim.Out.ScrollUp(1)

	case console.WC_CD:
		sim.Out.ScrollDown(1)

	default:
		if sim.Display.On() {
			fmt.Fprintf(sim.Out, "%s%s\n", prompt, line)
		}

		sim.Eval(line)
	}

	if sim.Display.On() {
		sim.Display.ReDraw(false)
	}

	return nil
}

// Returns line without its comment. A '#' inside a string does not start a
// comment.
func stripComment(line string) string {
	quoted := false

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case '\\':
			if quoted {
				i++
			}
		case '#':
			if !quoted {
				return line[:i]
			}
		}
	}

	return line
}

// Eval processes one command line. A failing command sets EXIT_CODE to -1
// and prints the error.
func (sim *Simulator) Eval(line string) {
	line = strings.TrimSpace(stripComment(line))

	if line == "" {
		return
	}

	if err := sim.dispatch(line); err != nil {
		sim.reportError(err)
	}
}

func (sim *Simulator) reportError(err error) {
	sim.Env.SetInt(env.ENV_EXIT_CODE, -1)
	sim.printf("%s\n", err)
}

// Adds a line to the history and advances the command counter.
func (sim *Simulator) remember(line string) {
	sim.Hist.Add(line)
	sim.Env.Set(env.ENV_CMD_CNT, env.Int(int32(sim.Hist.NextCmdNum())))
}

func (sim *Simulator) dispatch(line string) error {
	tk := sim.tk
	tk.Setup(line)

	err := tk.Next()

	if err != nil || !tk.Is(tokenizer.CMD_HIST) && !tk.Is(tokenizer.CMD_DO) && !tk.Is(tokenizer.CMD_REDO) {
		sim.remember(line)
	}

	if err != nil {
		return err
	}

	if !tk.IsType(tokenizer.TYP_CMD) && !tk.IsType(tokenizer.TYP_WCMD) {
		return simerr.At(simerr.ERR_INVALID_CMD, tk.Pos())
	}

	cmd := tk.Token().Tid

	if err := tk.Next(); err != nil {
		return err
	}

	sim.Display.SetCurrentCmd(cmd)

	if cmd > tokenizer.WCMD_SET && cmd < tokenizer.PF_SET {
		return sim.windowCommand(cmd)
	}

	switch cmd {
	case tokenizer.CMD_EXIT:
		return sim.exitCmd()
	case tokenizer.CMD_HELP:
		return sim.helpCmd()
	case tokenizer.CMD_ENV:
		return sim.envCmd()
	case tokenizer.CMD_XF:
		return sim.execFileCmd()
	case tokenizer.CMD_WRITE_LINE:
		return sim.writeLineCmd()
	case tokenizer.CMD_HIST:
		return sim.histCmd()
	case tokenizer.CMD_DO:
		return sim.doCmd()
	case tokenizer.CMD_REDO:
		return sim.redoCmd()
	case tokenizer.CMD_RESET:
		return sim.resetCmd()
	case tokenizer.CMD_RUN:
		return sim.runCmd()
	case tokenizer.CMD_STEP:
		return sim.stepCmd()
	case tokenizer.CMD_B:
		return sim.breakCmd(true)
	case tokenizer.CMD_BD:
		return sim.breakCmd(false)
	case tokenizer.CMD_BL:
		return sim.breakListCmd()
	case tokenizer.CMD_DR:
		return sim.displayRegCmd()
	case tokenizer.CMD_MR:
		return sim.modifyRegCmd()
	case tokenizer.CMD_DA:
		return sim.displayAbsMemCmd()
	case tokenizer.CMD_MA:
		return sim.modifyAbsMemCmd()
	case tokenizer.CMD_D_CACHE:
		return sim.displayCacheCmd()
	case tokenizer.CMD_P_CACHE:
		return sim.purgeCacheCmd()
	case tokenizer.CMD_D_TLB:
		return sim.displayTlbCmd()
	case tokenizer.CMD_I_TLB:
		return sim.insertTlbCmd()
	case tokenizer.CMD_P_TLB:
		return sim.purgeTlbCmd()
	}

	return simerr.New(simerr.ERR_INVALID_CMD)
}

// Executes every line of a command file. Processing stops early when a
// command exits the simulator.
func (sim *Simulator) execFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return simerr.WithArg(simerr.ERR_OPEN_EXEC_FILE, path)
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	echo := sim.Env.GetBool(env.ENV_ECHO_CMD_INPUT, false)

	for scanner.Scan() && !sim.exit {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		if echo {
			sim.printf("%s%s\n", sim.prompt(), line)
		}

		sim.Eval(line)
	}

	return scanner.Err()
}
