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

package command_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/vcpu32sim/pkg/command"
	"github.com/lassandro/vcpu32sim/pkg/console"
	"github.com/lassandro/vcpu32sim/pkg/env"
	"github.com/lassandro/vcpu32sim/pkg/machine"
)

func newSimulator(t *testing.T, input string, edit bool) *command.Simulator {
	con := console.NewStream(strings.NewReader(input), &bytes.Buffer{}, edit)

	sim, err := command.New(con)
	if err != nil {
		t.Fatalf("creating simulator: %v", err)
	}

	return sim
}

// Evaluates the lines and returns the output they produced.
func eval(sim *command.Simulator, lines ...string) string {
	sim.Out.Reset()

	for _, line := range lines {
		sim.Eval(line)
	}

	return sim.Out.String()
}

func TestCommandOutput(t *testing.T) {
	type testCase struct {
		Lines    []string
		Contains []string
		Excludes []string
	}

	testCases := []testCase{
		{
			Lines:    []string{"W 1+2"},
			Contains: []string{"0x00000003\n"},
		},
		{
			Lines:    []string{"W 10, DEC"},
			Contains: []string{"10\n"},
		},
		{
			Lines:    []string{"W 8, OCT"},
			Contains: []string{"010\n"},
		},
		{
			Lines:    []string{`W "a#b" # trailing comment`},
			Contains: []string{"\"a#b\"\n"},
		},
		{
			Lines:    []string{"W ASM(\"NOP\"), HEX"},
			Contains: []string{"0x"},
		},
		{
			Lines:    []string{"   ", "# only a comment"},
			Excludes: []string{"Error"},
		},
		{
			Lines:    []string{"ENV RDX_DEFAULT 8", "ENV RDX_DEFAULT"},
			Contains: []string{"RDX_DEFAULT", "NUM:     8"},
		},
		{
			Lines:    []string{"ENV RDX_DEFAULT 7", "ENV RDX_DEFAULT"},
			Contains: []string{"Invalid radix", "NUM:     16"},
			Excludes: []string{"NUM:     7"},
		},
		{
			Lines:    []string{`ENV PROG_VERSION "changed"`, "ENV PROG_VERSION"},
			Contains: []string{"ENV variable is read only"},
			Excludes: []string{"changed\""},
		},
		{
			Lines:    []string{"ENV PATCH_LEVEL 99", "ENV GIT_BRANCH \"x\""},
			Contains: []string{"read only: \"PATCH_LEVEL\"", "read only: \"GIT_BRANCH\""},
		},
		{
			Lines:    []string{"ENV _FOO 5", "W _FOO + 1, DEC"},
			Contains: []string{"6\n"},
			Excludes: []string{"Invalid char"},
		},
		{
			Lines:    []string{"ENV MY_VAR \"hello\"", "ENV MY_VAR"},
			Contains: []string{"STR:     \"hello\""},
		},
		{
			Lines:    []string{"ENV CMD_CNT 5"},
			Contains: []string{"ENV variable is read only"},
		},
		{
			Lines:    []string{"ENV NO_SUCH_VAR"},
			Contains: []string{"ENV variable not found"},
		},
		{
			Lines:    []string{"MR R0 0x1FFFFFFFF"},
			Contains: []string{"Invalid number"},
		},
		{
			Lines:    []string{"MR R3 0x1234", "DR R3"},
			Contains: []string{"R3=0x00001234"},
		},
		{
			Lines:    []string{"MR R9, 5", "DR GR"},
			Contains: []string{"R8=", "0x00000005"},
		},
		{
			Lines:    []string{"DR EX_REGS"},
			Contains: []string{"EX_PSW0", "EX_INSTR"},
		},
		{
			Lines:    []string{"DR UCL2"},
			Contains: []string{"cache"},
		},
		{
			Lines:    []string{"MA 0x100 0x12345678", "DA 0x100"},
			Contains: []string{"0x00000100: 0x12345678"},
		},
		{
			Lines:    []string{"DA 0xFFFFFFF0, 0x20"},
			Contains: []string{"Offset/Length exceeds limit"},
		},
		{
			Lines:    []string{"FOO"},
			Contains: []string{"Invalid command"},
		},
		{
			Lines:    []string{"EXIT 256"},
			Contains: []string{"Invalid program exit code"},
		},
		{
			Lines:    []string{"RESET BOGUS"},
			Contains: []string{"Invalid argument"},
		},
		{
			Lines:    []string{"STEP 1, X"},
			Contains: []string{"Invalid steps/instr option"},
		},
		{
			Lines:    []string{"PSE"},
			Contains: []string{"Command only valid in Windows mode"},
		},
		{
			Lines:    []string{"B 0x40", "B 0x80", "BL"},
			Contains: []string{"0: 0x0000.0x00000040", "1: 0x0000.0x00000080"},
		},
		{
			Lines:    []string{"B 0x40", "BD", "BL"},
			Contains: []string{"No breakpoints set"},
		},
		{
			Lines:    []string{"DCA I 0"},
			Contains: []string{"0x00000000: (0)[vd]"},
		},
		{
			Lines:    []string{"PCA I 0, 99"},
			Contains: []string{"cache set"},
		},
		{
			Lines:    []string{"DTLB X 0"},
			Contains: []string{"TLB"},
		},
		{
			Lines:    []string{"DTLB D 0"},
			Contains: []string{"0x00000000: [vdpd] Acc: (0,0,0)"},
		},
		{
			Lines:    []string{"HELP"},
			Contains: []string{"exit", "dca", "bl"},
			Excludes: []string{"woff"},
		},
		{
			Lines:    []string{"HELP WCOMMANDS"},
			Contains: []string{"woff", "wn"},
		},
		{
			Lines:    []string{"HELP DA"},
			Contains: []string{"da <ofs>"},
		},
		{
			Lines:    []string{"HELP WTYPES"},
			Contains: []string{"PM   - physical memory"},
		},
	}

	for _, test := range testCases {
		assert := assert.New(t)
		sim := newSimulator(t, "", false)

		out := eval(sim, test.Lines...)

		for _, want := range test.Contains {
			assert.Contains(strings.ToLower(out), strings.ToLower(want), test.Lines)
		}

		for _, unwanted := range test.Excludes {
			assert.NotContains(out, unwanted, test.Lines)
		}
	}
}

func TestExitCode(t *testing.T) {
	type testCase struct {
		Lines  []string
		Exited bool
		Code   int
	}

	testCases := []testCase{
		{Lines: []string{"EXIT 3"}, Exited: true, Code: 3},
		{Lines: []string{"E"}, Exited: true, Code: 0},
		{Lines: []string{"EXIT 256"}, Exited: false, Code: 0},
		{Lines: []string{"ENV EXIT_CODE 300", "EXIT"}, Exited: true, Code: 255},
		{Lines: []string{"FOO", "EXIT"}, Exited: true, Code: 0},
	}

	for _, test := range testCases {
		assert := assert.New(t)
		sim := newSimulator(t, "", false)

		eval(sim, test.Lines...)

		assert.Equal(test.Exited, sim.Exited(), test.Lines)
		assert.Equal(test.Code, sim.ExitCode(), test.Lines)
	}
}

func TestFailingCommandSetsExitCode(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "", false)

	eval(sim, "W 1")
	assert.Equal(int32(0), sim.Env.GetInt(env.ENV_EXIT_CODE, 99))

	eval(sim, "MR R0 0x1FFFFFFFF")
	assert.Equal(int32(-1), sim.Env.GetInt(env.ENV_EXIT_CODE, 99))
}

func TestHistory(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "", false)

	eval(sim, "W 5", "W 6")
	assert.Equal(2, sim.Hist.Count())
	assert.Equal(int32(2), sim.Env.GetInt(env.ENV_CMD_CNT, 0))

	out := eval(sim, "DO -2")
	assert.Contains(out, "0x00000005")
	assert.Equal(3, sim.Hist.Count())

	out = eval(sim, "HIST")
	assert.Contains(out, "[0]: W 5")
	assert.Contains(out, "[2]: W 5")
	assert.Equal(3, sim.Hist.Count())

	out = eval(sim, "DO 42")
	assert.Contains(out, "Invalid command Id")
}

func TestCmdLoopRedo(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "W 1+2\nW 3+4\nREDO -2\n\n", true)

	code := sim.Run("")

	assert.Equal(0, code)
	assert.Equal(2, strings.Count(sim.Out.String(), "0x00000003"))
	assert.Equal(1, strings.Count(sim.Out.String(), "0x00000007"))
	assert.Equal(3, sim.Hist.Count())
}

func TestCmdLoopScrollKeys(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "\x1b[A\x1b[B\n", true)

	sim.Run("")

	assert.Equal(0, sim.Hist.Count())
}

func TestCmdLoopExit(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "W 1\nEXIT 4\nW 2\n", false)

	assert.Equal(4, sim.Run(""))
	assert.NotContains(sim.Out.String(), "0x00000002")
}

func TestExecFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "init.cmd")
	assert.NoError(os.WriteFile(path, []byte("W 7\n\nEXIT 2\nW 9\n"), 0644))

	sim := newSimulator(t, "W 11\n", false)

	assert.Equal(2, sim.Run(path))
	assert.Contains(sim.Out.String(), "0x00000007")
	assert.NotContains(sim.Out.String(), "0x00000009")
	assert.NotContains(sim.Out.String(), "0x0000000b")

	out := eval(newSimulator(t, "", false), "XF \"/no/such/file\"")
	assert.Contains(out, "/no/such/file")

	out = eval(newSimulator(t, "", false), "XF 42")
	assert.Contains(out, "Expected a file name")
}

func TestResetAndStep(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "", false)

	eval(sim, "MA 0x100 0xCAFE", "RESET")

	word, ok := sim.Mc.GetMemDataWord(0x100)
	assert.True(ok)
	assert.Equal(uint32(0xCAFE), word)

	eval(sim, "RESET MEM")

	word, _ = sim.Mc.GetMemDataWord(0x100)
	assert.Equal(uint32(0), word)

	out := eval(sim, "STEP 3, C")
	assert.NotContains(out, "Error")
	assert.Equal(uint64(3), sim.Mc.State.Stats.ClockCntr)

	eval(sim, "RESET STATS")
	assert.Equal(uint64(0), sim.Mc.State.Stats.ClockCntr)

	// An interrupt that arrived at the prompt does not cut the next step short.
	sim.Dbg.Break.Store(true)
	out = eval(sim, "STEP 2, C")
	assert.NotContains(out, "Interrupted")
	assert.NotContains(out, "Breakpoint")
	assert.Equal(uint64(2), sim.Mc.State.Stats.ClockCntr)
	assert.False(sim.Dbg.Break.Load())
}

func TestTlbCommands(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "", false)

	out := eval(sim, "ITLB D ADR(1, 0x2000), 0x0, 0x4000")
	assert.NotContains(out, "rror")

	_, ok := sim.Mc.DTlb.LookupTlbEntry(1, 0x2000)
	assert.True(ok)

	out = eval(sim, "ITLB D 0x2000, 0, 0")
	assert.Contains(out, "Expected a virtual address")

	eval(sim, "PTLB D ADR(1, 0x2000)")

	_, ok = sim.Mc.DTlb.LookupTlbEntry(1, 0x2000)
	assert.False(ok)
}

func TestWindowCommands(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "", false)

	eval(sim, "WON")
	assert.True(sim.Display.On())

	eval(sim, "WN PM")
	assert.Equal(4, sim.Display.CurrentUserWindow())

	eval(sim, "WN PC", "WC 4")
	assert.Equal(4, sim.Display.CurrentUserWindow())

	out := eval(sim, "WN XX")
	assert.Contains(out, "window type")

	eval(sim, "WK -1")
	assert.Equal(0, sim.Display.CurrentUserWindow())

	out = eval(sim, "WK")
	assert.Contains(out, "window")

	eval(sim, "WOFF")
	assert.False(sim.Display.On())
}

func TestRegisterClasses(t *testing.T) {
	assert := assert.New(t)
	sim := newSimulator(t, "", false)

	eval(sim, "MR S2 7", "MR C5 9", "MR PSW1 0x44")

	assert.Equal(uint32(7), sim.Mc.GetReg(machine.RC_SEG_REG_SET, 2))
	assert.Equal(uint32(9), sim.Mc.GetReg(machine.RC_CTRL_REG_SET, 5))
	assert.Equal(uint32(0x44), sim.Mc.State.FD.Psw1)

	out := eval(sim, "MR GR 1")
	assert.Contains(out, "Invalid register")
}
