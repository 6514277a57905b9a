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

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"

	"github.com/lassandro/vcpu32sim/pkg/command"
	"github.com/lassandro/vcpu32sim/pkg/console"
)

var cli struct {
	Verbose bool     `short:"v" help:"Dumps the machine configuration and environment at start-up."`
	Init    string   `short:"i" type:"existingfile" placeholder:"FILE" help:"Command file executed before the first prompt."`
	Args    []string `arg:"" optional:"" hidden:""`
}

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func dumpConfig(sim *command.Simulator) {
	printer := pp.New()

	var w io.Writer = os.Stderr

	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = colorable.NewColorableStderr()
	} else {
		printer.SetColoringEnabled(false)
	}

	printer.Fprintf(w, "config: %v\n", sim.Mc.Config)

	for _, entry := range sim.Env.Entries() {
		printer.Fprintf(w, "%s = %v\n", entry.Name, entry.Value)
	}
}

func vcpu32sim() (code int) {
	kong.Parse(
		&cli,
		kong.Name("vcpu32sim"),
		kong.Description("VCPU-32 simulator command interpreter."),
	)

	con := console.New(os.Stdin, os.Stdout)

	if err := con.EnterRawMode(); err != nil {
		log.Println(err)
		return 1
	}

	defer con.Restore()

	stop := con.RestoreOnSignal(os.Exit, unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			con.Restore()
			log.Println(r)
			code = 1
		}
	}()

	sim, err := command.New(con)
	if err != nil {
		log.Println(err)
		return 1
	}

	if cli.Verbose {
		dumpConfig(sim)
	}

	c := make(chan os.Signal, 1)
	defer close(c)

	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	go func() {
		for range c {
			sim.Dbg.Break.Store(true)
		}
	}()

	return sim.Run(cli.Init)
}

func main() {
	os.Exit(vcpu32sim())
}
