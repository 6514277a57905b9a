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
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/lassandro/vcpu32sim/pkg/assembler"
)

var cli struct {
	Disasm  bool     `short:"d" help:"Disassembles instruction words instead of assembling source lines."`
	Radix   int      `short:"r" default:"16" enum:"8,10,16" help:"Radix for immediates in disassembled output."`
	Verbose bool     `short:"v" help:"Dumps each decoded instruction to stderr."`
	Files   []string `arg:"" optional:"" type:"existingfile" help:"Input files, stdin when none are given."`
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func verboseWriter() (io.Writer, *pp.PrettyPrinter) {
	printer := pp.New()

	if isatty.IsTerminal(os.Stderr.Fd()) {
		return colorable.NewColorableStderr(), printer
	}

	printer.SetColoringEnabled(false)
	return os.Stderr, printer
}

// Prints err followed by the offending source line with the token underlined.
func reportError(err error, lines []string) {
	tokenErr, ok := err.(assembler.TokenError)
	if !ok {
		log.Println(err)
		return
	}

	cursor := tokenErr.GetPosition()

	if cursor.Line < 1 || cursor.Line > len(lines) {
		log.Println(err)
		return
	}

	underlinefmt := fmt.Sprintf(
		"%% %ds%s",
		cursor.Column+1,
		strings.Repeat("~", cursor.Size-1),
	)

	log.Printf(
		"%s\n%s\n\033[31m%s\033[0m",
		err,
		lines[cursor.Line-1],
		fmt.Sprintf(underlinefmt, "^"),
	)
}

func assemble(src []byte, out io.Writer) bool {
	result, errs := assembler.AssembleSource(bytes.NewReader(src))

	if len(errs) > 0 {
		lines := strings.Split(string(src), "\n")

		for _, err := range errs {
			reportError(err, lines)
		}

		return false
	}

	var w io.Writer
	var printer *pp.PrettyPrinter

	if cli.Verbose {
		w, printer = verboseWriter()
	}

	for _, word := range result {
		fmt.Fprintf(out, "0x%08x\n", word)

		if printer != nil {
			opCode, operands := assembler.DisassembleParts(word, cli.Radix)
			printer.Fprintf(w, "%08x: %v %v\n", word, opCode, operands)
		}
	}

	return true
}

func disassemble(src []byte, out io.Writer) bool {
	ok := true

	for num, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		word, err := strconv.ParseUint(line, 0, 32)
		if err != nil {
			log.Printf("%02d: Invalid instruction word %q", num+1, line)
			ok = false
			continue
		}

		fmt.Fprintln(out, assembler.Disassemble(uint32(word), cli.Radix))
	}

	return ok
}

func process(name string, src []byte) bool {
	log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", name))

	if cli.Disasm {
		return disassemble(src, os.Stdout)
	}

	return assemble(src, os.Stdout)
}

func vcpu32_asm() int {
	kong.Parse(
		&cli,
		kong.Name("vcpu32-asm"),
		kong.Description("One instruction per line VCPU-32 assembler and disassembler."),
	)

	if len(cli.Files) == 0 {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Println(err)
			return 1
		}

		if !process("<stdin>", src) {
			return 1
		}

		return 0
	}

	status := 0

	for _, file := range cli.Files {
		src, err := os.ReadFile(file)
		if err != nil {
			log.Println(err)
			return 1
		}

		if !process(filepath.Base(file), src) {
			status = 1
		}
	}

	return status
}

func main() {
	os.Exit(vcpu32_asm())
}
