package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"jlangc/internal/diagnostics"
	"jlangc/internal/lexer"
	"jlangc/internal/lower"
	"jlangc/internal/nsresolve"
	"jlangc/internal/syntax"
)

var blockHeaderPattern = regexp.MustCompile(`^BB\d+:$`)

// dumpCommand lowers each file and writes its textual MIR dump to
// stdout, colorizing "BB<id>:" headers when stdout is a real terminal.
// Run with --color=always/never to override the isatty check (useful
// when piping through a pager that still wants color).
func dumpCommand(args []string) error {
	color, files := parseDumpFlags(args)
	if len(files) == 0 {
		return errors.New("dump: no input files given")
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "reading %s", file)
		}

		diags := diagnostics.NewCollector()
		toks := lexer.NewScanner(string(src)).ScanTokens()
		ns := nsresolve.NewContext()
		p := syntax.NewParser(toks, file, ns, diags)
		tree := p.ParseFile()

		r := lower.NewResolver(ns, diags)
		r.LowerFile(tree)

		for _, d := range diags.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.Error())
		}

		writeDump(out, r.Module.Dump(), color)
	}
	return nil
}

func writeDump(out *bufio.Writer, dump string, color bool) {
	if !color {
		out.WriteString(dump)
		return
	}
	for _, line := range strings.Split(dump, "\n") {
		if blockHeaderPattern.MatchString(line) {
			fmt.Fprintf(out, "\x1b[36m%s\x1b[0m\n", line)
		} else {
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
}

func parseDumpFlags(args []string) (color bool, files []string) {
	color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	for _, a := range args {
		switch a {
		case "--color=always":
			color = true
		case "--color=never":
			color = false
		case "--color=auto":
			// already resolved via isatty above
		default:
			files = append(files, a)
		}
	}
	return
}
