// cmd/jlangc/main.go
package main

import (
	"fmt"
	"log/slog"
	"os"
)

const version = "0.1.0"

// commandAliases mirrors the teacher's single-letter alias table so
// "jlangc c foo.jl" and "jlangc compile foo.jl" do the same thing.
var commandAliases = map[string]string{
	"c": "compile",
	"d": "dump",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}
	rest := args[1:]

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion(rest)
	case "compile":
		if err := compileCommand(rest); err != nil {
			slog.Error("compile failed", "error", err)
			os.Exit(1)
		}
	case "dump":
		if err := dumpCommand(rest); err != nil {
			slog.Error("dump failed", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "jlangc: unknown command %q\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`jlangc - lowers translation units to MIR

Usage:
  jlangc compile [--stats] [--verbose] <file.jl> [more files...]
  jlangc dump [--color=auto|always|never] <file.jl> [more files...]
  jlangc version [--check <format-version>]

Aliases: c=compile, d=dump, v=version`)
}

func showVersion(args []string) {
	fmt.Printf("jlangc %s (MIR dump format %s)\n", version, dumpFormatVersion)
	if len(args) >= 2 && args[0] == "--check" {
		checkFormatCompat(args[1])
	}
}
