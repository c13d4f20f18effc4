package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"jlangc/internal/diagnostics"
	"jlangc/internal/lexer"
	"jlangc/internal/lower"
	"jlangc/internal/mir"
	"jlangc/internal/nsresolve"
	"jlangc/internal/syntax"
)

// unitResult is what compileOne reports back to the driver: the lowered
// module (nil when the unit's Collector reports Failed() or the module
// HasErrors()) and whatever diagnostics its Collector accumulated.
type unitResult struct {
	file   string
	module *mir.Module
	diags  []*diagnostics.Diagnostic
}

// compileCommand lowers every file argument to MIR. Per spec §5, each
// translation unit owns an independent namespace context, symbol table,
// and MIR module, so the units are compiled one goroutine each via
// errgroup.Group — there is no shared mutable state between them to
// race on.
func compileCommand(args []string) error {
	stats, verbose, files := parseCompileFlags(args)
	if len(files) == 0 {
		return errors.New("compile: no input files given")
	}

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	results := make([]unitResult, len(files))
	var failedUnits int64

	g := new(errgroup.Group)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			logger.Info("lexing", "file", file)
			src, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrapf(err, "reading %s", file)
			}

			res, failed := compileOne(file, src, logger)
			results[i] = res
			if failed {
				atomic.AddInt64(&failedUnits, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "compile")
	}

	var totalFuncs, totalBlocks, totalTmps int
	for _, res := range results {
		for _, d := range res.diags {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		if res.module == nil {
			continue
		}
		totalFuncs += len(res.module.Functions)
		for _, fn := range res.module.Functions {
			totalBlocks += len(fn.Blocks)
			totalTmps += fn.TmpCount()
		}
	}

	if stats {
		fmt.Printf("functions lowered: %s\n", humanize.Comma(int64(totalFuncs)))
		fmt.Printf("basic blocks emitted: %s\n", humanize.Comma(int64(totalBlocks)))
		fmt.Printf("temporaries allocated: %s\n", humanize.Comma(int64(totalTmps)))
	}

	if failedUnits > 0 {
		return fmt.Errorf("%d of %d translation unit(s) failed", failedUnits, len(files))
	}
	return nil
}

// compileOne runs the lex/parse/resolve/lower pipeline for a single
// translation unit. It never returns an error for a diagnosable failure
// (those go in the Collector) — only a collaborator-internal panic would
// be a bug at this layer, and none of these stages panic on bad input.
func compileOne(file string, src []byte, logger *slog.Logger) (unitResult, bool) {
	diags := diagnostics.NewCollector()

	logger.Info("parsing", "file", file, "unit", diags.ID)
	toks := lexer.NewScanner(string(src)).ScanTokens()

	ns := nsresolve.NewContext()
	p := syntax.NewParser(toks, file, ns, diags)
	tree := p.ParseFile()

	logger.Info("resolving+lowering", "file", file, "unit", diags.ID)
	r := lower.NewResolver(ns, diags)
	r.LowerFile(tree)

	logger.Info("done", "file", file, "unit", diags.ID, "failed", diags.Failed())

	if diags.Failed() || r.Module.HasErrors() {
		return unitResult{file: file, diags: diags.Diagnostics()}, true
	}
	return unitResult{file: file, module: r.Module, diags: diags.Diagnostics()}, false
}

func parseCompileFlags(args []string) (stats, verbose bool, files []string) {
	for _, a := range args {
		switch a {
		case "--stats":
			stats = true
		case "--verbose":
			verbose = true
		default:
			files = append(files, a)
		}
	}
	return
}
