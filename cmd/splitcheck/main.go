// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command splitcheck checks that pausing the optimizer between any two
// module passes and resuming in a second run gives the same program as one
// uninterrupted compile.
//
// Usage:
//
//	splitcheck [options] [source.hlir...]
//
// Examples:
//
//	splitcheck testdata/sample_texture.hlir             # All levels, in-process toolchain
//	splitcheck -levels 2,3 -jobs 1 shader.hlir          # Selected levels, one at a time
//	splitcheck -config splitcheck.yaml -toolchain exec  # Cases from a file, external tools
//
// Environment variables SPLITCHECK_LEVELS, SPLITCHECK_JOBS,
// SPLITCHECK_TOOLCHAIN and SPLITCHECK_BIN_DIR override the config file;
// flags override both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/gogpu/shadeopt"
	"github.com/gogpu/shadeopt/splitcheck"
	"github.com/gogpu/shadeopt/toolchain"
	"github.com/gogpu/shadeopt/toolchain/exectc"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	levelsFlag = flag.String("levels", "", "comma separated optimization levels (default: 0,1,2,3)")
	jobs       = flag.Int("jobs", 0, "levels checked in parallel (default: one per level)")
	tcFlag     = flag.String("toolchain", "", "toolchain: inproc or exec (default: inproc)")
	binDir     = flag.String("bin-dir", "", "directory holding hlcc, hlopt and hldis for -toolchain exec")
	target     = flag.String("T", "", "target profile for sources given on the command line")
	entry      = flag.String("E", shadeopt.DefaultEntryPoint, "entry point for sources given on the command line")
	verbose    = flag.Bool("v", false, "verbose logging")
	trace      = flag.Bool("trace", false, "log every split point")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	atexit.Register(stop)

	failed, err := run(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(2)
	}
	if failed {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func loadConfig() (*Config, error) {
	cfg := &Config{}
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if *levelsFlag != "" {
		levels, err := ParseLevels(*levelsFlag)
		if err != nil {
			return nil, fmt.Errorf("-levels: %w", err)
		}
		cfg.Levels = levels
	}
	if *jobs > 0 {
		cfg.Jobs = *jobs
	}
	if *tcFlag != "" {
		cfg.Toolchain = *tcFlag
	}
	if *binDir != "" {
		cfg.BinDir = *binDir
	}
	for _, src := range flag.Args() {
		cfg.Cases = append(cfg.Cases, CaseConfig{Source: src, Entry: *entry, Target: *target})
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case *trace:
		level = splitcheck.LevelTrace
	case *verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newToolchain(cfg *Config, logger *slog.Logger) (toolchain.Toolchain, error) {
	if cfg.Toolchain != ToolchainExec {
		return shadeopt.NewToolchain(logger), nil
	}
	tc := exectc.New(exectc.Config{
		Dir:     cfg.BinDir,
		Timeout: cfg.Timeout.Duration(),
		Logger:  logger,
	})
	if err := tc.Available(); err != nil {
		return nil, fmt.Errorf("exec toolchain: %w", err)
	}
	return tc, nil
}

// run checks every configured case and writes a summary table to out.
// It reports whether any case failed.
func run(ctx context.Context, cfg *Config, out, errOut io.Writer) (bool, error) {
	logger := newLogger(errOut)
	tc, err := newToolchain(cfg, logger)
	if err != nil {
		return false, err
	}
	driver := &splitcheck.Driver{Toolchain: tc, Logger: logger}

	if f, ok := errOut.(*os.File); ok && term.IsTerminal(int(f.Fd())) && !*verbose && !*trace {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionSetDescription("split points"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
		defer bar.Finish()
		driver.Progress = func(int, int, int) { _ = bar.Add(1) }
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(out)
	summary.AppendHeader(table.Row{"Case", "Level", "Fn passes", "Mod passes", "Checked", "Stopped at", "Time", "Result"})

	var failures []error
	for i, cc := range cfg.Cases {
		src, err := os.ReadFile(cc.Source)
		if err != nil {
			return false, fmt.Errorf("reading source: %w", err)
		}
		c := splitcheck.Case{Source: src, SourceName: cc.Source, EntryPoint: cc.Entry, Target: cc.Target}
		reports, err := driver.RunLevels(ctx, c, cfg.CaseLevels(i), cfg.Jobs)
		if err != nil {
			failures = append(failures, err)
		}
		for j, r := range reports {
			summary.AppendRow(summaryRow(cc.Source, cfg.CaseLevels(i)[j], r))
		}
	}
	summary.Render()

	for _, err := range failures {
		fmt.Fprintf(errOut, "\nFAIL: %v\n", err)
		var mismatch *splitcheck.MismatchError
		if errors.As(err, &mismatch) {
			fmt.Fprintf(errOut, "disassembly diff (-reference +split):\n%s", mismatch.Diff())
		}
		if diag := toolchain.Diagnostics(err); diag != "" {
			fmt.Fprintln(errOut, diag)
		}
	}
	return len(failures) > 0, nil
}

func summaryRow(source string, level int, r *splitcheck.Report) table.Row {
	if r == nil {
		return table.Row{source, fmt.Sprintf("O%d", level), "-", "-", "-", "-", "-", "ERROR"}
	}
	stopped := "-"
	if r.Stopped {
		stopped = fmt.Sprint(r.StoppedAt)
	}
	result := "ok"
	switch {
	case r.Mismatch != nil:
		result = fmt.Sprintf("MISMATCH at %d", r.Mismatch.Index)
	case !r.Passed():
		result = fmt.Sprintf("FAILED in %s", r.State)
	}
	return table.Row{
		source,
		fmt.Sprintf("O%d", r.Level),
		len(r.Function),
		len(r.Module),
		fmt.Sprintf("%d/%d", r.Checked, r.Total()),
		stopped,
		r.Elapsed.Round(time.Millisecond),
		result,
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: splitcheck [options] [source.hlir...]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExit status is 1 when any case fails and 2 on usage or setup errors.\n")
}
