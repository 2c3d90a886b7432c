// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command hlcc is the reference HLIR shader compiler.
//
// Usage:
//
//	hlcc [options] <input.hlir>
//
// Examples:
//
//	hlcc -T ps_6_0 -E main -O2 -o shader.bin shader.hlir   # Compile to a container
//	hlcc -T ps_6_0 -O2 -Odump shader.hlir                  # Print the pass list
//	hlcc -T ps_6_0 -Vd -fcgl -o shader.hl shader.hlir      # Emit the high-level module
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/gogpu/shadeopt"
	"github.com/gogpu/shadeopt/toolchain"
)

var (
	target    = flag.String("T", "", "target profile, e.g. ps_6_0 (required)")
	entry     = flag.String("E", shadeopt.DefaultEntryPoint, "entry point")
	output    = flag.String("o", "", "output file (default: stdout)")
	noVal     = flag.Bool("Vd", false, "disable validation")
	dump      = flag.Bool("Odump", false, "print the optimizer pass list instead of compiling")
	highLevel = flag.Bool("fcgl", false, "emit the unoptimized high-level module")
	verbose   = flag.Bool("v", false, "verbose logging")
	version   = flag.Bool("version", false, "print version")

	levels [toolchain.MaxOptLevel + 1]*bool
)

const hlccVersion = "0.1.0-dev"

func init() {
	for n := range levels {
		levels[n] = flag.Bool(fmt.Sprintf("O%d", n), false, fmt.Sprintf("optimization level %d", n))
	}
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("hlcc version %s\n", hlccVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		atexit.Exit(1)
	}
	if *target == "" {
		fmt.Fprintln(os.Stderr, "Error: no target profile specified (-T)")
		atexit.Exit(1)
	}

	inputPath := args[0]
	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		atexit.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	req := toolchain.CompileRequest{
		Source:     source,
		SourceName: inputPath,
		EntryPoint: *entry,
		Target:     *target,
		Args:       compilerArgs(),
	}
	out, err := shadeopt.NewToolchain(logger).Compile(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		if diag := toolchain.Diagnostics(err); diag != "" {
			fmt.Fprintln(os.Stderr, diag)
		}
		atexit.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			atexit.Exit(1)
		}
		return
	}
	if _, err := os.Stdout.Write(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		atexit.Exit(1)
	}
}

// compilerArgs turns the parsed flags back into compiler arguments.
// When several levels are given the highest one wins.
func compilerArgs() []string {
	var args []string
	if *noVal {
		args = append(args, toolchain.ArgDisableValidation)
	}
	if *dump {
		args = append(args, toolchain.ArgDumpPasses)
	}
	if *highLevel {
		args = append(args, toolchain.ArgHighLevel)
	}
	for n := len(levels) - 1; n >= 0; n-- {
		if *levels[n] {
			args = append(args, toolchain.OptLevelArg(n))
			break
		}
	}
	return args
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: hlcc [options] <input.hlir>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  hlcc -T ps_6_0 -O2 -o shader.bin shader.hlir  Compile to a container\n")
	fmt.Fprintf(os.Stderr, "  hlcc -T ps_6_0 -O2 -Odump shader.hlir         Print the pass list\n")
	fmt.Fprintf(os.Stderr, "  hlcc -T ps_6_0 -Vd -fcgl shader.hlir          Emit the high-level module\n")
}
