// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command hlopt runs optimizer passes over an HLIR module.
//
// Usage:
//
//	hlopt [options] <input.bin> [passes...]
//
// Passes come from the pass file given with -pf, in the pass dump format,
// followed by any passes on the command line.
//
// Examples:
//
//	hlopt -pf first.txt -o paused.bin shader.hl
//	hlopt -o out.bin shader.hl -opt-fn-passes -simplifycfg -opt-mod-passes -dce
//	hlopt -assemble -o shader.bin out.bin
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/gogpu/shadeopt"
	"github.com/gogpu/shadeopt/opt"
	"github.com/gogpu/shadeopt/passes"
	"github.com/gogpu/shadeopt/toolchain"
)

var (
	passFile = flag.String("pf", "", "read passes from file")
	output   = flag.String("o", "", "output file (default: stdout)")
	assemble = flag.Bool("assemble", false, "assemble the module into a container instead of optimizing")
	listAll  = flag.Bool("list", false, "list registered passes")
	verbose  = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *listAll {
		for _, p := range opt.Passes() {
			fmt.Printf("  -%-24s %-8s %s\n", p.Name, p.Scope(), p.Description)
		}
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		atexit.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	tc := shadeopt.NewToolchain(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	module, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		atexit.Exit(1)
	}

	ctx := context.Background()
	var out []byte
	if *assemble {
		out, err = tc.AssembleToContainer(ctx, module)
	} else {
		pl, perr := passList(args[1:])
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error reading pass file: %v\n", perr)
			atexit.Exit(1)
		}
		out, err = tc.RunOptimizer(ctx, module, pl)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

func passList(extra []string) ([]string, error) {
	var list []string
	if *passFile != "" {
		text, err := os.ReadFile(*passFile)
		if err != nil {
			return nil, err
		}
		list = passes.Parse(string(text))
	}
	return append(list, extra...), nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: hlopt [options] <input.bin> [passes...]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  hlopt -pf passes.txt -o out.bin shader.hl  Run passes from a file\n")
	fmt.Fprintf(os.Stderr, "  hlopt -assemble -o shader.bin out.bin      Assemble a container\n")
	fmt.Fprintf(os.Stderr, "  hlopt -list                                List passes\n")
}
