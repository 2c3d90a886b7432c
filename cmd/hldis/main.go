// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// hldis - HLIR container and module disassembler
// Prints the canonical text form; -stats prints the container layout instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/gogpu/shadeopt"
	"github.com/gogpu/shadeopt/container"
	"github.com/gogpu/shadeopt/ir"
)

var (
	output = flag.String("o", "", "output file (default: stdout)")
	stats  = flag.Bool("stats", false, "print container parts instead of text")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hldis [-o out] [-stats] <input>")
		atexit.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	var text string
	if *stats {
		text, err = partTable(data)
	} else {
		text, err = shadeopt.Disassemble(data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
		return
	}
	fmt.Print(text)
}

func partTable(data []byte) (string, error) {
	if ir.IsModule(data) {
		return fmt.Sprintf("bare module, %d bytes\n", len(data)), nil
	}
	c, err := container.Parse(data)
	if err != nil {
		return "", err
	}
	flags, err := c.Features()
	if err != nil {
		return "", err
	}

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Container v%d, flags %s", c.Version, flags))
	t.AppendHeader(table.Row{"#", "Part", "Bytes"})
	total := 0
	for i, p := range c.Parts {
		t.AppendRow(table.Row{i, p.FourCC, len(p.Data)})
		total += len(p.Data)
	}
	t.AppendFooter(table.Row{"", "total", total})
	return t.Render() + "\n", nil
}
