// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package toolchain defines the compiler contract driven by the split
// checker: compile, run optimizer passes, assemble into a container and
// disassemble.
//
// Implementations treat module and container bytes as opaque blobs. The
// in-process implementation lives in package shadeopt; package exectc runs
// external binaries.
package toolchain

import (
	"context"
	"fmt"
	"strings"
)

// Compile arguments understood by every implementation.
// Both '/' and '-' prefixes are accepted.
const (
	// ArgDisableValidation skips validation of the compiled module.
	ArgDisableValidation = "/Vd"

	// ArgDumpPasses makes Compile return the pass list it would run,
	// as text, instead of a program.
	ArgDumpPasses = "/Odump"

	// ArgHighLevel makes Compile return the unoptimized high-level module.
	ArgHighLevel = "/fcgl"
)

// MaxOptLevel is the highest optimization level.
const MaxOptLevel = 3

// OptLevelArg returns the argument selecting optimization level n.
func OptLevelArg(n int) string {
	return fmt.Sprintf("/O%d", n)
}

// CompileRequest describes one compiler invocation.
type CompileRequest struct {
	// Source is the program text.
	Source []byte

	// SourceName is used in diagnostics.
	SourceName string

	// EntryPoint names the entry function.
	EntryPoint string

	// Target is the shader profile, e.g. "ps_6_0".
	Target string

	// Args holds additional compiler arguments.
	Args []string
}

// WithArgs returns a copy of r with args appended to its arguments.
func (r CompileRequest) WithArgs(args ...string) CompileRequest {
	merged := make([]string, 0, len(r.Args)+len(args))
	merged = append(merged, r.Args...)
	r.Args = append(merged, args...)
	return r
}

// Compiler compiles source programs.
type Compiler interface {
	// Compile returns the compiled program, the pass dump text when
	// ArgDumpPasses is given, or the high-level module when ArgHighLevel
	// is given.
	Compile(ctx context.Context, req CompileRequest) ([]byte, error)
}

// Optimizer runs named passes over a module.
type Optimizer interface {
	// RunOptimizer applies passes in order to module and returns the new module.
	RunOptimizer(ctx context.Context, module []byte, passes []string) ([]byte, error)
}

// Assembler packages a module into a container.
type Assembler interface {
	AssembleToContainer(ctx context.Context, module []byte) ([]byte, error)
}

// Disassembler renders a container or a bare module as text.
type Disassembler interface {
	Disassemble(ctx context.Context, program []byte) (string, error)
}

// Toolchain bundles the four collaborators.
type Toolchain interface {
	Compiler
	Optimizer
	Assembler
	Disassembler
}

// NormalizeArg maps a '-' prefixed argument to its '/' form.
// Other arguments are returned unchanged.
func NormalizeArg(arg string) string {
	if strings.HasPrefix(arg, "-") && len(arg) > 1 {
		return "/" + arg[1:]
	}
	return arg
}
