// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadeopt

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gogpu/shadeopt/irtext"
	"github.com/gogpu/shadeopt/toolchain"
)

// Toolchain runs the in-process compiler, optimizer, assembler and
// disassembler behind the toolchain interfaces. Failures are returned as
// *toolchain.Error. The zero value is ready to use.
type Toolchain struct {
	// Logger receives debug records for every operation. Nil means
	// slog.Default().
	Logger *slog.Logger
}

var _ toolchain.Toolchain = (*Toolchain)(nil)

// NewToolchain creates an in-process toolchain logging to logger.
func NewToolchain(logger *slog.Logger) *Toolchain {
	return &Toolchain{Logger: logger}
}

func (t *Toolchain) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

// Compile implements toolchain.Compiler.
func (t *Toolchain) Compile(ctx context.Context, req toolchain.CompileRequest) ([]byte, error) {
	opts, err := ParseArgs(req.Args)
	if err != nil {
		return nil, toolchain.NewError(toolchain.ErrInvalidArgument, "compile", err)
	}
	out, err := CompileWithOptions(ctx, req, opts)
	if err != nil {
		return nil, compileError(err)
	}
	t.logger().DebugContext(ctx, "compiled",
		"source", req.SourceName,
		"target", req.Target,
		"level", opts.OptLevel,
		"output", opts.Output,
		"bytes", len(out))
	return out, nil
}

func compileError(err error) *toolchain.Error {
	if errors.Is(err, ErrInvalidProfile) {
		return toolchain.NewError(toolchain.ErrInvalidArgument, "compile", err)
	}
	te := toolchain.NewError(toolchain.ErrCompile, "compile", err)
	var se *irtext.SourceError
	if errors.As(err, &se) {
		return te.WithDiagnostics(se.FormatWithContext())
	}
	return withValidation(te, err)
}

func withValidation(te *toolchain.Error, err error) *toolchain.Error {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		te.WithDiagnostics(ve.FormatAll())
	}
	return te
}

// RunOptimizer implements toolchain.Optimizer.
func (t *Toolchain) RunOptimizer(ctx context.Context, module []byte, passes []string) ([]byte, error) {
	out, err := Optimize(ctx, module, passes)
	if err != nil {
		return nil, withValidation(toolchain.NewError(toolchain.ErrOptimize, "optimize", err), err)
	}
	t.logger().DebugContext(ctx, "optimized", "passes", len(passes), "bytes", len(out))
	return out, nil
}

// AssembleToContainer implements toolchain.Assembler.
func (t *Toolchain) AssembleToContainer(ctx context.Context, module []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, toolchain.NewError(toolchain.ErrAssemble, "assemble", err)
	}
	out, err := AssembleToContainer(module)
	if err != nil {
		return nil, withValidation(toolchain.NewError(toolchain.ErrAssemble, "assemble", err), err)
	}
	t.logger().DebugContext(ctx, "assembled", "bytes", len(out))
	return out, nil
}

// Disassemble implements toolchain.Disassembler.
func (t *Toolchain) Disassemble(ctx context.Context, program []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", toolchain.NewError(toolchain.ErrDisassemble, "disassemble", err)
	}
	text, err := Disassemble(program)
	if err != nil {
		return "", toolchain.NewError(toolchain.ErrDisassemble, "disassemble", err)
	}
	return text, nil
}
