// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shadeopt provides an in-process shader toolchain built around the
// HLIR module format: a compiler, an optimizer with pause/resume
// checkpoints, a container assembler and a disassembler.
//
// The compilation pipeline is:
//
//	HLIR text → parse → validate → optimize (level pass list) → container
//
// Example usage:
//
//	out, err := shadeopt.Compile(ctx, toolchain.CompileRequest{
//	    Source:     src,
//	    SourceName: "shader.hlir",
//	    EntryPoint: "main",
//	    Target:     "ps_6_0",
//	    Args:       []string{"/O2"},
//	})
//	text, err := shadeopt.Disassemble(out)
//
// The Toolchain type exposes the same operations through the interfaces of
// package toolchain, which is what the split-equivalence harness drives.
package shadeopt

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogpu/shadeopt/container"
	"github.com/gogpu/shadeopt/ir"
	"github.com/gogpu/shadeopt/irtext"
	"github.com/gogpu/shadeopt/opt"
	"github.com/gogpu/shadeopt/toolchain"
)

// DefaultEntryPoint is used when a request names no entry point.
const DefaultEntryPoint = "main"

// ValidationErrors is returned when a module fails validation.
type ValidationErrors []ir.ValidationError

// Error implements the error interface.
func (el ValidationErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// FormatAll returns all errors, one per line.
func (el ValidationErrors) FormatAll() string {
	var sb strings.Builder
	for _, e := range el {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Compile compiles HLIR source with options parsed from req.Args.
func Compile(ctx context.Context, req toolchain.CompileRequest) ([]byte, error) {
	opts, err := ParseArgs(req.Args)
	if err != nil {
		return nil, err
	}
	return CompileWithOptions(ctx, req, opts)
}

// CompileWithOptions compiles HLIR source with explicit options.
//
// The output depends on opts.Output: the container of the optimized
// module, the level's pass dump, or the unoptimized module bytes.
func CompileWithOptions(ctx context.Context, req toolchain.CompileRequest, opts CompileOptions) ([]byte, error) {
	module, err := Lower(req, opts.Validate)
	if err != nil {
		return nil, err
	}

	switch opts.Output {
	case OutputPassDump:
		dump, err := opt.PassDump(opts.OptLevel)
		if err != nil {
			return nil, err
		}
		return []byte(dump), nil
	case OutputHighLevel:
		return ir.Encode(module), nil
	}

	list, err := opt.LevelPasses(opts.OptLevel)
	if err != nil {
		return nil, err
	}
	if err := opt.Run(ctx, module, list); err != nil {
		return nil, fmt.Errorf("optimization error: %w", err)
	}
	return container.Assemble(module)
}

// Lower parses the request source into a high-level module: the target
// profile and entry point of the request are recorded in the module, and
// the module is validated when validate is set.
func Lower(req toolchain.CompileRequest, validate bool) (*ir.Module, error) {
	name := req.SourceName
	if name == "" {
		name = "<input>"
	}
	module, err := irtext.Parse(name, string(req.Source))
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	target := req.Target
	if target == "" {
		target = module.Target
	}
	profile, err := ParseProfile(target)
	if err != nil {
		return nil, err
	}
	if !profile.Model.SupportsDXIL() {
		return nil, fmt.Errorf("%w: %s: %s does not produce DXIL", ErrInvalidProfile, profile, profile.Model)
	}
	module.Target = profile.String()

	entry := req.EntryPoint
	if entry == "" {
		entry = DefaultEntryPoint
	}
	module.SetMeta(ir.MetaEntry, entry)

	if validate {
		if err := Validate(module, profile); err != nil {
			return nil, err
		}
	}
	return module, nil
}

// Validate checks module against the IR rules and the stage rules of
// profile.
func Validate(module *ir.Module, profile Profile) error {
	errs, err := ir.Validate(module)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if entry := module.Entry(); entry != nil && profile.Stage == StageCompute && entry.Return != ir.Void {
		errs = append(errs, ir.ValidationError{
			Message:  fmt.Sprintf("compute entry point must return void, not %s", entry.Return),
			Function: entry.Name,
		})
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", ValidationErrors(errs))
	}
	return nil
}

// Optimize runs a pass list over module bytes and returns the resulting
// module bytes.
func Optimize(ctx context.Context, module []byte, passes []string) ([]byte, error) {
	m, err := decodeModule(module)
	if err != nil {
		return nil, err
	}
	if err := opt.Run(ctx, m, passes); err != nil {
		return nil, err
	}
	return ir.Encode(m), nil
}

// AssembleToContainer packages module bytes into a program container.
func AssembleToContainer(module []byte) ([]byte, error) {
	m, err := decodeModule(module)
	if err != nil {
		return nil, err
	}
	return container.Assemble(m)
}

// decodeModule decodes module bytes and rejects modules whose shape the
// passes cannot walk. Types are left unchecked so /Vd output still loads.
func decodeModule(module []byte) (*ir.Module, error) {
	m, err := ir.Decode(module)
	if err != nil {
		return nil, err
	}
	if errs := ir.ValidateStructure(m); len(errs) > 0 {
		return nil, fmt.Errorf("malformed module: %w", ValidationErrors(errs))
	}
	return m, nil
}

// Disassemble renders a program container or module bytes as text.
func Disassemble(program []byte) (string, error) {
	return container.Disassemble(program)
}
