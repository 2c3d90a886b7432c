// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package splitcheck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/shadeopt/passes"
	"github.com/gogpu/shadeopt/toolchain"
)

// LevelTrace is the log level of per-split records.
const LevelTrace = slog.LevelDebug - 4

// Case is the source program a split check compiles.
type Case struct {
	Source     []byte
	SourceName string
	EntryPoint string
	Target     string
}

func (c Case) request() toolchain.CompileRequest {
	return toolchain.CompileRequest{
		Source:     c.Source,
		SourceName: c.SourceName,
		EntryPoint: c.EntryPoint,
		Target:     c.Target,
	}
}

// Driver runs split checks against a toolchain. A Driver holds no per-case
// state, so one value may run several cases concurrently.
type Driver struct {
	Toolchain toolchain.Toolchain

	// Logger receives case records; nil means slog.Default().
	Logger *slog.Logger

	// Progress, when set, is called after every matching split point.
	// It may be called from several goroutines under RunLevels.
	Progress func(level, checked, total int)
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Run checks every split point of c at optimization level.
//
// The returned report is non-nil whenever the level is valid, also on
// failure, and records how far the case got.
func (d *Driver) Run(ctx context.Context, c Case, level int) (*Report, error) {
	if level < 0 || level > toolchain.MaxOptLevel {
		return nil, fmt.Errorf("optimization level %d out of range [0, %d]", level, toolchain.MaxOptLevel)
	}
	start := time.Now()
	r := &Report{Case: c.SourceName, Level: level}
	defer func() { r.Elapsed = time.Since(start) }()

	log := d.logger().With("case", c.SourceName, "level", level)
	req := c.request()
	optArg := toolchain.OptLevelArg(level)

	r.State = StateCompileReference
	program, err := d.Toolchain.Compile(ctx, req.WithArgs(toolchain.ArgDisableValidation, optArg))
	if err != nil {
		return r, stepError(r.State, -1, err)
	}
	reference, err := d.Toolchain.Disassemble(ctx, program)
	if err != nil {
		return r, stepError(r.State, -1, err)
	}

	r.State = StateDumpPasses
	dump, err := d.Toolchain.Compile(ctx, req.WithArgs(toolchain.ArgDisableValidation, optArg, toolchain.ArgDumpPasses))
	if err != nil {
		return r, stepError(r.State, -1, err)
	}
	plan, err := passes.NewPlan(string(dump))
	if err != nil {
		return r, stepError(r.State, -1, err)
	}
	r.Function = plan.Function
	r.Module = plan.Module

	r.State = StateCompileHighLevel
	highLevel, err := d.Toolchain.Compile(ctx, req.WithArgs(toolchain.ArgDisableValidation, optArg, toolchain.ArgHighLevel))
	if err != nil {
		return r, stepError(r.State, -1, err)
	}

	total := plan.Limit() + 1
	log.DebugContext(ctx, "split plan",
		"function_passes", len(plan.Function),
		"module_passes", plan.Len(),
		"limit", plan.Limit())

	for i := 0; i <= plan.Len(); i++ {
		if plan.Stopped(i) {
			r.Stopped = true
			r.StoppedAt = i
			log.InfoContext(ctx, "pause unsupported past this point, stopping",
				"index", i, "marker", plan.Module[i-1])
			break
		}
		got, err := d.split(ctx, r, plan, highLevel, i)
		if err != nil {
			return r, err
		}

		r.State = StateCompare
		if got != reference {
			r.Mismatch = &MismatchError{
				Index:     i,
				Boundary:  plan.Boundary(i),
				Reference: reference,
				Got:       got,
			}
			log.ErrorContext(ctx, "split disassembly differs from reference",
				"index", i,
				"boundary", r.Mismatch.Boundary,
				"reference", reference,
				"got", got)
			return r, r.Mismatch
		}
		r.Checked++
		log.Log(ctx, LevelTrace, "split matches", "index", i, "boundary", plan.Boundary(i))
		if d.Progress != nil {
			d.Progress(level, r.Checked, total)
		}
	}

	r.State = StateDone
	log.InfoContext(ctx, "split check passed", "checked", r.Checked, "stopped", r.Stopped)
	return r, nil
}

// split runs both halves of split point i and returns the disassembly.
func (d *Driver) split(ctx context.Context, r *Report, plan *passes.Plan, highLevel []byte, i int) (string, error) {
	r.State = StateRunFirstHalf
	paused, err := d.Toolchain.RunOptimizer(ctx, highLevel, plan.FirstHalf(i))
	if err != nil {
		return "", stepError(r.State, i, err)
	}

	r.State = StateRunSecondHalf
	module, err := d.Toolchain.RunOptimizer(ctx, paused, plan.SecondHalf(i))
	if err != nil {
		return "", stepError(r.State, i, err)
	}

	r.State = StateReassemble
	program, err := d.Toolchain.AssembleToContainer(ctx, module)
	if err != nil {
		return "", stepError(r.State, i, err)
	}

	r.State = StateDisassemble
	text, err := d.Toolchain.Disassemble(ctx, program)
	if err != nil {
		return "", stepError(r.State, i, err)
	}
	return text, nil
}
