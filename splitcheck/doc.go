// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package splitcheck verifies that an optimizer can pause part way through
// its module passes and resume in a second invocation without changing the
// result.
//
// For one source program and optimization level the driver compiles a
// reference program, asks the compiler for the pass list it runs and for the
// unoptimized high-level module, then splits the module passes at every
// index. Each split runs the first half with a pause marker and the second
// half with a resume marker through two optimizer invocations, assembles
// and disassembles the result and compares it with the reference text.
//
// Iteration stops, without failing, at a split that would pause past a
// no-pause marker. The first mismatch ends the case with a *MismatchError;
// a failing toolchain call ends it with a *StepError.
//
// Example:
//
//	d := &splitcheck.Driver{Toolchain: shadeopt.NewToolchain(nil)}
//	report, err := d.Run(ctx, splitcheck.Case{
//		Source:     src,
//		SourceName: "shader.hlir",
//		EntryPoint: "main",
//		Target:     "ps_6_0",
//	}, 2)
package splitcheck
