// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package passes handles optimizer pass lists as dumped by a shader compiler.
//
// A pass dump is newline-delimited text: one pass name per line, with
// '#'-prefixed comment lines. The dump is split into a function-pass prefix
// and a module-pass list, and a Plan builds the two halves of a split
// optimizer run around a pause/resume boundary:
//
//	first half:  <function passes> -opt-mod-passes passes[:i] -hlsl-passes-pause
//	second half: <function passes> -opt-mod-passes -hlsl-passes-resume passes[i:]
//
// Running both halves in sequence must produce the same module as running
// the undivided list once.
package passes
