// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package passes

import "strings"

// Optimizer control markers.
const (
	// MarkerPrefix starts every optimizer phase marker.
	MarkerPrefix = "-opt-"

	// FunctionPasses switches the optimizer to the per-function pipeline.
	FunctionPasses = "-opt-fn-passes"

	// ModulePasses switches the optimizer to the module pipeline.
	ModulePasses = "-opt-mod-passes"

	// Pause checkpoints the module at the current point of the pipeline.
	Pause = "-hlsl-passes-pause"

	// Resume continues a module previously checkpointed with Pause.
	Resume = "-hlsl-passes-resume"

	// NoPause marks the point past which a module can no longer be paused.
	NoPause = "-hlsl-passes-nopause"
)

// IsFunctionMarker reports whether name is the function-pass marker.
// The comparison is case-insensitive.
func IsFunctionMarker(name string) bool {
	return strings.EqualFold(name, FunctionPasses)
}

// IsPhaseMarker reports whether name is an optimizer phase marker other
// than the function-pass marker.
func IsPhaseMarker(name string) bool {
	return hasPrefixFold(name, MarkerPrefix) && !IsFunctionMarker(name)
}

// IsControl reports whether name is one of the pause/resume control tokens.
func IsControl(name string) bool {
	return name == Pause || name == Resume || name == NoPause
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
