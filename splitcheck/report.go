// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package splitcheck

import "time"

// Report summarizes one case at one optimization level.
type Report struct {
	Case  string
	Level int

	// Function and Module are the pass lists taken from the pass dump.
	Function []string
	Module   []string

	// Checked counts split points whose disassembly matched.
	Checked int

	// Stopped is set when a no-pause marker ended iteration early.
	// StoppedAt is the first split point that was skipped.
	Stopped   bool
	StoppedAt int

	// State is the last state entered.
	State State

	Mismatch *MismatchError
	Elapsed  time.Duration
}

// Passed reports whether the case reached StateDone.
func (r *Report) Passed() bool {
	return r != nil && r.State == StateDone && r.Mismatch == nil
}

// Total returns the number of split points the case had to check.
func (r *Report) Total() int {
	if r.Stopped {
		return r.StoppedAt
	}
	return len(r.Module) + 1
}
