// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package splitcheck

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// StepError reports a failed toolchain call. It ends the case.
type StepError struct {
	State State

	// Index is the split point, or -1 for states that run once per case.
	Index int

	Err error
}

func (e *StepError) Error() string {
	if !e.State.PerSplit() || e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.State, e.Err)
	}
	return fmt.Sprintf("%s at split %d: %v", e.State, e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

func stepError(state State, index int, err error) *StepError {
	if !state.PerSplit() {
		index = -1
	}
	return &StepError{State: state, Index: index, Err: err}
}

// MismatchError reports a split whose disassembly differs from the reference.
type MismatchError struct {
	// Index is the split point.
	Index int

	// Boundary is the module pass the split breaks before.
	Boundary string

	// Reference and Got are the full disassembly texts.
	Reference string
	Got       string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("split %d before %s: disassembly differs from reference", e.Index, e.Boundary)
}

// Diff returns a line diff of the reference (-) and split (+) texts.
func (e *MismatchError) Diff() string {
	return cmp.Diff(strings.Split(e.Reference, "\n"), strings.Split(e.Got, "\n"))
}
