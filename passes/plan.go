// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnexpectedMarker is returned when a dumped module-pass list already
// contains a pause or resume token.
var ErrUnexpectedMarker = errors.New("unexpected control marker in pass dump")

// FullList is the boundary name reported for the split point past the last
// module pass.
const FullList = "(full list)"

// Plan holds a parsed pass dump ready for splitting.
type Plan struct {
	// Function is the function-pass prefix, starting with FunctionPasses.
	// It is replayed at the start of both halves.
	Function []string

	// Module is the module-pass list the split points index into.
	Module []string
}

// NewPlan parses and validates a pass dump.
func NewPlan(dump string) (*Plan, error) {
	return PlanFromList(Parse(dump))
}

// PlanFromList builds a plan from an already parsed pass list.
func PlanFromList(list []string) (*Plan, error) {
	rest, fn, err := ExtractFunctionPasses(list)
	if err != nil {
		return nil, err
	}
	for i, name := range rest {
		if name == Pause || name == Resume {
			return nil, fmt.Errorf("%w: %q at index %d", ErrUnexpectedMarker, name, i)
		}
	}
	return &Plan{Function: fn, Module: slices.Clone(rest)}, nil
}

// Len returns the number of module passes.
func (p *Plan) Len() int {
	return len(p.Module)
}

// Limit returns the last split index that can be checked. A split right
// after a NoPause token would pause past it, so Limit is the index of the
// first NoPause, or Len when there is none.
func (p *Plan) Limit() int {
	if i := slices.Index(p.Module, NoPause); i >= 0 {
		return i
	}
	return len(p.Module)
}

// Stopped reports whether split point i lies past a NoPause token.
func (p *Plan) Stopped(i int) bool {
	return i > 0 && i <= len(p.Module) && p.Module[i-1] == NoPause
}

// FirstHalf returns the pass list that runs module passes [0, i) and pauses.
func (p *Plan) FirstHalf(i int) []string {
	p.checkIndex(i)
	list := p.prefix(i + 2)
	list = append(list, p.Module[:i]...)
	return append(list, Pause)
}

// SecondHalf returns the pass list that resumes and runs module passes [i, Len).
func (p *Plan) SecondHalf(i int) []string {
	p.checkIndex(i)
	list := p.prefix(len(p.Module) - i + 2)
	list = append(list, Resume)
	return append(list, p.Module[i:]...)
}

// Full returns the undivided pass list.
func (p *Plan) Full() []string {
	list := p.prefix(len(p.Module) + 1)
	return append(list, p.Module...)
}

// Boundary names the pass the split at i breaks before.
func (p *Plan) Boundary(i int) string {
	if i >= len(p.Module) {
		return FullList
	}
	return p.Module[i]
}

func (p *Plan) prefix(extra int) []string {
	list := make([]string, 0, len(p.Function)+extra)
	list = append(list, p.Function...)
	return append(list, ModulePasses)
}

func (p *Plan) checkIndex(i int) {
	if i < 0 || i > len(p.Module) {
		panic(fmt.Sprintf("passes: split index %d out of range [0, %d]", i, len(p.Module)))
	}
}
