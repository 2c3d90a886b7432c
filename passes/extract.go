// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNonContiguous is returned when function-pass markers do not form a
// single contiguous run.
var ErrNonContiguous = errors.New("function passes are not contiguous")

// ExtractFunctionPasses removes the function-pass run from list.
//
// The run starts at the first function-pass marker and ends before the next
// phase marker (or at the end of the list). It returns the remaining list
// and the run, both in original order. Without a marker, rest is list and
// fn is nil. list itself is not modified.
func ExtractFunctionPasses(list []string) (rest, fn []string, err error) {
	first := slices.IndexFunc(list, IsFunctionMarker)
	if first < 0 {
		return list, nil, nil
	}
	last := len(list)
	if n := slices.IndexFunc(list[first:], IsPhaseMarker); n >= 0 {
		last = first + n
	}

	fn = slices.Clone(list[first:last])
	rest = make([]string, 0, len(list)-len(fn))
	rest = append(rest, list[:first]...)
	rest = append(rest, list[last:]...)

	if i := slices.IndexFunc(rest, IsFunctionMarker); i >= 0 {
		return nil, nil, fmt.Errorf("%w: second %q at index %d", ErrNonContiguous, rest[i], i)
	}
	return rest, fn, nil
}
