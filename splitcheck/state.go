// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package splitcheck

// State identifies a step of a split check.
type State uint8

const (
	StateCompileReference State = iota
	StateDumpPasses
	StateCompileHighLevel
	StateRunFirstHalf
	StateRunSecondHalf
	StateReassemble
	StateDisassemble
	StateCompare
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCompileReference:
		return "compile reference"
	case StateDumpPasses:
		return "dump passes"
	case StateCompileHighLevel:
		return "compile high-level"
	case StateRunFirstHalf:
		return "run first half"
	case StateRunSecondHalf:
		return "run second half"
	case StateReassemble:
		return "reassemble"
	case StateDisassemble:
		return "disassemble"
	case StateCompare:
		return "compare"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// PerSplit reports whether the state runs once per split point.
func (s State) PerSplit() bool {
	return s >= StateRunFirstHalf && s <= StateCompare
}
