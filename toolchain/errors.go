// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes toolchain failures.
type ErrorKind uint8

const (
	// ErrInvalidArgument indicates a malformed request or argument.
	ErrInvalidArgument ErrorKind = iota

	// ErrCompile indicates the compiler rejected the source.
	ErrCompile

	// ErrOptimize indicates the optimizer failed to run a pass list.
	ErrOptimize

	// ErrAssemble indicates the module could not be packaged.
	ErrAssemble

	// ErrDisassemble indicates the blob could not be disassembled.
	ErrDisassemble

	// ErrUnavailable indicates the toolchain itself could not be reached,
	// e.g. a missing binary.
	ErrUnavailable
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrCompile:
		return "Compile"
	case ErrOptimize:
		return "Optimize"
	case ErrAssemble:
		return "Assemble"
	case ErrDisassemble:
		return "Disassemble"
	case ErrUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// Error is a failed toolchain operation.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Op names the failing operation, e.g. "compile".
	Op string

	// Diagnostics holds the tool's own error output, if any.
	Diagnostics string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new toolchain error.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates a new toolchain error with a formatted cause.
func Errorf(kind ErrorKind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WithDiagnostics attaches tool output to the error.
func (e *Error) WithDiagnostics(diag string) *Error {
	e.Diagnostics = diag
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

// Diagnostics returns the diagnostics of the first *Error in err's chain.
func Diagnostics(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Diagnostics
	}
	return ""
}
