// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadeopt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/shadeopt/opt"
	"github.com/gogpu/shadeopt/toolchain"
)

// OutputKind selects what Compile produces.
type OutputKind uint8

const (
	// OutputContainer is a fully optimized, assembled program.
	OutputContainer OutputKind = iota

	// OutputPassDump is the pass list of the selected level, as text.
	OutputPassDump

	// OutputHighLevel is the unoptimized module bytes.
	OutputHighLevel
)

// CompileOptions configures compilation.
type CompileOptions struct {
	// OptLevel is the optimization level, 0 to 3.
	OptLevel int

	// Validate enables module validation before optimization.
	Validate bool

	// Output selects the compiler output.
	Output OutputKind
}

// DefaultOptions returns the options used when no arguments are given.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		OptLevel: opt.MaxLevel,
		Validate: true,
		Output:   OutputContainer,
	}
}

// ParseArgs parses compiler arguments. Both "/" and "-" prefixes are
// accepted. Later arguments override earlier ones.
func ParseArgs(args []string) (CompileOptions, error) {
	opts := DefaultOptions()
	for _, raw := range args {
		arg := toolchain.NormalizeArg(raw)
		switch {
		case arg == toolchain.ArgDisableValidation:
			opts.Validate = false
		case arg == toolchain.ArgDumpPasses:
			opts.Output = OutputPassDump
		case arg == toolchain.ArgHighLevel:
			opts.Output = OutputHighLevel
		case strings.HasPrefix(arg, "/O"):
			level, err := strconv.Atoi(arg[2:])
			if err != nil || level < 0 || level > opt.MaxLevel {
				return opts, fmt.Errorf("invalid optimization level %q", raw)
			}
			opts.OptLevel = level
		default:
			return opts, fmt.Errorf("unknown argument %q", raw)
		}
	}
	return opts, nil
}

// String returns the output kind name.
func (k OutputKind) String() string {
	switch k {
	case OutputContainer:
		return "container"
	case OutputPassDump:
		return "passdump"
	case OutputHighLevel:
		return "highlevel"
	default:
		return "unknown"
	}
}
