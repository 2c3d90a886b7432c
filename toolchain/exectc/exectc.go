// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package exectc implements the toolchain interfaces by running external
// binaries with the command line surface of hlcc, hlopt and hldis.
//
// Every call works in its own temporary directory and runs the binary
// under the caller's context, so cancelling the context kills the child
// process.
package exectc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/shadeopt/toolchain"
)

// Default binary names.
const (
	DefaultCompiler     = "hlcc"
	DefaultOptimizer    = "hlopt"
	DefaultDisassembler = "hldis"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 2 * time.Minute

// Config selects the binaries to run.
type Config struct {
	// Dir holds the binaries. Empty means search PATH.
	Dir string

	// Binary names; empty means the defaults.
	Compiler     string
	Optimizer    string
	Disassembler string

	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	// Logger receives a debug record per invocation. Nil means
	// slog.Default().
	Logger *slog.Logger
}

type binaries struct {
	compiler     string
	optimizer    string
	disassembler string
}

// Toolchain runs external tools. It is safe for concurrent use.
type Toolchain struct {
	cfg    Config
	lookup func() (binaries, error)
}

var _ toolchain.Toolchain = (*Toolchain)(nil)

// New creates a toolchain for cfg. Binaries are resolved on first use.
func New(cfg Config) *Toolchain {
	if cfg.Compiler == "" {
		cfg.Compiler = DefaultCompiler
	}
	if cfg.Optimizer == "" {
		cfg.Optimizer = DefaultOptimizer
	}
	if cfg.Disassembler == "" {
		cfg.Disassembler = DefaultDisassembler
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	t := &Toolchain{cfg: cfg}
	t.lookup = sync.OnceValues(t.resolve)
	return t
}

func (t *Toolchain) resolve() (binaries, error) {
	var b binaries
	var errs []error
	for _, bin := range []struct {
		name string
		dst  *string
	}{
		{t.cfg.Compiler, &b.compiler},
		{t.cfg.Optimizer, &b.optimizer},
		{t.cfg.Disassembler, &b.disassembler},
	} {
		path := bin.name
		if t.cfg.Dir != "" {
			path = filepath.Join(t.cfg.Dir, bin.name)
		}
		found, err := exec.LookPath(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*bin.dst = found
	}
	return b, errors.Join(errs...)
}

// Available reports whether all binaries were found.
func (t *Toolchain) Available() error {
	_, err := t.lookup()
	return err
}

// Compile implements toolchain.Compiler by running the compiler binary.
func (t *Toolchain) Compile(ctx context.Context, req toolchain.CompileRequest) ([]byte, error) {
	bins, err := t.tools("compile")
	if err != nil {
		return nil, err
	}
	dir, cleanup, err := tempDir("compile")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	name := filepath.Base(req.SourceName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "input.hlir"
	}
	input := filepath.Join(dir, name)
	output := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(input, req.Source, 0o600); err != nil {
		return nil, toolchain.NewError(toolchain.ErrCompile, "compile", err)
	}

	args := []string{"-o", output}
	if req.Target != "" {
		args = append(args, "-T", req.Target)
	}
	if req.EntryPoint != "" {
		args = append(args, "-E", req.EntryPoint)
	}
	for _, a := range req.Args {
		args = append(args, FlagArg(a))
	}
	args = append(args, input)

	if _, err := t.run(ctx, "compile", toolchain.ErrCompile, bins.compiler, args...); err != nil {
		return nil, err
	}
	return readOutput("compile", toolchain.ErrCompile, output)
}

// RunOptimizer implements toolchain.Optimizer. The pass list is handed to
// the optimizer in a pass file, one token per line.
func (t *Toolchain) RunOptimizer(ctx context.Context, module []byte, passes []string) ([]byte, error) {
	bins, err := t.tools("optimize")
	if err != nil {
		return nil, err
	}
	dir, cleanup, err := tempDir("optimize")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	input := filepath.Join(dir, "in.bin")
	passFile := filepath.Join(dir, "passes.txt")
	output := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(input, module, 0o600); err != nil {
		return nil, toolchain.NewError(toolchain.ErrOptimize, "optimize", err)
	}
	if err := os.WriteFile(passFile, []byte(strings.Join(passes, "\n")+"\n"), 0o600); err != nil {
		return nil, toolchain.NewError(toolchain.ErrOptimize, "optimize", err)
	}

	if _, err := t.run(ctx, "optimize", toolchain.ErrOptimize, bins.optimizer, "-pf", passFile, "-o", output, input); err != nil {
		return nil, err
	}
	return readOutput("optimize", toolchain.ErrOptimize, output)
}

// AssembleToContainer implements toolchain.Assembler.
func (t *Toolchain) AssembleToContainer(ctx context.Context, module []byte) ([]byte, error) {
	bins, err := t.tools("assemble")
	if err != nil {
		return nil, err
	}
	dir, cleanup, err := tempDir("assemble")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	input := filepath.Join(dir, "in.bin")
	output := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(input, module, 0o600); err != nil {
		return nil, toolchain.NewError(toolchain.ErrAssemble, "assemble", err)
	}
	if _, err := t.run(ctx, "assemble", toolchain.ErrAssemble, bins.optimizer, "-assemble", "-o", output, input); err != nil {
		return nil, err
	}
	return readOutput("assemble", toolchain.ErrAssemble, output)
}

// Disassemble implements toolchain.Disassembler. The text is read from the
// disassembler's standard output.
func (t *Toolchain) Disassemble(ctx context.Context, program []byte) (string, error) {
	bins, err := t.tools("disassemble")
	if err != nil {
		return "", err
	}
	dir, cleanup, err := tempDir("disassemble")
	if err != nil {
		return "", err
	}
	defer cleanup()

	input := filepath.Join(dir, "in.bin")
	if err := os.WriteFile(input, program, 0o600); err != nil {
		return "", toolchain.NewError(toolchain.ErrDisassemble, "disassemble", err)
	}
	out, err := t.run(ctx, "disassemble", toolchain.ErrDisassemble, bins.disassembler, input)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (t *Toolchain) tools(op string) (binaries, error) {
	bins, err := t.lookup()
	if err != nil {
		return bins, toolchain.NewError(toolchain.ErrUnavailable, op, err)
	}
	return bins, nil
}

// run executes bin and returns its standard output. A non-zero exit
// becomes a *toolchain.Error of kind with the standard error attached.
func (t *Toolchain) run(ctx context.Context, op string, kind toolchain.ErrorKind, bin string, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(runCtx, bin, args...) //nolint:gosec // G204: binaries come from the caller's configuration
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	t.cfg.Logger.DebugContext(ctx, "tool invocation",
		"op", op,
		"bin", filepath.Base(bin),
		"args", len(args),
		"duration", time.Since(start),
		"err", err)
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctxErr := runCtx.Err(); ctxErr != nil {
		return nil, toolchain.NewError(kind, op, fmt.Errorf("%s: %w", filepath.Base(bin), ctxErr))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, toolchain.Errorf(kind, op, "%s exited with status %d", filepath.Base(bin), exitErr.ExitCode()).
			WithDiagnostics(strings.TrimSpace(stderr.String()))
	}
	return nil, toolchain.NewError(toolchain.ErrUnavailable, op, err)
}

// FlagArg converts a compiler argument such as "/O2" to the dash form
// the binaries parse.
func FlagArg(arg string) string {
	if strings.HasPrefix(arg, "/") && len(arg) > 1 {
		return "-" + arg[1:]
	}
	return arg
}

func tempDir(op string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "shadeopt-"+op+"-*")
	if err != nil {
		return "", nil, toolchain.NewError(toolchain.ErrUnavailable, op, err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

func readOutput(op string, kind toolchain.ErrorKind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, toolchain.NewError(kind, op, fmt.Errorf("reading tool output: %w", err))
	}
	return data, nil
}
