package opt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/shadeopt/ir"
	"github.com/gogpu/shadeopt/passes"
)

// Metadata keys written by the pipeline.
const (
	MetaPaused  = "hlsl.paused"
	MetaNoPause = "hlsl.nopause"
)

var (
	// ErrUnknownPass is returned for a token that names no registered pass.
	ErrUnknownPass = errors.New("unknown pass")

	// ErrMisplacedControl is returned when a pause, resume or nopause token
	// appears in the function pipeline, or pause is not the last token.
	ErrMisplacedControl = errors.New("misplaced pipeline control token")

	// ErrNotResumed is returned when a paused module is optimized without
	// -hlsl-passes-resume as the first module step.
	ErrNotResumed = errors.New("paused module must be resumed first")

	// ErrNotPaused is returned when resuming a module that carries no
	// checkpoint.
	ErrNotPaused = errors.New("module is not paused")

	// ErrCheckpointMismatch is returned when resuming with a different
	// function pipeline than the one recorded at pause.
	ErrCheckpointMismatch = errors.New("function pipeline differs from checkpoint")

	// ErrPauseUnsupported is returned when pausing after the nopause
	// barrier ran.
	ErrPauseUnsupported = errors.New("pause requested after -hlsl-passes-nopause")
)

type stepKind uint8

const (
	stepPass stepKind = iota
	stepPause
	stepResume
	stepNoPause
)

type step struct {
	kind  stepKind
	token string
	pass  *Pass
}

// Pipeline is a parsed pass list.
type Pipeline struct {
	function []*Pass
	module   []step
	digest   string
}

// Build parses a pass list into a pipeline. Tokens before the first
// phase marker belong to the module pipeline.
func Build(tokens []string) (*Pipeline, error) {
	p := &Pipeline{}
	var fnTokens []string
	fnMode := false

	for i, tok := range tokens {
		switch {
		case passes.IsFunctionMarker(tok):
			fnMode = true
			continue
		case passes.IsPhaseMarker(tok):
			fnMode = false
			continue
		case passes.IsControl(tok):
			if fnMode {
				return nil, fmt.Errorf("%w: %s in function pipeline", ErrMisplacedControl, tok)
			}
			s := step{token: tok}
			switch tok {
			case passes.Pause:
				if i != len(tokens)-1 {
					return nil, fmt.Errorf("%w: %s must be the last token", ErrMisplacedControl, tok)
				}
				s.kind = stepPause
			case passes.Resume:
				s.kind = stepResume
			default:
				s.kind = stepNoPause
			}
			p.module = append(p.module, s)
			continue
		}

		pass, ok := Lookup(tok)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownPass, tok)
		}
		if fnMode {
			if pass.Scope() != ScopeFunction {
				return nil, fmt.Errorf("module pass %s in function pipeline", tok)
			}
			p.function = append(p.function, pass)
			fnTokens = append(fnTokens, tok)
			continue
		}
		p.module = append(p.module, step{kind: stepPass, token: tok, pass: pass})
	}

	sum := sha256.Sum256([]byte(strings.Join(fnTokens, "\n")))
	p.digest = hex.EncodeToString(sum[:8])
	return p, nil
}

// Run applies the pipeline to m in place.
//
// On a module without a checkpoint the function pipeline runs first. On a
// paused module it is skipped, and the first module step must be resume.
func (p *Pipeline) Run(ctx context.Context, m *ir.Module) error {
	_, paused := m.GetMeta(MetaPaused)

	if !paused {
		for _, pass := range p.function {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := pass.run(m); err != nil {
				return fmt.Errorf("%s: %w", pass.Name, err)
			}
		}
	}

	for i, s := range p.module {
		if err := ctx.Err(); err != nil {
			return err
		}
		if paused && (i != 0 || s.kind != stepResume) {
			return ErrNotResumed
		}
		switch s.kind {
		case stepResume:
			digest, ok := m.GetMeta(MetaPaused)
			if !ok {
				return ErrNotPaused
			}
			if digest != p.digest {
				return fmt.Errorf("%w: checkpoint %s, pipeline %s", ErrCheckpointMismatch, digest, p.digest)
			}
			m.DeleteMeta(MetaPaused)
			paused = false
		case stepPause:
			if _, ok := m.GetMeta(MetaNoPause); ok {
				return ErrPauseUnsupported
			}
			m.SetMeta(MetaPaused, p.digest)
		case stepNoPause:
			m.SetMeta(MetaNoPause, "true")
		default:
			if err := s.pass.run(m); err != nil {
				return fmt.Errorf("%s: %w", s.pass.Name, err)
			}
		}
	}

	if paused {
		return ErrNotResumed
	}
	return nil
}

// Run builds a pipeline from tokens and applies it to m.
func Run(ctx context.Context, m *ir.Module, tokens []string) error {
	p, err := Build(tokens)
	if err != nil {
		return err
	}
	return p.Run(ctx, m)
}
