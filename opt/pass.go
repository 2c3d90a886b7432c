package opt

import (
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/shadeopt/ir"
)

// Scope tells whether a pass works on one function or the whole module.
type Scope uint8

const (
	ScopeFunction Scope = iota
	ScopeModule
)

// String returns the scope name.
func (s Scope) String() string {
	if s == ScopeFunction {
		return "function"
	}
	return "module"
}

// FunctionFunc transforms a single defined function of m.
type FunctionFunc func(m *ir.Module, f *ir.Function) error

// ModuleFunc transforms the whole module.
type ModuleFunc func(m *ir.Module) error

// Pass is a named transformation. Exactly one of Function and Module is set.
type Pass struct {
	Name        string
	Description string
	Function    FunctionFunc
	Module      ModuleFunc
}

// Scope reports the scope the pass runs at.
func (p *Pass) Scope() Scope {
	if p.Function != nil {
		return ScopeFunction
	}
	return ScopeModule
}

// run applies the pass to m. Function passes run on every defined
// function in module order.
func (p *Pass) run(m *ir.Module) error {
	if p.Module != nil {
		return p.Module(m)
	}
	for _, f := range m.Functions {
		if f.IsDeclaration() {
			continue
		}
		if err := p.Function(m, f); err != nil {
			return err
		}
	}
	return nil
}

var registry = sync.OnceValue(func() map[string]*Pass {
	all := []*Pass{
		{Name: "simplifycfg", Description: "fold constant branches, drop unreachable blocks, merge straight-line blocks", Function: simplifyCFG},
		{Name: "instcombine", Description: "fold constants and algebraic identities", Function: instCombine},
		{Name: "dce", Description: "remove unused side-effect-free instructions", Function: deadCodeElim},
		{Name: "inline", Description: "inline single-block helper functions", Module: inlineCalls},
		{Name: "globaldce", Description: "remove functions and globals unreachable from the entry point", Module: globalDCE},
		{Name: "strip-dead-prototypes", Description: "remove uncalled declarations", Module: stripDeadPrototypes},
		{Name: "hlsl-hlemit", Description: "emit entry signature metadata", Module: hlEmit},
		{Name: "hlsl-dxilgen", Description: "lower high-level operations to dx.op calls", Module: dxilGen},
		{Name: "dxil-finalize", Description: "record feature flags and validator version", Module: dxilFinalize},
	}
	m := make(map[string]*Pass, len(all))
	for _, p := range all {
		m[p.Name] = p
	}
	return m
})

// Lookup returns the pass for a token such as "-simplifycfg".
func Lookup(token string) (*Pass, bool) {
	p, ok := registry()[strings.TrimPrefix(token, "-")]
	return p, ok
}

// Passes returns every registered pass sorted by name.
func Passes() []*Pass {
	reg := registry()
	out := make([]*Pass, 0, len(reg))
	for _, p := range reg {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Pass) int { return strings.Compare(a.Name, b.Name) })
	return out
}
