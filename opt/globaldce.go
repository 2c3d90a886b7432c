package opt

import (
	"errors"
	"slices"

	"github.com/gogpu/shadeopt/ir"
)

// ErrNoEntry is returned by passes that need the entry point when the
// module does not name one.
var ErrNoEntry = errors.New("module has no entry point")

// globalDCE removes defined functions not reachable from the entry point
// through calls, then globals no remaining function references.
// Declarations are left to strip-dead-prototypes.
func globalDCE(m *ir.Module) error {
	entry := m.Entry()
	if entry == nil {
		return ErrNoEntry
	}

	live := map[string]bool{entry.Name: true}
	work := []*ir.Function{entry}
	for len(work) > 0 {
		f := work[len(work)-1]
		work = work[:len(work)-1]
		for _, callee := range f.Calls() {
			if live[callee] {
				continue
			}
			live[callee] = true
			if g := m.Function(callee); g != nil {
				work = append(work, g)
			}
		}
	}
	m.Functions = slices.DeleteFunc(m.Functions, func(f *ir.Function) bool {
		return !f.IsDeclaration() && !live[f.Name]
	})

	used := make(map[string]bool)
	for _, f := range m.Functions {
		for _, b := range f.Blocks {
			for _, in := range b.Instrs {
				in.Operands(func(v ir.Value) {
					if v.Kind == ir.ValueGlobal {
						used[v.Name] = true
					}
				})
			}
		}
	}
	m.Globals = slices.DeleteFunc(m.Globals, func(g ir.Global) bool { return !used[g.Name] })
	return nil
}

// stripDeadPrototypes removes declarations that no function calls.
func stripDeadPrototypes(m *ir.Module) error {
	called := make(map[string]bool)
	for _, f := range m.Functions {
		for _, c := range f.Calls() {
			called[c] = true
		}
	}
	m.Functions = slices.DeleteFunc(m.Functions, func(f *ir.Function) bool {
		return f.IsDeclaration() && !called[f.Name]
	})
	return nil
}
