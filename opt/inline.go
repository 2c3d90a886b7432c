package opt

import (
	"slices"

	"github.com/gogpu/shadeopt/ir"
)

// maxInlineRounds bounds repeated inlining of calls exposed by earlier
// inlining, so mutually recursive helpers terminate.
const maxInlineRounds = 4

// inlineCalls replaces calls to single-block, phi-free helper functions
// with a copy of the helper body. The entry point is never inlined.
func inlineCalls(m *ir.Module) error {
	entry := ""
	if e := m.Entry(); e != nil {
		entry = e.Name
	}
	for range maxInlineRounds {
		changed := false
		for _, caller := range m.Functions {
			if caller.IsDeclaration() {
				continue
			}
			for _, b := range caller.Blocks {
				for _, call := range slices.Clone(b.Instrs) {
					if call.Op != ir.OpCall {
						continue
					}
					callee := m.Function(call.Callee)
					if !inlinable(callee, caller, entry) {
						continue
					}
					inlineCall(caller, b, call, callee)
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return nil
}

func inlinable(callee, caller *ir.Function, entry string) bool {
	if callee == nil || callee == caller || callee.Name == entry || len(callee.Blocks) != 1 {
		return false
	}
	body := callee.Blocks[0]
	term := body.Terminator()
	if term == nil || term.Op != ir.OpRet {
		return false
	}
	for _, in := range body.Instrs {
		if in.Op == ir.OpPhi {
			return false
		}
	}
	return true
}

func inlineCall(caller *ir.Function, b *ir.Block, call *ir.Instr, callee *ir.Function) {
	taken := caller.Names()
	mapping := make(map[string]ir.Value, len(callee.Params))
	for i, p := range callee.Params {
		if i < len(call.Args) {
			mapping[p.Name] = call.Args[i]
		}
	}
	remap := func(v ir.Value) ir.Value {
		if v.Kind == ir.ValueLocal {
			if r, ok := mapping[v.Name]; ok {
				return r
			}
		}
		return v
	}

	body := callee.Blocks[0].Instrs
	copies := make([]*ir.Instr, 0, len(body)-1)
	var ret ir.Value
	hasRet := false
	for _, src := range body {
		in := src.Clone()
		for i := range in.Args {
			in.Args[i] = remap(in.Args[i])
		}
		if in.Op == ir.OpRet {
			if len(in.Args) > 0 {
				ret, hasRet = in.Args[0], true
			}
			continue
		}
		if in.Result != "" {
			name := ir.FreshName(taken, in.Result)
			mapping[in.Result] = ir.Local(name)
			in.Result = name
		}
		copies = append(copies, in)
	}

	idx := slices.Index(b.Instrs, call)
	b.Instrs = slices.Replace(b.Instrs, idx, idx+1, copies...)
	if call.Result != "" && hasRet {
		caller.ReplaceUses(ir.Local(call.Result), ret)
	}
}
