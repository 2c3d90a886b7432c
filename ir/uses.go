package ir

import "strconv"

// Operands calls fn for every value operand of the instruction,
// including phi incoming values.
func (in *Instr) Operands(fn func(Value)) {
	for _, a := range in.Args {
		fn(a)
	}
	for _, inc := range in.Incoming {
		fn(inc.Value)
	}
}

// Replace rewrites every operand equal to old into repl and reports
// whether anything changed.
func (in *Instr) Replace(old, repl Value) bool {
	changed := false
	for i := range in.Args {
		if in.Args[i] == old {
			in.Args[i] = repl
			changed = true
		}
	}
	for i := range in.Incoming {
		if in.Incoming[i].Value == old {
			in.Incoming[i].Value = repl
			changed = true
		}
	}
	return changed
}

// ReplaceUses rewrites every use of old in f into repl.
func (f *Function) ReplaceUses(old, repl Value) {
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			in.Replace(old, repl)
		}
	}
}

// UseCounts counts uses of every local in f.
func (f *Function) UseCounts() map[string]int {
	uses := make(map[string]int)
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			in.Operands(func(v Value) {
				if v.Kind == ValueLocal {
					uses[v.Name]++
				}
			})
		}
	}
	return uses
}

// Predecessors maps every block label to its distinct predecessors,
// in block order.
func (f *Function) Predecessors() map[string][]string {
	preds := make(map[string][]string, len(f.Blocks))
	for _, b := range f.Blocks {
		if _, ok := preds[b.Label]; !ok {
			preds[b.Label] = nil
		}
		for _, s := range b.Successors() {
			preds[s] = append(preds[s], b.Label)
		}
	}
	return preds
}

// LocalTypes maps every parameter and instruction result to its type.
func (f *Function) LocalTypes() map[string]Type {
	types := make(map[string]Type)
	for _, p := range f.Params {
		types[p.Name] = p.Type
	}
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Result != "" {
				types[in.Result] = in.Type
			}
		}
	}
	return types
}

// TypeOf returns the type of a local or constant operand, looking locals
// up in a map built by LocalTypes.
func TypeOf(v Value, locals map[string]Type) (Type, bool) {
	switch v.Kind {
	case ValueConst:
		return v.Const.Type, true
	case ValueLocal:
		t, ok := locals[v.Name]
		return t, ok
	}
	return Type{}, false
}

// Names returns every local name and block label used in f.
func (f *Function) Names() map[string]bool {
	names := make(map[string]bool)
	for _, p := range f.Params {
		names[p.Name] = true
	}
	for _, b := range f.Blocks {
		names[b.Label] = true
		for _, in := range b.Instrs {
			if in.Result != "" {
				names[in.Result] = true
			}
		}
	}
	return names
}

// FreshName returns base, or base with a numeric suffix, that is not in taken.
// The returned name is added to taken.
func FreshName(taken map[string]bool, base string) string {
	name := base
	for i := 1; taken[name]; i++ {
		name = base + "." + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}

// RemoveInstr removes in from the block, reporting whether it was found.
func (b *Block) RemoveInstr(in *Instr) bool {
	for i, x := range b.Instrs {
		if x == in {
			b.Instrs = append(b.Instrs[:i], b.Instrs[i+1:]...)
			return true
		}
	}
	return false
}

// Calls returns the callees referenced by f, in first-use order.
func (f *Function) Calls() []string {
	var callees []string
	seen := make(map[string]bool)
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Op == OpCall && !seen[in.Callee] {
				seen[in.Callee] = true
				callees = append(callees, in.Callee)
			}
		}
	}
	return callees
}
