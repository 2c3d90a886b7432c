package opt

import (
	"slices"

	"github.com/gogpu/shadeopt/ir"
)

// simplifyCFG folds branches on constants, removes unreachable blocks,
// drops single-entry phis and merges a block into its only predecessor
// when that predecessor falls through to it unconditionally.
func simplifyCFG(_ *ir.Module, f *ir.Function) error {
	for changed := true; changed; {
		changed = foldConstantBranches(f)
		changed = removeUnreachable(f) || changed
		changed = foldTrivialPhis(f) || changed
		changed = mergeBlocks(f) || changed
	}
	return nil
}

func foldConstantBranches(f *ir.Function) bool {
	changed := false
	for _, b := range f.Blocks {
		term := b.Terminator()
		if term == nil || term.Op != ir.OpCondBr || len(term.Targets) != 2 {
			continue
		}
		taken, dropped := "", ""
		switch {
		case term.Targets[0] == term.Targets[1]:
			taken = term.Targets[0]
		case len(term.Args) == 1 && term.Args[0].Kind == ir.ValueConst:
			taken, dropped = term.Targets[1], term.Targets[0]
			if term.Args[0].Const.Bool {
				taken, dropped = dropped, taken
			}
		default:
			continue
		}
		term.Op = ir.OpBr
		term.Args = nil
		term.Targets = []string{taken}
		if dropped != "" {
			if succ := f.Block(dropped); succ != nil {
				removeIncoming(succ, b.Label)
			}
		}
		changed = true
	}
	return changed
}

func removeUnreachable(f *ir.Function) bool {
	if len(f.Blocks) == 0 {
		return false
	}
	reached := map[string]bool{f.Blocks[0].Label: true}
	work := []*ir.Block{f.Blocks[0]}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		for _, s := range b.Successors() {
			if succ := f.Block(s); succ != nil && !reached[s] {
				reached[s] = true
				work = append(work, succ)
			}
		}
	}
	if len(reached) == len(f.Blocks) {
		return false
	}

	var dead []string
	f.Blocks = slices.DeleteFunc(f.Blocks, func(b *ir.Block) bool {
		if !reached[b.Label] {
			dead = append(dead, b.Label)
			return true
		}
		return false
	})
	for _, b := range f.Blocks {
		for _, label := range dead {
			removeIncoming(b, label)
		}
	}
	return len(dead) > 0
}

// foldTrivialPhis replaces phis with a single incoming edge by that value.
func foldTrivialPhis(f *ir.Function) bool {
	changed := false
	for _, b := range f.Blocks {
		for _, in := range slices.Clone(b.Instrs) {
			if in.Op != ir.OpPhi || len(in.Incoming) != 1 {
				continue
			}
			b.RemoveInstr(in)
			f.ReplaceUses(ir.Local(in.Result), in.Incoming[0].Value)
			changed = true
		}
	}
	return changed
}

func mergeBlocks(f *ir.Function) bool {
	changed := false
	for {
		preds := f.Predecessors()
		merged := false
		for _, pred := range f.Blocks {
			term := pred.Terminator()
			if term == nil || term.Op != ir.OpBr || len(term.Targets) != 1 {
				continue
			}
			succ := f.Block(term.Targets[0])
			if succ == nil || succ == pred || succ == f.Blocks[0] || len(preds[succ.Label]) != 1 {
				continue
			}
			if len(succ.Instrs) > 0 && succ.Instrs[0].Op == ir.OpPhi {
				continue
			}
			pred.Instrs = append(pred.Instrs[:len(pred.Instrs)-1], succ.Instrs...)
			f.Blocks = slices.DeleteFunc(f.Blocks, func(b *ir.Block) bool { return b == succ })
			renameIncoming(f, succ.Label, pred.Label)
			merged = true
			break
		}
		if !merged {
			return changed
		}
		changed = true
	}
}

func removeIncoming(b *ir.Block, from string) {
	for _, in := range b.Instrs {
		if in.Op != ir.OpPhi {
			continue
		}
		in.Incoming = slices.DeleteFunc(in.Incoming, func(inc ir.Incoming) bool { return inc.Block == from })
	}
}

func renameIncoming(f *ir.Function, from, to string) {
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Op != ir.OpPhi {
				continue
			}
			for i := range in.Incoming {
				if in.Incoming[i].Block == from {
					in.Incoming[i].Block = to
				}
			}
		}
	}
}
