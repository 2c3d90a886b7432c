package opt

import (
	"slices"

	"github.com/gogpu/shadeopt/ir"
)

// deadCodeElim removes instructions whose results are never used and
// which have no side effects, until none are left.
func deadCodeElim(_ *ir.Module, f *ir.Function) error {
	for {
		uses := f.UseCounts()
		removed := false
		for _, b := range f.Blocks {
			n := len(b.Instrs)
			b.Instrs = slices.DeleteFunc(b.Instrs, func(in *ir.Instr) bool {
				return in.Result != "" && !in.Op.HasSideEffects() && uses[in.Result] == 0
			})
			removed = removed || len(b.Instrs) != n
		}
		if !removed {
			return nil
		}
	}
}
