package opt

import (
	"math"
	"slices"
	"strings"

	"github.com/gogpu/shadeopt/ir"
)

// instCombine folds constant expressions and algebraic identities,
// rewriting uses of each simplified instruction.
func instCombine(_ *ir.Module, f *ir.Function) error {
	for changed := true; changed; {
		changed = false
		locals := f.LocalTypes()
		for _, b := range f.Blocks {
			for _, in := range slices.Clone(b.Instrs) {
				repl, ok := simplify(in, locals)
				if !ok || in.Result == "" {
					continue
				}
				b.RemoveInstr(in)
				f.ReplaceUses(ir.Local(in.Result), repl)
				changed = true
			}
		}
	}
	return nil
}

// simplify returns the value an instruction can be replaced with.
func simplify(in *ir.Instr, locals map[string]ir.Type) (ir.Value, bool) {
	switch {
	case in.Op.IsBinary():
		if len(in.Args) != 2 {
			return ir.Value{}, false
		}
		if v, ok := foldBinary(in.Op, in.Type, in.Args[0], in.Args[1]); ok {
			return v, true
		}
		return binaryIdentity(in)
	case in.Op == ir.OpSelect:
		if len(in.Args) != 3 {
			return ir.Value{}, false
		}
		cond := in.Args[0]
		if cond.Kind == ir.ValueConst {
			if cond.Const.Bool {
				return in.Args[1], true
			}
			return in.Args[2], true
		}
		if in.Args[1] == in.Args[2] {
			return in.Args[1], true
		}
	case in.Op == ir.OpPhi:
		if len(in.Incoming) == 0 {
			return ir.Value{}, false
		}
		v := in.Incoming[0].Value
		for _, inc := range in.Incoming[1:] {
			if inc.Value != v {
				return ir.Value{}, false
			}
		}
		if v.IsLocal(in.Result) {
			return ir.Value{}, false
		}
		return v, true
	case in.Op == ir.OpSwizzle:
		return simplifySwizzle(in, locals)
	}
	return ir.Value{}, false
}

func simplifySwizzle(in *ir.Instr, locals map[string]ir.Type) (ir.Value, bool) {
	if len(in.Args) != 1 {
		return ir.Value{}, false
	}
	src := in.Args[0]
	if src.Kind == ir.ValueConst {
		c := src.Const
		c.Type = in.Type
		return ir.Value{Kind: ir.ValueConst, Const: c}, true
	}
	t, ok := ir.TypeOf(src, locals)
	if !ok || t != in.Type {
		return ir.Value{}, false
	}
	if strings.HasPrefix("xyzw", in.Mask) && len(in.Mask) == int(t.Width) {
		return src, true
	}
	return ir.Value{}, false
}

func foldBinary(op ir.Op, t ir.Type, a, b ir.Value) (ir.Value, bool) {
	if a.Kind != ir.ValueConst || b.Kind != ir.ValueConst {
		return ir.Value{}, false
	}
	x, y := a.Const, b.Const
	switch op {
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv:
		var r float64
		switch op {
		case ir.OpFAdd:
			r = x.Float + y.Float
		case ir.OpFSub:
			r = x.Float - y.Float
		case ir.OpFMul:
			r = x.Float * y.Float
		default:
			if y.Float == 0 {
				return ir.Value{}, false
			}
			r = x.Float / y.Float
		}
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return ir.Value{}, false
		}
		return ir.ConstFloat(t, r), true
	case ir.OpIAdd:
		return ir.ConstInt(t, x.Int+y.Int), true
	case ir.OpISub:
		return ir.ConstInt(t, x.Int-y.Int), true
	case ir.OpIMul:
		return ir.ConstInt(t, x.Int*y.Int), true
	case ir.OpAnd:
		return ir.ConstBool(t, x.Bool && y.Bool), true
	case ir.OpOr:
		return ir.ConstBool(t, x.Bool || y.Bool), true
	}
	return ir.Value{}, false
}

// binaryIdentity handles x*1, x+0, x-0, x/1, x&true and x|false, and the
// commuted forms of the commutative ones.
func binaryIdentity(in *ir.Instr) (ir.Value, bool) {
	a, b := in.Args[0], in.Args[1]
	isOne := func(v ir.Value) bool { return v.Kind == ir.ValueConst && v.Const.Type == in.Type && v.Const.IsOne() }
	isZero := func(v ir.Value) bool { return v.Kind == ir.ValueConst && v.Const.Type == in.Type && v.Const.IsZero() }

	switch in.Op {
	case ir.OpFMul, ir.OpIMul, ir.OpAnd:
		if isOne(b) {
			return a, true
		}
		if isOne(a) {
			return b, true
		}
	case ir.OpFAdd, ir.OpIAdd, ir.OpOr:
		if isZero(b) {
			return a, true
		}
		if isZero(a) {
			return b, true
		}
	case ir.OpFSub, ir.OpISub:
		if isZero(b) {
			return a, true
		}
	case ir.OpFDiv:
		if isOne(b) {
			return a, true
		}
	}
	return ir.Value{}, false
}
