package ir

import (
	"fmt"
	"slices"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function string
	Block    string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Block != "" {
			return fmt.Sprintf("in function %s, block %s: %s", e.Function, e.Block, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates HLIR modules.
type Validator struct {
	module *Module
	errors []ValidationError

	function *Function
	block    string
	locals   map[string]Type
}

// Validate checks the module for correctness.
// Returns validation errors if any, or nil if the module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{module: module}
	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateGlobals()
	v.validateFunctions()

	if name, ok := v.module.GetMeta(MetaEntry); ok {
		f := v.module.Function(name)
		switch {
		case f == nil:
			v.addError("entry point %q not found", name)
		case f.IsDeclaration():
			v.addError("entry point %q has no body", name)
		}
	}
}

func (v *Validator) validateGlobals() {
	seen := make(map[string]bool)
	for _, g := range v.module.Globals {
		if seen[g.Name] {
			v.addError("duplicate global @%s", g.Name)
		}
		seen[g.Name] = true
		if !g.Type.IsResource() {
			v.addError("global @%s has non-resource type %s", g.Name, g.Type)
		}
	}
}

func (v *Validator) validateFunctions() {
	seen := make(map[string]bool)
	for _, f := range v.module.Functions {
		if seen[f.Name] {
			v.addError("duplicate function @%s", f.Name)
		}
		seen[f.Name] = true
		if f.IsDeclaration() {
			continue
		}
		v.validateFunction(f)
	}
	v.function = nil
	v.block = ""
}

func (v *Validator) validateFunction(f *Function) {
	v.function = f
	v.block = ""
	v.locals = make(map[string]Type)

	labels := make(map[string]bool)
	for _, b := range f.Blocks {
		if labels[b.Label] {
			v.addError("duplicate block label %s", b.Label)
		}
		labels[b.Label] = true
	}

	for _, p := range f.Params {
		if _, dup := v.locals[p.Name]; dup {
			v.addError("duplicate parameter %%%s", p.Name)
		}
		v.locals[p.Name] = p.Type
	}
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Result == "" {
				continue
			}
			if _, dup := v.locals[in.Result]; dup {
				v.block = b.Label
				v.addError("%%%s defined more than once", in.Result)
			}
			v.locals[in.Result] = in.Type
		}
	}

	preds := f.Predecessors()
	for _, b := range f.Blocks {
		v.block = b.Label
		v.validateBlock(b, labels, preds[b.Label])
	}
}

func (v *Validator) validateBlock(b *Block, labels map[string]bool, preds []string) {
	if b.Terminator() == nil {
		v.addError("block does not end in a terminator")
	}
	inPhis := true
	for i, in := range b.Instrs {
		if in.Op.IsTerminator() && i != len(b.Instrs)-1 {
			v.addError("terminator %s in the middle of the block", in.Op)
		}
		if in.Op == OpPhi {
			if !inPhis {
				v.addError("phi %%%s after non-phi instruction", in.Result)
			}
			v.validatePhi(in, preds)
		} else {
			inPhis = false
		}
		for _, t := range in.Targets {
			if !labels[t] {
				v.addError("branch to unknown block %s", t)
			}
		}
		in.Operands(v.validateOperand)
		v.validateInstr(in)
	}
}

func (v *Validator) validatePhi(in *Instr, preds []string) {
	var from []string
	for _, inc := range in.Incoming {
		if slices.Contains(from, inc.Block) {
			v.addError("phi %%%s has two values for block %s", in.Result, inc.Block)
		}
		from = append(from, inc.Block)
		if !slices.Contains(preds, inc.Block) {
			v.addError("phi %%%s names %s which is not a predecessor", in.Result, inc.Block)
		}
	}
	if len(from) != len(preds) {
		v.addError("phi %%%s has %d incoming values for %d predecessors", in.Result, len(from), len(preds))
	}
}

func (v *Validator) validateOperand(val Value) {
	switch val.Kind {
	case ValueLocal:
		if _, ok := v.locals[val.Name]; !ok {
			v.addError("use of undefined value %%%s", val.Name)
		}
	case ValueGlobal:
		if _, ok := v.module.Global(val.Name); !ok {
			v.addError("use of undefined global @%s", val.Name)
		}
	case ValueConst:
		if !val.Const.Type.IsValue() {
			v.addError("constant of non-value type %s", val.Const.Type)
		}
	}
}

func (v *Validator) validateInstr(in *Instr) {
	switch {
	case in.Op.IsBinary():
		v.expectArgs(in, 2)
		if in.Type.Kind != in.Op.OperandKind() {
			v.addError("%s produces %s", in.Op, in.Type)
		}
		for _, a := range in.Args {
			v.expectType(in, a, in.Type)
		}
	case in.Op == OpSelect:
		if v.expectArgs(in, 3) {
			v.expectType(in, in.Args[0], Bool)
			v.expectType(in, in.Args[1], in.Type)
			v.expectType(in, in.Args[2], in.Type)
		}
	case in.Op == OpPhi:
		for _, inc := range in.Incoming {
			v.expectType(in, inc.Value, in.Type)
		}
	case in.Op == OpCall:
		v.validateCall(in)
	case in.Op.IsSample():
		if v.expectArgs(in, 3) {
			v.expectGlobal(in, in.Args[0], TypeTexture2D)
			v.expectGlobal(in, in.Args[1], TypeSampler)
			v.expectType(in, in.Args[2], Float2)
		}
		if in.Type != Float4 {
			v.addError("%s produces %s, want float4", in.Op, in.Type)
		}
	case in.Op == OpSwizzle:
		v.validateSwizzle(in)
	case in.Op == OpBr:
		if len(in.Targets) != 1 {
			v.addError("br needs one target, got %d", len(in.Targets))
		}
	case in.Op == OpCondBr:
		if len(in.Targets) != 2 {
			v.addError("conditional br needs two targets, got %d", len(in.Targets))
		}
		if v.expectArgs(in, 1) {
			v.expectType(in, in.Args[0], Bool)
		}
	case in.Op == OpRet:
		v.validateRet(in)
	default:
		v.addError("unknown opcode %d", in.Op)
	}
}

func (v *Validator) validateCall(in *Instr) {
	callee := v.module.Function(in.Callee)
	if callee == nil {
		v.addError("call to undefined function @%s", in.Callee)
		return
	}
	if callee.Return != in.Type {
		v.addError("call to @%s returns %s, not %s", in.Callee, callee.Return, in.Type)
	}
	if (in.Result != "") != (in.Type != Void) {
		v.addError("call to @%s: result name does not match return type %s", in.Callee, in.Type)
	}
	if len(in.Args) != len(callee.Params) {
		v.addError("call to @%s passes %d arguments, want %d", in.Callee, len(in.Args), len(callee.Params))
		return
	}
	for i, a := range in.Args {
		v.expectType(in, a, callee.Params[i].Type)
	}
}

func (v *Validator) validateSwizzle(in *Instr) {
	if !v.expectArgs(in, 1) {
		return
	}
	if len(in.Mask) == 0 || len(in.Mask) > 4 || int(in.Type.Width) != len(in.Mask) {
		v.addError("swizzle mask %q does not match %s", in.Mask, in.Type)
	}
	src, ok := TypeOf(in.Args[0], v.locals)
	if !ok {
		return
	}
	if src.Kind != in.Type.Kind {
		v.addError("swizzle of %s produces %s", src, in.Type)
	}
	for _, c := range in.Mask {
		idx := SwizzleIndex(c)
		if idx < 0 || idx >= int(src.Width) {
			v.addError("swizzle component %q out of range for %s", c, src)
		}
	}
}

func (v *Validator) validateRet(in *Instr) {
	want := v.function.Return
	if want == Void {
		if len(in.Args) != 0 {
			v.addError("ret with value in void function")
		}
		return
	}
	if v.expectArgs(in, 1) {
		v.expectType(in, in.Args[0], want)
	}
}

func (v *Validator) expectArgs(in *Instr, n int) bool {
	if len(in.Args) != n {
		v.addError("%s takes %d operands, got %d", in.Op, n, len(in.Args))
		return false
	}
	return true
}

func (v *Validator) expectType(in *Instr, val Value, want Type) {
	if val.Kind == ValueGlobal {
		v.addError("%s: global @%s used as a value", in.Op, val.Name)
		return
	}
	got, ok := TypeOf(val, v.locals)
	if ok && got != want {
		v.addError("%s: operand %s has type %s, want %s", in.Op, val, got, want)
	}
}

func (v *Validator) expectGlobal(in *Instr, val Value, kind TypeKind) {
	if val.Kind != ValueGlobal {
		v.addError("%s: operand %s is not a global", in.Op, val)
		return
	}
	if g, ok := v.module.Global(val.Name); ok && g.Type.Kind != kind {
		v.addError("%s: @%s has type %s", in.Op, val.Name, g.Type)
	}
}

func (v *Validator) addError(format string, args ...interface{}) {
	e := ValidationError{Message: fmt.Sprintf(format, args...)}
	if v.function != nil {
		e.Function = v.function.Name
		e.Block = v.block
	}
	v.errors = append(v.errors, e)
}

// SwizzleIndex returns the component index of a swizzle letter, or -1.
func SwizzleIndex(c rune) int {
	switch c {
	case 'x', 'r':
		return 0
	case 'y', 'g':
		return 1
	case 'z', 'b':
		return 2
	case 'w', 'a':
		return 3
	}
	return -1
}

// ValidateStructure checks only the shape that passes index into: block
// terminators, operand and target counts, branch and phi labels, and call
// arity. Types and value definitions are not checked, so modules built
// with validation disabled still pass.
func ValidateStructure(module *Module) []ValidationError {
	if module == nil {
		return []ValidationError{{Message: "module is nil"}}
	}
	v := &Validator{module: module}
	for _, f := range module.Functions {
		if f.IsDeclaration() {
			continue
		}
		v.function = f
		labels := make(map[string]bool, len(f.Blocks))
		for _, b := range f.Blocks {
			labels[b.Label] = true
		}
		for _, b := range f.Blocks {
			v.block = b.Label
			if b.Terminator() == nil {
				v.addError("block does not end in a terminator")
			}
			for i, in := range b.Instrs {
				if in.Op.IsTerminator() && i != len(b.Instrs)-1 {
					v.addError("terminator %s in the middle of the block", in.Op)
				}
				for _, t := range in.Targets {
					if !labels[t] {
						v.addError("branch to unknown block %s", t)
					}
				}
				for _, inc := range in.Incoming {
					if !labels[inc.Block] {
						v.addError("phi %%%s names unknown block %s", in.Result, inc.Block)
					}
				}
				v.checkShape(in)
			}
		}
	}
	return v.errors
}

func (v *Validator) checkShape(in *Instr) {
	switch {
	case in.Op.IsBinary():
		v.expectArgs(in, 2)
	case in.Op == OpSelect, in.Op.IsSample():
		v.expectArgs(in, 3)
	case in.Op == OpSwizzle:
		v.expectArgs(in, 1)
	case in.Op == OpPhi:
	case in.Op == OpCall:
		callee := v.module.Function(in.Callee)
		if callee == nil {
			v.addError("call to undefined function @%s", in.Callee)
		} else if len(in.Args) != len(callee.Params) {
			v.addError("call to @%s passes %d arguments, want %d", in.Callee, len(in.Args), len(callee.Params))
		}
	case in.Op == OpBr:
		if len(in.Targets) != 1 {
			v.addError("br needs one target, got %d", len(in.Targets))
		}
	case in.Op == OpCondBr:
		if len(in.Targets) != 2 {
			v.addError("conditional br needs two targets, got %d", len(in.Targets))
		}
		v.expectArgs(in, 1)
	case in.Op == OpRet:
		if len(in.Args) > 1 {
			v.addError("ret takes at most one operand, got %d", len(in.Args))
		}
	default:
		v.addError("unknown opcode %d", in.Op)
	}
}
