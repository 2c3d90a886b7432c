package ir

// Op is an instruction opcode.
type Op uint8

const (
	OpFAdd Op = iota + 1
	OpFSub
	OpFMul
	OpFDiv
	OpIAdd
	OpISub
	OpIMul
	OpAnd
	OpOr
	OpSelect
	OpPhi
	OpCall
	OpSample
	OpSwizzle
	OpDxSample
	OpBr
	OpCondBr
	OpRet
)

var opNames = map[Op]string{
	OpFAdd:     "fadd",
	OpFSub:     "fsub",
	OpFMul:     "fmul",
	OpFDiv:     "fdiv",
	OpIAdd:     "iadd",
	OpISub:     "isub",
	OpIMul:     "imul",
	OpAnd:      "and",
	OpOr:       "or",
	OpSelect:   "select",
	OpPhi:      "phi",
	OpCall:     "call",
	OpSample:   "sample",
	OpSwizzle:  "swizzle",
	OpDxSample: "dx.op.sample",
	OpBr:       "br",
	OpCondBr:   "br",
	OpRet:      "ret",
}

// String returns the mnemonic.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "op?"
}

// LookupOp returns the opcode for a mnemonic. "br" maps to OpBr.
func LookupOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name && op != OpCondBr {
			return op, true
		}
	}
	return 0, false
}

// IsBinary reports whether op takes two operands of the result type.
func (op Op) IsBinary() bool {
	return op >= OpFAdd && op <= OpOr
}

// IsTerminator reports whether op ends a block.
func (op Op) IsTerminator() bool {
	return op == OpBr || op == OpCondBr || op == OpRet
}

// HasSideEffects reports whether an instruction with op must be kept
// even when its result is unused.
func (op Op) HasSideEffects() bool {
	return op == OpCall || op.IsTerminator()
}

// IsSample reports whether op samples a texture.
func (op Op) IsSample() bool {
	return op == OpSample || op == OpDxSample
}

// OperandKind returns the scalar kind binary op operates on.
func (op Op) OperandKind() TypeKind {
	switch op {
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		return TypeFloat
	case OpIAdd, OpISub, OpIMul:
		return TypeInt
	case OpAnd, OpOr:
		return TypeBool
	}
	return TypeVoid
}
