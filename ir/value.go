package ir

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind distinguishes operand kinds.
type ValueKind uint8

const (
	ValueLocal ValueKind = iota
	ValueGlobal
	ValueConst
)

// Value is an instruction operand. Values are comparable.
type Value struct {
	Kind ValueKind

	// Name is the local or global name, without its sigil.
	Name string

	// Const is the constant, for ValueConst.
	Const Constant
}

// Constant is a typed literal. Vector-typed constants splat their scalar.
type Constant struct {
	Type  Type
	Float float64
	Int   int64
	Bool  bool
}

// Local returns a reference to a local value.
func Local(name string) Value {
	return Value{Kind: ValueLocal, Name: name}
}

// GlobalRef returns a reference to a global.
func GlobalRef(name string) Value {
	return Value{Kind: ValueGlobal, Name: name}
}

// ConstFloat returns a float constant of type t.
func ConstFloat(t Type, f float64) Value {
	return Value{Kind: ValueConst, Const: Constant{Type: t, Float: f}}
}

// ConstInt returns an int constant of type t.
func ConstInt(t Type, i int64) Value {
	return Value{Kind: ValueConst, Const: Constant{Type: t, Int: i}}
}

// ConstBool returns a bool constant of type t.
func ConstBool(t Type, b bool) Value {
	return Value{Kind: ValueConst, Const: Constant{Type: t, Bool: b}}
}

// IsLocal reports whether v refers to the local named name.
func (v Value) IsLocal(name string) bool {
	return v.Kind == ValueLocal && v.Name == name
}

// String returns the textual operand form.
func (v Value) String() string {
	switch v.Kind {
	case ValueLocal:
		return "%" + v.Name
	case ValueGlobal:
		return "@" + v.Name
	default:
		return v.Const.String()
	}
}

// String returns the textual form, e.g. "float4 1.0".
func (c Constant) String() string {
	return c.Type.String() + " " + c.Literal()
}

// Literal returns the literal without its type.
func (c Constant) Literal() string {
	switch c.Type.Kind {
	case TypeBool:
		return strconv.FormatBool(c.Bool)
	case TypeInt:
		return strconv.FormatInt(c.Int, 10)
	case TypeFloat:
		return FormatFloat(c.Float)
	default:
		return "undef"
	}
}

// IsOne reports whether c is the multiplicative identity.
func (c Constant) IsOne() bool {
	switch c.Type.Kind {
	case TypeFloat:
		return c.Float == 1
	case TypeInt:
		return c.Int == 1
	case TypeBool:
		return c.Bool
	}
	return false
}

// IsZero reports whether c is the additive identity.
func (c Constant) IsZero() bool {
	switch c.Type.Kind {
	case TypeFloat:
		return c.Float == 0 && !math.Signbit(c.Float)
	case TypeInt:
		return c.Int == 0
	case TypeBool:
		return !c.Bool
	}
	return false
}

// FormatFloat formats f so that it always reads back as a float literal.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
