package ir

import "strconv"

// TypeKind represents the kind of a type.
type TypeKind uint8

const (
	TypeVoid TypeKind = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeTexture2D
	TypeSampler
)

// Type is a scalar, vector or resource type.
type Type struct {
	Kind TypeKind

	// Width is the vector width (1 for scalars). Zero for void and
	// resource types.
	Width uint8
}

// Common types.
var (
	Void      = Type{Kind: TypeVoid}
	Bool      = Type{Kind: TypeBool, Width: 1}
	Int       = Type{Kind: TypeInt, Width: 1}
	Float     = Type{Kind: TypeFloat, Width: 1}
	Float2    = Type{Kind: TypeFloat, Width: 2}
	Float4    = Type{Kind: TypeFloat, Width: 4}
	Texture2D = Type{Kind: TypeTexture2D}
	Sampler   = Type{Kind: TypeSampler}
)

var typeNames = map[TypeKind]string{
	TypeVoid:      "void",
	TypeBool:      "bool",
	TypeInt:       "int",
	TypeFloat:     "float",
	TypeTexture2D: "texture2d",
	TypeSampler:   "sampler",
}

// String returns the textual name, e.g. "float4".
func (t Type) String() string {
	name, ok := typeNames[t.Kind]
	if !ok {
		return "type" + strconv.Itoa(int(t.Kind))
	}
	if t.Width > 1 {
		return name + strconv.Itoa(int(t.Width))
	}
	return name
}

// IsValue reports whether values of the type can be computed with.
func (t Type) IsValue() bool {
	switch t.Kind {
	case TypeBool, TypeInt, TypeFloat:
		return t.Width >= 1 && t.Width <= 4
	}
	return false
}

// IsResource reports whether t is a texture or sampler.
func (t Type) IsResource() bool {
	return t.Kind == TypeTexture2D || t.Kind == TypeSampler
}

// Scalar returns the element type of a vector.
func (t Type) Scalar() Type {
	if !t.IsValue() {
		return t
	}
	return Type{Kind: t.Kind, Width: 1}
}

// WithWidth returns t with a different vector width.
func (t Type) WithWidth(w uint8) Type {
	return Type{Kind: t.Kind, Width: w}
}

// ParseType parses a textual type name.
func ParseType(s string) (Type, bool) {
	for kind, name := range typeNames {
		if s == name {
			t := Type{Kind: kind}
			if t.Kind == TypeBool || t.Kind == TypeInt || t.Kind == TypeFloat {
				t.Width = 1
			}
			return t, true
		}
		if len(s) == len(name)+1 && s[:len(name)] == name {
			w := s[len(name)] - '0'
			if w >= 2 && w <= 4 && (kind == TypeBool || kind == TypeInt || kind == TypeFloat) {
				return Type{Kind: kind, Width: w}, true
			}
		}
	}
	return Type{}, false
}

// Word packs the type into one codec word.
func (t Type) Word() uint32 {
	return uint32(t.Kind)<<8 | uint32(t.Width)
}

// TypeFromWord unpacks a type packed with Word.
func TypeFromWord(w uint32) Type {
	return Type{Kind: TypeKind(w >> 8), Width: uint8(w)}
}
