package ir

import "slices"

// Module represents a shader module in HLIR form.
type Module struct {
	// Target is the shader profile, e.g. "ps_6_0".
	Target string

	// Meta holds ordered key/value module metadata.
	Meta []Metadata

	// Globals holds module-scope resources.
	Globals []Global

	// Functions holds definitions and declarations, in order.
	Functions []*Function
}

// Metadata is one module metadata entry.
type Metadata struct {
	Key   string
	Value string
}

// Well-known metadata keys.
const (
	// MetaEntry names the entry point function.
	MetaEntry = "hlsl.entry"
)

// Global is a module-scope resource.
type Global struct {
	Name string
	Type Type
}

// Param is a function parameter.
type Param struct {
	Name     string
	Type     Type
	Semantic string
}

// Function is a function definition, or a declaration when Blocks is empty.
type Function struct {
	Name           string
	Return         Type
	ReturnSemantic string
	Params         []Param

	// Blocks holds the body. The first block is the entry block.
	Blocks []*Block
}

// Block is a basic block.
type Block struct {
	Label  string
	Instrs []*Instr
}

// Incoming is one phi operand.
type Incoming struct {
	Value Value
	Block string
}

// Instr is one HLIR instruction.
type Instr struct {
	// Result names the produced local. Empty when nothing is produced.
	Result string

	Op Op

	// Type is the result type (the return type for calls).
	Type Type

	Args []Value

	// Callee is the called function for OpCall.
	Callee string

	// Mask is the component selection for OpSwizzle, e.g. "xy".
	Mask string

	// Incoming holds phi operands for OpPhi.
	Incoming []Incoming

	// Targets holds successor labels for OpBr (one) and OpCondBr (two).
	Targets []string
}

// GetMeta returns the value stored under key.
func (m *Module) GetMeta(key string) (string, bool) {
	for _, md := range m.Meta {
		if md.Key == key {
			return md.Value, true
		}
	}
	return "", false
}

// SetMeta stores value under key, keeping the position of an existing entry.
func (m *Module) SetMeta(key, value string) {
	for i := range m.Meta {
		if m.Meta[i].Key == key {
			m.Meta[i].Value = value
			return
		}
	}
	m.Meta = append(m.Meta, Metadata{Key: key, Value: value})
}

// DeleteMeta removes key and reports whether it was present.
func (m *Module) DeleteMeta(key string) bool {
	for i := range m.Meta {
		if m.Meta[i].Key == key {
			m.Meta = slices.Delete(m.Meta, i, i+1)
			return true
		}
	}
	return false
}

// Entry returns the entry point function, or nil.
func (m *Module) Entry() *Function {
	name, ok := m.GetMeta(MetaEntry)
	if !ok {
		return nil
	}
	return m.Function(name)
}

// Function returns the function named name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Global returns the global named name.
func (m *Module) Global(name string) (Global, bool) {
	for _, g := range m.Globals {
		if g.Name == name {
			return g, true
		}
	}
	return Global{}, false
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	c := &Module{
		Target:    m.Target,
		Meta:      slices.Clone(m.Meta),
		Globals:   slices.Clone(m.Globals),
		Functions: make([]*Function, len(m.Functions)),
	}
	for i, f := range m.Functions {
		c.Functions[i] = f.Clone()
	}
	return c
}

// IsDeclaration reports whether f has no body.
func (f *Function) IsDeclaration() bool {
	return len(f.Blocks) == 0
}

// Block returns the block labelled label, or nil.
func (f *Function) Block(label string) *Block {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// Clone returns a deep copy of the function.
func (f *Function) Clone() *Function {
	c := *f
	c.Params = slices.Clone(f.Params)
	c.Blocks = make([]*Block, len(f.Blocks))
	for i, b := range f.Blocks {
		c.Blocks[i] = b.Clone()
	}
	if f.Blocks == nil {
		c.Blocks = nil
	}
	return &c
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	c := &Block{Label: b.Label, Instrs: make([]*Instr, len(b.Instrs))}
	for i, in := range b.Instrs {
		c.Instrs[i] = in.Clone()
	}
	return c
}

// Terminator returns the last instruction if it is a terminator.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if !last.Op.IsTerminator() {
		return nil
	}
	return last
}

// Successors returns the distinct successor labels in branch order.
func (b *Block) Successors() []string {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	var succ []string
	for _, t := range term.Targets {
		if !slices.Contains(succ, t) {
			succ = append(succ, t)
		}
	}
	return succ
}

// Clone returns a deep copy of the instruction.
func (in *Instr) Clone() *Instr {
	c := *in
	c.Args = slices.Clone(in.Args)
	c.Incoming = slices.Clone(in.Incoming)
	c.Targets = slices.Clone(in.Targets)
	return &c
}
