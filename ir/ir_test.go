package ir

import (
	"testing"
)

// sampleModule builds a small pixel shader:
//
//	main(pos, b): if b { s = sample(tex, smp, pos.xy) } ; ret phi(pos, s) * 1.0
func sampleModule() *Module {
	return &Module{
		Target: "ps_6_0",
		Meta:   []Metadata{{Key: MetaEntry, Value: "main"}},
		Globals: []Global{
			{Name: "tex", Type: Texture2D},
			{Name: "smp", Type: Sampler},
		},
		Functions: []*Function{
			{Name: "ext", Return: Float4, Params: []Param{{Type: Float4}}},
			{
				Name:           "main",
				Return:         Float4,
				ReturnSemantic: "SV_Target",
				Params: []Param{
					{Name: "pos", Type: Float4, Semantic: "SV_Position"},
					{Name: "b", Type: Bool, Semantic: "B"},
				},
				Blocks: []*Block{
					{Label: "entry", Instrs: []*Instr{
						{Op: OpCondBr, Args: []Value{Local("b")}, Targets: []string{"then", "end"}},
					}},
					{Label: "then", Instrs: []*Instr{
						{Result: "uv", Op: OpSwizzle, Type: Float2, Args: []Value{Local("pos")}, Mask: "xy"},
						{Result: "s", Op: OpSample, Type: Float4, Args: []Value{GlobalRef("tex"), GlobalRef("smp"), Local("uv")}},
						{Op: OpBr, Targets: []string{"end"}},
					}},
					{Label: "end", Instrs: []*Instr{
						{Result: "u", Op: OpPhi, Type: Float4, Incoming: []Incoming{
							{Value: Local("pos"), Block: "entry"},
							{Value: Local("s"), Block: "then"},
						}},
						{Result: "r", Op: OpFMul, Type: Float4, Args: []Value{Local("u"), ConstFloat(Float4, 1)}},
						{Op: OpRet, Args: []Value{Local("r")}},
					}},
				},
			},
		},
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"void", Void, true},
		{"bool", Bool, true},
		{"int", Int, true},
		{"float", Float, true},
		{"float2", Float2, true},
		{"float4", Float4, true},
		{"int3", Type{Kind: TypeInt, Width: 3}, true},
		{"texture2d", Texture2D, true},
		{"sampler", Sampler, true},
		{"float5", Type{}, false},
		{"float1", Type{}, false},
		{"sampler2", Type{}, false},
		{"double", Type{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseType(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok && got.String() != tt.in {
			t.Errorf("ParseType(%q).String() = %q", tt.in, got.String())
		}
	}
}

func TestMetadata(t *testing.T) {
	m := &Module{}
	m.SetMeta("a", "1")
	m.SetMeta("b", "2")
	m.SetMeta("a", "3")

	if got, _ := m.GetMeta("a"); got != "3" {
		t.Errorf("GetMeta(a) = %q, want 3", got)
	}
	if m.Meta[0].Key != "a" {
		t.Errorf("SetMeta moved existing key: %v", m.Meta)
	}
	if !m.DeleteMeta("a") || m.DeleteMeta("a") {
		t.Error("DeleteMeta did not report presence correctly")
	}
	if len(m.Meta) != 1 || m.Meta[0].Key != "b" {
		t.Errorf("Meta = %v, want [b]", m.Meta)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := sampleModule()
	c := m.Clone()

	c.Functions[1].Blocks[2].Instrs[1].Args[1] = ConstFloat(Float4, 2)
	c.Functions[1].Blocks[0].Label = "changed"
	c.SetMeta(MetaEntry, "other")

	if m.Functions[1].Blocks[2].Instrs[1].Args[1] != ConstFloat(Float4, 1) {
		t.Error("instruction args shared with clone")
	}
	if m.Functions[1].Blocks[0].Label != "entry" {
		t.Error("blocks shared with clone")
	}
	if m.Entry() == nil || m.Entry().Name != "main" {
		t.Error("metadata shared with clone")
	}
	if !c.Functions[0].IsDeclaration() {
		t.Error("clone turned declaration into definition")
	}
}

func TestPredecessorsAndUses(t *testing.T) {
	f := sampleModule().Functions[1]

	preds := f.Predecessors()
	if got := preds["end"]; len(got) != 2 || got[0] != "entry" || got[1] != "then" {
		t.Errorf("preds[end] = %v, want [entry then]", got)
	}
	if got := preds["entry"]; len(got) != 0 {
		t.Errorf("preds[entry] = %v, want none", got)
	}

	uses := f.UseCounts()
	if uses["pos"] != 2 || uses["s"] != 1 || uses["r"] != 1 {
		t.Errorf("UseCounts = %v", uses)
	}

	f.ReplaceUses(Local("r"), Local("u"))
	if ret := f.Blocks[2].Terminator(); ret.Args[0] != Local("u") {
		t.Errorf("ReplaceUses left ret operand %v", ret.Args[0])
	}
}

func TestFreshName(t *testing.T) {
	taken := map[string]bool{"x": true, "x.1": true}
	if got := FreshName(taken, "x"); got != "x.2" {
		t.Errorf("FreshName = %q, want x.2", got)
	}
	if got := FreshName(taken, "y"); got != "y" {
		t.Errorf("FreshName = %q, want y", got)
	}
	if !taken["x.2"] || !taken["y"] {
		t.Error("FreshName did not record names")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		1:      "1.0",
		0.5:    "0.5",
		-2:     "-2.0",
		1e21:   "1e+21",
		0.0001: "0.0001",
	}
	for in, want := range tests {
		if got := FormatFloat(in); got != want {
			t.Errorf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
