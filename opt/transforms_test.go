package opt

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/shadeopt/ir"
	"github.com/gogpu/shadeopt/irtext"
)

func TestFunctionPasses(t *testing.T) {
	tests := []struct {
		name string
		pass string
		src  string
		want string
	}{
		{
			name: "simplifycfg folds constant branch",
			pass: "-simplifycfg",
			src: `define float4 @main(float4 %p : SV_Position) : SV_Target {
entry:
  br bool true, label %a, label %b
a:
  %x = fadd float4 %p, %p
  br label %join
b:
  br label %join
join:
  %v = phi float4 [%x, %a], [%p, %b]
  ret %v
}`,
			want: `define float4 @main(float4 %p : SV_Position) : SV_Target {
entry:
  %x = fadd float4 %p, %p
  ret %x
}
`,
		},
		{
			name: "simplifycfg keeps real diamonds",
			pass: "-simplifycfg",
			src: `define float4 @main(float4 %p : SV_Position, bool %c : C) : SV_Target {
entry:
  br %c, label %a, label %join
a:
  br label %join
join:
  %v = phi float4 [%p, %entry], [%p, %a]
  ret %v
}`,
			want: `define float4 @main(float4 %p : SV_Position, bool %c : C) : SV_Target {
entry:
  br %c, label %a, label %join
a:
  br label %join
join:
  %v = phi float4 [%p, %entry], [%p, %a]
  ret %v
}
`,
		},
		{
			name: "simplifycfg folds branch with equal targets",
			pass: "-simplifycfg",
			src: `define float @main(bool %c : C) : SV_Target {
entry:
  br %c, label %next, label %next
next:
  ret float 1.0
}`,
			want: `define float @main(bool %c : C) : SV_Target {
entry:
  ret float 1.0
}
`,
		},
		{
			name: "instcombine identities",
			pass: "-instcombine",
			src: `define float4 @main(float4 %p : SV_Position, bool %c : C) : SV_Target {
entry:
  %a = fadd float float 1.0, float 2.0
  %m = fmul float4 %p, float4 1.0
  %s = select float4 %c, %m, %p
  %z = swizzle float4 %s, xyzw
  %k = fadd float4 float4 0.0, %z
  ret %k
}`,
			want: `define float4 @main(float4 %p : SV_Position, bool %c : C) : SV_Target {
entry:
  ret %p
}
`,
		},
		{
			name: "instcombine folds constants into uses",
			pass: "-instcombine",
			src: `define int @main(int %n : N) : SV_Target {
entry:
  %a = iadd int int 2, int 3
  %b = imul int %a, int 4
  %c = isub int %n, %b
  ret %c
}`,
			want: `define int @main(int %n : N) : SV_Target {
entry:
  %c = isub int %n, int 20
  ret %c
}
`,
		},
		{
			name: "instcombine leaves division by zero",
			pass: "-instcombine",
			src: `define float @main() : SV_Target {
entry:
  %d = fdiv float float 1.0, float 0.0
  ret %d
}`,
			want: `define float @main() : SV_Target {
entry:
  %d = fdiv float float 1.0, float 0.0
  ret %d
}
`,
		},
		{
			name: "instcombine splats swizzled constants",
			pass: "-instcombine",
			src: `define float2 @main() : SV_Target {
entry:
  %s = swizzle float2 float4 0.25, zw
  ret %s
}`,
			want: `define float2 @main() : SV_Target {
entry:
  ret float2 0.25
}
`,
		},
		{
			name: "dce removes dead chains and keeps calls",
			pass: "-dce",
			src: `declare void @side()
define float4 @main(float4 %p : SV_Position) : SV_Target {
entry:
  %a = fadd float4 %p, %p
  %b = fmul float4 %a, %a
  call void @side()
  ret %p
}`,
			want: `define float4 @main(float4 %p : SV_Position) : SV_Target {
entry:
  call void @side()
  ret %p
}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, tt.src)
			runPasses(t, m, "-opt-fn-passes", tt.pass)
			if diff := cmp.Diff(tt.want, irtext.PrintFunction(m.Function("main"))); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", tt.pass, diff)
			}
		})
	}
}

const moduleSource = `target "ps_6_0"
global @g_Used : texture2d
global @g_Sampler : sampler
global @g_Dead : texture2d
declare float4 @ext(float4)
declare void @called()
define float4 @scale(float4 %v, float4 %k) {
entry:
  %t = fmul float4 %v, %k
  ret %t
}
define void @dead() {
entry:
  %s = sample float4 @g_Dead, @g_Sampler, float2 0.0
  ret
}
define float4 @main(float4 %t : SV_Position) : SV_Target {
entry:
  call void @called()
  %uv = swizzle float2 %t, xy
  %s = sample float4 @g_Used, @g_Sampler, %uv
  %r = call float4 @scale(%s, float4 2.0)
  ret %r
}
`

func TestInline(t *testing.T) {
	m := parse(t, moduleSource)
	runPasses(t, m, "-opt-mod-passes", "-inline")
	want := `define float4 @main(float4 %t : SV_Position) : SV_Target {
entry:
  call void @called()
  %uv = swizzle float2 %t, xy
  %s = sample float4 @g_Used, @g_Sampler, %uv
  %t.1 = fmul float4 %s, float4 2.0
  ret %t.1
}
`
	if diff := cmp.Diff(want, irtext.PrintFunction(m.Function("main"))); diff != "" {
		t.Errorf("inline mismatch (-want +got):\n%s", diff)
	}
	if m.Function("scale") == nil {
		t.Error("inline removed the helper; that is globaldce's job")
	}
}

func TestInlineSkipsEntryAndMultiBlock(t *testing.T) {
	m := parse(t, `define float @loop(float %x) {
entry:
  br label %next
next:
  ret %x
}
define float @main(float %x : X) : SV_Target {
entry:
  %y = call float @loop(%x)
  ret %y
}`)
	runPasses(t, m, "-opt-mod-passes", "-inline")
	if calls := m.Function("main").Calls(); len(calls) != 1 {
		t.Errorf("multi-block callee was inlined: %v", calls)
	}
}

func TestGlobalDCEAndStripPrototypes(t *testing.T) {
	m := parse(t, moduleSource)
	runPasses(t, m, "-opt-mod-passes", "-globaldce")

	var names []string
	for _, f := range m.Functions {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"ext", "called", "scale", "main"}, names); diff != "" {
		t.Errorf("functions after globaldce (-want +got):\n%s", diff)
	}
	var globals []string
	for _, g := range m.Globals {
		globals = append(globals, g.Name)
	}
	if diff := cmp.Diff([]string{"g_Used", "g_Sampler"}, globals); diff != "" {
		t.Errorf("globals after globaldce (-want +got):\n%s", diff)
	}

	runPasses(t, m, "-opt-mod-passes", "-strip-dead-prototypes")
	if m.Function("ext") != nil || m.Function("called") == nil {
		t.Error("strip-dead-prototypes removed the wrong declarations")
	}

	errs, err := ir.Validate(m)
	if err != nil || len(errs) != 0 {
		t.Errorf("module invalid after dead code removal: %v %v", errs, err)
	}
}

func TestGlobalDCENeedsEntry(t *testing.T) {
	m, err := irtext.Parse("no-entry", moduleSource)
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(t.Context(), m, []string{"-opt-mod-passes", "-globaldce"}); !errors.Is(err, ErrNoEntry) {
		t.Errorf("err = %v, want ErrNoEntry", err)
	}
}

func TestSimplifyCFGMalformedTerminators(t *testing.T) {
	f := &ir.Function{
		Name:   "main",
		Return: ir.Void,
		Blocks: []*ir.Block{
			{Label: "a", Instrs: []*ir.Instr{{Op: ir.OpCondBr, Targets: []string{"b", "c"}}}},
			{Label: "b", Instrs: []*ir.Instr{{Op: ir.OpBr}}},
			{Label: "c", Instrs: []*ir.Instr{{Op: ir.OpRet}}},
		},
	}
	if err := simplifyCFG(nil, f); err != nil {
		t.Fatal(err)
	}
	if len(f.Blocks) != 3 {
		t.Errorf("blocks = %d, want 3 left alone", len(f.Blocks))
	}
}

func TestLoweringPasses(t *testing.T) {
	m := parse(t, moduleSource)
	runPasses(t, m, "-opt-mod-passes", "-hlsl-hlemit", "-hlsl-dxilgen", "-dxil-finalize")

	meta := map[string]string{}
	for _, md := range m.Meta {
		meta[md.Key] = md.Value
	}
	want := map[string]string{
		ir.MetaEntry: "main",
		MetaSigIn:    "SV_Position:float4",
		MetaSigOut:   "SV_Target:float4",
		MetaLowered:  "true",
		MetaFlags:    "0x5",
		MetaValVer:   ValidatorVersion,
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	text := irtext.Print(m)
	if strings.Contains(text, " sample ") || !strings.Contains(text, "dx.op.sample float4 @g_Used") {
		t.Errorf("sample was not lowered:\n%s", text)
	}
}
