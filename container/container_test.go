// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import (
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gogpu/shadeopt/ir"
	"github.com/gogpu/shadeopt/irtext"
)

const testSource = `target "ps_6_0"
!hlsl.entry = "main"
global @g_Tex : texture2d
global @g_Sampler : sampler
define float4 @main(float4 %pos : SV_Position, bool %b : B) : SV_Target {
entry:
  br %b, label %then, label %end
then:
  %xy = swizzle float2 %pos, xy
  %s = sample float4 @g_Tex, @g_Sampler, %xy
  br label %end
end:
  %u = phi float4 [%pos, %entry], [%s, %then]
  ret %u
}
`

func parseModule(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := irtext.Parse("test.hlir", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestAssembleParse(t *testing.T) {
	m := parseModule(t, testSource)
	data, err := Assemble(m)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !IsContainer(data) || ir.IsModule(data) {
		t.Fatal("assembled data has the wrong magic")
	}

	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var order []string
	for _, p := range c.Parts {
		order = append(order, p.FourCC)
	}
	want := []string{PartInputSignature, PartOutputSignature, PartFeatures, PartModule, PartHash}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("part order mismatch (-want +got):\n%s", diff)
	}

	got, err := c.Module()
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	if diff := cmp.Diff(m, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("module mismatch (-want +got):\n%s", diff)
	}

	in, err := c.InputSignature()
	if err != nil {
		t.Fatalf("InputSignature: %v", err)
	}
	wantIn := []SignatureElement{{"SV_Position", ir.Float4}, {"B", ir.Bool}}
	if diff := cmp.Diff(wantIn, in); diff != "" {
		t.Errorf("input signature mismatch (-want +got):\n%s", diff)
	}
	out, err := c.OutputSignature()
	if err != nil {
		t.Fatalf("OutputSignature: %v", err)
	}
	if diff := cmp.Diff([]SignatureElement{{"SV_Target", ir.Float4}}, out); diff != "" {
		t.Errorf("output signature mismatch (-want +got):\n%s", diff)
	}

	flags, err := c.Features()
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if flags != ir.FeatureSampling|ir.FeatureControlFlow {
		t.Errorf("Features = %s", flags)
	}

	hash, _ := c.Part(PartHash)
	sum := sha256.Sum256(ir.Encode(m))
	if diff := cmp.Diff(sum[:DigestSize], hash); diff != "" {
		t.Errorf("module hash mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	a, err := Assemble(parseModule(t, testSource))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Assemble(parseModule(t, testSource))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("assembling the same module twice gave different bytes")
	}
}

func TestAssembleErrors(t *testing.T) {
	m := parseModule(t, testSource)
	m.DeleteMeta(ir.MetaEntry)
	if _, err := Assemble(m); err == nil {
		t.Error("Assemble without entry point succeeded")
	}
}

func TestParseErrors(t *testing.T) {
	data, err := Assemble(parseModule(t, testSource))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"module bytes", func([]byte) []byte { return ir.Encode(parseModule(t, testSource)) }, ErrNotContainer},
		{"empty", func([]byte) []byte { return nil }, ErrNotContainer},
		{"short header", func(d []byte) []byte { return d[:12] }, ErrCorrupt},
		{"truncated", func(d []byte) []byte { return d[:len(d)-4] }, ErrCorrupt},
		{"flipped body byte", func(d []byte) []byte { d[len(d)-1] ^= 1; return d }, ErrCorrupt},
		{"flipped digest", func(d []byte) []byte { d[4] ^= 1; return d }, ErrCorrupt},
		{"bad version", func(d []byte) []byte { d[20] = 9; return d }, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.mutate(append([]byte(nil), data...))
			if _, err := Parse(in); !errors.Is(err, tt.want) {
				t.Errorf("Parse err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDisassemble(t *testing.T) {
	m := parseModule(t, testSource)
	text := irtext.Print(m)

	t.Run("module bytes", func(t *testing.T) {
		got, err := Disassemble(ir.Encode(m))
		if err != nil {
			t.Fatalf("Disassemble: %v", err)
		}
		if diff := cmp.Diff(text, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("container", func(t *testing.T) {
		data, err := Assemble(m)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Disassemble(data)
		if err != nil {
			t.Fatalf("Disassemble: %v", err)
		}
		for _, want := range []string{
			"; Input signature:",
			"; SV_Position          float4",
			"; Output signature:",
			"; SV_Target            float4",
			"; Shader flags: Sampling|ControlFlow",
			"; shader hash: ",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("disassembly lacks %q:\n%s", want, got)
			}
		}
		if !strings.HasSuffix(got, text) {
			t.Errorf("disassembly does not end with module text:\n%s", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Disassemble([]byte("DXBC")); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("err = %v, want ErrUnknownFormat", err)
		}
	})
}
