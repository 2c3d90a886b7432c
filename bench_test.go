// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadeopt

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gogpu/shadeopt/irtext"
	"github.com/gogpu/shadeopt/opt"
	"github.com/gogpu/shadeopt/passes"
	"github.com/gogpu/shadeopt/toolchain"
)

type shaderCase struct {
	name   string
	target string
	source []byte
}

func loadBenchShaders(b *testing.B) []shaderCase {
	b.Helper()
	var cases []shaderCase
	for _, sc := range []struct{ file, target string }{
		{"constant_branch.hlir", "ps_6_0"},
		{"compute_math.hlir", "cs_6_0"},
		{"sample_texture.hlir", "ps_6_0"},
	} {
		src, err := os.ReadFile(filepath.Join("testdata", sc.file))
		if err != nil {
			b.Fatalf("read %s: %v", sc.file, err)
		}
		cases = append(cases, shaderCase{name: sc.file, target: sc.target, source: src})
	}
	return cases
}

// BenchmarkCompile benchmarks source-to-container compilation per
// optimization level.
func BenchmarkCompile(b *testing.B) {
	ctx := context.Background()
	for _, sc := range loadBenchShaders(b) {
		for level := 0; level <= opt.MaxLevel; level++ {
			b.Run(sc.name+"/"+toolchain.OptLevelArg(level)[1:], func(b *testing.B) {
				req := toolchain.CompileRequest{
					Source:     sc.source,
					SourceName: sc.name,
					EntryPoint: "main",
					Target:     sc.target,
				}
				opts := DefaultOptions()
				opts.OptLevel = level
				b.ReportAllocs()
				b.SetBytes(int64(len(sc.source)))
				b.ResetTimer()

				var result []byte
				for b.Loop() {
					var err error
					result, err = CompileWithOptions(ctx, req, opts)
					if err != nil {
						b.Fatalf("compile failed: %v", err)
					}
				}
				runtime.KeepAlive(result)
			})
		}
	}
}

// BenchmarkParse benchmarks HLIR text parsing.
func BenchmarkParse(b *testing.B) {
	for _, sc := range loadBenchShaders(b) {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.source)))
			for b.Loop() {
				m, err := irtext.Parse(sc.name, string(sc.source))
				if err != nil {
					b.Fatalf("parse failed: %v", err)
				}
				runtime.KeepAlive(m)
			}
		})
	}
}

// BenchmarkSplitRound benchmarks one pause/resume round trip at the
// middle of the O3 pass list.
func BenchmarkSplitRound(b *testing.B) {
	ctx := context.Background()
	for _, sc := range loadBenchShaders(b) {
		b.Run(sc.name, func(b *testing.B) {
			hl, err := Compile(ctx, toolchain.CompileRequest{
				Source:     sc.source,
				SourceName: sc.name,
				Target:     sc.target,
				Args:       []string{"/Vd", "/O3", "/fcgl"},
			})
			if err != nil {
				b.Fatal(err)
			}
			dump, err := opt.PassDump(3)
			if err != nil {
				b.Fatal(err)
			}
			plan, err := passes.NewPlan(dump)
			if err != nil {
				b.Fatal(err)
			}
			mid := plan.Len() / 2
			first, second := plan.FirstHalf(mid), plan.SecondHalf(mid)
			b.ReportAllocs()

			for b.Loop() {
				paused, err := Optimize(ctx, hl, first)
				if err != nil {
					b.Fatal(err)
				}
				out, err := Optimize(ctx, paused, second)
				if err != nil {
					b.Fatal(err)
				}
				runtime.KeepAlive(out)
			}
		})
	}
}
