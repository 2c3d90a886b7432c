package opt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/shadeopt/ir"
)

// Metadata keys written by the HLSL lowering passes.
const (
	MetaSigIn   = "dx.sig.in"
	MetaSigOut  = "dx.sig.out"
	MetaLowered = "dx.lowered"
	MetaFlags   = "dx.flags"
	MetaValVer  = "dx.valver"
)

// ValidatorVersion is recorded by dxil-finalize.
const ValidatorVersion = "1.8"

// ErrPassOrder is returned when a lowering pass runs before the pass it
// depends on.
var ErrPassOrder = errors.New("pass requires an earlier lowering pass")

// hlEmit records the entry point signature as metadata.
func hlEmit(m *ir.Module) error {
	entry := m.Entry()
	if entry == nil {
		return ErrNoEntry
	}
	in := make([]string, 0, len(entry.Params))
	for _, p := range entry.Params {
		in = append(in, signatureElement(p.Semantic, p.Type))
	}
	m.SetMeta(MetaSigIn, strings.Join(in, ","))
	out := ""
	if entry.Return != ir.Void {
		out = signatureElement(entry.ReturnSemantic, entry.Return)
	}
	m.SetMeta(MetaSigOut, out)
	return nil
}

func signatureElement(semantic string, t ir.Type) string {
	if semantic == "" {
		semantic = "_"
	}
	return semantic + ":" + t.String()
}

// dxilGen lowers texture sampling to dx.op.sample.
func dxilGen(m *ir.Module) error {
	if _, ok := m.GetMeta(MetaSigIn); !ok {
		return fmt.Errorf("%w: hlsl-dxilgen needs hlsl-hlemit", ErrPassOrder)
	}
	for _, f := range m.Functions {
		for _, b := range f.Blocks {
			for _, in := range b.Instrs {
				if in.Op == ir.OpSample {
					in.Op = ir.OpDxSample
				}
			}
		}
	}
	m.SetMeta(MetaLowered, "true")
	return nil
}

// dxilFinalize records the feature flags and validator version.
func dxilFinalize(m *ir.Module) error {
	if _, ok := m.GetMeta(MetaLowered); !ok {
		return fmt.Errorf("%w: dxil-finalize needs hlsl-dxilgen", ErrPassOrder)
	}
	m.SetMeta(MetaFlags, "0x"+strconv.FormatUint(uint64(ir.Features(m)), 16))
	m.SetMeta(MetaValVer, ValidatorVersion)
	return nil
}
