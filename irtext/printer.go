package irtext

import (
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/shadeopt/ir"
)

// Print returns the canonical text form of a module. Printing a parsed
// module and parsing the result yields an equal module.
func Print(m *ir.Module) string {
	var p printer
	p.module(m)
	return p.sb.String()
}

// Fprint writes the canonical text form of a module to w.
func Fprint(w io.Writer, m *ir.Module) error {
	_, err := io.WriteString(w, Print(m))
	return err
}

// PrintFunction returns the text form of a single function.
func PrintFunction(f *ir.Function) string {
	var p printer
	p.function(f)
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) module(m *ir.Module) {
	section := false
	if m.Target != "" {
		p.line("target " + strconv.Quote(m.Target))
		section = true
	}
	for _, md := range m.Meta {
		p.line("!" + md.Key + " = " + strconv.Quote(md.Value))
		section = true
	}

	if len(m.Globals) > 0 {
		if section {
			p.sb.WriteByte('\n')
		}
		for _, g := range m.Globals {
			p.line("global @" + g.Name + " : " + g.Type.String())
		}
		section = true
	}

	for _, f := range m.Functions {
		if section {
			p.sb.WriteByte('\n')
		}
		p.function(f)
		section = true
	}
}

func (p *printer) function(f *ir.Function) {
	if f.IsDeclaration() {
		p.sb.WriteString("declare ")
	} else {
		p.sb.WriteString("define ")
	}
	p.sb.WriteString(f.Return.String())
	p.sb.WriteString(" @")
	p.sb.WriteString(f.Name)
	p.sb.WriteByte('(')
	for i, param := range f.Params {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(param.Type.String())
		if param.Name != "" {
			p.sb.WriteString(" %")
			p.sb.WriteString(param.Name)
		}
		if param.Semantic != "" {
			p.sb.WriteString(" : ")
			p.sb.WriteString(param.Semantic)
		}
	}
	p.sb.WriteByte(')')
	if f.ReturnSemantic != "" {
		p.sb.WriteString(" : ")
		p.sb.WriteString(f.ReturnSemantic)
	}
	if f.IsDeclaration() {
		p.sb.WriteByte('\n')
		return
	}

	p.sb.WriteString(" {\n")
	for _, b := range f.Blocks {
		p.line(b.Label + ":")
		for _, in := range b.Instrs {
			p.sb.WriteString("  ")
			p.instr(in)
			p.sb.WriteByte('\n')
		}
	}
	p.line("}")
}

func (p *printer) instr(in *ir.Instr) {
	if in.Result != "" {
		p.sb.WriteString("%" + in.Result + " = ")
	}
	p.sb.WriteString(in.Op.String())

	switch in.Op {
	case ir.OpBr:
		p.sb.WriteString(" label %" + first(in.Targets))
		return
	case ir.OpCondBr:
		p.sb.WriteByte(' ')
		p.values(in.Args)
		for _, t := range in.Targets {
			p.sb.WriteString(", label %" + t)
		}
		return
	case ir.OpRet:
		if len(in.Args) > 0 {
			p.sb.WriteByte(' ')
			p.values(in.Args)
		}
		return
	}

	p.sb.WriteByte(' ')
	p.sb.WriteString(in.Type.String())
	p.sb.WriteByte(' ')

	switch in.Op {
	case ir.OpCall:
		p.sb.WriteString("@" + in.Callee + "(")
		p.values(in.Args)
		p.sb.WriteByte(')')
	case ir.OpPhi:
		for i, inc := range in.Incoming {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString("[" + inc.Value.String() + ", %" + inc.Block + "]")
		}
	case ir.OpSwizzle:
		p.values(in.Args)
		p.sb.WriteString(", " + in.Mask)
	default:
		p.values(in.Args)
	}
}

func (p *printer) values(vals []ir.Value) {
	for i, v := range vals {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(v.String())
	}
}

func (p *printer) line(s string) {
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
