package irtext

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gogpu/shadeopt/ir"
)

// Parser parses HLIR tokens into an ir.Module.
type Parser struct {
	tokens  []Token
	current int
	name    string
	source  string
}

// Parse parses HLIR text. The name identifies the source in errors.
func Parse(name, source string) (*ir.Module, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		var se *SourceError
		if errors.As(err, &se) {
			se.Span.Source = name
		}
		return nil, err
	}
	return NewParser(name, source, tokens).Parse()
}

// NewParser creates a new parser for the given tokens.
func NewParser(name, source string, tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		name:   name,
		source: source,
	}
}

// Parse parses the tokens and returns the module. It stops at the first
// error.
func (p *Parser) Parse() (*ir.Module, error) {
	module := &ir.Module{}
	sawTarget := false

	for !p.isAtEnd() {
		tok := p.peek()
		switch {
		case p.checkIdent("target"):
			p.advance()
			if sawTarget {
				return nil, p.errorAt(tok, "duplicate target")
			}
			s, err := p.stringLit()
			if err != nil {
				return nil, err
			}
			module.Target = s
			sawTarget = true
		case tok.Kind == TokenMeta:
			p.advance()
			key := tok.Name()
			if _, dup := module.GetMeta(key); dup {
				return nil, p.errorAt(tok, "duplicate metadata !%s", key)
			}
			if _, err := p.expect(TokenEqual); err != nil {
				return nil, err
			}
			s, err := p.stringLit()
			if err != nil {
				return nil, err
			}
			module.Meta = append(module.Meta, ir.Metadata{Key: key, Value: s})
		case p.checkIdent("global"):
			p.advance()
			g, err := p.globalDecl()
			if err != nil {
				return nil, err
			}
			module.Globals = append(module.Globals, g)
		case p.checkIdent("declare"), p.checkIdent("define"):
			p.advance()
			f, err := p.function(tok.Lexeme == "define")
			if err != nil {
				return nil, err
			}
			module.Functions = append(module.Functions, f)
		default:
			return nil, p.errorAt(tok, "unexpected %s %q, expected declaration", tok.Kind, tok.Lexeme)
		}
	}

	return module, nil
}

func (p *Parser) globalDecl() (ir.Global, error) {
	name, err := p.expect(TokenGlobal)
	if err != nil {
		return ir.Global{}, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return ir.Global{}, err
	}
	t, err := p.typ()
	if err != nil {
		return ir.Global{}, err
	}
	return ir.Global{Name: name.Name(), Type: t}, nil
}

// function parses the rest of a declare or define line.
func (p *Parser) function(define bool) (*ir.Function, error) {
	ret, err := p.typ()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokenGlobal)
	if err != nil {
		return nil, err
	}
	f := &ir.Function{Name: name.Name(), Return: ret}

	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	for !p.check(TokenRightParen) {
		if len(f.Params) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		f.Params = append(f.Params, param)
	}
	p.advance()

	if p.match(TokenColon) {
		sem, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		f.ReturnSemantic = sem.Lexeme
	}

	if !define {
		return f, nil
	}

	if _, err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}
	for !p.check(TokenRightBrace) {
		if p.isAtEnd() {
			return nil, p.errorAt(p.peek(), "unexpected end of input in function @%s", f.Name)
		}
		b, err := p.block()
		if err != nil {
			return nil, err
		}
		f.Blocks = append(f.Blocks, b)
	}
	p.advance()

	if len(f.Blocks) == 0 {
		return nil, p.errorAt(name, "function @%s defined without blocks", f.Name)
	}
	return f, nil
}

func (p *Parser) param() (ir.Param, error) {
	t, err := p.typ()
	if err != nil {
		return ir.Param{}, err
	}
	param := ir.Param{Type: t}
	if p.check(TokenLocal) {
		param.Name = p.advance().Name()
	}
	if p.match(TokenColon) {
		sem, err := p.expect(TokenIdent)
		if err != nil {
			return ir.Param{}, err
		}
		param.Semantic = sem.Lexeme
	}
	return param, nil
}

func (p *Parser) block() (*ir.Block, error) {
	label, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	b := &ir.Block{Label: label.Lexeme}
	for !p.check(TokenRightBrace) && !p.isLabel() && !p.isAtEnd() {
		in, err := p.instr()
		if err != nil {
			return nil, err
		}
		b.Instrs = append(b.Instrs, in)
	}
	return b, nil
}

func (p *Parser) instr() (*ir.Instr, error) {
	in := &ir.Instr{}
	if p.check(TokenLocal) {
		in.Result = p.advance().Name()
		if _, err := p.expect(TokenEqual); err != nil {
			return nil, err
		}
	}

	opTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	op, ok := ir.LookupOp(opTok.Lexeme)
	if !ok {
		return nil, p.errorAt(opTok, "unknown instruction %q", opTok.Lexeme)
	}
	in.Op = op

	switch {
	case op.IsTerminator():
		if in.Result != "" {
			return nil, p.errorAt(opTok, "%s does not produce a value", op)
		}
		in.Type = ir.Void
		if op == ir.OpBr {
			return in, p.branch(in)
		}
		if p.startsValue() {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			in.Args = []ir.Value{v}
		}
		return in, nil
	case op != ir.OpCall && in.Result == "":
		return nil, p.errorAt(opTok, "%s needs a result name", op)
	}

	if in.Type, err = p.typ(); err != nil {
		return nil, err
	}

	switch {
	case op.IsBinary():
		in.Args, err = p.values(2)
	case op == ir.OpSelect, op.IsSample():
		in.Args, err = p.values(3)
	case op == ir.OpSwizzle:
		if in.Args, err = p.values(1); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		mask, merr := p.expect(TokenIdent)
		if merr != nil {
			return nil, merr
		}
		in.Mask = mask.Lexeme
	case op == ir.OpPhi:
		err = p.phi(in)
	case op == ir.OpCall:
		err = p.call(in)
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// branch parses "label %l" or "%c, label %t, label %f".
func (p *Parser) branch(in *ir.Instr) error {
	if p.checkIdent("label") {
		t, err := p.label()
		if err != nil {
			return err
		}
		in.Targets = []string{t}
		return nil
	}
	cond, err := p.value()
	if err != nil {
		return err
	}
	in.Op = ir.OpCondBr
	in.Args = []ir.Value{cond}
	for range 2 {
		if _, err := p.expect(TokenComma); err != nil {
			return err
		}
		t, err := p.label()
		if err != nil {
			return err
		}
		in.Targets = append(in.Targets, t)
	}
	return nil
}

func (p *Parser) label() (string, error) {
	if !p.checkIdent("label") {
		return "", p.errorAt(p.peek(), "expected label, got %q", p.peek().Lexeme)
	}
	p.advance()
	tok, err := p.expect(TokenLocal)
	if err != nil {
		return "", err
	}
	return tok.Name(), nil
}

func (p *Parser) phi(in *ir.Instr) error {
	for {
		if _, err := p.expect(TokenLeftBracket); err != nil {
			return err
		}
		v, err := p.value()
		if err != nil {
			return err
		}
		if _, err := p.expect(TokenComma); err != nil {
			return err
		}
		blk, err := p.expect(TokenLocal)
		if err != nil {
			return err
		}
		if _, err := p.expect(TokenRightBracket); err != nil {
			return err
		}
		in.Incoming = append(in.Incoming, ir.Incoming{Value: v, Block: blk.Name()})
		if !p.match(TokenComma) {
			return nil
		}
	}
}

func (p *Parser) call(in *ir.Instr) error {
	callee, err := p.expect(TokenGlobal)
	if err != nil {
		return err
	}
	in.Callee = callee.Name()
	if _, err := p.expect(TokenLeftParen); err != nil {
		return err
	}
	for !p.check(TokenRightParen) {
		if len(in.Args) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return err
			}
		}
		v, err := p.value()
		if err != nil {
			return err
		}
		in.Args = append(in.Args, v)
	}
	p.advance()
	return nil
}

func (p *Parser) values(n int) ([]ir.Value, error) {
	vals := make([]ir.Value, 0, n)
	for i := range n {
		if i > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// value parses a local, a global or a typed constant.
func (p *Parser) value() (ir.Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenLocal:
		p.advance()
		return ir.Local(tok.Name()), nil
	case TokenGlobal:
		p.advance()
		return ir.GlobalRef(tok.Name()), nil
	case TokenIdent:
		return p.constant()
	}
	return ir.Value{}, p.errorAt(tok, "expected value, got %s %q", tok.Kind, tok.Lexeme)
}

func (p *Parser) constant() (ir.Value, error) {
	t, err := p.typ()
	if err != nil {
		return ir.Value{}, err
	}
	lit := p.advance()
	switch t.Kind {
	case ir.TypeFloat:
		if lit.Kind == TokenNumber {
			if f, err := strconv.ParseFloat(lit.Lexeme, 64); err == nil {
				return ir.ConstFloat(t, f), nil
			}
		}
	case ir.TypeInt:
		if lit.Kind == TokenNumber {
			if i, err := strconv.ParseInt(lit.Lexeme, 10, 64); err == nil {
				return ir.ConstInt(t, i), nil
			}
		}
	case ir.TypeBool:
		if lit.Kind == TokenIdent && (lit.Lexeme == "true" || lit.Lexeme == "false") {
			return ir.ConstBool(t, lit.Lexeme == "true"), nil
		}
	default:
		return ir.Value{}, p.errorAt(lit, "%s has no constants", t)
	}
	return ir.Value{}, p.errorAt(lit, "invalid %s literal %q", t, lit.Lexeme)
}

func (p *Parser) typ() (ir.Type, error) {
	tok, err := p.expect(TokenIdent)
	if err != nil {
		return ir.Type{}, err
	}
	t, ok := ir.ParseType(tok.Lexeme)
	if !ok {
		return ir.Type{}, p.errorAt(tok, "unknown type %q", tok.Lexeme)
	}
	return t, nil
}

func (p *Parser) stringLit() (string, error) {
	tok, err := p.expect(TokenString)
	if err != nil {
		return "", err
	}
	s, uerr := strconv.Unquote(tok.Lexeme)
	if uerr != nil {
		return "", p.errorAt(tok, "invalid string literal %s", tok.Lexeme)
	}
	return s, nil
}

// startsValue reports whether the next tokens form a value operand
// rather than the label that opens the next block.
func (p *Parser) startsValue() bool {
	switch p.peek().Kind {
	case TokenLocal, TokenGlobal:
		return true
	case TokenIdent:
		_, ok := ir.ParseType(p.peek().Lexeme)
		return ok && !p.isLabel()
	}
	return false
}

func (p *Parser) isLabel() bool {
	return p.check(TokenIdent) && p.peekAt(1).Kind == TokenColon
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	tok := p.peek()
	if tok.Kind == TokenEOF {
		return tok, p.errorAt(tok, "expected %s, got end of input", kind)
	}
	return tok, p.errorAt(tok, "expected %s, got %q", kind, tok.Lexeme)
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkIdent(word string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Lexeme == word
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) errorAt(tok Token, format string, args ...interface{}) *SourceError {
	return NewSourceError(fmt.Sprintf(format, args...), tok.span(p.name), p.source)
}
