package irtext

// TokenKind represents the type of a lexical token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	TokenIdent  // target, fmul, float4, SV_Position, xy
	TokenLocal  // %name
	TokenGlobal // @name
	TokenMeta   // !name
	TokenString // "text"
	TokenNumber // 1, -2, 0.5, 1e-3

	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenComma        // ,
	TokenColon        // :
	TokenEqual        // =
)

var tokenNames = [...]string{
	TokenEOF:          "EOF",
	TokenError:        "Error",
	TokenIdent:        "identifier",
	TokenLocal:        "local",
	TokenGlobal:       "global",
	TokenMeta:         "metadata",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBrace:    "{",
	TokenRightBrace:   "}",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenComma:        ",",
	TokenColon:        ":",
	TokenEqual:        "=",
}

// String returns the string representation of the token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "Unknown"
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

// Name returns the lexeme without its sigil for locals, globals and
// metadata keys.
func (t Token) Name() string {
	switch t.Kind {
	case TokenLocal, TokenGlobal, TokenMeta:
		return t.Lexeme[1:]
	}
	return t.Lexeme
}

// Span represents a source code location span.
type Span struct {
	Start  Position
	End    Position
	Source string // Source file name or identifier
}

// Position represents a position in source code.
type Position struct {
	Line   int
	Column int
}

func (t Token) span(source string) Span {
	start := Position{Line: t.Line, Column: t.Column}
	end := Position{Line: t.Line, Column: t.Column + len(t.Lexeme)}
	return Span{Start: start, End: end, Source: source}
}
