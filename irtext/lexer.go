package irtext

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes HLIR text.
type Lexer struct {
	source   string
	pos      int
	line     int
	column   int
	start    int
	startCol int
	tokens   []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	estTokens := len(source) / 4
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source. Scanning stops at the
// first malformed token, which is returned as a *SourceError.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.startCol = l.column
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	r := l.advance()

	switch r {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case '=':
		l.addToken(TokenEqual)
	case ';':
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}
	case '%':
		return l.sigil(TokenLocal)
	case '@':
		return l.sigil(TokenGlobal)
	case '!':
		return l.sigil(TokenMeta)
	case '"':
		return l.str()

	case ' ', '\r', '\t':
	case '\n':
		l.line++
		l.column = 1

	default:
		switch {
		case isDigit(r), r == '-' && isDigit(l.peek()):
			l.number()
		case isIdentStart(r):
			l.identifier()
		default:
			return l.errorf("unexpected character %q", r)
		}
	}

	return nil
}

func (l *Lexer) sigil(kind TokenKind) error {
	if !isIdentPart(l.peek()) {
		return l.errorf("expected name after %q", l.source[l.start])
	}
	for isIdentPart(l.peek()) {
		l.advance()
	}
	l.addToken(kind)
	return nil
}

func (l *Lexer) str() error {
	for !l.isAtEnd() {
		switch l.advance() {
		case '\\':
			if !l.isAtEnd() {
				l.advance()
			}
		case '"':
			l.addToken(TokenString)
			return nil
		case '\n':
			return l.errorf("newline in string literal")
		}
	}
	return l.errorf("unterminated string literal")
}

func (l *Lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	l.addToken(TokenNumber)
}

func (l *Lexer) identifier() {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	l.addToken(TokenIdent)
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.startCol,
	})
}

func (l *Lexer) errorf(format string, args ...interface{}) error {
	span := Span{
		Start: Position{Line: l.line, Column: l.startCol},
		End:   Position{Line: l.line, Column: l.column},
	}
	return NewSourceError(fmt.Sprintf(format, args...), span, l.source)
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// isIdentPart allows '.' so that dotted names such as dx.op.sample and
// hlsl.entry lex as one token.
func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '.'
}
