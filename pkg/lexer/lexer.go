// Package lexer turns Lox source text into a token stream in a single
// forward pass.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/token"
)

// Lexer holds the scanning state for one source buffer. It is not
// restartable; build a new one per input.
type Lexer struct {
	source  string
	tokens  []token.Token
	errs    diag.List
	start   int
	current int
	line    int
}

// New prepares a lexer over source.
func New(source string) *Lexer {
	return &Lexer{source: source, line: 1}
}

// Scan is a convenience wrapper around New(source).Tokens().
func Scan(source string) ([]token.Token, diag.List) {
	return New(source).Tokens()
}

// Tokens scans the whole buffer. The returned slice always ends with an EOF
// token, even when diagnostics were reported.
func (l *Lexer) Tokens() ([]token.Token, diag.List) {
	for !l.atEnd() {
		l.start = l.current
		l.scanToken()
	}
	l.tokens = append(l.tokens, token.New(token.EOF, "", l.line))
	return l.tokens, l.errs
}

func (l *Lexer) scanToken() {
	c := l.advance()
	switch c {
	case '(':
		l.add(token.LeftParen)
	case ')':
		l.add(token.RightParen)
	case '{':
		l.add(token.LeftBrace)
	case '}':
		l.add(token.RightBrace)
	case ',':
		l.add(token.Comma)
	case '.':
		l.add(token.Dot)
	case '-':
		l.add(token.Minus)
	case '+':
		l.add(token.Plus)
	case ';':
		l.add(token.Semicolon)
	case '*':
		l.add(token.Star)
	case '?':
		l.add(token.Question)
	case ':':
		l.add(token.Colon)
	case '!':
		l.addEither('=', token.BangEqual, token.Bang)
	case '=':
		l.addEither('=', token.EqualEqual, token.Equal)
	case '<':
		l.addEither('=', token.LessEqual, token.Less)
	case '>':
		l.addEither('=', token.GreaterEqual, token.Greater)
	case '/':
		switch {
		case l.match('/'):
			for l.peek() != '\n' && !l.atEnd() {
				l.advance()
			}
		case l.match('*'):
			l.blockComment()
		default:
			l.add(token.Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		l.line++
	case '"':
		l.string()
	default:
		switch {
		case isDigit(c):
			l.number()
		case isAlpha(c):
			l.identifier()
		default:
			l.unexpected()
		}
	}
}

// blockComment skips a /* ... */ comment, honouring nesting. An unterminated
// comment runs to the end of input without a diagnostic.
func (l *Lexer) blockComment() {
	depth := 1
	for depth > 0 && !l.atEnd() {
		switch l.advance() {
		case '\n':
			l.line++
		case '/':
			if l.match('*') {
				depth++
			}
		case '*':
			if l.match('/') {
				depth--
			}
		}
	}
}

func (l *Lexer) string() {
	for l.peek() != '"' && !l.atEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.atEnd() {
		l.errs = append(l.errs, diag.Diagnostic{
			Phase:      diag.PhaseScan,
			Line:       l.line,
			Message:    "Unterminated string.",
			Incomplete: true,
		})
		l.addLiteral(token.String, "")
		return
	}
	l.advance()
	l.addLiteral(token.String, l.source[l.start+1:l.current-1])
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
	text := l.source[l.start:l.current]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		l.errs = append(l.errs, diag.Diagnostic{
			Phase:   diag.PhaseScan,
			Line:    l.line,
			Message: fmt.Sprintf("Invalid number literal '%s'.", text),
		})
		value = 0
	}
	l.addLiteral(token.Number, value)
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	if kind, ok := token.Keywords[text]; ok {
		l.add(kind)
		return
	}
	l.add(token.Identifier)
}

func (l *Lexer) unexpected() {
	r, size := utf8.DecodeRuneInString(l.source[l.start:])
	if size > 1 {
		l.current = l.start + size
	}
	l.errs = append(l.errs, diag.Diagnostic{
		Phase:   diag.PhaseScan,
		Line:    l.line,
		Message: fmt.Sprintf("Unexpected character '%c'.", r),
	})
}

func (l *Lexer) add(kind token.Type) {
	l.addLiteral(kind, nil)
}

func (l *Lexer) addEither(next byte, matched, single token.Type) {
	if l.match(next) {
		l.add(matched)
		return
	}
	l.add(single)
}

func (l *Lexer) addLiteral(kind token.Type, literal any) {
	l.tokens = append(l.tokens, token.Token{
		Type:    kind,
		Lexeme:  l.source[l.start:l.current],
		Literal: literal,
		Line:    l.line,
	})
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	return c
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) atEnd() bool {
	return l.current >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
