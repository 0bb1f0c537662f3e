// Package lexer scans MQL source text into a stream of tokens.
package lexer

import (
	"strconv"
	"unicode/utf8"

	"github.com/hollowcube/mql/pkg/types"
)

const eof = -1

// Lexer converts MQL source into a sequence of tokens, per spec.md §4.1.
// The implementation follows Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string
	length  int
	start   int
	current int
	width   int
	err     error
}

// New creates a lexer over input. Tokens are produced by successive calls
// to Peek and Next.
func New(input string) *Lexer {
	return &Lexer{input: input, length: len(input)}
}

// Err returns the first lexing error encountered, if any.
func (l *Lexer) Err() error { return l.err }

// Peek returns the next token without consuming it. Calling Peek any
// number of times in a row returns the same token.
func (l *Lexer) Peek() Token {
	start, current, width, errSave := l.start, l.current, l.width, l.err
	t := l.scan()
	l.start, l.current, l.width, l.err = start, current, width, errSave
	return t
}

// Next consumes and returns the next token. Once EOF or an error token has
// been produced, subsequent calls keep returning it.
func (l *Lexer) Next() Token {
	return l.scan()
}

func (l *Lexer) scan() Token {
	if e, ok := l.err.(*types.Error); ok {
		return Token{Type: TokenError, Value: e.Message, Position: e.Position}
	}
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	if tt, ok := lookupSymbol1(ch); ok {
		return l.newToken(tt)
	}

	if ch == '!' {
		return l.error(l.start, "'!' must be followed by '=' (did you mean !=?)")
	}

	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}

	if isIdentStart(ch) {
		l.backup()
		return l.scanIdent()
	}

	return l.error(l.start, "unexpected character "+strconv.QuoteRune(ch))
}

// scanNumber reads [0-9]+ ('.' [0-9]+)? starting at the current position.
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			l.err = nil // no digits after '.': not actually part of the number
			l.current-- // un-read the '.', which is one byte
			return l.newToken(TokenNumber)
		}
	}
	return l.newToken(TokenNumber)
}

// scanIdent reads [A-Za-z_][A-Za-z_0-9]* starting at the current position.
func (l *Lexer) scanIdent() Token {
	l.nextRune() // the already-validated first character
	l.acceptAll(isIdentCont)
	return l.newToken(TokenIdent)
}

func (l *Lexer) eof() Token {
	return Token{Type: TokenEOF, Position: l.current}
}

func (l *Lexer) error(position int, message string) Token {
	l.err = types.NewLexError(position, message)
	return Token{Type: TokenError, Value: message, Position: position}
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{Type: tt, Value: l.input[l.start:l.current], Position: l.start}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) acceptRune(r rune) bool {
	if l.nextRune() == r {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for {
		r := l.nextRune()
		if r == eof || !isValid(r) {
			l.backup()
			return matched
		}
		matched = true
	}
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.start = l.current
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
