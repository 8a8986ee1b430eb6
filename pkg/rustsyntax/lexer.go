// SPDX-License-Identifier: MPL-2.0

package rustsyntax

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof = -1

// punctChars are the single-character operators Rust uses outside literals.
const punctChars = "!#$%&*+,-./:;<=>?@^|~"

// ErrSyntax is the sentinel error wrapped by SyntaxError.
var ErrSyntax = errors.New("syntax error")

type (
	// SyntaxError reports a lexing or parsing failure at a source position.
	SyntaxError struct {
		Pos Pos
		Msg string
	}

	// Lexer turns Rust source text into tokens. Comments are returned as
	// tokens so callers that care about layout can see them; the parser
	// drops plain comments itself.
	Lexer struct {
		src    string
		offset int
		line   int
		col    int
	}
)

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Unwrap returns ErrSyntax for errors.Is() compatibility.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Lex tokenizes the whole source. The returned slice always ends with an EOF
// token.
func Lex(src string) ([]Token, error) {
	return NewLexer(src).Tokenize()
}

// Tokenize reads tokens until EOF.
func (lx *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// Next returns the next token.
func (lx *Lexer) Next() (Token, error) {
	lx.skipWhitespace()
	start := lx.pos()
	if lx.offset >= len(lx.src) {
		return Token{Kind: EOF, Pos: start, End: lx.offset}, nil
	}

	c := lx.src[lx.offset]
	switch {
	case c == '/' && lx.byteAt(1) == '/':
		return lx.lineComment(start), nil
	case c == '/' && lx.byteAt(1) == '*':
		return lx.blockComment(start)
	case c == '"':
		return lx.quoted(start, 0)
	case c == '\'':
		return lx.charOrLifetime(start, 0)
	case c >= '0' && c <= '9':
		return lx.number(start), nil
	case c == 'r' && lx.rawStringAt(1):
		return lx.rawString(start, 1)
	case c == 'r' && lx.byteAt(1) == '#' && isIdentStart(lx.runeAt(2)):
		lx.advance()
		lx.advance()
		return lx.ident(start), nil
	case (c == 'b' || c == 'c') && lx.byteAt(1) == '"':
		return lx.quoted(start, 1)
	case c == 'b' && lx.byteAt(1) == '\'':
		return lx.charOrLifetime(start, 1)
	case (c == 'b' || c == 'c') && lx.byteAt(1) == 'r' && lx.rawStringAt(2):
		return lx.rawString(start, 2)
	case c == '(' || c == '[' || c == '{':
		lx.advance()
		return lx.token(OpenDelim, start), nil
	case c == ')' || c == ']' || c == '}':
		lx.advance()
		return lx.token(CloseDelim, start), nil
	case c == ':' && lx.byteAt(1) == ':':
		lx.advance()
		lx.advance()
		return lx.token(Punct, start), nil
	case strings.IndexByte(punctChars, c) >= 0:
		lx.advance()
		return lx.token(Punct, start), nil
	}

	if isIdentStart(lx.runeAt(0)) {
		return lx.ident(start), nil
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.offset:])
	return Token{}, lx.errorf(start, "unexpected character %q", r)
}

func (lx *Lexer) pos() Pos {
	return Pos{Offset: lx.offset, Line: lx.line, Col: lx.col}
}

func (lx *Lexer) token(kind Kind, start Pos) Token {
	return Token{Kind: kind, Text: lx.src[start.Offset:lx.offset], Pos: start, End: lx.offset}
}

func (lx *Lexer) errorf(at Pos, format string, args ...any) error {
	return &SyntaxError{Pos: at, Msg: fmt.Sprintf(format, args...)}
}

// byteAt returns the byte n positions ahead, or 0 past the end.
func (lx *Lexer) byteAt(n int) byte {
	if lx.offset+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.offset+n]
}

// runeAt decodes the rune starting n bytes ahead.
func (lx *Lexer) runeAt(n int) rune {
	if lx.offset+n >= len(lx.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.offset+n:])
	return r
}

// advance consumes one rune and keeps line/col current.
func (lx *Lexer) advance() {
	if lx.offset >= len(lx.src) {
		return
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.offset:])
	lx.offset += size
	if r == '\n' {
		lx.line++
		lx.col = 1
		return
	}
	lx.col++
}

func (lx *Lexer) skipWhitespace() {
	for lx.offset < len(lx.src) {
		r := lx.runeAt(0)
		if !unicode.IsSpace(r) {
			return
		}
		lx.advance()
	}
}

func (lx *Lexer) lineComment(start Pos) Token {
	for lx.offset < len(lx.src) && lx.src[lx.offset] != '\n' {
		lx.advance()
	}
	tok := lx.token(Comment, start)
	switch {
	case strings.HasPrefix(tok.Text, "//!"):
		tok.Kind = DocComment
		tok.Inner = true
	case strings.HasPrefix(tok.Text, "///") && !strings.HasPrefix(tok.Text, "////"):
		tok.Kind = DocComment
	}
	return tok
}

func (lx *Lexer) blockComment(start Pos) (Token, error) {
	lx.advance()
	lx.advance()
	depth := 1
	for depth > 0 {
		if lx.offset >= len(lx.src) {
			return Token{}, lx.errorf(start, "unterminated block comment")
		}
		switch {
		case lx.src[lx.offset] == '/' && lx.byteAt(1) == '*':
			depth++
			lx.advance()
			lx.advance()
		case lx.src[lx.offset] == '*' && lx.byteAt(1) == '/':
			depth--
			lx.advance()
			lx.advance()
		default:
			lx.advance()
		}
	}
	tok := lx.token(Comment, start)
	switch {
	case strings.HasPrefix(tok.Text, "/*!"):
		tok.Kind = DocComment
		tok.Inner = true
	case strings.HasPrefix(tok.Text, "/**") && !strings.HasPrefix(tok.Text, "/***") && tok.Text != "/**/":
		tok.Kind = DocComment
	}
	return tok, nil
}

// quoted lexes "..." after skipping a prefix of prefixLen bytes (b or c).
func (lx *Lexer) quoted(start Pos, prefixLen int) (Token, error) {
	for range prefixLen {
		lx.advance()
	}
	lx.advance() // opening quote
	for {
		if lx.offset >= len(lx.src) {
			return Token{}, lx.errorf(start, "unterminated string literal")
		}
		switch lx.src[lx.offset] {
		case '\\':
			lx.advance()
			lx.advance()
		case '"':
			lx.advance()
			lx.literalSuffix()
			return lx.token(Literal, start), nil
		default:
			lx.advance()
		}
	}
}

// rawStringAt reports whether a raw string body (#*") starts n bytes ahead.
func (lx *Lexer) rawStringAt(n int) bool {
	i := lx.offset + n
	for i < len(lx.src) && lx.src[i] == '#' {
		i++
	}
	return i < len(lx.src) && lx.src[i] == '"'
}

func (lx *Lexer) rawString(start Pos, prefixLen int) (Token, error) {
	for range prefixLen {
		lx.advance()
	}
	hashes := 0
	for lx.src[lx.offset] == '#' {
		hashes++
		lx.advance()
	}
	lx.advance() // opening quote
	closing := "\"" + strings.Repeat("#", hashes)
	idx := strings.Index(lx.src[lx.offset:], closing)
	if idx < 0 {
		return Token{}, lx.errorf(start, "unterminated raw string literal")
	}
	end := lx.offset + idx + len(closing)
	for lx.offset < end {
		lx.advance()
	}
	lx.literalSuffix()
	return lx.token(Literal, start), nil
}

// charOrLifetime disambiguates 'x' (char) from 'a (lifetime or label).
func (lx *Lexer) charOrLifetime(start Pos, prefixLen int) (Token, error) {
	for range prefixLen {
		lx.advance()
	}
	lx.advance() // opening quote

	if lx.offset >= len(lx.src) {
		return Token{}, lx.errorf(start, "unterminated character literal")
	}

	if lx.src[lx.offset] != '\\' {
		r, size := utf8.DecodeRuneInString(lx.src[lx.offset:])
		if lx.offset+size < len(lx.src) && lx.src[lx.offset+size] == '\'' {
			lx.advance()
			lx.advance()
			lx.literalSuffix()
			return lx.token(Literal, start), nil
		}
		if prefixLen == 0 && isIdentStart(r) {
			for isIdentContinue(lx.runeAt(0)) {
				lx.advance()
			}
			return lx.token(Lifetime, start), nil
		}
		return Token{}, lx.errorf(start, "invalid character literal")
	}

	// Escaped char: consume up to the closing quote on the same line.
	lx.advance()
	lx.advance()
	for {
		if lx.offset >= len(lx.src) || lx.src[lx.offset] == '\n' {
			return Token{}, lx.errorf(start, "unterminated character literal")
		}
		if lx.src[lx.offset] == '\'' {
			lx.advance()
			lx.literalSuffix()
			return lx.token(Literal, start), nil
		}
		lx.advance()
	}
}

func (lx *Lexer) number(start Pos) Token {
	isHex := strings.HasPrefix(lx.src[lx.offset:], "0x") || strings.HasPrefix(lx.src[lx.offset:], "0X")
	seenDot := false
	for lx.offset < len(lx.src) {
		c := lx.src[lx.offset]
		switch {
		case (c == 'e' || c == 'E') && !isHex && (lx.byteAt(1) == '+' || lx.byteAt(1) == '-') && isDigit(lx.byteAt(2)):
			lx.advance()
			lx.advance()
		case isDigit(c) || isASCIILetter(c) || c == '_':
			lx.advance()
		case c == '.' && !seenDot && !isHex && isDigit(lx.byteAt(1)):
			seenDot = true
			lx.advance()
		default:
			return lx.token(Literal, start)
		}
	}
	return lx.token(Literal, start)
}

// literalSuffix consumes a type suffix glued to a literal, as in "x"suffix.
func (lx *Lexer) literalSuffix() {
	if !isIdentStart(lx.runeAt(0)) {
		return
	}
	for isIdentContinue(lx.runeAt(0)) {
		lx.advance()
	}
}

func (lx *Lexer) ident(start Pos) Token {
	for isIdentContinue(lx.runeAt(0)) {
		lx.advance()
	}
	return lx.token(Ident, start)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
