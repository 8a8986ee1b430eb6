// SPDX-License-Identifier: MPL-2.0

package rustsyntax

import (
	"fmt"
	"strings"
)

const (
	// EOF marks the end of input.
	EOF Kind = iota
	// Ident is an identifier or keyword, including raw identifiers (r#name).
	Ident
	// Lifetime is a lifetime or label such as 'a or 'static.
	Lifetime
	// Literal is a string, char, byte, raw string or numeric literal.
	Literal
	// Punct is a punctuation token. "::" is lexed as a single token; every
	// other operator is split into single characters.
	Punct
	// OpenDelim is one of ( [ {.
	OpenDelim
	// CloseDelim is one of ) ] }.
	CloseDelim
	// DocComment is a ///, //!, /** */ or /*! */ comment.
	DocComment
	// Comment is a regular line or block comment.
	Comment
)

type (
	// Kind classifies a token.
	Kind int

	// Pos is a source position. Line and Col are 1-based; Col counts runes.
	Pos struct {
		Offset int
		Line   int
		Col    int
	}

	// Token is a lexed token. Text is the exact source text of the token.
	Token struct {
		Kind Kind
		Text string
		Pos  Pos
		// End is the byte offset just past the token.
		End int
		// Inner is set for inner doc comments (//! and /*! */).
		Inner bool
	}
)

var kindNames = map[Kind]string{
	EOF:        "EOF",
	Ident:      "identifier",
	Lifetime:   "lifetime",
	Literal:    "literal",
	Punct:      "punctuation",
	OpenDelim:  "opening delimiter",
	CloseDelim: "closing delimiter",
	DocComment: "doc comment",
	Comment:    "comment",
}

// String returns a human-readable kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// String formats the position as line:col.
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// IsKeyword reports whether the token is the plain (non-raw) identifier kw.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Ident && t.Text == kw
}

// Name returns the identifier name with any r# prefix removed.
func (t Token) Name() string {
	return strings.TrimPrefix(t.Text, "r#")
}

// Multiline reports whether the token spans more than one line.
func (t Token) Multiline() bool {
	return strings.Contains(t.Text, "\n")
}

// closerFor maps an opening delimiter to its closing counterpart.
func closerFor(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	default:
		return "}"
	}
}
