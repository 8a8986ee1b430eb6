// SPDX-License-Identifier: MPL-2.0

package rustsyntax

import "fmt"

const (
	// ItemOther is any item the bundler does not need to look inside
	// (fn, struct, enum, impl, trait, const, static, type, macro, ...).
	ItemOther ItemKind = iota
	// ItemUse is a `use` declaration.
	ItemUse
	// ItemMod is a `mod` item, either inline or a forwarding declaration.
	ItemMod
	// ItemExternCrate is an `extern crate` item.
	ItemExternCrate
	// ItemMacroRules is a `macro_rules!` definition.
	ItemMacroRules
)

type (
	// ItemKind classifies a top-level item.
	ItemKind int

	// Span is a half-open byte range [Start, End) into the source.
	Span struct {
		Start int
		End   int
	}

	// Item is one item of a file or inline module body. Its span covers the
	// item's outer attributes and doc comments.
	Item struct {
		Kind ItemKind
		Span Span
		Pos  Pos
		// Name is the module name for ItemMod.
		Name string
		// Inline is true for `mod name { ... }`, false for `mod name;`.
		Inline bool
		// Body holds the items of an inline module.
		Body []*Item
		// Use is the parsed declaration for ItemUse.
		Use *UseDecl
	}

	// File is a parsed source file.
	File struct {
		Src string
		// Tokens are the significant tokens (plain comments removed),
		// terminated by an EOF token.
		Tokens []Token
		// Inner holds the spans of the file's inner attributes and inner doc
		// comments.
		Inner []Span
		Items []*Item
	}

	parser struct {
		src   string
		toks  []Token
		match []int
		i     int
	}
)

// Text returns the source text covered by the span.
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// IsForwardDecl reports whether the item is a body-less `mod name;`.
func (it *Item) IsForwardDecl() bool {
	return it.Kind == ItemMod && !it.Inline
}

// ParseFile parses Rust source into items. It fails on unbalanced
// delimiters, unterminated literals, malformed use declarations and
// truncated items.
func ParseFile(src string) (*File, error) {
	all, err := Lex(src)
	if err != nil {
		return nil, err
	}
	toks := make([]Token, 0, len(all))
	for _, t := range all {
		if t.Kind != Comment {
			toks = append(toks, t)
		}
	}
	match, err := matchDelims(toks)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, toks: toks, match: match}
	items, inner, err := p.parseItems(len(toks) - 1)
	if err != nil {
		return nil, err
	}
	return &File{Src: src, Tokens: toks, Inner: inner, Items: items}, nil
}

// Validate reports whether src parses.
func Validate(src string) error {
	_, err := ParseFile(src)
	return err
}

// ForwardDecls returns the names of the file's top-level `mod name;` items.
func (f *File) ForwardDecls() []string {
	return f.ForwardDeclsIn(nil)
}

// matchDelims pairs every delimiter token with its counterpart. match[i] is
// the index of the partner for delimiter tokens and -1 otherwise.
func matchDelims(toks []Token) ([]int, error) {
	match := make([]int, len(toks))
	var stack []int
	for i, t := range toks {
		match[i] = -1
		switch t.Kind {
		case OpenDelim:
			stack = append(stack, i)
		case CloseDelim:
			if len(stack) == 0 {
				return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("unexpected closing delimiter `%s`", t.Text)}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if want := closerFor(toks[open].Text); t.Text != want {
				return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("mismatched closing delimiter `%s`, expected `%s`", t.Text, want)}
			}
			match[i] = open
			match[open] = i
		}
	}
	if len(stack) > 0 {
		open := toks[stack[len(stack)-1]]
		return nil, &SyntaxError{Pos: open.Pos, Msg: fmt.Sprintf("unclosed delimiter `%s`", open.Text)}
	}
	return match, nil
}

func (p *parser) errorf(at int, format string, args ...any) error {
	return &SyntaxError{Pos: p.toks[at].Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) tok(i int) Token {
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) isInnerAttr(i int) bool {
	return p.tok(i).Is(Punct, "#") && p.tok(i+1).Is(Punct, "!") && p.tok(i+2).Is(OpenDelim, "[")
}

func (p *parser) isOuterAttr(i int) bool {
	return p.tok(i).Is(Punct, "#") && p.tok(i+1).Is(OpenDelim, "[")
}

// parseItems parses items until the token index end (an EOF token or the
// closing brace of an inline module).
func (p *parser) parseItems(end int) ([]*Item, []Span, error) {
	var (
		items []*Item
		inner []Span
	)
	for p.i < end {
		t := p.toks[p.i]
		if p.isInnerAttr(p.i) || (t.Kind == DocComment && t.Inner) {
			if len(items) > 0 {
				return nil, nil, p.errorf(p.i, "inner attribute is not permitted after items")
			}
			start := p.i
			if t.Kind == DocComment {
				p.i++
			} else {
				p.i = p.match[p.i+2] + 1
			}
			inner = append(inner, Span{Start: p.toks[start].Pos.Offset, End: p.toks[p.i-1].End})
			continue
		}
		item, err := p.parseItem(end)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, inner, nil
}

func (p *parser) parseItem(end int) (*Item, error) {
	start := p.i
	for p.i < end {
		t := p.toks[p.i]
		if t.Kind == DocComment && !t.Inner {
			p.i++
			continue
		}
		if p.isOuterAttr(p.i) {
			p.i = p.match[p.i+1] + 1
			continue
		}
		break
	}
	if p.i >= end {
		return nil, p.errorf(p.i, "expected item after attributes")
	}

	item := &Item{Kind: ItemOther, Pos: p.toks[start].Pos}

	if p.tok(p.i).IsKeyword("pub") {
		p.i++
		if p.tok(p.i).Is(OpenDelim, "(") {
			p.i = p.match[p.i] + 1
		}
	}

	if err := p.parseItemBody(item, end); err != nil {
		return nil, err
	}
	item.Span = Span{Start: p.toks[start].Pos.Offset, End: p.toks[p.i-1].End}
	return item, nil
}

func (p *parser) parseItemBody(item *Item, end int) error {
	for {
		t := p.tok(p.i)
		if p.i >= end {
			return p.errorf(p.i, "expected item")
		}
		if t.Kind != Ident {
			if t.Is(Punct, "::") {
				return p.skipMacroOrItem(end)
			}
			return p.errorf(p.i, "expected item, found `%s`", t.Text)
		}

		switch t.Text {
		case "unsafe", "async", "default", "auto":
			p.i++
			continue
		case "extern":
			if p.tok(p.i + 1).IsKeyword("crate") {
				item.Kind = ItemExternCrate
				return p.skipToSemicolon(end)
			}
			p.i++
			if p.tok(p.i).Kind == Literal {
				p.i++
			}
			if p.tok(p.i).Is(OpenDelim, "{") {
				return p.skipMacroOrItem(end)
			}
			continue
		case "const":
			next := p.tok(p.i + 1)
			if next.IsKeyword("fn") || next.IsKeyword("unsafe") || next.IsKeyword("async") || next.IsKeyword("extern") {
				p.i++
				continue
			}
			return p.skipToSemicolon(end)
		case "static", "type":
			return p.skipToSemicolon(end)
		case "use":
			item.Kind = ItemUse
			return p.parseUseItem(item, end)
		case "mod":
			item.Kind = ItemMod
			return p.parseModItem(item)
		case "macro_rules":
			if p.tok(p.i + 1).Is(Punct, "!") {
				item.Kind = ItemMacroRules
				return p.skipMacroOrItem(end)
			}
		}
		return p.skipMacroOrItem(end)
	}
}

// skipMacroOrItem consumes a generic item: tokens up to a `;` or through the
// first brace group at item level. Other groups are skipped whole.
func (p *parser) skipMacroOrItem(end int) error {
	for p.i < end {
		t := p.toks[p.i]
		switch {
		case t.Kind == OpenDelim:
			closeIdx := p.match[p.i]
			p.i = closeIdx + 1
			if t.Text == "{" {
				return nil
			}
		case t.Is(Punct, ";"):
			p.i++
			return nil
		default:
			p.i++
		}
	}
	return p.errorf(p.i, "unexpected end of item, expected `;` or `{`")
}

// skipToSemicolon consumes tokens up to and including the next `;` at item
// level, skipping groups whole. Used where a brace group does not end the
// item (const, static, type, extern crate).
func (p *parser) skipToSemicolon(end int) error {
	for p.i < end {
		t := p.toks[p.i]
		switch {
		case t.Kind == OpenDelim:
			p.i = p.match[p.i] + 1
		case t.Is(Punct, ";"):
			p.i++
			return nil
		default:
			p.i++
		}
	}
	return p.errorf(p.i, "unexpected end of item, expected `;`")
}

func (p *parser) parseUseItem(item *Item, end int) error {
	startTok := p.i
	decl, next, err := parseUseDecl(p.toks, p.match, p.i+1)
	if err != nil {
		return err
	}
	if next >= end || !p.tok(next).Is(Punct, ";") {
		return p.errorf(next, "expected `;` after use declaration")
	}
	decl.Pos = p.toks[startTok].Pos
	decl.Span = Span{Start: p.toks[startTok].Pos.Offset, End: p.toks[next].End}
	item.Use = decl
	p.i = next + 1
	return nil
}

func (p *parser) parseModItem(item *Item) error {
	p.i++
	name := p.tok(p.i)
	if name.Kind != Ident {
		return p.errorf(p.i, "expected module name after `mod`")
	}
	item.Name = name.Name()
	p.i++

	switch next := p.tok(p.i); {
	case next.Is(Punct, ";"):
		p.i++
		return nil
	case next.Is(OpenDelim, "{"):
		closeIdx := p.match[p.i]
		p.i++
		body, _, err := p.parseItems(closeIdx)
		if err != nil {
			return err
		}
		item.Inline = true
		item.Body = body
		p.i = closeIdx + 1
		return nil
	default:
		return p.errorf(p.i, "expected `;` or `{` after module name")
	}
}
