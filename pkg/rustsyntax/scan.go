// SPDX-License-Identifier: MPL-2.0

package rustsyntax

import (
	"github.com/adrytools/rsbundle/pkg/modpath"
)

// PathRef is a qualified path expression found by File.PathRefs.
type PathRef struct {
	Path modpath.Path
	Pos  Pos
	// Scope names the inline modules enclosing the reference, outermost
	// first.
	Scope []string
}

// Uses returns every use declaration in the file in source order, including
// ones nested in function bodies, impl blocks and inline modules. Nested
// declarations are parsed leniently: a `use` that does not form a valid tree
// (for example `use $crate::x;` inside a macro body, or `use<'a>` precise
// capturing) is skipped rather than reported.
func (f *File) Uses() []*UseDecl {
	match, err := matchDelims(f.Tokens)
	if err != nil {
		return nil
	}
	var decls []*UseDecl
	for i := 0; i < len(f.Tokens); i++ {
		t := f.Tokens[i]
		if !t.IsKeyword("use") || i+1 >= len(f.Tokens) {
			continue
		}
		if next := f.Tokens[i+1]; next.Is(Punct, "<") {
			continue
		}
		decl, next, err := parseUseDecl(f.Tokens, match, i+1)
		if err != nil || next >= len(f.Tokens) || !f.Tokens[next].Is(Punct, ";") {
			continue
		}
		decl.Pos = t.Pos
		decl.Span = Span{Start: t.Pos.Offset, End: f.Tokens[next].End}
		decl.Scope = f.ScopeAt(t.Pos.Offset)
		decls = append(decls, decl)
		i = next
	}
	return decls
}

// PathRefs returns every qualified path expression whose first segment is one
// of heads, such as `lib::math::gcd` in `lib::math::gcd(a, b)`. A path stops at
// a turbofish (`::<`). Use-tree prefixes (`lib::a::{...}`, `lib::a::*`) and
// single-segment matches are dropped.
func (f *File) PathRefs(heads ...string) []PathRef {
	want := make(map[string]bool, len(heads))
	for _, h := range heads {
		want[h] = true
	}

	var refs []PathRef
	for i := 0; i < len(f.Tokens); i++ {
		t := f.Tokens[i]
		if t.Kind != Ident || !want[t.Text] {
			continue
		}
		if i > 0 && f.Tokens[i-1].Is(Punct, "::") {
			continue
		}
		path := modpath.Path{t.Text}
		j := i + 1
		for j+1 < len(f.Tokens) && f.Tokens[j].Is(Punct, "::") && f.Tokens[j+1].Kind == Ident {
			path = append(path, f.Tokens[j+1].Name())
			j += 2
		}
		i = j - 1
		if j+1 < len(f.Tokens) && f.Tokens[j].Is(Punct, "::") &&
			(f.Tokens[j+1].Is(OpenDelim, "{") || f.Tokens[j+1].Is(Punct, "*")) {
			continue
		}
		if len(path) > 1 {
			refs = append(refs, PathRef{Path: path, Pos: t.Pos, Scope: f.ScopeAt(t.Pos.Offset)})
		}
	}
	return refs
}

// ScopeAt returns the names of the inline modules whose bodies contain the
// byte offset, outermost first. It is nil at file level.
func (f *File) ScopeAt(offset int) []string {
	var scope []string
	items := f.Items
	for {
		var inner *Item
		for _, it := range items {
			if it.Kind == ItemMod && it.Inline && it.Span.Start <= offset && offset < it.Span.End {
				inner = it
				break
			}
		}
		if inner == nil {
			return scope
		}
		scope = append(scope, inner.Name)
		items = inner.Body
	}
}

// ForwardDeclsIn returns the names of the `mod name;` items declared directly
// in the inline module at scope. A nil scope means the file level.
func (f *File) ForwardDeclsIn(scope []string) []string {
	items := f.Items
	for _, name := range scope {
		var next []*Item
		for _, it := range items {
			if it.Kind == ItemMod && it.Inline && it.Name == name {
				next = it.Body
				break
			}
		}
		if next == nil {
			return nil
		}
		items = next
	}
	var names []string
	for _, it := range items {
		if it.IsForwardDecl() {
			names = append(names, it.Name)
		}
	}
	return names
}
