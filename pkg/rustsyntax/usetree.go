// SPDX-License-Identifier: MPL-2.0

package rustsyntax

import (
	"fmt"

	"github.com/adrytools/rsbundle/pkg/modpath"
)

const (
	// UsePath is a segment followed by `::` and a subtree.
	UsePath UseKind = iota
	// UseName is a plain leaf name.
	UseName
	// UseRename is `name as alias`.
	UseRename
	// UseGlob is `*`.
	UseGlob
	// UseGroup is `{a, b, ...}`.
	UseGroup
)

type (
	// UseKind classifies a use-tree node.
	UseKind int

	// UseTree is one node of a use declaration's tree.
	UseTree struct {
		Kind UseKind
		// Ident is the segment (UsePath) or leaf name (UseName, UseRename).
		Ident string
		// Alias is the new name of a UseRename.
		Alias string
		// Sub is the subtree of a UsePath.
		Sub *UseTree
		// Items are the members of a UseGroup.
		Items []*UseTree
	}

	// UseDecl is a complete `use` declaration.
	UseDecl struct {
		Tree *UseTree
		// Global is set for a leading `::`, as in `use ::lib::x;`.
		Global bool
		Span   Span
		Pos    Pos
		// Scope names the inline modules enclosing the declaration,
		// outermost first. It is set by File.Uses.
		Scope []string
	}
)

// Leaves flattens the tree into full leaf paths, each prefixed with prefix.
// Renames contribute their original name, and globs contribute nothing.
func (t *UseTree) Leaves(prefix modpath.Path) []modpath.Path {
	var out []modpath.Path
	stack := prefix.Clone()

	var walk func(n *UseTree)
	walk = func(n *UseTree) {
		switch n.Kind {
		case UsePath:
			stack = append(stack, n.Ident)
			walk(n.Sub)
			stack = stack[:len(stack)-1]
		case UseGroup:
			for _, item := range n.Items {
				walk(item)
			}
		case UseName, UseRename:
			out = append(out, stack.Append(n.Ident))
		case UseGlob:
		}
	}
	walk(t)
	return out
}

// Leaves flattens the declaration's tree from an empty prefix.
func (d *UseDecl) Leaves() []modpath.Path {
	return d.Tree.Leaves(modpath.Path{})
}

// parseUseDecl parses the tree that follows a `use` keyword at toks[i]. It
// returns the index of the first token after the tree.
func parseUseDecl(toks []Token, match []int, i int) (*UseDecl, int, error) {
	decl := &UseDecl{}
	if i < len(toks) && toks[i].Is(Punct, "::") {
		decl.Global = true
		i++
	}
	tree, next, err := parseUseTree(toks, match, i)
	if err != nil {
		return nil, 0, err
	}
	decl.Tree = tree
	return decl, next, nil
}

func parseUseTree(toks []Token, match []int, i int) (*UseTree, int, error) {
	if i >= len(toks) {
		return nil, 0, useErr(toks[len(toks)-1], "unexpected end of use tree")
	}
	t := toks[i]
	switch {
	case t.Is(Punct, "*"):
		return &UseTree{Kind: UseGlob}, i + 1, nil

	case t.Is(OpenDelim, "{"):
		closeIdx := match[i]
		if closeIdx < 0 {
			return nil, 0, useErr(t, "unclosed use group")
		}
		group := &UseTree{Kind: UseGroup}
		j := i + 1
		for j < closeIdx {
			if toks[j].Is(Punct, "::") {
				j++
			}
			item, next, err := parseUseTree(toks, match, j)
			if err != nil {
				return nil, 0, err
			}
			group.Items = append(group.Items, item)
			j = next
			if j < closeIdx {
				if !toks[j].Is(Punct, ",") {
					return nil, 0, useErr(toks[j], fmt.Sprintf("expected `,` or `}` in use group, found `%s`", toks[j].Text))
				}
				j++
			}
		}
		return group, closeIdx + 1, nil

	case t.Kind == Ident:
		name := t.Name()
		next := i + 1
		if next < len(toks) && toks[next].Is(Punct, "::") {
			sub, after, err := parseUseTree(toks, match, next+1)
			if err != nil {
				return nil, 0, err
			}
			return &UseTree{Kind: UsePath, Ident: name, Sub: sub}, after, nil
		}
		if next < len(toks) && toks[next].IsKeyword("as") {
			if next+1 >= len(toks) || toks[next+1].Kind != Ident {
				return nil, 0, useErr(toks[next], "expected identifier after `as`")
			}
			return &UseTree{Kind: UseRename, Ident: name, Alias: toks[next+1].Name()}, next + 2, nil
		}
		return &UseTree{Kind: UseName, Ident: name}, next, nil
	}
	return nil, 0, useErr(t, fmt.Sprintf("unexpected `%s` in use tree", t.Text))
}

func useErr(t Token, msg string) error {
	return &SyntaxError{Pos: t.Pos, Msg: msg}
}
