// SPDX-License-Identifier: MPL-2.0

// Package rewrite adjusts crate-relative paths in library code that has been
// re-nested under a module of the bundled file.
package rewrite

import (
	"strings"

	"github.com/adrytools/rsbundle/pkg/modpath"
	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// SelfReferences rewrites the self-references of library text that now lives
// at crate::<nest> of the bundled file:
//
//   - `crate::x` and `$crate::x` become `crate::<nest>::x`;
//   - a path starting `<rootName>::` becomes `crate::<nest>::`, unless the
//     root name is itself preceded by `::`.
//
// Identifiers inside string literals and comments are never touched. With an
// empty nest only the root-name form changes.
func SelfReferences(text, rootName string, nest []string) (string, error) {
	toks, err := rustsyntax.Lex(text)
	if err != nil {
		return "", err
	}

	prefix := strings.Join(nest, modpath.Separator)

	var (
		out  strings.Builder
		last int
		prev rustsyntax.Token
	)
	out.Grow(len(text) + len(text)/16)

	for i, t := range toks {
		if t.Kind == rustsyntax.Comment || t.Kind == rustsyntax.DocComment {
			continue
		}
		next := nextSignificant(toks, i+1)
		pathFollows := next.Is(rustsyntax.Punct, modpath.Separator)

		switch {
		case t.IsKeyword(modpath.CrateSegment) && pathFollows && prefix != "":
			out.WriteString(text[last:next.End])
			out.WriteString(prefix)
			out.WriteString(modpath.Separator)
			last = next.End
		case t.IsKeyword(rootName) && pathFollows && !prev.Is(rustsyntax.Punct, modpath.Separator):
			out.WriteString(text[last:t.Pos.Offset])
			out.WriteString(modpath.CrateSegment)
			if prefix != "" {
				out.WriteString(modpath.Separator)
				out.WriteString(prefix)
			}
			last = t.End
		}
		prev = t
	}
	out.WriteString(text[last:])
	return out.String(), nil
}

func nextSignificant(toks []rustsyntax.Token, i int) rustsyntax.Token {
	for ; i < len(toks); i++ {
		if k := toks[i].Kind; k != rustsyntax.Comment && k != rustsyntax.DocComment {
			return toks[i]
		}
	}
	return rustsyntax.Token{Kind: rustsyntax.EOF}
}
