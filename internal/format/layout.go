// SPDX-License-Identifier: MPL-2.0

package format

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// DefaultIndent is one level of Layout indentation.
const DefaultIndent = "    "

// Layout re-indents Rust source by delimiter depth.
//
// Each line is indented by the nesting depth at its first token, one level
// less when it starts with a closing delimiter. Lines that begin inside a
// multi-line string or block comment are kept as they are. Trailing whitespace
// is trimmed unless the line ends inside such a token, runs of blank lines
// collapse to one, and the result ends with exactly one newline.
type Layout struct {
	Indent string
}

type lineInfo struct {
	depth    int
	hasToken bool
}

// Format implements Formatter.
func (l Layout) Format(_ context.Context, src string) (string, error) {
	indent := l.Indent
	if indent == "" {
		indent = DefaultIndent
	}

	toks, err := rustsyntax.Lex(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	}

	// protected[i] is set when byte i is a newline inside a multi-line token.
	protected := make(map[int]bool)
	lines := make(map[int]lineInfo)
	depth := 0
	for _, t := range toks {
		if t.Kind == rustsyntax.EOF {
			break
		}
		if t.Kind == rustsyntax.CloseDelim {
			depth--
		}
		if _, seen := lines[t.Pos.Line]; !seen {
			lines[t.Pos.Line] = lineInfo{depth: max(depth, 0), hasToken: true}
		}
		if t.Kind == rustsyntax.OpenDelim {
			depth++
		}
		if t.Multiline() {
			for i := t.Pos.Offset; i < t.End; i++ {
				if src[i] == '\n' {
					protected[i] = true
				}
			}
		}
	}

	var (
		out       strings.Builder
		offset    int
		prevBlank = true
	)
	for n, line := range strings.SplitAfter(src, "\n") {
		start := offset
		offset += len(line)
		body := strings.TrimSuffix(line, "\n")
		startsInside := start > 0 && protected[start-1]
		endsInside := strings.HasSuffix(line, "\n") && protected[offset-1]

		if !endsInside {
			body = strings.TrimRight(body, " \t\r")
		}

		switch {
		case startsInside:
			// Continuation of a string or comment.
		case strings.TrimSpace(body) == "":
			if prevBlank {
				continue
			}
			body = ""
		default:
			info := lines[n+1]
			body = strings.Repeat(indent, info.depth) + strings.TrimLeft(body, " \t")
		}

		prevBlank = body == "" && !startsInside
		out.WriteString(body)
		out.WriteByte('\n')
	}

	return strings.TrimRight(out.String(), "\n") + "\n", nil
}
