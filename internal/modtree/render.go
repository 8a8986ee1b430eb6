// SPDX-License-Identifier: MPL-2.0

package modtree

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/adrytools/rsbundle/internal/format"
	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// Renderer turns a module tree into Rust text.
type Renderer struct {
	// TopModule, when set, wraps the rendered tree in `pub mod <TopModule>`.
	TopModule string
	// Formatter canonicalizes the text in Finish. Nil means no formatting.
	Formatter format.Formatter
	Logger    *log.Logger
}

// Generate renders root depth-first without validating the result.
func (r *Renderer) Generate(root *Node) string {
	var b strings.Builder
	if r.TopModule != "" {
		b.WriteString("pub mod " + r.TopModule + " {\n")
	}
	writeBody(&b, root)
	if r.TopModule != "" {
		b.WriteString("}\n")
	}
	return b.String()
}

func writeBody(b *strings.Builder, n *Node) {
	if own := n.OwnText(); own != "" {
		b.WriteString(own)
		if !strings.HasSuffix(own, "\n") {
			b.WriteByte('\n')
		}
	}
	for _, child := range n.Children() {
		writeNode(b, child)
	}
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteString("pub mod " + n.Name + " {\n")
	writeBody(b, n)
	b.WriteString("}\n")
}

// Finish validates generated text by re-parsing it and formats it. When the
// text does not parse or the formatter fails, the problem is logged and the
// generated text is returned unchanged.
func (r *Renderer) Finish(ctx context.Context, generated string) string {
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if err := rustsyntax.Validate(generated); err != nil {
		logger.Warn("generated library does not re-parse, emitting it unformatted", "error", err)
		return generated
	}
	if r.Formatter == nil {
		return generated
	}
	formatted, err := r.Formatter.Format(ctx, generated)
	if err != nil {
		logger.Warn("formatter failed, emitting unformatted library", "error", err)
		return generated
	}
	return formatted
}

// Render is Generate followed by Finish.
func (r *Renderer) Render(ctx context.Context, root *Node) string {
	return r.Finish(ctx, r.Generate(root))
}
