// SPDX-License-Identifier: MPL-2.0

package modtree

import (
	"maps"
	"slices"
	"strings"

	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// Node is one module of the tree. The root node is anonymous.
type Node struct {
	Name string
	// Text is the module's own source; empty with HasText false for modules
	// that only exist as parents of loaded modules.
	Text    string
	HasText bool
	// File is the parsed Text, used to locate forwarding declarations.
	File     *rustsyntax.File
	children map[string]*Node
}

// New returns an empty anonymous root.
func New() *Node {
	return &Node{children: make(map[string]*Node)}
}

// Insert walks segments from n, creating missing children, and sets the
// source of the final node. Inserting an existing path replaces its source and
// keeps its children. An empty segment list is a no-op.
func (n *Node) Insert(segments []string, text string, file *rustsyntax.File) *Node {
	if len(segments) == 0 {
		return nil
	}
	cur := n
	for _, seg := range segments {
		child, ok := cur.children[seg]
		if !ok {
			child = &Node{Name: seg, children: make(map[string]*Node)}
			cur.children[seg] = child
		}
		cur = child
	}
	cur.Text = text
	cur.HasText = true
	cur.File = file
	return cur
}

// Child returns the named child or nil.
func (n *Node) Child(name string) *Node {
	return n.children[name]
}

// Lookup returns the node at segments below n, or nil.
func (n *Node) Lookup(segments ...string) *Node {
	cur := n
	for _, seg := range segments {
		if cur = cur.children[seg]; cur == nil {
			return nil
		}
	}
	return cur
}

// ChildNames returns the names of n's children in sorted order.
func (n *Node) ChildNames() []string {
	return slices.Sorted(maps.Keys(n.children))
}

// Children returns n's children sorted by name.
func (n *Node) Children() []*Node {
	names := n.ChildNames()
	out := make([]*Node, len(names))
	for i, name := range names {
		out[i] = n.children[name]
	}
	return out
}

// Len returns the number of nodes below n.
func (n *Node) Len() int {
	total := 0
	for _, c := range n.children {
		total += 1 + c.Len()
	}
	return total
}

// OwnText returns the node's source with the forwarding declarations of its
// present children removed.
func (n *Node) OwnText() string {
	if !n.HasText {
		return ""
	}
	if n.File == nil {
		return n.Text
	}
	return StripForwardDecls(n.File, n.children)
}

// StripForwardDecls returns file's source without the top-level `mod name;`
// items whose name is a key of children. Each removed item takes its outer
// attributes, the indentation before it and the line break after it along.
// All other text is kept verbatim.
func StripForwardDecls[V any](file *rustsyntax.File, children map[string]V) string {
	src := file.Src
	var (
		out  strings.Builder
		last int
	)
	for _, it := range file.Items {
		if !it.IsForwardDecl() {
			continue
		}
		if _, ok := children[it.Name]; !ok {
			continue
		}
		start, end := it.Span.Start, it.Span.End
		if lineStart := strings.LastIndexByte(src[:start], '\n') + 1; strings.TrimSpace(src[lineStart:start]) == "" {
			start = lineStart
		}
		rest := src[end:]
		if trimmed := strings.TrimLeft(rest, " \t"); strings.HasPrefix(trimmed, "\n") || strings.HasPrefix(trimmed, "\r\n") {
			end += len(rest) - len(trimmed) + strings.IndexByte(trimmed, '\n') + 1
		}
		if start < last {
			start = last
		}
		out.WriteString(src[last:start])
		last = end
	}
	out.WriteString(src[last:])
	return out.String()
}
