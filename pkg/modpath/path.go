// SPDX-License-Identifier: MPL-2.0

package modpath

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	// Separator joins segments in the textual form of a path.
	Separator = "::"

	// SelfSegment names the enclosing module inside a use group (`{self, X}`).
	SelfSegment = "self"
	// SuperSegment names the parent module.
	SuperSegment = "super"
	// CrateSegment names the root of the current crate.
	CrateSegment = "crate"
)

// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
var ErrInvalidPath = errors.New("invalid module path")

type (
	// Path is an ordered sequence of module path segments. The first segment
	// is conventionally the library root name.
	Path []string

	// InvalidPathError is returned by Parse when the textual form contains an
	// empty segment.
	InvalidPathError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid module path %q", e.Value)
}

// Unwrap returns ErrInvalidPath for errors.Is() compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

// New builds a path from segments. The segments are copied.
func New(segments ...string) Path {
	return Path(slices.Clone(segments))
}

// Parse splits a "a::b::c" string into a Path.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, &InvalidPathError{Value: s}
	}
	parts := strings.Split(s, Separator)
	for _, p := range parts {
		if p == "" {
			return nil, &InvalidPathError{Value: s}
		}
	}
	return Path(parts), nil
}

// String renders the path with "::" separators.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p) }

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool { return len(p) == 0 }

// First returns the first segment, or "" for an empty path.
func (p Path) First() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Equal reports whether both paths have the same segments in the same order.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Compare orders paths segment by segment; a strict prefix sorts first.
func (p Path) Compare(other Path) int {
	return slices.Compare(p, other)
}

// Clone returns an independent copy.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Append returns a new path with the given segments added.
func (p Path) Append(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// Parent returns the path without its final segment. The parent of an empty
// or single-segment path is empty.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return Path{}
	}
	return p[:len(p)-1].Clone()
}

// Tail returns the segments after the first one.
func (p Path) Tail() Path {
	if len(p) <= 1 {
		return Path{}
	}
	return p[1:].Clone()
}

// HasPrefix reports whether prefix is a leading subsequence of p.
func (p Path) HasPrefix(prefix Path) bool {
	return len(prefix) <= len(p) && slices.Equal(p[:len(prefix)], prefix)
}

// ModuleKey returns the containing module of a leaf reference: the module
// whose file must be loaded to provide the leaf.
//
// A leaf ending in `self` names the module itself. When dropping the final
// segment would leave only the root, the leaf is treated as a module, because
// the root is anonymous and has no file of its own. The second result is
// false when no loadable key exists (paths of fewer than two segments).
func (p Path) ModuleKey() (Path, bool) {
	if len(p) < 2 {
		return nil, false
	}
	var key Path
	switch {
	case p.Last() == SelfSegment:
		key = p.Parent()
	case len(p) == 2:
		key = p.Clone()
	default:
		key = p.Parent()
	}
	if len(key) < 2 {
		return nil, false
	}
	return key, true
}

// Sort orders paths in place by Compare.
func Sort(paths []Path) {
	slices.SortFunc(paths, func(a, b Path) int { return a.Compare(b) })
}

// Unique returns the distinct paths in sorted order.
func Unique(paths []Path) []Path {
	seen := make(map[string]bool, len(paths))
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		k := p.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p.Clone())
	}
	Sort(out)
	return out
}
