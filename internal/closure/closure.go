// SPDX-License-Identifier: MPL-2.0

package closure

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"

	"github.com/adrytools/rsbundle/internal/dag"
	"github.com/adrytools/rsbundle/internal/resolver"
	"github.com/adrytools/rsbundle/pkg/modpath"
	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// ErrModuleParse is the sentinel error wrapped by ModuleParseError.
var ErrModuleParse = errors.New("library module does not parse")

type (
	// Loader loads the source of a module key. *resolver.Resolver implements it.
	// A key with no file must yield an error wrapping resolver.ErrMissingDependency.
	Loader interface {
		Load(key modpath.Path) (*resolver.Module, error)
	}

	// Builder computes dependency closures.
	Builder struct {
		Loader   Loader
		RootName string
		// Strict aborts on the first missing dependency. Otherwise missing
		// modules are logged and skipped.
		Strict bool
		// FollowModDecls enqueues the children named by `mod x;` declarations.
		FollowModDecls bool
		// ScanPaths follows qualified `crate::`, `super::` and `<root>::` path
		// expressions in addition to use declarations.
		ScanPaths bool
		Logger    *log.Logger
	}

	// Module is one loaded library module.
	Module struct {
		Key  modpath.Path
		Path string
		Text string
		File *rustsyntax.File
	}

	// Result is a computed closure.
	Result struct {
		// Modules are the loaded modules sorted by key.
		Modules []*Module
		// Visited holds every key that was processed, loaded or not, sorted.
		Visited []string
		// Missing holds the dependencies skipped in lenient mode.
		Missing []*resolver.MissingDependencyError
		// Graph has a node per loaded module and an edge per dependency.
		Graph *dag.Graph
	}

	// ModuleParseError is returned when a loaded library file does not parse.
	ModuleParseError struct {
		Key  modpath.Path
		Path string
		Err  error
	}

	// build holds the state of one Build call.
	build struct {
		b       *Builder
		logger  *log.Logger
		visited map[string]bool
		// loadedAs maps every processed key to the key of the module that
		// provides it; it differs from the key itself after an ancestor
		// fallback.
		loadedAs map[string]string
		byKey    map[string]*Module
		modules  []*Module
		missing  []*resolver.MissingDependencyError
		edges    [][2]string
	}
)

// Error implements the error interface.
func (e *ModuleParseError) Error() string {
	return fmt.Sprintf("library module %s (%s) does not parse: %v", e.Key, e.Path, e.Err)
}

// Unwrap returns the underlying syntax error.
func (e *ModuleParseError) Unwrap() []error { return []error{ErrModuleParse, e.Err} }

// Keys returns the keys of the loaded modules.
func (r *Result) Keys() []modpath.Path {
	keys := make([]modpath.Path, len(r.Modules))
	for i, m := range r.Modules {
		keys[i] = m.Key
	}
	return keys
}

// Build computes the closure of the modules containing entries.
func (b *Builder) Build(ctx context.Context, entries []modpath.Path) (*Result, error) {
	st := &build{
		b:        b,
		logger:   b.Logger,
		visited:  make(map[string]bool),
		loadedAs: make(map[string]string),
		byKey:    make(map[string]*Module),
	}
	if st.logger == nil {
		st.logger = log.New(io.Discard)
	}

	queue := ModuleKeys(entries)
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		key := queue[0]
		queue = queue[1:]
		if st.visited[key.String()] {
			continue
		}

		mod, err := st.load(key)
		if err != nil {
			return nil, err
		}
		if mod == nil {
			continue
		}

		for _, dep := range st.references(mod) {
			st.edges = append(st.edges, [2]string{mod.Key.String(), dep.String()})
			if !st.visited[dep.String()] {
				queue = append(queue, dep)
			}
		}
	}

	return st.result(), nil
}

// load processes key and returns the newly loaded module, or nil when the key
// is provided by a module loaded earlier or is missing in lenient mode.
func (st *build) load(key modpath.Path) (*Module, error) {
	name := key.String()
	st.visited[name] = true

	mod, err := st.loadKey(key)
	if errors.Is(err, resolver.ErrMissingDependency) {
		mod, err = st.loadAncestor(key, err)
	}
	if err != nil {
		var missing *resolver.MissingDependencyError
		if errors.As(err, &missing) && !st.b.Strict {
			st.logger.Warn("skipping missing dependency", "module", name, "tried", missing.Tried)
			st.missing = append(st.missing, missing)
			return nil, nil
		}
		return nil, err
	}
	if mod == nil {
		return nil, nil
	}

	loaded := mod.Key.String()
	st.visited[loaded] = true
	st.loadedAs[name] = loaded
	st.loadedAs[loaded] = loaded
	st.byKey[loaded] = mod

	st.logger.Debug("loaded module", "module", loaded, "file", mod.Path)
	st.modules = append(st.modules, mod)
	return mod, nil
}

// loadKey reads and parses the file of key.
func (st *build) loadKey(key modpath.Path) (*Module, error) {
	src, err := st.b.Loader.Load(key)
	if err != nil {
		return nil, err
	}
	file, err := rustsyntax.ParseFile(src.Text)
	if err != nil {
		return nil, &ModuleParseError{Key: src.Key, Path: src.Path, Err: err}
	}
	return &Module{Key: src.Key, Path: src.Path, Text: src.Text, File: file}, nil
}

// loadAncestor handles a key that names an item inside a module rather than a
// module, such as `lib::grid::Dir` from `use lib::grid::Dir::Up`. It tries
// each ancestor down to two segments. The original error is returned when no
// ancestor exists, or when the nearest existing ancestor declares the next
// segment with `mod name;`, since that names a child file that is missing.
// A nil module with a nil error means the ancestor was already loaded.
func (st *build) loadAncestor(key modpath.Path, missingErr error) (*Module, error) {
	for anc := key.Parent(); anc.Len() >= 2; anc = anc.Parent() {
		name := anc.String()
		child := key[anc.Len()]
		if target, ok := st.loadedAs[name]; ok && target == name {
			if slices.Contains(st.byKey[name].File.ForwardDecls(), child) {
				return nil, missingErr
			}
			st.loadedAs[key.String()] = name
			return nil, nil
		}
		mod, err := st.loadKey(anc)
		if errors.Is(err, resolver.ErrMissingDependency) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if slices.Contains(mod.File.ForwardDecls(), child) {
			return nil, missingErr
		}
		st.logger.Debug("resolved item path through ancestor", "reference", key.String(), "module", name)
		return mod, nil
	}
	return nil, missingErr
}

// scopedLeaf is a referenced path together with the inline modules that
// enclose the reference.
type scopedLeaf struct {
	path  modpath.Path
	scope []string
}

// references returns the sorted module keys referenced from mod.
func (st *build) references(mod *Module) []modpath.Path {
	var leaves []scopedLeaf
	for _, decl := range mod.File.Uses() {
		for _, leaf := range decl.Leaves() {
			leaves = append(leaves, scopedLeaf{path: leaf, scope: decl.Scope})
		}
	}
	if st.b.ScanPaths {
		for _, ref := range mod.File.PathRefs(modpath.CrateSegment, modpath.SuperSegment, st.b.RootName) {
			leaves = append(leaves, scopedLeaf{path: ref.Path, scope: ref.Scope})
		}
	}

	var keys []modpath.Path
	for _, leaf := range leaves {
		abs, ok := st.absolute(mod, leaf)
		if !ok {
			continue
		}
		if key, ok := abs.ModuleKey(); ok && !key.Equal(mod.Key) {
			keys = append(keys, key)
		}
	}
	if st.b.FollowModDecls {
		for _, name := range mod.File.ForwardDecls() {
			keys = append(keys, mod.Key.Append(name))
		}
	}
	return modpath.Unique(keys)
}

// absolute rewrites a leaf found in mod into a root-based path. `self` and
// `super` are relative to the innermost inline module enclosing the leaf. The
// second result is false for references that do not point into the library
// (std, external crates, local items).
func (st *build) absolute(mod *Module, leaf scopedLeaf) (modpath.Path, bool) {
	root := st.b.RootName
	key := mod.Key.Append(leaf.scope...)
	path := leaf.path
	switch head := path.First(); {
	case head == modpath.CrateSegment:
		return modpath.New(root).Append(path.Tail()...), true
	case head == root:
		return path, true
	case head == modpath.SuperSegment:
		base := key
		rest := path
		for rest.First() == modpath.SuperSegment {
			if base.Len() <= 1 {
				st.logger.Debug("ignoring reference above the library root", "module", key.String(), "reference", path.String())
				return nil, false
			}
			base = base.Parent()
			rest = rest.Tail()
		}
		return base.Append(rest...), true
	case head == modpath.SelfSegment:
		if path.Len() >= 2 && slices.Contains(mod.File.ForwardDeclsIn(leaf.scope), path[1]) {
			return key.Append(path.Tail()...), true
		}
	case slices.Contains(mod.File.ForwardDeclsIn(leaf.scope), head):
		return key.Append(path...), true
	}
	return nil, false
}

func (st *build) result() *Result {
	slices.SortFunc(st.modules, func(a, b *Module) int { return a.Key.Compare(b.Key) })

	graph := dag.New()
	for _, m := range st.modules {
		graph.AddNode(m.Key.String())
	}
	for _, e := range st.edges {
		to, ok := st.loadedAs[e[1]]
		if !ok {
			continue
		}
		graph.AddDependency(e[0], to)
	}

	visited := make([]string, 0, len(st.visited))
	for k := range st.visited {
		visited = append(visited, k)
	}
	slices.Sort(visited)

	return &Result{
		Modules: st.modules,
		Visited: visited,
		Missing: st.missing,
		Graph:   graph,
	}
}
