// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/adrytools/rsbundle/internal/closure"
	"github.com/adrytools/rsbundle/internal/format"
	"github.com/adrytools/rsbundle/internal/modtree"
	"github.com/adrytools/rsbundle/internal/resolver"
	"github.com/adrytools/rsbundle/internal/rewrite"
	"github.com/adrytools/rsbundle/pkg/modpath"
	"github.com/adrytools/rsbundle/pkg/rustsyntax"
)

// DefaultSeparator is the comment line between the target and the library.
const DefaultSeparator = "// ===== bundled library ====="

type (
	// Options configures a Bundler.
	Options struct {
		// RootName is the library's crate name as the target imports it.
		RootName string
		// Extension and IndexFile are passed to the resolver.
		Extension string
		IndexFile string
		// Separator defaults to DefaultSeparator.
		Separator      string
		Strict         bool
		FollowModDecls bool
		ScanPaths      bool
		// WrapRoot nests the library under `pub mod <RootName>`.
		WrapRoot bool
		// Formatter defaults to format.None.
		Formatter format.Formatter
	}

	// Bundler runs the bundling pipeline against a filesystem.
	Bundler struct {
		fs     afero.Fs
		opts   Options
		logger *log.Logger
	}

	// Plan is the analysis of a target before rendering.
	Plan struct {
		TargetPath string
		Target     string
		// Entries are the target's library leaf references. Empty means
		// passthrough.
		Entries []modpath.Path
		// Closure is nil on passthrough.
		Closure *closure.Result
	}
)

// Passthrough reports whether the target does not use the library.
func (p *Plan) Passthrough() bool { return len(p.Entries) == 0 }

// New creates a Bundler. A nil logger discards log output.
func New(fs afero.Fs, opts Options, logger *log.Logger) (*Bundler, error) {
	if strings.TrimSpace(opts.RootName) == "" {
		return nil, ErrNoRootName
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.Formatter == nil {
		opts.Formatter = format.None{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bundler{fs: fs, opts: opts, logger: logger}, nil
}

// Extension is the file extension of library modules, without the dot.
func (b *Bundler) Extension() string {
	if b.opts.Extension == "" {
		return resolver.DefaultExtension
	}
	return b.opts.Extension
}

// Logger is the logger diagnostics are reported to.
func (b *Bundler) Logger() *log.Logger { return b.logger }

// Bundle returns the merged source for targetPath using the library rooted at
// libRoot.
func (b *Bundler) Bundle(ctx context.Context, libRoot, targetPath string) (string, error) {
	plan, err := b.Plan(ctx, libRoot, targetPath)
	if err != nil {
		return "", err
	}
	if plan.Passthrough() {
		b.logger.Debug("target does not use the library, passing it through", "target", targetPath, "root", b.opts.RootName)
		return plan.Target, nil
	}
	return Compose(plan.Target, b.opts.Separator, b.Library(ctx, plan.Closure)), nil
}

// Plan reads and parses the target and computes its library closure.
func (b *Bundler) Plan(ctx context.Context, libRoot, targetPath string) (*Plan, error) {
	data, err := afero.ReadFile(b.fs, targetPath)
	if err != nil {
		return nil, &TargetError{Path: targetPath, Kind: ErrTargetRead, Err: err}
	}
	target := string(data)

	file, err := rustsyntax.ParseFile(target)
	if err != nil {
		return nil, &TargetError{Path: targetPath, Kind: ErrTargetParse, Err: err}
	}

	plan := &Plan{
		TargetPath: targetPath,
		Target:     target,
		Entries:    closure.EntryPoints(file, b.opts.RootName, b.opts.ScanPaths),
	}
	if plan.Passthrough() {
		return plan, nil
	}
	b.logger.Debug("collected library imports", "count", len(plan.Entries))

	builder := &closure.Builder{
		Loader: resolver.New(b.fs, libRoot, resolver.Options{
			RootName:  b.opts.RootName,
			Extension: b.opts.Extension,
			IndexFile: b.opts.IndexFile,
		}),
		RootName:       b.opts.RootName,
		Strict:         b.opts.Strict,
		FollowModDecls: b.opts.FollowModDecls,
		ScanPaths:      b.opts.ScanPaths,
		Logger:         b.logger,
	}
	res, err := builder.Build(ctx, plan.Entries)
	if err != nil {
		var parseErr *closure.ModuleParseError
		if errors.As(err, &parseErr) {
			return nil, &LibraryParseError{Module: parseErr.Key, Path: parseErr.Path, Err: parseErr.Err}
		}
		return nil, err
	}
	b.logger.Debug("computed closure", "modules", len(res.Modules), "missing", len(res.Missing))
	plan.Closure = res
	return plan, nil
}

// Library renders the modules of res as one block of Rust source.
func (b *Bundler) Library(ctx context.Context, res *closure.Result) string {
	tree := modtree.New()
	for _, m := range res.Modules {
		tree.Insert(m.Key.Tail(), m.Text, m.File)
	}

	r := &modtree.Renderer{Formatter: b.opts.Formatter, Logger: b.logger}
	var nest []string
	if b.opts.WrapRoot {
		r.TopModule = b.opts.RootName
		nest = []string{b.opts.RootName}
	}

	generated := r.Generate(tree)
	rewritten, err := rewrite.SelfReferences(generated, b.opts.RootName, nest)
	if err != nil {
		b.logger.Warn("could not rewrite crate paths, emitting library as generated", "error", err)
		rewritten = generated
	}
	return r.Finish(ctx, rewritten)
}

// Compose joins the target and library text around the separator line. The
// result ends with a newline.
func Compose(target, separator, library string) string {
	var sb strings.Builder
	sb.Grow(len(target) + len(separator) + len(library) + 5)
	sb.WriteString(target)
	sb.WriteString("\n\n")
	sb.WriteString(separator)
	sb.WriteString("\n\n")
	sb.WriteString(library)
	if !strings.HasSuffix(library, "\n") {
		sb.WriteByte('\n')
	}
	return sb.String()
}
