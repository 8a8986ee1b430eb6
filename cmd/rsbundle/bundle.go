// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/adrytools/rsbundle/internal/bundle"
	"github.com/adrytools/rsbundle/internal/config"
	"github.com/adrytools/rsbundle/internal/format"
	"github.com/adrytools/rsbundle/internal/issue"
	"github.com/adrytools/rsbundle/internal/resolver"
	"github.com/adrytools/rsbundle/pkg/types"
)

// runBundle prints the target merged with the library modules it uses.
func runBundle(cmd *cobra.Command, app *App, flags *rootFlags, libRoot, target string) error {
	b, err := app.newBundler(cmd, flags, libRoot, target)
	if err != nil {
		return err
	}

	out, err := b.Bundle(cmd.Context(), libRoot, target)
	if err != nil {
		return bundleError(err)
	}
	if _, err := io.WriteString(app.stdout, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// newBundler validates the arguments, loads configuration and builds a
// Bundler from it.
func (a *App) newBundler(cmd *cobra.Command, flags *rootFlags, libRoot, target string) (*bundle.Bundler, error) {
	if valid, errs := types.FilesystemPath(libRoot).IsValidAs("library root"); !valid {
		return nil, usageError(errs[0])
	}
	if valid, errs := types.FilesystemPath(target).IsValidAs("target file"); !valid {
		return nil, usageError(errs[0])
	}

	loaded, err := a.loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config
	logger := a.newLogger(cfg.UI.Verbose)
	if loaded.Source != "" {
		logger.Debug("loaded configuration", "file", loaded.Source)
	}

	rootName, err := config.ResolveRootName("", cfg, a.Fs, libRoot)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("determine library name").
			WithResource(libRoot).
			WithSuggestion("Pass --root-name with the crate name the target imports").
			WithGuide(issue.RootNameUnknownId).
			Wrap(err).
			BuildError()
	}
	logger.Debug("library", "root", libRoot, "name", rootName)

	formatter, err := newFormatter(cfg, logger)
	if err != nil {
		return nil, usageError(err)
	}

	return bundle.New(a.Fs, bundle.Options{
		RootName:       rootName.String(),
		Extension:      cfg.Library.Extension,
		IndexFile:      cfg.Library.IndexFile,
		Separator:      cfg.Output.Separator,
		Strict:         cfg.Bundle.Strict,
		FollowModDecls: cfg.Bundle.FollowModDecls,
		ScanPaths:      cfg.Bundle.ScanPaths,
		WrapRoot:       cfg.Bundle.WrapRoot,
		Formatter:      formatter,
	}, logger)
}

func newFormatter(cfg *config.Config, logger *log.Logger) (format.Formatter, error) {
	f, err := format.New(cfg.Render.Formatter.String(), cfg.Render.RustfmtPath, cfg.Render.Edition)
	if err != nil {
		return nil, err
	}
	logger.Debug("formatter", "name", cfg.Render.Formatter, "impl", fmt.Sprintf("%T", f))
	return f, nil
}

// bundleError attaches suggestions and the matching troubleshooting guide to
// a pipeline failure.
func bundleError(err error) error {
	ctx := issue.NewErrorContext().WithOperation("bundle")

	var id issue.Id
	switch {
	case errors.Is(err, bundle.ErrTargetRead):
		id = issue.TargetReadFailedId
		ctx.WithSuggestion("Check the target path; it is the second argument")
	case errors.Is(err, bundle.ErrTargetParse):
		id = issue.TargetParseFailedId
		ctx.WithSuggestion("Fix the syntax error in the target, e.g. with 'cargo check'")
	case errors.Is(err, resolver.ErrMissingDependency):
		id = issue.MissingDependencyId
		ctx.WithSuggestion("Check that the library root is the directory holding the modules").
			WithSuggestion("Pass --lenient to bundle the modules that can be found")
	case errors.Is(err, bundle.ErrLibraryParse):
		id = issue.LibraryParseFailedId
		ctx.WithSuggestion("Fix the syntax error in the library module")
	case errors.Is(err, context.Canceled):
		return err
	}
	return ctx.WithGuide(id).Wrap(err).BuildError()
}
