// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/adrytools/rsbundle/internal/config"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives it and reads configuration and files through it.
	App struct {
		Config ConfigProvider
		Fs     afero.Fs
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// rootFlags holds the global flags. They override configuration only
	// when set on the command line.
	rootFlags struct {
		configPath     string
		verbose        bool
		rootName       string
		lenient        bool
		followModDecls bool
		scanPaths      bool
		noWrap         bool
		formatter      string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	return &App{
		Config: deps.Config,
		Fs:     deps.Fs,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// newLogger returns the diagnostics logger: warnings by default, debug
// output when verbose.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// loadConfig loads the configuration and applies the flags that were set
// on the command line. It also folds ui.verbose back into flags.
func (a *App) loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Loaded, error) {
	loaded, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	cfg := *loaded.Config
	set := cmd.Flags()
	if set.Changed("root-name") {
		cfg.Library.RootName = config.RootName(flags.rootName)
	}
	if set.Changed("lenient") {
		cfg.Bundle.Strict = !flags.lenient
	}
	if set.Changed("follow-mod-decls") {
		cfg.Bundle.FollowModDecls = flags.followModDecls
	}
	if set.Changed("scan-paths") {
		cfg.Bundle.ScanPaths = flags.scanPaths
	}
	if set.Changed("no-wrap") {
		cfg.Bundle.WrapRoot = !flags.noWrap
	}
	if set.Changed("formatter") {
		cfg.Render.Formatter = config.FormatterName(strings.ToLower(flags.formatter))
	}
	if flags.verbose {
		cfg.UI.Verbose = true
	}
	flags.verbose = cfg.UI.Verbose

	// The file and environment were checked on load; only flags remain.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, usageError(errs[0])
	}

	return &config.Loaded{Config: &cfg, Source: loaded.Source}, nil
}
