// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/adrytools/rsbundle/internal/config"
	"github.com/adrytools/rsbundle/internal/format"
	"github.com/adrytools/rsbundle/internal/issue"
	"github.com/adrytools/rsbundle/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the command line with os.Args and exits with its status.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(config.AppName+":"), err)
		os.Exit(int(types.ExitFailure))
	}
	os.Exit(int(Run(context.Background(), app, os.Args[1:])))
}

// Run executes the command tree with args and returns the process exit code.
// Fatal errors are reported on the App's stderr as a single line.
func Run(ctx context.Context, app *App, args []string) types.ExitCode {
	flags := &rootFlags{}
	root := newRootCommand(app, flags)
	root.SetArgs(args)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, shadowedRootHint(app, root, args, err), flags.verbose)
		}),
	)
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// shadowedRootHint extends a usage error of a subcommand whose name is also a
// directory in the working directory: `rsbundle deps main.rs` runs the deps
// subcommand even when ./deps is the library meant to be bundled.
func shadowedRootHint(app *App, root *cobra.Command, args []string, err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != types.ExitUsage {
		return err
	}
	cmd, _, findErr := root.Find(args)
	if findErr != nil || cmd == root {
		return err
	}
	for cmd.Parent() != root {
		cmd = cmd.Parent()
	}
	if isDir, _ := afero.DirExists(app.Fs, cmd.Name()); !isDir {
		return err
	}
	return usageError(fmt.Errorf("%w (to bundle the library in directory %s, write ./%s)", err, cmd.Name(), cmd.Name()))
}

// newRootCommand builds the command tree. flags receives the global flag
// values.
func newRootCommand(app *App, flags *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rsbundle <library-root> <target-file>",
		Short: "Bundle a Rust file with the library modules it uses",
		Long: TitleStyle.Render("rsbundle") + SubtitleStyle.Render(" - single-file vendoring for Rust") + `

rsbundle reads a target Rust file, finds the modules of a local library crate
that it imports (directly or through other modules), and prints the target
followed by exactly those modules nested as inline ` + "`pub mod`" + ` blocks.

` + SubtitleStyle.Render("Examples:") + `
  rsbundle ./mylib/src main.rs > submit.rs     Bundle main.rs
  rsbundle --lenient ./mylib/src main.rs       Skip modules that cannot be found
  rsbundle deps ./mylib/src main.rs            List the modules that would be bundled
  rsbundle watch ./mylib/src main.rs -o out.rs Rebuild out.rs on every change
  rsbundle config show                         Show the effective configuration
  rsbundle explain missing-dependency          Troubleshoot a failure

A library root named like a subcommand (deps, config, explain, watch) is read
as that subcommand; write it as a path instead, e.g. ./deps.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.ExactArgs(2)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, app, flags, args[0], args[1])
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ./"+config.LocalConfigFileName+", then the user config directory)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logs and error suggestions")
	pf.StringVar(&flags.rootName, "root-name", "", "crate name the target imports the library as (default: detected)")
	pf.BoolVar(&flags.lenient, "lenient", false, "skip library modules that cannot be found instead of failing")
	pf.BoolVar(&flags.followModDecls, "follow-mod-decls", false, "also bundle children declared with mod x;")
	pf.BoolVar(&flags.scanPaths, "scan-paths", false, "also follow qualified paths such as lib::math::gcd(a, b)")
	pf.BoolVar(&flags.noWrap, "no-wrap", false, "do not nest the library under pub mod <root-name>")
	pf.StringVar(&flags.formatter, "formatter", format.NameAuto, "formatter for the library: "+strings.Join(format.Names(), ", "))

	rootCmd.AddCommand(newDepsCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newExplainCommand(app))
	rootCmd.AddCommand(newWatchCommand(app, flags))

	return rootCmd
}

// renderError writes the diagnostic for a fatal error. Without verbose it is
// a single `rsbundle: <message>` line. With verbose, actionable errors add
// their suggestions and cause chain.
func renderError(w io.Writer, err error, verbose bool) {
	prefix := ErrorStyle.Render(config.AppName + ":")

	var ae *issue.ActionableError
	if verbose && errors.As(err, &ae) {
		fmt.Fprintln(w, prefix, ae.Format(true))
		return
	}
	fmt.Fprintln(w, prefix, oneLine(err.Error()))
}

// oneLine folds a multi-line message, such as a CUE validation report.
func oneLine(msg string) string {
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "; ")
}
