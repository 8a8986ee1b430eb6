// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/adrytools/rsbundle/internal/bundle"
	"github.com/adrytools/rsbundle/internal/watch"
)

type watchFlags struct {
	output   string
	debounce time.Duration
}

// newWatchCommand creates the `rsbundle watch` command.
func newWatchCommand(app *App, flags *rootFlags) *cobra.Command {
	wf := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch <library-root> <target-file> -o <file>",
		Short: "Re-bundle into a file whenever a source changes",
		Long: `Bundle the target into --output, then bundle again every time the target
or a library module changes. Failed rebuilds are reported and leave the last
good output in place. Stop with Ctrl-C.

Configuration is read once at startup.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.ExactArgs(2)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, app, flags, wf, args[0], args[1])
		},
	}
	cmd.Flags().StringVarP(&wf.output, "output", "o", "", "file the bundle is written to (required)")
	cmd.Flags().DurationVar(&wf.debounce, "debounce", 300*time.Millisecond, "quiet period before rebuilding")

	return cmd
}

func runWatch(cmd *cobra.Command, app *App, flags *rootFlags, wf *watchFlags, libRoot, target string) error {
	if wf.output == "" {
		return usageError(errors.New("watch requires --output"))
	}
	if same, err := samePath(wf.output, target); err == nil && same {
		return usageError(fmt.Errorf("--output %s would overwrite the target", wf.output))
	}

	b, err := app.newBundler(cmd, flags, libRoot, target)
	if err != nil {
		return err
	}
	logger := b.Logger()

	rebuild := func(ctx context.Context, changed []string) error {
		for _, path := range changed {
			logger.Debug("changed", "path", path)
		}
		return app.writeBundle(ctx, b, libRoot, target, wf.output)
	}

	if err := rebuild(cmd.Context(), nil); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error("initial bundle failed", "err", err)
	}

	w, err := watch.New(watch.Config{
		Dirs:     []string{libRoot},
		Files:    []string{target},
		Patterns: []string{"**/*." + b.Extension()},
		Exclude:  []string{wf.output},
		Debounce: wf.debounce,
		OnChange: rebuild,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("start watching: %w", err)
	}
	fmt.Fprintf(app.stderr, "%s %s %s\n",
		SubtitleStyle.Render("Watching"), CmdStyle.Render(libRoot), CmdStyle.Render(target))
	return w.Run(cmd.Context())
}

// writeBundle bundles the target and replaces output with the result. On
// failure output is left untouched.
func (a *App) writeBundle(ctx context.Context, b *bundle.Bundler, libRoot, target, output string) error {
	out, err := b.Bundle(ctx, libRoot, target)
	if err != nil {
		return bundleError(err)
	}

	tmp := output + ".tmp"
	if err := afero.WriteFile(a.Fs, tmp, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := a.Fs.Rename(tmp, output); err != nil {
		return fmt.Errorf("replace %s: %w", output, err)
	}
	fmt.Fprintf(a.stderr, "%s %s\n", SuccessStyle.Render("Wrote"), CmdStyle.Render(output))
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
