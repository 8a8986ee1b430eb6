// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrytools/rsbundle/internal/dag"
	"github.com/adrytools/rsbundle/internal/issue"
)

// newDepsCommand creates the `rsbundle deps` command.
func newDepsCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "deps <library-root> <target-file>",
		Short: "List the library modules a target needs",
		Long: `List the library modules that bundling the target would include, one
"<module>\t<file>" line each, dependencies first.

Modules that import each other cannot be ordered; they are then listed
alphabetically and a warning is logged.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.ExactArgs(2)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, app, flags, args[0], args[1])
		},
	}
}

func runDeps(cmd *cobra.Command, app *App, flags *rootFlags, libRoot, target string) error {
	b, err := app.newBundler(cmd, flags, libRoot, target)
	if err != nil {
		return err
	}

	plan, err := b.Plan(cmd.Context(), libRoot, target)
	if err != nil {
		return bundleError(err)
	}
	if plan.Passthrough() {
		return nil
	}

	files := make(map[string]string, len(plan.Closure.Modules))
	for _, m := range plan.Closure.Modules {
		files[m.Key.String()] = m.Path
	}

	order, err := plan.Closure.Graph.TopologicalSort()
	if err != nil {
		var cycleErr *dag.CycleError
		if !errors.As(err, &cycleErr) {
			return err
		}
		app.newLogger(flags.verbose).Warn("library modules import each other, listing them alphabetically",
			"cycle", cycleErr.Cycle,
			"help", "rsbundle explain "+issue.Get(issue.DependencyCycleId).Slug())
		order = plan.Closure.Graph.Nodes()
	}

	for _, key := range order {
		if _, err := fmt.Fprintf(app.stdout, "%s\t%s\n", key, files[key]); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
