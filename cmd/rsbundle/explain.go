// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/adrytools/rsbundle/internal/issue"
)

// newExplainCommand creates the `rsbundle explain` command, which renders the
// troubleshooting guides.
func newExplainCommand(app *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "explain [guide]",
		Short: "Show a troubleshooting guide",
		Long: `Show a troubleshooting guide. Without an argument, list the guides.

Error messages name the guide that applies, e.g. 'rsbundle explain missing-dependency'.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MaximumNArgs(1)(cmd, args))
		},
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			var slugs []string
			for _, is := range issue.Values() {
				slugs = append(slugs, is.Slug())
			}
			return slugs, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, is := range issue.Values() {
					fmt.Fprintf(app.stdout, "%s  %s\n", CmdStyle.Render(fmt.Sprintf("%-20s", is.Slug())), is.Title())
				}
				return nil
			}

			guide := issue.Lookup(args[0])
			if guide == nil {
				return usageError(fmt.Errorf("unknown guide %q (run 'rsbundle explain' for the list)", args[0]))
			}
			out, err := guide.Render(resolveStyle(style, app))
			if err != nil {
				return fmt.Errorf("render guide: %w", err)
			}
			_, err = fmt.Fprint(app.stdout, out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty, or a JSON style file")

	return cmd
}

// resolveStyle keeps escape codes out of pipes and files.
func resolveStyle(style string, app *App) string {
	if style != "auto" {
		return style
	}
	if f, ok := app.stdout.(*os.File); ok && term.IsTerminal(f.Fd()) {
		return "dark"
	}
	return "notty"
}
