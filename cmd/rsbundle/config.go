// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adrytools/rsbundle/internal/config"
	"github.com/adrytools/rsbundle/internal/issue"
)

// newConfigCommand creates the `rsbundle config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rsbundle configuration",
		Long: `Manage rsbundle configuration.

Configuration is read from --config, else ./` + config.LocalConfigFileName + `, else the user
config file:
  - Linux: ~/.config/rsbundle/config.cue
  - macOS: ~/Library/Application Support/rsbundle/config.cue
  - Windows: %AppData%\rsbundle\config.cue

RSBUNDLE_<SECTION>_<KEY> environment variables (e.g. RSBUNDLE_BUNDLE_STRICT)
override file values, and flags override both.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.NoArgs(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.NoArgs(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.NoArgs(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.NoArgs(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd, app, flags)
		},
	})

	var initUser bool
	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Create a default configuration file",
		Long: `Create a default configuration file. The file defaults to ./` + config.LocalConfigFileName + `,
or the user config file with --user. An existing file is never overwritten.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MaximumNArgs(1)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, args, initUser)
		},
	}
	initCmd.Flags().BoolVar(&initUser, "user", false, "write the user config file instead of ./"+config.LocalConfigFileName)
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

// showConfig prints where the configuration came from and its values.
func showConfig(cmd *cobra.Command, app *App, flags *rootFlags) error {
	loaded, err := app.loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Configuration"))
	fmt.Fprintln(out)
	source := "(defaults)"
	if loaded.Source != "" {
		source = loaded.Source
	}
	fmt.Fprintf(out, "%s %s\n", SubtitleStyle.Render("Source:"), CmdStyle.Render(source))
	fmt.Fprintln(out)

	rootName := cfg.Library.RootName.String()
	if rootName == "" {
		rootName = "(detected from the library root)"
	}
	rustfmtPath := cfg.Render.RustfmtPath
	if rustfmtPath == "" {
		rustfmtPath = "(PATH)"
	}
	rows := []struct {
		label string
		value string
	}{
		{"library.root_name:", rootName},
		{"library.extension:", cfg.Library.Extension},
		{"library.index_file:", cfg.Library.IndexFile},
		{"bundle.strict:", fmt.Sprint(cfg.Bundle.Strict)},
		{"bundle.follow_mod_decls:", fmt.Sprint(cfg.Bundle.FollowModDecls)},
		{"bundle.scan_paths:", fmt.Sprint(cfg.Bundle.ScanPaths)},
		{"bundle.wrap_root:", fmt.Sprint(cfg.Bundle.WrapRoot)},
		{"render.formatter:", cfg.Render.Formatter.String()},
		{"render.rustfmt_path:", rustfmtPath},
		{"render.edition:", cfg.Render.Edition},
		{"output.separator:", cfg.Output.Separator},
		{"ui.verbose:", fmt.Sprint(cfg.UI.Verbose)},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%s %s\n", SubtitleStyle.Render(fmt.Sprintf("%-25s", r.label)), SuccessStyle.Render(r.value))
	}
	return nil
}

// showConfigPath prints the config file in use, or the files searched.
func showConfigPath(cmd *cobra.Command, app *App, flags *rootFlags) error {
	loaded, err := app.loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if loaded.Source != "" {
		fmt.Fprintln(app.stdout, loaded.Source)
		return nil
	}

	userPath := "(unavailable)"
	if dir, err := config.ConfigDir(); err == nil {
		userPath = filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
	}
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("No configuration file found; searched:"))
	fmt.Fprintf(app.stdout, "  %s\n  %s\n", CmdStyle.Render(config.LocalConfigFileName), CmdStyle.Render(userPath))
	return nil
}

// initConfig writes the default configuration to the requested file.
func initConfig(app *App, args []string, user bool) error {
	path := config.LocalConfigFileName
	switch {
	case len(args) == 1:
		path = args[0]
	case user:
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
	}

	if err := config.WriteDefault(path); err != nil {
		ctx := issue.NewErrorContext().WithOperation("create configuration").WithResource(path)
		if errors.Is(err, config.ErrConfigExists) {
			ctx.WithSuggestion("Edit the existing file, or remove it first")
		}
		return ctx.Wrap(err).BuildError()
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), CmdStyle.Render(path))
	return nil
}
