// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrytools/rsbundle/internal/issue"
	"github.com/adrytools/rsbundle/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "rsbundle"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// LocalConfigFileName is the project-local config file looked up in the
	// working directory.
	LocalConfigFileName = "rsbundle.cue"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. RSBUNDLE_BUNDLE_STRICT.
	EnvPrefix = "RSBUNDLE"

	schemaDefinition = "#Config"
)

// ErrConfigExists is returned by WriteDefault when the target file exists.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the rsbundle configuration directory under the
// platform's user config directory (%AppData% on Windows, ~/Library/Application
// Support on macOS, $XDG_CONFIG_HOME or ~/.config elsewhere).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// resolved config file path, which is empty when only defaults and the
// environment apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("library.root_name", defaults.Library.RootName)
	v.SetDefault("library.extension", defaults.Library.Extension)
	v.SetDefault("library.index_file", defaults.Library.IndexFile)
	v.SetDefault("bundle.strict", defaults.Bundle.Strict)
	v.SetDefault("bundle.follow_mod_decls", defaults.Bundle.FollowModDecls)
	v.SetDefault("bundle.scan_paths", defaults.Bundle.ScanPaths)
	v.SetDefault("bundle.wrap_root", defaults.Bundle.WrapRoot)
	v.SetDefault("render.formatter", defaults.Render.Formatter)
	v.SetDefault("render.rustfmt_path", defaults.Render.RustfmtPath)
	v.SetDefault("render.edition", defaults.Render.Edition)
	v.SetDefault("output.separator", defaults.Output.Separator)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		// An explicit --config must exist.
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'rsbundle config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		candidates := []string{filepath.Join(opts.WorkDir, LocalConfigFileName)}
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err == nil {
			candidates = append(candidates, filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt))
		}
		for _, c := range candidates {
			if fileExists(c) {
				resolvedPath = c
				break
			}
		}
		// If no config file is found, defaults apply.
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'rsbundle config show' to see the effective configuration").
				WithGuide(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check RSBUNDLE_* environment variables").
			WithGuide(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against the #Config schema and merges
// its contents into Viper. Fields are optional, so the file need not be
// concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	value, err := cueutil.Validate(configSchema, data, schemaDefinition, path)
	if err != nil {
		return err
	}

	cfgMap, err := cueutil.DecodeMap(value, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(cfgMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// rsbundle configuration file\n\n")

	sb.WriteString("library: {\n")
	if cfg.Library.RootName != "" {
		sb.WriteString(fmt.Sprintf("\troot_name: %q\n", cfg.Library.RootName))
	}
	sb.WriteString(fmt.Sprintf("\textension: %q\n", cfg.Library.Extension))
	sb.WriteString(fmt.Sprintf("\tindex_file: %q\n", cfg.Library.IndexFile))
	sb.WriteString("}\n")

	sb.WriteString("\nbundle: {\n")
	sb.WriteString(fmt.Sprintf("\tstrict: %v\n", cfg.Bundle.Strict))
	sb.WriteString(fmt.Sprintf("\tfollow_mod_decls: %v\n", cfg.Bundle.FollowModDecls))
	sb.WriteString(fmt.Sprintf("\tscan_paths: %v\n", cfg.Bundle.ScanPaths))
	sb.WriteString(fmt.Sprintf("\twrap_root: %v\n", cfg.Bundle.WrapRoot))
	sb.WriteString("}\n")

	sb.WriteString("\nrender: {\n")
	sb.WriteString(fmt.Sprintf("\tformatter: %q\n", cfg.Render.Formatter))
	if cfg.Render.RustfmtPath != "" {
		sb.WriteString(fmt.Sprintf("\trustfmt_path: %q\n", cfg.Render.RustfmtPath))
	}
	sb.WriteString(fmt.Sprintf("\tedition: %q\n", cfg.Render.Edition))
	sb.WriteString("}\n")

	sb.WriteString("\noutput: {\n")
	sb.WriteString(fmt.Sprintf("\tseparator: %q\n", cfg.Output.Separator))
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tverbose: %v\n", cfg.UI.Verbose))
	sb.WriteString("}\n")

	return sb.String()
}
