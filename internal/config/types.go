// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrytools/rsbundle/internal/bundle"
	"github.com/adrytools/rsbundle/internal/format"
	"github.com/adrytools/rsbundle/internal/resolver"
)

const (
	// FormatterAuto uses rustfmt when it is on PATH and the layout pass otherwise.
	FormatterAuto FormatterName = format.NameAuto
	// FormatterRustfmt always pipes the library through rustfmt.
	FormatterRustfmt FormatterName = format.NameRustfmt
	// FormatterLayout re-indents the library without external tools.
	FormatterLayout FormatterName = format.NameLayout
	// FormatterNone emits the generated library unchanged.
	FormatterNone FormatterName = format.NameNone
)

var (
	// ErrInvalidRootName is returned when a root name is not a Rust identifier.
	ErrInvalidRootName = errors.New("invalid root name")
	// ErrInvalidFormatter is returned when a formatter name is not recognized.
	ErrInvalidFormatter = errors.New("invalid formatter")
	// ErrInvalidSeparator is returned when the separator is not a single line comment.
	ErrInvalidSeparator = errors.New("invalid separator")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// RootName is the crate name a target uses to refer to the library.
	// The zero value means "detect it from the library layout".
	RootName string

	// InvalidRootNameError is returned when a RootName is set but is not a
	// plain Rust identifier. It wraps ErrInvalidRootName.
	InvalidRootNameError struct {
		Value RootName
	}

	// FormatterName selects the pass that tidies the generated library.
	FormatterName string

	// InvalidFormatterError is returned when a FormatterName is not recognized.
	InvalidFormatterError struct {
		Value FormatterName
	}

	// InvalidSeparatorError is returned when the output separator would not
	// survive as a Rust line comment.
	InvalidSeparatorError struct {
		Value string
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Library describes how library modules are located on disk.
		Library LibraryConfig `json:"library" mapstructure:"library"`
		// Bundle controls the dependency walk.
		Bundle BundleConfig `json:"bundle" mapstructure:"bundle"`
		// Render controls how the generated library is tidied.
		Render RenderConfig `json:"render" mapstructure:"render"`
		// Output controls the merged file.
		Output OutputConfig `json:"output" mapstructure:"output"`
		// UI configures diagnostics.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// LibraryConfig describes the library source tree.
	LibraryConfig struct {
		RootName  RootName `json:"root_name" mapstructure:"root_name"`
		Extension string   `json:"extension" mapstructure:"extension"`
		IndexFile string   `json:"index_file" mapstructure:"index_file"`
	}

	// BundleConfig controls dependency discovery.
	BundleConfig struct {
		// Strict aborts on the first module that cannot be found.
		Strict bool `json:"strict" mapstructure:"strict"`
		// FollowModDecls also follows `mod x;` declarations in loaded modules.
		FollowModDecls bool `json:"follow_mod_decls" mapstructure:"follow_mod_decls"`
		// ScanPaths also follows qualified paths in expressions and types.
		ScanPaths bool `json:"scan_paths" mapstructure:"scan_paths"`
		// WrapRoot nests the library under `pub mod <root_name>`.
		WrapRoot bool `json:"wrap_root" mapstructure:"wrap_root"`
	}

	// RenderConfig selects the formatter.
	RenderConfig struct {
		Formatter   FormatterName `json:"formatter" mapstructure:"formatter"`
		RustfmtPath string        `json:"rustfmt_path" mapstructure:"rustfmt_path"`
		Edition     string        `json:"edition" mapstructure:"edition"`
	}

	// OutputConfig controls the merged file layout.
	OutputConfig struct {
		Separator string `json:"separator" mapstructure:"separator"`
	}

	// UIConfig configures diagnostics.
	UIConfig struct {
		// Verbose enables debug logs and error suggestions.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the RootName.
func (n RootName) String() string { return string(n) }

// IsValid returns whether the RootName is empty or a Rust identifier.
func (n RootName) IsValid() (bool, []error) {
	if n == "" || identPattern.MatchString(string(n)) {
		return true, nil
	}
	return false, []error{&InvalidRootNameError{Value: n}}
}

// Error implements the error interface for InvalidRootNameError.
func (e *InvalidRootNameError) Error() string {
	return fmt.Sprintf("invalid root name %q (must be a Rust identifier)", e.Value)
}

// Unwrap returns ErrInvalidRootName for errors.Is() compatibility.
func (e *InvalidRootNameError) Unwrap() error { return ErrInvalidRootName }

// String returns the string representation of the FormatterName.
func (f FormatterName) String() string { return string(f) }

// IsValid returns whether the FormatterName is one of the known formatters.
func (f FormatterName) IsValid() (bool, []error) {
	switch f {
	case FormatterAuto, FormatterRustfmt, FormatterLayout, FormatterNone:
		return true, nil
	default:
		return false, []error{&InvalidFormatterError{Value: f}}
	}
}

// Error implements the error interface for InvalidFormatterError.
func (e *InvalidFormatterError) Error() string {
	return fmt.Sprintf("invalid formatter %q (valid: auto, rustfmt, layout, none)", e.Value)
}

// Unwrap returns ErrInvalidFormatter for errors.Is() compatibility.
func (e *InvalidFormatterError) Unwrap() error { return ErrInvalidFormatter }

// IsValid returns whether the separator is a single `//` comment line.
func (c OutputConfig) IsValid() (bool, []error) {
	if strings.HasPrefix(c.Separator, "//") && !strings.ContainsAny(c.Separator, "\r\n") {
		return true, nil
	}
	return false, []error{&InvalidSeparatorError{Value: c.Separator}}
}

// Error implements the error interface for InvalidSeparatorError.
func (e *InvalidSeparatorError) Error() string {
	return fmt.Sprintf("invalid separator %q (must be a single // comment line)", e.Value)
}

// Unwrap returns ErrInvalidSeparator for errors.Is() compatibility.
func (e *InvalidSeparatorError) Unwrap() error { return ErrInvalidSeparator }

// IsValid checks the fields CUE cannot see, such as values set through flags
// or the environment.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Library.RootName.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Render.Formatter.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Extension: resolver.DefaultExtension,
			IndexFile: resolver.DefaultIndexFile,
		},
		Bundle: BundleConfig{
			Strict:   true,
			WrapRoot: true,
		},
		Render: RenderConfig{
			Formatter: FormatterAuto,
			Edition:   format.DefaultEdition,
		},
		Output: OutputConfig{
			Separator: bundle.DefaultSeparator,
		},
	}
}
