// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestRootName_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value RootName
		want  bool
	}{
		{"", true},
		{"adry_library", true},
		{"_private", true},
		{"Lib2", true},
		{"my-lib", false},
		{"2lib", false},
		{"lib::x", false},
		{" lib", false},
	}

	for _, tt := range tests {
		valid, errs := tt.value.IsValid()
		if valid != tt.want {
			t.Errorf("RootName(%q).IsValid() = %v, want %v", tt.value, valid, tt.want)
		}
		if !valid && (len(errs) != 1 || !errors.Is(errs[0], ErrInvalidRootName)) {
			t.Errorf("RootName(%q) errors = %v, want ErrInvalidRootName", tt.value, errs)
		}
	}
}

func TestFormatterName_IsValid(t *testing.T) {
	t.Parallel()

	for _, f := range []FormatterName{FormatterAuto, FormatterRustfmt, FormatterLayout, FormatterNone} {
		if valid, _ := f.IsValid(); !valid {
			t.Errorf("%q should be valid", f)
		}
	}
	valid, errs := FormatterName("Rustfmt").IsValid()
	if valid {
		t.Fatal("formatter names are case-sensitive in config")
	}
	var fe *InvalidFormatterError
	if !errors.As(errs[0], &fe) || fe.Value != "Rustfmt" {
		t.Errorf("errs = %v, want *InvalidFormatterError", errs)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Fatalf("default config invalid: %v", errs)
	}

	cfg := DefaultConfig()
	cfg.Library.RootName = "bad-name"
	cfg.Output.Separator = "=== lib ==="
	valid, errs := cfg.IsValid()
	if valid || len(errs) != 1 {
		t.Fatalf("IsValid() = %v, %v", valid, errs)
	}
	err := errs[0]
	for _, target := range []error{ErrInvalidConfig, ErrInvalidRootName, ErrInvalidSeparator} {
		if !errors.Is(err, target) {
			t.Errorf("error should wrap %v: %v", target, err)
		}
	}
	if errors.Is(err, ErrInvalidFormatter) {
		t.Errorf("formatter is valid: %v", err)
	}
	if got := err.Error(); got != "invalid config: 2 field error(s)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestOutputConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sep  string
		want bool
	}{
		{"// lib", true},
		{"//", true},
		{"/* lib */", false},
		{"// a\n// b", false},
		{"", false},
	}
	for _, tt := range tests {
		if valid, _ := (OutputConfig{Separator: tt.sep}).IsValid(); valid != tt.want {
			t.Errorf("separator %q valid = %v, want %v", tt.sep, valid, tt.want)
		}
	}
}
