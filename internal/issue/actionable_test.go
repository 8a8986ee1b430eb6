// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errSentinel = errors.New("missing dependency")

// multiCause mirrors the engine's typed errors, which unwrap to a sentinel
// and the underlying cause.
type multiCause struct {
	cause error
}

func (e *multiCause) Error() string   { return "lib::graph: " + e.cause.Error() }
func (e *multiCause) Unwrap() []error { return []error{errSentinel, e.cause} }

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "bundle library"},
			expected: "failed to bundle library",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "read target", Resource: "./main.rs"},
			expected: "failed to read target: ./main.rs",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("bundle.strict: conflicting values")},
			expected: "failed to load configuration: bundle.strict: conflicting values",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "read target",
				Resource:  "./main.rs",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to read target: ./main.rs: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := &multiCause{cause: errors.New("not found")}
	err := NewErrorContext().WithOperation("bundle").WithResource("./lib").Wrap(cause).Build()

	if !errors.Is(err, errSentinel) {
		t.Error("errors.Is should reach the sentinel through the cause")
	}
	var mc *multiCause
	if !errors.As(err, &mc) {
		t.Error("errors.As should find the typed cause")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "simple error non-verbose",
			err:      &ActionableError{Operation: "load configuration"},
			contains: []string{"failed to load configuration"},
		},
		{
			name: "error with suggestions",
			err: &ActionableError{
				Operation:   "read target",
				Resource:    "./main.rs",
				Suggestions: []string{"Check the target path", "Run 'rsbundle explain target-read'"},
			},
			contains: []string{
				"failed to read target: ./main.rs",
				"• Check the target path",
				"• Run 'rsbundle explain target-read'",
			},
		},
		{
			name: "guide adds the explain command last",
			err: &ActionableError{
				Operation:   "bundle",
				Suggestions: []string{"Pass --lenient"},
				Guide:       MissingDependencyId,
			},
			contains: []string{"• Pass --lenient\n  • Run 'rsbundle explain missing-dependency'"},
		},
		{
			name:     "unknown guide is ignored",
			err:      &ActionableError{Operation: "bundle", Guide: Id(99)},
			excludes: []string{"•", "explain"},
		},
		{
			name:     "no error chain in non-verbose",
			err:      &ActionableError{Operation: "parse target", Cause: errors.New("unexpected `}`")},
			contains: []string{"failed to parse target: unexpected `}`"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "wrapped chain verbose",
			err: &ActionableError{
				Operation: "bundle library",
				Cause:     fmt.Errorf("closure: %w", errors.New("file not found")),
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. closure: file not found", "2. file not found"},
		},
		{
			name: "multi-cause chain follows the last error",
			err: &ActionableError{
				Operation: "bundle library",
				Cause:     &multiCause{cause: errors.New("tried lib/graph.rs")},
			},
			verbose:  true,
			contains: []string{"1. lib::graph: tried lib/graph.rs", "2. tried lib/graph.rs"},
			excludes: []string{"missing dependency"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("./lib").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return a nil error")
	}

	cause := errors.New("parse error")
	ae := NewErrorContext().
		WithOperation("load configuration").
		WithResource("./rsbundle.cue").
		WithSuggestion("Check CUE syntax").
		WithSuggestion("Run 'rsbundle config show'").
		WithGuide(ConfigLoadFailedId).
		Wrap(cause).
		Build()
	if ae.Operation != "load configuration" || ae.Resource != "./rsbundle.cue" {
		t.Errorf("context = %+v", ae)
	}
	want := []string{"Check CUE syntax", "Run 'rsbundle config show'", "Run 'rsbundle explain config'"}
	if got := ae.Hints(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Hints() = %v, want %v", got, want)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Hints() should not change Suggestions, got %v", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("Build() should keep the cause")
	}

	var target *ActionableError
	if err := NewErrorContext().WithOperation("x").BuildError(); !errors.As(err, &target) {
		t.Errorf("BuildError() = %T, want *ActionableError", err)
	}
}

func TestErrorContext_Reuse(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("read target").WithResource("main.rs")
	err1 := ctx.Wrap(errors.New("error 1")).Build()
	err2 := ctx.Wrap(errors.New("error 2")).Build()

	if err1.Cause.Error() == err2.Cause.Error() {
		t.Error("reused context should allow different causes")
	}
	if err1.Operation != err2.Operation || err1.Resource != err2.Resource {
		t.Error("reused context should keep operation and resource")
	}

	ctx.WithSuggestion("Check the path")
	if len(err1.Suggestions) != 0 {
		t.Errorf("built errors should not share suggestions with the context, got %v", err1.Suggestions)
	}
}
