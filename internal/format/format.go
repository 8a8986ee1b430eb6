// SPDX-License-Identifier: MPL-2.0

package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// NameAuto selects rustfmt when it is on PATH and Layout otherwise.
	NameAuto = "auto"
	// NameRustfmt selects the rustfmt binary.
	NameRustfmt = "rustfmt"
	// NameLayout selects the built-in Layout formatter.
	NameLayout = "layout"
	// NameNone disables formatting.
	NameNone = "none"

	// DefaultEdition is the Rust edition passed to rustfmt.
	DefaultEdition = "2021"
)

var (
	// ErrFormat is the sentinel error wrapped by every formatter failure.
	ErrFormat = errors.New("format failed")
	// ErrUnknownFormatter is returned by New for an unrecognized name.
	ErrUnknownFormatter = errors.New("unknown formatter")
)

type (
	// Formatter rewrites Rust source into canonical layout.
	Formatter interface {
		Format(ctx context.Context, src string) (string, error)
	}

	// Rustfmt runs an external rustfmt binary on standard input.
	Rustfmt struct {
		// Path defaults to "rustfmt" looked up on PATH.
		Path    string
		Edition string
	}

	// None returns its input unchanged.
	None struct{}

	// RustfmtError carries the diagnostics of a failed rustfmt run.
	RustfmtError struct {
		Stderr string
		Err    error
	}
)

// Error implements the error interface.
func (e *RustfmtError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if msg == "" {
		return fmt.Sprintf("rustfmt: %v", e.Err)
	}
	return fmt.Sprintf("rustfmt: %s", msg)
}

// Unwrap returns ErrFormat and the process error.
func (e *RustfmtError) Unwrap() []error { return []error{ErrFormat, e.Err} }

// Format implements Formatter.
func (r Rustfmt) Format(ctx context.Context, src string) (string, error) {
	path := r.Path
	if path == "" {
		path = NameRustfmt
	}
	edition := r.Edition
	if edition == "" {
		edition = DefaultEdition
	}

	cmd := exec.CommandContext(ctx, path, "--emit", "stdout", "--edition", edition)
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &RustfmtError{Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// Format implements Formatter.
func (None) Format(_ context.Context, src string) (string, error) {
	return src, nil
}

// New returns the formatter registered under name.
func New(name, rustfmtPath, edition string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameAuto, "":
		if path, ok := LookupRustfmt(rustfmtPath); ok {
			return Rustfmt{Path: path, Edition: edition}, nil
		}
		return Layout{}, nil
	case NameRustfmt:
		return Rustfmt{Path: rustfmtPath, Edition: edition}, nil
	case NameLayout:
		return Layout{}, nil
	case NameNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("%w %q (expected %s, %s, %s or %s)", ErrUnknownFormatter, name, NameAuto, NameRustfmt, NameLayout, NameNone)
	}
}

// Names lists the accepted formatter names.
func Names() []string {
	return []string{NameAuto, NameRustfmt, NameLayout, NameNone}
}

// LookupRustfmt resolves the rustfmt binary, preferring configured when set.
func LookupRustfmt(configured string) (string, bool) {
	if configured == "" {
		configured = NameRustfmt
	}
	path, err := exec.LookPath(configured)
	if err != nil {
		return "", false
	}
	return path, true
}
