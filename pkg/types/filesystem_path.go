// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a path given on the command line, such as the library
	// root or the target file. It must be non-empty, not whitespace-only and
	// free of NUL bytes.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// unusable. Role names the argument, e.g. "library root".
	InvalidFilesystemPathError struct {
		Role  string
		Value FilesystemPath
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// IsValid returns whether the FilesystemPath is valid.
func (p FilesystemPath) IsValid() (bool, []error) {
	return p.IsValidAs("path")
}

// IsValidAs is IsValid with the argument's role recorded in the error.
func (p FilesystemPath) IsValidAs(role string) (bool, []error) {
	if strings.TrimSpace(string(p)) == "" || strings.ContainsRune(string(p), 0) {
		return false, []error{&InvalidFilesystemPathError{Role: role, Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	role := e.Role
	if role == "" {
		role = "path"
	}
	return fmt.Sprintf("invalid %s %q: must be a non-empty path", role, e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
