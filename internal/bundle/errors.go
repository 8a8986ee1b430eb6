// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"fmt"

	"github.com/adrytools/rsbundle/pkg/modpath"
)

var (
	// ErrTargetRead is returned when the target file cannot be read.
	ErrTargetRead = errors.New("cannot read target file")
	// ErrTargetParse is returned when the target file is not valid Rust.
	ErrTargetParse = errors.New("target file does not parse")
	// ErrLibraryParse is the sentinel error wrapped by LibraryParseError.
	ErrLibraryParse = errors.New("library file does not parse")
	// ErrNoRootName is returned when a Bundler is configured without a root name.
	ErrNoRootName = errors.New("library root name is not set")
)

type (
	// TargetError reports a failure to read or parse the target file.
	// Kind is ErrTargetRead or ErrTargetParse.
	TargetError struct {
		Path string
		Kind error
		Err  error
	}

	// LibraryParseError reports a library module that does not parse.
	LibraryParseError struct {
		Module modpath.Path
		Path   string
		Err    error
	}
)

// Error implements the error interface.
func (e *TargetError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the kind sentinel and the cause.
func (e *TargetError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Error implements the error interface.
func (e *LibraryParseError) Error() string {
	return fmt.Sprintf("library module %s (%s) does not parse: %v", e.Module, e.Path, e.Err)
}

// Unwrap returns ErrLibraryParse and the cause.
func (e *LibraryParseError) Unwrap() []error { return []error{ErrLibraryParse, e.Err} }
