// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/adrytools/rsbundle/pkg/modpath"
)

const (
	// DefaultExtension is the source file extension, without the dot.
	DefaultExtension = "rs"
	// DefaultIndexFile is the directory index file name, without extension.
	DefaultIndexFile = "mod"
)

var (
	// ErrMissingDependency is the sentinel error wrapped by MissingDependencyError.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrInvalidKey is returned for keys outside the library root.
	ErrInvalidKey = errors.New("invalid module key")
)

type (
	// Options configures a Resolver.
	Options struct {
		// RootName is the first segment every key must carry.
		RootName string
		// Extension defaults to DefaultExtension.
		Extension string
		// IndexFile defaults to DefaultIndexFile.
		IndexFile string
	}

	// Resolver locates module files under a library root directory.
	Resolver struct {
		fs   afero.Fs
		root string
		opts Options
	}

	// Module is a resolved and loaded module file.
	Module struct {
		Key  modpath.Path
		Path string
		Text string
	}

	// MissingDependencyError is returned when no file exists for a key.
	// Tried lists the candidate paths in lookup order.
	MissingDependencyError struct {
		Key   modpath.Path
		Tried []string
	}

	// InvalidKeyError is returned when a key does not name a library module.
	InvalidKeyError struct {
		Key    modpath.Path
		Reason string
	}
)

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency %s (tried %s)", e.Key, strings.Join(e.Tried, ", "))
}

// Unwrap returns ErrMissingDependency for errors.Is() compatibility.
func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// Error implements the error interface.
func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid module key %q: %s", e.Key.String(), e.Reason)
}

// Unwrap returns ErrInvalidKey for errors.Is() compatibility.
func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }

// New creates a Resolver for the library rooted at root.
func New(fs afero.Fs, root string, opts Options) *Resolver {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	opts.Extension = strings.TrimPrefix(opts.Extension, ".")
	if opts.IndexFile == "" {
		opts.IndexFile = DefaultIndexFile
	}
	return &Resolver{fs: fs, root: filepath.Clean(root), opts: opts}
}

// Root returns the library root directory.
func (r *Resolver) Root() string { return r.root }

// RootName returns the configured root segment.
func (r *Resolver) RootName() string { return r.opts.RootName }

// Candidates returns the file paths tried for key, in lookup order.
func (r *Resolver) Candidates(key modpath.Path) ([]string, error) {
	if err := r.checkKey(key); err != nil {
		return nil, err
	}
	rel := filepath.Join(key.Tail()...)
	base := filepath.Join(r.root, rel)
	return []string{
		base + "." + r.opts.Extension,
		filepath.Join(base, r.opts.IndexFile+"."+r.opts.Extension),
	}, nil
}

// Resolve returns the file that defines key.
func (r *Resolver) Resolve(key modpath.Path) (string, error) {
	candidates, err := r.Candidates(key)
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		info, statErr := r.fs.Stat(c)
		if statErr == nil && info.Mode().IsRegular() {
			return c, nil
		}
	}
	return "", &MissingDependencyError{Key: key.Clone(), Tried: candidates}
}

// Load resolves key and reads its file.
func (r *Resolver) Load(key modpath.Path) (*Module, error) {
	path, err := r.Resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read module %s: %w", key, err)
	}
	return &Module{Key: key.Clone(), Path: path, Text: string(data)}, nil
}

func (r *Resolver) checkKey(key modpath.Path) error {
	switch {
	case key.Len() < 2:
		return &InvalidKeyError{Key: key, Reason: "expected at least one segment after the root"}
	case key.First() != r.opts.RootName:
		return &InvalidKeyError{Key: key, Reason: fmt.Sprintf("root segment is not %q", r.opts.RootName)}
	}
	for _, seg := range key.Tail() {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
			return &InvalidKeyError{Key: key, Reason: fmt.Sprintf("segment %q is not a module name", seg)}
		}
	}
	return nil
}
