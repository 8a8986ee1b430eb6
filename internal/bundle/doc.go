// SPDX-License-Identifier: MPL-2.0

// Package bundle merges a target Rust file with the library modules it uses
// into one self-contained source file.
//
// The pipeline reads and parses the target, collects its library imports,
// computes the module closure (internal/closure), assembles the module tree
// (internal/modtree), rewrites crate-relative paths (internal/rewrite) and
// composes the final text. A target that does not use the library is returned
// byte-for-byte.
package bundle
