// SPDX-License-Identifier: MPL-2.0

// Package format turns generated Rust text into canonical layout.
//
// Rustfmt delegates to an external rustfmt binary. Layout is a built-in
// re-indenter used when rustfmt is not installed. None leaves text unchanged.
package format
