// SPDX-License-Identifier: MPL-2.0

// Package resolver maps module keys such as `lib::ds::fenwick` to the library
// source files that define them.
//
// Lookup is file-first: `<root>/ds/fenwick.rs` wins over
// `<root>/ds/fenwick/mod.rs` when both exist. The filesystem is an injected
// afero.Fs so tests can run against an in-memory tree.
package resolver
