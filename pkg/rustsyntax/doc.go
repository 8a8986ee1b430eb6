// SPDX-License-Identifier: MPL-2.0

// Package rustsyntax is a small, dependency-free front end for Rust source
// files. It knows exactly as much Rust as bundling needs:
//
//   - a lexer that understands comments (nested block comments and doc
//     comments), raw and byte strings, char literals versus lifetimes, and
//     delimiter tokens;
//   - an item-level parser that splits a file into top-level items with exact
//     byte spans, recognizes `use`, `mod` and `extern crate` items, and
//     descends into inline `mod name { ... }` bodies;
//   - a use-tree parser and leaf collector for path, group, rename and glob
//     forms.
//
// Function bodies, expressions and types are never parsed; they are skipped
// as balanced token groups. ParseFile therefore accepts some inputs rustc
// would reject, but it rejects everything that would break bundling:
// unbalanced delimiters, unterminated literals, malformed use trees and
// truncated items.
package rustsyntax
