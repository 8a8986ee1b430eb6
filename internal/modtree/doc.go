// SPDX-License-Identifier: MPL-2.0

// Package modtree assembles loaded library modules into a nested module tree
// and renders it as inline `pub mod` blocks.
//
// A module's forwarding declaration (`mod x;`) is removed when x is present in
// the tree as a child, so the merged file never declares a module twice.
// Children always render in sorted name order.
package modtree
