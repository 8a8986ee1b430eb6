// SPDX-License-Identifier: MPL-2.0

// Package modpath models Rust module paths as ordered segment sequences.
//
// A Path such as ["mylib", "graph", "dijkstra"] is rendered as
// "mylib::graph::dijkstra". Paths are values: every operation returns a fresh
// slice and never mutates its receiver, so they can be shared freely between
// the leaf collector, the closure builder and the module tree.
package modpath
