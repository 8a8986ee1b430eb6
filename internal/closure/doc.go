// SPDX-License-Identifier: MPL-2.0

// Package closure computes the set of library modules a target file needs.
//
// Entry points are the target's library imports. Build walks them with a FIFO
// work queue and a visited set, loading each module once and following its
// `crate::`, `super::` and declared `self::` references until no new module
// keys appear. Seeding and per-file discovery are sorted, so the load order and
// the result are deterministic.
package closure
