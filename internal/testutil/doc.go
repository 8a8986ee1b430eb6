// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that build library fixtures and
// touch process state.
//
// Fixture trees can be written to an afero.Fs (WriteTree) or to a real
// directory (WriteDirTree). Process helpers (MustChdir, MustSetenv,
// SetConfigHome) return cleanup functions for t.Cleanup.
package testutil
