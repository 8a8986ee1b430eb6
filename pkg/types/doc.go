// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the command line and the
// engine packages. It imports only the standard library.
package types
