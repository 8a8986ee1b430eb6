// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. Issue holds the Markdown troubleshooting guides
// shown by `rsbundle explain`, rendered with glamour.
package issue
