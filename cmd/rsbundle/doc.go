// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the rsbundle command line.
//
// The root command bundles a target file with the library modules it uses.
// Subcommands list the dependency closure (deps), manage configuration
// (config), show troubleshooting guides (explain) and rebuild a bundle
// whenever its sources change (watch).
package cmd
