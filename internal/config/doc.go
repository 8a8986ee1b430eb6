// SPDX-License-Identifier: MPL-2.0

// Package config loads rsbundle settings.
//
// Defaults live in Viper. A CUE file (`--config`, then ./rsbundle.cue, then
// <user config dir>/rsbundle/config.cue) is validated against the embedded
// #Config schema and merged on top, and RSBUNDLE_* environment variables
// override both. The library root name can also be detected from the crate's
// Cargo.toml.
package config
