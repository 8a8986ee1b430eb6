// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// formats CUE errors with field paths.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	value, err := cueutil.Validate(schema, data, "#Config", "rsbundle.cue")
//	if err != nil {
//	    return err // "rsbundle.cue: bundle.strict: conflicting values ..."
//	}
//	settings, err := cueutil.DecodeMap(value, "rsbundle.cue")
package cueutil
