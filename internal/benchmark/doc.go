// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the bundling hot paths:
//   - lexing and parsing Rust sources
//   - closure discovery over a generated library
//   - rendering with the layout formatter
//   - CUE configuration loading
//
// They double as the workload for PGO profiles:
//
//	go test -run=^$ -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
