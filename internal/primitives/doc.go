// Package primitives provides the foundational data structures for the state
// machine engine: the definition model, the hierarchy analyzer and the
// transition index.
//
// This package and all `internal/*` packages use ONLY the Go standard library.
// Logging, metrics and serialization adapters live outside internal/ and are
// wired in through the Console and Observer interfaces.
//
// Core invariants:
//   - Definitions are never mutated after construction (normalization copies)
//   - Derived metadata is a pure function of the definition
//   - Extended state and event data are opaque
package primitives
