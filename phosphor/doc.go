// Package phosphor owns the phosphor database: the value-typed model of a
// CRT phosphor's emission layers and decay terms, and the classifier that
// partitions a layer's decay terms into the three tiers the accumulation
// buffer layout is built from.
//
// # Reading Guide
//
//   - spectral.go: spectral bands, emission-weight resolution (Gaussian or
//     measured spectrum CSV)
//   - decay.go: DecayTerm, tier classification
//   - phosphor.go: Layer / Phosphor, the aggregate value type
//   - toml.go: the on-disk TOML schema and its loader
package phosphor
