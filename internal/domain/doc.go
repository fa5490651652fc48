// Package domain contains the core value types for rgbloop.
//
// It has no dependencies on infrastructure concerns (network, file system,
// logging) and holds only the rules of the transmit cycle.
//
// # Types
//
//   - [Sequence]: the fixed, non-empty list of byte values that is sent
//     round-robin
//   - [Cursor]: the position of the cycling value within a [Sequence]
package domain
