// Package id provides a 64-bit, chronologically ordered revision number.
//
// # Format
//
// A Rev packs [44 bits ms_timestamp][20 bits sequence] into a uint64, so
// numeric comparison preserves generation order and revisions minted within
// the same millisecond remain strictly increasing by sequence.
//
// # Monotonicity
//
// The Generator ensures per-process monotonicity:
//   - If the system clock regresses, it pins to the last seen millisecond and
//     increments the sequence to avoid going backwards.
//   - If the sequence would overflow within a millisecond, it waits for the
//     next millisecond before emitting the next revision.
//
// Usage
//
//	g := id.NewGenerator()
//	rev := g.Next()
//	_ = rev.String()
package id
