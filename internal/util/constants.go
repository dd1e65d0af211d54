// Package util provides common constants and helpers for the decrypt and
// extract engine.
//
// This package contains:
//   - Size constants (KiB, MiB, GiB) and the hash-tree geometry constants
//   - Progress/speed/time formatting helpers (Statify, Timeify, Sizeify)
//   - Pooled chunk buffers for hash-tree and flat-mode decryption
//
// All utilities are stateless and thread-safe.
package util

// Size constants for byte calculations.
const (
	KiB = 1 << 10 // 1024
	MiB = 1 << 20 // 1,048,576
	GiB = 1 << 30 // 1,073,741,824
)

// Hash-tree geometry, per spec.md §4.2.
const (
	HashTreeChunkSize   = 0x10000 // bytes per hash-tree chunk, prologue + payload
	HashTreePrologueSize = 0x400   // encrypted H0‖H1‖H2 block prepended to every chunk
	HashTreePayloadSize = HashTreeChunkSize - HashTreePrologueSize // 0xFC00
	HashTreeArity       = 16 // 16-ary tree: 16 hashes per H0/H1/H2 array
	SHA1Size            = 20
)

// FlatChunkSize is the recommended read granularity for flat-CBC content;
// any multiple of the AES block size (16) works.
const FlatChunkSize = 8 * MiB
