// Package content implements the Content Decryptor: AES-CBC decryption of
// title containers in flat-CBC or hash-tree mode, with four-level hash
// verification for the latter.
package content

import "wiiutool/internal/util"

// PhysicalOffset translates a logical offset L within a hash-tree
// content's payload stream into a physical offset in the decrypted
// (still-prologued) .dec file: every 0xFC00-byte payload chunk is
// preceded by a 0x400-byte prologue. This is the sole coupling between
// the decryptor and the extractor (spec.md §4.2).
func PhysicalOffset(logical int64) int64 {
	chunk := logical / util.HashTreePayloadSize
	intra := logical % util.HashTreePayloadSize
	return intra + chunk*util.HashTreeChunkSize + util.HashTreePrologueSize
}

// LogicalOffset is the inverse of PhysicalOffset, recovering the logical
// payload offset from a physical offset into the decrypted container.
func LogicalOffset(physical int64) int64 {
	chunk := physical / util.HashTreeChunkSize
	intra := physical % util.HashTreeChunkSize
	return chunk*util.HashTreePayloadSize + (intra - util.HashTreePrologueSize)
}
