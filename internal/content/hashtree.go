package content

import (
	"crypto/sha1"
	"fmt"
	"io"

	wiiucrypto "wiiutool/internal/crypto"
	wiiuerrors "wiiutool/internal/errors"
	"wiiutool/internal/log"
	"wiiutool/internal/util"
)

// hashTreeCounters tracks the (h0, h1, h2, h3) quadruple that addresses
// which hash in each of the four levels covers the current chunk.
type hashTreeCounters struct {
	h0, h1, h2, h3 int
}

// advance rolls the counters forward by one chunk, carrying at the
// 16-ary boundary per spec.md §4.2 step 7.
func (c *hashTreeCounters) advance() {
	c.h0++
	if c.h0 == util.HashTreeArity {
		c.h0 = 0
		c.h1++
	}
	if c.h1 == util.HashTreeArity {
		c.h1 = 0
		c.h2++
	}
	if c.h2 == util.HashTreeArity {
		c.h2 = 0
		c.h3++
	}
}

// HashTreeResult summarizes the outcome of decrypting one hash-tree
// content: bytes written and how many chunk/outer hash checks failed.
type HashTreeResult struct {
	BytesWritten  int64
	ChunkMismatch int
	OuterMismatch bool
	OuterChecked  bool
}

// DecryptHashTree decrypts a hash-tree-mode container, verifying each
// chunk's payload against H0 and, if h3Blob is non-nil, the per-chunk
// H1..H3 chain and the outer H3-blob hash against contentHash. All mismatches are logged and counted, never
// fatal (spec.md §4.2, "All hash mismatches are logged but non-fatal").
//
// containerSize must be a multiple of util.HashTreeChunkSize.
func DecryptHashTree(w io.Writer, r io.Reader, plainTitleKey []byte, containerSize int64, h3Blob []byte, contentHash [20]byte, checkCancelled func() bool) (HashTreeResult, error) {
	var result HashTreeResult

	if containerSize%util.HashTreeChunkSize != 0 {
		return result, fmt.Errorf("%w: container size %d is not a multiple of 0x%x", wiiuerrors.ErrMalformedMetadata, containerSize, util.HashTreeChunkSize)
	}
	chunkCount := containerSize / util.HashTreeChunkSize

	chunk := util.GetChunkBuffer()
	defer util.PutChunkBuffer(chunk)

	var counters hashTreeCounters

	for i := int64(0); i < chunkCount; i++ {
		if checkCancelled != nil && checkCancelled() {
			return result, wiiuerrors.ErrCancelled
		}

		if _, err := io.ReadFull(r, chunk); err != nil {
			return result, fmt.Errorf("%w: chunk %d: %v", wiiuerrors.ErrShortRead, i, err)
		}

		prologueCipher := chunk[:util.HashTreePrologueSize]
		payloadCipher := chunk[util.HashTreePrologueSize:]

		zeroIV := make([]byte, wiiucrypto.BlockSize)
		prologue, err := wiiucrypto.CBCDecrypt(plainTitleKey, zeroIV, prologueCipher)
		if err != nil {
			return result, fmt.Errorf("%w: chunk %d prologue: %v", wiiuerrors.ErrCipherFailure, i, err)
		}

		h0 := prologue[0 : 16*20]
		h1 := prologue[16*20 : 32*20]
		h2 := prologue[32*20 : 48*20]

		ivPayload := h0[counters.h0*20 : counters.h0*20+16]
		payload, err := wiiucrypto.CBCDecrypt(plainTitleKey, ivPayload, payloadCipher)
		if err != nil {
			return result, fmt.Errorf("%w: chunk %d payload: %v", wiiuerrors.ErrCipherFailure, i, err)
		}

		sum := sha1.Sum(payload)
		if !bytesEqual(sum[:], h0[counters.h0*20:counters.h0*20+20]) {
			result.ChunkMismatch++
			log.Warn("hash-tree chunk H0 mismatch", log.Int64("chunk", i))
		}

		if h3Blob != nil {
			h1Sum := sha1.Sum(h0)
			if !bytesEqual(h1Sum[:], h1[counters.h1*20:counters.h1*20+20]) {
				result.ChunkMismatch++
				log.Warn("hash-tree chunk H1 mismatch", log.Int64("chunk", i))
			}
			h2Sum := sha1.Sum(h1)
			if !bytesEqual(h2Sum[:], h2[counters.h2*20:counters.h2*20+20]) {
				result.ChunkMismatch++
				log.Warn("hash-tree chunk H2 mismatch", log.Int64("chunk", i))
			}
			h3Offset := counters.h3 * 20
			if h3Offset+20 <= len(h3Blob) {
				h3Sum := sha1.Sum(h2)
				if !bytesEqual(h3Sum[:], h3Blob[h3Offset:h3Offset+20]) {
					result.ChunkMismatch++
					log.Warn("hash-tree chunk H3 mismatch", log.Int64("chunk", i))
				}
			}
		}

		if _, err := w.Write(prologue); err != nil {
			return result, fmt.Errorf("write prologue: %w", err)
		}
		if _, err := w.Write(payload); err != nil {
			return result, fmt.Errorf("write payload: %w", err)
		}
		result.BytesWritten += int64(len(prologue) + len(payload))

		counters.advance()
	}

	if h3Blob != nil {
		result.OuterChecked = true
		outerSum := sha1.Sum(h3Blob)
		if !bytesEqual(outerSum[:], contentHash[:]) {
			result.OuterMismatch = true
			log.Warn("hash-tree outer H3 blob mismatch")
		}
	}

	return result, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
