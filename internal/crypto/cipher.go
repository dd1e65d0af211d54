// Package crypto provides the AES-CBC primitive the decrypt engine builds
// on, plus secure-zeroing helpers for the key material that flows through
// it.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// BlockSize is the AES block size in bytes; every CBC operation in this
// package operates on a whole number of blocks.
const BlockSize = aes.BlockSize

// CBCDecrypt decrypts ciphertext under key/iv using AES-128 in CBC mode.
// This narrow primitive serves title-key unwrapping (one block, IV = title
// ID ‖ zeros), hash-tree prologue decryption (IV = zero), and hash-tree
// payload decryption (IV = H0[h0]); flat-CBC content decryption, whose IV
// is carried across chunks, uses StreamCipher below.
//
// len(ciphertext) must be a non-zero multiple of BlockSize; len(key) and
// len(iv) must both be BlockSize.
func CBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != BlockSize {
		return nil, fmt.Errorf("aes-cbc: key must be %d bytes, got %d", BlockSize, len(key))
	}
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("aes-cbc: iv must be %d bytes, got %d", BlockSize, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("aes-cbc: ciphertext length %d is not a non-zero multiple of %d", len(ciphertext), BlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes-cbc: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext)
	return plaintext, nil
}

// StreamCipher wraps a CBC decrypter that carries its chaining state across
// successive calls, the realization of flat-mode's "the final ciphertext
// block of chunk k becomes the IV of chunk k+1; using a single cipher
// instance across reads is equivalent" (spec.md §4.2, Mode F).
type StreamCipher struct {
	mode cipher.BlockMode
}

// NewStreamCipher builds a StreamCipher for repeated CBC decryption under a
// fixed key, starting from the given IV.
func NewStreamCipher(key, iv []byte) (*StreamCipher, error) {
	if len(key) != BlockSize {
		return nil, fmt.Errorf("aes-cbc: key must be %d bytes, got %d", BlockSize, len(key))
	}
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("aes-cbc: iv must be %d bytes, got %d", BlockSize, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes-cbc: %w", err)
	}
	return &StreamCipher{mode: cipher.NewCBCDecrypter(block, iv)}, nil
}

// DecryptInto decrypts src into dst in place, carrying CBC state forward for
// the next call. len(src) must be a multiple of BlockSize.
func (s *StreamCipher) DecryptInto(dst, src []byte) error {
	if len(src)%BlockSize != 0 {
		return fmt.Errorf("aes-cbc: chunk length %d is not a multiple of %d", len(src), BlockSize)
	}
	s.mode.CryptBlocks(dst, src)
	return nil
}
