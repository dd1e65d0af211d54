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

// FlatResult summarizes the outcome of decrypting one flat-CBC content.
type FlatResult struct {
	BytesWritten int64
	HashMismatch bool
}

// flatIV builds IV = content_index ‖ 0x00*14 (spec.md §4.2, Mode F).
func flatIV(contentIndex uint16) []byte {
	iv := make([]byte, wiiucrypto.BlockSize)
	iv[0] = byte(contentIndex >> 8)
	iv[1] = byte(contentIndex)
	return iv
}

// DecryptFlat decrypts a flat-CBC content, chaining CBC state across
// chunk reads via a single StreamCipher instance, and compares the
// running SHA-1 of the plaintext against contentHash at the end. A
// mismatch is a warning; the decrypted file is still emitted.
func DecryptFlat(w io.Writer, r io.Reader, plainTitleKey []byte, contentIndex uint16, contentSize int64, contentHash [20]byte, checkCancelled func() bool) (FlatResult, error) {
	var result FlatResult

	sc, err := wiiucrypto.NewStreamCipher(plainTitleKey, flatIV(contentIndex))
	if err != nil {
		return result, fmt.Errorf("%w: %v", wiiuerrors.ErrCipherFailure, err)
	}

	hasher := sha1.New()
	buf := util.GetFlatBuffer()
	defer util.PutFlatBuffer(buf)

	remaining := contentSize
	for remaining > 0 {
		if checkCancelled != nil && checkCancelled() {
			return result, wiiuerrors.ErrCancelled
		}

		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		// CBC operates on whole blocks; content sizes are block-aligned
		// per the container format, so a short final read is an error.
		chunk := buf[:n]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return result, fmt.Errorf("%w: %v", wiiuerrors.ErrShortRead, err)
		}

		plain := make([]byte, n)
		if err := sc.DecryptInto(plain, chunk); err != nil {
			return result, fmt.Errorf("%w: %v", wiiuerrors.ErrCipherFailure, err)
		}

		if _, err := w.Write(plain); err != nil {
			return result, fmt.Errorf("write plaintext: %w", err)
		}
		hasher.Write(plain)

		result.BytesWritten += n
		remaining -= n
	}

	sum := hasher.Sum(nil)
	if !bytesEqual(sum, contentHash[:]) {
		result.HashMismatch = true
		log.Warn("flat-CBC content hash mismatch")
	}

	return result, nil
}
