package content

import (
	"bytes"
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/require"

	wiiucrypto "wiiutool/internal/crypto"
	"wiiutool/internal/util"
)

// TestFlatIV covers the concrete scenario: content_index = 0x0001 -> iv =
// 00 01 00 00 00 00 00 00 00 00 00 00 00 00 00 00.
func TestFlatIV(t *testing.T) {
	iv := flatIV(0x0001)
	want := []byte{0x00, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	require.Equal(t, want, iv)
}

func TestDecryptFlatRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i * 7)
	}
	contentIndex := uint16(3)
	iv := flatIV(contentIndex)

	plaintext := make([]byte, wiiucrypto.BlockSize*10)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, len(plaintext))
	gocipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	contentHash := sha1.Sum(plaintext)

	var out bytes.Buffer
	result, err := DecryptFlat(&out, bytes.NewReader(ciphertext), key, contentIndex, int64(len(ciphertext)), contentHash, nil)
	require.NoError(t, err)
	require.False(t, result.HashMismatch)
	require.Equal(t, plaintext, out.Bytes())
}

func TestDecryptFlatWarnsOnMismatchButEmitsFile(t *testing.T) {
	key := make([]byte, 16)
	contentIndex := uint16(0)
	iv := flatIV(contentIndex)

	plaintext := make([]byte, wiiucrypto.BlockSize*2)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, len(plaintext))
	gocipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	wrongHash := [20]byte{0xFF}

	var out bytes.Buffer
	result, err := DecryptFlat(&out, bytes.NewReader(ciphertext), key, contentIndex, int64(len(ciphertext)), wrongHash, nil)
	require.NoError(t, err)
	require.True(t, result.HashMismatch)
	require.Equal(t, plaintext, out.Bytes(), "mismatch must still emit the decrypted file")
}

func TestDecryptFlatChainsAcrossMultipleBuffers(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i + 1)
	}
	contentIndex := uint16(0)
	iv := flatIV(contentIndex)

	// One full pooled flat buffer plus three more blocks, so DecryptFlat
	// reads twice and the StreamCipher must carry CBC state across reads.
	plaintext := make([]byte, util.FlatChunkSize+wiiucrypto.BlockSize*3)
	for i := range plaintext {
		plaintext[i] = byte(255 - i)
	}
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, len(plaintext))
	gocipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	contentHash := sha1.Sum(plaintext)

	var out bytes.Buffer
	result, err := DecryptFlat(&out, bytes.NewReader(ciphertext), key, contentIndex, int64(len(ciphertext)), contentHash, nil)
	require.NoError(t, err)
	require.False(t, result.HashMismatch)
	require.Equal(t, plaintext, out.Bytes())
}
