package metadata

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	wiiucrypto "wiiutool/internal/crypto"
	wiiuerrors "wiiutool/internal/errors"
	"wiiutool/internal/log"
	"wiiutool/internal/titleid"
)

// CommonKey is the shared 16-byte symmetric key of the platform.
var CommonKey = mustDecodeHex("D7B00402659BA2ABD2CB0DB27FA2B656")

// commonKeyDigest is the expected SHA-1 over the uppercase ASCII hex form
// of CommonKey; a mismatch is a warning, not fatal.
const commonKeyDigest = "e3fbc19d1306f6243afe852ab35ed9e1e4777d3a"

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// ValidateCommonKey checks CommonKey's self-describing SHA-1 digest. A
// mismatch does not stop a run; it is surfaced as ErrCommonKeyMismatch.
func ValidateCommonKey() error {
	sum := sha1.Sum([]byte(strings.ToUpper(hex.EncodeToString(CommonKey))))
	if hex.EncodeToString(sum[:]) != commonKeyDigest {
		return wiiuerrors.ErrCommonKeyMismatch
	}
	return nil
}

// DecryptionContext is the output of the Metadata Parser: the plain title
// key and the content manifest, both read-only after construction.
type DecryptionContext struct {
	PlainTitleKey []byte
	Manifest      ContentManifest

	keys *wiiucrypto.CryptoContext
}

// Close securely zeros the derived plain title key. Callers should defer
// it immediately after a successful LoadContext.
func (dc *DecryptionContext) Close() {
	if dc.keys == nil {
		dc.keys = &wiiucrypto.CryptoContext{PlainTitleKey: dc.PlainTitleKey}
	}
	dc.keys.Close()
	dc.PlainTitleKey = nil
}

// LoadContext reads title.tmd and title.tik (falling back to cetk) from
// dir, derives the plain title key, and returns the DecryptionContext.
// If rawTitleKey is non-nil it bypasses ticket decryption entirely,
// consumed directly as the plain title key (the CLI's --title-key path).
func LoadContext(dir string, rawTitleKey []byte) (*DecryptionContext, error) {
	if warnErr := ValidateCommonKey(); warnErr != nil {
		log.Warn("common key self-check failed", log.Err(warnErr))
	}

	tmdPath := filepath.Join(dir, "title.tmd")
	tmdBytes, err := os.ReadFile(tmdPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", wiiuerrors.ErrMissingFile, tmdPath, err)
	}

	id, manifest, err := ParseTMD(tmdBytes)
	if err != nil {
		return nil, err
	}

	if rawTitleKey != nil {
		if len(rawTitleKey) != 16 {
			return nil, wiiuerrors.NewMetadataError("title-key", wiiuerrors.ErrInvalidTitleKeyHex)
		}
		log.Info("using supplied raw title key", log.String("title_id", id.String()))
		return &DecryptionContext{PlainTitleKey: rawTitleKey, Manifest: manifest}, nil
	}

	ticketBytes, ticketPath, err := readTicket(dir)
	if err != nil {
		return nil, err
	}

	encryptedTitleKey, err := ParseTicket(ticketBytes)
	if err != nil {
		return nil, err
	}
	log.Debug("parsed ticket", log.String("path", ticketPath))

	plainTitleKey, err := DeriveTitleKey(CommonKey, id, encryptedTitleKey)
	if err != nil {
		return nil, err
	}

	return &DecryptionContext{PlainTitleKey: plainTitleKey, Manifest: manifest}, nil
}

// readTicket tries title.tik first, then cetk, matching the source's
// get_encrypted_titlekey fallback.
func readTicket(dir string) ([]byte, string, error) {
	for _, name := range []string{"title.tik", "cetk"} {
		path := filepath.Join(dir, name)
		b, err := os.ReadFile(path)
		if err == nil {
			return b, path, nil
		}
		if !os.IsNotExist(err) {
			return nil, path, fmt.Errorf("%w: %s: %v", wiiuerrors.ErrMissingFile, path, err)
		}
	}
	return nil, "", fmt.Errorf("%w: no title.tik or cetk in %s", wiiuerrors.ErrMissingFile, dir)
}

// Category is a convenience re-export so callers need not import titleid
// directly just to classify a title already parsed here.
type Category = titleid.Category
