// Package metadata implements the Metadata Parser: decoding the title
// metadata (TMD) and ticket blobs into a content manifest and a decrypted
// title key.
package metadata

import (
	"encoding/binary"
	"fmt"

	wiiucrypto "wiiutool/internal/crypto"
	wiiuerrors "wiiutool/internal/errors"
	"wiiutool/internal/titleid"
)

const (
	tmdTitleIDOffset      = 0x18C
	tmdContentCountOffset = 0x1DE
	tmdContentTableOffset = 0xB04
	contentRecordSize     = 48

	contentHashTreeFlag = 0x2
)

// ContentEntry is one (id, index, type, size, hash) triple from the TMD
// content table.
type ContentEntry struct {
	ContentID    uint32 // rendered as 8 lowercase hex chars for filenames
	ContentIndex uint16
	ContentType  uint16
	ContentSize  uint64
	ContentHash  [20]byte // SHA-1
}

// IsHashTree reports whether this content uses hash-tree mode (bit 1 of
// content_type set) rather than flat-CBC mode.
func (c ContentEntry) IsHashTree() bool {
	return c.ContentType&contentHashTreeFlag != 0
}

// FileName renders the content ID as the base filename used on disk,
// e.g. "0000000a" for content_id 0x0000000A.
func (c ContentEntry) FileName() string {
	return fmt.Sprintf("%08x", c.ContentID)
}

// ContentManifest is the ordered, immutable list of content entries parsed
// from a TMD.
type ContentManifest struct {
	TitleID  titleid.TitleID
	Contents []ContentEntry
}

// ParseTMD decodes a TMD blob into a TitleID and ContentManifest. It fails
// with MalformedMetadata if the blob is shorter than the content table
// requires, or if a record count overflows the blob.
func ParseTMD(tmd []byte) (titleid.TitleID, ContentManifest, error) {
	var id titleid.TitleID

	if len(tmd) < tmdContentCountOffset+2 {
		return id, ContentManifest{}, wiiuerrors.NewMetadataError("tmd",
			fmt.Errorf("%w: blob too short for header (%d bytes)", wiiuerrors.ErrMalformedMetadata, len(tmd)))
	}
	if len(tmd) < tmdTitleIDOffset+8 {
		return id, ContentManifest{}, wiiuerrors.NewMetadataError("tmd",
			fmt.Errorf("%w: blob too short for title id", wiiuerrors.ErrMalformedMetadata))
	}
	copy(id[:], tmd[tmdTitleIDOffset:tmdTitleIDOffset+8])

	count := binary.BigEndian.Uint16(tmd[tmdContentCountOffset : tmdContentCountOffset+2])

	tableEnd := tmdContentTableOffset + contentRecordSize*int(count)
	if tableEnd < tmdContentTableOffset || len(tmd) < tableEnd {
		return id, ContentManifest{}, wiiuerrors.NewMetadataError("tmd",
			fmt.Errorf("%w: content table (%d records) overruns blob of %d bytes", wiiuerrors.ErrMalformedMetadata, count, len(tmd)))
	}

	contents := make([]ContentEntry, count)
	for i := 0; i < int(count); i++ {
		rec := tmd[tmdContentTableOffset+i*contentRecordSize:]
		var entry ContentEntry
		entry.ContentID = binary.BigEndian.Uint32(rec[0:4])
		entry.ContentIndex = binary.BigEndian.Uint16(rec[4:6])
		entry.ContentType = binary.BigEndian.Uint16(rec[6:8])
		entry.ContentSize = binary.BigEndian.Uint64(rec[8:16])
		copy(entry.ContentHash[:], rec[16:36])
		contents[i] = entry
	}

	return id, ContentManifest{TitleID: id, Contents: contents}, nil
}

const (
	ticketEncryptedTitleKeyOffset = 0x1BF
	ticketMinLength               = 0x1CF
)

// ParseTicket extracts the 16-byte encrypted title key from a ticket
// (title.tik or cetk) blob. The ticket also echoes the title ID at 0x1DC,
// but the IV for key derivation comes from the TMD's title ID, so the
// echo is never read.
func ParseTicket(ticket []byte) (encryptedTitleKey []byte, err error) {
	if len(ticket) < ticketMinLength {
		return nil, wiiuerrors.NewMetadataError("ticket",
			fmt.Errorf("%w: blob too short (%d bytes, want >= %d)", wiiuerrors.ErrMalformedMetadata, len(ticket), ticketMinLength))
	}
	encryptedTitleKey = make([]byte, 16)
	copy(encryptedTitleKey, ticket[ticketEncryptedTitleKeyOffset:ticketEncryptedTitleKeyOffset+16])
	return encryptedTitleKey, nil
}

// DeriveTitleKey computes plain_title_key = AES-CBC-Decrypt(commonKey, iv =
// titleID ‖ 0x00*8, encryptedTitleKey)[0:16]. The cipher runs over exactly
// one 16-byte block; no padding is stripped.
func DeriveTitleKey(commonKey []byte, id titleid.TitleID, encryptedTitleKey []byte) ([]byte, error) {
	iv := make([]byte, wiiucrypto.BlockSize)
	copy(iv, id.Bytes())

	plain, err := wiiucrypto.CBCDecrypt(commonKey, iv, encryptedTitleKey)
	if err != nil {
		return nil, wiiuerrors.NewMetadataError("key-derive", err)
	}
	return plain[:16], nil
}
