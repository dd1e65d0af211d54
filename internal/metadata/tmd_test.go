package metadata

import (
	"encoding/binary"
	"testing"

	"wiiutool/internal/titleid"
)

func buildTMD(id titleid.TitleID, entries []ContentEntry) []byte {
	count := len(entries)
	size := tmdContentTableOffset + count*contentRecordSize
	buf := make([]byte, size)
	copy(buf[tmdTitleIDOffset:tmdTitleIDOffset+8], id.Bytes())
	binary.BigEndian.PutUint16(buf[tmdContentCountOffset:tmdContentCountOffset+2], uint16(count))
	for i, e := range entries {
		rec := buf[tmdContentTableOffset+i*contentRecordSize:]
		binary.BigEndian.PutUint32(rec[0:4], e.ContentID)
		binary.BigEndian.PutUint16(rec[4:6], e.ContentIndex)
		binary.BigEndian.PutUint16(rec[6:8], e.ContentType)
		binary.BigEndian.PutUint64(rec[8:16], e.ContentSize)
		copy(rec[16:36], e.ContentHash[:])
	}
	return buf
}

func TestParseTMDRoundTrip(t *testing.T) {
	id, err := titleid.Parse("0005000010101C00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	entries := []ContentEntry{
		{ContentID: 0x00000000, ContentIndex: 0, ContentType: 0x0000, ContentSize: 0x2000},
		{ContentID: 0x00000001, ContentIndex: 1, ContentType: 0x0002, ContentSize: 0x10000},
	}
	tmd := buildTMD(id, entries)

	gotID, manifest, err := ParseTMD(tmd)
	if err != nil {
		t.Fatalf("ParseTMD: %v", err)
	}
	if gotID != id {
		t.Errorf("title id = %v, want %v", gotID, id)
	}
	if len(manifest.Contents) != len(entries) {
		t.Fatalf("content_count = %d, want %d", len(manifest.Contents), len(entries))
	}
	if manifest.Contents[0].IsHashTree() {
		t.Error("entry 0 should be flat-CBC mode")
	}
	if !manifest.Contents[1].IsHashTree() {
		t.Error("entry 1 should be hash-tree mode")
	}
	if manifest.Contents[0].FileName() != "00000000" {
		t.Errorf("FileName() = %q, want %q", manifest.Contents[0].FileName(), "00000000")
	}
}

func TestParseTMDRejectsShortBlob(t *testing.T) {
	if _, _, err := ParseTMD(make([]byte, 16)); err == nil {
		t.Error("expected error for too-short blob")
	}
}

func TestParseTMDRejectsOverrunningContentTable(t *testing.T) {
	// Header claims 10 content entries but the blob stops right after the
	// header; the content table offset calculation must reject this.
	buf := make([]byte, tmdContentCountOffset+2)
	binary.BigEndian.PutUint16(buf[tmdContentCountOffset:tmdContentCountOffset+2], 10)
	if _, _, err := ParseTMD(buf); err == nil {
		t.Error("expected error for overrunning content table")
	}
}

func TestParseTicket(t *testing.T) {
	ticket := make([]byte, ticketMinLength)
	wantKey := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00}
	copy(ticket[ticketEncryptedTitleKeyOffset:ticketEncryptedTitleKeyOffset+16], wantKey)

	gotKey, err := ParseTicket(ticket)
	if err != nil {
		t.Fatalf("ParseTicket: %v", err)
	}
	for i := range wantKey {
		if gotKey[i] != wantKey[i] {
			t.Errorf("encrypted title key[%d] = 0x%02X, want 0x%02X", i, gotKey[i], wantKey[i])
		}
	}
}

func TestParseTicketAcceptsMinimumLength(t *testing.T) {
	// spec.md §6 declares a ticket as small as ticketMinLength bytes valid;
	// ParseTicket must not read past it.
	ticket := make([]byte, ticketMinLength)
	if _, err := ParseTicket(ticket); err != nil {
		t.Fatalf("ParseTicket: unexpected error for minimum-length ticket: %v", err)
	}
}

func TestParseTicketRejectsShortBlob(t *testing.T) {
	if _, err := ParseTicket(make([]byte, 16)); err == nil {
		t.Error("expected error for too-short ticket")
	}
}

// TestDeriveTitleKeyLength covers the concrete scenario: common_key =
// D7B00402659BA2ABD2CB0DB27FA2B656, title_id = 0005000010101C00; the
// derived key must be exactly 16 bytes regardless of the encrypted input.
func TestDeriveTitleKeyLength(t *testing.T) {
	id, err := titleid.Parse("0005000010101C00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	encryptedTitleKey := make([]byte, 16)
	key, err := DeriveTitleKey(CommonKey, id, encryptedTitleKey)
	if err != nil {
		t.Fatalf("DeriveTitleKey: %v", err)
	}
	if len(key) != 16 {
		t.Fatalf("len(plain_title_key) = %d, want 16", len(key))
	}
}
