// Package fst implements the FST Extractor: parsing the file-system table
// embedded in a title's first decrypted content and walking its directory
// tree to reconstruct files on disk.
package fst

import (
	"encoding/binary"
	"fmt"

	wiiuerrors "wiiutool/internal/errors"
)

const (
	entrySize = 16

	headerExhSizeOffset  = 4
	headerExhCountOffset = 8
	headerFixedSize      = 0x20 // magic(4) + exh_size(4) + exh_count(4) + 0x14 padding
	exheaderRecordSize   = 32

	rootTotalEntriesOffset = 8

	flagSuppressShift = 0x0004

	typeDirectory = 0x01
	typeDeleted   = 0x80
)

// Entry is one 16-byte FST record.
type Entry struct {
	Type         byte
	NameOffset   uint32 // 24-bit, offset into the name table
	RawOffset    uint32
	Size         uint32 // files: byte count; directories: index after subtree
	Flags        uint16
	ContentIndex uint16
}

// IsDirectory reports whether the entry is a directory (type bit 0).
func (e Entry) IsDirectory() bool { return e.Type&typeDirectory != 0 }

// IsDeleted reports whether the entry is marked deleted (type bit 7).
func (e Entry) IsDeleted() bool { return e.Type&typeDeleted != 0 }

// ResolvedOffset applies the flag-gated 5-bit left shift (spec.md §4.3
// step 4): raw_off <<= 5 unless flags & 4 is set.
func (e Entry) ResolvedOffset() uint32 {
	if e.Flags&flagSuppressShift != 0 {
		return e.RawOffset
	}
	return e.RawOffset << 5
}

func parseEntry(b []byte) Entry {
	return Entry{
		Type:         b[0],
		NameOffset:   uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]),
		RawOffset:    binary.BigEndian.Uint32(b[4:8]),
		Size:         binary.BigEndian.Uint32(b[8:12]),
		Flags:        binary.BigEndian.Uint16(b[12:14]),
		ContentIndex: binary.BigEndian.Uint16(b[14:16]),
	}
}

// Table is the fully-decoded FST: every entry (root at index 0) plus the
// raw name table bytes.
type Table struct {
	Entries        []Entry
	Names          []byte
	FileEntriesOff int
}

// Parse decodes an FST from the start of a decrypted container's
// prologue-stripped stream (spec.md §4.3, Header parsing).
func Parse(blob []byte) (*Table, error) {
	if len(blob) < headerExhCountOffset+4 {
		return nil, wiiuerrors.NewMetadataError("fst", fmt.Errorf("%w: blob too short for header", wiiuerrors.ErrMalformedMetadata))
	}
	exhCount := binary.BigEndian.Uint32(blob[headerExhCountOffset : headerExhCountOffset+4])

	fileEntriesOff := headerFixedSize + int(exhCount)*exheaderRecordSize
	if fileEntriesOff+entrySize > len(blob) {
		return nil, wiiuerrors.NewMetadataError("fst", fmt.Errorf("%w: root entry offset overruns blob", wiiuerrors.ErrMalformedMetadata))
	}

	rootOff := fileEntriesOff + rootTotalEntriesOffset
	if rootOff+4 > len(blob) {
		return nil, wiiuerrors.NewMetadataError("fst", fmt.Errorf("%w: root total_entries overruns blob", wiiuerrors.ErrMalformedMetadata))
	}
	totalEntries := int(binary.BigEndian.Uint32(blob[rootOff : rootOff+4]))
	if totalEntries < 1 {
		return nil, wiiuerrors.NewMetadataError("fst", fmt.Errorf("%w: total_entries = %d", wiiuerrors.ErrMalformedMetadata, totalEntries))
	}

	entriesEnd := fileEntriesOff + entrySize*totalEntries
	if entriesEnd > len(blob) {
		return nil, wiiuerrors.NewMetadataError("fst", fmt.Errorf("%w: %d entries overrun blob", wiiuerrors.ErrMalformedMetadata, totalEntries))
	}

	entries := make([]Entry, totalEntries)
	for i := 0; i < totalEntries; i++ {
		entries[i] = parseEntry(blob[fileEntriesOff+i*entrySize:])
	}

	names := blob[entriesEnd:]

	return &Table{Entries: entries, Names: names, FileEntriesOff: fileEntriesOff}, nil
}

// Name reads the null-terminated UTF-8 name at the given name-table
// offset.
func (t *Table) Name(offset uint32) string {
	if int(offset) >= len(t.Names) {
		return ""
	}
	end := int(offset)
	for end < len(t.Names) && t.Names[end] != 0 {
		end++
	}
	return string(t.Names[offset:end])
}
