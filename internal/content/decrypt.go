package content

import (
	"fmt"
	"os"
	"path/filepath"

	wiiuerrors "wiiutool/internal/errors"
	"wiiutool/internal/log"
	"wiiutool/internal/metadata"
)

// DecryptAll decrypts every content in manifest found under dir, writing
// "<content_id>.app.dec" into outDir (defaulting to dir when outDir is
// empty, i.e. next to each "<content_id>.app"). Entries whose container
// file is absent are skipped with a warning, not fatal (spec.md §4.2).
// checkCancelled, if non-nil, is polled between chunks; on cancellation
// the partial .dec file is removed.
func DecryptAll(dir, outDir string, plainTitleKey []byte, manifest metadata.ContentManifest, checkCancelled func() bool) (*DecryptReport, error) {
	if outDir == "" {
		outDir = dir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, wiiuerrors.NewContentError("", "create-output-dir", err)
	}

	report := &DecryptReport{}

	for _, entry := range manifest.Contents {
		outcome, err := decryptOne(dir, outDir, plainTitleKey, entry, checkCancelled)
		report.Add(outcome)
		if err != nil && wiiuerrors.IsCancelled(err) {
			return report, err
		}
	}

	return report, nil
}

func decryptOne(dir, outDir string, plainTitleKey []byte, entry metadata.ContentEntry, checkCancelled func() bool) (ContentOutcome, error) {
	id := entry.FileName()
	outcome := ContentOutcome{ContentID: id, HashTree: entry.IsHashTree()}

	containerPath := filepath.Join(dir, id+".app")
	in, err := os.Open(containerPath)
	if err != nil {
		if os.IsNotExist(err) {
			outcome.Skipped = true
			log.Warn("content container missing, skipping", log.String("content_id", id))
			return outcome, nil
		}
		outcome.Err = wiiuerrors.NewContentError(id, "open", err)
		return outcome, outcome.Err
	}
	defer in.Close()

	outPath := filepath.Join(outDir, id+".app.dec")
	out, err := os.Create(outPath)
	if err != nil {
		outcome.Err = wiiuerrors.NewContentError(id, "create-output", err)
		return outcome, outcome.Err
	}

	cleanupPartial := func() {
		out.Close()
		os.Remove(outPath)
	}

	if entry.IsHashTree() {
		h3Path := filepath.Join(dir, id+".h3")
		h3Blob, h3Err := os.ReadFile(h3Path)
		if h3Err != nil {
			h3Blob = nil
		}

		result, err := DecryptHashTree(out, in, plainTitleKey, int64(entry.ContentSize), h3Blob, entry.ContentHash, checkCancelled)
		outcome.BytesWritten = result.BytesWritten
		outcome.ChunkMismatch = result.ChunkMismatch
		outcome.HashMismatch = result.OuterMismatch
		if err != nil {
			if wiiuerrors.IsCancelled(err) {
				cleanupPartial()
				return outcome, err
			}
			out.Close()
			outcome.Err = wiiuerrors.NewContentError(id, "decrypt", err)
			return outcome, outcome.Err
		}
	} else {
		result, err := DecryptFlat(out, in, plainTitleKey, entry.ContentIndex, int64(entry.ContentSize), entry.ContentHash, checkCancelled)
		outcome.BytesWritten = result.BytesWritten
		outcome.HashMismatch = result.HashMismatch
		if err != nil {
			if wiiuerrors.IsCancelled(err) {
				cleanupPartial()
				return outcome, err
			}
			out.Close()
			outcome.Err = wiiuerrors.NewContentError(id, "decrypt", err)
			return outcome, outcome.Err
		}
	}

	if err := out.Close(); err != nil {
		outcome.Err = wiiuerrors.NewContentError(id, "close-output", err)
		return outcome, outcome.Err
	}

	log.Info("decrypted content",
		log.String("content_id", id),
		log.Int64("bytes", outcome.BytesWritten),
		log.Bool("hash_tree", outcome.HashTree))

	return outcome, nil
}

// OpenDecrypted opens the .dec file for a content entry, for readers
// (e.g. the FST extractor) that need random access into it.
func OpenDecrypted(dir string, entry metadata.ContentEntry) (*os.File, error) {
	path := filepath.Join(dir, entry.FileName()+".app.dec")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", wiiuerrors.ErrMissingContent, path)
		}
		return nil, err
	}
	return f, nil
}
