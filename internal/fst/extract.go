package fst

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wiiutool/internal/content"
	wiiuerrors "wiiutool/internal/errors"
	"wiiutool/internal/log"
	"wiiutool/internal/metadata"
	"wiiutool/internal/util"
)

// EntryOutcome records what happened extracting one file entry.
type EntryOutcome struct {
	Path    string
	Skipped bool
	Err     error
}

// ExtractReport accumulates per-entry outcomes across one extraction run.
type ExtractReport struct {
	DirectoriesCreated int
	Files              []EntryOutcome
}

// Succeeded reports whether at least one file was extracted (spec.md §7:
// "A run is reported successful if ... at least one file was extracted").
func (r *ExtractReport) Succeeded() bool {
	for _, f := range r.Files {
		if !f.Skipped && f.Err == nil {
			return true
		}
	}
	return false
}

// ExtractOptions configures one Extract call.
type ExtractOptions struct {
	OutputRoot     string
	ContainerDir   string // directory holding the .app.dec files
	Manifest       metadata.ContentManifest
	AllowDeleted   bool // extract entries with the deleted bit set
	CheckCancelled func() bool
}

// Extract walks table's tree in pre-order and reconstructs it under
// opts.OutputRoot: a first pass creates every directory, a second pass
// copies every regular file's byte range out of its decrypted container.
func Extract(table *Table, opts ExtractOptions) (*ExtractReport, error) {
	report := &ExtractReport{}

	isHashTree := func(contentIndex uint16) bool {
		if int(contentIndex) >= len(opts.Manifest.Contents) {
			return false
		}
		return opts.Manifest.Contents[contentIndex].IsHashTree()
	}

	cleanRoot := filepath.Clean(opts.OutputRoot)

	// Pass 1: directories.
	var dirErr error
	Walk(table, isHashTree, !opts.AllowDeleted, func(n Node) {
		if dirErr != nil || !n.Entry.IsDirectory() || n.GuardStop {
			return
		}
		outPath, err := resolvePath(cleanRoot, n.Path)
		if err != nil {
			log.Warn("path escape, skipping directory", log.String("path", n.Path))
			return
		}
		if err := os.MkdirAll(outPath, 0755); err != nil {
			dirErr = wiiuerrors.NewExtractError("mkdir", outPath, err)
			return
		}
		report.DirectoriesCreated++
	})
	if dirErr != nil {
		return report, dirErr
	}

	// Pass 2: files.
	var cancelled bool
	Walk(table, isHashTree, !opts.AllowDeleted, func(n Node) {
		if cancelled || n.Entry.IsDirectory() {
			return
		}
		if opts.CheckCancelled != nil && opts.CheckCancelled() {
			cancelled = true
			return
		}

		outcome := extractFile(cleanRoot, opts.ContainerDir, opts.Manifest, n)
		report.Files = append(report.Files, outcome)
	})
	if cancelled {
		return report, wiiuerrors.ErrCancelled
	}

	return report, nil
}

// resolvePath joins root and relPath, refusing any result that escapes
// root, the PathEscape defensive check spec.md §4.3 explicitly asks an
// implementer to add.
func resolvePath(root, relPath string) (string, error) {
	joined := filepath.Join(root, relPath)
	cleaned := filepath.Clean(joined)
	if cleaned != root && !strings.HasPrefix(cleaned, root+string(filepath.Separator)) {
		return "", wiiuerrors.ErrPathEscape
	}
	return cleaned, nil
}

func extractFile(root, containerDir string, manifest metadata.ContentManifest, n Node) EntryOutcome {
	outcome := EntryOutcome{Path: n.Path}

	outPath, err := resolvePath(root, n.Path)
	if err != nil {
		outcome.Skipped = true
		outcome.Err = err
		log.Warn("path escape, skipping file", log.String("path", n.Path))
		return outcome
	}

	if int(n.Entry.ContentIndex) >= len(manifest.Contents) {
		outcome.Skipped = true
		outcome.Err = fmt.Errorf("%w: content index %d", wiiuerrors.ErrMissingContent, n.Entry.ContentIndex)
		return outcome
	}
	contentEntry := manifest.Contents[n.Entry.ContentIndex]

	in, err := content.OpenDecrypted(containerDir, contentEntry)
	if err != nil {
		outcome.Skipped = true
		outcome.Err = err
		log.Warn("missing content, skipping file", log.String("path", n.Path), log.String("content_id", contentEntry.FileName()))
		return outcome
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		outcome.Err = wiiuerrors.NewExtractError("mkdir", outPath, err)
		return outcome
	}

	out, err := os.Create(outPath)
	if err != nil {
		outcome.Err = wiiuerrors.NewExtractError("create", outPath, err)
		return outcome
	}
	defer out.Close()

	if err := copyEntry(out, in, int64(n.PhysicalOffset), int64(n.Entry.Size), contentEntry.IsHashTree()); err != nil {
		outcome.Err = wiiuerrors.NewExtractError("copy", outPath, err)
		return outcome
	}

	return outcome
}

// copyEntry copies size bytes from r, starting at physOffset, into w. For
// hash-tree containers, every time the read cursor crosses a
// HashTreeChunkSize boundary the next HashTreePrologueSize bytes are
// skipped (spec.md §4.3 step 8).
func copyEntry(w io.Writer, r io.ReaderAt, physOffset, size int64, hashTree bool) error {
	buf := make([]byte, 0x20*32) // 0x400, matches the source's read granularity
	pos := physOffset
	remaining := size

	for remaining > 0 {
		toRead := int64(len(buf))
		if hashTree {
			// Never read past the next chunk boundary in one call, so the
			// prologue-skip below lands exactly on the boundary.
			untilBoundary := util.HashTreeChunkSize - pos%util.HashTreeChunkSize
			if untilBoundary < toRead {
				toRead = untilBoundary
			}
		}
		if remaining < toRead {
			toRead = remaining
		}

		n, err := r.ReadAt(buf[:toRead], pos)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			pos += int64(n)
			remaining -= int64(n)
		}
		if err != nil && err != io.EOF {
			return err
		}
		if err == io.EOF && int64(n) < toRead {
			return fmt.Errorf("%w: unexpected EOF with %d bytes remaining", wiiuerrors.ErrShortRead, remaining)
		}

		if hashTree && pos%util.HashTreeChunkSize == 0 {
			pos += util.HashTreePrologueSize
		}
	}

	return nil
}
