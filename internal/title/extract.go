package title

import (
	"fmt"
	"io"

	"wiiutool/internal/content"
	"wiiutool/internal/fst"
	"wiiutool/internal/log"
	"wiiutool/internal/metadata"
)

// ExtractOptions configures one Extract run.
type ExtractOptions struct {
	OperationContext
	OutputRoot   string
	AllowDeleted bool
	NoExtract    bool // parse and walk only, write nothing (--no-extract)
	Observe      fst.EntryObserver
}

// Extract loads the title's metadata, opens the first content's
// decrypted container as the FST, and walks it to reconstruct the file
// tree under opts.OutputRoot (spec.md §4.3). If opts.Observe is set it
// receives every visited entry, independent of whether files are
// actually written.
func Extract(opts ExtractOptions) (*fst.ExtractReport, error) {
	reporter := opts.reporter()
	reporter.SetStatus("loading metadata")
	reporter.Update()

	ctx, err := metadata.LoadContext(opts.Dir, nil)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	if len(ctx.Manifest.Contents) == 0 {
		return nil, fmt.Errorf("title has no contents")
	}

	fstContent := ctx.Manifest.Contents[0]
	fstFile, err := content.OpenDecrypted(opts.Dir, fstContent)
	if err != nil {
		return nil, fmt.Errorf("open fst container: %w", err)
	}
	defer fstFile.Close()

	fstBytes, err := io.ReadAll(fstFile)
	if err != nil {
		return nil, fmt.Errorf("read fst container: %w", err)
	}

	table, err := fst.Parse(fstBytes)
	if err != nil {
		return nil, fmt.Errorf("parse fst: %w", err)
	}

	partial := checkPartialMode(opts.Dir, ctx.Manifest)
	if partial {
		log.Warn("one or more content containers missing, extraction will be partial")
	}

	if opts.Observe != nil {
		isHashTree := func(idx uint16) bool {
			if int(idx) >= len(ctx.Manifest.Contents) {
				return false
			}
			return ctx.Manifest.Contents[idx].IsHashTree()
		}
		fst.Walk(table, isHashTree, !opts.AllowDeleted, opts.Observe)
	}

	if opts.NoExtract {
		return &fst.ExtractReport{}, nil
	}

	reporter.SetStatus("extracting files")
	reporter.Update()

	report, err := fst.Extract(table, fst.ExtractOptions{
		OutputRoot:     opts.OutputRoot,
		ContainerDir:   opts.Dir,
		Manifest:       ctx.Manifest,
		AllowDeleted:   opts.AllowDeleted,
		CheckCancelled: opts.CheckCancelled,
	})

	reporter.SetProgress(1, fmt.Sprintf("%d files", len(report.Files)))
	reporter.Update()

	return report, err
}

// checkPartialMode reports whether any content after the first (the FST
// container, always required) is missing on disk: spec.md §4.3 Preflight,
// "if any are missing, extraction runs in partial mode".
func checkPartialMode(dir string, manifest metadata.ContentManifest) bool {
	for _, entry := range manifest.Contents[1:] {
		if _, err := content.OpenDecrypted(dir, entry); err != nil {
			return true
		}
	}
	return false
}
