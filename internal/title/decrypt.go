package title

import (
	"fmt"
	"os"
	"path/filepath"

	"wiiutool/internal/content"
	"wiiutool/internal/log"
	"wiiutool/internal/metadata"
)

// DecryptOptions configures one Decrypt run.
type DecryptOptions struct {
	OperationContext
	RawTitleKey []byte // bypasses ticket decryption when non-nil (--title-key)
	Delete      bool   // remove source .app files after successful decrypt
	OutputDir   string // destination for .app.dec files; defaults to Dir when empty
}

// Decrypt loads the title's metadata, then decrypts every content entry
// into "<content_id>.app.dec" under opts.OutputDir, next to its source
// container by default (spec.md §4.1, §4.2, §6 --output). Contents are
// decrypted one at a time, in manifest order (spec.md §5, "the
// decryption order matches the manifest order").
func Decrypt(opts DecryptOptions) (*content.DecryptReport, error) {
	reporter := opts.reporter()
	reporter.SetStatus("loading metadata")
	reporter.Update()

	ctx, err := metadata.LoadContext(opts.Dir, opts.RawTitleKey)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	defer ctx.Close()

	total := len(ctx.Manifest.Contents)
	log.Info("loaded content manifest", log.Int("content_count", total))

	reporter.SetStatus(fmt.Sprintf("decrypting %d contents", total))
	reporter.SetProgress(0, fmt.Sprintf("0/%d", total))
	reporter.Update()

	report, err := content.DecryptAll(opts.Dir, opts.OutputDir, ctx.PlainTitleKey, ctx.Manifest, opts.CheckCancelled)
	if err != nil {
		return report, err
	}

	if opts.Delete {
		removeSourceContainers(opts.Dir, report)
	}

	reporter.SetProgress(1, fmt.Sprintf("%d/%d", total, total))
	reporter.Update()

	return report, nil
}

func removeSourceContainers(dir string, report *content.DecryptReport) {
	for _, o := range report.Outcomes {
		if o.Skipped || o.Err != nil {
			continue
		}
		path := filepath.Join(dir, o.ContentID+".app")
		if err := os.Remove(path); err != nil {
			log.Warn("failed to delete source container", log.String("path", path), log.Err(err))
		}
	}
}
