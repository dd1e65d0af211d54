// Package cli wires the decrypt/extract engine to a Cobra command surface.
package cli

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// barTotal is an arbitrary fixed denominator; Reporter reports progress as
// a fraction in [0,1], so the bar's "current" is always fraction*barTotal.
const barTotal = 10000

// Reporter implements title.ProgressReporter for terminal output, backed
// by mpb's single-line bar renderer.
type Reporter struct {
	mu        sync.Mutex
	progress  *mpb.Progress
	bar       *mpb.Bar
	status    string
	info      string
	fraction  float32
	quiet     bool
	cancelled atomic.Bool
}

// NewReporter creates a CLI progress reporter. If quiet is true, no bar is
// drawn and only errors/summaries are printed.
func NewReporter(quiet bool) *Reporter {
	r := &Reporter{quiet: quiet}
	if quiet {
		return r
	}

	r.progress = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	r.bar = r.progress.AddBar(barTotal,
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				r.mu.Lock()
				defer r.mu.Unlock()
				return r.status
			}, decor.WC{W: 20}),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				r.mu.Lock()
				defer r.mu.Unlock()
				return r.info
			}),
		),
	)
	return r
}

// SetStatus updates the status text shown to the left of the bar.
func (r *Reporter) SetStatus(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = text
}

// SetProgress updates the bar's fill fraction and the info text shown to
// its right (e.g. "3/12 contents", transfer speed).
func (r *Reporter) SetProgress(fraction float32, info string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fraction = fraction
	r.info = info
}

// Update triggers a redraw.
func (r *Reporter) Update() {
	if r.quiet {
		return
	}
	r.mu.Lock()
	frac := r.fraction
	r.mu.Unlock()

	r.bar.SetCurrent(int64(frac * float32(barTotal)))
}

// Wait blocks until the progress pool has flushed its final render. Call
// once after the last Update, before printing any summary line.
func (r *Reporter) Wait() {
	if r.quiet || r.progress == nil {
		return
	}
	if !r.bar.Completed() {
		r.bar.SetCurrent(barTotal)
	}
	r.progress.Wait()
}

// IsCancelled reports whether Cancel was called.
func (r *Reporter) IsCancelled() bool {
	return r.cancelled.Load()
}

// Cancel marks the operation as cancelled; checked by CheckCancelled
// callbacks threaded into the decrypt/extract core.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// PrintError prints an error message below the bar.
func (r *Reporter) PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a summary line below the bar.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
