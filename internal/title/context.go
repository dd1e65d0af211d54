// Package title orchestrates a full decrypt or extract run over one
// title directory: it wires the metadata parser, content decryptor, and
// FST extractor together behind the two operations the CLI exposes.
package title

// ProgressReporter receives status and fractional-progress updates
// during a run. Implementations must be safe to call from a single
// goroutine; the core itself is single-threaded (spec.md §5).
type ProgressReporter interface {
	SetStatus(text string)
	SetProgress(fraction float32, info string)
	Update()
}

// nullReporter discards all updates; used when the caller supplies none.
type nullReporter struct{}

func (nullReporter) SetStatus(string)            {}
func (nullReporter) SetProgress(float32, string) {}
func (nullReporter) Update()                     {}

// OperationContext bundles the inputs common to both Decrypt and
// Extract: the title directory, an optional reporter, and an optional
// cancellation poll.
type OperationContext struct {
	Dir            string
	Reporter       ProgressReporter
	CheckCancelled func() bool
}

func (c *OperationContext) reporter() ProgressReporter {
	if c.Reporter == nil {
		return nullReporter{}
	}
	return c.Reporter
}
