package content

// ContentOutcome records what happened decrypting one manifest entry.
type ContentOutcome struct {
	ContentID     string
	BytesWritten  int64
	HashTree      bool
	ChunkMismatch int  // hash-tree mode only
	HashMismatch  bool // flat mode, or hash-tree outer H3 check
	Skipped       bool // container file was absent
	Err           error
}

// DecryptReport accumulates per-content outcomes across one decrypt run,
// the "per-run summary of successes and mismatches" spec.md §4.2 asks for.
type DecryptReport struct {
	Outcomes []ContentOutcome
}

// Add appends one content's outcome to the report.
func (r *DecryptReport) Add(o ContentOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Succeeded reports whether at least one content decrypted without a
// fatal error (spec.md §7: "A run is reported successful if at least
// one content was decrypted").
func (r *DecryptReport) Succeeded() bool {
	for _, o := range r.Outcomes {
		if !o.Skipped && o.Err == nil {
			return true
		}
	}
	return false
}

// MismatchCount totals chunk-level and whole-content hash mismatches
// across every content in the report.
func (r *DecryptReport) MismatchCount() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.ChunkMismatch
		if o.HashMismatch {
			n++
		}
	}
	return n
}
