package batch

import (
	"fmt"
	"sync"
)

// Outcome classifies what happened to one input record.
type Outcome string

const (
	// OutcomeWritten means the record was de-identified and stored.
	OutcomeWritten Outcome = "written"
	// OutcomeSkippedNonQualifying means the record is not an ultrasound
	// image or video this engine handles.
	OutcomeSkippedNonQualifying Outcome = "skipped_non_qualifying"
	// OutcomeSkippedUnsupportedCodec means the pixel data uses a codec the
	// engine cannot decode.
	OutcomeSkippedUnsupportedCodec Outcome = "skipped_unsupported_codec"
	// OutcomeFailed means the record could not be processed.
	OutcomeFailed Outcome = "failed"
)

// Item records the outcome for one input blob.
type Item struct {
	Name       string
	Outcome    Outcome
	OutputName string
	Err        string
}

// Report accumulates per-record outcomes across workers.
type Report struct {
	mu     sync.Mutex
	counts map[Outcome]int
	items  []Item
}

func NewReport() *Report {
	return &Report{counts: make(map[Outcome]int)}
}

func (r *Report) Add(item Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[item.Outcome]++
	r.items = append(r.items, item)
}

// Count returns how many records ended with the given outcome.
func (r *Report) Count(o Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[o]
}

// Items returns a copy of the per-record entries.
func (r *Report) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Item(nil), r.items...)
}

// Summary renders the outcome tallies as a single line.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return fmt.Sprintf("processed %d records: %d written, %d non-qualifying, %d unsupported codec, %d failed",
		total,
		r.counts[OutcomeWritten],
		r.counts[OutcomeSkippedNonQualifying],
		r.counts[OutcomeSkippedUnsupportedCodec],
		r.counts[OutcomeFailed])
}
