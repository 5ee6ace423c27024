// Package batch walks an input store, runs every candidate record through
// the de-identification pipeline and writes the survivors to an output
// store, a bounded chunk at a time.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	dcm "ultrasound-deid/internal/dicom"
	"ultrasound-deid/internal/storage"
)

// Orchestrator fans records out across a worker pool. Output names are
// content-addressed, so re-running a batch rewrites identical objects and
// the operation stays idempotent.
type Orchestrator struct {
	src       storage.Adapter
	dst       storage.Adapter
	pipe      *Pipeline
	log       *slog.Logger
	workers   int
	chunkSize int
}

func NewOrchestrator(src, dst storage.Adapter, pipe *Pipeline, log *slog.Logger, workers, chunkSize int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = 100
	}
	return &Orchestrator{src: src, dst: dst, pipe: pipe, log: log, workers: workers, chunkSize: chunkSize}
}

// Run processes every candidate record under the source store. Individual
// record failures are recorded and do not stop the batch; only context
// cancellation aborts early. The report is returned even on early abort.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	names, err := o.src.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("could not list input store: %w", err)
	}

	var candidates []string
	for _, name := range names {
		if dcm.IsCandidate(name) {
			candidates = append(candidates, name)
		}
	}
	o.log.Info("starting batch", "candidates", len(candidates), "workers", o.workers)

	report := NewReport()
	for start := 0; start < len(candidates); start += o.chunkSize {
		end := start + o.chunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		if err := o.runChunk(ctx, candidates[start:end], report); err != nil {
			return report, err
		}
		o.log.Info("chunk complete", "done", end, "total", len(candidates))
	}

	o.log.Info("batch complete", "summary", report.Summary())
	return report, nil
}

func (o *Orchestrator) runChunk(ctx context.Context, names []string, report *Report) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, name := range names {
		name := name
		g.Go(func() error {
			// A panic in one record must not take down the batch.
			defer func() {
				if r := recover(); r != nil {
					o.log.Error("worker panic", "record", name, "panic", r)
					report.Add(Item{Name: name, Outcome: OutcomeFailed, Err: fmt.Sprintf("panic: %v", r)})
				}
			}()

			if err := ctx.Err(); err != nil {
				return err
			}
			report.Add(o.processOne(ctx, name))
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) processOne(ctx context.Context, name string) Item {
	item := Item{Name: name}

	data, err := o.src.Read(ctx, name)
	if err != nil {
		o.log.Error("could not read record", "record", name, "error", err)
		item.Outcome, item.Err = OutcomeFailed, err.Error()
		return item
	}

	res := o.pipe.Process(name, data)
	item.Outcome = res.Outcome
	if res.Err != nil {
		item.Err = res.Err.Error()
	}

	switch res.Outcome {
	case OutcomeWritten:
		if err := o.dst.Write(ctx, res.OutputName, res.Output); err != nil {
			o.log.Error("could not write record", "record", name, "error", err)
			item.Outcome, item.Err = OutcomeFailed, err.Error()
			return item
		}
		item.OutputName = res.OutputName
		if res.PNG != nil {
			if err := o.dst.Write(ctx, res.PNGName, res.PNG); err != nil {
				o.log.Warn("could not write preview", "record", name, "error", err)
			}
		}
		o.log.Debug("record written", "record", name, "output", res.OutputName)
	case OutcomeFailed:
		o.log.Error("record failed", "record", name, "error", item.Err)
	default:
		o.log.Debug("record skipped", "record", name, "outcome", res.Outcome)
	}
	return item
}
