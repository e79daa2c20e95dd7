// Package detect classifies catalog variants against a pileup and
// produces report rows.
package detect

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/metrics"
	"github.com/inodb/vibe-amr/internal/pileup"
)

// DefaultProgressEvery is how often, in variants, progress is logged.
const DefaultProgressEvery = 250

// Detector classifies variants against an indexed pileup. The index is
// read-only, so one Detector may serve any number of workers.
type Detector struct {
	index         *pileup.Index
	workers       int
	progressEvery int
	logger        *zap.Logger
	metrics       *metrics.Metrics
	processed     atomic.Int64
}

// NewDetector creates a detector over idx.
func NewDetector(idx *pileup.Index) *Detector {
	return &Detector{
		index:         idx,
		progressEvery: DefaultProgressEvery,
		logger:        zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and progress messages.
func (d *Detector) SetLogger(l *zap.Logger) {
	d.logger = l
}

// SetWorkers sets the number of classification workers.
// Zero or less uses runtime.NumCPU().
func (d *Detector) SetWorkers(n int) {
	d.workers = n
}

// SetProgressEvery sets the progress logging interval. Zero or less
// disables progress logging.
func (d *Detector) SetProgressEvery(n int) {
	d.progressEvery = n
}

// SetMetrics sets the counters updated for each classified variant.
func (d *Detector) SetMetrics(m *metrics.Metrics) {
	d.metrics = m
}

// Processed returns the number of variants classified so far.
func (d *Detector) Processed() int64 {
	return d.processed.Load()
}

// Detect classifies a single variant. A classifier error still yields a
// row, with verdict Unknown and no numbers, alongside the error.
func (d *Detector) Detect(v *amr.Variant) (*Row, error) {
	ev := v.FindInPileup(d.index)
	for _, w := range ev.Warnings {
		d.logger.Warn("discarded pileup evidence",
			zap.Int("aro", v.ARO.ID),
			zap.Error(w))
	}
	d.metrics.AddAmbiguousLines(len(ev.Warnings))

	c, err := v.MutType.Classify(v.SNPs, ev)
	if err != nil {
		c = amr.Classification{Verdict: amr.Unknown}
		err = fmt.Errorf("classify ARO %d: %w", v.ARO.ID, err)
	}
	row := Summarize(v, c)
	d.metrics.ObserveVerdict(row.GeneType, row.MutationType, row.Verdict.String())

	if n := d.processed.Add(1); d.progressEvery > 0 && n%int64(d.progressEvery) == 0 {
		d.logger.Info("progress", zap.Int64("variants", n))
	}
	return row, err
}

// DetectAll classifies variants in parallel and writes one row per variant
// in input order. Cancellation is checked between variants; a cancelled
// run writes the rows completed so far and returns ctx.Err().
func (d *Detector) DetectAll(ctx context.Context, variants []*amr.Variant, writer RowWriter) error {
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := d.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan WorkItem, 2*workers)
	go func() {
		defer close(items)
		for seq, v := range variants {
			select {
			case <-ctx.Done():
				return
			case items <- WorkItem{Seq: seq, Variant: v}:
			}
		}
	}()

	results := d.ParallelDetect(items, workers)

	stats, err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			d.logger.Warn("failed to classify variant",
				zap.Int("aro", r.Variant.ARO.ID),
				zap.String("mutations", amr.JoinSNPs(r.Variant.SNPs)),
				zap.Error(r.Err))
		}
		if err := writer.Write(r.Row); err != nil {
			cancel()
			return fmt.Errorf("write row: %w", err)
		}
		return nil
	})
	d.logger.Debug("report rows collected",
		zap.Int("rows", stats.Rows),
		zap.Int("held_back", stats.HeldBack))
	if err != nil {
		return err
	}

	if len(variants) == 0 {
		d.logger.Info("0 variants processed")
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return ctx.Err()
}
