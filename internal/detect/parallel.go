package detect

import (
	"runtime"
	"sync"

	"github.com/inodb/vibe-amr/internal/amr"
)

// WorkItem holds a variant waiting for classification.
type WorkItem struct {
	Seq     int
	Variant *amr.Variant
}

// WorkResult holds the report row for a single variant.
type WorkResult struct {
	Seq     int
	Variant *amr.Variant
	Row     *Row
	Err     error
}

// ParallelDetect classifies work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (d *Detector) ParallelDetect(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				row, err := d.Detect(item.Variant)
				row.Seq = item.Seq
				results <- WorkResult{
					Seq:     item.Seq,
					Variant: item.Variant,
					Row:     row,
					Err:     err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// CollectStats describes one OrderedCollect pass.
type CollectStats struct {
	Rows     int // results handed to fn
	HeldBack int // most results waiting at once for an earlier variant
}

// OrderedCollect hands results to fn in variant order. A result that
// arrives before its predecessors waits until they have been handed on.
// When fn fails the remaining results are discarded so workers can exit.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) (CollectStats, error) {
	var stats CollectStats
	waiting := make(map[int]WorkResult)

	for r := range results {
		waiting[r.Seq] = r
		stats.HeldBack = max(stats.HeldBack, len(waiting)-1)

		for {
			next, ok := waiting[stats.Rows]
			if !ok {
				break
			}
			delete(waiting, stats.Rows)
			stats.Rows++
			if err := fn(next); err != nil {
				for range results {
				}
				return stats, err
			}
		}
	}
	return stats, nil
}
