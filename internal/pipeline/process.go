// Package pipeline turns raw tweet records into deterministic statistical
// aggregates: classification, temporal histograms, per-bucket engagement,
// and flattened media items. Every invocation is a pure, synchronous
// transform of its inputs; no I/O, no shared state, safe to re-run and to
// call concurrently on separate inputs.
package pipeline

import (
	"time"

	"tweetlens/internal/model"
	"tweetlens/internal/normalize"
)

// Config carries the knobs the pipeline needs from the caller; it is
// threaded explicitly so tests can exercise multiple caps without
// process-wide state.
type Config struct {
	// FreeTierCap is the most-recent-tweet quota for unpaid sessions.
	// Zero means DefaultFreeTierCap.
	FreeTierCap int

	// Now overrides the reference time for timeframe windows. Zero means
	// time.Now().
	Now time.Time
}

// InvalidInputError reports a contract violation by the caller: Process
// was handed no record batch at all. Malformed individual records never
// produce it; those degrade per-record instead.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Reason }

// Process runs the full pipeline: normalize, filter to the timeframe,
// tier-limit when unpaid and over quota, then aggregate in a single pass.
//
// An empty non-nil batch is a valid input and yields an empty result; a nil
// batch is the caller-defect case and returns *InvalidInputError.
func Process(records []normalize.RawRecord, tf Timeframe, isPaid bool, cfg Config) (*model.ProcessingResult, error) {
	if records == nil {
		return nil, &InvalidInputError{Reason: "nil record batch"}
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	freeCap := cfg.FreeTierCap
	if freeCap <= 0 {
		freeCap = DefaultFreeTierCap
	}

	var diag model.Diagnostics
	tweets := normalize.Records(records)
	tweets = filterTimeframe(tweets, tf, now, &diag)
	rawCount := len(tweets)

	limited := false
	if !isPaid {
		tweets, limited = limitFreeTier(tweets, freeCap)
	}

	agg := newAggregator()
	agg.result.Diagnostics = diag
	for _, t := range tweets {
		agg.add(t)
	}
	result := agg.finalize()
	result.RawCountInTimeframe = rawCount
	result.ProcessedCount = len(tweets)
	result.IsFreeTierLimited = limited
	return result, nil
}
