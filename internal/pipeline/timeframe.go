package pipeline

import (
	"time"

	"tweetlens/internal/model"
)

// Timeframe selects a relative window of tweets to aggregate.
type Timeframe string

const (
	TimeframeAll     Timeframe = "all"
	TimeframeMonth   Timeframe = "month"
	Timeframe3Months Timeframe = "3months"
	Timeframe6Months Timeframe = "6months"
	TimeframeYear    Timeframe = "year"
)

var timeframeDays = map[Timeframe]int{
	TimeframeMonth:   30,
	Timeframe3Months: 90,
	Timeframe6Months: 180,
	TimeframeYear:    365,
}

// Days returns the window length. ok is false for "all" and for any
// unrecognized selector: unknown input fails open so it never hides data.
func (tf Timeframe) Days() (int, bool) {
	d, ok := timeframeDays[tf]
	return d, ok
}

// filterTimeframe restricts tweets to the window ending at now. For "all"
// (and anything unrecognized) it is the identity: even records with
// unparseable dates survive. Inside a window, records with missing or
// unparseable dates are dropped and counted in the diagnostics rather than
// failing the batch; archives routinely contain a few malformed legacy rows.
func filterTimeframe(tweets []model.CanonicalTweet, tf Timeframe, now time.Time, diag *model.Diagnostics) []model.CanonicalTweet {
	days, ok := tf.Days()
	if !ok {
		return tweets
	}
	cutoff := now.AddDate(0, 0, -days)
	out := make([]model.CanonicalTweet, 0, len(tweets))
	for _, t := range tweets {
		if !t.CreatedAtValid {
			diag.DroppedBadDateInWindow++
			continue
		}
		if t.CreatedAt.Before(cutoff) {
			diag.DroppedByTimeframe++
			continue
		}
		out = append(out, t)
	}
	return out
}
