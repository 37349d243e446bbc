package pipeline

import (
	"sort"

	"tweetlens/internal/model"
)

// DefaultFreeTierCap is the number of most-recent tweets an unpaid session
// may aggregate.
const DefaultFreeTierCap = 100

// limitFreeTier truncates an over-quota batch to the cap most-recent tweets.
// The sort is stable and descending by creation time; records with invalid
// dates order after every dated record while keeping their relative order,
// so a handful of corrupt rows degrades to plain truncation instead of
// failing the pipeline. Returns the limited slice and whether truncation
// happened.
func limitFreeTier(tweets []model.CanonicalTweet, quota int) ([]model.CanonicalTweet, bool) {
	if quota <= 0 {
		quota = DefaultFreeTierCap
	}
	if len(tweets) <= quota {
		return tweets, false
	}
	sorted := make([]model.CanonicalTweet, len(tweets))
	copy(sorted, tweets)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.CreatedAtValid != b.CreatedAtValid {
			return a.CreatedAtValid
		}
		if !a.CreatedAtValid {
			return false
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return sorted[:quota], true
}
