package model

import (
	"sort"
	"time"
)

// Media is one attachment on a tweet.
type Media struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// CanonicalTweet is the normalized representation of one post, independent
// of whether it came from an archive export or a scrape result. It is
// immutable once produced by the normalizer.
type CanonicalTweet struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	FullText      string  `json:"fullText"`
	FavoriteCount int     `json:"favoriteCount"`
	RetweetCount  int     `json:"retweetCount"`
	IsRetweet     bool    `json:"isRetweet"`
	InReplyToID   string  `json:"inReplyToId,omitempty"`
	Media         []Media `json:"media,omitempty"`

	// CreatedAt is meaningful only when CreatedAtValid is set; records
	// whose raw timestamp failed to parse keep the raw string instead.
	CreatedAt      time.Time `json:"createdAt"`
	CreatedAtValid bool      `json:"createdAtValid"`
	RawCreatedAt   string    `json:"rawCreatedAt,omitempty"`
}

// Engagement returns favorites plus retweets. Counts are coerced to
// non-negative integers at the normalization boundary, so this never goes
// negative.
func (t CanonicalTweet) Engagement() int {
	return t.FavoriteCount + t.RetweetCount
}

// IsReply reports whether the tweet replies to another status.
func (t CanonicalTweet) IsReply() bool { return t.InReplyToID != "" }

// DisplayText prefers the untruncated full-text field when present.
func (t CanonicalTweet) DisplayText() string {
	if t.FullText != "" {
		return t.FullText
	}
	return t.Text
}

// EngagementCounts carries tweet-level engagement onto derived media items.
type EngagementCounts struct {
	Likes    int `json:"likes"`
	Retweets int `json:"retweets"`
}

// MediaItem is one media attachment flattened out of its owning tweet.
// A tweet with three images yields three MediaItems, each carrying the same
// tweet-level engagement.
type MediaItem struct {
	Type       string           `json:"type"`
	URL        string           `json:"url"`
	TweetID    string           `json:"tweetId"`
	Engagement EngagementCounts `json:"engagement"`
	Text       string           `json:"text"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// TemporalData bundles the activity and engagement histograms produced by a
// single aggregation pass. Hour buckets are 0-23, day buckets follow
// time.Weekday (0 = Sunday), monthly maps are keyed "YYYY-MM".
type TemporalData struct {
	HourlyActivity  [24]int        `json:"hourlyActivity"`
	DailyActivity   [7]int         `json:"dailyActivity"`
	MonthlyActivity map[string]int `json:"monthlyActivity"`

	HourlyEngagement       [24]int        `json:"hourlyEngagement"`
	DailyEngagement        [7]int         `json:"dailyEngagement"`
	MonthlyEngagementTotal map[string]int `json:"monthlyEngagementTotal"`

	// Averages are engagement total over tweet count per bucket; a bucket
	// with zero tweets averages 0, never NaN.
	AvgHourlyEngagement  [24]float64        `json:"avgHourlyEngagement"`
	AvgDailyEngagement   [7]float64         `json:"avgDailyEngagement"`
	AvgMonthlyEngagement map[string]float64 `json:"avgMonthlyEngagement"`

	HourlyTweetCount  [24]int        `json:"hourlyTweetCount"`
	DailyTweetCount   [7]int         `json:"dailyTweetCount"`
	MonthlyTweetCount map[string]int `json:"monthlyTweetCount"`
}

// SortedMonths returns the monthly keys in lexicographic order, which for
// "YYYY-MM" keys is chronological order.
func (d *TemporalData) SortedMonths() []string {
	keys := make([]string, 0, len(d.MonthlyActivity))
	for k := range d.MonthlyActivity {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Diagnostics makes the pipeline's partial-skip behavior observable to
// callers and tests without a log side channel.
type Diagnostics struct {
	SkippedRetweets        int `json:"skippedRetweets"`
	UnparseableDates       int `json:"unparseableDates"`
	DroppedByTimeframe     int `json:"droppedByTimeframe"`
	DroppedBadDateInWindow int `json:"droppedBadDateInWindow"`
}

// ProcessingResult is the sole artifact the pipeline hands to the report
// layer. It is created once per call and never mutated afterward; callers
// wanting a different timeframe re-run the whole pipeline.
type ProcessingResult struct {
	AllTweets      []CanonicalTweet `json:"allTweets"`
	OriginalTweets []CanonicalTweet `json:"originalTweets"`
	Replies        []CanonicalTweet `json:"replies"`
	MediaItems     []MediaItem      `json:"mediaItems"`
	Temporal       TemporalData     `json:"temporalData"`

	RawCountInTimeframe int  `json:"rawCountInTimeframe"`
	ProcessedCount      int  `json:"processedCount"`
	IsFreeTierLimited   bool `json:"isFreeTierLimited"`

	Diagnostics Diagnostics `json:"diagnostics"`
}
