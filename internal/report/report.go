// Package report turns a finished ProcessingResult into the narrative
// inputs and outputs of a user-facing report. Prompt text is a
// deterministic function of the result; only the completion call leaves
// the process.
package report

import (
	"context"
	"fmt"
	"strings"

	"tweetlens/internal/llm"
	"tweetlens/internal/model"
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Highlights are the headline stats derived from a result, used both for
// the free-tier summary and as grounding for the narrative prompt.
type Highlights struct {
	TweetCount      int     `json:"tweetCount"`
	OriginalCount   int     `json:"originalCount"`
	ReplyCount      int     `json:"replyCount"`
	MediaCount      int     `json:"mediaCount"`
	PeakHour        int     `json:"peakHour"`
	PeakHourAvg     float64 `json:"peakHourAvgEngagement"`
	BusiestDay      string  `json:"busiestDay"`
	ActiveMonths    int     `json:"activeMonths"`
	TotalEngagement int     `json:"totalEngagement"`
}

// Derive computes the highlights. Peak hour is the hour with the highest
// average engagement, ties going to the earlier hour; busiest day is by
// tweet count.
func Derive(res *model.ProcessingResult) Highlights {
	h := Highlights{
		TweetCount:    len(res.AllTweets),
		OriginalCount: len(res.OriginalTweets),
		ReplyCount:    len(res.Replies),
		MediaCount:    len(res.MediaItems),
		ActiveMonths:  len(res.Temporal.MonthlyActivity),
	}
	for hour := 0; hour < 24; hour++ {
		if res.Temporal.AvgHourlyEngagement[hour] > h.PeakHourAvg {
			h.PeakHourAvg = res.Temporal.AvgHourlyEngagement[hour]
			h.PeakHour = hour
		}
	}
	busiest := 0
	for d := 0; d < 7; d++ {
		if res.Temporal.DailyActivity[d] > res.Temporal.DailyActivity[busiest] {
			busiest = d
		}
	}
	h.BusiestDay = weekdayNames[busiest]
	for _, t := range res.AllTweets {
		h.TotalEngagement += t.Engagement()
	}
	return h
}

// BuildPrompt renders the narrative-generation prompt. Output is stable for
// a given result so cached sessions regenerate identical requests.
func BuildPrompt(res *model.ProcessingResult) string {
	h := Derive(res)
	var b strings.Builder
	b.WriteString("You are writing a personality report from Twitter activity statistics.\n")
	b.WriteString("Write an engaging narrative section grounded ONLY in these numbers:\n\n")
	fmt.Fprintf(&b, "- Tweets analyzed: %d (%d original, %d replies)\n", h.TweetCount, h.OriginalCount, h.ReplyCount)
	fmt.Fprintf(&b, "- Media attachments: %d\n", h.MediaCount)
	fmt.Fprintf(&b, "- Total engagement (likes + retweets): %d\n", h.TotalEngagement)
	fmt.Fprintf(&b, "- Peak engagement hour: %02d:00 (avg %.1f per tweet)\n", h.PeakHour, h.PeakHourAvg)
	fmt.Fprintf(&b, "- Busiest weekday: %s\n", h.BusiestDay)
	fmt.Fprintf(&b, "- Months with activity: %d\n", h.ActiveMonths)
	if len(res.Temporal.MonthlyActivity) > 0 {
		b.WriteString("- Monthly tweet counts:\n")
		for _, month := range res.Temporal.SortedMonths() {
			fmt.Fprintf(&b, "  - %s: %d\n", month, res.Temporal.MonthlyActivity[month])
		}
	}
	if res.IsFreeTierLimited {
		fmt.Fprintf(&b, "\nNote: only the %d most recent of %d tweets were analyzed (free tier).\n",
			res.ProcessedCount, res.RawCountInTimeframe)
	}
	b.WriteString("\nKeep it under 300 words, second person, no invented facts.\n")
	return b.String()
}

// Narrative generates the premium report section. A nil provider means
// narrative generation is disabled and returns an empty section without
// error.
func Narrative(ctx context.Context, provider llm.Provider, res *model.ProcessingResult) (string, error) {
	if provider == nil {
		return "", nil
	}
	return provider.Complete(ctx, BuildPrompt(res))
}
