package pipeline

import (
	"tweetlens/internal/model"
)

// aggregator accumulates one linear pass over canonical tweets. Modeled as
// accumulate-then-finalize so the zero-guarded averages are computed exactly
// once, after all buckets are closed.
type aggregator struct {
	result model.ProcessingResult
}

func newAggregator() *aggregator {
	a := &aggregator{}
	a.result.AllTweets = []model.CanonicalTweet{}
	a.result.OriginalTweets = []model.CanonicalTweet{}
	a.result.Replies = []model.CanonicalTweet{}
	a.result.MediaItems = []model.MediaItem{}
	a.result.Temporal.MonthlyActivity = map[string]int{}
	a.result.Temporal.MonthlyEngagementTotal = map[string]int{}
	a.result.Temporal.AvgMonthlyEngagement = map[string]float64{}
	a.result.Temporal.MonthlyTweetCount = map[string]int{}
	return a
}

// add processes one tweet. Retweets are skipped entirely: they contribute to
// no classification bucket and no histogram. Classification and temporal
// accumulation are independent failure domains: a tweet with an unparseable
// date is still classified, it just never reaches the histograms.
func (a *aggregator) add(t model.CanonicalTweet) {
	if t.IsRetweet {
		a.result.Diagnostics.SkippedRetweets++
		return
	}

	a.result.AllTweets = append(a.result.AllTweets, t)
	if t.IsReply() {
		a.result.Replies = append(a.result.Replies, t)
	} else {
		a.result.OriginalTweets = append(a.result.OriginalTweets, t)
	}

	for _, m := range t.Media {
		a.result.MediaItems = append(a.result.MediaItems, model.MediaItem{
			Type:    m.Type,
			URL:     m.URL,
			TweetID: t.ID,
			Engagement: model.EngagementCounts{
				Likes:    t.FavoriteCount,
				Retweets: t.RetweetCount,
			},
			Text:      t.DisplayText(),
			CreatedAt: t.CreatedAt,
		})
	}

	if !t.CreatedAtValid {
		a.result.Diagnostics.UnparseableDates++
		return
	}

	hour := t.CreatedAt.Hour()
	day := int(t.CreatedAt.Weekday())
	month := t.CreatedAt.Format("2006-01")
	engagement := t.Engagement()

	tmp := &a.result.Temporal
	tmp.HourlyActivity[hour]++
	tmp.DailyActivity[day]++
	tmp.MonthlyActivity[month]++
	tmp.HourlyEngagement[hour] += engagement
	tmp.DailyEngagement[day] += engagement
	tmp.MonthlyEngagementTotal[month] += engagement
	tmp.HourlyTweetCount[hour]++
	tmp.DailyTweetCount[day]++
	tmp.MonthlyTweetCount[month]++
}

// finalize computes the per-bucket averages with an explicit zero-guard: a
// bucket with zero tweets averages 0, never NaN or Inf.
func (a *aggregator) finalize() *model.ProcessingResult {
	tmp := &a.result.Temporal
	for h := 0; h < 24; h++ {
		if tmp.HourlyTweetCount[h] > 0 {
			tmp.AvgHourlyEngagement[h] = float64(tmp.HourlyEngagement[h]) / float64(tmp.HourlyTweetCount[h])
		}
	}
	for d := 0; d < 7; d++ {
		if tmp.DailyTweetCount[d] > 0 {
			tmp.AvgDailyEngagement[d] = float64(tmp.DailyEngagement[d]) / float64(tmp.DailyTweetCount[d])
		}
	}
	for month, count := range tmp.MonthlyTweetCount {
		if count > 0 {
			tmp.AvgMonthlyEngagement[month] = float64(tmp.MonthlyEngagementTotal[month]) / float64(count)
		}
	}
	return &a.result
}
