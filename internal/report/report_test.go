package report

import (
	"context"
	"strings"
	"testing"

	"tweetlens/internal/model"
)

func sampleResult() *model.ProcessingResult {
	res := &model.ProcessingResult{
		AllTweets: []model.CanonicalTweet{
			{ID: "1", FavoriteCount: 4, RetweetCount: 2},
			{ID: "2", FavoriteCount: 1},
		},
		OriginalTweets: []model.CanonicalTweet{{ID: "1"}},
		Replies:        []model.CanonicalTweet{{ID: "2"}},
	}
	res.Temporal.MonthlyActivity = map[string]int{"2024-01": 1, "2024-02": 1}
	res.Temporal.AvgHourlyEngagement[9] = 6
	res.Temporal.AvgHourlyEngagement[21] = 3
	res.Temporal.DailyActivity[int(2)] = 2 // Tuesday
	return res
}

func TestDerive(t *testing.T) {
	h := Derive(sampleResult())
	if h.TweetCount != 2 || h.OriginalCount != 1 || h.ReplyCount != 1 {
		t.Fatalf("counts wrong: %+v", h)
	}
	if h.PeakHour != 9 || h.PeakHourAvg != 6 {
		t.Fatalf("peak hour wrong: %+v", h)
	}
	if h.BusiestDay != "Tuesday" {
		t.Fatalf("busiest day = %q", h.BusiestDay)
	}
	if h.TotalEngagement != 7 {
		t.Fatalf("total engagement = %d", h.TotalEngagement)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	res := sampleResult()
	first := BuildPrompt(res)
	second := BuildPrompt(res)
	if first != second {
		t.Fatal("prompt must be deterministic for a given result")
	}
	for _, want := range []string{
		"Tweets analyzed: 2 (1 original, 1 replies)",
		"Peak engagement hour: 09:00",
		"Busiest weekday: Tuesday",
		"2024-01: 1",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("prompt missing %q:\n%s", want, first)
		}
	}
}

func TestBuildPromptMentionsFreeTierLimit(t *testing.T) {
	res := sampleResult()
	res.IsFreeTierLimited = true
	res.ProcessedCount = 100
	res.RawCountInTimeframe = 150
	prompt := BuildPrompt(res)
	if !strings.Contains(prompt, "100 most recent of 150") {
		t.Fatalf("limited-data disclosure missing:\n%s", prompt)
	}
}

func TestNarrativeNilProvider(t *testing.T) {
	out, err := Narrative(context.Background(), nil, sampleResult())
	if err != nil || out != "" {
		t.Fatalf("nil provider should disable narrative: %q %v", out, err)
	}
}

type fakeProvider struct{ prompt string }

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return "a story", nil
}

func TestNarrativeUsesPrompt(t *testing.T) {
	p := &fakeProvider{}
	out, err := Narrative(context.Background(), p, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if out != "a story" {
		t.Fatalf("got %q", out)
	}
	if !strings.Contains(p.prompt, "Busiest weekday") {
		t.Fatal("provider did not receive the built prompt")
	}
}
