package normalize

import (
	"testing"
	"time"
)

func TestFieldAliasPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		check  func(t *testing.T, fields map[string]any)
	}{
		{
			name:   "id prefers id_str",
			fields: map[string]any{"id_str": "123", "id": "456"},
			check: func(t *testing.T, f map[string]any) {
				if got := Record(f).ID; got != "123" {
					t.Fatalf("got %q", got)
				}
			},
		},
		{
			name:   "id falls back to id",
			fields: map[string]any{"id": "456"},
			check: func(t *testing.T, f map[string]any) {
				if got := Record(f).ID; got != "456" {
					t.Fatalf("got %q", got)
				}
			},
		},
		{
			name:   "full text prefers full_text",
			fields: map[string]any{"full_text": "long", "text": "short", "content": "other"},
			check: func(t *testing.T, f map[string]any) {
				tw := Record(f)
				if tw.FullText != "long" || tw.Text != "short" {
					t.Fatalf("got full=%q short=%q", tw.FullText, tw.Text)
				}
			},
		},
		{
			name:   "short text falls back to full text",
			fields: map[string]any{"full_text": "only full"},
			check: func(t *testing.T, f map[string]any) {
				tw := Record(f)
				if tw.Text != "only full" {
					t.Fatalf("got %q", tw.Text)
				}
			},
		},
		{
			name:   "favorite count prefers favorite_count over likes",
			fields: map[string]any{"favorite_count": float64(7), "likes": float64(99)},
			check: func(t *testing.T, f map[string]any) {
				if got := Record(f).FavoriteCount; got != 7 {
					t.Fatalf("got %d", got)
				}
			},
		},
		{
			name:   "retweet count reads scrape alias",
			fields: map[string]any{"retweets": float64(3)},
			check: func(t *testing.T, f map[string]any) {
				if got := Record(f).RetweetCount; got != 3 {
					t.Fatalf("got %d", got)
				}
			},
		},
		{
			name:   "reply id prefers the _str variant",
			fields: map[string]any{"in_reply_to_status_id_str": "10", "in_reply_to_status_id": "11"},
			check: func(t *testing.T, f map[string]any) {
				if got := Record(f).InReplyToID; got != "10" {
					t.Fatalf("got %q", got)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.check(t, tt.fields) })
	}
}

func TestCountCoercion(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   int
	}{
		{"absent", map[string]any{}, 0},
		{"negative", map[string]any{"favorite_count": float64(-5)}, 0},
		{"string number", map[string]any{"favorite_count": "12"}, 12},
		{"garbage string", map[string]any{"favorite_count": "lots"}, 0},
		{"bool", map[string]any{"favorite_count": true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Record(tt.fields).FavoriteCount; got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateParsing(t *testing.T) {
	tw := Record(map[string]any{"created_at": "Mon Jan 01 00:00:00 +0000 2024"})
	if !tw.CreatedAtValid {
		t.Fatal("expected valid date")
	}
	if tw.CreatedAt.Year() != 2024 || tw.CreatedAt.Hour() != 0 {
		t.Fatalf("got %v", tw.CreatedAt)
	}

	tw = Record(map[string]any{"date": "2024-03-05T12:30:00Z"})
	if !tw.CreatedAtValid || tw.CreatedAt.Hour() != 12 {
		t.Fatalf("got valid=%v time=%v", tw.CreatedAtValid, tw.CreatedAt)
	}

	tw = Record(map[string]any{"created_at": "yesterday-ish"})
	if tw.CreatedAtValid {
		t.Fatal("expected invalid date")
	}
	if tw.RawCreatedAt != "yesterday-ish" {
		t.Fatalf("raw date not kept: %q", tw.RawCreatedAt)
	}
}

func TestRecordsArchiveShape(t *testing.T) {
	records := []RawRecord{
		{"tweet": map[string]any{"id_str": "1", "created_at": "Mon Jan 01 00:00:00 +0000 2024"}},
		{"tweet": map[string]any{"id_str": "2", "retweeted": true}},
	}
	tweets := Records(records)
	if len(tweets) != 2 {
		t.Fatalf("got %d tweets", len(tweets))
	}
	if tweets[0].ID != "1" || tweets[1].ID != "2" {
		t.Fatalf("ids not read from envelope: %v %v", tweets[0].ID, tweets[1].ID)
	}
	if !tweets[1].IsRetweet {
		t.Fatal("retweeted flag lost")
	}
}

func TestRecordsScrapeShape(t *testing.T) {
	records := []RawRecord{
		{"id": "9", "likes": float64(4), "retweets": float64(1), "date": "2024-02-02T10:00:00Z", "content": "hello"},
	}
	tweets := Records(records)
	if len(tweets) != 1 {
		t.Fatalf("got %d tweets", len(tweets))
	}
	tw := tweets[0]
	if tw.ID != "9" || tw.FavoriteCount != 4 || tw.RetweetCount != 1 {
		t.Fatalf("scrape mapping wrong: %+v", tw)
	}
	if tw.Text != "hello" || tw.FullText != "hello" {
		t.Fatalf("content mapping wrong: %+v", tw)
	}
	if !tw.CreatedAtValid || !tw.CreatedAt.Equal(time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("date mapping wrong: %+v", tw)
	}
}

// First-element sniff: a scrape-shaped head makes the whole batch map as
// scrape records, so an archive-shaped tail loses its fields. Pinned as the
// documented limitation.
func TestRecordsMixedShapeFollowsFirstElement(t *testing.T) {
	records := []RawRecord{
		{"id": "flat"},
		{"tweet": map[string]any{"id_str": "wrapped"}},
	}
	tweets := Records(records)
	if tweets[0].ID != "flat" {
		t.Fatalf("got %q", tweets[0].ID)
	}
	if tweets[1].ID == "wrapped" {
		t.Fatal("trailing archive record should not be unwrapped in a scrape-shaped batch")
	}
}

func TestMediaExtraction(t *testing.T) {
	// Archive shape: entities.media with media_url_https.
	tw := Record(map[string]any{
		"entities": map[string]any{
			"media": []any{
				map[string]any{"type": "photo", "media_url_https": "https://img/1"},
				map[string]any{"type": "photo", "media_url_https": "https://img/2"},
			},
		},
	})
	if len(tw.Media) != 2 || tw.Media[0].URL != "https://img/1" {
		t.Fatalf("archive media wrong: %+v", tw.Media)
	}

	// Scrape shape: flat media array.
	tw = Record(map[string]any{
		"media": []any{map[string]any{"type": "video", "url": "https://vid/1"}},
	})
	if len(tw.Media) != 1 || tw.Media[0].Type != "video" {
		t.Fatalf("scrape media wrong: %+v", tw.Media)
	}

	if got := Record(map[string]any{}); got.Media != nil {
		t.Fatalf("expected no media, got %+v", got.Media)
	}
}

func TestNilRecord(t *testing.T) {
	tw := Record(nil)
	if tw.ID != "" || tw.CreatedAtValid || tw.FavoriteCount != 0 {
		t.Fatalf("nil record should canonicalize to a zero tweet: %+v", tw)
	}
}
