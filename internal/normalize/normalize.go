// Package normalize maps loosely-shaped tweet records onto the canonical
// tweet model. Two source shapes exist: archive records nest fields under a
// "tweet" key, scrape results are flat with field names that drift across
// provider versions. All value-level invariants (non-negative counts,
// parsed timestamps) are enforced here so downstream stages need no
// defensive coercion.
package normalize

import (
	"math"
	"strconv"
	"time"

	"tweetlens/internal/model"
)

// RawRecord is one unvalidated record from either source.
type RawRecord = map[string]any

// Alias precedence per canonical field, first non-empty wins. Keeping these
// as ordered lists makes the precedence independently testable per field.
var (
	idAliases        = []string{"id_str", "id"}
	createdAtAliases = []string{"created_at", "createdAt", "date"}
	fullTextAliases  = []string{"full_text", "text", "content"}
	textAliases      = []string{"text", "content", "full_text"}
	favoriteAliases  = []string{"favorite_count", "favoriteCount", "likes"}
	retweetAliases   = []string{"retweet_count", "retweetCount", "retweets"}
	replyToAliases   = []string{"in_reply_to_status_id_str", "in_reply_to_status_id", "inReplyToStatusId"}
)

// Timestamp layouts seen across archive generations and scrape providers.
// The classic export format is Twitter's ruby-style date.
var dateLayouts = []string{
	"Mon Jan 02 15:04:05 -0700 2006",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Records canonicalizes a whole batch.
//
// Shape detection is a first-element sniff: when the first record lacks a
// nested "tweet" object the entire batch is treated as scrape-shaped.
// Mixed-shape batches are not supported; trailing elements of the other
// shape will mis-map. That matches the upstream behavior and is an accepted
// limitation, not a defect.
func Records(records []RawRecord) []model.CanonicalTweet {
	out := make([]model.CanonicalTweet, 0, len(records))
	scrapeShaped := len(records) > 0 && !hasTweetEnvelope(records[0])
	for _, r := range records {
		fields := r
		if !scrapeShaped {
			fields, _ = r["tweet"].(map[string]any)
		}
		out = append(out, Record(fields))
	}
	return out
}

// Record canonicalizes a single flat field set. A nil record yields a zero
// tweet (no id, invalid date, zero counts); the pipeline degrades it
// gracefully instead of failing the batch.
func Record(fields map[string]any) model.CanonicalTweet {
	t := model.CanonicalTweet{
		ID:            stringField(fields, idAliases),
		FullText:      stringField(fields, fullTextAliases),
		Text:          stringField(fields, textAliases),
		FavoriteCount: countField(fields, favoriteAliases),
		RetweetCount:  countField(fields, retweetAliases),
		InReplyToID:   stringField(fields, replyToAliases),
		IsRetweet:     boolField(fields, "retweeted"),
		Media:         mediaField(fields),
	}
	t.RawCreatedAt = stringField(fields, createdAtAliases)
	if ts, ok := parseDate(t.RawCreatedAt); ok {
		t.CreatedAt = ts
		t.CreatedAtValid = true
	}
	return t
}

func hasTweetEnvelope(r RawRecord) bool {
	if r == nil {
		return false
	}
	_, ok := r["tweet"].(map[string]any)
	return ok
}

func stringField(fields map[string]any, aliases []string) string {
	for _, key := range aliases {
		switch v := fields[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// Numeric ids from scrape payloads.
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

// countField coerces to a non-negative integer; absent, negative, or
// unparseable values become 0.
func countField(fields map[string]any, aliases []string) int {
	for _, key := range aliases {
		switch v := fields[key].(type) {
		case float64:
			if math.IsNaN(v) || v < 0 {
				return 0
			}
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				if n < 0 {
					return 0
				}
				return n
			}
		case int:
			if v < 0 {
				return 0
			}
			return v
		}
	}
	return 0
}

func boolField(fields map[string]any, key string) bool {
	v, _ := fields[key].(bool)
	return v
}

// mediaField reads entities.media (archive shape, media_url_https) first,
// then a flat media array (scrape shape).
func mediaField(fields map[string]any) []model.Media {
	if entities, ok := fields["entities"].(map[string]any); ok {
		if arr, ok := entities["media"].([]any); ok && len(arr) > 0 {
			return decodeMedia(arr, "media_url_https")
		}
	}
	if arr, ok := fields["media"].([]any); ok && len(arr) > 0 {
		return decodeMedia(arr, "url")
	}
	return nil
}

func decodeMedia(arr []any, urlKey string) []model.Media {
	out := make([]model.Media, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := m["type"].(string)
		url, _ := m[urlKey].(string)
		if url == "" {
			// Scrape payloads occasionally use media_url even on the flat shape.
			url, _ = m["media_url"].(string)
		}
		if typ == "" && url == "" {
			continue
		}
		out = append(out, model.Media{Type: typ, URL: url})
	}
	return out
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
