// Package archive extracts tweet records from a Twitter data-export file.
//
// Export files wrap a single JSON array literal in a JavaScript assignment,
// e.g. `window.YTD.tweets.part0 = [ ... ]`. Only the array literal matters;
// the prefix before the `=` is ignored.
package archive

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RawRecord is one unvalidated element of the export array. Shape is not
// checked beyond "the payload is an array"; the normalizer owns field-level
// interpretation.
type RawRecord = map[string]any

// MalformedArchiveError reports an export file whose payload is not a
// recognizable JSON array.
type MalformedArchiveError struct {
	Reason string
	Err    error
}

func (e *MalformedArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed archive: %s: %v", e.Reason, e.Err)
	}
	return "malformed archive: " + e.Reason
}

func (e *MalformedArchiveError) Unwrap() error { return e.Err }

var assignPattern = regexp.MustCompile(`=\s*\[`)

// ParseArchive extracts and parses the array literal from the full text of
// an export file. It is a pure text-to-structure transform: no side
// effects, no I/O. All failures are *MalformedArchiveError.
func ParseArchive(text string) ([]RawRecord, error) {
	loc := assignPattern.FindStringIndex(text)
	if loc == nil {
		return nil, &MalformedArchiveError{Reason: "no array literal found"}
	}
	start := loc[1] - 1 // index of the opening bracket
	end := strings.LastIndex(text, "]")
	if end < start {
		return nil, &MalformedArchiveError{Reason: "unterminated array literal"}
	}

	payload := strings.TrimSpace(text[start : end+1])
	if !strings.HasPrefix(payload, "[") || !strings.HasSuffix(payload, "]") {
		return nil, &MalformedArchiveError{Reason: "extracted payload is not an array literal"}
	}

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &MalformedArchiveError{Reason: "payload is not valid JSON", Err: err}
	}
	arr, ok := parsed.([]any)
	if !ok {
		return nil, &MalformedArchiveError{Reason: "payload parsed to a non-array value"}
	}

	records := make([]RawRecord, len(arr))
	for i, el := range arr {
		// Non-object elements stay nil; the normalizer treats them as
		// records with every field absent.
		if m, ok := el.(map[string]any); ok {
			records[i] = m
		}
	}
	return records, nil
}
