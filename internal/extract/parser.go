package extract

import (
	"encoding/json"
	"regexp"
)

// previewLimit bounds the diagnostic preview attached to parse failures.
const previewLimit = 500

var (
	fencedJSONRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	embeddedJSONRe = regexp.MustCompile(`(?s)\{.*"tasks".*\}`)
)

// ParseResponse recovers the raw task list from LLM output text. Three
// strategies are tried in order, first success wins: the whole text as a
// JSON object, a fenced code block holding one, and finally any embedded
// object mentioning "tasks". A parse that succeeds without a "tasks" key is
// a successful empty result, not a reason to fall through.
//
// Returned items are loosely typed; non-object entries are the normalizer's
// problem, so one junk element cannot fail the whole response.
func ParseResponse(text string) ([]any, error) {
	if items, ok := tryParse(text); ok {
		return items, nil
	}

	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		if items, ok := tryParse(m[1]); ok {
			return items, nil
		}
	}

	if m := embeddedJSONRe.FindString(text); m != "" {
		if items, ok := tryParse(m); ok {
			return items, nil
		}
	}

	return nil, &ParseError{Preview: preview(text, previewLimit)}
}

// tryParse parses s as a JSON object and extracts its "tasks" array. A
// missing or null "tasks" key yields an empty list; a non-object document or
// a non-array "tasks" value is a miss.
func tryParse(s string) ([]any, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}

	raw, ok := obj["tasks"]
	if !ok {
		return []any{}, true
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	if items == nil {
		return []any{}, true
	}
	return items, true
}

// preview returns the first n runes of s.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
