package extract

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseResponseDirectObject(t *testing.T) {
	items, err := ParseResponse(`{"tasks": [{"title": "One"}, {"title": "Two"}]}`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestParseResponseMissingTasksKey(t *testing.T) {
	items, err := ParseResponse(`{"result": "nothing to do"}`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestParseResponseNullTasks(t *testing.T) {
	items, err := ParseResponse(`{"tasks": null}`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if items == nil {
		t.Fatal("items is nil, want empty slice")
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestParseResponseFencedBlock(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{
			name: "json language tag",
			text: "Sure, here are the tasks:\n```json\n{\"tasks\": [{\"title\": \"Fenced\"}]}\n```\nAnything else?",
		},
		{
			name: "bare fence",
			text: "```\n{\"tasks\": [{\"title\": \"Fenced\"}]}\n```",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := ParseResponse(tc.text)
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if len(items) != 1 {
				t.Fatalf("got %d items, want 1", len(items))
			}
			rec, ok := items[0].(map[string]any)
			if !ok {
				t.Fatalf("item is %T, want map", items[0])
			}
			if rec["title"] != "Fenced" {
				t.Errorf("title = %v", rec["title"])
			}
		})
	}
}

func TestParseResponseEmbeddedObject(t *testing.T) {
	text := `I analyzed the transcription. {"tasks": [{"title": "Embedded"}]} Hope that helps!`
	items, err := ParseResponse(text)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

func TestParseResponseBareArray(t *testing.T) {
	_, err := ParseResponse(`[{"title": "No wrapper"}]`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %T (%v), want *ParseError", err, err)
	}
}

func TestParseResponseProse(t *testing.T) {
	_, err := ParseResponse("There were no actionable items in this recording.")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %T (%v), want *ParseError", err, err)
	}
	if !strings.Contains(parseErr.Preview, "no actionable items") {
		t.Errorf("preview = %q", parseErr.Preview)
	}
}

func TestParseResponseNonArrayTasks(t *testing.T) {
	_, err := ParseResponse(`{"tasks": "plenty"}`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %T (%v), want *ParseError", err, err)
	}
}

func TestParseResponsePreviewTruncated(t *testing.T) {
	long := strings.Repeat("x", 800)
	_, err := ParseResponse(long)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if n := utf8.RuneCountInString(parseErr.Preview); n != 500 {
		t.Errorf("preview is %d runes, want 500", n)
	}
}

func TestParseResponseNonObjectElements(t *testing.T) {
	items, err := ParseResponse(`{"tasks": [{"title": "Real"}, 42, "junk"]}`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("got %d items, want 3 (filtering is the normalizer's job)", len(items))
	}
}
