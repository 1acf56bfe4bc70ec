package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/audiotasks/audiotasks/pkg/model"
)

const maxTitleLen = 200

// recordFields is the closed set of keys a task record may carry.
var recordFields = map[string]bool{
	"title":          true,
	"description":    true,
	"priority":       true,
	"status":         true,
	"due_date":       true,
	"assignee":       true,
	"tags":           true,
	"source_segment": true,
}

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TaskFromRecord validates one raw record into a Task. An error means the
// record should be skipped; the batch continues regardless. Degradation is
// per-field where safe: unrecognized priorities become medium and malformed
// due dates are dropped, while a missing or empty title, a wrong-typed
// field, or an unknown key rejects the record.
func TaskFromRecord(rec map[string]any) (model.Task, error) {
	for key := range rec {
		if !recordFields[key] {
			return model.Task{}, fmt.Errorf("unknown field %q", key)
		}
	}

	v, ok := rec["title"]
	if !ok || v == nil {
		return model.Task{}, errors.New("title is required")
	}
	title, ok := v.(string)
	if !ok {
		return model.Task{}, errors.New("title is not a string")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, errors.New("title is empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return model.Task{}, fmt.Errorf("title longer than %d characters", maxTitleLen)
	}

	task := model.Task{
		Title:    title,
		Priority: model.PriorityMedium,
		Status:   model.StatusPending,
		Tags:     []string{},
	}

	if v, ok := rec["description"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return model.Task{}, errors.New("description is not a string")
		}
		task.Description = strings.TrimSpace(s)
	}

	if v, ok := rec["priority"]; ok && v != nil {
		// Unrecognized values, including non-strings, keep the medium
		// default rather than rejecting the record.
		if s, ok := v.(string); ok {
			if p, valid := model.ParsePriority(strings.ToLower(strings.TrimSpace(s))); valid {
				task.Priority = p
			}
		}
	}

	if v, ok := rec["status"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return model.Task{}, errors.New("status is not a string")
		}
		st, valid := model.ParseStatus(s)
		if !valid {
			return model.Task{}, fmt.Errorf("invalid status %q", s)
		}
		task.Status = st
	}

	if v, ok := rec["due_date"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return model.Task{}, errors.New("due_date is not a string")
		}
		// Malformed dates drop the field, not the record.
		if ts, valid := parseDueDate(s); valid {
			task.DueDate = &ts
		}
	}

	if v, ok := rec["assignee"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return model.Task{}, errors.New("assignee is not a string")
		}
		task.Assignee = strings.TrimSpace(s)
	}

	if v, ok := rec["tags"]; ok {
		task.Tags = tagsFromValue(v)
	}

	if v, ok := rec["source_segment"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return model.Task{}, errors.New("source_segment is not a string")
		}
		task.SourceSegment = strings.TrimSpace(s)
	}

	return task, nil
}

// tagsFromValue extracts and normalizes a tag list. Non-list values and
// non-string elements degrade to nothing instead of failing the record.
func tagsFromValue(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	strs := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			strs = append(strs, s)
		}
	}
	return model.NormalizeTags(strs)
}

func parseDueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
