package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/audiotasks/audiotasks/pkg/model"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{5.9, "00:05"},
		{59, "00:59"},
		{65, "01:05"},
		{600, "10:00"},
		{3599.4, "59:59"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{7322.5, "02:02:02"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestPrintTaskList(t *testing.T) {
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	list := &model.TaskList{
		Tasks: []model.Task{
			{
				Title:       "Ship the release",
				Description: "Tag and publish",
				Priority:    model.PriorityHigh,
				Status:      model.StatusPending,
				DueDate:     &due,
				Assignee:    "Dana",
				Tags:        []string{"docs", "release"},
			},
			{
				Title:    "Water the plants",
				Priority: model.PriorityLow,
				Status:   model.StatusPending,
				Tags:     []string{},
			},
		},
	}

	var b strings.Builder
	printTaskList(&b, list)
	out := b.String()

	for _, want := range []string{
		"EXTRACTED TASKS (2 total)",
		"1. Ship the release",
		"2. Water the plants",
		"Priority: " + ansiYellow + "HIGH" + ansiReset,
		"Priority: " + ansiBlue + "LOW" + ansiReset,
		"Assignee: Dana",
		"Tags: docs, release",
		"Due: 2024-06-01",
		"Tag and publish",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if got := strings.Count(out, "Priority:"); got != 2 {
		t.Errorf("Priority lines = %d, want 2", got)
	}
	// The second task has no assignee, tags or due date.
	if got := strings.Count(out, "Assignee:"); got != 1 {
		t.Errorf("Assignee lines = %d, want 1", got)
	}
	if got := strings.Count(out, "Due:"); got != 1 {
		t.Errorf("Due lines = %d, want 1", got)
	}
}

func TestPrintTaskListEmpty(t *testing.T) {
	var b strings.Builder
	printTaskList(&b, &model.TaskList{Tasks: []model.Task{}})
	out := b.String()

	if !strings.Contains(out, "EXTRACTED TASKS (0 total)") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("missing empty notice in %q", out)
	}
}

func TestPrintSegments(t *testing.T) {
	segments := []model.TranscriptionSegment{
		{Start: 0, End: 2.5, Text: "hello there"},
		{Start: 2.5, End: 65.2, Text: "general update"},
	}

	var b strings.Builder
	printSegments(&b, segments)
	out := b.String()

	if !strings.Contains(out, "[00:00 -> 00:02] hello there") {
		t.Errorf("first segment missing in %q", out)
	}
	if !strings.Contains(out, "[00:02 -> 01:05] general update") {
		t.Errorf("second segment missing in %q", out)
	}
}
