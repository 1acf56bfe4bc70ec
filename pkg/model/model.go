// Package model defines the value objects shared by the transcription and
// task-extraction pipeline. Everything here is plain data passed by value;
// entities carry no behavior beyond derived accessors.
package model

import (
	"strings"
	"time"
)

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// ParsePriority maps s to a TaskPriority, reporting whether s named one.
func ParsePriority(s string) (TaskPriority, bool) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return TaskPriority(s), true
	}
	return "", false
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// ParseStatus maps s to a TaskStatus, reporting whether s named one.
func ParseStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return TaskStatus(s), true
	}
	return "", false
}

// Task is a single actionable item extracted from a transcription.
// Title is never empty on a validated Task; records that cannot satisfy
// that are dropped during normalization, not constructed.
type Task struct {
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Priority      TaskPriority `json:"priority"`
	Status        TaskStatus   `json:"status"`
	DueDate       *time.Time   `json:"due_date,omitempty"`
	Assignee      string       `json:"assignee,omitempty"`
	Tags          []string     `json:"tags"`
	SourceSegment string       `json:"source_segment,omitempty"`
}

// NormalizeTags lower-cases and trims each tag, dropping entries that are
// empty after trimming. Relative order of the survivors is preserved.
// The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// TaskList is the batch result of one extraction call.
type TaskList struct {
	Tasks                []Task    `json:"tasks"`
	SourceAudio          string    `json:"source_audio,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	TotalDurationSeconds *float64  `json:"total_duration_seconds,omitempty"`
	Language             string    `json:"language,omitempty"`
}

// TaskCount returns the total number of tasks.
func (l TaskList) TaskCount() int {
	return len(l.Tasks)
}

// PendingCount returns the number of tasks still pending.
func (l TaskList) PendingCount() int {
	n := 0
	for _, t := range l.Tasks {
		if t.Status == StatusPending {
			n++
		}
	}
	return n
}

// TranscriptionSegment is one time-bounded slice of transcribed audio.
type TranscriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s TranscriptionSegment) Duration() float64 {
	return s.End - s.Start
}

// TranscriptionResult is the full output of one transcription call.
type TranscriptionResult struct {
	Text                string                 `json:"text"`
	Segments            []TranscriptionSegment `json:"segments"`
	Language            string                 `json:"language"`
	LanguageProbability float64                `json:"language_probability"`
	DurationSeconds     float64                `json:"duration_seconds"`
	AudioPath           string                 `json:"audio_path,omitempty"`
}

// ProcessingResult pairs a transcription with the tasks extracted from it
// and the wall-clock time the combined pipeline took.
type ProcessingResult struct {
	Transcription         TranscriptionResult `json:"transcription"`
	TaskList              TaskList            `json:"task_list"`
	ProcessingTimeSeconds float64             `json:"processing_time_seconds"`
}
