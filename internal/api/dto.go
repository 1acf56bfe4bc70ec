package api

import "github.com/audiotasks/audiotasks/pkg/model"

// ExtractRequest is the request body for text-only task extraction.
type ExtractRequest struct {
	Text string `json:"text"`
}

// TranscribeResponse wraps a transcription result.
type TranscribeResponse struct {
	Success bool                       `json:"success"`
	Data    *model.TranscriptionResult `json:"data,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// ExtractResponse wraps an extracted task list.
type ExtractResponse struct {
	Success bool            `json:"success"`
	Data    *model.TaskList `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ProcessResponse wraps the full pipeline output.
type ProcessResponse struct {
	Success               bool                       `json:"success"`
	Transcription         *model.TranscriptionResult `json:"transcription,omitempty"`
	Tasks                 *model.TaskList            `json:"tasks,omitempty"`
	ProcessingTimeSeconds float64                    `json:"processing_time_seconds,omitempty"`
	Error                 string                     `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
