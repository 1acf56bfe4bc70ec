// Package engine defines the contract between the transcription adapter and
// the speech-to-text implementations behind it.
package engine

import "context"

// Segment is a timed piece of a transcription. Times are seconds from the
// start of the audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Output is the raw result of one inference run.
type Output struct {
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
	Segments            []Segment `json:"segments"`
}

// Engine transcribes a single audio file per call. Implementations are
// created through the registry and reused for the lifetime of their owner;
// Close releases whatever the implementation holds.
type Engine interface {
	Transcribe(ctx context.Context, path string, language string) (Output, error)
	Close() error
}
