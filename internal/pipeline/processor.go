// Package pipeline composes transcription and task extraction into the
// end-to-end audio-to-tasks flow.
package pipeline

import (
	"context"
	"time"

	"github.com/pitabwire/frame/workerpool"

	"github.com/audiotasks/audiotasks/internal/asyncutil"
	"github.com/audiotasks/audiotasks/internal/extract"
	"github.com/audiotasks/audiotasks/internal/speech"
	"github.com/audiotasks/audiotasks/internal/version"
	"github.com/audiotasks/audiotasks/pkg/model"
)

// Health status values.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Health is the service liveness snapshot reported by the API and CLI.
// WhisperLoaded stays false until a transcription has built the engine.
type Health struct {
	Status          string `json:"status"`
	WhisperLoaded   bool   `json:"whisper_loaded"`
	OllamaConnected bool   `json:"ollama_connected"`
	OllamaError     string `json:"ollama_error,omitempty"`
	Version         string `json:"version"`
}

// Processor runs the full pipeline: audio file in, transcription plus
// extracted tasks out.
type Processor struct {
	transcriber *speech.Transcriber
	extractor   *extract.Extractor
}

// New creates a processor over the given transcriber and extractor.
func New(transcriber *speech.Transcriber, extractor *extract.Extractor) *Processor {
	return &Processor{transcriber: transcriber, extractor: extractor}
}

// Transcriber returns the underlying transcriber.
func (p *Processor) Transcriber() *speech.Transcriber {
	return p.transcriber
}

// Extractor returns the underlying extractor.
func (p *Processor) Extractor() *extract.Extractor {
	return p.extractor
}

// Process transcribes the audio file and extracts tasks from the result.
// The reported processing time covers both stages.
func (p *Processor) Process(ctx context.Context, path, language string) (*model.ProcessingResult, error) {
	start := time.Now()

	transcription, err := p.transcriber.Transcribe(ctx, path, language)
	if err != nil {
		return nil, err
	}

	list, err := p.extractor.Extract(ctx, extract.SourceFromTranscription(&transcription))
	if err != nil {
		return nil, err
	}

	return &model.ProcessingResult{
		Transcription:         transcription,
		TaskList:              *list,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
	}, nil
}

// ProcessAsync runs Process on the worker pool (or a goroutine when pool is
// nil) and delivers the result on the returned channel.
func (p *Processor) ProcessAsync(ctx context.Context, path, language string, pool workerpool.WorkerPool) <-chan asyncutil.Result[*model.ProcessingResult] {
	return asyncutil.Run(ctx, pool, func(ctx context.Context) (*model.ProcessingResult, error) {
		return p.Process(ctx, path, language)
	})
}

// Health probes the Ollama backend and reports the overall service state.
// It never returns an error; a broken backend degrades the status instead.
func (p *Processor) Health(ctx context.Context) Health {
	h := Health{
		Status:          StatusHealthy,
		WhisperLoaded:   p.transcriber.EngineReady(),
		OllamaConnected: true,
		Version:         version.Version,
	}
	if err := p.extractor.CheckConnection(ctx); err != nil {
		h.Status = StatusDegraded
		h.OllamaConnected = false
		h.OllamaError = err.Error()
	}
	return h
}

// Close releases pipeline resources.
func (p *Processor) Close() error {
	return p.transcriber.Close()
}
