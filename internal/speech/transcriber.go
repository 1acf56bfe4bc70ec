// Package speech wraps the speech-to-text engines behind a validated,
// file-oriented transcription adapter.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pitabwire/frame/workerpool"

	"github.com/audiotasks/audiotasks/internal/asyncutil"
	"github.com/audiotasks/audiotasks/internal/speech/engine"
	"github.com/audiotasks/audiotasks/internal/speech/registry"
	"github.com/audiotasks/audiotasks/pkg/model"
)

// DefaultBackend is the engine used when none is configured.
const DefaultBackend = "fasterwhisper"

var supportedFormats = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"m4a":  true,
	"flac": true,
	"ogg":  true,
	"webm": true,
	"wma":  true,
	"opus": true,
}

// SupportedFormats returns the accepted audio file extensions, sorted.
func SupportedFormats() []string {
	out := make([]string, 0, len(supportedFormats))
	for f := range supportedFormats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FormatSupported reports whether the extension (without dot) is accepted.
func FormatSupported(format string) bool {
	return supportedFormats[strings.ToLower(format)]
}

// Transcriber validates audio input, drives one lazily created engine and
// maps its raw output into TranscriptionResults. The engine is built on the
// first call and reused; calls themselves are not serialized.
type Transcriber struct {
	backend         string
	defaultLanguage string
	options         map[string]string

	initOnce sync.Once
	engine   engine.Engine
	initErr  error
	ready    atomic.Bool
}

// NewTranscriber creates a transcriber for the named engine backend.
// The options map is handed to the engine factory; its "language" entry, if
// set, becomes the default language for calls that do not specify one.
func NewTranscriber(backend string, options map[string]string) *Transcriber {
	if backend == "" {
		backend = DefaultBackend
	}
	if options == nil {
		options = map[string]string{}
	}
	return &Transcriber{
		backend:         backend,
		defaultLanguage: options["language"],
		options:         options,
	}
}

// Backend returns the configured engine name.
func (t *Transcriber) Backend() string {
	return t.backend
}

// ValidateFile checks that path names an existing file with a supported
// audio extension. It never touches the engine.
func (t *Transcriber) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file not found: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("not a file: %s", path)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supportedFormats[format] {
		return &UnsupportedFormatError{Format: format}
	}
	return nil
}

func (t *Transcriber) engineHandle() (engine.Engine, error) {
	t.initOnce.Do(func() {
		eng, err := registry.Engines.Create(t.backend, t.options)
		if err != nil {
			t.initErr = fmt.Errorf("create %s engine: %w", t.backend, err)
			return
		}
		t.engine = eng
		t.ready.Store(true)
	})
	return t.engine, t.initErr
}

// EngineReady reports whether the engine has been created. It stays false
// until the first transcription call builds the engine.
func (t *Transcriber) EngineReady() bool {
	return t.ready.Load()
}

// Transcribe converts one audio file to text. An empty language falls back
// to the configured default, and from there to engine auto-detection.
func (t *Transcriber) Transcribe(ctx context.Context, path, language string) (model.TranscriptionResult, error) {
	if err := t.ValidateFile(path); err != nil {
		return model.TranscriptionResult{}, err
	}

	eng, err := t.engineHandle()
	if err != nil {
		return model.TranscriptionResult{}, &TranscriptionError{Path: path, Err: err}
	}

	if language == "" {
		language = t.defaultLanguage
	}

	slog.InfoContext(ctx, "transcribing audio",
		slog.String("path", path),
		slog.String("engine", t.backend))

	out, err := eng.Transcribe(ctx, path, language)
	if err != nil {
		return model.TranscriptionResult{}, &TranscriptionError{Path: path, Err: err}
	}

	segments := make([]model.TranscriptionSegment, 0, len(out.Segments))
	textParts := make([]string, 0, len(out.Segments))
	for _, s := range out.Segments {
		text := strings.TrimSpace(s.Text)
		segments = append(segments, model.TranscriptionSegment{
			Start: s.Start,
			End:   s.End,
			Text:  text,
		})
		textParts = append(textParts, text)
	}

	duration := 0.0
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	slog.InfoContext(ctx, "transcription complete",
		slog.Int("segments", len(segments)),
		slog.Float64("duration_seconds", duration),
		slog.String("language", out.Language))

	return model.TranscriptionResult{
		Text:                strings.Join(textParts, " "),
		Segments:            segments,
		Language:            out.Language,
		LanguageProbability: out.LanguageProbability,
		DurationSeconds:     duration,
		AudioPath:           path,
	}, nil
}

// TranscribeAsync runs Transcribe on the worker pool (or a goroutine when
// pool is nil) and delivers the result on the returned channel.
func (t *Transcriber) TranscribeAsync(ctx context.Context, path, language string, pool workerpool.WorkerPool) <-chan asyncutil.Result[model.TranscriptionResult] {
	return asyncutil.Run(ctx, pool, func(ctx context.Context) (model.TranscriptionResult, error) {
		return t.Transcribe(ctx, path, language)
	})
}

// Close releases the engine if one was created.
func (t *Transcriber) Close() error {
	if t.engine == nil {
		return nil
	}
	return t.engine.Close()
}
