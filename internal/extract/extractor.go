// Package extract turns transcription text into structured task lists by
// prompting an Ollama model and normalizing whatever JSON comes back.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pitabwire/frame/workerpool"

	"github.com/audiotasks/audiotasks/internal/asyncutil"
	"github.com/audiotasks/audiotasks/internal/ollama"
	"github.com/audiotasks/audiotasks/pkg/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemma3:4b"

// Options configures an Extractor. Zero values fall back to the package
// defaults, except Temperature which is passed through as given.
type Options struct {
	Host        string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Prompts     *PromptStore
}

// Source is the input to an extraction run. Text is what the model sees;
// the remaining fields are carried through into the task list metadata.
type Source struct {
	Text            string
	AudioPath       string
	DurationSeconds *float64
	Language        string
}

// TextSource wraps bare text with no audio provenance.
func TextSource(text string) Source {
	return Source{Text: text}
}

// SourceFromTranscription carries a transcription and its metadata into an
// extraction source.
func SourceFromTranscription(tr *model.TranscriptionResult) Source {
	duration := tr.DurationSeconds
	return Source{
		Text:            tr.Text,
		AudioPath:       tr.AudioPath,
		DurationSeconds: &duration,
		Language:        tr.Language,
	}
}

// Extractor runs LLM task extraction against a single Ollama host and
// model. The HTTP client is created on first use so construction never
// touches the network.
type Extractor struct {
	host        string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	prompts     *PromptStore

	clientOnce sync.Once
	client     *ollama.Client
}

// NewExtractor creates an extractor from options, applying defaults for
// anything unset.
func NewExtractor(opts Options) *Extractor {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = ollama.DefaultHost
	}
	mdl := opts.Model
	if mdl == "" {
		mdl = DefaultModel
	}
	prompts := opts.Prompts
	if prompts == nil {
		prompts = NewPromptStore("")
	}
	return &Extractor{
		host:        strings.TrimRight(host, "/"),
		model:       mdl,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		prompts:     prompts,
	}
}

// Host returns the Ollama host this extractor talks to.
func (e *Extractor) Host() string {
	return e.host
}

// Model returns the configured model name.
func (e *Extractor) Model() string {
	return e.model
}

// Prompts returns the prompt store backing extraction runs.
func (e *Extractor) Prompts() *PromptStore {
	return e.prompts
}

func (e *Extractor) clientHandle() *ollama.Client {
	e.clientOnce.Do(func() {
		e.client = ollama.NewClient(e.host, e.timeout)
	})
	return e.client
}

// CheckConnection verifies that the Ollama host is reachable and that the
// configured model is installed. The model matches when its base name, the
// part before any ":tag", appears in an installed model name.
func (e *Extractor) CheckConnection(ctx context.Context) error {
	models, err := e.clientHandle().ListModels(ctx)
	if err != nil {
		return &ConnectivityError{Host: e.host, Err: err}
	}

	base, _, _ := strings.Cut(e.model, ":")
	for _, m := range models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if strings.Contains(name, base) {
			return nil
		}
	}
	return &ModelNotFoundError{Model: e.model}
}

// Extract prompts the model with the source text and returns the
// normalized task list. Empty or whitespace-only text short-circuits to an
// empty list without calling the model. Invalid task records are skipped
// with a warning; only batch-level failures return an error.
func (e *Extractor) Extract(ctx context.Context, src Source) (*model.TaskList, error) {
	list := &model.TaskList{
		Tasks:                []model.Task{},
		SourceAudio:          src.AudioPath,
		CreatedAt:            time.Now().UTC(),
		TotalDurationSeconds: src.DurationSeconds,
		Language:             src.Language,
	}

	text := strings.TrimSpace(src.Text)
	if text == "" {
		slog.WarnContext(ctx, "empty transcription, skipping task extraction")
		return list, nil
	}

	prompt, err := e.prompts.Render(TaskExtractionPrompt, text)
	if err != nil {
		return nil, &ExtractionError{Model: e.model, Err: err}
	}

	slog.InfoContext(ctx, "extracting tasks",
		slog.String("model", e.model),
		slog.Int("transcription_chars", len(text)))

	resp, err := e.clientHandle().Chat(ctx, ollama.ChatRequest{
		Model:    e.model,
		Messages: []ollama.Message{{Role: "user", Content: prompt}},
		Options: &ollama.Options{
			Temperature: e.temperature,
			NumPredict:  e.maxTokens,
		},
	})
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, &ConnectivityError{Host: e.host, Err: err}
		}
		return nil, &ExtractionError{Model: e.model, Err: err}
	}

	records, err := ParseResponse(resp.Message.Content)
	if err != nil {
		var parseErr *ParseError
		preview := ""
		if errors.As(err, &parseErr) {
			preview = parseErr.Preview
		}
		slog.WarnContext(ctx, "could not parse model response",
			slog.String("model", e.model),
			slog.Int("response_chars", len(resp.Message.Content)))
		return nil, &ExtractionError{Model: e.model, Preview: preview, Err: err}
	}

	for _, raw := range records {
		rec, ok := raw.(map[string]any)
		if !ok {
			slog.WarnContext(ctx, "skipping non-object task record")
			continue
		}
		task, err := TaskFromRecord(rec)
		if err != nil {
			slog.WarnContext(ctx, "skipping invalid task record",
				slog.String("error", err.Error()))
			continue
		}
		list.Tasks = append(list.Tasks, task)
	}

	slog.InfoContext(ctx, "task extraction complete",
		slog.Int("tasks", len(list.Tasks)))
	return list, nil
}

// ExtractAsync runs Extract on the worker pool and delivers the result on
// the returned channel. A nil pool falls back to a plain goroutine.
func (e *Extractor) ExtractAsync(ctx context.Context, src Source, pool workerpool.WorkerPool) <-chan asyncutil.Result[*model.TaskList] {
	return asyncutil.Run(ctx, pool, func(ctx context.Context) (*model.TaskList, error) {
		return e.Extract(ctx, src)
	})
}
