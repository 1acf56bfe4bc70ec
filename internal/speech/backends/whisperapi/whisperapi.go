// Package whisperapi transcribes audio through an OpenAI-compatible
// /audio/transcriptions endpoint, such as a self-hosted whisper server.
package whisperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/audiotasks/audiotasks/internal/restutil"
	"github.com/audiotasks/audiotasks/internal/speech/engine"
	"github.com/audiotasks/audiotasks/internal/speech/registry"
)

func init() {
	registry.Engines.Register("whisperapi", func(config map[string]string) (engine.Engine, error) {
		baseURL := config["url"]
		if baseURL == "" {
			return nil, fmt.Errorf("whisperapi: url required (set WHISPER_API_URL)")
		}
		model := config["model"]
		if model == "" {
			model = "whisper-1"
		}
		return &Engine{
			baseURL:    strings.TrimRight(baseURL, "/"),
			apiKey:     config["api_key"],
			model:      model,
			httpClient: &http.Client{Timeout: 5 * time.Minute},
		}, nil
	})
}

// Engine uploads whole files to a remote transcription API.
type Engine struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ engine.Engine = (*Engine)(nil)

type verboseResponse struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe posts the audio as multipart form data and maps the
// verbose_json response.
func (e *Engine) Transcribe(ctx context.Context, path, language string) (engine.Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Output{}, fmt.Errorf("whisperapi: open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return engine.Output{}, fmt.Errorf("whisperapi: create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return engine.Output{}, fmt.Errorf("whisperapi: read audio: %w", err)
	}
	_ = writer.WriteField("model", e.model)
	_ = writer.WriteField("response_format", "verbose_json")
	if language != "" {
		_ = writer.WriteField("language", language)
	}
	writer.Close()

	headers := map[string]string{
		"Content-Type": writer.FormDataContentType(),
	}
	if e.apiKey != "" {
		headers["Authorization"] = "Bearer " + e.apiKey
	}

	apiURL := e.baseURL + "/audio/transcriptions"
	respBody, err := restutil.DoRaw(ctx, e.httpClient, http.MethodPost, apiURL, headers, &body)
	if err != nil {
		return engine.Output{}, fmt.Errorf("whisperapi: %w", err)
	}
	defer respBody.Close()

	var resp verboseResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return engine.Output{}, fmt.Errorf("whisperapi decode: %w", err)
	}

	out := engine.Output{
		Language: resp.Language,
		// verbose_json carries no language confidence.
		LanguageProbability: 0.9,
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, engine.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	// Some servers omit segment timing; keep the text as one span covering
	// the reported duration.
	if len(out.Segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		out.Segments = []engine.Segment{{Start: 0, End: resp.Duration, Text: resp.Text}}
	}
	return out, nil
}

// Close is a no-op; the engine holds no local resources.
func (e *Engine) Close() error {
	return nil
}
