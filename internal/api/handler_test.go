package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/audiotasks/audiotasks/internal/extract"
	"github.com/audiotasks/audiotasks/internal/pipeline"
	"github.com/audiotasks/audiotasks/internal/speech"
	"github.com/audiotasks/audiotasks/internal/speech/engine"
	"github.com/audiotasks/audiotasks/internal/speech/registry"
)

type captureEngine struct {
	gotLanguage string
	out         engine.Output
}

func (c *captureEngine) Transcribe(ctx context.Context, path, language string) (engine.Output, error) {
	c.gotLanguage = language
	return c.out, nil
}

func (c *captureEngine) Close() error { return nil }

func speechOutput(text string) engine.Output {
	return engine.Output{
		Language:            "en",
		LanguageProbability: 0.92,
		Segments:            []engine.Segment{{Start: 0, End: 4, Text: text}},
	}
}

func fakeOllama(t *testing.T, chatContent string, tagNames ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]any{"role": "assistant", "content": chatContent},
				"done":    true,
			})
		case "/api/tags":
			models := make([]map[string]any, 0, len(tagNames))
			for _, name := range tagNames {
				models = append(models, map[string]any{"name": name})
			}
			json.NewEncoder(w).Encode(map[string]any{"models": models})
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestMux(t *testing.T, backend, ollamaURL string, maxUpload int64) *http.ServeMux {
	t.Helper()
	processor := pipeline.New(
		speech.NewTranscriber(backend, nil),
		extract.NewExtractor(extract.Options{Host: ollamaURL}),
	)
	h := NewHandler(processor, nil, maxUpload, t.TempDir())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func audioUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("fake audio bytes")); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestTranscribeEndpoint(t *testing.T) {
	eng := &captureEngine{out: speechOutput("Plan the launch.")}
	registry.Engines.Register("api-transcribe", func(map[string]string) (engine.Engine, error) {
		return eng, nil
	})
	srv := fakeOllama(t, "")
	defer srv.Close()
	mux := newTestMux(t, "api-transcribe", srv.URL, 10<<20)

	body, contentType := audioUpload(t, "meeting.mp3", map[string]string{"language": "es"})
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp TranscribeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Data == nil || resp.Data.Text != "Plan the launch." {
		t.Errorf("data = %+v", resp.Data)
	}
	if eng.gotLanguage != "es" {
		t.Errorf("language passed to engine = %q, want es", eng.gotLanguage)
	}
}

func TestTranscribeEndpointUnsupportedFormat(t *testing.T) {
	factoryCalls := 0
	registry.Engines.Register("api-unsupported", func(map[string]string) (engine.Engine, error) {
		factoryCalls++
		return &captureEngine{}, nil
	})
	mux := newTestMux(t, "api-unsupported", "http://127.0.0.1:1", 10<<20)

	body, contentType := audioUpload(t, "notes.xyz", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("success = true on error response")
	}
	if !strings.Contains(resp.Error, "unsupported format") {
		t.Errorf("error = %q", resp.Error)
	}
	if factoryCalls != 0 {
		t.Errorf("engine factory called %d times for a rejected upload", factoryCalls)
	}
}

func TestTranscribeEndpointNoFile(t *testing.T) {
	mux := newTestMux(t, "", "http://127.0.0.1:1", 10<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader("plain body"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTranscribeEndpointUploadTooLarge(t *testing.T) {
	mux := newTestMux(t, "", "http://127.0.0.1:1", 64)

	body, contentType := audioUpload(t, "meeting.mp3", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestExtractEndpoint(t *testing.T) {
	srv := fakeOllama(t, `{"tasks": [{"title": "Send invoices", "priority": "urgent"}]}`)
	defer srv.Close()
	mux := newTestMux(t, "", srv.URL, 10<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/extract",
		strings.NewReader(`{"text": "Invoices go out today, urgent."}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp ExtractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Data.Tasks) != 1 || resp.Data.Tasks[0].Title != "Send invoices" {
		t.Errorf("tasks = %+v", resp.Data.Tasks)
	}
}

func TestExtractEndpointValidation(t *testing.T) {
	mux := newTestMux(t, "", "http://127.0.0.1:1", 10<<20)

	cases := []struct {
		name string
		body string
	}{
		{"empty text", `{"text": ""}`},
		{"missing text", `{}`},
		{"invalid json", `{"text": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tasks/extract", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestExtractEndpointBackendDown(t *testing.T) {
	mux := newTestMux(t, "", "http://127.0.0.1:1", 10<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/extract",
		strings.NewReader(`{"text": "do the thing"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Error, "cannot connect to ollama") {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestProcessEndpoint(t *testing.T) {
	registry.Engines.Register("api-process", func(map[string]string) (engine.Engine, error) {
		return &captureEngine{out: speechOutput("Book the venue by Friday.")}, nil
	})
	srv := fakeOllama(t, `{"tasks": [{"title": "Book the venue", "due_date": "2024-05-10"}]}`)
	defer srv.Close()
	mux := newTestMux(t, "api-process", srv.URL, 10<<20)

	body, contentType := audioUpload(t, "standup.wav", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Transcription == nil || resp.Transcription.Text != "Book the venue by Friday." {
		t.Errorf("transcription = %+v", resp.Transcription)
	}
	if resp.Tasks == nil || len(resp.Tasks.Tasks) != 1 {
		t.Fatalf("tasks = %+v", resp.Tasks)
	}
	if resp.Tasks.Tasks[0].Title != "Book the venue" {
		t.Errorf("task title = %q", resp.Tasks.Tasks[0].Title)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := fakeOllama(t, "", "gemma3:4b")
	defer srv.Close()
	mux := newTestMux(t, "", srv.URL, 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var h pipeline.Health
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if h.Status != pipeline.StatusHealthy {
		t.Errorf("status = %q", h.Status)
	}
	if h.Version == "" {
		t.Error("version is empty")
	}
}

func TestHealthEndpointDegradedStays200(t *testing.T) {
	mux := newTestMux(t, "", "http://127.0.0.1:1", 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when degraded", rec.Code)
	}
	var h pipeline.Health
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if h.Status != pipeline.StatusDegraded {
		t.Errorf("status = %q, want %q", h.Status, pipeline.StatusDegraded)
	}
	if h.OllamaError == "" {
		t.Error("ollama_error is empty")
	}
}

func TestBuildHandlerChain(t *testing.T) {
	srv := fakeOllama(t, "", "gemma3:4b")
	defer srv.Close()

	processor := pipeline.New(
		speech.NewTranscriber("", nil),
		extract.NewExtractor(extract.Options{Host: srv.URL}),
	)
	handler := BuildHandler(NewHandler(processor, nil, 10<<20, t.TempDir()))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("CORS header missing")
	}
}
