// Package api exposes the audio-to-tasks pipeline over REST.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pitabwire/frame/workerpool"

	"github.com/audiotasks/audiotasks/internal/extract"
	"github.com/audiotasks/audiotasks/internal/pipeline"
	"github.com/audiotasks/audiotasks/internal/speech"
)

// Handler provides the REST endpoints for transcription and task extraction.
type Handler struct {
	processor *pipeline.Processor
	pool      workerpool.WorkerPool
	maxUpload int64
	tempDir   string
}

// NewHandler creates the REST handler. maxUpload caps request bodies in
// bytes; tempDir receives uploaded scratch files, empty meaning the OS
// default.
func NewHandler(processor *pipeline.Processor, pool workerpool.WorkerPool, maxUpload int64, tempDir string) *Handler {
	return &Handler{
		processor: processor,
		pool:      pool,
		maxUpload: maxUpload,
		tempDir:   tempDir,
	}
}

// RegisterRoutes registers all pipeline routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/transcribe", h.Transcribe)
	mux.HandleFunc("POST /api/tasks/extract", h.ExtractTasks)
	mux.HandleFunc("POST /api/process", h.Process)
	mux.HandleFunc("GET /api/health", h.Health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}

// uploadedAudio extracts the multipart "file" field, rejects unsupported
// extensions up front and spools the content to a scratch file. The caller
// removes the returned path.
func (h *Handler) uploadedAudio(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d byte limit", tooLarge.Limit))
			return "", false
		}
		writeError(w, http.StatusBadRequest, "no audio file provided")
		return "", false
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no filename provided")
		return "", false
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	format := strings.TrimPrefix(ext, ".")
	if !speech.FormatSupported(format) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"unsupported format %q, supported: %s",
			format, strings.Join(speech.SupportedFormats(), ", ")))
		return "", false
	}

	path, err := h.spool(file, ext)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d byte limit", tooLarge.Limit))
			return "", false
		}
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return "", false
	}
	return path, true
}

func (h *Handler) spool(file multipart.File, ext string) (string, error) {
	tmp, err := os.CreateTemp(h.tempDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func statusFor(err error) int {
	var formatErr *speech.UnsupportedFormatError
	if errors.As(err, &formatErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Transcribe handles POST /api/transcribe
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	path, ok := h.uploadedAudio(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	language := r.FormValue("language")
	res := <-h.processor.Transcriber().TranscribeAsync(r.Context(), path, language, h.pool)
	if res.Err != nil {
		writeError(w, statusFor(res.Err), res.Err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TranscribeResponse{Success: true, Data: &res.Value})
}

// ExtractTasks handles POST /api/tasks/extract
func (h *Handler) ExtractTasks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	res := <-h.processor.Extractor().ExtractAsync(r.Context(), extract.TextSource(req.Text), h.pool)
	if res.Err != nil {
		writeError(w, http.StatusInternalServerError, res.Err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{Success: true, Data: res.Value})
}

// Process handles POST /api/process
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	path, ok := h.uploadedAudio(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	language := r.FormValue("language")
	res := <-h.processor.ProcessAsync(r.Context(), path, language, h.pool)
	if res.Err != nil {
		writeError(w, statusFor(res.Err), res.Err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		Success:               true,
		Transcription:         &res.Value.Transcription,
		Tasks:                 &res.Value.TaskList,
		ProcessingTimeSeconds: res.Value.ProcessingTimeSeconds,
	})
}

// Health handles GET /api/health. Degraded backends lower the status field,
// never the HTTP code.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.processor.Health(r.Context()))
}
