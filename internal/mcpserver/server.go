// Package mcpserver exposes the audio-to-tasks pipeline as MCP tools and
// resources over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/audiotasks/audiotasks/config"
	"github.com/audiotasks/audiotasks/internal/extract"
	"github.com/audiotasks/audiotasks/internal/pipeline"
	"github.com/audiotasks/audiotasks/internal/speech"
	"github.com/audiotasks/audiotasks/internal/version"
)

const serverInstructions = "Convert audio recordings to actionable task lists " +
	"using Whisper for transcription and Ollama for task extraction."

// Server wires the pipeline into an MCP stdio server.
type Server struct {
	processor *pipeline.Processor
	cfg       *config.AppConfig
	mcp       *server.MCPServer
}

// New builds the MCP server with all tools and resources registered.
func New(processor *pipeline.Processor, cfg *config.AppConfig) *Server {
	s := &Server{processor: processor, cfg: cfg}

	m := server.NewMCPServer(
		"AudioToTasks",
		version.Version,
		server.WithInstructions(serverInstructions),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	m.AddTool(mcp.NewTool("transcribe_audio",
		mcp.WithDescription("Transcribe an audio file to text using Whisper. "+
			"Returns full transcription text with segments and timing information."),
		mcp.WithString("audio_path",
			mcp.Required(),
			mcp.Description("Path to audio file to transcribe")),
		mcp.WithString("language",
			mcp.Description("Language code (e.g., 'en')")),
	), s.handleTranscribe)

	m.AddTool(mcp.NewTool("extract_tasks",
		mcp.WithDescription("Extract actionable tasks from transcription text using Ollama. "+
			"Identifies action items, deadlines, assignees and priorities."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Transcription text to extract tasks from")),
	), s.handleExtract)

	m.AddTool(mcp.NewTool("process_audio",
		mcp.WithDescription("Process an audio file: transcribe and extract tasks in one step."),
		mcp.WithString("audio_path",
			mcp.Required(),
			mcp.Description("Path to audio file")),
		mcp.WithString("language",
			mcp.Description("Language code")),
	), s.handleProcess)

	m.AddTool(mcp.NewTool("check_health",
		mcp.WithDescription("Check the health of the transcription and extraction backends."),
	), s.handleHealth)

	m.AddResource(mcp.NewResource("config://settings", "Settings",
		mcp.WithResourceDescription("Active configuration, secrets excluded"),
		mcp.WithMIMEType("application/json"),
	), s.readSettings)

	m.AddResource(mcp.NewResource("formats://supported", "Supported formats",
		mcp.WithResourceDescription("Audio formats accepted for transcription"),
		mcp.WithMIMEType("application/json"),
	), s.readFormats)

	s.mcp = m
	return s
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// transcribeJSON runs transcription and renders the result as JSON. Tool
// handlers report errors as tool results, never protocol failures.
func (s *Server) transcribeJSON(ctx context.Context, audioPath, language string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("file not found: %s", audioPath)
	}
	result, err := s.processor.Transcriber().Transcribe(ctx, audioPath, language)
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func (s *Server) extractJSON(ctx context.Context, text string) (string, error) {
	list, err := s.processor.Extractor().Extract(ctx, extract.TextSource(text))
	if err != nil {
		return "", err
	}
	return marshalJSON(list)
}

func (s *Server) processJSON(ctx context.Context, audioPath, language string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("file not found: %s", audioPath)
	}
	result, err := s.processor.Process(ctx, audioPath, language)
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func (s *Server) healthJSON(ctx context.Context) (string, error) {
	h := s.processor.Health(ctx)
	status := map[string]any{
		"status":           h.Status,
		"ollama_connected": h.OllamaConnected,
		"ollama_host":      s.processor.Extractor().Host(),
		"ollama_model":     s.processor.Extractor().Model(),
		"whisper_model":    s.cfg.WhisperModelSize,
		"version":          h.Version,
	}
	if h.OllamaError != "" {
		status["ollama_error"] = h.OllamaError
	}
	return marshalJSON(status)
}

func (s *Server) settingsJSON() (string, error) {
	return marshalJSON(map[string]any{
		"whisper": map[string]any{
			"backend":    s.cfg.WhisperBackend,
			"model_size": s.cfg.WhisperModelSize,
			"device":     s.cfg.WhisperDevice,
			"vad_filter": s.cfg.WhisperVADFilter,
		},
		"ollama": map[string]any{
			"host":        s.processor.Extractor().Host(),
			"model":       s.processor.Extractor().Model(),
			"temperature": s.cfg.OllamaTemperature,
		},
	})
}

func (s *Server) formatsJSON() (string, error) {
	return marshalJSON(map[string]any{
		"formats":     speech.SupportedFormats(),
		"description": "Audio formats supported for transcription",
	})
}

func (s *Server) handleTranscribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	audioPath, err := req.RequireString("audio_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.transcribeJSON(ctx, audioPath, req.GetString("language", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.extractJSON(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleProcess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	audioPath, err := req.RequireString("audio_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.processJSON(ctx, audioPath, req.GetString("language", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.healthJSON(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) readSettings(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := s.settingsJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     out,
		},
	}, nil
}

func (s *Server) readFormats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := s.formatsJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     out,
		},
	}, nil
}
