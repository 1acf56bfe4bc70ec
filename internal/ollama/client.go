// Package ollama is a minimal client for the Ollama HTTP API, covering the
// two calls the pipeline needs: chat completion and the installed-model list.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/audiotasks/audiotasks/internal/restutil"
)

// DefaultHost is where a locally installed Ollama listens.
const DefaultHost = "http://localhost:11434"

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single generation request.
type Options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

// ChatResponse is the non-streaming response of POST /api/chat.
type ChatResponse struct {
	Model     string  `json:"model"`
	CreatedAt string  `json:"created_at"`
	Message   Message `json:"message"`
	Done      bool    `json:"done"`
	EvalCount int     `json:"eval_count"`
}

// ModelInfo describes one installed model as reported by GET /api/tags.
type ModelInfo struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Client talks to one Ollama host.
type Client struct {
	host       string
	httpClient *http.Client
}

// NewClient creates a client for the given host, defaulting to DefaultHost
// when host is empty. The timeout bounds every request end to end.
func NewClient(host string, timeout time.Duration) *Client {
	if host == "" {
		host = DefaultHost
	}
	host = strings.TrimRight(host, "/")
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Host returns the configured host URL.
func (c *Client) Host() string {
	return c.host
}

// Chat runs a non-streaming chat completion.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Stream = false
	var resp ChatResponse
	err := restutil.DoJSON(ctx, c.httpClient, http.MethodPost, c.host+"/api/chat", nil, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	return &resp, nil
}

// ListModels returns the models installed on the host.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var resp tagsResponse
	err := restutil.DoJSON(ctx, c.httpClient, http.MethodGet, c.host+"/api/tags", nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama list models: %w", err)
	}
	return resp.Models, nil
}
