// Package fasterwhisper runs speech-to-text through a bundled faster-whisper
// helper script, one process per transcription call.
package fasterwhisper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/audiotasks/audiotasks/internal/speech/engine"
	"github.com/audiotasks/audiotasks/internal/speech/registry"
)

//go:embed assets/transcribe.py
var helperScript []byte

func init() {
	registry.Engines.Register("fasterwhisper", func(config map[string]string) (engine.Engine, error) {
		e := &Engine{
			python:      config["python"],
			modelSize:   config["model_size"],
			device:      config["device"],
			computeType: config["compute_type"],
			beamSize:    5,
			vadFilter:   true,
		}
		if e.python == "" {
			e.python = "python3"
		}
		if e.modelSize == "" {
			e.modelSize = "base"
		}
		if e.device == "" {
			e.device = "auto"
		}
		if e.computeType == "" {
			e.computeType = "float32"
		}
		if s := config["beam_size"]; s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("fasterwhisper: invalid beam_size %q", s)
			}
			e.beamSize = v
		}
		if s := config["vad_filter"]; s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("fasterwhisper: invalid vad_filter %q", s)
			}
			e.vadFilter = v
		}
		return e, nil
	})
}

// Engine shells out to the embedded helper for each call. The helper is
// materialized to a scratch file on first use; faster-whisper itself caches
// the model weights across runs.
type Engine struct {
	python      string
	modelSize   string
	device      string
	computeType string
	beamSize    int
	vadFilter   bool

	scriptOnce sync.Once
	scriptPath string
	scriptErr  error
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) ensureScript() (string, error) {
	e.scriptOnce.Do(func() {
		f, err := os.CreateTemp("", "fasterwhisper-*.py")
		if err != nil {
			e.scriptErr = fmt.Errorf("write helper script: %w", err)
			return
		}
		if _, err := f.Write(helperScript); err != nil {
			f.Close()
			e.scriptErr = fmt.Errorf("write helper script: %w", err)
			return
		}
		if err := f.Close(); err != nil {
			e.scriptErr = fmt.Errorf("write helper script: %w", err)
			return
		}
		e.scriptPath = f.Name()
	})
	return e.scriptPath, e.scriptErr
}

// Transcribe runs the helper against the audio file and decodes its output.
func (e *Engine) Transcribe(ctx context.Context, path, language string) (engine.Output, error) {
	script, err := e.ensureScript()
	if err != nil {
		return engine.Output{}, err
	}

	args := []string{
		script,
		"--audio", path,
		"--model", e.modelSize,
		"--device", e.device,
		"--compute-type", e.computeType,
		"--beam-size", strconv.Itoa(e.beamSize),
	}
	if e.vadFilter {
		args = append(args, "--vad-filter")
	}
	if language != "" {
		args = append(args, "--language", language)
	}

	cmd := exec.CommandContext(ctx, e.python, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return engine.Output{}, fmt.Errorf("fasterwhisper helper: %s: %w", msg, err)
		}
		return engine.Output{}, fmt.Errorf("fasterwhisper helper: %w", err)
	}

	var out engine.Output
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return engine.Output{}, fmt.Errorf("fasterwhisper helper output: %w", err)
	}
	return out, nil
}

// Close removes the materialized helper script.
func (e *Engine) Close() error {
	if e.scriptPath == "" {
		return nil
	}
	if err := os.Remove(e.scriptPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
