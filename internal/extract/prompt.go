package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// TaskExtractionPrompt is the name of the built-in extraction template.
const TaskExtractionPrompt = "task_extraction"

// defaultExtractionTemplate instructs the model to answer with the task JSON
// schema the parser and normalizer expect.
const defaultExtractionTemplate = `You are a task extraction assistant. Analyze the following transcription from a meeting or voice note and extract actionable tasks.

For each task, you MUST provide:
- title: A clear, concise task title (action verb + object)
- description: REQUIRED - A brief summary explaining what needs to be done and any relevant context from the transcription. Always include this field with meaningful content.
- priority: "low", "medium", "high", or "urgent"
- assignee: Person responsible (if mentioned, otherwise null)
- due_date: Deadline in ISO format (if mentioned, otherwise null)
- tags: Relevant categories

Return ONLY valid JSON in this exact format:
{
    "tasks": [
        {
            "title": "Task title here",
            "description": "Brief summary of the task with context from the transcription",
            "priority": "medium",
            "assignee": null,
            "due_date": null,
            "tags": ["tag1", "tag2"]
        }
    ]
}

TRANSCRIPTION:
---
{{.Transcription}}
---

Extract all tasks from the transcription above. Each task MUST have a description summarizing what needs to be done. If no clear tasks are found, return {"tasks": []}.
`

// promptData is the data available to prompt template expressions.
type promptData struct {
	Transcription string
}

// Prompt is one named prompt definition as stored in a YAML override file.
type Prompt struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

type loadedPrompt struct {
	def  Prompt
	tmpl *template.Template
}

// PromptStore holds the built-in prompt templates plus any overrides loaded
// from a directory. Overrides with a known name replace the built-in.
type PromptStore struct {
	dir string

	mu      sync.RWMutex
	prompts map[string]loadedPrompt
}

// NewPromptStore creates a store seeded with the built-in templates. When
// dir is empty there is nothing to load or watch and the built-ins are used
// as is.
func NewPromptStore(dir string) *PromptStore {
	s := &PromptStore{
		dir:     dir,
		prompts: make(map[string]loadedPrompt),
	}
	builtin := Prompt{
		Name:        TaskExtractionPrompt,
		Description: "Extracts actionable tasks from transcription text.",
		Template:    defaultExtractionTemplate,
	}
	// The built-in template is known good.
	tmpl := template.Must(template.New(builtin.Name).Parse(builtin.Template))
	s.prompts[builtin.Name] = loadedPrompt{def: builtin, tmpl: tmpl}
	return s
}

// LoadDir loads all .yaml and .yml prompt files from the configured
// directory on top of the built-ins. A missing directory is an error; an
// unconfigured store is not.
func (s *PromptStore) LoadDir() error {
	if s.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read prompt dir %q: %w", s.dir, err)
	}

	loaded := make(map[string]loadedPrompt)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		p, err := s.loadFile(path)
		if err != nil {
			return fmt.Errorf("load %q: %w", path, err)
		}
		loaded[p.def.Name] = p
	}

	s.mu.Lock()
	for name, p := range loaded {
		s.prompts[name] = p
	}
	s.mu.Unlock()

	return nil
}

func (s *PromptStore) loadFile(path string) (loadedPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadedPrompt{}, err
	}

	var p Prompt
	if err := yaml.Unmarshal(data, &p); err != nil {
		return loadedPrompt{}, fmt.Errorf("parse YAML: %w", err)
	}

	if p.Name == "" {
		p.Name = filepath.Base(path)
	}
	if p.Template == "" {
		return loadedPrompt{}, fmt.Errorf("prompt %q: template is required", p.Name)
	}

	tmpl, err := template.New(p.Name).Parse(p.Template)
	if err != nil {
		return loadedPrompt{}, fmt.Errorf("parse template: %w", err)
	}

	return loadedPrompt{def: p, tmpl: tmpl}, nil
}

// Get returns a prompt definition by name.
func (s *PromptStore) Get(name string) (Prompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[name]
	return p.def, ok
}

// Names returns the names of all loaded prompts.
func (s *PromptStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.prompts))
	for name := range s.prompts {
		names = append(names, name)
	}
	return names
}

// Render executes the named template with the given transcription text.
func (s *PromptStore) Render(name, transcription string) (string, error) {
	s.mu.RLock()
	p, ok := s.prompts[name]
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, promptData{Transcription: transcription}); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

// WatchAndReload watches the prompt directory and reloads on changes,
// blocking until done is closed. A store without a directory returns
// immediately.
func (s *PromptStore) WatchAndReload(done <-chan struct{}) error {
	if s.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", s.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					if err := s.LoadDir(); err != nil {
						slog.Warn("prompt reload failed", slog.String("error", err.Error()))
					} else {
						slog.Info("prompts reloaded", slog.String("dir", s.dir))
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("prompt watcher error", slog.String("error", err.Error()))
		}
	}
}
