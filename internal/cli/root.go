// Package cli implements the audiotasks command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/pitabwire/frame/config"
	"github.com/spf13/cobra"

	atconfig "github.com/audiotasks/audiotasks/config"
	"github.com/audiotasks/audiotasks/internal/extract"
	"github.com/audiotasks/audiotasks/internal/pipeline"
	"github.com/audiotasks/audiotasks/internal/speech"
)

// Exit codes by failure class.
const (
	exitGeneric       = 1
	exitFormat        = 2
	exitTranscription = 3
	exitConnectivity  = 4
	exitModelNotFound = 5
	exitExtraction    = 6
)

var rootCmd = &cobra.Command{
	Use:           "audiotasks",
	Short:         "Convert audio recordings to actionable task lists.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err.Error())
		return exitCodeFor(err)
	}
	return 0
}

func exitCodeFor(err error) int {
	var (
		formatErr        *speech.UnsupportedFormatError
		transcriptionErr *speech.TranscriptionError
		connErr          *extract.ConnectivityError
		notFoundErr      *extract.ModelNotFoundError
		extractionErr    *extract.ExtractionError
	)
	switch {
	case errors.As(err, &formatErr):
		return exitFormat
	case errors.As(err, &transcriptionErr):
		return exitTranscription
	case errors.As(err, &connErr):
		return exitConnectivity
	case errors.As(err, &notFoundErr):
		return exitModelNotFound
	case errors.As(err, &extractionErr):
		return exitExtraction
	}
	return exitGeneric
}

func loadConfig(ctx context.Context) (atconfig.AppConfig, error) {
	return config.LoadWithOIDC[atconfig.AppConfig](ctx)
}

func newPromptStore(cfg *atconfig.AppConfig) (*extract.PromptStore, error) {
	store := extract.NewPromptStore(cfg.PromptDir)
	if err := store.LoadDir(); err != nil {
		return nil, err
	}
	return store, nil
}

func newExtractor(cfg *atconfig.AppConfig) (*extract.Extractor, error) {
	prompts, err := newPromptStore(cfg)
	if err != nil {
		return nil, err
	}
	return extract.NewExtractor(extract.Options{
		Host:        cfg.OllamaHost,
		Model:       cfg.OllamaModel,
		Temperature: cfg.OllamaTemperature,
		MaxTokens:   cfg.OllamaMaxTokens,
		Timeout:     cfg.OllamaTimeout(),
		Prompts:     prompts,
	}), nil
}

func newProcessor(cfg *atconfig.AppConfig) (*pipeline.Processor, error) {
	extractor, err := newExtractor(cfg)
	if err != nil {
		return nil, err
	}
	transcriber := speech.NewTranscriber(cfg.WhisperBackend, cfg.SpeechEngineOptions())
	return pipeline.New(transcriber, extractor), nil
}
