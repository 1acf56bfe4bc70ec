package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/workerpool"
	"github.com/spf13/cobra"

	"github.com/audiotasks/audiotasks/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API service.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Frame owns the listener and reads HTTP_PORT from the environment,
	// so the flag has to land there before the config loads.
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		if err := os.Setenv("HTTP_PORT", ":"+port); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("audiotasks"),
		frame.WithWorkerPoolOptions(
			workerpool.WithPoolCount(cfg.WorkerPoolCount),
			workerpool.WithSinglePoolCapacity(cfg.WorkerPoolCapacity),
		),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		return fmt.Errorf("getting worker pool: %w", err)
	}

	processor, err := newProcessor(&cfg)
	if err != nil {
		return err
	}
	defer processor.Close()

	// Reload prompt templates when files under PROMPT_DIR change.
	go processor.Extractor().Prompts().WatchAndReload(ctx.Done())

	handler := api.BuildHandler(api.NewHandler(processor, pool, cfg.MaxUploadBytes(), cfg.TempDir))
	srv.Init(ctx, frame.WithHTTPHandler(handler))

	slog.InfoContext(ctx, "starting rest api service",
		slog.String("ollama_host", cfg.OllamaHost),
		slog.String("ollama_model", cfg.OllamaModel),
		slog.String("whisper_backend", cfg.WhisperBackend))

	return srv.Run(ctx, "")
}
