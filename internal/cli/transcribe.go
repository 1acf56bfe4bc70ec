package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/audiotasks/audiotasks/internal/speech"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe an audio file to text.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

func init() {
	transcribeCmd.Flags().StringP("language", "l", "", "Language code (e.g., 'en', 'es')")
	transcribeCmd.Flags().StringP("model", "m", "", "Whisper model size override")
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	transcribeCmd.Flags().BoolP("segments", "s", false, "Show individual segments with timestamps")
	transcribeCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	language, _ := cmd.Flags().GetString("language")
	modelSize, _ := cmd.Flags().GetString("model")
	outputPath, _ := cmd.Flags().GetString("output")
	showSegments, _ := cmd.Flags().GetBool("segments")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if modelSize != "" {
		cfg.WhisperModelSize = modelSize
	}

	transcriber := speech.NewTranscriber(cfg.WhisperBackend, cfg.SpeechEngineOptions())
	defer transcriber.Close()

	result, err := transcriber.Transcribe(ctx, args[0], language)
	if err != nil {
		return err
	}

	var out string
	switch {
	case jsonOutput:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		out = string(data)
	case showSegments:
		var b strings.Builder
		printSegments(&b, result.Segments)
		out = strings.TrimRight(b.String(), "\n")
	default:
		out = result.Text
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(out+"\n"), 0o644); err != nil {
			return err
		}
		printSuccess("Transcription saved to: " + outputPath)
	} else {
		fmt.Println(out)
	}

	fmt.Println()
	fmt.Println(dim(fmt.Sprintf("Language: %s (confidence: %.1f%%)",
		result.Language, result.LanguageProbability*100)))
	fmt.Println(dim("Duration: " + formatDuration(result.DurationSeconds)))
	return nil
}
