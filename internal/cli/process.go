package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <audio-file>",
	Short: "Transcribe audio and extract tasks in one step.",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringP("language", "l", "", "Language code (e.g., 'en', 'es')")
	processCmd.Flags().StringP("model", "m", "", "Whisper model size override")
	processCmd.Flags().StringP("output", "o", "", "Output file path for the full result JSON")
	processCmd.Flags().BoolP("transcript", "t", false, "Show the transcription before the tasks")
	processCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	processCmd.Flags().BoolP("copy", "c", false, "Copy task JSON to the clipboard")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	language, _ := cmd.Flags().GetString("language")
	modelSize, _ := cmd.Flags().GetString("model")
	outputPath, _ := cmd.Flags().GetString("output")
	showTranscript, _ := cmd.Flags().GetBool("transcript")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	copyOutput, _ := cmd.Flags().GetBool("copy")

	if modelSize != "" {
		cfg.WhisperModelSize = modelSize
	}

	processor, err := newProcessor(&cfg)
	if err != nil {
		return err
	}
	defer processor.Close()

	result, err := processor.Process(ctx, args[0], language)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if jsonOutput {
		fmt.Println(string(data))
	} else {
		if showTranscript {
			fmt.Printf("\n%s==== TRANSCRIPTION ====%s\n\n", ansiBold, ansiReset)
			fmt.Println(result.Transcription.Text)
		}
		printTaskList(os.Stdout, &result.TaskList)
		fmt.Println(dim(fmt.Sprintf("Total processing time: %.1fs", result.ProcessingTimeSeconds)))
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, append(data, '\n'), 0o644); err != nil {
			return err
		}
		printSuccess("Results saved to: " + outputPath)
	}

	if copyOutput {
		copyTasks(&result.TaskList)
	}
	return nil
}
