package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/audiotasks/audiotasks/internal/extract"
	"github.com/audiotasks/audiotasks/pkg/model"
)

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract tasks from text.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringP("file", "f", "", "File containing text to process")
	extractCmd.Flags().StringP("output", "o", "", "Output file path")
	extractCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	extractCmd.Flags().BoolP("copy", "c", false, "Copy task JSON to the clipboard")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	filePath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	copyOutput, _ := cmd.Flags().GetBool("copy")

	var text string
	switch {
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("read input file: %w", err)
		}
		text = string(data)
	case len(args) == 1:
		text = args[0]
	default:
		return errors.New("provide text argument or --file option")
	}

	extractor, err := newExtractor(&cfg)
	if err != nil {
		return err
	}

	list, err := extractor.Extract(ctx, extract.TextSource(text))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}

	if jsonOutput {
		fmt.Println(string(data))
	} else {
		printTaskList(os.Stdout, list)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, append(data, '\n'), 0o644); err != nil {
			return err
		}
		printSuccess("Tasks saved to: " + outputPath)
	}

	if copyOutput {
		copyTasks(list)
	}
	return nil
}

// copyTasks puts the task list JSON on the system clipboard. Clipboard
// failures are reported but never fail the command.
func copyTasks(list *model.TaskList) {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		printWarning("clipboard unavailable: " + err.Error())
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		printWarning("clipboard unavailable: " + err.Error())
		return
	}
	printSuccess("Tasks copied to clipboard")
}
