package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the Ollama backend.",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Checking system health...")

	extractor, err := newExtractor(&cfg)
	if err != nil {
		return err
	}
	if err := extractor.CheckConnection(ctx); err != nil {
		return err
	}

	fmt.Printf("%s%sOllama: Connected%s (%s, model %s)\n",
		ansiBold, ansiGreen, ansiReset, extractor.Host(), extractor.Model())
	printSuccess("All systems operational")
	return nil
}
