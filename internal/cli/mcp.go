package cli

import (
	"github.com/spf13/cobra"

	"github.com/audiotasks/audiotasks/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio.",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	processor, err := newProcessor(&cfg)
	if err != nil {
		return err
	}
	defer processor.Close()

	return mcpserver.New(processor, &cfg).ServeStdio()
}
