package main

import (
	"os"

	"github.com/audiotasks/audiotasks/internal/cli"

	// Register speech backends via init().
	_ "github.com/audiotasks/audiotasks/internal/speech/backends/fasterwhisper"
	_ "github.com/audiotasks/audiotasks/internal/speech/backends/whisperapi"
)

func main() {
	os.Exit(cli.Execute())
}
