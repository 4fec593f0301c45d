package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mediscope/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "mediscope",
	Short: "Mediscope - medical report parsing and summarization",
	Long: `Mediscope extracts text from uploaded medical reports (images or PDFs)
and produces a simplified natural-language summary through a remote
generative-text service.

Run "mediscope serve" to start the HTTP service, or use the extract and
summarize commands to process local files directly.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to Mediscope!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
