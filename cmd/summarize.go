package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mediscope/internal/config"
	"mediscope/internal/extract"
	"mediscope/internal/logger"
	"mediscope/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Extract and summarize a medical report",
	Long: `Extract the text of a local report and produce a simplified summary
through the configured generative-text provider.

Required environment variables (depending on SUMMARY_PROVIDER):
  GEMINI_API_KEY - API key for the Gemini provider (default)
  OPENAI_API_KEY - API key for the OpenAI provider`,
	Example: `  # Summarize a lab report
  mediscope summarize report.pdf

  # Summarize a scanned page as JSON
  mediscope summarize scan.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

// summarizeOutput represents the JSON output structure when --json flag is used
type summarizeOutput struct {
	Summary    string `json:"summary"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	TextLength int    `json:"text_length"`
	FileName   string `json:"file_name"`
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	summarizeCmd.Flags().Bool("json", false, "Output as JSON")
	summarizeCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("summarize")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	filePath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if _, err := validateInputFile(filePath, log); err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	extractor, closeExtractor, err := buildExtractor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeExtractor()

	summarizer, err := buildSummarizer(ctx, cfg)
	if err != nil {
		return err
	}

	result := extractor.Extract(ctx, filePath)
	if result.Status == extract.StatusFailed {
		return fmt.Errorf("extraction failed: %s", result.Reason)
	}

	outcome := summarizer.Summarize(ctx, result.Text)
	if outcome.Status == summarize.StatusFailed {
		return fmt.Errorf("summarization failed: %s", outcome.Reason)
	}
	if outcome.Status == summarize.StatusEmpty {
		return fmt.Errorf("nothing to summarize: %s contains no text", filePath)
	}

	var outputData []byte
	if jsonOutput {
		outputData, err = json.MarshalIndent(summarizeOutput{
			Summary:    outcome.Summary,
			Status:     string(outcome.Status),
			Reason:     outcome.Reason,
			TextLength: len(result.Text),
			FileName:   filepath.Base(filePath),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		outputData = []byte(outcome.Summary)
	}

	return writeOutput(outputData, outputPath, !jsonOutput, log)
}
