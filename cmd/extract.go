package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mediscope/internal/config"
	"mediscope/internal/extract"
	"mediscope/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract text from an image or PDF",
	Long: `Process a local file and print its extracted text.

Raster images (jpg, jpeg, png, bmp, tiff) are read through OCR; any other
file is treated as a PDF and read through text-layer extraction.`,
	Example: `  # Extract text from a report to stdout
  mediscope extract report.pdf

  # OCR a scanned page and save the text
  mediscope extract scan.png -o extracted.txt

  # Output as JSON with a custom timeout
  mediscope extract report.pdf --json --timeout 600`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// extractOutput represents the JSON output structure when --json flag is used
type extractOutput struct {
	Text     string `json:"text"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().String("ocr", config.OCRBackendTesseract, "OCR backend: tesseract or vision")
	extractCmd.Flags().String("languages", "eng", "OCR languages (comma-separated)")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	ocrBackend, _ := cmd.Flags().GetString("ocr")
	languages, _ := cmd.Flags().GetString("languages")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	filePath := args[0]

	fileInfo, err := validateInputFile(filePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	extractor, closeExtractor, err := buildLocalExtractor(ctx, ocrBackend, languages)
	if err != nil {
		return err
	}
	defer closeExtractor()

	log.Info().
		Str("file", filePath).
		Int64("size", fileInfo.Size()).
		Msg("Extracting text")

	result := extractor.Extract(ctx, filePath)
	if result.Status == extract.StatusFailed {
		return fmt.Errorf("extraction failed: %s", result.Reason)
	}

	var outputData []byte
	if jsonOutput {
		outputData, err = json.MarshalIndent(extractOutput{
			Text:     result.Text,
			Status:   string(result.Status),
			Reason:   result.Reason,
			FileName: filepath.Base(fileInfo.Name()),
			FileSize: fileInfo.Size(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		outputData = []byte(result.Text)
	}

	return writeOutput(outputData, outputPath, !jsonOutput, log)
}

// validateInputFile checks that the path exists and is a readable regular file.
func validateInputFile(path string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied accessing file: %s", path)
		}
		return nil, fmt.Errorf("error accessing file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	if fileInfo.Size() > extract.MaxFileSizeBytes {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Msg("File exceeds maximum size limit")
		return nil, fmt.Errorf("file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), extract.MaxFileSizeBytes)
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// buildLocalExtractor constructs an extraction service for one-shot commands,
// using the text-layer parser and the requested OCR backend.
func buildLocalExtractor(ctx context.Context, ocrBackend, languages string) (*extract.Service, func(), error) {
	log := logger.WithComponent("extract")

	var (
		images extract.ImageRecognizer
		closer func() error
	)
	switch ocrBackend {
	case config.OCRBackendVision:
		recognizer, err := extract.NewVisionRecognizer(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create Vision OCR backend: %w", err)
		}
		images = recognizer
		closer = recognizer.Close
	default:
		recognizer, err := extract.NewTesseractRecognizer(languages)
		if err != nil {
			return nil, nil, fmt.Errorf("create Tesseract OCR backend: %w", err)
		}
		images = recognizer
		closer = recognizer.Close
	}

	closeFn := func() {
		if err := closer(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR backend")
		}
	}
	return extract.NewService(images, extract.NewTextLayerParser()), closeFn, nil
}

// writeOutput writes result data to a file or stdout.
func writeOutput(data []byte, outputPath string, trailingNewline bool, log zerolog.Logger) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(data)).
			Msg("Results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if trailingNewline {
		fmt.Println()
	}
	return nil
}
