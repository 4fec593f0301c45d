package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"mediscope/internal/api"
	"mediscope/internal/config"
	"mediscope/internal/extract"
	"mediscope/internal/logger"
	"mediscope/internal/summarize"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document parsing HTTP service",
	Long: `Start the HTTP service exposing POST /parse.

The endpoint accepts either a server-local file path (form field "file_path")
or one or more uploaded files (multipart field "files"), extracts their text
and returns a summary produced by the configured generative-text provider.

Required environment variables (depending on SUMMARY_PROVIDER):
  GEMINI_API_KEY - API key for the Gemini provider (default)
  OPENAI_API_KEY - API key for the OpenAI provider`,
	Example: `  # Serve on the default address (:5001)
  mediscope serve

  # Serve on a custom address
  SERVER_ADDRESS=:8080 mediscope serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload directory %s: %w", cfg.UploadDir, err)
	}

	ctx := context.Background()

	extractor, closeExtractor, err := buildExtractor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeExtractor()

	summarizer, err := buildSummarizer(ctx, cfg)
	if err != nil {
		return err
	}

	handler := api.NewHandler(extractor, summarizer, cfg.UploadDir)

	router := gin.Default()
	router.MaxMultipartMemory = extract.MaxFileSizeBytes
	handler.RegisterRoutes(router)

	log.Info().
		Str("address", cfg.ServerAddress).
		Str("ocr_backend", cfg.OCRBackend).
		Str("pdf_backend", cfg.PDFBackend).
		Str("summary_provider", cfg.SummaryProvider).
		Msg("Starting HTTP service")

	if err := router.Run(cfg.ServerAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// buildExtractor constructs the extraction service with the configured
// backends. All backends are created here, once, at startup.
func buildExtractor(ctx context.Context, cfg *config.Config) (*extract.Service, func(), error) {
	log := logger.WithComponent("serve")

	var (
		images  extract.ImageRecognizer
		closers []func() error
	)
	switch cfg.OCRBackend {
	case config.OCRBackendVision:
		recognizer, err := extract.NewVisionRecognizer(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create Vision OCR backend: %w", err)
		}
		images = recognizer
		closers = append(closers, recognizer.Close)
	default:
		recognizer, err := extract.NewTesseractRecognizer(cfg.OCRLanguages)
		if err != nil {
			return nil, nil, fmt.Errorf("create Tesseract OCR backend: %w", err)
		}
		images = recognizer
		closers = append(closers, recognizer.Close)
	}

	var docs extract.DocumentParser
	switch cfg.PDFBackend {
	case config.PDFBackendDocumentAI:
		parser, err := extract.NewDocumentAIParser(ctx, extract.DocumentAIConfig{
			ProjectID:   cfg.GoogleCloudProject,
			Location:    cfg.GoogleCloudLocation,
			ProcessorID: cfg.DocumentAIProcessorID,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create Document AI backend: %w", err)
		}
		docs = parser
		closers = append(closers, parser.Close)
	default:
		docs = extract.NewTextLayerParser()
	}

	closeAll := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn().Err(err).Msg("Failed to close extraction backend")
			}
		}
	}
	return extract.NewService(images, docs), closeAll, nil
}

// buildSummarizer constructs the summarization service with the configured
// provider.
func buildSummarizer(ctx context.Context, cfg *config.Config) (*summarize.Service, error) {
	var (
		generator summarize.Generator
		err       error
	)
	switch cfg.SummaryProvider {
	case config.SummaryProviderOpenAI:
		generator, err = summarize.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		generator, err = summarize.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if err != nil {
		return nil, fmt.Errorf("create summary provider: %w", err)
	}

	return summarize.NewService(generator,
		summarize.WithMaxChars(cfg.MaxSummaryChars),
		summarize.WithTimeout(time.Duration(cfg.SummaryTimeout)*time.Second),
	), nil
}
