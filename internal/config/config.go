package config

import (
	"fmt"
	"os"
	"strconv"

	"mediscope/internal/logger"
)

// Supported backend identifiers.
const (
	OCRBackendTesseract = "tesseract"
	OCRBackendVision    = "vision"

	PDFBackendTextLayer  = "text-layer"
	PDFBackendDocumentAI = "documentai"

	SummaryProviderGemini = "gemini"
	SummaryProviderOpenAI = "openai"
)

type Config struct {
	// Server Configuration
	ServerAddress string
	UploadDir     string

	// Extraction Configuration
	OCRBackend   string
	OCRLanguages string
	PDFBackend   string

	// Summarization Configuration
	SummaryProvider string
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	SummaryTimeout  int
	MaxSummaryChars int

	// Google Cloud Configuration (vision / documentai backends)
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":5001"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),

		OCRBackend:   getEnv("OCR_BACKEND", OCRBackendTesseract),
		OCRLanguages: getEnv("OCR_LANGUAGES", "eng"),
		PDFBackend:   getEnv("PDF_BACKEND", PDFBackendTextLayer),

		SummaryProvider: getEnv("SUMMARY_PROVIDER", SummaryProviderGemini),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash-lite"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		SummaryTimeout:  getEnvInt("SUMMARY_TIMEOUT", 60),
		MaxSummaryChars: getEnvInt("MAX_SUMMARY_CHARS", 4000),

		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate enforces the fail-fast credential policy: the service refuses to
// start without the API key for the selected summary provider. There is no
// embedded fallback key.
func (c *Config) validate() error {
	switch c.SummaryProvider {
	case SummaryProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when SUMMARY_PROVIDER=gemini")
		}
	case SummaryProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when SUMMARY_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown SUMMARY_PROVIDER %q (expected %q or %q)",
			c.SummaryProvider, SummaryProviderGemini, SummaryProviderOpenAI)
	}

	switch c.OCRBackend {
	case OCRBackendTesseract, OCRBackendVision:
	default:
		return fmt.Errorf("unknown OCR_BACKEND %q (expected %q or %q)",
			c.OCRBackend, OCRBackendTesseract, OCRBackendVision)
	}

	switch c.PDFBackend {
	case PDFBackendTextLayer:
	case PDFBackendDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when PDF_BACKEND=documentai")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when PDF_BACKEND=documentai")
		}
	default:
		return fmt.Errorf("unknown PDF_BACKEND %q (expected %q or %q)",
			c.PDFBackend, PDFBackendTextLayer, PDFBackendDocumentAI)
	}

	if c.MaxSummaryChars <= 0 {
		return fmt.Errorf("MAX_SUMMARY_CHARS must be positive")
	}

	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
