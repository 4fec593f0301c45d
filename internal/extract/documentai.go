package extract

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig configures the Document AI parsing backend.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

// DocumentAIParser implements DocumentParser using Google Document AI. Unlike
// the text-layer parser it also handles scanned PDFs, at the cost of a remote
// call per document.
type DocumentAIParser struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
}

// NewDocumentAIParser creates a parser with credentials from environment.
// Expects GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS.
func NewDocumentAIParser(ctx context.Context, config DocumentAIConfig) (*DocumentAIParser, error) {
	const op = "NewDocumentAIParser"

	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, WrapExtractError(op, ErrMissingCredentials, "project and processor IDs are required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapExtractError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapExtractError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAIParser{client: client, config: config}, nil
}

// NewDocumentAIParserWithClient creates a parser with an explicit client (for testing).
func NewDocumentAIParserWithClient(config DocumentAIConfig, client *documentai.DocumentProcessorClient) *DocumentAIParser {
	return &DocumentAIParser{client: client, config: config}
}

// Parse sends the PDF at path through the Document AI processor and returns
// the recognized document text.
func (p *DocumentAIParser) Parse(ctx context.Context, path string) (string, error) {
	const op = "Parse"

	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExtractError(op, err, "read file")
	}
	if len(pdfBytes) > MaxFileSizeBytes {
		return "", WrapExtractError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(pdfBytes)))
	}
	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return "", WrapExtractError(op, ErrInvalidPDF, "missing PDF header")
	}

	req := &documentaipb.ProcessRequest{
		Name: p.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := p.client.ProcessDocument(ctx, req)
	if err != nil {
		return "", WrapExtractError(op, err, "Document AI call failed")
	}
	if resp.Document == nil {
		return "", WrapExtractError(op, ErrEmptyDocument, "no document in response")
	}

	return resp.Document.Text, nil
}

// processorName constructs the full processor name for the Document AI API.
func (p *DocumentAIParser) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.config.ProjectID, p.config.Location, p.config.ProcessorID)
}

// Close closes the underlying Document AI client.
func (p *DocumentAIParser) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
