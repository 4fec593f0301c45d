package extract

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayerParser reads the embedded text layer of a PDF with a pure-Go
// parser. Scanned (image-only) PDFs yield no text here; they need the
// Document AI backend instead.
type TextLayerParser struct{}

// NewTextLayerParser constructs the default document parser.
func NewTextLayerParser() *TextLayerParser {
	return &TextLayerParser{}
}

// Parse extracts the plain-text layer of every page, concatenated in page
// order with newline separators.
func (p *TextLayerParser) Parse(ctx context.Context, path string) (string, error) {
	const op = "Parse"

	info, err := os.Stat(path)
	if err != nil {
		return "", WrapExtractError(op, err, "stat file")
	}
	if info.Size() > MaxFileSizeBytes {
		return "", WrapExtractError(op, ErrFileTooLarge, "")
	}
	if err := checkPDFHeader(path); err != nil {
		return "", WrapExtractError(op, err, "")
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", WrapExtractError(op, ErrInvalidPDF, err.Error())
	}
	defer func() { _ = f.Close() }()

	var out strings.Builder
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= r.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return "", WrapExtractError(op, ctx.Err(), "")
		default:
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		text, pageErr := page.GetPlainText(fonts)
		if pageErr != nil {
			// A single undecodable page should not sink the document.
			continue
		}
		out.WriteString(text)
		out.WriteString("\n")
	}

	return out.String(), nil
}

// checkPDFHeader rejects files that do not start with the %PDF magic bytes
// before the parser touches them.
func checkPDFHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil {
		return ErrInvalidPDF
	}
	if string(header) != "%PDF" {
		return ErrInvalidPDF
	}
	return nil
}
