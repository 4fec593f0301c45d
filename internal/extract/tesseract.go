package extract

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs OCR through a single shared gosseract client.
// The client holds the loaded language model for the life of the process, so
// it is created once at startup rather than per call. It is not safe for
// concurrent use; the mutex serializes recognition across handlers.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractRecognizer creates the shared Tesseract client with the given
// languages (comma-separated, e.g. "eng" or "eng,deu").
func NewTesseractRecognizer(languages string) (*TesseractRecognizer, error) {
	const op = "NewTesseractRecognizer"

	client := gosseract.NewClient()
	langs := splitLanguages(languages)
	if len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			_ = client.Close()
			return nil, WrapExtractError(op, err, "set languages")
		}
	}
	return &TesseractRecognizer{client: client}, nil
}

// Recognize runs OCR on the image at path.
func (t *TesseractRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	const op = "Recognize"

	if err := ctx.Err(); err != nil {
		return "", WrapExtractError(op, err, "")
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", WrapExtractError(op, err, "stat file")
	}
	if info.Size() > MaxFileSizeBytes {
		return "", WrapExtractError(op, ErrFileTooLarge, "")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImage(path); err != nil {
		return "", WrapExtractError(op, ErrOCRFailed, err.Error())
	}
	text, err := t.client.Text()
	if err != nil {
		return "", WrapExtractError(op, ErrOCRFailed, err.Error())
	}
	return text, nil
}

// Close releases the Tesseract client.
func (t *TesseractRecognizer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

func splitLanguages(languages string) []string {
	var langs []string
	for _, lang := range strings.Split(languages, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}
