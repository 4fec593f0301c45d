// Package extract turns uploaded documents into plain text.
//
// Files are routed by extension: raster images (jpg, jpeg, png, bmp, tiff) go
// through an OCR backend, everything else is treated as a document container
// and read through a PDF parsing backend.
//
// Two OCR backends are available: a shared local Tesseract client (default)
// and Google Cloud Vision. Document parsing is pure-Go text-layer extraction
// by default, with Google Document AI as a remote alternative for scanned or
// layout-heavy documents. All backends are created once at startup and passed
// into the Service explicitly; none is loaded lazily.
package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"mediscope/internal/logger"
)

// MaxFileSizeBytes is the maximum input size accepted for extraction (20MB).
const MaxFileSizeBytes = 20 * 1024 * 1024

// Status classifies the outcome of an extraction attempt. A failed or empty
// extraction is reported here instead of being smuggled through the text as a
// sentinel string.
type Status string

const (
	// StatusOK means text was extracted.
	StatusOK Status = "ok"

	// StatusEmpty means the file was processed but yielded no text. This is
	// distinct from failure: a blank page and a corrupt file are different
	// conditions for the caller.
	StatusEmpty Status = "empty"

	// StatusFailed means the backend could not process the file.
	StatusFailed Status = "failed"
)

// Result is the outcome of extracting one file.
type Result struct {
	// Text is the whitespace-trimmed extracted text. Empty unless StatusOK.
	Text string

	// Status classifies the outcome.
	Status Status

	// Reason carries the failure message when Status is StatusFailed.
	Reason string
}

// ImageRecognizer produces text from a raster image file.
type ImageRecognizer interface {
	// Recognize runs OCR on the image at path and returns the raw text.
	Recognize(ctx context.Context, path string) (string, error)
}

// DocumentParser produces text from a multi-page document file.
type DocumentParser interface {
	// Parse reads the document at path and returns the concatenated text of
	// all pages, in page order.
	Parse(ctx context.Context, path string) (string, error)
}

// imageExtensions is the recognized raster-image set, matched case-insensitively.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

// IsImagePath reports whether the path's extension routes to the OCR backend.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Service routes files to the configured extraction backends.
type Service struct {
	images ImageRecognizer
	docs   DocumentParser
	log    zerolog.Logger
}

// NewService builds an extraction service around explicit backends.
func NewService(images ImageRecognizer, docs DocumentParser) *Service {
	return &Service{
		images: images,
		docs:   docs,
		log:    logger.WithComponent("extract"),
	}
}

// Extract produces the text of the file at path. It never returns an error:
// backend failures are reported through the Result status so a single bad file
// cannot fail a whole request.
func (s *Service) Extract(ctx context.Context, path string) Result {
	var (
		text string
		err  error
	)

	if IsImagePath(path) {
		text, err = s.images.Recognize(ctx, path)
	} else {
		text, err = s.docs.Parse(ctx, path)
	}

	if err != nil {
		s.log.Warn().
			Err(err).
			Str("file", filepath.Base(path)).
			Msg("Extraction failed")
		return Result{Status: StatusFailed, Reason: err.Error()}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.log.Debug().
			Str("file", filepath.Base(path)).
			Msg("Extraction produced no text")
		return Result{Status: StatusEmpty}
	}

	s.log.Debug().
		Str("file", filepath.Base(path)).
		Int("text_length", len(text)).
		Msg("Extraction completed")
	return Result{Text: text, Status: StatusOK}
}
