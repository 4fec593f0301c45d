package extract

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrFileTooLarge is returned when the input exceeds the maximum file size limit.
	ErrFileTooLarge = errors.New("file size exceeds the maximum limit (20MB)")

	// ErrInvalidPDF is returned when the provided data is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrOCRFailed is returned when the OCR backend fails to process the image.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when the Google Cloud backends are selected
	// but neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrEmptyDocument is returned when the input contains no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")
)

// ExtractError wraps errors with additional context about the extraction failure.
type ExtractError struct {
	// Op is the operation that failed (e.g., "Recognize", "Parse").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("extract: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractError wraps an error as an ExtractError if it isn't already one.
func WrapExtractError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var exErr *ExtractError
	if errors.As(err, &exErr) {
		return err // Already wrapped
	}

	return &ExtractError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
