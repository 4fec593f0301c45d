package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubRecognizer struct {
	text  string
	err   error
	calls int
}

func (s *stubRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubParser struct {
	text  string
	err   error
	calls int
}

func (s *stubParser) Parse(ctx context.Context, path string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestIsImagePath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"scan.jpg", true},
		{"scan.JPG", true},
		{"scan.jpeg", true},
		{"photo.PNG", true},
		{"photo.bmp", true},
		{"fax.tiff", true},
		{"report.pdf", false},
		{"report.PDF", false},
		{"notes.txt", false},
		{"noextension", false},
		{"dir.png/report.pdf", false},
	}
	for _, tc := range cases {
		if got := IsImagePath(tc.path); got != tc.want {
			t.Errorf("IsImagePath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestExtractRoutesImagesToRecognizer(t *testing.T) {
	images := &stubRecognizer{text: "  recognized text  "}
	docs := &stubParser{text: "parsed text"}
	svc := NewService(images, docs)

	result := svc.Extract(context.Background(), "scan.PNG")

	if images.calls != 1 || docs.calls != 0 {
		t.Fatalf("expected recognizer call only, got recognizer=%d parser=%d", images.calls, docs.calls)
	}
	if result.Status != StatusOK {
		t.Fatalf("unexpected status: %v", result.Status)
	}
	if result.Text != "recognized text" {
		t.Fatalf("expected trimmed text, got %q", result.Text)
	}
}

func TestExtractRoutesDocumentsToParser(t *testing.T) {
	images := &stubRecognizer{text: "recognized text"}
	docs := &stubParser{text: "page one\npage two\n"}
	svc := NewService(images, docs)

	result := svc.Extract(context.Background(), "report.pdf")

	if images.calls != 0 || docs.calls != 1 {
		t.Fatalf("expected parser call only, got recognizer=%d parser=%d", images.calls, docs.calls)
	}
	if result.Status != StatusOK {
		t.Fatalf("unexpected status: %v", result.Status)
	}
	if result.Text != "page one\npage two" {
		t.Fatalf("unexpected text: %q", result.Text)
	}
}

func TestExtractEmptyTextIsStatusEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		svc := NewService(&stubRecognizer{text: text}, &stubParser{})
		result := svc.Extract(context.Background(), "blank.jpg")
		if result.Status != StatusEmpty {
			t.Errorf("text %q: expected StatusEmpty, got %v", text, result.Status)
		}
		if result.Text != "" {
			t.Errorf("text %q: expected no text, got %q", text, result.Text)
		}
	}
}

func TestExtractBackendFailureIsStatusFailed(t *testing.T) {
	backendErr := errors.New("boom")
	svc := NewService(&stubRecognizer{err: backendErr}, &stubParser{err: backendErr})

	for _, path := range []string{"corrupt.png", "corrupt.pdf"} {
		result := svc.Extract(context.Background(), path)
		if result.Status != StatusFailed {
			t.Errorf("%s: expected StatusFailed, got %v", path, result.Status)
		}
		if !strings.Contains(result.Reason, "boom") {
			t.Errorf("%s: expected reason to carry backend error, got %q", path, result.Reason)
		}
		if result.Text != "" {
			t.Errorf("%s: failed result must not carry text, got %q", path, result.Text)
		}
	}
}

func TestTextLayerParserRejectsMissingFile(t *testing.T) {
	parser := NewTextLayerParser()
	_, err := parser.Parse(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTextLayerParserRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	parser := NewTextLayerParser()
	_, err := parser.Parse(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for non-PDF content")
	}
	if !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}
}

func TestWrapExtractErrorPreservesSentinels(t *testing.T) {
	err := WrapExtractError("Parse", ErrFileTooLarge, "file size: 42 bytes")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected wrapped error to match sentinel, got %v", err)
	}

	// Wrapping an already-wrapped error must not stack wrappers.
	rewrapped := WrapExtractError("Extract", err, "")
	if rewrapped != err {
		t.Fatalf("expected idempotent wrapping, got %v", rewrapped)
	}

	if WrapExtractError("Parse", nil, "") != nil {
		t.Fatal("wrapping nil must return nil")
	}
}
