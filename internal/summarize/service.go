// Package summarize produces a plain-language summary of extracted report
// text through a remote generative-text service.
//
// The input is truncated to a bounded prefix before it leaves the process, and
// the prompt carries a fixed instruction; the remote model is otherwise
// treated as opaque. Failures never raise out of Summarize: the Outcome status
// tells the caller whether a summary was produced, the input was empty, or the
// remote call failed.
package summarize

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mediscope/internal/logger"
)

// DefaultMaxChars is the hard cutoff applied to input text before the remote
// call. The cutoff is character-based, not token- or sentence-aware.
const DefaultMaxChars = 4000

// instruction is the fixed prompt prefix sent with every request.
const instruction = "Summarize this medical report simply:"

// Status classifies the outcome of a summarization attempt.
type Status string

const (
	// StatusOK means the remote service produced a summary.
	StatusOK Status = "ok"

	// StatusEmpty means there was nothing to summarize; no remote call was made.
	StatusEmpty Status = "empty"

	// StatusFailed means the remote call failed or returned no text.
	StatusFailed Status = "failed"
)

// Outcome is the structured result of one summarization.
type Outcome struct {
	// Summary is the whitespace-trimmed summary text. Empty unless StatusOK.
	Summary string

	// Status classifies the outcome.
	Status Status

	// Reason carries the failure message when Status is StatusFailed.
	Reason string
}

// Generator issues a single synchronous completion request to a remote
// generative-text service.
type Generator interface {
	// Generate sends the prompt and returns the produced text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service truncates report text and drives the configured Generator.
type Service struct {
	generator Generator
	maxChars  int
	timeout   time.Duration
	log       zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithMaxChars overrides the input truncation limit.
func WithMaxChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithTimeout bounds each remote call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService builds a summarization service around an explicit generator.
func NewService(generator Generator, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		maxChars:  DefaultMaxChars,
		timeout:   60 * time.Second,
		log:       logger.WithComponent("summarize"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize produces a summary of text. Empty or whitespace-only input
// short-circuits to StatusEmpty without contacting the remote service.
func (s *Service) Summarize(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Status: StatusEmpty}
	}

	truncated := Truncate(text, s.maxChars)
	prompt := instruction + "\n\n" + truncated

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	summary, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn().
			Err(err).
			Int("input_length", len(text)).
			Msg("Summarization failed")
		return Outcome{Status: StatusFailed, Reason: err.Error()}
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		s.log.Warn().
			Int("input_length", len(text)).
			Msg("Remote service returned no summary text")
		return Outcome{Status: StatusFailed, Reason: "model returned no text"}
	}

	s.log.Debug().
		Int("input_length", len(text)).
		Int("summary_length", len(summary)).
		Dur("duration", time.Since(start)).
		Msg("Summarization completed")
	return Outcome{Summary: summary, Status: StatusOK}
}

// Truncate returns at most max characters of text. The cut is rune-safe so a
// multi-byte character is never split.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
