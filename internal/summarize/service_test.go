package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func TestSummarizeEmptyInputSkipsRemoteCall(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		gen := &stubGenerator{response: "should not be called"}
		svc := NewService(gen)

		outcome := svc.Summarize(context.Background(), text)

		if outcome.Status != StatusEmpty {
			t.Errorf("input %q: expected StatusEmpty, got %v", text, outcome.Status)
		}
		if gen.calls != 0 {
			t.Errorf("input %q: expected no generator calls, got %d", text, gen.calls)
		}
	}
}

func TestSummarizeTruncatesInput(t *testing.T) {
	gen := &stubGenerator{response: "summary"}
	svc := NewService(gen)

	long := strings.Repeat("x", DefaultMaxChars+500)
	outcome := svc.Summarize(context.Background(), long)

	if outcome.Status != StatusOK {
		t.Fatalf("unexpected status: %v", outcome.Status)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
	prompt := gen.prompts[0]
	if !strings.HasPrefix(prompt, "Summarize this medical report simply:") {
		t.Fatalf("prompt missing instruction prefix: %q", prompt[:60])
	}
	sourceChars := strings.Count(prompt, "x")
	if sourceChars != DefaultMaxChars {
		t.Fatalf("expected %d source chars in prompt, got %d", DefaultMaxChars, sourceChars)
	}
}

func TestSummarizeShortInputIsNotTruncated(t *testing.T) {
	gen := &stubGenerator{response: "summary"}
	svc := NewService(gen)

	svc.Summarize(context.Background(), "short report")

	if !strings.Contains(gen.prompts[0], "short report") {
		t.Fatalf("prompt should carry the full input, got %q", gen.prompts[0])
	}
}

func TestSummarizeRemoteFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := NewService(gen)

	outcome := svc.Summarize(context.Background(), "some report text")

	if outcome.Status != StatusFailed {
		t.Fatalf("expected StatusFailed, got %v", outcome.Status)
	}
	if !strings.Contains(outcome.Reason, "quota exceeded") {
		t.Fatalf("expected reason to carry remote error, got %q", outcome.Reason)
	}
	if outcome.Summary != "" {
		t.Fatalf("failed outcome must not carry a summary, got %q", outcome.Summary)
	}
}

func TestSummarizeBlankResponseIsFailure(t *testing.T) {
	gen := &stubGenerator{response: "   "}
	svc := NewService(gen)

	outcome := svc.Summarize(context.Background(), "some report text")

	if outcome.Status != StatusFailed {
		t.Fatalf("expected StatusFailed for blank response, got %v", outcome.Status)
	}
}

func TestSummarizeTrimsResponse(t *testing.T) {
	gen := &stubGenerator{response: "\n  The report is normal.  \n"}
	svc := NewService(gen)

	outcome := svc.Summarize(context.Background(), "some report text")

	if outcome.Summary != "The report is normal." {
		t.Fatalf("expected trimmed summary, got %q", outcome.Summary)
	}
}

func TestWithMaxChars(t *testing.T) {
	gen := &stubGenerator{response: "summary"}
	svc := NewService(gen, WithMaxChars(10))

	// Count a character the instruction prefix does not contain, so only
	// the source text is measured.
	svc.Summarize(context.Background(), strings.Repeat("q", 100))

	if got := strings.Count(gen.prompts[0], "q"); got != 10 {
		t.Fatalf("expected 10 source chars, got %d", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"shorter than max", "abc", 10, "abc"},
		{"exactly max", "abcde", 5, "abcde"},
		{"longer than max", "abcdef", 3, "abc"},
		{"zero max keeps text", "abc", 0, "abc"},
		{"multibyte not split", "héllo wörld", 7, "héllo w"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.text, tc.max); got != tc.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.text, tc.max, got, tc.want)
			}
		})
	}
}
