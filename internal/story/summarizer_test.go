package story

import (
	"context"
	"errors"
	"testing"
	"time"

	"tale-server/internal/provider"
)

// mockGenerator implements Generator for testing.
type mockGenerator struct {
	generateFunc func(ctx context.Context, req provider.Request, overrideModel string) (string, error)
	requests     []provider.Request
	models       []string
}

func (m *mockGenerator) Generate(ctx context.Context, req provider.Request, overrideModel string) (string, error) {
	m.requests = append(m.requests, req)
	m.models = append(m.models, overrideModel)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req, overrideModel)
	}
	return "", errors.New("no generateFunc configured")
}

func TestSummarize_NoRecentDevelopments(t *testing.T) {
	gen := &mockGenerator{}
	s := NewSummarizer(gen, time.Minute, nil)

	got := s.Summarize(context.Background(), "Rotkäppchen", "Bisherige Handlung.", nil, SummaryOptions{})
	if got != "Bisherige Handlung." {
		t.Errorf("got %q, want existing summary unchanged", got)
	}
	if len(gen.requests) != 0 {
		t.Error("generator invoked with nothing to summarize")
	}
}

func TestSummarize_Success(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, req provider.Request, overrideModel string) (string, error) {
			return "  Das Mädchen folgte dem Pfad tiefer in den Wald hinein.  ", nil
		},
	}
	s := NewSummarizer(gen, time.Minute, nil)

	got := s.Summarize(context.Background(), "Rotkäppchen", "Altes Resümee.", []string{"> My choice: weiter"}, SummaryOptions{Temperature: 0.5})
	if got != "Das Mädchen folgte dem Pfad tiefer in den Wald hinein." {
		t.Errorf("got %q", got)
	}

	req := gen.requests[0]
	if req.MaxTokens != summaryMaxTokens {
		t.Errorf("max tokens = %d, want %d", req.MaxTokens, summaryMaxTokens)
	}
	if req.Timeout != time.Minute {
		t.Errorf("timeout = %v", req.Timeout)
	}
	if req.Temperature != 0.5 {
		t.Errorf("temperature = %v", req.Temperature)
	}
	if req.JSONOutput {
		t.Error("summary request must not ask for JSON output")
	}
}

func TestSummarize_RevertsOnError(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, req provider.Request, overrideModel string) (string, error) {
			return "", errors.New("upstream down")
		},
	}
	s := NewSummarizer(gen, time.Minute, nil)

	got := s.Summarize(context.Background(), "Rotkäppchen", "Altes Resümee.", []string{"neu"}, SummaryOptions{})
	if got != "Altes Resümee." {
		t.Errorf("got %q, want previous summary after failure", got)
	}
}

func TestSummarize_RevertsOnDegenerateOutput(t *testing.T) {
	for _, output := range []string{"", "   ", "Ok."} {
		gen := &mockGenerator{
			generateFunc: func(ctx context.Context, req provider.Request, overrideModel string) (string, error) {
				return output, nil
			},
		}
		s := NewSummarizer(gen, time.Minute, nil)

		got := s.Summarize(context.Background(), "Rotkäppchen", "Altes Resümee.", []string{"neu"}, SummaryOptions{})
		if got != "Altes Resümee." {
			t.Errorf("output %q: got %q, want previous summary", output, got)
		}
	}
}

func TestSummarize_PassesModelOverride(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, req provider.Request, overrideModel string) (string, error) {
			return "Eine ausreichend lange Zusammenfassung.", nil
		},
	}
	s := NewSummarizer(gen, time.Minute, nil)

	s.Summarize(context.Background(), "Rotkäppchen", "alt", []string{"neu"}, SummaryOptions{Model: "qwen/qwq-32b:free"})
	if gen.models[0] != "qwen/qwq-32b:free" {
		t.Errorf("model override = %q", gen.models[0])
	}
}
