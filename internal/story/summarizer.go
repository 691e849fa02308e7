package story

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tale-server/internal/provider"
)

const (
	summaryMaxTokens = 450

	// minSummaryLength guards against degenerate one-word or empty
	// summaries; anything shorter reverts to the previous summary.
	minSummaryLength = 10
)

// Generator dispatches one generation request, optionally routed to an
// override model. Satisfied by provider.Gateway.
type Generator interface {
	Generate(ctx context.Context, req provider.Request, overrideModel string) (string, error)
}

// Summarizer maintains the running story summary. It is best-effort:
// a failed or degenerate refresh keeps the previous summary so a turn
// never dies on summarization alone.
type Summarizer struct {
	generator Generator
	timeout   time.Duration
	log       *zap.Logger
}

func NewSummarizer(generator Generator, timeout time.Duration, log *zap.Logger) *Summarizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Summarizer{generator: generator, timeout: timeout, log: log}
}

// SummaryOptions are per-call overrides from the debug configuration.
type SummaryOptions struct {
	Model        string
	SystemPrompt string
	Temperature  float64
}

// Summarize condenses the existing summary and the recent developments
// into an updated one. With no recent developments the existing
// summary passes through unchanged.
func (s *Summarizer) Summarize(ctx context.Context, taleTitle, existing string, recent []string, opts SummaryOptions) string {
	if len(recent) == 0 {
		return existing
	}

	raw, err := s.generator.Generate(ctx, provider.Request{
		System:      buildSummarySystemPrompt(opts.SystemPrompt, taleTitle, existing),
		User:        buildSummaryUserPrompt(existing, recent),
		Temperature: opts.Temperature,
		MaxTokens:   summaryMaxTokens,
		Timeout:     s.timeout,
	}, opts.Model)
	if err != nil {
		s.log.Warn("summary refresh failed, keeping previous summary",
			zap.String("tale", taleTitle),
			zap.Error(err))
		return existing
	}

	updated := strings.TrimSpace(raw)
	if len(updated) < minSummaryLength {
		s.log.Warn("summary too short, keeping previous summary",
			zap.String("tale", taleTitle),
			zap.Int("length", len(updated)))
		return existing
	}
	return updated
}
