package story

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tale-server/internal/provider"
	"tale-server/internal/sanitize"
)

var (
	ErrNoAction         = errors.New("no valid action provided")
	ErrGenerationFailed = errors.New("scene generation failed")
	ErrInvalidResponse  = errors.New("model produced no usable response")
)

const defaultTemperature = 0.7

// ContextRetriever supplies grounding context from the original tale
// for a query. Satisfied by rag.Retriever.
type ContextRetriever interface {
	Retrieve(ctx context.Context, taleTitle, query string, topK int) string
}

// Engine runs one complete turn. The summary refresh and the context
// retrieval are independent, so they run concurrently; generation
// waits for both.
type Engine struct {
	generator  Generator
	retriever  ContextRetriever
	summarizer *Summarizer
	genTimeout time.Duration
	log        *zap.Logger
}

func NewEngine(generator Generator, retriever ContextRetriever, summarizer *Summarizer, genTimeout time.Duration, log *zap.Logger) (*Engine, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever cannot be nil")
	}
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		generator:  generator,
		retriever:  retriever,
		summarizer: summarizer,
		genTimeout: genTimeout,
		log:        log,
	}, nil
}

// actionLine renders the player's action as a history entry. Choice
// wins when both fields are set.
func actionLine(a Action) (string, error) {
	switch {
	case a.Choice != "":
		return fmt.Sprintf("> My choice: %s", a.Choice), nil
	case a.CustomInput != "":
		return fmt.Sprintf("> My custom action: %s", a.CustomInput), nil
	default:
		return "", ErrNoAction
	}
}

// Run executes the turn pipeline and returns the generated scene. The
// returned errors distinguish client faults (ErrNoAction) from
// upstream faults (ErrGenerationFailed, ErrInvalidResponse).
func (e *Engine) Run(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	line, err := actionLine(req.Action)
	if err != nil {
		return nil, err
	}

	history := make([]string, 0, len(req.StoryHistory)+1)
	history = append(history, req.StoryHistory...)
	history = append(history, line)

	temperature := defaultTemperature
	var storyModel, summaryModel, systemPrompt, summaryPrompt string
	if dc := req.DebugConfig; dc != nil {
		storyModel = dc.StoryModel
		summaryModel = dc.SummaryModel
		systemPrompt = dc.SystemPrompt
		summaryPrompt = dc.SummarySystemPrompt
		if dc.Temperature != nil {
			temperature = *dc.Temperature
		}
	}

	e.log.Info("turn started",
		zap.String("tale", req.TaleID),
		zap.Int("turn", req.CurrentTurnNumber),
		zap.Int("history", len(req.StoryHistory)))

	summaryCh := make(chan string, 1)
	contextCh := make(chan string, 1)

	go func() {
		window := tailWindow(req.StoryHistory, summaryLookback)
		recent := make([]string, 0, len(window)+1)
		recent = append(recent, window...)
		recent = append(recent, line)
		summaryCh <- e.summarizer.Summarize(ctx, req.TaleID, req.CurrentSummary, recent, SummaryOptions{
			Model:        summaryModel,
			SystemPrompt: summaryPrompt,
			Temperature:  temperature,
		})
	}()

	go func() {
		query := strings.Join(tailWindow(history, maxHistoryForQuery), "\n")
		contextCh <- e.retriever.Retrieve(ctx, req.TaleID, query, retrievalTopK)
	}()

	summary := <-summaryCh
	taleContext := <-contextCh

	raw, err := e.generator.Generate(ctx, provider.Request{
		System:      buildNarratorSystemPrompt(systemPrompt, req.TaleID, summary, taleContext),
		User:        buildNarratorUserPrompt(history),
		Temperature: temperature,
		JSONOutput:  true,
		Timeout:     e.genTimeout,
	}, storyModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	parsed := sanitize.Sanitize(raw)
	if parsed == nil {
		e.log.Error("response could not be sanitized",
			zap.String("tale", req.TaleID),
			zap.Int("raw_length", len(raw)))
		return nil, ErrInvalidResponse
	}

	resp := &TurnResponse{
		StorySegment:   parsed.StorySegment,
		Choices:        parsed.Choices,
		UpdatedSummary: summary,
		NextTurnNumber: req.CurrentTurnNumber + 1,
	}
	if req.DebugConfig != nil {
		resp.RawResponse = raw
	}

	e.log.Info("turn completed",
		zap.String("tale", req.TaleID),
		zap.Int("next_turn", resp.NextTurnNumber),
		zap.Int("choices", len(resp.Choices)))
	return resp, nil
}
