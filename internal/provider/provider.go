// Package provider gives story generation a uniform interface over
// heterogeneous text-generation backends. Adapters differ only in
// request/response envelope shape: every one sends a system
// instruction plus a single user message and expects a single text
// completion back.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tale-server/internal/config"
)

var (
	ErrUnsupportedKind = errors.New("unsupported provider kind")
	ErrRequestFailed   = errors.New("provider request failed")
	ErrEmptyResponse   = errors.New("provider returned no completion")
	ErrInvalidProvider = errors.New("invalid provider configuration")
)

// Kind identifies one backend wire protocol.
type Kind string

const (
	KindOllama     Kind = "ollama"
	KindOpenAI     Kind = "openai_compatible"
	KindAnthropic  Kind = "anthropic"
	KindOpenRouter Kind = "openrouter"
	KindDeepseek   Kind = "deepseek_api"
)

// Request is the provider-agnostic generation request.
type Request struct {
	// System is the instruction prepended to the conversation.
	System string

	// User is the single user message.
	User string

	// Model is the provider-specific model name. The gateway fills it
	// in from the route table or the process defaults.
	Model string

	// Temperature is clamped into [0.0, 1.0] by the gateway.
	Temperature float64

	// MaxTokens caps the completion length; 0 means the adapter's own
	// default for its envelope.
	MaxTokens int

	// JSONOutput asks the backend for a JSON-object response where the
	// envelope supports a structured-output hint.
	JSONOutput bool

	// Timeout bounds the whole call. Summary-style calls run with a
	// short timeout, full generation calls with a long one.
	Timeout time.Duration
}

// Provider is one backend adapter. Implementations must be stateless
// and safe for concurrent use.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Route maps a public model identifier to a provider kind and the
// provider's own model name.
type Route struct {
	Kind      Kind
	ModelName string
}

// modelRoutes is the static mapping of public model identifiers to
// provider configurations.
var modelRoutes = buildRoutes(KindOpenRouter,
	"google/gemini-2.5-pro-exp-03-25:free",
	"google/gemini-2.0-flash-exp:free",
	"google/gemini-2.0-flash-thinking-exp-1219:free",
	"deepseek/deepseek-chat-v3-0324:free",
	"deepseek/deepseek-r1:free",
	"qwen/qwq-32b:free",
	"google/gemma-3-27b-it:free",
	"meta-llama/llama-3.3-70b-instruct:free",
	"meta-llama/llama-3.2-3b-instruct:free",
)

func buildRoutes(kind Kind, models ...string) map[string]Route {
	routes := make(map[string]Route, len(models))
	for _, m := range models {
		routes[m] = Route{Kind: kind, ModelName: m}
	}
	return routes
}

// ResolveRoute looks up the route for a public model identifier.
func ResolveRoute(model string) (Route, bool) {
	route, ok := modelRoutes[model]
	return route, ok
}

// Gateway dispatches generation requests to the adapter registered for
// the resolved provider kind. Transport failures come back as errors;
// no retry happens at this layer.
type Gateway struct {
	providers    map[Kind]Provider
	defaultKind  Kind
	defaultModel string
	log          *zap.Logger
}

// NewGateway builds the adapter registry from process configuration.
func NewGateway(cfg *config.Config, log *zap.Logger) (*Gateway, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ollama, err := NewOllamaProvider(cfg.OllamaURL)
	if err != nil {
		return nil, err
	}

	providers := map[Kind]Provider{
		KindOllama:     ollama,
		KindOpenAI:     NewOpenAIProvider(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey),
		KindAnthropic:  NewAnthropicProvider(cfg.AnthropicAPIKey),
		KindOpenRouter: NewOpenRouterProvider(cfg.OpenRouterAPIKey),
		KindDeepseek:   NewDeepseekProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel),
	}

	return &Gateway{
		providers:    providers,
		defaultKind:  Kind(cfg.LLMType),
		defaultModel: cfg.LLMModelName,
		log:          log,
	}, nil
}

// NewGatewayWithProviders builds a gateway from an explicit registry;
// used by tests and anywhere the adapters are constructed separately.
func NewGatewayWithProviders(providers map[Kind]Provider, defaultKind Kind, defaultModel string, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		providers:    providers,
		defaultKind:  defaultKind,
		defaultModel: defaultModel,
		log:          log,
	}
}

// Generate resolves the provider and model for the request, clamps the
// temperature, applies the per-call timeout, and dispatches. The
// returned string is the provider's raw textual payload; no JSON
// validation happens here.
func (g *Gateway) Generate(ctx context.Context, req Request, overrideModel string) (string, error) {
	kind := g.defaultKind
	model := g.defaultModel

	if overrideModel != "" {
		if route, ok := ResolveRoute(overrideModel); ok {
			kind = route.Kind
			model = route.ModelName
			g.log.Debug("using override model",
				zap.String("model", overrideModel),
				zap.String("kind", string(kind)))
		}
	}

	p, ok := g.providers[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	req.Model = model
	req.Temperature = clampTemperature(req.Temperature)

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	raw, err := p.Generate(ctx, req)
	if err != nil {
		g.log.Warn("generation failed",
			zap.String("kind", string(kind)),
			zap.String("model", model),
			zap.Error(err))
		return "", err
	}

	return raw, nil
}

// clampTemperature forces temperature into the valid [0.0, 1.0] range.
func clampTemperature(t float64) float64 {
	if t < 0.0 {
		return 0.0
	}
	if t > 1.0 {
		return 1.0
	}
	return t
}
