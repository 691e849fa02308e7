package provider

import "context"

const (
	openRouterBaseURL          = "https://openrouter.ai/api/v1"
	openRouterDefaultMaxTokens = 2420
)

// NewOpenRouterProvider builds an adapter for OpenRouter, which exposes
// the chat-completions protocol under its own base URL. The larger
// token ceiling leaves room for reasoning models that emit thinking
// tokens before the payload.
func NewOpenRouterProvider(apiKey string) *OpenAIProvider {
	return newChatCompletionsProvider(openRouterBaseURL, apiKey, openRouterDefaultMaxTokens)
}

// DeepseekProvider routes everything to one pinned DeepSeek model on
// OpenRouter. The model ignores structured-output hints, so the JSON
// flag is dropped and the response sanitizer carries the repair burden.
type DeepseekProvider struct {
	inner *OpenAIProvider
	model string
}

func NewDeepseekProvider(apiKey, model string) *DeepseekProvider {
	return &DeepseekProvider{
		inner: newChatCompletionsProvider(openRouterBaseURL, apiKey, openRouterDefaultMaxTokens),
		model: model,
	}
}

func (p *DeepseekProvider) Generate(ctx context.Context, req Request) (string, error) {
	req.Model = p.model
	req.JSONOutput = false
	return p.inner.Generate(ctx, req)
}
