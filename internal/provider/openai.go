package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const openAIDefaultMaxTokens = 450

// OpenAIProvider speaks the OpenAI chat-completions envelope. It
// covers both the hosted API and any local server exposing the same
// protocol (LM Studio, vLLM), which is why the base URL is
// configurable.
type OpenAIProvider struct {
	client           openai.Client
	defaultMaxTokens int
}

// NewOpenAIProvider builds the adapter for an OpenAI-compatible
// endpoint. Local servers usually accept any key, so an empty key is
// allowed.
func NewOpenAIProvider(baseURL, apiKey string) *OpenAIProvider {
	return newChatCompletionsProvider(baseURL, apiKey, openAIDefaultMaxTokens)
}

func newChatCompletionsProvider(baseURL, apiKey string, defaultMaxTokens int) *OpenAIProvider {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIProvider{
		client:           openai.NewClient(opts...),
		defaultMaxTokens: defaultMaxTokens,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}
	if req.JSONOutput {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: model %s", ErrEmptyResponse, req.Model)
	}
	return completion.Choices[0].Message.Content, nil
}
