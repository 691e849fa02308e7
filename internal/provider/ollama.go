package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaProvider generates text against a local Ollama daemon.
type OllamaProvider struct {
	client *api.Client
}

// NewOllamaProvider builds the adapter from the configured base URL.
// Legacy configurations point at the /api/generate endpoint directly;
// the suffix is stripped so the client gets the daemon root.
func NewOllamaProvider(rawURL string) (*OllamaProvider, error) {
	base := strings.TrimSuffix(rawURL, "/api/generate")
	base = strings.TrimSuffix(base, "/")

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama url %q: %v", ErrInvalidProvider, rawURL, err)
	}

	return &OllamaProvider{client: api.NewClient(u, http.DefaultClient)}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	stream := false
	gen := &api.GenerateRequest{
		Model:  req.Model,
		System: req.System,
		Prompt: req.User,
		Stream: &stream,
		Options: map[string]any{
			"temperature": req.Temperature,
		},
	}
	if req.JSONOutput {
		gen.Format = json.RawMessage(`"json"`)
	}

	var out strings.Builder
	err := p.client.Generate(ctx, gen, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %v", ErrRequestFailed, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%w: ollama model %s", ErrEmptyResponse, req.Model)
	}
	return out.String(), nil
}
