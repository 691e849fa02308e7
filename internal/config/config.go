package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration, loaded from environment
// variables. Every external endpoint and tuning knob lives here so the
// service context can be constructed once at startup.
type Config struct {
	// Server settings
	Port           string   `envconfig:"SERVER_PORT" default:"8000"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding    string   `envconfig:"LOG_ENCODING" default:"json"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Default text-generation provider
	LLMType      string `envconfig:"LLM_TYPE" default:"openrouter"`
	LLMModelName string `envconfig:"LLM_MODEL_NAME" default:"google/gemini-2.0-flash-exp:free"`

	// Provider endpoints and credentials
	OllamaURL        string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OpenAIAPIURL     string `envconfig:"OPENAI_API_URL" default:"http://localhost:1234/v1"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterModel  string `envconfig:"OPENROUTER_MODEL" default:"google/gemini-2.0-flash-exp:free"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`

	// Call timeouts. Story generation is allowed to run much longer
	// than summarization.
	GenerateTimeout time.Duration `envconfig:"GENERATE_TIMEOUT" default:"900s"`
	SummaryTimeout  time.Duration `envconfig:"SUMMARY_TIMEOUT" default:"60s"`

	// Embeddings
	EmbedderModel     string `envconfig:"EMBEDDER_MODEL" default:"text-embedding-3-small"`
	EmbedderDimension int    `envconfig:"EMBEDDER_DIMENSION" default:"1536"`

	// Vector store
	MilvusAddress    string `envconfig:"MILVUS_ADDRESS" default:"localhost:19530"`
	MilvusCollection string `envconfig:"MILVUS_COLLECTION" default:"tale_chunks"`

	// Corpus metadata produced by the ingest command
	TaleMetadataPath string `envconfig:"TALE_METADATA_PATH" default:"./data/tale_metadata.json"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}
