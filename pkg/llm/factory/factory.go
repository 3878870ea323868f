package factory

import (
	"context"
	"fmt"
	"time"

	"tigaraksa-chat-be/pkg/llm"
	"tigaraksa-chat-be/pkg/llm/eino"
	"tigaraksa-chat-be/pkg/llm/ollama"
	"tigaraksa-chat-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Type      string // "groq", "openai", "eino", "ollama"
	ModelName string
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
}

// RequiresCredential reports whether the provider type talks to a hosted API
// that needs an API key.
func RequiresCredential(providerType string) bool {
	switch providerType {
	case "ollama":
		return false
	default:
		return true
	}
}

func NewStreamingProvider(ctx context.Context, cfg ProviderConfig) (llm.StreamingProvider, error) {
	if RequiresCredential(cfg.Type) && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Type, llm.ErrMissingCredential)
	}

	switch cfg.Type {
	case "groq":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.GroqBaseURL
		}
		return openai.NewProvider("groq", baseURL, cfg.APIKey, cfg.ModelName), nil
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.OpenAIBaseURL
		}
		return openai.NewProvider("openai", baseURL, cfg.APIKey, cfg.ModelName), nil
	case "eino":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.GroqBaseURL
		}
		return eino.NewProvider(ctx, eino.Config{
			APIKey:    cfg.APIKey,
			BaseURL:   baseURL,
			ModelName: cfg.ModelName,
			Timeout:   cfg.Timeout,
		})
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.ModelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Type)
	}
}
