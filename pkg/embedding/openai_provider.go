package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
)

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// OpenAIProvider embeds text through any OpenAI-compatible embeddings endpoint.
// The eino embedder is created on first use and shared by all callers.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	handle *lazyHandle[*openai.Embedder]
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	p := &OpenAIProvider{cfg: cfg}
	p.handle = newLazyHandle(func(ctx context.Context) (*openai.Embedder, error) {
		embCfg := &openai.EmbeddingConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}
		// Dimensions must match the vector(384) column.
		if cfg.Dimensions > 0 {
			dims := cfg.Dimensions
			embCfg.Dimensions = &dims
		}
		return openai.NewEmbedder(ctx, embCfg)
	})
	return p
}

func (p *OpenAIProvider) Model() string {
	return p.cfg.Model
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := p.handle.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: init embedder: %v", ErrUnavailable, err)
	}

	res, err := emb.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(res) == 0 || len(res[0]) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrUnavailable)
	}

	return normalizeVector(toFloat32(res[0])), nil
}
