package factory

import (
	"context"
	"testing"

	"tigaraksa-chat-be/pkg/llm"
	"tigaraksa-chat-be/pkg/llm/ollama"
	"tigaraksa-chat-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStreamingProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewStreamingProvider(ctx, ProviderConfig{Type: "groq", ModelName: "openai/gpt-oss-20b", APIKey: "k"})
	require.NoError(t, err)
	groq, ok := p.(*openai.Provider)
	require.True(t, ok)
	assert.Equal(t, openai.GroqBaseURL, groq.BaseURL)

	p, err = NewStreamingProvider(ctx, ProviderConfig{Type: "ollama", ModelName: "llama3"})
	require.NoError(t, err)
	local, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", local.BaseURL)
}

func TestNewStreamingProvider_MissingCredential(t *testing.T) {
	_, err := NewStreamingProvider(context.Background(), ProviderConfig{Type: "groq"})
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestNewStreamingProvider_Unsupported(t *testing.T) {
	_, err := NewStreamingProvider(context.Background(), ProviderConfig{Type: "bard", APIKey: "k"})
	assert.Error(t, err)
}
