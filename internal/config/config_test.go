package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "")
	t.Setenv("RAG_SEARCH_DIRECTIVE", "/gambar")
	t.Setenv("LLM_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, 0.40, cfg.Rag.SimilarityThreshold)
	assert.Equal(t, 0.60, cfg.Rag.OverrideThreshold)
	assert.Equal(t, 5, cfg.Rag.DisplayLimit)
	assert.Equal(t, 2, cfg.Rag.OverFetchFactor)
	assert.Equal(t, "/gambar", cfg.Rag.SearchDirective)
	assert.Equal(t, 60*time.Second, cfg.Ai.CompletionTimeout)
}

func TestLoad_TypedOverrides(t *testing.T) {
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("RAG_INDEX_ON_STARTUP", "true")
	t.Setenv("RAG_RETRIEVAL_TIMEOUT", "3s")
	t.Setenv("EMBEDDING_CACHE_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 0.5, cfg.Rag.SimilarityThreshold)
	assert.True(t, cfg.Rag.IndexOnStartup)
	assert.Equal(t, 3*time.Second, cfg.Rag.RetrievalTimeout)
	assert.Equal(t, 128, cfg.Ai.EmbeddingCacheSize)
}

func TestChatEnabled(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		keys     APIKeys
		want     bool
	}{
		{"groq without key", "groq", APIKeys{}, false},
		{"groq with key", "groq", APIKeys{Groq: "gsk"}, true},
		{"openai uses its own key", "openai", APIKeys{Groq: "gsk"}, false},
		{"openai with key", "openai", APIKeys{OpenAI: "sk"}, true},
		{"eino falls back to groq key", "eino", APIKeys{Groq: "gsk"}, true},
		{"ollama needs nothing", "ollama", APIKeys{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Keys: tt.keys, Ai: AIConfig{LLMProvider: tt.provider}}
			assert.Equal(t, tt.want, cfg.ChatEnabled())
		})
	}
}
