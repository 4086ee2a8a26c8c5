package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgarlab/filinggraph/internal/config"
)

// NewClient builds the text and embedding clients for the configured
// provider. Providers without embedding support return a nil Embedder so
// callers can detect the gap instead of failing at request time.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, Embedder, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "azure":
		// Azure AI Foundry exposes an OpenAI-compatible inference endpoint;
		// only the credential differs.
		token, err := azureToken(ctx)
		if err != nil {
			return nil, nil, err
		}
		c := NewOpenAIClient(token, cfg.Model, cfg.EmbeddingModel, cfg.InferenceEndpoint())
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return c, nil, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "ollama":
		baseURL := strings.TrimRight(cfg.BaseURL, "/")
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
