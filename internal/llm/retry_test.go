package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgarlab/filinggraph/internal/config"
)

type flakyClient struct {
	calls    int
	failures int
}

func (f *flakyClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", fmt.Errorf("transient error %d", f.calls)
	}
	return "ok", nil
}

func (f *flakyClient) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("transient error %d", f.calls)
	}
	return []float32{0.1, 0.2}, nil
}

func TestWithRetryRecoversFromTransientErrors(t *testing.T) {
	inner := &flakyClient{failures: 2}
	client, _ := WithRetry(inner, nil, 3)

	out, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, inner.calls)
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &flakyClient{failures: 10}
	client, _ := WithRetry(inner, nil, 2)

	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

type stuckClient struct {
	calls int
	err   error
}

func (s *stuckClient) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return "", s.err
}

func (s *stuckClient) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return nil, s.err
}

func TestWithRetryStopsOnAuthError(t *testing.T) {
	inner := &stuckClient{err: &openai.APIError{HTTPStatusCode: 401, Message: "invalid api key"}}
	client, _ := WithRetry(inner, nil, 5)

	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestWithRetryStopsOnClaudeInvalidRequest(t *testing.T) {
	inner := &stuckClient{err: &anthropic.APIError{Type: anthropic.ErrTypeInvalidRequest, Message: "bad request"}}
	client, _ := WithRetry(inner, nil, 5)

	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestWithRetryRetriesRateLimit(t *testing.T) {
	inner := &stuckClient{err: &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}}
	client, _ := WithRetry(inner, nil, 3)

	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestWithRetryKeepsNilEmbedderNil(t *testing.T) {
	inner := &flakyClient{}
	_, embedder := WithRetry(inner, nil, 3)
	assert.Nil(t, embedder)
}

func TestWithRetrySingleAttemptIsPassthrough(t *testing.T) {
	inner := &flakyClient{}
	client, embedder := WithRetry(inner, inner, 1)
	assert.Equal(t, Client(inner), client)
	assert.Equal(t, Embedder(inner), embedder)
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, _, err := NewClient(context.Background(), config.LLMConfig{Provider: "watson"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestNewClientClaudeHasNoEmbedder(t *testing.T) {
	client, embedder, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "claude",
		APIKey:   "key",
		Model:    "claude-sonnet-4-20250514",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Nil(t, embedder)
}
