package llm

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

// retryClient wraps a Client/Embedder pair with exponential backoff for
// transient provider errors. Attempts counts the total calls, not only the
// retries.
type retryClient struct {
	client   Client
	embedder Embedder
	attempts uint64
}

// WithRetry decorates the given clients with a retry policy. A nil embedder
// stays nil.
func WithRetry(client Client, embedder Embedder, maxAttempts int) (Client, Embedder) {
	if maxAttempts <= 1 {
		return client, embedder
	}
	rc := &retryClient{
		client:   client,
		embedder: embedder,
		attempts: uint64(maxAttempts),
	}
	if embedder == nil {
		return rc, nil
	}
	return rc, rc
}

func (r *retryClient) policy(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.attempts-1), ctx)
}

func (r *retryClient) Generate(ctx context.Context, prompt string) (string, error) {
	return backoff.RetryWithData(func() (string, error) {
		out, err := r.client.Generate(ctx, prompt)
		return out, classify(err)
	}, r.policy(ctx))
}

func (r *retryClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return backoff.RetryWithData(func() ([]float32, error) {
		vec, err := r.embedder.Embed(ctx, text)
		return vec, classify(err)
	}, r.policy(ctx))
}

// classify marks provider errors that cannot succeed on retry (bad auth,
// invalid request) as permanent. Everything else, rate limits and server
// errors included, stays retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var openaiAPIErr *openai.APIError
	if errors.As(err, &openaiAPIErr) && permanentStatus(openaiAPIErr.HTTPStatusCode) {
		return backoff.Permanent(err)
	}
	var openaiReqErr *openai.RequestError
	if errors.As(err, &openaiReqErr) && permanentStatus(openaiReqErr.HTTPStatusCode) {
		return backoff.Permanent(err)
	}

	var claudeAPIErr *anthropic.APIError
	if errors.As(err, &claudeAPIErr) {
		if claudeAPIErr.IsInvalidRequestErr() || claudeAPIErr.IsAuthenticationErr() ||
			claudeAPIErr.IsPermissionErr() || claudeAPIErr.IsNotFoundErr() ||
			claudeAPIErr.IsTooLargeErr() {
			return backoff.Permanent(err)
		}
	}
	var claudeReqErr *anthropic.RequestError
	if errors.As(err, &claudeReqErr) && permanentStatus(claudeReqErr.StatusCode) {
		return backoff.Permanent(err)
	}

	return err
}

func permanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != 429 && code != 408
}

func (r *retryClient) Close() error {
	CloseClients(r.client, r.embedder)
	return nil
}
