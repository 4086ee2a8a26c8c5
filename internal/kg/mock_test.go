package kg

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/edgarlab/filinggraph/internal/config"
)

type mockDriver struct {
	Queries []string
	Params  []map[string]interface{}

	ExecFunc func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
}

func (m *mockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.ExecFunc != nil {
		return m.ExecFunc(query, params)
	}
	return neo4j.EagerResult{}, nil
}

func (m *mockDriver) Close(ctx context.Context) error { return nil }

type mockLLM struct {
	ResponseQueue []string
	Err           error
	calls         int
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.calls >= len(m.ResponseQueue) {
		return "", fmt.Errorf("mock llm exhausted after %d calls", m.calls)
	}
	resp := m.ResponseQueue[m.calls]
	m.calls++
	return resp, nil
}

type mockEmbedder struct {
	Vector []float32
	Err    error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

type fakeSplitter struct {
	chunks []string
}

func (f *fakeSplitter) Split(text string) []string { return f.chunks }

func record(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ChunkSize:           100,
		ChunkOverlap:        10,
		EmbeddingDimensions: 3,
		MaxRetries:          1,
		ResolutionThreshold: 0.8,
	}
}
