package kg

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(db *mockDriver, client *mockLLM, embedder *mockEmbedder, chunks []string, dims int) *Engine {
	counter := 0
	return &Engine{
		db:         db,
		llm:        client,
		embedder:   embedder,
		extractor:  NewExtractor(client, extractPrompt),
		chunker:    &fakeSplitter{chunks: chunks},
		dimensions: dims,
		NewUUID: func() string {
			counter++
			return fmt.Sprintf("uuid-%d", counter)
		},
		ReadText: func(path string) (string, error) {
			return "full document text", nil
		},
	}
}

const emptyExtraction = `{"entities": [], "relationships": []}`

func TestProcessDocumentWritesChunkChain(t *testing.T) {
	db := &mockDriver{}
	client := &mockLLM{ResponseQueue: []string{emptyExtraction, emptyExtraction, emptyExtraction}}
	embedder := &mockEmbedder{Vector: []float32{0.1, 0.2, 0.3}}

	e := testEngine(db, client, embedder, []string{"chunk a", "chunk b", "chunk c"}, 3)

	err := e.ProcessDocument(context.Background(), "/data/apple.pdf", map[string]string{
		"name":   "APPLE INC",
		"ticker": "AAPL",
	})
	require.NoError(t, err)

	// Document merge first, normalized company name attached.
	assert.Contains(t, db.Queries[0], "MERGE (d:Document")
	assert.Equal(t, "Apple Inc.", db.Params[0]["company"])

	// Three chunk merges with monotonic indices, two NEXT_CHUNK links.
	var chunkIdx []int
	links := 0
	for i, q := range db.Queries {
		if strings.Contains(q, "MERGE (c:Chunk") {
			chunkIdx = append(chunkIdx, db.Params[i]["index"].(int))
		}
		if strings.Contains(q, "NEXT_CHUNK") {
			links++
		}
	}
	assert.Equal(t, []int{0, 1, 2}, chunkIdx)
	assert.Equal(t, 2, links)
}

func TestProcessDocumentSavesExtractedEntities(t *testing.T) {
	extraction := `{
		"entities": [{"name": "iPhone", "label": "Product"}],
		"relationships": [{"source": "Apple Inc.", "type": "OFFERS", "target": "iPhone"}]
	}`

	db := &mockDriver{}
	client := &mockLLM{ResponseQueue: []string{extraction}}
	embedder := &mockEmbedder{Vector: []float32{0.5}}

	e := testEngine(db, client, embedder, []string{"only chunk"}, 1)

	err := e.ProcessDocument(context.Background(), "/data/apple.pdf", map[string]string{"name": "Apple Inc."})
	require.NoError(t, err)

	joined := strings.Join(db.Queries, "\n")
	assert.Contains(t, joined, "MERGE (n:Product {name: $name})")
	assert.Contains(t, joined, "FROM_CHUNK")
	assert.Contains(t, joined, "[:OFFERS]")
}

func TestProcessDocumentRejectsDimensionMismatch(t *testing.T) {
	db := &mockDriver{}
	client := &mockLLM{ResponseQueue: []string{emptyExtraction}}
	embedder := &mockEmbedder{Vector: []float32{0.1, 0.2}}

	// Index configured for 3 dimensions, provider returns 2.
	e := testEngine(db, client, embedder, []string{"chunk"}, 3)

	err := e.ProcessDocument(context.Background(), "/data/x.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestProcessDocumentEmbedderFailure(t *testing.T) {
	db := &mockDriver{}
	client := &mockLLM{}
	embedder := &mockEmbedder{Err: assert.AnError}

	e := testEngine(db, client, embedder, []string{"chunk"}, 3)

	err := e.ProcessDocument(context.Background(), "/data/x.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed")
}

func TestProcessDocumentUnreadableFile(t *testing.T) {
	e := testEngine(&mockDriver{}, &mockLLM{}, &mockEmbedder{}, nil, 3)
	e.ReadText = func(path string) (string, error) {
		return "", fmt.Errorf("no extractable text in %s", path)
	}

	err := e.ProcessDocument(context.Background(), "/data/broken.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extractable text")
}

func TestNewEngineRequiresEmbedder(t *testing.T) {
	_, err := NewEngine(&mockDriver{}, &mockLLM{}, nil, testPipelineConfig(), extractPrompt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embedding support")
}
