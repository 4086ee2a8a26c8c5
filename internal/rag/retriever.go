package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/edgarlab/filinggraph/internal/graph"
	"github.com/edgarlab/filinggraph/internal/llm"
)

// Item is one scored piece of retrieved context.
type Item struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Retriever finds context for a question.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Item, error)
}

const vectorQuery = `
	CALL db.index.vector.queryNodes($index, $k, $embedding)
	YIELD node, score
	RETURN node.text AS text, score
`

// VectorRetriever answers with the chunks nearest the query embedding.
type VectorRetriever struct {
	db       graph.Driver
	embedder llm.Embedder
}

func NewVectorRetriever(db graph.Driver, embedder llm.Embedder) *VectorRetriever {
	return &VectorRetriever{db: db, embedder: embedder}
}

func (r *VectorRetriever) Search(ctx context.Context, query string, topK int) ([]Item, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	res, err := r.db.ExecuteQuery(ctx, vectorQuery, map[string]interface{}{
		"index":     graph.VectorIndexName,
		"k":         topK,
		"embedding": embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return itemsFromRecords(res, "text"), nil
}

const fulltextQuery = `
	CALL db.index.fulltext.queryNodes($index, $query)
	YIELD node, score
	RETURN node.text AS text, score
	LIMIT $k
`

// HybridRetriever merges vector and fulltext results, normalizing each score
// list to [0, 1] before combining so neither signal dominates.
type HybridRetriever struct {
	db       graph.Driver
	embedder llm.Embedder
}

func NewHybridRetriever(db graph.Driver, embedder llm.Embedder) *HybridRetriever {
	return &HybridRetriever{db: db, embedder: embedder}
}

func (r *HybridRetriever) Search(ctx context.Context, query string, topK int) ([]Item, error) {
	vector := NewVectorRetriever(r.db, r.embedder)
	vectorItems, err := vector.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecuteQuery(ctx, fulltextQuery, map[string]interface{}{
		"index": graph.FulltextChunkName,
		"query": query,
		"k":     topK,
	})
	if err != nil {
		return nil, fmt.Errorf("fulltext search failed: %w", err)
	}
	keywordItems := itemsFromRecords(res, "text")

	merged := map[string]float64{}
	for _, it := range normalize(vectorItems) {
		merged[it.Content] = it.Score
	}
	for _, it := range normalize(keywordItems) {
		if existing, ok := merged[it.Content]; !ok || it.Score > existing {
			merged[it.Content] = it.Score
		}
	}

	items := make([]Item, 0, len(merged))
	for content, score := range merged {
		items = append(items, Item{Content: content, Score: score})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > topK {
		items = items[:topK]
	}
	return items, nil
}

// VectorCypherRetriever runs a vector search and hands each hit to a
// traversal query, so the retrieved context carries graph structure, not
// just chunk text. The retrieval query sees `node` and `score`.
type VectorCypherRetriever struct {
	db             graph.Driver
	embedder       llm.Embedder
	retrievalQuery string
}

func NewVectorCypherRetriever(db graph.Driver, embedder llm.Embedder, retrievalQuery string) *VectorCypherRetriever {
	return &VectorCypherRetriever{db: db, embedder: embedder, retrievalQuery: retrievalQuery}
}

func (r *VectorCypherRetriever) Search(ctx context.Context, query string, topK int) ([]Item, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	cypher := `
		CALL db.index.vector.queryNodes($index, $k, $embedding)
		YIELD node, score
	` + r.retrievalQuery

	res, err := r.db.ExecuteQuery(ctx, cypher, map[string]interface{}{
		"index":     graph.VectorIndexName,
		"k":         topK,
		"embedding": embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("vector cypher search failed: %w", err)
	}

	var items []Item
	for _, rec := range res.Records {
		content := ""
		for i, key := range rec.Keys {
			if key == "score" {
				continue
			}
			content += fmt.Sprintf("%s: %v\n", key, rec.Values[i])
		}
		score := 0.0
		if v, ok := rec.Get("score"); ok {
			if f, ok := v.(float64); ok {
				score = f
			}
		}
		items = append(items, Item{Content: content, Score: score})
	}
	return items, nil
}

func itemsFromRecords(res neo4j.EagerResult, key string) []Item {
	var items []Item
	for _, rec := range res.Records {
		text, _ := rec.Get(key)
		textStr, ok := text.(string)
		if !ok {
			continue
		}
		score := 0.0
		if v, ok := rec.Get("score"); ok {
			if f, ok := v.(float64); ok {
				score = f
			}
		}
		items = append(items, Item{Content: textStr, Score: score})
	}
	return items
}

func normalize(items []Item) []Item {
	var max float64
	for _, it := range items {
		if it.Score > max {
			max = it.Score
		}
	}
	if max == 0 {
		return items
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{Content: it.Content, Score: it.Score / max}
	}
	return out
}
