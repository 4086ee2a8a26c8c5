package kg

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edgarlab/filinggraph/internal/config"
	"github.com/edgarlab/filinggraph/internal/graph"
	"github.com/edgarlab/filinggraph/internal/llm"
	"github.com/edgarlab/filinggraph/internal/metadata"
)

type splitter interface {
	Split(text string) []string
}

// Engine turns one PDF filing into graph structure: Document and Chunk nodes
// with embeddings and a traversable chunk chain, plus extracted entities
// linked back to their source chunks. One Engine is shared across a whole
// batch; construction is the expensive part.
type Engine struct {
	db         graph.Driver
	llm        llm.Client
	embedder   llm.Embedder
	extractor  *Extractor
	chunker    splitter
	dimensions int

	// NewUUID and ReadText are swappable for deterministic tests.
	NewUUID  func() string
	ReadText func(path string) (string, error)
}

func NewEngine(db graph.Driver, client llm.Client, embedder llm.Embedder, cfg config.PipelineConfig, prompt string) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("the configured LLM provider has no embedding support")
	}
	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return &Engine{
		db:         db,
		llm:        client,
		embedder:   embedder,
		extractor:  NewExtractor(client, prompt),
		chunker:    chunker,
		dimensions: cfg.EmbeddingDimensions,
		NewUUID:    uuid.NewString,
		ReadText:   ExtractText,
	}, nil
}

// ProcessDocument runs the full extraction for a single file. Any error is
// returned to the caller; isolating one document's failure from the rest of
// the batch is the pipeline driver's job.
func (e *Engine) ProcessDocument(ctx context.Context, path string, meta map[string]string) error {
	text, err := e.ReadText(path)
	if err != nil {
		return err
	}

	chunks := e.chunker.Split(text)
	if len(chunks) == 0 {
		return fmt.Errorf("document %s produced no chunks", path)
	}

	company := metadata.NormalizeCompanyName(meta["name"])

	docParams := map[string]interface{}{
		"path":       path,
		"uuid":       e.NewUUID(),
		"name":       filepath.Base(path),
		"company":    company,
		"ticker":     meta["ticker"],
		"created_at": time.Now().UTC(),
	}
	if _, err := e.db.ExecuteQuery(ctx, graph.MergeDocumentQuery, docParams); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	prevUUID := ""
	for i, chunkText := range chunks {
		chunkUUID, err := e.writeChunk(ctx, path, chunkText, i, prevUUID)
		if err != nil {
			return err
		}
		if err := e.extractFromChunk(ctx, company, chunkText, chunkUUID); err != nil {
			return err
		}
		prevUUID = chunkUUID
	}

	logrus.Infof("Extracted %d chunks from %s", len(chunks), filepath.Base(path))
	return nil
}

func (e *Engine) writeChunk(ctx context.Context, docPath, text string, index int, prevUUID string) (string, error) {
	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to embed chunk %d: %w", index, err)
	}
	if len(vector) != e.dimensions {
		return "", fmt.Errorf("embedding dimension mismatch: provider returned %d, index configured for %d", len(vector), e.dimensions)
	}

	chunkUUID := e.NewUUID()
	params := map[string]interface{}{
		"document_path": docPath,
		"uuid":          chunkUUID,
		"text":          text,
		"index":         index,
		"embedding":     vector,
	}
	if _, err := e.db.ExecuteQuery(ctx, graph.MergeChunkQuery, params); err != nil {
		return "", fmt.Errorf("failed to save chunk %d: %w", index, err)
	}

	if prevUUID != "" {
		linkParams := map[string]interface{}{
			"prev_uuid": prevUUID,
			"next_uuid": chunkUUID,
		}
		if _, err := e.db.ExecuteQuery(ctx, graph.LinkNextChunkQuery, linkParams); err != nil {
			return "", fmt.Errorf("failed to link chunk %d: %w", index, err)
		}
	}

	return chunkUUID, nil
}

func (e *Engine) extractFromChunk(ctx context.Context, company, chunkText, chunkUUID string) error {
	entities, relationships, err := e.extractor.Extract(ctx, company, chunkText)
	if err != nil {
		return err
	}

	for _, ent := range entities {
		query := fmt.Sprintf(graph.MergeEntityQueryTemplate, ent.Label)
		props := ent.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		params := map[string]interface{}{
			"name":       ent.Name,
			"properties": props,
			"chunk_uuid": chunkUUID,
		}
		if _, err := e.db.ExecuteQuery(ctx, query, params); err != nil {
			return fmt.Errorf("failed to save %s %q: %w", ent.Label, ent.Name, err)
		}
	}

	for _, rel := range relationships {
		query := fmt.Sprintf(graph.MergeRelationshipQueryTemplate, rel.Type)
		params := map[string]interface{}{
			"source_name": rel.Source,
			"target_name": rel.Target,
		}
		if _, err := e.db.ExecuteQuery(ctx, query, params); err != nil {
			return fmt.Errorf("failed to save relationship %s: %w", rel.Type, err)
		}
	}

	return nil
}

// Close releases the network clients the engine holds.
func (e *Engine) Close(ctx context.Context) error {
	llm.CloseClients(e.llm, e.embedder)
	return nil
}
