package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgarlab/filinggraph/internal/llm"
)

const answerPrompt = `Answer the question using only the context below.
If the context does not contain the answer, say so.

Context:
%s

Question: %s

Answer:`

// GraphRAG combines a retriever with a generation step: retrieve top-k
// context, build a grounded prompt, generate an answer.
type GraphRAG struct {
	retriever Retriever
	llm       llm.Client
}

func NewGraphRAG(retriever Retriever, client llm.Client) *GraphRAG {
	return &GraphRAG{retriever: retriever, llm: client}
}

type Response struct {
	Answer string
	Items  []Item
}

func (g *GraphRAG) Search(ctx context.Context, query string, topK int) (*Response, error) {
	items, err := g.retriever.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &Response{Items: items}, nil
	}

	var contextParts []string
	for _, it := range items {
		contextParts = append(contextParts, it.Content)
	}
	prompt := fmt.Sprintf(answerPrompt, strings.Join(contextParts, "\n---\n"), query)

	answer, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &Response{
		Answer: strings.TrimSpace(answer),
		Items:  items,
	}, nil
}
