// Package server exposes the loaded graph over HTTP for interactive use:
// GraphRAG search plus a small stats endpoint.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/edgarlab/filinggraph/internal/graph"
	"github.com/edgarlab/filinggraph/internal/llm"
	"github.com/edgarlab/filinggraph/internal/rag"
)

const defaultTopK = 5

// companyRiskQuery enriches vector hits with the owning company and its
// risk factors for the vector_cypher retriever.
const companyRiskQuery = `
	MATCH (node)<-[:FROM_CHUNK]-(company:Company)-[:FACES_RISK]->(risk:RiskFactor)
	WITH node, score, company, collect(DISTINCT risk.name)[0..5] AS risks
	RETURN company.name AS company, risks, node.text AS context, score
`

type Server struct {
	db       graph.Driver
	client   llm.Client
	embedder llm.Embedder
}

func NewServer(db graph.Driver, client llm.Client, embedder llm.Embedder) *Server {
	return &Server{db: db, client: client, embedder: embedder}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.GET("/stats", s.Stats)
	r.POST("/search", s.Search)

	return r
}

func (s *Server) Health(c *gin.Context) {
	if _, err := s.db.ExecuteQuery(c.Request.Context(), "RETURN 1", nil); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	nodes, err := s.db.ExecuteQuery(ctx, graph.CountTotalNodesQuery, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count nodes"})
		return
	}
	var total int64
	if len(nodes.Records) > 0 {
		v, _ := nodes.Records[0].Get("total")
		total, _ = v.(int64)
	}

	rels, err := s.db.ExecuteQuery(ctx, graph.CountRelationshipsQuery, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count relationships"})
		return
	}
	relCounts := gin.H{}
	for _, rec := range rels.Records {
		relType, _ := rec.Get("type")
		count, _ := rec.Get("count")
		if name, ok := relType.(string); ok {
			relCounts[name] = count
		}
	}

	c.JSON(http.StatusOK, gin.H{"nodes": total, "relationships": relCounts})
}

type SearchRequest struct {
	Query     string `json:"query" binding:"required"`
	Retriever string `json:"retriever"`
	TopK      int    `json:"top_k"`
}

func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	retriever, err := s.retrieverFor(req.Retriever)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := rag.NewGraphRAG(retriever, s.client).Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		logrus.Errorf("Search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":    resp.Answer,
		"results":   resp.Items,
		"retriever": req.Retriever,
	})
}

func (s *Server) retrieverFor(name string) (rag.Retriever, error) {
	switch name {
	case "", "vector":
		return rag.NewVectorRetriever(s.db, s.embedder), nil
	case "hybrid":
		return rag.NewHybridRetriever(s.db, s.embedder), nil
	case "vector_cypher":
		return rag.NewVectorCypherRetriever(s.db, s.embedder, companyRiskQuery), nil
	default:
		return nil, fmt.Errorf("unknown retriever: %s (expected vector, hybrid, or vector_cypher)", name)
	}
}
