//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgarlab/filinggraph/internal/config"
	"github.com/edgarlab/filinggraph/internal/graph"
	"github.com/edgarlab/filinggraph/internal/kg"
	"github.com/edgarlab/filinggraph/internal/metadata"
)

func connectTestDriver(t *testing.T) (*graph.Neo4jDriver, config.Neo4jConfig) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("Skipping integration test: NEO4J_URI not set")
	}

	cfg := config.Neo4jConfig{
		URI:      uri,
		Username: os.Getenv("NEO4J_USERNAME"),
		Password: os.Getenv("NEO4J_PASSWORD"),
	}

	db, err := graph.Connect(context.Background(), cfg)
	require.NoError(t, err)
	return db, cfg
}

func TestSchemaAndMetadataFlow(t *testing.T) {
	db, _ := connectTestDriver(t)
	ctx := context.Background()
	defer db.Close(ctx)

	require.NoError(t, graph.ClearDatabase(ctx, db))

	schema := graph.NewSchemaManager(db, 1536)
	require.NoError(t, schema.ApplyConstraints(ctx, graph.PhaseCore))

	companies := map[string]metadata.CompanyMeta{
		"apple-10k.pdf": {Name: "APPLE INC", Ticker: "AAPL", CIK: "320193"},
	}
	require.NoError(t, metadata.CreateCompanyNodes(ctx, db, companies))

	res, err := db.ExecuteQuery(ctx, "MATCH (c:Company) RETURN c.name AS name", nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	name, _ := res.Records[0].Get("name")
	assert.Equal(t, "Apple Inc.", name)

	// Constraints are idempotent, a second application is a no-op.
	require.NoError(t, schema.ApplyConstraints(ctx, graph.PhaseCore))
	require.NoError(t, schema.ApplyConstraints(ctx, graph.PhaseExtraction))
	require.NoError(t, schema.CreateFulltextIndexes(ctx))

	require.NoError(t, graph.ClearDatabase(ctx, db))
}

func TestEntityResolutionFlow(t *testing.T) {
	db, _ := connectTestDriver(t)
	ctx := context.Background()
	defer db.Close(ctx)

	require.NoError(t, graph.ClearDatabase(ctx, db))

	_, err := db.ExecuteQuery(ctx, `
		CREATE (c:Company {name: 'Apple Inc.'})
		CREATE (a:RiskFactor {name: 'Supply Chain Disruption'})
		CREATE (b:RiskFactor {name: 'Supply Chain Disruptions'})
		CREATE (c)-[:FACES_RISK]->(a)
		CREATE (c)-[:FACES_RISK]->(b)
	`, nil)
	require.NoError(t, err)

	stats, err := kg.NewFuzzyResolver(db, 0.80).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Merged)

	res, err := db.ExecuteQuery(ctx, "MATCH (r:RiskFactor) RETURN count(r) AS count", nil)
	require.NoError(t, err)
	count, _ := res.Records[0].Get("count")
	assert.Equal(t, int64(1), count)

	require.NoError(t, graph.ClearDatabase(ctx, db))
}
