package kg

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"Apple Inc.", "Apple Inc.", 1, 1},
		{"Apple Inc.", "apple inc.", 1, 1},
		{"Apple Inc.", "Apple Inc", 0.85, 0.95},
		{"Apple Inc.", "Microsoft", 0, 0.4},
		{"Currency risk", "iPhone 15 Pro Max lineup", 0, 0.3},
		{"", "Apple", 0, 0},
	}
	for _, tc := range cases {
		got := Similarity(tc.a, tc.b)
		assert.GreaterOrEqual(t, got, tc.min, "%q vs %q", tc.a, tc.b)
		assert.LessOrEqual(t, got, tc.max, "%q vs %q", tc.a, tc.b)
	}
}

func TestResolverMergesNearDuplicates(t *testing.T) {
	db := &mockDriver{
		ExecFunc: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
			if strings.Contains(query, "RETURN elementId(n) AS id") {
				if strings.Contains(query, ":RiskFactor") {
					return neo4j.EagerResult{Records: []*neo4j.Record{
						record([]string{"id", "name"}, "rf-1", "Supply chain disruption"),
						record([]string{"id", "name"}, "rf-2", "Supply chain disruptions"),
						record([]string{"id", "name"}, "rf-3", "Currency risk"),
					}}, nil
				}
				return neo4j.EagerResult{}, nil
			}
			return neo4j.EagerResult{}, nil
		},
	}

	r := NewFuzzyResolver(db, 0.80)
	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 1, stats.Merged)

	// The duplicate's relationships move to the survivor, then it is deleted.
	joined := strings.Join(db.Queries, "\n")
	assert.Contains(t, joined, "DETACH DELETE d")
	assert.Contains(t, joined, "FROM_CHUNK")

	var deleteParams map[string]interface{}
	for i, q := range db.Queries {
		if strings.Contains(q, "DETACH DELETE") {
			deleteParams = db.Params[i]
		}
	}
	require.NotNil(t, deleteParams)
	assert.Equal(t, "rf-2", deleteParams["dup"])
}

func TestResolverNoDuplicates(t *testing.T) {
	db := &mockDriver{
		ExecFunc: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
			if strings.Contains(query, ":Product") {
				return neo4j.EagerResult{Records: []*neo4j.Record{
					record([]string{"id", "name"}, "p-1", "iPhone"),
					record([]string{"id", "name"}, "p-2", "Azure"),
				}}, nil
			}
			return neo4j.EagerResult{}, nil
		},
	}

	r := NewFuzzyResolver(db, 0.80)
	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 0, stats.Merged)
}
