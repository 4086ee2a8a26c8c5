package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearDatabase(t *testing.T) {
	deleteCalls := 0
	db := &mockDriver{
		ExecFunc: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
			switch {
			case strings.Contains(query, "SHOW CONSTRAINTS"):
				return neo4j.EagerResult{Records: []*neo4j.Record{
					record([]string{"name"}, "unique_company_name"),
				}}, nil
			case strings.Contains(query, "SHOW INDEXES"):
				return neo4j.EagerResult{Records: []*neo4j.Record{
					record([]string{"name"}, "chunkEmbeddings"),
					record([]string{"name"}, "chunkText"),
				}}, nil
			case strings.Contains(query, "DETACH DELETE"):
				deleteCalls++
				// First batch deletes 500, second batch finds nothing.
				if deleteCalls == 1 {
					return neo4j.EagerResult{Records: []*neo4j.Record{
						record([]string{"deleted"}, int64(500)),
					}}, nil
				}
				return neo4j.EagerResult{Records: []*neo4j.Record{
					record([]string{"deleted"}, int64(0)),
				}}, nil
			}
			return neo4j.EagerResult{}, nil
		},
	}

	require.NoError(t, ClearDatabase(context.Background(), db))

	joined := strings.Join(db.Queries, "\n")
	assert.Contains(t, joined, "DROP CONSTRAINT unique_company_name IF EXISTS")
	assert.Contains(t, joined, "DROP INDEX chunkEmbeddings IF EXISTS")
	assert.Contains(t, joined, "DROP INDEX chunkText IF EXISTS")
	assert.Equal(t, 2, deleteCalls)
}
