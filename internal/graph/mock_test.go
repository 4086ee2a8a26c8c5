package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type mockDriver struct {
	Queries []string
	Params  []map[string]interface{}

	// ExecFunc, when set, decides the result per query.
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

func (m *mockDriver) Close(ctx context.Context) error {
	return nil
}

func record(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}
