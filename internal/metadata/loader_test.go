package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDriver struct {
	Queries []string
	Params  []map[string]interface{}
}

func (m *mockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	return neo4j.EagerResult{}, nil
}

func (m *mockDriver) Close(ctx context.Context) error { return nil }

func TestNormalizeCompanyName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"AMAZON", "Amazon.com, Inc."},
		{"amazon", "Amazon.com, Inc."},
		{"Mcdonalds Corp", "McDonald's Corporation"},
		{"PG&E CORP", "PG&E Corporation"},
		{"Unknown Industries", "Unknown Industries"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeCompanyName(tc.in), "input %q", tc.in)
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCompanyMetadata(t *testing.T) {
	path := writeFile(t, "filings.csv", `name,ticker,cik,cusip,path_Mac_ix
APPLE INC,AAPL,320193,037833100,/data/form10k/0000320193.pdf
AMAZON,AMZN,1018724,,/data/form10k/0001018724.pdf
No Path Co,NOPE,1,2,
`)

	companies, err := LoadCompanyMetadata(path)
	require.NoError(t, err)
	require.Len(t, companies, 2)

	apple := companies["0000320193.pdf"]
	assert.Equal(t, "APPLE INC", apple.Name)
	assert.Equal(t, "AAPL", apple.Ticker)
	assert.Equal(t, "320193", apple.CIK)

	amazon := companies["0001018724.pdf"]
	assert.Equal(t, "", amazon.CUSIP)
}

func TestLoadAssetManagers(t *testing.T) {
	path := writeFile(t, "holdings.csv", `managerName,companyName,shares
BlackRock Inc.,APPLE INC,1000000
Vanguard Group,AMAZON,not-a-number
`)

	holdings, err := LoadAssetManagers(path)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, int64(1000000), holdings[0].Shares)
	assert.Equal(t, int64(0), holdings[1].Shares)
}

func TestCreateCompanyNodesNormalizesNames(t *testing.T) {
	db := &mockDriver{}
	companies := map[string]CompanyMeta{
		"a.pdf": {Name: "APPLE INC", Ticker: "AAPL"},
	}

	require.NoError(t, CreateCompanyNodes(context.Background(), db, companies))
	require.Len(t, db.Params, 1)
	assert.Equal(t, "Apple Inc.", db.Params[0]["name"])
	assert.Equal(t, "AAPL", db.Params[0]["ticker"])
}

func TestCreateAssetManagerRelationships(t *testing.T) {
	db := &mockDriver{}
	holdings := []Holding{
		{ManagerName: "BlackRock Inc.", CompanyName: "MICROSOFT CORP", Shares: 42},
	}

	require.NoError(t, CreateAssetManagerRelationships(context.Background(), db, holdings))
	require.Len(t, db.Params, 1)
	assert.Equal(t, "Microsoft Corporation", db.Params[0]["company_name"])
	assert.Equal(t, int64(42), db.Params[0]["shares"])
}
