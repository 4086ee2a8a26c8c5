// Package samples runs read-only showcase queries against a loaded graph
// and renders the results as text tables.
package samples

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/edgarlab/filinggraph/internal/graph"
)

type Query struct {
	Title  string
	Cypher string
}

// Queries covers each corner of the graph: company metadata, every
// extracted label, the competitive landscape, ownership, and the
// document/chunk structure. All read-only.
var Queries = []Query{
	{
		Title: "Company Overview",
		Cypher: `
			MATCH (c:Company)
			RETURN c.name AS company, c.ticker AS ticker, c.cik AS cik
			ORDER BY c.name LIMIT $limit
		`,
	},
	{
		Title: "Risk Factors by Company",
		Cypher: `
			MATCH (c:Company)-[:FACES_RISK]->(r:RiskFactor)
			RETURN c.name AS company, collect(r.name)[0..5] AS risks
			ORDER BY c.name LIMIT $limit
		`,
	},
	{
		Title: "Products Offered",
		Cypher: `
			MATCH (c:Company)-[:OFFERS]->(p:Product)
			RETURN c.name AS company, collect(p.name)[0..5] AS products
			ORDER BY c.name LIMIT $limit
		`,
	},
	{
		Title: "Executives",
		Cypher: `
			MATCH (c:Company)-[:HAS_EXECUTIVE]->(e:Executive)
			RETURN c.name AS company, e.name AS executive, e.title AS title
			ORDER BY c.name LIMIT $limit
		`,
	},
	{
		Title: "Financial Metrics",
		Cypher: `
			MATCH (c:Company)-[:REPORTS]->(m:FinancialMetric)
			RETURN c.name AS company, m.name AS metric, m.value AS value
			ORDER BY c.name LIMIT $limit
		`,
	},
	{
		Title: "Competitive Landscape",
		Cypher: `
			MATCH (a:Company)-[r:COMPETES_WITH|PARTNERS_WITH]->(b)
			RETURN a.name AS company, type(r) AS relationship, b.name AS counterparty
			ORDER BY a.name LIMIT $limit
		`,
	},
	{
		Title: "Asset Manager Holdings",
		Cypher: `
			MATCH (m:AssetManager)-[o:OWNS]->(c:Company)
			RETURN m.managerName AS manager, c.name AS company, o.shares AS shares
			ORDER BY o.shares DESC LIMIT $limit
		`,
	},
	{
		Title: "Document Structure",
		Cypher: `
			MATCH (d:Document)
			OPTIONAL MATCH (d)<-[:FROM_DOCUMENT]-(c:Chunk)
			WITH d, count(c) AS chunks,
				 sum(CASE WHEN c.embedding IS NOT NULL THEN 1 ELSE 0 END) AS embedded
			RETURN d.path AS document, chunks, embedded
			ORDER BY d.path LIMIT $limit
		`,
	},
}

// chunkChainQuery previews the NEXT_CHUNK chain printed with sample 8.
const chunkChainQuery = `
	MATCH (c:Chunk)-[:FROM_DOCUMENT]->(d:Document)
	WITH d, c ORDER BY d.path, c.index
	WITH d, c LIMIT $limit
	OPTIONAL MATCH (c)-[:NEXT_CHUNK]->(next:Chunk)
	RETURN d.path AS doc, c.index AS idx,
		   substring(c.text, 0, 60) AS preview,
		   next.index AS next_idx
`

// Run executes every showcase query and prints its table. A query that
// fails or matches nothing is reported inline and never stops the rest.
func Run(ctx context.Context, db graph.Driver, limit int) {
	if limit <= 0 {
		limit = 10
	}
	for i, q := range Queries {
		fmt.Printf("\n[%d/%d] %s\n%s\n", i+1, len(Queries), q.Title, strings.Repeat("-", 60))

		res, err := db.ExecuteQuery(ctx, q.Cypher, map[string]interface{}{"limit": limit})
		if err != nil {
			fmt.Printf("  query failed: %v\n", err)
			continue
		}
		if len(res.Records) == 0 {
			fmt.Println("  (no results)")
			continue
		}
		fmt.Print(RenderTable(res))
	}

	printChunkChain(ctx, db, limit)
}

// printChunkChain completes the document-structure sample with a preview of
// the NEXT_CHUNK traversal order.
func printChunkChain(ctx context.Context, db graph.Driver, limit int) {
	res, err := db.ExecuteQuery(ctx, chunkChainQuery, map[string]interface{}{"limit": limit})
	if err != nil || len(res.Records) == 0 {
		return
	}

	fmt.Printf("\n  Chunk chain (first %d):\n", limit)
	for _, rec := range res.Records {
		idx, _ := rec.Get("idx")
		preview, _ := rec.Get("preview")
		next, _ := rec.Get("next_idx")
		arrow := " (end)"
		if next != nil {
			arrow = fmt.Sprintf(" -> Chunk %v", next)
		}
		fmt.Printf("    Chunk %3v | %v...%s\n", idx, preview, arrow)
	}
}

// RenderTable formats an eager result as a fixed-width text table using
// the record keys as the header row.
func RenderTable(res neo4j.EagerResult) string {
	if len(res.Records) == 0 {
		return ""
	}
	keys := res.Records[0].Keys

	rows := make([][]string, 0, len(res.Records))
	widths := make([]int, len(keys))
	for i, key := range keys {
		widths[i] = len(key)
	}
	for _, rec := range res.Records {
		row := make([]string, len(keys))
		for i, key := range keys {
			v, _ := rec.Get(key)
			row[i] = formatValue(v)
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			fmt.Fprintf(&b, "  %-*s", widths[i], cell)
		}
		b.WriteString("\n")
	}
	writeRow(keys)
	sep := make([]string, len(keys))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}
