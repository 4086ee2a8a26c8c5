package kg

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"

	"github.com/edgarlab/filinggraph/internal/graph"
)

const (
	listEntitiesQuery = `
		MATCH (n:%s)
		RETURN elementId(n) AS id, n.name AS name
		ORDER BY n.name
	`

	repointIncomingQuery = `
		MATCH (src)-[r:%s]->(d)
		WHERE elementId(d) = $dup
		MATCH (k) WHERE elementId(k) = $keep
		MERGE (src)-[:%s]->(k)
		DELETE r
	`

	repointChunksQuery = `
		MATCH (d)-[r:FROM_CHUNK]->(c:Chunk)
		WHERE elementId(d) = $dup
		MATCH (k) WHERE elementId(k) = $keep
		MERGE (k)-[:FROM_CHUNK]->(c)
		DELETE r
	`

	deleteDuplicateQuery = `
		MATCH (d)
		WHERE elementId(d) = $dup
		DETACH DELETE d
	`
)

type ResolutionStats struct {
	Scanned int
	Merged  int
}

func (s ResolutionStats) String() string {
	return fmt.Sprintf("scanned=%d merged=%d", s.Scanned, s.Merged)
}

// FuzzyResolver merges extracted entities whose names are near-duplicates,
// e.g. "Apple" and "Apple Inc.". Runs once after the whole batch and must
// finish before extraction constraints are applied, since it is the step
// that removes name collisions.
type FuzzyResolver struct {
	db        graph.Driver
	threshold float64
}

func NewFuzzyResolver(db graph.Driver, threshold float64) *FuzzyResolver {
	return &FuzzyResolver{db: db, threshold: threshold}
}

func (r *FuzzyResolver) Run(ctx context.Context) (ResolutionStats, error) {
	var stats ResolutionStats

	for _, label := range ExtractedLabels {
		query := fmt.Sprintf(listEntitiesQuery, label)
		res, err := r.db.ExecuteQuery(ctx, query, nil)
		if err != nil {
			return stats, fmt.Errorf("failed to list %s nodes: %w", label, err)
		}

		type entity struct{ id, name string }
		var entities []entity
		for _, rec := range res.Records {
			id, _ := rec.Get("id")
			name, _ := rec.Get("name")
			idStr, ok1 := id.(string)
			nameStr, ok2 := name.(string)
			if !ok1 || !ok2 {
				continue
			}
			entities = append(entities, entity{id: idStr, name: nameStr})
		}
		stats.Scanned += len(entities)

		merged := make([]bool, len(entities))
		for i := range entities {
			if merged[i] {
				continue
			}
			for j := i + 1; j < len(entities); j++ {
				if merged[j] {
					continue
				}
				score := Similarity(entities[i].name, entities[j].name)
				if score < r.threshold {
					continue
				}
				if err := r.merge(ctx, entities[i].id, entities[j].id); err != nil {
					return stats, fmt.Errorf("failed to merge %q into %q: %w", entities[j].name, entities[i].name, err)
				}
				logrus.Debugf("Merged %s %q into %q (%.2f)", label, entities[j].name, entities[i].name, score)
				merged[j] = true
				stats.Merged++
			}
		}
	}

	return stats, nil
}

// merge re-points the duplicate's relationships onto the surviving node and
// deletes it. Relationship types are enumerated from the fixed schema; there
// is no dynamic-type Cypher without APOC.
func (r *FuzzyResolver) merge(ctx context.Context, keepID, dupID string) error {
	params := map[string]interface{}{"keep": keepID, "dup": dupID}

	for _, relType := range SchemaRelationships {
		query := fmt.Sprintf(repointIncomingQuery, relType, relType)
		if _, err := r.db.ExecuteQuery(ctx, query, params); err != nil {
			return err
		}
	}
	if _, err := r.db.ExecuteQuery(ctx, repointChunksQuery, params); err != nil {
		return err
	}
	if _, err := r.db.ExecuteQuery(ctx, deleteDuplicateQuery, params); err != nil {
		return err
	}
	return nil
}

// Similarity is a normalized Levenshtein ratio in [0, 1], case-insensitive.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	// The diff-based distance sums per-segment edits and can exceed the
	// longer string's length for dissimilar inputs, so clamp at zero.
	ratio := 1 - float64(distance)/float64(maxLen)
	if ratio < 0 {
		return 0
	}
	return ratio
}
