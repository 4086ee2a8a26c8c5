package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Phase orders constraint application. Core constraints go in before
// extraction; extraction constraints only after the pipeline and entity
// resolution have finished, because extraction can transiently create
// nodes sharing a name that the resolver later merges.
type Phase int

const (
	PhaseCore Phase = iota + 1
	PhaseExtraction
)

func (p Phase) String() string {
	switch p {
	case PhaseCore:
		return "core"
	case PhaseExtraction:
		return "extraction"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type constraintDef struct {
	name     string
	label    string
	property string
}

var coreConstraints = []constraintDef{
	{"unique_company_name", "Company", "name"},
	{"unique_asset_manager_name", "AssetManager", "managerName"},
}

var extractionConstraints = []constraintDef{
	{"unique_riskfactor_name", "RiskFactor", "name"},
	{"unique_product_name", "Product", "name"},
	{"unique_executive_name", "Executive", "name"},
	{"unique_financialmetric_name", "FinancialMetric", "name"},
}

type fulltextDef struct {
	name        string
	labelClause string
	properties  []string
}

var fulltextIndexes = []fulltextDef{
	{"search_entities", "Company|Product|RiskFactor|Executive|FinancialMetric", []string{"name"}},
	{"chunkText", "Chunk", []string{"text"}},
}

const (
	VectorIndexName   = "chunkEmbeddings"
	FulltextChunkName = "chunkText"
)

// SchemaManager issues idempotent DDL against the graph. All statements use
// IF NOT EXISTS so a repeated invocation is a no-op.
type SchemaManager struct {
	db         Driver
	dimensions int
	applied    map[Phase]bool
}

func NewSchemaManager(db Driver, dimensions int) *SchemaManager {
	return &SchemaManager{
		db:         db,
		dimensions: dimensions,
		applied:    map[Phase]bool{},
	}
}

// ApplyConstraints creates the uniqueness constraints for the given phase.
// Applying the extraction phase before the core phase is a programming
// error and is rejected.
func (m *SchemaManager) ApplyConstraints(ctx context.Context, phase Phase) error {
	var defs []constraintDef
	switch phase {
	case PhaseCore:
		defs = coreConstraints
	case PhaseExtraction:
		if !m.applied[PhaseCore] {
			return fmt.Errorf("extraction constraints requested before core constraints were applied")
		}
		defs = extractionConstraints
	default:
		return fmt.Errorf("unknown schema phase: %d", int(phase))
	}

	for _, c := range defs {
		query := fmt.Sprintf(
			"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			c.name, c.label, c.property,
		)
		if _, err := m.db.ExecuteQuery(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to create constraint %s: %w", c.name, err)
		}
		logrus.Infof("Constraint: %s (%s.%s)", c.name, c.label, c.property)
	}

	m.applied[phase] = true
	return nil
}

// CreateFulltextIndexes creates keyword-search indexes over entity names
// and chunk text.
func (m *SchemaManager) CreateFulltextIndexes(ctx context.Context) error {
	for _, idx := range fulltextIndexes {
		props := make([]string, len(idx.properties))
		for i, p := range idx.properties {
			props[i] = "n." + p
		}
		query := fmt.Sprintf(
			"CREATE FULLTEXT INDEX %s IF NOT EXISTS FOR (n:%s) ON EACH [%s]",
			idx.name, idx.labelClause, strings.Join(props, ", "),
		)
		if _, err := m.db.ExecuteQuery(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to create fulltext index %s: %w", idx.name, err)
		}
		logrus.Infof("Fulltext index: %s", idx.name)
	}
	return nil
}

// CreateVectorIndex creates the chunk embedding index. Failure is downgraded
// to a warning: the rest of the load proceeds without it and verification
// reports the absence.
func (m *SchemaManager) CreateVectorIndex(ctx context.Context) {
	query := fmt.Sprintf(`
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (c:Chunk) ON c.embedding
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: %d,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}`, VectorIndexName, m.dimensions)

	if _, err := m.db.ExecuteQuery(ctx, query, nil); err != nil {
		logrus.Warnf("Vector index: %v", err)
		return
	}
	logrus.Infof("Vector index: %s (%d dimensions)", VectorIndexName, m.dimensions)
}
