package kg

import (
	"context"
	"fmt"

	"github.com/edgarlab/filinggraph/internal/common"
	"github.com/edgarlab/filinggraph/internal/llm"
	"github.com/edgarlab/filinggraph/internal/metadata"
	"github.com/sirupsen/logrus"
)

// Extractor runs schema-guided entity and relationship extraction over one
// chunk of filing text. The prompt template comes from the TOML config and
// takes the company context and the chunk text, in that order.
type Extractor struct {
	llm    llm.Client
	prompt string
}

func NewExtractor(client llm.Client, prompt string) *Extractor {
	return &Extractor{llm: client, prompt: prompt}
}

func (e *Extractor) Extract(ctx context.Context, company, chunkText string) ([]ExtractedEntity, []ExtractedRelationship, error) {
	prompt := fmt.Sprintf(e.prompt, company, chunkText)

	response, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("extraction failed: %w", err)
	}

	result, err := common.ParseJSON[extractionResult](response)
	if err != nil {
		return nil, nil, fmt.Errorf("extraction failed: %w", err)
	}

	entities := make([]ExtractedEntity, 0, len(result.Entities))
	for _, ent := range result.Entities {
		if ent.Name == "" {
			continue
		}
		if !validLabel(ent.Label) {
			logrus.Debugf("Skipping entity %q with unknown label %q", ent.Name, ent.Label)
			continue
		}
		if ent.Label == "Company" {
			ent.Name = metadata.NormalizeCompanyName(ent.Name)
		}
		entities = append(entities, ent)
	}

	relationships := make([]ExtractedRelationship, 0, len(result.Relationships))
	for _, rel := range result.Relationships {
		if rel.Source == "" || rel.Target == "" {
			continue
		}
		if !validRelationship(rel.Type) {
			logrus.Debugf("Skipping relationship of unknown type %q", rel.Type)
			continue
		}
		rel.Source = metadata.NormalizeCompanyName(rel.Source)
		relationships = append(relationships, rel)
	}

	return entities, relationships, nil
}
