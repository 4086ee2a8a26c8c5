package kg

// ExtractedLabels are the entity node labels the extraction schema produces.
var ExtractedLabels = []string{"RiskFactor", "Product", "Executive", "FinancialMetric"}

// SchemaRelationships are the relationship types permitted by the extraction
// schema, all originating at a Company node.
var SchemaRelationships = []string{
	"FACES_RISK", "OFFERS", "HAS_EXECUTIVE", "REPORTS",
	"COMPETES_WITH", "PARTNERS_WITH",
}

type ExtractedEntity struct {
	Name       string                 `json:"name"`
	Label      string                 `json:"label"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type ExtractedRelationship struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Target string `json:"target"`
}

// extractionResult is the JSON shape the extraction prompt asks the model for.
type extractionResult struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

func validLabel(label string) bool {
	if label == "Company" {
		return true
	}
	for _, l := range ExtractedLabels {
		if l == label {
			return true
		}
	}
	return false
}

func validRelationship(relType string) bool {
	for _, r := range SchemaRelationships {
		if r == relType {
			return true
		}
	}
	return false
}
