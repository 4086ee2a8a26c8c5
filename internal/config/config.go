package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// validSchemes is the allow-list for Neo4j connection URIs.
var validSchemes = []string{
	"neo4j://", "neo4j+s://", "neo4j+ssc://",
	"bolt://", "bolt+s://", "bolt+ssc://",
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func (c Neo4jConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("NEO4J_URI is not set")
	}
	for _, scheme := range validSchemes {
		if strings.HasPrefix(c.URI, scheme) {
			if c.Username == "" {
				return fmt.Errorf("NEO4J_USERNAME is not set")
			}
			if c.Password == "" {
				return fmt.Errorf("NEO4J_PASSWORD is not set")
			}
			return nil
		}
	}
	return fmt.Errorf("NEO4J_URI must start with a valid scheme (neo4j+s://, bolt+s://, etc.), got: %s", c.URI)
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`

	// AzureEndpoint is the AI Foundry project endpoint. When set and no
	// API key is present, the client authenticates with an Azure AD token.
	AzureEndpoint string `toml:"azure_endpoint"`
}

// InferenceEndpoint derives the OpenAI-compatible model endpoint from an
// Azure AI Foundry project endpoint.
func (c LLMConfig) InferenceEndpoint() string {
	if idx := strings.Index(c.AzureEndpoint, "/api/projects/"); idx != -1 {
		return c.AzureEndpoint[:idx] + "/models"
	}
	return c.AzureEndpoint
}

type PipelineConfig struct {
	ChunkSize           int     `toml:"chunk_size"`
	ChunkOverlap        int     `toml:"chunk_overlap"`
	EmbeddingDimensions int     `toml:"embedding_dimensions"`
	MaxRetries          int     `toml:"max_retries"`
	ResolutionThreshold float64 `toml:"resolution_threshold"`
}

type ExtractionPrompts struct {
	Entities string `toml:"entities"`
}

type Config struct {
	Neo4j      Neo4jConfig       `toml:"neo4j"`
	LLM        LLMConfig         `toml:"llm"`
	Pipeline   PipelineConfig    `toml:"pipeline"`
	Extraction ExtractionPrompts `toml:"extraction"`
}

// Load reads the TOML config file, applies environment overrides, fills
// defaults, and validates. Configuration errors are reported here, before
// any network activity.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Neo4j.Validate(); err != nil {
		return nil, err
	}
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("no LLM provider configured: set OPENAI_API_KEY or AZURE_AI_PROJECT_ENDPOINT")
	}
	if cfg.Extraction.Entities == "" {
		return nil, fmt.Errorf("extraction prompt missing from %s", path)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	setEnv(&c.Neo4j.URI, "NEO4J_URI")
	setEnv(&c.Neo4j.Username, "NEO4J_USERNAME")
	setEnv(&c.Neo4j.Password, "NEO4J_PASSWORD")

	setEnv(&c.LLM.Provider, "LLM_PROVIDER")
	setEnv(&c.LLM.Model, "LLM_MODEL")
	setEnv(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	setEnv(&c.LLM.APIKey, "OPENAI_API_KEY")
	setEnv(&c.LLM.BaseURL, "LLM_BASE_URL")
	setEnv(&c.LLM.AzureEndpoint, "AZURE_AI_PROJECT_ENDPOINT")

	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.EmbeddingDimensions = n
		}
	}
}

func (c *Config) applyDefaults() {
	// Auto-select the provider from whichever credential is present.
	if c.LLM.Provider == "" {
		switch {
		case c.LLM.APIKey != "":
			c.LLM.Provider = "openai"
		case c.LLM.AzureEndpoint != "":
			c.LLM.Provider = "azure"
		}
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.Pipeline.ChunkSize == 0 {
		c.Pipeline.ChunkSize = 500
	}
	if c.Pipeline.ChunkOverlap == 0 {
		c.Pipeline.ChunkOverlap = 50
	}
	if c.Pipeline.EmbeddingDimensions == 0 {
		c.Pipeline.EmbeddingDimensions = 1536
	}
	if c.Pipeline.MaxRetries == 0 {
		c.Pipeline.MaxRetries = 3
	}
	if c.Pipeline.ResolutionThreshold == 0 {
		c.Pipeline.ResolutionThreshold = 0.80
	}
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
