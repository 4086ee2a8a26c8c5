// Command filinggraph loads SEC 10-K filings into Neo4j as a knowledge
// graph and provides verification, sample queries, and a search server
// over the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/edgarlab/filinggraph/internal/config"
	"github.com/edgarlab/filinggraph/internal/graph"
	"github.com/edgarlab/filinggraph/internal/kg"
	"github.com/edgarlab/filinggraph/internal/llm"
	"github.com/edgarlab/filinggraph/internal/metadata"
	"github.com/edgarlab/filinggraph/internal/pipeline"
	"github.com/edgarlab/filinggraph/internal/samples"
	"github.com/edgarlab/filinggraph/internal/server"
	"github.com/edgarlab/filinggraph/internal/verify"
)

const usage = `Usage: filinggraph <command> [flags]

Commands:
  load      Load PDFs and metadata into the graph (--limit N, --clear)
  verify    Print counts, validate enrichment, run search checks
  clean     Remove all data, constraints, and indexes
  samples   Run read-only showcase queries (--limit N)
  test      Check Neo4j and LLM connectivity
  serve     Serve search and stats over HTTP (--addr :8080)

Common flags:
  --config  Path to TOML config (default config/config.toml)
  --data    Data directory (default data)
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "load":
		err = cmdLoad(args)
	case "verify":
		err = cmdVerify(args)
	case "clean":
		err = cmdClean(args)
	case "samples":
		err = cmdSamples(args)
	case "test":
		err = cmdTest(args)
	case "serve":
		err = cmdServe(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logrus.Fatalf("%v", err)
	}
}

func commonFlags(fs *flag.FlagSet) (configPath, dataDir *string) {
	configPath = fs.String("config", "config/config.toml", "path to TOML config")
	dataDir = fs.String("data", "data", "data directory")
	return configPath, dataDir
}

func fmtElapsed(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func cmdLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	limit := fs.Int("limit", 0, "process at most N PDFs")
	clear := fs.Bool("clear", false, "clear the database first")
	configPath, dataDir := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()

	db, err := graph.Connect(ctx, cfg.Neo4j)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if *clear {
		if err := graph.ClearDatabase(ctx, db); err != nil {
			return err
		}
	}

	schema := graph.NewSchemaManager(db, cfg.Pipeline.EmbeddingDimensions)
	if err := schema.ApplyConstraints(ctx, graph.PhaseCore); err != nil {
		return err
	}

	// Company metadata first, so documents can link to known companies.
	meta := map[string]metadata.CompanyMeta{}
	companyCSV := filepath.Join(*dataDir, "Company_Filings.csv")
	if _, statErr := os.Stat(companyCSV); statErr == nil {
		if meta, err = metadata.LoadCompanyMetadata(companyCSV); err != nil {
			return err
		}
		if err := metadata.CreateCompanyNodes(ctx, db, meta); err != nil {
			return err
		}
	}

	pdfs, err := pipeline.ListPDFs(filepath.Join(*dataDir, "form10k-sample"), *limit)
	if err != nil {
		return err
	}

	client, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	client, embedder = llm.WithRetry(client, embedder, cfg.Pipeline.MaxRetries)

	engine, err := kg.NewEngine(db, client, embedder, cfg.Pipeline, cfg.Extraction.Entities)
	if err != nil {
		return err
	}

	runLog, err := pipeline.NewRunLog("logs")
	if err != nil {
		return err
	}
	defer runLog.Close()

	results, err := pipeline.NewRunner(engine, meta, runLog.Logger).Run(ctx, pdfs)
	if errors.Is(err, pipeline.ErrNoDocuments) {
		fmt.Printf("No PDF files found in: %s\n", filepath.Join(*dataDir, "form10k-sample"))
		return nil
	}
	if err != nil {
		return err
	}
	if path, err := runLog.WriteSummary(results); err != nil {
		runLog.Logger.Warnf("Failed to write summary: %v", err)
	} else {
		runLog.Logger.Infof("Summary written to %s", path)
	}

	// Extraction MERGEs can leave near-duplicate entities; resolve them
	// before the uniqueness constraints go on.
	stats, err := kg.NewFuzzyResolver(db, cfg.Pipeline.ResolutionThreshold).Run(ctx)
	if err != nil {
		return err
	}
	runLog.Logger.Infof("Entity resolution: %s", stats)

	if err := schema.ApplyConstraints(ctx, graph.PhaseExtraction); err != nil {
		return err
	}
	schema.CreateVectorIndex(ctx)
	if err := schema.CreateFulltextIndexes(ctx); err != nil {
		return err
	}

	holdingsCSV := filepath.Join(*dataDir, "Asset_Manager_Holdings.csv")
	if _, statErr := os.Stat(holdingsCSV); statErr == nil {
		holdings, err := metadata.LoadAssetManagers(holdingsCSV)
		if err != nil {
			return err
		}
		if err := metadata.CreateAssetManagerRelationships(ctx, db, holdings); err != nil {
			return err
		}
	}

	if err := verify.Counts(ctx, db); err != nil {
		return err
	}
	verify.ValidateEnrichment(ctx, db)

	fmt.Printf("\nDone in %s.\n", fmtElapsed(time.Since(start)))
	return nil
}

func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := graph.Connect(ctx, cfg.Neo4j)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := verify.Counts(ctx, db); err != nil {
		return err
	}
	verify.ValidateEnrichment(ctx, db)

	client, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer llm.CloseClients(client, embedder)

	verify.VerifySearches(ctx, db, client, embedder)
	return nil
}

func cmdClean(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := graph.Connect(ctx, cfg.Neo4j)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := graph.ClearDatabase(ctx, db); err != nil {
		return err
	}
	fmt.Println("\nDone.")
	return nil
}

func cmdSamples(args []string) error {
	fs := flag.NewFlagSet("samples", flag.ExitOnError)
	limit := fs.Int("limit", 10, "rows per sample query")
	configPath, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := graph.Connect(ctx, cfg.Neo4j)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	samples.Run(ctx, db, *limit)
	return nil
}

func cmdTest(args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	fmt.Printf("Testing Neo4j connection (%s)...\n", cfg.Neo4j.URI)
	db, err := graph.Connect(ctx, cfg.Neo4j)
	if err != nil {
		return fmt.Errorf("Neo4j connection failed: %w", err)
	}
	defer db.Close(ctx)
	fmt.Println("  OK")

	fmt.Printf("Testing LLM provider (%s, model %s)...\n", cfg.LLM.Provider, cfg.LLM.Model)
	client, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("LLM client init failed: %w", err)
	}
	defer llm.CloseClients(client, embedder)

	reply, err := client.Generate(ctx, "Respond with the single word OK.")
	if err != nil {
		return fmt.Errorf("LLM completion failed: %w", err)
	}
	fmt.Printf("  Completion OK: %q\n", reply)

	if embedder == nil {
		fmt.Println("  Embeddings: not supported by this provider")
		return nil
	}
	vec, err := embedder.Embed(ctx, "connectivity check")
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	fmt.Printf("  Embedding OK: %d dimensions\n", len(vec))
	return nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	configPath, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := graph.Connect(ctx, cfg.Neo4j)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	client, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer llm.CloseClients(client, embedder)
	if embedder == nil {
		return fmt.Errorf("provider %s has no embedding support; the search endpoints need one", cfg.LLM.Provider)
	}

	router := server.NewServer(db, client, embedder).SetupRouter()
	logrus.Infof("Listening on %s", *addr)
	return router.Run(*addr)
}
