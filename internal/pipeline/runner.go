package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edgarlab/filinggraph/internal/metadata"
)

// Processor is the extraction engine surface the driver depends on.
type Processor interface {
	ProcessDocument(ctx context.Context, path string, meta map[string]string) error
	Close(ctx context.Context) error
}

// Result tracks one document attempt. The list of results is owned by the
// runner for the duration of a run and survives only in the summary artifact.
type Result struct {
	Path    string
	Start   time.Time
	End     time.Time
	Success bool
	Err     error
}

func (r Result) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// ErrNoDocuments distinguishes an empty source directory from a batch that
// ran and had failures.
var ErrNoDocuments = fmt.Errorf("no PDF files found")

// ListPDFs returns the PDF paths in a directory in lexical order, truncated
// to limit when limit > 0.
func ListPDFs(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return paths, nil
}

// Runner processes documents strictly sequentially through one shared
// engine. Documents are never processed concurrently.
type Runner struct {
	engine Processor
	meta   map[string]metadata.CompanyMeta
	log    *logrus.Logger
}

func NewRunner(engine Processor, meta map[string]metadata.CompanyMeta, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{engine: engine, meta: meta, log: log}
}

// Run processes every document in order. Per-document failures are recorded
// and the batch continues; only context cancellation stops it early. The
// engine's clients are closed before returning, regardless of outcomes.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	defer r.engine.Close(ctx)

	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}

	results := make([]Result, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := Result{Path: path, Start: time.Now()}
		name := filepath.Base(path)

		r.log.Infof("[%d/%d] Processing: %s", i+1, len(paths), name)

		docMeta := map[string]string{"source": path}
		if meta, ok := r.meta[name]; ok {
			docMeta["name"] = meta.Name
			docMeta["ticker"] = meta.Ticker
			docMeta["cik"] = meta.CIK
			docMeta["cusip"] = meta.CUSIP
			r.log.Infof("  Company: %s (%s)", meta.Name, meta.Ticker)
		}

		err := r.engine.ProcessDocument(ctx, path, docMeta)
		result.End = time.Now()
		if err != nil {
			result.Err = err
			r.log.Errorf("FAILED: %s: %v", name, err)
		} else {
			result.Success = true
			r.log.Infof("SUCCESS: %s (%.1fs)", name, result.Duration().Seconds())
		}
		results = append(results, result)
	}

	successful, failed := Tally(results)
	r.log.Infof("Processed %d PDFs: %d successful, %d failed", len(results), successful, failed)
	for _, res := range results {
		if !res.Success {
			r.log.Infof("  FAILED %s: %v", filepath.Base(res.Path), res.Err)
		}
	}

	return results, nil
}

// Tally counts successful and failed results.
func Tally(results []Result) (successful, failed int) {
	for _, r := range results {
		if r.Success {
			successful++
		} else {
			failed++
		}
	}
	return successful, failed
}
