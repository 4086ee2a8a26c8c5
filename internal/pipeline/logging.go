package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RunLog is the per-run logging setup: console output plus a timestamped
// file sink whose path also anchors the companion summary artifact.
type RunLog struct {
	Logger *logrus.Logger
	Path   string

	file *os.File
}

// NewRunLog creates logs/data_load_<timestamp>.log under dir.
func NewRunLog(dir string) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("data_load_%s.log", time.Now().Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &RunLog{Logger: logger, Path: path, file: file}, nil
}

func (l *RunLog) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WriteSummary writes the companion summary artifact next to the log file,
// with per-document outcome, duration, and full error detail for failures.
func (l *RunLog) WriteSummary(results []Result) (string, error) {
	base := strings.TrimSuffix(filepath.Base(l.Path), filepath.Ext(l.Path))
	path := filepath.Join(filepath.Dir(l.Path), fmt.Sprintf("summary_%s.txt", base))

	successful, failed := Tally(results)
	var total time.Duration
	for _, r := range results {
		total += r.Duration()
	}

	var sb strings.Builder
	rule := strings.Repeat("=", 70)
	sb.WriteString(rule + "\n")
	sb.WriteString("PDF PROCESSING SUMMARY\n")
	sb.WriteString("Generated: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(rule + "\n\n")
	fmt.Fprintf(&sb, "Total: %d | Successful: %d | Failed: %d\n", len(results), successful, failed)
	fmt.Fprintf(&sb, "Total time: %.1fs\n\n", total.Seconds())

	for _, r := range results {
		if r.Success {
			fmt.Fprintf(&sb, "  [OK] %s (%.1fs)\n", filepath.Base(r.Path), r.Duration().Seconds())
		}
	}
	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(&sb, "\n  [FAIL] %s (%.1fs)\n", filepath.Base(r.Path), r.Duration().Seconds())
			fmt.Fprintf(&sb, "    Error: %v\n", r.Err)
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}
