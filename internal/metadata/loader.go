package metadata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/edgarlab/filinggraph/internal/graph"
)

// companyNameMappings maps the uppercase CSV variants to canonical names.
// Applied at every write site so the same company never splits into two nodes.
var companyNameMappings = map[string]string{
	"AMAZON":              "Amazon.com, Inc.",
	"NVIDIA CORPORATION":  "NVIDIA Corporation",
	"APPLE INC":           "Apple Inc.",
	"PAYPAL":              "PayPal Holdings, Inc.",
	"INTEL CORP":          "Intel Corporation",
	"AMERICAN INTL GROUP": "American International Group, Inc.",
	"PG&E CORP":           "PG&E Corporation",
	"MCDONALDS CORP":      "McDonald's Corporation",
	"MICROSOFT CORP":      "Microsoft Corporation",
}

// NormalizeCompanyName returns the canonical form for known variants and the
// input unchanged for everything else.
func NormalizeCompanyName(name string) string {
	if canonical, ok := companyNameMappings[name]; ok {
		return canonical
	}
	if canonical, ok := companyNameMappings[strings.ToUpper(name)]; ok {
		return canonical
	}
	return name
}

type CompanyMeta struct {
	Name   string
	Ticker string
	CIK    string
	CUSIP  string
}

type Holding struct {
	ManagerName string
	CompanyName string
	Shares      int64
}

func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadCompanyMetadata parses the filings CSV, keyed by PDF filename.
// Missing columns default to the empty string.
func LoadCompanyMetadata(path string) (map[string]CompanyMeta, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	companies := make(map[string]CompanyMeta)
	for _, row := range rows {
		src := row["path_Mac_ix"]
		if src == "" {
			continue
		}
		filename := filepath.Base(src)
		companies[filename] = CompanyMeta{
			Name:   row["name"],
			Ticker: row["ticker"],
			CIK:    row["cik"],
			CUSIP:  row["cusip"],
		}
	}
	return companies, nil
}

// LoadAssetManagers parses the holdings CSV. A missing or malformed share
// count defaults to zero.
func LoadAssetManagers(path string) ([]Holding, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	holdings := make([]Holding, 0, len(rows))
	for _, row := range rows {
		shares, _ := strconv.ParseInt(row["shares"], 10, 64)
		holdings = append(holdings, Holding{
			ManagerName: row["managerName"],
			CompanyName: row["companyName"],
			Shares:      shares,
		})
	}
	return holdings, nil
}

// CreateCompanyNodes merges Company nodes from CSV metadata.
func CreateCompanyNodes(ctx context.Context, db graph.Driver, companies map[string]CompanyMeta) error {
	logrus.Infof("Creating %d Company nodes...", len(companies))
	for _, meta := range companies {
		params := map[string]interface{}{
			"name":   NormalizeCompanyName(meta.Name),
			"ticker": meta.Ticker,
			"cik":    meta.CIK,
			"cusip":  meta.CUSIP,
		}
		if _, err := db.ExecuteQuery(ctx, graph.MergeCompanyQuery, params); err != nil {
			return fmt.Errorf("failed to create company %q: %w", meta.Name, err)
		}
	}
	logrus.Infof("Created %d Company nodes", len(companies))
	return nil
}

// CreateAssetManagerRelationships merges AssetManager nodes and their OWNS
// relationships onto existing Company nodes.
func CreateAssetManagerRelationships(ctx context.Context, db graph.Driver, holdings []Holding) error {
	logrus.Infof("Creating %d asset manager relationships...", len(holdings))
	for _, h := range holdings {
		params := map[string]interface{}{
			"manager_name": h.ManagerName,
			"company_name": NormalizeCompanyName(h.CompanyName),
			"shares":       h.Shares,
		}
		if _, err := db.ExecuteQuery(ctx, graph.MergeAssetManagerQuery, params); err != nil {
			return fmt.Errorf("failed to create holding for %q: %w", h.ManagerName, err)
		}
	}
	logrus.Infof("Created %d asset manager relationships", len(holdings))
	return nil
}
