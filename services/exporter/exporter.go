package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"amazonworker/internal/model"
	"amazonworker/logger"
)

// csvColumns is the fixed column order for the CSV export
var csvColumns = []string{
	"asin",
	"title",
	"price",
	"rating",
	"review_count",
	"brand",
	"bullet_features",
	"breadcrumbs",
	"dimensions",
	"weight",
	"url",
	"image_url",
}

// FileExporter persists scraped records as JSONL and CSV files
type FileExporter struct {
	jsonlPath string
	csvPath   string
	log       *logger.Logger
}

// NewFileExporter creates an exporter writing to the given file paths
func NewFileExporter(jsonlPath, csvPath string) *FileExporter {
	return &FileExporter{
		jsonlPath: jsonlPath,
		csvPath:   csvPath,
		log:       logger.ForExporter(),
	}
}

// Save writes the records to both output files
func (e *FileExporter) Save(products []model.Product) error {
	if err := e.SaveJSONL(products); err != nil {
		return err
	}
	return e.SaveCSV(products)
}

// SaveJSONL writes one JSON object per line. Absent fields are excluded
// through the record's omitempty tags.
func (e *FileExporter) SaveJSONL(products []model.Product) error {
	e.log.Info().Int("count", len(products)).Str("file", e.jsonlPath).Msg("Saving products JSONL")

	if err := os.MkdirAll(filepath.Dir(e.jsonlPath), 0o755); err != nil {
		return fmt.Errorf("create data dir for %s: %w", e.jsonlPath, err)
	}

	f, err := os.Create(e.jsonlPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", e.jsonlPath, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, p := range products {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode product %s: %w", p.ASIN, err)
		}
	}
	return nil
}

// SaveCSV writes the records as CSV with a fixed column order.
// List-valued columns are JSON encoded into a single cell.
func (e *FileExporter) SaveCSV(products []model.Product) error {
	e.log.Info().Int("count", len(products)).Str("file", e.csvPath).Msg("Saving products CSV")

	if err := os.MkdirAll(filepath.Dir(e.csvPath), 0o755); err != nil {
		return fmt.Errorf("create data dir for %s: %w", e.csvPath, err)
	}

	f, err := os.Create(e.csvPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", e.csvPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range products {
		row, err := csvRow(p)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", p.ASIN, err)
		}
	}

	w.Flush()
	return w.Error()
}

func csvRow(p model.Product) ([]string, error) {
	bullets, err := encodeList(p.BulletFeatures)
	if err != nil {
		return nil, fmt.Errorf("encode bullet_features for %s: %w", p.ASIN, err)
	}
	breadcrumbs, err := encodeList(p.Breadcrumbs)
	if err != nil {
		return nil, fmt.Errorf("encode breadcrumbs for %s: %w", p.ASIN, err)
	}

	return []string{
		p.ASIN,
		p.Title,
		p.Price,
		p.Rating,
		p.ReviewCount,
		p.Brand,
		bullets,
		breadcrumbs,
		p.Dimensions,
		p.Weight,
		p.URL,
		p.ImageURL,
	}, nil
}

func encodeList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
