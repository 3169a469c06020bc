package products

import (
	"context"
	"fmt"
	"io"
	"os"

	"extmedia/internal/logger"
	"extmedia/internal/metrics"
)

// DefaultMapping maps CSV headers to product fields.
var DefaultMapping = map[string]string{
	"type":              "type",
	"sku":               "sku",
	"name":              "name",
	"published":         "published",
	"featured":          "featured",
	"visibility":        "visibility",
	"short_description": "short_description",
	"description":       "description",
	"regular_price":     "regular_price",
	"stock":             "stock_quantity",
	"manage_stock":      "manage_stock",
	"stock_status":      "stock_status",
	"categories":        "category_ids",
	"images":            "images",
}

const (
	passCreate = "create"
	passUpdate = "update"
)

// ImportError is one failed row as reported to the caller.
type ImportError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// Summary aggregates both passes of an import.
type Summary struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  int           `json:"failed"`
	Skipped int           `json:"skipped"`
	Errors  []ImportError `json:"errors"`
}

// Importer runs an Engine twice over the same file: first creating new products, then updating
// existing ones.
type Importer struct {
	engine  Engine
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewImporter(engine Engine, m *metrics.Metrics, logger *logger.Logger) *Importer {
	return &Importer{
		engine:  engine,
		metrics: m,
		logger:  logger,
	}
}

// ImportFile runs the create pass then the update pass. Rows skipped by the update pass are not
// counted, since every row created by the first pass is seen again by the second.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Summary, error) {
	summary := &Summary{Errors: []ImportError{}}

	created, err := i.engine.Import(ctx, path, ImportConfig{
		UpdateExisting: false,
		Delimiter:      ',',
		Lines:          -1,
		Mapping:        DefaultMapping,
	})
	if err != nil {
		return nil, fmt.Errorf("create pass: %w", err)
	}
	summary.Created += len(created.Imported)
	summary.Failed += len(created.Failed)
	summary.Skipped += len(created.Skipped)
	summary.Errors = appendErrors(summary.Errors, passCreate, created.Failed)

	updated, err := i.engine.Import(ctx, path, ImportConfig{
		UpdateExisting: true,
		Delimiter:      ',',
		Lines:          -1,
		Mapping:        DefaultMapping,
	})
	if err != nil {
		return nil, fmt.Errorf("update pass: %w", err)
	}
	summary.Updated += len(updated.Updated)
	summary.Failed += len(updated.Failed)
	summary.Errors = appendErrors(summary.Errors, passUpdate, updated.Failed)

	i.metrics.AddProductRows("created", summary.Created)
	i.metrics.AddProductRows("updated", summary.Updated)
	i.metrics.AddProductRows("failed", summary.Failed)
	i.metrics.AddProductRows("skipped", summary.Skipped)

	i.logger.Info("Product import finished: %d created, %d updated, %d failed, %d skipped",
		summary.Created, summary.Updated, summary.Failed, summary.Skipped)

	return summary, nil
}

// ImportReader spills r to a temporary CSV file under dir, imports it and removes the file.
func (i *Importer) ImportReader(ctx context.Context, dir string, r io.Reader) (*Summary, error) {
	tmp, err := os.CreateTemp(dir, "wc_import_*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	return i.ImportFile(ctx, tmp.Name())
}

func appendErrors(dst []ImportError, pass string, failed []RowError) []ImportError {
	for _, f := range failed {
		dst = append(dst, ImportError{
			Code:    f.Code,
			Message: f.Message,
			Data: map[string]interface{}{
				"row":  f.Row,
				"sku":  f.SKU,
				"pass": pass,
			},
		})
	}
	return dst
}
