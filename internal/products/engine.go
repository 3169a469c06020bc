package products

import "context"

// ImportConfig is handed to an Engine for one pass over a CSV file.
type ImportConfig struct {
	// UpdateExisting selects the pass: false only creates, true only updates.
	UpdateExisting bool
	Delimiter      rune
	// Lines caps the number of data rows read. A value below 1 reads every row.
	Lines int
	// Mapping maps CSV header names to product fields.
	Mapping map[string]string
}

// RowRef identifies one processed CSV row.
type RowRef struct {
	Row int    `json:"row"`
	SKU string `json:"sku"`
	ID  string `json:"id,omitempty"`
}

// RowError describes a row the engine rejected.
type RowError struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EngineResult lists what one pass did with each row.
type EngineResult struct {
	Imported []RowRef
	Updated  []RowRef
	Skipped  []RowRef
	Failed   []RowError
}

// Engine imports a product CSV file. Its parsing and mapping rules are its own business; callers
// only orchestrate passes and aggregate results.
type Engine interface {
	Import(ctx context.Context, path string, cfg ImportConfig) (*EngineResult, error)
}
