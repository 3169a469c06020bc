package products

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"extmedia/internal/models"

	"gorm.io/gorm"
)

// CodeImporterError is reported for every rejected row.
const CodeImporterError = "woocommerce_product_importer_error"

// CSVEngine reads product CSV files into the products table.
type CSVEngine struct {
	db *gorm.DB
}

func NewCSVEngine(db *gorm.DB) *CSVEngine {
	return &CSVEngine{db: db}
}

type parsedRow struct {
	product models.Product
	columns []string
}

func (e *CSVEngine) Import(ctx context.Context, path string, cfg ImportConfig) (*EngineResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if cfg.Delimiter != 0 {
		reader.Comma = cfg.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv file is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	fields := mapHeader(header, cfg.Mapping)
	if !contains(fields, "sku") {
		return nil, errors.New("csv file has no sku column")
	}

	result := &EngineResult{}
	for row := 1; cfg.Lines < 1 || row <= cfg.Lines; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Failed = append(result.Failed, RowError{Row: row, Code: CodeImporterError, Message: err.Error()})
			continue
		}
		if blank(record) {
			continue
		}

		parsed, err := parseRow(fields, record)
		if err != nil {
			result.Failed = append(result.Failed, RowError{Row: row, SKU: parsed.product.SKU, Code: CodeImporterError, Message: err.Error()})
			continue
		}

		if err := e.apply(ctx, row, parsed, cfg.UpdateExisting, result); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Failed = append(result.Failed, RowError{Row: row, SKU: parsed.product.SKU, Code: CodeImporterError, Message: err.Error()})
		}
	}
	return result, nil
}

func (e *CSVEngine) apply(ctx context.Context, row int, parsed parsedRow, updateExisting bool, result *EngineResult) error {
	db := e.db.WithContext(ctx)
	p := parsed.product

	var existing models.Product
	err := db.Where("sku = ?", p.SKU).First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if !updateExisting {
		if found {
			result.Skipped = append(result.Skipped, RowRef{Row: row, SKU: p.SKU, ID: existing.ID})
			return nil
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
		result.Imported = append(result.Imported, RowRef{Row: row, SKU: p.SKU, ID: p.ID})
		return nil
	}

	if !found {
		result.Skipped = append(result.Skipped, RowRef{Row: row, SKU: p.SKU})
		return nil
	}
	if err := db.Model(&existing).Select(parsed.columns).Updates(&p).Error; err != nil {
		return err
	}
	result.Updated = append(result.Updated, RowRef{Row: row, SKU: p.SKU, ID: existing.ID})
	return nil
}

// mapHeader returns the product field for each column, or "" for unmapped columns.
func mapHeader(header []string, mapping map[string]string) []string {
	fields := make([]string, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		fields[i] = mapping[key]
	}
	return fields
}

// columnFor maps a product field to its database column.
var columnFor = map[string]string{
	"type":              "type",
	"sku":               "sku",
	"name":              "name",
	"published":         "published",
	"featured":          "featured",
	"visibility":        "visibility",
	"short_description": "short_description",
	"description":       "description",
	"regular_price":     "regular_price",
	"stock_quantity":    "stock_quantity",
	"manage_stock":      "manage_stock",
	"stock_status":      "stock_status",
	"category_ids":      "categories",
	"images":            "images",
}

func parseRow(fields, record []string) (parsedRow, error) {
	out := parsedRow{product: models.Product{
		Type:        string(models.ProductTypeSimple),
		Published:   1,
		Visibility:  "visible",
		StockStatus: string(models.StockStatusInStock),
	}}
	p := &out.product

	for i, field := range fields {
		if field == "" || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		out.columns = append(out.columns, columnFor[field])

		switch field {
		case "type":
			if value == "" {
				continue
			}
			switch models.ProductType(strings.ToLower(value)) {
			case models.ProductTypeSimple, models.ProductTypeVariable, models.ProductTypeGrouped, models.ProductTypeExternal:
				p.Type = strings.ToLower(value)
			default:
				return out, fmt.Errorf("invalid product type %q", value)
			}
		case "sku":
			p.SKU = value
		case "name":
			p.Name = value
		case "published":
			if value == "" {
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < -1 || n > 1 {
				return out, fmt.Errorf("invalid published value %q", value)
			}
			p.Published = n
		case "featured":
			p.Featured = parseBool(value)
		case "visibility":
			if value != "" {
				p.Visibility = value
			}
		case "short_description":
			p.ShortDescription = optional(value)
		case "description":
			p.Description = optional(value)
		case "regular_price":
			if value == "" {
				continue
			}
			price, err := strconv.ParseFloat(value, 64)
			if err != nil || price < 0 {
				return out, fmt.Errorf("invalid regular price %q", value)
			}
			p.RegularPrice = &price
		case "stock_quantity":
			if value == "" {
				continue
			}
			qty, err := strconv.Atoi(value)
			if err != nil {
				return out, fmt.Errorf("invalid stock quantity %q", value)
			}
			p.StockQuantity = &qty
		case "manage_stock":
			p.ManageStock = parseBool(value)
		case "stock_status":
			status, err := parseStockStatus(value)
			if err != nil {
				return out, err
			}
			p.StockStatus = status
		case "category_ids":
			p.Categories = splitList(value)
		case "images":
			p.Images = splitList(value)
		}
	}

	if p.SKU == "" {
		return out, errors.New("no SKU provided")
	}
	return out, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "yes", "true":
		return true
	default:
		return false
	}
}

func parseStockStatus(value string) (string, error) {
	switch strings.ToLower(value) {
	case "", "1", "instock":
		return string(models.StockStatusInStock), nil
	case "0", "outofstock":
		return string(models.StockStatusOutOfStock), nil
	case "backorder", "onbackorder":
		return string(models.StockStatusOnBackorder), nil
	default:
		return "", fmt.Errorf("invalid stock status %q", value)
	}
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
