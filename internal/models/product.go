package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog item written by the product CSV import engine.
type Product struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	SKU              string    `json:"sku" gorm:"uniqueIndex;not null"`
	Type             string    `json:"type" gorm:"default:simple"`
	Name             string    `json:"name"`
	Published        int       `json:"published"`
	Featured         bool      `json:"featured"`
	Visibility       string    `json:"visibility" gorm:"default:visible"`
	ShortDescription *string   `json:"short_description"`
	Description      *string   `json:"description"`
	RegularPrice     *float64  `json:"regular_price"`
	StockQuantity    *int      `json:"stock_quantity"`
	ManageStock      bool      `json:"manage_stock"`
	StockStatus      string    `json:"stock_status" gorm:"default:instock"`
	Categories       []string  `json:"category_ids" gorm:"type:text;serializer:json"`
	Images           []string  `json:"images" gorm:"type:text;serializer:json"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
	ProductTypeGrouped  ProductType = "grouped"
	ProductTypeExternal ProductType = "external"
)

type StockStatus string

const (
	StockStatusInStock     StockStatus = "instock"
	StockStatusOutOfStock  StockStatus = "outofstock"
	StockStatusOnBackorder StockStatus = "onbackorder"
)

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
