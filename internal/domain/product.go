package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the inclusive stock level at or below which a product is low on stock
	LowStockThreshold = 10

	// RecentProductsLimit is the number of products shown on the dashboard
	RecentProductsLimit = 5
)

// Stock statuses reported alongside a product
const (
	StockStatusInStock    = "in_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

// Product represents an item in the point-of-sale catalog
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Active      bool            `json:"active" db:"active"`
	SKU         *string         `json:"sku" db:"sku"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// StockStatus classifies the current stock level
func (p *Product) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return StockStatusOutOfStock
	case p.Stock <= LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// ProductFields is a validated, normalized product record ready to be persisted
type ProductFields struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	Active      bool
	SKU         *string
}

// Apply copies the normalized fields onto the product
func (f ProductFields) Apply(p *Product) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Stock = f.Stock
	p.Active = f.Active
	p.SKU = f.SKU
}
