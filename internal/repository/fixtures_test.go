package repository

import (
	"context"
	"testing"

	"pos-catalog/internal/domain"

	"github.com/shopspring/decimal"
)

type productOption func(*domain.Product)

func withName(name string) productOption {
	return func(p *domain.Product) { p.Name = name }
}

func withPrice(price string) productOption {
	return func(p *domain.Product) { p.Price = decimal.RequireFromString(price) }
}

func withStock(stock int) productOption {
	return func(p *domain.Product) { p.Stock = stock }
}

func withSKU(sku string) productOption {
	return func(p *domain.Product) { p.SKU = &sku }
}

func inactive() productOption {
	return func(p *domain.Product) { p.Active = false }
}

func withDescription(description string) productOption {
	return func(p *domain.Product) { p.Description = &description }
}

// newTestProduct builds an active in-stock product with no SKU
func newTestProduct(opts ...productOption) *domain.Product {
	p := &domain.Product{
		Name:   "Wireless Bluetooth Headphones",
		Price:  decimal.RequireFromString("99.99"),
		Stock:  25,
		Active: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func createProduct(t *testing.T, repo ProductRepository, opts ...productOption) *domain.Product {
	t.Helper()
	p := newTestProduct(opts...)
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return p
}
