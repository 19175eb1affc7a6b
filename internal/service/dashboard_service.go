package service

import (
	"context"
	"fmt"

	"pos-catalog/internal/domain"

	"github.com/shopspring/decimal"
)

// CatalogReader is the read-only slice of the product repository the dashboard needs
type CatalogReader interface {
	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	SumPrice(ctx context.Context) (decimal.Decimal, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	Latest(ctx context.Context, n int) ([]*domain.Product, error)
}

// DashboardService computes catalog-wide statistics
type DashboardService interface {
	ComputeStats(ctx context.Context) (*domain.CatalogStats, error)
	RecentProducts(ctx context.Context) ([]*domain.Product, error)
}

type dashboardService struct {
	catalog CatalogReader
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(catalog CatalogReader) DashboardService {
	return &dashboardService{catalog: catalog}
}

// ComputeStats queries storage on every call; nothing is cached
func (s *dashboardService) ComputeStats(ctx context.Context) (*domain.CatalogStats, error) {
	total, err := s.catalog.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	active, err := s.catalog.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active products: %w", err)
	}

	value, err := s.catalog.SumPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum prices: %w", err)
	}

	lowStock, err := s.catalog.CountLowStock(ctx, domain.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	return &domain.CatalogStats{
		TotalProducts:  total,
		ActiveProducts: active,
		TotalValue:     value,
		LowStockCount:  lowStock,
	}, nil
}

// RecentProducts returns the newest products for the dashboard
func (s *dashboardService) RecentProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.catalog.Latest(ctx, domain.RecentProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent products: %w", err)
	}
	return products, nil
}
