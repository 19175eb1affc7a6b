package service

import (
	"context"
	"errors"
	"fmt"

	"pos-catalog/internal/domain"
	"pos-catalog/internal/metrics"
	"pos-catalog/internal/repository"
	"pos-catalog/internal/validation"

	"go.uber.org/zap"
)

// ProductService defines the catalog write and read operations used by handlers
type ProductService interface {
	Create(ctx context.Context, input validation.Input) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, id int64, input validation.Input) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page int) (*domain.PagedProducts, error)
}

type productService struct {
	repo     repository.ProductRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
	pageSize int
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	repo repository.ProductRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
	pageSize int,
) ProductService {
	return &productService{
		repo:     repo,
		metrics:  m,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Create validates the submission and stores a new product
func (s *productService) Create(ctx context.Context, input validation.Input) (*domain.Product, error) {
	fields, err := validation.ValidateProduct(ctx, input, nil, s.repo)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{}
	fields.Apply(product)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, translateConstraint(err)
	}

	s.metrics.ProductsCreated.Inc()
	s.logger.Info("Product created", zap.Int64("product_id", product.ID))

	return product, nil
}

// Get retrieves a single product
func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Update merges the submitted fields over the stored product, re-validates and saves it
func (s *productService) Update(ctx context.Context, id int64, input validation.Input) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := validation.Merge(validation.InputFromProduct(product), input)

	fields, err := validation.ValidateProduct(ctx, merged, &product.ID, s.repo)
	if err != nil {
		return nil, err
	}
	fields.Apply(product)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, translateConstraint(err)
	}

	s.metrics.ProductsUpdated.Inc()
	s.logger.Info("Product updated", zap.Int64("product_id", product.ID))

	return product, nil
}

// Delete permanently removes a product
func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.ProductsDeleted.Inc()
	s.logger.Info("Product deleted", zap.Int64("product_id", id))

	return nil
}

// List returns a page of products, newest first. Non-positive pages fall back to the first.
func (s *productService) List(ctx context.Context, page int) (*domain.PagedProducts, error) {
	if page < 1 {
		page = 1
	}

	products, err := s.repo.List(ctx, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// translateConstraint turns a storage constraint violation into a field error, so a
// SKU race lost at write time surfaces the same way as one caught by validation
func translateConstraint(err error) error {
	var constraintErr *repository.ConstraintError
	if !errors.As(err, &constraintErr) {
		return err
	}

	switch constraintErr.Field {
	case validation.FieldSKU:
		return validation.Errors{validation.FieldSKU: {validation.SKUTakenMessage}}
	case "":
		return err
	default:
		return validation.Errors{constraintErr.Field: {"The " + constraintErr.Field + " value is invalid."}}
	}
}
