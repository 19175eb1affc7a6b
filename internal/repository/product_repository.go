package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pos-catalog/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidPagination = errors.New("page and page size must be positive")
)

const productColumns = `id, name, description, price, stock, active, sku, created_at, updated_at`

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int) (*domain.PagedProducts, error)
	Latest(ctx context.Context, n int) ([]*domain.Product, error)
	SKUExists(ctx context.Context, sku string, excludeID *int64) (bool, error)

	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	SumPrice(ctx context.Context) (decimal.Decimal, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.Active,
		&product.SKU,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts a product and fills in the storage-assigned id and timestamps
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, active, sku)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Active,
		product.SKU,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if constraintErr, ok := asConstraintError(err); ok {
			return constraintErr
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a product and refreshes updated_at
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5,
		    active = $6, sku = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Active,
		product.SKU,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if constraintErr, ok := asConstraintError(err); ok {
			return constraintErr
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete permanently removes a product
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List returns one page of products, newest first. Pages past the end are empty.
func (r *productRepository) List(ctx context.Context, page, pageSize int) (*domain.PagedProducts, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPagination
	}

	total, err := r.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	offset, ok := domain.PageOffset(page, pageSize, total)
	if !ok {
		return domain.NewPagedProducts(nil, page, pageSize, total), nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	products, err := r.queryProducts(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return domain.NewPagedProducts(products, page, pageSize, total), nil
}

// Latest returns up to n products, newest first
func (r *productRepository) Latest(ctx context.Context, n int) ([]*domain.Product, error) {
	if n <= 0 {
		return []*domain.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	products, err := r.queryProducts(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest products: %w", err)
	}

	return products, nil
}

// SKUExists reports whether another product already uses sku
func (r *productRepository) SKUExists(ctx context.Context, sku string, excludeID *int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1 AND ($2::BIGINT IS NULL OR id <> $2))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, sku, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sku: %w", err)
	}

	return exists, nil
}

// CountAll counts every product
func (r *productRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products`)
}

// CountActive counts products flagged active
func (r *productRepository) CountActive(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products WHERE active = TRUE`)
}

// CountLowStock counts products whose stock is at or below threshold, active or not
func (r *productRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products WHERE stock <= $1`, threshold)
}

// SumPrice adds up the price of every product
func (r *productRepository) SumPrice(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(price), 0) FROM products`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum product prices: %w", err)
	}
	return total, nil
}

func (r *productRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
