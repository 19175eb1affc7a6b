package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pos-catalog/internal/metrics"
	"pos-catalog/internal/repository"
	"pos-catalog/internal/validation"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProductService(repo repository.ProductRepository) (ProductService, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewProductService(repo, m, zap.NewNop(), 10), m
}

func productInput(name, price, stock, sku string) validation.Input {
	input := validation.Input{
		validation.FieldName:  name,
		validation.FieldPrice: price,
		validation.FieldStock: stock,
	}
	if sku != "" {
		input[validation.FieldSKU] = sku
	}
	return input
}

func requireFieldError(t *testing.T, err error, field string) validation.Errors {
	t.Helper()
	var errs validation.Errors
	require.True(t, errors.As(err, &errs), "expected validation errors, got %v", err)
	require.True(t, errs.Has(field), "expected %s error, got %v", field, errs)
	return errs
}

func TestProductService_CreateThenGet(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, m := newTestProductService(repo)
	ctx := context.Background()

	input := validation.Input{
		"name":        "Test Product",
		"description": "A test product description",
		"price":       "99.99",
		"stock":       "10",
		"sku":         "TEST001",
		"active":      "1",
	}

	created, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Test Product", found.Name)
	require.NotNil(t, found.Description)
	assert.Equal(t, "A test product description", *found.Description)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("99.99")))
	assert.Equal(t, 10, found.Stock)
	require.NotNil(t, found.SKU)
	assert.Equal(t, "TEST001", *found.SKU)
	assert.True(t, found.Active)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProductsCreated))
}

func TestProductService_CreateRequiresNameAndPrice(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, m := newTestProductService(repo)

	_, err := svc.Create(context.Background(), validation.Input{
		"description": "Missing name and price",
		"stock":       "5",
	})

	errs := requireFieldError(t, err, validation.FieldName)
	assert.True(t, errs.Has(validation.FieldPrice))

	total, _ := repo.CountAll(context.Background())
	assert.Zero(t, total, "invalid input must not be persisted")
	assert.Zero(t, testutil.ToFloat64(m.ProductsCreated))
}

func TestProductService_DuplicateSKU(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, _ := newTestProductService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, productInput("First", "10", "1", "UNIQUE001"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, productInput("Another Product", "50.00", "5", "UNIQUE001"))
	errs := requireFieldError(t, err, validation.FieldSKU)
	assert.Equal(t, validation.SKUTakenMessage, errs.First(validation.FieldSKU))
}

// skuRaceRepository reports every sku as free, so the unique constraint fires at write time
type skuRaceRepository struct {
	*memoryProductRepository
}

func (skuRaceRepository) SKUExists(context.Context, string, *int64) (bool, error) {
	return false, nil
}

func TestProductService_ConstraintViolationBecomesFieldError(t *testing.T) {
	repo := skuRaceRepository{newMemoryProductRepository()}
	svc, _ := newTestProductService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, productInput("First", "10", "1", "RACE01"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, productInput("Second", "10", "1", "RACE01"))
	errs := requireFieldError(t, err, validation.FieldSKU)
	assert.Equal(t, validation.SKUTakenMessage, errs.First(validation.FieldSKU))
}

func TestProductService_UpdateToOwnSKU(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, m := newTestProductService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, productInput("Smartphone Case", "24.99", "50", "SPC002"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, validation.Input{
		"name":   "Updated Product Name",
		"price":  "149.99",
		"stock":  "20",
		"sku":    "SPC002",
		"active": "false",
	})
	require.NoError(t, err)

	assert.Equal(t, "Updated Product Name", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("149.99")))
	assert.Equal(t, 20, updated.Stock)
	assert.False(t, updated.Active)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProductsUpdated))
}

func TestProductService_UpdateIsPartial(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, _ := newTestProductService(repo)
	ctx := context.Background()

	input := productInput("Coffee Mug Set", "34.99", "5", "CMS003")
	input["description"] = "Set of 4 ceramic coffee mugs."
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, validation.Input{"stock": "40"})
	require.NoError(t, err)

	assert.Equal(t, 40, updated.Stock)
	assert.Equal(t, "Coffee Mug Set", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("34.99")))
	require.NotNil(t, updated.SKU)
	assert.Equal(t, "CMS003", *updated.SKU)
	require.NotNil(t, updated.Description)
	assert.True(t, updated.Active)

	cleared, err := svc.Update(ctx, created.ID, validation.Input{"sku": "", "description": " "})
	require.NoError(t, err)
	assert.Nil(t, cleared.SKU, "submitting a blank sku clears it")
	assert.Nil(t, cleared.Description)
}

func TestProductService_UpdateErrors(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, _ := newTestProductService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, productInput("Taken", "1", "1", "TAKEN"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, productInput("Other", "1", "1", "OTHER"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, 999, productInput("Ghost", "1", "1", ""))
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = svc.Update(ctx, other.ID, validation.Input{"sku": "TAKEN"})
	requireFieldError(t, err, validation.FieldSKU)

	_, err = svc.Update(ctx, other.ID, validation.Input{"price": "-1", "stock": "-3"})
	errs := requireFieldError(t, err, validation.FieldPrice)
	assert.True(t, errs.Has(validation.FieldStock))

	stored, err := svc.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, stored.Price.Equal(decimal.NewFromInt(1)), "rejected update must leave storage unchanged")
	assert.Equal(t, 1, stored.Stock)
	assert.Equal(t, "OTHER", *stored.SKU)
}

func TestProductService_DeleteThenGet(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, m := newTestProductService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, productInput("Gaming Mouse", "79.99", "0", "GM004"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound, "repeated delete must fail")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProductsDeleted))
}

func TestProductService_List(t *testing.T) {
	repo := newMemoryProductRepository()
	svc, _ := newTestProductService(repo)
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		_, err := svc.Create(ctx, productInput(fmt.Sprintf("Product %d", i), "1.00", "20", ""))
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, int64(23), page.Total)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, "Product 22", page.Items[0].Name)

	beyond, err := svc.List(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(23), beyond.Total)
}

func TestProductService_StorageFailure(t *testing.T) {
	repo := newMemoryProductRepository()
	repo.err = errors.New("connection reset")
	svc, _ := newTestProductService(repo)

	_, err := svc.Create(context.Background(), productInput("Mug", "1", "1", "MUG1"))
	require.Error(t, err)

	var errs validation.Errors
	assert.False(t, errors.As(err, &errs), "storage failures are not validation errors")
}

func TestProperty_NonNegativeInvariant(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("successful creates never store negative price or stock", prop.ForAll(
		func(cents int64, stock int) bool {
			repo := newMemoryProductRepository()
			svc, _ := newTestProductService(repo)
			ctx := context.Background()

			price := decimal.New(cents, -2).String()
			product, err := svc.Create(ctx, productInput("Generated", price, fmt.Sprint(stock), ""))

			total, _ := repo.CountAll(ctx)
			if cents < 0 || stock < 0 {
				return err != nil && total == 0
			}
			return err == nil && total == 1 && !product.Price.IsNegative() && product.Stock >= 0
		},
		gen.Int64Range(-50000, 50000),
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
