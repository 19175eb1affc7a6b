package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"pos-catalog/internal/domain"
	"pos-catalog/internal/repository"

	"github.com/shopspring/decimal"
)

// memoryProductRepository is an in-memory ProductRepository that enforces sku uniqueness
type memoryProductRepository struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64
	clock    time.Time
	err      error
}

func newMemoryProductRepository() *memoryProductRepository {
	return &memoryProductRepository{
		products: make(map[int64]*domain.Product),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryProductRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryProductRepository) skuTaken(sku *string, excludeID int64) bool {
	if sku == nil {
		return false
	}
	for id, p := range m.products {
		if id != excludeID && p.SKU != nil && *p.SKU == *sku {
			return true
		}
	}
	return false
}

func clone(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

func (m *memoryProductRepository) Create(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.skuTaken(product.SKU, 0) {
		return &repository.ConstraintError{Constraint: "products_sku_key", Field: "sku"}
	}
	m.nextID++
	product.ID = m.nextID
	product.CreatedAt = m.tick()
	product.UpdatedAt = product.CreatedAt
	m.products[product.ID] = clone(product)
	return nil
}

func (m *memoryProductRepository) Update(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if m.skuTaken(product.SKU, product.ID) {
		return &repository.ConstraintError{Constraint: "products_sku_key", Field: "sku"}
	}
	product.CreatedAt = stored.CreatedAt
	product.UpdatedAt = m.tick()
	m.products[product.ID] = clone(product)
	return nil
}

func (m *memoryProductRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return clone(p), nil
}

func (m *memoryProductRepository) newestFirst() []*domain.Product {
	all := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, clone(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all
}

func (m *memoryProductRepository) List(_ context.Context, page, pageSize int) (*domain.PagedProducts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 1 || pageSize < 1 {
		return nil, repository.ErrInvalidPagination
	}
	all := m.newestFirst()
	start, ok := domain.PageOffset(page, pageSize, int64(len(all)))
	items := []*domain.Product{}
	if ok {
		end := start + pageSize
		if end > len(all) {
			end = len(all)
		}
		items = all[start:end]
	}
	return domain.NewPagedProducts(items, page, pageSize, int64(len(all))), nil
}

func (m *memoryProductRepository) Latest(_ context.Context, n int) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.newestFirst()
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (m *memoryProductRepository) SKUExists(_ context.Context, sku string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	var exclude int64
	if excludeID != nil {
		exclude = *excludeID
	}
	return m.skuTaken(&sku, exclude), nil
}

func (m *memoryProductRepository) CountAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), m.err
}

func (m *memoryProductRepository) CountActive(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.products {
		if p.Active {
			n++
		}
	}
	return n, m.err
}

func (m *memoryProductRepository) SumPrice(context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, p := range m.products {
		total = total.Add(p.Price)
	}
	return total, m.err
}

func (m *memoryProductRepository) CountLowStock(_ context.Context, threshold int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.products {
		if p.Stock <= threshold {
			n++
		}
	}
	return n, m.err
}

// memoryUserRepository keys users by email
type memoryUserRepository struct {
	users  map[string]*domain.User
	nextID int64
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*domain.User)}
}

func (m *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = user
	return nil
}

func (m *memoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *memoryUserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}
