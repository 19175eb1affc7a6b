package transport

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"pos-catalog/internal/domain"
	"pos-catalog/internal/metrics"
	"pos-catalog/internal/middleware"
	"pos-catalog/internal/repository"
	"pos-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

var errStorage = errors.New("connection reset by peer")

type mockProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
	failList bool
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[int64]*domain.Product)}
}

func (m *mockProductRepository) skuOwner(sku string) (int64, bool) {
	for id, p := range m.products {
		if p.SKU != nil && *p.SKU == sku {
			return id, true
		}
	}
	return 0, false
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.nextID++
	product.ID = m.nextID
	product.CreatedAt = time.Unix(m.nextID, 0).UTC()
	product.UpdatedAt = product.CreatedAt
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (m *mockProductRepository) sorted() []*domain.Product {
	all := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		c := *p
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all
}

func (m *mockProductRepository) List(ctx context.Context, page, pageSize int) (*domain.PagedProducts, error) {
	if m.failList {
		return nil, errStorage
	}
	all := m.sorted()
	start, ok := domain.PageOffset(page, pageSize, int64(len(all)))
	var items []*domain.Product
	if ok {
		end := start + pageSize
		if end > len(all) {
			end = len(all)
		}
		items = all[start:end]
	}
	return domain.NewPagedProducts(items, page, pageSize, int64(len(all))), nil
}

func (m *mockProductRepository) Latest(ctx context.Context, n int) ([]*domain.Product, error) {
	all := m.sorted()
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (m *mockProductRepository) SKUExists(ctx context.Context, sku string, excludeID *int64) (bool, error) {
	owner, ok := m.skuOwner(sku)
	if !ok {
		return false, nil
	}
	return excludeID == nil || owner != *excludeID, nil
}

func (m *mockProductRepository) CountAll(ctx context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

func (m *mockProductRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	for _, p := range m.products {
		if p.Active {
			n++
		}
	}
	return n, nil
}

func (m *mockProductRepository) SumPrice(ctx context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range m.products {
		sum = sum.Add(p.Price)
	}
	return sum, nil
}

func (m *mockProductRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	for _, p := range m.products {
		if p.Stock <= threshold {
			n++
		}
	}
	return n, nil
}

type mockUserRepository struct {
	users  map[string]*domain.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// testApp wires the handlers the same way the server does, minus the rate limiter
type testApp struct {
	router   chi.Router
	products *mockProductRepository
	users    service.UserService
	accounts *mockUserRepository
	logs     *observer.ObservedLogs
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	products := newMockProductRepository()
	accounts := newMockUserRepository()
	users := service.NewUserService(accounts, testSecret, time.Hour)
	core, logs := observer.New(zap.InfoLevel)

	return &testApp{
		router:   newTestRouter(products, users, zap.New(core)),
		products: products,
		users:    users,
		accounts: accounts,
		logs:     logs,
	}
}

func newTestRouter(products *mockProductRepository, users service.UserService, logger *zap.Logger) chi.Router {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(middleware.MethodOverride)

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(users, logger))
		NewDashboardHandler(service.NewDashboardService(products), logger).RegisterRoutes(r)
		NewAuthHandler(users, SessionCookieConfig{MaxAge: time.Hour}, logger).RegisterRoutes(r, func(next http.Handler) http.Handler {
			return next
		})
	})

	NewProductHandler(service.NewProductService(products, m, logger, 10), logger).
		RegisterRoutes(r, middleware.AuthMiddleware(users, logger))

	return r
}

// session registers an operator and returns a valid session cookie
func (a *testApp) session(t *testing.T) *http.Cookie {
	t.Helper()

	ctx := context.Background()
	if _, err := a.users.Register(ctx, "Cashier", "cashier@example.com", "password123"); err != nil && !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("failed to register operator: %v", err)
	}
	token, _, err := a.users.Login(ctx, "cashier@example.com", "password123")
	if err != nil {
		t.Fatalf("failed to login operator: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

func (a *testApp) seed(t *testing.T, name, price string, stock int, sku string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	if sku != "" {
		p.SKU = &sku
	}
	if err := a.products.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}
