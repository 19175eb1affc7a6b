package domain

import "github.com/shopspring/decimal"

// CatalogStats summarizes the whole catalog for the dashboard
type CatalogStats struct {
	TotalProducts  int64           `json:"totalProducts"`
	ActiveProducts int64           `json:"activeProducts"`
	TotalValue     decimal.Decimal `json:"totalValue"`
	LowStockCount  int64           `json:"lowStockProducts"`
}

// PagedProducts is one page of products plus paging metadata
type PagedProducts struct {
	Items    []*Product `json:"data"`
	Page     int        `json:"current_page"`
	PageSize int        `json:"per_page"`
	Total    int64      `json:"total"`
	LastPage int        `json:"last_page"`
}

// NewPagedProducts builds a page, deriving the last page number from the total
func NewPagedProducts(items []*Product, page, pageSize int, total int64) *PagedProducts {
	if items == nil {
		items = []*Product{}
	}

	lastPage := 1
	if pageSize > 0 && total > 0 {
		lastPage = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	return &PagedProducts{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		LastPage: lastPage,
	}
}

// PageOffset returns the row offset where page starts. It reports false when
// the page begins at or past total, so callers can skip the query.
func PageOffset(page, pageSize int, total int64) (int, bool) {
	if page < 1 || pageSize < 1 {
		return 0, false
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	if int64(page-1) >= pages {
		return 0, false
	}
	return (page - 1) * pageSize, true
}
