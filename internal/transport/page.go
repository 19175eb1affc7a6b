package transport

import (
	"net/http"
	"net/url"

	"pos-catalog/internal/domain"
	"pos-catalog/internal/middleware"
)

// View names rendered by the front end
const (
	ViewDashboard     = "pos-dashboard"
	ViewProductIndex  = "products/index"
	ViewProductCreate = "products/create"
	ViewProductShow   = "products/show"
	ViewProductEdit   = "products/edit"
	ViewLogin         = "auth/login"
	ViewNotFound      = "errors/404"
)

// FlashCookieName carries a one-shot message into the next rendered page
const FlashCookieName = "pos_flash"

// Props are the data handed to a view
type Props map[string]interface{}

// Page is the payload the front end renders: a named view, its props and the request URL
type Page struct {
	Component string `json:"component"`
	Props     Props  `json:"props"`
	URL       string `json:"url"`
}

// AuthProps describes the signed-in operator, nil when anonymous
type AuthProps struct {
	User *AuthUser `json:"user"`
}

// AuthUser is the operator shown in the page chrome
type AuthUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// renderPage writes the page payload, adding shared auth and flash props
func renderPage(w http.ResponseWriter, r *http.Request, status int, component string, props Props) {
	if props == nil {
		props = Props{}
	}

	auth := AuthProps{}
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		auth.User = &AuthUser{ID: identity.UserID, Name: identity.Name}
	}
	props["auth"] = auth
	props["flash"] = takeFlash(w, r)

	middleware.RespondWithJSON(w, status, Page{
		Component: component,
		Props:     props,
		URL:       r.URL.RequestURI(),
	})
}

// renderNotFound renders the not-found view
func renderNotFound(w http.ResponseWriter, r *http.Request, message string) {
	renderPage(w, r, http.StatusNotFound, ViewNotFound, Props{"message": message})
}

// redirect sends the client to location with 303 so the follow-up request is a GET
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads the flash message and expires the cookie
func takeFlash(w http.ResponseWriter, r *http.Request) *string {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	return &message
}

// ProductView is a product as rendered: price fixed to two places plus the derived stock status
type ProductView struct {
	*domain.Product
	Price       string `json:"price"`
	StockStatus string `json:"stock_status"`
}

func newProductView(p *domain.Product) ProductView {
	return ProductView{
		Product:     p,
		Price:       p.Price.StringFixed(2),
		StockStatus: p.StockStatus(),
	}
}

func newProductViews(products []*domain.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return views
}

// ProductPage is one page of rendered products with its paging metadata
type ProductPage struct {
	Data        []ProductView `json:"data"`
	CurrentPage int           `json:"current_page"`
	LastPage    int           `json:"last_page"`
	PerPage     int           `json:"per_page"`
	Total       int64         `json:"total"`
}

func newProductPage(p *domain.PagedProducts) ProductPage {
	return ProductPage{
		Data:        newProductViews(p.Items),
		CurrentPage: p.Page,
		LastPage:    p.LastPage,
		PerPage:     p.PageSize,
		Total:       p.Total,
	}
}
