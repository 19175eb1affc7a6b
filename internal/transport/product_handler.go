package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"pos-catalog/internal/middleware"
	"pos-catalog/internal/repository"
	"pos-catalog/internal/service"
	"pos-catalog/internal/validation"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const productNotFoundMessage = "Product not found."

// ProductHandler handles the product management pages
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Every route requires a session.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.Index)
		r.Post("/", h.Store)
		r.Get("/create", h.Create)
		r.Get("/{id}", h.Show)
		r.Get("/{id}/edit", h.Edit)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Destroy)
	})
}

// Index renders a page of products, newest first
func (h *ProductHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	products, err := h.productService.List(r.Context(), page)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err), zap.Int("page", page))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	renderPage(w, r, http.StatusOK, ViewProductIndex, Props{
		"products": newProductPage(products),
	})
}

// Create renders the empty product form
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, ViewProductCreate, Props{
		"defaults": validation.Input{validation.FieldActive: "true"},
	})
}

// Store validates the submission and creates a product
func (h *ProductHandler) Store(w http.ResponseWriter, r *http.Request) {
	input, err := parseProductInput(r)
	if err != nil {
		h.logger.Debug("Product form decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			h.logger.Debug("Product validation failed", zap.Strings("fields", fieldErrs.Fields()))
			renderPage(w, r, http.StatusUnprocessableEntity, ViewProductCreate, Props{
				"errors": fieldErrs,
				"old":    input,
			})
			return
		}

		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.audit(r, "created", product.ID)
	setFlash(w, "Product created successfully.")
	redirect(w, r, productPath(product.ID))
}

// Show renders one product
func (h *ProductHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.renderProduct(w, r, ViewProductShow)
}

// Edit renders the form for an existing product
func (h *ProductHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.renderProduct(w, r, ViewProductEdit)
}

func (h *ProductHandler) renderProduct(w http.ResponseWriter, r *http.Request, view string) {
	id, ok := productID(r)
	if !ok {
		renderNotFound(w, r, productNotFoundMessage)
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Debug("Product not found", zap.Int64("product_id", id))
			renderNotFound(w, r, productNotFoundMessage)
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	renderPage(w, r, http.StatusOK, view, Props{"product": newProductView(product)})
}

// Update merges the submitted fields into an existing product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		renderNotFound(w, r, productNotFoundMessage)
		return
	}

	input, err := parseProductInput(r)
	if err != nil {
		h.logger.Debug("Product form decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		var fieldErrs validation.Errors
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			h.logger.Debug("Product not found", zap.Int64("product_id", id))
			renderNotFound(w, r, productNotFoundMessage)
		case errors.As(err, &fieldErrs):
			h.logger.Debug("Product validation failed",
				zap.Int64("product_id", id),
				zap.Strings("fields", fieldErrs.Fields()),
			)
			h.renderEditErrors(w, r, id, fieldErrs, input)
		default:
			h.logger.Error("Failed to update product", zap.Error(err), zap.Int64("product_id", id))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	h.audit(r, "updated", product.ID)
	setFlash(w, "Product updated successfully.")
	redirect(w, r, productPath(product.ID))
}

// renderEditErrors re-renders the edit form with the stored product and the rejected input
func (h *ProductHandler) renderEditErrors(w http.ResponseWriter, r *http.Request, id int64, fieldErrs validation.Errors, input validation.Input) {
	props := Props{
		"errors": fieldErrs,
		"old":    input,
	}
	if product, err := h.productService.Get(r.Context(), id); err == nil {
		props["product"] = newProductView(product)
	}
	renderPage(w, r, http.StatusUnprocessableEntity, ViewProductEdit, props)
}

// Destroy permanently deletes a product
func (h *ProductHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		renderNotFound(w, r, productNotFoundMessage)
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Debug("Product not found", zap.Int64("product_id", id))
			renderNotFound(w, r, productNotFoundMessage)
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.audit(r, "deleted", id)
	setFlash(w, "Product deleted successfully.")
	redirect(w, r, "/products")
}

// audit records which operator changed the catalog
func (h *ProductHandler) audit(r *http.Request, action string, productID int64) {
	userID, _ := middleware.GetUserID(r.Context())
	h.logger.Info("Catalog changed",
		zap.String("action", action),
		zap.Int64("product_id", productID),
		zap.Int64("user_id", userID),
	)
}

// productID parses the {id} route parameter; non-numeric ids never resolve
func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func productPath(id int64) string {
	return fmt.Sprintf("/products/%d", id)
}
