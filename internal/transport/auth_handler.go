package transport

import (
	"errors"
	"net/http"
	"time"

	"pos-catalog/internal/middleware"
	"pos-catalog/internal/repository"
	"pos-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	credentialsMismatchMessage = "These credentials do not match our records."
	emailTakenMessage          = "The email has already been taken."
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionCookieConfig controls the session cookie written on login
type SessionCookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandler handles operator sign-in, registration and sign-out
type AuthHandler struct {
	userService service.UserService
	cookie      SessionCookieConfig
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService service.UserService, cookie SessionCookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cookie:      cookie,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes; credential submissions go through rateLimit
func (h *AuthHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Get("/login", h.ShowLogin)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(rateLimit)
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
	})
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, ViewLogin, nil)
}

// Login authenticates the operator and starts a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		h.renderAuthErrors(w, r, err, req.Email)
		return
	}

	token, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Debug("Login failed", zap.Error(err))
			renderPage(w, r, http.StatusUnprocessableEntity, ViewLogin, Props{
				"errors": map[string][]string{"email": {credentialsMismatchMessage}},
				"old":    map[string]string{"email": req.Email},
			})
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.startSession(w, token)
	h.logger.Info("User logged in successfully", zap.Int64("user_id", user.ID))
	redirect(w, r, "/")
}

// Register creates an operator account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		h.renderAuthErrors(w, r, err, req.Email)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			h.logger.Debug("Registration rejected", zap.Error(err))
			renderPage(w, r, http.StatusUnprocessableEntity, ViewLogin, Props{
				"errors": map[string][]string{"email": {emailTakenMessage}},
				"old":    map[string]string{"name": req.Name, "email": req.Email},
			})
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	token, _, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Failed to start session after registration", zap.Error(err), zap.Int64("user_id", user.ID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.startSession(w, token)
	h.logger.Info("User registered successfully", zap.Int64("user_id", user.ID))
	redirect(w, r, "/")
}

// Logout ends the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("User logged out")
	redirect(w, r, "/")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// renderAuthErrors re-renders the login view with field errors, or 400 for an unreadable body
func (h *AuthHandler) renderAuthErrors(w http.ResponseWriter, r *http.Request, err error, email string) {
	fields := middleware.FieldErrors(err)
	if len(fields) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	renderPage(w, r, http.StatusUnprocessableEntity, ViewLogin, Props{
		"errors": fields,
		"old":    map[string]string{"email": email},
	})
}
