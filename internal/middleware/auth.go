package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pos-catalog/internal/domain"
	"pos-catalog/internal/repository"
	"pos-catalog/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"

	// SessionCookieName is the HttpOnly cookie carrying the session token
	SessionCookieName = "pos_session"

	// LoginPath is where unauthenticated callers are sent
	LoginPath = "/login"
)

// Identity is the authenticated operator attached to the request context
type Identity struct {
	UserID int64
	Name   string
}

// SessionValidator validates session tokens and resolves the operator behind them
type SessionValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
}

// errNoSession covers every way a request can lack a usable session
var errNoSession = errors.New("no valid session")

// AuthMiddleware validates the session token and redirects to the login page when it is
// missing, invalid or belongs to an operator that no longer exists
func AuthMiddleware(sessions SessionValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r, sessions, logger)
			if errors.Is(err, errNoSession) {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			if err != nil {
				logger.Error("Failed to resolve session user", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "failed to resolve session")
				return
			}

			logger.Debug("User authenticated", zap.Int64("user_id", identity.UserID))

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the identity when a valid session is present and never blocks
func OptionalAuth(sessions SessionValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r, sessions, logger)
			switch {
			case err == nil:
				r = r.WithContext(context.WithValue(r.Context(), IdentityKey, identity))
			case !errors.Is(err, errNoSession):
				logger.Error("Failed to resolve session user", zap.Error(err))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate validates the token and loads the operator from storage so the
// identity carries the current name rather than the one signed into the token
func authenticate(r *http.Request, sessions SessionValidator, logger *zap.Logger) (Identity, error) {
	tokenString := sessionToken(r)
	if tokenString == "" {
		logger.Debug("Missing session token", zap.String("path", r.URL.Path))
		return Identity{}, errNoSession
	}

	claims, err := sessions.ValidateToken(tokenString)
	if err != nil {
		logger.Debug("Token validation failed", zap.Error(err))
		return Identity{}, errNoSession
	}

	userID, err := claims.UserID()
	if err != nil {
		logger.Debug("Invalid subject in token claims", zap.Error(err))
		return Identity{}, errNoSession
	}

	user, err := sessions.GetUserByID(r.Context(), userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		logger.Debug("Session user no longer exists", zap.Int64("user_id", userID))
		return Identity{}, errNoSession
	}
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: user.ID, Name: user.Name}, nil
}

// sessionToken reads the token from the session cookie, falling back to a Bearer header
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetIdentity extracts the authenticated operator from request context
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (int64, bool) {
	identity, ok := GetIdentity(ctx)
	return identity.UserID, ok
}
