package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pos-catalog/internal/config"
	"pos-catalog/internal/database"
	"pos-catalog/internal/metrics"
	custommiddleware "pos-catalog/internal/middleware"
	"pos-catalog/internal/repository"
	"pos-catalog/internal/service"
	"pos-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, registry *prometheus.Registry) *Server {
	m := metrics.New(registry)

	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware(m))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, !cfg.IsProduction()))
	router.Use(custommiddleware.MethodOverride)

	router.Get("/health", healthHandler(db, redisClient))
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Repositories
	productRepo := repository.NewProductRepository(db.DB())
	userRepo := repository.NewUserRepository(db.DB())

	// Services
	sessionExpiry := time.Duration(cfg.JWT.AccessExpiry) * time.Minute
	userService := service.NewUserService(userRepo, cfg.JWT.Secret, sessionExpiry)
	productService := service.NewProductService(productRepo, m, logger, cfg.Catalog.PageSize)
	dashboardService := service.NewDashboardService(productRepo)

	// Handlers
	dashboardHandler := transport.NewDashboardHandler(dashboardService, logger)
	authHandler := transport.NewAuthHandler(userService, transport.SessionCookieConfig{
		Secure: cfg.IsProduction(),
		MaxAge: sessionExpiry,
	}, logger)
	productHandler := transport.NewProductHandler(productService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(userService, logger)
	loginRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.LoginRequests,
		Window:            cfg.RateLimit.LoginWindow,
		KeyPrefix:         "login_attempts",
	}, logger)

	// Public pages know who is signed in but never require it
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.OptionalAuth(userService, logger))
		dashboardHandler.RegisterRoutes(r)
		authHandler.RegisterRoutes(r, loginRateLimit)
	})

	productHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

// healthHandler reports database and redis status; any failure turns the response into a 503
func healthHandler(db database.Service, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK

		dbHealth := db.Health()
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		redisStatus := "up"
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}

		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"database": dbHealth,
			"redis":    map[string]string{"status": redisStatus},
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
