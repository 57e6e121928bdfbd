package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/handler"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/middleware"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	storeHandler *handler.StoreHandler
	adminHandler *handler.AdminReviewHandler
	statsHandler *handler.StatsHandler
	registry     *prometheus.Registry
	logger       *logger.Logger
	cfg          *config.Config
}

// NewRouter creates a new HTTP router. registry may be nil to leave /metrics unmounted.
func NewRouter(
	storeHandler *handler.StoreHandler,
	adminHandler *handler.AdminReviewHandler,
	statsHandler *handler.StatsHandler,
	registry *prometheus.Registry,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		storeHandler: storeHandler,
		adminHandler: adminHandler,
		statsHandler: statsHandler,
		registry:     registry,
		logger:       log,
		cfg:          cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	if rt.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(rt.registry))
	}

	r.Route("/store", func(r chi.Router) {
		r.Route("/product-reviews", func(r chi.Router) {
			r.Get("/", rt.storeHandler.List)
			r.Post("/", rt.storeHandler.CreateForOrder)
			r.Get("/random", rt.storeHandler.Random)
		})

		r.Get("/product-review/{product_id}", rt.storeHandler.GetByProduct)
		r.Post("/product-review/{product_id}", rt.storeHandler.Upsert)
		r.Get("/product-review-stats/{product_id}", rt.statsHandler.Get)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Route("/product-reviews", func(r chi.Router) {
			r.Get("/", rt.adminHandler.List)
			r.Get("/{id}", rt.adminHandler.GetByID)
			r.Put("/{id}", rt.adminHandler.Update)
			r.Delete("/{id}", rt.adminHandler.Delete)
			r.Put("/{id}/status", rt.adminHandler.UpdateStatus)
			r.Put("/{id}/verified", rt.adminHandler.UpdateVerified)
			r.Post("/{id}/response", rt.adminHandler.CreateResponse)
			r.Put("/{id}/response", rt.adminHandler.UpdateResponse)
			r.Delete("/{id}/response", rt.adminHandler.DeleteResponse)
		})

		r.Get("/product-review-stats", rt.statsHandler.List)
		r.Post("/product-review-stats", rt.statsHandler.Refresh)
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
