// Package api hosts the HTTP surface of the order backend.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/storefront/services/orders/config"
	"example.com/storefront/services/orders/internal/api/handlers"
	"example.com/storefront/services/orders/internal/cache"
	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/commands"
	"example.com/storefront/services/orders/internal/repositories"
	"example.com/storefront/services/orders/internal/tracing"
	"example.com/storefront/services/orders/internal/uow"
)

// Deps bundles everything the server needs.
type Deps struct {
	Config        config.Config
	Factory       uow.Factory
	Inventory     *repositories.InventoryRepository
	Orders        *repositories.OrderRepository
	Subscriptions *repositories.SubscriptionRepository
	EventLog      *repositories.EventLogRepository
	Flusher       *uow.OutboxFlusher
	Recurrence    *commands.RecurrenceProcessor
	Cache         *cache.RedisCache
	Tracer        tracing.Tracer
	Clock         clock.Clock
	IDs           clock.IDGenerator
}

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new HTTP server
func NewServer(deps Deps) *Server {
	if deps.Config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(gin.Recovery())

	handlers.NewOrdersHandler(deps.Factory, deps.Inventory, deps.Orders, deps.Clock, deps.IDs, deps.Tracer).RegisterRoutes(router)
	handlers.NewInventoryHandler(deps.Factory, deps.Inventory, deps.Cache, deps.Clock, deps.IDs, deps.Tracer).RegisterRoutes(router)
	handlers.NewSubscriptionsHandler(deps.Factory, deps.Subscriptions, deps.Clock, deps.IDs, deps.Tracer).RegisterRoutes(router)
	handlers.NewEventsHandler(deps.EventLog).RegisterRoutes(router)
	handlers.NewJobsHandler(deps.Flusher, deps.Recurrence, deps.EventLog, deps.Tracer).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		config: deps.Config,
		router: router,
		httpServer: &http.Server{
			Addr:         deps.Config.ServerAddress,
			Handler:      router,
			ReadTimeout:  deps.Config.ServerTimeout,
			WriteTimeout: deps.Config.ServerTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}
	return nil
}
