package service

import (
	"chat_economy/internal/app"
	"chat_economy/internal/pkg/auth"
	"chat_economy/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service encapsulates the HTTP server configuration, including the action engine,
// HTTP handlers, the server's run address, and a logger for event and error logging.
type Service struct {
	handlers   *handlers
	app        *app.App
	runAddress string
	log        *logger.Logger
}

// NewService creates and initializes a new Service instance.
// It sets up the handlers using the provided application and logger,
// and configures the server's run address.
func NewService(app *app.App, runAddress string, l *logger.Logger) *Service {
	handlers := newHandlers(app, l)
	return &Service{handlers: handlers, app: app, runAddress: runAddress, log: l}
}

// NewRouter sets up and returns a new chi.Router instance with the necessary middleware and routes.
// It applies logging middleware globally, and JWT authentication middleware for routes acting
// on behalf of an account.
func (service *Service) NewRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(service.log.WithLogging())
	router.Post("/api/auth", service.handlers.authHandler)
	router.Get("/api/shop", service.handlers.shopHandler)
	router.Get("/api/leaderboard", service.handlers.leaderboardHandler)
	router.Handle("/metrics", promhttp.Handler())
	router.Group(func(r chi.Router) {
		r.Use(auth.CheckJWTMiddleware())
		r.Get("/api/info", service.handlers.infoHandler)
		r.Get("/api/inventory", service.handlers.inventoryHandler)
		r.Post("/api/actions/{action}", service.handlers.actionHandler)
	})
	return router
}

// RunAddress is the address the HTTP server listens on.
func (service *Service) RunAddress() string {
	return service.runAddress
}
