package router

import (
	"net/http"
	"slotkeeper/config"
	"slotkeeper/infras/metrics"
	"slotkeeper/internal/handlers/booking"
	"slotkeeper/internal/handlers/settings"
	"slotkeeper/shared/constant"
	"slotkeeper/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "slotkeeper/docs"
)

const (
	defaultMetricsPath = "/metrics"
	swaggerDocPath     = "/swagger/doc.json"
)

type DomainHandlers struct {
	Booking  booking.Handler
	Settings settings.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	Auth           middleware.Auth
	Metrics        *metrics.Metrics
	Config         *config.Config
}

// SetupRoutes registers middleware, the health and metrics endpoints, the API docs outside
// production and the /v1 API.
// health reports the server state so a draining instance leaves the pool.
func (r *Router) SetupRoutes(router chi.Router, health http.HandlerFunc) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(r.App.CORS())
	router.Use(r.App.Tracing)
	router.Use(r.App.RateLimit())
	router.Use(r.Auth.APIKey)
	router.Use(r.Auth.Auth)

	router.Get("/health", health)

	if r.Config.Metrics.Enable {
		path := r.Config.Metrics.Path
		if path == "" {
			path = defaultMetricsPath
		}

		router.Method(http.MethodGet, path, promhttp.HandlerFor(r.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	if r.Config.Server.Env != constant.ServerEnvProduction {
		router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(swaggerDocPath)))
	}

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Settings.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, auth middleware.Auth, m *metrics.Metrics, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		Auth:           auth,
		Metrics:        m,
		Config:         cfg,
	}
}
