// Package router mounts the REST handlers on a chi mux.
package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Items         *handler.ItemHandler
	Categories    *handler.CategoryHandler
	Notifications *handler.NotificationHandler
	Profiles      *handler.ProfileHandler
	Health        http.HandlerFunc
}

// New builds the service mux. m may be nil when metrics are disabled.
func New(h Handlers, auth *middleware.Auth, m *metrics.MetricsManager, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.AccessLog(log))
	if m != nil {
		r.Use(middleware.Metrics(m))
	}
	r.Use(middleware.Recoverer(log))

	if h.Health != nil {
		r.Get("/healthz", h.Health)
	}
	r.Route("/api/v1", func(r chi.Router) {
		SetupCategoryRoutes(r, h.Categories, auth)
		SetupItemRoutes(r, h.Items, auth)
		SetupNotificationRoutes(r, h.Notifications, auth)
		SetupProfileRoutes(r, h.Profiles, auth)
	})
	return r
}
