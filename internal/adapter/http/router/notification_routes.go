package router

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupNotificationRoutes(r chi.Router, h *handler.NotificationHandler, auth *middleware.Auth) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(auth.Required)
		r.Get("/", h.List)
		r.Get("/unread-count", h.UnreadCount)
		r.Patch("/read-all", h.MarkAllRead)
		r.Patch("/{id}/read", h.MarkRead)
		r.Delete("/{id}", h.Delete)
		r.Delete("/", h.DeleteRead)
		r.With(auth.RequireAdmin).Post("/", h.SendSystem)
	})
}
