package router

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupItemRoutes(r chi.Router, h *handler.ItemHandler, auth *middleware.Auth) {
	r.Route("/item", func(r chi.Router) {
		// Anonymous callers pass through; a valid token only widens what they see.
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)
			r.Get("/", h.List)
			r.Get("/search", h.Search)
			r.Get("/{id}", h.Get)
			r.Patch("/{id}/stats/{type}", h.IncrementStat)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Required)
			r.Get("/my", h.ListMine)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/toggle-status", h.ToggleStatus)
			r.Patch("/{id}/sold", h.MarkSold)
			r.Patch("/{id}/submit", h.Submit)
			r.Post("/{id}/images", h.AddImages)
			// Public ids carry their storage folder, so they span several segments.
			r.Delete("/{id}/images/*", h.RemoveImage)
			r.Patch("/{id}/images/*", h.SetMainImage)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Required, auth.RequireAdmin)
			r.Get("/dashboard", h.Dashboard)
			r.Patch("/{id}/moderate", h.Moderate)
			r.Patch("/{id}/revise", h.Revise)
			r.Post("/moderate/bulk", h.BulkModerate)
		})
	})
}
