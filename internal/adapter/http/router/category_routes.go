package router

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupCategoryRoutes(r chi.Router, h *handler.CategoryHandler, auth *middleware.Auth) {
	r.Route("/category", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)
			r.Get("/", h.List)
			r.Get("/tree", h.Tree)
			r.Get("/popular", h.Popular)
			r.Get("/popular-with-items", h.PopularWithItems)
			r.Get("/{idOrSlug}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Required, auth.RequireAdmin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/toggle-status", h.ToggleStatus)
			r.Post("/{id}/icon", h.ReplaceIcon)
		})
	})
}
