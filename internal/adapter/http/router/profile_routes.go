package router

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupProfileRoutes(r chi.Router, h *handler.ProfileHandler, auth *middleware.Auth) {
	r.Route("/profile", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Required)
			r.Post("/", h.Create)
			r.Get("/me", h.GetMine)
			r.Patch("/me", h.Update)
			r.Patch("/me/preferences", h.UpdatePreferences)
			r.Patch("/me/social", h.UpdateSocial)
			r.Post("/me/avatar", h.UploadAvatar)
			r.Delete("/me", h.Delete)
		})
		r.Get("/{userId}", h.GetPublic)
	})
}
