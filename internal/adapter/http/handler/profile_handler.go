package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/upload"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	profiles *usecase.ProfileUsecase
	uploads  *upload.Spooler
	logger   *logger.Logger
}

func NewProfileHandler(profiles *usecase.ProfileUsecase, uploads *upload.Spooler, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, uploads: uploads, logger: log.Named("ProfileHandler")}
}

func (h *ProfileHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.Error(w, r, h.logger, err)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.profiles.Create(r.Context(), middleware.ActorFrom(r.Context()), req.details())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, toProfileResponse(p, true))
}

func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetMine(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toProfileResponse(p, true))
}

func (h *ProfileHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetPublic(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toProfileResponse(p, false))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.profiles.Update(r.Context(), middleware.ActorFrom(r.Context()), req.details())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toProfileResponse(p, true))
}

func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.profiles.UpdatePreferences(r.Context(), middleware.ActorFrom(r.Context()), usecase.PreferencesPatch(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toProfileResponse(p, true))
}

func (h *ProfileHandler) UpdateSocial(w http.ResponseWriter, r *http.Request) {
	var req socialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.profiles.UpdateSocial(r.Context(), middleware.ActorFrom(r.Context()), usecase.SocialPatch(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toProfileResponse(p, true))
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	form, err := h.uploads.Receive(w, r, "avatar", 1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer form.Cleanup()
	if len(form.Files) == 0 {
		h.fail(w, r, invalidf("avatar file is required"))
		return
	}
	p, err := h.profiles.UploadAvatar(r.Context(), middleware.ActorFrom(r.Context()), form.Files[0])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toProfileResponse(p, true))
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), middleware.ActorFrom(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, "profile deleted")
}
