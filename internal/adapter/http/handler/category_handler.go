package handler

import (
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/upload"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	categories *usecase.CategoryUsecase
	stats      *usecase.StatsUsecase
	uploads    *upload.Spooler
	logger     *logger.Logger
}

func NewCategoryHandler(categories *usecase.CategoryUsecase, stats *usecase.StatsUsecase, uploads *upload.Spooler, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, stats: stats, uploads: uploads, logger: log.Named("CategoryHandler")}
}

func (h *CategoryHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.Error(w, r, h.logger, err)
}

// List returns active categories; admins may pass ?all=true to include inactive ones.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := queryBool(r, "all")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.categories.List(r.Context(), middleware.ActorFrom(r.Context()), all != nil && *all)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toCategoryResponses(list))
}

func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.categories.Tree(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toTree(nodes))
}

func (h *CategoryHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.stats.PopularCategories(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toPopular(list, false))
}

func (h *CategoryHandler) PopularWithItems(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemsLimit, err := queryInt(r, "itemsLimit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.stats.PopularWithItems(r.Context(), limit, itemsLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toPopular(list, true))
}

// Get accepts either an id or a slug.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), middleware.ActorFrom(r.Context()), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toCategoryResponse(c))
}

// Create accepts JSON with a hosted icon, or multipart with the JSON in
// "data" and the icon file in "icon".
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		req categoryRequest
		in  usecase.CreateCategoryInput
	)
	if upload.IsMultipart(r) {
		form, err := h.uploads.Receive(w, r, "icon", 1)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		defer form.Cleanup()
		if err := decodeJSONString(form.Value("data"), &req); err != nil {
			h.fail(w, r, err)
			return
		}
		if len(form.Files) > 0 {
			in.IconFile = &form.Files[0]
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Icon != nil {
		in.Icon = req.Icon.toDomain()
	}

	details, err := req.details()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in.Details = details
	c, err := h.categories.Create(r.Context(), middleware.ActorFrom(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, toCategoryResponse(c))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Icon != nil {
		h.fail(w, r, invalidf("the icon is replaced through the icon endpoint"))
		return
	}
	details, err := req.details()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.categories.Update(r.Context(), middleware.ActorFrom(r.Context()), id, details)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toCategoryResponse(c))
}

type deleteCategoryRequest struct {
	ForceDelete bool `json:"forceDelete"`
}

// Delete reads forceDelete from the query string, falling back to the body.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	force, err := queryBool(r, "forceDelete")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if force == nil && r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		var req deleteCategoryRequest
		switch err := decodeJSON(w, r, &req); {
		case err == nil:
			force = &req.ForceDelete
		case !errors.Is(err, errEmptyBody):
			h.fail(w, r, err)
			return
		}
	}

	res, err := h.categories.Delete(r.Context(), middleware.ActorFrom(r.Context()), id, force != nil && *force)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]int64{
		"categoriesDeleted": res.CategoriesDeleted,
		"itemsDeleted":      res.ItemsDeleted,
	})
}

func (h *CategoryHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.categories.ToggleStatus(r.Context(), middleware.ActorFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toCategoryResponse(c))
}

func (h *CategoryHandler) ReplaceIcon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := h.uploads.Receive(w, r, "icon", 1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer form.Cleanup()
	if len(form.Files) == 0 {
		h.fail(w, r, invalidf("icon file is required"))
		return
	}

	c, err := h.categories.ReplaceIcon(r.Context(), middleware.ActorFrom(r.Context()), id, form.Files[0])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toCategoryResponse(c))
}
