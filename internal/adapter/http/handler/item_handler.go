package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/upload"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ItemHandler struct {
	items      *usecase.ItemUsecase
	moderation *usecase.ModerationUsecase
	stats      *usecase.StatsUsecase
	uploads    *upload.Spooler
	logger     *logger.Logger
}

func NewItemHandler(items *usecase.ItemUsecase, moderation *usecase.ModerationUsecase, stats *usecase.StatsUsecase, uploads *upload.Spooler, log *logger.Logger) *ItemHandler {
	return &ItemHandler{items: items, moderation: moderation, stats: stats, uploads: uploads, logger: log.Named("ItemHandler")}
}

func (h *ItemHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.Error(w, r, h.logger, err)
}

// filter builds the listing filter from the query string.
func (h *ItemHandler) filter(r *http.Request) (domain.ItemFilter, error) {
	var f domain.ItemFilter
	var err error
	if f.Page, f.Limit, err = pageParams(r); err != nil {
		return f, err
	}
	for _, raw := range queryList(r, "category") {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return f, invalidf("category must be a valid id")
		}
		f.Categories = append(f.Categories, id)
	}
	q := r.URL.Query()
	f.Type = domain.ItemType(q.Get("type"))
	if f.Type != "" && !f.Type.IsValid() {
		return f, invalidf("type must be one of sell, rent, exchange")
	}
	f.Condition = domain.ItemCondition(q.Get("condition"))
	if f.Condition != "" && !f.Condition.IsValid() {
		return f, invalidf("unknown condition %q", f.Condition)
	}
	f.Size = q.Get("size")
	if f.MinPrice, err = queryFloat(r, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryFloat(r, "maxPrice"); err != nil {
		return f, err
	}
	if f.Featured, err = queryBool(r, "featured"); err != nil {
		return f, err
	}
	f.Sort = domain.ItemSort(q.Get("sort"))
	f.Statuses = statuses(queryList(r, "status"))
	f.Query = q.Get("q")
	return f, nil
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, page, err := h.items.List(r.Context(), middleware.ActorFrom(r.Context()), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Paginated(w, toItemResponses(items), page)
}

func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, page, err := h.items.Search(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Paginated(w, toItemResponses(items), page)
}

func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, p, err := h.items.ListMine(r.Context(), middleware.ActorFrom(r.Context()), statuses(queryList(r, "status")), page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Paginated(w, toItemResponses(items), p)
}

func (h *ItemHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.stats.Dashboard(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toDashboard(d))
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.items.Get(r.Context(), middleware.ActorFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toItemResponse(item))
}

// Create accepts JSON with already hosted images, or multipart with the JSON
// in the "data" field and files in "images".
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		req   itemRequest
		files []domain.LocalFile
	)
	if upload.IsMultipart(r) {
		form, err := h.uploads.Receive(w, r, "images", domain.MaxItemImages)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		defer form.Cleanup()
		if err := decodeJSONString(form.Value("data"), &req); err != nil {
			h.fail(w, r, err)
			return
		}
		files = form.Files
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	details, err := req.details()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.items.Create(r.Context(), middleware.ActorFrom(r.Context()), usecase.CreateItemInput{
		Details: details,
		Images:  req.images(),
		Files:   files,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, toItemResponse(item))
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(req.Images) > 0 {
		h.fail(w, r, invalidf("images are managed through the images endpoints"))
		return
	}
	details, err := req.details()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.items.Update(r.Context(), middleware.ActorFrom(r.Context()), id, details)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toItemResponse(item))
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.items.Delete(r.Context(), middleware.ActorFrom(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, "item deleted")
}

type itemAction func(r *http.Request, actor domain.Actor, id primitive.ObjectID) (*domain.Item, error)

// transition runs an action on the item named by the path and renders the result.
func (h *ItemHandler) transition(action itemAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		item, err := action(r, middleware.ActorFrom(r.Context()), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		response.OK(w, toItemResponse(item))
	}
}

func (h *ItemHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, a domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
		return h.items.ToggleStatus(r.Context(), a, id)
	})(w, r)
}

func (h *ItemHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, a domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
		return h.items.MarkSold(r.Context(), a, id)
	})(w, r)
}

func (h *ItemHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, a domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
		return h.items.Submit(r.Context(), a, id)
	})(w, r)
}

func (h *ItemHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req moderationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.transition(func(r *http.Request, a domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
		return h.moderation.Moderate(r.Context(), a, id, req.decision())
	})(w, r)
}

func (h *ItemHandler) Revise(w http.ResponseWriter, r *http.Request) {
	var req moderationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.transition(func(r *http.Request, a domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
		return h.moderation.Revise(r.Context(), a, id, req.decision(), req.Notify)
	})(w, r)
}

func (h *ItemHandler) BulkModerate(w http.ResponseWriter, r *http.Request) {
	var req bulkModerationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	results, err := h.moderation.BulkModerate(r.Context(), middleware.ActorFrom(r.Context()), req.IDs, req.decision())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]bulkResultDTO, len(results))
	succeeded := 0
	for k, res := range results {
		out[k] = bulkResultDTO{ID: res.ID, Success: res.Err == nil, Status: res.Status}
		if res.Err != nil {
			out[k].Error = res.Err.Error()
			if response.StatusOf(res.Err) >= http.StatusInternalServerError {
				out[k].Error = "internal error"
			}
		} else {
			succeeded++
		}
	}
	response.OK(w, map[string]interface{}{
		"results":   out,
		"succeeded": succeeded,
		"failed":    len(out) - succeeded,
	})
}

func (h *ItemHandler) IncrementStat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.items.IncrementStat(r.Context(), id, domain.StatType(chi.URLParam(r, "type")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toStatsDTO(stats))
}

func (h *ItemHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := h.uploads.Receive(w, r, "images", domain.MaxItemImages)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer form.Cleanup()

	item, err := h.items.AddImages(r.Context(), middleware.ActorFrom(r.Context()), id, form.Files)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toItemResponse(item))
}

func (h *ItemHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	publicID, err := imagePublicID(r, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.transition(func(r *http.Request, a domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
		return h.items.RemoveImage(r.Context(), a, id, publicID)
	})(w, r)
}

func (h *ItemHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
	publicID, err := imagePublicID(r, "/main")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.transition(func(r *http.Request, a domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
		return h.items.SetMainImage(r.Context(), a, id, publicID)
	})(w, r)
}
