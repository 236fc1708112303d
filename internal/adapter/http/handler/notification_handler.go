package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notifications *usecase.NotificationUsecase
	logger        *logger.Logger
}

func NewNotificationHandler(notifications *usecase.NotificationUsecase, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: log.Named("NotificationHandler")}
}

func (h *NotificationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.Error(w, r, h.logger, err)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	unread, err := queryBool(r, "unread")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, p, err := h.notifications.List(r.Context(), middleware.ActorFrom(r.Context()), unread != nil && *unread, page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]notificationResponse, len(list))
	for k, n := range list {
		out[k] = toNotificationResponse(n)
	}
	response.Paginated(w, out, p)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.UnreadCount(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]int64{"count": n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := h.notifications.MarkRead(r.Context(), middleware.ActorFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toNotificationResponse(n))
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]int64{"updated": n})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.notifications.Delete(r.Context(), middleware.ActorFrom(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, "notification deleted")
}

func (h *NotificationHandler) DeleteRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.DeleteRead(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]int64{"deleted": n})
}

// SendSystem lets an admin message a user directly.
func (h *NotificationHandler) SendSystem(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in := usecase.SendSystemInput{Recipient: req.Recipient, Title: req.Title, Message: req.Message}
	if req.Item != nil {
		id, err := primitive.ObjectIDFromHex(*req.Item)
		if err != nil {
			h.fail(w, r, invalidf("item must be a valid id"))
			return
		}
		in.Item = &id
	}
	n, err := h.notifications.SendSystem(r.Context(), middleware.ActorFrom(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, toNotificationResponse(n))
}
