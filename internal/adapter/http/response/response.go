// Package response writes the JSON envelope shared by every endpoint and maps
// domain errors to HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Envelope struct {
	Status     string      `json:"status"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, Envelope{Status: StatusSuccess, Data: data})
}

func Message(w http.ResponseWriter, msg string) {
	write(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: msg})
}

func Paginated(w http.ResponseWriter, data interface{}, p usecase.Pagination) {
	write(w, http.StatusOK, Envelope{
		Status: StatusSuccess,
		Data:   data,
		Pagination: &Pagination{
			Page:  p.Page,
			Limit: p.Limit,
			Total: p.Total,
			Pages: p.Pages(),
		},
	})
}

type deleteBlockedDetails struct {
	HasSubcategories   bool  `json:"hasSubcategories"`
	HasItems           bool  `json:"hasItems"`
	SubcategoriesCount int64 `json:"subcategoriesCount"`
	ItemsCount         int64 `json:"itemsCount"`
}

// StatusOf maps a domain error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as an error envelope. Server side failures are logged and
// answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status := StatusOf(err)
	body := Envelope{Status: StatusError, Message: err.Error()}

	var blocked *domain.DeleteBlockedError
	if errors.As(err, &blocked) {
		body.Details = deleteBlockedDetails{
			HasSubcategories:   blocked.HasSubcategories,
			HasItems:           blocked.HasItems,
			SubcategoriesCount: blocked.SubcategoriesCount,
			ItemsCount:         blocked.ItemsCount,
		}
	}

	if status == http.StatusInternalServerError {
		body.Message = "internal server error"
		if errors.Is(err, domain.ErrStorage) {
			body.Message = "file storage is unavailable, please try again later"
		}
		log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	write(w, status, body)
}

// BadRequest answers with 400 for malformed input detected by a handler.
func BadRequest(w http.ResponseWriter, msg string) {
	write(w, http.StatusBadRequest, Envelope{Status: StatusError, Message: msg})
}
