// Package handler exposes the usecases over REST.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxJSONBody = 1 << 20

var errEmptyBody = fmt.Errorf("%w: request body is empty", domain.ErrInvalidInput)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// decodeJSON reads a single JSON object from the body. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return invalidf("invalid request body: %v", err)
	}
	return nil
}

func decodeJSONString(data string, dst interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalidf("invalid data field: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, invalidf("%s must be a valid id", name)
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidf("%s must be an integer", key)
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return nil, invalidf("%s must be a non-negative number", key)
	}
	return &f, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidf("%s must be true or false", key)
	}
	return &b, nil
}

// queryList splits comma separated and repeated parameters.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func pageParams(r *http.Request) (int, int, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func statuses(raw []string) []domain.ItemStatus {
	out := make([]domain.ItemStatus, len(raw))
	for k, s := range raw {
		out[k] = domain.ItemStatus(s)
	}
	return out
}

// Health answers liveness probes with the result of ping.
func Health(ping func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r); err != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(response.Envelope{Status: response.StatusError, Message: "database unavailable"})
			return
		}
		response.OK(w, map[string]string{"status": "ok"})
	}
}

// imagePublicID reads the public id from the trailing wildcard of an image
// route, minus suffix. chi matches escaped paths on RawPath, so the value is
// unescaped here.
func imagePublicID(r *http.Request, suffix string) (string, error) {
	raw := chi.URLParam(r, "*")
	if suffix != "" {
		var ok bool
		if raw, ok = strings.CutSuffix(raw, suffix); !ok {
			return "", fmt.Errorf("%w: route not found", domain.ErrNotFound)
		}
	}
	publicID, err := url.PathUnescape(raw)
	if err != nil || strings.Trim(publicID, "/") == "" {
		return "", invalidf("publicId must be a valid image id")
	}
	return publicID, nil
}
