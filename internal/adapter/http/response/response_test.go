package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: nope", domain.ErrInvalidTransition), http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: admin", domain.ErrForbidden), http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{&domain.DeleteBlockedError{HasItems: true}, http.StatusBadRequest},
		{fmt.Errorf("%w: upload a.jpg", domain.ErrStorage), http.StatusInternalServerError},
		{errors.New("socket closed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestError_DeleteBlockedDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/category/x", nil)
	Error(rec, req, logger.NewNop(), &domain.DeleteBlockedError{HasSubcategories: true, SubcategoriesCount: 2})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, StatusError, body["status"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, true, details["hasSubcategories"])
	assert.Equal(t, false, details["hasItems"])
	assert.Equal(t, 2.0, details["subcategoriesCount"])
}

func TestError_HidesStorageErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/item", nil)
	Error(rec, req, logger.NewNop(), fmt.Errorf("%w: upload a.jpg: api key invalid", domain.ErrStorage))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "api key")
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a"}, usecase.Pagination{Page: 2, Limit: 10, Total: 25})

	body := decode(t, rec)
	assert.Equal(t, StatusSuccess, body["status"])
	p := body["pagination"].(map[string]interface{})
	assert.Equal(t, 3.0, p["pages"])
	assert.Equal(t, 25.0, p["total"])
}
