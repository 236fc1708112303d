package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestItemFilter_FromQuery(t *testing.T) {
	cat1, cat2 := primitive.NewObjectID(), primitive.NewObjectID()
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/item?page=2&limit=5&category="+cat1.Hex()+","+cat2.Hex()+
			"&type=rent&condition=good&minPrice=10&maxPrice=99.5&featured=true&sort=price_asc&status=active,sold&q=coat", nil)

	f, err := (&ItemHandler{}).filter(r)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, []primitive.ObjectID{cat1, cat2}, f.Categories)
	assert.Equal(t, domain.ItemTypeRent, f.Type)
	assert.Equal(t, domain.ConditionGood, f.Condition)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 10.0, *f.MinPrice)
	assert.Equal(t, 99.5, *f.MaxPrice)
	require.NotNil(t, f.Featured)
	assert.True(t, *f.Featured)
	assert.Equal(t, []domain.ItemStatus{domain.ItemStatusActive, domain.ItemStatusSold}, f.Statuses)
	assert.Equal(t, "coat", f.Query)
}

func TestItemFilter_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"bad page", "page=first"},
		{"bad category", "category=shoes"},
		{"bad type", "type=gift"},
		{"bad condition", "condition=mint"},
		{"negative price", "minPrice=-1"},
		{"bad featured", "featured=maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/item?"+tc.query, nil)
			_, err := (&ItemHandler{}).filter(r)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestItemRequest_ImagesKeepMainFlag(t *testing.T) {
	var req itemRequest
	require.NoError(t, decodeJSONString(`{
		"images": [
			{"url": "https://cdn/a.jpg", "publicId": "items/a"},
			{"url": "https://cdn/b.jpg", "publicId": "items/b", "isMain": true}
		]
	}`, &req))

	images := req.images()
	require.Len(t, images, 2)
	assert.False(t, images[0].IsMain)
	assert.True(t, images[1].IsMain)
	assert.Equal(t, "items/b", images[1].PublicID)
}

func TestItemRequest_Details(t *testing.T) {
	category := primitive.NewObjectID()
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	req := itemRequest{
		Category:   category.Hex(),
		Title:      "Denim jacket",
		Condition:  domain.ConditionFair,
		Type:       domain.ItemTypeSell,
		Price:      &priceDTO{Amount: 1200},
		Visibility: &visibilityDTO{EndDate: &end, IsUrgent: true},
	}
	d, err := req.details()
	require.NoError(t, err)
	assert.Equal(t, category, d.Category)
	sell, ok := d.Offer.(domain.SellOffer)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultCurrency, sell.Price.Currency)
	assert.Equal(t, &end, d.Visibility.EndDate)
	assert.True(t, d.Visibility.IsUrgent)

	req.RentDetails = &rentDetailsDTO{Duration: domain.RentPerDay, PricePerUnit: 50}
	_, err = req.details()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = itemRequest{Category: "nope", Type: domain.ItemTypeSell, Price: &priceDTO{Amount: 1}}
	_, err = req.details()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestToProfileResponse_HidesPreferencesFromOthers(t *testing.T) {
	p := &domain.Profile{UserID: "user-1", DisplayName: "Olena"}

	assert.Nil(t, toProfileResponse(p, false).Preferences)
	assert.NotNil(t, toProfileResponse(p, true).Preferences)
}

func TestQueryList_SplitsAndTrims(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?status=active,%20sold&status=draft&status=", nil)
	assert.Equal(t, []string{"active", "sold", "draft"}, queryList(r, "status"))
}
