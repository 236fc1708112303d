package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferFields_Offer(t *testing.T) {
	avail := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		fields  OfferFields
		want    Offer
		wantErr bool
	}{
		{
			name:   "sell with price",
			fields: OfferFields{Type: ItemTypeSell, Price: &Price{Amount: 1000}},
			want:   SellOffer{Price: Price{Amount: 1000, Currency: DefaultCurrency}},
		},
		{
			name:    "sell without price",
			fields:  OfferFields{Type: ItemTypeSell},
			wantErr: true,
		},
		{
			name:    "sell with zero amount",
			fields:  OfferFields{Type: ItemTypeSell, Price: &Price{Amount: 0}},
			wantErr: true,
		},
		{
			name:    "sell carrying rent block",
			fields:  OfferFields{Type: ItemTypeSell, Price: &Price{Amount: 5}, RentDetails: &RentDetails{}},
			wantErr: true,
		},
		{
			name: "rent complete",
			fields: OfferFields{Type: ItemTypeRent, RentDetails: &RentDetails{
				Duration: RentPerWeek, PricePerUnit: 200, AvailabilityDate: avail,
			}},
			want: RentOffer{Details: RentDetails{Duration: RentPerWeek, PricePerUnit: 200, AvailabilityDate: avail}},
		},
		{
			name: "rent missing availability",
			fields: OfferFields{Type: ItemTypeRent, RentDetails: &RentDetails{
				Duration: RentPerDay, PricePerUnit: 50,
			}},
			wantErr: true,
		},
		{
			name:    "rent with bad duration",
			fields:  OfferFields{Type: ItemTypeRent, RentDetails: &RentDetails{Duration: "year", PricePerUnit: 1, AvailabilityDate: avail}},
			wantErr: true,
		},
		{
			name:   "exchange",
			fields: OfferFields{Type: ItemTypeExchange, ExchangeDetails: &ExchangeDetails{ExchangeFor: "winter boots"}},
			want:   ExchangeOffer{Details: ExchangeDetails{ExchangeFor: "winter boots"}},
		},
		{
			name:    "exchange with blank target",
			fields:  OfferFields{Type: ItemTypeExchange, ExchangeDetails: &ExchangeDetails{ExchangeFor: "  "}},
			wantErr: true,
		},
		{
			name:    "exchange carrying price",
			fields:  OfferFields{Type: ItemTypeExchange, Price: &Price{Amount: 1}, ExchangeDetails: &ExchangeDetails{ExchangeFor: "x"}},
			wantErr: true,
		},
		{
			name:    "unknown type",
			fields:  OfferFields{Type: "gift"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fields.Offer()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldsOf_PopulatesOnlyMatchingBlock(t *testing.T) {
	f := FieldsOf(RentOffer{Details: RentDetails{Duration: RentPerDay, PricePerUnit: 10}})
	assert.Equal(t, ItemTypeRent, f.Type)
	assert.NotNil(t, f.RentDetails)
	assert.Nil(t, f.Price)
	assert.Nil(t, f.ExchangeDetails)

	f = FieldsOf(SellOffer{Price: Price{Amount: 3}})
	assert.Equal(t, ItemTypeSell, f.Type)
	assert.Equal(t, 3.0, f.Price.Amount)
	assert.Nil(t, f.RentDetails)
}

func TestOffer_ListPrice(t *testing.T) {
	assert.Equal(t, 1000.0, SellOffer{Price: Price{Amount: 1000}}.ListPrice())
	assert.Equal(t, 25.0, RentOffer{Details: RentDetails{PricePerUnit: 25}}.ListPrice())
	assert.Zero(t, ExchangeOffer{}.ListPrice())
}
