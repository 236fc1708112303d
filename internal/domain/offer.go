package domain

import (
	"strings"
	"time"
)

// ItemType discriminates the offer carried by an item.
type ItemType string

const (
	ItemTypeSell     ItemType = "sell"
	ItemTypeRent     ItemType = "rent"
	ItemTypeExchange ItemType = "exchange"
)

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeSell, ItemTypeRent, ItemTypeExchange:
		return true
	}
	return false
}

// RentDuration is the billing unit of a rental.
type RentDuration string

const (
	RentPerDay   RentDuration = "day"
	RentPerWeek  RentDuration = "week"
	RentPerMonth RentDuration = "month"
)

func (d RentDuration) IsValid() bool {
	switch d {
	case RentPerDay, RentPerWeek, RentPerMonth:
		return true
	}
	return false
}

const DefaultCurrency = "UAH"

type Price struct {
	Amount     float64
	Currency   string
	Negotiable bool
}

type RentDetails struct {
	Duration         RentDuration
	PricePerUnit     float64
	AvailabilityDate time.Time
	Deposit          float64
}

type ExchangeDetails struct {
	ExchangeFor         string
	PreferredCategories []string
}

// Offer is the type-specific part of an item. Exactly one of SellOffer,
// RentOffer or ExchangeOffer.
type Offer interface {
	Type() ItemType
	// ListPrice is the amount used for price filters and sorting. Zero for exchanges.
	ListPrice() float64
	Validate() error
	isOffer()
}

type SellOffer struct {
	Price Price
}

func (SellOffer) Type() ItemType       { return ItemTypeSell }
func (o SellOffer) ListPrice() float64 { return o.Price.Amount }
func (SellOffer) isOffer()             {}

func (o SellOffer) Validate() error {
	if o.Price.Amount <= 0 {
		return invalid("price.amount is required for sell items and must be positive")
	}
	return nil
}

type RentOffer struct {
	Details RentDetails
}

func (RentOffer) Type() ItemType       { return ItemTypeRent }
func (o RentOffer) ListPrice() float64 { return o.Details.PricePerUnit }
func (RentOffer) isOffer()             {}

func (o RentOffer) Validate() error {
	if !o.Details.Duration.IsValid() {
		return invalid("rentDetails.duration is required and must be one of day, week, month")
	}
	if o.Details.PricePerUnit <= 0 {
		return invalid("rentDetails.pricePerUnit is required and must be positive")
	}
	if o.Details.AvailabilityDate.IsZero() {
		return invalid("rentDetails.availabilityDate is required")
	}
	if o.Details.Deposit < 0 {
		return invalid("rentDetails.deposit cannot be negative")
	}
	return nil
}

type ExchangeOffer struct {
	Details ExchangeDetails
}

func (ExchangeOffer) Type() ItemType     { return ItemTypeExchange }
func (ExchangeOffer) ListPrice() float64 { return 0 }
func (ExchangeOffer) isOffer()           {}

func (o ExchangeOffer) Validate() error {
	if strings.TrimSpace(o.Details.ExchangeFor) == "" {
		return invalid("exchangeDetails.exchangeFor is required for exchange items")
	}
	return nil
}

// OfferFields is the tagged layout used on the wire and in storage:
// a type plus optional detail blocks.
type OfferFields struct {
	Type            ItemType
	Price           *Price
	RentDetails     *RentDetails
	ExchangeDetails *ExchangeDetails
}

// Offer converts the tagged layout to an Offer. The block matching Type must be
// present and the other blocks must be absent.
func (f OfferFields) Offer() (Offer, error) {
	if !f.Type.IsValid() {
		return nil, invalid("type must be one of sell, rent, exchange")
	}

	var offer Offer
	switch f.Type {
	case ItemTypeSell:
		if f.RentDetails != nil || f.ExchangeDetails != nil {
			return nil, invalid("sell items cannot carry rentDetails or exchangeDetails")
		}
		if f.Price == nil {
			return nil, invalid("price is required for sell items")
		}
		p := *f.Price
		if p.Currency == "" {
			p.Currency = DefaultCurrency
		}
		offer = SellOffer{Price: p}
	case ItemTypeRent:
		if f.Price != nil || f.ExchangeDetails != nil {
			return nil, invalid("rent items cannot carry price or exchangeDetails")
		}
		if f.RentDetails == nil {
			return nil, invalid("rentDetails is required for rent items")
		}
		offer = RentOffer{Details: *f.RentDetails}
	case ItemTypeExchange:
		if f.Price != nil || f.RentDetails != nil {
			return nil, invalid("exchange items cannot carry price or rentDetails")
		}
		if f.ExchangeDetails == nil {
			return nil, invalid("exchangeDetails is required for exchange items")
		}
		offer = ExchangeOffer{Details: *f.ExchangeDetails}
	}

	if err := offer.Validate(); err != nil {
		return nil, err
	}
	return offer, nil
}

// FieldsOf flattens an Offer back to its tagged layout.
func FieldsOf(o Offer) OfferFields {
	switch v := o.(type) {
	case SellOffer:
		p := v.Price
		return OfferFields{Type: ItemTypeSell, Price: &p}
	case RentOffer:
		d := v.Details
		return OfferFields{Type: ItemTypeRent, RentDetails: &d}
	case ExchangeOffer:
		d := v.Details
		return OfferFields{Type: ItemTypeExchange, ExchangeDetails: &d}
	}
	return OfferFields{}
}
