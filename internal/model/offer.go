package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer statuses. An offer leaves pending exactly once.
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
)

// Offer actions
const (
	OfferActionAccept = "accept"
	OfferActionReject = "reject"
)

// Offer represents a consumer's proposed price and quantity for a product,
// awaiting the farmer's decision.
type Offer struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ConsumerID   uuid.UUID       `json:"consumerId" db:"consumer_id"`
	FarmerID     uuid.UUID       `json:"farmerId" db:"farmer_id"`
	ProductID    uuid.UUID       `json:"productId" db:"product_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	OfferedPrice decimal.Decimal `json:"offeredPrice" db:"offered_price"`
	Message      string          `json:"message,omitempty" db:"message"`
	Status       string          `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	RespondedAt  *time.Time      `json:"respondedAt,omitempty" db:"responded_at"`
}

// TotalAmount is the offered price times quantity.
func (o *Offer) TotalAmount() decimal.Decimal {
	return o.OfferedPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// SendOfferRequest represents the send-offer payload.
type SendOfferRequest struct {
	ProductID    uuid.UUID       `json:"productId"`
	Quantity     int             `json:"quantity"`
	OfferedPrice decimal.Decimal `json:"offeredPrice"`
	Message      string          `json:"message"`
}

// OfferPage is one page of a user's offers.
type OfferPage struct {
	Offers  []Offer `json:"offers"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
	Total   int     `json:"total"`
	Pages   int     `json:"pages"`
}
