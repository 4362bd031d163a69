package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusInTransit = "in_transit"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order represents a confirmed transaction. Orders are created only by
// accepting an offer, never directly by a consumer action.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ConsumerID      uuid.UUID       `json:"consumerId" db:"consumer_id"`
	FarmerID        uuid.UUID       `json:"farmerId" db:"farmer_id"`
	ProductID       uuid.UUID       `json:"productId" db:"product_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PricePerUnit    decimal.Decimal `json:"pricePerUnit" db:"price_per_unit"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status          string          `json:"status" db:"status"`
	OfferID         *uuid.UUID      `json:"offerId,omitempty" db:"offer_id"`
	DeliveryAddress string          `json:"deliveryAddress,omitempty" db:"delivery_address"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderPage is one page of a user's orders.
type OrderPage struct {
	Orders  []Order `json:"orders"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
	Total   int     `json:"total"`
	Pages   int     `json:"pages"`
}
