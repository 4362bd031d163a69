package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem represents a consumer's pending product selection. At most one
// row exists per (consumer, product) pair.
type CartItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ConsumerID uuid.UUID `json:"consumerId" db:"consumer_id"`
	ProductID  uuid.UUID `json:"productId" db:"product_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Selected   bool      `json:"selected" db:"selected"`
	AddedAt    time.Time `json:"addedAt" db:"added_at"`
}

// CartEntry pairs a cart item with the current product listing. Line totals
// always use the product's current price, not the price at add time.
type CartEntry struct {
	Item    CartItem `json:"item"`
	Product Product  `json:"product"`
}

// LineTotal is the entry's price at the product's current listed price.
func (e *CartEntry) LineTotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Item.Quantity)))
}

// CartView is a consumer's cart with its live-priced grand total.
type CartView struct {
	Entries []CartEntry     `json:"entries"`
	Total   decimal.Decimal `json:"total"`
}

// AddToCartRequest represents the add-to-cart payload.
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest represents the cart quantity update payload.
type UpdateCartItemRequest struct {
	ItemID   uuid.UUID `json:"itemId"`
	Quantity int       `json:"quantity"`
}
