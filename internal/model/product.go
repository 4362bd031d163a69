package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a farmer-owned produce listing.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	FarmerID    uuid.UUID       `json:"farmerId" db:"farmer_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Unit        string          `json:"unit" db:"unit"`
	Category    string          `json:"category,omitempty" db:"category"`
	ImagePath   *string         `json:"imagePath,omitempty" db:"image_path"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductInput represents the add/edit product form payload.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	IsAvailable bool            `json:"isAvailable"`
}

// ProductSearch holds catalogue search and filter parameters.
type ProductSearch struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	PerPage  int
}

// ProductPage is one page of catalogue search results.
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	PerPage  int       `json:"perPage"`
	Total    int       `json:"total"`
	Pages    int       `json:"pages"`
}

// HasPrev reports whether a previous page exists.
func (p *ProductPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a further page exists.
func (p *ProductPage) HasNext() bool { return p.Page < p.Pages }
