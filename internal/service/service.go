package service

import (
	"context"
	"io"

	"agriconnect/internal/model"

	"github.com/google/uuid"
)

// ImageUpload is an uploaded product image waiting to be stored.
type ImageUpload struct {
	Filename string
	Data     io.Reader
}

// AccountService defines operations for account lifecycle.
type AccountService interface {
	// Register validates and creates a new user account.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// Login verifies credentials and returns the user with a signed token.
	Login(ctx context.Context, username, password string) (*model.User, string, error)

	// Profile retrieves a user's public profile.
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

// CatalogService defines operations for product management.
type CatalogService interface {
	// Search retrieves a page of available products matching the filters.
	Search(ctx context.Context, params model.ProductSearch) (*model.ProductPage, error)

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// ListByFarmer retrieves a farmer's own listings, newest first.
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, limit int) ([]model.Product, error)

	// Create adds a new listing owned by the farmer, storing the image if
	// one is provided.
	Create(ctx context.Context, farmerID uuid.UUID, input *model.ProductInput, image *ImageUpload) (*model.Product, error)

	// Update edits a listing. Only the owning farmer may update.
	Update(ctx context.Context, productID, farmerID uuid.UUID, input *model.ProductInput, image *ImageUpload) (*model.Product, error)

	// Delete removes a listing and its stored image. Only the owning
	// farmer may delete.
	Delete(ctx context.Context, productID, farmerID uuid.UUID) error
}

// CartService defines operations for cart management.
type CartService interface {
	// Add puts a product in the consumer's cart, accumulating into the
	// existing item when present. Returns the updated cart item count.
	Add(ctx context.Context, consumerID, productID uuid.UUID, quantity int) (int, error)

	// Update sets a cart item's quantity; zero or negative removes it.
	Update(ctx context.Context, itemID, consumerID uuid.UUID, quantity int) error

	// ToggleSelection flips a cart item's selection flag and returns the
	// new value.
	ToggleSelection(ctx context.Context, itemID, consumerID uuid.UUID) (bool, error)

	// View retrieves the consumer's cart with live-priced totals.
	View(ctx context.Context, consumerID uuid.UUID) (*model.CartView, error)

	// Count returns the number of items in the consumer's cart.
	Count(ctx context.Context, consumerID uuid.UUID) (int, error)
}

// OfferService defines operations for the offer lifecycle.
type OfferService interface {
	// Send creates a pending offer from a consumer to the product's farmer.
	Send(ctx context.Context, consumerID uuid.UUID, req *model.SendOfferRequest) (*model.Offer, error)

	// Respond accepts or rejects a pending offer. Accepting creates the
	// corresponding order in the same transaction.
	Respond(ctx context.Context, offerID, farmerID uuid.UUID, action string) (*model.Offer, error)

	// List retrieves a page of the user's offers: farmers see received
	// offers, consumers see sent ones.
	List(ctx context.Context, userID uuid.UUID, role string, page int) (*model.OfferPage, error)
}

// OrderService defines operations for order listings.
type OrderService interface {
	// List retrieves a page of the user's orders, role-filtered.
	List(ctx context.Context, userID uuid.UUID, role string, page int) (*model.OrderPage, error)
}

// pageCount computes the number of pages for a paginated listing.
func pageCount(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total-1)/perPage + 1
}
