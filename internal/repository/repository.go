package repository

import (
	"context"
	"time"

	"agriconnect/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a new user account.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by id. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByUsername retrieves a user by username. Returns nil when not found.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByEmail retrieves a user by email. Returns nil when not found.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// Create inserts a new product listing.
	Create(ctx context.Context, product *model.Product) error

	// GetByID retrieves a single product by id. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Search retrieves available products matching the given filters,
	// newest first, along with the total match count.
	Search(ctx context.Context, params model.ProductSearch) ([]model.Product, int, error)

	// ListByFarmer retrieves a farmer's products, newest first.
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, limit int) ([]model.Product, error)

	// Update persists all mutable product fields and refreshes updated_at.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product listing.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetByID retrieves a cart item by id. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error)

	// GetByConsumerAndProduct retrieves the single cart item for a
	// (consumer, product) pair. Returns nil when not found.
	GetByConsumerAndProduct(ctx context.Context, consumerID, productID uuid.UUID) (*model.CartItem, error)

	// Create inserts a new cart item.
	Create(ctx context.Context, item *model.CartItem) error

	// UpdateQuantity sets a cart item's quantity.
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error

	// UpdateSelected sets a cart item's selection flag.
	UpdateSelected(ctx context.Context, id uuid.UUID, selected bool) error

	// Delete removes a cart item.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListWithProducts retrieves a consumer's cart items joined with their
	// current product listings.
	ListWithProducts(ctx context.Context, consumerID uuid.UUID) ([]model.CartEntry, error)

	// CountByConsumer returns the number of items in a consumer's cart.
	CountByConsumer(ctx context.Context, consumerID uuid.UUID) (int, error)
}

// OfferRepository defines the interface for offer data access operations.
type OfferRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new pending offer.
	Create(ctx context.Context, offer *model.Offer) error

	// GetByID retrieves an offer by id. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Offer, error)

	// Resolve moves a pending offer to a terminal status within the provided
	// transaction. Returns false when the offer was no longer pending.
	Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, respondedAt time.Time) (bool, error)

	// ListByFarmer retrieves offers received by a farmer, newest first,
	// along with the total count.
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, limit, offset int) ([]model.Offer, int, error)

	// ListByConsumer retrieves offers sent by a consumer, newest first,
	// along with the total count.
	ListByConsumer(ctx context.Context, consumerID uuid.UUID, limit, offset int) ([]model.Offer, int, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts a new order within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// ListByFarmer retrieves a farmer's orders, newest first, along with the
	// total count.
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, limit, offset int) ([]model.Order, int, error)

	// ListByConsumer retrieves a consumer's orders, newest first, along with
	// the total count.
	ListByConsumer(ctx context.Context, consumerID uuid.UUID, limit, offset int) ([]model.Order, int, error)
}
