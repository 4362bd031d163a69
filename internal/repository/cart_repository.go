package repository

import (
	"context"
	"fmt"

	"agriconnect/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartColumns = `id, consumer_id, product_id, quantity, selected, added_at`

// GetByID retrieves a cart item by id.
func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByConsumerAndProduct retrieves the single cart item for a (consumer, product) pair.
func (r *cartRepository) GetByConsumerAndProduct(ctx context.Context, consumerID, productID uuid.UUID) (*model.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE consumer_id = $1 AND product_id = $2`
	return r.getOne(ctx, query, consumerID, productID)
}

// Create inserts a new cart item.
func (r *cartRepository) Create(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, consumer_id, product_id, quantity, selected, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.ConsumerID, item.ProductID, item.Quantity, item.Selected, item.AddedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("consumer_id", item.ConsumerID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to create cart item")
		return fmt.Errorf("failed to create cart item: %w", err)
	}

	return nil
}

// UpdateQuantity sets a cart item's quantity.
func (r *cartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	_, err := r.pool.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to update cart item quantity")
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// UpdateSelected sets a cart item's selection flag.
func (r *cartRepository) UpdateSelected(ctx context.Context, id uuid.UUID, selected bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE cart_items SET selected = $2 WHERE id = $1`, id, selected)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to update cart item selection")
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// Delete removes a cart item.
func (r *cartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// ListWithProducts retrieves a consumer's cart items joined with their
// current product listings, oldest first.
func (r *cartRepository) ListWithProducts(ctx context.Context, consumerID uuid.UUID) ([]model.CartEntry, error) {
	query := `
		SELECT ci.id, ci.consumer_id, ci.product_id, ci.quantity, ci.selected, ci.added_at,
		       p.id, p.farmer_id, p.name, p.description, p.price, p.quantity, p.unit,
		       p.category, p.image_path, p.is_available, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.consumer_id = $1
		ORDER BY ci.added_at
	`

	rows, err := r.pool.Query(ctx, query, consumerID)
	if err != nil {
		r.logger.Error().Err(err).Str("consumer_id", consumerID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var entries []model.CartEntry
	for rows.Next() {
		var e model.CartEntry
		err := rows.Scan(
			&e.Item.ID, &e.Item.ConsumerID, &e.Item.ProductID, &e.Item.Quantity,
			&e.Item.Selected, &e.Item.AddedAt,
			&e.Product.ID, &e.Product.FarmerID, &e.Product.Name, &e.Product.Description,
			&e.Product.Price, &e.Product.Quantity, &e.Product.Unit, &e.Product.Category,
			&e.Product.ImagePath, &e.Product.IsAvailable, &e.Product.CreatedAt, &e.Product.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart entry row")
			return nil, fmt.Errorf("failed to scan cart entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart entry rows")
		return nil, fmt.Errorf("error iterating cart entries: %w", err)
	}

	return entries, nil
}

// CountByConsumer returns the number of items in a consumer's cart.
func (r *cartRepository) CountByConsumer(ctx context.Context, consumerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cart_items WHERE consumer_id = $1`, consumerID).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("consumer_id", consumerID.String()).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}

func (r *cartRepository) getOne(ctx context.Context, query string, args ...any) (*model.CartItem, error) {
	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&item.ID, &item.ConsumerID, &item.ProductID, &item.Quantity, &item.Selected, &item.AddedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}
