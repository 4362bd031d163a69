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

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, consumer_id, farmer_id, product_id, quantity, price_per_unit, total_amount, status, offer_id, delivery_address, notes, created_at, updated_at`

// Create inserts a new order within the provided transaction. Orders are
// only ever written alongside the offer resolution that produced them.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, consumer_id, farmer_id, product_id, quantity, price_per_unit, total_amount, status, offer_id, delivery_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.ConsumerID, order.FarmerID, order.ProductID,
		order.Quantity, order.PricePerUnit, order.TotalAmount, order.Status,
		order.OfferID, order.DeliveryAddress, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().Str("order_id", order.ID.String()).Msg("order created successfully")

	return nil
}

// ListByFarmer retrieves a farmer's orders, newest first.
func (r *orderRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	return r.list(ctx, "farmer_id", farmerID, limit, offset)
}

// ListByConsumer retrieves a consumer's orders, newest first.
func (r *orderRepository) ListByConsumer(ctx context.Context, consumerID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	return r.list(ctx, "consumer_id", consumerID, limit, offset)
}

func (r *orderRepository) list(ctx context.Context, column string, userID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM orders WHERE %s = $1`, column)
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT `+orderColumns+` FROM orders WHERE %s = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		column,
	)

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		err := rows.Scan(
			&o.ID, &o.ConsumerID, &o.FarmerID, &o.ProductID, &o.Quantity,
			&o.PricePerUnit, &o.TotalAmount, &o.Status, &o.OfferID,
			&o.DeliveryAddress, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}
