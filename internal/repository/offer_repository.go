package repository

import (
	"context"
	"fmt"
	"time"

	"agriconnect/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// offerRepository implements the OfferRepository interface using PostgreSQL.
type offerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOfferRepository creates a new PostgreSQL-backed offer repository.
func NewOfferRepository(pool *pgxpool.Pool, logger zerolog.Logger) OfferRepository {
	return &offerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "offer").Logger(),
	}
}

const offerColumns = `id, consumer_id, farmer_id, product_id, quantity, offered_price, message, status, created_at, responded_at`

// BeginTx starts a new database transaction.
func (r *offerRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new pending offer.
func (r *offerRepository) Create(ctx context.Context, offer *model.Offer) error {
	query := `
		INSERT INTO offers (id, consumer_id, farmer_id, product_id, quantity, offered_price, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		offer.ID, offer.ConsumerID, offer.FarmerID, offer.ProductID,
		offer.Quantity, offer.OfferedPrice, offer.Message, offer.Status, offer.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("offer_id", offer.ID.String()).Msg("failed to create offer")
		return fmt.Errorf("failed to create offer: %w", err)
	}

	r.logger.Debug().Str("offer_id", offer.ID.String()).Msg("offer created successfully")

	return nil
}

// GetByID retrieves an offer by id.
func (r *offerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	var o model.Offer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.ConsumerID, &o.FarmerID, &o.ProductID, &o.Quantity,
		&o.OfferedPrice, &o.Message, &o.Status, &o.CreatedAt, &o.RespondedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("offer_id", id.String()).Msg("offer not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("offer_id", id.String()).Msg("failed to query offer")
		return nil, fmt.Errorf("failed to query offer: %w", err)
	}

	return &o, nil
}

// Resolve moves a pending offer to a terminal status within the provided
// transaction. The status guard makes concurrent responses lose cleanly:
// only the first one finds the row still pending.
func (r *offerRepository) Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, respondedAt time.Time) (bool, error) {
	query := `
		UPDATE offers
		SET status = $2, responded_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := tx.Exec(ctx, query, id, status, respondedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("offer_id", id.String()).Msg("failed to resolve offer")
		return false, fmt.Errorf("failed to resolve offer: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListByFarmer retrieves offers received by a farmer, newest first.
func (r *offerRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID, limit, offset int) ([]model.Offer, int, error) {
	return r.list(ctx, "farmer_id", farmerID, limit, offset)
}

// ListByConsumer retrieves offers sent by a consumer, newest first.
func (r *offerRepository) ListByConsumer(ctx context.Context, consumerID uuid.UUID, limit, offset int) ([]model.Offer, int, error) {
	return r.list(ctx, "consumer_id", consumerID, limit, offset)
}

func (r *offerRepository) list(ctx context.Context, column string, userID uuid.UUID, limit, offset int) ([]model.Offer, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM offers WHERE %s = $1`, column)
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count offers")
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT `+offerColumns+` FROM offers WHERE %s = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		column,
	)

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query offers")
		return nil, 0, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		var o model.Offer
		err := rows.Scan(
			&o.ID, &o.ConsumerID, &o.FarmerID, &o.ProductID, &o.Quantity,
			&o.OfferedPrice, &o.Message, &o.Status, &o.CreatedAt, &o.RespondedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan offer row")
			return nil, 0, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating offer rows")
		return nil, 0, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, total, nil
}
