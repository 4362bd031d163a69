package service

import (
	"context"
	"fmt"
	"time"

	"agriconnect/internal/model"
	"agriconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// offersPerPage is the page size for offer listings.
const offersPerPage = 20

// maxOfferMessageLen caps the optional note a consumer attaches to an offer.
const maxOfferMessageLen = 500

// offerService implements OfferService.
type offerService struct {
	offerRepo   repository.OfferRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOfferService creates a new offer service.
func NewOfferService(
	offerRepo repository.OfferRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OfferService {
	return &offerService{
		offerRepo:   offerRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "offer").Logger(),
	}
}

// Send creates a pending offer from a consumer to the product's farmer.
// The quantity check is optimistic: it compares against the product's live
// stock at this moment, without reserving anything.
func (s *offerService) Send(ctx context.Context, consumerID uuid.UUID, req *model.SendOfferRequest) (*model.Offer, error) {
	if req == nil || req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	if !req.OfferedPrice.IsPositive() {
		return nil, model.ErrInvalidPrice
	}
	if len(req.Message) > maxOfferMessageLen {
		return nil, model.NewValidationError("Message cannot exceed 500 characters")
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsAvailable {
		return nil, model.ErrProductUnavailable
	}

	if req.Quantity > product.Quantity {
		return nil, model.NewQuantityUnavailable(product.Quantity, product.Unit)
	}

	offer := &model.Offer{
		ID:           uuid.New(),
		ConsumerID:   consumerID,
		FarmerID:     product.FarmerID,
		ProductID:    product.ID,
		Quantity:     req.Quantity,
		OfferedPrice: req.OfferedPrice,
		Message:      req.Message,
		Status:       model.OfferStatusPending,
		CreatedAt:    time.Now(),
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		s.logger.Error().Err(err).Str("offer_id", offer.ID.String()).Msg("failed to create offer")
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.logger.Info().
		Str("offer_id", offer.ID.String()).
		Str("product_id", product.ID.String()).
		Str("consumer_id", consumerID.String()).
		Msg("offer sent")

	return offer, nil
}

// Respond accepts or rejects a pending offer. Only the owning farmer may
// respond, and an offer leaves pending exactly once. On accept, the order
// is written in the same transaction as the status transition, so an
// accepted offer without an order cannot be observed.
func (s *offerService) Respond(ctx context.Context, offerID, farmerID uuid.UUID, action string) (*model.Offer, error) {
	if action != model.OfferActionAccept && action != model.OfferActionReject {
		return nil, model.NewValidationError("Invalid action")
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil {
		return nil, model.ErrOfferNotFound
	}
	if offer.FarmerID != farmerID {
		s.logger.Warn().
			Str("offer_id", offerID.String()).
			Str("farmer_id", farmerID.String()).
			Msg("offer response denied: not the addressed farmer")
		return nil, model.ErrForbidden
	}
	if offer.Status != model.OfferStatusPending {
		return nil, model.ErrAlreadyResolved
	}

	status := model.OfferStatusRejected
	if action == model.OfferActionAccept {
		status = model.OfferStatusAccepted
	}

	tx, err := s.offerRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to respond to offer: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	respondedAt := time.Now()
	resolved, err := s.offerRepo.Resolve(ctx, tx, offerID, status, respondedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to respond to offer: %w", err)
	}
	if !resolved {
		// Another response won the race since we loaded the offer.
		err = model.ErrAlreadyResolved
		return nil, err
	}

	if status == model.OfferStatusAccepted {
		order := &model.Order{
			ID:           uuid.New(),
			ConsumerID:   offer.ConsumerID,
			FarmerID:     offer.FarmerID,
			ProductID:    offer.ProductID,
			Quantity:     offer.Quantity,
			PricePerUnit: offer.OfferedPrice,
			TotalAmount:  offer.TotalAmount(),
			Status:       model.OrderStatusPending,
			OfferID:      &offer.ID,
			CreatedAt:    respondedAt,
			UpdatedAt:    respondedAt,
		}

		if err = s.orderRepo.Create(ctx, tx, order); err != nil {
			s.logger.Error().
				Err(err).
				Str("offer_id", offerID.String()).
				Msg("failed to create order for accepted offer")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("offer_id", offerID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to respond to offer: %w", err)
	}

	offer.Status = status
	offer.RespondedAt = &respondedAt

	s.logger.Info().
		Str("offer_id", offerID.String()).
		Str("status", status).
		Msg("offer resolved")

	return offer, nil
}

// List retrieves a page of the user's offers: farmers see received offers,
// consumers see sent ones.
func (s *offerService) List(ctx context.Context, userID uuid.UUID, role string, page int) (*model.OfferPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * offersPerPage

	var (
		offers []model.Offer
		total  int
		err    error
	)
	if role == model.RoleFarmer {
		offers, total, err = s.offerRepo.ListByFarmer(ctx, userID, offersPerPage, offset)
	} else {
		offers, total, err = s.offerRepo.ListByConsumer(ctx, userID, offersPerPage, offset)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list offers")
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	if offers == nil {
		offers = []model.Offer{}
	}

	return &model.OfferPage{
		Offers:  offers,
		Page:    page,
		PerPage: offersPerPage,
		Total:   total,
		Pages:   pageCount(total, offersPerPage),
	}, nil
}
