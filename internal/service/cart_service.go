package service

import (
	"context"
	"fmt"
	"time"

	"agriconnect/internal/cache"
	"agriconnect/internal/model"
	"agriconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	counts      *cache.CartCounts // nil when the cache is disabled
	logger      zerolog.Logger
}

// NewCartService creates a new cart service. counts may be nil, in which
// case badge counts always hit the database.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	counts *cache.CartCounts,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		counts:      counts,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Add puts a product in the consumer's cart. A second add for the same
// product accumulates into the existing item, clamped to the product's
// available quantity rather than erroring.
func (s *cartService) Add(ctx context.Context, consumerID, productID uuid.UUID, quantity int) (int, error) {
	if quantity < 1 {
		return 0, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsAvailable {
		return 0, model.ErrProductUnavailable
	}

	if quantity > product.Quantity {
		return 0, model.NewQuantityUnavailable(product.Quantity, product.Unit)
	}

	item, err := s.cartRepo.GetByConsumerAndProduct(ctx, consumerID, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to get cart item: %w", err)
	}

	if item != nil {
		// Accumulate, clamped to current stock.
		newQuantity := item.Quantity + quantity
		if newQuantity > product.Quantity {
			newQuantity = product.Quantity
		}
		if err := s.cartRepo.UpdateQuantity(ctx, item.ID, newQuantity); err != nil {
			return 0, fmt.Errorf("failed to update cart item: %w", err)
		}
		s.logger.Debug().
			Str("item_id", item.ID.String()).
			Int("quantity", newQuantity).
			Msg("cart item quantity accumulated")
	} else {
		item = &model.CartItem{
			ID:         uuid.New(),
			ConsumerID: consumerID,
			ProductID:  productID,
			Quantity:   quantity,
			Selected:   true,
			AddedAt:    time.Now(),
		}
		if err := s.cartRepo.Create(ctx, item); err != nil {
			return 0, fmt.Errorf("failed to create cart item: %w", err)
		}
		s.logger.Debug().
			Str("item_id", item.ID.String()).
			Int("quantity", quantity).
			Msg("cart item created")
	}

	s.invalidateCount(ctx, consumerID)

	count, err := s.cartRepo.CountByConsumer(ctx, consumerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	return count, nil
}

// Update sets a cart item's quantity; zero or negative removes the item.
func (s *cartService) Update(ctx context.Context, itemID, consumerID uuid.UUID, quantity int) error {
	item, err := s.ownedItem(ctx, itemID, consumerID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		if err := s.cartRepo.Delete(ctx, itemID); err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
		s.invalidateCount(ctx, consumerID)
		s.logger.Debug().Str("item_id", itemID.String()).Msg("cart item removed")
		return nil
	}

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	if quantity > product.Quantity {
		return model.NewQuantityUnavailable(product.Quantity, product.Unit)
	}

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	s.invalidateCount(ctx, consumerID)

	return nil
}

// ToggleSelection flips a cart item's selection flag.
func (s *cartService) ToggleSelection(ctx context.Context, itemID, consumerID uuid.UUID) (bool, error) {
	item, err := s.ownedItem(ctx, itemID, consumerID)
	if err != nil {
		return false, err
	}

	selected := !item.Selected
	if err := s.cartRepo.UpdateSelected(ctx, itemID, selected); err != nil {
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}

	return selected, nil
}

// View retrieves the consumer's cart. Totals use each product's current
// listed price, so they track price edits made after the item was added.
func (s *cartService) View(ctx context.Context, consumerID uuid.UUID) (*model.CartView, error) {
	entries, err := s.cartRepo.ListWithProducts(ctx, consumerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	if entries == nil {
		entries = []model.CartEntry{}
	}

	total := decimal.Zero
	for i := range entries {
		total = total.Add(entries[i].LineTotal())
	}

	return &model.CartView{
		Entries: entries,
		Total:   total,
	}, nil
}

// Count returns the number of items in the consumer's cart, served from
// the cache when one is configured.
func (s *cartService) Count(ctx context.Context, consumerID uuid.UUID) (int, error) {
	if s.counts != nil {
		if count, ok := s.counts.Get(ctx, consumerID); ok {
			return count, nil
		}
	}

	count, err := s.cartRepo.CountByConsumer(ctx, consumerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	if s.counts != nil {
		s.counts.Set(ctx, consumerID, count)
	}

	return count, nil
}

// ownedItem fetches a cart item and verifies the consumer owns it. Items
// belonging to other consumers are reported as missing, not forbidden.
func (s *cartService) ownedItem(ctx context.Context, itemID, consumerID uuid.UUID) (*model.CartItem, error) {
	item, err := s.cartRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	if item == nil || item.ConsumerID != consumerID {
		return nil, model.ErrCartItemNotFound
	}
	return item, nil
}

func (s *cartService) invalidateCount(ctx context.Context, consumerID uuid.UUID) {
	if s.counts != nil {
		s.counts.Invalidate(ctx, consumerID)
	}
}
