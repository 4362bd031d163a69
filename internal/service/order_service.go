package service

import (
	"context"
	"fmt"

	"agriconnect/internal/model"
	"agriconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ordersPerPage is the page size for order listings.
const ordersPerPage = 20

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// List retrieves a page of the user's orders, filtered by role.
func (s *orderService) List(ctx context.Context, userID uuid.UUID, role string, page int) (*model.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * ordersPerPage

	var (
		orders []model.Order
		total  int
		err    error
	)
	if role == model.RoleFarmer {
		orders, total, err = s.orderRepo.ListByFarmer(ctx, userID, ordersPerPage, offset)
	} else {
		orders, total, err = s.orderRepo.ListByConsumer(ctx, userID, ordersPerPage, offset)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if orders == nil {
		orders = []model.Order{}
	}

	return &model.OrderPage{
		Orders:  orders,
		Page:    page,
		PerPage: ordersPerPage,
		Total:   total,
		Pages:   pageCount(total, ordersPerPage),
	}, nil
}
