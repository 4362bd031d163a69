package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agriconnect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(farmerID, consumerID uuid.UUID) model.Order {
	return model.Order{
		ID:           uuid.New(),
		ConsumerID:   consumerID,
		FarmerID:     farmerID,
		ProductID:    uuid.New(),
		Quantity:     20,
		PricePerUnit: decimal.RequireFromString("3.00"),
		TotalAmount:  decimal.RequireFromString("60.00"),
		Status:       model.OrderStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestOrderService_List_RoleFiltering(t *testing.T) {
	logger := zerolog.Nop()

	farmerID := uuid.New()
	consumerID := uuid.New()
	ctx := context.Background()

	t.Run("farmer sees received orders", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		mockOrderRepo.On("ListByFarmer", ctx, farmerID, 20, 0).
			Return([]model.Order{testOrder(farmerID, consumerID)}, 1, nil)

		svc := NewOrderService(mockOrderRepo, logger)

		page, err := svc.List(ctx, farmerID, model.RoleFarmer, 1)
		require.NoError(t, err)
		assert.Len(t, page.Orders, 1)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 1, page.Pages)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("consumer sees placed orders with paging", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		mockOrderRepo.On("ListByConsumer", ctx, consumerID, 20, 20).
			Return([]model.Order{testOrder(farmerID, consumerID)}, 45, nil)

		svc := NewOrderService(mockOrderRepo, logger)

		page, err := svc.List(ctx, consumerID, model.RoleConsumer, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 45, page.Total)
		assert.Equal(t, 3, page.Pages)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("page below one defaults to the first", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		mockOrderRepo.On("ListByConsumer", ctx, consumerID, 20, 0).
			Return(nil, 0, nil)

		svc := NewOrderService(mockOrderRepo, logger)

		page, err := svc.List(ctx, consumerID, model.RoleConsumer, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.NotNil(t, page.Orders)
		assert.Empty(t, page.Orders)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		mockOrderRepo.On("ListByFarmer", ctx, farmerID, 20, 0).
			Return(nil, 0, errors.New("connection refused"))

		svc := NewOrderService(mockOrderRepo, logger)

		page, err := svc.List(ctx, farmerID, model.RoleFarmer, 1)
		assert.Error(t, err)
		assert.Nil(t, page)
	})
}
