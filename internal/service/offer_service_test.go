package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"agriconnect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testProduct(farmerID uuid.UUID) *model.Product {
	return &model.Product{
		ID:          uuid.New(),
		FarmerID:    farmerID,
		Name:        "Fresh Tomatoes",
		Price:       decimal.RequireFromString("3.50"),
		Quantity:    20,
		Unit:        "kg",
		IsAvailable: true,
	}
}

func TestOfferService_Send_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	farmerID := uuid.New()
	consumerID := uuid.New()
	product := testProduct(farmerID)

	mockOfferRepo := new(MockOfferRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOfferService(mockOfferRepo, mockOrderRepo, mockProductRepo, logger)

	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockOfferRepo.On("Create", ctx, mock.AnythingOfType("*model.Offer")).Return(nil)

	offer, err := svc.Send(ctx, consumerID, &model.SendOfferRequest{
		ProductID:    product.ID,
		Quantity:     10,
		OfferedPrice: decimal.RequireFromString("3.00"),
		Message:      "Would you take 3.00/kg?",
	})

	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, model.OfferStatusPending, offer.Status)
	assert.Equal(t, farmerID, offer.FarmerID)
	assert.Equal(t, consumerID, offer.ConsumerID)
	assert.Nil(t, offer.RespondedAt)

	mockProductRepo.AssertExpectations(t)
	mockOfferRepo.AssertExpectations(t)
}

func TestOfferService_Send_QuantityExceedsStock(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	product := testProduct(uuid.New())

	mockOfferRepo := new(MockOfferRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOfferService(mockOfferRepo, mockOrderRepo, mockProductRepo, logger)

	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)

	_, err := svc.Send(ctx, uuid.New(), &model.SendOfferRequest{
		ProductID:    product.ID,
		Quantity:     25,
		OfferedPrice: decimal.RequireFromString("3.00"),
	})

	require.Error(t, err)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeQuantityUnavailable, domainErr.Code)
	assert.Equal(t, "Only 20 kg available", domainErr.Message)

	mockOfferRepo.AssertNotCalled(t, "Create")
}

func TestOfferService_Send_ProductUnavailable(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	product := testProduct(uuid.New())
	product.IsAvailable = false

	mockOfferRepo := new(MockOfferRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOfferService(mockOfferRepo, mockOrderRepo, mockProductRepo, logger)

	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)

	_, err := svc.Send(ctx, uuid.New(), &model.SendOfferRequest{
		ProductID:    product.ID,
		Quantity:     5,
		OfferedPrice: decimal.RequireFromString("3.00"),
	})

	assert.ErrorIs(t, err, model.ErrProductUnavailable)
}

func TestOfferService_Send_InvalidPrice(t *testing.T) {
	logger := zerolog.Nop()

	svc := NewOfferService(new(MockOfferRepository), new(MockOrderRepository), new(MockProductRepository), logger)

	_, err := svc.Send(context.Background(), uuid.New(), &model.SendOfferRequest{
		ProductID:    uuid.New(),
		Quantity:     5,
		OfferedPrice: decimal.Zero,
	})

	assert.ErrorIs(t, err, model.ErrInvalidPrice)
}

func TestOfferService_Send_MessageTooLong(t *testing.T) {
	logger := zerolog.Nop()

	mockOfferRepo := new(MockOfferRepository)
	svc := NewOfferService(mockOfferRepo, new(MockOrderRepository), new(MockProductRepository), logger)

	_, err := svc.Send(context.Background(), uuid.New(), &model.SendOfferRequest{
		ProductID:    uuid.New(),
		Quantity:     5,
		OfferedPrice: decimal.RequireFromString("3.00"),
		Message:      strings.Repeat("a", 501),
	})

	require.Error(t, err)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
	assert.Equal(t, "Message cannot exceed 500 characters", domainErr.Message)

	mockOfferRepo.AssertNotCalled(t, "Create")
}

func TestOfferService_Respond_AcceptCreatesOrder(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	farmerID := uuid.New()
	offer := &model.Offer{
		ID:           uuid.New(),
		ConsumerID:   uuid.New(),
		FarmerID:     farmerID,
		ProductID:    uuid.New(),
		Quantity:     20,
		OfferedPrice: decimal.RequireFromString("3.00"),
		Status:       model.OfferStatusPending,
		CreatedAt:    time.Now(),
	}

	mockOfferRepo := new(MockOfferRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	svc := NewOfferService(mockOfferRepo, mockOrderRepo, mockProductRepo, logger)

	mockOfferRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)
	mockOfferRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOfferRepo.On("Resolve", ctx, mockTx, offer.ID, model.OfferStatusAccepted, mock.AnythingOfType("time.Time")).Return(true, nil)

	var createdOrder *model.Order
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			createdOrder = args.Get(2).(*model.Order)
		}).
		Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resolved, err := svc.Respond(ctx, offer.ID, farmerID, model.OfferActionAccept)

	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusAccepted, resolved.Status)
	require.NotNil(t, resolved.RespondedAt)

	require.NotNil(t, createdOrder)
	assert.Equal(t, offer.ConsumerID, createdOrder.ConsumerID)
	assert.Equal(t, offer.FarmerID, createdOrder.FarmerID)
	assert.Equal(t, offer.Quantity, createdOrder.Quantity)
	assert.Equal(t, model.OrderStatusPending, createdOrder.Status)
	require.NotNil(t, createdOrder.OfferID)
	assert.Equal(t, offer.ID, *createdOrder.OfferID)
	// 3.00 x 20 must be exactly 60.00, no float drift
	assert.True(t, createdOrder.TotalAmount.Equal(decimal.RequireFromString("60.00")),
		"expected 60.00, got %s", createdOrder.TotalAmount)

	assert.True(t, mockTx.committed)
	mockOfferRepo.AssertExpectations(t)
	mockOrderRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestOfferService_Respond_RejectSkipsOrder(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	farmerID := uuid.New()
	offer := &model.Offer{
		ID:           uuid.New(),
		ConsumerID:   uuid.New(),
		FarmerID:     farmerID,
		ProductID:    uuid.New(),
		Quantity:     5,
		OfferedPrice: decimal.RequireFromString("2.50"),
		Status:       model.OfferStatusPending,
	}

	mockOfferRepo := new(MockOfferRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	svc := NewOfferService(mockOfferRepo, mockOrderRepo, new(MockProductRepository), logger)

	mockOfferRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)
	mockOfferRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOfferRepo.On("Resolve", ctx, mockTx, offer.ID, model.OfferStatusRejected, mock.AnythingOfType("time.Time")).Return(true, nil)
	mockTx.On("Commit", ctx).Return(nil)

	resolved, err := svc.Respond(ctx, offer.ID, farmerID, model.OfferActionReject)

	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusRejected, resolved.Status)
	mockOrderRepo.AssertNotCalled(t, "Create")
}

func TestOfferService_Respond_WrongFarmerForbidden(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	offer := &model.Offer{
		ID:       uuid.New(),
		FarmerID: uuid.New(),
		Status:   model.OfferStatusPending,
	}

	mockOfferRepo := new(MockOfferRepository)

	svc := NewOfferService(mockOfferRepo, new(MockOrderRepository), new(MockProductRepository), logger)

	mockOfferRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)

	_, err := svc.Respond(ctx, offer.ID, uuid.New(), model.OfferActionAccept)

	assert.ErrorIs(t, err, model.ErrForbidden)
	mockOfferRepo.AssertNotCalled(t, "BeginTx")
}

func TestOfferService_Respond_AlreadyResolved(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	farmerID := uuid.New()
	offer := &model.Offer{
		ID:       uuid.New(),
		FarmerID: farmerID,
		Status:   model.OfferStatusAccepted,
	}

	mockOfferRepo := new(MockOfferRepository)

	svc := NewOfferService(mockOfferRepo, new(MockOrderRepository), new(MockProductRepository), logger)

	mockOfferRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)

	_, err := svc.Respond(ctx, offer.ID, farmerID, model.OfferActionReject)

	assert.ErrorIs(t, err, model.ErrAlreadyResolved)
	mockOfferRepo.AssertNotCalled(t, "Resolve")
}

func TestOfferService_Respond_LostRaceRollsBack(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	farmerID := uuid.New()
	offer := &model.Offer{
		ID:       uuid.New(),
		FarmerID: farmerID,
		Status:   model.OfferStatusPending,
	}

	mockOfferRepo := new(MockOfferRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	svc := NewOfferService(mockOfferRepo, mockOrderRepo, new(MockProductRepository), logger)

	mockOfferRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)
	mockOfferRepo.On("BeginTx", ctx).Return(mockTx, nil)
	// The conditional update found the offer no longer pending.
	mockOfferRepo.On("Resolve", ctx, mockTx, offer.ID, model.OfferStatusAccepted, mock.AnythingOfType("time.Time")).Return(false, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := svc.Respond(ctx, offer.ID, farmerID, model.OfferActionAccept)

	assert.ErrorIs(t, err, model.ErrAlreadyResolved)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
	mockOrderRepo.AssertNotCalled(t, "Create")
}

func TestOfferService_Respond_OrderFailureRollsBack(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	farmerID := uuid.New()
	offer := &model.Offer{
		ID:           uuid.New(),
		ConsumerID:   uuid.New(),
		FarmerID:     farmerID,
		ProductID:    uuid.New(),
		Quantity:     2,
		OfferedPrice: decimal.RequireFromString("5.00"),
		Status:       model.OfferStatusPending,
	}

	mockOfferRepo := new(MockOfferRepository)
	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	svc := NewOfferService(mockOfferRepo, mockOrderRepo, new(MockProductRepository), logger)

	mockOfferRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)
	mockOfferRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOfferRepo.On("Resolve", ctx, mockTx, offer.ID, model.OfferStatusAccepted, mock.AnythingOfType("time.Time")).Return(true, nil)
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(errors.New("insert failed"))
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := svc.Respond(ctx, offer.ID, farmerID, model.OfferActionAccept)

	require.Error(t, err)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
}

func TestOfferService_Respond_InvalidAction(t *testing.T) {
	logger := zerolog.Nop()

	svc := NewOfferService(new(MockOfferRepository), new(MockOrderRepository), new(MockProductRepository), logger)

	_, err := svc.Respond(context.Background(), uuid.New(), uuid.New(), "maybe")

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
}

func TestOfferService_List_RoleFiltering(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	userID := uuid.New()
	offers := []model.Offer{{ID: uuid.New()}, {ID: uuid.New()}}

	t.Run("farmer sees received offers", func(t *testing.T) {
		mockOfferRepo := new(MockOfferRepository)
		svc := NewOfferService(mockOfferRepo, new(MockOrderRepository), new(MockProductRepository), logger)

		mockOfferRepo.On("ListByFarmer", ctx, userID, 20, 0).Return(offers, 2, nil)

		page, err := svc.List(ctx, userID, model.RoleFarmer, 1)
		require.NoError(t, err)
		assert.Len(t, page.Offers, 2)
		assert.Equal(t, 1, page.Pages)
		mockOfferRepo.AssertNotCalled(t, "ListByConsumer")
	})

	t.Run("consumer sees sent offers", func(t *testing.T) {
		mockOfferRepo := new(MockOfferRepository)
		svc := NewOfferService(mockOfferRepo, new(MockOrderRepository), new(MockProductRepository), logger)

		mockOfferRepo.On("ListByConsumer", ctx, userID, 20, 20).Return([]model.Offer{}, 45, nil)

		page, err := svc.List(ctx, userID, model.RoleConsumer, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, page.Pages)
		mockOfferRepo.AssertNotCalled(t, "ListByFarmer")
	})
}
