package service

import (
	"context"
	"fmt"
	"time"

	"agriconnect/internal/imagestore"
	"agriconnect/internal/model"
	"agriconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	images      imagestore.Store
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(productRepo repository.ProductRepository, images imagestore.Store, logger zerolog.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		images:      images,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// Search retrieves a page of available products matching the filters.
func (s *catalogService) Search(ctx context.Context, params model.ProductSearch) (*model.ProductPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 20
	}
	if params.PerPage > 100 {
		params.PerPage = 100
	}

	products, total, err := s.productRepo.Search(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Str("query", params.Query).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	s.logger.Debug().
		Str("query", params.Query).
		Int("count", len(products)).
		Int("total", total).
		Msg("searched products")

	return &model.ProductPage{
		Products: products,
		Page:     params.Page,
		PerPage:  params.PerPage,
		Total:    total,
		Pages:    pageCount(total, params.PerPage),
	}, nil
}

// GetByID retrieves a single product.
func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// ListByFarmer retrieves a farmer's own listings, newest first.
func (s *catalogService) ListByFarmer(ctx context.Context, farmerID uuid.UUID, limit int) ([]model.Product, error) {
	if limit < 1 {
		limit = 20
	}

	products, err := s.productRepo.ListByFarmer(ctx, farmerID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("farmer_id", farmerID.String()).Msg("failed to list farmer products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	return products, nil
}

// Create adds a new listing owned by the farmer.
func (s *catalogService) Create(ctx context.Context, farmerID uuid.UUID, input *model.ProductInput, image *ImageUpload) (*model.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &model.Product{
		ID:          uuid.New(),
		FarmerID:    farmerID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		Category:    input.Category,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if image != nil {
		filename, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		product.ImagePath = &filename
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("farmer_id", farmerID.String()).
		Msg("product created")

	return product, nil
}

// Update edits a listing. Only the owning farmer may update.
func (s *catalogService) Update(ctx context.Context, productID, farmerID uuid.UUID, input *model.ProductInput, image *ImageUpload) (*model.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	if product.FarmerID != farmerID {
		s.logger.Warn().
			Str("product_id", productID.String()).
			Str("farmer_id", farmerID.String()).
			Msg("product update denied: not the owner")
		return nil, model.ErrForbidden
	}

	if image != nil {
		filename, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		if product.ImagePath != nil {
			s.removeImage(ctx, *product.ImagePath)
		}
		product.ImagePath = &filename
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.Unit = input.Unit
	product.Category = input.Category
	product.IsAvailable = input.IsAvailable
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", productID.String()).Msg("product updated")

	return product, nil
}

// Delete removes a listing and its stored image. Only the owning farmer
// may delete.
func (s *catalogService) Delete(ctx context.Context, productID, farmerID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}
	if product.FarmerID != farmerID {
		s.logger.Warn().
			Str("product_id", productID.String()).
			Str("farmer_id", farmerID.String()).
			Msg("product delete denied: not the owner")
		return model.ErrForbidden
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	// Image removal failures are non-fatal; the listing is already gone.
	if product.ImagePath != nil {
		s.removeImage(ctx, *product.ImagePath)
	}

	s.logger.Info().Str("product_id", productID.String()).Msg("product deleted")

	return nil
}

func (s *catalogService) storeImage(ctx context.Context, image *ImageUpload) (string, error) {
	if !imagestore.AllowedExtension(image.Filename) {
		return "", model.ErrInvalidImageType
	}

	filename := imagestore.RandomFilename(image.Filename)
	if err := s.images.Save(ctx, filename, image.Data); err != nil {
		s.logger.Error().Err(err).Str("file", filename).Msg("failed to store product image")
		return "", fmt.Errorf("failed to store product image: %w", err)
	}

	return filename, nil
}

func (s *catalogService) removeImage(ctx context.Context, filename string) {
	if err := s.images.Remove(ctx, filename); err != nil {
		s.logger.Warn().Err(err).Str("file", filename).Msg("failed to remove product image")
	}
}

// validateProductInput enforces the add/edit product form rules.
func validateProductInput(input *model.ProductInput) error {
	if input == nil {
		return model.NewValidationError("Product data is required")
	}

	if len(input.Name) < 2 || len(input.Name) > 200 {
		return model.NewValidationError("Product name must be between 2 and 200 characters")
	}

	if len(input.Description) > 1000 {
		return model.NewValidationError("Description cannot exceed 1000 characters")
	}

	if !input.Price.IsPositive() {
		return model.ErrInvalidPrice
	}

	if input.Quantity < 1 {
		return model.ErrInvalidQuantity
	}

	if input.Unit == "" {
		return model.NewValidationError("Unit is required")
	}

	return nil
}
