package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/assets"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor identifies the caller of a role-gated operation, as decoded from
// the access token. A zero Actor is an anonymous caller.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Anonymous reports whether the actor carries no identity.
func (a Actor) Anonymous() bool {
	return a.Role == ""
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Title         string
	Description   string
	Price         float64
	OldPrice      float64
	Category      string
	ImageURL      string
	ImagePublicID string
	Stock         int
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	// List applies the storefront visibility rule: anonymous, customer
	// and admin callers see the whole catalog; a seller sees only
	// self-owned products.
	List(ctx context.Context, actor Actor, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	Create(ctx context.Context, actor Actor, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	assetStore  assets.Storage
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, assetStore assets.Storage, logger *zap.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		assetStore:  assetStore,
		logger:      logger,
	}
}

func (s *catalogService) List(ctx context.Context, actor Actor, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	if actor.Role == domain.RoleSeller {
		products, err := s.productRepo.ListByOwner(ctx, actor.ID)
		if err != nil {
			return nil, 0, err
		}
		return products, len(products), nil
	}

	return s.productRepo.List(ctx, page, pageSize, sortBy, sortOrder)
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

func (s *catalogService) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.productRepo.ListByCategory(ctx, category)
}

func (s *catalogService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}

// Create adds a product owned by the acting admin or seller
func (s *catalogService) Create(ctx context.Context, actor Actor, input ProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSeller {
		return nil, ErrForbidden
	}

	product := &domain.Product{
		ID:            uuid.New(),
		Title:         input.Title,
		Description:   input.Description,
		Price:         input.Price,
		OldPrice:      input.OldPrice,
		Category:      input.Category,
		ImageURL:      input.ImageURL,
		ImagePublicID: input.ImagePublicID,
		Stock:         input.Stock,
		OwnerID:       actor.ID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update modifies a product. Admins may edit any product, sellers only
// their own. Replacing the image deletes the old asset.
func (s *catalogService) Update(ctx context.Context, actor Actor, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeOwnership(actor, product); err != nil {
		return nil, err
	}

	oldPublicID := product.ImagePublicID

	product.Title = input.Title
	product.Description = input.Description
	product.Price = input.Price
	product.OldPrice = input.OldPrice
	product.Category = input.Category
	product.ImageURL = input.ImageURL
	product.ImagePublicID = input.ImagePublicID
	product.Stock = input.Stock
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if oldPublicID != "" && oldPublicID != product.ImagePublicID {
		s.deleteAsset(ctx, oldPublicID)
	}

	return product, nil
}

// Delete removes a product and its hosted image
func (s *catalogService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorizeOwnership(actor, product); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if product.ImagePublicID != "" {
		s.deleteAsset(ctx, product.ImagePublicID)
	}

	return nil
}

func (s *catalogService) authorizeOwnership(actor Actor, product *domain.Product) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleSeller:
		if product.OwnerID == actor.ID {
			return nil
		}
	}
	return ErrForbidden
}

// deleteAsset removes a hosted image. The product change is already
// committed, so a failure here is logged and swallowed.
func (s *catalogService) deleteAsset(ctx context.Context, publicID string) {
	if err := s.assetStore.DeleteByPublicID(ctx, publicID); err != nil {
		s.logger.Warn("Failed to delete product image from asset host",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
	}
}
