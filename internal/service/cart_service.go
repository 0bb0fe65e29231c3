package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// CartService defines the interface for cart business logic. All
// operations act on the calling customer's own cart.
type CartService interface {
	Add(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) error
	Get(ctx context.Context, actor Actor) ([]*domain.CartItem, error)
	Remove(ctx context.Context, actor Actor, productID uuid.UUID) error
	Clear(ctx context.Context, actor Actor) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Add puts a product in the customer's cart. Only customers hold carts;
// a product already present is rejected rather than merged.
func (s *cartService) Add(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, ErrForbidden
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// The product must exist before it can be carted.
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	item := &domain.CartItem{
		ID:        uuid.New(),
		OwnerID:   actor.ID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.cartRepo.Add(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateQuantity sets the quantity of one of the customer's cart lines
func (s *cartService) UpdateQuantity(ctx context.Context, actor Actor, productID uuid.UUID, quantity int) error {
	if actor.Role != domain.RoleCustomer {
		return ErrForbidden
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	return s.cartRepo.UpdateQuantity(ctx, actor.ID, productID, quantity)
}

// Get returns the customer's cart with current product data joined in
func (s *cartService) Get(ctx context.Context, actor Actor) ([]*domain.CartItem, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, ErrForbidden
	}

	return s.cartRepo.ListByOwner(ctx, actor.ID)
}

// Remove deletes one line from the customer's cart
func (s *cartService) Remove(ctx context.Context, actor Actor, productID uuid.UUID) error {
	if actor.Role != domain.RoleCustomer {
		return ErrForbidden
	}

	return s.cartRepo.Remove(ctx, actor.ID, productID)
}

// Clear empties the customer's cart
func (s *cartService) Clear(ctx context.Context, actor Actor) error {
	if actor.Role != domain.RoleCustomer {
		return ErrForbidden
	}

	return s.cartRepo.Clear(ctx, actor.ID)
}
