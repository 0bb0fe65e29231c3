package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartItemExists   = errors.New("product is already in the cart")
)

// CartRepository defines the interface for cart data access. Every
// operation is scoped to the owning user.
type CartRepository interface {
	Add(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, ownerID, productID uuid.UUID, quantity int) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.CartItem, error)
	Remove(ctx context.Context, ownerID, productID uuid.UUID) error
	Clear(ctx context.Context, ownerID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Add inserts a cart line for (owner, product). A second add of the same
// product is rejected rather than merged; the client updates quantity
// explicitly.
func (r *cartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, owner_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, product_id) DO NOTHING
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.OwnerID,
		item.ProductID,
		item.Quantity,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemExists
	}

	return nil
}

// UpdateQuantity sets the quantity of an existing cart line
func (r *cartRepository) UpdateQuantity(ctx context.Context, ownerID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = now()
		WHERE owner_id = $1 AND product_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, ownerID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// ListByOwner retrieves the owner's cart with current product data joined in
func (r *cartRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.owner_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		       p.title, p.price, p.image_url, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.owner_id = $1
		ORDER BY ci.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item := &domain.CartItem{}
		err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Title,
			&item.Price,
			&item.ImageURL,
			&item.Stock,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Remove deletes a single cart line belonging to the owner
func (r *cartRepository) Remove(ctx context.Context, ownerID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE owner_id = $1 AND product_id = $2`

	result, err := r.db.ExecContext(ctx, query, ownerID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Clear deletes all cart lines belonging to the owner
func (r *cartRepository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE owner_id = $1`

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
