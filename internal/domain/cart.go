package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product line in a user's cart, unique per
// (owner, product) pair.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined product fields, populated on reads only.
	Title    string  `json:"title,omitempty" db:"-"`
	Price    float64 `json:"price,omitempty" db:"-"`
	ImageURL string  `json:"image_url,omitempty" db:"-"`
	Stock    int     `json:"stock,omitempty" db:"-"`
}
