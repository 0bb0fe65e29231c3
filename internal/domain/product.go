package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog entry. Stock is mutated only by order
// placement; price and old price are independent fields with no enforced
// relation between them.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	OldPrice      float64   `json:"old_price" db:"old_price"`
	Category      string    `json:"category" db:"category"`
	ImageURL      string    `json:"image_url" db:"image_url"`
	ImagePublicID string    `json:"image_public_id" db:"image_public_id"`
	Stock         int       `json:"stock" db:"stock"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
