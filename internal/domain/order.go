package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is an immutable snapshot created at placement time. Line items
// copy the product's title, image and price so later catalog edits never
// change historical orders. Orders are never mutated or deleted.
type Order struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	BuyerID    uuid.UUID   `json:"buyer_id" db:"buyer_id"`
	FirstName  string      `json:"first_name" db:"first_name"`
	LastName   string      `json:"last_name" db:"last_name"`
	Email      string      `json:"email" db:"email"`
	Phone      string      `json:"phone" db:"phone"`
	Country    string      `json:"country" db:"country"`
	City       string      `json:"city" db:"city"`
	Street     string      `json:"street" db:"street"`
	Apartment  string      `json:"apartment" db:"apartment"`
	Notes      string      `json:"notes,omitempty" db:"notes"`
	Items      []OrderItem `json:"items" db:"-"`
	TotalPrice float64     `json:"total_price" db:"total_price"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}

// OrderItem is one snapshotted line of an order. Total is always
// Price * Quantity at the price captured when the order was placed.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Title     string    `json:"title" db:"title"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
	Total     float64   `json:"total" db:"total"`
	SellerID  uuid.UUID `json:"seller_id" db:"seller_id"`
}
