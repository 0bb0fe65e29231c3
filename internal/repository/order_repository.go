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
	ErrOrderNotFound = errors.New("order not found")
)

// InsufficientStockError reports an order line that asked for more units
// than the catalog holds. It names the offending product so callers can
// surface it.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (%s): requested %d, available %d",
		e.Title, e.ProductID, e.Requested, e.Available)
}

// SellerContact identifies a seller whose product appeared in an order,
// collected during placement for the notification fan-out.
type SellerContact struct {
	ID    uuid.UUID
	Email string
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Place runs the whole placement inside one transaction: for each
	// line, in submitted order, it locks the product row, verifies stock,
	// decrements it and snapshots title/image/price into the line. Any
	// missing product or stock shortfall rolls the entire order back, so
	// stock is never decremented for a partially placed order. On success
	// the order and its items are persisted and the distinct sellers are
	// returned in first-appearance order.
	Place(ctx context.Context, order *domain.Order) ([]SellerContact, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Place(ctx context.Context, order *domain.Order) ([]SellerContact, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT p.title, p.image_url, p.price, p.stock, p.owner_id, u.email
		FROM products p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1
		FOR UPDATE OF p
	`

	var total float64
	sellers := []SellerContact{}
	seen := map[uuid.UUID]bool{}

	// Lines are processed strictly in the order the client submitted them.
	for i := range order.Items {
		item := &order.Items[i]

		var (
			title       string
			imageURL    string
			price       float64
			stock       int
			ownerID     uuid.UUID
			sellerEmail string
		)
		err := tx.QueryRowContext(ctx, lockQuery, item.ProductID).Scan(
			&title, &imageURL, &price, &stock, &ownerID, &sellerEmail,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrProductNotFound)
			}
			return nil, fmt.Errorf("failed to lock product %s: %w", item.ProductID, err)
		}

		if stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductID: item.ProductID,
				Title:     title,
				Requested: item.Quantity,
				Available: stock,
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $2 WHERE id = $1`,
			item.ProductID, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
		}

		// Snapshot the product at the moment of sale.
		item.ID = uuid.New()
		item.OrderID = order.ID
		item.Title = title
		item.ImageURL = imageURL
		item.Price = price
		item.Total = price * float64(item.Quantity)
		item.SellerID = ownerID
		total += item.Total

		if !seen[ownerID] {
			seen[ownerID] = true
			sellers = append(sellers, SellerContact{ID: ownerID, Email: sellerEmail})
		}
	}

	order.TotalPrice = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, first_name, last_name, email, phone, country, city, street, apartment, notes, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		order.ID,
		order.BuyerID,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Phone,
		order.Country,
		order.City,
		order.Street,
		order.Apartment,
		order.Notes,
		order.TotalPrice,
		order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	// line_no preserves the submitted line order; every item of an order
	// shares one created_at, so the timestamp alone cannot restore it.
	for i := range order.Items {
		item := &order.Items[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, title, image_url, quantity, price, total, seller_id, line_no)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Title,
			item.ImageURL,
			item.Quantity,
			item.Price,
			item.Total,
			item.SellerID,
			i,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return sellers, nil
}

// FindByID retrieves an order and its items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, buyer_id, first_name, last_name, email, phone, country, city, street, apartment, notes, total_price, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.BuyerID,
		&order.FirstName,
		&order.LastName,
		&order.Email,
		&order.Phone,
		&order.Country,
		&order.City,
		&order.Street,
		&order.Apartment,
		&order.Notes,
		&order.TotalPrice,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	order.Items, err = r.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ListByBuyer retrieves all orders placed by the given buyer, newest first
func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	return r.list(ctx, `WHERE buyer_id = $1`, buyerID)
}

// ListAll retrieves every order, newest first
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, "")
}

func (r *orderRepository) list(ctx context.Context, where string, args ...interface{}) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT id, buyer_id, first_name, last_name, email, phone, country, city, street, apartment, notes, total_price, created_at
		FROM orders
		%s
		ORDER BY created_at DESC
	`, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.BuyerID,
			&order.FirstName,
			&order.LastName,
			&order.Email,
			&order.Phone,
			&order.Country,
			&order.City,
			&order.Street,
			&order.Apartment,
			&order.Notes,
			&order.TotalPrice,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		order.Items, err = r.itemsForOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, title, image_url, quantity, price, total, seller_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_no ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item := domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Title,
			&item.ImageURL,
			&item.Quantity,
			&item.Price,
			&item.Total,
			&item.SellerID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
