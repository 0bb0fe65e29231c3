package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// NotificationTimeout bounds the whole post-commit email fan-out so a hung
// SMTP server cannot block the request forever.
const NotificationTimeout = 15 * time.Second

var (
	ErrEmptyOrder    = errors.New("order must contain at least one product")
	ErrNotYourOrder  = errors.New("order belongs to another buyer")
	ErrMissingFields = errors.New("missing required fields")
)

// MissingFieldsError lists the required order fields absent from the
// request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// OrderLine is one requested product within a placement request.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput is the payload of an order placement.
type PlaceOrderInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Country   string
	City      string
	Street    string
	Apartment string
	Notes     string
	Lines     []OrderLine
}

// Notifier sends the order confirmation fan-out. It exists as its own
// interface so transports and tests can swap delivery without touching
// placement.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order, sellers []repository.SellerContact)
}

// OrderService defines the interface for order business logic
type OrderService interface {
	// Place validates the payload, runs the transactional placement and,
	// once the order is durable, dispatches the notification fan-out.
	// Notification failure never undoes the placed order.
	Place(ctx context.Context, actor Actor, input PlaceOrderInput) (*domain.Order, error)
	List(ctx context.Context, actor Actor) ([]*domain.Order, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	notifier  Notifier
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, notifier Notifier) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		notifier:  notifier,
	}
}

func (s *orderService) Place(ctx context.Context, actor Actor, input PlaceOrderInput) (*domain.Order, error) {
	if actor.Anonymous() {
		return nil, ErrForbidden
	}

	if err := validatePlacement(input); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:        uuid.New(),
		BuyerID:   actor.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Country:   input.Country,
		City:      input.City,
		Street:    input.Street,
		Apartment: input.Apartment,
		Notes:     input.Notes,
		CreatedAt: time.Now(),
	}
	for _, line := range input.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	sellers, err := s.orderRepo.Place(ctx, order)
	if err != nil {
		return nil, err
	}

	// The order is durable from here on; notifications are best effort.
	s.notifier.OrderPlaced(ctx, order, sellers)

	return order, nil
}

// List returns the caller's own orders; admins see every order.
func (s *orderService) List(ctx context.Context, actor Actor) ([]*domain.Order, error) {
	if actor.Anonymous() {
		return nil, ErrForbidden
	}
	if actor.Role == domain.RoleAdmin {
		return s.orderRepo.ListAll(ctx)
	}
	return s.orderRepo.ListByBuyer(ctx, actor.ID)
}

// Get returns one order, visible to its buyer and to admins.
func (s *orderService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && order.BuyerID != actor.ID {
		// Hide the order's existence from other buyers.
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func validatePlacement(input PlaceOrderInput) error {
	required := []struct {
		name  string
		value string
	}{
		{"fname", input.FirstName},
		{"lname", input.LastName},
		{"email", input.Email},
		{"phone", input.Phone},
		{"address.street", input.Street},
		{"address.apartment", input.Apartment},
	}

	missing := []string{}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	if len(input.Lines) == 0 {
		return ErrEmptyOrder
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return fmt.Errorf("product %s: %w", line.ProductID, ErrInvalidQuantity)
		}
	}

	return nil
}
