package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLineRequest is one product+quantity entry of a placement request
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// AddressRequest is the shipping address of a placement request
type AddressRequest struct {
	Street    string `json:"street" validate:"required"`
	Apartment string `json:"apartment" validate:"required"`
}

// PlaceOrderRequest represents the order placement payload
type PlaceOrderRequest struct {
	FirstName string             `json:"fname" validate:"required"`
	LastName  string             `json:"lname" validate:"required"`
	Email     string             `json:"email" validate:"required,email"`
	Phone     string             `json:"phone" validate:"required"`
	Country   string             `json:"country"`
	City      string             `json:"city"`
	Address   AddressRequest     `json:"address"`
	Products  []OrderLineRequest `json:"products" validate:"required,min=1,dive"`
	Notes     string             `json:"notes"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers all order routes; every route requires auth
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Place)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

// Place handles order placement
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.PlaceOrderInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Country:   req.Country,
		City:      req.City,
		Street:    req.Address.Street,
		Apartment: req.Address.Apartment,
		Notes:     req.Notes,
	}
	for _, line := range req.Products {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID in order")
			return
		}
		input.Lines = append(input.Lines, service.OrderLine{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	order, err := h.orders.Place(r.Context(), actorFromContext(r), input)
	if err != nil {
		h.respondPlacementError(w, err)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_id", order.BuyerID.String()),
		zap.Float64("total_price", order.TotalPrice),
		zap.Int("lines", len(order.Items)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// List handles listing orders: buyers see their own, admins see all
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), actorFromContext(r))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// Get handles fetching one order by ID
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orders.Get(r.Context(), actorFromContext(r), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) respondPlacementError(w http.ResponseWriter, err error) {
	var missingFields *service.MissingFieldsError
	var insufficientStock *repository.InsufficientStockError

	switch {
	case errors.As(err, &missingFields):
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "missing required fields",
			map[string]interface{}{"fields": missingFields.Fields})
	case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &insufficientStock):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, insufficientStock.Error(),
			map[string]interface{}{
				"product_id": insufficientStock.ProductID.String(),
				"requested":  insufficientStock.Requested,
				"available":  insufficientStock.Available,
			})
	case errors.Is(err, service.ErrForbidden):
		middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
	default:
		h.logger.Error("Order placement failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
	}
}
