package handler

import (
	"fmt"
	"net/http"

	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/cart"
	"github.com/Pesokrava/movie_store/internal/usecase/order"
)

// OrderHandler handles checkout and order history
type OrderHandler struct {
	orders *order.Service
	carts  *cart.Service
	logger *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, carts *cart.Service, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		carts:  carts,
		logger: log,
	}
}

// CheckoutRequest represents the request body for checkout
type CheckoutRequest struct {
	Region string `json:"region" example:"Atlanta, GA"`
	City   string `json:"city" example:"Decatur"`
}

// Checkout handles POST /api/v1/checkout
// @Summary Check out the cart
// @Description Turns the session cart into an order at current prices. Movies that are no longer available are skipped and reported in messages.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checkout body CheckoutRequest false "Region and city; the body may be omitted"
// @Success 201 {object} map[string]interface{} "Order created"
// @Failure 400 {object} map[string]string "Empty cart or unknown region"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /checkout [post]
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := request.DecodeOptionalJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}

	c, err := h.carts.Load(r.Context(), sid)
	if err != nil {
		h.handleError(w, err)
		return
	}

	result, err := h.orders.Checkout(r.Context(), identity.UserID, c, req.Region, req.City)
	if err != nil {
		h.handleError(w, err)
		return
	}

	// The order exists at this point; a stale cart is a nuisance, not a failed checkout
	if err := h.carts.Save(r.Context(), sid, c); err != nil {
		h.logger.Warnf("Failed to persist cleared cart for session after order %s: %v", result.Order.ID, err)
	}

	messages := make([]string, 0, len(result.Skipped)+1)
	messages = append(messages, fmt.Sprintf("Order placed successfully. Total: $%s", result.Order.TotalAmount.StringFixed(2)))
	for _, id := range result.Skipped {
		messages = append(messages, fmt.Sprintf("Movie %s is no longer available and was not purchased", id))
	}

	response.SuccessWithMessages(w, http.StatusCreated, result, messages)
}

// List handles GET /api/v1/orders
// @Summary Order history
// @Description The caller's orders with items, newest first
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Orders"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, orders)
}

// GetByID handles GET /api/v1/orders/{id}
// @Summary Get an order
// @Description One of the caller's orders with items
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} map[string]interface{} "Order"
// @Failure 400 {object} map[string]string "Invalid order ID"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	o, err := h.orders.GetByID(r.Context(), identity.UserID, id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, o)
}

func (h *OrderHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, err, "Order not found")
}
