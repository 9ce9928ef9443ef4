package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/cart"
)

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	service *cart.Service
	logger  *logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *cart.Service, log *logger.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  log,
	}
}

// AddItemRequest represents the request body for adding a movie to the cart.
// Quantity may be a number or a numeric string and defaults to 1.
type AddItemRequest struct {
	MovieID  string          `json:"movie_id"`
	Quantity json.RawMessage `json:"quantity,omitempty" swaggertype:"integer"`
}

// Get handles GET /api/v1/cart
// @Summary View the cart
// @Description Lines of the session cart whose movie is still available, with total and item count
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{} "Cart summary"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cart [get]
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Load(r.Context(), sid)
	if err != nil {
		h.handleError(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), c)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, summary)
}

// AddItem handles POST /api/v1/cart/items
// @Summary Add a movie to the cart
// @Description Adds quantity copies of a movie to the session cart
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body AddItemRequest true "Movie and quantity"
// @Success 200 {object} map[string]interface{} "Updated cart summary"
// @Failure 400 {object} map[string]string "Invalid movie ID or quantity"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}

	movieID, err := uuid.Parse(strings.TrimSpace(req.MovieID))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	quantity, err := cart.ParseQuantity(request.StringOrNumber(req.Quantity))
	if err != nil {
		h.handleError(w, err)
		return
	}

	c, err := h.service.AddToSession(r.Context(), sid, movieID, quantity)
	if err != nil {
		h.handleError(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), c)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, summary)
}

// Clear handles DELETE /api/v1/cart
// @Summary Clear the cart
// @Description Removes every entry from the session cart
// @Tags Cart
// @Security BearerAuth
// @Success 204 "Cart cleared"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cart [delete]
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearSession(r.Context(), sid); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *CartHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, err, "Movie not found")
}
