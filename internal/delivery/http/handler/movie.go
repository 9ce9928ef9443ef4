package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Pesokrava/movie_store/internal/delivery/http/middleware"
	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/catalog"
	"github.com/Pesokrava/movie_store/internal/usecase/review"
)

// MovieHandler handles HTTP requests for the catalog
type MovieHandler struct {
	catalog *catalog.Service
	reviews *review.Service
	logger  *logger.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(catalog *catalog.Service, reviews *review.Service, log *logger.Logger) *MovieHandler {
	return &MovieHandler{
		catalog: catalog,
		reviews: reviews,
		logger:  log,
	}
}

// CreateMovieRequest represents the request body for creating a movie
type CreateMovieRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"9.99"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// UpdateMovieRequest represents the request body for updating a movie.
// Version is the version the client read; a stale version is rejected with 409.
type UpdateMovieRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"9.99"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Version     int             `json:"version"`
}

// MovieDetail is a movie with its rating and the viewer's own review
type MovieDetail struct {
	Movie         *domain.Movie `json:"movie"`
	AverageRating float64       `json:"average_rating"`
	UserReview    *ReviewView   `json:"user_review,omitempty"`
}

// PurchasesResponse is the purchase total of a movie
type PurchasesResponse struct {
	MovieID   string `json:"movie_id"`
	Region    string `json:"region,omitempty"`
	Purchases int    `json:"purchases"`
}

// List handles GET /api/v1/movies
// @Summary List movies
// @Description Get a paginated list of movies, newest first. Authenticated viewers do not see movies they hid.
// @Tags Movies
// @Produce json
// @Param search query string false "Case-insensitive title substring"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of movies"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies [get]
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	movies, total, err := h.catalog.List(r.Context(), search, middleware.ViewerID(r.Context()), limit, offset)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Paginated(w, movies, total, limit, offset)
}

// GetByID handles GET /api/v1/movies/{id}
// @Summary Get a movie
// @Description Get a movie with its average rating and, for authenticated viewers, their own review
// @Tags Movies
// @Produce json
// @Param id path string true "Movie ID (UUID)"
// @Success 200 {object} map[string]interface{} "Movie details"
// @Failure 400 {object} map[string]string "Invalid movie ID"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies/{id} [get]
func (h *MovieHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	movie, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	rating, err := h.catalog.AverageRating(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	detail := MovieDetail{Movie: movie, AverageRating: rating}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		own, err := h.reviews.GetForUser(r.Context(), identity.UserID, id)
		switch {
		case err == nil:
			detail.UserReview = newReviewView(own)
		case !errors.Is(err, domain.ErrNotFound):
			h.handleError(w, err)
			return
		}
	}

	response.Success(w, detail)
}

// Purchases handles GET /api/v1/movies/{id}/purchases
// @Summary Regional purchase total
// @Description Total purchased quantity of a movie, optionally restricted to one region
// @Tags Movies
// @Produce json
// @Param id path string true "Movie ID (UUID)"
// @Param region query string false "Region name, e.g. Atlanta, GA"
// @Success 200 {object} map[string]interface{} "Purchase total"
// @Failure 400 {object} map[string]string "Invalid movie ID or unknown region"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies/{id}/purchases [get]
func (h *MovieHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	region := strings.TrimSpace(r.URL.Query().Get("region"))
	total, err := h.catalog.RegionalPurchases(r.Context(), id, region)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, PurchasesResponse{MovieID: id.String(), Region: region, Purchases: total})
}

// Create handles POST /api/v1/movies
// @Summary Create a movie
// @Description Add a movie to the catalog (admin only)
// @Tags Movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param movie body CreateMovieRequest true "Movie details"
// @Success 201 {object} map[string]interface{} "Movie created successfully"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies [post]
func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMovieRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}

	movie := &domain.Movie{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}

	if err := h.catalog.Create(r.Context(), movie); err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, movie)
}

// Update handles PUT /api/v1/movies/{id}
// @Summary Update a movie
// @Description Update movie details with optimistic locking (admin only)
// @Tags Movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie ID (UUID)"
// @Param movie body UpdateMovieRequest true "Updated movie details"
// @Success 200 {object} map[string]interface{} "Movie updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 409 {object} map[string]string "Conflict - movie was modified"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies/{id} [put]
func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	var req UpdateMovieRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}
	if req.Version <= 0 {
		response.Error(w, http.StatusBadRequest, "Version is required")
		return
	}

	movie := &domain.Movie{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Version:     req.Version,
	}

	if err := h.catalog.Update(r.Context(), movie); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, movie)
}

// Delete handles DELETE /api/v1/movies/{id}
// @Summary Delete a movie
// @Description Soft delete a movie (admin only)
// @Tags Movies
// @Security BearerAuth
// @Param id path string true "Movie ID (UUID)"
// @Success 204 "Movie deleted successfully"
// @Failure 400 {object} map[string]string "Invalid movie ID"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies/{id} [delete]
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *MovieHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, err, "Movie not found")
}
