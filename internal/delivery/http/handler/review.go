package handler

import (
	"net/http"

	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/review"
)

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// ReviewRequest represents the request body for creating or editing a review
type ReviewRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// Create handles POST /api/v1/movies/{id}/reviews
// @Summary Review a movie
// @Description Create the caller's review of a movie. Each user reviews a movie at most once.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie ID (UUID)"
// @Param review body ReviewRequest true "Review content and rating (1-5)"
// @Success 201 {object} map[string]interface{} "Review created successfully"
// @Failure 400 {object} map[string]string "Invalid input or movie already reviewed"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies/{id}/reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	movieID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	var req ReviewRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}

	rev := &domain.Review{
		UserID:  identity.UserID,
		MovieID: movieID,
		Content: req.Content,
		Rating:  req.Rating,
	}

	if err := h.service.Create(r.Context(), rev); err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, newReviewView(rev))
}

// Update handles PUT /api/v1/reviews/{id}
// @Summary Edit a review
// @Description Edit the caller's own review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Param review body ReviewRequest true "Updated content and rating"
// @Success 200 {object} map[string]interface{} "Review updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req ReviewRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}

	rev, err := h.service.Update(r.Context(), identity.UserID, id, req.Content, req.Rating)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, newReviewView(rev))
}

// Delete handles DELETE /api/v1/reviews/{id}
// @Summary Delete a review
// @Description Delete the caller's own review
// @Tags Reviews
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Success 204 "Review deleted successfully"
// @Failure 400 {object} map[string]string "Invalid review ID"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// ToggleLike handles POST /api/v1/reviews/{id}/like
// @Summary Like or unlike a review
// @Description Likes the review for the caller, or takes an existing like back
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Success 200 {object} map[string]interface{} "Like state and count"
// @Failure 400 {object} map[string]string "Invalid review ID"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reviews/{id}/like [post]
func (h *ReviewHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	result, err := h.service.ToggleLike(r.Context(), identity.UserID, id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListByMovie handles GET /api/v1/movies/{id}/reviews
// @Summary Get reviews for a movie
// @Description Get a paginated list of a movie's reviews, newest first, each flagged as top comment or not. Results are cached.
// @Tags Reviews
// @Produce json
// @Param id path string true "Movie ID (UUID)"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of reviews"
// @Failure 400 {object} map[string]string "Invalid movie ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /movies/{id}/reviews [get]
func (h *ReviewHandler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	limit, offset := request.GetPaginationParams(r)

	reviews, total, err := h.service.ListByMovie(r.Context(), movieID, limit, offset)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Paginated(w, newReviewViews(reviews), total, limit, offset)
}

func (h *ReviewHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, err, "Review or movie not found")
}
