package handler

import (
	"net/http"

	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/visibility"
)

var visibilityMessages = map[domain.VisibilityChange]string{
	domain.MovieHidden:        "Movie hidden from your catalog",
	domain.MovieAlreadyHidden: "Movie is already hidden",
	domain.MovieUnhidden:      "Movie is visible in your catalog again",
}

// HiddenHandler handles per-user movie hiding
type HiddenHandler struct {
	service *visibility.Service
	logger  *logger.Logger
}

// NewHiddenHandler creates a new hidden movie handler
func NewHiddenHandler(service *visibility.Service, log *logger.Logger) *HiddenHandler {
	return &HiddenHandler{
		service: service,
		logger:  log,
	}
}

// VisibilityResponse reports what a hide/unhide did
type VisibilityResponse struct {
	MovieID string                  `json:"movie_id"`
	Change  domain.VisibilityChange `json:"change"`
}

// List handles GET /api/v1/hidden
// @Summary Hidden movies
// @Description Movies the caller has hidden from their catalog
// @Tags Hidden
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Hidden movies"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /hidden [get]
func (h *HiddenHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	movies, err := h.service.ListHidden(r.Context(), identity.UserID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, movies)
}

// Hide handles POST /api/v1/hidden/{movieID}
// @Summary Hide a movie
// @Tags Hidden
// @Produce json
// @Security BearerAuth
// @Param movieID path string true "Movie ID (UUID)"
// @Success 200 {object} map[string]interface{} "Visibility change"
// @Failure 400 {object} map[string]string "Invalid movie ID"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /hidden/{movieID} [post]
func (h *HiddenHandler) Hide(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	movieID, err := request.GetUUIDParam(r, "movieID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	change, err := h.service.Hide(r.Context(), identity.UserID, movieID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respond(w, movieID.String(), change)
}

// Unhide handles DELETE /api/v1/hidden/{movieID}
// @Summary Unhide a movie
// @Tags Hidden
// @Produce json
// @Security BearerAuth
// @Param movieID path string true "Movie ID (UUID)"
// @Success 200 {object} map[string]interface{} "Visibility change"
// @Failure 400 {object} map[string]string "Invalid movie ID"
// @Failure 404 {object} map[string]string "Movie is not hidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /hidden/{movieID} [delete]
func (h *HiddenHandler) Unhide(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	movieID, err := request.GetUUIDParam(r, "movieID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	if err := h.service.Unhide(r.Context(), identity.UserID, movieID); err != nil {
		h.handleError(w, err)
		return
	}

	h.respond(w, movieID.String(), domain.MovieUnhidden)
}

// Toggle handles POST /api/v1/hidden/{movieID}/toggle
// @Summary Toggle movie visibility
// @Description Hides a visible movie or shows a hidden one
// @Tags Hidden
// @Produce json
// @Security BearerAuth
// @Param movieID path string true "Movie ID (UUID)"
// @Success 200 {object} map[string]interface{} "Visibility change"
// @Failure 400 {object} map[string]string "Invalid movie ID"
// @Failure 404 {object} map[string]string "Movie not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /hidden/{movieID}/toggle [post]
func (h *HiddenHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	movieID, err := request.GetUUIDParam(r, "movieID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	change, err := h.service.Toggle(r.Context(), identity.UserID, movieID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respond(w, movieID.String(), change)
}

func (h *HiddenHandler) respond(w http.ResponseWriter, movieID string, change domain.VisibilityChange) {
	response.SuccessWithMessages(w, http.StatusOK,
		VisibilityResponse{MovieID: movieID, Change: change},
		[]string{visibilityMessages[change]},
	)
}

func (h *HiddenHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, err, "Movie not found or not hidden")
}
