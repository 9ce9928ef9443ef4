package handler

import (
	"net/http"
	"strings"

	"github.com/Pesokrava/movie_store/internal/delivery/http/middleware"
	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/petition"
)

var voteMessages = map[domain.VoteOutcome]string{
	domain.VoteCreated:     "Your vote has been recorded",
	domain.VoteChanged:     "Your vote has been updated",
	domain.VoteAlreadyCast: "You have already voted this way",
}

// PetitionHandler handles HTTP requests for movie petitions
type PetitionHandler struct {
	service *petition.Service
	logger  *logger.Logger
}

// NewPetitionHandler creates a new petition handler
func NewPetitionHandler(service *petition.Service, log *logger.Logger) *PetitionHandler {
	return &PetitionHandler{
		service: service,
		logger:  log,
	}
}

// CreatePetitionRequest represents the request body for opening a petition
type CreatePetitionRequest struct {
	MovieTitle       string `json:"movie_title"`
	MovieDescription string `json:"movie_description"`
	Reason           string `json:"reason"`
	Director         string `json:"director,omitempty"`
	ReleaseYear      *int   `json:"release_year,omitempty"`
	Genre            string `json:"genre,omitempty"`
}

// VoteRequest represents the request body for voting on a petition
type VoteRequest struct {
	Vote string `json:"vote" example:"yes"`
}

// VoteResponse is the result of a vote with the refreshed petition
type VoteResponse struct {
	Outcome  domain.VoteOutcome   `json:"outcome"`
	Petition *domain.PetitionView `json:"petition"`
}

// List handles GET /api/v1/petitions
// @Summary List petitions
// @Description Paginated petitions, newest first, with vote tallies
// @Tags Petitions
// @Produce json
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of petitions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /petitions [get]
func (h *PetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)

	petitions, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Paginated(w, petitions, total, limit, offset)
}

// Create handles POST /api/v1/petitions
// @Summary Open a petition
// @Description Propose a movie for the catalog
// @Tags Petitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param petition body CreatePetitionRequest true "Petition details"
// @Success 201 {object} map[string]interface{} "Petition created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /petitions [post]
func (h *PetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	var req CreatePetitionRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}

	p := &domain.MoviePetition{
		CreatorID:        identity.UserID,
		MovieTitle:       strings.TrimSpace(req.MovieTitle),
		MovieDescription: strings.TrimSpace(req.MovieDescription),
		Reason:           strings.TrimSpace(req.Reason),
		Director:         strings.TrimSpace(req.Director),
		ReleaseYear:      req.ReleaseYear,
		Genre:            strings.TrimSpace(req.Genre),
	}

	if err := h.service.Create(r.Context(), p); err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, domain.NewPetitionView(p, domain.VoteTally{}))
}

// Mine handles GET /api/v1/petitions/mine
// @Summary My petitions
// @Description Petitions opened by the caller, newest first
// @Tags Petitions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Petitions"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /petitions/mine [get]
func (h *PetitionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	petitions, err := h.service.ListByCreator(r.Context(), identity.UserID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, petitions)
}

// GetByID handles GET /api/v1/petitions/{id}
// @Summary Get a petition
// @Description Petition with tallies; authenticated viewers also see their own vote
// @Tags Petitions
// @Produce json
// @Param id path string true "Petition ID (UUID)"
// @Success 200 {object} map[string]interface{} "Petition"
// @Failure 400 {object} map[string]string "Invalid petition ID"
// @Failure 404 {object} map[string]string "Petition not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /petitions/{id} [get]
func (h *PetitionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid petition ID")
		return
	}

	view, err := h.service.GetByID(r.Context(), id, middleware.ViewerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, view)
}

// Vote handles POST /api/v1/petitions/{id}/vote
// @Summary Vote on a petition
// @Description Cast a yes or no vote. Voting again with a different choice replaces the earlier vote.
// @Tags Petitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Petition ID (UUID)"
// @Param vote body VoteRequest true "yes or no"
// @Success 200 {object} map[string]interface{} "Vote outcome and refreshed petition"
// @Failure 400 {object} map[string]string "Invalid vote"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Petition not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /petitions/{id}/vote [post]
func (h *PetitionHandler) Vote(w http.ResponseWriter, r *http.Request) {
	identity, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid petition ID")
		return
	}

	var req VoteRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}

	outcome, err := h.service.Vote(r.Context(), id, identity.UserID, req.Vote)
	if err != nil {
		h.handleError(w, err)
		return
	}

	view, err := h.service.GetByID(r.Context(), id, identity.UserID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.SuccessWithMessages(w, http.StatusOK,
		VoteResponse{Outcome: outcome, Petition: view},
		[]string{voteMessages[outcome]},
	)
}

func (h *PetitionHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, err, "Petition not found")
}
