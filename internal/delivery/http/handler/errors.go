package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Pesokrava/movie_store/internal/delivery/http/middleware"
	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

// validationMessage returns the user-facing reason of a validation error
func validationMessage(err error) string {
	prefix := domain.ErrInvalidInput.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 && len(msg) > i+len(prefix) {
		reason := msg[i+len(prefix):]
		return strings.ToUpper(reason[:1]) + reason[1:]
	}
	return "Invalid input"
}

// writeError maps service layer errors to HTTP responses; notFound names the missing resource
func writeError(w http.ResponseWriter, log *logger.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, "You can only change your own content")
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Conflict - resource was modified by another request")
	case errors.Is(err, domain.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, "Authentication required")
	default:
		log.Error("Internal error in HTTP handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// invalidBody answers a request whose JSON body could not be decoded
func invalidBody(w http.ResponseWriter, err error) {
	if errors.Is(err, request.ErrBodyTooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	response.Error(w, http.StatusBadRequest, "Invalid request body")
}

// actor returns the authenticated identity; routes behind RequireUser always have one
func actor(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
	}
	return id, ok
}

// sessionID returns the cart session of the request; routes behind Session always have one
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		response.Error(w, http.StatusBadRequest, "Missing session")
		return "", false
	}
	return id, true
}

// ReviewView is a review with its derived top comment flag
type ReviewView struct {
	*domain.Review
	IsTopComment bool `json:"is_top_comment"`
}

func newReviewView(r *domain.Review) *ReviewView {
	if r == nil {
		return nil
	}
	return &ReviewView{Review: r, IsTopComment: r.IsTopComment()}
}

func newReviewViews(reviews []*domain.Review) []*ReviewView {
	views := make([]*ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, newReviewView(r))
	}
	return views
}
