package middleware

import (
	"net/http"

	"github.com/go-chi/httprate"

	"github.com/Pesokrava/movie_store/internal/config"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
)

func passthrough(next http.Handler) http.Handler {
	return next
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusTooManyRequests, "Too many requests")
}

// keyByUser limits authenticated actors per user and everyone else per IP
func keyByUser(r *http.Request) (string, error) {
	if id, ok := IdentityFromContext(r.Context()); ok {
		return "user:" + id.UserID.String(), nil
	}
	return httprate.KeyByIP(r)
}

// RateLimit limits all requests per client IP
func RateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return passthrough
	}
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

// WriteRateLimit limits state-changing requests per user. It must run after Authenticate.
func WriteRateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return passthrough
	}
	return httprate.Limit(
		cfg.WriteRequests,
		cfg.WriteWindow,
		httprate.WithKeyFuncs(keyByUser),
		httprate.WithLimitHandler(tooManyRequests),
	)
}
