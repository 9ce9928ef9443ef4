package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

// RoleAdmin marks catalog administrators
const RoleAdmin = "admin"

type contextKey int

const (
	identityKey contextKey = iota
	sessionKey
)

// Identity is the authenticated actor of a request
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the actor may maintain the catalog
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Claims are the bearer token claims the API reads
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// WithIdentity stores the identity in the context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the request's identity, if any
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// ViewerID returns the authenticated user id or uuid.Nil for anonymous requests
func ViewerID(ctx context.Context) uuid.UUID {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.UserID
	}
	return uuid.Nil
}

// TokenVerifier validates bearer tokens issued by the identity provider
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier for HMAC signed tokens
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses the token and returns the identity it carries
func (v *TokenVerifier) Verify(token string) (Identity, error) {
	if len(v.secret) == 0 {
		return Identity{}, errors.New("token verification is not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...); err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject: %w", err)
	}

	return Identity{UserID: userID, Role: claims.Role}, nil
}

// Authenticate reads an optional bearer token. Requests without one continue anonymously;
// a present but invalid token is rejected with 401.
func Authenticate(verifier *TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				response.Error(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			identity, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				log.Debugf("Rejected bearer token: %v", err)
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireUser rejects anonymous requests
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous and non-admin requests
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !id.IsAdmin() {
			response.Error(w, http.StatusForbidden, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
