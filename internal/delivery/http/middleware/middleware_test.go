package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/movie_store/internal/config"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, role string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// identityEcho writes the resolved identity back for assertions
func identityEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(id.UserID.String() + "/" + id.Role))
	})
}

func serveAuth(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()
	h := Authenticate(NewTokenVerifier(testSecret, ""), logger.New("test"))(identityEcho())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	valid := signToken(t, testSecret, userID.String(), RoleAdmin, time.Now().Add(time.Hour))

	t.Run("no header is anonymous", func(t *testing.T) {
		rec := serveAuth(t, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("valid token", func(t *testing.T) {
		rec := serveAuth(t, "Bearer "+valid)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID.String()+"/admin", rec.Body.String())
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other", userID.String(), "", time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusUnauthorized, serveAuth(t, "Bearer "+token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testSecret, userID.String(), "", time.Now().Add(-time.Minute))
		assert.Equal(t, http.StatusUnauthorized, serveAuth(t, "Bearer "+token).Code)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		token := signToken(t, testSecret, "42", "", time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusUnauthorized, serveAuth(t, "Bearer "+token).Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serveAuth(t, "Basic abc").Code)
	})
}

func TestTokenVerifier_Unconfigured(t *testing.T) {
	_, err := NewTokenVerifier("", "").Verify("anything")
	assert.Error(t, err)
}

func TestRequireUserAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		identity  *Identity
		wantUser  int
		wantAdmin int
	}{
		{name: "anonymous", wantUser: http.StatusUnauthorized, wantAdmin: http.StatusUnauthorized},
		{name: "user", identity: &Identity{UserID: uuid.New()}, wantUser: http.StatusNoContent, wantAdmin: http.StatusForbidden},
		{name: "admin", identity: &Identity{UserID: uuid.New(), Role: RoleAdmin}, wantUser: http.StatusNoContent, wantAdmin: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.identity))
			}

			rec := httptest.NewRecorder()
			RequireUser(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantUser, rec.Code)

			rec = httptest.NewRecorder()
			RequireAdmin(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantAdmin, rec.Code)
		})
	}
}

func TestSession(t *testing.T) {
	cfg := config.SessionConfig{CookieName: "session_id", TTL: time.Hour}
	var seen string
	h := Session(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	t.Run("issues a new session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "session_id", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, seen, cookies[0].Value)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})

	t.Run("keeps an existing session", func(t *testing.T) {
		existing := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: existing})

		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, existing, seen)
	})

	t.Run("replaces a malformed session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "../../etc"})

		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEqual(t, "../../etc", seen)
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.New("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestWriteRateLimit(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, WriteRequests: 1, WriteWindow: time.Minute}
	h := WriteRateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(userID uuid.UUID) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: userID}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	alice, bob := uuid.New(), uuid.New()
	assert.Equal(t, http.StatusNoContent, serve(alice))
	assert.Equal(t, http.StatusTooManyRequests, serve(alice))
	assert.Equal(t, http.StatusNoContent, serve(bob))
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(config.RateLimitConfig{Enabled: false})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
