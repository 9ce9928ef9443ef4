//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/movie_store/internal/config"
	"github.com/Pesokrava/movie_store/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/movie_store/internal/delivery/http"
	"github.com/Pesokrava/movie_store/internal/delivery/http/handler"
	"github.com/Pesokrava/movie_store/internal/delivery/http/middleware"
	"github.com/Pesokrava/movie_store/internal/pkg/cache"
	"github.com/Pesokrava/movie_store/internal/pkg/database"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/movie_store/internal/repository/cache"
	"github.com/Pesokrava/movie_store/internal/repository/postgres"
	"github.com/Pesokrava/movie_store/internal/usecase/cart"
	"github.com/Pesokrava/movie_store/internal/usecase/catalog"
	"github.com/Pesokrava/movie_store/internal/usecase/order"
	"github.com/Pesokrava/movie_store/internal/usecase/petition"
	"github.com/Pesokrava/movie_store/internal/usecase/review"
	"github.com/Pesokrava/movie_store/internal/usecase/visibility"
	"github.com/Pesokrava/movie_store/migrations"
)

type testServer struct {
	handler http.Handler
	cfg     *config.Config
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "integration-secret"
	}

	log := logger.New(cfg.Env)

	db, err := database.WaitForDB(cfg, log, 5, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.RunMigrations(db, migrations.FS)
	require.NoError(t, err)

	redisClient, err := cache.WaitForRedis(cfg, log, 5, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	publisher, err := events.NewNATSPublisher(cfg, log)
	require.NoError(t, err)
	t.Cleanup(publisher.Close)
	require.NoError(t, events.NewStreamConfig(publisher.JetStream(), log).
		EnsureStreams(events.ReviewStream, events.OrderStream))

	movieRepo := postgres.NewMovieRepository(db)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.MovieRatingTTL, cfg.Cache.ReviewsListTTL)
	sessions := cacheRepo.NewSessionStore(redisClient, cfg.Session.TTL)

	catalogService := catalog.NewService(movieRepo, redisCache, log, cfg.Trending.PerRegion)
	reviewService := review.NewService(postgres.NewReviewRepository(db), redisCache, publisher, log)
	cartService := cart.NewService(movieRepo, sessions, log)

	handlers := httpDelivery.Handlers{
		Movies:    handler.NewMovieHandler(catalogService, reviewService, log),
		Reviews:   handler.NewReviewHandler(reviewService, log),
		Cart:      handler.NewCartHandler(cartService, log),
		Orders:    handler.NewOrderHandler(order.NewService(postgres.NewOrderRepository(db), publisher, log), cartService, log),
		Trending:  handler.NewTrendingHandler(catalogService, log),
		Petitions: handler.NewPetitionHandler(petition.NewService(postgres.NewPetitionRepository(db), log), log),
		Hidden:    handler.NewHiddenHandler(visibility.NewService(postgres.NewHiddenMovieRepository(db), movieRepo, log), log),
	}
	verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	return &testServer{
		handler: httpDelivery.NewRouter(handlers, verifier, cfg, log).Setup(),
		cfg:     cfg,
	}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.cfg.Auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.JWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (s *testServer) do(t *testing.T, method, path, auth, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Code != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w, resp
}

func (s *testServer) createMovie(t *testing.T, admin, title, price string) string {
	t.Helper()
	body := fmt.Sprintf(`{"title": %q, "description": "Integration test movie", "price": %q}`, title, price)
	w, resp := s.do(t, http.MethodPost, "/api/v1/movies", admin, body)
	require.Equal(t, http.StatusCreated, w.Code)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func TestMovieCreateAndGet(t *testing.T) {
	server := setupTestServer(t)
	admin := server.token(t, uuid.New(), middleware.RoleAdmin)

	movieID := server.createMovie(t, admin, "Integration Movie", "12.50")
	t.Cleanup(func() { server.do(t, http.MethodDelete, "/api/v1/movies/"+movieID, admin, "") })

	w, resp := server.do(t, http.MethodGet, "/api/v1/movies/"+movieID, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp["success"].(bool))

	data := resp["data"].(map[string]interface{})
	movie := data["movie"].(map[string]interface{})
	assert.Equal(t, "Integration Movie", movie["title"])
	assert.Equal(t, "12.5", movie["price"])
}

func TestReviewLifecycle(t *testing.T) {
	server := setupTestServer(t)
	admin := server.token(t, uuid.New(), middleware.RoleAdmin)
	author := server.token(t, uuid.New(), "")

	movieID := server.createMovie(t, admin, "Reviewed Movie", "9.99")
	t.Cleanup(func() { server.do(t, http.MethodDelete, "/api/v1/movies/"+movieID, admin, "") })

	w, resp := server.do(t, http.MethodPost, "/api/v1/movies/"+movieID+"/reviews", author, `{"content": "Great pacing", "rating": 5}`)
	require.Equal(t, http.StatusCreated, w.Code)
	reviewID := resp["data"].(map[string]interface{})["id"].(string)

	w, _ = server.do(t, http.MethodPost, "/api/v1/movies/"+movieID+"/reviews", author, `{"content": "Again", "rating": 4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = server.do(t, http.MethodPost, "/api/v1/reviews/"+reviewID+"/like", server.token(t, uuid.New(), ""), "")
	require.Equal(t, http.StatusOK, w.Code)
	like := resp["data"].(map[string]interface{})
	assert.Equal(t, true, like["liked"])
	assert.Equal(t, float64(1), like["like_count"])

	w, _ = server.do(t, http.MethodDelete, "/api/v1/reviews/"+reviewID, server.token(t, uuid.New(), ""), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = server.do(t, http.MethodDelete, "/api/v1/reviews/"+reviewID, author, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCartCheckout(t *testing.T) {
	server := setupTestServer(t)
	admin := server.token(t, uuid.New(), middleware.RoleAdmin)
	buyer := server.token(t, uuid.New(), "")

	movieID := server.createMovie(t, admin, "Checkout Movie", "4.25")
	t.Cleanup(func() { server.do(t, http.MethodDelete, "/api/v1/movies/"+movieID, admin, "") })

	w, _ := server.do(t, http.MethodGet, "/api/v1/cart", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w, resp := server.do(t, http.MethodPost, "/api/v1/cart/items", buyer,
		fmt.Sprintf(`{"movie_id": %q, "quantity": 2}`, movieID), cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "8.5", resp["data"].(map[string]interface{})["total"])

	w, resp = server.do(t, http.MethodPost, "/api/v1/checkout", buyer,
		`{"region": "Atlanta, GA", "city": "Decatur"}`, cookies...)
	require.Equal(t, http.StatusCreated, w.Code)
	messages := resp["messages"].([]interface{})
	assert.Contains(t, messages, "Order placed successfully. Total: $8.50")

	w, resp = server.do(t, http.MethodGet, "/api/v1/cart", "", "", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["data"].(map[string]interface{})["lines"])

	w, resp = server.do(t, http.MethodGet, "/api/v1/orders", buyer, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 1)
}

func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	w, resp := server.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
}
