package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/movie_store/internal/config"
	"github.com/Pesokrava/movie_store/internal/delivery/http/handler"
	"github.com/Pesokrava/movie_store/internal/delivery/http/middleware"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

const requestTimeout = 30 * time.Second

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Movies    *handler.MovieHandler
	Reviews   *handler.ReviewHandler
	Cart      *handler.CartHandler
	Orders    *handler.OrderHandler
	Trending  *handler.TrendingHandler
	Petitions *handler.PetitionHandler
	Hidden    *handler.HiddenHandler
}

// Router holds HTTP handlers and router configuration
type Router struct {
	handlers Handlers
	verifier *middleware.TokenVerifier
	logger   *logger.Logger
	cfg      *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	handlers Handlers,
	verifier *middleware.TokenVerifier,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		handlers: handlers,
		verifier: verifier,
		logger:   log,
		cfg:      cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	session := middleware.Session(rt.cfg.Session)
	writes := middleware.WriteRateLimit(rt.cfg.RateLimit)
	h := rt.handlers

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.cfg.RateLimit))
		r.Use(middleware.Authenticate(rt.verifier, rt.logger))

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", h.Movies.List)
			r.Get("/{id}", h.Movies.GetByID)
			r.Get("/{id}/reviews", h.Reviews.ListByMovie)
			r.Get("/{id}/purchases", h.Movies.Purchases)

			r.With(middleware.RequireUser, writes).Post("/{id}/reviews", h.Reviews.Create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin, writes)
				r.Post("/", h.Movies.Create)
				r.Put("/{id}", h.Movies.Update)
				r.Delete("/{id}", h.Movies.Delete)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(middleware.RequireUser, writes)
			r.Put("/{id}", h.Reviews.Update)
			r.Delete("/{id}", h.Reviews.Delete)
			r.Post("/{id}/like", h.Reviews.ToggleLike)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(session)
			r.Get("/", h.Cart.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser, writes)
				r.Post("/items", h.Cart.AddItem)
				r.Delete("/", h.Cart.Clear)
			})
		})

		r.With(session, middleware.RequireUser, writes).Post("/checkout", h.Orders.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/", h.Orders.List)
			r.Get("/{id}", h.Orders.GetByID)
		})

		r.Get("/trending", h.Trending.Trending)
		r.Get("/regions", h.Trending.Regions)

		r.Route("/petitions", func(r chi.Router) {
			r.Get("/", h.Petitions.List)
			r.With(middleware.RequireUser).Get("/mine", h.Petitions.Mine)
			r.Get("/{id}", h.Petitions.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser, writes)
				r.Post("/", h.Petitions.Create)
				r.Post("/{id}/vote", h.Petitions.Vote)
			})
		})

		r.Route("/hidden", func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/", h.Hidden.List)

			r.Group(func(r chi.Router) {
				r.Use(writes)
				r.Post("/{movieID}", h.Hidden.Hide)
				r.Delete("/{movieID}", h.Hidden.Unhide)
				r.Post("/{movieID}/toggle", h.Hidden.Toggle)
			})
		})
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
