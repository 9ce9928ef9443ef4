package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	_ "github.com/Pesokrava/movie_store/docs"
)

// @title Movie Store API
// @version 1.0
// @description Movie catalog with reviews, session carts, checkout, regional trending and movie petitions.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/movie_store
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Movies
// @tag.description Catalog browsing and maintenance

// @tag.name Reviews
// @tag.description Movie reviews and likes

// @tag.name Cart
// @tag.description Session cart

// @tag.name Orders
// @tag.description Checkout and order history

// @tag.name Trending
// @tag.description Regional sales report

// @tag.name Petitions
// @tag.description Requests to add movies to the catalog

// @tag.name Hidden
// @tag.description Per-user catalog hiding

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting Movie Store API...")

	if cfg.Auth.JWTSecret == "" {
		appLogger.Warn("JWT_SECRET is not set; every authenticated request will be rejected")
	}

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	if cfg.Database.AutoMigrate {
		applied, err := database.RunMigrations(db, migrations.FS)
		if err != nil {
			appLogger.Fatal("Failed to run migrations", err)
		}
		appLogger.WithFields(map[string]interface{}{
			"applied": applied,
		}).Info("Database migrations complete")
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	broker, err := connectBroker(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to event broker", err)
	}
	publisher := events.NewBreakerPublisher(broker, events.BreakerSettings{
		Name:             cfg.Events.Broker,
		FailureThreshold: cfg.Events.BreakerFailures,
		OpenTimeout:      cfg.Events.BreakerOpenFor,
		HalfOpenRequests: cfg.Events.BreakerHalfOpenN,
		PublishTimeout:   cfg.Events.PublishTimeout,
	}, appLogger)
	defer publisher.Close()

	movieRepo := postgres.NewMovieRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	petitionRepo := postgres.NewPetitionRepository(db)
	hiddenRepo := postgres.NewHiddenMovieRepository(db)
	redisCache := cacheRepo.NewRedisCache(
		redisClient,
		cfg.Cache.MovieRatingTTL,
		cfg.Cache.ReviewsListTTL,
	)
	sessions := cacheRepo.NewSessionStore(redisClient, cfg.Session.TTL)

	catalogService := catalog.NewService(movieRepo, redisCache, appLogger, cfg.Trending.PerRegion)
	reviewService := review.NewService(reviewRepo, redisCache, publisher, appLogger)
	cartService := cart.NewService(movieRepo, sessions, appLogger)
	orderService := order.NewService(orderRepo, publisher, appLogger)
	petitionService := petition.NewService(petitionRepo, appLogger)
	visibilityService := visibility.NewService(hiddenRepo, movieRepo, appLogger)

	handlers := httpDelivery.Handlers{
		Movies:    handler.NewMovieHandler(catalogService, reviewService, appLogger),
		Reviews:   handler.NewReviewHandler(reviewService, appLogger),
		Cart:      handler.NewCartHandler(cartService, appLogger),
		Orders:    handler.NewOrderHandler(orderService, cartService, appLogger),
		Trending:  handler.NewTrendingHandler(catalogService, appLogger),
		Petitions: handler.NewPetitionHandler(petitionService, appLogger),
		Hidden:    handler.NewHiddenHandler(visibilityService, appLogger),
	}
	verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	router := httpDelivery.NewRouter(handlers, verifier, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}

// connectBroker opens the configured event broker. With NATS the review and order
// streams are declared before the first publish.
func connectBroker(cfg *config.Config, appLogger *logger.Logger) (events.Publisher, error) {
	switch cfg.Events.Broker {
	case config.BrokerRabbitMQ:
		appLogger.Info("Connecting to RabbitMQ...")
		publisher, err := events.NewAMQPPublisher(cfg, appLogger)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	default:
		appLogger.Info("Connecting to NATS JetStream...")
		publisher, err := events.NewNATSPublisher(cfg, appLogger)
		if err != nil {
			return nil, err
		}
		streams := events.NewStreamConfig(publisher.JetStream(), appLogger)
		if err := streams.EnsureStreams(events.ReviewStream, events.OrderStream); err != nil {
			publisher.Close()
			return nil, err
		}
		return publisher, nil
	}
}
