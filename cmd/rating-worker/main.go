package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/movie_store/internal/config"
	"github.com/Pesokrava/movie_store/internal/delivery/events"
	"github.com/Pesokrava/movie_store/internal/pkg/database"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting rating worker...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	appLogger.Info("Connected to database")

	calculator := worker.NewCalculator(db, appLogger)
	ratingWorker := worker.NewRatingWorker(calculator, appLogger)

	subscriber, closeBroker, err := subscribe(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to set up event subscription", err)
	}
	defer closeBroker()

	if err := subscriber.Subscribe(events.ReviewSubject, ratingWorker.HandleEvent); err != nil {
		appLogger.Fatal("Failed to subscribe to review events", err)
	}

	appLogger.WithFields(map[string]interface{}{
		"broker":  cfg.Events.Broker,
		"subject": events.ReviewSubject,
	}).Info("Rating worker listening for review events")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	<-sigCh
	appLogger.Info("Received shutdown signal")

	// Stop fetching before draining pending recalculations
	subscriber.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ratingWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Rating worker stopped")
}

// subscribe prepares the review event source of the configured broker. The returned
// func releases the broker connection.
func subscribe(cfg *config.Config, appLogger *logger.Logger) (events.Subscriber, func(), error) {
	if cfg.Events.Broker == config.BrokerRabbitMQ {
		appLogger.Info("Connecting to RabbitMQ...")
		consumer, err := events.NewAMQPConsumer(cfg, "", appLogger)
		if err != nil {
			return nil, nil, err
		}
		return consumer, func() {}, nil
	}

	appLogger.Info("Connecting to NATS JetStream...")
	conn, err := events.NewNATSPublisher(cfg, appLogger)
	if err != nil {
		return nil, nil, err
	}

	streams := events.NewStreamConfig(conn.JetStream(), appLogger)
	if err := streams.EnsureStream(events.ReviewStream); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := streams.EnsureConsumer(events.ReviewStream, events.RatingConsumer); err != nil {
		conn.Close()
		return nil, nil, err
	}

	return events.NewPullConsumer(conn.JetStream(), events.RatingConsumer, appLogger), conn.Close, nil
}
