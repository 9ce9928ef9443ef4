package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/movie_store/internal/config"
	"github.com/Pesokrava/movie_store/internal/delivery/events"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

const notifierGroup = "notifier"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting notifier service...")

	var consumer events.Subscriber
	if cfg.Events.Broker == config.BrokerRabbitMQ {
		consumer, err = events.NewAMQPConsumer(cfg, notifierGroup, appLogger)
	} else {
		consumer, err = events.NewConsumer(cfg, appLogger)
	}
	if err != nil {
		appLogger.Fatal("Failed to create event consumer", err)
	}
	defer consumer.Close()

	for _, subject := range []string{events.ReviewSubject, events.OrderSubject} {
		if err := consumer.Subscribe(subject, events.LoggingHandler(appLogger, subject)); err != nil {
			appLogger.Fatal("Failed to subscribe to "+subject, err)
		}
	}

	appLogger.Info("Notifier service started and listening for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down notifier service...")
}
